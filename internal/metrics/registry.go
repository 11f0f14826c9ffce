// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes the detector's counters as Prometheus
// metrics, labelled by address family and filter name.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaroslavh/Nemea-Modules/internal/api"
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

// Registry wraps the Prometheus collectors the detector updates on
// every record and every stage transition. It also keeps a plain
// mutex-guarded readback of the same counters so it can serve
// api.StatsProvider without reaching into Prometheus collector
// internals.
type Registry struct {
	reg *prometheus.Registry

	recordsTotal   *prometheus.CounterVec
	filterHits     *prometheus.CounterVec
	symmetrySize   *prometheus.GaugeVec
	newFlowBuckets *prometheus.GaugeVec
	auditDropped   prometheus.Counter

	mu             sync.Mutex
	recordsV4      uint64
	recordsV6      uint64
	filterHitCount map[string]uint64
	auditDropCount uint64
}

func familyLabel(f ipaddr.Family) string {
	if f == ipaddr.V6 {
		return "v6"
	}
	return "v4"
}

// NewRegistry builds a Registry with a fresh Prometheus registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg:            reg,
		filterHitCount: make(map[string]uint64),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spoofdetect_records_total",
				Help: "Total flow records processed, by address family.",
			},
			[]string{"family"},
		),
		filterHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spoofdetect_filter_hits_total",
				Help: "Total POSITIVE verdicts, by address family and filter.",
			},
			[]string{"family", "filter"},
		),
		symmetrySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spoofdetect_symmetry_entries",
				Help: "Current number of entries held by the symmetry witness map.",
			},
			[]string{"family"},
		),
		newFlowBuckets: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spoofdetect_newflow_bucket_count",
				Help: "Current distinct-source count of the active new-flow bucket, by family and watched-prefix index.",
			},
			[]string{"family", "prefix_index"},
		),
		auditDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spoofdetect_audit_dropped_total",
				Help: "Audit records dropped because the writer's queue was full.",
			},
		),
	}

	reg.MustRegister(r.recordsTotal, r.filterHits, r.symmetrySize, r.newFlowBuckets, r.auditDropped)
	return r
}

// IncFamily implements detect.Metrics.
func (r *Registry) IncFamily(f ipaddr.Family) {
	r.recordsTotal.WithLabelValues(familyLabel(f)).Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	if f == ipaddr.V6 {
		r.recordsV6++
	} else {
		r.recordsV4++
	}
}

// IncFilterHit implements detect.Metrics.
func (r *Registry) IncFilterHit(f ipaddr.Family, filter string) {
	r.filterHits.WithLabelValues(familyLabel(f), filter).Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.filterHitCount[filter]++
}

// SetSymmetrySize records the current entry count of a family's
// symmetry map.
func (r *Registry) SetSymmetrySize(f ipaddr.Family, n int) {
	r.symmetrySize.WithLabelValues(familyLabel(f)).Set(float64(n))
}

// SetNewFlowBucket records the active bucket's count for a watched
// prefix index.
func (r *Registry) SetNewFlowBucket(f ipaddr.Family, index int, count uint64) {
	r.newFlowBuckets.WithLabelValues(familyLabel(f), strconv.Itoa(index)).Set(float64(count))
}

// IncAuditDropped counts one audit record dropped for a full queue.
// It implements audit.DropCounter.
func (r *Registry) IncAuditDropped() {
	r.auditDropped.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditDropCount++
}

// Stats implements api.StatsProvider, giving the admin API a live
// snapshot of the same counters exposed at /metrics.
func (r *Registry) Stats() api.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	hits := make(map[string]uint64, len(r.filterHitCount))
	for k, v := range r.filterHitCount {
		hits[k] = v
	}
	return api.Stats{
		RecordsV4:    r.recordsV4,
		RecordsV6:    r.recordsV6,
		FilterHits:   hits,
		AuditDropped: r.auditDropCount,
	}
}

// Handler returns the HTTP handler to serve at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
