// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package detect

import (
	"sync/atomic"

	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/logging"
)

// Sink receives flagged records. Emit is expected to block until the
// record has been accepted downstream; the pipeline never processes
// the next record until Emit returns.
type Sink interface {
	Emit(r Record) error
}

// Source produces the record stream the pipeline consumes. Next
// returns ok=false at end of stream.
type Source interface {
	Next() (r Record, ok bool, err error)
}

// Metrics receives per-stage outcome counts. All methods must be safe
// to call from the single-threaded run loop without blocking it.
type Metrics interface {
	IncFamily(family ipaddr.Family)
	IncFilterHit(family ipaddr.Family, filter string)
}

// AuditSink and Broadcaster receive every POSITIVE verdict in addition
// to sink emission. Both are best-effort: a full internal queue or a
// slow client must never block or fail the run loop.
type AuditSink interface {
	Record(r Record)
}

type Broadcaster interface {
	Broadcast(r Record)
}

// Pipeline dispatches each record through the bogon, symmetric, and
// new-flow filters in order, short-circuiting and emitting on the
// first POSITIVE.
type Pipeline struct {
	bogon     *Bogon
	symmetric *Symmetric
	newFlow   *NewFlow
	sink      Sink

	metrics   Metrics
	audit     AuditSink
	broadcast Broadcaster
	logger    *logging.Logger
}

// PipelineOption configures optional Pipeline collaborators.
type PipelineOption func(*Pipeline)

func WithMetrics(m Metrics) PipelineOption     { return func(p *Pipeline) { p.metrics = m } }
func WithAudit(a AuditSink) PipelineOption     { return func(p *Pipeline) { p.audit = a } }
func WithBroadcast(b Broadcaster) PipelineOption { return func(p *Pipeline) { p.broadcast = b } }
func WithLogger(l *logging.Logger) PipelineOption { return func(p *Pipeline) { p.logger = l } }

// NewPipeline builds a Pipeline over the three filters and a sink.
func NewPipeline(bogon *Bogon, symmetric *Symmetric, newFlow *NewFlow, sink Sink, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{bogon: bogon, symmetric: symmetric, newFlow: newFlow, sink: sink, logger: logging.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs a single record through the filter chain.
func (p *Pipeline) Process(r Record) {
	family := r.SrcAddr.Family()
	if p.metrics != nil {
		p.metrics.IncFamily(family)
	}

	if p.bogon.Check(r) {
		p.emit(r, family, "bogon")
		return
	}
	if p.symmetric.Check(r) {
		p.emit(r, family, "symmetric")
		return
	}
	if p.newFlow.Check(r) {
		p.emit(r, family, "newflow")
		return
	}
}

func (p *Pipeline) emit(r Record, family ipaddr.Family, filter string) {
	if p.metrics != nil {
		p.metrics.IncFilterHit(family, filter)
	}
	if err := p.sink.Emit(r); err != nil {
		p.logger.Error("failed to emit flagged record", "filter", filter, "error", err)
	}
	if p.audit != nil {
		p.audit.Record(r)
	}
	if p.broadcast != nil {
		p.broadcast.Broadcast(r)
	}
}

// Run drives Process over src until stop is set, src is exhausted, or
// src returns an error. It is the single consumer loop described by
// the concurrency model: one record in flight at a time. The symmetry
// maps and new-flow tables it updates guard themselves with their own
// mutexes because a metrics sampler reads them from another goroutine.
func (p *Pipeline) Run(src Source, stop *atomic.Bool) error {
	for {
		if stop.Load() {
			return nil
		}
		r, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		p.Process(r)
	}
}
