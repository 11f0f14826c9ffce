// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command spoofdetectd runs the flow-spoofing detector as a
// standalone process: it loads prefix files and configuration, wires
// the filter pipeline, and drives it against whatever record source
// its transport is compiled against.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jaroslavh/Nemea-Modules/internal/api"
	"github.com/jaroslavh/Nemea-Modules/internal/audit"
	"github.com/jaroslavh/Nemea-Modules/internal/clock"
	"github.com/jaroslavh/Nemea-Modules/internal/config"
	"github.com/jaroslavh/Nemea-Modules/internal/detect"
	"github.com/jaroslavh/Nemea-Modules/internal/errors"
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/logging"
	"github.com/jaroslavh/Nemea-Modules/internal/metrics"
	"github.com/jaroslavh/Nemea-Modules/internal/newflow"
	"github.com/jaroslavh/Nemea-Modules/internal/prefix"
	"github.com/jaroslavh/Nemea-Modules/internal/symmetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	fs := flag.NewFlagSet("spoofdetectd", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger := logging.Default()

	cfg, err := config.Load(fs, flags)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(exitCode(err))
	}

	if cfg.Syslog != nil && cfg.Syslog.Enabled {
		w, err := logging.NewSyslogWriter(*cfg.Syslog)
		if err != nil {
			logger.Warn("failed to set up syslog forwarding", "error", err)
		} else {
			logger = logger.WithWriter(w)
		}
	}

	var stop atomic.Bool

	pipeline, cleanup, err := buildPipeline(cfg, logger, &stop)
	if err != nil {
		logger.Error("initialization error", "error", err)
		os.Exit(exitCode(err))
	}
	defer cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		stop.Store(true)
	}()

	logger.Info("spoofdetectd starting")
	if err := pipeline.Run(&stdinSource{}, &stop); err != nil {
		logger.Error("run loop terminated with error", "error", err)
		os.Exit(exitCode(err))
	}
	logger.Info("spoofdetectd stopped")
}

// stdinSource is a placeholder Source: the record transport itself is
// out of scope for the detector core, which only needs an iterator of
// records (see detect.Source).
type stdinSource struct{}

func (s *stdinSource) Next() (detect.Record, bool, error) {
	return detect.Record{}, false, nil
}

func exitCode(err error) int {
	return errors.GetKind(err).ExitCode()
}

func buildPipeline(cfg config.Config, logger *logging.Logger, stop *atomic.Bool) (*detect.Pipeline, func(), error) {
	masks := ipaddr.NewMaskTable()
	opsV4 := ipaddr.NewOps(ipaddr.V4, masks)
	opsV6 := ipaddr.NewOps(ipaddr.V6, masks)

	bogonV4, bogonV6, err := prefix.LoadFile(cfg.BogonFile)
	if err != nil {
		return nil, nil, err
	}
	bogonSetV4 := prefix.New(opsV4, masks, bogonV4)
	bogonSetV6 := prefix.New(opsV6, masks, bogonV6)

	var specificSetV4, specificSetV6 *prefix.Set
	if cfg.SpecificNetworksFile != "" {
		specV4, specV6, err := prefix.LoadFile(cfg.SpecificNetworksFile)
		if err != nil {
			return nil, nil, err
		}
		specificSetV4 = prefix.New(opsV4, masks, specV4)
		specificSetV6 = prefix.New(opsV6, masks, specV6)
	} else {
		specificSetV4 = prefix.New(opsV4, masks, nil)
		specificSetV6 = prefix.New(opsV6, masks, nil)
	}

	bogon := detect.NewBogon(bogonSetV4, bogonSetV6, specificSetV4, specificSetV6)

	var symStoreV4, symStoreV6 symmetry.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		symStoreV4 = symmetry.NewRedisStore(client, "sym:v4:", logger)
		symStoreV6 = symmetry.NewRedisStore(client, "sym:v6:", logger)
	}
	symV4 := symmetry.New(opsV4, symStoreV4)
	symV6 := symmetry.New(opsV6, symStoreV6)
	rewriteWindow := uint32(cfg.SymRewriteWindow.Seconds())
	sym := detect.NewSymmetric(symV4, symV6, rewriteWindow, true)

	swapInterval := uint32(cfg.BloomSwapInterval.Seconds())
	tableV4 := newflow.NewTable(specificSetV4.Len(), cfg.NewFlowThreshold, swapInterval)
	tableV6 := newflow.NewTable(specificSetV6.Len(), cfg.NewFlowThreshold, swapInterval)
	nf := detect.NewNewFlow(specificSetV4, specificSetV6, tableV4, tableV6, opsV4, opsV6, &clock.Logical{})

	reg := metrics.NewRegistry()
	opts := []detect.PipelineOption{detect.WithMetrics(reg), detect.WithLogger(logger)}

	var auditWriter *audit.Writer
	if cfg.AuditDatabaseURL != "" {
		auditWriter, err = audit.NewWriter(cfg.AuditDatabaseURL, logger, audit.WithDropCounter(reg))
		if err != nil {
			logger.Warn("audit database unavailable, continuing without it", "error", err)
		} else {
			auditWriter.Start()
			opts = append(opts, detect.WithAudit(auditWriter))
		}
	}

	var apiServer *api.Server
	if cfg.APIListen != "" {
		apiServer = api.NewServer(reg, logger)
		opts = append(opts, detect.WithBroadcast(apiServer))
		go func() {
			if err := http.ListenAndServe(cfg.APIListen, apiServer.Handler()); err != nil {
				logger.Warn("admin API server stopped", "error", err)
			}
		}()
	}

	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	go sampleGaugeMetrics(reg, symV4, symV6, tableV4, tableV6, stop)

	sink := &loggingSink{logger: logger}
	pipeline := detect.NewPipeline(bogon, sym, nf, sink, opts...)

	cleanup := func() {
		if auditWriter != nil {
			auditWriter.Stop()
		}
	}
	return pipeline, cleanup, nil
}

// gaugeSampleInterval is how often the symmetry-map size and new-flow
// bucket occupancy gauges are refreshed. These are cheap, monotonic-ish
// reads and don't need to track every mutation live.
const gaugeSampleInterval = 15 * time.Second

// sampleGaugeMetrics periodically pushes point-in-time gauge readings
// into reg until stop is set. Unlike the per-record counters, these
// have no natural event to hang an update off of.
func sampleGaugeMetrics(reg *metrics.Registry, symV4, symV6 *symmetry.Map, tableV4, tableV6 *newflow.Table, stop *atomic.Bool) {
	ticker := time.NewTicker(gaugeSampleInterval)
	defer ticker.Stop()

	for range ticker.C {
		if stop.Load() {
			return
		}
		reg.SetSymmetrySize(ipaddr.V4, symV4.Len())
		reg.SetSymmetrySize(ipaddr.V6, symV6.Len())
		for i := 0; i < tableV4.Len(); i++ {
			reg.SetNewFlowBucket(ipaddr.V4, i, tableV4.Count(i))
		}
		for i := 0; i < tableV6.Len(); i++ {
			reg.SetNewFlowBucket(ipaddr.V6, i, tableV6.Count(i))
		}
	}
}

// loggingSink is the default output sink: it logs every flagged
// record. A real deployment supplies its own detect.Sink over the
// negotiated transport.
type loggingSink struct {
	logger *logging.Logger
}

func (s *loggingSink) Emit(r detect.Record) error {
	s.logger.Info("flagged record",
		"src", r.SrcAddr.String(),
		"dst", r.DstAddr.String(),
		"link", fmt.Sprintf("%#x", r.LinkBitfield),
		"direction", r.DirBitfield,
	)
	return nil
}
