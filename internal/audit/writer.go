// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package audit batches flagged records to a Postgres audit table.
// It is entirely optional: a nil *Writer (or one never started) simply
// never receives records, and every failure here is non-fatal to
// detection.
package audit

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/jaroslavh/Nemea-Modules/internal/detect"
	"github.com/jaroslavh/Nemea-Modules/internal/errors"
	"github.com/jaroslavh/Nemea-Modules/internal/logging"
)

const (
	batchSize     = 50
	batchInterval = 2 * time.Second
	queueSize     = 10000
)

// DropCounter receives a signal for every record the Writer had to
// drop because its queue was full. metrics.Registry implements this
// to expose the drop count on the /metrics endpoint.
type DropCounter interface {
	IncAuditDropped()
}

// WriterOption configures optional Writer collaborators.
type WriterOption func(*Writer)

// WithDropCounter wires a DropCounter that is notified on every
// queue-full drop, in addition to the Writer's own internal counter.
func WithDropCounter(d DropCounter) WriterOption {
	return func(w *Writer) { w.drops = d }
}

// Writer batches detect.Record values flagged by the pipeline into a
// Postgres table, matching detect.AuditSink.
type Writer struct {
	db     *sql.DB
	logger *logging.Logger
	drops  DropCounter

	queue chan detect.Record
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	running bool

	written uint64
	dropped uint64
}

// NewWriter opens a connection pool against databaseURL and pings it
// once to fail fast on a bad DSN.
func NewWriter(databaseURL string, logger *logging.Logger, opts ...WriterOption) (*Writer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "failed to open audit database")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.KindUnavailable, "failed to reach audit database")
	}

	w := &Writer{
		db:     db,
		logger: logger,
		queue:  make(chan detect.Record, queueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start launches the background batching goroutine.
func (w *Writer) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop()
}

// Stop flushes any queued records and closes the database connection.
func (w *Writer) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	w.db.Close()
}

// Record implements detect.AuditSink. It never blocks: a full queue
// drops the record and counts it.
func (w *Writer) Record(r detect.Record) {
	select {
	case w.queue <- r:
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		if w.drops != nil {
			w.drops.IncAuditDropped()
		}
	}
}

// Stats reports counters for the admin API.
func (w *Writer) Stats() (written, dropped uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written, w.dropped
}

func (w *Writer) loop() {
	defer w.wg.Done()

	batch := make([]detect.Record, 0, batchSize)
	ticker := time.NewTicker(batchInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.writeBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case r := <-w.queue:
			batch = append(batch, r)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.done:
			close(w.queue)
			for r := range w.queue {
				batch = append(batch, r)
				if len(batch) >= batchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

func (w *Writer) writeBatch(batch []detect.Record) {
	tx, err := w.db.Begin()
	if err != nil {
		w.logger.Error("audit: failed to begin transaction", "error", err)
		return
	}
	defer tx.Rollback()

	written := 0
	for _, r := range batch {
		_, err := tx.Exec(
			`INSERT INTO flagged_records (src_addr, dst_addr, first_ts, link_bitfield, direction) VALUES ($1, $2, $3, $4, $5)`,
			r.SrcAddr.String(), r.DstAddr.String(), r.Timestamp(), r.LinkBitfield, r.DirBitfield,
		)
		if err != nil {
			w.logger.Warn("audit: failed to insert record", "error", err)
			continue
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		w.logger.Error("audit: failed to commit batch", "error", err)
		return
	}

	w.mu.Lock()
	w.written += uint64(written)
	w.mu.Unlock()
}
