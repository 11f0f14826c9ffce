// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package audit

import (
	"testing"

	"github.com/jaroslavh/Nemea-Modules/internal/detect"
)

// TestRecordDropsOnFullQueue exercises the bounded-queue overflow
// path without a real database connection.
func TestRecordDropsOnFullQueue(t *testing.T) {
	w := &Writer{queue: make(chan detect.Record, 2)}

	w.Record(detect.Record{})
	w.Record(detect.Record{})
	w.Record(detect.Record{}) // queue full, dropped

	_, dropped := w.Stats()
	if dropped != 1 {
		t.Fatalf("expected 1 dropped record, got %d", dropped)
	}
	if len(w.queue) != 2 {
		t.Fatalf("expected queue to hold 2 records, got %d", len(w.queue))
	}
}

type countingDropCounter struct{ n int }

func (c *countingDropCounter) IncAuditDropped() { c.n++ }

// TestRecordNotifiesDropCounter confirms an overflow drop is reported
// to an external counter (metrics.Registry in production), not just
// tracked internally.
func TestRecordNotifiesDropCounter(t *testing.T) {
	drops := &countingDropCounter{}
	w := &Writer{queue: make(chan detect.Record, 1), drops: drops}

	w.Record(detect.Record{})
	w.Record(detect.Record{}) // queue full, dropped

	if drops.n != 1 {
		t.Fatalf("expected drop counter to be notified once, got %d", drops.n)
	}
}
