// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package newflow implements the per-watched-prefix new-flow counter:
// a double-buffered pair of Bloom filters that caps the number of
// distinct aggregated sources seen per prefix over a rotating window.
package newflow

import (
	"sync"

	"github.com/jaroslavh/Nemea-Modules/internal/bloom"
)

// DefaultProjectedCardinality and DefaultFalsePositiveRate are the
// Bloom parameters used for every watched-prefix bucket.
const (
	DefaultProjectedCardinality = 1_000_000
	DefaultFalsePositiveRate    = 0.01
	// DefaultThreshold is the number of distinct sources tolerated per
	// watched prefix before a flow is flagged.
	DefaultThreshold = 1000
	// DefaultSwapInterval is BF_SWAP_TIME: how long, in logical
	// seconds derived from record timestamps, a rotation pair stays
	// active before its role swaps with the learning side.
	DefaultSwapInterval = uint32(3600)
)

// Bucket pairs a Bloom filter with the distinct-source count it backs.
type Bucket struct {
	Bloom *bloom.Filter
	Count uint64
}

// Table holds one active/learning Bucket pair per watched prefix for
// a single address family. A Table is safe for concurrent use: Check
// is called from the record-processing loop while Count/Len may be
// polled from a metrics sampler running on another goroutine.
type Table struct {
	n            uint64
	p            float64
	threshold    uint64
	swapInterval uint32
	lastSwap     uint32

	mu        sync.Mutex
	pairs     [2][]*Bucket
	activeIdx int
}

// NewTable allocates a Table with numPrefixes buckets per side.
func NewTable(numPrefixes int, threshold uint64, swapInterval uint32) *Table {
	t := &Table{
		n:            DefaultProjectedCardinality,
		p:            DefaultFalsePositiveRate,
		threshold:    threshold,
		swapInterval: swapInterval,
	}
	t.pairs[0] = t.newBuckets(numPrefixes)
	t.pairs[1] = t.newBuckets(numPrefixes)
	return t
}

func (t *Table) newBuckets(n int) []*Bucket {
	out := make([]*Bucket, n)
	for i := range out {
		out[i] = &Bucket{Bloom: bloom.New(t.n, t.p)}
	}
	return out
}

func (t *Table) active() []*Bucket   { return t.pairs[t.activeIdx] }
func (t *Table) learning() []*Bucket { return t.pairs[1-t.activeIdx] }

// rotate swaps active/learning roles and clears the new learning side
// (the side that was active before the swap) once BF_SWAP_TIME has
// elapsed in logical time. Rotation is driven purely by record
// arrivals via now — there is no internal timer.
func (t *Table) rotate(now uint32) {
	if now-t.lastSwap <= t.swapInterval {
		return
	}
	t.activeIdx = 1 - t.activeIdx
	for _, b := range t.learning() {
		b.Bloom.Clear()
		b.Count = 0
	}
	t.lastSwap = now
}

// Check probes and updates the bucket at index i for aggregated
// source key. It returns true when the active bucket's distinct-source
// count exceeds the configured threshold after this insertion.
//
// A key already present in the active bucket is treated as already
// counted (NEGATIVE) even though the Bloom filter may occasionally
// answer "present" for a key that was never inserted; that
// false-positive is tolerated by design and causes at most a small
// under-count, never a spurious flag.
func (t *Table) Check(i int, key []byte, now uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rotate(now)

	active := t.active()[i]
	if active.Bloom.Contains(key) {
		return false
	}

	active.Bloom.Insert(key)
	t.learning()[i].Bloom.Insert(key)
	active.Count++
	t.learning()[i].Count++

	return active.Count > t.threshold
}

// Count returns the active bucket's current distinct-source count for
// index i, for metrics/inspection.
func (t *Table) Count(i int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active()[i].Count
}

// Len returns the number of watched-prefix buckets this table holds
// per side, for iterating Count over every index.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pairs[0])
}

// Close clears every bucket in both the active and learning arrays
// exactly once each. The original detector this counter is modeled on
// cleared one side of the pair twice and never cleared the other;
// this iterates pairs[0] and pairs[1] as the two distinct arrays they
// are, so each bucket is cleared exactly once regardless of which
// side currently plays "active".
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, side := range t.pairs {
		for _, b := range side {
			b.Bloom.Clear()
			b.Count = 0
		}
	}
}
