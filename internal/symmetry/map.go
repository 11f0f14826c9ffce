// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package symmetry implements the per-destination ingress-link witness
// map the symmetric-routing filter learns from and checks against.
package symmetry

import (
	"sync"

	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

// Entry records the OR of every ingress link witnessed for an
// aggregated destination, and the last time it was updated.
type Entry struct {
	LinkMask uint64
	LastSeen uint32
}

// Store is an optional durable backing tier for the symmetry map, so
// witnessed links survive a process restart. A nil Store means
// pure in-memory operation.
type Store interface {
	Get(key ipaddr.Address) (Entry, bool)
	Set(key ipaddr.Address, e Entry)
}

// Map is the in-memory link-witness map keyed by aggregated address.
// It grows monotonically unless entries are rewritten by Learn when
// the rewrite window has elapsed.
type Map struct {
	ops     ipaddr.Ops
	mu      sync.Mutex
	entries map[ipaddr.Address]Entry
	store   Store
}

// New creates an empty Map for the given family, optionally backed by
// store for cross-restart persistence.
func New(ops ipaddr.Ops, store Store) *Map {
	return &Map{
		ops:     ops,
		entries: make(map[ipaddr.Address]Entry),
		store:   store,
	}
}

func (m *Map) get(key ipaddr.Address) (Entry, bool) {
	if e, ok := m.entries[key]; ok {
		return e, true
	}
	if m.store != nil {
		if e, ok := m.store.Get(key); ok {
			m.entries[key] = e
			return e, true
		}
	}
	return Entry{}, false
}

func (m *Map) set(key ipaddr.Address, e Entry) {
	m.entries[key] = e
	if m.store != nil {
		m.store.Set(key, e)
	}
}

// Learn records an outbound flow's link and timestamp for the
// aggregated destination key. If an entry exists and was last
// touched less than rewriteWindow seconds ago (by unsigned
// subtraction — an out-of-order timestamp older than the stored
// value wraps around and forces a fresh entry, matching the original
// detector's arithmetic), the link mask is OR-ed in and last-seen is
// bumped; otherwise a new entry replaces it.
func (m *Map) Learn(dst ipaddr.Address, link uint64, ts uint32, rewriteWindow uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.ops.Aggregate(dst)
	entry, ok := m.get(key)
	if ok && (ts-entry.LastSeen) < rewriteWindow {
		entry.LinkMask |= link
		entry.LastSeen = ts
	} else {
		entry = Entry{LinkMask: link, LastSeen: ts}
	}
	m.set(key, entry)
}

// Check reports whether an inbound flow's link is consistent with the
// links previously witnessed for the aggregated source key. It
// returns (matched=false) when there is no prior entry — insufficient
// evidence, not a verdict — and (matched=true, symmetric) otherwise.
func (m *Map) Check(src ipaddr.Address, link uint64) (matched, symmetric bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.ops.Aggregate(src)
	entry, ok := m.get(key)
	if !ok {
		return false, false
	}
	return true, entry.LinkMask&link != 0
}

// Len returns the number of entries currently held in memory.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
