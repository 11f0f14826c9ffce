// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package prefix implements the sorted, immutable prefix set and the
// fixed-length binary search used by every filter that needs a
// bit-exact longest-fixed-length prefix membership test.
package prefix

import (
	"sort"

	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

// Entry is a single loaded network prefix.
type Entry struct {
	Addr   ipaddr.Address
	Length int
}

// Set is a sorted, read-only list of prefixes for one address family.
// Once built with New, it is never mutated again — matching the
// "loaded once, immutable thereafter" prefix-set lifecycle.
type Set struct {
	ops     ipaddr.Ops
	masks   *ipaddr.MaskTable
	entries []Entry
}

// New builds a Set from unsorted entries, sorting them per the byte
// comparator Ops.Compare uses for the binary search below. A re-sort
// of an already-loaded Set is a no-op (prefix-sort stability).
func New(ops ipaddr.Ops, masks *ipaddr.MaskTable, entries []Entry) *Set {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ops.Compare(sorted[i].Addr, sorted[j].Addr) < 0
	})
	return &Set{ops: ops, masks: masks, entries: sorted}
}

// Len returns the number of prefixes in the set.
func (s *Set) Len() int { return len(s.entries) }

// Entries returns the sorted, read-only backing entries.
func (s *Set) Entries() []Entry { return s.entries }

// Lookup performs the invariant-maintaining binary search of an
// address against the sorted prefix set: it returns the index i such
// that addr masked to entries[i].Length equals entries[i].Addr, or
// (-1, false) on a miss. When more than one loaded prefix would match
// addr, the entry found is whichever the binary search's midpoint
// equality check lands on first — this is the established behavior
// and is preserved unchanged from the original detector.
func (s *Set) Lookup(addr ipaddr.Address) (int, bool) {
	begin, end := 0, len(s.entries)-1
	for begin <= end {
		mid := (begin + end) >> 1
		e := s.entries[mid]
		masked := s.ops.Mask(addr, e.Length)
		cmp := s.ops.Compare(e.Addr, masked)
		switch {
		case cmp < 0:
			begin = mid + 1
		case cmp > 0:
			end = mid - 1
		default:
			return mid, true
		}
	}
	return -1, false
}
