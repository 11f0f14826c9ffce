// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package detect

import (
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/prefix"
)

// Bogon tests a record's source address against a bogon prefix set,
// and additionally against the operator's own ("specific") networks
// on inbound records only — a source claiming to be inside the
// operator's own space on an inbound flow is spoofed.
type Bogon struct {
	v4, v6                 *prefix.Set
	specificV4, specificV6 *prefix.Set
}

// NewBogon builds a Bogon filter. Either specific set may be nil,
// disabling that half of the check.
func NewBogon(v4, v6, specificV4, specificV6 *prefix.Set) *Bogon {
	return &Bogon{v4: v4, v6: v6, specificV4: specificV4, specificV6: specificV6}
}

// Check returns true (POSITIVE) when the record's source address
// matches a bogon prefix, or matches the operator's own networks
// while inbound. It never mutates state — running it twice on the
// same record yields the same verdict.
func (b *Bogon) Check(r Record) bool {
	switch r.SrcAddr.Family() {
	case ipaddr.V4:
		if _, ok := b.v4.Lookup(r.SrcAddr); ok {
			return true
		}
		if r.Inbound() && b.specificV4 != nil {
			if _, ok := b.specificV4.Lookup(r.SrcAddr); ok {
				return true
			}
		}
	case ipaddr.V6:
		if _, ok := b.v6.Lookup(r.SrcAddr); ok {
			return true
		}
		if r.Inbound() && b.specificV6 != nil {
			if _, ok := b.specificV6.Lookup(r.SrcAddr); ok {
				return true
			}
		}
	}
	return false
}
