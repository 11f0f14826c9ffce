// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package detect wires the prefix, bloom, symmetry, and newflow
// packages into the actual per-record filter chain and run loop.
package detect

import "github.com/jaroslavh/Nemea-Modules/internal/ipaddr"

// Record is the flow record the detector consumes: two addresses, a
// combined-timestamp field, a link bitmask, and a direction flag.
type Record struct {
	SrcAddr      ipaddr.Address
	DstAddr      ipaddr.Address
	First        uint64
	LinkBitfield uint64
	// DirBitfield is 0 for outbound, 1 for inbound.
	DirBitfield uint8
}

// Timestamp returns the record's logical time: the upper 32 bits of
// First, treated as whole seconds.
func (r Record) Timestamp() uint32 { return uint32(r.First >> 32) }

// Inbound reports whether this record's direction flag marks it as an
// inbound flow.
func (r Record) Inbound() bool { return r.DirBitfield == 1 }
