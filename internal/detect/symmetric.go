// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package detect

import (
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/symmetry"
)

// Symmetric implements the direction-gated symmetric-routing filter:
// outbound records teach the witness map, inbound records check
// against it.
type Symmetric struct {
	v4, v6         *symmetry.Map
	rewriteWindow  uint32
	swapIPv6Halves bool
}

// NewSymmetric builds a Symmetric filter. swapIPv6Halves compensates
// for an upstream record-layout endianness quirk; consumers of a
// corrected layout should pass false.
func NewSymmetric(v4, v6 *symmetry.Map, rewriteWindow uint32, swapIPv6Halves bool) *Symmetric {
	return &Symmetric{v4: v4, v6: v6, rewriteWindow: rewriteWindow, swapIPv6Halves: swapIPv6Halves}
}

// Check learns from outbound records (always returning false) or
// checks inbound records against previously witnessed links,
// returning true only when a witness entry exists and disagrees with
// the record's link.
func (s *Symmetric) Check(r Record) bool {
	src, dst := r.SrcAddr, r.DstAddr
	m := s.v4
	if src.Family() == ipaddr.V6 {
		m = s.v6
		if s.swapIPv6Halves {
			src = src.SwapV6Halves()
			dst = dst.SwapV6Halves()
		}
	}

	if !r.Inbound() {
		m.Learn(dst, r.LinkBitfield, r.Timestamp(), s.rewriteWindow)
		return false
	}

	matched, symmetric := m.Check(src, r.LinkBitfield)
	if !matched {
		return false
	}
	return !symmetric
}
