// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package detect

import (
	"github.com/jaroslavh/Nemea-Modules/internal/clock"
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/newflow"
	"github.com/jaroslavh/Nemea-Modules/internal/prefix"
)

// NewFlow caps the number of distinct aggregated sources seen per
// watched prefix. The watched-prefix lookup key is asymmetric across
// families as originally observed: v4 looks the prefix up by
// destination, v6 by source. This is preserved rather than unified,
// since it is unclear which family's behavior was intended and tests
// pin down the observed asymmetry.
type NewFlow struct {
	watchedV4, watchedV6 *prefix.Set
	tableV4, tableV6     *newflow.Table
	opsV4, opsV6         ipaddr.Ops
	clock                *clock.Logical
}

// NewNewFlow builds a NewFlow filter sharing clk with the rest of the
// detector so rotation stays driven by record arrivals only.
func NewNewFlow(watchedV4, watchedV6 *prefix.Set, tableV4, tableV6 *newflow.Table, opsV4, opsV6 ipaddr.Ops, clk *clock.Logical) *NewFlow {
	return &NewFlow{
		watchedV4: watchedV4, watchedV6: watchedV6,
		tableV4: tableV4, tableV6: tableV6,
		opsV4: opsV4, opsV6: opsV6,
		clock: clk,
	}
}

// Check locates the watched-prefix bucket for the record and reports
// whether the newly-inserted aggregated source pushes that bucket's
// distinct-source count past its threshold.
func (n *NewFlow) Check(r Record) bool {
	n.clock.Advance(r.Timestamp())
	now := n.clock.Now()

	switch r.SrcAddr.Family() {
	case ipaddr.V4:
		idx, ok := n.watchedV4.Lookup(r.DstAddr)
		if !ok {
			return false
		}
		agg := n.opsV4.Aggregate(r.SrcAddr)
		return n.tableV4.Check(idx, []byte(agg.String()), now)
	case ipaddr.V6:
		idx, ok := n.watchedV6.Lookup(r.SrcAddr)
		if !ok {
			return false
		}
		agg := n.opsV6.Aggregate(r.SrcAddr)
		return n.tableV6.Check(idx, []byte(agg.String()), now)
	}
	return false
}
