// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package symmetry

import (
	"testing"

	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

func addr(t *testing.T, s string) ipaddr.Address {
	t.Helper()
	a, ok := ipaddr.Parse(s)
	if !ok {
		t.Fatalf("failed to parse %s", s)
	}
	return a
}

func TestLearnAccumulatesLinkMask(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	m := New(ipaddr.NewOps(ipaddr.V4, masks), nil)

	dst := addr(t, "203.0.113.1")
	m.Learn(dst, 0b0010, 100, 45)
	m.Learn(dst, 0b0100, 110, 45)
	m.Learn(dst, 0b1000, 120, 45)

	matched, symmetric := m.Check(addr(t, "203.0.113.1"), 0b1000)
	if !matched {
		t.Fatal("expected an entry to exist")
	}
	if !symmetric {
		t.Fatal("expected symmetric route (link 0b1000 was witnessed)")
	}
}

func TestCheckNoEntryIsInsufficientEvidence(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	m := New(ipaddr.NewOps(ipaddr.V4, masks), nil)

	matched, _ := m.Check(addr(t, "198.51.100.9"), 0b0001)
	if matched {
		t.Fatal("expected no entry for an unseen destination")
	}
}

func TestCheckAsymmetricLink(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	m := New(ipaddr.NewOps(ipaddr.V4, masks), nil)

	m.Learn(addr(t, "203.0.113.1"), 0b0010, 100, 45)

	matched, symmetric := m.Check(addr(t, "203.0.113.1"), 0b0100)
	if !matched {
		t.Fatal("expected an entry to exist")
	}
	if symmetric {
		t.Fatal("expected asymmetric route: link 0b0100 was never witnessed")
	}
}

func TestLearnOutsideRewriteWindowReplacesEntry(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	m := New(ipaddr.NewOps(ipaddr.V4, masks), nil)

	dst := addr(t, "203.0.113.1")
	m.Learn(dst, 0b0010, 100, 45)
	m.Learn(dst, 0b0100, 200, 45) // 100s later, outside a 45s window

	_, symmetric := m.Check(addr(t, "203.0.113.1"), 0b0010)
	if symmetric {
		t.Fatal("expected the stale link mask to have been replaced, not OR-ed")
	}
}

func TestAggregationKeyIsPerSlash24(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	m := New(ipaddr.NewOps(ipaddr.V4, masks), nil)

	m.Learn(addr(t, "203.0.113.1"), 0b0001, 100, 45)

	matched, symmetric := m.Check(addr(t, "203.0.113.254"), 0b0001)
	if !matched || !symmetric {
		t.Fatal("expected the /24 aggregation to cover a different host in the same block")
	}
}
