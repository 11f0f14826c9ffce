// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package prefix

import (
	"strings"
	"testing"

	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

func mustAddr(t *testing.T, s string) ipaddr.Address {
	t.Helper()
	a, ok := ipaddr.Parse(s)
	if !ok {
		t.Fatalf("failed to parse %s", s)
	}
	return a
}

func TestLookupV4Hit(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	ops := ipaddr.NewOps(ipaddr.V4, masks)
	set := New(ops, masks, []Entry{
		{Addr: mustAddr(t, "10.0.0.0"), Length: 8},
		{Addr: mustAddr(t, "172.16.0.0"), Length: 12},
		{Addr: mustAddr(t, "192.168.0.0"), Length: 16},
	})

	idx, ok := set.Lookup(mustAddr(t, "10.1.2.3"))
	if !ok {
		t.Fatal("expected match for 10.1.2.3")
	}
	if set.Entries()[idx].Length != 8 {
		t.Fatalf("expected match on /8 entry, got length %d", set.Entries()[idx].Length)
	}
}

func TestLookupV4Miss(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	ops := ipaddr.NewOps(ipaddr.V4, masks)
	set := New(ops, masks, []Entry{
		{Addr: mustAddr(t, "10.0.0.0"), Length: 8},
	})

	if _, ok := set.Lookup(mustAddr(t, "8.8.8.8")); ok {
		t.Fatal("expected miss for 8.8.8.8")
	}
}

func TestLookupV6Hit(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	ops := ipaddr.NewOps(ipaddr.V6, masks)
	set := New(ops, masks, []Entry{
		{Addr: mustAddr(t, "2001:db8::"), Length: 32},
	})

	idx, ok := set.Lookup(mustAddr(t, "2001:db8:1::1"))
	if !ok {
		t.Fatal("expected match for 2001:db8:1::1")
	}
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
}

func TestSetResortIsNoOp(t *testing.T) {
	masks := ipaddr.NewMaskTable()
	ops := ipaddr.NewOps(ipaddr.V4, masks)
	entries := []Entry{
		{Addr: mustAddr(t, "192.168.0.0"), Length: 16},
		{Addr: mustAddr(t, "10.0.0.0"), Length: 8},
		{Addr: mustAddr(t, "172.16.0.0"), Length: 12},
	}
	first := New(ops, masks, entries)
	second := New(ops, masks, first.Entries())
	for i := range first.Entries() {
		if first.Entries()[i] != second.Entries()[i] {
			t.Fatalf("re-sort mutated order at index %d", i)
		}
	}
}

func TestLoadSkipsUnparseableLines(t *testing.T) {
	data := `10.0.0.0/8
not-an-ip/24
172.16.0.0/12

2001:db8::/32
`
	v4, v6, err := Load(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v4) != 2 {
		t.Fatalf("expected 2 v4 entries, got %d", len(v4))
	}
	if len(v6) != 1 {
		t.Fatalf("expected 1 v6 entry, got %d", len(v6))
	}
}

func TestLoadStripsWhitespaceInAddress(t *testing.T) {
	v4, _, err := Load(strings.NewReader("10 .0. 0.0/8\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v4) != 1 {
		t.Fatalf("expected whitespace-laden address to still parse, got %d entries", len(v4))
	}
}

// TestLoadDefaultsUnparseableLengthToZero matches strtoul's behavior in
// the original loader: an address whose length field fails to parse
// still yields an entry, at length 0, rather than being dropped.
func TestLoadDefaultsUnparseableLengthToZero(t *testing.T) {
	v4, _, err := Load(strings.NewReader("10.0.0.0/not-a-number\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v4) != 1 {
		t.Fatalf("expected 1 entry despite unparseable length, got %d", len(v4))
	}
	if v4[0].Length != 0 {
		t.Fatalf("expected length to default to 0, got %d", v4[0].Length)
	}
}
