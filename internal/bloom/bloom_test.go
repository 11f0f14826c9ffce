// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package bloom

import "testing"

func TestInsertContains(t *testing.T) {
	f := New(1000, 0.01)
	if f.Contains([]byte("10.0.0.0")) {
		t.Fatal("expected miss before insert")
	}
	f.Insert([]byte("10.0.0.0"))
	if !f.Contains([]byte("10.0.0.0")) {
		t.Fatal("expected hit after insert")
	}
}

func TestClearResetsBits(t *testing.T) {
	f := New(1000, 0.01)
	f.Insert([]byte("203.0.113.0"))
	f.Clear()
	if f.Contains([]byte("203.0.113.0")) {
		t.Fatal("expected miss after clear")
	}
}

func TestParametersScaleWithCardinality(t *testing.T) {
	small := New(1000, 0.01)
	large := New(1000000, 0.01)
	if large.M() <= small.M() {
		t.Fatalf("expected larger filter to have more bits: small=%d large=%d", small.M(), large.M())
	}
}

func TestNoFalseNegatives(t *testing.T) {
	f := New(1000000, 0.01)
	keys := make([][]byte, 0, 500)
	for i := 0; i < 500; i++ {
		key := []byte{byte(i), byte(i >> 8), 'k'}
		keys = append(keys, key)
		f.Insert(key)
	}
	for _, k := range keys {
		if !f.Contains(k) {
			t.Fatalf("false negative for key %v", k)
		}
	}
}
