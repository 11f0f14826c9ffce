// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipaddr

// MaskTable holds the precomputed IPv4 and IPv6 netmasks for every
// possible prefix length, built once at startup and never mutated.
type MaskTable struct {
	v4 [33]uint32
	v6 [129][2]uint64
}

// NewMaskTable builds the full v4 (0..32) and v6 (0..128) mask tables.
func NewMaskTable() *MaskTable {
	t := &MaskTable{}
	t.v4[0] = 0 // explicit: (0xFFFFFFFF << 32) is undefined, not 0xFFFFFFFF
	for l := 1; l <= 32; l++ {
		t.v4[l] = uint32(0xFFFFFFFF << uint(32-l))
	}

	t.v6[0] = [2]uint64{0, 0}
	for l := 1; l <= 128; l++ {
		if l <= 64 {
			t.v6[l] = [2]uint64{^uint64(0) << uint(64-l), 0}
		} else {
			t.v6[l] = [2]uint64{^uint64(0), ^uint64(0) << uint(128-l)}
		}
	}
	return t
}

// V4 returns the IPv4 mask for prefix length l (0..32).
func (t *MaskTable) V4(l int) uint32 { return t.v4[l] }

// V6 returns the IPv6 (high, low) mask words for prefix length l (0..128).
func (t *MaskTable) V6(l int) (hi, lo uint64) {
	m := t.v6[l]
	return m[0], m[1]
}
