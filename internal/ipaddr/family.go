// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipaddr

// Ops is the small per-family capability set that lets the prefix
// set, symmetry map, and new-flow counter share a single
// implementation instead of duplicating themselves for IPv4 and IPv6,
// per the generic-filter redesign suggested for this detector.
type Ops interface {
	Family() Family

	// Mask returns addr with all bits beyond prefix length l zeroed,
	// using the full family width (4 bytes for v4, 16 for v6).
	Mask(addr Address, l int) Address

	// Compare orders two addresses by their full family-width byte
	// representation, for prefix-set binary search.
	Compare(a, b Address) int

	// Aggregate collapses addr to its aggregation key (v4 /24, v6 /64)
	// for the symmetry map and new-flow Bloom key.
	Aggregate(addr Address) Address
}

type v4Ops struct{ masks *MaskTable }
type v6Ops struct{ masks *MaskTable }

// NewOps returns the Ops implementation for family f using masks.
func NewOps(f Family, masks *MaskTable) Ops {
	if f == V4 {
		return v4Ops{masks: masks}
	}
	return v6Ops{masks: masks}
}

func (v4Ops) Family() Family { return V4 }

func (o v4Ops) Mask(addr Address, l int) Address {
	return addr.WithV4Lane(addr.V4Lane() & o.masks.V4(l))
}

func (v4Ops) Compare(a, b Address) int { return CompareV4(a, b) }

func (o v4Ops) Aggregate(addr Address) Address {
	return o.Mask(addr, 24)
}

func (v6Ops) Family() Family { return V6 }

func (o v6Ops) Mask(addr Address, l int) Address {
	hi, lo := o.masks.V6(l)
	a := addr.UI64()
	return addr.WithUI64(a[0]&hi, a[1]&lo)
}

func (v6Ops) Compare(a, b Address) int { return CompareV6(a, b) }

func (o v6Ops) Aggregate(addr Address) Address {
	return o.Mask(addr, 64)
}
