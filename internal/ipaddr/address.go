// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package ipaddr implements the detector's 128-bit address value type
// and the per-family capability set (mask, aggregate, compare) that
// lets the rest of the detector avoid duplicating filter logic per
// address family.
package ipaddr

import (
	"bytes"
	"encoding/binary"
	"net"
)

// Family identifies whether an Address holds an IPv4 or IPv6 value.
type Family int

const (
	V4 Family = iota
	V6
)

// v4Lane is the byte offset of the embedded IPv4 address within the
// 16-byte storage, matching the original C union's ui32[2] lane.
const v4Lane = 8

// Address is a 128-bit value with three aliasing views over the same
// 16 bytes, stored in network byte order (most-significant byte
// first), mirroring the original ip_addr_t union: ui32[4], ui64[2],
// and ui8[16] all read the same underlying storage.
type Address struct {
	bytes  [16]byte
	family Family
}

// FromNetIP builds an Address from a net.IP, detecting the family.
// Returns false if ip cannot be parsed as either IPv4 or IPv6.
func FromNetIP(ip net.IP) (Address, bool) {
	if v4 := ip.To4(); v4 != nil {
		var a Address
		a.family = V4
		copy(a.bytes[v4Lane:v4Lane+4], v4)
		return a, true
	}
	if v6 := ip.To16(); v6 != nil {
		var a Address
		a.family = V6
		copy(a.bytes[:], v6)
		return a, true
	}
	return Address{}, false
}

// Parse parses a textual IPv4/IPv6 address, stripping any internal
// whitespace first (matches the original prefix-file parser's
// leniency).
func Parse(s string) (Address, bool) {
	s = stripSpace(s)
	ip := net.ParseIP(s)
	if ip == nil {
		return Address{}, false
	}
	return FromNetIP(ip)
}

func stripSpace(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// Family returns whether this address is IPv4 or IPv6.
func (a Address) Family() Family { return a.family }

// UI32 returns the four 32-bit lanes (ui32[4] view), most-significant
// byte first within each lane. For a V4 address the value lives in
// lane index 2.
func (a Address) UI32() [4]uint32 {
	var out [4]uint32
	for i := 0; i < 4; i++ {
		out[i] = binary.BigEndian.Uint32(a.bytes[i*4 : i*4+4])
	}
	return out
}

// V4Lane returns the 32-bit IPv4 value (ui32[2] in the original
// layout). Only meaningful when Family() == V4.
func (a Address) V4Lane() uint32 {
	return binary.BigEndian.Uint32(a.bytes[v4Lane : v4Lane+4])
}

// WithV4Lane returns a copy of a with its IPv4 lane replaced.
func (a Address) WithV4Lane(v uint32) Address {
	out := a
	binary.BigEndian.PutUint32(out.bytes[v4Lane:v4Lane+4], v)
	return out
}

// UI64 returns the two 64-bit halves (ui64[2] view).
func (a Address) UI64() [2]uint64 {
	return [2]uint64{
		binary.BigEndian.Uint64(a.bytes[0:8]),
		binary.BigEndian.Uint64(a.bytes[8:16]),
	}
}

// WithUI64 returns a copy of a with both 64-bit halves replaced.
func (a Address) WithUI64(hi, lo uint64) Address {
	out := a
	binary.BigEndian.PutUint64(out.bytes[0:8], hi)
	binary.BigEndian.PutUint64(out.bytes[8:16], lo)
	return out
}

// UI8 returns the raw 16-byte view, most-significant byte first.
func (a Address) UI8() [16]byte { return a.bytes }

// V4Bytes returns the 4-byte slice of the embedded IPv4 lane.
func (a Address) V4Bytes() []byte {
	b := make([]byte, 4)
	copy(b, a.bytes[v4Lane:v4Lane+4])
	return b
}

// CompareV4 lexicographically compares the 4-byte IPv4 lanes of a and b.
func CompareV4(a, b Address) int {
	return bytes.Compare(a.bytes[v4Lane:v4Lane+4], b.bytes[v4Lane:v4Lane+4])
}

// CompareV6 lexicographically compares the full 16-byte storage of a and b.
func CompareV6(a, b Address) int {
	return bytes.Compare(a.bytes[:], b.bytes[:])
}

// SwapV6Halves returns a copy of a with its two 64-bit halves
// exchanged, compensating for the upstream record-layout endianness
// quirk documented in the symmetric-route filter.
func (a Address) SwapV6Halves() Address {
	hi, lo := a.UI64()[0], a.UI64()[1]
	return a.WithUI64(lo, hi)
}

// String renders the address in its canonical textual form.
func (a Address) String() string {
	if a.family == V4 {
		return net.IP(a.bytes[v4Lane : v4Lane+4]).String()
	}
	return net.IP(a.bytes[:]).String()
}
