package mmdbwriter

import (
	"math/bits"
	"net"

	"github.com/pkg/errors"
)

// BitPath is the "produces a finite bit sequence" capability the Trie
// consumes. Prefix and BitSlice both satisfy it; callers with their own
// notion of a path (an arbitrary iterator over address bits, a
// pre-computed mask) need only implement Bits().
type BitPath interface {
	// Bits returns the full left-to-right (MSB-first) bit sequence this
	// path represents. The slice is consumed once by the Trie and is not
	// retained.
	Bits() []bool
}

// BitSlice is a BitPath over an already-materialized bit sequence.
type BitSlice []bool

// Bits implements BitPath.
func (b BitSlice) Bits() []bool {
	return []bool(b)
}

// Prefix is an IP address paired with a mask length, interpreted MSB-first
// as a bit string of that length. Addr must be 4 bytes (IPv4) or 16 bytes
// (IPv6); Mask must not exceed 32 or 128 respectively.
type Prefix struct {
	Addr []byte
	Mask int
}

// NewPrefix builds a Prefix from a net.IP and mask length, normalizing
// 4-in-6 mapped addresses down to 4 bytes so Mask is interpreted against
// the correct address width.
func NewPrefix(addr net.IP, mask int) (Prefix, error) {
	raw := addr.To4()
	width := 32

	if raw == nil {
		raw = addr.To16()
		width = 128

		if raw == nil {
			return Prefix{}, errors.Errorf("mmdbwriter: %q is not a valid IPv4 or IPv6 address", addr.String())
		}
	}

	if mask < 0 || mask > width {
		return Prefix{}, ErrPrefixTooLong
	}

	return Prefix{Addr: raw, Mask: mask}, nil
}

// Bits implements BitPath. Bit i is (Addr[i/8] >> (7 - i%8)) & 1.
func (p Prefix) Bits() []bool {
	out := make([]bool, p.Mask)

	for i := 0; i < p.Mask; i++ {
		byteVal := p.Addr[i/8]
		out[i] = (byteVal>>(7-uint(i%8)))&1 != 0
	}

	return out
}

// PrefixBlock is one CIDR block yielded by BlocksFromCount.
type PrefixBlock struct {
	Addr []byte
	Mask int
}

// IPNet converts the block back to a *net.IPNet for interoperation with
// stdlib networking code.
func (b PrefixBlock) IPNet() *net.IPNet {
	addr := make(net.IP, len(b.Addr))
	copy(addr, b.Addr)

	return &net.IPNet{
		IP:   addr,
		Mask: net.CIDRMask(b.Mask, len(b.Addr)*8),
	}
}

// BlocksFromCount decomposes the address range [start, start+count) into
// the minimal list of aligned CIDR blocks that exactly cover it, in
// ascending address order. start must be 4 or 16 bytes; it is not mutated.
func BlocksFromCount(start []byte, count uint64) []PrefixBlock {
	if count == 0 {
		return nil
	}

	cur := append([]byte(nil), start...)
	widthBits := len(cur) * 8

	var blocks []PrefixBlock

	for count > 0 {
		z := trailingZeroBits(cur)
		s := z
		if lg := log2Floor(count); lg < s {
			s = lg
		}

		block := PrefixBlock{
			Addr: append([]byte(nil), cur...),
			Mask: widthBits - s,
		}
		blocks = append(blocks, block)

		advance(cur, s)
		count -= uint64(1) << uint(s)
	}

	return blocks
}

// trailingZeroBits counts trailing zero bits in b, treating b as a
// big-endian bit string: "trailing" means the least-significant bit
// position, i.e. scanning from the last byte backward.
func trailingZeroBits(b []byte) int {
	count := 0

	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == 0 {
			count += 8
			continue
		}

		count += bits.TrailingZeros8(b[i])
		break
	}

	return count
}

// log2Floor returns floor(log2(n)) for n > 0.
func log2Floor(n uint64) int {
	return bits.Len64(n) - 1
}

// advance adds 2^s to the big-endian byte string b in place. Carries
// across byte boundaries; if the addition overflows the address space,
// the high byte wraps to zero and advancement stops there (the caller's
// loop is expected to terminate via its count budget at that point).
func advance(b []byte, s int) {
	byteIdx := len(b) - s/8 - 1
	bitIdx := uint(s % 8)

	for {
		inc := byte(1) << bitIdx

		if b[byteIdx] <= 0xFF-inc {
			b[byteIdx] += inc
			return
		}

		b[byteIdx] = 0

		if byteIdx == 0 {
			return
		}

		byteIdx--
		bitIdx = 0
	}
}

