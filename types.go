package mmdbwriter

import "math"

// typeTag is the integer type code carried in the high bits of a control
// byte. Codes 1 (Pointer), 12 (Container), and 13 (EndMarker) are reserved
// for the on-disk trie/data-section framing and are never emitted directly
// by Encodable values.
type typeTag uint8

const (
	typePointer   typeTag = 1
	typeString    typeTag = 2
	typeDouble    typeTag = 3
	typeBytes     typeTag = 4
	typeUint16    typeTag = 5
	typeUint32    typeTag = 6
	typeMap       typeTag = 7
	typeInt32     typeTag = 8
	typeUint64    typeTag = 9
	typeUint128   typeTag = 10
	typeArray     typeTag = 11
	typeContainer typeTag = 12
	typeEndMarker typeTag = 13
	typeBoolean   typeTag = 14
	typeFloat     typeTag = 15
)

// Encodable is any value the ValueEncoder knows how to write as a
// self-describing MMDB TLV. The sum of built-in implementations below
// covers every type tag the format defines; callers needing a custom
// record shape compose them with Map and Array.
type Encodable interface {
	encodeTo(e *encoder) error
}

// Bool encodes as Boolean(false|true). Per the format's convention, an
// optional/absent value is written as Bool(false) and a unit-like value
// with no payload is written as Bool(true) — callers needing either
// should just use Bool directly rather than a dedicated wrapper type.
type Bool bool

func (v Bool) encodeTo(e *encoder) error {
	length := 0
	if v {
		length = 1
	}
	return e.writeControl(typeBoolean, length)
}

// String encodes UTF-8 text. Length is counted in bytes, not runes.
type String string

func (v String) encodeTo(e *encoder) error {
	b := []byte(v)
	if err := e.writeControl(typeString, len(b)); err != nil {
		return err
	}
	return e.writeRaw(b)
}

// Bytes encodes a raw byte sequence.
type Bytes []byte

func (v Bytes) encodeTo(e *encoder) error {
	if err := e.writeControl(typeBytes, len(v)); err != nil {
		return err
	}
	return e.writeRaw(v)
}

// Uint16 encodes as a big-endian unsigned integer with leading zero bytes
// stripped; the value 0 therefore encodes with a zero-length payload.
type Uint16 uint16

func (v Uint16) encodeTo(e *encoder) error {
	return writeUint(e, typeUint16, uint64(v), 2)
}

// Uint32 encodes like Uint16, widened to 32 bits.
type Uint32 uint32

func (v Uint32) encodeTo(e *encoder) error {
	return writeUint(e, typeUint32, uint64(v), 4)
}

// Uint64 encodes like Uint16, widened to 64 bits.
type Uint64 uint64

func (v Uint64) encodeTo(e *encoder) error {
	return writeUint(e, typeUint64, uint64(v), 8)
}

// Uint128 encodes a 128-bit unsigned integer as two big-endian halves (Hi
// holds the upper 64 bits). Leading zero bytes of the combined 16-byte
// representation are stripped, same as the narrower unsigned types.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

func (v Uint128) encodeTo(e *encoder) error {
	var buf [16]byte
	putUint64BE(buf[0:8], v.Hi)
	putUint64BE(buf[8:16], v.Lo)
	payload := stripLeadingZeros(buf[:])

	if err := e.writeControl(typeUint128, len(payload)); err != nil {
		return err
	}

	return e.writeRaw(payload)
}

// Int32 encodes a two's-complement, big-endian 32-bit signed integer. The
// payload is always exactly 4 bytes, even for zero.
type Int32 int32

func (v Int32) encodeTo(e *encoder) error {
	if err := e.writeControl(typeInt32, 4); err != nil {
		return err
	}

	var buf [4]byte
	putUint32BE(buf[:], uint32(v))

	return e.writeRaw(buf[:])
}

// NewInt32 narrows a 64-bit signed value to the wire's Int32 type,
// returning ErrIntegerOutOfRange if it does not fit. Smaller signed widths
// (int8, int16) always fit and can be converted directly with Int32(v).
func NewInt32(v int64) (Int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, ErrIntegerOutOfRange
	}

	return Int32(v), nil
}

// Float32 encodes 4-byte IEEE-754 big-endian.
type Float32 float32

func (v Float32) encodeTo(e *encoder) error {
	if err := e.writeControl(typeFloat, 4); err != nil {
		return err
	}

	var buf [4]byte
	putUint32BE(buf[:], math.Float32bits(float32(v)))

	return e.writeRaw(buf[:])
}

// Float64 encodes 8-byte IEEE-754 big-endian.
type Float64 float64

func (v Float64) encodeTo(e *encoder) error {
	if err := e.writeControl(typeDouble, 8); err != nil {
		return err
	}

	var buf [8]byte
	putUint64BE(buf[:], math.Float64bits(float64(v)))

	return e.writeRaw(buf[:])
}

// Array encodes an ordered sequence of values. Its length is always known
// (it is a Go slice), so it is written eagerly rather than streamed.
type Array []Encodable

func (v Array) encodeTo(e *encoder) error {
	if err := e.writeControl(typeArray, len(v)); err != nil {
		return err
	}

	for _, elem := range v {
		if err := e.encode(elem); err != nil {
			return err
		}
	}

	return nil
}

// Map encodes a set of key-value entries, with keys always written as
// String. Iteration order over a Go map is unspecified and the format does
// not require entries to be ordered, so readers must not rely on insertion
// order.
type Map map[string]Encodable

func (v Map) encodeTo(e *encoder) error {
	if err := e.writeControl(typeMap, len(v)); err != nil {
		return err
	}

	for k, val := range v {
		if err := e.encode(String(k)); err != nil {
			return err
		}

		if err := e.encode(val); err != nil {
			return err
		}
	}

	return nil
}

func writeUint(e *encoder, tag typeTag, v uint64, maxWidth int) error {
	var buf [8]byte
	putUint64BE(buf[:], v)
	payload := stripLeadingZeros(buf[8-maxWidth:])

	if err := e.writeControl(tag, len(payload)); err != nil {
		return err
	}

	return e.writeRaw(payload)
}

func stripLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

func putUint32BE(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}

func putUint64BE(dst []byte, v uint64) {
	dst[0] = byte(v >> 56)
	dst[1] = byte(v >> 48)
	dst[2] = byte(v >> 40)
	dst[3] = byte(v >> 32)
	dst[4] = byte(v >> 24)
	dst[5] = byte(v >> 16)
	dst[6] = byte(v >> 8)
	dst[7] = byte(v)
}
