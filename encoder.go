package mmdbwriter

import "io"

// maxPayloadLength is the largest single TLV payload a control byte can
// express: 65821 + 0xFFFFFF, the top of the three-length-extension-byte
// class.
const maxPayloadLength = 16843036

// encoder writes Encodable values to a sink as MMDB TLVs. It is deliberately
// thin: nothing is buffered beyond what the sink itself buffers, so an
// encoder can sit directly on a DataStore's growing byte slice or on the
// caller's final output file.
type encoder struct {
	w io.Writer
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: w}
}

// encode writes v's full control-byte-prefixed TLV representation.
func (e *encoder) encode(v Encodable) error {
	return v.encodeTo(e)
}

// writeRaw writes payload bytes verbatim, with no framing.
func (e *encoder) writeRaw(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	if _, err := e.w.Write(b); err != nil {
		return wrapIO(err)
	}

	return nil
}

// writeControl writes a value's control byte sequence: the first byte
// (type tag for tag<=7, else length class only), any length-extension
// bytes, and — for tag>7 — the extended type byte, in that order. The
// extended type byte is written after the length extension, not before —
// this ordering applies to every type tag above 7. The golden-vector tests
// include no case with both an extended type byte and length-extension
// bytes, so they do not pin this ordering down.
func (e *encoder) writeControl(tag typeTag, length int) error {
	if length < 0 {
		return ErrUnknownLength
	}

	if length > maxPayloadLength {
		return ErrLengthOutOfRange
	}

	var first byte
	var extended byte
	hasExtended := false

	if tag <= 7 {
		first = byte(tag) << 5
	} else {
		extended = byte(tag) - 7
		hasExtended = true
	}

	var extra []byte

	switch {
	case length < 29:
		first |= byte(length)
	case length < 285:
		first |= 29
		extra = []byte{byte(length - 29)}
	case length < 65821:
		first |= 30
		v := length - 285
		extra = []byte{byte(v >> 8), byte(v)}
	default:
		first |= 31
		v := length - 65821
		extra = []byte{byte(v >> 16), byte(v >> 8), byte(v)}
	}

	if err := e.writeRaw([]byte{first}); err != nil {
		return err
	}

	if err := e.writeRaw(extra); err != nil {
		return err
	}

	if hasExtended {
		if err := e.writeRaw([]byte{extended}); err != nil {
			return err
		}
	}

	return nil
}
