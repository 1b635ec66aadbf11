package mmdbwriter

import "github.com/pkg/errors"

var (
	// ErrUnknownLength is returned when a caller attempts to encode a
	// container (array or map) whose length was not known in advance. The
	// MMDB format requires length-prefixed containers, so there is no way
	// to backfill this after the fact.
	ErrUnknownLength = errors.New("mmdbwriter: container length must be known before encoding")

	// ErrLengthOutOfRange is returned when a single TLV payload exceeds
	// maxPayloadLength bytes.
	ErrLengthOutOfRange = errors.New("mmdbwriter: value length exceeds the maximum a control byte can express")

	// ErrIntegerOutOfRange is returned when a signed integer does not fit
	// into an int32 on the wire.
	ErrIntegerOutOfRange = errors.New("mmdbwriter: signed integer does not fit in int32")

	// ErrIO wraps a failed write to the caller's sink.
	ErrIO = errors.New("mmdbwriter: write to sink failed")

	// ErrPrefixTooLong is returned when a prefix's mask exceeds the address
	// family's bit width (32 for IPv4, 128 for IPv6).
	ErrPrefixTooLong = errors.New("mmdbwriter: mask length exceeds address width")

	// ErrRecordOverflow is returned when a node's pointer value does not
	// fit in the currently selected record size. This indicates the
	// Database's record-size selection is out of date relative to the
	// trie/data section sizes.
	ErrRecordOverflow = errors.New("mmdbwriter: pointer value exceeds the chosen record size")
)

// ioError wraps a sink write failure so that errors.Is(err, ErrIO) succeeds
// while errors.Unwrap still reaches the underlying cause.
type ioError struct {
	cause error
}

func wrapIO(cause error) error {
	if cause == nil {
		return nil
	}
	return &ioError{cause: cause}
}

func (e *ioError) Error() string {
	return errors.Wrap(e.cause, ErrIO.Error()).Error()
}

func (e *ioError) Unwrap() error {
	return e.cause
}

func (e *ioError) Is(target error) bool {
	return target == ErrIO
}
