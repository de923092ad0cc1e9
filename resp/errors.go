package resp

import (
	"fmt"

	"github.com/joomcode/errorx"
)

// Errors is the namespace for every error this package can produce.
// It replaces the three overlapping, hand-rolled error representations
// the rest of the pack accumulated over time with the single errorx-based
// one the connection layer already depended on.
var Errors = errorx.NewNamespace("resp")

// DecodeErrors groups malformed-wire-frame failures (spec §7 DecodeError).
var DecodeErrors = Errors.NewSubNamespace("decode")

var (
	// BadTypeByte is returned when a frame's first byte is not one of
	// '+', '-', ':', '$', '*'.
	BadTypeByte = DecodeErrors.NewType("bad_type_byte")
	// BadNumber is returned when an Integer line, or a Bulk/Array length,
	// fails to parse as a base-10 signed integer.
	BadNumber = DecodeErrors.NewType("bad_number")
	// MessageTooLong is returned when a header line exceeds the
	// delimited scanner's length cap before the delimiter is found.
	MessageTooLong = DecodeErrors.NewType("message_too_long")
	// BadBulkTerminator is returned when a bulk string's declared
	// length is not followed by the exact two-byte CRLF sequence.
	BadBulkTerminator = DecodeErrors.NewType("bad_bulk_terminator")
)

// EncodeErrors groups encode-side failures (spec §7 EncodeError).
var EncodeErrors = Errors.NewSubNamespace("encode")

// UnknownVariant is returned when Encode is asked to encode a Value whose
// Kind is outside the six defined RESP v1 variants.
var UnknownVariant = EncodeErrors.NewType("unknown_variant")

// PropLine carries the offending number bytes on BadNumber errors.
var PropLine = errorx.RegisterProperty("line")

func errBadTypeByte(b byte) error {
	return BadTypeByte.New(fmt.Sprintf("unknown RESP type byte %q", b))
}

func errBadNumber(buf []byte) error {
	return BadNumber.New(fmt.Sprintf("malformed integer %q", buf)).
		WithProperty(PropLine, append([]byte(nil), buf...))
}

func errMessageTooLong() error {
	return MessageTooLong.New(fmt.Sprintf("header line exceeds %d bytes without a delimiter", maxLineLen))
}

func errBadBulkTerminator() error {
	return BadBulkTerminator.New("bulk string payload not followed by CRLF")
}

func errUnknownVariant(k Kind) error {
	return UnknownVariant.New(fmt.Sprintf("cannot encode value of kind %s", k))
}
