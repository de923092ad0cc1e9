// Package resp implements the RESP v1 wire protocol: a tagged-union value
// model, a small set of composable byte-cursor parsers built from it, and
// a streaming decoder/encoder pair built on top of those parsers.
package resp

import "bytes"

// Kind identifies which of the six RESP v1 variants a Value holds.
type Kind uint8

const (
	KindSimple Kind = iota
	KindError
	KindInteger
	KindBulk
	KindNullBulk
	KindArray
	KindNullArray
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "Simple"
	case KindError:
		return "Error"
	case KindInteger:
		return "Integer"
	case KindBulk:
		return "BulkString"
	case KindNullBulk:
		return "NullBulk"
	case KindArray:
		return "Array"
	case KindNullArray:
		return "NullArray"
	default:
		return "Unknown"
	}
}

// Value is a RESP v1 value. Only the fields relevant to Kind are
// meaningful; a Value is treated as immutable once it has been returned
// from the decoder or handed to the encoder.
type Value struct {
	Kind  Kind
	Str   string  // Simple, Error
	Int   int64   // Integer
	Bulk  []byte  // BulkString
	Array []Value // Array
}

// Simple builds a Simple(text) value.
func Simple(s string) Value { return Value{Kind: KindSimple, Str: s} }

// Err builds an Error(text) value. Named Err to avoid shadowing the
// built-in error type's common receiver name in call sites.
func Err(s string) Value { return Value{Kind: KindError, Str: s} }

// Integer builds an Integer(i64) value.
func Integer(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// Bulk builds a BulkString(bytes) value.
func Bulk(b []byte) Value { return Value{Kind: KindBulk, Bulk: b} }

// BulkFromString builds a BulkString(bytes) value from a string.
func BulkFromString(s string) Value { return Value{Kind: KindBulk, Bulk: []byte(s)} }

// NullBulk is the distinguished null bulk string.
func NullBulk() Value { return Value{Kind: KindNullBulk} }

// Arr builds an Array(sequence) value.
func Arr(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }

// NullArray is the distinguished null array.
func NullArray() Value { return Value{Kind: KindNullArray} }

// IsNull reports whether v is NullBulk or NullArray.
func (v Value) IsNull() bool {
	return v.Kind == KindNullBulk || v.Kind == KindNullArray
}

// Equal reports structural equality, byte-exact on BulkString payloads.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindSimple, KindError:
		return v.Str == o.Str
	case KindInteger:
		return v.Int == o.Int
	case KindBulk:
		return bytes.Equal(v.Bulk, o.Bulk)
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case KindNullBulk, KindNullArray:
		return true
	default:
		return false
	}
}
