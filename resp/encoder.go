package resp

import "strconv"

// Encode returns v's wire encoding as an ordered scatter list of byte
// segments, per the table in spec §4.2.3. It fails with UnknownVariant if
// v's Kind is outside the six defined RESP v1 variants.
func Encode(v Value) ([][]byte, error) {
	switch v.Kind {
	case KindSimple:
		return [][]byte{[]byte("+"), []byte(v.Str), crlf}, nil
	case KindError:
		return [][]byte{[]byte("-"), []byte(v.Str), crlf}, nil
	case KindInteger:
		return [][]byte{[]byte(":"), []byte(strconv.FormatInt(v.Int, 10)), crlf}, nil
	case KindBulk:
		return [][]byte{[]byte("$"), []byte(strconv.Itoa(len(v.Bulk))), crlf, v.Bulk, crlf}, nil
	case KindNullBulk:
		return [][]byte{[]byte("$-1\r\n")}, nil
	case KindNullArray:
		return [][]byte{[]byte("*-1\r\n")}, nil
	case KindArray:
		segs := [][]byte{[]byte("*"), []byte(strconv.Itoa(len(v.Array))), crlf}
		for _, el := range v.Array {
			s, err := Encode(el)
			if err != nil {
				return nil, err
			}
			segs = append(segs, s...)
		}
		return segs, nil
	default:
		return nil, errUnknownVariant(v.Kind)
	}
}

// segmentsLen is the total encoded size of segs.
func segmentsLen(segs [][]byte) int {
	n := 0
	for _, s := range segs {
		n += len(s)
	}
	return n
}

// EncodedLen returns v's total encoded size. It builds v's segment list
// with Encode and sums the segment lengths.
func EncodedLen(v Value) (int, error) {
	segs, err := Encode(v)
	if err != nil {
		return 0, err
	}
	return segmentsLen(segs), nil
}

// AppendAtomic appends v's full encoding to buf iff it fits within buf's
// remaining capacity (cap(buf)-len(buf)); otherwise buf is returned
// unchanged and ok is false. This all-or-nothing semantics is what lets a
// pipelined writer batch requests into a fixed-size buffer without ever
// putting a partial frame on the wire.
func AppendAtomic(buf []byte, v Value) (out []byte, ok bool) {
	segs, err := Encode(v)
	if err != nil {
		return buf, false
	}
	total := segmentsLen(segs)
	if cap(buf)-len(buf) < total {
		return buf, false
	}
	for _, s := range segs {
		buf = append(buf, s...)
	}
	return buf, true
}
