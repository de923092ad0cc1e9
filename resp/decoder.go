package resp

// maxLineLen bounds header/control lines (the line up to the first CRLF
// that carries a type byte, an integer, or a length). It does not bound
// declared bulk-string payloads, which are read via Fixed(n+2) and are
// only as large as their own declared length.
const maxLineLen = 4096

var crlf = []byte("\r\n")

// Decoder is a streaming, restartable RESP v1 decoder built from the
// combinators in parser.go. A single Decoder is reused across an
// unbounded number of frames: Step returns (value, Done, nil) for a
// complete frame and resets itself automatically, (zero, Incomplete, nil)
// when more bytes are needed, or (zero, Done, err) on a malformed frame
// (at which point the Decoder must not be reused — the caller's transport
// treats a decode error as fatal, per spec §4.3.5).
type Decoder struct {
	frame Parser
}

// NewDecoder returns a Decoder ready to read the first frame.
func NewDecoder() *Decoder {
	return &Decoder{frame: newFrame()}
}

// Step attempts to decode one RESP value from c.
func (d *Decoder) Step(c *Cursor) (Value, Outcome, error) {
	v, outcome, err := d.frame.Step(c)
	if outcome == Incomplete {
		return Value{}, Incomplete, nil
	}
	d.frame.Reset()
	if err != nil {
		return Value{}, Done, err
	}
	return v.(Value), Done, nil
}

// Reset discards any partial progress on the current frame, as if no
// bytes of it had ever been seen. The Decoder auto-resets after every
// successfully decoded frame; Reset is for callers that need to abandon
// an in-progress frame early (e.g. after a fatal transport error).
func (d *Decoder) Reset() {
	d.frame.Reset()
}

func newFrame() Parser {
	return Bind(Delimited(crlf, maxLineLen), func(v interface{}) Parser {
		return dispatchLine(v.([]byte))
	})
}

func dispatchLine(line []byte) Parser {
	if len(line) == 0 {
		return Fail(BadTypeByte.New("empty header line"))
	}
	body := line[1:]
	switch line[0] {
	case '+':
		return Just(Simple(string(body)))
	case '-':
		return Just(Err(string(body)))
	case ':':
		n, err := parseInt64(body)
		if err != nil {
			return Fail(err)
		}
		return Just(Integer(n))
	case '$':
		n, err := parseInt32(body)
		if err != nil {
			return Fail(err)
		}
		if n < 0 {
			return Just(NullBulk())
		}
		return bulkBody(n)
	case '*':
		n, err := parseInt32(body)
		if err != nil {
			return Fail(err)
		}
		if n < 0 {
			return Just(NullArray())
		}
		return newArrayParser(int(n))
	default:
		return Fail(errBadTypeByte(line[0]))
	}
}

func bulkBody(n int32) Parser {
	return Bind(Fixed(int(n)+2), func(v interface{}) Parser {
		buf := v.([]byte)
		if buf[n] != '\r' || buf[n+1] != '\n' {
			return Fail(errBadBulkTerminator())
		}
		b := make([]byte, n)
		copy(b, buf[:n])
		return Just(Bulk(b))
	})
}

// arrayParser sequences n sub-frames and collects their results by
// index, surviving Incomplete on any sub-frame by memoizing which
// element it is currently waiting on.
type arrayParser struct {
	items []Value
	idx   int
	child Parser
}

func newArrayParser(n int) Parser {
	return &arrayParser{items: make([]Value, n)}
}

func (a *arrayParser) Step(c *Cursor) (interface{}, Outcome, error) {
	for a.idx < len(a.items) {
		if a.child == nil {
			a.child = newFrame()
		}
		v, outcome, err := a.child.Step(c)
		if outcome == Incomplete {
			return nil, Incomplete, nil
		}
		if err != nil {
			return nil, Done, err
		}
		a.items[a.idx] = v.(Value)
		a.idx++
		a.child = nil
	}
	return Arr(a.items), Done, nil
}

func (a *arrayParser) Reset() {
	a.idx = 0
	a.child = nil
	a.items = make([]Value, len(a.items))
}

func parseInt64(buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, errBadNumber(buf)
	}
	neg := buf[0] == '-'
	start := 0
	if neg {
		start = 1
	}
	if start >= len(buf) {
		return 0, errBadNumber(buf)
	}
	var v int64
	for _, b := range buf[start:] {
		if b < '0' || b > '9' {
			return 0, errBadNumber(buf)
		}
		v = v*10 + int64(b-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}

func parseInt32(buf []byte) (int32, error) {
	v, err := parseInt64(buf)
	if err != nil {
		return 0, err
	}
	if v < -2147483648 || v > 2147483647 {
		return 0, errBadNumber(buf)
	}
	return int32(v), nil
}
