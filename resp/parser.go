package resp

import "bytes"

// Outcome is the result of a single Parser.Step call.
type Outcome uint8

const (
	// Done means Step produced a value (possibly an error value) and
	// consumed everything it needed from the cursor.
	Done Outcome = iota
	// Incomplete means Step needs more bytes. A leaf parser leaves the
	// cursor's consumed position unchanged; a Bind whose first parser
	// already succeeded keeps that parser's bytes consumed. Either way the
	// caller should append more bytes and call Step again.
	Incomplete
)

// Parser is a stateful object over a shared Cursor. It either consumes
// bytes and produces a value, reports that more input is needed, or
// fails. On Incomplete a leaf parser leaves the cursor where it found it;
// a composite keeps whatever its finished sub-parsers already consumed.
//
// Parsers are data, not subclasses: Delimited/Fixed/Just/Fail are leaves,
// Bind/Map compose them. A composite parser that has made partial
// progress (e.g. a Bind whose first half already succeeded) must survive
// across Incomplete returns from a later call, which is why Step is a
// method on a long-lived value rather than a pure function.
type Parser interface {
	Step(c *Cursor) (interface{}, Outcome, error)
	Reset()
}

// Delimited scans forward for pattern (e.g. CRLF), yielding the bytes
// before it and consuming through it. It fails with MessageTooLong if
// maxLen bytes elapse without a match. Delimited carries no state of its
// own between calls: each call rescans whatever bytes are currently
// available, which is simple and correct (a partial match on "\r\r\n"
// against "\r\n" does not get stuck, since bytes.Index already finds the
// minimal correct match) and cheap given the cap on header-line length.
type delimited struct {
	pattern []byte
	maxLen  int
}

func Delimited(pattern []byte, maxLen int) Parser {
	return &delimited{pattern: pattern, maxLen: maxLen}
}

func (d *delimited) Step(c *Cursor) (interface{}, Outcome, error) {
	avail := c.Remaining()
	idx := bytes.Index(avail, d.pattern)
	if idx < 0 {
		if len(avail) >= d.maxLen {
			return nil, Done, errMessageTooLong()
		}
		return nil, Incomplete, nil
	}
	if idx >= d.maxLen {
		return nil, Done, errMessageTooLong()
	}
	c.Next(idx + len(d.pattern))
	return avail[:idx], Done, nil
}

func (d *delimited) Reset() {}

// Fixed yields the next n bytes once available, or Incomplete otherwise.
type fixed struct {
	n int
}

func Fixed(n int) Parser {
	return &fixed{n: n}
}

func (f *fixed) Step(c *Cursor) (interface{}, Outcome, error) {
	if c.Len() < f.n {
		return nil, Incomplete, nil
	}
	return c.Next(f.n), Done, nil
}

func (f *fixed) Reset() {}

// Just yields v without consuming any input.
type justParser struct{ v interface{} }

func Just(v interface{}) Parser { return justParser{v} }

func (j justParser) Step(c *Cursor) (interface{}, Outcome, error) { return j.v, Done, nil }
func (j justParser) Reset()                                       {}

// Fail yields err without consuming any input.
type failParser struct{ err error }

func Fail(err error) Parser { return failParser{err} }

func (f failParser) Step(c *Cursor) (interface{}, Outcome, error) { return nil, Done, f.err }
func (f failParser) Reset()                                       {}

// Bind runs p; once p succeeds, f(v) produces a second parser q which is
// driven by all subsequent Step calls. q is memoized so that Incomplete
// on q never re-runs p (p's bytes are already permanently consumed).
// Reset discards the memo and resets p, so the whole bind can be reused
// for the next frame.
type bind struct {
	p Parser
	f func(interface{}) Parser
	q Parser
}

func Bind(p Parser, f func(interface{}) Parser) Parser {
	return &bind{p: p, f: f}
}

func (b *bind) Step(c *Cursor) (interface{}, Outcome, error) {
	if b.q == nil {
		v, outcome, err := b.p.Step(c)
		if outcome == Incomplete {
			return nil, Incomplete, nil
		}
		if err != nil {
			return nil, Done, err
		}
		b.q = b.f(v)
	}
	return b.q.Step(c)
}

func (b *bind) Reset() {
	b.p.Reset()
	b.q = nil
}

// Map transforms a successful parse result with f, leaving failures and
// incompleteness untouched.
func Map(p Parser, f func(interface{}) interface{}) Parser {
	return Bind(p, func(v interface{}) Parser { return Just(f(v)) })
}
