package redis

import "errors"

// Sender is the contract the command surface submits requests through.
// It is implemented by redisconn.Connection.
type Sender interface {
	Send(r Request, cb Future, n uint64)
	SendMany(r []Request, cb Future, n uint64)
	SendTransaction(r []Request, cb Future, start uint64)
	Scanner(opts ScanOpts) Scanner
	Close()
}

// Future is a single-assignment completion handle: Resolve is called
// exactly once per request, with the decoded resp.Value on success or an
// error value on failure. n identifies the request's position within a
// batch submitted via SendMany/SendTransaction.
type Future interface {
	Resolve(res interface{}, n uint64)
	Cancelled() bool
}

// FuncFuture adapts a plain function to the Future interface.
type FuncFuture func(res interface{}, n uint64)

func (f FuncFuture) Cancelled() bool                   { return false }
func (f FuncFuture) Resolve(res interface{}, n uint64) { f(res, n) }

// Scanner drives a SCAN/HSCAN/SSCAN/ZSCAN-style cursor one page at a
// time; Next resolves cb with ScanEOF once the cursor returns to "0".
type Scanner interface {
	Next(Future)
}

// ScanEOF marks the end of a Scanner's iteration.
var ScanEOF = errors.New("iteration finished")

// ScanOpts configures a Scanner. Cmd defaults to SCAN; set it to
// HSCAN/SSCAN/ZSCAN with Key set to scan a collection instead of the
// keyspace.
type ScanOpts struct {
	Cmd   string
	Key   string
	Match string
	Count int
}

// Request builds the next page request given the cursor returned by the
// previous page (nil for the first page).
func (s ScanOpts) Request(it []byte) Request {
	if it == nil {
		it = []byte("0")
	}
	args := []interface{}{it}
	cmd := s.Cmd
	if cmd == "" {
		cmd = "SCAN"
	}
	if cmd != "SCAN" {
		args = append(args, s.Key)
	}
	if s.Match != "" {
		args = append(args, "MATCH", s.Match)
	}
	if s.Count > 0 {
		args = append(args, "COUNT", s.Count)
	}
	return Request{Cmd: cmd, Args: args}
}

// ScannerBase is the shared Scanner implementation: it remembers the
// cursor returned by the previous page and issues the next Request
// against a Sender, decoding the two-element scan response itself.
type ScannerBase struct {
	ScanOpts
	Iter []byte
	Err  error
	cb   Future
}

func (s *ScannerBase) DoNext(cb Future, snd Sender) {
	s.cb = cb
	snd.Send(s.ScanOpts.Request(s.Iter), s, 0)
}

func (s *ScannerBase) IterLast() bool {
	return len(s.Iter) == 1 && s.Iter[0] == '0'
}

func (s *ScannerBase) Cancelled() bool {
	return s.cb.Cancelled()
}

func (s *ScannerBase) Resolve(res interface{}, _ uint64) {
	var keys []string
	s.Iter, keys, s.Err = ScanResponse(res)
	cb := s.cb
	s.cb = nil
	if s.Err != nil {
		cb.Resolve(s.Err, 0)
	} else {
		cb.Resolve(keys, 0)
	}
}
