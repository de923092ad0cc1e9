package testbed

import (
	"net"
	"sync"

	"github.com/nullstream/respipe/resp"
)

// Handler computes the response to one decoded command. args[0] is the
// command name; args[1:] are its arguments, both as raw bulk bytes.
type Handler func(args [][]byte) resp.Value

// FakeServer is a minimal in-process RESP v1 server: one goroutine per
// accepted connection, decoding pipelined requests with resp.Decoder and
// dispatching each to Handler in arrival order. It understands MULTI/EXEC
// framing itself, since that's a property of the wire protocol a real
// server enforces regardless of what Handler does with individual
// commands.
type FakeServer struct {
	Handler Handler

	mu       sync.Mutex
	ln       net.Listener
	conns    []net.Conn
	closed   bool
}

// NewFakeServer returns a server that dispatches every command to handler.
func NewFakeServer(handler Handler) *FakeServer {
	return &FakeServer{Handler: handler}
}

// Start listens on an OS-assigned loopback port and returns its address.
func (s *FakeServer) Start() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	s.ln = ln
	go s.acceptLoop()
	return ln.Addr().String(), nil
}

// Stop closes the listener and every connection accepted so far.
func (s *FakeServer) Stop() {
	s.mu.Lock()
	s.closed = true
	conns := s.conns
	s.conns = nil
	ln := s.ln
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	for _, c := range conns {
		c.Close()
	}
}

func (s *FakeServer) acceptLoop() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			c.Close()
			return
		}
		s.conns = append(s.conns, c)
		s.mu.Unlock()
		go s.serve(c)
	}
}

func (s *FakeServer) serve(c net.Conn) {
	defer c.Close()

	dec := resp.NewDecoder()
	cur := resp.NewCursor()
	buf := make([]byte, 0, 4096)
	readbuf := make([]byte, 4096)

	var inMulti bool
	var queued [][][]byte

	for {
		v, outcome, err := dec.Step(cur)
		if outcome == resp.Incomplete {
			n, rerr := c.Read(readbuf)
			if rerr != nil {
				return
			}
			buf = append(buf, readbuf[:n]...)
			cur.Feed(buf)
			continue
		}
		if err != nil {
			return
		}
		if cur.Len() == 0 {
			buf = buf[:0]
			cur.Realign(buf)
		}

		args, ok := flattenCommand(v)
		if !ok {
			continue
		}
		cmd := upper(string(args[0]))

		var resv resp.Value
		switch {
		case cmd == "MULTI":
			inMulti = true
			queued = nil
			resv = resp.Simple("OK")
		case cmd == "DISCARD":
			inMulti = false
			queued = nil
			resv = resp.Simple("OK")
		case cmd == "EXEC" && inMulti:
			results := make([]resp.Value, len(queued))
			for i, q := range queued {
				results[i] = s.Handler(q)
			}
			inMulti = false
			queued = nil
			resv = resp.Arr(results)
		case inMulti:
			queued = append(queued, args)
			resv = resp.Simple("QUEUED")
		default:
			resv = s.Handler(args)
		}

		segs, eerr := resp.Encode(resv)
		if eerr != nil {
			return
		}
		for _, seg := range segs {
			if _, werr := c.Write(seg); werr != nil {
				return
			}
		}
	}
}

func flattenCommand(v resp.Value) ([][]byte, bool) {
	if v.Kind != resp.KindArray || len(v.Array) == 0 {
		return nil, false
	}
	out := make([][]byte, len(v.Array))
	for i, el := range v.Array {
		if el.Kind != resp.KindBulk {
			return nil, false
		}
		out[i] = el.Bulk
	}
	return out, true
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
