package redisconn

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullstream/respipe/internal/bufpool"
	"github.com/nullstream/respipe/redis"
	"github.com/nullstream/respipe/resp"
)

const (
	connConnecting int32 = iota
	connConnected
	connClosed
)

// Connection is a pipelined connection to a single Redis server. It
// implements redis.Sender. A Connection is single-use: once its socket
// is torn down, by Close or by any fatal I/O/decode failure, it stays
// Closed forever (spec §4.3.6) — there is no automatic reconnect.
// Callers that want a fresh connection call Connect again.
type Connection struct {
	addr string
	opts Opts

	state int32 // atomic: connConnecting / connConnected / connClosed

	netConn net.Conn

	// submitMu is the single submission mutex: every Send/SendMany/
	// SendTransaction call, every writer drain, every reader completion,
	// and the failure drain take it to move items between writeQ and
	// pending. There is one of these per Connection, not one per shard
	// (spec §9's open question on locking discipline, resolved in favor
	// of the single-mutex design that keeps R = Q_pending + S global).
	submitMu sync.Mutex
	writeQ   []queueItem
	pending  []queueItem
	wake     chan struct{}

	active int64 // atomic

	writeBuf []byte

	failCh  chan error
	closeCh chan struct{}
	closeOnce sync.Once
	done    chan struct{}
}

// Connect dials addr and performs the connect-time handshake. Unless
// Opts.Async is set, Connect blocks until the dial and handshake succeed
// or fail; on failure no Connection is returned. Opts.Async returns a
// Connection immediately and completes the dial in the background —
// requests submitted before it finishes fail with NotConnected exactly
// as they would against an already-broken Connection (spec §4.3.2 step 1).
func Connect(addr string, opts Opts) (*Connection, error) {
	if addr == "" {
		return nil, Errors.NewType("opts_invalid").New("no address provided")
	}
	opts = opts.withDefaults()

	c := &Connection{
		addr:     addr,
		opts:     opts,
		wake:     make(chan struct{}, 1),
		writeBuf: bufpool.Default.Get(opts.WriteBufferSize),
		failCh:   make(chan error, 2),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	if opts.Async {
		go c.connectAndRun(nil)
		return c, nil
	}

	errCh := make(chan error, 1)
	go c.connectAndRun(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return c, nil
}

// connectAndRun dials once, and if that succeeds, drives the writer and
// reader loops until Close is called or either loop hits a fatal error.
// Either way the Connection ends up permanently Closed: this is the
// entire lifecycle of a single generation, run exactly once.
func (c *Connection) connectAndRun(errCh chan error) {
	netConn, rw, err := c.connectOnce()
	if err != nil {
		c.opts.Logger.Report(LogConnectFailed, c, err)
		atomic.StoreInt32(&c.state, connClosed)
		close(c.done)
		if errCh != nil {
			errCh <- err
		}
		return
	}

	c.netConn = netConn
	atomic.StoreInt32(&c.state, connConnected)
	c.opts.Logger.Report(LogConnected, c, netConn.LocalAddr().String(), netConn.RemoteAddr().String())
	if errCh != nil {
		errCh <- nil
	}

	go c.probeLoop()

	genDone := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.writer(rw, genDone) }()
	go func() { defer wg.Done(); c.reader(rw, genDone) }()

	var failErr error
	select {
	case failErr = <-c.failCh:
	case <-c.closeCh:
	}
	close(genDone)
	netConn.Close()
	wg.Wait()
	bufpool.Default.Put(c.writeBuf)

	atomic.StoreInt32(&c.state, connClosed)
	if failErr == nil {
		failErr = errClosed(c)
		c.opts.Logger.Report(LogClosed, c)
	} else {
		c.opts.Logger.Report(LogDisconnected, c, failErr)
	}
	c.failAll(failErr)
	close(c.done)
}

func (c *Connection) connectOnce() (net.Conn, io.ReadWriter, error) {
	c.opts.Logger.Report(LogConnecting, c)

	network, address := "tcp", c.addr
	switch {
	case len(address) > 0 && (address[0] == '.' || address[0] == '/'):
		network = "unix"
	case strings.HasPrefix(address, "unix://"):
		network, address = "unix", address[len("unix://"):]
	case strings.HasPrefix(address, "tcp://"):
		address = address[len("tcp://"):]
	}

	dialer := net.Dialer{
		Timeout:   c.opts.DialTimeout,
		KeepAlive: c.opts.TCPKeepAlive,
	}
	netConn, err := dialer.Dial(network, address)
	if err != nil {
		return nil, nil, errDial(c.addr, err)
	}

	rw := newDeadlineIO(netConn, c.opts.IOTimeout)
	if err := c.handshake(rw); err != nil {
		netConn.Close()
		return nil, nil, err
	}
	return netConn, rw, nil
}

// handshake performs the synchronous AUTH/PING/SELECT round trip every
// new connection goes through before it is handed to the writer/reader
// loops. It reuses the same resp encode/decode path the rest of the
// package does, rather than hardcoded request literals.
func (c *Connection) handshake(rw io.ReadWriter) error {
	var reqs []redis.Request
	if c.opts.Password != "" {
		reqs = append(reqs, redis.Req("AUTH", c.opts.Password))
	}
	reqs = append(reqs, redis.Req("PING"))
	if c.opts.DB != 0 {
		reqs = append(reqs, redis.Req("SELECT", c.opts.DB))
	}

	var out []byte
	for _, r := range reqs {
		v, err := r.ToValue()
		if err != nil {
			return errAuth(c.addr, err)
		}
		segs, err := resp.Encode(v)
		if err != nil {
			return errAuth(c.addr, err)
		}
		for _, s := range segs {
			out = append(out, s...)
		}
	}
	if _, err := rw.Write(out); err != nil {
		return errAuth(c.addr, err)
	}

	dec := resp.NewDecoder()
	cur := resp.NewCursor()
	buf := make([]byte, 0, 512)
	readbuf := make([]byte, 512)

	for range reqs {
		for {
			v, outcome, err := dec.Step(cur)
			if outcome == resp.Incomplete {
				n, rerr := rw.Read(readbuf)
				if rerr != nil {
					return errAuth(c.addr, rerr)
				}
				buf = append(buf, readbuf[:n]...)
				cur.Feed(buf)
				continue
			}
			if err != nil {
				return errAuth(c.addr, err)
			}
			if v.Kind == resp.KindError {
				return errAuth(c.addr, errors.New(v.Str))
			}
			break
		}
	}
	return nil
}

// writer drains writeQ into c.writeBuf, respecting its fixed capacity
// (spec P6/P7: a request only ever reaches the wire as a whole frame),
// and flushes to rw. Requests that fail to marshal, or that alone exceed
// the buffer, are resolved with an error without ever reaching pending.
func (c *Connection) writer(rw io.Writer, genDone <-chan struct{}) {
	for {
		select {
		case <-c.wake:
		case <-genDone:
			return
		}

		for {
			c.submitMu.Lock()
			if atomic.LoadInt32(&c.state) != connConnected {
				c.submitMu.Unlock()
				return
			}
			batch := c.writeQ
			c.writeQ = nil
			c.submitMu.Unlock()
			if len(batch) == 0 {
				break
			}

			buf := c.writeBuf[:0]
			toPend := make([]queueItem, 0, len(batch))
			i := 0
			for i < len(batch) {
				v, err := batch[i].req.ToValue()
				if err != nil {
					c.complete(batch[i], err)
					i++
					continue
				}
				nb, ok := resp.AppendAtomic(buf, v)
				if !ok {
					if len(buf) == 0 {
						c.complete(batch[i], errTooLarge(c))
						i++
						continue
					}
					break
				}
				buf = nb
				toPend = append(toPend, batch[i])
				i++
			}

			if len(toPend) > 0 {
				c.submitMu.Lock()
				c.pending = append(c.pending, toPend...)
				c.submitMu.Unlock()
			}

			if len(buf) > 0 {
				if _, err := rw.Write(buf); err != nil {
					c.reportFail(errIO(c, err))
					return
				}
			}

			if i < len(batch) {
				c.submitMu.Lock()
				c.writeQ = append(batch[i:], c.writeQ...)
				c.submitMu.Unlock()
				continue
			}
			break
		}

		select {
		case <-genDone:
			return
		default:
		}
	}
}

// reader decodes one RESP frame at a time from rw and resolves the
// pending queue's head with it, in strict arrival order (spec P3).
func (c *Connection) reader(rw io.Reader, genDone <-chan struct{}) {
	dec := resp.NewDecoder()
	cur := resp.NewCursor()
	buf := bufpool.Default.Get(c.opts.ReadBufferSize)
	readbuf := bufpool.Default.Get(c.opts.ReadBufferSize)
	readbuf = readbuf[:cap(readbuf)]
	defer func() {
		bufpool.Default.Put(buf)
		bufpool.Default.Put(readbuf)
	}()

	for {
		v, outcome, err := dec.Step(cur)
		if outcome == resp.Incomplete {
			n, rerr := rw.Read(readbuf)
			if rerr != nil {
				c.reportFail(errIO(c, rerr))
				return
			}
			buf = append(buf, readbuf[:n]...)
			cur.Feed(buf)
			continue
		}
		if err != nil {
			c.reportFail(errDecode(c, err))
			return
		}
		if cur.Len() == 0 {
			// An oversized bulk payload can grow buf well past its
			// pooled capacity; once fully drained, drop the grown
			// buffer and go back to a pool-sized one rather than
			// holding onto the peak size for the rest of the
			// connection's life.
			if cap(buf) > c.opts.ReadBufferSize {
				buf = bufpool.Default.Get(c.opts.ReadBufferSize)
			} else {
				buf = buf[:0]
			}
			cur.Realign(buf)
		}

		item, ok := c.popPending()
		if !ok {
			c.reportFail(errDecode(c, errors.New("response received with nothing pending")))
			return
		}
		c.complete(item, v)

		select {
		case <-genDone:
			return
		default:
		}
	}
}

// reportFail delivers err to connectAndRun's select, at most once: the
// writer and reader may both hit a fatal error on the same dying socket,
// but only the first one matters.
func (c *Connection) reportFail(err error) {
	select {
	case c.failCh <- err:
	default:
	}
}

func (c *Connection) popPending() (queueItem, bool) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()
	if len(c.pending) == 0 {
		return queueItem{}, false
	}
	item := c.pending[0]
	c.pending = c.pending[1:]
	return item, true
}

func (c *Connection) complete(item queueItem, res interface{}) {
	item.cb.Resolve(res, item.n)
	atomic.AddInt64(&c.active, -1)
}

// failAll drains writeQ and pending exactly once, resolving every
// outstanding request with err (spec §4.3.5's P5: a disconnect drains
// every future exactly once).
func (c *Connection) failAll(err error) {
	c.submitMu.Lock()
	items := append(c.pending, c.writeQ...)
	c.pending = nil
	c.writeQ = nil
	c.submitMu.Unlock()

	for _, it := range items {
		c.complete(it, err)
	}
}

func (c *Connection) wakeWriter() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// submitBatch appends items to writeQ atomically: no other caller's
// request can land between two items of the same batch, which is what
// lets SendTransaction build a MULTI/.../EXEC sequence that is safe to
// multiplex against concurrent unrelated Sends on the same Connection.
func (c *Connection) submitBatch(items []queueItem) {
	c.submitMu.Lock()
	state := atomic.LoadInt32(&c.state)
	if state != connConnected {
		c.submitMu.Unlock()
		var err error
		if state == connClosed {
			err = errClosed(c)
		} else {
			err = errNotConnected(c)
		}
		for _, it := range items {
			c.complete(it, err)
		}
		return
	}
	atomic.AddInt64(&c.active, int64(len(items)))
	c.writeQ = append(c.writeQ, items...)
	c.submitMu.Unlock()
	c.wakeWriter()
}

// Send implements redis.Sender.
func (c *Connection) Send(r redis.Request, cb redis.Future, n uint64) {
	c.submitBatch([]queueItem{{req: r, cb: cb, n: n}})
}

// SendMany implements redis.Sender. Every request is resolved against
// the same cb, with n = start+i for its index i within reqs.
func (c *Connection) SendMany(reqs []redis.Request, cb redis.Future, start uint64) {
	items := make([]queueItem, len(reqs))
	for i, r := range reqs {
		items[i] = queueItem{req: r, cb: cb, n: start + uint64(i)}
	}
	c.submitBatch(items)
}

// SendTransaction implements redis.Sender by wrapping reqs in MULTI/EXEC.
// The MULTI and per-command QUEUED replies are discarded; cb only ever
// sees EXEC's reply (an Array of reqs' results, or an Error).
func (c *Connection) SendTransaction(reqs []redis.Request, cb redis.Future, start uint64) {
	items := make([]queueItem, 0, len(reqs)+2)
	items = append(items, queueItem{req: redis.Req("MULTI"), cb: discardFuture{}})
	for _, r := range reqs {
		items = append(items, queueItem{req: r, cb: discardFuture{}})
	}
	items = append(items, queueItem{req: redis.Req("EXEC"), cb: cb, n: start})
	c.submitBatch(items)
}

// Close implements redis.Sender. It tears down the socket and blocks
// until every outstanding request has been resolved with an error. A
// Connection is never usable again after Close — callers that need a new
// connection call Connect again.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.closeCh) })
	<-c.done
}

// ConnectedNow reports whether a live socket is currently in place.
func (c *Connection) ConnectedNow() bool {
	return atomic.LoadInt32(&c.state) == connConnected
}

// MayBeConnected reports whether the Connection might still serve
// requests, i.e. it has not yet reached its terminal Closed state.
func (c *Connection) MayBeConnected() bool {
	return atomic.LoadInt32(&c.state) != connClosed
}

// ActiveCount returns the number of requests currently submitted but not
// yet resolved.
func (c *Connection) ActiveCount() int64 {
	return atomic.LoadInt64(&c.active)
}

// Addr returns the address passed to Connect.
func (c *Connection) Addr() string { return c.addr }

// Handle returns Opts.Handle, verbatim.
func (c *Connection) Handle() interface{} { return c.opts.Handle }

// RemoteAddr returns the socket's remote address, or "" if the
// Connection never reached Connected. After the Connection closes it
// still returns the address of the socket it had.
func (c *Connection) RemoteAddr() string {
	if c.netConn == nil {
		return ""
	}
	return c.netConn.RemoteAddr().String()
}

// LocalAddr returns the socket's local address, or "" if the
// Connection never reached Connected. After the Connection closes it
// still returns the address of the socket it had.
func (c *Connection) LocalAddr() string {
	if c.netConn == nil {
		return ""
	}
	return c.netConn.LocalAddr().String()
}

func (c *Connection) String() string {
	return fmt.Sprintf("*redisconn.Connection(%s)", c.addr)
}

// probeLoop sends a PING roughly every IOTimeout/3, purely to surface a
// half-open socket as a failure before a real request would have to pay
// for the discovery. It is disabled when IOTimeout <= 0. A failed probe
// is not itself a reconnect trigger — it rides the same Send path as any
// other request, so its I/O error reaches the writer/reader loop and
// tears the Connection down exactly like a failure on real traffic would.
func (c *Connection) probeLoop() {
	if c.opts.IOTimeout <= 0 {
		return
	}
	interval := c.opts.IOTimeout / 3
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.closeCh:
			return
		case <-c.done:
			return
		case <-t.C:
		}
		if atomic.LoadInt32(&c.state) != connConnected {
			return
		}
		if err := c.ping(); err != nil {
			c.opts.Logger.Report(LogPingFailed, c, err)
		}
	}
}

func (c *Connection) ping() error {
	ch := make(chan interface{}, 1)
	c.Send(redis.Req("PING"), redis.FuncFuture(func(res interface{}, _ uint64) {
		ch <- res
	}), 0)
	res := <-ch
	if err, ok := res.(error); ok {
		return err
	}
	return nil
}
