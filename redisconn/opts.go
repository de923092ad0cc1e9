package redisconn

import "time"

const (
	defaultDialTimeout     = 5 * time.Second
	defaultIOTimeout       = 1 * time.Second
	defaultTCPKeepAlive    = 300 * time.Millisecond
	defaultWriteBufferSize = 1 << 20
	defaultReadBufferSize  = 1 << 20
)

// Opts configures a Connection. The zero value is usable: every field
// falls back to a default in Connect.
type Opts struct {
	// DB is the database number selected once on connect, via SELECT.
	DB int
	// Password, if non-empty, is sent as AUTH once on connect.
	Password string
	// Handle is returned verbatim by Connection.Handle, for callers that
	// want to attach their own identifying value to a Connection (e.g. a
	// shard index) without a side table.
	Handle interface{}
	// DialTimeout bounds the initial TCP dial. Zero selects the 5s
	// default; DialTimeout < 0 disables the deadline and lets the OS's own
	// connect timeout apply.
	DialTimeout time.Duration
	// IOTimeout bounds every individual socket read and write, and sets
	// the pace of the liveness probe loop (IOTimeout/3). Zero selects the
	// 1s default; IOTimeout < 0 disables both the deadline and the probe
	// loop.
	IOTimeout time.Duration
	// TCPKeepAlive is passed to the dialer. TCPKeepAlive < 0 disables it.
	TCPKeepAlive time.Duration
	// WriteBufferSize bounds the fixed-capacity buffer the writer loop
	// encodes pipelined requests into (spec §3, P6, P7). Defaults to 1 MiB.
	WriteBufferSize int
	// ReadBufferSize bounds the initial capacity of the reader loop's
	// decode buffer (spec §3); it grows to fit an oversized bulk payload
	// and shrinks back down afterward. Defaults to 1 MiB.
	ReadBufferSize int
	// Logger receives structured connection-lifecycle events. Defaults
	// to a logger that writes to the standard log package.
	Logger Logger
	// Async, if true, makes Connect return immediately instead of
	// waiting for the first dial to finish; requests sent before the dial
	// and handshake have completed fail with NotConnected instead of being
	// queued (spec §4.3.2 step 1).
	Async bool
}

func (o Opts) withDefaults() Opts {
	if o.DialTimeout == 0 {
		o.DialTimeout = defaultDialTimeout
	} else if o.DialTimeout < 0 {
		o.DialTimeout = 0
	}
	if o.TCPKeepAlive == 0 {
		o.TCPKeepAlive = defaultTCPKeepAlive
	}
	if o.IOTimeout == 0 {
		o.IOTimeout = defaultIOTimeout
	} else if o.IOTimeout < 0 {
		o.IOTimeout = 0
	}
	if o.WriteBufferSize <= 0 {
		o.WriteBufferSize = defaultWriteBufferSize
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = defaultReadBufferSize
	}
	if o.Logger == nil {
		o.Logger = defaultLogger{}
	}
	return o
}
