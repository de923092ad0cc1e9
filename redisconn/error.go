package redisconn

import (
	"fmt"

	"github.com/joomcode/errorx"
)

// Errors is the transport layer's error namespace, alongside resp.Errors
// and redis.Errors in the module's single errorx-based taxonomy.
var Errors = errorx.NewNamespace("redisconn")

// Connectivity marks every error that means "this Connection cannot reach
// its server right now" as opposed to a programming or protocol mistake;
// callers can retry on one and shouldn't on the other.
var Connectivity = errorx.RegisterTrait("connectivity")

var (
	// NotConnected is returned by Send/SendMany/SendTransaction when a
	// request is submitted before an Async Connect's dial has completed.
	NotConnected = Errors.NewType("not_connected", Connectivity)
	// DialFailed wraps a net.Dialer failure.
	DialFailed = Errors.NewType("dial_failed", Connectivity)
	// AuthFailed means the server rejected the connect-time AUTH/SELECT
	// handshake; reconnection never helps, so Connect returns it directly
	// instead of retrying.
	AuthFailed = Errors.NewType("auth_failed")
	// IOFailed wraps a read or write error on an otherwise-established
	// socket, including a deadline expiring.
	IOFailed = Errors.NewType("io_failed", Connectivity)
	// DecodeFailed wraps a malformed-frame error surfaced by resp.Decoder;
	// a connection that hits this can never be trusted again (spec §4.3.5)
	// and is torn down exactly like an I/O error.
	DecodeFailed = Errors.NewType("decode_failed", Connectivity)
	// Closed is returned to every request still outstanding when Close is
	// called, and to every later Send on a Connection that has reached its
	// terminal Closed state (whether by Close or by a fatal failure).
	// Requests outstanding at the moment of a fatal failure are resolved
	// with that failure's own error (IOFailed, DecodeFailed) instead.
	Closed = Errors.NewType("closed", Connectivity)
	// RequestTooLarge is returned when a single request's encoding
	// exceeds the write buffer's entire capacity, so it could never be
	// flushed atomically no matter how empty the buffer is (spec P7).
	RequestTooLarge = Errors.NewType("request_too_large")
)

// EKConnection carries the *Connection that handled (or failed to handle)
// a request.
var EKConnection = errorx.RegisterProperty("connection")

// EKDb carries the opts.DB a SELECT handshake failed against.
var EKDb = errorx.RegisterProperty("db")

func withNewProperty(err *errorx.Error, p errorx.Property, v interface{}) *errorx.Error {
	if _, ok := err.Property(p); ok {
		return err
	}
	return err.WithProperty(p, v)
}

func errNotConnected(conn *Connection) error {
	return withNewProperty(NotConnected.New(fmt.Sprintf("not connected to %s", conn.addr)), EKConnection, conn)
}

func errClosed(conn *Connection) error {
	return withNewProperty(Closed.New(fmt.Sprintf("connection to %s is closed", conn.addr)), EKConnection, conn)
}

func errDial(addr string, cause error) error {
	return DialFailed.Wrap(cause, fmt.Sprintf("dialing %s", addr))
}

func errAuth(addr string, cause error) error {
	return AuthFailed.Wrap(cause, fmt.Sprintf("handshake with %s", addr))
}

func errIO(conn *Connection, cause error) error {
	return withNewProperty(IOFailed.Wrap(cause, fmt.Sprintf("i/o with %s", conn.addr)), EKConnection, conn)
}

func errDecode(conn *Connection, cause error) error {
	return withNewProperty(DecodeFailed.Wrap(cause, fmt.Sprintf("decoding response from %s", conn.addr)), EKConnection, conn)
}

func errTooLarge(conn *Connection) error {
	return withNewProperty(
		RequestTooLarge.New(fmt.Sprintf("encoded request exceeds write buffer capacity (%d bytes) for %s", conn.opts.WriteBufferSize, conn.addr)),
		EKConnection, conn,
	)
}
