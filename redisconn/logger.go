package redisconn

import "log"

// LogKind identifies a connection lifecycle event reported to a Logger.
// It is the same small enumeration the teacher's connection package
// reports, extended with the event the liveness-probe addition needs.
type LogKind int

const (
	LogConnecting LogKind = iota
	LogConnected
	LogConnectFailed
	LogDisconnected
	LogClosed
	LogPingFailed
	LogMAX
)

// Logger receives structured events as a Connection moves through its
// lifecycle. Report must not block on conn's own methods; conn is passed
// only so an implementation can read Addr()/Handle() for labeling.
type Logger interface {
	Report(event LogKind, conn *Connection, v ...interface{})
}

type defaultLogger struct{}

func (d defaultLogger) Report(event LogKind, conn *Connection, v ...interface{}) {
	switch event {
	case LogConnecting:
		log.Printf("redisconn: connecting to %s", conn.Addr())
	case LogConnected:
		localAddr := v[0].(string)
		remoteAddr := v[1].(string)
		log.Printf("redisconn: connected to %s (local %s, remote %s)", conn.Addr(), localAddr, remoteAddr)
	case LogConnectFailed:
		err := v[0].(error)
		log.Printf("redisconn: connect to %s failed: %s", conn.Addr(), err)
	case LogDisconnected:
		err := v[0].(error)
		log.Printf("redisconn: connection to %s broken: %s", conn.Addr(), err)
	case LogClosed:
		log.Printf("redisconn: connection to %s closed", conn.Addr())
	case LogPingFailed:
		err := v[0].(error)
		log.Printf("redisconn: liveness probe on %s failed: %s", conn.Addr(), err)
	default:
		args := []interface{}{"redisconn: unexpected event", event, conn}
		args = append(args, v...)
		log.Print(args...)
	}
}
