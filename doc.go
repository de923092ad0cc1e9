/*
Package respipe is an implicitly-pipelined RESP v1 client core.

https://redis.io/topics/pipelining

Pipelining improves the maximum throughput a RESP server can serve, and
reduces CPU usage on both sides, mostly by saving on syscalls. But it is
rarely convenient to pipeline explicitly: most callers are dozens of
concurrent goroutines, each wanting to send one request and wait for its
answer. To get the throughput benefit under that workload, pipelining has
to be implicit — every request any goroutine submits is batched onto the
wire as soon as possible, and demultiplexed back to the right caller when
its response arrives.

This module is two things: a streaming RESP v1 codec (package resp) and a
pipelined single-connection transport built on it (package redisconn).
Everything above "is this bytes on a socket" — the breadth of Redis
commands, connection pooling, cluster routing, pub/sub — is out of scope;
redisconn.Connection implements redis.Sender, and the redis package
defines the thin contract (request marshaling, response coercion) a
command-surface layer would consume.

Capabilities

- single shared TCP connection, fully pipelined: any number of concurrent
goroutines may submit requests without synchronizing on anything beyond
Connection.Send itself,

- strict FIFO response matching: the k-th response on the wire always
completes the k-th submitted request's handle,

- transactions (MULTI/EXEC), without WATCH — WATCH's cross-request
semantics belong to a caller that owns a connection exclusively, which
this module's shared-connection model does not offer,

- a pluggable Logger for connection lifecycle events.

Limitations

- no automatic reconnect: a Connection is single-use. Any fatal I/O or
decode error, or an explicit Close, leaves it permanently closed; a
caller that wants a new connection calls Connect again,

- no command-level retry and no request reordering,

- SUBSCRIBE/PSUBSCRIBE are not implemented — they switch a connection into
a push-only mode incompatible with request/response multiplexing.

Structure

- root package is empty

- the wire codec (value model, parser combinators, encoder/decoder) is in
the resp subpackage

- the command-surface contract (request marshaling, response coercion,
synchronous wrappers) is in the redis subpackage

- the pipelined transport is in the redisconn subpackage

- internal/bufpool recycles the fixed-size read/write buffers redisconn
allocates per connection

Usage

redisconn.Connect returns a redis.Sender. redis.Sender provides an
asynchronous API: Send/SendMany/SendTransaction take a redis.Future and
resolve it once a response arrives. Most callers don't implement Future
themselves; they wrap a Sender with one of the synchronous helpers:

- redis.Sync{Sender} — blocking, no context,

- redis.SyncCtx{Sender} — blocking, but every method takes a
context.Context and returns early if it's done,

- redis.ChanFutured{Sender} — returns a channel-backed future instead of
blocking immediately.

Command arguments accept []byte, string, any integer or float type,
and bool (encoded as "0"/"1"); a nil argument is rejected rather than
silently encoded as an empty string, since a missing argument is usually
a caller bug.

Responses are resp.Value — the six-variant RESP v1 tagged union — rather
than a language-native type, so no information about which wire shape a
server returned is lost on the way to the caller. The redis package's
coercion helpers (Text, Bytes, Int, Bool, Float, Array, ...) convert a
resp.Value to the shape a particular command's reply is known to take,
and turn a RESP Error or an unexpected shape into an error instead.
*/
package respipe
