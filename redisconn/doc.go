/*
Package redisconn implements a connection to a single Redis server.

A Connection wraps one TCP (or Unix-socket) connection. Every request,
regardless of which goroutine submitted it, is fed into the same pair of
FIFO queues behind a single submission mutex: one write queue the writer
loop drains into a fixed-capacity buffer and flushes to the socket, one
pending queue the reader loop drains in the same order as responses
arrive. A Connection needs no external synchronization.

Connect is responsible for the initial handshake (AUTH/PING/SELECT) and
for nothing else once the socket is up: a Connection is single-use. Any
fatal I/O or decode error, or an explicit Close, tears the socket down
for good — there is no automatic reconnect, and every request
outstanding at the moment of failure is resolved with an error exactly
once. A caller that wants a new connection calls Connect again.
*/
package redisconn
