package redisconn

import "github.com/nullstream/respipe/redis"

// queueItem is one request sitting in either the write queue or the
// pending-response queue. Both queues are ordinary FIFO slices guarded by
// Connection.submitMu; there is exactly one submission mutex for the
// whole Connection, not one per shard.
type queueItem struct {
	req redis.Request
	cb  redis.Future
	n   uint64
}

// discardFuture swallows a response without forwarding it to any caller.
// SendTransaction uses it for the MULTI and per-command QUEUED replies
// inside a transaction, which no caller ever sees.
type discardFuture struct{}

func (discardFuture) Resolve(res interface{}, n uint64) {}
func (discardFuture) Cancelled() bool                   { return false }
