package redis_test

import (
	"context"
	"testing"

	"github.com/nullstream/respipe/redis"
	"github.com/nullstream/respipe/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanOptsRequest(t *testing.T) {
	r := redis.ScanOpts{}.Request(nil)
	assert.Equal(t, "SCAN", r.Cmd)
	assert.Equal(t, []interface{}{[]byte("0")}, r.Args)

	r = redis.ScanOpts{Cmd: "HSCAN", Key: "h", Match: "a*", Count: 10}.Request([]byte("17"))
	assert.Equal(t, "HSCAN", r.Cmd)
	assert.Equal(t, []interface{}{[]byte("17"), "h", "MATCH", "a*", "COUNT", 10}, r.Args)
}

// fakeSender resolves every request immediately with a scripted response,
// matching request index to response index. It is a minimal stand-in for
// redisconn.Connection used to exercise Sync/SyncCtx/ChanFutured.
type fakeSender struct {
	responses []interface{}
}

func (f *fakeSender) Send(r redis.Request, cb redis.Future, n uint64) {
	cb.Resolve(f.responses[0], n)
}

func (f *fakeSender) SendMany(reqs []redis.Request, cb redis.Future, n uint64) {
	for i := range reqs {
		cb.Resolve(f.responses[i], n+uint64(i))
	}
}

func (f *fakeSender) SendTransaction(reqs []redis.Request, cb redis.Future, start uint64) {
	cb.Resolve(resp.Arr(valuesOf(f.responses)), start)
}

func (f *fakeSender) Scanner(opts redis.ScanOpts) redis.Scanner { return nil }
func (f *fakeSender) Close()                                    {}

func valuesOf(rs []interface{}) []resp.Value {
	out := make([]resp.Value, len(rs))
	for i, r := range rs {
		out[i] = r.(resp.Value)
	}
	return out
}

func TestSyncSend(t *testing.T) {
	s := redis.Sync{S: &fakeSender{responses: []interface{}{resp.Simple("PONG")}}}
	res := s.Do("PING")
	assert.True(t, res.(resp.Value).Equal(resp.Simple("PONG")))
}

func TestSyncSendMany(t *testing.T) {
	s := redis.Sync{S: &fakeSender{responses: []interface{}{resp.Integer(1), resp.Integer(2)}}}
	res := s.SendMany([]redis.Request{redis.Req("INCR", "a"), redis.Req("INCR", "b")})
	require.Len(t, res, 2)
	assert.True(t, res[0].(resp.Value).Equal(resp.Integer(1)))
	assert.True(t, res[1].(resp.Value).Equal(resp.Integer(2)))
}

func TestSyncSendTransaction(t *testing.T) {
	s := redis.Sync{S: &fakeSender{responses: []interface{}{resp.Simple("OK"), resp.Integer(1)}}}
	results, err := s.SendTransaction([]redis.Request{redis.Req("SET", "a", 1), redis.Req("INCR", "a")})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

// neverSender never resolves a Future, so the only way SyncCtx.Do can
// return is via ctx cancellation.
type neverSender struct{}

func (neverSender) Send(r redis.Request, cb redis.Future, n uint64)                     {}
func (neverSender) SendMany(reqs []redis.Request, cb redis.Future, n uint64)            {}
func (neverSender) SendTransaction(reqs []redis.Request, cb redis.Future, start uint64) {}
func (neverSender) Scanner(opts redis.ScanOpts) redis.Scanner                           { return nil }
func (neverSender) Close()                                                             {}

func TestSyncCtxSendCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := redis.SyncCtx{S: neverSender{}}
	res := s.Do(ctx, "PING")
	err, ok := res.(error)
	require.True(t, ok)
	require.Error(t, err)
}
