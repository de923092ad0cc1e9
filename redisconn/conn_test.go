package redisconn_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/nullstream/respipe/redis"
	"github.com/nullstream/respipe/redisconn"
	"github.com/nullstream/respipe/resp"
	"github.com/nullstream/respipe/testbed"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	suite.Suite
	srv  *testbed.FakeServer
	addr string
}

func (s *Suite) SetupTest() {
	s.srv = testbed.NewFakeServer(testbed.NewKVStore().Handle)
	addr, err := s.srv.Start()
	s.Require().NoError(err)
	s.addr = addr
}

func (s *Suite) TearDownTest() {
	s.srv.Stop()
}

func (s *Suite) connect(opts redisconn.Opts) *redisconn.Connection {
	if opts.IOTimeout == 0 {
		opts.IOTimeout = 200 * time.Millisecond
	}
	conn, err := redisconn.Connect(s.addr, opts)
	s.Require().NoError(err)
	return conn
}

func (s *Suite) TestPing() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	res := redis.Sync{S: conn}.Do("PING")
	v, ok := res.(resp.Value)
	s.Require().True(ok)
	s.True(v.Equal(resp.Simple("PONG")))
}

func (s *Suite) TestSetGet() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	sync := redis.Sync{S: conn}
	res := sync.Do("SET", "foo", "bar")
	s.NoError(redis.AsError(res))

	res = sync.Do("GET", "foo")
	text, err := redis.Text(res)
	s.Require().NoError(err)
	s.Equal("bar", text)
}

// TestPipelining fires 10000 ECHOs in flight at once over a single
// Connection and checks every one completes, that ActiveCount returns
// to zero, and that responses arrive in submission order (spec scenario
// #6, P3).
func (s *Suite) TestPipelining() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	const n = 10000
	results := make([]interface{}, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		conn.Send(redis.Req("ECHO", fmt.Sprintf("%d", i)), redis.FuncFuture(func(res interface{}, _ uint64) {
			results[i] = res
			wg.Done()
		}), 0)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		text, err := redis.Text(results[i])
		s.Require().NoError(err)
		s.Equal(fmt.Sprintf("%d", i), text)
	}
	s.Eventually(func() bool { return conn.ActiveCount() == 0 }, time.Second, time.Millisecond)
}

// TestConcurrentSubmission hammers a single Connection from many
// goroutines at once and checks every request completes exactly once
// (spec scenario #7, P4).
func (s *Suite) TestConcurrentSubmission() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	const goroutines = 1000
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			sync := redis.Sync{S: conn}
			res := sync.Do("SET", fmt.Sprintf("k%d", i), i)
			s.NoError(redis.AsError(res))
			res = sync.Do("GET", fmt.Sprintf("k%d", i))
			text, err := redis.Text(res)
			s.NoError(err)
			s.Equal(fmt.Sprintf("%d", i), text)
		}()
	}
	wg.Wait()
}

func (s *Suite) TestSendMany() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	sync := redis.Sync{S: conn}
	res := sync.SendMany([]redis.Request{
		redis.Req("SET", "a", 1),
		redis.Req("INCR", "a"),
		redis.Req("GET", "a"),
	})
	s.Require().Len(res, 3)
	text, err := redis.Text(res[2])
	s.Require().NoError(err)
	s.Equal("2", text)
}

func (s *Suite) TestSendTransaction() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	sync := redis.Sync{S: conn}
	results, err := sync.SendTransaction([]redis.Request{
		redis.Req("SET", "t", 10),
		redis.Req("INCR", "t"),
	})
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	n, err := redis.Int(results[1])
	s.Require().NoError(err)
	s.Equal(int64(11), n)
}

// TestTransactionIsolatedFromConcurrentTraffic checks that another
// goroutine's unrelated requests, submitted concurrently with a
// transaction, never land between that transaction's MULTI and EXEC on
// the wire.
func (s *Suite) TestTransactionIsolatedFromConcurrentTraffic() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		sync := redis.Sync{S: conn}
		for {
			select {
			case <-stop:
				return
			default:
				sync.Do("PING")
			}
		}
	}()

	sync := redis.Sync{S: conn}
	for i := 0; i < 200; i++ {
		results, err := sync.SendTransaction([]redis.Request{
			redis.Req("SET", "tx", i),
			redis.Req("GET", "tx"),
		})
		s.Require().NoError(err)
		text, err := redis.Text(results[1])
		s.Require().NoError(err)
		s.Equal(fmt.Sprintf("%d", i), text)
	}
	close(stop)
	wg.Wait()
}

// TestDisconnectDrainsOutstanding checks that closing the underlying
// socket out from under a Connection resolves every request that was
// in flight, exactly once, with a connectivity error (spec P5).
func (s *Suite) TestDisconnectDrainsOutstanding() {
	conn := s.connect(redisconn.Opts{})

	var wg sync.WaitGroup
	wg.Add(1)
	var res interface{}
	conn.Send(redis.Req("PING"), redis.FuncFuture(func(r interface{}, _ uint64) {
		res = r
		wg.Done()
	}), 0)

	s.srv.Stop()
	wg.Wait()

	err, ok := res.(error)
	s.Require().True(ok)
	s.True(errorx.IsOfType(err, redisconn.IOFailed) || errorx.IsOfType(err, redisconn.DecodeFailed))

	s.Eventually(func() bool { return !conn.MayBeConnected() }, time.Second, time.Millisecond)
}

func (s *Suite) TestSendAfterCloseFails() {
	conn := s.connect(redisconn.Opts{})
	conn.Close()

	ch := make(chan interface{}, 1)
	conn.Send(redis.Req("PING"), redis.FuncFuture(func(res interface{}, _ uint64) {
		ch <- res
	}), 0)
	res := <-ch
	err, ok := res.(error)
	s.Require().True(ok)
	s.True(errorx.IsOfType(err, redisconn.Closed))
}

func (s *Suite) TestScanner() {
	conn := s.connect(redisconn.Opts{})
	defer conn.Close()

	sync := redis.Sync{S: conn}
	sync.Do("SET", "scankey", "v")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	it := redis.SyncCtx{S: conn}.Scanner(ctx, redis.ScanOpts{})
	keys, err := it.Next()
	s.Require().NoError(err)
	s.Contains(keys, "scankey")
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(Suite))
}
