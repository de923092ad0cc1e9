// Package bufpool recycles the fixed-size read/write buffers a
// redisconn.Connection uses for its lifetime, so a program that dials
// and closes many connections over time (tests, short-lived batch jobs)
// doesn't repeatedly allocate and discard the same multi-megabyte
// slices. It is the teacher's worker-pool helper (formerly
// internal/pool.go, also duplicated under impltool/) retargeted from
// goroutine dispatch to byte-slice reuse: sized buckets instead of sized
// workers, sync.Pool instead of a hand-rolled channel ring.
package bufpool

import "sync"

// Pool hands out zero-length buffers bucketed by capacity.
type Pool struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// New returns an empty Pool. The zero value is not usable; always
// construct through New.
func New() *Pool {
	return &Pool{pools: make(map[int]*sync.Pool)}
}

func (p *Pool) poolFor(size int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.pools[size]
	if !ok {
		sp = &sync.Pool{New: func() interface{} { return make([]byte, 0, size) }}
		p.pools[size] = sp
	}
	return sp
}

// Get returns a buffer with length 0 and capacity exactly size, either
// freshly allocated or recycled from a previous Put of the same size.
func (p *Pool) Get(size int) []byte {
	return p.poolFor(size).Get().([]byte)[:0]
}

// Put returns b to the bucket matching its capacity, for reuse by a
// later Get of the same size. A buffer whose capacity was never Get from
// this Pool (e.g. one that outgrew its original bucket) is simply
// dropped rather than pooled under a bucket it doesn't belong to.
func (p *Pool) Put(b []byte) {
	size := cap(b)
	if size == 0 {
		return
	}
	p.mu.Lock()
	sp, ok := p.pools[size]
	p.mu.Unlock()
	if ok {
		sp.Put(b[:0])
	}
}

// Default is the package-wide pool redisconn buffers through.
var Default = New()
