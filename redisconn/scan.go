package redisconn

import "github.com/nullstream/respipe/redis"

// scanner adapts redis.ScannerBase to redis.Scanner by driving pages
// against this Connection's Send.
type scanner struct {
	redis.ScannerBase
	c *Connection
}

// Scanner returns a fresh SCAN/HSCAN/SSCAN/ZSCAN cursor starting at "0".
func (c *Connection) Scanner(opts redis.ScanOpts) redis.Scanner {
	s := &scanner{c: c}
	s.ScanOpts = opts
	return s
}

func (s *scanner) Next(cb redis.Future) {
	if s.IterLast() {
		cb.Resolve(redis.ScanEOF, 0)
		return
	}
	s.DoNext(cb, s.c)
}
