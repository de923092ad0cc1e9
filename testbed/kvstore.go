package testbed

import (
	"strconv"
	"sync"

	"github.com/nullstream/respipe/resp"
)

// KVStore is a tiny in-memory command handler covering enough of the
// command set to exercise redisconn end-to-end: connection handshake
// commands, basic key/value commands, and SCAN.
type KVStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewKVStore returns an empty store whose Handle method is a Handler.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (kv *KVStore) Handle(args [][]byte) resp.Value {
	cmd := upper(string(args[0]))
	rest := args[1:]

	switch cmd {
	case "PING":
		if len(rest) == 0 {
			return resp.Simple("PONG")
		}
		return resp.Bulk(rest[0])
	case "ECHO":
		if len(rest) != 1 {
			return resp.Err("ERR wrong number of arguments for 'echo' command")
		}
		return resp.Bulk(rest[0])
	case "AUTH", "SELECT":
		return resp.Simple("OK")
	case "SET":
		if len(rest) < 2 {
			return resp.Err("ERR wrong number of arguments for 'set' command")
		}
		kv.mu.Lock()
		kv.data[string(rest[0])] = append([]byte(nil), rest[1]...)
		kv.mu.Unlock()
		return resp.Simple("OK")
	case "GET":
		if len(rest) != 1 {
			return resp.Err("ERR wrong number of arguments for 'get' command")
		}
		kv.mu.Lock()
		v, ok := kv.data[string(rest[0])]
		kv.mu.Unlock()
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(v)
	case "DEL":
		kv.mu.Lock()
		n := int64(0)
		for _, k := range rest {
			if _, ok := kv.data[string(k)]; ok {
				delete(kv.data, string(k))
				n++
			}
		}
		kv.mu.Unlock()
		return resp.Integer(n)
	case "EXISTS":
		kv.mu.Lock()
		n := int64(0)
		for _, k := range rest {
			if _, ok := kv.data[string(k)]; ok {
				n++
			}
		}
		kv.mu.Unlock()
		return resp.Integer(n)
	case "INCR", "INCRBY":
		if cmd == "INCR" && len(rest) != 1 {
			return resp.Err("ERR wrong number of arguments for 'incr' command")
		}
		if cmd == "INCRBY" && len(rest) != 2 {
			return resp.Err("ERR wrong number of arguments for 'incrby' command")
		}
		delta := int64(1)
		if cmd == "INCRBY" {
			d, err := strconv.ParseInt(string(rest[1]), 10, 64)
			if err != nil {
				return resp.Err("ERR value is not an integer or out of range")
			}
			delta = d
		}
		kv.mu.Lock()
		defer kv.mu.Unlock()
		cur := int64(0)
		if b, ok := kv.data[string(rest[0])]; ok {
			n, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return resp.Err("ERR value is not an integer or out of range")
			}
			cur = n
		}
		cur += delta
		kv.data[string(rest[0])] = []byte(strconv.FormatInt(cur, 10))
		return resp.Integer(cur)
	case "SCAN":
		if len(rest) == 0 {
			return resp.Err("ERR wrong number of arguments for 'scan' command")
		}
		kv.mu.Lock()
		keys := make([]resp.Value, 0, len(kv.data))
		for k := range kv.data {
			keys = append(keys, resp.BulkFromString(k))
		}
		kv.mu.Unlock()
		return resp.Arr([]resp.Value{resp.BulkFromString("0"), resp.Arr(keys)})
	default:
		return resp.Err("ERR unknown command '" + cmd + "'")
	}
}
