package redis

import (
	"strconv"

	"github.com/nullstream/respipe/resp"
)

// Req builds a Request from a command name and its arguments.
func Req(cmd string, args ...interface{}) Request {
	return Request{Cmd: cmd, Args: args}
}

// Request is a command name plus its not-yet-marshaled arguments.
type Request struct {
	Cmd  string
	Args []interface{}
}

// Key returns the argument this request would route on, for callers that
// shard or log by key. RANDOMKEY and a handful of EVAL-shaped commands
// are the special cases the command set has.
func (req Request) Key() (string, bool) {
	if req.Cmd == "RANDOMKEY" {
		return "", false
	}
	n := 0
	switch req.Cmd {
	case "EVAL", "EVALSHA":
		n = 2
	case "BITOP":
		n = 1
	}
	if len(req.Args) <= n {
		return "", false
	}
	return ArgToString(req.Args[n])
}

// ToValue marshals the request into the array-of-bulk-strings shape
// every Redis command uses on the wire (spec §6.3 step 1). A nil
// argument, or one with no wire representation, fails with ArgumentType.
func (req Request) ToValue() (resp.Value, error) {
	elems := make([]resp.Value, len(req.Args)+1)
	elems[0] = resp.BulkFromString(req.Cmd)
	for i, a := range req.Args {
		s, ok := ArgToString(a)
		if !ok {
			return resp.Value{}, errArgumentType(a)
		}
		elems[i+1] = resp.BulkFromString(s)
	}
	return resp.Arr(elems), nil
}

// ArgToString converts a command argument into its wire representation.
func ArgToString(arg interface{}) (string, bool) {
	switch a := arg.(type) {
	case nil:
		return "", false
	case string:
		return a, true
	case []byte:
		return string(a), true
	case bool:
		if a {
			return "1", true
		}
		return "0", true
	case int:
		return strconv.Itoa(a), true
	case int8:
		return strconv.FormatInt(int64(a), 10), true
	case int16:
		return strconv.FormatInt(int64(a), 10), true
	case int32:
		return strconv.FormatInt(int64(a), 10), true
	case int64:
		return strconv.FormatInt(a, 10), true
	case uint:
		return strconv.FormatUint(uint64(a), 10), true
	case uint8:
		return strconv.FormatUint(uint64(a), 10), true
	case uint16:
		return strconv.FormatUint(uint64(a), 10), true
	case uint32:
		return strconv.FormatUint(uint64(a), 10), true
	case uint64:
		return strconv.FormatUint(a, 10), true
	case float32:
		return strconv.FormatFloat(float64(a), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(a, 'f', -1, 64), true
	default:
		return "", false
	}
}
