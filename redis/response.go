package redis

import (
	"strconv"

	"github.com/nullstream/respipe/resp"
)

// AsError reports whether res (as delivered to a Future) is an error:
// either a transport-level failure or a resp.Value carrying an Error
// reply, surfaced as ServerError. It returns nil for any other value.
func AsError(res interface{}) error {
	if err, ok := res.(error); ok {
		return err
	}
	if v, ok := res.(resp.Value); ok && v.Kind == resp.KindError {
		return ServerError.New(v.Str)
	}
	return nil
}

func valueOf(res interface{}) (resp.Value, error) {
	if err, ok := res.(error); ok {
		return resp.Value{}, err
	}
	v, ok := res.(resp.Value)
	if !ok {
		return resp.Value{}, errInvalidResponse(res)
	}
	if v.Kind == resp.KindError {
		return resp.Value{}, ServerError.New(v.Str)
	}
	return v, nil
}

// Int coerces an Integer response to int64 (spec §6.3 step 3).
func Int(res interface{}) (int64, error) {
	v, err := valueOf(res)
	if err != nil {
		return 0, err
	}
	if v.Kind != resp.KindInteger {
		return 0, errInvalidResponse(res)
	}
	return v.Int, nil
}

// Bool coerces an Integer response to bool: n > 0.
func Bool(res interface{}) (bool, error) {
	n, err := Int(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Bytes coerces a BulkString response to its raw payload. A NullBulk
// coerces to (nil, nil), matching the server's convention that a missing
// key and an empty value are distinguishable.
func Bytes(res interface{}) ([]byte, error) {
	v, err := valueOf(res)
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case resp.KindBulk:
		return v.Bulk, nil
	case resp.KindNullBulk:
		return nil, nil
	default:
		return nil, errInvalidResponse(res)
	}
}

func textFrom(v resp.Value) (string, error) {
	switch v.Kind {
	case resp.KindSimple:
		return v.Str, nil
	case resp.KindBulk:
		return string(v.Bulk), nil
	default:
		return "", errInvalidResponse(v)
	}
}

// Text coerces a Simple or BulkString response to a string.
func Text(res interface{}) (string, error) {
	v, err := valueOf(res)
	if err != nil {
		return "", err
	}
	return textFrom(v)
}

// Float coerces a BulkString response holding a decimal literal (the
// shape ZSCORE, INCRBYFLOAT, and friends use) to float64.
func Float(res interface{}) (float64, error) {
	b, err := Bytes(res)
	if err != nil {
		return 0, err
	}
	f, perr := strconv.ParseFloat(string(b), 64)
	if perr != nil {
		return 0, errInvalidResponse(res)
	}
	return f, nil
}

// Array coerces an Array response to its element slice.
func Array(res interface{}) ([]resp.Value, error) {
	v, err := valueOf(res)
	if err != nil {
		return nil, err
	}
	if v.Kind != resp.KindArray {
		return nil, errInvalidResponse(res)
	}
	return v.Array, nil
}

// ScanResponse decodes the two-element [cursor, keys] shape SCAN and its
// HSCAN/SSCAN/ZSCAN relatives return.
func ScanResponse(res interface{}) ([]byte, []string, error) {
	arr, err := Array(res)
	if err != nil {
		return nil, nil, err
	}
	if len(arr) != 2 || arr[0].Kind != resp.KindBulk || arr[1].Kind != resp.KindArray {
		return nil, nil, errInvalidResponse(res)
	}
	keys := make([]string, len(arr[1].Array))
	for i, e := range arr[1].Array {
		s, err := textFrom(e)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = s
	}
	return arr[0].Bulk, keys, nil
}

// PopResponse decodes the two-element [key, value] shape a blocking pop
// (BLPOP, BRPOP, ...) returns. A NullArray response (the pop timed out)
// is reported via the returned ok flag instead of an error.
func PopResponse(res interface{}) (key, value string, ok bool, err error) {
	v, verr := valueOf(res)
	if verr != nil {
		return "", "", false, verr
	}
	if v.Kind == resp.KindNullArray {
		return "", "", false, nil
	}
	if v.Kind != resp.KindArray || len(v.Array) != 2 {
		return "", "", false, errInvalidResponse(res)
	}
	key, err = textFrom(v.Array[0])
	if err != nil {
		return "", "", false, err
	}
	value, err = textFrom(v.Array[1])
	if err != nil {
		return "", "", false, err
	}
	return key, value, true, nil
}

// TransactionResponse decodes the Array of per-command replies EXEC
// returns. A transport-level error, or a nil/non-Array reply (WATCH
// aborted the transaction), is reported as an error.
func TransactionResponse(res interface{}) ([]resp.Value, error) {
	if err, ok := res.(error); ok {
		return nil, err
	}
	v, ok := res.(resp.Value)
	if !ok {
		return nil, errInvalidResponse(res)
	}
	if v.Kind == resp.KindNullArray {
		return nil, errInvalidResponse(res)
	}
	if v.Kind != resp.KindArray {
		return nil, errInvalidResponse(res)
	}
	return v.Array, nil
}
