package redis_test

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/nullstream/respipe/redis"
	"github.com/nullstream/respipe/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestKey(t *testing.T) {
	k, ok := redis.Req("GET", 1).Key()
	assert.Equal(t, "1", k)
	assert.True(t, ok)

	_, ok = redis.Req("GET").Key()
	assert.False(t, ok)

	k, ok = redis.Req("SET", 1, 2).Key()
	assert.Equal(t, "1", k)
	assert.True(t, ok)

	_, ok = redis.Req("RANDOMKEY").Key()
	assert.False(t, ok)

	k, ok = redis.Req("EVAL", 1, 2, 3).Key()
	assert.Equal(t, "3", k)
	assert.True(t, ok)

	k, ok = redis.Req("BITOP", "AND", 1, 2).Key()
	assert.Equal(t, "1", k)
	assert.True(t, ok)
}

func TestArgToString(t *testing.T) {
	cases := []struct {
		arg  interface{}
		want string
		ok   bool
	}{
		{int(0), "0", true},
		{uint(1), "1", true},
		{int8(-31), "-31", true},
		{uint8(156), "156", true},
		{int64(9223372036854775807), "9223372036854775807", true},
		{int64(-9223372036854775808), "-9223372036854775808", true},
		{uint64(18446744073709551615), "18446744073709551615", true},
		{float32(0.25), "0.25", true},
		{float64(-10000.25), "-10000.25", true},
		{true, "1", true},
		{false, "0", true},
		{"asdf", "asdf", true},
		{[]byte("asdf"), "asdf", true},
		{nil, "", false},
		{make(chan int), "", false},
	}
	for _, c := range cases {
		got, ok := redis.ArgToString(c.arg)
		assert.Equal(t, c.want, got, "%#v", c.arg)
		assert.Equal(t, c.ok, ok, "%#v", c.arg)
	}
}

func TestRequestToValue(t *testing.T) {
	v, err := redis.Req("GET", "one").ToValue()
	require.NoError(t, err)
	want := resp.Arr([]resp.Value{resp.BulkFromString("GET"), resp.BulkFromString("one")})
	assert.True(t, v.Equal(want))

	v, err = redis.Req("INCRBY", "cnt", 5).ToValue()
	require.NoError(t, err)
	want = resp.Arr([]resp.Value{
		resp.BulkFromString("INCRBY"),
		resp.BulkFromString("cnt"),
		resp.BulkFromString("5"),
	})
	assert.True(t, v.Equal(want))

	_, err = redis.Req("SENDFOO", make(chan int)).ToValue()
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, redis.ArgumentType))

	_, err = redis.Req("SET", "k", nil).ToValue()
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, redis.ArgumentType))
}
