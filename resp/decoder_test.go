package resp_test

import (
	"strings"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/nullstream/respipe/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeAll feeds the whole input in one shot and returns the single
// frame it decodes to, failing the test on Incomplete or error.
func decodeAll(t *testing.T, input string) resp.Value {
	t.Helper()
	d := resp.NewDecoder()
	c := resp.NewCursor()
	c.Feed([]byte(input))
	v, outcome, err := d.Step(c)
	require.NoError(t, err)
	require.Equal(t, resp.Done, outcome)
	return v
}

func decodeErr(t *testing.T, input string) error {
	t.Helper()
	d := resp.NewDecoder()
	c := resp.NewCursor()
	c.Feed([]byte(input))
	_, outcome, err := d.Step(c)
	require.Equal(t, resp.Done, outcome)
	require.Error(t, err)
	return err
}

func TestDecodeScenarios(t *testing.T) {
	assert.True(t, decodeAll(t, "+TEST\r\n").Equal(resp.Simple("TEST")))
	assert.True(t, decodeAll(t, ":1000\r\n").Equal(resp.Integer(1000)))
	assert.True(t, decodeAll(t, "$4\r\nTEST\r\n").Equal(resp.Bulk([]byte("TEST"))))
	assert.True(t, decodeAll(t, "$-1\r\n").Equal(resp.NullBulk()))
	assert.True(t, decodeAll(t, "*-1\r\n").Equal(resp.NullArray()))

	mixed := decodeAll(t, "*6\r\n+TEST\r\n-Error\r\n:1000\r\n$4\r\nTEST\r\n$-1\r\n*-1\r\n")
	want := resp.Arr([]resp.Value{
		resp.Simple("TEST"),
		resp.Err("Error"),
		resp.Integer(1000),
		resp.Bulk([]byte("TEST")),
		resp.NullBulk(),
		resp.NullArray(),
	})
	assert.True(t, mixed.Equal(want))
}

func TestDecodeBoundaries(t *testing.T) {
	assert.True(t, decodeAll(t, "*0\r\n").Equal(resp.Arr([]resp.Value{})))
	assert.False(t, decodeAll(t, "*0\r\n").Equal(resp.NullArray()))

	assert.True(t, decodeAll(t, "$0\r\n\r\n").Equal(resp.Bulk([]byte{})))
	assert.False(t, decodeAll(t, "$0\r\n\r\n").Equal(resp.NullBulk()))

	nested := decodeAll(t, "*1\r\n*1\r\n*1\r\n:7\r\n")
	want := resp.Arr([]resp.Value{resp.Arr([]resp.Value{resp.Arr([]resp.Value{resp.Integer(7)})})})
	assert.True(t, nested.Equal(want))

	withCRLF := decodeAll(t, "$6\r\nab\r\ncd\r\n")
	assert.True(t, withCRLF.Equal(resp.Bulk([]byte("ab\r\ncd"))))
}

func TestDecodeErrors(t *testing.T) {
	assert.True(t, errorx.IsOfType(decodeErr(t, "=foo\r\n"), resp.BadTypeByte))
	assert.True(t, errorx.IsOfType(decodeErr(t, ":\r\n"), resp.BadNumber))
	assert.True(t, errorx.IsOfType(decodeErr(t, ":bad\r\n"), resp.BadNumber))
	assert.True(t, errorx.IsOfType(decodeErr(t, "$3\r\nTEST\r\n"), resp.BadBulkTerminator))
	assert.True(t, errorx.IsOfType(decodeErr(t, "$bad\r\n"), resp.BadNumber))
	assert.True(t, errorx.IsOfType(decodeErr(t, "*bad\r\n"), resp.BadNumber))
}

func TestDecodeMessageTooLong(t *testing.T) {
	line := "+" + strings.Repeat("a", 5000) + "\r\n"
	err := decodeErr(t, line)
	assert.True(t, errorx.IsOfType(err, resp.MessageTooLong))
}

// P2: feeding the encoding of a value byte-at-a-time always yields
// Incomplete until the final byte, then the correctly decoded value.
func TestDecodeStreamingByteAtATime(t *testing.T) {
	v := resp.Arr([]resp.Value{
		resp.Simple("TEST"),
		resp.Err("Error"),
		resp.Integer(1000),
		resp.Bulk([]byte("TEST\r\nmore")),
		resp.NullBulk(),
		resp.NullArray(),
	})
	segs, err := resp.Encode(v)
	require.NoError(t, err)
	var full []byte
	for _, s := range segs {
		full = append(full, s...)
	}

	d := resp.NewDecoder()
	c := resp.NewCursor()
	buf := make([]byte, 0, len(full))
	for i, b := range full {
		buf = append(buf, b)
		c.Feed(buf)
		got, outcome, err := d.Step(c)
		require.NoError(t, err)
		if i < len(full)-1 {
			assert.Equal(t, resp.Incomplete, outcome, "byte %d of %d", i, len(full))
		} else {
			require.Equal(t, resp.Done, outcome)
			assert.True(t, got.Equal(v))
		}
	}
}

// P2 (split variant): every prefix/suffix split of an encoding yields
// Incomplete on the prefix and the value on prefix+suffix.
func TestDecodeStreamingSplit(t *testing.T) {
	values := []resp.Value{
		resp.Simple("PONG"),
		resp.Err("WRONGTYPE bad type"),
		resp.Integer(-17),
		resp.Bulk([]byte("hello\r\nworld")),
		resp.NullBulk(),
		resp.NullArray(),
		resp.Arr([]resp.Value{resp.Integer(1), resp.Simple("x")}),
	}
	for _, v := range values {
		segs, err := resp.Encode(v)
		require.NoError(t, err)
		var full []byte
		for _, s := range segs {
			full = append(full, s...)
		}
		for split := 0; split <= len(full); split++ {
			d := resp.NewDecoder()
			c := resp.NewCursor()
			if split > 0 {
				c.Feed(full[:split])
				got, outcome, err := d.Step(c)
				require.NoError(t, err)
				if split == len(full) {
					require.Equal(t, resp.Done, outcome)
					assert.True(t, got.Equal(v))
					continue
				}
				assert.Equal(t, resp.Incomplete, outcome)
			}
			c.Feed(full)
			got, outcome, err := d.Step(c)
			require.NoError(t, err)
			require.Equal(t, resp.Done, outcome)
			assert.True(t, got.Equal(v))
		}
	}
}

// Decoder is reusable across an unbounded number of frames.
func TestDecoderReusableAcrossFrames(t *testing.T) {
	d := resp.NewDecoder()
	c := resp.NewCursor()
	c.Feed([]byte("+PONG\r\n:5\r\n"))

	v1, outcome, err := d.Step(c)
	require.NoError(t, err)
	require.Equal(t, resp.Done, outcome)
	assert.True(t, v1.Equal(resp.Simple("PONG")))

	v2, outcome, err := d.Step(c)
	require.NoError(t, err)
	require.Equal(t, resp.Done, outcome)
	assert.True(t, v2.Equal(resp.Integer(5)))
}
