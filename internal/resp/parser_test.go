package resp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Framed(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want Value
	}{
		{"simple string", "+OK\r\n", SimpleString("OK")},
		{"error", "-ERR bad\r\n", ErrorReply("ERR bad")},
		{"integer", ":42\r\n", Integer(42)},
		{"negative integer", ":-7\r\n", Integer(-7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, consumed, ok, err := Parse([]byte(tt.wire))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, len(tt.wire), consumed)
			assert.Equal(t, tt.want.Kind, val.Kind)
			assert.Equal(t, tt.want.Str, val.Str)
			assert.Equal(t, tt.want.Int, val.Int)
		})
	}
}

func TestParse_BulkString(t *testing.T) {
	val, consumed, ok, err := Parse([]byte("$5\r\nhello\r\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, consumed)
	assert.Equal(t, KindBulkString, val.Kind)
	assert.Equal(t, "hello", val.Bulk.String())
	val.Release()
}

func TestParse_NullBulk(t *testing.T) {
	val, consumed, ok, err := Parse([]byte("$-1\r\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, consumed)
	assert.True(t, val.IsNull())
}

func TestParse_Array(t *testing.T) {
	wire := "*2\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	val, consumed, ok, err := Parse([]byte(wire))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, len(wire), consumed)
	require.Equal(t, KindArray, val.Kind)
	require.Len(t, val.Array, 2)
	assert.Equal(t, []string{"foo", "bar"}, val.StringArgs())
	val.Release()
}

func TestParse_NullArray(t *testing.T) {
	val, _, ok, err := Parse([]byte("*-1\r\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, val.IsNull())
}

func TestParse_NeedMore(t *testing.T) {
	cases := []string{
		"",
		"$5\r\nhel",
		"*2\r\n$3\r\nfoo\r\n",
		"+OK",
		":4",
	}
	for _, wire := range cases {
		_, _, ok, err := Parse([]byte(wire))
		assert.False(t, ok, "wire %q", wire)
		assert.NoError(t, err, "wire %q", wire)
	}
}

func TestParse_IncrementalEquivalence(t *testing.T) {
	full := "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	oneShot, consumed, ok, err := Parse([]byte(full))
	require.NoError(t, err)
	require.True(t, ok)
	oneShotArgs := oneShot.StringArgs()
	oneShot.Release()

	// Feed the same bytes one at a time; only once the whole frame has
	// arrived should Parse report Complete, with the same consumed count
	// and the same decoded arguments as the one-shot parse.
	var buf []byte
	for i := 0; i < len(full); i++ {
		buf = append(buf, full[i])
		val, n, ok, err := Parse(buf)
		require.NoError(t, err)
		if i < len(full)-1 {
			assert.False(t, ok, "expected NeedMore at byte %d", i)
			continue
		}
		require.True(t, ok)
		assert.Equal(t, consumed, n)
		assert.Equal(t, oneShotArgs, val.StringArgs())
		val.Release()
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		wire string
		kind ErrorKind
	}{
		// At top level an unknown first byte starts an inline command, so
		// the unknown prefix is placed inside an array element.
		{"unknown prefix", "*1\r\n!oops\r\n", ErrUnknownPrefix},
		{"bad integer", ":nope\r\n", ErrProtocolError},
		{"bad bulk length", "$nope\r\nhi\r\n", ErrInvalidBulkLength},
		{"bad array length", "*nope\r\n", ErrInvalidArrayLength},
		{"oversize bulk", "$536870913\r\n", ErrMessageTooLarge},
		{"missing trailing crlf", "$3\r\nfooXX", ErrProtocolError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok, err := Parse([]byte(tt.wire))
			require.Error(t, err)
			assert.False(t, ok)
			perr, isParseErr := err.(*ParseError)
			require.True(t, isParseErr)
			assert.Equal(t, tt.kind, perr.Kind)
		})
	}
}

func TestParse_NestingDepthExceeded(t *testing.T) {
	var wire bytes.Buffer
	for i := 0; i < MaxNestingDepth+1; i++ {
		wire.WriteString("*1\r\n")
	}
	wire.WriteString(":1\r\n")

	_, _, ok, err := Parse(wire.Bytes())
	require.Error(t, err)
	assert.False(t, ok)
	perr, isParseErr := err.(*ParseError)
	require.True(t, isParseErr)
	assert.Equal(t, ErrProtocolError, perr.Kind)
}

func TestParse_InlineCommand(t *testing.T) {
	val, consumed, ok, err := Parse([]byte("PING hello\r\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, len("PING hello\r\n"), consumed)
	assert.Equal(t, []string{"PING", "hello"}, val.StringArgs())
	val.Release()
}

func TestParse_InlineEmptyLine(t *testing.T) {
	val, _, ok, err := Parse([]byte("\r\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindArray, val.Kind)
	assert.Len(t, val.Array, 0)
}

func TestWriteValue_RoundTrip(t *testing.T) {
	values := []Value{
		SimpleString("OK"),
		ErrorReply("ERR bad"),
		Integer(-123),
		BulkFromString("hello"),
		NullBulk(),
		ArrayOf([]Value{BulkFromString("a"), Integer(1)}),
		NullArray(),
	}

	for _, v := range values {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		require.NoError(t, WriteValue(w, v))
		require.NoError(t, w.Flush())

		got, consumed, ok, err := Parse(buf.Bytes())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, buf.Len(), consumed)
		assert.Equal(t, v.Kind, got.Kind)
		got.Release()
		v.Release()
	}
}
