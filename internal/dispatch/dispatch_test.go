package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

func TestExecute_UnknownCommand(t *testing.T) {
	e := storage.NewEngine()
	r := Execute(e, []string{"BOGUS"})
	require.True(t, r.IsError)
	assert.Equal(t, resp.KindError, r.Reply.Kind)
	assert.Contains(t, r.Reply.Str, "unknown command")
}

func TestExecute_EmptyCommand(t *testing.T) {
	e := storage.NewEngine()
	r := Execute(e, nil)
	assert.True(t, r.IsError)
}

func TestExecute_CommandNameIsCaseInsensitive(t *testing.T) {
	e := storage.NewEngine()
	r := Execute(e, []string{"ping"})
	assert.False(t, r.IsError)
	assert.Equal(t, "PONG", r.Reply.Str)
}

func TestExecute_Quit(t *testing.T) {
	e := storage.NewEngine()
	r := Execute(e, []string{"QUIT"})
	assert.True(t, r.Quit)
	assert.False(t, r.IsError)
	assert.Equal(t, "OK", r.Reply.Str)
}

func TestExecute_PingWithMessage(t *testing.T) {
	e := storage.NewEngine()
	r := Execute(e, []string{"PING", "hello"})
	require.Equal(t, resp.KindBulkString, r.Reply.Kind)
	assert.Equal(t, "hello", r.Reply.Bulk.String())
	r.Reply.Release()
}

func TestExecute_ArityErrors(t *testing.T) {
	e := storage.NewEngine()

	cases := [][]string{
		{"GET"},
		{"GET", "a", "b"},
		{"SET", "onlykey"},
		{"INCR"},
		{"INCRBY", "k"},
	}
	for _, args := range cases {
		r := Execute(e, args)
		assert.True(t, r.IsError, "expected arity error for %v", args)
		assert.Contains(t, r.Reply.Str, "wrong number of arguments")
	}
}

func TestExecute_SetWithOptions(t *testing.T) {
	e := storage.NewEngine()

	r := Execute(e, []string{"SET", "k", "v", "NX"})
	assert.False(t, r.IsError)
	assert.Equal(t, "OK", r.Reply.Str)

	r = Execute(e, []string{"SET", "k", "v2", "NX"})
	assert.False(t, r.IsError)
	assert.True(t, r.Reply.IsNull(), "NX against an existing key must yield a null reply")

	r = Execute(e, []string{"SET", "k", "v3", "XX", "EX", "100"})
	assert.False(t, r.IsError)
	assert.Equal(t, "OK", r.Reply.Str)

	r = Execute(e, []string{"SET", "k", "v", "BOGUSOPT"})
	assert.True(t, r.IsError)
	assert.Contains(t, r.Reply.Str, "syntax error")
}

func TestExecute_WrongTypePropagatesAsError(t *testing.T) {
	e := storage.NewEngine()
	Execute(e, []string{"LPUSH", "l", "a"})

	r := Execute(e, []string{"GET", "l"})
	assert.True(t, r.IsError)
	assert.Contains(t, r.Reply.Str, "WRONGTYPE")
}

func TestExecute_IncrDecrRoundTrip(t *testing.T) {
	e := storage.NewEngine()

	r := Execute(e, []string{"INCRBY", "n", "10"})
	require.False(t, r.IsError)
	assert.Equal(t, int64(10), r.Reply.Int)

	r = Execute(e, []string{"DECRBY", "n", "3"})
	require.False(t, r.IsError)
	assert.Equal(t, int64(7), r.Reply.Int)

	r = Execute(e, []string{"INCRBY", "n", "notanumber"})
	assert.True(t, r.IsError)
}

func TestExecute_ListCommands(t *testing.T) {
	e := storage.NewEngine()

	r := Execute(e, []string{"RPUSH", "l", "a", "b", "c"})
	require.False(t, r.IsError)
	assert.Equal(t, int64(3), r.Reply.Int)

	r = Execute(e, []string{"LLEN", "l"})
	assert.Equal(t, int64(3), r.Reply.Int)

	r = Execute(e, []string{"LRANGE", "l", "0", "-1"})
	require.Equal(t, resp.KindArray, r.Reply.Kind)
	require.Len(t, r.Reply.Array, 3)
	assert.Equal(t, "a", r.Reply.Array[0].Bulk.String())
	r.Reply.Release()

	r = Execute(e, []string{"LPOP", "l"})
	assert.Equal(t, "a", r.Reply.Bulk.String())
	r.Reply.Release()
}

func TestExecute_DbSize(t *testing.T) {
	e := storage.NewEngine()

	r := Execute(e, []string{"DBSIZE"})
	require.False(t, r.IsError)
	assert.Equal(t, int64(0), r.Reply.Int)

	Execute(e, []string{"SET", "a", "1"})
	Execute(e, []string{"SET", "b", "2"})

	r = Execute(e, []string{"DBSIZE"})
	assert.Equal(t, int64(2), r.Reply.Int)

	r = Execute(e, []string{"DBSIZE", "extra"})
	assert.True(t, r.IsError)
}

func TestExecute_ExistsAndDel(t *testing.T) {
	e := storage.NewEngine()
	Execute(e, []string{"SET", "a", "1"})
	Execute(e, []string{"SET", "b", "2"})

	r := Execute(e, []string{"EXISTS", "a", "b", "missing"})
	assert.Equal(t, int64(2), r.Reply.Int)

	r = Execute(e, []string{"DEL", "a", "b"})
	assert.Equal(t, int64(2), r.Reply.Int)
}
