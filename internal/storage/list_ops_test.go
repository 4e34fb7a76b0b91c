package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashkv/flashkv/internal/resp"
)

func bulks(vals ...string) []resp.Bytes {
	out := make([]resp.Bytes, len(vals))
	for i, v := range vals {
		out[i] = resp.NewBytesFromString(v)
	}
	return out
}

func TestListOps_PushOrder(t *testing.T) {
	e := NewEngine()

	n, err := e.RPush("l", bulks("a", "b", "c")...)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	items, err := e.LRange("l", 0, -1)
	require.NoError(t, err)
	assertValues(t, []string{"a", "b", "c"}, items)

	n, err = e.LPush("l", bulks("x", "y")...)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// LPUSH l x y: y ends up closest to the head, x furthest of the two.
	items, err = e.LRange("l", 0, -1)
	require.NoError(t, err)
	assertValues(t, []string{"y", "x", "a", "b", "c"}, items)
}

func assertValues(t *testing.T, want []string, got []resp.Bytes) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, v := range got {
		assert.Equal(t, want[i], v.String())
		v.Release()
	}
}

func TestListOps_PopDeletesWhenEmpty(t *testing.T) {
	e := NewEngine()
	_, err := e.RPush("l", bulks("only")...)
	require.NoError(t, err)

	v, ok, err := e.LPop("l")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "only", v.String())
	v.Release()

	_, ok, err = e.LPop("l")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "none", e.Type("l"))
}

func TestListOps_LIndexNegative(t *testing.T) {
	e := NewEngine()
	_, _ = e.RPush("l", bulks("a", "b", "c")...)

	v, ok, err := e.LIndex("l", -1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", v.String())
	v.Release()

	_, ok, err = e.LIndex("l", 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListOps_LRangeNeverPanics(t *testing.T) {
	e := NewEngine()
	_, _ = e.RPush("l", bulks("a", "b", "c")...)

	cases := [][2]int64{
		{-100, 100},
		{5, 2},
		{-1, -1},
		{2, -100},
	}
	for _, c := range cases {
		_, err := e.LRange("l", c[0], c[1])
		assert.NoError(t, err)
	}
}

func TestListOps_LSetOutOfRange(t *testing.T) {
	e := NewEngine()
	_, _ = e.RPush("l", bulks("a")...)

	err := e.LSet("l", 5, resp.NewBytesFromString("x"))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestListOps_LRem(t *testing.T) {
	e := NewEngine()
	_, _ = e.RPush("l", bulks("a", "b", "a", "c", "a")...)

	n, err := e.LRem("l", 2, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	items, _ := e.LRange("l", 0, -1)
	assertValues(t, []string{"b", "c", "a"}, items)
}

func TestListOps_LRemAll(t *testing.T) {
	e := NewEngine()
	_, _ = e.RPush("l", bulks("a", "b", "a")...)

	n, err := e.LRem("l", 0, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	items, _ := e.LRange("l", 0, -1)
	assertValues(t, []string{"b"}, items)
}

func TestListOps_WrongType(t *testing.T) {
	e := NewEngine()
	_, _ = e.Set("k", resp.NewBytesFromString("v"), SetOpts{})

	_, err := e.LPush("k", bulks("x")...)
	assert.ErrorIs(t, err, ErrWrongType)
}
