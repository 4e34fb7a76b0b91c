package storage

import (
	"container/list"
	"time"

	"github.com/flashkv/flashkv/internal/resp"
)

// StringEntry is the binding for a key holding an opaque, binary-safe byte
// buffer, per spec.md §3.
type StringEntry struct {
	Value        resp.Bytes
	ExpiresAt    time.Time // zero value => no expiry
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Expired reports whether the entry is past its expiry at the given
// monotonic instant. A zero ExpiresAt means "never expires".
func (e *StringEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// ListEntry is the binding for a key holding an ordered sequence of opaque
// byte buffers. It is implemented over container/list for O(1) push/pop at
// both ends; indexed access (LINDEX/LRANGE/LSET) walks the list, which is
// the same O(n) cost the spec calls out as acceptable for those ops.
//
// No third-party container in the retrieval pack offers a ready-made
// binary-safe deque, and this is core list-entry logic rather than an
// ambient concern — see DESIGN.md for the fuller justification.
type ListEntry struct {
	Items     *list.List // element type: resp.Bytes
	ExpiresAt time.Time
	CreatedAt time.Time
}

func newListEntry() *ListEntry {
	return &ListEntry{Items: list.New(), CreatedAt: time.Now()}
}

// Expired reports whether the entry is past its expiry.
func (e *ListEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Len returns the number of items in the list.
func (e *ListEntry) Len() int { return e.Items.Len() }

// releaseItems returns every item's Bytes handle to its pool. Called when a
// list entry is dropped entirely (deleted key, expiry, flush).
func (e *ListEntry) releaseItems() {
	for el := e.Items.Front(); el != nil; el = el.Next() {
		el.Value.(resp.Bytes).Release()
	}
}
