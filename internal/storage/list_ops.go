package storage

import (
	"container/list"
	"time"

	"github.com/flashkv/flashkv/internal/resp"
)

// lookupListLocked returns the live list entry for key, or nil. Caller
// holds s.listsMu.
func lookupListLocked(s *shard, key string, now time.Time) *ListEntry {
	ent, ok := s.lists[key]
	if !ok || ent.Expired(now) {
		return nil
	}
	return ent
}

func (e *Engine) checkNotStringLocked(s *shard, key string, now time.Time) error {
	s.stringsMu.RLock()
	defer s.stringsMu.RUnlock()
	if lookupStringLocked(s, key, now) != nil {
		return ErrWrongType
	}
	return nil
}

// LPush pushes each value to the head, in argument order, so v1 ends up
// furthest from the head after all pushes complete. Returns the new length.
func (e *Engine) LPush(key string, values ...resp.Bytes) (int64, error) {
	return e.pushMany(key, values, true)
}

// RPush pushes each value to the tail, in argument order.
func (e *Engine) RPush(key string, values ...resp.Bytes) (int64, error) {
	return e.pushMany(key, values, false)
}

func (e *Engine) pushMany(key string, values []resp.Bytes, head bool) (int64, error) {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return 0, err
	}

	s.listsMu.Lock()
	defer s.listsMu.Unlock()

	ent := lookupListLocked(s, key, now)
	if ent == nil {
		if stale, ok := s.lists[key]; ok {
			stale.releaseItems()
		} else {
			e.counters.addKeyCount(1)
		}
		ent = newListEntry()
		s.lists[key] = ent
	}

	for _, v := range values {
		if head {
			ent.Items.PushFront(v)
		} else {
			ent.Items.PushBack(v)
		}
	}
	return int64(ent.Len()), nil
}

// LPop removes and returns the head element; ok is false if the key is
// missing. Deletes the entry if it becomes empty.
func (e *Engine) LPop(key string) (resp.Bytes, bool, error) {
	return e.pop(key, true)
}

// RPop removes and returns the tail element.
func (e *Engine) RPop(key string) (resp.Bytes, bool, error) {
	return e.pop(key, false)
}

func (e *Engine) pop(key string, head bool) (resp.Bytes, bool, error) {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return resp.Bytes{}, false, err
	}

	s.listsMu.Lock()
	defer s.listsMu.Unlock()

	ent := lookupListLocked(s, key, now)
	if ent == nil {
		return resp.Bytes{}, false, nil
	}

	var el *list.Element
	if head {
		el = ent.Items.Front()
	} else {
		el = ent.Items.Back()
	}
	v := el.Value.(resp.Bytes)
	ent.Items.Remove(el)

	if ent.Items.Len() == 0 {
		delete(s.lists, key)
		e.counters.addKeyCount(-1)
	}
	return v, true, nil
}

// LLen returns 0 for missing keys.
func (e *Engine) LLen(key string) (int64, error) {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return 0, err
	}

	s.listsMu.RLock()
	defer s.listsMu.RUnlock()
	if ent := lookupListLocked(s, key, now); ent != nil {
		return int64(ent.Len()), nil
	}
	return 0, nil
}

// LIndex resolves negative i as len+i; returns ok=false if out of range.
func (e *Engine) LIndex(key string, i int64) (resp.Bytes, bool, error) {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return resp.Bytes{}, false, err
	}

	s.listsMu.RLock()
	defer s.listsMu.RUnlock()
	ent := lookupListLocked(s, key, now)
	if ent == nil {
		return resp.Bytes{}, false, nil
	}
	n := int64(ent.Len())
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return resp.Bytes{}, false, nil
	}
	el := elementAt(ent.Items, i)
	return el.Value.(resp.Bytes).Clone(), true, nil
}

// LRange normalises both bounds (negative = from-end, clamped to
// [0, len-1]) and returns the inclusive range. Never panics on any pair of
// i64 arguments; inverted or empty ranges yield an empty slice.
func (e *Engine) LRange(key string, start, stop int64) ([]resp.Bytes, error) {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return nil, err
	}

	s.listsMu.RLock()
	defer s.listsMu.RUnlock()
	ent := lookupListLocked(s, key, now)
	if ent == nil {
		return nil, nil
	}
	n := int64(ent.Len())
	if n == 0 {
		return nil, nil
	}

	start = normalizeIndex(start, n)
	stop = normalizeIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil, nil
	}

	out := make([]resp.Bytes, 0, stop-start+1)
	el := elementAt(ent.Items, start)
	for i := start; i <= stop && el != nil; i++ {
		out = append(out, el.Value.(resp.Bytes).Clone())
		el = el.Next()
	}
	return out, nil
}

func normalizeIndex(i, n int64) int64 {
	if i < 0 {
		i += n
	}
	return i
}

// LSet replaces the element at index i (after normalisation). Fails with
// ErrIndexOutOfRange if i is out of bounds after normalisation.
func (e *Engine) LSet(key string, i int64, value resp.Bytes) error {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return err
	}

	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	ent := lookupListLocked(s, key, now)
	if ent == nil {
		return ErrIndexOutOfRange
	}
	n := int64(ent.Len())
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return ErrIndexOutOfRange
	}
	el := elementAt(ent.Items, i)
	el.Value.(resp.Bytes).Release()
	el.Value = value
	return nil
}

// LRem removes elements equal to value: the first count from head-to-tail
// if count > 0, the first |count| from tail-to-head if count < 0, or all
// of them if count == 0. Returns the number removed.
func (e *Engine) LRem(key string, count int64, value []byte) (int64, error) {
	s := e.shardFor(key)
	now := time.Now()

	if err := e.checkNotStringLocked(s, key, now); err != nil {
		return 0, err
	}

	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	ent := lookupListLocked(s, key, now)
	if ent == nil {
		return 0, nil
	}

	var removed int64
	limit := count
	if limit < 0 {
		limit = -limit
	}

	if count >= 0 {
		el := ent.Items.Front()
		for el != nil && (count == 0 || removed < limit) {
			next := el.Next()
			if bytesEqual(el.Value.(resp.Bytes).Data(), value) {
				el.Value.(resp.Bytes).Release()
				ent.Items.Remove(el)
				removed++
			}
			el = next
		}
	} else {
		el := ent.Items.Back()
		for el != nil && removed < limit {
			prev := el.Prev()
			if bytesEqual(el.Value.(resp.Bytes).Data(), value) {
				el.Value.(resp.Bytes).Release()
				ent.Items.Remove(el)
				removed++
			}
			el = prev
		}
	}

	if ent.Items.Len() == 0 {
		delete(s.lists, key)
		e.counters.addKeyCount(-1)
	}
	return removed, nil
}

func elementAt(l *list.List, i int64) *list.Element {
	el := l.Front()
	for n := int64(0); n < i && el != nil; n++ {
		el = el.Next()
	}
	return el
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
