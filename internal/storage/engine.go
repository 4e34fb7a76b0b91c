// Package storage implements the sharded, TTL-aware in-memory keyspace
// described in spec.md §3/§4.2: a fixed array of independently-locked
// shards, each owning a string map and a list map, with lazy expiry on
// every read and atomic, advisory statistics.
package storage

import (
	"strconv"
	"time"

	"github.com/flashkv/flashkv/internal/resp"
)

// Engine is the shared, concurrency-safe keyspace. A single Engine is
// cloned (by reference) across every connection and the sweeper, matching
// spec.md §5's "shared-ownership handle" model.
type Engine struct {
	shards   [NumShards]*shard
	counters counters
}

// NewEngine constructs an empty keyspace.
func NewEngine() *Engine {
	e := &Engine{}
	for i := range e.shards {
		e.shards[i] = newShard()
	}
	return e
}

func (e *Engine) shardFor(key string) *shard {
	return e.shards[shardIndex(key)]
}

// Get implements the GET-shape read operation: read lock, lazy-expiry
// upgrade on a stale hit, cloned value on success.
func (e *Engine) Get(key string) (resp.Bytes, bool) {
	s := e.shardFor(key)
	now := time.Now()

	s.stringsMu.RLock()
	ent, ok := s.strings[key]
	if !ok {
		s.stringsMu.RUnlock()
		e.counters.incrGet()
		return resp.Bytes{}, false
	}
	if !ent.Expired(now) {
		ent.LastAccessed = now
		v := ent.Value.Clone()
		s.stringsMu.RUnlock()
		e.counters.incrGet()
		return v, true
	}
	s.stringsMu.RUnlock()

	s.stringsMu.Lock()
	ent, ok = s.strings[key]
	if ok && ent.Expired(now) {
		ent.Value.Release()
		delete(s.strings, key)
		e.counters.addKeyCount(-1)
		e.counters.incrExpired(1)
		ok = false
	}
	s.stringsMu.Unlock()

	e.counters.incrGet()
	if !ok {
		return resp.Bytes{}, false
	}
	s.stringsMu.RLock()
	defer s.stringsMu.RUnlock()
	ent, ok = s.strings[key]
	if !ok {
		return resp.Bytes{}, false
	}
	return ent.Value.Clone(), true
}

// SetOpts controls SET-shape write semantics: optional TTL and
// NX/XX conditional binding (spec.md §4.2).
type SetOpts struct {
	TTL time.Duration // 0 means no expiry
	NX  bool          // bind only if currently unbound
	XX  bool          // bind only if currently bound
}

// Set implements the SET-shape write operation. Returns ok=false without
// writing when an NX/XX precondition fails; err is non-nil only on
// WRONGTYPE (the key is bound as a list).
func (e *Engine) Set(key string, value resp.Bytes, opts SetOpts) (ok bool, err error) {
	s := e.shardFor(key)
	now := time.Now()

	s.listsMu.RLock()
	_, isList := s.lists[key]
	s.listsMu.RUnlock()
	if isList {
		return false, ErrWrongType
	}

	s.stringsMu.Lock()
	defer s.stringsMu.Unlock()

	existing, bound := s.strings[key]
	if bound && existing.Expired(now) {
		bound = false
	}

	if opts.NX && bound {
		return false, nil
	}
	if opts.XX && !bound {
		return false, nil
	}

	var expiresAt time.Time
	if opts.TTL > 0 {
		expiresAt = now.Add(opts.TTL)
	}

	if bound {
		existing.Value.Release()
	} else {
		e.counters.addKeyCount(1)
	}
	s.strings[key] = &StringEntry{
		Value:        value,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		LastAccessed: now,
	}
	e.counters.incrSet()
	return true, nil
}

// lookupStringLocked returns the live (non-expired) entry for key, or nil.
// Caller must hold s.stringsMu for reading or writing.
func lookupStringLocked(s *shard, key string, now time.Time) *StringEntry {
	ent, ok := s.strings[key]
	if !ok || ent.Expired(now) {
		return nil
	}
	return ent
}

// incrBy implements INCR/INCRBY/DECR/DECRBY: parse-as-int64, overflow
// checked add, TTL-preserving write-back.
func (e *Engine) incrBy(key string, delta int64) (int64, error) {
	s := e.shardFor(key)
	now := time.Now()

	s.listsMu.RLock()
	_, isList := s.lists[key]
	s.listsMu.RUnlock()
	if isList {
		return 0, ErrWrongType
	}

	s.stringsMu.Lock()
	defer s.stringsMu.Unlock()

	ent := lookupStringLocked(s, key, now)
	var cur int64
	var expiresAt time.Time
	var createdAt = now
	if ent != nil {
		parsed, perr := strconv.ParseInt(ent.Value.String(), 10, 64)
		if perr != nil {
			return 0, ErrNotAnInteger
		}
		cur = parsed
		expiresAt = ent.ExpiresAt
		createdAt = ent.CreatedAt
	}

	next, overflow := addOverflow(cur, delta)
	if overflow {
		return 0, ErrIntegerOverflow
	}

	newVal := resp.NewBytesFromString(strconv.FormatInt(next, 10))
	if ent != nil {
		ent.Value.Release()
		ent.Value = newVal
		ent.LastAccessed = now
	} else {
		s.strings[key] = &StringEntry{
			Value:        newVal,
			ExpiresAt:    expiresAt,
			CreatedAt:    createdAt,
			LastAccessed: now,
		}
		e.counters.addKeyCount(1)
	}
	return next, nil
}

func addOverflow(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, true
	}
	return sum, false
}

func (e *Engine) Incr(key string) (int64, error)            { return e.incrBy(key, 1) }
func (e *Engine) Decr(key string) (int64, error)            { return e.incrBy(key, -1) }
func (e *Engine) IncrBy(key string, n int64) (int64, error) { return e.incrBy(key, n) }
func (e *Engine) DecrBy(key string, n int64) (int64, error) {
	if n == minInt64 {
		return 0, ErrIntegerOverflow
	}
	return e.incrBy(key, -n)
}

const minInt64 = -1 << 63

// Append implements APPEND: concatenate onto the existing value (missing
// or expired treated as empty), preserving TTL. Returns the new length.
func (e *Engine) Append(key string, suffix []byte) (int64, error) {
	s := e.shardFor(key)
	now := time.Now()

	s.listsMu.RLock()
	_, isList := s.lists[key]
	s.listsMu.RUnlock()
	if isList {
		return 0, ErrWrongType
	}

	s.stringsMu.Lock()
	defer s.stringsMu.Unlock()

	ent := lookupStringLocked(s, key, now)
	if ent == nil {
		nv := resp.NewBytes(suffix)
		if old, stale := s.strings[key]; stale {
			old.Value.Release()
		} else {
			e.counters.addKeyCount(1)
		}
		s.strings[key] = &StringEntry{Value: nv, CreatedAt: now, LastAccessed: now}
		return int64(nv.Len()), nil
	}

	combined := make([]byte, 0, ent.Value.Len()+len(suffix))
	combined = append(combined, ent.Value.Data()...)
	combined = append(combined, suffix...)
	nv := resp.NewBytes(combined)
	ent.Value.Release()
	ent.Value = nv
	ent.LastAccessed = now
	return int64(nv.Len()), nil
}

// Del removes one or more keys (string or list) from their shards.
// Returns the number actually removed.
func (e *Engine) Del(keys ...string) int64 {
	var removed int64
	now := time.Now()
	for _, key := range keys {
		s := e.shardFor(key)

		s.stringsMu.Lock()
		if ent, ok := s.strings[key]; ok {
			ent.Value.Release()
			delete(s.strings, key)
			if !ent.Expired(now) {
				removed++
			}
		}
		s.stringsMu.Unlock()

		s.listsMu.Lock()
		if ent, ok := s.lists[key]; ok {
			ent.releaseItems()
			delete(s.lists, key)
			if !ent.Expired(now) {
				removed++
			}
		}
		s.listsMu.Unlock()
	}
	if removed > 0 {
		e.counters.addKeyCount(-removed)
		e.counters.incrDel(removed)
	}
	return removed
}

// Expire assigns expires_at = now + ttl to an existing, non-expired entry.
// A non-positive ttl deletes the key and reports success. Returns false if
// the key does not exist (or is already expired).
func (e *Engine) Expire(key string, ttl time.Duration) bool {
	if ttl <= 0 {
		return e.Del(key) > 0
	}
	s := e.shardFor(key)
	now := time.Now()

	s.stringsMu.Lock()
	if ent := lookupStringLocked(s, key, now); ent != nil {
		ent.ExpiresAt = now.Add(ttl)
		s.stringsMu.Unlock()
		return true
	}
	s.stringsMu.Unlock()

	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	if ent, ok := s.lists[key]; ok && !ent.Expired(now) {
		ent.ExpiresAt = now.Add(ttl)
		return true
	}
	return false
}

// ExpireAt converts a unix-second deadline to a duration from now, once,
// at command time, then delegates to Expire (spec.md §3 Clock).
func (e *Engine) ExpireAt(key string, unixSeconds int64) bool {
	deadline := time.Unix(unixSeconds, 0)
	return e.Expire(key, time.Until(deadline))
}

// Persist clears expires_at on an existing entry. Returns false if the key
// is missing, already expired, or already persistent.
func (e *Engine) Persist(key string) bool {
	s := e.shardFor(key)
	now := time.Now()

	s.stringsMu.Lock()
	if ent := lookupStringLocked(s, key, now); ent != nil {
		had := !ent.ExpiresAt.IsZero()
		ent.ExpiresAt = time.Time{}
		s.stringsMu.Unlock()
		return had
	}
	s.stringsMu.Unlock()

	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	if ent, ok := s.lists[key]; ok && !ent.Expired(now) {
		had := !ent.ExpiresAt.IsZero()
		ent.ExpiresAt = time.Time{}
		return had
	}
	return false
}

// TTL returns remaining seconds (-2 missing, -1 no expiry).
func (e *Engine) TTL(key string) int64 {
	ms := e.PTTL(key)
	if ms < 0 {
		return ms
	}
	return (ms + 999) / 1000
}

// PTTL returns remaining milliseconds (-2 missing, -1 no expiry).
func (e *Engine) PTTL(key string) int64 {
	s := e.shardFor(key)
	now := time.Now()

	s.stringsMu.RLock()
	if ent := lookupStringLocked(s, key, now); ent != nil {
		defer s.stringsMu.RUnlock()
		if ent.ExpiresAt.IsZero() {
			return -1
		}
		return int64(ent.ExpiresAt.Sub(now) / time.Millisecond)
	}
	s.stringsMu.RUnlock()

	s.listsMu.RLock()
	defer s.listsMu.RUnlock()
	if ent, ok := s.lists[key]; ok && !ent.Expired(now) {
		if ent.ExpiresAt.IsZero() {
			return -1
		}
		return int64(ent.ExpiresAt.Sub(now) / time.Millisecond)
	}
	return -2
}

// Type returns "string", "list", or "none" after a lazy expiry check.
func (e *Engine) Type(key string) string {
	s := e.shardFor(key)
	now := time.Now()

	s.stringsMu.RLock()
	if lookupStringLocked(s, key, now) != nil {
		s.stringsMu.RUnlock()
		return "string"
	}
	s.stringsMu.RUnlock()

	s.listsMu.RLock()
	defer s.listsMu.RUnlock()
	if ent, ok := s.lists[key]; ok && !ent.Expired(now) {
		return "list"
	}
	return "none"
}

// Keys scans every shard collecting keys whose UTF-8 form matches pattern.
// Expired keys are skipped without triggering the write-upgrade (spec.md
// §4.2): the sweeper or next direct read reclaims them.
func (e *Engine) Keys(pattern string) []string {
	now := time.Now()
	var out []string
	for _, s := range e.shards {
		s.stringsMu.RLock()
		for k, ent := range s.strings {
			if !ent.Expired(now) && matchGlob(pattern, k) {
				out = append(out, k)
			}
		}
		s.stringsMu.RUnlock()

		s.listsMu.RLock()
		for k, ent := range s.lists {
			if !ent.Expired(now) && matchGlob(pattern, k) {
				out = append(out, k)
			}
		}
		s.listsMu.RUnlock()
	}
	return out
}

// Stats snapshots the engine's advisory counters.
func (e *Engine) Stats() Stats {
	return e.counters.snapshot()
}

// MemoryInfo returns a rough byte estimate: sum over non-expired entries
// of key_len + value_len + a fixed per-entry overhead.
func (e *Engine) MemoryInfo() int64 {
	const fixedOverheadPerEntry = 64
	now := time.Now()
	var total int64
	for _, s := range e.shards {
		s.stringsMu.RLock()
		for k, ent := range s.strings {
			if !ent.Expired(now) {
				total += int64(len(k)) + int64(ent.Value.Len()) + fixedOverheadPerEntry
			}
		}
		s.stringsMu.RUnlock()

		s.listsMu.RLock()
		for k, ent := range s.lists {
			if ent.Expired(now) {
				continue
			}
			total += int64(len(k)) + fixedOverheadPerEntry
			for el := ent.Items.Front(); el != nil; el = el.Next() {
				total += int64(el.Value.(resp.Bytes).Len())
			}
		}
		s.listsMu.RUnlock()
	}
	return total
}

// SweepExpired walks every shard in turn, removing entries with
// now >= expires_at under that shard's write lock, and returns the total
// number removed. Used by the background sweeper (spec.md §4.3); each
// shard's lock is held only for the single filter pass over that shard.
func (e *Engine) SweepExpired() int64 {
	now := time.Now()
	var expired int64

	for _, s := range e.shards {
		s.stringsMu.Lock()
		for k, ent := range s.strings {
			if ent.Expired(now) {
				ent.Value.Release()
				delete(s.strings, k)
				expired++
			}
		}
		s.stringsMu.Unlock()

		s.listsMu.Lock()
		for k, ent := range s.lists {
			if ent.Expired(now) {
				ent.releaseItems()
				delete(s.lists, k)
				expired++
			}
		}
		s.listsMu.Unlock()
	}

	if expired > 0 {
		e.counters.addKeyCount(-expired)
		e.counters.incrExpired(expired)
	}
	return expired
}

// Flush clears both maps in every shard and resets key_count to zero.
// Shard locks are acquired sequentially, one shard at a time, so this
// cannot deadlock against the sweeper's own sequential sweep.
func (e *Engine) Flush() {
	for _, s := range e.shards {
		s.stringsMu.Lock()
		for _, ent := range s.strings {
			ent.Value.Release()
		}
		s.strings = make(map[string]*StringEntry)
		s.stringsMu.Unlock()

		s.listsMu.Lock()
		for _, ent := range s.lists {
			ent.releaseItems()
		}
		s.lists = make(map[string]*ListEntry)
		s.listsMu.Unlock()
	}
	e.counters.addKeyCount(-e.counters.snapshot().KeyCount)
}
