package storage

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// NumShards is the fixed shard count, a power of two so shard selection is
// a bit-mask rather than a modulo (spec.md §4.2/§9). Grounded on the
// teacher's pkg/websocket/hub_optimized.go NumShards/ShardMask constants —
// adapted here from its lock-free sync.Map-per-shard design to the
// RWMutex-per-type-per-shard shape spec.md §4.2 and §9 require.
const NumShards = 64

const shardMask = NumShards - 1

// shard owns one partition of the keyspace: an independent string map and
// an independent list map, each behind its own reader-writer lock. The two
// locks are never held together — an operation that consults both maps of
// a shard (type checks, DEL, EXPIRE, TYPE) releases one lock before taking
// the other (spec.md §4.2/§5).
type shard struct {
	stringsMu sync.RWMutex
	strings   map[string]*StringEntry

	listsMu sync.RWMutex
	lists   map[string]*ListEntry
}

func newShard() *shard {
	return &shard{
		strings: make(map[string]*StringEntry),
		lists:   make(map[string]*ListEntry),
	}
}

// shardIndex computes shard_for(key) = hash(key) mod N_SHARDS using a
// fixed, process-stable byte hash (spec.md §4.2). xxhash is a pack
// dependency (pulled transitively by the teacher's Prometheus stack);
// promoted here to a direct import as the shard-selection hash.
func shardIndex(key string) int {
	return int(xxhash.Sum64String(key) & shardMask)
}
