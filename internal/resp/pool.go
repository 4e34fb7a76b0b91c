package resp

import (
	"sync"
	"sync/atomic"
)

// pooledBuf is a size-classed backing array for a Bytes handle, grounded on
// the teacher's pkg/websocket/message_pool.go MessagePool: a handful of
// fixed size classes, each backed by its own sync.Pool, avoiding
// per-message allocation on the hot path. Oversize buffers (bigger than the
// largest class) skip pooling entirely and are left to the garbage
// collector, same as message_pool.go falls back to the large tier and
// MAX_BULK_SIZE payloads fall back further still.
type pooledBuf struct {
	data  []byte
	class int // index into classSizes, or -1 if unpooled
	refs  int32
}

// classSizes mirrors the small/medium/large tiers of the teacher's
// MessagePool, extended with a couple of larger tiers sized for typical
// RESP bulk payloads (list values, small blobs).
var classSizes = []int{64, 256, 1024, 4096, 16384, 65536}

var classPools = newClassPools()

func newClassPools() []*sync.Pool {
	pools := make([]*sync.Pool, len(classSizes))
	for i, size := range classSizes {
		size := size
		pools[i] = &sync.Pool{
			New: func() interface{} {
				return &pooledBuf{data: make([]byte, 0, size)}
			},
		}
	}
	return pools
}

func classFor(n int) int {
	for i, size := range classSizes {
		if n <= size {
			return i
		}
	}
	return -1
}

// getBuf returns a pooledBuf with len(data) == n and refs == 1.
func getBuf(n int) *pooledBuf {
	class := classFor(n)
	if class < 0 {
		return &pooledBuf{data: make([]byte, n), class: -1, refs: 1}
	}
	b := classPools[class].Get().(*pooledBuf)
	if cap(b.data) < n {
		b.data = make([]byte, n, classSizes[class])
	} else {
		b.data = b.data[:n]
	}
	b.class = class
	atomic.StoreInt32(&b.refs, 1)
	return b
}

func putBuf(b *pooledBuf) {
	if b == nil || b.class < 0 {
		return
	}
	b.data = b.data[:0]
	classPools[b.class].Put(b)
}
