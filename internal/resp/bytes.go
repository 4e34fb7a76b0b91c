package resp

import (
	"sync/atomic"
	"unsafe"
)

// Bytes is a cheap-clone, refcounted handle over a pooled byte buffer. It
// implements the ownership model spec.md §3 calls for: "clones bump a
// reference count rather than copying bytes." The zero value is a valid
// empty Bytes (distinct from a RESP null bulk string, which is represented
// at the Value level via BulkNull).
//
// Grounded on the teacher's pkg/websocket/message_pool.go MessageBuffer /
// MessagePool (size-classed pooling, FastString/FastBytes unsafe views) and
// on rkruze-franz-go's broker.go bufPool (get/put around a byte slice
// pool).
type Bytes struct {
	buf *pooledBuf
}

// NewBytes copies data into a freshly pooled buffer and returns a handle
// with a single reference. The parser calls this once per bulk payload
// extracted from the wire, and the engine's write paths call it (directly
// or via NewBytesFromString) to give a stored value its own buffer; reads
// of a stored value clone its handle instead of copying the bytes.
func NewBytes(data []byte) Bytes {
	b := getBuf(len(data))
	copy(b.data, data)
	return Bytes{buf: b}
}

// NewBytesFromString is the string-keyed equivalent of NewBytes, used by
// the inline command parser and by call sites constructing replies from
// Go string literals.
func NewBytesFromString(s string) Bytes {
	return NewBytes(unsafeStringToBytes(s))
}

// Clone returns a handle sharing the same backing buffer, bumping the
// refcount. It never copies bytes.
func (b Bytes) Clone() Bytes {
	if b.buf != nil {
		atomic.AddInt32(&b.buf.refs, 1)
	}
	return b
}

// Release drops one reference. When the last reference is released the
// backing buffer is returned to its size-class pool.
func (b Bytes) Release() {
	if b.buf == nil {
		return
	}
	if atomic.AddInt32(&b.buf.refs, -1) == 0 {
		putBuf(b.buf)
	}
}

// Data returns the underlying bytes. The returned slice is only valid
// while the caller holds a reference (i.e. until Release is called).
func (b Bytes) Data() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.data
}

// Len returns the length of the buffer without materializing it.
func (b Bytes) Len() int {
	if b.buf == nil {
		return 0
	}
	return len(b.buf.data)
}

// String returns a zero-copy string view of the buffer, matching the
// teacher's FastString helper. The returned string is only valid for as
// long as the backing buffer is not released or mutated.
func (b Bytes) String() string {
	return unsafeBytesToString(b.Data())
}

func unsafeBytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return *(*[]byte)(unsafe.Pointer(&s))
}
