// Package graphio defines the shared memory areas through which a host
// graph and a node exchange buffers each processing quantum.
//
// The areas are host-owned: a node is granted non-owning access when the
// host binds them and must treat them as absent once cleared. The
// current-buffer field of the queue area is a single-writer-per-direction
// protocol: the host stores a valid buffer ID only while the field holds
// InvalidID, and the node stores InvalidID back when it is done with the
// buffer. Both sides go through atomics, so each store is published with
// at least acquire/release ordering and neither side ever blocks.
package graphio

import (
	"sync/atomic"
	"unsafe"
)

// InvalidID is the sentinel stored in the queue area when no buffer is
// pending. Storing it back is the node's completion signal, returning
// buffer ownership to the host for recycling.
const InvalidID = ^uint32(0)

// MaxBuffers bounds the number of buffer references one queue area may
// carry.
const MaxBuffers = 16

// Chunk describes the valid region of a buffer's data.
type Chunk struct {
	Offset uint32
	Size   uint32
	Stride int32
}

// Data is one data plane of a buffer. Bytes points into host-owned
// memory; Chunk is nil when the plane carries no payload.
type Data struct {
	Bytes []byte
	Chunk *Chunk
}

// Buffer is a host-owned buffer reference. A node may read its metadata
// but never frees it.
type Buffer struct {
	Datas []Data
}

// Queue is the buffer-queue area. The host creates it with a fixed set of
// buffer references for one graph generation and hands buffers to the
// node one at a time through the current-ID field.
type Queue struct {
	current atomic.Uint32
	buffers []*Buffer
}

// QueueAreaSize is the minimum region size a host must grant for a
// buffer-queue binding. Smaller regions are treated as absent.
var QueueAreaSize = unsafe.Sizeof(Queue{})

// NewQueue builds a queue area over the given host-owned buffers, with no
// buffer pending. Buffers beyond MaxBuffers are ignored.
func NewQueue(buffers []*Buffer) *Queue {
	if len(buffers) > MaxBuffers {
		buffers = buffers[:MaxBuffers]
	}
	q := &Queue{buffers: buffers}
	q.current.Store(InvalidID)
	return q
}

// Offer stores id as the pending buffer. It fails without blocking when
// the previous buffer has not been consumed yet or id does not name a
// bound buffer. Host side only.
func (q *Queue) Offer(id uint32) bool {
	if id >= uint32(len(q.buffers)) {
		return false
	}
	return q.current.CompareAndSwap(InvalidID, id)
}

// CurrentID returns the pending buffer ID, or InvalidID when the queue is
// empty.
func (q *Queue) CurrentID() uint32 {
	return q.current.Load()
}

// Complete marks the pending buffer consumed, returning ownership to the
// host. Node side only; also used to self-heal after a corrupt ID.
func (q *Queue) Complete() {
	q.current.Store(InvalidID)
}

// Buffer resolves id to its buffer reference, or nil when id is out of
// the bound range.
func (q *Queue) Buffer(id uint32) *Buffer {
	if id >= uint32(len(q.buffers)) {
		return nil
	}
	return q.buffers[id]
}

// Len returns the number of bound buffer references.
func (q *Queue) Len() int {
	return len(q.buffers)
}

// RateMatch is the rate-match area carrying timing adjustment hints for
// adaptive resampling. A non-resampling node leaves it untouched.
type RateMatch struct {
	Delay uint32
	Size  uint32
	Rate  float64
	Flags uint32
}

// RateMatchAreaSize is the minimum region size for a rate-match binding.
var RateMatchAreaSize = unsafe.Sizeof(RateMatch{})
