// ABOUTME: Owning sample buffer and its reference-counted lifetime handle
// ABOUTME: Buffers recycle through a pool when the last view releases them
package render

import (
	"sync"
	"sync/atomic"
)

// elemSize is the byte width of one sample (int32).
const elemSize = 4

// emptyData backs zero-length buffers so a degenerate view still carries a
// valid, non-nil data pointer. Read-only by convention; a zero-length view
// never dereferences it.
var emptyData [1]int32

// SampleBuffer owns a contiguous block of int32 samples together with the
// shape and stride descriptors that views alias. The descriptors live in
// the same struct as the data so they share its lifetime exactly.
type SampleBuffer struct {
	data    []int32 // aliases emptyData[:0] when the buffer is empty
	backing []int32 // pooled storage, reused across productions
	shape   [2]int  // (numSamples, numOutputs)
	strides [2]int  // (numOutputs*elemSize, elemSize) — row-major
}

var bufferPool = sync.Pool{
	New: func() any { return new(SampleBuffer) },
}

// acquireBuffer returns a pooled buffer shaped (numSamples, numOutputs).
// The data is not zeroed: the producer overwrites every element before the
// buffer is visible to a caller.
func acquireBuffer(numSamples, numOutputs int) *SampleBuffer {
	b := bufferPool.Get().(*SampleBuffer)
	n := numSamples * numOutputs
	if n == 0 {
		b.data = emptyData[:0]
	} else {
		if cap(b.backing) < n {
			b.backing = make([]int32, n)
		}
		b.data = b.backing[:n]
	}
	b.shape = [2]int{numSamples, numOutputs}
	b.strides = [2]int{numOutputs * elemSize, elemSize}
	return b
}

func releaseBuffer(b *SampleBuffer) {
	b.data = nil
	b.shape = [2]int{}
	b.strides = [2]int{}
	bufferPool.Put(b)
}

// Handle is the ownership capsule for a SampleBuffer. Each open view holds
// one reference; the buffer is recycled exactly once, when the count
// reaches zero. A Handle never refers back to a view, so no cycle is
// possible.
type Handle struct {
	refs atomic.Int32
	buf  *SampleBuffer
}

func newHandle(buf *SampleBuffer) *Handle {
	h := &Handle{buf: buf}
	h.refs.Store(1)
	return h
}

func (h *Handle) retain() {
	if h.refs.Add(1) <= 1 {
		panic("render: retain of a released handle")
	}
}

func (h *Handle) release() {
	n := h.refs.Add(-1)
	if n < 0 {
		panic("render: handle released twice")
	}
	if n == 0 {
		buf := h.buf
		h.buf = nil
		releaseBuffer(buf)
	}
}

// released reports whether the underlying buffer has been recycled.
func (h *Handle) released() bool {
	return h.refs.Load() == 0
}
