// ABOUTME: Zero-copy 2D view over a produced sample buffer
// ABOUTME: Views share one handle; the buffer outlives the last open view
package render

import "unsafe"

// View is a non-owning, writable, row-major descriptor over a produced
// buffer: data pointer, byte length, element size 4, shape
// (numSamples, numOutputs) and strides (numOutputs*4, 4). The shape and
// stride arrays alias the owning SampleBuffer, not copies of it. Each View
// holds a strong reference to the buffer's Handle; Close drops it.
//
// A View is not safe for concurrent use. Any number of views may share one
// buffer (see Clone); the buffer survives until the last of them closes.
type View struct {
	data    []int32
	shape   *[2]int
	strides *[2]int
	owner   *Handle
	closed  bool
}

// Shape returns (numSamples, numOutputs).
func (v *View) Shape() [2]int { return *v.shape }

// Strides returns the row and element strides in bytes.
func (v *View) Strides() [2]int { return *v.strides }

// ElemSize returns the byte width of one sample.
func (v *View) ElemSize() int { return elemSize }

// Len returns the total byte length of the view.
func (v *View) Len() int { return len(v.data) * elemSize }

// Frames returns the number of sample frames in the view.
func (v *View) Frames() int { return v.shape[0] }

// Outputs returns the number of channels per frame.
func (v *View) Outputs() int { return v.shape[1] }

// At returns the sample for frame i, channel ch.
func (v *View) At(i, ch int) int32 {
	return v.data[i*v.shape[1]+ch]
}

// Set writes the sample for frame i, channel ch. The view is writable.
func (v *View) Set(i, ch int, sample int32) {
	v.data[i*v.shape[1]+ch] = sample
}

// Row returns frame i's channels as a slice aliasing the buffer.
func (v *View) Row(i int) []int32 {
	k := v.shape[1]
	return v.data[i*k : (i+1)*k : (i+1)*k]
}

// Int32s returns the flat row-major sample data, aliasing the buffer.
func (v *View) Int32s() []int32 { return v.data }

// Bytes returns the sample data as native-endianness bytes without
// copying. The result aliases the buffer and is valid only while the view
// is open. Never nil, even for a zero-length view.
func (v *View) Bytes() []byte {
	p := (*byte)(unsafe.Pointer(unsafe.SliceData(v.data)))
	return unsafe.Slice(p, len(v.data)*elemSize)
}

// Clone derives another view of the same buffer, incrementing the
// handle's reference count. The clone closes independently.
func (v *View) Clone() *View {
	if v.closed {
		panic("render: clone of a closed view")
	}
	v.owner.retain()
	return &View{
		data:    v.data,
		shape:   v.shape,
		strides: v.strides,
		owner:   v.owner,
	}
}

// Close drops this view's reference. When the last view of a buffer
// closes, the buffer is recycled. Closing a view twice is a programming
// defect and panics.
func (v *View) Close() {
	if v.closed {
		panic("render: view closed twice")
	}
	v.closed = true
	v.data = nil
	v.owner.release()
}
