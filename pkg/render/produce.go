// ABOUTME: Drives an engine's generation loop into a pooled sample buffer
// ABOUTME: Returns a zero-copy view whose lifetime a refcounted handle tracks
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chipsynth/chipsynth-go/pkg/chip"
)

var (
	// ErrNegativeSamples is returned when the requested frame count is
	// below zero.
	ErrNegativeSamples = errors.New("render: negative sample count")

	// ErrInvalidOutputs is returned when the requested channel count is
	// outside 1..engine outputs.
	ErrInvalidOutputs = errors.New("render: output count out of range")
)

// Options tunes a single production run.
type Options struct {
	// Yield, when non-nil, is unlocked for the duration of the
	// generation loop and relocked before ProduceWith returns, so other
	// host-side work holding the same lock can proceed while the engine
	// runs. This is a responsiveness optimization only: the engine is
	// still driven by exactly one goroutine, and callers must not let a
	// second Produce/Save/Load touch the same engine instance while the
	// lock is open.
	Yield sync.Locker
}

// Produce advances the engine numSamples frames and returns a row-major
// view of shape (numSamples, numOutputs) holding the first numOutputs
// channels of each frame. The view owns a reference to the backing
// buffer; callers must Close it when done.
//
// Given identical starting engine state and identical arguments, the
// returned bytes are identical. numSamples == 0 yields a valid,
// zero-length view with a non-nil backing pointer and no engine calls.
func Produce(e chip.Engine, numSamples, numOutputs int) (*View, error) {
	return ProduceWith(e, numSamples, numOutputs, Options{})
}

// ProduceWith is Produce with per-call options.
func ProduceWith(e chip.Engine, numSamples, numOutputs int, opts Options) (*View, error) {
	if numSamples < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSamples, numSamples)
	}
	if numOutputs < 1 || numOutputs > e.Outputs() {
		return nil, fmt.Errorf("%w: %d (engine has %d)", ErrInvalidOutputs, numOutputs, e.Outputs())
	}

	buf := acquireBuffer(numSamples, numOutputs)

	if numSamples > 0 {
		generate := func() {
			var frame chip.Frame
			for i := 0; i < numSamples; i++ {
				e.Generate(&frame)
				copy(buf.data[i*numOutputs:(i+1)*numOutputs], frame.Data[:numOutputs])
			}
		}
		if opts.Yield != nil {
			opts.Yield.Unlock()
			generate()
			opts.Yield.Lock()
		} else {
			generate()
		}
	}

	return &View{
		data:    buf.data,
		shape:   &buf.shape,
		strides: &buf.strides,
		owner:   newHandle(buf),
	}, nil
}
