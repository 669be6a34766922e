// ABOUTME: Core engine contract shared by every chip implementation
// ABOUTME: Defines the per-frame output record and the generation interface
package chip

// MaxOutputs is the widest per-frame output any catalog chip produces.
// Engines with fewer channels leave the tail of a Frame untouched.
const MaxOutputs = 8

// Frame holds one sample instant across all engine channels.
// Generate writes the first Outputs() entries; channel order is
// engine-defined.
type Frame struct {
	Data [MaxOutputs]int32
}

// Clear zeroes every channel slot.
func (f *Frame) Clear() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// Engine is a deterministic, frame-stepped synthesis state machine.
// Generate advances internal state by exactly one sample frame; frame N+1
// depends on state mutated by frame N, so the loop is never parallelized.
// An Engine is not safe for concurrent mutation; callers serialize
// Generate/SaveRestore per instance.
type Engine interface {
	// Generate advances the engine one frame and writes the channel
	// values for that frame. Generation is infallible.
	Generate(out *Frame)

	// SaveRestore moves the engine's complete mutable state to or from
	// the transfer, depending on its direction. The engine decides what
	// fields exist and in what order; the same visit order must be used
	// for both directions.
	SaveRestore(st *StateTransfer)

	// Outputs reports the number of output channels the engine produces.
	Outputs() int

	// SampleRate reports the native output rate in Hz.
	SampleRate() int
}
