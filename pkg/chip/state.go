// ABOUTME: Bidirectional state transfer between an engine and raw bytes
// ABOUTME: One field-visiting routine serves both save and load directions
package chip

import "encoding/binary"

// StateTransfer carries engine state to or from a byte sequence. The same
// engine routine visits its fields through these accessors in a fixed
// order; the direction flag decides whether each visit appends to the
// sink or consumes from the source. Multi-byte fields are little-endian.
//
// The transfer imposes no framing, length prefix, or checksum: the byte
// layout is wholly the engine's contract.
type StateTransfer struct {
	saving    bool
	buf       []byte
	pos       int
	truncated bool
}

// NewSaveTransfer returns a transfer in the write direction with an empty
// byte sink.
func NewSaveTransfer() *StateTransfer {
	return &StateTransfer{saving: true}
}

// NewLoadTransfer returns a transfer in the read direction positioned at
// offset 0 of blob.
func NewLoadTransfer(blob []byte) *StateTransfer {
	return &StateTransfer{buf: blob}
}

// Saving reports whether the transfer is in the write direction.
func (t *StateTransfer) Saving() bool { return t.saving }

// Bytes returns the accumulated sink after a save pass.
func (t *StateTransfer) Bytes() []byte { return t.buf }

// Truncated reports whether a load pass ran past the end of the source.
// Reads past the end zero-fill; what a short blob means for the engine is
// engine-defined.
func (t *StateTransfer) Truncated() bool { return t.truncated }

func (t *StateTransfer) read(n int) []byte {
	if t.pos+n > len(t.buf) {
		t.truncated = true
		return nil
	}
	b := t.buf[t.pos : t.pos+n]
	t.pos += n
	return b
}

// U8 transfers a single byte field.
func (t *StateTransfer) U8(v *uint8) {
	if t.saving {
		t.buf = append(t.buf, *v)
		return
	}
	if b := t.read(1); b != nil {
		*v = b[0]
	} else {
		*v = 0
	}
}

// U16 transfers a 16-bit field.
func (t *StateTransfer) U16(v *uint16) {
	if t.saving {
		t.buf = binary.LittleEndian.AppendUint16(t.buf, *v)
		return
	}
	if b := t.read(2); b != nil {
		*v = binary.LittleEndian.Uint16(b)
	} else {
		*v = 0
	}
}

// U32 transfers a 32-bit field.
func (t *StateTransfer) U32(v *uint32) {
	if t.saving {
		t.buf = binary.LittleEndian.AppendUint32(t.buf, *v)
		return
	}
	if b := t.read(4); b != nil {
		*v = binary.LittleEndian.Uint32(b)
	} else {
		*v = 0
	}
}

// U64 transfers a 64-bit field.
func (t *StateTransfer) U64(v *uint64) {
	if t.saving {
		t.buf = binary.LittleEndian.AppendUint64(t.buf, *v)
		return
	}
	if b := t.read(8); b != nil {
		*v = binary.LittleEndian.Uint64(b)
	} else {
		*v = 0
	}
}

// I32 transfers a signed 32-bit field.
func (t *StateTransfer) I32(v *int32) {
	u := uint32(*v)
	t.U32(&u)
	*v = int32(u)
}

// Bool transfers a boolean as one byte (0 or 1).
func (t *StateTransfer) Bool(v *bool) {
	var b uint8
	if *v {
		b = 1
	}
	t.U8(&b)
	*v = b != 0
}

// Raw transfers a fixed-length byte field.
func (t *StateTransfer) Raw(p []byte) {
	if t.saving {
		t.buf = append(t.buf, p...)
		return
	}
	if b := t.read(len(p)); b != nil {
		copy(p, b)
	} else {
		for i := range p {
			p[i] = 0
		}
	}
}

// Save captures the engine's complete state as an opaque blob. A blob is
// only meaningful to an engine of the same type and configuration.
func Save(e Engine) []byte {
	st := NewSaveTransfer()
	e.SaveRestore(st)
	return st.Bytes()
}

// Load replays a blob produced by Save back into the engine, mutating it
// in place. Load(e, Save(e)) leaves e observably unchanged for subsequent
// generation.
func Load(e Engine, blob []byte) {
	e.SaveRestore(NewLoadTransfer(blob))
}
