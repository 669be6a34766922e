// ABOUTME: Four-voice two-operator FM synthesis engine with stereo output
// ABOUTME: Integer-only phase accumulators and tables keep output bit-exact
package fm

import (
	"math"

	"github.com/chipsynth/chipsynth-go/pkg/chip"
)

const (
	// NumVoices is the number of independent FM voices.
	NumVoices = 4

	// NumRegs is the size of the register file: eight registers per
	// voice, addressed at voice*8+offset.
	NumRegs = NumVoices * 8

	// Per-voice register offsets.
	RegFreqLo  = 0 // frequency number, low byte
	RegFreqHi  = 1 // frequency number, high byte
	RegMult    = 2 // modulator frequency multiple (0 = half)
	RegModTL   = 3 // modulator total level, 0 loud .. 127 silent
	RegFeed    = 4 // modulator feedback depth, 0..7
	RegCtrl    = 5 // bit0: key on
	RegPan     = 6 // bit0: left, bit1: right
	RegEnvRate = 7 // high nibble attack rate, low nibble release rate

	// clockDivider is the master-clock prescale per output sample.
	clockDivider = 64

	sineBits = 10
	sineSize = 1 << sineBits

	envMax = 1023
)

// sineTable is the quarter-resolution amplitude table shared by both
// operators, filled once at init.
var sineTable [sineSize]int32

func init() {
	for i := range sineTable {
		sineTable[i] = int32(math.Round(32767 * math.Sin(2*math.Pi*float64(i)/sineSize)))
	}
}

type envPhase uint8

const (
	envIdle envPhase = iota
	envAttack
	envSustain
	envRelease
)

type voice struct {
	modPhase uint32
	carPhase uint32
	env      uint16
	phase    envPhase
	fb       [2]int32 // last two modulator outputs, for feedback
}

// Chip is a deterministic 2-operator FM engine. Each voice runs a
// modulator into a carrier with optional modulator feedback, a linear
// attack/sustain/release envelope, and left/right routing.
type Chip struct {
	clock uint32

	regs [NumRegs]uint8
	addr uint8

	voices [NumVoices]voice
}

// New returns a reset FM chip running from the given master clock in Hz.
func New(clock uint32) *Chip {
	c := &Chip{clock: clock}
	c.Reset()
	return c
}

// Name identifies the chip in the catalog.
func (c *Chip) Name() string { return "fm" }

// Clock returns the master clock in Hz.
func (c *Chip) Clock() uint32 { return c.clock }

// Outputs returns the stereo pair.
func (c *Chip) Outputs() int { return 2 }

// SampleRate is the master clock divided by the chip prescale.
func (c *Chip) SampleRate() int { return int(c.clock / clockDivider) }

// Reset returns every register, phase accumulator, and envelope to
// power-on state.
func (c *Chip) Reset() {
	c.regs = [NumRegs]uint8{}
	c.addr = 0
	c.voices = [NumVoices]voice{}
}

// WriteAddress latches a register address.
func (c *Chip) WriteAddress(addr uint8) {
	c.addr = addr
}

// WriteData writes to the register selected by the address latch.
func (c *Chip) WriteData(data uint8) {
	if c.addr >= NumRegs {
		return
	}
	reg := c.addr
	prev := c.regs[reg]
	c.regs[reg] = data

	if reg&7 == RegCtrl {
		v := &c.voices[reg>>3]
		keyWas := prev&1 != 0
		keyNow := data&1 != 0
		switch {
		case keyNow && !keyWas:
			// Key-on restarts both operators.
			v.modPhase = 0
			v.carPhase = 0
			v.fb = [2]int32{}
			v.env = 0
			v.phase = envAttack
		case !keyNow && keyWas:
			v.phase = envRelease
		}
	}
}

// Write follows the two-port bus convention: even offsets latch an
// address, odd offsets write data.
func (c *Chip) Write(offset, data uint8) {
	if offset&1 == 0 {
		c.WriteAddress(data)
	} else {
		c.WriteData(data)
	}
}

// Read returns the register selected by the address latch. The bus
// offset does not participate: reads go through the latch only.
func (c *Chip) Read(_ uint8) uint8 {
	if c.addr >= NumRegs {
		return 0
	}
	return c.regs[c.addr]
}

func sine(phase uint32) int32 {
	return sineTable[(phase>>(32-sineBits))&(sineSize-1)]
}

func (c *Chip) stepVoice(n int) (left, right int32) {
	base := n * 8
	v := &c.voices[n]

	// Envelope first; an idle voice costs nothing further.
	rates := c.regs[base+RegEnvRate]
	switch v.phase {
	case envIdle:
		return 0, 0
	case envAttack:
		step := (uint16(rates>>4) + 1) << 4
		if envMax-v.env <= step {
			v.env = envMax
			v.phase = envSustain
		} else {
			v.env += step
		}
	case envRelease:
		step := (uint16(rates&0x0F) + 1) << 2
		if v.env <= step {
			v.env = 0
			v.phase = envIdle
			return 0, 0
		}
		v.env -= step
	}

	fnum := uint32(c.regs[base+RegFreqLo]) | uint32(c.regs[base+RegFreqHi])<<8
	carInc := fnum << 10

	mult := uint32(c.regs[base+RegMult] & 0x0F)
	modInc := carInc * mult
	if mult == 0 {
		modInc = carInc >> 1
	}

	// Modulator with self-feedback from its last two outputs.
	v.modPhase += modInc
	modPhase := v.modPhase
	if feed := c.regs[base+RegFeed] & 7; feed != 0 {
		fb := int64(v.fb[0]+v.fb[1]) << (feed + 7)
		modPhase += uint32(fb)
	}
	modOut := sine(modPhase)
	tl := int32(c.regs[base+RegModTL] & 0x7F)
	modOut = modOut * (127 - tl) / 127
	v.fb[1] = v.fb[0]
	v.fb[0] = modOut

	// Carrier phase-modulated by the scaled modulator output.
	v.carPhase += carInc
	carOut := sine(v.carPhase + uint32(modOut)<<14)

	sample := carOut * int32(v.env) / envMax

	pan := c.regs[base+RegPan]
	if pan&1 != 0 {
		left = sample
	}
	if pan&2 != 0 {
		right = sample
	}
	return left, right
}

// Generate advances one sample and writes the stereo mix of all voices.
func (c *Chip) Generate(out *chip.Frame) {
	var left, right int32
	for n := 0; n < NumVoices; n++ {
		l, r := c.stepVoice(n)
		left += l >> 2
		right += r >> 2
	}
	out.Data[0] = left
	out.Data[1] = right
}

// SaveRestore transfers every mutable field in a fixed order.
func (c *Chip) SaveRestore(st *chip.StateTransfer) {
	st.Raw(c.regs[:])
	st.U8(&c.addr)
	for n := range c.voices {
		v := &c.voices[n]
		st.U32(&v.modPhase)
		st.U32(&v.carPhase)
		st.U16(&v.env)
		p := uint8(v.phase)
		st.U8(&p)
		v.phase = envPhase(p)
		st.I32(&v.fb[0])
		st.I32(&v.fb[1])
	}
}
