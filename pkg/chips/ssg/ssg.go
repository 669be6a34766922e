// ABOUTME: Three-voice programmable sound generator (SSG) engine
// ABOUTME: AY-style register file with tone, noise, and hardware envelope
package ssg

import "github.com/chipsynth/chipsynth-go/pkg/chip"

const (
	// NumRegs is the size of the SSG register file.
	NumRegs = 14

	// NumVoices is the number of tone voices, one output channel each.
	NumVoices = 3

	// Register offsets.
	RegToneAFine   = 0
	RegToneACoarse = 1
	RegToneBFine   = 2
	RegToneBCoarse = 3
	RegToneCFine   = 4
	RegToneCCoarse = 5
	RegNoisePeriod = 6
	RegMixer       = 7
	RegVolumeA     = 8
	RegVolumeB     = 9
	RegVolumeC     = 10
	RegEnvFine     = 11
	RegEnvCoarse   = 12
	RegEnvShape    = 13

	// clockDivider is the master-clock prescale per output sample; tone
	// and noise counters tick once per sample at this rate.
	clockDivider = 16

	// envDivider further prescales the envelope relative to tone ticks.
	envDivider = 16
)

// regMask holds the writable bits of each register.
var regMask = [NumRegs]uint8{
	0xFF, 0x0F, 0xFF, 0x0F, 0xFF, 0x0F, // tone periods (12-bit pairs)
	0x1F,       // noise period
	0x3F,       // mixer
	0x1F, 0x1F, 0x1F, // volume / envelope mode
	0xFF, 0xFF, // envelope period
	0x0F, // envelope shape
}

// volTable maps a 4-bit level to an output amplitude. Roughly logarithmic,
// scaled to the int16 range.
var volTable = [16]int32{
	0, 418, 606, 887, 1309, 1938, 2699, 4411,
	5196, 8353, 11670, 14646, 18485, 23210, 27597, 32767,
}

// Chip is a deterministic SSG engine clocked at a fixed master clock.
// All mutable state is integer-valued, so identical register writes and
// frame counts reproduce identical output bit-for-bit.
type Chip struct {
	clock uint32

	regs [NumRegs]uint8
	addr uint8 // address latch

	toneCnt [NumVoices]uint16
	toneOut [NumVoices]bool

	noiseCnt uint16
	lfsr     uint32 // 17-bit LFSR, never zero

	envDiv    uint8
	envCnt    uint16
	envStep   uint8
	envAttack bool
	envHold   bool
}

// New returns a reset SSG running from the given master clock in Hz.
func New(clock uint32) *Chip {
	c := &Chip{clock: clock}
	c.Reset()
	return c
}

// Name identifies the chip in the catalog.
func (c *Chip) Name() string { return "ssg" }

// Clock returns the master clock in Hz.
func (c *Chip) Clock() uint32 { return c.clock }

// Outputs returns one channel per voice.
func (c *Chip) Outputs() int { return NumVoices }

// SampleRate is the master clock divided by the tone prescale.
func (c *Chip) SampleRate() int { return int(c.clock / clockDivider) }

// Reset returns every register and internal counter to power-on state.
func (c *Chip) Reset() {
	c.regs = [NumRegs]uint8{}
	c.addr = 0
	c.toneCnt = [NumVoices]uint16{}
	c.toneOut = [NumVoices]bool{}
	c.noiseCnt = 0
	c.lfsr = 1
	c.envDiv = 0
	c.envCnt = 0
	c.envStep = 0
	c.envAttack = false
	c.envHold = false
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
	c.regs[reg] = data & regMask[reg]
	if reg == RegEnvShape {
		c.resetEnvelope()
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

func (c *Chip) resetEnvelope() {
	c.envDiv = 0
	c.envCnt = 0
	c.envStep = 0
	c.envHold = false
	c.envAttack = c.regs[RegEnvShape]&0x04 != 0
}

func (c *Chip) tonePeriod(v int) uint16 {
	p := uint16(c.regs[v*2]) | uint16(c.regs[v*2+1])<<8
	if p == 0 {
		p = 1
	}
	return p
}

func (c *Chip) noisePeriod() uint16 {
	p := uint16(c.regs[RegNoisePeriod])
	if p == 0 {
		p = 1
	}
	return p
}

func (c *Chip) envPeriod() uint16 {
	p := uint16(c.regs[RegEnvFine]) | uint16(c.regs[RegEnvCoarse])<<8
	if p == 0 {
		p = 1
	}
	return p
}

func (c *Chip) envLevel() uint8 {
	if c.envAttack {
		return c.envStep
	}
	return 15 - c.envStep
}

func (c *Chip) envTick() {
	if c.envHold {
		return
	}
	c.envStep++
	if c.envStep <= 15 {
		return
	}
	shape := c.regs[RegEnvShape]
	switch {
	case shape&0x08 == 0: // one-shot: finish at level 0
		c.envAttack = false
		c.envStep = 15 // 15 - 15 = level 0
		c.envHold = true
	case shape&0x01 != 0: // hold
		if shape&0x02 != 0 { // alternate before holding
			c.envAttack = !c.envAttack
		}
		c.envStep = 15
		c.envHold = true
	default:
		if shape&0x02 != 0 { // alternate
			c.envAttack = !c.envAttack
		}
		c.envStep = 0
	}
}

// Generate advances one sample and writes one amplitude per voice.
func (c *Chip) Generate(out *chip.Frame) {
	for v := 0; v < NumVoices; v++ {
		c.toneCnt[v]++
		if c.toneCnt[v] >= c.tonePeriod(v) {
			c.toneCnt[v] = 0
			c.toneOut[v] = !c.toneOut[v]
		}
	}

	c.noiseCnt++
	if c.noiseCnt >= c.noisePeriod() {
		c.noiseCnt = 0
		bit := (c.lfsr ^ (c.lfsr >> 3)) & 1
		c.lfsr = (c.lfsr >> 1) | (bit << 16)
	}
	noiseBit := c.lfsr&1 != 0

	c.envDiv++
	if c.envDiv >= envDivider {
		c.envDiv = 0
		c.envCnt++
		if c.envCnt >= c.envPeriod() {
			c.envCnt = 0
			c.envTick()
		}
	}

	mixer := c.regs[RegMixer]
	for v := 0; v < NumVoices; v++ {
		// Mixer enables are active-low.
		toneOff := mixer&(1<<v) != 0
		noiseOff := mixer&(1<<(v+3)) != 0

		active := (toneOff || c.toneOut[v]) && (noiseOff || noiseBit)

		var level int32
		if active {
			vol := c.regs[RegVolumeA+v]
			if vol&0x10 != 0 {
				level = volTable[c.envLevel()]
			} else {
				level = volTable[vol&0x0F]
			}
		}
		out.Data[v] = level
	}
}

// SaveRestore transfers every mutable field in a fixed order.
func (c *Chip) SaveRestore(st *chip.StateTransfer) {
	st.Raw(c.regs[:])
	st.U8(&c.addr)
	for v := 0; v < NumVoices; v++ {
		st.U16(&c.toneCnt[v])
	}
	for v := 0; v < NumVoices; v++ {
		st.Bool(&c.toneOut[v])
	}
	st.U16(&c.noiseCnt)
	st.U32(&c.lfsr)
	st.U8(&c.envDiv)
	st.U16(&c.envCnt)
	st.U8(&c.envStep)
	st.Bool(&c.envAttack)
	st.Bool(&c.envHold)
}
