// ABOUTME: Tests for the SSG engine
// ABOUTME: Covers register behavior, tone timing, envelope, and state rewind
package ssg

import (
	"testing"

	"github.com/chipsynth/chipsynth-go/pkg/chip"
)

const testClock = 2000000

// writeReg drives the two-port bus: address latch, then data.
func writeReg(c *Chip, reg, val uint8) {
	c.Write(0, reg)
	c.Write(1, val)
}

// toneOnly configures voice A for a pure square wave: noise disabled on
// all voices, tone enabled on A only, full fixed volume.
func toneOnly(c *Chip, period uint16) {
	writeReg(c, RegToneAFine, uint8(period))
	writeReg(c, RegToneACoarse, uint8(period>>8))
	writeReg(c, RegMixer, 0x3E) // tone A on, everything else off
	writeReg(c, RegVolumeA, 0x0F)
}

func TestBasicProperties(t *testing.T) {
	c := New(testClock)
	if c.Name() != "ssg" {
		t.Errorf("expected name ssg, got %q", c.Name())
	}
	if c.Clock() != testClock {
		t.Errorf("expected clock %d, got %d", testClock, c.Clock())
	}
	if c.Outputs() != 3 {
		t.Errorf("expected 3 outputs, got %d", c.Outputs())
	}
	if c.SampleRate() != testClock/16 {
		t.Errorf("expected sample rate %d, got %d", testClock/16, c.SampleRate())
	}
}

func TestRegisterMasking(t *testing.T) {
	c := New(testClock)

	writeReg(c, RegToneACoarse, 0xFF)
	c.WriteAddress(RegToneACoarse)
	if got := c.Read(0); got != 0x0F {
		t.Errorf("expected coarse period masked to 0x0F, got %#x", got)
	}

	writeReg(c, RegNoisePeriod, 0xFF)
	c.WriteAddress(RegNoisePeriod)
	if got := c.Read(0); got != 0x1F {
		t.Errorf("expected noise period masked to 0x1F, got %#x", got)
	}

	// Reads go through the latch only; the bus offset changes nothing.
	if c.Read(0) != c.Read(7) {
		t.Error("expected reads at different offsets to return the latched register")
	}

	// Writes to the address latch beyond the register file are ignored.
	c.WriteAddress(0x20)
	c.WriteData(0xAA)
	if got := c.Read(0); got != 0 {
		t.Errorf("expected out-of-range read 0, got %#x", got)
	}
}

func TestTonePeriodToggling(t *testing.T) {
	c := New(testClock)
	toneOnly(c, 4)

	// The first half-cycle is one sample short because the counter
	// starts from zero; every run after that spans the full period.
	var f chip.Frame
	var last int32 = -1
	var flips, run int
	for i := 0; i < 64; i++ {
		c.Generate(&f)
		if f.Data[0] != last {
			if flips >= 2 && run != 4 {
				t.Fatalf("sample %d: expected runs of 4, got %d", i, run)
			}
			flips++
			run = 0
			last = f.Data[0]
		}
		run++
	}
	if flips < 4 {
		t.Fatalf("expected the square wave to toggle, saw %d level changes", flips)
	}
}

func TestVolumeLevels(t *testing.T) {
	c := New(testClock)
	toneOnly(c, 1)

	var f chip.Frame
	seen := map[int32]bool{}
	for i := 0; i < 16; i++ {
		c.Generate(&f)
		seen[f.Data[0]] = true
	}
	if !seen[0] || !seen[volTable[15]] {
		t.Errorf("expected square wave between 0 and %d, saw %v", volTable[15], seen)
	}

	// Voices B and C are disabled in the mixer with zero volume.
	if f.Data[1] != 0 || f.Data[2] != 0 {
		t.Errorf("expected silent voices B/C, got %d %d", f.Data[1], f.Data[2])
	}
}

func TestSilentWhenVolumeZero(t *testing.T) {
	c := New(testClock)
	toneOnly(c, 3)
	writeReg(c, RegVolumeA, 0x00)

	var f chip.Frame
	for i := 0; i < 32; i++ {
		c.Generate(&f)
		if f.Data[0] != 0 {
			t.Fatalf("sample %d: expected silence at volume 0, got %d", i, f.Data[0])
		}
	}
}

func TestEnvelopeOneShotDecaysToZero(t *testing.T) {
	c := New(testClock)
	toneOnly(c, 1)
	writeReg(c, RegVolumeA, 0x10) // envelope mode
	writeReg(c, RegEnvFine, 1)
	writeReg(c, RegEnvCoarse, 0)
	writeReg(c, RegEnvShape, 0x00) // one-shot decay, hold at 0

	// Decay start: level 15.
	if got := c.envLevel(); got != 15 {
		t.Fatalf("expected initial envelope level 15, got %d", got)
	}

	// One envelope step per envDivider*envPeriod samples; run well past
	// 16 steps so the envelope finishes.
	var f chip.Frame
	for i := 0; i < 16*16*4; i++ {
		c.Generate(&f)
	}
	if !c.envHold {
		t.Error("expected one-shot envelope to hold after the ramp")
	}
	if got := c.envLevel(); got != 0 {
		t.Errorf("expected final envelope level 0, got %d", got)
	}
}

func TestEnvelopeShapeWriteRestarts(t *testing.T) {
	c := New(testClock)
	writeReg(c, RegEnvShape, 0x00)
	var f chip.Frame
	for i := 0; i < 16*16*4; i++ {
		c.Generate(&f)
	}
	if !c.envHold {
		t.Fatal("expected envelope to be holding")
	}

	writeReg(c, RegEnvShape, 0x04) // attack ramp
	if c.envHold {
		t.Error("expected shape write to restart the envelope")
	}
	if got := c.envLevel(); got != 0 {
		t.Errorf("expected attack to restart at level 0, got %d", got)
	}
}

func TestDeterminism(t *testing.T) {
	setup := func() *Chip {
		c := New(testClock)
		toneOnly(c, 37)
		writeReg(c, RegMixer, 0x36) // tone A + noise A
		writeReg(c, RegNoisePeriod, 5)
		return c
	}

	a, b := setup(), setup()
	var fa, fb chip.Frame
	for i := 0; i < 2048; i++ {
		a.Generate(&fa)
		b.Generate(&fb)
		if fa.Data != fb.Data {
			t.Fatalf("sample %d: outputs diverged: %v vs %v", i, fa.Data, fb.Data)
		}
	}
}

func TestStateRewind(t *testing.T) {
	c := New(testClock)
	toneOnly(c, 19)
	writeReg(c, RegMixer, 0x16) // tone A + noise A for LFSR coverage
	writeReg(c, RegNoisePeriod, 3)
	writeReg(c, RegVolumeB, 0x0C)

	var f chip.Frame
	for i := 0; i < 500; i++ {
		c.Generate(&f)
	}

	blob := chip.Save(c)

	var want [300][3]int32
	for i := range want {
		c.Generate(&f)
		want[i] = [3]int32{f.Data[0], f.Data[1], f.Data[2]}
	}

	chip.Load(c, blob)
	for i := range want {
		c.Generate(&f)
		got := [3]int32{f.Data[0], f.Data[1], f.Data[2]}
		if got != want[i] {
			t.Fatalf("frame %d after rewind: expected %v, got %v", i, want[i], got)
		}
	}
}

func TestStateLoadIntoFreshChip(t *testing.T) {
	src := New(testClock)
	toneOnly(src, 11)
	var f chip.Frame
	for i := 0; i < 123; i++ {
		src.Generate(&f)
	}

	dst := New(testClock)
	chip.Load(dst, chip.Save(src))

	var fs, fd chip.Frame
	for i := 0; i < 256; i++ {
		src.Generate(&fs)
		dst.Generate(&fd)
		if fs.Data != fd.Data {
			t.Fatalf("frame %d: source %v, restored %v", i, fs.Data, fd.Data)
		}
	}
}

func TestResetClearsState(t *testing.T) {
	c := New(testClock)
	toneOnly(c, 7)
	var f chip.Frame
	for i := 0; i < 100; i++ {
		c.Generate(&f)
	}

	c.Reset()
	fresh := New(testClock)

	var fa, fb chip.Frame
	for i := 0; i < 64; i++ {
		c.Generate(&fa)
		fresh.Generate(&fb)
		if fa.Data != fb.Data {
			t.Fatalf("frame %d: reset chip %v, fresh chip %v", i, fa.Data, fb.Data)
		}
	}
}
