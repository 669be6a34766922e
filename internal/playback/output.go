// ABOUTME: Audio output using oto library
// ABOUTME: Plays rendered PCM with software volume control
package playback

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/ebitengine/oto/v3"
)

// Output manages a speaker device for rendered chip audio.
type Output struct {
	otoCtx *oto.Context
	player *oto.Player
	volume int
	muted  bool
	ready  bool
}

// New sets up the device for the given render format.
func New(sampleRate, channels int) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return &Output{
		otoCtx: ctx,
		volume: 100,
		ready:  true,
	}, nil
}

// Play starts playback of a complete 16-bit little-endian PCM clip,
// applying the current volume. It returns immediately; poll IsPlaying
// for completion.
func (o *Output) Play(pcm []byte) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	// Convert bytes to int16 samples
	samples := make([]int16, len(pcm)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	// Apply volume
	samples = applyVolume(samples, o.volume, o.muted)

	// Convert back to bytes
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}

	// Write to oto
	o.player = o.otoCtx.NewPlayer(bytes.NewReader(output))
	o.player.Play()

	return nil
}

// IsPlaying reports whether a started clip is still sounding.
func (o *Output) IsPlaying() bool {
	return o.player != nil && o.player.IsPlaying()
}

// SetVolume sets the volume (0-100). Takes effect on the next Play.
func (o *Output) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume = volume
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state. Takes effect on the next Play.
func (o *Output) SetMuted(muted bool) {
	o.muted = muted
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Output) GetVolume() int {
	return o.volume
}

// IsMuted returns mute state
func (o *Output) IsMuted() bool {
	return o.muted
}

// Close closes the audio output
func (o *Output) Close() {
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
}

// applyVolume applies volume and mute to samples
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	multiplier := getVolumeMultiplier(volume, muted)

	result := make([]int16, len(samples))
	for i, sample := range samples {
		result[i] = int16(float64(sample) * multiplier)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
