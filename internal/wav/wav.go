// ABOUTME: Minimal RIFF/WAVE writer for rendered sample buffers
// ABOUTME: Converts int32 samples to clamped 16-bit little-endian PCM
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerSize    = 44
	bitsPerSample = 16
)

// PCM16LE converts int32 samples to 16-bit little-endian PCM bytes,
// clamping values outside the int16 range. Catalog chips stay within
// that range; the clamp protects against hot externally-written views.
func PCM16LE(samples []int32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out
}

// Write emits a complete 16-bit PCM WAVE file: header plus converted
// sample data. samples is flat row-major interleaved, channels values per
// frame.
func Write(w io.Writer, sampleRate, channels int, samples []int32) error {
	if channels < 1 {
		return fmt.Errorf("wav: invalid channel count %d", channels)
	}
	if sampleRate < 1 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("wav: %d samples not divisible by %d channels", len(samples), channels)
	}

	pcm := PCM16LE(samples)
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, 0, headerSize)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(36+len(pcm)))
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16) // fmt chunk size
	header = binary.LittleEndian.AppendUint16(header, 1)  // PCM
	header = binary.LittleEndian.AppendUint16(header, uint16(channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate*blockAlign))
	header = binary.LittleEndian.AppendUint16(header, uint16(blockAlign))
	header = binary.LittleEndian.AppendUint16(header, bitsPerSample)
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(pcm)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("wav: writing header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("wav: writing data: %w", err)
	}
	return nil
}
