// ABOUTME: Disk container for engine state blobs
// ABOUTME: Frames an opaque blob with magic, version, id, and gzip payload
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

const (
	magic   = "CSNP"
	version = 1

	maxNameLen = 255
)

var (
	// ErrBadMagic is returned when the input is not a snapshot container.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrBadVersion is returned for container versions this build cannot
	// read.
	ErrBadVersion = errors.New("snapshot: unsupported version")
)

// Meta describes the engine instance a blob belongs to. The blob content
// itself stays opaque; matching ChipName and Clock against the target
// device is the caller's responsibility, exactly as the engine's own
// state contract demands.
type Meta struct {
	ID       uuid.UUID
	ChipName string
	Clock    uint32
}

// Write frames the blob into w. A zero Meta.ID is replaced with a fresh
// random ID.
func Write(w io.Writer, meta Meta, blob []byte) error {
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	if len(meta.ChipName) > maxNameLen {
		return fmt.Errorf("snapshot: chip name too long (%d bytes)", len(meta.ChipName))
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.LittleEndian, uint16(version))
	buf.Write(meta.ID[:])
	buf.WriteByte(uint8(len(meta.ChipName)))
	buf.WriteString(meta.ChipName)
	binary.Write(&buf, binary.LittleEndian, meta.Clock)
	binary.Write(&buf, binary.LittleEndian, uint32(len(blob)))

	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(blob); err != nil {
		return fmt.Errorf("snapshot: compressing state: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("snapshot: closing gzip: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("snapshot: writing container: %w", err)
	}
	return nil
}

// Read parses a container and returns its metadata and the raw state
// blob.
func Read(r io.Reader) (Meta, []byte, error) {
	var meta Meta

	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading magic: %w", err)
	}
	if string(head) != magic {
		return meta, nil, ErrBadMagic
	}

	var ver uint16
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading version: %w", err)
	}
	if ver != version {
		return meta, nil, fmt.Errorf("%w: %d", ErrBadVersion, ver)
	}

	if _, err := io.ReadFull(r, meta.ID[:]); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading id: %w", err)
	}

	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading name length: %w", err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading chip name: %w", err)
	}
	meta.ChipName = string(name)

	if err := binary.Read(r, binary.LittleEndian, &meta.Clock); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading clock: %w", err)
	}

	var rawLen uint32
	if err := binary.Read(r, binary.LittleEndian, &rawLen); err != nil {
		return meta, nil, fmt.Errorf("snapshot: reading state length: %w", err)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return meta, nil, fmt.Errorf("snapshot: opening gzip: %w", err)
	}
	defer gz.Close()

	blob, err := io.ReadAll(gz)
	if err != nil {
		return meta, nil, fmt.Errorf("snapshot: inflating state: %w", err)
	}
	if uint32(len(blob)) != rawLen {
		return meta, nil, fmt.Errorf("snapshot: state length mismatch: header says %d, payload is %d", rawLen, len(blob))
	}

	return meta, blob, nil
}

// WriteFile frames the blob into a file, replacing any existing content.
func WriteFile(path string, meta Meta, blob []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, meta, blob); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile parses a container from a file.
func ReadFile(path string) (Meta, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("snapshot: opening %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}
