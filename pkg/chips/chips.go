// ABOUTME: Catalog of built-in chip devices
// ABOUTME: Maps chip names to constructors for the CLIs and library users
package chips

import (
	"fmt"
	"sort"

	"github.com/chipsynth/chipsynth-go/pkg/chip"
	"github.com/chipsynth/chipsynth-go/pkg/chips/fm"
	"github.com/chipsynth/chipsynth-go/pkg/chips/ssg"
)

// Device is a catalog chip: a generation engine plus its register bus.
// Even bus offsets latch a register address, odd offsets write data, the
// same convention every catalog chip follows. Reads return the latched
// register regardless of offset.
type Device interface {
	chip.Engine

	Name() string
	Clock() uint32
	Reset()
	WriteAddress(addr uint8)
	WriteData(data uint8)
	Write(offset, data uint8)
	Read(offset uint8) uint8
}

var catalog = map[string]func(clock uint32) Device{
	"ssg": func(clock uint32) Device { return ssg.New(clock) },
	"fm":  func(clock uint32) Device { return fm.New(clock) },
}

// New constructs a catalog chip by name with the given master clock.
func New(name string, clock uint32) (Device, error) {
	factory, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("chips: unknown chip %q (have %v)", name, Names())
	}
	return factory(clock), nil
}

// Names lists the catalog in stable order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
