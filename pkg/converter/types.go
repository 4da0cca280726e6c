// Package converter encodes SQ80 program and bank records as binary, SysEx or MIDI files
package converter

import (
	"fmt"

	"github.com/james-see/sq80extract/pkg/disk"
)

// DumpKind identifies what a dump holds
type DumpKind uint8

const (
	KindProgram DumpKind = iota + 1 // a single program
	KindBank                        // 40 programs
)

func (k DumpKind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindBank:
		return "bank"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Size returns the number of raw bytes a dump of this kind carries
func (k DumpKind) Size() int {
	switch k {
	case KindProgram:
		return disk.ProgramSize
	case KindBank:
		return disk.BankSize
	default:
		return 0
	}
}

// Dump is a raw record together with the MIDI channel it is addressed to
type Dump struct {
	Kind    DumpKind
	Channel uint8 // 0-15
	Data    []byte
}

// Validate checks that the record size matches the kind
func (d *Dump) Validate() error {
	if d == nil {
		return fmt.Errorf("nil dump")
	}
	if d.Kind.Size() == 0 {
		return fmt.Errorf("unknown dump kind %d", d.Kind)
	}
	if len(d.Data) != d.Kind.Size() {
		return fmt.Errorf("%s dump has %d bytes, want %d", d.Kind, len(d.Data), d.Kind.Size())
	}
	if d.Channel > 15 {
		return fmt.Errorf("invalid MIDI channel %d", d.Channel)
	}
	return nil
}

// Device interface for device-specific SysEx handling
type Device interface {
	Name() string
	ID() uint8
	GenerateSyx(dump *Dump) ([]byte, error)
	ParseSyx(data []byte) (*Dump, error)
}

// Converter handles format conversions
type Converter struct {
	device Device
}

// New creates a new Converter with the specified device
func New(device Device) *Converter {
	return &Converter{device: device}
}

// GetDevice returns the current device
func (c *Converter) GetDevice() Device {
	return c.device
}
