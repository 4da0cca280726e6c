// Package devices provides device-specific format handlers
package devices

import (
	"errors"
	"fmt"

	"github.com/james-see/sq80extract/pkg/converter"
	"gitlab.com/gomidi/midi/v2"
)

// SQ80 device constants
const (
	EnsoniqID  = converter.EnsoniqID // Ensoniq manufacturer ID
	SQ80Family = 0x02                // ESQ-1/SQ-80 product family
	HeaderSize = 5                   // F0, manufacturer, family, channel, type
)

// SysEx message types
const (
	SysExStart     = converter.SysExStart
	SysExEnd       = converter.SysExEnd
	ProgramDump    = 0x01 // single program
	AllProgramDump = 0x02 // the 40 programs of a bank
)

// SQ80 implements the Device interface for the Ensoniq SQ-80
type SQ80 struct{}

// NewSQ80 creates a new SQ-80 device handler
func NewSQ80() *SQ80 {
	return &SQ80{}
}

// Name returns the device name
func (d *SQ80) Name() string {
	return "Ensoniq SQ-80"
}

// ID returns the manufacturer ID
func (d *SQ80) ID() uint8 {
	return EnsoniqID
}

// GenerateSyx wraps a dump in an SQ-80 SysEx message:
// F0 0F 02 0c tt <data as low/high nibbles> F7
func (d *SQ80) GenerateSyx(dump *converter.Dump) ([]byte, error) {
	if err := dump.Validate(); err != nil {
		return nil, err
	}

	var msgType byte
	switch dump.Kind {
	case converter.KindProgram:
		msgType = ProgramDump
	case converter.KindBank:
		msgType = AllProgramDump
	}

	body := make([]byte, 0, HeaderSize-1+len(dump.Data)*2)
	body = append(body, EnsoniqID, SQ80Family, dump.Channel&0x0F, msgType)
	body = append(body, converter.Nibblize(dump.Data)...)

	return midi.SysEx(body).Bytes(), nil
}

// ParseSyx decodes a single SQ-80 program or all-program dump
func (d *SQ80) ParseSyx(data []byte) (*converter.Dump, error) {
	if err := converter.ValidateSyx(data); err != nil {
		return nil, err
	}
	if len(data) < HeaderSize+1 {
		return nil, errors.New("syx data too short")
	}

	if !converter.HasManufacturerID(data, d.ID()) || data[2] != SQ80Family {
		return nil, fmt.Errorf("not an SQ-80 message: header %02X %02X", data[1], data[2])
	}
	if data[3] > 0x0F {
		return nil, fmt.Errorf("invalid channel byte 0x%02X", data[3])
	}

	dump := &converter.Dump{Channel: data[3]}
	switch data[4] {
	case ProgramDump:
		dump.Kind = converter.KindProgram
	case AllProgramDump:
		dump.Kind = converter.KindBank
	default:
		return nil, fmt.Errorf("unsupported SQ-80 message type 0x%02X", data[4])
	}

	raw, err := converter.Denibblize(data[HeaderSize : len(data)-1])
	if err != nil {
		return nil, err
	}
	if len(raw) != dump.Kind.Size() {
		return nil, fmt.Errorf("%s dump has %d bytes, want %d", dump.Kind, len(raw), dump.Kind.Size())
	}
	dump.Data = raw

	return dump, nil
}
