package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format represents an output file format
type Format string

const (
	FormatBin     Format = "bin"
	FormatSyx     Format = "syx"
	FormatMIDI    Format = "mid"
	FormatUnknown Format = "unknown"
)

// ParseFormat parses a format name as given on the command line
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "bin":
		return FormatBin, nil
	case "syx", "sysex":
		return FormatSyx, nil
	case "mid", "midi":
		return FormatMIDI, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown format %q (want syx, bin or mid)", s)
	}
}

// Ext returns the file extension for the format
func (f Format) Ext() string {
	switch f {
	case FormatBin, FormatSyx, FormatMIDI:
		return "." + string(f)
	default:
		return ""
	}
}

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".syx":
		return FormatSyx
	case ".bin":
		return FormatBin
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	// Check for SysEx (starts with F0)
	if data[0] == SysExStart {
		return FormatSyx
	}

	return FormatBin
}

// Encode renders a dump in the requested format
func (c *Converter) Encode(dump *Dump, format Format) ([]byte, error) {
	if err := dump.Validate(); err != nil {
		return nil, err
	}

	switch format {
	case FormatBin:
		out := make([]byte, len(dump.Data))
		copy(out, dump.Data)
		return out, nil
	case FormatSyx:
		return c.device.GenerateSyx(dump)
	case FormatMIDI:
		syx, err := c.device.GenerateSyx(dump)
		if err != nil {
			return nil, err
		}
		return NewMIDIConverter().GenerateMIDI([][]byte{syx})
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Messages returns the SysEx messages held by a .syx or .mid file
func (c *Converter) Messages(data []byte) ([][]byte, error) {
	switch DetectFormatFromContent(data) {
	case FormatSyx:
		return SplitSysEx(data)
	case FormatMIDI:
		return NewMIDIConverter().ExtractSysEx(data)
	default:
		return nil, errors.New("input is neither SysEx nor a MIDI file")
	}
}

// ReadMessages reads the SysEx messages of a .syx or .mid file. Other
// extensions are rejected before the content is looked at.
func (c *Converter) ReadMessages(path string) ([][]byte, error) {
	switch DetectFormat(path) {
	case FormatSyx, FormatMIDI:
	default:
		return nil, fmt.Errorf("%s: expected a .syx or .mid file", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return c.Messages(data)
}

// Decode parses every message with the device, in order
func (c *Converter) Decode(msgs [][]byte) ([]*Dump, error) {
	dumps := make([]*Dump, 0, len(msgs))
	for i, msg := range msgs {
		dump, err := c.device.ParseSyx(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		dumps = append(dumps, dump)
	}
	return dumps, nil
}

// ConvertFile decodes a SysEx or MIDI file into raw binary at outputPath.
// Several dumps are concatenated in file order.
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	msgs, err := c.ReadMessages(inputPath)
	if err != nil {
		return err
	}

	dumps, err := c.Decode(msgs)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	var out []byte
	for _, d := range dumps {
		out = append(out, d.Data...)
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// GetSupportedFormats returns the output formats
func GetSupportedFormats() []string {
	return []string{
		string(FormatSyx),
		string(FormatBin),
		string(FormatMIDI),
	}
}
