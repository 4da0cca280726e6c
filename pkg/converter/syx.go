package converter

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// SysEx constants
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// ValidateSyx validates a single SysEx message
func ValidateSyx(data []byte) error {
	if len(data) < 2 {
		return errors.New("syx data too short")
	}

	if data[0] != SysExStart {
		return fmt.Errorf("invalid SysEx: expected start byte 0x%02X, got 0x%02X", SysExStart, data[0])
	}

	if data[len(data)-1] != SysExEnd {
		return fmt.Errorf("invalid SysEx: expected end byte 0x%02X, got 0x%02X", SysExEnd, data[len(data)-1])
	}

	// Check all data bytes are 7-bit (valid MIDI data)
	for i := 1; i < len(data)-1; i++ {
		if data[i] > 127 {
			return fmt.Errorf("invalid SysEx: byte at position %d is > 127 (0x%02X)", i, data[i])
		}
	}

	return nil
}

// SplitSysEx splits a .syx file into its messages. Bytes outside a message
// and unterminated messages are errors.
func SplitSysEx(data []byte) ([][]byte, error) {
	var msgs [][]byte
	start := -1

	for i, b := range data {
		switch {
		case b == SysExStart:
			if start >= 0 {
				return nil, fmt.Errorf("invalid SysEx: message at offset %d is not terminated", start)
			}
			start = i
		case b == SysExEnd:
			if start < 0 {
				return nil, fmt.Errorf("invalid SysEx: stray end byte at offset %d", i)
			}
			msg := midi.Message(data[start : i+1])
			var body []byte
			if !msg.GetSysEx(&body) {
				return nil, fmt.Errorf("invalid SysEx at offset %d", start)
			}
			msgs = append(msgs, append([]byte(nil), msg.Bytes()...))
			start = -1
		case start < 0:
			return nil, fmt.Errorf("invalid SysEx: data byte 0x%02X outside a message at offset %d", b, i)
		}
	}

	if start >= 0 {
		return nil, fmt.Errorf("invalid SysEx: message at offset %d is not terminated", start)
	}
	if len(msgs) == 0 {
		return nil, errors.New("no SysEx messages found")
	}
	return msgs, nil
}

// Nibblize splits each byte into two 7-bit safe bytes, low nibble first
func Nibblize(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, b&0x0F, b>>4)
	}
	return out
}

// Denibblize reverses Nibblize
func Denibblize(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd number of nibbles (%d)", len(data))
	}

	out := make([]byte, len(data)/2)
	for i := range out {
		lo, hi := data[i*2], data[i*2+1]
		if lo > 0x0F || hi > 0x0F {
			return nil, fmt.Errorf("invalid nibble pair 0x%02X 0x%02X at byte %d", lo, hi, i)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// HasManufacturerID reports whether data is a SysEx message from the
// manufacturer with the given single byte ID
func HasManufacturerID(data []byte, id uint8) bool {
	return len(data) >= 3 && data[0] == SysExStart && data[1] == id
}

// EnsoniqID is Ensoniq's single byte manufacturer ID
const EnsoniqID = 0x0F
