package converter

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDIConverter wraps SysEx dumps in Standard MIDI Files, the format most
// sequencers and librarians load
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
	gapTicks        uint32
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           120.0,
		gapTicks:        240,
	}
}

// GenerateMIDI creates a single track SMF holding the messages in order,
// half a beat apart so the synth has time to store each one
func (m *MIDIConverter) GenerateMIDI(messages [][]byte) ([]byte, error) {
	if len(messages) == 0 {
		return nil, errors.New("no SysEx messages")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track

	// Add tempo meta event
	microsecondsPerBeat := uint32(60000000.0 / m.tempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	for i, msg := range messages {
		if err := ValidateSyx(msg); err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		delta := m.gapTicks
		if i == 0 {
			delta = 0
		}
		track.Add(delta, midi.SysEx(msg[1:len(msg)-1]))
	}

	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// ExtractSysEx returns the SysEx messages of all tracks, in track order
func (m *MIDIConverter) ExtractSysEx(data []byte) ([][]byte, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	var msgs [][]byte
	for _, track := range s.Tracks {
		for _, ev := range track {
			raw := []byte(ev.Message)
			if len(raw) < 2 || raw[0] != SysExStart {
				continue
			}
			msg := append([]byte(nil), raw...)
			if msg[len(msg)-1] != SysExEnd {
				msg = append(msg, SysExEnd)
			}
			msgs = append(msgs, msg)
		}
	}

	if len(msgs) == 0 {
		return nil, errors.New("no SysEx messages in MIDI file")
	}
	return msgs, nil
}
