// Package transmit sends SysEx dumps to a MIDI output port
package transmit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// Port is the part of a MIDI output used for sending
type Port interface {
	Send(data []byte) error
	String() string
}

// closeDrivers releases the registered MIDI driver
var closeDrivers = drivers.Close

// ListPorts returns the names of the available MIDI outputs. The driver is
// released again before returning.
func ListPorts() ([]string, error) {
	defer closeDrivers()

	outs, err := drivers.Outs()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names, nil
}

// OpenPort opens the first output whose name contains name (case
// insensitive). An empty name selects the first output. The returned
// closer releases the port and the driver.
func OpenPort(name string) (drivers.Out, func(), error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, err
	}
	if len(outs) == 0 {
		return nil, nil, errors.New("no MIDI output ports available")
	}

	var found drivers.Out
	for _, out := range outs {
		if name == "" || strings.Contains(strings.ToLower(out.String()), strings.ToLower(name)) {
			found = out
			break
		}
	}
	if found == nil {
		return nil, nil, fmt.Errorf("MIDI output %q not found", name)
	}

	if err := found.Open(); err != nil {
		return nil, nil, fmt.Errorf("failed to open MIDI output %q: %w", found.String(), err)
	}

	closer := func() {
		_ = found.Close()
		closeDrivers()
	}
	return found, closer, nil
}

// Sender writes SysEx messages to a port one after the other
type Sender struct {
	port  Port
	delay time.Duration
}

// NewSender creates a Sender that waits delay between messages, giving the
// synth time to store each dump
func NewSender(port Port, delay time.Duration) *Sender {
	return &Sender{port: port, delay: delay}
}

// SendAll sends the messages in order and returns how many were sent
func (s *Sender) SendAll(ctx context.Context, messages [][]byte) (int, error) {
	for i, msg := range messages {
		if i > 0 && s.delay > 0 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return i, ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}

		if err := s.port.Send(msg); err != nil {
			return i, fmt.Errorf("failed to send message %d to %s: %w", i+1, s.port.String(), err)
		}
	}
	return len(messages), nil
}
