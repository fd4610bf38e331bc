package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Output sends events to a MIDI out port.
type Output struct {
	id      string
	outPort drivers.Out
	send    func(gomidi.Message) error
}

// OpenOutput opens outPort for sending.
func OpenOutput(outPort drivers.Out) (*Output, error) {
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", outPort.String(), err)
	}
	return &Output{id: outPort.String(), outPort: outPort, send: send}, nil
}

// NewOutputFunc wraps an arbitrary send function, e.g. for tests.
func NewOutputFunc(id string, send func(gomidi.Message) error) *Output {
	return &Output{id: id, send: send}
}

// Deliver sends events in order. A failed send does not stop the rest.
func (o *Output) Deliver(events []Event) error {
	var errs []error
	for _, ev := range events {
		if err := o.send(ev.Message()); err != nil {
			errs = append(errs, fmt.Errorf("send %s: %w", ev, err))
		}
	}
	return errors.Join(errs...)
}

// SendRaw forwards a message untouched.
func (o *Output) SendRaw(msg gomidi.Message) error {
	return o.send(msg)
}

// ID is the port name.
func (o *Output) ID() string {
	return o.id
}

func (o *Output) Close() error {
	if o.outPort == nil {
		return nil
	}
	return o.outPort.Close()
}
