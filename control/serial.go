package control

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens a serial control surface speaking the line protocol.
func OpenSerial(name string, baud int) (serial.Port, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return p, nil
}

// ServeSerial opens the port and serves commands from it until ctx is done.
// The port is closed on return.
func ServeSerial(ctx context.Context, name string, baud int, h *Handler) error {
	p, err := OpenSerial(name, baud)
	if err != nil {
		return err
	}
	h.log.Info("control: serial surface opened", "device", name, "baud", baud)

	go func() {
		<-ctx.Done()
		p.Close()
	}()
	err = ServeLines(ctx, p, p, h)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// SerialPorts lists serial devices present on the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
