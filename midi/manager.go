package midi

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DeviceEvent is emitted when a port connects or disconnects
type DeviceEvent struct {
	Type DeviceEventType
	Dir  Direction
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Direction tells input and output ports apart.
type Direction int

const (
	DirIn Direction = iota
	DirOut
)

func (d Direction) String() string {
	if d == DirOut {
		return "out"
	}
	return "in"
}

// ManagerConfig selects the ports a DeviceManager keeps open.
type ManagerConfig struct {
	Input      Selector
	Output     Selector
	SampleRate int
	Buffer     int
	PollRate   time.Duration
}

// DeviceManager keeps one input and one output port open across hot-plug.
// It is the event source and sink of the block runner.
type DeviceManager struct {
	cfg    ManagerConfig
	log    *slog.Logger
	mu     sync.RWMutex
	input  *Input
	output *Output
	events chan DeviceEvent
}

// ErrNoOutput is returned by Deliver while no output port is connected.
var ErrNoOutput = errors.New("no MIDI output connected")

// NewDeviceManager creates a new device manager
func NewDeviceManager(cfg ManagerConfig, log *slog.Logger) *DeviceManager {
	if cfg.PollRate <= 0 {
		cfg.PollRate = time.Second
	}
	return &DeviceManager{
		cfg:    cfg,
		log:    log,
		events: make(chan DeviceEvent, 16),
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.cfg.PollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	inPorts, outPorts, err := ListPorts(3 * time.Second)
	if err != nil {
		// CoreMIDI is hung - skip this scan
		dm.log.Warn("midi: port scan skipped", "err", err)
		return
	}
	dm.scanInput(inPorts)
	dm.scanOutput(outPorts)
}

func (dm *DeviceManager) scanInput(ports []drivers.In) {
	names := InNames(ports)

	dm.mu.RLock()
	cur := dm.input
	dm.mu.RUnlock()

	if cur != nil {
		if containsName(names, cur.ID()) {
			return
		}
		dm.log.Warn("midi: input disappeared", "device", cur.ID())
		dm.mu.Lock()
		dm.input = nil
		dm.mu.Unlock()
		cur.Close()
		dm.emit(DeviceEvent{Type: DeviceDisconnected, Dir: DirIn, ID: cur.ID()})
	}

	idx := dm.cfg.Input.Pick(names)
	if idx < 0 {
		return
	}
	in, err := OpenInput(ports[idx], dm.cfg.SampleRate, dm.cfg.Buffer, dm.sendRaw)
	if err != nil {
		dm.log.Error("midi: connect input failed", "device", names[idx], "err", err)
		return
	}
	dm.mu.Lock()
	dm.input = in
	dm.mu.Unlock()
	dm.log.Info("midi: input connected", "device", in.ID())
	dm.emit(DeviceEvent{Type: DeviceConnected, Dir: DirIn, ID: in.ID()})
}

func (dm *DeviceManager) scanOutput(ports []drivers.Out) {
	names := OutNames(ports)

	dm.mu.RLock()
	cur := dm.output
	dm.mu.RUnlock()

	if cur != nil {
		if containsName(names, cur.ID()) {
			return
		}
		dm.log.Warn("midi: output disappeared", "device", cur.ID())
		dm.mu.Lock()
		dm.output = nil
		dm.mu.Unlock()
		cur.Close()
		dm.emit(DeviceEvent{Type: DeviceDisconnected, Dir: DirOut, ID: cur.ID()})
	}

	if dm.cfg.Output.Pattern == "" && len(dm.cfg.Output.Preferred) == 0 {
		return // never guess an output: it could loop back into the input
	}
	idx := dm.cfg.Output.Pick(names)
	if idx < 0 {
		return
	}
	out, err := OpenOutput(ports[idx])
	if err != nil {
		dm.log.Error("midi: connect output failed", "device", names[idx], "err", err)
		return
	}
	dm.mu.Lock()
	dm.output = out
	dm.mu.Unlock()
	dm.log.Info("midi: output connected", "device", out.ID())
	dm.emit(DeviceEvent{Type: DeviceConnected, Dir: DirOut, ID: out.ID()})
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

// Drain implements the runner's event source.
func (dm *DeviceManager) Drain(dst []Event) []Event {
	dm.mu.RLock()
	in := dm.input
	dm.mu.RUnlock()
	if in == nil {
		return dst
	}
	return in.Drain(dst)
}

// Deliver implements the runner's event sink. System messages that arrived
// after the drained batch follow it out.
func (dm *DeviceManager) Deliver(events []Event) error {
	dm.mu.RLock()
	in, out := dm.input, dm.output
	dm.mu.RUnlock()

	var err error
	if len(events) > 0 {
		if out == nil {
			err = ErrNoOutput
		} else {
			err = out.Deliver(events)
		}
	}
	if in != nil {
		in.FlushThru()
	}
	return err
}

func (dm *DeviceManager) sendRaw(msg gomidi.Message) {
	dm.mu.RLock()
	out := dm.output
	dm.mu.RUnlock()
	if out != nil {
		out.SendRaw(msg)
	}
}

// Status returns the connected port names ("" when none).
func (dm *DeviceManager) Status() (in, out string) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.input != nil {
		in = dm.input.ID()
	}
	if dm.output != nil {
		out = dm.output.ID()
	}
	return in, out
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.input != nil {
		dm.input.Close()
		dm.input = nil
	}
	if dm.output != nil {
		dm.output.Close()
		dm.output = nil
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
