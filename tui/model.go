package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"in-tune/control"
	"in-tune/engine"
	"in-tune/midi"
	"in-tune/scale"
	"in-tune/theme"
	"in-tune/widgets"
)

const refreshRate = 100 * time.Millisecond

// Status is the read side of the engine shown on screen.
type Status interface {
	Scale() *scale.Config
	ActiveNotes() int
	Stats() engine.Stats
	Lookup(in uint8) (uint8, bool)
}

// Devices reports MIDI port connections.
type Devices interface {
	Events() <-chan midi.DeviceEvent
	Status() (in, out string)
}

// Options wires the model to the rest of the program.
type Options struct {
	Engine   Status
	Control  func(msg string) string // control protocol entry point
	Faults   func() []engine.Fault   // recent faults, may be nil
	Devices  Devices                 // may be nil
	Presets  scale.Presets
	Theme    *theme.Theme
	Key      string // initial key name
	Scale    string // initial preset name
	OnSelect func(key scale.Key, preset scale.Preset)
}

const (
	focusKeys = iota
	focusScales
)

type Model struct {
	opts  Options
	theme *theme.Theme

	focus       int
	keyCursor   int
	scaleCursor int
	keySel      int
	scaleSel    int

	inPort, outPort string
	quitting        bool
}

type tickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

func NewModel(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = theme.Default()
	}
	m := Model{
		opts:     opts,
		theme:    opts.Theme,
		keySel:   -1,
		scaleSel: -1,
	}
	if key, ok := scale.FindKey(opts.Key); ok {
		for i, k := range scale.Keys {
			if k == key {
				m.keyCursor = i
			}
		}
	}
	if i := opts.Presets.Index(opts.Scale); i >= 0 {
		m.scaleCursor = i
	}
	if opts.Devices != nil {
		m.inPort, m.outPort = opts.Devices.Status()
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func ListenForDevices(devices Devices) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-devices.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.opts.Devices == nil {
		return tick()
	}
	return tea.Batch(tick(), ListenForDevices(m.opts.Devices))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "left", "h":
			m.focus = focusKeys

		case "right", "l":
			m.focus = focusScales

		case "tab":
			m.focus = 1 - m.focus

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "enter", " ":
			m.apply()

		case "s":
			m.opts.Control("stop")
			m.keySel, m.scaleSel = -1, -1
		}

	case tickMsg:
		return m, tick()

	case DeviceEventMsg:
		if m.opts.Devices != nil {
			m.inPort, m.outPort = m.opts.Devices.Status()
			return m, ListenForDevices(m.opts.Devices)
		}
	}

	return m, nil
}

func (m *Model) move(delta int) {
	if m.focus == focusKeys {
		m.keyCursor = wrap(m.keyCursor+delta, len(scale.Keys))
		return
	}
	m.scaleCursor = wrap(m.scaleCursor+delta, len(m.opts.Presets))
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// apply sends the highlighted key and scale through the control protocol.
func (m *Model) apply() {
	if len(m.opts.Presets) == 0 {
		return
	}
	key := scale.Keys[m.keyCursor]
	preset := m.opts.Presets[m.scaleCursor]
	cfg, err := preset.Config(key)
	if err != nil {
		return
	}
	m.opts.Control(control.Format(cfg))
	m.keySel, m.scaleSel = m.keyCursor, m.scaleCursor
	if m.opts.OnSelect != nil {
		m.opts.OnSelect(key, preset)
	}
}

func (m Model) sounding() [12]bool {
	var pcs [12]bool
	for in := 0; in < 128; in++ {
		if out, ok := m.opts.Engine.Lookup(uint8(in)); ok {
			pcs[out%12] = true
		}
	}
	return pcs
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.theme.Warning())
	okStyle := lipgloss.NewStyle().Foreground(m.theme.Success())

	cfg := m.opts.Engine.Scale()
	state := okStyle.Render(cfg.String())
	if cfg.Bypass() {
		state = warnStyle.Render("BYPASS")
	}
	header := headerStyle.Render("in-tune") + "  " + state +
		dimStyle.Render(fmt.Sprintf("  held:%d", m.opts.Engine.ActiveNotes()))

	keyNames := make([]string, len(scale.Keys))
	for i, k := range scale.Keys {
		keyNames[i] = k.Name
	}
	scaleNames := make([]string, len(m.opts.Presets))
	for i, p := range m.opts.Presets {
		scaleNames[i] = p.Title()
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(12).Render(
			widgets.RenderList(keyNames, m.keyCursor, m.keySel, m.focus == focusKeys, 12, m.theme)),
		lipgloss.NewStyle().Width(24).Render(
			widgets.RenderList(scaleNames, m.scaleCursor, m.scaleSel, m.focus == focusScales, 12, m.theme)),
	)

	octave := widgets.RenderOctave(cfg, m.sounding(), m.theme)

	st := m.opts.Engine.Stats()
	stats := dimStyle.Render(fmt.Sprintf("events:%d fwd:%d suppressed:%d faults:%d",
		st.Events, st.Forwarded, st.Suppressed, st.Faults))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(columns)
	out.WriteString("\n\n")
	out.WriteString(octave)
	out.WriteString("\n\n")
	out.WriteString(stats)

	if m.opts.Devices != nil {
		in, outPort := m.inPort, m.outPort
		if in == "" {
			in = "-"
		}
		if outPort == "" {
			outPort = "-"
		}
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(fmt.Sprintf("in: %s  out: %s", in, outPort)))
	}

	if m.opts.Faults != nil {
		faults := m.opts.Faults()
		if n := len(faults); n > 3 {
			faults = faults[n-3:]
		}
		for _, f := range faults {
			out.WriteString("\n")
			out.WriteString(warnStyle.Render(f.Error()))
		}
	}

	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "h/l tab", Desc: "key / scale column"},
			{Key: "j/k", Desc: "move"},
			{Key: "enter", Desc: "apply"},
			{Key: "s", Desc: "stop (bypass)"},
			{Key: "q", Desc: "quit"},
		},
	}})))

	return out.String()
}
