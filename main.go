package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"in-tune/config"
	"in-tune/control"
	"in-tune/debug"
	"in-tune/engine"
	"in-tune/host"
	"in-tune/midi"
	"in-tune/scale"
	"in-tune/theme"
	"in-tune/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/in-tune/config.json)")
	inName := flag.String("in", "", "MIDI input port, exact name or substring")
	outName := flag.String("out", "", "MIDI output port, exact name or substring")
	headless := flag.Bool("headless", false, "read control commands from stdin instead of running the terminal UI")
	verbose := flag.Bool("debug", false, "enable debug logging (adds source location)")
	serialDev := flag.String("serial", "", "serial device of a control surface")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	if *headless {
		debug.Init(level, os.Stderr)
	} else if err := debug.Enable(level); err != nil {
		fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
	}
	log := debug.Logger()

	path := *configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			log.Warn("no config directory, using defaults", "err", err)
		}
		path = p
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		log.Error("config: load failed", "path", path, "err", err)
		fmt.Fprintf(os.Stderr, "Error: config %s: %v\n", path, err)
		os.Exit(1)
	}
	if *inName != "" {
		cfg.Input.Name = *inName
	}
	if *outName != "" {
		cfg.Output.Name = *outName
	}
	if *serialDev != "" {
		cfg.Control.Serial = *serialDev
	}
	cfg.Validate()

	presets := scale.Builtin()
	if cfg.PresetFile != "" {
		extra, err := scale.LoadPresetFile(cfg.PresetFile)
		if err != nil {
			log.Error("presets: load failed", "path", cfg.PresetFile, "err", err)
		}
		presets = presets.Merge(extra)
	} else {
		presets = presets.Merge(nil)
	}

	log.Info("in-tune starting",
		"config", path,
		"in", cfg.Input.Name,
		"out", cfg.Output.Name,
		"block", cfg.Engine.BlockSize,
		"rate", cfg.Engine.SampleRate,
		"release_on_stop", cfg.Engine.ReleaseOnStop,
	)

	eng := engine.New(
		engine.WithFaultBuffer(cfg.Engine.FaultBuffer),
		engine.WithLogger(log),
		engine.WithReleaseOnStop(cfg.Engine.ReleaseOnStop),
	)
	handler := control.NewHandler(eng, log)
	restoreScale(handler, presets, cfg.Scale)

	diag := engine.NewDiagnostics(eng.Faults(), 16, log)
	deviceMgr := midi.NewDeviceManager(midi.ManagerConfig{
		Input: midi.Selector{
			Pattern:   cfg.Input.Name,
			Preferred: cfg.Input.Preferred,
			Excluded:  cfg.Input.Excluded,
		},
		Output: midi.Selector{
			Pattern:   cfg.Output.Name,
			Preferred: cfg.Output.Preferred,
			Excluded:  cfg.Output.Excluded,
		},
		SampleRate: cfg.Engine.SampleRate,
		Buffer:     cfg.Engine.InputBuffer,
	}, log)
	runner := host.NewRunner(deviceMgr, deviceMgr, eng, cfg.Engine.BlockSize, cfg.Engine.SampleRate, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go deviceMgr.Run(ctx)
	go diag.Run(ctx)
	go runner.Run(ctx)

	if cfg.Control.Serial != "" {
		go func() {
			if err := control.ServeSerial(ctx, cfg.Control.Serial, cfg.Control.Baud, handler); err != nil {
				log.Error("control: serial surface stopped", "device", cfg.Control.Serial, "err", err)
			}
		}()
	}

	if *headless {
		log.Info("headless: reading control commands from stdin")
		if err := control.ServeLines(ctx, os.Stdin, os.Stdout, handler); err != nil && ctx.Err() == nil {
			log.Error("control: stdin", "err", err)
		}
		<-ctx.Done()
		return
	}

	th := theme.Default()
	if cfg.UI.Palette != "" {
		pal, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			log.Warn("theme: palette not loaded", "err", err)
		} else {
			th = theme.New(pal)
		}
	}

	m := tui.NewModel(tui.Options{
		Engine:  eng,
		Control: handler.Handle,
		Faults:  diag.Recent,
		Devices: deviceMgr,
		Presets: presets,
		Theme:   th,
		Key:     cfg.UI.LastKey,
		Scale:   cfg.UI.LastScale,
		OnSelect: func(key scale.Key, preset scale.Preset) {
			cfg.UI.LastKey, cfg.UI.LastScale = key.Name, preset.Name
			cfg.Scale = config.ScaleConfig{Key: key.Name, Scale: preset.Name}
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cancel()

	if eng.Scale().Bypass() {
		cfg.Scale = config.ScaleConfig{}
	}
	if path != "" {
		if err := cfg.SaveTo(path); err != nil {
			log.Warn("config: save failed", "path", path, "err", err)
		}
	}
}

// restoreScale re-applies the selection saved in the config, if any.
func restoreScale(h *control.Handler, presets scale.Presets, sc config.ScaleConfig) {
	if sc.Scale == "" {
		return
	}
	key, ok := scale.FindKey(sc.Key)
	if !ok {
		return
	}
	preset, ok := presets.Find(sc.Scale)
	if !ok {
		return
	}
	cfg, err := preset.Config(key)
	if err != nil {
		return
	}
	h.Handle(control.Format(cfg))
}
