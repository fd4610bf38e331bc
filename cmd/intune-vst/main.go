//go:build plugin

package main

import (
	"context"
	"log/slog"
	"time"

	"pipelined.dev/audio/vst2"

	"in-tune/config"
	"in-tune/control"
	"in-tune/debug"
	"in-tune/engine"
	"in-tune/host"
	"in-tune/midi"
)

// PLUGIN_ID is the four-character code hosts use to identify the plugin.
var PLUGIN_ID = [4]byte{'i', 'n', 't', 'n'}

const PLUGIN_NAME = "in_tune"


// VSTIProcessContext collects the host's MIDI events between process calls
// and runs them through the engine once per audio block.
type VSTIProcessContext struct {
	engine *engine.Engine
	sink   host.Sink
	log    *slog.Logger

	events []midi.Event
	out    []midi.Event
}

func (c *VSTIProcessContext) collect(ev *vst2.MIDIEvent) {
	e, ok := midi.FromBytes(ev.Data[:], ev.DeltaFrames)
	if !ok {
		return
	}
	c.events = append(c.events, e)
}

func (c *VSTIProcessContext) process(in, out vst2.FloatBuffer) {
	// a panic must not unwind into the host
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("vst: process panic", "panic", r)
		}
		c.events = c.events[:0] // reset buffer, but keep the allocated memory
	}()

	for ch := 0; ch < 2; ch++ {
		copy(out.Channel(ch)[:out.Frames], in.Channel(ch)[:out.Frames])
	}

	c.out = c.engine.Process(c.events, c.out[:0])
	if c.sink == nil || len(c.out) == 0 {
		return
	}
	if err := c.sink.Deliver(c.out); err != nil {
		debug.LogEvery(100, "vst", "deliver: %v", err)
	}
}

// openSink opens the configured output port, or returns nil when none is
// configured or present.
func openSink(sel midi.Selector, log *slog.Logger) *midi.Output {
	if sel.Pattern == "" && len(sel.Preferred) == 0 {
		log.Warn("vst: no output port configured, remapped notes are discarded")
		return nil
	}
	_, outs, err := midi.ListPorts(3 * time.Second)
	if err != nil {
		log.Error("vst: list ports", "err", err)
		return nil
	}
	idx := sel.Pick(midi.OutNames(outs))
	if idx < 0 {
		log.Warn("vst: output port not found", "pattern", sel.Pattern)
		return nil
	}
	o, err := midi.OpenOutput(outs[idx])
	if err != nil {
		log.Error("vst: open output", "err", err)
		return nil
	}
	log.Info("vst: output connected", "device", o.ID())
	return o
}

func init() {
	var (
		version = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		debug.Enable(slog.LevelInfo)
		log := debug.Logger()
		log.Info("Plugin::new()")

		cfg, err := config.Load()
		if err != nil {
			log.Error("vst: config", "err", err)
			cfg = config.DefaultConfig()
		}
		cfg.Validate()

		eng := engine.New(
			engine.WithFaultBuffer(cfg.Engine.FaultBuffer),
			engine.WithLogger(log),
			engine.WithReleaseOnStop(cfg.Engine.ReleaseOnStop),
		)
		handler := control.NewHandler(eng, log)

		ctx, cancel := context.WithCancel(context.Background())
		diag := engine.NewDiagnostics(eng.Faults(), 16, log)
		go diag.Run(ctx)

		if cfg.Control.Serial != "" {
			go func() {
				if err := control.ServeSerial(ctx, cfg.Control.Serial, cfg.Control.Baud, handler); err != nil {
					log.Error("vst: serial surface stopped", "err", err)
				}
			}()
		}

		out := openSink(midi.Selector{
			Pattern:   cfg.Output.Name,
			Preferred: cfg.Output.Preferred,
			Excluded:  cfg.Output.Excluded,
		}, log)

		pc := &VSTIProcessContext{
			engine: eng,
			log:    log,
			events: make([]midi.Event, 0, 512),
			out:    make([]midi.Event, 0, 512),
		}
		if out != nil {
			pc.sink = out
		}

		return vst2.Plugin{
				UniqueID:         PLUGIN_ID,
				Version:          version,
				InputChannels:    2,
				OutputChannels:   2,
				Name:             PLUGIN_NAME,
				Vendor:           "in-tune",
				Category:         vst2.PluginCategoryEffect,
				ProcessFloatFunc: pc.process,
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						switch v := ev.Event(i).(type) {
						case *vst2.MIDIEvent:
							pc.collect(v)
						}
					}
				},
				CloseFunc: func() {
					cancel()
					if out != nil {
						out.Close()
					}
					debug.Disable()
				},
				GetChunkFunc: func(isPreset bool) []byte {
					return []byte(control.Format(eng.Scale()))
				},
				SetChunkFunc: func(data []byte, isPreset bool) {
					handler.Handle(string(data))
				},
			}
	}
}

func main() {}
