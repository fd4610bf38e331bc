package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	gomidi "gitlab.com/gomidi/midi/v2"

	"in-tune/control"
	"in-tune/engine"
	"in-tune/midi"
	"in-tune/scale"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		monitor(os.Args[2])
	case "map":
		if len(os.Args) < 4 {
			usage()
			os.Exit(2)
		}
		mapPitches(os.Args[2:])
	case "serial":
		listSerial()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	pterm.DefaultHeader.WithFullWidth().Println("in-tune MIDI test tools")
	pterm.Println()
	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Command", "Description"},
		{"list", "List all MIDI ports"},
		{"monitor <in>", "Print messages arriving on an input port"},
		{"map <root> <json scale> <pitch...>", "Show how pitches map, e.g. map 12 [0,2,4,5,7,9,11] 60 61"},
		{"serial", "List serial ports for a control surface"},
		{"poll", "Poll for device changes"},
	}).Render()
}

func listPorts() {
	spinner, _ := pterm.DefaultSpinner.Start("Scanning MIDI ports (up to 3 seconds)...")
	ins, outs, err := midi.ListPorts(3 * time.Second)
	if err != nil {
		spinner.Fail("TIMEOUT! CoreMIDI is hung.")
		pterm.Info.Println("Fix: sudo killall coreaudiod midiserver")
		os.Exit(1)
	}
	spinner.Success(fmt.Sprintf("%d inputs, %d outputs", len(ins), len(outs)))

	data := pterm.TableData{{"Dir", "#", "Name"}}
	for i, name := range midi.InNames(ins) {
		data = append(data, []string{"in", strconv.Itoa(i), name})
	}
	for i, name := range midi.OutNames(outs) {
		data = append(data, []string{"out", strconv.Itoa(i), name})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func monitor(pattern string) {
	ins, _, err := midi.ListPorts(3 * time.Second)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	idx := midi.Selector{Pattern: pattern}.Pick(midi.InNames(ins))
	if idx < 0 {
		pterm.Error.Printf("No input matches %q\n", pattern)
		os.Exit(1)
	}
	port := ins[idx]
	if err := port.Open(); err != nil {
		pterm.Error.Printf("Open %s: %v\n", port, err)
		os.Exit(1)
	}
	defer port.Close()

	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
		if ev, ok := midi.FromMessage(msg, 0); ok {
			line := fmt.Sprintf("%8dms  %s", timestampms, ev)
			if ev.IsNote() {
				line += "  " + scale.PitchName(int(ev.Note))
			}
			pterm.Println(line)
			return
		}
		pterm.FgGray.Printf("%8dms  %s\n", timestampms, msg)
	}, gomidi.UseSysEx())
	if err != nil {
		pterm.Error.Printf("Listen: %v\n", err)
		os.Exit(1)
	}
	defer stop()

	pterm.Info.Printf("Monitoring %s, Ctrl+C to stop\n", port)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}

// mapPitches runs pitches through the mapper offline. args is the root, the
// scale array (which may span several arguments) and then the pitches.
func mapPitches(args []string) {
	split := len(args)
	for i := 1; i < len(args); i++ {
		if strings.HasSuffix(args[i], "]") {
			split = i + 1
			break
		}
	}
	cmd, err := control.Parse("set " + strings.Join(args[:split], " "))
	if err != nil {
		pterm.Warning.Println(err)
	}
	set, ok := cmd.(control.Set)
	if !ok {
		pterm.Error.Println("Not a set command")
		os.Exit(2)
	}
	cfg := set.Config()
	pterm.Info.Printf("Scale: %s\n", cfg)

	data := pterm.TableData{{"In", "", "Out", ""}}
	for _, a := range args[split:] {
		p, err := strconv.Atoi(a)
		if err != nil || p < 0 || p > 127 {
			pterm.Error.Printf("Bad pitch %q\n", a)
			continue
		}
		row := []string{strconv.Itoa(p), scale.PitchName(p), "-", "suppressed"}
		if out, ok := engine.Map(cfg, midi.NoteOn, uint8(p)); ok {
			row[2], row[3] = strconv.Itoa(int(out)), scale.PitchName(int(out))
		}
		data = append(data, row)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func listSerial() {
	ports, err := control.SerialPorts()
	if err != nil {
		pterm.Error.Printf("Serial ports: %v\n", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		pterm.Info.Println("No serial ports found")
		return
	}
	items := make([]pterm.BulletListItem, len(ports))
	for i, p := range ports {
		items[i] = pterm.BulletListItem{Level: 0, Text: p}
	}
	pterm.DefaultBulletList.WithItems(items).Render()
}

func pollDevices() {
	pterm.Info.Println("Polling for MIDI device changes (Ctrl+C to stop)...")

	known := map[string]bool{}
	first := true
	for {
		ins, outs, err := midi.ListPorts(3 * time.Second)
		if err != nil {
			pterm.Warning.Println("Scan timed out, CoreMIDI may be hung")
			time.Sleep(time.Second)
			continue
		}
		seen := map[string]bool{}
		for _, n := range midi.InNames(ins) {
			seen["in  "+n] = true
		}
		for _, n := range midi.OutNames(outs) {
			seen["out "+n] = true
		}
		for n := range seen {
			if !known[n] {
				if first {
					pterm.Println("  " + n)
				} else {
					pterm.Success.Println("+ " + n)
				}
			}
		}
		for n := range known {
			if !seen[n] {
				pterm.Warning.Println("- " + n)
			}
		}
		known, first = seen, false
		time.Sleep(time.Second)
	}
}
