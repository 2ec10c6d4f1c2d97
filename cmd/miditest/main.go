package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"xtlz-piano/assets"
	"xtlz-piano/midi"
	"xtlz-piano/play"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	filter := ""
	if len(os.Args) > 2 {
		filter = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectKeyboards(filter)
	case "monitor":
		monitor(filter)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list             - List all MIDI ports")
	fmt.Println("  detect [filter]  - Show which inputs xtlz-piano would open")
	fmt.Println("  monitor [filter] - Print incoming notes with their piano and scale keys")
	fmt.Println("  poll             - Poll for device changes")
}

func inPorts() ([]drivers.In, bool) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()
	select {
	case ins := <-ch:
		return ins, true
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! MIDI port enumeration is hung.")
		return nil, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, ok := inPorts()
	if !ok {
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func detectKeyboards(filter string) {
	ins, ok := inPorts()
	if !ok {
		return
	}

	found := 0
	for i, p := range ins {
		mark := "skip"
		if midi.Matches(p.String(), filter) {
			mark = "open"
			found++
		}
		fmt.Printf("  [%s] %d: %s\n", mark, i, p.String())
	}

	if found == 0 {
		fmt.Println("\nNo keyboard found")
	} else {
		fmt.Printf("\n%d keyboard(s) detected\n", found)
	}
}

func monitor(filter string) {
	fmt.Println("Monitoring MIDI keyboards. Ctrl+C to exit.")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dm := midi.NewDeviceManager(filter)
	go dm.Run(ctx)

	devices := dm.Events()
	notes := dm.Notes()
	for devices != nil || notes != nil {
		select {
		case ev, ok := <-devices:
			if !ok {
				devices = nil
				continue
			}
			state := "connected"
			if ev.Type == midi.DeviceDisconnected {
				state = "disconnected"
			}
			fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), ev.ID, state)

		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			fmt.Println(describe(ev))
		}
	}
}

func describe(ev midi.Event) string {
	if is, down := ev.IsPedal(); is {
		if down {
			return "pedal down (sustain on in piano mode)"
		}
		return "pedal up"
	}
	if ev.Type == midi.CC {
		return fmt.Sprintf("cc %d = %d (ignored)", ev.Note, ev.Velocity)
	}
	if ev.Type == midi.NoteOff {
		return fmt.Sprintf("note off %d", ev.Note)
	}

	var parts []string
	if k, ok := play.KeyForMIDINote(play.ModeChromatic, ev.Note); ok {
		name, _ := assets.NoteName(k)
		parts = append(parts, fmt.Sprintf("piano %s (key %q)", name, play.Binding(k)))
	} else {
		parts = append(parts, "piano: out of range")
	}
	if k, ok := play.KeyForMIDINote(play.ModeScale, ev.Note); ok {
		parts = append(parts, fmt.Sprintf("scale %d", k))
	}
	return fmt.Sprintf("note on %d vel %d -> %s", ev.Note, ev.Velocity, strings.Join(parts, ", "))
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	last := ""
	for {
		ins, ok := inPorts()
		if !ok {
			return
		}

		var names []string
		for _, p := range ins {
			names = append(names, p.String())
		}

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", names)
			for _, name := range names {
				if midi.Matches(name, "") {
					fmt.Printf("  -> keyboard: %s\n", name)
				}
			}
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
