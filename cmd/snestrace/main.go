// Command snestrace runs a ROM headlessly for a fixed number of frames,
// optionally tracing bus/CPU activity through the debugger's filter
// language and writing out a save state at the end. There is no video or
// audio output here; it exists to exercise the core the same way the
// fixture-driven tests do, from the outside.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/user-none/emsnes/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to a .sfc/.smc ROM image")
	frames := flag.Int("frames", 60, "number of frames to run before exiting")
	filter := flag.String("trace", "", "debugger filter expression, e.g. kind=cpu_instruction")
	savePath := flag.String("save", "", "write a save state to this path after running")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: snestrace -rom game.sfc [-frames N] [-trace expr] [-save out.state]")
		os.Exit(2)
	}

	sys, err := emu.NewSystem(afero.NewOsFs(), *romPath, emu.Config{DebugLogCapacity: 16384})
	if err != nil {
		log.Fatalf("load %s: %v", *romPath, err)
	}

	if *filter != "" {
		sys.Dbg.SetFilter(*filter)
	}

	outcome := sys.RunFrames(*frames)
	for _, ev := range sys.Dbg.Log() {
		fmt.Printf("%-20s addr=%#06x value=%#04x %s\n", ev.Kind, ev.Address, ev.Value, ev.Note)
	}
	fmt.Fprintf(os.Stderr, "ran %d frame(s), outcome=%v, frame count=%d\n", *frames, outcome, sys.FrameCount())

	if *savePath != "" {
		if err := os.WriteFile(*savePath, sys.Serialize(), 0o644); err != nil {
			log.Fatalf("write save state: %v", err)
		}
	}
}
