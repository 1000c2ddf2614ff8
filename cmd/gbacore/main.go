// Command gbacore is a trimmed console-glue demonstration binary: load a
// ROM, reset, and run it for a fixed number of CPU cycles, logging vblank
// counts. Pixel output is outside the core's scope, so only the
// load/reset/run skeleton survives, delegating every subsystem wire-up to
// internal/console rather than wiring each one inline.
package main

import (
	"flag"
	"os"

	"GoBA/internal/console"
	"GoBA/internal/logx"
)

func main() {
	romPath := flag.String("rom", "", "path to a GBA ROM image")
	cycles := flag.Uint64("cycles", 1<<24, "CPU cycles to run")
	logLevel := flag.String("log", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logx.Configure(*logLevel)

	if *romPath == "" {
		logx.Log.Fatal("-rom is required")
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		logx.Log.WithError(err).Fatal("failed to read ROM")
	}

	c := console.New()
	if err := c.LoadROM(romData); err != nil {
		logx.Log.WithError(err).Fatal("failed to load ROM")
	}
	c.Reset()

	vblanks := 0
	c.SetVBlankCallback(func() { vblanks++ })

	c.Run(*cycles)

	logx.Log.WithField("vblanks", vblanks).WithField("cycles", *cycles).Info("run complete")
}
