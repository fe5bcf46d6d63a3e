// Command gbemu opens a window and runs a Game Boy ROM interactively.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/proj-gbcore/gbcore/internal/cart"
	"github.com/proj-gbcore/gbcore/internal/emu"
	"github.com/proj-gbcore/gbcore/internal/ui"
)

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM")
	scale := flag.Int("scale", 3, "window scale")
	title := flag.String("title", "gbemu", "window title")
	trace := flag.Bool("trace", false, "set emu.Config.Trace (produces no output)")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("usage: gbemu -rom path/to/game.gb")
	}
	rom := mustRead(*romPath)
	boot := mustRead(*bootPath)

	if h, err := cart.ParseHeader(rom); err == nil {
		log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)
	}

	m := emu.New(emu.Config{Trace: *trace})
	if len(boot) > 0 {
		if err := m.SetBootROM(boot); err != nil {
			log.Fatalf("boot rom: %v", err)
		}
	}
	if err := m.LoadROM(rom); err != nil {
		log.Fatalf("load rom: %v", err)
	}

	app := ui.NewApp(ui.Config{Title: *title, Scale: *scale}, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
