// Package emu aggregates the CPU, bus, cartridge, and PPU into a single
// steppable machine.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/proj-gbcore/gbcore/internal/bus"
	"github.com/proj-gbcore/gbcore/internal/cart"
	"github.com/proj-gbcore/gbcore/internal/cpu"
)

const (
	screenW = 160
	screenH = 144
)

// cyclesPerFrame is the DMG's fixed per-frame T-cycle budget: 154 lines of
// 456 dots each (one dot per T-cycle at the 4.194304 MHz system clock, so the
// budget is counted directly in T-cycles as the rest of this core does).
const cyclesPerFrame = 154 * 456

// Machine owns the CPU, bus (and transitively PPU, timer, joypad), and the
// currently loaded cartridge. It is the only entry point the host UI or a
// headless test runner needs.
type Machine struct {
	cfg Config

	cpu *cpu.CPU
	bus *bus.Bus

	fb [screenW * screenH * 3]byte

	bootROM []byte
	serial  io.Writer
}

// New constructs a Machine with no cartridge loaded. LoadROM or
// LoadROMFromFile must be called before stepping.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// LoadROM parses rom's header, constructs the matching cartridge/MBC, wires
// a fresh Bus and CPU around it, and resets the CPU to its post-boot state
// (or to the boot ROM entry point if one was set via SetBootROM).
func (m *Machine) LoadROM(rom []byte) error {
	c, err := cart.NewCartridge(rom)
	if err != nil {
		return err
	}
	b := bus.NewWithCartridge(c)
	if m.serial != nil {
		b.SetSerialWriter(m.serial)
	}
	if len(m.bootROM) > 0 {
		if err := b.SetBootROM(m.bootROM); err != nil {
			return err
		}
	}
	m.bus = b
	m.cpu = cpu.New(b)
	if len(m.bootROM) > 0 {
		m.cpu.SetPC(0x0000)
	} else {
		m.cpu.ResetNoBoot()
	}
	return nil
}

// LoadROMFromFile reads path and calls LoadROM.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}
	return m.LoadROM(data)
}

// SetBootROM stages a DMG boot ROM image to be mapped at 0x0000-0x00FF on
// the next LoadROM call. data must be exactly 256 bytes.
func (m *Machine) SetBootROM(data []byte) error {
	if len(data) != 0x100 {
		return &cart.InvalidImageError{Reason: fmt.Sprintf("boot ROM is %d bytes, want exactly 256", len(data))}
	}
	m.bootROM = append([]byte(nil), data...)
	return nil
}

// SetSerialWriter attaches a sink for bytes written to the serial port
// (SB/SC), used by test ROMs that report pass/fail over the link cable.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serial = w
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// Joypad button bitmasks for SetButtons, matching bus.Joyp* values.
const (
	ButtonRight  = bus.JoypRight
	ButtonLeft   = bus.JoypLeft
	ButtonUp     = bus.JoypUp
	ButtonDown   = bus.JoypDown
	ButtonA      = bus.JoypA
	ButtonB      = bus.JoypB
	ButtonSelect = bus.JoypSelectBtn
	ButtonStart  = bus.JoypStart
)

// SetButtons sets which buttons are currently pressed (bitmask of Button*).
func (m *Machine) SetButtons(mask byte) {
	if m.bus != nil {
		m.bus.SetJoypadState(mask)
	}
}

// TickFrame runs the machine for exactly one frame's worth of T-cycles,
// applying buttons at the start of the frame and rendering each scanline
// into fb as it's produced.
func (m *Machine) TickFrame(buttons byte, fb *[screenW * screenH * 3]byte) {
	m.SetButtons(buttons)
	m.runFrame(fb)
	if fb != nil {
		m.fb = *fb
	}
}

// StepFrameNoRender runs one frame without writing a framebuffer, for
// headless test-ROM pacing where only serial output matters.
func (m *Machine) StepFrameNoRender() {
	m.runFrame(nil)
}

func (m *Machine) runFrame(fb *[screenW * screenH * 3]byte) {
	if m.cpu == nil || m.bus == nil {
		return
	}
	renderedLY := -1
	spent := 0
	for spent < cyclesPerFrame {
		// cpu.Step ticks the bus (and transitively the PPU) itself. A
		// trapped CPU returns 0 cycles forever; stop pumping the frame
		// rather than spin.
		cycles := m.cpu.Step()
		if cycles == 0 {
			return
		}
		spent += cycles
		if fb == nil {
			continue
		}
		p := m.bus.PPU()
		ly := int(p.CPURead(0xFF44))
		mode := p.CPURead(0xFF41) & 0x03
		if mode == 0 && ly < screenH && ly != renderedLY {
			renderedLY = ly
			p.RenderScanlineRGB(byte(ly), fb[:])
		}
	}
}

// Framebuffer returns the RGB pixels from the last TickFrame call.
func (m *Machine) Framebuffer() []byte { return m.fb[:] }

// CPU exposes the underlying CPU for debuggers/tools.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the underlying bus for debuggers/tools.
func (m *Machine) Bus() *bus.Bus { return m.bus }
