// Package bus wires the CPU-visible 16-bit address space to the cartridge,
// work RAM, high RAM, PPU, timer, serial port, and joypad.
package bus

import (
	"fmt"
	"io"

	"github.com/proj-gbcore/gbcore/internal/cart"
	"github.com/proj-gbcore/gbcore/internal/ppu"
)

// Bus is the single owner of WRAM/HRAM/IO registers and the PPU.
type Bus struct {
	cart cart.Cartridge

	// Work RAM (WRAM) 8 KiB at 0xC000-0xDFFF; Echo 0xE000-0xFDFF mirrors C000-DDFF.
	wram [0x2000]byte

	// High RAM (HRAM) 0xFF80-0xFFFE (127 bytes).
	hram [0x7F]byte

	// PPU encapsulates VRAM/OAM and LCDC/STAT timing.
	ppu *ppu.PPU

	// Interrupt registers.
	ie    byte // IE at 0xFFFF
	ifReg byte // IF at 0xFF0F (lower 5 bits used)

	// JOYP.
	joypSelect byte // bits 5-4 as last written
	joypad     byte // bitmask of pressed buttons (1=pressed)
	joypLower4 byte // last computed lower 4 bits (active-low), for edge detection

	// Timer/divider, threshold-counter model (§4.6): a free-running divider
	// increments DIV every 256 T-cycles; TIMA increments every N T-cycles,
	// where N is selected by TAC's clock-select bits and gated by TAC bit 2.
	divAcc  int
	div     byte // FF04
	tima    byte // FF05
	tma     byte // FF06
	tac     byte // FF07 (lower 3 bits used)
	timaAcc int

	// Serial.
	sb byte      // FF01 data
	sc byte      // FF02 control (bit7 start, bit0 clock source; completed immediately)
	sw io.Writer // sink for serial output (optional)

	dma byte // FF46, readback only; the transfer itself is synchronous

	bootROM     []byte
	bootEnabled bool
}

// New constructs a Bus with a ROM-only cartridge, for callers (tests, tools)
// that don't care about header-driven mapper selection.
func New(rom []byte) *Bus {
	return NewWithCartridge(cart.NewROMOnly(rom))
}

// NewWithCartridge wires a provided cartridge implementation.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.ppu = ppu.New(func(bit int) { b.ifReg |= 1 << bit })
	return b
}

// PPU returns the internal PPU for renderer access.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart returns the underlying cartridge.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && addr < 0x0100 && len(b.bootROM) >= 0x100 {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		return b.wram[mirror-0xC000]
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	case addr == 0xFF00:
		res := byte(0xC0 | (b.joypSelect & 0x30) | 0x0F)
		if (b.joypSelect & 0x10) == 0 {
			if b.joypad&JoypRight != 0 {
				res &^= 0x01
			}
			if b.joypad&JoypLeft != 0 {
				res &^= 0x02
			}
			if b.joypad&JoypUp != 0 {
				res &^= 0x04
			}
			if b.joypad&JoypDown != 0 {
				res &^= 0x08
			}
		}
		if (b.joypSelect & 0x20) == 0 {
			if b.joypad&JoypA != 0 {
				res &^= 0x01
			}
			if b.joypad&JoypB != 0 {
				res &^= 0x02
			}
			if b.joypad&JoypSelectBtn != 0 {
				res &^= 0x04
			}
			if b.joypad&JoypStart != 0 {
				res &^= 0x08
			}
		}
		return res
	case addr == 0xFF04:
		return b.div
	case addr == 0xFF05:
		return b.tima
	case addr == 0xFF06:
		return b.tma
	case addr == 0xFF07:
		return 0xF8 | (b.tac & 0x07)
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	case addr == 0xFF50:
		return 0xFF
	case addr == 0xFF0F:
		return 0xE0 | (b.ifReg & 0x1F)
	case addr == 0xFFFF:
		return b.ie
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
		return
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
		return
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
		return
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
		return
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		if mirror >= 0xC000 && mirror <= 0xDDFF {
			b.wram[mirror-0xC000] = value
		}
		return
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
		return
	case addr == 0xFF00:
		b.joypSelect = value & 0x30
		b.updateJoypadIRQ()
		return
	case addr == 0xFF04:
		b.div = 0
		b.divAcc = 0
		return
	case addr == 0xFF05:
		b.tima = value
		return
	case addr == 0xFF06:
		b.tma = value
		return
	case addr == 0xFF07:
		b.tac = value & 0x07
		return
	case addr == 0xFF01:
		b.sb = value
		return
	case addr == 0xFF02:
		b.sc = value & 0x81
		if (b.sc & 0x80) != 0 {
			if b.sw != nil {
				_, _ = b.sw.Write([]byte{b.sb})
			}
			b.ifReg |= 1 << 3
			b.sc &^= 0x80
		}
		return
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.CPUWrite(addr, value)
		return
	case addr == 0xFF46:
		b.dma = value
		b.doOAMDMA(uint16(value) << 8)
		return
	case addr == 0xFF50:
		if value != 0x00 {
			b.bootEnabled = false
		}
		return
	case addr == 0xFF0F:
		b.ifReg = value & 0x1F
		return
	case addr == 0xFFFF:
		b.ie = value
		return
	}
}

// doOAMDMA copies all 160 bytes from src..src+0x9F into OAM in the same call
// that handles the 0xFF46 write; cycles spent are not modeled as a stall.
func (b *Bus) doOAMDMA(src uint16) {
	for i := uint16(0); i < 0xA0; i++ {
		b.ppu.CPUWrite(0xFE00+i, b.Read(src+i))
	}
}

// Joypad button bitmasks for SetJoypadState. Bits set mean "pressed".
const (
	JoypRight     = 1 << 0
	JoypLeft      = 1 << 1
	JoypUp        = 1 << 2
	JoypDown      = 1 << 3
	JoypA         = 1 << 4
	JoypB         = 1 << 5
	JoypSelectBtn = 1 << 6
	JoypStart     = 1 << 7
)

// SetJoypadState sets which buttons are currently pressed.
func (b *Bus) SetJoypadState(mask byte) {
	b.joypad = mask
	b.updateJoypadIRQ()
}

// SetSerialWriter sets a sink that receives bytes written via the serial port.
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// SetBootROM loads a DMG boot ROM mapped at 0x0000-0x00FF until disabled via
// a write to 0xFF50. data must be exactly 256 bytes.
func (b *Bus) SetBootROM(data []byte) error {
	if len(data) != 0x100 {
		b.bootROM = nil
		b.bootEnabled = false
		return &cart.InvalidImageError{Reason: fmt.Sprintf("boot ROM is %d bytes, want exactly 256", len(data))}
	}
	b.bootROM = make([]byte, 0x100)
	copy(b.bootROM, data)
	b.bootEnabled = true
	return nil
}

// timaThreshold returns the number of T-cycles per TIMA increment for the
// given TAC clock-select bits.
func timaThreshold(sel byte) int {
	switch sel {
	case 0x00:
		return 1024 // 4096 Hz
	case 0x01:
		return 16 // 262144 Hz
	case 0x02:
		return 64 // 65536 Hz
	default:
		return 256 // 16384 Hz
	}
}

// Tick advances the divider/timer and PPU by the given number of CPU cycles.
func (b *Bus) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	b.divAcc += cycles
	for b.divAcc >= 256 {
		b.divAcc -= 256
		b.div++
	}
	if b.tac&0x04 != 0 {
		thr := timaThreshold(b.tac & 0x03)
		b.timaAcc += cycles
		for b.timaAcc >= thr {
			b.timaAcc -= thr
			b.tima++
			if b.tima == 0 {
				b.tima = b.tma
				b.ifReg |= 1 << 2
			}
		}
	}
	if b.ppu != nil {
		b.ppu.Tick(cycles)
	}
}

// updateJoypadIRQ recomputes JOYP's lower 4 bits (active-low) and raises
// IF bit 4 on any 1->0 transition.
func (b *Bus) updateJoypadIRQ() {
	newLower := byte(0x0F)
	if (b.joypSelect & 0x10) == 0 {
		if b.joypad&JoypRight != 0 {
			newLower &^= 0x01
		}
		if b.joypad&JoypLeft != 0 {
			newLower &^= 0x02
		}
		if b.joypad&JoypUp != 0 {
			newLower &^= 0x04
		}
		if b.joypad&JoypDown != 0 {
			newLower &^= 0x08
		}
	}
	if (b.joypSelect & 0x20) == 0 {
		if b.joypad&JoypA != 0 {
			newLower &^= 0x01
		}
		if b.joypad&JoypB != 0 {
			newLower &^= 0x02
		}
		if b.joypad&JoypSelectBtn != 0 {
			newLower &^= 0x04
		}
		if b.joypad&JoypStart != 0 {
			newLower &^= 0x08
		}
	}
	falling := b.joypLower4 &^ newLower
	if falling != 0 {
		b.ifReg |= 1 << 4
	}
	b.joypLower4 = newLower
}
