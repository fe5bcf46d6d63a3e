package cart

// ROMOnly implements a cartridge with a single fixed ROM bank and no
// external RAM or banking controls (MBC kind: None).
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	default: // 0xA000-0xBFFF and anything else: no external RAM
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	// ROM-only: bank-select and external-RAM writes are both no-ops.
}
