package cart

import "testing"

func TestMBC2_ROMBanking(t *testing.T) {
	rom := make([]byte, 8*0x4000)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC2(rom)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default bank1 read got %02X want 01", got)
	}

	// Bit 4 of the address (addr&0x0010) selects ROM-bank-select vs
	// RAM-enable for a 0x0000-0x3FFF write.
	m.Write(0x2010, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}

	m.Write(0x2010, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC2_BuiltinRAM_4BitNibbles(t *testing.T) {
	rom := make([]byte, 0x4000)
	m := NewMBC2(rom)

	// RAM disabled by default: reads return 0xFF.
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}

	m.Write(0x0000, 0x0A) // enable (addr&0x0010==0)
	m.Write(0xA000, 0x3D)
	if got := m.Read(0xA000); got != 0xF0|0x0D {
		t.Fatalf("RAM nibble read got %02X want F%01X", got, 0x0D)
	}

	// The 512 half-bytes are mirrored across the whole A000-BFFF window.
	if got := m.Read(0xA200); got != 0xF0|0x0D {
		t.Fatalf("mirrored RAM read got %02X want F%01X", got, 0x0D)
	}
}
