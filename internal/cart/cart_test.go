package cart

import "testing"

func TestNewCartridge_SelectsImplementationByType(t *testing.T) {
	rom := buildROM("ROMONLY", 0x00, 0x00, 0x00, 32*1024)
	c, err := NewCartridge(rom)
	if err != nil {
		t.Fatalf("NewCartridge error: %v", err)
	}
	if _, ok := c.(*ROMOnly); !ok {
		t.Fatalf("got %T, want *ROMOnly", c)
	}

	rom = buildROM("MBC1", 0x01, 0x01, 0x02, 64*1024)
	c, err = NewCartridge(rom)
	if err != nil {
		t.Fatalf("NewCartridge error: %v", err)
	}
	if _, ok := c.(*MBC1); !ok {
		t.Fatalf("got %T, want *MBC1", c)
	}

	rom = buildROM("MBC2", 0x05, 0x00, 0x00, 32*1024)
	c, err = NewCartridge(rom)
	if err != nil {
		t.Fatalf("NewCartridge error: %v", err)
	}
	if _, ok := c.(*MBC2); !ok {
		t.Fatalf("got %T, want *MBC2", c)
	}
}

func TestNewCartridge_RejectsUnsupportedType(t *testing.T) {
	rom := buildROM("MBC5", 0x19, 0x00, 0x00, 32*1024)
	_, err := NewCartridge(rom)
	if err == nil {
		t.Fatalf("expected error for unsupported cart type 0x19")
	}
	var target *UnsupportedCartridgeError
	if !asUnsupportedCartridge(err, &target) {
		t.Fatalf("error %v is not *UnsupportedCartridgeError", err)
	}
	if target.CartType != 0x19 {
		t.Fatalf("CartType got %#02x want 0x19", target.CartType)
	}
}

func TestNewCartridge_RejectsUnsupportedROMSize(t *testing.T) {
	rom := buildROM("BADSIZE", 0x00, 0x55, 0x00, 32*1024)
	_, err := NewCartridge(rom)
	if err == nil {
		t.Fatalf("expected error for unsupported ROM size code 0x55")
	}
	if _, ok := err.(*UnsupportedRomSizeError); !ok {
		t.Fatalf("error %v is not *UnsupportedRomSizeError", err)
	}
}

func TestNewCartridge_RejectsShortImage(t *testing.T) {
	_, err := NewCartridge(make([]byte, 0x1000))
	if err == nil {
		t.Fatalf("expected error for an image shorter than one ROM bank")
	}
	if _, ok := err.(*InvalidImageError); !ok {
		t.Fatalf("error %v is not *InvalidImageError", err)
	}
}

func asUnsupportedCartridge(err error, out **UnsupportedCartridgeError) bool {
	e, ok := err.(*UnsupportedCartridgeError)
	if ok {
		*out = e
	}
	return ok
}
