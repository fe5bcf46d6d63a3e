package ppu

import "sort"

// Sprite is a decoded OAM entry: X/Y are already translated to screen
// coordinates (OAM's raw Y-16/X-8 offsets applied by the caller). Y is
// signed so sprites placed partly above the screen (raw OAM Y 1..15) land
// at negative Y instead of wrapping to a large unsigned value.
type Sprite struct {
	X        byte
	Y        int
	Tile     byte
	Attr     byte
	OAMIndex byte
}

// Sprite attribute bits (OAM byte 3).
const (
	SpritePriority = 1 << 7 // 1 = behind non-zero BG/window pixels
	SpriteFlipY    = 1 << 6
	SpriteFlipX    = 1 << 5
	SpritePalette1 = 1 << 4 // 0 = OBP0, 1 = OBP1
)

// ComposeSpriteLine renders sprite color indices (0..3, 0 = transparent) for
// one scanline. Overlapping sprites are resolved by X coordinate first
// (smaller X drawn on top), then by OAM index (lower index drawn on top).
// bgci is the already-composed BG+window color-index line, used to honor
// the per-sprite BG-priority attribute bit.
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, ly byte, bgci [160]byte, tall bool) [160]byte {
	ci, _ := composeSpriteLineDetailed(mem, sprites, ly, bgci, tall)
	return ci
}

// composeSpriteLineDetailed is ComposeSpriteLine plus, per pixel, which
// palette (OBP0=false, OBP1=true) the winning sprite selects.
func composeSpriteLineDetailed(mem VRAMReader, sprites []Sprite, ly byte, bgci [160]byte, tall bool) (out [160]byte, pal [160]bool) {
	var decided [160]bool

	height := 8
	if tall {
		height = 16
	}

	ordered := make([]Sprite, len(sprites))
	copy(ordered, sprites)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].X != ordered[j].X {
			return ordered[i].X < ordered[j].X
		}
		return ordered[i].OAMIndex < ordered[j].OAMIndex
	})

	for _, s := range ordered {
		line := int(ly)
		if line < s.Y || line >= s.Y+height {
			continue
		}
		row := line - s.Y
		if s.Attr&SpriteFlipY != 0 {
			row = height - 1 - row
		}
		tile := s.Tile
		if tall {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}
		base := uint16(0x8000) + uint16(tile)*16 + uint16(row)*2
		lo := mem.Read(base)
		hi := mem.Read(base + 1)
		for col := 0; col < 8; col++ {
			x := int(s.X) + col
			if x < 0 || x >= 160 || decided[x] {
				continue
			}
			bit := 7 - col
			if s.Attr&SpriteFlipX != 0 {
				bit = col
			}
			ci := ((hi>>uint(bit))&1)<<1 | ((lo >> uint(bit)) & 1)
			if ci == 0 {
				continue
			}
			decided[x] = true
			if s.Attr&SpritePriority != 0 && bgci[x] != 0 {
				continue
			}
			out[x] = ci
			pal[x] = s.Attr&SpritePalette1 != 0
		}
	}
	return out, pal
}

// OAMEntries decodes all 40 OAM entries into screen-space Sprite values.
func (p *PPU) OAMEntries() [40]Sprite {
	var out [40]Sprite
	for i := 0; i < 40; i++ {
		base := i * 4
		out[i] = Sprite{
			Y:        int(p.oam[base]) - 16,
			X:        p.oam[base+1] - 8,
			Tile:     p.oam[base+2],
			Attr:     p.oam[base+3],
			OAMIndex: byte(i),
		}
	}
	return out
}

// SpritesOnLine selects and caps at 10 the sprites whose Y range covers ly,
// matching real hardware's per-scanline OAM scan limit.
func (p *PPU) SpritesOnLine(ly byte) []Sprite {
	tall := p.lcdc&0x04 != 0
	height := 8
	if tall {
		height = 16
	}
	line := int(ly)
	all := p.OAMEntries()
	var picked []Sprite
	for _, s := range all {
		if len(picked) >= 10 {
			break
		}
		if line < s.Y || line >= s.Y+height {
			continue
		}
		picked = append(picked, s)
	}
	return picked
}
