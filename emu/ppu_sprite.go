package emu

// spriteSizeTable maps OBSEL's size-select bits to (small, large) tile
// dimensions in pixels.
var spriteSizeTable = [8][2]int{
	{8, 16}, {8, 32}, {8, 64}, {16, 32},
	{16, 64}, {32, 64}, {16, 32}, {16, 32},
}

type oamEntry struct {
	x       int16
	y       uint8
	tile    uint16
	palette uint8
	prio    uint8
	flipX   bool
	flipY   bool
	large   bool
}

func (p *PPU) readOAMEntry(i int) oamEntry {
	base := i * 4
	b0 := p.oam[base]
	b1 := p.oam[base+1]
	b2 := p.oam[base+2]
	b3 := p.oam[base+3]

	highByte := p.oam[512+i/4]
	bit := uint(i % 4)
	xHigh := (highByte >> (bit * 2)) & 1
	large := (highByte >> (bit*2 + 1)) & 1

	x := int16(b0)
	if xHigh != 0 {
		x -= 256
	}

	return oamEntry{
		x:       x,
		y:       b1,
		tile:    uint16(b2) | uint16(b3&0x01)<<8,
		palette: (b3 >> 1) & 0x07,
		prio:    (b3 >> 4) & 0x03,
		flipX:   b3&0x40 != 0,
		flipY:   b3&0x80 != 0,
		large:   large != 0,
	}
}

// renderSprites evaluates OAM entries against line in table order, applying
// the standard hardware limits of 32 sprites and 34 tiles per scanline.
// Hitting either limit sets the corresponding STAT77 overflow flag (§4.2)
// and stops evaluation for the line, matching the real PPU's own range/time
// overflow behavior rather than silently dropping the excess.
func (p *PPU) renderSprites(line int, out *[visibleWidth]uint8, outColor *[visibleWidth]uint16, outPrio *[visibleWidth]uint8) {
	sizes := spriteSizeTable[(p.objsel>>5)&0x07]
	baseAddr := uint16(p.objsel&0x07) << 13

	spritesOnLine := 0
	tilesOnLine := 0

	for i := 0; i < 128; i++ {
		e := p.readOAMEntry(i)
		h := sizes[0]
		if e.large {
			h = sizes[1]
		}
		w := h

		rowInSprite := line - int(e.y)
		if e.y > 240 {
			rowInSprite = line - (int(e.y) - 256)
		}
		if rowInSprite < 0 || rowInSprite >= h {
			continue
		}

		if spritesOnLine >= 32 {
			p.spriteRangeOver = true
			break
		}
		tilesWide := w / 8
		if tilesOnLine+tilesWide > 34 {
			p.spriteTimeOver = true
			break
		}
		spritesOnLine++
		tilesOnLine += tilesWide

		py := rowInSprite
		if e.flipY {
			py = h - 1 - rowInSprite
		}

		for col := 0; col < tilesWide; col++ {
			tx := col
			if e.flipX {
				tx = tilesWide - 1 - col
			}
			tileNum := e.tile + uint16(tx) + uint16(py/8)*16
			for px := 0; px < 8; px++ {
				screenX := int(e.x) + col*8 + px
				if screenX < 0 || screenX >= visibleWidth {
					continue
				}
				sx := px
				if e.flipX {
					sx = 7 - px
				}
				idx := p.decodeTilePixel(baseAddr, tileNum, 4, sx, py%8)
				if idx == 0 {
					continue
				}
				out[screenX] = idx
				outColor[screenX] = p.paletteColor4Sprite(e.palette, idx)
				outPrio[screenX] = e.prio
			}
		}
	}
}

func (p *PPU) paletteColor4Sprite(palNum, idx uint8) uint16 {
	base := 128 + int(palNum)*16
	return p.cgram[(base+int(idx))&0xFF]
}
