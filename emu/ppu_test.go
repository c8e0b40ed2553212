package emu

import "testing"

func TestVRAMWriteReadRoundTrip(t *testing.T) {
	p := NewPPU(nil)
	p.WriteRegister(0x2115, 0x80) // increment by 1 after high byte
	p.WriteRegister(0x2116, 0x00)
	p.WriteRegister(0x2117, 0x00)
	p.WriteRegister(0x2118, 0xAD)
	p.WriteRegister(0x2119, 0xDE)

	p.WriteRegister(0x2116, 0x00)
	p.WriteRegister(0x2117, 0x00)
	p.refreshVRAMBuffer()
	if p.vram[0] != 0xDEAD {
		t.Fatalf("VRAM[0] = %#x, want 0xDEAD", p.vram[0])
	}
}

func TestCGRAMWriteReadRoundTrip(t *testing.T) {
	p := NewPPU(nil)
	p.WriteRegister(0x2121, 5)
	p.WriteRegister(0x2122, 0x34)
	p.WriteRegister(0x2122, 0x7A)
	if p.cgram[5] != 0x7A34 {
		t.Fatalf("cgram[5] = %#x, want 0x7A34", p.cgram[5])
	}
}

func TestOAMWriteReadRoundTrip(t *testing.T) {
	p := NewPPU(nil)
	p.WriteRegister(0x2102, 0)
	p.WriteRegister(0x2103, 0)
	p.WriteRegister(0x2104, 0x11)
	p.WriteRegister(0x2104, 0x22)
	if p.oam[0] != 0x11 || p.oam[1] != 0x22 {
		t.Fatalf("OAM bytes = %#x %#x, want 0x11 0x22", p.oam[0], p.oam[1])
	}
}

func TestForcedBlankRendersBlack(t *testing.T) {
	p := NewPPU(nil)
	p.WriteRegister(0x2100, 0x80) // force blank
	p.renderScanline(0)
	for x := 0; x < visibleWidth; x++ {
		if p.framebuffer[x] != 0 {
			t.Fatalf("expected forced-blank scanline to be all black at x=%d", x)
		}
	}
}

func TestCatchupAdvancesScanline(t *testing.T) {
	p := NewPPU(nil)
	for i := 0; i < dotsPerScanline*4+40; i++ {
		p.Catchup(4)
	}
	if p.scanline == 0 {
		t.Fatalf("expected the PPU to have advanced past scanline 0")
	}
}

func TestVBlankSignalsNMIWhenEnabled(t *testing.T) {
	bus := newTestBus()
	bus.nmitimen = 0x80
	p := bus.ppu
	for i := 0; i < dotsPerScanline*(visibleHeight+2)*4; i++ {
		p.Catchup(4)
	}
	if !bus.rdnmi {
		t.Fatalf("expected VBlank entry to raise RDNMI when NMITIMEN enables it")
	}
}

func TestSwapFramebufferConvertsToRGB888AndAppliesBrightness(t *testing.T) {
	p := NewPPU(nil)
	p.framebuffer[0] = packBGR555(31, 0, 0) // pure red at max 5-bit value
	p.inidisp = 0x0F                        // full brightness
	p.swapFramebuffer()
	if got := p.rgbFramebuffer[0]; got != 0xFF0000 {
		t.Fatalf("full-brightness red = %#06x, want 0xff0000", got)
	}

	p.inidisp = 0x00 // minimum brightness, still not force-blanked
	p.swapFramebuffer()
	if got := p.rgbFramebuffer[0]; got == 0xFF0000 || got == 0 {
		t.Fatalf("dimmed red = %#06x, want a value between 0 and 0xff0000", got)
	}
}

func TestSpriteOverflowSetsSTAT77Bits(t *testing.T) {
	p := NewPPU(nil)
	for i := 0; i < 40; i++ {
		base := i * 4
		p.oam[base] = uint8(i * 4) // spread sprites across x
		p.oam[base+1] = 0          // y=0, so every sprite matches line 0
		p.oam[base+2] = 0
		p.oam[base+3] = 0
	}
	var pix [visibleWidth]uint8
	var col [visibleWidth]uint16
	var prio [visibleWidth]uint8
	p.renderSprites(0, &pix, &col, &prio)
	if !p.spriteRangeOver {
		t.Fatalf("expected STAT77 range-over flag after 40 sprites matched one line")
	}
	if p.ReadRegister(0x213E)&0x40 == 0 {
		t.Fatalf("expected $213E bit6 set once spriteRangeOver is true")
	}
}

func TestTileDecodeCacheReturnsConsistentPixels(t *testing.T) {
	p := NewPPU(nil)
	p.vram[0] = 0xFF00
	first := p.decodeTilePixel(0, 0, 2, 0, 0)
	second := p.decodeTilePixel(0, 0, 2, 0, 0)
	if first != second {
		t.Fatalf("cached tile decode returned inconsistent pixels: %d vs %d", first, second)
	}
}
