package emu

import lru "github.com/hashicorp/golang-lru/v2"

const (
	dotsPerScanline  = 341
	scanlinesPerNTSC = 262
	visibleWidth     = 256
	visibleHeight    = 224
)

// bgLayer holds one of the four background layers' scroll/tilemap/
// character-data configuration, latched from $2107-$210C and $210D-$2114.
type bgLayer struct {
	tilemapAddr uint16 // VRAM word address of the tilemap base
	tilemapSize uint8  // bits: horizontal/vertical mirroring
	charAddr    uint16 // VRAM word address of the character data base
	hScroll     uint16
	vScroll     uint16
	scrollPrev  uint8 // write-latch low byte, shared across both scroll regs
}

// cramChange describes a mid-scanline palette write, in the shape of the
// teacher's batched mid-frame change-tracking pattern. The PPU declares a
// pendingCRAM list of them, but nothing records or replays entries.
type cramChange struct {
	scanline int
	index    uint8
	value    uint16
}

// PPU is the SNES picture processor: VRAM/OAM/CGRAM storage, the 8
// scroll/BG-mode registers, the sprite pipeline, and the scanline/dot
// state machine that the main bus drives one master-cycle-derived dot at
// a time (§4.2 expansion).
type PPU struct {
	bus *MainBus
	dbg *Debugger

	vram [0x8000]uint16 // word-addressed, 64KiB
	cgram [256]uint16   // BGR555 palette, 512 bytes
	oam   [544]byte     // 512-byte table + 32-byte high table

	bg      [4]bgLayer
	mode    uint8 // BGMODE $2105 bits 0-2
	mode1   uint8
	bg3Prio bool

	vramAddr     uint16
	vramIncLow   bool
	vramStep     uint16
	vramRemap    uint8
	vramReadBuf  uint16

	oamAddr     uint16
	oamPrio     bool
	oamLatch    uint8

	cgramAddr uint8
	cgramLow  bool
	cgramBuf  uint8

	inidisp uint8 // $2100: force-blank + brightness
	objsel  uint8 // $2101: sprite size/base address

	m7a, m7b, m7c, m7d int16 // Mode 7 matrix, $211B-$211E
	m7x, m7y           int16
	m7hofs, m7vofs     int16
	m7latch            uint8

	w12sel, w34sel, wobjsel uint8
	wh0, wh1, wh2, wh3      uint8
	wbglog, wobjlog         uint8
	tm, ts                  uint8
	tmw, tsw                uint8
	cgwsel, cgadsub         uint8
	coldata                 uint16

	scanline int
	dot      int
	dotAccum int

	vblank bool
	hCount uint16
	vCount uint16

	oamLatchedAddr uint16

	spriteRangeOver bool // STAT77 bit6: >32 sprites matched on one line this frame
	spriteTimeOver  bool // STAT77 bit7: >34 tiles matched on one line this frame

	framebuffer    [visibleWidth * visibleHeight]uint16 // BGR555 working buffer, pre-brightness
	rgbFramebuffer [visibleWidth * visibleHeight]uint32 // RGB888 (0x00RRGGBB), swapped once per frame

	tileCache *lru.Cache[uint32, [8][8]uint8]

	pendingCRAM []cramChange
}

// NewPPU creates a PPU with an empty tile-decode cache holding up to 2048
// decoded tiles (a generous working set for the BG modes this
// implementation supports).
func NewPPU(dbg *Debugger) *PPU {
	cache, _ := lru.New[uint32, [8][8]uint8](2048)
	return &PPU{dbg: dbg, tileCache: cache, vramStep: 1}
}

func (p *PPU) SetBus(b *MainBus) { p.bus = b }

// Catchup advances the PPU by cycles master cycles (§5: "1 PPU dot per 4
// master cycles"), firing VBlank-start NMI and end-of-frame bookkeeping
// as scanline boundaries are crossed.
func (p *PPU) Catchup(cycles int) {
	p.dotAccum += cycles
	for p.dotAccum >= 4 {
		p.dotAccum -= 4
		p.advanceDot()
	}
}

func (p *PPU) advanceDot() {
	p.dot++
	if p.dot == 1 && p.scanline < visibleHeight {
		p.renderScanline(p.scanline)
	}
	if p.bus != nil {
		p.bus.AdvanceDot(p.scanline, p.dot)
	}
	if p.dot >= dotsPerScanline {
		p.dot = 0
		p.scanline++
		if p.scanline == visibleHeight+1 {
			p.enterVBlank()
		}
		if p.scanline >= scanlinesPerNTSC {
			p.scanline = 0
			p.vblank = false
			p.tileCache.Purge()
			p.spriteRangeOver = false
			p.spriteTimeOver = false
		}
	}
}

func (p *PPU) enterVBlank() {
	p.vblank = true
	p.oamAddr = uint16(p.objsel) // OAM address reload happens on VBlank per hardware
	p.swapFramebuffer()
	if p.bus != nil && p.bus.NMIEnabled() {
		p.bus.SignalNMI()
	}
}

// InVBlank reports whether the PPU is currently past the visible field,
// used by the System's frame-boundary bookkeeping.
func (p *PPU) InVBlank() bool { return p.vblank }

// swapFramebuffer converts the just-completed frame from the working
// BGR555 palette buffer to RGB888, applying INIDISP's master brightness in
// the same pass (the compositing step's final "apply master brightness"
// stage). Brightness 0-15 scales each 8-bit channel by (brightness+1)/16,
// the hardware's linear DAC attenuation; force-blank already zeroed every
// pixel in renderScanline, so it comes out black regardless.
func (p *PPU) swapFramebuffer() {
	brightness := uint32(p.inidisp&0x0F) + 1
	for i, c := range p.framebuffer {
		r, g, b := unpackBGR555(c)
		r8 := expand5to8(r) * brightness / 16
		g8 := expand5to8(g) * brightness / 16
		b8 := expand5to8(b) * brightness / 16
		p.rgbFramebuffer[i] = r8<<16 | g8<<8 | b8
	}
}

func expand5to8(v uint8) uint32 { return uint32(v)<<3 | uint32(v)>>2 }

// Framebuffer returns the most recently completed frame, RGB888 packed as
// 0x00RRGGBB per pixel (§6 "Output Contracts").
func (p *PPU) Framebuffer() []uint32 { return p.rgbFramebuffer[:] }

func (p *PPU) ReadRegister(off uint16) uint8 {
	switch off {
	case 0x2134:
		return uint8(p.mulResult())
	case 0x2135:
		return uint8(p.mulResult() >> 8)
	case 0x2136:
		return uint8(p.mulResult() >> 16)
	case 0x2137:
		return 0 // software latch for H/V counters, not modeled
	case 0x2138:
		return p.readOAM()
	case 0x2139:
		return p.readVRAMLow()
	case 0x213A:
		return p.readVRAMHigh()
	case 0x213B:
		return p.readCGRAM()
	case 0x213C:
		return uint8(p.hCount)
	case 0x213D:
		return uint8(p.vCount)
	case 0x213E:
		v := uint8(0x01) // PPU1 version
		if p.spriteTimeOver {
			v |= 0x80
		}
		if p.spriteRangeOver {
			v |= 0x40
		}
		return v
	case 0x213F:
		v := uint8(0x02) // PPU2 version
		if p.vblank {
			v |= 0x80
		}
		return v
	}
	return 0
}

func (p *PPU) mulResult() uint32 {
	return uint32(int32(p.m7a) * int32(int8(p.m7b>>8)))
}

func (p *PPU) WriteRegister(off uint16, v uint8) {
	switch off {
	case 0x2100:
		p.inidisp = v
	case 0x2101:
		p.objsel = v
	case 0x2102:
		p.oamAddr = (p.oamAddr & 0x0100) | uint16(v)
	case 0x2103:
		p.oamAddr = (p.oamAddr & 0x00FF) | (uint16(v)&1)<<8
		p.oamPrio = v&0x80 != 0
	case 0x2104:
		p.writeOAM(v)
	case 0x2105:
		p.mode = v & 0x07
		p.mode1 = v
		p.bg3Prio = v&0x08 != 0
	case 0x2106:
		// mosaic: accepted, not modeled pixel-for-pixel
	case 0x2107, 0x2108, 0x2109, 0x210A:
		p.writeBGTilemap(off, v)
	case 0x210B, 0x210C, 0x210D, 0x210E, 0x210F, 0x2110, 0x2111, 0x2112, 0x2113, 0x2114:
		p.writeBGScroll(off, v)
	case 0x2115:
		p.vramIncLow = v&0x80 == 0
		p.vramRemap = (v >> 2) & 0x03
		switch v & 0x03 {
		case 0:
			p.vramStep = 1
		case 1:
			p.vramStep = 32
		default:
			p.vramStep = 128
		}
	case 0x2116:
		p.vramAddr = (p.vramAddr & 0xFF00) | uint16(v)
		p.refreshVRAMBuffer()
	case 0x2117:
		p.vramAddr = (p.vramAddr & 0x00FF) | uint16(v)<<8
		p.refreshVRAMBuffer()
	case 0x2118:
		p.writeVRAMLow(v)
	case 0x2119:
		p.writeVRAMHigh(v)
	case 0x211A:
		// Mode 7 repeat/flip flags, accepted but not modeled
	case 0x211B:
		p.m7a = p.latch16Signed(&p.m7latch, v)
	case 0x211C:
		p.m7b = p.latch16Signed(&p.m7latch, v)
	case 0x211D:
		p.m7c = p.latch16Signed(&p.m7latch, v)
	case 0x211E:
		p.m7d = p.latch16Signed(&p.m7latch, v)
	case 0x211F:
		p.m7x = p.latch13Signed(&p.m7latch, v)
	case 0x2120:
		p.m7y = p.latch13Signed(&p.m7latch, v)
	case 0x2121:
		p.cgramAddr = v
		p.cgramLow = true
	case 0x2122:
		p.writeCGRAM(v)
	case 0x2123, 0x2124, 0x2125:
		p.writeWindowMaskBG(off, v)
	case 0x2126, 0x2127, 0x2128, 0x2129:
		p.writeWindowPos(off, v)
	case 0x212A, 0x212B:
		p.writeWindowLogic(off, v)
	case 0x212C:
		p.tm = v
	case 0x212D:
		p.ts = v
	case 0x212E:
		p.tmw = v
	case 0x212F:
		p.tsw = v
	case 0x2130:
		p.cgwsel = v
	case 0x2131:
		p.cgadsub = v
	case 0x2132:
		p.writeFixedColor(v)
	case 0x2133:
		// SETINI: interlace/overscan/extbg, accepted but not modeled
	}
}

func (p *PPU) latch16Signed(latch *uint8, v uint8) int16 {
	lo := *latch
	*latch = v
	return int16(uint16(lo) | uint16(v)<<8)
}

func (p *PPU) latch13Signed(latch *uint8, v uint8) int16 {
	lo := *latch
	*latch = v
	raw := uint16(lo) | uint16(v)<<8
	if raw&0x1000 != 0 {
		return int16(raw | 0xE000)
	}
	return int16(raw & 0x1FFF)
}

func (p *PPU) refreshVRAMBuffer() {
	p.vramReadBuf = p.vram[p.vramAddr&0x7FFF]
}

func (p *PPU) writeVRAMLow(v uint8) {
	w := p.vram[p.vramAddr&0x7FFF]
	p.vram[p.vramAddr&0x7FFF] = (w & 0xFF00) | uint16(v)
	if p.vramIncLow {
		p.vramAddr += p.vramStep
	}
}

func (p *PPU) writeVRAMHigh(v uint8) {
	w := p.vram[p.vramAddr&0x7FFF]
	p.vram[p.vramAddr&0x7FFF] = (w & 0x00FF) | uint16(v)<<8
	if !p.vramIncLow {
		p.vramAddr += p.vramStep
	}
}

// readVRAMLow/readVRAMHigh implement the prefetch latch: the read returns
// the byte already sitting in the latch, then (on the increment-trigger
// side) the address advances and the latch refreshes from the new
// address for the next read (§3's VRAM invariant).
func (p *PPU) readVRAMLow() uint8 {
	v := uint8(p.vramReadBuf)
	if p.vramIncLow {
		p.vramAddr += p.vramStep
		p.refreshVRAMBuffer()
	}
	return v
}

func (p *PPU) readVRAMHigh() uint8 {
	v := uint8(p.vramReadBuf >> 8)
	if !p.vramIncLow {
		p.vramAddr += p.vramStep
		p.refreshVRAMBuffer()
	}
	return v
}

func (p *PPU) writeOAM(v uint8) {
	idx := int(p.oamAddr)
	if idx < len(p.oam) {
		if idx&1 == 0 {
			p.oamLatch = v
		} else {
			_ = p.oamLatch
			p.oam[idx-1] = p.oamLatch
			p.oam[idx] = v
		}
	}
	p.oamAddr++
}

func (p *PPU) readOAM() uint8 {
	idx := int(p.oamAddr) % len(p.oam)
	v := p.oam[idx]
	p.oamAddr++
	return v
}

func (p *PPU) writeCGRAM(v uint8) {
	idx := p.cgramAddr
	w := p.cgram[idx]
	if p.cgramLow {
		p.cgram[idx] = (w & 0xFF00) | uint16(v)
		p.cgramBuf = v
		p.cgramLow = false
	} else {
		p.cgram[idx] = (uint16(v&0x7F) << 8) | uint16(p.cgramBuf)
		p.cgramLow = true
		p.cgramAddr++
	}
}

func (p *PPU) readCGRAM() uint8 {
	w := p.cgram[p.cgramAddr]
	var v uint8
	if p.cgramLow {
		v = uint8(w)
	} else {
		v = uint8(w >> 8)
		p.cgramAddr++
	}
	p.cgramLow = !p.cgramLow
	return v
}

func (p *PPU) writeBGTilemap(off uint16, v uint8) {
	i := off - 0x2107
	p.bg[i].tilemapAddr = uint16(v&0xFC) << 8
	p.bg[i].tilemapSize = v & 0x03
}

func (p *PPU) writeBGScroll(off uint16, v uint8) {
	switch {
	case off >= 0x210B && off <= 0x210C:
		i := uint16(0)
		if off == 0x210C {
			i = 1
		}
		hi := v & 0x0F
		lo := v >> 4
		p.bg[i*2].charAddr = uint16(lo) << 12
		p.bg[i*2+1].charAddr = uint16(hi) << 12
	default:
		idx := (off - 0x210D) / 2
		if idx > 3 {
			idx = 3
		}
		layer := &p.bg[idx]
		if (off-0x210D)%2 == 0 {
			layer.hScroll = (uint16(v)<<8 | uint16(layer.scrollPrev)) & 0x3FF
			layer.scrollPrev = v
		} else {
			layer.vScroll = (uint16(v)<<8 | uint16(layer.scrollPrev)) & 0x3FF
			layer.scrollPrev = v
		}
	}
}

func (p *PPU) writeWindowMaskBG(off uint16, v uint8) {
	switch off {
	case 0x2123:
		p.w12sel = v
	case 0x2124:
		p.w34sel = v
	case 0x2125:
		p.wobjsel = v
	}
}

func (p *PPU) writeWindowPos(off uint16, v uint8) {
	switch off {
	case 0x2126:
		p.wh0 = v
	case 0x2127:
		p.wh1 = v
	case 0x2128:
		p.wh2 = v
	case 0x2129:
		p.wh3 = v
	}
}

func (p *PPU) writeWindowLogic(off uint16, v uint8) {
	if off == 0x212A {
		p.wbglog = v
	} else {
		p.wobjlog = v
	}
}

func (p *PPU) writeFixedColor(v uint8) {
	intensity := uint16(v & 0x1F)
	if v&0x20 != 0 {
		p.coldata = (p.coldata &^ 0x001F) | intensity
	}
	if v&0x40 != 0 {
		p.coldata = (p.coldata &^ 0x03E0) | intensity<<5
	}
	if v&0x80 != 0 {
		p.coldata = (p.coldata &^ 0x7C00) | intensity<<10
	}
}

// The PPU has no separate DMA entry points — DMA targets
// reach VRAM/OAM/CGRAM through the same $2118/$2104/$2122 register writes
// the CPU would use, via the bus's normal B-bus dispatch.
