package emu

import "encoding/binary"

// Serialize appends the PPU's VRAM/OAM/CGRAM and register state to dst.
// Derived state (the tile cache, the framebuffer) is rebuilt on first
// render rather than persisted, since it is fully determined by VRAM and
// the registers that are saved.
func (p *PPU) Serialize(dst []byte) []byte {
	for _, w := range p.vram {
		dst = binary.LittleEndian.AppendUint16(dst, w)
	}
	for _, w := range p.cgram {
		dst = binary.LittleEndian.AppendUint16(dst, w)
	}
	dst = append(dst, p.oam[:]...)

	var regs [32]byte
	regs[0] = p.inidisp
	regs[1] = p.objsel
	regs[2] = p.mode
	regs[3] = p.mode1
	binary.LittleEndian.PutUint16(regs[4:], p.vramAddr)
	regs[6] = p.cgramAddr
	binary.LittleEndian.PutUint16(regs[7:], p.oamAddr)
	regs[9] = p.tm
	regs[10] = p.ts
	regs[11] = p.cgwsel
	regs[12] = p.cgadsub
	binary.LittleEndian.PutUint16(regs[13:], uint16(p.scanline))
	binary.LittleEndian.PutUint16(regs[15:], uint16(p.dot))
	regs[17] = boolByte(p.spriteRangeOver)
	regs[18] = boolByte(p.spriteTimeOver)
	dst = append(dst, regs[:]...)

	for i := range p.bg {
		var b [9]byte
		binary.LittleEndian.PutUint16(b[0:], p.bg[i].tilemapAddr)
		b[2] = p.bg[i].tilemapSize
		binary.LittleEndian.PutUint16(b[3:], p.bg[i].charAddr)
		binary.LittleEndian.PutUint16(b[5:], p.bg[i].hScroll)
		binary.LittleEndian.PutUint16(b[7:], p.bg[i].vScroll)
		dst = append(dst, b[:]...)
	}
	return dst
}

func (p *PPU) Deserialize(src []byte) []byte {
	for i := range p.vram {
		p.vram[i] = binary.LittleEndian.Uint16(src[i*2:])
	}
	src = src[len(p.vram)*2:]
	for i := range p.cgram {
		p.cgram[i] = binary.LittleEndian.Uint16(src[i*2:])
	}
	src = src[len(p.cgram)*2:]
	copy(p.oam[:], src[:len(p.oam)])
	src = src[len(p.oam):]

	regs := src[:32]
	p.inidisp = regs[0]
	p.objsel = regs[1]
	p.mode = regs[2]
	p.mode1 = regs[3]
	p.vramAddr = binary.LittleEndian.Uint16(regs[4:])
	p.cgramAddr = regs[6]
	p.oamAddr = binary.LittleEndian.Uint16(regs[7:])
	p.tm = regs[9]
	p.ts = regs[10]
	p.cgwsel = regs[11]
	p.cgadsub = regs[12]
	p.scanline = int(binary.LittleEndian.Uint16(regs[13:]))
	p.dot = int(binary.LittleEndian.Uint16(regs[15:]))
	p.spriteRangeOver = regs[17] != 0
	p.spriteTimeOver = regs[18] != 0
	src = src[32:]

	for i := range p.bg {
		b := src[:9]
		p.bg[i].tilemapAddr = binary.LittleEndian.Uint16(b[0:])
		p.bg[i].tilemapSize = b[2]
		p.bg[i].charAddr = binary.LittleEndian.Uint16(b[3:])
		p.bg[i].hScroll = binary.LittleEndian.Uint16(b[5:])
		p.bg[i].vScroll = binary.LittleEndian.Uint16(b[7:])
		src = src[9:]
	}
	p.tileCache.Purge()
	return src
}

// PPUStateSize returns the fixed size of a serialized PPU block.
func PPUStateSize() int {
	return 0x8000*2 + 256*2 + 544 + 32 + 4*9
}
