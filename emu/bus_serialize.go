package emu

import "encoding/binary"

// dmaChannelStateSize is the fixed size of one serialized dmaChannel block.
const dmaChannelStateSize = 1 + 1 + 2 + 1 + 2 + 1

func (d *dmaChannel) serialize(dst []byte) []byte {
	var b [dmaChannelStateSize]byte
	b[0] = d.params
	b[1] = d.bBus
	binary.LittleEndian.PutUint16(b[2:], d.aBus)
	b[4] = d.aBank
	binary.LittleEndian.PutUint16(b[5:], d.size)
	b[7] = d.indBank
	return append(dst, b[:]...)
}

func (d *dmaChannel) deserialize(src []byte) []byte {
	d.params = src[0]
	d.bBus = src[1]
	d.aBus = binary.LittleEndian.Uint16(src[2:])
	d.aBank = src[4]
	d.size = binary.LittleEndian.Uint16(src[5:])
	d.indBank = src[7]
	return src[dmaChannelStateSize:]
}

// hdmaChannelStateSize is the fixed size of one serialized hdmaChannel
// block.
const hdmaChannelStateSize = 2 + 1 + 2 + 1 + 1 + 1

func (h *hdmaChannel) serialize(dst []byte) []byte {
	var b [hdmaChannelStateSize]byte
	binary.LittleEndian.PutUint16(b[0:], h.tableAddr)
	b[2] = h.lineCount
	binary.LittleEndian.PutUint16(b[3:], h.indAddr)
	b[5] = boolByte(h.active)
	b[6] = boolByte(h.repeat)
	b[7] = h.linesLeft
	return append(dst, b[:]...)
}

func (h *hdmaChannel) deserialize(src []byte) []byte {
	h.tableAddr = binary.LittleEndian.Uint16(src[0:])
	h.lineCount = src[2]
	h.indAddr = binary.LittleEndian.Uint16(src[3:])
	h.active = src[5] != 0
	h.repeat = src[6] != 0
	h.linesLeft = src[7]
	return src[hdmaChannelStateSize:]
}

// Serialize appends the bus's state to dst: the full 128KiB WRAM (banks
// $7E/$7F, mirrored at $0000-$1FFF), the eight DMA and HDMA channels, the
// multiply/divide latches, and the $4200-$421F CPU-internal register file
// (§4.7's bus/DMA/HDMA block).
func (b *MainBus) Serialize(dst []byte) []byte {
	dst = append(dst, b.wram[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, b.wramAddr)

	var regs [22]byte
	regs[0] = b.nmitimen
	regs[1] = b.wrio
	regs[2] = b.wrmpya
	regs[3] = b.wrmpyb
	binary.LittleEndian.PutUint16(regs[4:], b.wrdiv)
	binary.LittleEndian.PutUint16(regs[6:], b.htime)
	binary.LittleEndian.PutUint16(regs[8:], b.vtime)
	regs[10] = b.mdmaen
	regs[11] = b.hdmaen
	regs[12] = b.memsel
	binary.LittleEndian.PutUint16(regs[13:], b.mulResult)
	binary.LittleEndian.PutUint16(regs[15:], b.divResult)
	binary.LittleEndian.PutUint16(regs[17:], b.divRemain)
	regs[19] = boolByte(b.rdnmi)
	regs[20] = boolByte(b.nmiEdge)
	regs[21] = boolByte(b.timeup)
	dst = append(dst, regs[:]...)
	dst = append(dst, boolByte(b.irqFlag))

	for i := range b.joy {
		dst = binary.LittleEndian.AppendUint16(dst, b.joy[i])
	}
	dst = append(dst, boolByte(b.joyStrobe))
	for i := range b.padState {
		dst = binary.LittleEndian.AppendUint16(dst, b.padState[i])
	}

	for i := range b.dma {
		dst = b.dma[i].serialize(dst)
	}
	for i := range b.hdma {
		dst = b.hdma[i].serialize(dst)
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(int32(b.scanline)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(int32(b.dot)))
	dst = append(dst, boolByte(b.hIRQFired))
	return dst
}

// Deserialize reads a bus state block from src and returns the remaining
// bytes.
func (b *MainBus) Deserialize(src []byte) []byte {
	copy(b.wram[:], src[:len(b.wram)])
	src = src[len(b.wram):]
	b.wramAddr = binary.LittleEndian.Uint32(src)
	src = src[4:]

	regs := src[:22]
	b.nmitimen = regs[0]
	b.wrio = regs[1]
	b.wrmpya = regs[2]
	b.wrmpyb = regs[3]
	b.wrdiv = binary.LittleEndian.Uint16(regs[4:])
	b.htime = binary.LittleEndian.Uint16(regs[6:])
	b.vtime = binary.LittleEndian.Uint16(regs[8:])
	b.mdmaen = regs[10]
	b.hdmaen = regs[11]
	b.memsel = regs[12]
	b.mulResult = binary.LittleEndian.Uint16(regs[13:])
	b.divResult = binary.LittleEndian.Uint16(regs[15:])
	b.divRemain = binary.LittleEndian.Uint16(regs[17:])
	b.rdnmi = regs[19] != 0
	b.nmiEdge = regs[20] != 0
	b.timeup = regs[21] != 0
	src = src[22:]
	b.irqFlag = src[0] != 0
	src = src[1:]

	for i := range b.joy {
		b.joy[i] = binary.LittleEndian.Uint16(src)
		src = src[2:]
	}
	b.joyStrobe = src[0] != 0
	src = src[1:]
	for i := range b.padState {
		b.padState[i] = binary.LittleEndian.Uint16(src)
		src = src[2:]
	}

	for i := range b.dma {
		src = b.dma[i].deserialize(src)
	}
	for i := range b.hdma {
		src = b.hdma[i].deserialize(src)
	}

	b.scanline = int(int32(binary.LittleEndian.Uint32(src)))
	src = src[4:]
	b.dot = int(int32(binary.LittleEndian.Uint32(src)))
	src = src[4:]
	b.hIRQFired = src[0] != 0
	return src[1:]
}
