package emu

// dmaChannel holds one of the eight general-purpose DMA channels' register
// state ($43x0-$43xA), grounded on the teacher's byte-rate DMA engine but
// generalized to the SNES's A-bus/B-bus transfer model (§4.4 expansion).
type dmaChannel struct {
	params  uint8  // DMAPn: direction, addressing mode, transfer unit pattern
	bBus    uint8  // BBADn: low byte of the PPU/APU register address
	aBus    uint16 // A1TnL/H: A-bus start address
	aBank   uint8  // A1Bn
	size    uint16 // DASnL/H: byte count (0 means 0x10000)
	indBank uint8  // DASBn, used by HDMA indirect mode
}

func (b *MainBus) readDMARegister(off uint16) uint8 {
	ch := (off - 0x4300) / 0x10
	reg := (off - 0x4300) % 0x10
	d := &b.dma[ch]
	switch reg {
	case 0x0:
		return d.params
	case 0x1:
		return d.bBus
	case 0x2:
		return uint8(d.aBus)
	case 0x3:
		return uint8(d.aBus >> 8)
	case 0x4:
		return d.aBank
	case 0x5:
		return uint8(d.size)
	case 0x6:
		return uint8(d.size >> 8)
	case 0x7:
		return d.indBank
	}
	return 0
}

func (b *MainBus) writeDMARegister(off uint16, v uint8) {
	ch := (off - 0x4300) / 0x10
	reg := (off - 0x4300) % 0x10
	d := &b.dma[ch]
	h := &b.hdma[ch]
	switch reg {
	case 0x0:
		d.params = v
	case 0x1:
		d.bBus = v
	case 0x2:
		d.aBus = (d.aBus & 0xFF00) | uint16(v)
	case 0x3:
		d.aBus = (d.aBus & 0x00FF) | uint16(v)<<8
	case 0x4:
		d.aBank = v
	case 0x5:
		d.size = (d.size & 0xFF00) | uint16(v)
		h.lineCount = v
	case 0x6:
		d.size = (d.size & 0x00FF) | uint16(v)<<8
	case 0x7:
		d.indBank = v
	case 0x8:
		h.tableAddr = (h.tableAddr & 0xFF00) | uint16(v)
	case 0x9:
		h.tableAddr = (h.tableAddr & 0x00FF) | uint16(v)<<8
	}
}

// dmaUnitPattern returns the sequence of B-bus register offsets a transfer
// unit writes through, per DMAPn bits 0-2 (§4.4).
func dmaUnitPattern(params uint8) []uint8 {
	switch params & 0x07 {
	case 0:
		return []uint8{0}
	case 1:
		return []uint8{0, 1}
	case 2, 6:
		return []uint8{0, 0}
	case 3, 7:
		return []uint8{0, 0, 1, 1}
	case 4:
		return []uint8{0, 1, 2, 3}
	case 5:
		return []uint8{0, 1, 0, 1}
	}
	return []uint8{0}
}

// runDMA executes every channel whose bit is set in mdmaen, transferring
// synchronously (the CPU is conceptually stalled; the System bills the
// elapsed cycles through the bus's normal access billing since each byte
// transfer still goes through Read/Write).
func (b *MainBus) runDMA(mdmaen uint8) {
	for ch := 0; ch < 8; ch++ {
		if mdmaen&(1<<ch) == 0 {
			continue
		}
		d := &b.dma[ch]
		toB := d.params&0x80 == 0 // DMAPn bit7: 0 = A-bus->B-bus (CPU->PPU), 1 = B-bus->A-bus
		pattern := dmaUnitPattern(d.params)
		count := uint32(d.size)
		if count == 0 {
			count = 0x10000
		}
		aAddr := d.aBus
		unitIdx := 0
		for i := uint32(0); i < count; i++ {
			bAddr := uint32(0x2100) + uint32(pattern[unitIdx]) + uint32(d.bBus)
			unitIdx = (unitIdx + 1) % len(pattern)
			aFull := uint32(d.aBank)<<16 | uint32(aAddr)
			if toB {
				b.Write(bAddr, b.Read(aFull))
			} else {
				b.Write(aFull, b.Read(bAddr))
			}
			// Bits 4:3 select increment (0), fixed (1 or 3), or
			// decrement (2) A-bus addressing after each unit copy.
			switch (d.params >> 3) & 0x03 {
			case 0:
				aAddr++
			case 2:
				aAddr--
			}
		}
		d.aBus = aAddr
		d.size = 0
	}
}
