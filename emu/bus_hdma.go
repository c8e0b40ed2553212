package emu

// hdmaChannel tracks one HDMA channel's per-scanline replay state. HDMA
// shares its channel's DMA registers for the B-bus address/unit pattern
// but walks its own table pointer ($43x8/$43x9), reloaded from A1Tn
// ($43x2/$43x3) at the start of each frame (§4.4 expansion).
type hdmaChannel struct {
	tableAddr uint16
	lineCount uint8
	indAddr   uint16
	active    bool
	repeat    bool
	linesLeft uint8
}

// InitHDMA latches each enabled channel's table pointer at the start of
// the frame (scanline 0, matching real HDMA's "init" pass during VBlank).
func (b *MainBus) InitHDMA() {
	for ch := 0; ch < 8; ch++ {
		if b.hdmaen&(1<<ch) == 0 {
			b.hdma[ch].active = false
			continue
		}
		h := &b.hdma[ch]
		d := &b.dma[ch]
		h.active = true
		h.linesLeft = 0
		h.tableAddr = d.aBus // A2An reloads from A1Tn at the start of each frame
	}
}

// RunHDMALine executes one scanline's worth of HDMA transfer for every
// active channel, called once per visible scanline before the CPU resumes
// (§4.4 expansion; grounded on the DMA byte-rate dispatch style).
func (b *MainBus) RunHDMALine() {
	for ch := 0; ch < 8; ch++ {
		h := &b.hdma[ch]
		if !h.active {
			continue
		}
		d := &b.dma[ch]
		if h.linesLeft == 0 {
			full := uint32(d.aBank)<<16 | uint32(h.tableAddr)
			header := b.Read(full)
			h.tableAddr++
			if header == 0 {
				h.active = false
				continue
			}
			h.repeat = header&0x80 != 0
			h.linesLeft = header & 0x7F
			if h.linesLeft == 0 {
				h.linesLeft = 1
			}
			if d.params&0x40 != 0 { // indirect addressing
				lo := b.Read(uint32(d.aBank)<<16 | uint32(h.tableAddr))
				h.tableAddr++
				hi := b.Read(uint32(d.aBank)<<16 | uint32(h.tableAddr))
				h.tableAddr++
				h.indAddr = uint16(lo) | uint16(hi)<<8
			}
		}

		pattern := dmaUnitPattern(d.params)
		srcBank := d.aBank
		srcAddr := h.tableAddr
		if d.params&0x40 != 0 {
			srcBank = d.indBank
			srcAddr = h.indAddr
		}
		for _, unit := range pattern {
			bAddr := uint32(0x2100) + uint32(d.bBus) + uint32(unit)
			full := uint32(srcBank)<<16 | uint32(srcAddr)
			b.Write(bAddr, b.Read(full))
			srcAddr++
		}
		if d.params&0x40 != 0 {
			h.indAddr = srcAddr
		} else {
			h.tableAddr = srcAddr
		}
		h.linesLeft--
	}
}
