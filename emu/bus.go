package emu

// Bus access-timing classes, billed in master cycles per §5.
const (
	cycleFast      = 6
	cycleSlow      = 8
	cycleExtraSlow = 12
)

// MainBus decodes the 65C816's 24-bit address space across WRAM, the
// cartridge, the PPU, the APU communication ports, DMA/HDMA, and the CPU's
// own internal registers (multiply/divide, joypad auto-read, timers).
type MainBus struct {
	cart *Cartridge
	ppu  *PPU
	apu  *APU
	dbg  *Debugger

	wram    [0x20000]byte
	wramAddr uint32 // WMADDL/M/H latch for $2180/$2181 access

	lastCycles int

	// CPU internal registers ($4200-$421F).
	nmitimen uint8
	wrio     uint8
	wrmpya   uint8
	wrmpyb   uint8
	wrdiv    uint16
	htime    uint16
	vtime    uint16
	mdmaen   uint8
	hdmaen   uint8
	memsel   uint8

	mulResult uint16
	divResult uint16
	divRemain uint16

	rdnmi   bool
	nmiEdge bool // one-shot, consumed by the CPU's per-instruction poll
	timeup  bool
	irqFlag bool

	joy [4]uint16 // JOY1-4, latched on auto-read
	joyStrobe bool
	padState  [2]uint16

	dma  [8]dmaChannel
	hdma [8]hdmaChannel

	scanline  int
	dot       int
	hIRQFired bool // one-shot per scanline, for H-IRQ and H+V-IRQ modes
}

// NewMainBus wires a cartridge, PPU, APU, and shared debugger together.
func NewMainBus(cart *Cartridge, ppu *PPU, apu *APU, dbg *Debugger) *MainBus {
	return &MainBus{cart: cart, ppu: ppu, apu: apu, dbg: dbg}
}

func (b *MainBus) LastAccessCycles() int { return b.lastCycles }

// speedClass classes an address per §5's fast/slow/extra-slow table.
func (b *MainBus) speedClass(addr uint32) int {
	bank := uint8(addr >> 16)
	off := uint16(addr)

	switch {
	case bank >= 0x40 && bank <= 0x7F:
		return cycleSlow
	case bank >= 0xC0:
		if b.fastROM() {
			return cycleFast
		}
		return cycleSlow
	}
	// banks 00-3F and 80-BF share the low-address layout.
	switch {
	case off <= 0x1FFF:
		return cycleSlow
	case off <= 0x20FF:
		return cycleFast
	case off <= 0x21FF:
		return cycleFast
	case off <= 0x3FFF:
		return cycleFast
	case off <= 0x41FF:
		return cycleExtraSlow
	case off <= 0x43FF:
		return cycleFast
	case off <= 0x5FFF:
		return cycleFast
	case off <= 0x7FFF:
		return cycleSlow
	default: // 0x8000-0xFFFF
		if bank >= 0x80 && b.fastROM() {
			return cycleFast
		}
		return cycleSlow
	}
}

func (b *MainBus) fastROM() bool {
	return b.memsel&0x01 != 0 && b.cart != nil && b.cart.FastROM()
}

func (b *MainBus) tickTiming(cycles int) {
	b.lastCycles = cycles
	if b.ppu != nil {
		b.ppu.Catchup(cycles)
	}
	if b.apu != nil {
		b.apu.Catchup(cycles)
	}
	if b.dbg != nil {
		if r := b.dbg.TakeBreak(); r != BreakNone {
			b.dbg.requestBreak(r)
		}
	}
}

func (b *MainBus) Read(addr uint32) uint8 {
	bank := uint8(addr >> 16)
	off := uint16(addr)
	cycles := b.speedClass(addr)
	v := b.readDecoded(bank, off)
	b.tickTiming(cycles)
	if b.dbg != nil {
		b.dbg.Emit(Event{Kind: EventMemoryRead, Address: addr, Value: uint32(v), Component: "bus"})
	}
	return v
}

func (b *MainBus) Write(addr uint32, v uint8) {
	bank := uint8(addr >> 16)
	off := uint16(addr)
	cycles := b.speedClass(addr)
	b.writeDecoded(bank, off, v)
	b.tickTiming(cycles)
	if b.dbg != nil {
		b.dbg.Emit(Event{Kind: EventMemoryWrite, Address: addr, Value: uint32(v), Component: "bus"})
	}
}

func (b *MainBus) readDecoded(bank uint8, off uint16) uint8 {
	switch {
	case bank <= 0x3F || (bank >= 0x80 && bank <= 0xBF):
		switch {
		case off <= 0x1FFF:
			return b.wram[off]
		case off >= 0x2100 && off <= 0x213F:
			return b.ppu.ReadRegister(off)
		case off >= 0x2140 && off <= 0x217F:
			return b.apu.ReadPort(uint8(off & 0x03))
		case off == 0x2180:
			v := b.wram[b.wramAddr&0x1FFFF]
			b.wramAddr = (b.wramAddr + 1) & 0x1FFFF
			return v
		case off >= 0x4016 && off <= 0x4017:
			return b.readJoySerial(off)
		case off >= 0x4200 && off <= 0x421F:
			return b.readCPURegister(off)
		case off >= 0x4300 && off <= 0x437F:
			return b.readDMARegister(off)
		case off >= 0x8000:
			return b.cart.Read(bank, off)
		default:
			return 0
		}
	case bank == 0x7E || bank == 0x7F:
		idx := uint32(bank-0x7E)*0x10000 + uint32(off)
		return b.wram[idx]
	default:
		return b.cart.Read(bank, off)
	}
}

func (b *MainBus) writeDecoded(bank uint8, off uint16, v uint8) {
	switch {
	case bank <= 0x3F || (bank >= 0x80 && bank <= 0xBF):
		switch {
		case off <= 0x1FFF:
			b.wram[off] = v
		case off >= 0x2100 && off <= 0x213F:
			b.ppu.WriteRegister(off, v)
		case off >= 0x2140 && off <= 0x217F:
			b.apu.WritePort(uint8(off&0x03), v)
		case off == 0x2180:
			b.wram[b.wramAddr&0x1FFFF] = v
			b.wramAddr = (b.wramAddr + 1) & 0x1FFFF
		case off == 0x2181:
			b.wramAddr = (b.wramAddr & 0x1FF00) | uint32(v)
		case off == 0x2182:
			b.wramAddr = (b.wramAddr & 0x100FF) | uint32(v)<<8
		case off == 0x2183:
			b.wramAddr = (b.wramAddr & 0x0FFFF) | (uint32(v)&1)<<16
		case off >= 0x4016 && off <= 0x4017:
			b.joyStrobe = v&1 != 0
		case off >= 0x4200 && off <= 0x421F:
			b.writeCPURegister(off, v)
		case off >= 0x4300 && off <= 0x437F:
			b.writeDMARegister(off, v)
		case off >= 0x8000:
			b.cart.Write(bank, off, v)
		}
	case bank == 0x7E || bank == 0x7F:
		idx := uint32(bank-0x7E)*0x10000 + uint32(off)
		b.wram[idx] = v
	default:
		b.cart.Write(bank, off, v)
	}
}

// readJoySerial stubs the $4016/$4017 serial joypad-read path (bit-at-a-time
// polling under manual strobe). Only the $4218+ auto-read latches (populated
// by pollControllers) are implemented; a game that reads $4016/$4017 directly
// sees a constant 0 rather than the actual shift-register bit stream.
func (b *MainBus) readJoySerial(off uint16) uint8 {
	return 0
}

func (b *MainBus) readCPURegister(off uint16) uint8 {
	switch off {
	case 0x4210:
		v := uint8(0x02) // CPU revision nibble, NMI flag handled below
		if b.rdnmi {
			v |= 0x80
		}
		b.rdnmi = false
		return v
	case 0x4211:
		v := uint8(0)
		if b.timeup {
			v = 0x80
		}
		b.timeup = false
		b.irqFlag = false
		return v
	case 0x4212:
		v := uint8(0)
		if b.vblank() {
			v |= 0x80
		}
		if b.hblank() {
			v |= 0x40
		}
		if b.joyStrobe {
			v |= 0x01
		}
		return v
	case 0x4213:
		return b.wrio
	case 0x4214:
		return uint8(b.divResult)
	case 0x4215:
		return uint8(b.divResult >> 8)
	case 0x4216:
		return uint8(b.mulResult)
	case 0x4217:
		return uint8(b.mulResult >> 8)
	case 0x4218, 0x421A, 0x421C, 0x421E:
		idx := (off - 0x4218) / 2
		return uint8(b.joy[idx])
	case 0x4219, 0x421B, 0x421D, 0x421F:
		idx := (off - 0x4219) / 2
		return uint8(b.joy[idx] >> 8)
	}
	return 0
}

func (b *MainBus) writeCPURegister(off uint16, v uint8) {
	switch off {
	case 0x4200:
		b.nmitimen = v
	case 0x4201:
		b.wrio = v
	case 0x4202:
		b.wrmpya = v
	case 0x4203:
		b.wrmpyb = v
		b.mulResult = uint16(b.wrmpya) * uint16(v)
	case 0x4204:
		b.wrdiv = (b.wrdiv & 0xFF00) | uint16(v)
	case 0x4205:
		b.wrdiv = (b.wrdiv & 0x00FF) | uint16(v)<<8
	case 0x4206:
		if v == 0 {
			b.divResult = 0xFFFF
			b.divRemain = b.wrdiv
		} else {
			b.divResult = b.wrdiv / uint16(v)
			b.divRemain = b.wrdiv % uint16(v)
		}
	case 0x4207:
		b.htime = (b.htime & 0x0100) | uint16(v)
	case 0x4208:
		b.htime = (b.htime & 0x00FF) | (uint16(v)&1)<<8
	case 0x4209:
		b.vtime = (b.vtime & 0x0100) | uint16(v)
	case 0x420A:
		b.vtime = (b.vtime & 0x00FF) | (uint16(v)&1)<<8
	case 0x420B:
		b.mdmaen = v
		b.runDMA(v)
	case 0x420C:
		b.hdmaen = v
	case 0x420D:
		b.memsel = v
	}
}

func (b *MainBus) vblank() bool { return b.scanline >= 225 }
func (b *MainBus) hblank() bool { return b.dot >= 274 }

// AdvanceDot advances the bus's scanline/dot position for auto-read and
// blank-flag purposes, driven by the PPU's own scanline clock; called once
// per PPU dot advance from PPU.advanceDot.
func (b *MainBus) AdvanceDot(scanline, dot int) {
	b.scanline = scanline
	b.dot = dot
	if dot == 0 && scanline == 0 {
		b.autoReadJoypads()
		b.InitHDMA()
	}
	if dot == 278 && scanline < visibleHeight {
		b.RunHDMALine()
	}
	b.checkHVIRQ(scanline, dot)
}

// checkHVIRQ implements the $4200 H/V-count IRQ selector (bits 4-5):
// 00 disabled, 01 fires once per scanline when the dot counter reaches
// HTIME, 10 fires once per frame when V matches VTIME at dot 0, 11 fires
// when both H and V match.
func (b *MainBus) checkHVIRQ(scanline, dot int) {
	if dot == 0 {
		b.hIRQFired = false
	}
	switch (b.nmitimen >> 4) & 0x3 {
	case 1:
		if dot == int(b.htime) && !b.hIRQFired {
			b.hIRQFired = true
			b.SignalIRQ()
		}
	case 2:
		if dot == 0 && scanline == int(b.vtime) {
			b.SignalIRQ()
		}
	case 3:
		if dot == int(b.htime) && scanline == int(b.vtime) && !b.hIRQFired {
			b.hIRQFired = true
			b.SignalIRQ()
		}
	}
}

func (b *MainBus) autoReadJoypads() {
	if b.nmitimen&0x01 == 0 {
		return
	}
	b.joy[0] = b.padState[0]
	b.joy[2] = b.padState[1]
}

// SetPadState latches raw button state for the next auto-read cycle; bit
// layout matches the standard SNES controller report (§4.4 expansion).
func (b *MainBus) SetPadState(port int, bits uint16) {
	if port < 0 || port > 1 {
		return
	}
	b.padState[port] = bits
}

// SignalNMI is invoked by the PPU at VBlank start when NMIEnabled reports
// NMITIMEN's NMI bit set; SignalIRQ is invoked by checkHVIRQ on an H/V
// timer match.
func (b *MainBus) NMIEnabled() bool { return b.nmitimen&0x80 != 0 }
func (b *MainBus) SignalNMI()       { b.rdnmi = true; b.nmiEdge = true }
func (b *MainBus) SignalIRQ()       { b.timeup = true; b.irqFlag = true }
func (b *MainBus) IRQPending() bool { return b.irqFlag }
func (b *MainBus) ClearIRQ()        { b.irqFlag = false }

// PollInterrupts reports the shared interrupt flag block polled by the
// CPU between instructions (§9): NMI is a one-shot edge consumed by this
// call, IRQ is a level held until a handler clears it via ClearIRQ.
func (b *MainBus) PollInterrupts() (nmi, irq bool) {
	nmi = b.nmiEdge
	b.nmiEdge = false
	return nmi, b.irqFlag
}
