package emu

// SPC700 processor status flags (NVPBHIZC).
const (
	spcFlagC uint8 = 0x01
	spcFlagZ uint8 = 0x02
	spcFlagI uint8 = 0x04
	spcFlagH uint8 = 0x08
	spcFlagB uint8 = 0x10
	spcFlagP uint8 = 0x20 // direct page select: 0=$00xx, 1=$01xx
	spcFlagV uint8 = 0x40
	spcFlagN uint8 = 0x80
)

// SPCRegisters holds the SPC700's programmer-visible state.
type SPCRegisters struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	PSW     uint8
}

// timer is one of the SPC700's three fixed-rate countdown timers ($FA-$FC
// for the divisors, $FD-$FF for the readable counters), §4.3 expansion.
type timer struct {
	divisor uint8
	counter uint8
	out     uint8
	accum   int
	period  int // SPC700-cycle period between internal ticks: 128 for T0/T1, 16 for T2
}

// APU is the sound co-processor: an SPC700 CPU, 64KiB of private RAM, the
// four CPU<->APU communication ports, three timers, and the attached
// S-DSP synthesizer. It runs on its own 1.024MHz clock domain, bridged
// from the main bus's master-cycle budget via an accumulated remainder
// (§5 expansion).
type APU struct {
	reg SPCRegisters

	ram [0x10000]byte

	ports    [4]uint8 // CPU->APU side, written by MainBus.WritePort
	apuPorts [4]uint8 // APU->CPU side, written by the SPC700's own port writes

	timers [3]timer

	dsp *DSP

	masterRemainder int // fractional master cycles owed to the APU clock bridge
	cycles          uint64

	stopped bool

	// romReadable mirrors CONTROL ($00F1) bit 7: while set, reads from
	// $FFC0-$FFFF are satisfied from spcIPLROM instead of RAM. Writes
	// always go to RAM regardless, so clearing the bit exposes whatever
	// the uploader already wrote there.
	romReadable bool
}

// apuClockDivisor is the master-clock-to-SPC700-clock ratio: 21.477MHz/21
// ≈ 1.024MHz, matching the flat /21 divisor reference SNES cores use rather
// than a finer rational approximation.
const apuClockDivisor = 21

// spcIPLROM is the 64-byte boot ROM mapped at $FFC0-$FFFF whenever CONTROL
// bit 7 is set. It runs the "AA BB -> CC -> address+data" handshake real
// cartridges' SPC700 upload routines expect: wait for the CPU ports to read
// $AA/$BB, echo $CC, then receive a destination address and a byte stream to
// write into APU RAM before jumping to it.
var spcIPLROM = [64]byte{
	0xCD, 0xEF, 0xBD, 0xE8, 0x00, 0xC6, 0x1D, 0xD0, 0xFC, 0x8F, 0xAA, 0xF4, 0x8F, 0xBB, 0xF5, 0x78,
	0xCC, 0xF4, 0xD0, 0xFB, 0x2F, 0x19, 0xEB, 0xF4, 0xD0, 0xFC, 0x7E, 0xF4, 0xD0, 0x0B, 0xE4, 0xF5,
	0xCB, 0xF4, 0xD7, 0x00, 0xFC, 0xD0, 0xF3, 0xAB, 0x01, 0x10, 0xEF, 0x7E, 0xF4, 0x10, 0xEB, 0xBA,
	0xF6, 0xDA, 0x00, 0xBA, 0xF4, 0xC4, 0xF4, 0xDD, 0x5D, 0xD0, 0xDB, 0x1F, 0x00, 0x00, 0xC0, 0xFF,
}

// NewAPU creates an APU with its DSP attached and performs a reset.
func NewAPU() *APU {
	a := &APU{dsp: NewDSP()}
	a.dsp.AttachRAM(&a.ram)
	a.Reset()
	return a
}

// Reset matches the SPC700 boot ROM's effect on registers the rest of the
// system can observe: PC at the IPL ROM entry point $FFC0, SP at $EF.
func (a *APU) Reset() {
	a.reg = SPCRegisters{SP: 0xEF, PC: 0xFFC0}
	a.ports = [4]uint8{}
	a.apuPorts = [4]uint8{}
	a.timers = [3]timer{{period: 128}, {period: 128}, {period: 16}}
	a.masterRemainder = 0
	a.stopped = false
	a.romReadable = true
}

// Catchup advances the APU by masterCycles master-clock cycles, running
// whole SPC700 instructions until the accumulated fractional budget can't
// afford another (§5's cross-clock-domain bridge).
func (a *APU) Catchup(masterCycles int) {
	a.masterRemainder += masterCycles
	for a.masterRemainder >= apuClockDivisor && !a.stopped {
		a.masterRemainder -= apuClockDivisor
		spent := a.step()
		for i := range a.timers {
			a.tickTimer(i, spent)
		}
		a.dsp.Tick(spent)
	}
}

func (a *APU) tickTimer(i, cycles int) {
	t := &a.timers[i]
	if t.divisor == 0 {
		return
	}
	t.accum += cycles
	for t.accum >= t.period {
		t.accum -= t.period
		t.counter++
		if t.counter >= t.divisor {
			t.counter = 0
			t.out = (t.out + 1) & 0x0F
		}
	}
}

// ReadPort/WritePort implement the CPU-facing side of $2140-$2143: the
// CPU reads whatever the SPC700 last wrote to APUIO0-3, and vice versa.
func (a *APU) ReadPort(n uint8) uint8  { return a.apuPorts[n&0x03] }
func (a *APU) WritePort(n, v uint8)    { a.ports[n&0x03] = v }

func (a *APU) read(addr uint16) uint8 {
	switch {
	case addr >= 0x00F4 && addr <= 0x00F7:
		return a.ports[addr-0x00F4]
	case addr == 0x00F2:
		return a.dsp.addr
	case addr == 0x00F3:
		return a.dsp.Read(a.dsp.addr)
	case addr >= 0x00FD && addr <= 0x00FF:
		t := &a.timers[addr-0x00FD]
		v := t.out
		t.out = 0
		return v
	case addr >= 0xFFC0 && a.romReadable:
		return spcIPLROM[addr-0xFFC0]
	}
	return a.ram[addr]
}

func (a *APU) write(addr uint16, v uint8) {
	switch {
	case addr >= 0x00F4 && addr <= 0x00F7:
		a.apuPorts[addr-0x00F4] = v
		return
	case addr == 0x00F1:
		a.handleControl(v)
		return
	case addr == 0x00F2:
		a.dsp.addr = v
		return
	case addr == 0x00F3:
		a.dsp.Write(a.dsp.addr, v)
		return
	case addr >= 0x00FA && addr <= 0x00FC:
		a.timers[addr-0x00FA].divisor = v
		return
	}
	a.ram[addr] = v
}

// handleControl implements $00F1 CONTROL: the two port-clear bits the IPL
// handshake protocol relies on, bit 7, which switches $FFC0-$FFFF between
// the boot ROM and RAM, and bits 0-2, where a clear bit resets that timer's
// counter and output. The timer bits do not gate ticking: a timer with a
// nonzero divisor keeps counting whether its bit is set or clear.
func (a *APU) handleControl(v uint8) {
	for i := 0; i < 3; i++ {
		if v&(1<<i) == 0 {
			a.timers[i].counter = 0
			a.timers[i].out = 0
		}
	}
	if v&0x10 != 0 {
		a.ports[0], a.ports[1] = 0, 0
	}
	if v&0x20 != 0 {
		a.ports[2], a.ports[3] = 0, 0
	}
	a.romReadable = v&0x80 != 0
}

func (a *APU) dpBase() uint16 {
	if a.reg.PSW&spcFlagP != 0 {
		return 0x0100
	}
	return 0x0000
}

func (a *APU) setFlag(mask uint8, v bool) {
	if v {
		a.reg.PSW |= mask
	} else {
		a.reg.PSW &^= mask
	}
}
func (a *APU) flag(mask uint8) bool { return a.reg.PSW&mask != 0 }

func (a *APU) setNZ(v uint8) {
	a.setFlag(spcFlagZ, v == 0)
	a.setFlag(spcFlagN, v&0x80 != 0)
}

func (a *APU) fetch() uint8 {
	v := a.read(a.reg.PC)
	a.reg.PC++
	return v
}
func (a *APU) fetch16() uint16 {
	lo := a.fetch()
	hi := a.fetch()
	return uint16(lo) | uint16(hi)<<8
}

func (a *APU) push(v uint8) {
	a.ram[0x0100+uint16(a.reg.SP)] = v
	a.reg.SP--
}
func (a *APU) pull() uint8 {
	a.reg.SP++
	return a.ram[0x0100+uint16(a.reg.SP)]
}

// step executes exactly one SPC700 instruction and returns its cycle cost
// in the SPC700's own clock domain (2 to 12 cycles per instruction).
func (a *APU) step() int {
	before := a.cycles
	opcode := a.fetch()
	entry := spcOpcodeTable[opcode]
	cost := entry.exec(a, entry.mode)
	a.cycles += uint64(cost)
	return int(a.cycles - before)
}
