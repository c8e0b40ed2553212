package emu

import "testing"

// flatBus is a minimal flat RAM bus covering the full 24-bit (16MiB)
// address space for CPU unit tests, in the
// style of a flat-memory test harness: every access costs a fixed number
// of cycles and nothing else observes it.
type flatBus struct {
	mem   [1 << 24]byte
	last  int
}

func newFlatBus() *flatBus { return &flatBus{} }

func (b *flatBus) Read(addr uint32) uint8 {
	b.last = cycleFast
	return b.mem[addr&0xFFFFFF]
}
func (b *flatBus) Write(addr uint32, v uint8) {
	b.last = cycleFast
	b.mem[addr&0xFFFFFF] = v
}
func (b *flatBus) LastAccessCycles() int { return b.last }
func (b *flatBus) PollInterrupts() (nmi, irq bool) { return false, false }

func (b *flatBus) loadAt(bank uint8, off uint16, bytes ...uint8) {
	for i, v := range bytes {
		b.mem[uint32(bank)<<16|uint32(off)+uint32(i)] = v
	}
}

func newTestCPU() (*CPU, *flatBus) {
	bus := newFlatBus()
	bus.mem[0xFFFC] = 0x00
	bus.mem[0xFFFD] = 0x80
	c := New(bus, nil)
	return c, bus
}

func TestResetVectorAndState(t *testing.T) {
	c, _ := newTestCPU()
	r := c.Registers()
	if r.PC != 0x8000 {
		t.Fatalf("PC = %#x, want 0x8000", r.PC)
	}
	if !r.E {
		t.Fatalf("expected emulation mode after reset")
	}
	if r.P&flagM == 0 || r.P&flagX == 0 {
		t.Fatalf("expected M and X set after reset, got P=%#x", r.P)
	}
	if r.S != 0x01FD {
		t.Fatalf("S = %#x, want 0x01FD", r.S)
	}
}

func TestLDAImmediate8Bit(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000, 0xA9, 0x42) // LDA #$42
	c.Step()
	r := c.Registers()
	if uint8(r.C) != 0x42 {
		t.Fatalf("A = %#x, want 0x42", uint8(r.C))
	}
	if r.P&flagZ != 0 {
		t.Fatalf("Z should be clear")
	}
}

func TestLDAZeroSetsZeroFlag(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000, 0xA9, 0x00)
	c.Step()
	if !c.flag(flagZ) {
		t.Fatalf("expected Z set for LDA #$00")
	}
}

func TestXCEEntersNativeMode(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000,
		0x18,       // CLC
		0xFB,       // XCE -> swaps C and E; C was 0 so E becomes 0 (native)
	)
	c.Step()
	c.Step()
	r := c.Registers()
	if r.E {
		t.Fatalf("expected native mode after CLC;XCE")
	}
}

func TestREPClearsWidthFlags(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000,
		0x18, 0xFB, // CLC; XCE -> native mode
		0xC2, 0x30, // REP #$30 -> clear M and X
	)
	c.Step()
	c.Step()
	c.Step()
	r := c.Registers()
	if r.P&flagM != 0 || r.P&flagX != 0 {
		t.Fatalf("expected M,X clear after REP #$30, got P=%#x", r.P)
	}
}

func TestADCBinaryCarryAndOverflow(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000,
		0xA9, 0x7F, // LDA #$7F
		0x18,       // CLC
		0x69, 0x01, // ADC #$01 -> 0x80, V set, N set
	)
	c.Step()
	c.Step()
	c.Step()
	r := c.Registers()
	if uint8(r.C) != 0x80 {
		t.Fatalf("A = %#x, want 0x80", uint8(r.C))
	}
	if !c.flag(flagV) {
		t.Fatalf("expected overflow from 0x7F+0x01")
	}
	if !c.flag(flagN) {
		t.Fatalf("expected negative result")
	}
}

func TestJSRAndRTSRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000,
		0x20, 0x10, 0x80, // JSR $8010
		0xEA,             // NOP (return lands here)
	)
	bus.loadAt(0, 0x8010, 0x60) // RTS
	c.Step()                    // JSR
	if c.Registers().PC != 0x8010 {
		t.Fatalf("PC after JSR = %#x, want 0x8010", c.Registers().PC)
	}
	c.Step() // RTS
	if c.Registers().PC != 0x8003 {
		t.Fatalf("PC after RTS = %#x, want 0x8003", c.Registers().PC)
	}
}

func TestBranchTakenBillsExtraCycle(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000,
		0x18,       // CLC
		0x90, 0x02, // BCC +2 (taken, since C is clear)
	)
	c.Step()
	before := c.Cycles()
	cycles, _ := c.Step()
	_ = before
	if cycles < 3 {
		t.Fatalf("expected at least 3 cycles for a taken branch, got %d", cycles)
	}
}

func TestSetStateForFixtureHarness(t *testing.T) {
	c, _ := newTestCPU()
	c.SetState(Registers{C: 0x1234, X: 0x5678, PC: 0x9000, P: flagC, E: false})
	r := c.Registers()
	if r.C != 0x1234 || r.X != 0x5678 || r.PC != 0x9000 {
		t.Fatalf("SetState did not apply: %+v", r)
	}
}

func TestNMIServicedBetweenInstructions(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xFFEA] = 0x00
	bus.mem[0xFFEB] = 0x90 // emulation-mode NMI vector at $FFFA, native at $FFEA
	bus.mem[0xFFFA] = 0x00
	bus.mem[0xFFFB] = 0x90
	bus.loadAt(0, 0x8000, 0xEA) // NOP
	c.NMI(true)
	c.Step()
	if c.Registers().PC != 0x9000 {
		t.Fatalf("PC after NMI = %#x, want 0x9000", c.Registers().PC)
	}
}

func TestStepCyclesMonotonic(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(0, 0x8000, 0xEA, 0xEA, 0xEA)
	last := c.Cycles()
	for i := 0; i < 3; i++ {
		c.Step()
		if c.Cycles() <= last {
			t.Fatalf("cycle counter did not advance at step %d", i)
		}
		last = c.Cycles()
	}
}
