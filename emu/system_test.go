package emu

import (
	"testing"

	"github.com/spf13/afero"
)

func writeTestROM(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	rom := makeLoROMImage(0)
	// A tight infinite loop at the reset vector so RunCycles/RunScanlines
	// have something deterministic to step through.
	code := []byte{0xEA, 0x80, 0xFE} // NOP; BRA -2 (spin forever)
	copy(rom[0x0000:], code)
	if err := afero.WriteFile(fs, path, rom, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewSystemFromBytesBoots(t *testing.T) {
	sys, err := NewSystemFromBytes(makeLoROMImage(0), Config{})
	if err != nil {
		t.Fatalf("NewSystemFromBytes: %v", err)
	}
	if sys.CPU.Registers().PC != 0x8000 {
		t.Fatalf("PC after boot = %#x, want 0x8000", sys.CPU.Registers().PC)
	}
}

func TestNewSystemFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestROM(t, fs, "game.sfc")
	sys, err := NewSystem(fs, "game.sfc", Config{})
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	if sys.Cart == nil {
		t.Fatalf("expected a loaded cartridge")
	}
}

func TestRunCyclesAdvancesClock(t *testing.T) {
	sys, err := NewSystemFromBytes(makeLoROMImage(0), Config{})
	if err != nil {
		t.Fatal(err)
	}
	before := sys.CPU.Cycles()
	sys.RunCycles(1000)
	if sys.CPU.Cycles()-before < 1000 {
		t.Fatalf("RunCycles should advance the clock by at least the requested budget")
	}
}

func TestStepInstructionReturnsNormal(t *testing.T) {
	sys, err := NewSystemFromBytes(makeLoROMImage(0), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome := sys.StepInstruction(); outcome != Normal {
		t.Fatalf("StepInstruction() = %v, want Normal", outcome)
	}
}

func TestResetPreservesSRAM(t *testing.T) {
	sys, err := NewSystemFromBytes(makeLoROMImage(1), Config{})
	if err != nil {
		t.Fatal(err)
	}
	sys.Cart.Write(0x00, 0x6000, 0x99)
	sys.Reset()
	if got := sys.Cart.Read(0x00, 0x6000); got != 0x99 {
		t.Fatalf("SRAM should survive Reset, got %#x", got)
	}
}
