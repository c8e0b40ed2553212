package emu

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
)

// Config mirrors the constructor-parameter style used throughout this
// package: a small struct of optional overrides rather than a long
// parameter list, with zero values meaning "use the default."
type Config struct {
	DebugLogCapacity int
}

// System composes every component into one runnable SNES: the 65C816,
// the main bus, the PPU, the APU/S-DSP pair, the cartridge, and the
// shared debugger mediator (§2 expansion).
type System struct {
	CPU  *CPU
	Bus  *MainBus
	PPU  *PPU
	APU  *APU
	Cart *Cartridge
	Dbg  *Debugger

	frameCount  uint64
	cycleBudget int
}

// NewSystem loads cart from fs at path and wires every component
// together, performing the equivalent of a power-on reset.
func NewSystem(fs afero.Fs, path string, cfg Config) (*System, error) {
	cart, err := Load(fs, path)
	if err != nil {
		return nil, fmt.Errorf("system: load cartridge: %w", err)
	}
	return newSystemWithCartridge(cart, cfg), nil
}

// NewSystemFromBytes is the afero-free counterpart to NewSystem, for
// callers that already hold a ROM image in memory.
func NewSystemFromBytes(rom []byte, cfg Config) (*System, error) {
	cart, err := LoadBytes(rom)
	if err != nil {
		return nil, err
	}
	return newSystemWithCartridge(cart, cfg), nil
}

func newSystemWithCartridge(cart *Cartridge, cfg Config) *System {
	dbg := NewDebugger(cfg.DebugLogCapacity)
	ppu := NewPPU(dbg)
	apu := NewAPU()
	bus := NewMainBus(cart, ppu, apu, dbg)
	ppu.SetBus(bus)
	cpu := New(bus, dbg)

	return &System{CPU: cpu, Bus: bus, PPU: ppu, APU: apu, Cart: cart, Dbg: dbg}
}

// Reset performs a full system reset: cartridge state is untouched (SRAM
// persists), but the CPU, PPU, and APU return to their power-on state.
func (s *System) Reset() {
	s.CPU.Reset()
	*s.APU = *NewAPU()
	s.APU.dsp.AttachRAM(&s.APU.ram)
	*s.PPU = *NewPPU(s.Dbg)
	s.PPU.SetBus(s.Bus)
}

// StepInstruction runs exactly one CPU instruction and returns how it
// ended (§2's "run one instruction" operation).
func (s *System) StepInstruction() Outcome {
	_, outcome := s.CPU.Step()
	return outcome
}

// RunUntilBreak steps instructions until the debugger requests a break or
// the CPU halts (STP), with maxInstructions as a runaway guard.
func (s *System) RunUntilBreak(maxInstructions int) Outcome {
	for i := 0; i < maxInstructions; i++ {
		_, outcome := s.CPU.Step()
		if outcome != Normal {
			return outcome
		}
	}
	return Normal
}

// RunFrames steps the system for n full PPU frames (VBlank-to-VBlank),
// driving HDMA setup at the start of each frame.
func (s *System) RunFrames(n int) Outcome {
	for i := 0; i < n; i++ {
		if outcome := s.runOneFrame(); outcome != Normal {
			return outcome
		}
	}
	return Normal
}

func (s *System) runOneFrame() Outcome {
	wasVBlank := s.PPU.InVBlank()
	for {
		_, outcome := s.CPU.Step()
		if outcome != Normal {
			return outcome
		}
		nowVBlank := s.PPU.InVBlank()
		if nowVBlank && !wasVBlank {
			s.frameCount++
			return Normal
		}
		wasVBlank = nowVBlank
	}
}

// RunScanlines steps the system for n PPU scanlines.
func (s *System) RunScanlines(n int) Outcome {
	for i := 0; i < n; i++ {
		startLine := s.PPU.scanline
		for s.PPU.scanline == startLine {
			_, outcome := s.CPU.Step()
			if outcome != Normal {
				return outcome
			}
		}
	}
	return Normal
}

// RunCycles steps the system until at least n master cycles have elapsed.
func (s *System) RunCycles(n int) Outcome {
	start := s.CPU.Cycles()
	for s.CPU.Cycles()-start < uint64(n) {
		_, outcome := s.CPU.Step()
		if outcome != Normal {
			return outcome
		}
	}
	return Normal
}

// RunSamples steps the system until at least n stereo audio sample pairs
// have been produced by the S-DSP.
func (s *System) RunSamples(n int) ([]int16, Outcome) {
	for len(s.APU.dsp.out) < n*2 {
		_, outcome := s.CPU.Step()
		if outcome != Normal {
			return s.APU.dsp.DrainSamples(), outcome
		}
	}
	return s.APU.dsp.DrainSamples(), Normal
}

// RunFor steps the system for approximately d of emulated wall-clock
// time, derived from the ~21.477MHz NTSC master clock.
func (s *System) RunFor(d time.Duration) Outcome {
	const masterHz = 21477272
	cycles := int(d.Seconds() * masterHz)
	return s.RunCycles(cycles)
}

// Framebuffer returns the most recently rendered video frame, RGB888
// packed as 0x00RRGGBB per pixel.
func (s *System) Framebuffer() []uint32 { return s.PPU.Framebuffer() }

// FrameCount returns the number of completed frames since reset.
func (s *System) FrameCount() uint64 { return s.frameCount }

// SetInput latches controller state for port (0 or 1) ahead of the next
// auto-read cycle.
func (s *System) SetInput(port int, buttons uint16) {
	s.Bus.SetPadState(port, buttons)
}
