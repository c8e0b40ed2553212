package emu

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/user-none/emsnes/internal/fixtures"
)

// cpuOpcodeFixtures points at the property-based 65C816 vector set. The
// file is not checked in (it's large even compressed); tests skip quietly
// when it's absent rather than failing a checkout that never fetched it.
const cpuOpcodeFixtures = "testdata/cpu_opcodes.json.zst"

// applyOpcodeInitial sets up a flatBus and CPU from an OpcodeCase's initial
// state, keyed the way the fixture generator names 65C816 registers.
func applyOpcodeInitial(t *testing.T, tc fixtures.OpcodeCase) (*CPU, *flatBus) {
	t.Helper()
	bus := newFlatBus()
	for addrStr, v := range tc.RAM {
		addr, err := parseFixtureAddr(addrStr)
		if err != nil {
			t.Fatalf("%s: bad RAM address %q: %v", tc.Name, addrStr, err)
		}
		bus.mem[addr] = v
	}
	c := &CPU{bus: bus}
	r := Registers{
		C:   uint16(tc.Initial["a"]),
		X:   uint16(tc.Initial["x"]),
		Y:   uint16(tc.Initial["y"]),
		S:   uint16(tc.Initial["s"]),
		D:   uint16(tc.Initial["d"]),
		PC:  uint16(tc.Initial["pc"]),
		PBR: uint8(tc.Initial["pbr"]),
		DBR: uint8(tc.Initial["dbr"]),
		P:   uint8(tc.Initial["p"]),
		E:   tc.Initial["e"] != 0,
	}
	c.SetState(r)
	return c, bus
}

// parseFixtureAddr parses a fixture RAM key (a plain hex address, "bb:oooo"
// bank:offset pairs are flattened by stripping the colon) into a flat
// 24-bit offset.
func parseFixtureAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.ReplaceAll(s, ":", ""), 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// TestCPUOpcodeFixtures runs every property-based vector in
// testdata/cpu_opcodes.json.zst (when present) and checks the resulting
// register state and RAM contents against the fixture's expected final
// state after exactly one Step.
func TestCPUOpcodeFixtures(t *testing.T) {
	if _, err := os.Stat(cpuOpcodeFixtures); os.IsNotExist(err) {
		t.Skip("opcode fixture file not found, skipping property-based CPU test")
	}
	path, err := filepath.Abs(cpuOpcodeFixtures)
	if err != nil {
		t.Fatal(err)
	}
	cases, err := fixtures.Load(path)
	if err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			c, bus := applyOpcodeInitial(t, tc)
			cycles, _ := c.Step()

			r := c.Registers()
			checkReg := func(name string, got uint64, key string) {
				if want, ok := tc.Final[key]; ok && got != want {
					t.Errorf("%s: %s = %#x, want %#x", tc.Name, name, got, want)
				}
			}
			checkReg("A", uint64(r.C), "a")
			checkReg("X", uint64(r.X), "x")
			checkReg("Y", uint64(r.Y), "y")
			checkReg("S", uint64(r.S), "s")
			checkReg("D", uint64(r.D), "d")
			checkReg("PC", uint64(r.PC), "pc")
			checkReg("P", uint64(r.P), "p")

			for addrStr, want := range tc.FinalRAM {
				addr, err := parseFixtureAddr(addrStr)
				if err != nil {
					continue
				}
				if got := bus.mem[addr&0xFFFFFF]; got != want {
					t.Errorf("%s: RAM[%s] = %#x, want %#x", tc.Name, addrStr, got, want)
				}
			}
			if tc.Cycles != 0 && cycles != tc.Cycles {
				t.Errorf("%s: cycles = %d, want %d", tc.Name, cycles, tc.Cycles)
			}
		})
	}
}
