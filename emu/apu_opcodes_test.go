package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/emsnes/internal/fixtures"
)

// apuOpcodeFixtures points at the property-based SPC700 vector set, same
// zstd-compressed JSON shape as the 65C816 fixtures.
const apuOpcodeFixtures = "testdata/apu_opcodes.json.zst"

func applyAPUOpcodeInitial(tc fixtures.OpcodeCase) *APU {
	a := NewAPU()
	for addrStr, v := range tc.RAM {
		addr, _ := parseFixtureAddr(addrStr)
		a.ram[addr&0xFFFF] = v
	}
	a.reg = SPCRegisters{
		A:   uint8(tc.Initial["a"]),
		X:   uint8(tc.Initial["x"]),
		Y:   uint8(tc.Initial["y"]),
		SP:  uint8(tc.Initial["sp"]),
		PC:  uint16(tc.Initial["pc"]),
		PSW: uint8(tc.Initial["psw"]),
	}
	return a
}

// TestAPUOpcodeFixtures runs every property-based SPC700 vector in
// testdata/apu_opcodes.json.zst (when present) and checks the resulting
// register state and RAM contents after exactly one instruction step.
func TestAPUOpcodeFixtures(t *testing.T) {
	if _, err := os.Stat(apuOpcodeFixtures); os.IsNotExist(err) {
		t.Skip("opcode fixture file not found, skipping property-based APU test")
	}
	path, err := filepath.Abs(apuOpcodeFixtures)
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
			a := applyAPUOpcodeInitial(tc)
			cost := a.step()

			checkReg := func(name string, got uint64, key string) {
				if want, ok := tc.Final[key]; ok && got != want {
					t.Errorf("%s: %s = %#x, want %#x", tc.Name, name, got, want)
				}
			}
			checkReg("A", uint64(a.reg.A), "a")
			checkReg("X", uint64(a.reg.X), "x")
			checkReg("Y", uint64(a.reg.Y), "y")
			checkReg("SP", uint64(a.reg.SP), "sp")
			checkReg("PC", uint64(a.reg.PC), "pc")
			checkReg("PSW", uint64(a.reg.PSW), "psw")

			for addrStr, want := range tc.FinalRAM {
				addr, err := parseFixtureAddr(addrStr)
				if err != nil {
					continue
				}
				if got := a.ram[addr&0xFFFF]; got != want {
					t.Errorf("%s: RAM[%s] = %#x, want %#x", tc.Name, addrStr, got, want)
				}
			}
			if tc.Cycles != 0 && cost != tc.Cycles {
				t.Errorf("%s: cycles = %d, want %d", tc.Name, cost, tc.Cycles)
			}
		})
	}
}

func TestSPCTCALLJumpsThroughFixedVector(t *testing.T) {
	a := NewAPU()
	a.romReadable = false // read the vector from RAM instead of the boot ROM overlay
	a.ram[0xFFDE] = 0x00  // TCALL 0 vector at $FFDE
	a.ram[0xFFDF] = 0x02
	a.reg.PC = 0x0200
	a.ram[0x0200] = 0x01 // TCALL 0
	a.step()
	if a.reg.PC != 0x0200 {
		t.Fatalf("expected TCALL 0 to jump to $0200, got %#x", a.reg.PC)
	}
	if a.reg.SP != 0xEF-2 {
		t.Fatalf("expected TCALL to push a 2-byte return address, SP = %#x", a.reg.SP)
	}
}

func TestSPCSET1CLR1ManipulateDirectPageBit(t *testing.T) {
	a := NewAPU()
	a.reg.PC = 0x0200
	a.ram[0x0200] = 0x02 // SET1 dp,0
	a.ram[0x0201] = 0x10
	a.step()
	if a.ram[0x0010]&0x01 == 0 {
		t.Fatalf("expected SET1 to set bit 0 of $10")
	}
	a.reg.PC = 0x0202
	a.ram[0x0202] = 0x12 // CLR1 dp,0
	a.ram[0x0203] = 0x10
	a.step()
	if a.ram[0x0010]&0x01 != 0 {
		t.Fatalf("expected CLR1 to clear bit 0 of $10")
	}
}

func TestSPCBBSBranchesWhenBitSet(t *testing.T) {
	a := NewAPU()
	a.ram[0x0010] = 0x01
	a.reg.PC = 0x0200
	a.ram[0x0200] = 0x03 // BBS dp,0,rel
	a.ram[0x0201] = 0x10
	a.ram[0x0202] = 0x05
	a.step()
	if a.reg.PC != 0x0208 {
		t.Fatalf("expected BBS to branch since bit 0 of $10 is set, got PC = %#x", a.reg.PC)
	}
}

func TestSPCBBCDoesNotBranchWhenBitSet(t *testing.T) {
	a := NewAPU()
	a.ram[0x0010] = 0x01
	a.reg.PC = 0x0200
	a.ram[0x0200] = 0x13 // BBC dp,0,rel
	a.ram[0x0201] = 0x10
	a.ram[0x0202] = 0x05
	a.step()
	if a.reg.PC != 0x0203 {
		t.Fatalf("expected BBC to fall through since bit 0 of $10 is set, got PC = %#x", a.reg.PC)
	}
}

func TestSPCMOVWLoadSetsYAAndFlags(t *testing.T) {
	a := NewAPU()
	a.ram[0x0010] = 0x00
	a.ram[0x0011] = 0x00
	a.reg.PC = 0x0200
	a.ram[0x0200] = 0xBA // MOVW YA, dp
	a.ram[0x0201] = 0x10
	a.step()
	if a.reg.Y != 0 || a.reg.A != 0 {
		t.Fatalf("expected MOVW to load YA = 0 from a zeroed word")
	}
	if a.reg.PSW&spcFlagZ == 0 {
		t.Fatalf("expected MOVW of a zero word to set the zero flag")
	}
}

func TestSPCORDpDpUsesSourceThenDestByteOrder(t *testing.T) {
	a := NewAPU()
	a.ram[0x0010] = 0x0F // source
	a.ram[0x0020] = 0xF0 // destination
	a.reg.PC = 0x0200
	a.ram[0x0200] = 0x09 // OR dp,dp: src byte then dst byte
	a.ram[0x0201] = 0x10
	a.ram[0x0202] = 0x20
	a.step()
	if a.ram[0x0020] != 0xFF {
		t.Fatalf("expected OR dp,dp to OR the destination byte with the source, got %#x", a.ram[0x0020])
	}
}

func TestSPCDAACorrectsBCDAfterADC(t *testing.T) {
	a := NewAPU()
	a.reg.A = 0x9A
	a.setFlag(spcFlagC, false)
	a.setFlag(spcFlagH, false)
	spcDAA(a, spcImplied)
	if a.reg.A != 0x00 || !a.flag(spcFlagC) {
		t.Fatalf("expected DAA to correct $9A into BCD 00 with carry set, got A=%#x C=%v", a.reg.A, a.flag(spcFlagC))
	}
}

func TestSPCXCNSwapsNibbles(t *testing.T) {
	a := NewAPU()
	a.reg.A = 0x4E
	spcXCN(a, spcImplied)
	if a.reg.A != 0xE4 {
		t.Fatalf("expected XCN to swap nibbles of $4E into $E4, got %#x", a.reg.A)
	}
}
