package emu

import (
	"testing"

	"github.com/spf13/afero"
)

func makeLoROMImage(sramLog uint8) []byte {
	rom := make([]byte, 0x8000)
	hdr := 0x7FC0
	title := "TEST GAME"
	copy(rom[hdr:], title)
	rom[hdr+0x15] = 0x20 // LoROM, slow
	rom[hdr+0x16] = 0x02
	rom[hdr+0x17] = 0x08
	rom[hdr+0x18] = sramLog
	checksum := uint16(0x1234)
	rom[hdr+0x1C] = uint8(^checksum)
	rom[hdr+0x1D] = uint8(^checksum >> 8)
	rom[hdr+0x1E] = uint8(checksum)
	rom[hdr+0x1F] = uint8(checksum >> 8)
	rom[0x7FFC] = 0x00
	rom[0x7FFD] = 0x80
	return rom
}

func TestLoadDetectsLoROM(t *testing.T) {
	fs := afero.NewMemMapFs()
	rom := makeLoROMImage(0)
	if err := afero.WriteFile(fs, "game.sfc", rom, 0o644); err != nil {
		t.Fatal(err)
	}
	cart, err := Load(fs, "game.sfc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cart.Mapping() != MappingLoROM {
		t.Fatalf("Mapping() = %v, want LoROM", cart.Mapping())
	}
}

func TestLoadStripsSMCHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	rom := makeLoROMImage(0)
	withHeader := append(make([]byte, smcHeaderSize), rom...)
	if err := afero.WriteFile(fs, "game.smc", withHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	cart, err := Load(fs, "game.smc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cart.Header().Title == "" {
		t.Fatalf("expected a parsed title after stripping the copier header")
	}
}

func TestSRAMPersistsAcrossGetSet(t *testing.T) {
	cart, err := LoadBytes(makeLoROMImage(1))
	if err != nil {
		t.Fatal(err)
	}
	if !cart.HasSRAM() {
		t.Fatalf("expected SRAM for a non-zero SRAM-size header byte")
	}
	cart.Write(0x00, 0x6000, 0xAB)
	if got := cart.Read(0x00, 0x6000); got != 0xAB {
		t.Fatalf("Read after Write = %#x, want 0xAB", got)
	}
	saved := cart.GetSRAM()

	cart2, _ := LoadBytes(makeLoROMImage(1))
	cart2.SetSRAM(saved)
	if got := cart2.Read(0x00, 0x6000); got != 0xAB {
		t.Fatalf("SRAM did not round-trip through GetSRAM/SetSRAM")
	}
}

func TestROMWritesAreDiscarded(t *testing.T) {
	cart, err := LoadBytes(makeLoROMImage(0))
	if err != nil {
		t.Fatal(err)
	}
	before := cart.Read(0x00, 0x8000)
	cart.Write(0x00, 0x8000, before^0xFF)
	if got := cart.Read(0x00, 0x8000); got != before {
		t.Fatalf("ROM write was not discarded: got %#x, want %#x", got, before)
	}
}

func TestTruncatedROMRejected(t *testing.T) {
	_, err := LoadBytes(make([]byte, 0x100))
	if err == nil {
		t.Fatalf("expected an error for a ROM smaller than one bank")
	}
}

func TestFastROMDetectedFromMappingByte(t *testing.T) {
	rom := makeLoROMImage(0)
	rom[0x7FC0+0x15] = 0x30 // LoROM + FastROM
	cart, err := LoadBytes(rom)
	if err != nil {
		t.Fatal(err)
	}
	if !cart.FastROM() {
		t.Fatalf("expected FastROM() true for mapping byte 0x30")
	}
}
