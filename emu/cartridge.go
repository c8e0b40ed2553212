package emu

import (
	"fmt"
	"hash/crc32"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/japanese"
)

// MappingMode identifies how a cartridge's 24-bit address space maps onto
// the raw ROM image.
type MappingMode uint8

const (
	MappingLoROM MappingMode = iota
	MappingHiROM
)

func (m MappingMode) String() string {
	if m == MappingHiROM {
		return "HiROM"
	}
	return "LoROM"
}

// CartridgeError reports a malformed header, unsupported mapping, or
// truncated ROM at the loading boundary. No error originates once a
// Cartridge is loaded (§7).
type CartridgeError struct {
	Reason string
}

func (e *CartridgeError) Error() string {
	return fmt.Sprintf("cartridge: %s", e.Reason)
}

// Header holds the parsed fields of the 64-byte SNES ROM header.
type Header struct {
	Title       string
	Mapping     MappingMode
	MappingByte uint8 // raw $15 byte; bit 0x10 is the FastROM flag
	ROMType     uint8
	ROMSizeLog int
	SRAMSizeLog int
	Region     uint8
	Maker      uint16
	Version    uint8
	Complement uint16
	Checksum   uint16
	ResetVectorNative uint16
	ResetVectorEmu    uint16
}

// Cartridge is the immutable ROM plus optional mutable SRAM. It is created
// once by Load and owned by the main bus for the lifetime of the System.
type Cartridge struct {
	rom    []byte
	sram   []byte
	header Header
	romCRC uint32

	sramStart uint32
	sramEnd   uint32
}

const smcHeaderSize = 512

// Load reads path from fs, strips an optional 512-byte SMC/Super Magicom
// header (detected by size%0x8000 == 512), locates the header at both the
// LoROM and HiROM candidate offsets, and keeps whichever scores higher by
// complement-checksum validity.
func Load(fs afero.Fs, path string) (*Cartridge, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &CartridgeError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	return LoadBytes(raw)
}

// LoadBytes parses a raw ROM image already in memory.
func LoadBytes(raw []byte) (*Cartridge, error) {
	rom := raw
	if len(rom)%0x8000 == smcHeaderSize {
		rom = rom[smcHeaderSize:]
	}
	if len(rom) < 0x8000 {
		return nil, &CartridgeError{Reason: "ROM truncated: smaller than one bank"}
	}

	loScore := headerScore(rom, 0x7FC0)
	hiScore := headerScore(rom, 0xFFC0)

	mapping := MappingLoROM
	headerOffset := 0x7FC0
	if hiScore > loScore {
		mapping = MappingHiROM
		headerOffset = 0xFFC0
	}
	if headerOffset+0x40 > len(rom) {
		return nil, &CartridgeError{Reason: "ROM truncated: header out of range"}
	}

	hdr := parseHeader(rom[headerOffset:headerOffset+0x40], mapping)

	c := &Cartridge{
		rom:    rom,
		header: hdr,
		romCRC: crc32.ChecksumIEEE(rom),
	}
	c.initSRAM()
	return c, nil
}

// headerScore returns a higher value when the checksum/complement pair at
// the candidate header offset looks valid (complement is the bitwise
// complement of checksum), per §6's "compute checksums both ways and pick
// the higher score" instruction.
func headerScore(rom []byte, offset int) int {
	if offset+0x40 > len(rom) {
		return -1
	}
	complement := uint16(rom[offset+0x1C]) | uint16(rom[offset+0x1D])<<8
	checksum := uint16(rom[offset+0x1E]) | uint16(rom[offset+0x1F])<<8
	score := 0
	if complement^checksum == 0xFFFF {
		score += 2
	}
	// A plausible mapping-mode byte nudges the score further.
	mapByte := rom[offset+0x15]
	if mapByte == 0x20 || mapByte == 0x21 || mapByte == 0x30 || mapByte == 0x31 {
		score++
	}
	return score
}

func parseHeader(h []byte, mapping MappingMode) Header {
	title := decodeTitle(h[0:21])
	return Header{
		Title:             title,
		Mapping:           mapping,
		MappingByte:       h[0x15],
		ROMType:           h[0x16],
		ROMSizeLog:        int(h[0x17]),
		SRAMSizeLog:       int(h[0x18]),
		Region:            h[0x19],
		Maker:             uint16(h[0x1A]) | uint16(h[0x1B])<<8,
		Version:           h[0x1B],
		Complement:        uint16(h[0x1C]) | uint16(h[0x1D])<<8,
		Checksum:          uint16(h[0x1E]) | uint16(h[0x1F])<<8,
		ResetVectorEmu:    0, // left zero; ResetVector reads the vector from ROM instead
		ResetVectorNative: 0,
	}
}

// decodeTitle best-effort decodes the 21-byte title field as Shift-JIS
// (common for Japanese releases); on decode failure it falls back to the
// raw bytes trimmed of trailing padding, since real title fields are
// frequently plain ASCII padded with spaces or NUL.
func decodeTitle(raw []byte) string {
	decoder := japanese.ShiftJIS.NewDecoder()
	out, err := decoder.Bytes(raw)
	s := string(out)
	if err != nil || !isPrintableTitle(s) {
		s = string(raw)
	}
	i := len(s)
	for i > 0 && (s[i-1] == 0x00 || s[i-1] == ' ') {
		i--
	}
	return s[:i]
}

func isPrintableTitle(s string) bool {
	for _, r := range s {
		if r == 0 {
			continue
		}
		if r < 0x20 || r == 0xFFFD {
			return false
		}
	}
	return true
}

// initSRAM sizes the battery-backed SRAM from the header's log2 size byte
// (0 means no SRAM) and records the SRAM window, $6000-$7FFF for both
// LoROM and HiROM.
func (c *Cartridge) initSRAM() {
	if c.header.SRAMSizeLog == 0 {
		return
	}
	size := 1 << (10 + c.header.SRAMSizeLog) // header unit is 1KiB << log
	c.sram = make([]byte, size)
	if c.header.Mapping == MappingLoROM {
		c.sramStart, c.sramEnd = 0x6000, 0x7FFF
	} else {
		c.sramStart, c.sramEnd = 0x6000, 0x7FFF
	}
}

// loROMOffset computes the flat ROM byte offset for a LoROM 24-bit address,
// per §6: offset = (bank & 0x7F) * 0x8000 + (addr - 0x8000), valid for
// addr in 0x8000-0xFFFF of any bank.
func loROMOffset(bank uint8, addr uint16) int {
	return int(bank&0x7F)*0x8000 + int(addr-0x8000)
}

// hiROMOffset computes the flat ROM byte offset for a HiROM 24-bit address,
// per §6: offset = (bank & 0x3F) * 0x10000 + addr.
func hiROMOffset(bank uint8, addr uint16) int {
	return int(bank&0x3F)*0x10000 + int(addr)
}

// Read returns the byte at a 24-bit cartridge-relative address: bank 0-255,
// offset within the bank. SRAM (if present and addressed) takes priority
// over the ROM mirror beneath it, matching LoROM's $6000-$7FFF overlay.
func (c *Cartridge) Read(bank uint8, addr uint16) byte {
	if c.sram != nil && c.header.Mapping == MappingLoROM && bank&0x7F < 0x40 && uint32(addr) >= c.sramStart && uint32(addr) <= c.sramEnd {
		idx := int(uint32(addr)-c.sramStart) % len(c.sram)
		return c.sram[idx]
	}
	off := c.romOffset(bank, addr)
	if off < 0 || off >= len(c.rom) {
		return 0
	}
	return c.rom[off]
}

// Write stores to SRAM when the address falls in the cartridge's SRAM
// window; ROM writes are silently discarded, per §7.
func (c *Cartridge) Write(bank uint8, addr uint16, v byte) {
	if c.sram != nil && c.header.Mapping == MappingLoROM && bank&0x7F < 0x40 && uint32(addr) >= c.sramStart && uint32(addr) <= c.sramEnd {
		idx := int(uint32(addr)-c.sramStart) % len(c.sram)
		c.sram[idx] = v
	}
}

// romOffset centralizes LoROM/HiROM bank:offset decomposition, per §3's
// invariant that banking arithmetic lives in the cartridge/mapping layer.
func (c *Cartridge) romOffset(bank uint8, addr uint16) int {
	if c.header.Mapping == MappingHiROM {
		return hiROMOffset(bank, addr)
	}
	return loROMOffset(bank, addr)
}

// FastROM reports whether the cartridge declares FastROM timing (mapping
// byte bit 4), relevant to the bus's access-timing classes.
func (c *Cartridge) FastROM() bool {
	return c.header.MappingByte&0x10 != 0
}

func (c *Cartridge) Mapping() MappingMode { return c.header.Mapping }
func (c *Cartridge) Header() Header       { return c.header }
func (c *Cartridge) ROMCRC32() uint32     { return c.romCRC }
func (c *Cartridge) HasSRAM() bool        { return c.sram != nil }

// GetSRAM returns a copy of the SRAM contents.
func (c *Cartridge) GetSRAM() []byte {
	if c.sram == nil {
		return nil
	}
	out := make([]byte, len(c.sram))
	copy(out, c.sram)
	return out
}

// SetSRAM loads SRAM contents (e.g. from a save file).
func (c *Cartridge) SetSRAM(data []byte) {
	if c.sram == nil {
		return
	}
	copy(c.sram, data)
}

// ResetVector reads the reset vector for the given bank (always bank 0)
// directly from ROM at $FFFC-$FFFD (mapped the same way in both LoROM and
// HiROM, since bank 0's $8000-$FFFF window contains the vector table).
func (c *Cartridge) ResetVector() uint16 {
	lo := c.Read(0x00, 0xFFFC)
	hi := c.Read(0x00, 0xFFFD)
	return uint16(lo) | uint16(hi)<<8
}
