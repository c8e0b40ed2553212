package emu

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Save-state format: a fixed magic/version header, the cartridge's ROM
// CRC32 (so a mismatched ROM is rejected before trusting the rest of the
// blob), a CRC32 of everything that follows, then each component's own
// fixed-size serialized block in a stable order (§4.7).
const (
	stateMagic      = 0x534E4553 // "SNES"
	stateVersion    = 1
	stateHeaderSize = 4 + 4 + 4 + 4 // magic, version, romCRC, payloadCRC
)

// StateError reports a malformed, truncated, or ROM-mismatched save state.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return fmt.Sprintf("savestate: %s", e.Reason) }

// Serialize produces a complete save state for the system.
func (s *System) Serialize() []byte {
	var payload []byte
	payload = s.CPU.Serialize(payload)
	payload = s.PPU.Serialize(payload)
	payload = s.Bus.Serialize(payload)
	payload = s.APU.Serialize(payload)

	out := make([]byte, stateHeaderSize)
	binary.LittleEndian.PutUint32(out[0:], stateMagic)
	binary.LittleEndian.PutUint32(out[4:], stateVersion)
	binary.LittleEndian.PutUint32(out[8:], s.Cart.ROMCRC32())
	binary.LittleEndian.PutUint32(out[12:], crc32.ChecksumIEEE(payload))
	return append(out, payload...)
}

// Deserialize restores the system's state from a save state produced by
// Serialize, rejecting one that doesn't match the loaded cartridge.
func (s *System) Deserialize(data []byte) error {
	if len(data) < stateHeaderSize {
		return &StateError{Reason: "truncated header"}
	}
	magic := binary.LittleEndian.Uint32(data[0:])
	version := binary.LittleEndian.Uint32(data[4:])
	romCRC := binary.LittleEndian.Uint32(data[8:])
	payloadCRC := binary.LittleEndian.Uint32(data[12:])
	if magic != stateMagic {
		return &StateError{Reason: "bad magic"}
	}
	if version != stateVersion {
		return &StateError{Reason: fmt.Sprintf("unsupported version %d", version)}
	}
	if romCRC != s.Cart.ROMCRC32() {
		return &StateError{Reason: "state does not match loaded cartridge"}
	}
	payload := data[stateHeaderSize:]
	if crc32.ChecksumIEEE(payload) != payloadCRC {
		return &StateError{Reason: "payload checksum mismatch"}
	}

	payload = s.CPU.Deserialize(payload)
	payload = s.PPU.Deserialize(payload)
	payload = s.Bus.Deserialize(payload)
	s.APU.Deserialize(payload)
	return nil
}
