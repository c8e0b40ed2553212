// Package fixtures loads the property-based opcode test vectors used by
// the CPU and SPC700 test suites. Each fixture file is a zstd-compressed
// JSON array so the full per-opcode vector set can live in the repository
// without bloating checkouts, decompressed on demand at test time.
package fixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// OpcodeCase is one property-based test vector: an initial register/
// memory state, the opcode under test, and the expected resulting state
// and cycle count.
type OpcodeCase struct {
	Name    string            `json:"name"`
	Opcode  uint8             `json:"opcode"`
	Initial map[string]uint64 `json:"initial"`
	Final   map[string]uint64 `json:"final"`
	Cycles  int               `json:"cycles"`
	RAM     map[string]uint8  `json:"ram,omitempty"`
	FinalRAM map[string]uint8 `json:"finalRam,omitempty"`
}

// Load decompresses and decodes a .json.zst fixture file into its
// OpcodeCase vectors.
func Load(path string) ([]OpcodeCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("fixtures: open zstd stream: %w", err)
	}
	defer dec.Close()

	var cases []OpcodeCase
	if err := json.NewDecoder(dec).Decode(&cases); err != nil {
		return nil, fmt.Errorf("fixtures: decode %s: %w", path, err)
	}
	return cases, nil
}
