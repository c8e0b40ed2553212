package emu

import "encoding/binary"

// cpuStateSize is the fixed size of a serialized CPU block (§4.7).
const cpuStateSize = 2 + 2 + 2 + 2 + 2 + 2 + 1 + 1 + 1 + 1 + 8 + 1 + 1 + 1

// Serialize appends the CPU's state to dst in a fixed-size block, mirroring
// the component-block convention used by the rest of the save-state format.
func (c *CPU) Serialize(dst []byte) []byte {
	var buf [cpuStateSize]byte
	binary.LittleEndian.PutUint16(buf[0:], c.reg.C)
	binary.LittleEndian.PutUint16(buf[2:], c.reg.X)
	binary.LittleEndian.PutUint16(buf[4:], c.reg.Y)
	binary.LittleEndian.PutUint16(buf[6:], c.reg.S)
	binary.LittleEndian.PutUint16(buf[8:], c.reg.D)
	binary.LittleEndian.PutUint16(buf[10:], c.reg.PC)
	buf[12] = c.reg.PBR
	buf[13] = c.reg.DBR
	buf[14] = c.reg.P
	buf[15] = boolByte(c.reg.E)
	binary.LittleEndian.PutUint64(buf[16:], c.cycles)
	buf[24] = uint8(c.state)
	buf[25] = boolByte(c.nmiPending)
	buf[26] = boolByte(c.irqLine)
	return append(dst, buf[:]...)
}

// Deserialize reads a CPU state block from src and returns the remaining
// bytes.
func (c *CPU) Deserialize(src []byte) []byte {
	c.reg.C = binary.LittleEndian.Uint16(src[0:])
	c.reg.X = binary.LittleEndian.Uint16(src[2:])
	c.reg.Y = binary.LittleEndian.Uint16(src[4:])
	c.reg.S = binary.LittleEndian.Uint16(src[6:])
	c.reg.D = binary.LittleEndian.Uint16(src[8:])
	c.reg.PC = binary.LittleEndian.Uint16(src[10:])
	c.reg.PBR = src[12]
	c.reg.DBR = src[13]
	c.reg.P = src[14]
	c.reg.E = src[15] != 0
	c.cycles = binary.LittleEndian.Uint64(src[16:])
	c.state = RunState(src[24])
	c.nmiPending = src[25] != 0
	c.irqLine = src[26] != 0
	return src[cpuStateSize:]
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
