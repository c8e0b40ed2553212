package emu

import "encoding/binary"

func (a *APU) Serialize(dst []byte) []byte {
	var regs [16]byte
	regs[0] = a.reg.A
	regs[1] = a.reg.X
	regs[2] = a.reg.Y
	regs[3] = a.reg.SP
	binary.LittleEndian.PutUint16(regs[4:], a.reg.PC)
	regs[6] = a.reg.PSW
	regs[7] = boolByte(a.stopped)
	binary.LittleEndian.PutUint32(regs[8:], uint32(a.masterRemainder))
	regs[12] = boolByte(a.romReadable)
	dst = append(dst, regs[:]...)
	dst = append(dst, a.ram[:]...)
	dst = append(dst, a.ports[:]...)
	dst = append(dst, a.apuPorts[:]...)
	for _, t := range a.timers {
		dst = append(dst, t.divisor, t.counter, t.out, uint8(t.accum))
	}
	return a.dsp.Serialize(dst)
}

func (a *APU) Deserialize(src []byte) []byte {
	regs := src[:16]
	a.reg.A = regs[0]
	a.reg.X = regs[1]
	a.reg.Y = regs[2]
	a.reg.SP = regs[3]
	a.reg.PC = binary.LittleEndian.Uint16(regs[4:])
	a.reg.PSW = regs[6]
	a.stopped = regs[7] != 0
	a.masterRemainder = int(binary.LittleEndian.Uint32(regs[8:]))
	a.romReadable = regs[12] != 0
	src = src[16:]
	copy(a.ram[:], src[:len(a.ram)])
	src = src[len(a.ram):]
	copy(a.ports[:], src[:4])
	src = src[4:]
	copy(a.apuPorts[:], src[:4])
	src = src[4:]
	for i := range a.timers {
		a.timers[i].divisor = src[0]
		a.timers[i].counter = src[1]
		a.timers[i].out = src[2]
		a.timers[i].accum = int(src[3])
		src = src[4:]
	}
	return a.dsp.Deserialize(src)
}
