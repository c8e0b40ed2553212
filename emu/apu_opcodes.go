package emu

// spcAddrMode enumerates the SPC700 addressing forms this core supports —
// a smaller, flatter set than the 65C816's, since the SPC700 has no bank
// register and only one index-width.
type spcAddrMode int

const (
	spcImplied spcAddrMode = iota
	spcImm
	spcDP
	spcDPX
	spcDPY
	spcAbs
	spcAbsX
	spcIndX  // (X)
	spcIndY  // (Y)
	spcIndPX // [dp+X]
	spcIndPY // [dp]+Y
	spcAbsY
	spcRel
)

type spcOperand struct {
	addr uint16
}

func (a *APU) spcResolve(mode spcAddrMode) spcOperand {
	switch mode {
	case spcDP:
		return spcOperand{addr: a.dpBase() + uint16(a.fetch())}
	case spcDPX:
		return spcOperand{addr: a.dpBase() + uint16(a.fetch()+a.reg.X)}
	case spcDPY:
		return spcOperand{addr: a.dpBase() + uint16(a.fetch()+a.reg.Y)}
	case spcAbs:
		return spcOperand{addr: a.fetch16()}
	case spcAbsX:
		return spcOperand{addr: a.fetch16() + uint16(a.reg.X)}
	case spcAbsY:
		return spcOperand{addr: a.fetch16() + uint16(a.reg.Y)}
	case spcIndX:
		return spcOperand{addr: a.dpBase() + uint16(a.reg.X)}
	case spcIndY:
		return spcOperand{addr: a.dpBase() + uint16(a.reg.Y)}
	case spcIndPX:
		dp := a.dpBase() + uint16(a.fetch()+a.reg.X)
		lo := a.read(dp)
		hi := a.read(dp + 1)
		return spcOperand{addr: uint16(lo) | uint16(hi)<<8}
	case spcIndPY:
		dp := a.dpBase() + uint16(a.fetch())
		lo := a.read(dp)
		hi := a.read(dp + 1)
		return spcOperand{addr: (uint16(lo) | uint16(hi)<<8) + uint16(a.reg.Y)}
	}
	return spcOperand{}
}

type spcOpcodeEntry struct {
	exec func(*APU, spcAddrMode) int
	mode spcAddrMode
}

func spcNOP(a *APU, _ spcAddrMode) int { return 2 }

func spcMOVA(a *APU, mode spcAddrMode) int {
	if mode == spcImm {
		a.reg.A = a.fetch()
	} else {
		o := a.spcResolve(mode)
		a.reg.A = a.read(o.addr)
	}
	a.setNZ(a.reg.A)
	return 2
}
func spcMOVX(a *APU, mode spcAddrMode) int {
	if mode == spcImm {
		a.reg.X = a.fetch()
	} else {
		o := a.spcResolve(mode)
		a.reg.X = a.read(o.addr)
	}
	a.setNZ(a.reg.X)
	return 2
}
func spcMOVY(a *APU, mode spcAddrMode) int {
	if mode == spcImm {
		a.reg.Y = a.fetch()
	} else {
		o := a.spcResolve(mode)
		a.reg.Y = a.read(o.addr)
	}
	a.setNZ(a.reg.Y)
	return 2
}
func spcSTA(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	a.write(o.addr, a.reg.A)
	return 3
}
func spcSTX(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	a.write(o.addr, a.reg.X)
	return 3
}
func spcSTY(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	a.write(o.addr, a.reg.Y)
	return 3
}
func spcMOVDPDP(a *APU, _ spcAddrMode) int {
	src := a.dpBase() + uint16(a.fetch())
	dst := a.dpBase() + uint16(a.fetch())
	a.write(dst, a.read(src))
	return 5
}
func spcMOVDPImm(a *APU, _ spcAddrMode) int {
	v := a.fetch()
	dst := a.dpBase() + uint16(a.fetch())
	a.write(dst, v)
	return 5
}

func spcMOVSX(a *APU, _ spcAddrMode) int { a.reg.SP = a.reg.X; return 2 }
func spcMOVXS(a *APU, _ spcAddrMode) int { a.reg.X = a.reg.SP; a.setNZ(a.reg.X); return 2 }
func spcMOVXA(a *APU, _ spcAddrMode) int { a.reg.X = a.reg.A; a.setNZ(a.reg.X); return 2 }
func spcMOVAX(a *APU, _ spcAddrMode) int { a.reg.A = a.reg.X; a.setNZ(a.reg.A); return 2 }
func spcMOVYA(a *APU, _ spcAddrMode) int { a.reg.Y = a.reg.A; a.setNZ(a.reg.Y); return 2 }
func spcMOVAY(a *APU, _ spcAddrMode) int { a.reg.A = a.reg.Y; a.setNZ(a.reg.A); return 2 }

func spcADC(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	carry := uint16(0)
	if a.flag(spcFlagC) {
		carry = 1
	}
	sum := uint16(a.reg.A) + uint16(m) + carry
	a.setFlag(spcFlagH, (a.reg.A&0x0F)+(m&0x0F)+uint8(carry) > 0x0F)
	a.setFlag(spcFlagC, sum > 0xFF)
	a.setFlag(spcFlagV, (a.reg.A^uint8(sum))&(m^uint8(sum))&0x80 != 0)
	a.reg.A = uint8(sum)
	a.setNZ(a.reg.A)
	return 2
}
func spcSBC(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	borrow := int16(0)
	if !a.flag(spcFlagC) {
		borrow = 1
	}
	diff := int16(a.reg.A) - int16(m) - borrow
	a.setFlag(spcFlagH, int16(a.reg.A&0x0F)-int16(m&0x0F)-borrow >= 0)
	a.setFlag(spcFlagC, diff >= 0)
	a.setFlag(spcFlagV, (a.reg.A^m)&(a.reg.A^uint8(diff))&0x80 != 0)
	a.reg.A = uint8(diff)
	a.setNZ(a.reg.A)
	return 2
}
func spcCMP(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	diff := int16(a.reg.A) - int16(m)
	a.setFlag(spcFlagC, a.reg.A >= m)
	a.setNZ(uint8(diff))
	return 2
}
func spcAND(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	a.reg.A &= m
	a.setNZ(a.reg.A)
	return 2
}
func spcOR(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	a.reg.A |= m
	a.setNZ(a.reg.A)
	return 2
}
func spcEOR(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	a.reg.A ^= m
	a.setNZ(a.reg.A)
	return 2
}

func spcINCMem(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr) + 1
	a.write(o.addr, v)
	a.setNZ(v)
	return 4
}
func spcDECMem(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr) - 1
	a.write(o.addr, v)
	a.setNZ(v)
	return 4
}
func spcINCA(a *APU, _ spcAddrMode) int { a.reg.A++; a.setNZ(a.reg.A); return 2 }
func spcDECA(a *APU, _ spcAddrMode) int { a.reg.A--; a.setNZ(a.reg.A); return 2 }
func spcINCX(a *APU, _ spcAddrMode) int { a.reg.X++; a.setNZ(a.reg.X); return 2 }
func spcDECX(a *APU, _ spcAddrMode) int { a.reg.X--; a.setNZ(a.reg.X); return 2 }
func spcINCY(a *APU, _ spcAddrMode) int { a.reg.Y++; a.setNZ(a.reg.Y); return 2 }
func spcDECY(a *APU, _ spcAddrMode) int { a.reg.Y--; a.setNZ(a.reg.Y); return 2 }

func spcASLA(a *APU, _ spcAddrMode) int {
	a.setFlag(spcFlagC, a.reg.A&0x80 != 0)
	a.reg.A <<= 1
	a.setNZ(a.reg.A)
	return 2
}
func spcLSRA(a *APU, _ spcAddrMode) int {
	a.setFlag(spcFlagC, a.reg.A&1 != 0)
	a.reg.A >>= 1
	a.setNZ(a.reg.A)
	return 2
}
func spcROLA(a *APU, _ spcAddrMode) int {
	old := uint8(0)
	if a.flag(spcFlagC) {
		old = 1
	}
	a.setFlag(spcFlagC, a.reg.A&0x80 != 0)
	a.reg.A = (a.reg.A << 1) | old
	a.setNZ(a.reg.A)
	return 2
}
func spcRORA(a *APU, _ spcAddrMode) int {
	old := uint8(0)
	if a.flag(spcFlagC) {
		old = 0x80
	}
	a.setFlag(spcFlagC, a.reg.A&1 != 0)
	a.reg.A = (a.reg.A >> 1) | old
	a.setNZ(a.reg.A)
	return 2
}

func spcMULYA(a *APU, _ spcAddrMode) int {
	result := uint16(a.reg.Y) * uint16(a.reg.A)
	a.reg.A = uint8(result)
	a.reg.Y = uint8(result >> 8)
	a.setNZ(a.reg.Y)
	return 9
}
func spcDIVYA(a *APU, _ spcAddrMode) int {
	ya := uint16(a.reg.Y)<<8 | uint16(a.reg.A)
	if a.reg.X == 0 {
		a.reg.A = 0xFF
		a.reg.Y = uint8(ya)
		return 12
	}
	a.reg.A = uint8(ya / uint16(a.reg.X))
	a.reg.Y = uint8(ya % uint16(a.reg.X))
	a.setNZ(a.reg.A)
	return 12
}

func spcCLRC(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagC, false); return 2 }
func spcSETC(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagC, true); return 2 }
func spcCLRP(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagP, false); return 2 }
func spcSETP(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagP, true); return 2 }
func spcCLRI(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagI, false); return 3 }
func spcSETI(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagI, true); return 3 }
func spcCLRV(a *APU, _ spcAddrMode) int {
	a.setFlag(spcFlagV, false)
	a.setFlag(spcFlagH, false)
	return 2
}
func spcNOTC(a *APU, _ spcAddrMode) int { a.setFlag(spcFlagC, !a.flag(spcFlagC)); return 2 }

func spcPUSHA(a *APU, _ spcAddrMode) int { a.push(a.reg.A); return 4 }
func spcPUSHX(a *APU, _ spcAddrMode) int { a.push(a.reg.X); return 4 }
func spcPUSHY(a *APU, _ spcAddrMode) int { a.push(a.reg.Y); return 4 }
func spcPUSHP(a *APU, _ spcAddrMode) int { a.push(a.reg.PSW); return 4 }
func spcPOPA(a *APU, _ spcAddrMode) int  { a.reg.A = a.pull(); return 4 }
func spcPOPX(a *APU, _ spcAddrMode) int  { a.reg.X = a.pull(); return 4 }
func spcPOPY(a *APU, _ spcAddrMode) int  { a.reg.Y = a.pull(); return 4 }
func spcPOPP(a *APU, _ spcAddrMode) int  { a.reg.PSW = a.pull(); return 4 }

func spcBRA(a *APU, _ spcAddrMode) int {
	disp := int8(a.fetch())
	a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
	return 4
}
func makeSpcBranch(mask uint8, want bool) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		disp := int8(a.fetch())
		if a.flag(mask) == want {
			a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
			return 4
		}
		return 2
	}
}
func spcCBNE(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	disp := int8(a.fetch())
	if a.reg.A != a.read(o.addr) {
		a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
		return 6
	}
	return 4
}
func spcDBNZY(a *APU, _ spcAddrMode) int {
	a.reg.Y--
	disp := int8(a.fetch())
	if a.reg.Y != 0 {
		a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
		return 6
	}
	return 4
}

func spcCALL(a *APU, _ spcAddrMode) int {
	target := a.fetch16()
	a.push(uint8(a.reg.PC >> 8))
	a.push(uint8(a.reg.PC))
	a.reg.PC = target
	return 8
}
func spcRET(a *APU, _ spcAddrMode) int {
	lo := a.pull()
	hi := a.pull()
	a.reg.PC = uint16(lo) | uint16(hi)<<8
	return 5
}
func spcRETI(a *APU, _ spcAddrMode) int {
	a.reg.PSW = a.pull()
	lo := a.pull()
	hi := a.pull()
	a.reg.PC = uint16(lo) | uint16(hi)<<8
	return 6
}
func spcJMPAbs(a *APU, _ spcAddrMode) int { a.reg.PC = a.fetch16(); return 3 }
func spcJMPIndX(a *APU, _ spcAddrMode) int {
	ptr := a.fetch16() + uint16(a.reg.X)
	lo := a.read(ptr)
	hi := a.read(ptr + 1)
	a.reg.PC = uint16(lo) | uint16(hi)<<8
	return 6
}

func spcSLEEP(a *APU, _ spcAddrMode) int { a.stopped = true; return 2 }
func spcSTOP(a *APU, _ spcAddrMode) int  { a.stopped = true; return 2 }

// spcBRK is the SPC700's software interrupt: push PC and PSW, disable
// further interrupts, and jump through the fixed vector at $FFDE.
func spcBRK(a *APU, _ spcAddrMode) int {
	a.push(uint8(a.reg.PC >> 8))
	a.push(uint8(a.reg.PC))
	a.push(a.reg.PSW)
	a.setFlag(spcFlagI, false)
	a.setFlag(spcFlagB, true)
	lo := a.read(0xFFDE)
	hi := a.read(0xFFDF)
	a.reg.PC = uint16(lo) | uint16(hi)<<8
	return 8
}

// makeSpcTCALL returns the handler for one of the 16 TCALL n opcodes,
// which call through a fixed vector table at $FFDE (n=0) down to $FFC0
// (n=15), each vector two bytes, descending as n increases.
func makeSpcTCALL(n uint8) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		vector := uint16(0xFFDE) - uint16(n)*2
		a.push(uint8(a.reg.PC >> 8))
		a.push(uint8(a.reg.PC))
		lo := a.read(vector)
		hi := a.read(vector + 1)
		a.reg.PC = uint16(lo) | uint16(hi)<<8
		return 8
	}
}

// spcBitOperand decodes an absolute "mem.bit" operand: the fetched
// 16-bit word's top 3 bits select the bit, the low 13 select the address
// (§4.3's "three-register direct-page bit-manipulation instructions").
func (a *APU) spcBitOperand() (addr uint16, bit uint8) {
	w := a.fetch16()
	return w & 0x1FFF, uint8(w >> 13)
}

// makeSpcSET1 and makeSpcCLR1 set/clear one bit of a direct-page byte; the
// SPC700 encodes the bit index in the opcode's high nibble rather than in
// the operand, unlike the carry-bit ops below.
func makeSpcSET1(bit uint8) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		addr := a.dpBase() + uint16(a.fetch())
		a.write(addr, a.read(addr)|(1<<bit))
		return 4
	}
}
func makeSpcCLR1(bit uint8) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		addr := a.dpBase() + uint16(a.fetch())
		a.write(addr, a.read(addr)&^(1<<bit))
		return 4
	}
}

func spcTSET1(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr)
	a.setNZ(v & a.reg.A)
	a.write(o.addr, v|a.reg.A)
	return 6
}
func spcTCLR1(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr)
	a.setNZ(v & a.reg.A)
	a.write(o.addr, v&^a.reg.A)
	return 6
}

func spcNOT1(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.write(addr, a.read(addr)^(1<<bit))
	return 5
}
func spcMOV1ToC(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.setFlag(spcFlagC, a.read(addr)&(1<<bit) != 0)
	return 4
}
func spcMOV1FromC(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	v := a.read(addr)
	if a.flag(spcFlagC) {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	a.write(addr, v)
	return 6
}
func spcOR1(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.setFlag(spcFlagC, a.flag(spcFlagC) || a.read(addr)&(1<<bit) != 0)
	return 5
}
func spcOR1Not(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.setFlag(spcFlagC, a.flag(spcFlagC) || a.read(addr)&(1<<bit) == 0)
	return 5
}
func spcAND1(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.setFlag(spcFlagC, a.flag(spcFlagC) && a.read(addr)&(1<<bit) != 0)
	return 4
}
func spcAND1Not(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.setFlag(spcFlagC, a.flag(spcFlagC) && a.read(addr)&(1<<bit) == 0)
	return 4
}
func spcEOR1(a *APU, _ spcAddrMode) int {
	addr, bit := a.spcBitOperand()
	a.setFlag(spcFlagC, a.flag(spcFlagC) != (a.read(addr)&(1<<bit) != 0))
	return 5
}

// spcDAA and spcDAS implement BCD digit correction on A after ADC/SBC,
// adjusting per the same carry/half-carry rules the 65C816 already needs
// for its own decimal mode ADC/SBC.
func spcDAA(a *APU, _ spcAddrMode) int {
	if a.flag(spcFlagC) || a.reg.A > 0x99 {
		a.reg.A += 0x60
		a.setFlag(spcFlagC, true)
	}
	if a.flag(spcFlagH) || a.reg.A&0x0F > 0x09 {
		a.reg.A += 0x06
	}
	a.setNZ(a.reg.A)
	return 3
}
func spcDAS(a *APU, _ spcAddrMode) int {
	if !a.flag(spcFlagC) || a.reg.A > 0x99 {
		a.reg.A -= 0x60
		a.setFlag(spcFlagC, false)
	}
	if !a.flag(spcFlagH) || a.reg.A&0x0F > 0x09 {
		a.reg.A -= 0x06
	}
	a.setNZ(a.reg.A)
	return 3
}

func spcXCN(a *APU, _ spcAddrMode) int {
	a.reg.A = a.reg.A<<4 | a.reg.A>>4
	a.setNZ(a.reg.A)
	return 5
}

func (a *APU) readWordDP(addr uint16) uint16 {
	lo := a.read(addr)
	hi := a.read(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}
func (a *APU) writeWordDP(addr, v uint16) {
	a.write(addr, uint8(v))
	a.write(addr+1, uint8(v>>8))
}
func (a *APU) setNZ16(v uint16) {
	a.setFlag(spcFlagZ, v == 0)
	a.setFlag(spcFlagN, v&0x8000 != 0)
}

func spcMOVWLoad(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	v := a.readWordDP(addr)
	a.reg.Y, a.reg.A = uint8(v>>8), uint8(v)
	a.setNZ16(v)
	return 5
}
func spcMOVWStore(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	a.writeWordDP(addr, uint16(a.reg.Y)<<8|uint16(a.reg.A))
	return 5
}
func spcINCW(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	v := a.readWordDP(addr) + 1
	a.writeWordDP(addr, v)
	a.setNZ16(v)
	return 6
}
func spcDECW(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	v := a.readWordDP(addr) - 1
	a.writeWordDP(addr, v)
	a.setNZ16(v)
	return 6
}
func spcADDW(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	ya := uint16(a.reg.Y)<<8 | uint16(a.reg.A)
	m := a.readWordDP(addr)
	sum := uint32(ya) + uint32(m)
	a.setFlag(spcFlagC, sum > 0xFFFF)
	a.setFlag(spcFlagV, (ya^uint16(sum))&(m^uint16(sum))&0x8000 != 0)
	a.reg.Y, a.reg.A = uint8(sum>>8), uint8(sum)
	a.setNZ16(uint16(sum))
	return 5
}
func spcSUBW(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	ya := uint16(a.reg.Y)<<8 | uint16(a.reg.A)
	m := a.readWordDP(addr)
	diff := int32(ya) - int32(m)
	a.setFlag(spcFlagC, diff >= 0)
	a.setFlag(spcFlagV, (ya^m)&(ya^uint16(diff))&0x8000 != 0)
	a.reg.Y, a.reg.A = uint8(uint16(diff)>>8), uint8(diff)
	a.setNZ16(uint16(diff))
	return 5
}
func spcCMPW(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.fetch())
	ya := uint16(a.reg.Y)<<8 | uint16(a.reg.A)
	m := a.readWordDP(addr)
	diff := int32(ya) - int32(m)
	a.setFlag(spcFlagC, ya >= m)
	a.setNZ16(uint16(diff))
	return 4
}

func spcCMPX(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	diff := int16(a.reg.X) - int16(m)
	a.setFlag(spcFlagC, a.reg.X >= m)
	a.setNZ(uint8(diff))
	return 3
}
func spcCMPY(a *APU, mode spcAddrMode) int {
	var m uint8
	if mode == spcImm {
		m = a.fetch()
	} else {
		o := a.spcResolve(mode)
		m = a.read(o.addr)
	}
	diff := int16(a.reg.Y) - int16(m)
	a.setFlag(spcFlagC, a.reg.Y >= m)
	a.setNZ(uint8(diff))
	return 3
}

func spcASLMem(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr)
	a.setFlag(spcFlagC, v&0x80 != 0)
	v <<= 1
	a.write(o.addr, v)
	a.setNZ(v)
	return 5
}
func spcLSRMem(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr)
	a.setFlag(spcFlagC, v&1 != 0)
	v >>= 1
	a.write(o.addr, v)
	a.setNZ(v)
	return 5
}
func spcROLMem(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr)
	old := uint8(0)
	if a.flag(spcFlagC) {
		old = 1
	}
	a.setFlag(spcFlagC, v&0x80 != 0)
	v = v<<1 | old
	a.write(o.addr, v)
	a.setNZ(v)
	return 5
}
func spcRORMem(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr)
	old := uint8(0)
	if a.flag(spcFlagC) {
		old = 0x80
	}
	a.setFlag(spcFlagC, v&1 != 0)
	v = v>>1 | old
	a.write(o.addr, v)
	a.setNZ(v)
	return 5
}

// aluOp computes a two-operand ALU result and updates whatever flags that
// operation defines; NZ is applied uniformly by the caller.
type aluOp func(a *APU, dst, src uint8) uint8

func aluOr(_ *APU, dst, src uint8) uint8  { return dst | src }
func aluAnd(_ *APU, dst, src uint8) uint8 { return dst & src }
func aluEor(_ *APU, dst, src uint8) uint8 { return dst ^ src }
func aluAdc(a *APU, dst, src uint8) uint8 {
	carry := uint16(0)
	if a.flag(spcFlagC) {
		carry = 1
	}
	sum := uint16(dst) + uint16(src) + carry
	a.setFlag(spcFlagH, (dst&0x0F)+(src&0x0F)+uint8(carry) > 0x0F)
	a.setFlag(spcFlagC, sum > 0xFF)
	a.setFlag(spcFlagV, (dst^uint8(sum))&(src^uint8(sum))&0x80 != 0)
	return uint8(sum)
}
func aluSbc(a *APU, dst, src uint8) uint8 {
	borrow := int16(0)
	if !a.flag(spcFlagC) {
		borrow = 1
	}
	diff := int16(dst) - int16(src) - borrow
	a.setFlag(spcFlagH, int16(dst&0x0F)-int16(src&0x0F)-borrow >= 0)
	a.setFlag(spcFlagC, diff >= 0)
	a.setFlag(spcFlagV, (dst^src)&(dst^uint8(diff))&0x80 != 0)
	return uint8(diff)
}

// spcAluDpDp, spcAluDpImm and spcAluIndXIndY implement the "dp,dp",
// "dp,#imm" and "(X),(Y)" memory-to-memory forms every logic/arithmetic
// opcode has alongside its register-to-memory forms; the source operand is
// always fetched before the destination, matching the reference decode
// order (the destination address is the last byte of the instruction).
func spcAluDpDp(op aluOp) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		src := a.read(a.dpBase() + uint16(a.fetch()))
		dstAddr := a.dpBase() + uint16(a.fetch())
		result := op(a, a.read(dstAddr), src)
		a.setNZ(result)
		a.write(dstAddr, result)
		return 6
	}
}
func spcAluDpImm(op aluOp) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		src := a.fetch()
		dstAddr := a.dpBase() + uint16(a.fetch())
		result := op(a, a.read(dstAddr), src)
		a.setNZ(result)
		a.write(dstAddr, result)
		return 5
	}
}
func spcAluIndXIndY(op aluOp) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		dstAddr := a.dpBase() + uint16(a.reg.X)
		src := a.read(a.dpBase() + uint16(a.reg.Y))
		result := op(a, a.read(dstAddr), src)
		a.setNZ(result)
		a.write(dstAddr, result)
		return 5
	}
}

func spcCmpDpDp(a *APU, _ spcAddrMode) int {
	src := a.read(a.dpBase() + uint16(a.fetch()))
	dst := a.read(a.dpBase() + uint16(a.fetch()))
	a.setFlag(spcFlagC, dst >= src)
	a.setNZ(dst - src)
	return 6
}
func spcCmpDpImm(a *APU, _ spcAddrMode) int {
	src := a.fetch()
	dst := a.read(a.dpBase() + uint16(a.fetch()))
	a.setFlag(spcFlagC, dst >= src)
	a.setNZ(dst - src)
	return 5
}
func spcCmpIndXIndY(a *APU, _ spcAddrMode) int {
	dst := a.read(a.dpBase() + uint16(a.reg.X))
	src := a.read(a.dpBase() + uint16(a.reg.Y))
	a.setFlag(spcFlagC, dst >= src)
	a.setNZ(dst - src)
	return 5
}

// makeSpcBBS and makeSpcBBC are the eight BBS/BBC dp,rel branch-on-bit
// opcodes per nibble; the bit index comes from the opcode's high nibble,
// same convention as SET1/CLR1.
func makeSpcBBS(bit uint8) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		addr := a.dpBase() + uint16(a.fetch())
		v := a.read(addr)
		disp := int8(a.fetch())
		if v&(1<<bit) != 0 {
			a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
			return 7
		}
		return 5
	}
}
func makeSpcBBC(bit uint8) func(*APU, spcAddrMode) int {
	return func(a *APU, _ spcAddrMode) int {
		addr := a.dpBase() + uint16(a.fetch())
		v := a.read(addr)
		disp := int8(a.fetch())
		if v&(1<<bit) == 0 {
			a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
			return 7
		}
		return 5
	}
}

func spcDBNZDp(a *APU, mode spcAddrMode) int {
	o := a.spcResolve(mode)
	v := a.read(o.addr) - 1
	a.write(o.addr, v)
	disp := int8(a.fetch())
	if v != 0 {
		a.reg.PC = uint16(int32(a.reg.PC) + int32(disp))
		return 6
	}
	return 5
}

func spcPCALL(a *APU, _ spcAddrMode) int {
	offset := a.fetch()
	a.push(uint8(a.reg.PC >> 8))
	a.push(uint8(a.reg.PC))
	a.reg.PC = 0xFF00 | uint16(offset)
	return 6
}

func spcSTAIndXInc(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.reg.X)
	a.write(addr, a.reg.A)
	a.reg.X++
	return 4
}
func spcMOVAIndXInc(a *APU, _ spcAddrMode) int {
	addr := a.dpBase() + uint16(a.reg.X)
	a.reg.A = a.read(addr)
	a.reg.X++
	a.setNZ(a.reg.A)
	return 4
}

var spcOpcodeTable = [256]spcOpcodeEntry{
	0x00: {spcNOP, spcImplied},
	0x0F: {spcBRK, spcImplied},
	0x1F: {spcJMPIndX, spcImplied},
	0x2F: {spcBRA, spcRel},
	0x3F: {spcCALL, spcImplied},
	0x5F: {spcJMPAbs, spcImplied},
	0x6F: {spcRET, spcImplied},
	0x7F: {spcRETI, spcImplied},
	0xEF: {spcSLEEP, spcImplied},
	0xFF: {spcSTOP, spcImplied},
	0xDF: {spcDAA, spcImplied},
	0xBE: {spcDAS, spcImplied},
	0x9F: {spcXCN, spcImplied},
	0x4F: {spcPCALL, spcImm},
	0xAF: {spcSTAIndXInc, spcImplied},
	0xBF: {spcMOVAIndXInc, spcImplied},

	// TCALL 0-15: opcodes x1 across every row.
	0x01: {makeSpcTCALL(0), spcImplied},
	0x11: {makeSpcTCALL(1), spcImplied},
	0x21: {makeSpcTCALL(2), spcImplied},
	0x31: {makeSpcTCALL(3), spcImplied},
	0x41: {makeSpcTCALL(4), spcImplied},
	0x51: {makeSpcTCALL(5), spcImplied},
	0x61: {makeSpcTCALL(6), spcImplied},
	0x71: {makeSpcTCALL(7), spcImplied},
	0x81: {makeSpcTCALL(8), spcImplied},
	0x91: {makeSpcTCALL(9), spcImplied},
	0xA1: {makeSpcTCALL(10), spcImplied},
	0xB1: {makeSpcTCALL(11), spcImplied},
	0xC1: {makeSpcTCALL(12), spcImplied},
	0xD1: {makeSpcTCALL(13), spcImplied},
	0xE1: {makeSpcTCALL(14), spcImplied},
	0xF1: {makeSpcTCALL(15), spcImplied},

	// SET1/CLR1 bit0-7: opcodes x2/x12(hex) across every row.
	0x02: {makeSpcSET1(0), spcImplied},
	0x22: {makeSpcSET1(1), spcImplied},
	0x42: {makeSpcSET1(2), spcImplied},
	0x62: {makeSpcSET1(3), spcImplied},
	0x82: {makeSpcSET1(4), spcImplied},
	0xA2: {makeSpcSET1(5), spcImplied},
	0xC2: {makeSpcSET1(6), spcImplied},
	0xE2: {makeSpcSET1(7), spcImplied},
	0x12: {makeSpcCLR1(0), spcImplied},
	0x32: {makeSpcCLR1(1), spcImplied},
	0x52: {makeSpcCLR1(2), spcImplied},
	0x72: {makeSpcCLR1(3), spcImplied},
	0x92: {makeSpcCLR1(4), spcImplied},
	0xB2: {makeSpcCLR1(5), spcImplied},
	0xD2: {makeSpcCLR1(6), spcImplied},
	0xF2: {makeSpcCLR1(7), spcImplied},

	// BBS/BBC bit0-7.
	0x03: {makeSpcBBS(0), spcImplied},
	0x23: {makeSpcBBS(1), spcImplied},
	0x43: {makeSpcBBS(2), spcImplied},
	0x63: {makeSpcBBS(3), spcImplied},
	0x83: {makeSpcBBS(4), spcImplied},
	0xA3: {makeSpcBBS(5), spcImplied},
	0xC3: {makeSpcBBS(6), spcImplied},
	0xE3: {makeSpcBBS(7), spcImplied},
	0x13: {makeSpcBBC(0), spcImplied},
	0x33: {makeSpcBBC(1), spcImplied},
	0x53: {makeSpcBBC(2), spcImplied},
	0x73: {makeSpcBBC(3), spcImplied},
	0x93: {makeSpcBBC(4), spcImplied},
	0xB3: {makeSpcBBC(5), spcImplied},
	0xD3: {makeSpcBBC(6), spcImplied},
	0xF3: {makeSpcBBC(7), spcImplied},

	// Carry-bit ops on an arbitrary mem.bit operand.
	0x0A: {spcOR1, spcImplied},
	0x2A: {spcOR1Not, spcImplied},
	0x4A: {spcAND1, spcImplied},
	0x6A: {spcAND1Not, spcImplied},
	0x8A: {spcEOR1, spcImplied},
	0xAA: {spcMOV1ToC, spcImplied},
	0xCA: {spcMOV1FromC, spcImplied},
	0xEA: {spcNOT1, spcImplied},
	0x0E: {spcTSET1, spcAbs},
	0x4E: {spcTCLR1, spcAbs},

	// Shift/rotate on memory.
	0x0B: {spcASLMem, spcDP},
	0x0C: {spcASLMem, spcAbs},
	0x1B: {spcASLMem, spcDPX},
	0x2B: {spcROLMem, spcDP},
	0x2C: {spcROLMem, spcAbs},
	0x3B: {spcROLMem, spcDPX},
	0x4B: {spcLSRMem, spcDP},
	0x4C: {spcLSRMem, spcAbs},
	0x5B: {spcLSRMem, spcDPX},
	0x6B: {spcRORMem, spcDP},
	0x6C: {spcRORMem, spcAbs},
	0x7B: {spcRORMem, spcDPX},

	// INC/DEC on memory, remaining addressing forms.
	0x8C: {spcDECMem, spcAbs},
	0x9B: {spcDECMem, spcDPX},
	0xAC: {spcINCMem, spcAbs},
	0xBB: {spcINCMem, spcDPX},

	// OR/AND/EOR/CMP/ADC/SBC, remaining addressing forms.
	0x07: {spcOR, spcIndPX},
	0x14: {spcOR, spcDPX},
	0x15: {spcOR, spcAbsX},
	0x16: {spcOR, spcAbsY},
	0x17: {spcOR, spcIndPY},
	0x09: {spcAluDpDp(aluOr), spcImplied},
	0x18: {spcAluDpImm(aluOr), spcImplied},
	0x19: {spcAluIndXIndY(aluOr), spcImplied},

	0x27: {spcAND, spcIndPX},
	0x34: {spcAND, spcDPX},
	0x35: {spcAND, spcAbsX},
	0x36: {spcAND, spcAbsY},
	0x37: {spcAND, spcIndPY},
	0x29: {spcAluDpDp(aluAnd), spcImplied},
	0x38: {spcAluDpImm(aluAnd), spcImplied},
	0x39: {spcAluIndXIndY(aluAnd), spcImplied},

	0x47: {spcEOR, spcIndPX},
	0x54: {spcEOR, spcDPX},
	0x55: {spcEOR, spcAbsX},
	0x56: {spcEOR, spcAbsY},
	0x57: {spcEOR, spcIndPY},
	0x49: {spcAluDpDp(aluEor), spcImplied},
	0x58: {spcAluDpImm(aluEor), spcImplied},
	0x59: {spcAluIndXIndY(aluEor), spcImplied},

	0x67: {spcCMP, spcIndPX},
	0x74: {spcCMP, spcDPX},
	0x75: {spcCMP, spcAbsX},
	0x76: {spcCMP, spcAbsY},
	0x77: {spcCMP, spcIndPY},
	0x69: {spcCmpDpDp, spcImplied},
	0x78: {spcCmpDpImm, spcImplied},
	0x79: {spcCmpIndXIndY, spcImplied},

	0x87: {spcADC, spcIndPX},
	0x94: {spcADC, spcDPX},
	0x95: {spcADC, spcAbsX},
	0x96: {spcADC, spcAbsY},
	0x97: {spcADC, spcIndPY},
	0x89: {spcAluDpDp(aluAdc), spcImplied},
	0x98: {spcAluDpImm(aluAdc), spcImplied},
	0x99: {spcAluIndXIndY(aluAdc), spcImplied},

	0xA7: {spcSBC, spcIndPX},
	0xB4: {spcSBC, spcDPX},
	0xB5: {spcSBC, spcAbsX},
	0xB6: {spcSBC, spcAbsY},
	0xB7: {spcSBC, spcIndPY},
	0xA9: {spcAluDpDp(aluSbc), spcImplied},
	0xB8: {spcAluDpImm(aluSbc), spcImplied},
	0xB9: {spcAluIndXIndY(aluSbc), spcImplied},

	// CMPX/CMPY, remaining addressing forms.
	0x1E: {spcCMPX, spcAbs},
	0x3E: {spcCMPX, spcDP},
	0xC8: {spcCMPX, spcImm},
	0x5E: {spcCMPY, spcAbs},
	0x7E: {spcCMPY, spcDP},
	0xAD: {spcCMPY, spcImm},

	// 16-bit word ops.
	0x1A: {spcDECW, spcImplied},
	0x3A: {spcINCW, spcImplied},
	0x7A: {spcADDW, spcImplied},
	0x9A: {spcSUBW, spcImplied},
	0x5A: {spcCMPW, spcImplied},
	0xBA: {spcMOVWLoad, spcImplied},
	0xDA: {spcMOVWStore, spcImplied},

	// Remaining branch/loop opcodes.
	0x6E: {spcDBNZDp, spcDP},
	0xDE: {spcCBNE, spcDPX},

	0x60: {spcCLRC, spcImplied},
	0x80: {spcSETC, spcImplied},
	0x20: {spcCLRP, spcImplied},
	0x40: {spcSETP, spcImplied},
	0xA0: {spcCLRI, spcImplied},
	0xC0: {spcSETI, spcImplied},
	0xE0: {spcCLRV, spcImplied},
	0xED: {spcNOTC, spcImplied},

	0xE8: {spcMOVA, spcImm},
	0xE4: {spcMOVA, spcDP},
	0xF4: {spcMOVA, spcDPX},
	0xE5: {spcMOVA, spcAbs},
	0xF5: {spcMOVA, spcAbsX},
	0xE6: {spcMOVA, spcIndX},
	0xF6: {spcMOVA, spcAbsY},
	0xE7: {spcMOVA, spcIndPX},
	0xF7: {spcMOVA, spcIndPY},

	0xCD: {spcMOVX, spcImm},
	0xF8: {spcMOVX, spcDP},
	0xF9: {spcMOVX, spcDPY},
	0xE9: {spcMOVX, spcAbs},

	0x8D: {spcMOVY, spcImm},
	0xEB: {spcMOVY, spcDP},
	0xFB: {spcMOVY, spcDPX},
	0xEC: {spcMOVY, spcAbs},

	0xC4: {spcSTA, spcDP},
	0xD4: {spcSTA, spcDPX},
	0xC5: {spcSTA, spcAbs},
	0xD5: {spcSTA, spcAbsX},
	0xC6: {spcSTA, spcIndX},
	0xD6: {spcSTA, spcAbsY},
	0xC7: {spcSTA, spcIndPX},
	0xD7: {spcSTA, spcIndPY},

	0xD8: {spcSTX, spcDP},
	0xD9: {spcSTX, spcDPY},
	0xC9: {spcSTX, spcAbs},

	0xCB: {spcSTY, spcDP},
	0xDB: {spcSTY, spcDPX},
	0xCC: {spcSTY, spcAbs},

	0xFA: {spcMOVDPDP, spcImplied},
	0x8F: {spcMOVDPImm, spcImplied},

	0xBD: {spcMOVSX, spcImplied},
	0x9D: {spcMOVXS, spcImplied},
	0x5D: {spcMOVXA, spcImplied},
	0x7D: {spcMOVAX, spcImplied},
	0xFD: {spcMOVYA, spcImplied},
	0xDD: {spcMOVAY, spcImplied},

	0x88: {spcADC, spcImm},
	0x84: {spcADC, spcDP},
	0x85: {spcADC, spcAbs},
	0x86: {spcADC, spcIndX},

	0xA8: {spcSBC, spcImm},
	0xA4: {spcSBC, spcDP},
	0xA5: {spcSBC, spcAbs},
	0xA6: {spcSBC, spcIndX},

	0x68: {spcCMP, spcImm},
	0x64: {spcCMP, spcDP},
	0x65: {spcCMP, spcAbs},
	0x66: {spcCMP, spcIndX},

	0x28: {spcAND, spcImm},
	0x24: {spcAND, spcDP},
	0x25: {spcAND, spcAbs},
	0x26: {spcAND, spcIndX},

	0x08: {spcOR, spcImm},
	0x04: {spcOR, spcDP},
	0x05: {spcOR, spcAbs},
	0x06: {spcOR, spcIndX},

	0x48: {spcEOR, spcImm},
	0x44: {spcEOR, spcDP},
	0x45: {spcEOR, spcAbs},
	0x46: {spcEOR, spcIndX},

	0xAB: {spcINCMem, spcDP},
	0xBC: {spcINCA, spcImplied},
	0x3D: {spcINCX, spcImplied},
	0xFC: {spcINCY, spcImplied},
	0x8B: {spcDECMem, spcDP},
	0x9C: {spcDECA, spcImplied},
	0x1D: {spcDECX, spcImplied},
	0xDC: {spcDECY, spcImplied},

	0x1C: {spcASLA, spcImplied},
	0x5C: {spcLSRA, spcImplied},
	0x3C: {spcROLA, spcImplied},
	0x7C: {spcRORA, spcImplied},

	0xCF: {spcMULYA, spcImplied},
	0x9E: {spcDIVYA, spcImplied},

	0x2D: {spcPUSHA, spcImplied},
	0x4D: {spcPUSHX, spcImplied},
	0x6D: {spcPUSHY, spcImplied},
	0x0D: {spcPUSHP, spcImplied},
	0xAE: {spcPOPA, spcImplied},
	0xCE: {spcPOPX, spcImplied},
	0xEE: {spcPOPY, spcImplied},
	0x8E: {spcPOPP, spcImplied},

	0xD0: {makeSpcBranch(spcFlagZ, false), spcRel},
	0xF0: {makeSpcBranch(spcFlagZ, true), spcRel},
	0xB0: {makeSpcBranch(spcFlagC, true), spcRel},
	0x90: {makeSpcBranch(spcFlagC, false), spcRel},
	0x70: {makeSpcBranch(spcFlagV, true), spcRel},
	0x50: {makeSpcBranch(spcFlagV, false), spcRel},
	0x30: {makeSpcBranch(spcFlagN, true), spcRel},
	0x10: {makeSpcBranch(spcFlagN, false), spcRel},
	0x2E: {spcCBNE, spcDP},
	0xFE: {spcDBNZY, spcImplied},
}
