package emu

// opcodeTable is the 65C816's 256-entry dispatch table, indexed by opcode
// byte. Each entry names the mnemonic handler and the addressing mode it
// resolves its operand through.
var opcodeTable = [256]opcodeEntry{
	0x00: {opBRK, modeImplied},
	0x01: {opORA, modeDPIndX},
	0x02: {opCOP, modeImplied},
	0x03: {opORA, modeStackRel},
	0x04: {opTSB, modeDP},
	0x05: {opORA, modeDP},
	0x06: {opASL, modeDP},
	0x07: {opORA, modeDPIndLong},
	0x08: {opPHP, modeImplied},
	0x09: {opORA, modeImmediate},
	0x0A: {opASL, modeAccumulator},
	0x0B: {opPHD, modeImplied},
	0x0C: {opTSB, modeAbs},
	0x0D: {opORA, modeAbs},
	0x0E: {opASL, modeAbs},
	0x0F: {opORA, modeAbsLong},

	0x10: {makeBranch(flagN, false), modeRelative},
	0x11: {opORA, modeDPIndY},
	0x12: {opORA, modeDPInd},
	0x13: {opORA, modeStackRelIndY},
	0x14: {opTRB, modeDP},
	0x15: {opORA, modeDPX},
	0x16: {opASL, modeDPX},
	0x17: {opORA, modeDPIndLongY},
	0x18: {makeFlagOp(flagC, false), modeImplied},
	0x19: {opORA, modeAbsY},
	0x1A: {opINC, modeAccumulator},
	0x1B: {opTCS, modeImplied},
	0x1C: {opTRB, modeAbs},
	0x1D: {opORA, modeAbsX},
	0x1E: {opASL, modeAbsX},
	0x1F: {opORA, modeAbsLongX},

	0x20: {opJSR, modeAbs},
	0x21: {opAND, modeDPIndX},
	0x22: {opJSL, modeAbsLong},
	0x23: {opAND, modeStackRel},
	0x24: {opBIT, modeDP},
	0x25: {opAND, modeDP},
	0x26: {opROL, modeDP},
	0x27: {opAND, modeDPIndLong},
	0x28: {opPLP, modeImplied},
	0x29: {opAND, modeImmediate},
	0x2A: {opROL, modeAccumulator},
	0x2B: {opPLD, modeImplied},
	0x2C: {opBIT, modeAbs},
	0x2D: {opAND, modeAbs},
	0x2E: {opROL, modeAbs},
	0x2F: {opAND, modeAbsLong},

	0x30: {makeBranch(flagN, true), modeRelative},
	0x31: {opAND, modeDPIndY},
	0x32: {opAND, modeDPInd},
	0x33: {opAND, modeStackRelIndY},
	0x34: {opBIT, modeDPX},
	0x35: {opAND, modeDPX},
	0x36: {opROL, modeDPX},
	0x37: {opAND, modeDPIndLongY},
	0x38: {makeFlagOp(flagC, true), modeImplied},
	0x39: {opAND, modeAbsY},
	0x3A: {opDEC, modeAccumulator},
	0x3B: {opTSC, modeImplied},
	0x3C: {opBIT, modeAbsX},
	0x3D: {opAND, modeAbsX},
	0x3E: {opROL, modeAbsX},
	0x3F: {opAND, modeAbsLongX},

	0x40: {opRTI, modeImplied},
	0x41: {opEOR, modeDPIndX},
	0x42: {opWDM, modeImplied},
	0x43: {opEOR, modeStackRel},
	0x44: {opMVP, modeBlockMove},
	0x45: {opEOR, modeDP},
	0x46: {opLSR, modeDP},
	0x47: {opEOR, modeDPIndLong},
	0x48: {opPHA, modeImplied},
	0x49: {opEOR, modeImmediate},
	0x4A: {opLSR, modeAccumulator},
	0x4B: {opPHK, modeImplied},
	0x4C: {opJMP, modeAbs},
	0x4D: {opEOR, modeAbs},
	0x4E: {opLSR, modeAbs},
	0x4F: {opEOR, modeAbsLong},

	0x50: {makeBranch(flagV, false), modeRelative},
	0x51: {opEOR, modeDPIndY},
	0x52: {opEOR, modeDPInd},
	0x53: {opEOR, modeStackRelIndY},
	0x54: {opMVN, modeBlockMove},
	0x55: {opEOR, modeDPX},
	0x56: {opLSR, modeDPX},
	0x57: {opEOR, modeDPIndLongY},
	0x58: {makeFlagOp(flagI, false), modeImplied},
	0x59: {opEOR, modeAbsY},
	0x5A: {opPHY, modeImplied},
	0x5B: {opTCD, modeImplied},
	0x5C: {opJMPLong, modeAbsLong},
	0x5D: {opEOR, modeAbsX},
	0x5E: {opLSR, modeAbsX},
	0x5F: {opEOR, modeAbsLongX},

	0x60: {opRTS, modeImplied},
	0x61: {opADC, modeDPIndX},
	0x62: {opPER, modeRelativeLong},
	0x63: {opADC, modeStackRel},
	0x64: {opSTZ, modeDP},
	0x65: {opADC, modeDP},
	0x66: {opROR, modeDP},
	0x67: {opADC, modeDPIndLong},
	0x68: {opPLA, modeImplied},
	0x69: {opADC, modeImmediate},
	0x6A: {opROR, modeAccumulator},
	0x6B: {opRTL, modeImplied},
	0x6C: {opJMP, modeAbsInd},
	0x6D: {opADC, modeAbs},
	0x6E: {opROR, modeAbs},
	0x6F: {opADC, modeAbsLong},

	0x70: {makeBranch(flagV, true), modeRelative},
	0x71: {opADC, modeDPIndY},
	0x72: {opADC, modeDPInd},
	0x73: {opADC, modeStackRelIndY},
	0x74: {opSTZ, modeDPX},
	0x75: {opADC, modeDPX},
	0x76: {opROR, modeDPX},
	0x77: {opADC, modeDPIndLongY},
	0x78: {makeFlagOp(flagI, true), modeImplied},
	0x79: {opADC, modeAbsY},
	0x7A: {opPLY, modeImplied},
	0x7B: {opTDC, modeImplied},
	0x7C: {opJMP, modeAbsIndX},
	0x7D: {opADC, modeAbsX},
	0x7E: {opROR, modeAbsX},
	0x7F: {opADC, modeAbsLongX},

	0x80: {opBRA, modeRelative},
	0x81: {opSTA, modeDPIndX},
	0x82: {opBRL, modeRelativeLong},
	0x83: {opSTA, modeStackRel},
	0x84: {opSTY, modeDP},
	0x85: {opSTA, modeDP},
	0x86: {opSTX, modeDP},
	0x87: {opSTA, modeDPIndLong},
	0x88: {opDEY, modeImplied},
	0x89: {opBIT, modeImmediate},
	0x8A: {opTXA, modeImplied},
	0x8B: {opPHB, modeImplied},
	0x8C: {opSTY, modeAbs},
	0x8D: {opSTA, modeAbs},
	0x8E: {opSTX, modeAbs},
	0x8F: {opSTA, modeAbsLong},

	0x90: {makeBranch(flagC, false), modeRelative},
	0x91: {opSTA, modeDPIndY},
	0x92: {opSTA, modeDPInd},
	0x93: {opSTA, modeStackRelIndY},
	0x94: {opSTY, modeDPX},
	0x95: {opSTA, modeDPX},
	0x96: {opSTX, modeDPY},
	0x97: {opSTA, modeDPIndLongY},
	0x98: {opTYA, modeImplied},
	0x99: {opSTA, modeAbsY},
	0x9A: {opTXS, modeImplied},
	0x9B: {opTXY, modeImplied},
	0x9C: {opSTZ, modeAbs},
	0x9D: {opSTA, modeAbsX},
	0x9E: {opSTZ, modeAbsX},
	0x9F: {opSTA, modeAbsLongX},

	0xA0: {opLDY, modeImmediate},
	0xA1: {opLDA, modeDPIndX},
	0xA2: {opLDX, modeImmediate},
	0xA3: {opLDA, modeStackRel},
	0xA4: {opLDY, modeDP},
	0xA5: {opLDA, modeDP},
	0xA6: {opLDX, modeDP},
	0xA7: {opLDA, modeDPIndLong},
	0xA8: {opTAY, modeImplied},
	0xA9: {opLDA, modeImmediate},
	0xAA: {opTAX, modeImplied},
	0xAB: {opPLB, modeImplied},
	0xAC: {opLDY, modeAbs},
	0xAD: {opLDA, modeAbs},
	0xAE: {opLDX, modeAbs},
	0xAF: {opLDA, modeAbsLong},

	0xB0: {makeBranch(flagC, true), modeRelative},
	0xB1: {opLDA, modeDPIndY},
	0xB2: {opLDA, modeDPInd},
	0xB3: {opLDA, modeStackRelIndY},
	0xB4: {opLDY, modeDPX},
	0xB5: {opLDA, modeDPX},
	0xB6: {opLDX, modeDPY},
	0xB7: {opLDA, modeDPIndLongY},
	0xB8: {makeFlagOp(flagV, false), modeImplied},
	0xB9: {opLDA, modeAbsY},
	0xBA: {opTSX, modeImplied},
	0xBB: {opTYX, modeImplied},
	0xBC: {opLDY, modeAbsX},
	0xBD: {opLDA, modeAbsX},
	0xBE: {opLDX, modeAbsY},
	0xBF: {opLDA, modeAbsLongX},

	0xC0: {opCPY, modeImmediate},
	0xC1: {opCMP, modeDPIndX},
	0xC2: {opREP, modeImmediate},
	0xC3: {opCMP, modeStackRel},
	0xC4: {opCPY, modeDP},
	0xC5: {opCMP, modeDP},
	0xC6: {opDEC, modeDP},
	0xC7: {opCMP, modeDPIndLong},
	0xC8: {opINY, modeImplied},
	0xC9: {opCMP, modeImmediate},
	0xCA: {opDEX, modeImplied},
	0xCB: {opWAI, modeImplied},
	0xCC: {opCPY, modeAbs},
	0xCD: {opCMP, modeAbs},
	0xCE: {opDEC, modeAbs},
	0xCF: {opCMP, modeAbsLong},

	0xD0: {makeBranch(flagZ, false), modeRelative},
	0xD1: {opCMP, modeDPIndY},
	0xD2: {opCMP, modeDPInd},
	0xD3: {opCMP, modeStackRelIndY},
	0xD4: {opPEI, modeDP},
	0xD5: {opCMP, modeDPX},
	0xD6: {opDEC, modeDPX},
	0xD7: {opCMP, modeDPIndLongY},
	0xD8: {makeFlagOp(flagD, false), modeImplied},
	0xD9: {opCMP, modeAbsY},
	0xDA: {opPHX, modeImplied},
	0xDB: {opSTP, modeImplied},
	0xDC: {opJMPLong, modeAbsIndLong},
	0xDD: {opCMP, modeAbsX},
	0xDE: {opDEC, modeAbsX},
	0xDF: {opCMP, modeAbsLongX},

	0xE0: {opCPX, modeImmediate},
	0xE1: {opSBC, modeDPIndX},
	0xE2: {opSEP, modeImmediate},
	0xE3: {opSBC, modeStackRel},
	0xE4: {opCPX, modeDP},
	0xE5: {opSBC, modeDP},
	0xE6: {opINC, modeDP},
	0xE7: {opSBC, modeDPIndLong},
	0xE8: {opINX, modeImplied},
	0xE9: {opSBC, modeImmediate},
	0xEA: {opNOP, modeImplied},
	0xEB: {opXBA, modeImplied},
	0xEC: {opCPX, modeAbs},
	0xED: {opSBC, modeAbs},
	0xEE: {opINC, modeAbs},
	0xEF: {opSBC, modeAbsLong},

	0xF0: {makeBranch(flagZ, true), modeRelative},
	0xF1: {opSBC, modeDPIndY},
	0xF2: {opSBC, modeDPInd},
	0xF3: {opSBC, modeStackRelIndY},
	0xF4: {opPEA, modeAbs},
	0xF5: {opSBC, modeDPX},
	0xF6: {opINC, modeDPX},
	0xF7: {opSBC, modeDPIndLongY},
	0xF8: {makeFlagOp(flagD, true), modeImplied},
	0xF9: {opSBC, modeAbsY},
	0xFA: {opPLX, modeImplied},
	0xFB: {opXCE, modeImplied},
	0xFC: {opJSR, modeAbsIndX},
	0xFD: {opSBC, modeAbsX},
	0xFE: {opINC, modeAbsX},
	0xFF: {opSBC, modeAbsLongX},
}
