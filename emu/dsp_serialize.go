package emu

import "encoding/binary"

func (d *DSP) Serialize(dst []byte) []byte {
	dst = append(dst, d.regs[:]...)
	dst = append(dst, d.addr)
	dst = binary.LittleEndian.AppendUint16(dst, d.noiseLFSR)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(d.noiseAccum))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(d.echoPos))
	for _, h := range d.firHistL {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(h))
	}
	for _, h := range d.firHistR {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(h))
	}
	for i := range d.voices {
		v := &d.voices[i]
		var b [24]byte
		b[0] = uint8(v.stage)
		binary.LittleEndian.PutUint32(b[1:], uint32(v.envLevel))
		binary.LittleEndian.PutUint32(b[5:], v.pitchCtr)
		binary.LittleEndian.PutUint16(b[9:], v.brrAddr)
		b[11] = v.brrHeader
		b[12] = uint8(v.brrPos)
		binary.LittleEndian.PutUint32(b[13:], uint32(v.prev1))
		binary.LittleEndian.PutUint32(b[17:], uint32(v.prev2))
		b[21] = boolByte(v.keyOn)
		b[22] = boolByte(v.endFlag)
		dst = append(dst, b[:]...)
	}
	return dst
}

func (d *DSP) Deserialize(src []byte) []byte {
	copy(d.regs[:], src[:len(d.regs)])
	src = src[len(d.regs):]
	d.addr = src[0]
	src = src[1:]
	d.noiseLFSR = binary.LittleEndian.Uint16(src)
	src = src[2:]
	d.noiseAccum = int(binary.LittleEndian.Uint32(src))
	src = src[4:]
	d.echoPos = int(binary.LittleEndian.Uint32(src))
	src = src[4:]
	for i := range d.firHistL {
		d.firHistL[i] = int32(binary.LittleEndian.Uint32(src))
		src = src[4:]
	}
	for i := range d.firHistR {
		d.firHistR[i] = int32(binary.LittleEndian.Uint32(src))
		src = src[4:]
	}
	for i := range d.voices {
		v := &d.voices[i]
		b := src[:24]
		v.stage = envelopeStage(b[0])
		v.envLevel = int32(binary.LittleEndian.Uint32(b[1:]))
		v.pitchCtr = binary.LittleEndian.Uint32(b[5:])
		v.brrAddr = binary.LittleEndian.Uint16(b[9:])
		v.brrHeader = b[11]
		v.brrPos = int(b[12])
		v.prev1 = int32(binary.LittleEndian.Uint32(b[13:]))
		v.prev2 = int32(binary.LittleEndian.Uint32(b[17:]))
		v.keyOn = b[21] != 0
		v.endFlag = b[22] != 0
		src = src[24:]
	}
	return src
}
