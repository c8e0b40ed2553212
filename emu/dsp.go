package emu

// envelopeStage identifies where a voice sits in the ADSR/Gain state
// machine (§4.3).
type envelopeStage int

const (
	envAttack envelopeStage = iota
	envDecay
	envSustain
	envRelease
	envOff
)

// voice holds one of the S-DSP's 8 channels' playback and envelope state.
// The register file itself (vol/pitch/srcn/adsr/gain bytes) lives in
// DSP.regs; this struct is the derived, per-sample playback state.
type voice struct {
	stage     envelopeStage
	envLevel  int32 // 0-0x7FF
	pitchCtr  uint32
	brrAddr   uint16 // current block start in APU RAM
	brrHeader uint8
	brrPos    int // sample index within the current 16-sample block
	brrBuf    [16]int16
	prev1     int32
	prev2     int32
	keyOn     bool
	endFlag   bool
}

// DSP is the S-DSP: a 128-byte register file, 8 voices, a noise LFSR, and
// an 8-tap FIR echo filter, clocked once per output sample from the APU
// (§4.3 expansion).
type DSP struct {
	regs [128]uint8
	addr uint8

	voices [8]voice

	noiseLFSR  uint16
	noiseAccum int
	lastVoice  int32 // previous voice's post-envelope sample, for PMON pitch modulation

	sampleAccum int
	out         []int16 // interleaved L/R ring buffer, drained by System

	echoPos  int
	firHistL [8]int32 // ring of recent raw echo-buffer reads, oldest overwritten first
	firHistR [8]int32

	apuRAM *[0x10000]byte
}

const dspSamplePeriod = 32 // APU cycles per output sample, ~1.024MHz/32kHz

// dspNoiseRatePeriod is the 32-entry table (§3) the FLG register's low 5
// bits index to pick the noise LFSR's advance rate, in output samples per
// step. Matches the same period shape the ADSR/Gain rate table uses.
var dspNoiseRatePeriod = [32]int{
	0, 2048, 1536, 1280, 1024, 768, 640, 512,
	384, 320, 256, 192, 160, 128, 96, 80,
	64, 48, 40, 32, 24, 20, 16, 12,
	10, 8, 6, 5, 4, 3, 2, 1,
}

// NewDSP creates a DSP with its noise generator seeded to the hardware's
// documented post-reset value.
func NewDSP() *DSP {
	return &DSP{noiseLFSR: 0x4000}
}

// AttachRAM lets the DSP read BRR sample data directly out of the APU's
// address space, mirroring how the real S-DSP shares the SPC700's bus.
func (d *DSP) AttachRAM(ram *[0x10000]byte) { d.apuRAM = ram }

func (d *DSP) Read(addr uint8) uint8  { return d.regs[addr&0x7F] }
func (d *DSP) Write(addr, v uint8) {
	a := addr & 0x7F
	d.regs[a] = v
	if a == 0x4C { // KON
		for i := 0; i < 8; i++ {
			if v&(1<<i) != 0 {
				d.keyOnVoice(i)
			}
		}
	}
	if a == 0x5C { // KOFF
		for i := 0; i < 8; i++ {
			if v&(1<<i) != 0 {
				d.voices[i].stage = envRelease
			}
		}
	}
}

func (d *DSP) voiceReg(v, offset int) uint8 { return d.regs[v*0x10+offset] }

func (d *DSP) keyOnVoice(i int) {
	v := &d.voices[i]
	srcn := d.voiceReg(i, 0x04)
	dirBase := uint16(d.regs[0x5D]) << 8
	entry := dirBase + uint16(srcn)*4
	if d.apuRAM != nil {
		lo := d.apuRAM[entry]
		hi := d.apuRAM[entry+1]
		v.brrAddr = uint16(lo) | uint16(hi)<<8
	}
	v.brrPos = 0
	v.pitchCtr = 0
	v.prev1, v.prev2 = 0, 0
	v.stage = envAttack
	v.envLevel = 0
	v.keyOn = true
	v.endFlag = false
	d.decodeBRRBlock(i)
}

// decodeBRRBlock decodes the 9-byte BRR block at the voice's current
// brrAddr into 16 PCM samples, per the standard 4-bit-nibble/shift/filter
// BRR algorithm (§4.3).
func (d *DSP) decodeBRRBlock(i int) {
	v := &d.voices[i]
	if d.apuRAM == nil {
		return
	}
	header := d.apuRAM[v.brrAddr]
	v.brrHeader = header
	shift := header >> 4
	filter := (header >> 2) & 0x03

	for n := 0; n < 16; n++ {
		byteIdx := v.brrAddr + 1 + uint16(n/2)
		raw := d.apuRAM[byteIdx]
		var nibble int8
		if n%2 == 0 {
			nibble = int8(raw&0xF0) >> 4
		} else {
			nibble = int8(raw<<4) >> 4
		}
		sample := int32(nibble)
		if shift <= 12 {
			sample <<= shift
		} else {
			sample = (sample >> 11) << 11
		}

		switch filter {
		case 1:
			sample += (v.prev1 * 15) >> 4
		case 2:
			sample += (v.prev1*61)>>5 - (v.prev2*15)>>4
		case 3:
			sample += (v.prev1*115)>>6 - (v.prev2*13)>>4
		}
		sample = clamp16(sample)
		v.brrBuf[n] = int16(sample)
		v.prev2 = v.prev1
		v.prev1 = sample
	}
}

func clamp16(v int32) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}

// Tick advances the DSP by cpuCycles SPC700-domain cycles, producing one
// output sample each time the accumulated budget crosses the sample
// period (§4.3/§5 cross-domain bridge, mirroring the APU's own pattern).
func (d *DSP) Tick(cpuCycles int) {
	d.sampleAccum += cpuCycles
	for d.sampleAccum >= dspSamplePeriod {
		d.sampleAccum -= dspSamplePeriod
		l, r := d.mixSample()
		d.out = append(d.out, l, r)
	}
}

func (d *DSP) mixSample() (int16, int16) {
	flg := d.regs[0x6C]
	d.advanceNoise(flg)
	if flg&0x40 != 0 { // mute
		d.tickEcho(0, 0)
		return 0, 0
	}

	var mixL, mixR, echoInL, echoInR int32
	nonMask := d.regs[0x3D]
	pmonMask := d.regs[0x2D]
	eonMask := d.regs[0x4D]
	d.lastVoice = 0

	for i := range d.voices {
		v := &d.voices[i]
		if v.stage == envOff {
			continue
		}
		d.advanceEnvelope(i)
		sample := d.nextVoiceSample(i, pmonMask&(1<<i) != 0 && i > 0)
		if nonMask&(1<<i) != 0 {
			sample = int32(int16(d.noiseLFSR))
		}
		scaled := (sample * v.envLevel) >> 11
		d.lastVoice = scaled

		volL := int8(d.voiceReg(i, 0x00))
		volR := int8(d.voiceReg(i, 0x01))
		vL := (scaled * int32(volL)) >> 7
		vR := (scaled * int32(volR)) >> 7
		mixL += vL
		mixR += vR
		if eonMask&(1<<i) != 0 {
			echoInL += vL
			echoInR += vR
		}
		d.regs[i*0x10+0x08] = uint8(v.envLevel >> 4) // ENVX
		d.regs[i*0x10+0x09] = uint8(scaled >> 8)     // OUTX
	}

	firL, firR := d.tickEcho(echoInL, echoInR)

	evolL := int8(d.regs[0x2C])
	evolR := int8(d.regs[0x3C])
	mixL += (firL * int32(evolL)) >> 7
	mixR += (firR * int32(evolR)) >> 7

	mvolL := int8(d.regs[0x0C])
	mvolR := int8(d.regs[0x1C])
	mixL = (mixL * int32(mvolL)) >> 7
	mixR = (mixR * int32(mvolR)) >> 7
	return int16(clamp16(mixL)), int16(clamp16(mixR))
}

// advanceNoise steps the white-noise LFSR at the rate FLG's low 5 bits
// select from the 32-entry period table (§3/§4.3).
func (d *DSP) advanceNoise(flg uint8) {
	period := dspNoiseRatePeriod[flg&0x1F]
	if period == 0 {
		return
	}
	d.noiseAccum++
	if d.noiseAccum < period {
		return
	}
	d.noiseAccum = 0
	bit := (d.noiseLFSR ^ (d.noiseLFSR >> 1)) & 1
	d.noiseLFSR = (d.noiseLFSR >> 1) | (bit << 14)
}

// echoBufSamples returns the echo ring's length in stereo sample pairs,
// derived from EDL ($7D): each of the 16 possible delay units is 2KB of
// APU RAM holding 512 L/R sample pairs (4 bytes each).
func (d *DSP) echoBufSamples() int {
	edl := d.regs[0x7D] & 0x0F
	if edl == 0 {
		return 1
	}
	return int(edl) * 512
}

// tickEcho reads the echo buffer slot at the current position, runs the
// 8-tap FIR filter over the rolling history, mixes voices routed through
// EON into a new echo sample, and writes it back unless write-disable
// (FLG bit 5) is set (§4.3's "after all voices" echo stage).
func (d *DSP) tickEcho(echoInL, echoInR int32) (int32, int32) {
	if d.apuRAM == nil {
		return 0, 0
	}
	esa := uint32(d.regs[0x6D]) << 8
	bufLen := d.echoBufSamples()
	slot := esa + uint32(d.echoPos)*4

	rawL := int32(int16(uint16(d.apuRAM[slot]) | uint16(d.apuRAM[slot+1])<<8))
	rawR := int32(int16(uint16(d.apuRAM[slot+2]) | uint16(d.apuRAM[slot+3])<<8))
	copy(d.firHistL[:7], d.firHistL[1:])
	copy(d.firHistR[:7], d.firHistR[1:])
	d.firHistL[7] = rawL
	d.firHistR[7] = rawR

	var firL, firR int32
	for k := 0; k < 8; k++ {
		c := int32(int8(d.regs[0x0F+k*0x10]))
		firL += c * d.firHistL[k]
		firR += c * d.firHistR[k]
	}
	firL >>= 7
	firR >>= 7

	efb := int32(int8(d.regs[0x0D]))
	newL := clamp16(echoInL + ((firL * efb) >> 7))
	newR := clamp16(echoInR + ((firR * efb) >> 7))

	if d.regs[0x6C]&0x20 == 0 { // echo-write-disable clear
		d.apuRAM[slot] = uint8(newL)
		d.apuRAM[slot+1] = uint8(newL >> 8)
		d.apuRAM[slot+2] = uint8(newR)
		d.apuRAM[slot+3] = uint8(newR >> 8)
	}
	d.echoPos++
	if d.echoPos >= bufLen {
		d.echoPos = 0
	}
	return firL, firR
}

// nextVoiceSample advances voice i's pitch counter and BRR position by one
// output sample, returning the interpolated current sample. When
// pitchMod is set the pitch scaler is modulated by the previous voice's
// post-envelope output, per PMON (§4.3 step 2).
func (d *DSP) nextVoiceSample(i int, pitchMod bool) int32 {
	v := &d.voices[i]
	pitch := int32(uint32(d.voiceReg(i, 0x02)) | uint32(d.voiceReg(i, 0x03))<<8&0x3F00)
	if pitchMod {
		pitch += (pitch * d.lastVoice) >> 15
	}
	if pitch < 0 {
		pitch = 0
	}
	if pitch > 0x3FFF {
		pitch = 0x3FFF
	}

	sample := d.interpolate(v)
	v.pitchCtr += uint32(pitch)
	for v.pitchCtr >= 0x1000 {
		v.pitchCtr -= 0x1000
		v.brrPos++
		if v.brrPos >= 16 {
			v.brrPos = 0
			end := v.brrHeader&0x01 != 0
			loop := v.brrHeader&0x02 != 0
			if end {
				v.endFlag = true
				d.regs[0x7C] |= 1 << i
				if !loop {
					v.stage = envOff
					return sample
				}
			}
			v.brrAddr += 9
			d.decodeBRRBlock(i)
		}
	}
	return sample
}

// interpolate produces a sample from the voice's BRR buffer at its current
// fractional pitch position by linear interpolation between two points, the
// current sample and the next one; no 4-point Gaussian table is applied.
// The BRR buffer only holds the current 16-sample block, so at the block's
// last sample the next point is clamped to that same sample.
func (d *DSP) interpolate(v *voice) int32 {
	frac := int32(v.pitchCtr&0xFFF) << 2 // 0..0x3FFC, ~14-bit fractional position
	p0 := int32(v.brrBuf[v.brrPos])
	p1 := p0
	if v.brrPos+1 < 16 {
		p1 = int32(v.brrBuf[v.brrPos+1])
	}
	return p0 + (((p1 - p0) * frac) >> 14)
}

// advanceEnvelope steps one voice's ADSR/Gain state machine by one sample
// period, honoring bit 7 of ADSR1 to pick ADSR vs. direct-Gain mode.
func (d *DSP) advanceEnvelope(i int) {
	v := &d.voices[i]
	adsr1 := d.voiceReg(i, 0x05)
	adsr2 := d.voiceReg(i, 0x06)
	gain := d.voiceReg(i, 0x07)

	if adsr1&0x80 == 0 {
		// Direct gain mode: envLevel tracks GAIN directly.
		v.envLevel = int32(gain&0x7F) << 4
		return
	}

	switch v.stage {
	case envAttack:
		rate := adsr1 & 0x0F
		step := int32(32)
		if rate == 15 {
			step = 1024
		}
		v.envLevel += step
		if v.envLevel >= 0x7E0 {
			v.envLevel = 0x7FF
			v.stage = envDecay
		}
	case envDecay:
		rate := (adsr1 >> 4) & 0x07
		v.envLevel -= (v.envLevel >> 8) + int32(rate) + 1
		sustain := int32(adsr2>>5) * 0x100 / 8
		if v.envLevel <= sustain {
			v.stage = envSustain
		}
	case envSustain:
		rate := adsr2 & 0x1F
		if rate != 0 {
			v.envLevel -= (v.envLevel >> 8) + 1
		}
	case envRelease:
		v.envLevel -= 8
		if v.envLevel <= 0 {
			v.envLevel = 0
			v.stage = envOff
		}
	}
	if v.envLevel < 0 {
		v.envLevel = 0
	}
	if v.envLevel > 0x7FF {
		v.envLevel = 0x7FF
	}
}

// DrainSamples returns and clears the accumulated interleaved L/R sample
// buffer, for the System's audio-buffer API.
func (d *DSP) DrainSamples() []int16 {
	out := d.out
	d.out = nil
	return out
}
