package emu

import "testing"

func TestDSPRegisterWriteReadRoundTrip(t *testing.T) {
	d := NewDSP()
	d.Write(0x00, 0x7F) // voice 0 left volume
	if d.Read(0x00) != 0x7F {
		t.Fatalf("DSP register round trip failed")
	}
}

func TestKeyOnStartsAttackStage(t *testing.T) {
	var ram [0x10000]byte
	d := NewDSP()
	d.AttachRAM(&ram)
	d.Write(0x5D, 0x00) // DIR at page 0
	ram[0] = 0x08       // sample 0 dir entry -> BRR start at $0800
	ram[1] = 0x00
	d.Write(0x04, 0x00) // voice 0 SRCN = 0
	d.Write(0x4C, 0x01) // KON voice 0
	if d.voices[0].stage != envAttack {
		t.Fatalf("expected voice 0 to enter the attack stage on key-on")
	}
}

func TestKeyOffStartsReleaseStage(t *testing.T) {
	d := NewDSP()
	d.voices[0].stage = envSustain
	d.Write(0x5C, 0x01) // KOFF voice 0
	if d.voices[0].stage != envRelease {
		t.Fatalf("expected KOFF to move voice 0 into the release stage")
	}
}

func TestMixSampleMutedWhenFlagSet(t *testing.T) {
	d := NewDSP()
	d.Write(0x6C, 0x40) // FLG mute
	l, r := d.mixSample()
	if l != 0 || r != 0 {
		t.Fatalf("expected muted mix to be silent, got (%d, %d)", l, r)
	}
}

func TestNoiseLFSRAdvancesAtConfiguredRate(t *testing.T) {
	d := NewDSP()
	d.Write(0x6C, 0x1F) // FLG: fastest noise rate, no mute/reset
	before := d.noiseLFSR
	for i := 0; i < 3; i++ {
		d.advanceNoise(d.regs[0x6C])
	}
	if d.noiseLFSR == before {
		t.Fatalf("expected noise LFSR to advance at the fastest configured rate")
	}
}

func TestNoiseLFSRHoldsWhenRateZero(t *testing.T) {
	d := NewDSP()
	d.Write(0x6C, 0x00) // FLG rate 0 disables the noise clock
	before := d.noiseLFSR
	for i := 0; i < 100; i++ {
		d.advanceNoise(d.regs[0x6C])
	}
	if d.noiseLFSR != before {
		t.Fatalf("expected noise LFSR to hold steady at rate 0")
	}
}

func TestEchoDisabledByDefaultLeavesMixUnchanged(t *testing.T) {
	var ram [0x10000]byte
	d := NewDSP()
	d.AttachRAM(&ram)
	// EON=0, EDL=0: tickEcho should be a no-op contribution to the mix.
	firL, firR := d.tickEcho(0, 0)
	if firL != 0 || firR != 0 {
		t.Fatalf("expected silent echo buffer to produce a zero FIR output, got (%d, %d)", firL, firR)
	}
}

func TestEchoWriteDisableLeavesBufferUntouched(t *testing.T) {
	var ram [0x10000]byte
	d := NewDSP()
	d.AttachRAM(&ram)
	d.Write(0x7D, 0x01) // EDL=1, 512-sample buffer
	d.Write(0x6C, 0x20) // echo write disable
	ram[0] = 0x34
	ram[1] = 0x12
	d.tickEcho(100, 100)
	if ram[0] != 0x34 || ram[1] != 0x12 {
		t.Fatalf("expected echo-write-disable to leave the buffer untouched")
	}
}

func TestBRRDecodeProducesFiniteSamples(t *testing.T) {
	var ram [0x10000]byte
	d := NewDSP()
	d.AttachRAM(&ram)
	ram[0x0800] = 0x30 // shift=3, filter=0, no end/loop
	for i := 0; i < 8; i++ {
		ram[0x0801+i] = 0x7F
	}
	d.voices[0].brrAddr = 0x0800
	d.decodeBRRBlock(0)
	for _, s := range d.voices[0].brrBuf {
		if s < -32768 || s > 32767 {
			t.Fatalf("decoded BRR sample out of int16 range: %d", s)
		}
	}
}
