/*
NAME
  line_test.go

DESCRIPTION
  line_test.go exercises VBILine normalization, CRI lock rejection, and
  the Slice bit-recovery path against a synthetic line.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package line

import (
	"testing"

	"github.com/bbjunkie/vhs-teletext/teletext/packet"
	"github.com/bbjunkie/vhs-teletext/vbi/config"
	"github.com/bbjunkie/vhs-teletext/vbi/hamming"
)

func testConfig() config.Config {
	return config.Config{
		Name:           "test",
		LineLength:     3800,
		SampleRate:     100,
		LineTrim:       0,
		LineStartRange: [2]int{0, 100},
		BitRate:        10, // 10 samples per bit.
		CRIThreshold:   0.5,
	}
}

// encodeLine lays 45 framed bytes out as a square-wave sample vector
// starting at csStart, 10 samples per bit, high=200 for a 1 bit, low=56
// for a 0 bit, LSB-first per byte, with a constant quiet baseline of 128
// everywhere else.
func encodeLine(t *testing.T, total, csStart int, bytes [45]byte) []byte {
	t.Helper()
	raw := make([]byte, total)
	for i := range raw {
		raw[i] = 128
	}
	const spb = 10
	for gi := 0; gi < 45*8; gi++ {
		byteIdx := gi / 8
		bitIdx := gi % 8
		bitVal := (bytes[byteIdx] >> uint(bitIdx)) & 1
		level := byte(56)
		if bitVal == 1 {
			level = 200
		}
		start := csStart + gi*spb
		for s := 0; s < spb && start+s < total; s++ {
			raw[start+s] = level
		}
	}
	return raw
}

func encodeMRAG(magazine, row int) (byte, byte) {
	wireMag := byte(magazine % 8)
	lo := hamming.Encode8(wireMag | byte(row&0x01)<<3)
	hi := hamming.Encode8(byte(row >> 1))
	return lo, hi
}

func TestLineRejectsFlatSignal(t *testing.T) {
	cfg := testConfig()
	raw := make([]byte, cfg.LineLength)
	for i := range raw {
		raw[i] = 0x80
	}
	l := New(cfg, raw, 1, 0)
	if l.IsTeletext() {
		t.Fatal("IsTeletext() = true for a flat signal, want false")
	}
	if _, ok := l.Slice(nil, nil); ok {
		t.Error("Slice() on a flat signal returned a packet, want none")
	}
	if _, ok := l.Deconvolve(nil, nil); ok {
		t.Error("Deconvolve() on a flat signal returned a packet, want none")
	}
}

func TestLineSliceRecoversPacket(t *testing.T) {
	var frame [45]byte
	frame[0], frame[1] = 0x55, 0x55
	frame[2] = 0xe4
	frame[3], frame[4] = encodeMRAG(1, 0)
	frame[5] = hamming.Encode8(0x02)
	frame[6] = hamming.Encode8(0x00)
	for i := 7; i < 45; i++ {
		frame[i] = hamming.EncodeParity(' ')
	}

	cfg := testConfig()
	raw := encodeLine(t, cfg.LineLength, 70, frame)

	l := New(cfg, raw, 7, 0)
	if !l.IsTeletext() {
		t.Fatal("IsTeletext() = false, want true")
	}

	p, ok := l.Slice([]int{1}, []int{0})
	if !ok {
		t.Fatal("Slice() returned no packet, want one")
	}
	m := p.MRAG()
	if m.Magazine != 1 || m.Row != 0 {
		t.Errorf("MRAG() = {%d,%d}, want {1,0}", m.Magazine, m.Row)
	}
	var want [packet.Size]byte
	copy(want[:], frame[3:])
	if p.ToBytes() != want {
		t.Errorf("ToBytes() = %v, want %v", p.ToBytes(), want)
	}
}

// fixedBitsAccel replays precomputed bit decisions.
type fixedBitsAccel struct {
	bits [config.BitsPerPacket]byte
}

func (a *fixedBitsAccel) Deconvolve(samples []float64, centres []int, spb float64) ([config.BitsPerPacket]byte, bool) {
	return a.bits, true
}

func TestDeconvolveUsesInstalledAccelerator(t *testing.T) {
	var frame [45]byte
	frame[0], frame[1] = 0x55, 0x55
	frame[2] = 0xe4
	frame[3], frame[4] = encodeMRAG(2, 3)
	for i := 5; i < 45; i++ {
		frame[i] = hamming.EncodeParity(' ')
	}

	var a fixedBitsAccel
	for gi := range a.bits {
		a.bits[gi] = (frame[gi/8] >> uint(gi%8)) & 1
	}
	SetAccelerator(&a)
	defer SetAccelerator(nil)

	cfg := testConfig()
	raw := encodeLine(t, cfg.LineLength, 70, frame)
	l := New(cfg, raw, 0, 0)

	p, ok := l.Deconvolve(nil, nil)
	if !ok {
		t.Fatal("Deconvolve() with accelerator returned no packet, want one")
	}
	m := p.MRAG()
	if m.Magazine != 2 || m.Row != 3 {
		t.Errorf("MRAG() = {%d,%d}, want {2,3}", m.Magazine, m.Row)
	}
}

func TestLineSliceMagazineFilterRejects(t *testing.T) {
	var frame [45]byte
	frame[0], frame[1] = 0x55, 0x55
	frame[2] = 0xe4
	frame[3], frame[4] = encodeMRAG(1, 0)
	for i := 5; i < 45; i++ {
		frame[i] = hamming.EncodeParity(' ')
	}

	cfg := testConfig()
	raw := encodeLine(t, cfg.LineLength, 70, frame)
	l := New(cfg, raw, 7, 0)

	if _, ok := l.Slice([]int{2}, nil); ok {
		t.Error("Slice() with non-matching magazine filter returned a packet, want none")
	}
}
