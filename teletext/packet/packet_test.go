/*
NAME
  packet_test.go

DESCRIPTION
  packet_test.go exercises Packet's round-trip and field-decode behaviour.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package packet

import (
	"testing"

	"github.com/bbjunkie/vhs-teletext/vbi/hamming"
)

func encodeMRAG(magazine, row int) (byte, byte) {
	wireMag := byte(magazine % 8) // magazine 8 is sent as 0.
	lo := hamming.Encode8(wireMag | byte(row&0x01)<<3)
	hi := hamming.Encode8(byte(row >> 1))
	return lo, hi
}

func TestToBytesRoundTrip(t *testing.T) {
	var data [Size]byte
	for i := range data {
		data[i] = byte(i * 7)
	}
	p := New(data, 42)
	if p.ToBytes() != data {
		t.Fatalf("ToBytes() = %v, want %v", p.ToBytes(), data)
	}
}

func TestMRAGDecode(t *testing.T) {
	tests := []struct {
		magazine, row int
	}{
		{1, 0}, {8, 31}, {3, 17}, {7, 1},
	}
	for _, tt := range tests {
		var data [Size]byte
		data[0], data[1] = encodeMRAG(tt.magazine, tt.row)
		p := New(data, 0)
		m := p.MRAG()
		if m.Magazine != tt.magazine || m.Row != tt.row {
			t.Errorf("MRAG() = {%d,%d}, want {%d,%d}", m.Magazine, m.Row, tt.magazine, tt.row)
		}
		if m.Errors() != hamming.NoError {
			t.Errorf("MRAG().Errors() = %v, want NoError", m.Errors())
		}
	}
}

func TestHeaderPageAndSubpage(t *testing.T) {
	var data [Size]byte
	data[0], data[1] = encodeMRAG(1, 0)
	data[2] = hamming.Encode8(0x01) // page low nibble
	data[3] = hamming.Encode8(0x02) // page high nibble -> page 0x21
	data[4] = hamming.Encode8(0x01)
	data[5] = hamming.Encode8(0x00)
	data[6] = hamming.Encode8(0x00)
	data[7] = hamming.Encode8(0x00)

	p := New(data, 0)
	h := p.Header()
	if h.Page != 0x21 {
		t.Errorf("Page = %#x, want 0x21", h.Page)
	}
	if h.Subpage != 0x0001 {
		t.Errorf("Subpage = %#x, want 0x0001", h.Subpage)
	}
}

func TestEnhancementDecodesTriplets(t *testing.T) {
	var data [Size]byte
	data[0], data[1] = encodeMRAG(1, 26)
	data[2] = hamming.Encode8(0x0d)
	for i := 0; i < 13; i++ {
		u := hamming.Encode24(uint32(i * 0x1111))
		data[3+i*3] = byte(u)
		data[4+i*3] = byte(u >> 8)
		data[5+i*3] = byte(u >> 16)
	}
	data[Size-1] ^= 0x01 // single-bit hit on the last triplet.

	p := New(data, 0)
	des, desErr, triplets := p.Enhancement()
	if des != 0x0d || desErr != hamming.NoError {
		t.Errorf("designation = (%#x, %v), want (0xd, ok)", des, desErr)
	}
	for i, tr := range triplets[:12] {
		want := uint32(i * 0x1111)
		if tr.Data != want || tr.Err != hamming.NoError {
			t.Errorf("triplet %d = (%#x, %v), want (%#x, ok)", i, tr.Data, tr.Err, want)
		}
	}
	if last := triplets[12]; last.Data != uint32(12*0x1111) || last.Err != hamming.OneError {
		t.Errorf("hit triplet = (%#x, %v), want (%#x, corrected)", last.Data, last.Err, uint32(12*0x1111))
	}
}

func TestDisplayableFillsOnParityFailure(t *testing.T) {
	var data [Size]byte
	data[0], data[1] = encodeMRAG(1, 1)
	data[2] = hamming.EncodeParity('A')
	data[3] = 0x00 // even parity -> fails.
	for i := 4; i < Size; i++ {
		data[i] = hamming.EncodeParity(' ')
	}

	p := New(data, 0)
	disp, err := p.Displayable(DefaultFill)
	if disp[0] != 'A' {
		t.Errorf("disp[0] = %q, want 'A'", disp[0])
	}
	if disp[1] != DefaultFill {
		t.Errorf("disp[1] = %q, want fill %q", disp[1], DefaultFill)
	}
	if err != hamming.Uncorrectable {
		t.Errorf("Displayable err = %v, want Uncorrectable", err)
	}
}
