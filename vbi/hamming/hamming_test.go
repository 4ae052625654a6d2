/*
NAME
  hamming_test.go

DESCRIPTION
  hamming_test.go exercises the round-trip and error-correction invariants
  of the Hamming 8/4, Hamming 24/18 and parity codecs.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package hamming

import "testing"

func TestDecode8RoundTrip(t *testing.T) {
	for n := byte(0); n < 16; n++ {
		c := Encode8(n)
		got, err := Decode8(c)
		if got != n || err != NoError {
			t.Errorf("nibble %#x: decode8(encode8(n)) = (%#x, %v), want (%#x, ok)", n, got, err, n)
		}
	}
}

func TestDecode8SingleBitFlip(t *testing.T) {
	for n := byte(0); n < 16; n++ {
		c := Encode8(n)
		for bitPos := 0; bitPos < 8; bitPos++ {
			flipped := c ^ (1 << uint(bitPos))
			got, err := Decode8(flipped)
			if got != n {
				t.Errorf("nibble %#x bit %d flipped: value = %#x, want %#x", n, bitPos, got, n)
			}
			if err != OneError {
				t.Errorf("nibble %#x bit %d flipped: err = %v, want OneError", n, bitPos, err)
			}
		}
	}
}

func TestDecode8DoubleBitFlip(t *testing.T) {
	for n := byte(0); n < 16; n++ {
		c := Encode8(n)
		for i := 0; i < 8; i++ {
			for j := i + 1; j < 8; j++ {
				flipped := c ^ (1 << uint(i)) ^ (1 << uint(j))
				_, err := Decode8(flipped)
				if err != Uncorrectable {
					t.Errorf("nibble %#x bits %d,%d flipped: err = %v, want Uncorrectable", n, i, j, err)
				}
			}
		}
	}
}

func TestDecode24RoundTrip(t *testing.T) {
	for _, n := range []uint32{0, 1, 0x3ffff, 0x2aaaa, 0x15555} {
		c := Encode24(n)
		got, err := Decode24(c)
		if got != n || err != NoError {
			t.Errorf("Decode24(Encode24(%#x)) = (%#x, %v), want (%#x, ok)", n, got, err, n)
		}
	}
}

func TestDecode24SingleBitFlip(t *testing.T) {
	n := uint32(0x1a2b3)
	c := Encode24(n)
	for bitPos := 0; bitPos < 24; bitPos++ {
		flipped := c ^ (1 << uint(bitPos))
		got, err := Decode24(flipped)
		if got != n || err != OneError {
			t.Errorf("bit %d flipped: (%#x, %v), want (%#x, OneError)", bitPos, got, err, n)
		}
	}
}

func TestDecodeParity(t *testing.T) {
	tests := []struct {
		in   byte
		want ErrorCount
	}{
		{EncodeParity(0x20), NoError},
		{EncodeParity(0x41), NoError},
		{0x00, Uncorrectable}, // even parity, byte of all zero bits.
	}
	for _, tt := range tests {
		_, err := DecodeParity(tt.in)
		if err != tt.want {
			t.Errorf("DecodeParity(%#x) err = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestEncodeParityRoundTrip(t *testing.T) {
	for n := byte(0); n < 128; n++ {
		c := EncodeParity(n)
		got, err := DecodeParity(c)
		if got != n || err != NoError {
			t.Errorf("DecodeParity(EncodeParity(%#x)) = (%#x, %v), want (%#x, ok)", n, got, err, n)
		}
	}
}
