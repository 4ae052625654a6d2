/*
NAME
  hamming.go

DESCRIPTION
  hamming.go provides table-driven Hamming 8/4, Hamming 24/18 and odd-parity
  codecs used to recover magazine/row addressing, page headers and display
  bytes from a noisy Teletext bitstream.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hamming implements the Hamming 8/4, Hamming 24/18 and odd-parity
// byte codecs used throughout the Teletext wire format. Every decode
// operation is table-driven and returns a value alongside an ErrorCount,
// never a bare error: codec layers never fail, they degrade.
package hamming

import "math/bits"

// ErrorCount classifies the result of a codec operation.
type ErrorCount int

const (
	// NoError indicates the input matched a valid codeword exactly.
	NoError ErrorCount = iota
	// OneError indicates a single-bit error was detected and corrected.
	OneError
	// Uncorrectable indicates two or more bit errors were detected; the
	// returned value is a best-effort decode and should not be trusted.
	Uncorrectable
)

// String implements fmt.Stringer.
func (e ErrorCount) String() string {
	switch e {
	case NoError:
		return "ok"
	case OneError:
		return "corrected"
	default:
		return "uncorrectable"
	}
}

// hamm84Entry is one entry of the Hamming 8/4 decode table.
type hamm84Entry struct {
	value byte
	err   ErrorCount
}

var (
	hamm84Table [256]hamm84Entry
	parityTable [256]ErrorCount
)

func init() {
	for c := 0; c < 256; c++ {
		hamm84Table[c] = decode84(byte(c))
		if bits.OnesCount8(byte(c))%2 == 1 {
			parityTable[c] = NoError
		} else {
			parityTable[c] = Uncorrectable
		}
	}
}

// bit returns bit i (1-indexed, LSB-first) of b.
func bit(b byte, i int) byte {
	return (b >> uint(i-1)) & 1
}

// Encode8 encodes the low 4 bits of n (D1..D4) into a Hamming 8/4
// codeword, per ETS 300 706 Annex A: b1=P1 b2=P2 b3=D1 b4=P3 b5=D2 b6=D3
// b7=D4 b8=P4 (overall parity), bit 1 transmitted/stored first (LSB).
func Encode8(n byte) byte {
	d1 := (n >> 0) & 1
	d2 := (n >> 1) & 1
	d3 := (n >> 2) & 1
	d4 := (n >> 3) & 1

	p1 := d1 ^ d2 ^ d4
	p2 := d1 ^ d3 ^ d4
	p3 := d2 ^ d3 ^ d4

	var c byte
	c |= p1 << 0
	c |= p2 << 1
	c |= d1 << 2
	c |= p3 << 3
	c |= d2 << 4
	c |= d3 << 5
	c |= d4 << 6

	p4 := bits.OnesCount8(c) & 1
	c |= byte(p4) << 7
	return c
}

func decode84(c byte) hamm84Entry {
	b1, b2, b3 := bit(c, 1), bit(c, 2), bit(c, 3)
	b4, b5, b6, b7 := bit(c, 4), bit(c, 5), bit(c, 6), bit(c, 7)

	s1 := b1 ^ b3 ^ b5 ^ b7
	s2 := b2 ^ b3 ^ b6 ^ b7
	s3 := b4 ^ b5 ^ b6 ^ b7
	syndrome := s1 | s2<<1 | s3<<2

	overall := ErrorCount(bits.OnesCount8(c) & 1)

	bits7 := [8]byte{0, b1, b2, b3, b4, b5, b6, b7} // 1-indexed

	switch {
	case syndrome == 0 && overall == NoError:
		// Valid codeword.
	case syndrome == 0 && overall != NoError:
		// Parity bit itself was flipped; data untouched.
		return hamm84Entry{value: nibbleOf(bits7), err: OneError}
	case syndrome != 0 && overall != NoError:
		// Single bit error within b1..b7; flip it and extract data.
		bits7[syndrome] ^= 1
		return hamm84Entry{value: nibbleOf(bits7), err: OneError}
	default:
		return hamm84Entry{value: nibbleOf(bits7), err: Uncorrectable}
	}

	return hamm84Entry{value: nibbleOf(bits7), err: NoError}
}

func nibbleOf(b [8]byte) byte {
	return b[3] | b[5]<<1 | b[6]<<2 | b[7]<<3
}

// Decode8 decodes a Hamming 8/4 codeword, returning the recovered nibble
// (low 4 bits) and an error count.
func Decode8(c byte) (byte, ErrorCount) {
	e := hamm84Table[c]
	return e.value, e.err
}

// hammingParityPositions are the bit positions (1-indexed) within a 24-bit
// Hamming 24/18 codeword that carry Hamming parity, i.e. the powers of two.
var hammingParityPositions = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true}

// Decode24 decodes a Hamming 24/18 codeword carried in the low 24 bits of
// u, returning the 18 recovered data bits and an error count. Data bits
// are packed LSB-first in position order, skipping parity positions.
func Decode24(u uint32) (uint32, ErrorCount) {
	u &= 0xffffff

	getBit := func(i int) uint32 { return (u >> uint(i-1)) & 1 } // 1..24

	var syndrome int
	for i := 1; i <= 23; i++ {
		if getBit(i) == 1 {
			syndrome ^= i
		}
	}
	overall := bits.OnesCount32(u) & 1

	switch {
	case syndrome == 0 && overall == 0:
		return extract24(u), NoError
	case syndrome == 0 && overall != 0:
		return extract24(u), OneError
	case syndrome != 0 && overall != 0:
		u ^= 1 << uint(syndrome-1)
		return extract24(u), OneError
	default:
		return extract24(u), Uncorrectable
	}
}

// Encode24 encodes the low 18 bits of n into a Hamming 24/18 codeword.
func Encode24(n uint32) uint32 {
	n &= 0x3ffff
	var u uint32
	dataIdx := 0
	for i := 1; i <= 23; i++ {
		if hammingParityPositions[i] {
			continue
		}
		bit := (n >> uint(dataIdx)) & 1
		u |= bit << uint(i-1)
		dataIdx++
	}

	for p := range hammingParityPositions {
		var parity uint32
		for i := 1; i <= 23; i++ {
			if i&p != 0 && i != p {
				parity ^= (u >> uint(i-1)) & 1
			}
		}
		u |= parity << uint(p-1)
	}

	overall := bits.OnesCount32(u) & 1
	u |= uint32(overall) << 23
	return u
}

func extract24(u uint32) uint32 {
	var n uint32
	dataIdx := 0
	for i := 1; i <= 23; i++ {
		if hammingParityPositions[i] {
			continue
		}
		bit := (u >> uint(i-1)) & 1
		n |= bit << uint(dataIdx)
		dataIdx++
	}
	return n
}

// DecodeParity decodes a 7-bit-odd-parity byte, returning the low 7 data
// bits and an error count. Plain parity can detect but never correct a
// single bit error, so a failed check is reported as Uncorrectable.
func DecodeParity(b byte) (byte, ErrorCount) {
	return b & 0x7f, parityTable[b]
}

// EncodeParity sets the parity bit of the low 7 bits of n so the byte has
// odd parity.
func EncodeParity(n byte) byte {
	n &= 0x7f
	if bits.OnesCount8(n)%2 == 0 {
		n |= 0x80
	}
	return n
}
