/*
NAME
  frame.go

DESCRIPTION
  frame.go parses a CELP subframe's 152-bit field layout: 10 LPC/LSF
  coefficients of varying width, 4 pitch gains, 4 vector gains, 4 pitch
  indices, 4 vector indices, 4 error-correction nibbles, and a 3-bit
  always-zero pad.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package celp

// fieldWidths lists, in order, the bit width of each field of one
// 152-bit (19-byte) CELP subframe. The trailing 3 bits are a fixed zero pad and are not
// exposed as a field.
var fieldWidths = [...]int{
	3, 4, 4, 4, 4, 4, 4, 4, 3, 3, // 10 LSF coefficients, 37 bits.
	5, 5, 5, 5, // pitch gain, 4 subframes.
	5, 5, 5, 5, // vector gain, 4 subframes.
	7, 7, 7, 7, // pitch index, 4 subframes.
	8, 8, 8, 8, // vector index, 4 subframes.
	3, 3, 3, 3, // error-correction nibble, 4 subframes.
}

// Fields is one subframe's fields, decoded to plain integers. Values are
// raw: no LSF-to-filter-coefficient conversion, no gain scaling.
type Fields struct {
	LSF             [10]int
	PitchGain       [4]int
	VectorGain      [4]int
	PitchIndex      [4]int
	VectorIndex     [4]int
	ErrorCorrection [4]int
}

// DecodeFields reads frame's bits LSB-first (matching the bit order bit
// recovery already packs Packet bytes in) into the fixed field layout.
func DecodeFields(frame [19]byte) Fields {
	vals := make([]int, len(fieldWidths))
	bitPos := 0
	for i, w := range fieldWidths {
		vals[i] = readBits(frame[:], bitPos, w)
		bitPos += w
	}

	var f Fields
	copy(f.LSF[:], vals[0:10])
	copy(f.PitchGain[:], vals[10:14])
	copy(f.VectorGain[:], vals[14:18])
	copy(f.PitchIndex[:], vals[18:22])
	copy(f.VectorIndex[:], vals[22:26])
	copy(f.ErrorCorrection[:], vals[26:30])
	return f
}

// readBits reads width bits of data starting at bit offset bitPos,
// LSB-first within each byte, and assembles them so the first bit read
// becomes the result's least-significant bit.
func readBits(data []byte, bitPos, width int) int {
	v := 0
	for i := 0; i < width; i++ {
		pos := bitPos + i
		byteIdx := pos / 8
		bitIdx := uint(pos % 8)
		if byteIdx >= len(data) {
			break
		}
		bit := (data[byteIdx] >> bitIdx) & 1
		v |= int(bit) << uint(i)
	}
	return v
}
