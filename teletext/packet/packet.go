/*
NAME
  packet.go

DESCRIPTION
  packet.go provides Packet, a 42-byte framed Teletext payload (the CRI and
  framing code already stripped) with on-demand decode of the MRAG, the
  row-0 page header, and rows 1-25's display bytes. Every decoded field
  carries a hamming.ErrorCount; nothing here ever returns a bare error.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package packet provides the Teletext Packet type: a 42-byte payload with
// on-demand decode of the MRAG, page header and display rows.
package packet

import "github.com/bbjunkie/vhs-teletext/vbi/hamming"

// Size is the length in bytes of a Packet payload, after stripping the
// 3-byte clock-run-in and framing code.
const Size = 42

// DefaultFill is the byte substituted for a display byte that fails
// parity and cannot be corrected.
const DefaultFill = 0x20

// Packet is a 42-byte Teletext payload plus the sequence number of the
// line it was recovered from.
type Packet struct {
	data [Size]byte
	seq  int
}

// New returns a Packet wrapping data, tagged with sequence number seq.
func New(data [Size]byte, seq int) *Packet {
	return &Packet{data: data, seq: seq}
}

// FromSlice returns a Packet built from a 42-byte slice. It panics if
// len(b) != Size, matching the framing guarantee upstream chunkers provide.
func FromSlice(b []byte, seq int) *Packet {
	if len(b) != Size {
		panic("packet: FromSlice requires exactly 42 bytes")
	}
	var data [Size]byte
	copy(data[:], b)
	return &Packet{data: data, seq: seq}
}

// Seq returns the packet's sequence number.
func (p *Packet) Seq() int { return p.seq }

// ToBytes returns the 42-byte payload unchanged.
func (p *Packet) ToBytes() [Size]byte { return p.data }

// MRAG is the magazine/row address group, the first two bytes of a packet.
type MRAG struct {
	Magazine int
	Row      int

	MagazineErr hamming.ErrorCount
	RowErr      hamming.ErrorCount
}

// Errors returns the worse of MagazineErr and RowErr.
func (m MRAG) Errors() hamming.ErrorCount {
	return worst(m.MagazineErr, m.RowErr)
}

// MRAG decodes the magazine and row address from bytes 0-1: the first
// address byte carries the magazine in bits 0-2 and the row's least
// significant bit in bit 3, the second carries row bits 1-4. Magazine 0
// on the wire denotes magazine 8.
func (p *Packet) MRAG() MRAG {
	lo, loErr := hamming.Decode8(p.data[0])
	hi, hiErr := hamming.Decode8(p.data[1])

	mag := int(lo & 0x07)
	if mag == 0 {
		mag = 8
	}
	row := int((lo>>3)&0x01) | int(hi&0x0f)<<1

	return MRAG{Magazine: mag, Row: row, MagazineErr: loErr, RowErr: hiErr}
}

// Header is the decoded row-0 page header.
type Header struct {
	Page    int
	Subpage int
	Control uint16

	PageErr    hamming.ErrorCount
	SubpageErr hamming.ErrorCount
	ControlErr hamming.ErrorCount

	// Station is the 31 remaining odd-parity bytes of the header row,
	// conventionally used for the station name / header text.
	Station    [31]byte
	StationErr hamming.ErrorCount
}

// subpageMask keeps the 13 used bits of the 16-bit subpage field (low
// byte fully used bar the control bit, high byte's top two bits spare).
const subpageMask = 0x3f7f

// Header decodes the row-0 page header: a 2-nibble page number, a
// 4-nibble subpage number, a 3-nibble control field, and the 31
// remaining odd-parity display bytes. Valid only when MRAG().Row == 0.
func (p *Packet) Header() Header {
	var h Header

	pLo, pLoErr := hamming.Decode8(p.data[2])
	pHi, pHiErr := hamming.Decode8(p.data[3])
	h.Page = int(pLo) | int(pHi)<<4
	h.PageErr = worst(pLoErr, pHiErr)

	var sub uint16
	var subErr hamming.ErrorCount
	for i, off := range []int{4, 5, 6, 7} {
		n, err := hamming.Decode8(p.data[off])
		sub |= uint16(n) << uint(4*i)
		subErr = worst(subErr, err)
	}
	h.Subpage = int(sub & subpageMask)
	h.SubpageErr = subErr

	var ctrl uint16
	var ctrlErr hamming.ErrorCount
	for i, off := range []int{8, 9, 10} {
		n, err := hamming.Decode8(p.data[off])
		ctrl |= uint16(n) << uint(4*i)
		ctrlErr = worst(ctrlErr, err)
	}
	h.Control = ctrl
	h.ControlErr = ctrlErr

	var stationErr hamming.ErrorCount
	for i := 0; i < len(h.Station); i++ {
		b, err := hamming.DecodeParity(p.data[11+i])
		if err != hamming.NoError {
			b = DefaultFill
		}
		h.Station[i] = b
		stationErr = worst(stationErr, err)
	}
	h.StationErr = stationErr

	return h
}

// Displayable decodes the 40 odd-parity display bytes of rows 1-25. Any
// byte that fails parity is replaced with fill.
func (p *Packet) Displayable(fill byte) ([40]byte, hamming.ErrorCount) {
	var out [40]byte
	var worstErr hamming.ErrorCount
	for i := range out {
		b, err := hamming.DecodeParity(p.data[2+i])
		if err != hamming.NoError {
			b = fill
			worstErr = worst(worstErr, err)
		}
		out[i] = b
	}
	return out, worstErr
}

// Triplet is one Hamming 24/18 coded group from a row 26-31 extension
// packet.
type Triplet struct {
	Data uint32
	Err  hamming.ErrorCount
}

// numTriplets is the count of 3-byte triplets following the designation
// code in an extension packet: (42 - 2 MRAG - 1 designation) / 3.
const numTriplets = 13

// Enhancement decodes a row 26-31 extension packet: a Hamming 8/4
// designation code followed by thirteen Hamming 24/18 triplets, each
// carried little-endian across three bytes. Valid only when
// MRAG().Row >= 26.
func (p *Packet) Enhancement() (designation byte, desErr hamming.ErrorCount, triplets [numTriplets]Triplet) {
	designation, desErr = hamming.Decode8(p.data[2])
	for i := range triplets {
		off := 3 + i*3
		u := uint32(p.data[off]) | uint32(p.data[off+1])<<8 | uint32(p.data[off+2])<<16
		triplets[i].Data, triplets[i].Err = hamming.Decode24(u)
	}
	return designation, desErr, triplets
}

// Errors is a summary of the error counts contributed by every decoded
// field of a packet, used by stats.ErrorHistogram.
type Errors struct {
	Fields        int
	Corrected     int
	Uncorrectable int
}

// Add folds one field's error count into the summary.
func (e *Errors) Add(err hamming.ErrorCount) {
	e.Fields++
	switch err {
	case hamming.OneError:
		e.Corrected++
	case hamming.Uncorrectable:
		e.Uncorrectable++
	}
}

// Summary aggregates the error counts of every field this packet's row
// type decodes: the MRAG always, plus the header fields for row 0, the
// display bytes for rows 1-25, or the designation code and triplets for
// rows 26-31.
func (p *Packet) Summary(fill byte) Errors {
	var e Errors
	m := p.MRAG()
	e.Add(m.MagazineErr)
	e.Add(m.RowErr)

	switch {
	case m.Row == 0:
		h := p.Header()
		e.Add(h.PageErr)
		e.Add(h.SubpageErr)
		e.Add(h.ControlErr)
		e.Add(h.StationErr)
	case m.Row >= 1 && m.Row <= 25:
		_, err := p.Displayable(fill)
		e.Add(err)
	case m.Row >= 26:
		_, desErr, triplets := p.Enhancement()
		e.Add(desErr)
		for _, t := range triplets {
			e.Add(t.Err)
		}
	}
	return e
}

func worst(a, b hamming.ErrorCount) hamming.ErrorCount {
	if b > a {
		return b
	}
	return a
}
