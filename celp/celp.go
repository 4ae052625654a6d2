/*
NAME
  celp.go

DESCRIPTION
  celp.go extracts the CELP audio side-channel carried on magazine 4,
  data channels 4 and 12, and exposes its raw 152-bit frame layout. No
  audio is synthesized here: the two 19-byte frames are parsed into
  their documented sub-fields and handed to the caller as a typed
  sample-buffer carrier.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package celp extracts the CELP audio side-channel from Teletext
// Packets. The encoding is only partially understood -- see frame.go
// for the bit layout -- so this package never attempts synthesis; it
// exposes the raw fields and a typed frame buffer for a caller that
// wants to do something else with them.
package celp

import (
	"github.com/go-audio/audio"

	"github.com/bbjunkie/vhs-teletext/teletext/packet"
	"github.com/bbjunkie/vhs-teletext/vbi/hamming"
)

// magazine is the only magazine CELP frames are carried on.
const magazine = 4

// Frame is one CELP packet's decoded header plus its two raw 19-byte
// subframes.
type Frame struct {
	DCN     int // 4: programme-related audio, 12: programme-independent.
	Service int
	Control int

	ControlErr hamming.ErrorCount
	ServiceErr hamming.ErrorCount

	Frame0 [19]byte
	Frame1 [19]byte
}

// serviceTypes names the programme-independent audio service field,
// indexed by the low 3 bits of Service when its top bit is clear.
var serviceTypes = [8]string{
	"single-channel, 1 VBI line per frame",
	"single-channel, 2 VBI lines per frame",
	"single-channel, 3 VBI lines per frame",
	"single-channel, 4 VBI lines per frame",
	"mute channel 1",
	"two-channel, 2 VBI lines per frame",
	"mute channel 2",
	"two-channel, 4 VBI lines per frame",
}

// ServiceType returns a human-readable description of a
// programme-independent (DCN 12) Service field, or "" if f.DCN != 12.
func (f Frame) ServiceType() string {
	if f.DCN != 12 {
		return ""
	}
	if f.Service&0x8 != 0 {
		return "user-defined service"
	}
	return serviceTypes[f.Service&0x7]
}

// Extract reports whether p carries a CELP frame -- magazine 4, and
// (if rows is non-empty) a row in rows -- and if so, decodes it. The
// data channel number is derived from the magazine and the row's parity,
// matching data channels 4 and 12 sharing one magazine on alternating
// rows.
func Extract(p *packet.Packet, rows []int) (Frame, bool) {
	m := p.MRAG()
	if m.Magazine != magazine {
		return Frame{}, false
	}
	if len(rows) > 0 && !inSet(rows, m.Row) {
		return Frame{}, false
	}

	data := p.ToBytes()
	control, controlErr := hamming.Decode8(data[2])
	service, serviceErr := hamming.Decode8(data[3])

	var f Frame
	f.DCN = m.Magazine | ((m.Row & 1) << 3)
	f.Control = int(control)
	f.ControlErr = controlErr
	f.Service = int(service)
	f.ServiceErr = serviceErr
	copy(f.Frame0[:], data[4:23])
	copy(f.Frame1[:], data[23:42])
	return f, true
}

// Buffer wraps f's two subframes as a typed, never-decoded sample
// carrier: one int per raw byte, tagged with the 8kHz mono format the
// original CELP codec assumes.
func (f Frame) Buffer() *audio.IntBuffer {
	data := make([]int, 0, len(f.Frame0)+len(f.Frame1))
	for _, b := range f.Frame0 {
		data = append(data, int(b))
	}
	for _, b := range f.Frame1 {
		data = append(data, int(b))
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 8,
	}
}

func inSet(set []int, v int) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
