/*
NAME
  dump.go

DESCRIPTION
  dump.go provides Dump, a writer that appends each CELP Frame's two
  raw subframes to an underlying byte stream, matching the flat dump
  format original captures of this side-channel use (two 19-byte
  frames per Teletext packet, back to back).

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

import "io"

// Dump appends raw CELP frames to an underlying writer.
type Dump struct {
	w io.Writer
}

// NewDump returns a Dump writing to w.
func NewDump(w io.Writer) *Dump { return &Dump{w: w} }

// Write appends f's two subframes, frame0 then frame1.
func (d *Dump) Write(f Frame) error {
	if _, err := d.w.Write(f.Frame0[:]); err != nil {
		return err
	}
	_, err := d.w.Write(f.Frame1[:])
	return err
}
