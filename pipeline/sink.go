/*
NAME
  sink.go

DESCRIPTION
  sink.go provides the output sinks a CLI command fans a Packet stream
  out to: bytes, text, ansi, debug, and bar, plus Drain, which pulls a
  stream to completion against one or more sinks.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import (
	"fmt"
	"io"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/stats"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

// Sink consumes one Packet at a time. A Sink that needs a final flush
// (the bar sink) additionally implements io.Closer; Drain calls Close
// when present.
type Sink interface {
	Write(p *packet.Packet) error
}

// Drain pulls every Packet from in, writing each to every sink in
// order, stopping at the first write error. Every sink implementing
// io.Closer is closed once the stream is exhausted or an error occurs.
func Drain(in seq.Seq[*packet.Packet], sinks ...Sink) error {
	var err error
loop:
	for {
		p, ok := in.Next()
		if !ok {
			break
		}
		for _, s := range sinks {
			if err = s.Write(p); err != nil {
				break loop
			}
		}
	}
	for _, s := range sinks {
		if c, ok := s.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}

// BytesSink writes each Packet's raw 42-byte payload.
type BytesSink struct{ w io.Writer }

// NewBytesSink returns a BytesSink writing to w.
func NewBytesSink(w io.Writer) *BytesSink { return &BytesSink{w: w} }

// Write appends p's raw bytes to the sink.
func (s *BytesSink) Write(p *packet.Packet) error {
	b := p.ToBytes()
	_, err := s.w.Write(b[:])
	return err
}

// displayText renders a Packet's row-0 station name or rows-1-25
// display bytes as UTF-8 text, with control characters stripped to a
// space.
func displayText(p *packet.Packet, fill byte) string {
	m := p.MRAG()
	var raw []byte
	if m.Row == 0 {
		h := p.Header()
		raw = h.Station[:]
	} else {
		disp, _ := p.Displayable(fill)
		raw = disp[:]
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b < 0x20 || b == 0x7f {
			b = ' '
		}
		out[i] = b
	}
	return string(out)
}

// TextSink writes each Packet's displayable text, one line per packet,
// with control characters stripped.
type TextSink struct {
	w    io.Writer
	fill byte
}

// NewTextSink returns a TextSink writing to w.
func NewTextSink(w io.Writer, fill byte) *TextSink { return &TextSink{w: w, fill: fill} }

// Write appends p's rendered text.
func (s *TextSink) Write(p *packet.Packet) error {
	_, err := fmt.Fprintln(s.w, displayText(p, s.fill))
	return err
}

// ansi color codes keyed by the worst error severity of a packet.
const (
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiReset  = "\x1b[0m"
)

// AnsiSink writes each Packet's displayable text colored by its worst
// field error severity: green (clean), yellow (corrected), red
// (uncorrectable fields present).
type AnsiSink struct {
	w    io.Writer
	fill byte
}

// NewAnsiSink returns an AnsiSink writing to w.
func NewAnsiSink(w io.Writer, fill byte) *AnsiSink { return &AnsiSink{w: w, fill: fill} }

// Write appends p's colored, rendered text.
func (s *AnsiSink) Write(p *packet.Packet) error {
	e := p.Summary(s.fill)
	color := ansiGreen
	switch {
	case e.Uncorrectable > 0:
		color = ansiRed
	case e.Corrected > 0:
		color = ansiYellow
	}
	_, err := fmt.Fprintln(s.w, color+displayText(p, s.fill)+ansiReset)
	return err
}

// DebugSink writes one human-readable summary line per Packet: sequence
// number, MRAG, and aggregated field error counts.
type DebugSink struct {
	w    io.Writer
	fill byte
}

// NewDebugSink returns a DebugSink writing to w.
func NewDebugSink(w io.Writer, fill byte) *DebugSink { return &DebugSink{w: w, fill: fill} }

// Write appends p's summary line.
func (s *DebugSink) Write(p *packet.Packet) error {
	m := p.MRAG()
	e := p.Summary(s.fill)
	_, err := fmt.Fprintf(s.w, "seq=%d mag=%d row=%d fields=%d corrected=%d uncorrectable=%d\n",
		p.Seq(), m.Magazine, m.Row, e.Fields, e.Corrected, e.Uncorrectable)
	return err
}

// BarSink accumulates per-packet error counts and renders a density bar
// chart of them to w on Close.
type BarSink struct {
	w      io.Writer
	fill   byte
	counts map[int]int
}

// NewBarSink returns a BarSink writing its chart to w on Close.
func NewBarSink(w io.Writer, fill byte) *BarSink {
	return &BarSink{w: w, fill: fill, counts: map[int]int{}}
}

// Write tallies p's aggregated error count.
func (s *BarSink) Write(p *packet.Packet) error {
	e := p.Summary(s.fill)
	s.counts[e.Corrected+e.Uncorrectable]++
	return nil
}

// Close renders the accumulated histogram as a PNG bar chart.
func (s *BarSink) Close() error {
	return stats.RenderHistogram(s.counts, "Packet error counts", "errors per packet", s.w)
}
