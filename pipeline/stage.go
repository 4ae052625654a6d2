/*
NAME
  stage.go

DESCRIPTION
  stage.go provides the pipeline stages that turn chunked input bytes
  into Packets: Lines for the raw-VBI path (chunk -> normalized Line),
  Recover for bit recovery (Line -> Packet), Packets for the t42/WST
  path (chunk -> Packet directly), and Filter/FlattenSubpages for
  composing them with teletext/page.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline composes the stages between raw input bytes and an
// output sink: chunking into Lines or Packets, bit recovery, magazine/
// row filtering, flattening teletext/page's Subpages back into Packets,
// and the text/ansi/debug/bytes/bar sinks that drain a Packet stream.
package pipeline

import (
	"sort"

	"github.com/bbjunkie/vhs-teletext/chunker"
	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
	"github.com/bbjunkie/vhs-teletext/teletext/page"
	"github.com/bbjunkie/vhs-teletext/vbi/config"
	"github.com/bbjunkie/vhs-teletext/vbi/line"
)

// Lines converts a stream of raw-VBI chunks, one per sample line, into
// normalized Lines numbered by their position in the stream.
func Lines(chunks seq.Seq[chunker.Chunk], cfg config.Config, extraRoll int) seq.Seq[*line.Line] {
	n := 0
	return seq.Func[*line.Line](func() (*line.Line, bool) {
		c, ok := chunks.Next()
		if !ok {
			return nil, false
		}
		l := line.New(cfg, c.Data, n, extraRoll)
		n++
		return l, true
	})
}

// Method names a bit-recovery algorithm for Recover.
type Method string

const (
	MethodSlice      Method = "slice"
	MethodDeconvolve Method = "deconvolve"
)

// Recover applies method to every Line that locked onto a clock-run-in,
// dropping rejected lines and any recovered Packet outside mags/rows.
func Recover(lines seq.Seq[*line.Line], method Method, mags, rows []int) seq.Seq[*packet.Packet] {
	return seq.Func[*packet.Packet](func() (*packet.Packet, bool) {
		for {
			l, ok := lines.Next()
			if !ok {
				return nil, false
			}
			if p := recoverOne(l, method, mags, rows); p != nil {
				return p, true
			}
		}
	})
}

// Packets converts a stream of 42-byte chunks directly into Packets,
// the entry point for the t42 and WST t42 input paths.
func Packets(chunks seq.Seq[chunker.Chunk]) seq.Seq[*packet.Packet] {
	return seq.Map(chunks, func(c chunker.Chunk) *packet.Packet {
		return packet.FromSlice(c.Data, c.Index)
	})
}

// Filter restricts a Packet stream to mags and rows (empty means
// "any"), for streams built from already-decoded t42/WST input rather
// than raw VBI, where line.Slice/Deconvolve's own filter has no effect.
func Filter(in seq.Seq[*packet.Packet], mags, rows []int) seq.Seq[*packet.Packet] {
	return seq.Filter(in, func(p *packet.Packet) bool {
		m := p.MRAG()
		return inSet(mags, m.Magazine) && inSet(rows, m.Row)
	})
}

// FlattenSubpages yields every row's Packet of each Subpage, in
// ascending row order, the inverse of teletext/page's grouping.
func FlattenSubpages(in seq.Seq[*page.Subpage]) seq.Seq[*packet.Packet] {
	var buf []*packet.Packet
	idx := 0
	return seq.Func[*packet.Packet](func() (*packet.Packet, bool) {
		for idx >= len(buf) {
			sp, ok := in.Next()
			if !ok {
				return nil, false
			}
			rows := make([]int, 0, len(sp.Rows))
			for r := range sp.Rows {
				rows = append(rows, r)
			}
			sort.Ints(rows)
			buf = buf[:0]
			for _, r := range rows {
				buf = append(buf, sp.Rows[r])
			}
			idx = 0
		}
		p := buf[idx]
		idx++
		return p, true
	})
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
