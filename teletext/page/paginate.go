/*
NAME
  paginate.go

DESCRIPTION
  paginate.go implements the per-magazine IDLE/COLLECTING state machine
  that groups a packet stream into Subpages.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package page

import (
	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

// numMagazines is the count of distinct on-air magazine numbers, 1-8.
const numMagazines = 8

// Paginate groups in into Subpages. Each of the 8 magazines runs its own
// independent IDLE/COLLECTING state machine:
//
//   - IDLE: non-header rows are dropped; a row-0 header whose page is in
//     pages and subpage is in subpages (empty means "any") starts
//     COLLECTING with that header buffered.
//   - COLLECTING: body rows (1-25) are appended to the buffer, first
//     occurrence of a row wins. Any further row-0 header -- including a
//     repeat of the same page/subpage -- emits the buffered Subpage
//     regardless of whether the buffer is "complete", then restarts
//     collection with the new header if it passes the filter.
//
// Emission is order-preserving within a magazine: Subpages are yielded
// in the order their headers were seen. At end of stream every
// magazine's in-progress buffer is flushed, in ascending magazine order.
func Paginate(in seq.Seq[*packet.Packet], pages, subpages []int) seq.Seq[*Subpage] {
	p := &paginator{in: in, pages: pages, subpages: subpages, buf: map[int][]*packet.Packet{}}
	return seq.Func[*Subpage](p.next)
}

type paginator struct {
	in       seq.Seq[*packet.Packet]
	pages    []int
	subpages []int

	buf     map[int][]*packet.Packet
	pending []*Subpage
	done    bool
}

func (p *paginator) next() (*Subpage, bool) {
	for {
		if len(p.pending) > 0 {
			sp := p.pending[0]
			p.pending = p.pending[1:]
			return sp, true
		}
		if p.done {
			return nil, false
		}
		pkt, ok := p.in.Next()
		if !ok {
			p.done = true
			p.flushAll()
			continue
		}
		p.handle(pkt)
	}
}

func (p *paginator) handle(pkt *packet.Packet) {
	m := pkt.MRAG()
	mag := m.Magazine

	if m.Row == 0 {
		// Any new header closes the magazine's open buffer, whether or
		// not the header itself passes the filter: the rows that follow
		// it belong to the new page.
		if buf := p.buf[mag]; len(buf) > 0 {
			if sp := FromPackets(buf); sp != nil {
				p.pending = append(p.pending, sp)
			}
			delete(p.buf, mag)
		}
		h := pkt.Header()
		if !inSet(p.pages, h.Page) || !inSet(p.subpages, h.Subpage) {
			return
		}
		p.buf[mag] = []*packet.Packet{pkt}
		return
	}

	if m.Row > 25 {
		return // Only body rows 1-25 belong to a Subpage.
	}
	buf := p.buf[mag]
	if len(buf) == 0 {
		return // IDLE: no open subpage for this magazine.
	}
	if rowBuffered(buf, m.Row) {
		return
	}
	p.buf[mag] = append(buf, pkt)
}

func (p *paginator) flushAll() {
	for mag := 1; mag <= numMagazines; mag++ {
		buf := p.buf[mag]
		if len(buf) == 0 {
			continue
		}
		if sp := FromPackets(buf); sp != nil {
			p.pending = append(p.pending, sp)
		}
		delete(p.buf, mag)
	}
}

func rowBuffered(buf []*packet.Packet, row int) bool {
	for _, p := range buf {
		if p.MRAG().Row == row {
			return true
		}
	}
	return false
}

// inSet reports whether v is present in set. An empty set matches
// everything.
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
