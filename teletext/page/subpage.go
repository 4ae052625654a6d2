/*
NAME
  subpage.go

DESCRIPTION
  subpage.go provides Subpage, a grouping of Packets belonging to one
  (magazine, page, subpage) identity, indexed by row.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package page assembles Packets into Subpages (paginate) and merges
// repeated arrivals of the same Subpage into a single best-guess copy
// (Squash).
package page

import "github.com/bbjunkie/vhs-teletext/teletext/packet"

// Key identifies a subpage uniquely within a stream.
type Key struct {
	Magazine int
	Page     int
	Subpage  int
}

// Subpage is a page header packet plus whichever of rows 1-25 were seen
// before the next header for the same magazine displaced it.
type Subpage struct {
	Key  Key
	Rows map[int]*packet.Packet
}

// FromPackets consumes a prefix of packets believed to belong to one
// page/subpage -- a row-0 header followed by zero or more body rows --
// and returns the Subpage they describe. The first packet must be a
// row-0 header; FromPackets returns nil otherwise. A row that recurs in
// pkts (decode noise re-sending the same row twice) keeps its first
// occurrence.
func FromPackets(pkts []*packet.Packet) *Subpage {
	if len(pkts) == 0 {
		return nil
	}
	header := pkts[0]
	m := header.MRAG()
	if m.Row != 0 {
		return nil
	}
	h := header.Header()

	sp := &Subpage{
		Key:  Key{Magazine: m.Magazine, Page: h.Page, Subpage: h.Subpage},
		Rows: map[int]*packet.Packet{0: header},
	}
	for _, p := range pkts[1:] {
		rm := p.MRAG()
		if _, exists := sp.Rows[rm.Row]; exists {
			continue
		}
		sp.Rows[rm.Row] = p
	}
	return sp
}
