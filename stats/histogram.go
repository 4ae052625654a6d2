/*
NAME
  histogram.go

DESCRIPTION
  histogram.go provides MagHistogram and RowHistogram, statistics taps
  counting Packets by MRAG field, plus the shared lock-guarded bin-count
  helper they and ErrorHistogram build on.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stats

import (
	"sync"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

// binCounter is a lock-guarded map[int]int, the common shape behind
// MagHistogram, RowHistogram, and ErrorHistogram.
type binCounter struct {
	mu   sync.Mutex
	bins map[int]int
}

func (b *binCounter) add(key int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bins == nil {
		b.bins = map[int]int{}
	}
	b.bins[key]++
}

// snapshot returns a copy of the current bin counts.
func (b *binCounter) snapshot() map[int]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int]int, len(b.bins))
	for k, v := range b.bins {
		out[k] = v
	}
	return out
}

// MagHistogram counts Packets by MRAG magazine (1-8).
type MagHistogram struct {
	in seq.Seq[*packet.Packet]
	binCounter
}

// NewMagHistogram wraps in with a MagHistogram tap.
func NewMagHistogram(in seq.Seq[*packet.Packet]) *MagHistogram {
	return &MagHistogram{in: in}
}

// Next returns the next Packet unchanged, after updating counters.
func (m *MagHistogram) Next() (*packet.Packet, bool) {
	p, ok := m.in.Next()
	if !ok {
		return nil, false
	}
	m.add(p.MRAG().Magazine)
	return p, true
}

// Snapshot returns magazine -> packet count.
func (m *MagHistogram) Snapshot() map[int]int { return m.snapshot() }

// RowHistogram counts Packets by MRAG row (0-31).
type RowHistogram struct {
	in seq.Seq[*packet.Packet]
	binCounter
}

// NewRowHistogram wraps in with a RowHistogram tap.
func NewRowHistogram(in seq.Seq[*packet.Packet]) *RowHistogram {
	return &RowHistogram{in: in}
}

// Next returns the next Packet unchanged, after updating counters.
func (r *RowHistogram) Next() (*packet.Packet, bool) {
	p, ok := r.in.Next()
	if !ok {
		return nil, false
	}
	r.add(p.MRAG().Row)
	return p, true
}

// Snapshot returns row -> packet count.
func (r *RowHistogram) Snapshot() map[int]int { return r.snapshot() }
