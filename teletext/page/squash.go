/*
NAME
  squash.go

DESCRIPTION
  squash.go implements subpage_squash: a sliding per-(magazine,page)
  cache that merges repeated arrivals of a Subpage into a single
  per-byte majority-vote copy before emitting it.

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

// cacheKey is the sliding cache's index: one slot per magazine/page,
// regardless of which subpage currently occupies it.
type cacheKey struct {
	magazine, page int
}

// colVote tracks, for one byte column of one row, the number of votes
// each observed value has received, which value was contributed most
// recently, and the best (lowest) error score seen for each value --
// used to break ties.
type colVote struct {
	counts    map[byte]int
	bestScore map[byte]int
	recent    byte
	recentAt  int
}

func (c *colVote) add(b byte, score, at int) {
	if c.counts == nil {
		c.counts = map[byte]int{}
		c.bestScore = map[byte]int{}
	}
	c.counts[b]++
	if old, ok := c.bestScore[b]; !ok || score < old {
		c.bestScore[b] = score
	}
	if at >= c.recentAt {
		c.recent = b
		c.recentAt = at
	}
}

// winner picks the majority byte value, breaking ties first in favour
// of the most recently contributed value (if it is among the tied
// values), then in favour of the value contributed by the lowest
// error-score packet, then by lowest byte value for determinism.
func (c *colVote) winner() byte {
	best, bestCount := byte(0), -1
	for b, n := range c.counts {
		if n > bestCount {
			best, bestCount = b, n
		}
	}
	var tied []byte
	for b, n := range c.counts {
		if n == bestCount {
			tied = append(tied, b)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	for _, b := range tied {
		if b == c.recent {
			return b
		}
	}
	best, bestScore := tied[0], c.bestScore[tied[0]]
	for _, b := range tied[1:] {
		s := c.bestScore[b]
		if s < bestScore || (s == bestScore && b < best) {
			best, bestScore = b, s
		}
	}
	return best
}

type rowVote struct {
	cols    [packet.Size]colVote
	present bool
}

type group struct {
	key   Key
	count int
	rows  map[int]*rowVote
}

func newGroup(key Key) *group {
	return &group{key: key, rows: map[int]*rowVote{}}
}

func (g *group) add(sp *Subpage, at int) {
	g.count++
	for row, p := range sp.Rows {
		rv := g.rows[row]
		if rv == nil {
			rv = &rowVote{}
			g.rows[row] = rv
		}
		rv.present = true
		score := errorScore(p)
		payload := p.ToBytes()
		for col, b := range payload {
			rv.cols[col].add(b, score, at)
		}
	}
}

// merge produces the group's best-guess Subpage: one packet per row
// that was seen at least once, each byte column independently
// majority-voted.
func (g *group) merge() *Subpage {
	sp := &Subpage{Key: g.key, Rows: map[int]*packet.Packet{}}
	for row, rv := range g.rows {
		if !rv.present {
			continue
		}
		var payload [packet.Size]byte
		for col := range payload {
			payload[col] = rv.cols[col].winner()
		}
		sp.Rows[row] = packet.New(payload, 0)
	}
	return sp
}

// errorScore is a lower-is-better proxy for how trustworthy a packet's
// contribution is, used only to break exact vote ties.
func errorScore(p *packet.Packet) int {
	e := p.Summary(packet.DefaultFill)
	return e.Uncorrectable*2 + e.Corrected
}

// Squash merges repeated arrivals of the same Subpage. It keeps one
// accumulator per (magazine, page) slot; when a Subpage for a different
// subpage number displaces the slot's current occupant, the displaced
// accumulator is emitted as a single merged Subpage if it received at
// least minDuplicates contributions, and dropped otherwise. A row is
// present in the merged Subpage only if at least one contributor
// supplied it; each byte column is resolved independently by majority
// vote. At end of stream, every slot still holding at least
// minDuplicates contributions is flushed the same way.
func Squash(in seq.Seq[*Subpage], minDuplicates int) seq.Seq[*Subpage] {
	s := &squasher{in: in, min: minDuplicates, groups: map[cacheKey]*group{}}
	return seq.Func[*Subpage](s.next)
}

type squasher struct {
	in      seq.Seq[*Subpage]
	min     int
	groups  map[cacheKey]*group
	seq     int
	pending []*Subpage
	done    bool
}

func (s *squasher) next() (*Subpage, bool) {
	for {
		if len(s.pending) > 0 {
			sp := s.pending[0]
			s.pending = s.pending[1:]
			return sp, true
		}
		if s.done {
			return nil, false
		}
		sp, ok := s.in.Next()
		if !ok {
			s.done = true
			s.flushAll()
			continue
		}
		s.handle(sp)
	}
}

func (s *squasher) handle(sp *Subpage) {
	ck := cacheKey{magazine: sp.Key.Magazine, page: sp.Key.Page}
	g, exists := s.groups[ck]
	if exists && g.key != sp.Key {
		s.maybeEmit(g)
		delete(s.groups, ck)
		g, exists = nil, false
	}
	if !exists {
		g = newGroup(sp.Key)
		s.groups[ck] = g
	}
	s.seq++
	g.add(sp, s.seq)
}

func (s *squasher) maybeEmit(g *group) {
	if g.count >= s.min {
		s.pending = append(s.pending, g.merge())
	}
}

func (s *squasher) flushAll() {
	for ck, g := range s.groups {
		s.maybeEmit(g)
		delete(s.groups, ck)
	}
}
