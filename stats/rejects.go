/*
NAME
  rejects.go

DESCRIPTION
  rejects.go provides Rejects, a statistics tap counting VBI lines that
  failed clock-run-in lock.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package stats provides non-consuming statistics taps: value types that
// wrap a seq.Seq[T] stage, pass every element through unchanged, and
// update lock-protected counters a progress reporter can snapshot at its
// own cadence.
package stats

import (
	"sync"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/vbi/line"
)

// RejectsSnapshot is a point-in-time read of Rejects's counters.
type RejectsSnapshot struct {
	Total    int
	Rejected int
}

// Rejects counts VBILines for which IsTeletext() is false (clock-run-in
// lock failed) against the total seen.
type Rejects struct {
	in seq.Seq[*line.Line]

	mu       sync.Mutex
	total    int
	rejected int
}

// NewRejects wraps in with a Rejects tap.
func NewRejects(in seq.Seq[*line.Line]) *Rejects {
	return &Rejects{in: in}
}

// Next returns the next Line unchanged, after updating counters.
func (r *Rejects) Next() (*line.Line, bool) {
	l, ok := r.in.Next()
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	r.total++
	if !l.IsTeletext() {
		r.rejected++
	}
	r.mu.Unlock()
	return l, true
}

// Snapshot returns the current counters.
func (r *Rejects) Snapshot() RejectsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RejectsSnapshot{Total: r.total, Rejected: r.rejected}
}
