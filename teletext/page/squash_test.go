/*
NAME
  squash_test.go

DESCRIPTION
  squash_test.go exercises subpage_squash's majority-vote merge, the
  min_duplicates gate, and displacement-triggered emission.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package page

import (
	"testing"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

// subpageWithByte returns a Subpage with one row whose byte 0 is set to
// b and every other byte held constant, so squash's column vote on
// index 0 is the only thing under test.
func subpageWithByte(key Key, row int, b byte) *Subpage {
	var data [packet.Size]byte
	for i := range data {
		data[i] = 0x20
	}
	data[0] = b
	return &Subpage{Key: key, Rows: map[int]*packet.Packet{row: packet.New(data, 0)}}
}

func TestSquashMajorityVote(t *testing.T) {
	key := Key{Magazine: 1, Page: 0x21, Subpage: 0}
	in := seq.FromSlice([]*Subpage{
		subpageWithByte(key, 1, 'A'),
		subpageWithByte(key, 1, 'B'),
		subpageWithByte(key, 1, 'B'),
	})
	out := seq.Collect(Squash(in, 3))
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (flushed at EOF)", len(out))
	}
	got := out[0].Rows[1].ToBytes()[0]
	if got != 'B' {
		t.Errorf("merged byte 0 = %q, want 'B' (2 of 3 votes)", got)
	}
}

func TestSquashBelowMinDuplicatesDropped(t *testing.T) {
	key := Key{Magazine: 1, Page: 0x21, Subpage: 0}
	in := seq.FromSlice([]*Subpage{
		subpageWithByte(key, 1, 'A'),
		subpageWithByte(key, 1, 'B'),
	})
	out := seq.Collect(Squash(in, 3))
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0 (below min_duplicates)", len(out))
	}
}

func TestSquashDisplacementEmitsEarly(t *testing.T) {
	keyA := Key{Magazine: 1, Page: 0x21, Subpage: 0}
	keyB := Key{Magazine: 1, Page: 0x21, Subpage: 1} // same (mag,page) slot.
	in := seq.FromSlice([]*Subpage{
		subpageWithByte(keyA, 1, 'A'),
		subpageWithByte(keyA, 1, 'A'),
		subpageWithByte(keyA, 1, 'A'),
		subpageWithByte(keyB, 1, 'Z'), // displaces A's group -> emits it.
	})
	out := seq.Collect(Squash(in, 3))
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Key != keyA {
		t.Errorf("emitted Key = %+v, want %+v (displaced group)", out[0].Key, keyA)
	}
}

func TestSquashRowOnlyPresentIfContributed(t *testing.T) {
	key := Key{Magazine: 1, Page: 0x21, Subpage: 0}
	in := seq.FromSlice([]*Subpage{
		subpageWithByte(key, 1, 'A'),
		subpageWithByte(key, 2, 'B'),
		subpageWithByte(key, 1, 'A'),
	})
	out := seq.Collect(Squash(in, 3))
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if _, ok := out[0].Rows[1]; !ok {
		t.Error("Rows[1] missing, want present (2 contributors)")
	}
	if _, ok := out[0].Rows[2]; !ok {
		t.Error("Rows[2] missing, want present (1 contributor)")
	}
}
