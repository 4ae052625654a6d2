/*
NAME
  paginate_test.go

DESCRIPTION
  paginate_test.go exercises the per-magazine pagination state machine:
  basic grouping, interleaved magazines, and header-displaces-buffer
  semantics.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package page

import (
	"testing"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

func TestPaginateBasic(t *testing.T) {
	in := seq.FromSlice([]*packet.Packet{
		headerPacket(1, 0x21, 0),
		bodyPacket(1, 1, 'A'),
		bodyPacket(1, 2, 'B'),
	})
	subs := seq.Collect(Paginate(in, nil, nil))
	if len(subs) != 1 {
		t.Fatalf("len(subs) = %d, want 1", len(subs))
	}
	if subs[0].Key != (Key{Magazine: 1, Page: 0x21, Subpage: 0}) {
		t.Errorf("Key = %+v", subs[0].Key)
	}
	if len(subs[0].Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3", len(subs[0].Rows))
	}
}

func TestPaginateInterleavedMagazines(t *testing.T) {
	in := seq.FromSlice([]*packet.Packet{
		headerPacket(1, 0x10, 0),
		headerPacket(2, 0x20, 0),
		bodyPacket(1, 1, 'A'),
		bodyPacket(2, 1, 'B'),
		headerPacket(1, 0x11, 0), // displaces magazine 1's buffer.
		bodyPacket(2, 2, 'C'),
	})
	subs := seq.Collect(Paginate(in, nil, nil))
	if len(subs) != 3 {
		t.Fatalf("len(subs) = %d, want 3", len(subs))
	}
	// The displaced magazine-1 subpage (page 0x10) must be emitted before
	// either magazine-2 flush, and before the trailing magazine-1 flush.
	if subs[0].Key.Magazine != 1 || subs[0].Key.Page != 0x10 {
		t.Errorf("subs[0] = %+v, want magazine 1 page 0x10", subs[0].Key)
	}
	if len(subs[0].Rows) != 2 { // header + row 1.
		t.Errorf("subs[0] rows = %d, want 2", len(subs[0].Rows))
	}

	var sawMag1Page11, sawMag2Page20 bool
	for _, sp := range subs[1:] {
		if sp.Key.Magazine == 1 && sp.Key.Page == 0x11 {
			sawMag1Page11 = true
		}
		if sp.Key.Magazine == 2 && sp.Key.Page == 0x20 {
			sawMag2Page20 = true
			if len(sp.Rows) != 3 {
				t.Errorf("magazine 2 subpage rows = %d, want 3", len(sp.Rows))
			}
		}
	}
	if !sawMag1Page11 || !sawMag2Page20 {
		t.Errorf("missing flushed subpages: mag1/0x11=%v mag2/0x20=%v", sawMag1Page11, sawMag2Page20)
	}
}

func TestPaginateFiltersByPageAndSubpage(t *testing.T) {
	in := seq.FromSlice([]*packet.Packet{
		headerPacket(1, 0x99, 0), // not in filter, never starts collection.
		bodyPacket(1, 1, 'A'),
		headerPacket(1, 0x21, 0),
		bodyPacket(1, 1, 'B'),
	})
	subs := seq.Collect(Paginate(in, []int{0x21}, nil))
	if len(subs) != 1 {
		t.Fatalf("len(subs) = %d, want 1", len(subs))
	}
	if subs[0].Key.Page != 0x21 {
		t.Errorf("Key.Page = %#x, want 0x21", subs[0].Key.Page)
	}
}

func TestPaginateUnmatchedHeaderStillClosesBuffer(t *testing.T) {
	in := seq.FromSlice([]*packet.Packet{
		headerPacket(1, 0x21, 0),
		bodyPacket(1, 1, 'A'),
		headerPacket(1, 0x99, 0), // filtered out, but still ends page 0x21.
		bodyPacket(1, 2, 'Z'),    // belongs to 0x99, must not leak into 0x21.
	})
	subs := seq.Collect(Paginate(in, []int{0x21}, nil))
	if len(subs) != 1 {
		t.Fatalf("len(subs) = %d, want 1", len(subs))
	}
	if _, ok := subs[0].Rows[2]; ok {
		t.Error("row 2 from the filtered-out page leaked into the emitted subpage")
	}
	if len(subs[0].Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2 (header + row 1)", len(subs[0].Rows))
	}
}

func TestPaginateRepeatedHeaderRestartsCollection(t *testing.T) {
	in := seq.FromSlice([]*packet.Packet{
		headerPacket(1, 0x21, 0),
		bodyPacket(1, 1, 'A'),
		headerPacket(1, 0x21, 0), // same key again: still flushes + restarts.
		bodyPacket(1, 1, 'B'),
	})
	subs := seq.Collect(Paginate(in, nil, nil))
	if len(subs) != 2 {
		t.Fatalf("len(subs) = %d, want 2", len(subs))
	}
	disp0, _ := subs[0].Rows[1].Displayable(packet.DefaultFill)
	disp1, _ := subs[1].Rows[1].Displayable(packet.DefaultFill)
	if disp0[0] != 'A' || disp1[0] != 'B' {
		t.Errorf("row1 bytes = %q, %q, want 'A', 'B'", disp0[0], disp1[0])
	}
}
