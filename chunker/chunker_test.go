/*
NAME
  chunker_test.go

DESCRIPTION
  chunker_test.go exercises FileChunker's start/stop/step/limit controls,
  short-chunk discard, and the WST 43->42 truncation variant.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package chunker

import (
	"bytes"
	"testing"

	"github.com/bbjunkie/vhs-teletext/seq"
)

func TestFileChunkerSequentialRead(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	c := New(bytes.NewReader(data), 10, 0, 0, 0, 0, nil)
	chunks := seq.Collect[Chunk](seq.Func[Chunk](c.Next))
	if len(chunks) != 10 {
		t.Fatalf("len(chunks) = %d, want 10", len(chunks))
	}
	if chunks[0].Index != 0 || chunks[1].Index != 10 {
		t.Errorf("Index sequence = %d, %d, want 0, 10", chunks[0].Index, chunks[1].Index)
	}
}

func TestFileChunkerLimit(t *testing.T) {
	data := make([]byte, 100)
	c := New(bytes.NewReader(data), 10, 0, 0, 0, 3, nil)
	chunks := seq.Collect[Chunk](seq.Func[Chunk](c.Next))
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
}

func TestFileChunkerStop(t *testing.T) {
	data := make([]byte, 100)
	c := New(bytes.NewReader(data), 10, 0, 35, 0, 0, nil)
	chunks := seq.Collect[Chunk](seq.Func[Chunk](c.Next))
	// stop=35 permits chunks starting at 0,10,20 (30+10=40 > 35 halts).
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
}

func TestFileChunkerDiscardsShortFinalChunk(t *testing.T) {
	data := make([]byte, 25) // 2 full 10-byte chunks + 5 leftover bytes.
	c := New(bytes.NewReader(data), 10, 0, 0, 0, 0, nil)
	chunks := seq.Collect[Chunk](seq.Func[Chunk](c.Next))
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2 (short final chunk discarded)", len(chunks))
	}
}

func TestWSTTruncatesTo42(t *testing.T) {
	data := make([]byte, 129) // 3 * 43 bytes.
	for i := range data {
		data[i] = byte(i)
	}
	w := NewWST(bytes.NewReader(data), 0, 0, 0, 0, nil)
	chunks := seq.Collect[Chunk](seq.Func[Chunk](w.Next))
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Data) != 42 {
			t.Errorf("len(Data) = %d, want 42", len(c.Data))
		}
	}
	if chunks[1].Data[0] != data[43] {
		t.Errorf("chunk 1 first byte = %d, want %d", chunks[1].Data[0], data[43])
	}
}
