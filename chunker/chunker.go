/*
NAME
  chunker.go

DESCRIPTION
  chunker.go provides FileChunker, a numbered fixed-size chunk reader
  over a seekable byte stream, plus WST, a variant that reads 43-byte
  chunks and truncates each to the 42-byte Teletext packet size.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package chunker slices a byte stream into numbered fixed-size chunks,
// the entry point of both the raw-VBI path (chunk size = one video
// line) and the t42 path (chunk size = 42 or 43 bytes).
package chunker

import (
	"io"

	"github.com/ausocean/utils/logging"

	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

// Chunk is one numbered fixed-size slice of the underlying stream.
// Index is the byte offset the chunk was read from, not a sequential
// count, so it stays meaningful across a non-unit step.
type Chunk struct {
	Index int
	Data  []byte
}

// FileChunker reads fixed-size chunks from a seekable stream, one chunk
// every step bytes, starting at start and halting at stop (0 means "to
// EOF") or after limit chunks (0 means "unbounded"), whichever comes
// first. A final chunk shorter than chunkSize is discarded rather than
// returned zero-padded.
type FileChunker struct {
	r         io.ReadSeeker
	chunkSize int
	stop      int
	step      int
	limit     int
	log       logging.Logger

	pos     int
	emitted int
}

// New returns a FileChunker. If step <= 0 it defaults to chunkSize
// (sequential, non-overlapping, non-skipping reads).
func New(r io.ReadSeeker, chunkSize, start, stop, step, limit int, l logging.Logger) *FileChunker {
	if step <= 0 {
		step = chunkSize
	}
	return &FileChunker{
		r: r, chunkSize: chunkSize, stop: stop, step: step, limit: limit, log: l,
		pos: start,
	}
}

// Next returns the next Chunk and true, or a zero Chunk and false once
// stop, limit, or a short final read ends the stream.
func (c *FileChunker) Next() (Chunk, bool) {
	if c.limit > 0 && c.emitted >= c.limit {
		return Chunk{}, false
	}
	if c.stop > 0 && c.pos+c.chunkSize > c.stop {
		return Chunk{}, false
	}

	if _, err := c.r.Seek(int64(c.pos), io.SeekStart); err != nil {
		if c.log != nil {
			c.log.Error("chunker: seek failed", "error", err.Error())
		}
		return Chunk{}, false
	}

	buf := make([]byte, c.chunkSize)
	n, err := io.ReadFull(c.r, buf)
	if n < c.chunkSize {
		if c.log != nil && n > 0 {
			c.log.Debug("chunker: discarding short final chunk", "bytes", n)
		}
		return Chunk{}, false
	}
	if err != nil && err != io.EOF {
		if c.log != nil {
			c.log.Error("chunker: read failed", "error", err.Error())
		}
		return Chunk{}, false
	}

	chunk := Chunk{Index: c.pos, Data: buf}
	c.pos += c.step
	c.emitted++
	return chunk, true
}

// WST wraps a FileChunker reading 43-byte chunks and truncates each to
// packet.Size (42) bytes, discarding the trailing byte some WST capture
// formats append per packet.
type WST struct {
	*FileChunker
}

// NewWST returns a WST chunker.
func NewWST(r io.ReadSeeker, start, stop, step, limit int, l logging.Logger) *WST {
	return &WST{FileChunker: New(r, packet.Size+1, start, stop, step, limit, l)}
}

// Next returns the next Chunk, truncated to packet.Size bytes.
func (w *WST) Next() (Chunk, bool) {
	c, ok := w.FileChunker.Next()
	if !ok {
		return Chunk{}, false
	}
	c.Data = c.Data[:packet.Size]
	return c, true
}
