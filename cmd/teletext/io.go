/*
NAME
  io.go

DESCRIPTION
  io.go provides the flag parsing and I/O wiring shared by every
  subcommand: input stream opening (file or stdin, buffered to a
  seekable reader when the source isn't one), magazine/row set parsing,
  and output sink construction from `-out kind:path` flags.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bbjunkie/vhs-teletext/pipeline"
)

// commonFlags are the options every subcommand that reads a packet or
// VBI stream accepts.
type commonFlags struct {
	input string
	wst   bool
	start int
	stop  int
	step  int
	limit int
	mags  string
	rows  string
	fill  int
	outs  stringList
}

// stringList collects repeated -out flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// interrupted is closed by the signal handler in main. Input readers
// consult it so an interrupt reads as a clean end of stream: the
// pipeline drains, sinks flush, and the process exits 0 rather than
// dying mid-packet.
var interrupted = make(chan struct{})

// interruptibleReader wraps a seekable stream, reporting EOF once
// interrupted is closed.
type interruptibleReader struct {
	r io.ReadSeeker
}

func (ir *interruptibleReader) Read(p []byte) (int, error) {
	select {
	case <-interrupted:
		return 0, io.EOF
	default:
	}
	return ir.r.Read(p)
}

func (ir *interruptibleReader) Seek(offset int64, whence int) (int64, error) {
	return ir.r.Seek(offset, whence)
}

// openInput opens path for reading, or buffers all of stdin into memory
// if path is empty or "-". FileChunker requires a seekable stream (it
// re-seeks to support non-unit steps), and stdin is a pipe, so stdin is
// read to completion and wrapped in a bytes.Reader.
func openInput(path string) (io.ReadSeeker, func() error, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading stdin")
		}
		return &interruptibleReader{r: bytes.NewReader(data)}, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", path)
	}
	return &interruptibleReader{r: f}, f.Close, nil
}

// parseSet parses a comma-separated list of non-negative integers
// ("1,2,8"). An empty string means "any" (nil, matching pipeline.Filter's
// and teletext/page's convention).
func parseSet(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid set entry %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

// buildSinks constructs one pipeline.Sink per "kind:path" entry in outs
// (kind defaults to "auto" if path has no colon). path "-" or "" means
// stdout. fill is the byte substituted for parity failures in
// text/ansi/debug rendering.
func buildSinks(outs []string, fill byte) ([]pipeline.Sink, func() error, error) {
	if len(outs) == 0 {
		outs = []string{"auto:-"}
	}

	var sinks []pipeline.Sink
	var closers []io.Closer
	closeAll := func() error {
		var first error
		for _, c := range closers {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	for _, entry := range outs {
		kind, path := "auto", entry
		if i := strings.IndexByte(entry, ':'); i >= 0 {
			kind, path = entry[:i], entry[i+1:]
		}

		w, closer, err := openOutput(path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}

		switch kind {
		case "bytes":
			sinks = append(sinks, pipeline.NewBytesSink(w))
		case "text":
			sinks = append(sinks, pipeline.NewTextSink(w, fill))
		case "ansi":
			sinks = append(sinks, pipeline.NewAnsiSink(w, fill))
		case "debug":
			sinks = append(sinks, pipeline.NewDebugSink(w, fill))
		case "bar":
			sinks = append(sinks, pipeline.NewBarSink(w, fill))
		case "auto":
			f, ok := w.(*os.File)
			if !ok {
				sinks = append(sinks, pipeline.NewBytesSink(w))
				continue
			}
			sinks = append(sinks, pipeline.NewAutoSink(f, fill))
		default:
			closeAll()
			return nil, nil, errors.Errorf("unknown sink kind %q", kind)
		}
	}
	return sinks, closeAll, nil
}

// openOutput opens path for writing, treating "" or "-" as stdout.
func openOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s", path)
	}
	return f, f, nil
}
