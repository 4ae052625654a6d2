/*
NAME
  auto.go

DESCRIPTION
  auto.go implements the `auto` output sink: ansi for an interactive
  terminal, raw bytes for anything else (a pipe or a redirected file).

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import "os"

// NewAutoSink returns an AnsiSink if f is an interactive terminal, or a
// BytesSink otherwise.
func NewAutoSink(f *os.File, fill byte) Sink {
	if isTerminal(f) {
		return NewAnsiSink(f, fill)
	}
	return NewBytesSink(f)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
