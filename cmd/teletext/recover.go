/*
NAME
  recover.go

DESCRIPTION
  recover.go implements the `slice` and `deconvolve` subcommands: the
  raw-VBI path from a chunked sample stream through bit recovery to a
  Packet stream, with statistics taps wired in ahead of the output
  sinks.

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
	"flag"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/bbjunkie/vhs-teletext/chunker"
	"github.com/bbjunkie/vhs-teletext/pipeline"
	"github.com/bbjunkie/vhs-teletext/stats"
	"github.com/bbjunkie/vhs-teletext/vbi/config"
)

func runSlice(args []string, log logging.Logger) error {
	return runRecover("slice", pipeline.MethodSlice, args, log)
}

func runDeconvolve(args []string, log logging.Logger) error {
	return runRecover("deconvolve", pipeline.MethodDeconvolve, args, log)
}

// runRecover implements the shared body of the slice and deconvolve
// subcommands: both walk a raw-VBI capture through card-profile-driven
// line normalization and differ only in which of the two bit recovery
// algorithms they select.
func runRecover(name string, method pipeline.Method, args []string, log logging.Logger) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var cf commonFlags
	fs.StringVar(&cf.input, "i", "", "input file (default stdin)")
	fs.IntVar(&cf.start, "start", 0, "first sample index")
	fs.IntVar(&cf.stop, "stop", 0, "sample index to stop at (0 = EOF)")
	fs.IntVar(&cf.step, "step", 0, "samples to advance per line (0 = line length)")
	fs.IntVar(&cf.limit, "limit", 0, "maximum lines to process (0 = unbounded)")
	fs.StringVar(&cf.mags, "m", "", "magazine set, comma-separated (default any)")
	fs.StringVar(&cf.rows, "r", "", "row set, comma-separated (default any)")
	fs.IntVar(&cf.fill, "fill", int(0x20), "byte substituted for parity failures")
	fs.Var(&cf.outs, "out", "output sink kind:path, repeatable (default auto:-)")
	card := fs.String("card", "bt8x8", "capture card profile")
	extraRoll := fs.Int("extra-roll", 0, "integer sample bias applied to the CRI lock")
	workers := fs.Int("workers", 1, "bit recovery worker goroutines (1 = inline)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.New(*card, config.Config{Logger: log})
	if err != nil {
		return errors.Wrap(err, "config")
	}

	mags, err := parseSet(cf.mags)
	if err != nil {
		return err
	}
	rows, err := parseSet(cf.rows)
	if err != nil {
		return err
	}

	r, closeIn, err := openInput(cf.input)
	if err != nil {
		return err
	}
	defer closeIn()

	step := cf.step
	if step <= 0 {
		step = cfg.LineLength
	}
	fc := chunker.New(r, cfg.LineLength, cf.start, cf.stop, step, cf.limit, log)

	lines := pipeline.Lines(fc, cfg, *extraRoll)
	rejects := stats.NewRejects(lines)
	packets := pipeline.RecoverParallel(rejects, method, mags, rows, *workers)

	magHist := stats.NewMagHistogram(packets)
	rowHist := stats.NewRowHistogram(magHist)
	errHist := stats.NewErrorHistogram(rowHist, byte(cf.fill))

	sinks, closeSinks, err := buildSinks(cf.outs, byte(cf.fill))
	if err != nil {
		return err
	}
	defer closeSinks()

	err = pipeline.Drain(errHist, sinks...)

	snap := rejects.Snapshot()
	log.Info(name+": done", "lines", snap.Total, "rejected", snap.Rejected,
		"magazines", magHist.Snapshot(), "errors", errHist.Snapshot())

	return err
}
