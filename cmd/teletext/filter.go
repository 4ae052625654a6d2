/*
NAME
  filter.go

DESCRIPTION
  filter.go implements the `filter` subcommand: the t42/WST path from a
  chunked packet stream through magazine/row filtering straight to the
  output sinks, with no pagination.

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
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/bbjunkie/vhs-teletext/celp"
	"github.com/bbjunkie/vhs-teletext/chunker"
	"github.com/bbjunkie/vhs-teletext/pipeline"
	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/stats"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

func runFilter(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	var cf commonFlags
	bindT42Flags(fs, &cf)
	celpPath := fs.String("celp", "", "also write raw CELP audio frames (magazine 4) to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mags, err := parseSet(cf.mags)
	if err != nil {
		return err
	}
	rows, err := parseSet(cf.rows)
	if err != nil {
		return err
	}

	packets, closeIn, err := openPacketStream(cf, log)
	if err != nil {
		return err
	}
	defer closeIn()

	filtered := pipeline.Filter(packets, mags, rows)

	magHist := stats.NewMagHistogram(filtered)
	rowHist := stats.NewRowHistogram(magHist)
	errHist := stats.NewErrorHistogram(rowHist, byte(cf.fill))

	sinks, closeSinks, err := buildSinks(cf.outs, byte(cf.fill))
	if err != nil {
		return err
	}
	defer closeSinks()

	if *celpPath != "" {
		f, err := os.Create(*celpPath)
		if err != nil {
			return errors.Wrapf(err, "creating %s", *celpPath)
		}
		sinks = append(sinks, newCelpSink(f, rows))
	}

	err = pipeline.Drain(errHist, sinks...)
	log.Info("filter: done", "magazines", magHist.Snapshot(), "errors", errHist.Snapshot())
	return err
}

// celpSink passes each packet to the CELP side-channel extractor and
// appends the raw frames of those that carry one to the dump file. It
// sits alongside the ordinary sinks so the main stream still reaches
// them unchanged.
type celpSink struct {
	dump *celp.Dump
	rows []int
	f    *os.File
}

func newCelpSink(f *os.File, rows []int) *celpSink {
	return &celpSink{dump: celp.NewDump(f), rows: rows, f: f}
}

func (s *celpSink) Write(p *packet.Packet) error {
	frame, ok := celp.Extract(p, s.rows)
	if !ok {
		return nil
	}
	return s.dump.Write(frame)
}

func (s *celpSink) Close() error { return s.f.Close() }

// bindT42Flags registers the flags shared by the filter and squash
// subcommands, both of which read an already-decoded packet stream
// (t42 or WST t42) rather than raw VBI samples.
func bindT42Flags(fs *flag.FlagSet, cf *commonFlags) {
	fs.StringVar(&cf.input, "i", "", "input file (default stdin)")
	fs.BoolVar(&cf.wst, "wst", false, "input is WST t42 (43 bytes per packet, trailing byte dropped)")
	fs.IntVar(&cf.start, "start", 0, "first packet byte offset")
	fs.IntVar(&cf.stop, "stop", 0, "byte offset to stop at (0 = EOF)")
	fs.IntVar(&cf.step, "step", 0, "bytes to advance per packet (0 = packet size)")
	fs.IntVar(&cf.limit, "limit", 0, "maximum packets to process (0 = unbounded)")
	fs.StringVar(&cf.mags, "m", "", "magazine set, comma-separated (default any)")
	fs.StringVar(&cf.rows, "r", "", "row set, comma-separated (default any)")
	fs.IntVar(&cf.fill, "fill", int(packet.DefaultFill), "byte substituted for parity failures")
	fs.Var(&cf.outs, "out", "output sink kind:path, repeatable (default auto:-)")
}

// openPacketStream opens cf.input as a t42 or WST t42 chunked packet
// stream, per cf.wst.
func openPacketStream(cf commonFlags, log logging.Logger) (seq.Seq[*packet.Packet], func() error, error) {
	r, closeIn, err := openInput(cf.input)
	if err != nil {
		return nil, nil, err
	}
	if cf.step < 0 {
		closeIn()
		return nil, nil, errors.Errorf("invalid step %d", cf.step)
	}

	var chunks seq.Seq[chunker.Chunk]
	if cf.wst {
		chunks = chunker.NewWST(r, cf.start, cf.stop, cf.step, cf.limit, log)
	} else {
		size := packet.Size
		step := cf.step
		if step <= 0 {
			step = size
		}
		chunks = chunker.New(r, size, cf.start, cf.stop, step, cf.limit, log)
	}
	return pipeline.Packets(chunks), closeIn, nil
}
