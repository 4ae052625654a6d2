/*
NAME
  squash.go

DESCRIPTION
  squash.go implements the `squash` subcommand: the t42/WST path through
  magazine/row filtering, pagination, and subpage_squash voting, with
  the merged Subpages flattened back to a Packet stream for the output
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

	"github.com/ausocean/utils/logging"

	"github.com/bbjunkie/vhs-teletext/pipeline"
	"github.com/bbjunkie/vhs-teletext/stats"
	"github.com/bbjunkie/vhs-teletext/teletext/page"
)

func runSquash(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("squash", flag.ContinueOnError)
	var cf commonFlags
	bindT42Flags(fs, &cf)
	pages := fs.String("p", "", "page set, comma-separated (default any)")
	subpages := fs.String("s", "", "subpage set, comma-separated (default any)")
	minDup := fs.Int("min-duplicates", 2, "minimum Subpage arrivals before a merged copy is emitted")
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
	pageSet, err := parseSet(*pages)
	if err != nil {
		return err
	}
	subpageSet, err := parseSet(*subpages)
	if err != nil {
		return err
	}

	packets, closeIn, err := openPacketStream(cf, log)
	if err != nil {
		return err
	}
	defer closeIn()

	filtered := pipeline.Filter(packets, mags, rows)
	collected := page.Paginate(filtered, pageSet, subpageSet)
	squashed := page.Squash(collected, *minDup)
	out := pipeline.FlattenSubpages(squashed)

	magHist := stats.NewMagHistogram(out)
	rowHist := stats.NewRowHistogram(magHist)
	errHist := stats.NewErrorHistogram(rowHist, byte(cf.fill))

	sinks, closeSinks, err := buildSinks(cf.outs, byte(cf.fill))
	if err != nil {
		return err
	}
	defer closeSinks()

	err = pipeline.Drain(errHist, sinks...)
	log.Info("squash: done", "magazines", magHist.Snapshot(), "errors", errHist.Snapshot())
	return err
}
