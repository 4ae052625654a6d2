/*
NAME
  record.go

DESCRIPTION
  record.go implements the `record` subcommand: the raw-VBI capture
  path, where input arrives as 32-line frames each trailed by a
  little-endian uint32 sequence number, used here purely for drop
  detection ahead of the usual Lines/Recover bit-recovery pipeline. A
  device node watch and systemd readiness/watchdog notification are
  wired in for long-running capture under systemd.

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
	"encoding/binary"
	"flag"
	"path/filepath"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/bbjunkie/vhs-teletext/chunker"
	"github.com/bbjunkie/vhs-teletext/pipeline"
	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/stats"
	"github.com/bbjunkie/vhs-teletext/vbi/config"
)

func runRecord(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	var cf commonFlags
	fs.StringVar(&cf.input, "i", "", "device node or capture file (required)")
	fs.IntVar(&cf.limit, "limit", 0, "maximum frames to process (0 = unbounded)")
	fs.StringVar(&cf.mags, "m", "", "magazine set, comma-separated (default any)")
	fs.StringVar(&cf.rows, "r", "", "row set, comma-separated (default any)")
	fs.IntVar(&cf.fill, "fill", 0x20, "byte substituted for parity failures")
	fs.Var(&cf.outs, "out", "output sink kind:path, repeatable (default auto:-)")
	card := fs.String("card", "bt8x8", "capture card profile")
	extraRoll := fs.Int("extra-roll", 0, "integer sample bias applied to the CRI lock")
	method := fs.String("method", "slice", "bit recovery algorithm: slice or deconvolve")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cf.input == "" {
		return errors.New("record requires -i <device node or capture file>")
	}

	var m pipeline.Method
	switch *method {
	case "slice":
		m = pipeline.MethodSlice
	case "deconvolve":
		m = pipeline.MethodDeconvolve
	default:
		return errors.Errorf("unknown -method %q", *method)
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

	stopWatch := watchDevice(cf.input, log)
	defer stopWatch()

	r, closeIn, err := openInput(cf.input)
	if err != nil {
		return err
	}
	defer closeIn()

	frameSize := 32*cfg.LineLength + 4
	frames := chunker.New(r, frameSize, 0, 0, frameSize, cf.limit, log)
	lines, drops := splitFrames(frames, cfg.LineLength, log)

	notifyReady(log)
	stopWatchdog := startWatchdog(log)
	defer stopWatchdog()

	recovered := pipeline.Lines(lines, cfg, *extraRoll)
	rejects := stats.NewRejects(recovered)
	packets := pipeline.Recover(rejects, m, mags, rows)

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
	log.Info("record: done", "lines", snap.Total, "rejected", snap.Rejected,
		"dropped_frames", drops(), "errors", errHist.Snapshot())
	return err
}

// splitFrames adapts a stream of 32-line-plus-trailer frame Chunks into
// a stream of single-line Chunks, extracting each frame's trailing
// little-endian uint32 sequence number to detect dropped frames (a
// non-contiguous jump is logged and counted). The returned func
// reports the running drop count.
func splitFrames(frames seq.Seq[chunker.Chunk], lineLength int, log logging.Logger) (seq.Seq[chunker.Chunk], func() int) {
	var (
		buf      []chunker.Chunk
		idx      int
		lineNo   int
		lastSeq  uint32
		haveLast bool
		drops    int
	)

	next := func() (chunker.Chunk, bool) {
		for idx >= len(buf) {
			frame, ok := frames.Next()
			if !ok {
				return chunker.Chunk{}, false
			}
			trailer := frame.Data[len(frame.Data)-4:]
			frameSeq := binary.LittleEndian.Uint32(trailer)
			if haveLast && frameSeq != lastSeq+1 {
				gap := int(frameSeq) - int(lastSeq) - 1
				if gap < 0 {
					gap = 0
				}
				drops += gap
				log.Info("record: frame sequence gap", "expected", lastSeq+1, "got", frameSeq, "dropped", gap)
			}
			lastSeq, haveLast = frameSeq, true

			buf = buf[:0]
			body := frame.Data[:len(frame.Data)-4]
			for i := 0; i < 32; i++ {
				buf = append(buf, chunker.Chunk{
					Index: lineNo,
					Data:  body[i*lineLength : (i+1)*lineLength],
				})
				lineNo++
			}
			idx = 0
		}
		c := buf[idx]
		idx++
		return c, true
	}

	return seq.Func[chunker.Chunk](next), func() int { return drops }
}

// watchDevice logs creation and removal events for the device node at
// path (e.g. a USB capture card disconnecting and reconnecting),
// watching the directory containing it. It is best
// effort: a watcher that fails to start is logged and otherwise
// ignored, since losing the watch costs diagnostics, not capture.
func watchDevice(path string, log logging.Logger) func() {
	dir := filepath.Dir(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Info("record: device watch unavailable", "error", err.Error())
		return func() {}
	}
	if err := w.Add(dir); err != nil {
		log.Info("record: device watch unavailable", "error", err.Error())
		w.Close()
		return func() {}
	}

	base := filepath.Base(path)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) == base && ev.Op&(fsnotify.Create|fsnotify.Remove) != 0 {
					log.Info("record: device node event", "path", ev.Name, "op", ev.Op.String())
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Info("record: device watch error", "error", werr.Error())
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		w.Close()
	}
}

// notifyReady tells systemd (if this process was started as a Type=notify
// unit) that startup is complete. It is a no-op outside systemd.
func notifyReady(log logging.Logger) {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug("record: systemd readiness notify unavailable", "error", err.Error())
	}
}

// startWatchdog pings systemd's watchdog at half the interval systemd
// configured (WatchdogSec=), if any, so a hung capture gets restarted
// by systemd rather than silently stalling forever.
func startWatchdog(log logging.Logger) func() {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return func() {}
	}
	t := time.NewTicker(interval / 2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
					log.Debug("record: systemd watchdog notify failed", "error", err.Error())
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		t.Stop()
		close(done)
	}
}
