/*
NAME
  main.go

DESCRIPTION
  teletext is the command-line entry point for the VBI/WST Teletext
  recovery pipeline: subcommands wire a chunked byte stream through bit
  recovery or packet filtering, pagination, and subpage squashing, to
  one or more output sinks.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is the teletext CLI: filter, squash, record, deconvolve
// and slice subcommands over the VBI/WST Teletext recovery pipeline,
// plus stubs for the collaborators that live outside this repo
// (spellcheck, service, interactive, urls, html, vbiview).
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
)

// Logging configuration: a size/age-rotated file log plus stderr for
// interactive use.
const (
	logPath      = "/var/log/teletext/teletext.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// version is the current software version.
const version = "v1.0.0"

// command implements one teletext subcommand.
type command struct {
	usage string
	run   func(args []string, log logging.Logger) error
}

// commands is the subcommand dispatch table. filter, squash, record,
// deconvolve and slice are implemented against the core recovery
// pipeline; the remainder name collaborators outside this repo and
// reject with a clear message rather than implementing them here.
var commands = map[string]command{
	"slice":       {"teletext slice [flags]", runSlice},
	"deconvolve":  {"teletext deconvolve [flags]", runDeconvolve},
	"filter":      {"teletext filter [flags]", runFilter},
	"squash":      {"teletext squash [flags]", runSquash},
	"record":      {"teletext record [flags]", runRecord},
	"spellcheck":  {"teletext spellcheck [flags]", stubCommand("spellcheck", "dictionary-backed spell-checking is a collaborator outside this repo's scope")},
	"service":     {"teletext service [flags]", stubCommand("service", "CELP audio synthesis is experimental and out of scope; use 'filter -celp' to capture raw CELP frames instead")},
	"interactive": {"teletext interactive [flags]", stubCommand("interactive", "the on-screen emulator is a terminal/pager collaborator outside this repo's scope")},
	"urls":        {"teletext urls [flags]", stubCommand("urls", "HTML service URL wiring is a collaborator outside this repo's scope")},
	"html":        {"teletext html [flags]", stubCommand("html", "HTML rendering is a collaborator outside this repo's scope")},
	"vbiview":     {"teletext vbiview [flags]", stubCommand("vbiview", "the OpenGL raw-sample viewer is a collaborator outside this repo's scope")},
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches to the named subcommand and returns the process exit
// code: 0 on clean EOF or SIGINT, non-zero on unreadable input or
// invalid config.
func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "teletext: unknown command %q\n", args[0])
		usage()
		return 2
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting teletext", "version", version, "command", args[0])

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		log.Info("interrupt received, draining pipeline")
		close(interrupted)
	}()

	if err := cmd.run(args[1:], log); err != nil {
		log.Error("command failed", "command", args[0], "error", err.Error())
		fmt.Fprintf(os.Stderr, "teletext %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: teletext <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", name, commands[name].usage)
	}
}

// stubCommand returns a command.run implementation for a collaborator
// not built into this binary: it rejects the command with a clear
// message rather than crashing.
func stubCommand(name, reason string) func([]string, logging.Logger) error {
	return func(args []string, log logging.Logger) error {
		return fmt.Errorf("%s: not implemented in this build: %s", name, reason)
	}
}
