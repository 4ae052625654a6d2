/*
NAME
  config.go

DESCRIPTION
  config.go provides per-capture-card geometry and timing parameters used
  to recover a Teletext bitstream from raw VBI samples: samples per line,
  sample rate, the CRI search window, and the values derived from them:
  samples per bit, the 360 bit-centre offsets and the CRI matched filter
  kernel. No separate resampling kernel is derived; bit recovery works
  directly on the samples around each bit centre.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the per-capture-card configuration used by the
// vbi package to locate and resample a Teletext line.
package config

import (
	"fmt"

	"github.com/ausocean/utils/logging"
)

// BitsPerPacket is the number of bits in one Teletext line, including the
// 3-byte clock-run-in + framing code.
const BitsPerPacket = 45 * 8

// WSTBitRate is the WST Teletext baseband bit rate, 6.9375 Mbit/s.
const WSTBitRate = 6.9375e6

// CRIBits is the number of alternating bits in the clock-run-in preamble
// used to build the matched filter.
const CRIBits = 16

// Config holds the per-card geometry needed to locate and resample a
// Teletext line. Zero-value fields are invalid; use New to build one from
// a named profile.
type Config struct {
	// Name is the capture card profile this Config was derived from.
	Name string

	// LineLength is the number of samples captured per video line.
	LineLength int

	// SampleRate is the capture card's sample rate in Hz.
	SampleRate float64

	// LineTrim is the number of leading samples ignored before the DC/gain
	// estimate and CRI search begin.
	LineTrim int

	// LineStartRange is the inclusive [lo, hi] sample index window searched
	// for the clock-run-in.
	LineStartRange [2]int

	// BitRate is the baseband bit rate of the Teletext signal, nominally
	// WSTBitRate.
	BitRate float64

	// CRIThreshold is the minimum per-sample matched-filter correlation
	// magnitude, in gain-normalized sample units, required to accept a
	// CRI lock.
	CRIThreshold float64

	// Logger receives warnings about invalid or defaulted fields.
	Logger logging.Logger
}

// profiles holds the known named capture card geometries.
var profiles = map[string]Config{
	"bt8x8": {
		Name:           "bt8x8",
		LineLength:     2048,
		SampleRate:     27e6,
		LineTrim:       32,
		LineStartRange: [2]int{80, 140},
		BitRate:        WSTBitRate,
		CRIThreshold:   0.6,
	},
	"bt878": {
		Name:           "bt878",
		LineLength:     2048,
		SampleRate:     35.468e6,
		LineTrim:       64,
		LineStartRange: [2]int{100, 180},
		BitRate:        WSTBitRate,
		CRIThreshold:   0.6,
	},
}

// New returns the named card profile with any non-zero fields of
// overrides replacing the profile's defaults. An unknown card name is a
// ConfigInvalid error.
func New(card string, overrides Config) (Config, error) {
	base, ok := profiles[card]
	if !ok {
		return Config{}, fmt.Errorf("config: unknown capture card profile %q", card)
	}

	if overrides.LineLength != 0 {
		base.LineLength = overrides.LineLength
	}
	if overrides.SampleRate != 0 {
		base.SampleRate = overrides.SampleRate
	}
	if overrides.LineTrim != 0 {
		base.LineTrim = overrides.LineTrim
	}
	if overrides.LineStartRange != [2]int{} {
		base.LineStartRange = overrides.LineStartRange
	}
	if overrides.BitRate != 0 {
		base.BitRate = overrides.BitRate
	}
	if overrides.CRIThreshold != 0 {
		base.CRIThreshold = overrides.CRIThreshold
	}
	if overrides.Logger != nil {
		base.Logger = overrides.Logger
	}

	if base.LineLength <= 0 {
		return Config{}, fmt.Errorf("config: invalid line length %d", base.LineLength)
	}
	if base.LineStartRange[0] < 0 || base.LineStartRange[1] <= base.LineStartRange[0] || base.LineStartRange[1] > base.LineLength {
		return Config{}, fmt.Errorf("config: invalid line start range %v", base.LineStartRange)
	}

	return base, nil
}

// LogInvalidField logs that a field was invalid or unset and that def is
// being used in its place. It is a no-op if Logger is nil.
func (c Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// SamplesPerBit returns the number of raw samples spanned by one Teletext
// bit period at this config's sample rate and bit rate.
func (c Config) SamplesPerBit() float64 {
	return c.SampleRate / c.BitRate
}

// BitOffsets returns the 360 bit-centre sample offsets (relative to the
// start of the CRI) for one 45-byte Teletext line, spaced by
// SamplesPerBit.
func (c Config) BitOffsets() [BitsPerPacket]float64 {
	var offs [BitsPerPacket]float64
	spb := c.SamplesPerBit()
	for i := range offs {
		offs[i] = float64(i)*spb + spb/2
	}
	return offs
}

// MatchedFilterKernel returns a unit-amplitude alternating +1/-1 kernel,
// one value per sample, spanning CRIBits bits of the clock-run-in
// preamble (0x55 0x55 repeating). It is used to locate the CRI by
// cross-correlation against raw samples.
func (c Config) MatchedFilterKernel() []float64 {
	spb := c.SamplesPerBit()
	n := int(float64(CRIBits) * spb)
	k := make([]float64, n)
	for i := range k {
		bitIdx := int(float64(i) / spb)
		if bitIdx%2 == 0 {
			k[i] = 1
		} else {
			k[i] = -1
		}
	}
	return k
}
