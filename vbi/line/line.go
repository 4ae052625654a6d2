/*
NAME
  line.go

DESCRIPTION
  line.go provides Line, which owns one VBI sample vector and performs
  gain/DC normalization, clock-run-in lock, and the two bit-recovery
  algorithms (Slice and Deconvolve) that turn a locked line into a
  Teletext Packet.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package line provides VBI line normalization and the two Teletext bit
// recovery algorithms, Slice and Deconvolve.
package line

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bbjunkie/vhs-teletext/teletext/packet"
	"github.com/bbjunkie/vhs-teletext/vbi/config"
)

// framingCode is the byte value of the Teletext framing code once the
// preceding clock-run-in bits have been stripped, bits read LSB-first.
const framingCode = 0xe4

// quietWindow is the number of leading (post-trim) samples assumed to
// precede the clock-run-in, used to estimate the per-line DC level and
// gain.
const quietWindow = 64

// Accelerator is a hardware-backed bit recovery implementation. Given a
// locked line's normalized samples, its bit-centre indices and the
// samples-per-bit ratio, it returns the 360 bit decisions, or ok=false
// if the device is unavailable, in which case the caller falls back to
// the CPU path. The CPU path is authoritative: an Accelerator must
// reproduce its decisions.
type Accelerator interface {
	Deconvolve(samples []float64, centres []int, spb float64) (bits [config.BitsPerPacket]byte, ok bool)
}

// accel is the process-wide accelerator, nil when none has been probed.
var accel Accelerator

// SetAccelerator installs an accelerated backend for Deconvolve.
// Passing nil reverts to the CPU path.
func SetAccelerator(a Accelerator) { accel = a }

// Line owns one VBI line's samples plus the state derived from
// normalizing it: gain/DC corrected samples, the CRI lock position, and
// the 360 bit-centre offsets used by the two bit-recovery methods.
type Line struct {
	cfg       config.Config
	seq       int
	extraRoll int

	samples    []float64
	isTeletext bool
	criPos     int
	criMid     float64
	bitCentres [config.BitsPerPacket]int
}

// New builds a Line from one raw VBI sample vector (length cfg.LineLength)
// and immediately normalizes it: trim, DC/gain correction, and CRI lock.
// extraRoll is an integer sample bias applied after the CRI is located,
// compensating for a fixed per-capture-card skew.
func New(cfg config.Config, raw []byte, seq, extraRoll int) *Line {
	l := &Line{cfg: cfg, seq: seq, extraRoll: extraRoll}
	l.normalize(raw)
	return l
}

// Seq returns the line's sequence number.
func (l *Line) Seq() int { return l.seq }

// IsTeletext reports whether the clock-run-in was located with sufficient
// confidence for bit recovery to be attempted.
func (l *Line) IsTeletext() bool { return l.isTeletext }

func (l *Line) normalize(raw []byte) {
	trim := l.cfg.LineTrim
	if trim > len(raw) {
		trim = len(raw)
	}
	trimmed := raw[trim:]

	n := quietWindow
	if n > len(trimmed) {
		n = len(trimmed)
	}
	quiet := make([]float64, n)
	for i := range quiet {
		quiet[i] = float64(trimmed[i])
	}
	mean, std := stat.MeanStdDev(quiet, nil)
	if std == 0 {
		std = 1
	}

	samples := make([]float64, len(trimmed))
	for i, b := range trimmed {
		samples[i] = (float64(b) - mean) / std
	}
	l.samples = samples

	kernel := l.cfg.MatchedFilterKernel()
	lo := l.cfg.LineStartRange[0] - trim
	hi := l.cfg.LineStartRange[1] - trim
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples)-len(kernel) {
		hi = len(samples) - len(kernel)
	}

	bestPos, bestCorr := lo, 0.0
	for pos := lo; pos <= hi; pos++ {
		corr := floats.Dot(samples[pos:pos+len(kernel)], kernel) / float64(len(kernel))
		if math.Abs(corr) > math.Abs(bestCorr) {
			bestCorr, bestPos = corr, pos
		}
	}

	if math.Abs(bestCorr) < l.cfg.CRIThreshold {
		l.isTeletext = false
		return
	}
	l.isTeletext = true

	start := bestPos + l.extraRoll
	offs := l.cfg.BitOffsets()
	for i, o := range offs {
		idx := start + int(math.Round(o))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		l.bitCentres[i] = idx
	}
	l.criPos = bestPos

	// The clock-run-in alternates 1 and 0, so its bit-centre samples are
	// guaranteed to visit both signal levels. The midpoint between the
	// extremes anchors each bit decision against the line's actual swing.
	hiLvl, loLvl := l.samples[l.bitCentres[0]], l.samples[l.bitCentres[0]]
	for _, c := range l.bitCentres[:config.CRIBits] {
		v := l.samples[c]
		if v > hiLvl {
			hiLvl = v
		}
		if v < loLvl {
			loLvl = v
		}
	}
	l.criMid = (hiLvl + loLvl) / 2
}

// inSet reports whether v is present in set. An empty set matches
// everything, matching the CLI's convention of "no filter given" meaning
// "allow all".
func inSet(set []int, v int) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// midpoint returns the mean of the 8 samples surrounding centre.
func (l *Line) midpoint(centre int) float64 {
	lo := centre - 4
	hi := centre + 4
	if lo < 0 {
		lo = 0
	}
	if hi > len(l.samples) {
		hi = len(l.samples)
	}
	if hi <= lo {
		return 0
	}
	return stat.Mean(l.samples[lo:hi], nil)
}

// assemble reads bitFn for all 360 bits, packs them LSB-first into 45
// bytes, checks the framing code, and filters on magazine/row.
func (l *Line) assemble(mags, rows []int, bitFn func(i int) byte) (*packet.Packet, bool) {
	var raw [45]byte
	for j := 0; j < 45; j++ {
		var b byte
		for k := 0; k < 8; k++ {
			b |= bitFn(j*8+k) << uint(k)
		}
		raw[j] = b
	}

	if !criByte(raw[0]) || !criByte(raw[1]) || raw[2] != framingCode {
		return nil, false
	}

	var payload [packet.Size]byte
	copy(payload[:], raw[3:])
	p := packet.New(payload, l.seq)

	m := p.MRAG()
	if !inSet(mags, m.Magazine) || !inSet(rows, m.Row) {
		return nil, false
	}
	return p, true
}

// criByte reports whether b is a plausible clock-run-in byte: the
// alternating preamble reads as 0x55 or 0xaa depending on which edge the
// lock landed on.
func criByte(b byte) bool {
	return b == 0x55 || b == 0xaa
}

// Slice recovers a Packet by thresholding the sample at each bit-centre
// against a blend of the local midpoint and the CRI-derived line mid
// level; the local term tracks DC tilt across the line, the CRI term
// keeps runs of identical bits from pulling the threshold onto
// themselves. It is the appropriate method for clamped, post-slicer VBI
// captures.
func (l *Line) Slice(mags, rows []int) (*packet.Packet, bool) {
	if !l.isTeletext {
		return nil, false
	}
	return l.assemble(mags, rows, func(i int) byte {
		centre := l.bitCentres[i]
		thr := (l.midpoint(centre) + l.criMid) / 2
		if l.samples[centre] > thr {
			return 1
		}
		return 0
	})
}

// Deconvolve recovers a Packet from raw, unclamped VBI samples where
// adjacent bits bleed into each other. Each bit is recovered from a
// Hamming-tapered window spanning roughly 5 bit periods (+-2 bits)
// around its centre, matched-filtered in the frequency domain against an
// ideal single-bit pulse shape; the correlation's sign at zero lag is the
// bit decision. This is the CPU-only path; an Accelerator may provide a
// GPU-backed equivalent meeting the same output contract.
func (l *Line) Deconvolve(mags, rows []int) (*packet.Packet, bool) {
	if !l.isTeletext {
		return nil, false
	}
	spb := l.cfg.SamplesPerBit()
	if accel != nil {
		if bits, ok := accel.Deconvolve(l.samples, l.bitCentres[:], spb); ok {
			return l.assemble(mags, rows, func(i int) byte { return bits[i] })
		}
	}
	return l.assemble(mags, rows, func(i int) byte {
		return l.deconvolveBit(l.bitCentres[i], spb)
	})
}

func (l *Line) deconvolveBit(centre int, spb float64) byte {
	winLen := int(5 * spb)
	if winLen < 1 {
		winLen = 1
	}
	lo := centre - winLen/2
	hi := lo + winLen
	if lo < 0 {
		lo = 0
	}
	if hi > len(l.samples) {
		hi = len(l.samples)
	}
	win := append([]float64(nil), l.samples[lo:hi]...)
	if len(win) == 0 {
		return 0
	}

	tapered := make([]float64, len(win))
	hw := window.Hamming(len(win))
	for i, v := range win {
		tapered[i] = (v - l.criMid) * hw[i]
	}

	kernel := symbolPulse(len(win), spb)
	corr := matchedFilter(tapered, kernel)

	// corr has length 2*len(win)-1; the centre tap is the zero-lag value.
	zeroLag := corr[len(win)-1]
	if zeroLag > 0 {
		return 1
	}
	return 0
}

// symbolPulse returns a symmetric rectangular pulse of n samples, width
// samples wide and centred in the slice, used as the ideal single-bit
// matched filter kernel.
func symbolPulse(n int, width float64) []float64 {
	k := make([]float64, n)
	mid := float64(n-1) / 2
	half := width / 2
	for i := range k {
		if math.Abs(float64(i)-mid) <= half {
			k[i] = 1
		}
	}
	return k
}

// matchedFilter computes the linear convolution of x and h via FFT,
// matching the construction used for FIR filtering elsewhere in this
// codebase's ancestry (PCM selective-frequency filters): pad to the next
// power of two, multiply spectra, inverse-transform, and trim to the
// linear convolution length.
func matchedFilter(x, h []float64) []float64 {
	convLen := len(x) + len(h) - 1
	padLen := int(math.Pow(2, math.Ceil(math.Log2(float64(convLen)))))

	xp := make([]float64, padLen)
	copy(xp, x)
	hp := make([]float64, padLen)
	copy(hp, h)

	xf, hf := fft.FFTReal(xp), fft.FFTReal(hp)
	yf := make([]complex128, padLen)
	for i := range xf {
		yf[i] = xf[i] * hf[i]
	}

	iy := fft.IFFT(yf)
	y := make([]float64, convLen)
	for i := range y {
		y[i] = real(iy[i])
	}
	return y
}
