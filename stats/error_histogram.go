/*
NAME
  error_histogram.go

DESCRIPTION
  error_histogram.go provides ErrorHistogram, a statistics tap binning
  Packets by their aggregated per-field error count, with a Render
  method drawing its snapshot as a PNG chart via RenderHistogram, the
  renderer the `bar` output sink also uses for its own counts.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stats

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
)

// ErrorHistogram bins Packets by the total number of corrected +
// uncorrectable fields reported by Packet.Summary. A Packet with a
// perfectly clean decode falls in bin 0.
type ErrorHistogram struct {
	in   seq.Seq[*packet.Packet]
	fill byte
	binCounter
}

// NewErrorHistogram wraps in with an ErrorHistogram tap. fill is passed
// through to Packet.Summary to decode displayable rows.
func NewErrorHistogram(in seq.Seq[*packet.Packet], fill byte) *ErrorHistogram {
	return &ErrorHistogram{in: in, fill: fill}
}

// Next returns the next Packet unchanged, after updating counters.
func (h *ErrorHistogram) Next() (*packet.Packet, bool) {
	p, ok := h.in.Next()
	if !ok {
		return nil, false
	}
	e := p.Summary(h.fill)
	h.add(e.Corrected + e.Uncorrectable)
	return p, true
}

// Snapshot returns error-count -> packet count.
func (h *ErrorHistogram) Snapshot() map[int]int { return h.snapshot() }

// Render draws the current snapshot as a bar chart (one bar per error
// count, ascending) and writes it to w as a PNG.
func (h *ErrorHistogram) Render(w io.Writer) error {
	return RenderHistogram(h.Snapshot(), "Packet error counts", "errors per packet", w)
}

// RenderHistogram draws a bin -> count map as a bar chart (bins in
// ascending order) and writes it to w as a PNG. It is the shared
// rendering path behind ErrorHistogram.Render and the `bar` output
// sink, which accumulates its own bin counts outside of a tap.
func RenderHistogram(snap map[int]int, title, xLabel string, w io.Writer) error {
	keys := make([]int, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	values := make(plotter.Values, len(keys))
	labels := make([]string, len(keys))
	for i, k := range keys {
		values[i] = float64(snap[k])
		labels[i] = fmt.Sprintf("%d", k)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "packets"
	p.X.Label.Text = xLabel

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("stats: building bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("stats: rendering bar chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
