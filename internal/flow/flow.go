// Package flow lays out the stacked proportional bars that visualize
// power flows. Given a pixel budget and a set of non-negative magnitudes
// it assigns each segment a position and width and decides whether an
// inline label fits and which text color keeps it readable.
package flow

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/sweeney/evcc-panel/internal/format"
)

// Mode selects the labelling strategy for a composite bar.
type Mode int

const (
	// ModeAbbrev shows a fixed short tag per segment, only when it fits
	// without clipping. Used for the inbound/outbound flow bars.
	ModeAbbrev Mode = iota
	// ModeValue shows the formatted power value centered in the segment,
	// with a contrast-picked text color. Used for overlay bars.
	ModeValue
)

// Segments below this total are not worth a sliver bar; the whole
// composite is hidden instead.
const minTotalPower = 1.0

// Minimum segment width for a numeric value label.
const minValueLabelWidth = 40

// Padding added to a measured tag so it never renders clipped.
const tagPadding = 4

// Text colors for value-mode labels, picked by background luminance.
const (
	darkText  = "#333333"
	lightText = "#ffffff"
)

// Segment is one power flow feeding a composite bar.
type Segment struct {
	Power float64 // watts, negative treated as zero
	Tag   string  // fixed short label for ModeAbbrev
	Color string  // fill color as "#rrggbb", used for contrast in ModeValue
}

// SegmentLayout is the computed placement of one segment.
type SegmentLayout struct {
	Visible   bool
	X         int
	Width     int
	Label     string
	ShowLabel bool
	TextColor string
}

// Layout is the computed placement of a whole composite bar.
type Layout struct {
	Visible  bool
	Segments []SegmentLayout
}

// TextMeasurer reports the rendered pixel width of a label at the active
// font. The renderer may supply its own; the default assumes a fixed
// glyph advance.
type TextMeasurer interface {
	Width(text string) int
}

// GlyphMeasurer measures text as display cells times a fixed per-cell
// advance, approximating the panel's small label font.
type GlyphMeasurer struct {
	// CellWidth is the pixel advance per display cell.
	CellWidth int
}

// Width returns the approximate rendered width of text in pixels.
func (g GlyphMeasurer) Width(text string) int {
	cw := g.CellWidth
	if cw <= 0 {
		cw = 7
	}
	return runewidth.StringWidth(text) * cw
}

// Allocator computes composite bar layouts.
type Allocator struct {
	measure TextMeasurer
}

// NewAllocator creates an Allocator using the given measurer, or the
// default GlyphMeasurer when nil.
func NewAllocator(measure TextMeasurer) *Allocator {
	if measure == nil {
		measure = GlyphMeasurer{}
	}
	return &Allocator{measure: measure}
}

// Allocate distributes barWidth pixels across the segments in proportion
// to their magnitudes. If the total magnitude is below 1.0 the whole bar
// is hidden. Positive segments get at least 1 pixel and are packed
// left-to-right with no gaps; widths are floored, so the rendered bar is
// never wider than barWidth.
func (a *Allocator) Allocate(barWidth int, segments []Segment, mode Mode) Layout {
	out := Layout{Segments: make([]SegmentLayout, len(segments))}

	var total float64
	for _, s := range segments {
		if s.Power > 0 {
			total += s.Power
		}
	}
	if total < minTotalPower {
		return out
	}
	out.Visible = true

	x := 0
	for i, s := range segments {
		if s.Power <= 0 {
			continue
		}
		w := int(s.Power / total * float64(barWidth))
		if w < 1 {
			w = 1
		}
		seg := SegmentLayout{Visible: true, X: x, Width: w}
		switch mode {
		case ModeAbbrev:
			if s.Tag != "" && w >= a.measure.Width(s.Tag)+tagPadding {
				seg.Label = s.Tag
				seg.ShowLabel = true
				seg.TextColor = darkText
			}
		case ModeValue:
			if w >= minValueLabelWidth {
				seg.Label = format.Power(s.Power)
				seg.ShowLabel = true
				seg.TextColor = contrastColor(s.Color)
			}
		}
		out.Segments[i] = seg
		x += w
	}
	return out
}

// contrastColor picks dark or light label text against a fill color using
// BT.709-weighted sRGB luminance. Unparseable colors get dark text.
func contrastColor(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return darkText
	}
	lum := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
	if lum > 0.5 {
		return darkText
	}
	return lightText
}
