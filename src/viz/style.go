package viz

import (
	"math"
	"math/bits"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Style assignment maps series identity to visual encoding. The country
// string is the primary identity (base hue or palette slot) and the
// indicator string drives redundant variation (shade, marker, dash), so
// every series of one country reads as a family while indicators stay
// distinguishable.
//
// All derivation runs through hash64 below. Determinism across builds and
// platforms matters here: rendered output feeds visual-regression tests,
// so the hash must never depend on a runtime-seeded or version-dependent
// hasher.

// MarkerShape selects the point glyph for scatter-style rendering.
type MarkerShape int

const (
	MarkerCircle MarkerShape = iota
	MarkerSquare
	MarkerTriangle
	MarkerDiamond
	MarkerCross
	MarkerX
)

// LineDash selects the stroke pattern for line-style rendering.
type LineDash int

const (
	DashSolid LineDash = iota
	DashDashed
	DashDotted
	DashDotDash
)

// strokeDashArray returns the renderer dash pattern for a LineDash.
// Solid returns nil, which resets to a continuous stroke.
func (d LineDash) strokeDashArray() []float64 {
	switch d {
	case DashDashed:
		return []float64{4, 3}
	case DashDotted:
		return []float64{1.5, 3}
	case DashDotDash:
		return []float64{6, 2, 1.5, 2}
	default:
		return nil
	}
}

// StyleMode selects the color-assignment strategy.
type StyleMode int

const (
	// StyleDefault colors series by their position in the sorted series
	// list, cycling through the Office palette.
	StyleDefault StyleMode = iota
	// StyleCountryHue gives each country a stable hue on the full color
	// wheel, with indicator-driven lightness/saturation offsets.
	StyleCountryHue
	// StyleCountryPalette gives each country a stable Office palette slot,
	// with indicator-driven brightness variation.
	StyleCountryPalette
)

// ParseStyleMode maps a CLI string to a StyleMode. Unknown values
// default to StyleDefault.
func ParseStyleMode(s string) StyleMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "country-hue", "hue":
		return StyleCountryHue
	case "country-palette", "palette":
		return StyleCountryPalette
	default:
		return StyleDefault
	}
}

// SeriesStyle is the complete visual encoding for one series. It is a pure
// function of (SeriesKey, mode, index) and is recomputed on every render.
type SeriesStyle struct {
	Color  drawing.Color
	Hue    float64 // base hue in degrees, informational
	Marker MarkerShape
	Dash   LineDash
}

// officePalette is the Microsoft Office (2013+) chart series palette.
// Order: blue, orange, gray, gold, light blue, green, dark blue,
// dark orange, dark gray, brownish gold.
var officePalette = []drawing.Color{
	{R: 68, G: 114, B: 196, A: 255},  // #4472C4
	{R: 237, G: 125, B: 49, A: 255},  // #ED7D31
	{R: 165, G: 165, B: 165, A: 255}, // #A5A5A5
	{R: 255, G: 192, B: 0, A: 255},   // #FFC000
	{R: 91, G: 155, B: 213, A: 255},  // #5B9BD5
	{R: 112, G: 173, B: 71, A: 255},  // #70AD47
	{R: 38, G: 68, B: 120, A: 255},   // #264478
	{R: 158, G: 72, B: 14, A: 255},   // #9E480E
	{R: 99, G: 99, B: 99, A: 255},    // #636363
	{R: 153, G: 115, B: 0, A: 255},   // #997300
}

// hash64 is the single pinned string hash for all style derivation:
// XXH64 of the raw UTF-8 bytes, seed 0.
func hash64(s string) uint64 { return xxhash.Sum64String(s) }

// mapToRange maps the full uint64 domain linearly onto [min,max].
func mapToRange(x uint64, min, max float64) float64 {
	t := float64(x) / float64(math.MaxUint64)
	return min + t*(max-min)
}

func clamp01(x float64) float64 { return math.Min(1, math.Max(0, x)) }

// StyleFor derives the style for one series. index is the series' position
// in the sorted series list and is only consulted in StyleDefault mode.
func StyleFor(mode StyleMode, index int, country, indicator string) SeriesStyle {
	ih := hash64(indicator)
	st := SeriesStyle{
		Marker: MarkerShape(ih % 6),
		Dash:   LineDash(bits.RotateLeft64(ih, 16) % 4),
	}
	switch mode {
	case StyleCountryHue:
		hue := float64(hash64(country) % 360)
		dl := mapToRange(bits.RotateLeft64(ih, 13), -0.18, 0.18)
		ds := mapToRange(bits.RotateLeft64(ih, 29), -0.10, 0.10)
		st.Hue = hue
		st.Color = hslToColor(hue, clamp01(0.60+ds), clamp01(0.55+dl))
	case StyleCountryPalette:
		slot := int(hash64(country) % uint64(len(officePalette)))
		base := officePalette[slot]
		// Brightness multiplier in [0.7,1.3), clamped per channel.
		factor := 0.7 + 0.6*float64(ih%100)/100.0
		st.Hue = float64(slot)
		st.Color = drawing.Color{
			R: scaleChannel(base.R, factor),
			G: scaleChannel(base.G, factor),
			B: scaleChannel(base.B, factor),
			A: 255,
		}
	default:
		st.Color = officePalette[index%len(officePalette)]
	}
	return st
}

func scaleChannel(c uint8, factor float64) uint8 {
	v := float64(c) * factor
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}

// hslToColor converts HSL to RGB with the standard sector formula.
// h in degrees, s and l in [0,1].
func hslToColor(h, s, l float64) drawing.Color {
	h = math.Mod(h, 360) / 360
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return drawing.Color{R: v, G: v, B: v, A: 255}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	to255 := func(t float64) uint8 {
		return uint8(math.Round(hueToRGB(p, q, t) * 255))
	}
	return drawing.Color{
		R: to255(h + 1.0/3.0),
		G: to255(h),
		B: to255(h - 1.0/3.0),
		A: 255,
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
