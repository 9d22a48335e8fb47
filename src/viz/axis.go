package viz

import (
	"math"
	"strconv"
	"strings"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

// Axis derivation: unit detection, magnitude scaling, tick generation, and
// the left-gutter width that anchors both the plot and the legend columns.

// DeriveAxisUnit finds a common value unit for the observations.
// Preference order:
//  1. exactly one distinct non-empty unit string across all rows;
//  2. exactly one distinct indicator name, with a unit extractable from
//     its trailing "( … )" suffix;
//  3. none (empty string).
func DeriveAxisUnit(points []models.Observation) string {
	units := map[string]struct{}{}
	for _, p := range points {
		if u := strings.TrimSpace(p.Unit); u != "" {
			units[u] = struct{}{}
		}
	}
	if len(units) == 1 {
		for u := range units {
			return u
		}
	}
	names := map[string]struct{}{}
	for _, p := range points {
		names[p.IndicatorName] = struct{}{}
	}
	if len(names) == 1 {
		for n := range names {
			return extractUnitFromIndicatorName(n)
		}
	}
	return ""
}

// extractUnitFromIndicatorName pulls the content of the last parenthesized
// group, e.g. "GDP (current US$)" -> "current US$".
func extractUnitFromIndicatorName(name string) string {
	open := strings.LastIndex(name, "(")
	closing := strings.LastIndex(name, ")")
	if open < 0 || closing < 0 || closing <= open {
		return ""
	}
	return strings.TrimSpace(name[open+1 : closing])
}

// IsPercentageLike reports whether a unit must never be magnitude-scaled.
func IsPercentageLike(unit string) bool {
	u := strings.ToLower(unit)
	return strings.Contains(u, "%") ||
		strings.Contains(u, "percent") ||
		strings.Contains(u, "per cent")
}

// ChooseAxisScale picks a single Y-axis divisor and its human label based
// on the overall magnitude, e.g. (1e6, "millions").
func ChooseAxisScale(maxAbs float64) (float64, string) {
	switch {
	case maxAbs >= 1e12:
		return 1e12, "trillions"
	case maxAbs >= 1e9:
		return 1e9, "billions"
	case maxAbs >= 1e6:
		return 1e6, "millions"
	case maxAbs >= 1e3:
		return 1e3, "thousands"
	default:
		return 1, ""
	}
}

// axisTitle composes the Y-axis description from the derived unit and the
// scale word: "current US$ (millions)", "annual %", "Value (thousands)",
// or plain "Value".
func axisTitle(unit, scaleWord string) string {
	switch {
	case unit != "" && scaleWord == "":
		return unit
	case unit != "":
		return unit + " (" + scaleWord + ")"
	case scaleWord != "":
		return "Value (" + scaleWord + ")"
	default:
		return "Value"
	}
}

// formatTickValue formats one scaled tick value: no decimals from 100 up,
// one decimal from 10 up, two below, with locale separators applied.
func formatTickValue(v float64, nf numberFormat) string {
	a := math.Abs(v)
	prec := 2
	if a >= 100 {
		prec = 0
	} else if a >= 10 {
		prec = 1
	}
	return formatGrouped(v, prec, nf)
}

const (
	axisFontPx     = 12
	axisTitlePx    = 16
	yTickIntervals = 10
	maxXTickLabels = 12
	gutterPadding  = 18
	gutterMin      = 48
	gutterMax      = 140
)

// computeLeftGutterWidth sizes the Y label area from the widest formatted
// tick label over the scaled range, padded for tick marks and clamped to a
// sensible band. The samples match the evenly spaced ticks the renderer
// draws, so the gutter is exact rather than heuristic.
func computeLeftGutterWidth(yMinScaled, yMaxScaled float64, nf numberFormat) int {
	maxPx := 0
	for i := 0; i <= yTickIntervals; i++ {
		t := float64(i) / float64(yTickIntervals)
		v := yMinScaled + (yMaxScaled-yMinScaled)*t
		if w := estimateTextWidth(formatTickValue(v, nf), axisFontPx); w > maxPx {
			maxPx = w
		}
	}
	w := maxPx + gutterPadding
	if w < gutterMin {
		w = gutterMin
	}
	if w > gutterMax {
		w = gutterMax
	}
	return w
}

// valueTick is one labeled position on an axis.
type valueTick struct {
	value float64
	label string
}

// makeYTicks produces evenly spaced ticks across the scaled value range.
func makeYTicks(yMinScaled, yMaxScaled float64, nf numberFormat) []valueTick {
	ticks := make([]valueTick, 0, yTickIntervals+1)
	for i := 0; i <= yTickIntervals; i++ {
		t := float64(i) / float64(yTickIntervals)
		v := yMinScaled + (yMaxScaled-yMinScaled)*t
		ticks = append(ticks, valueTick{value: v, label: formatTickValue(v, nf)})
	}
	return ticks
}

// makeYearTicks produces integer year ticks, at most maxXTickLabels of
// them, stepping by a whole number of years.
func makeYearTicks(minYear, maxYear int) []valueTick {
	span := maxYear - minYear
	count := span + 1
	if count > maxXTickLabels {
		count = maxXTickLabels
	}
	step := 1
	if count > 1 {
		step = int(math.Ceil(float64(span) / float64(count-1)))
	}
	ticks := []valueTick{}
	for y := minYear; y <= maxYear; y += step {
		ticks = append(ticks, valueTick{value: float64(y), label: strconv.Itoa(y)})
	}
	if last := ticks[len(ticks)-1].value; last != float64(maxYear) {
		ticks = append(ticks, valueTick{value: float64(maxYear), label: strconv.Itoa(maxYear)})
	}
	return ticks
}
