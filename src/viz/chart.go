// Package viz renders multi-series indicator charts to PNG or SVG.
//
// The pipeline owns its geometry end to end: axis gutters, the caption row,
// tick placement, and external legend panels are all computed from the same
// deterministic text metrics, so a canvas renders identically on every
// platform and the reserved legend space always matches the drawn legend.
package viz

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/logx"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

// LegendMode selects where the legend is placed.
type LegendMode int

const (
	LegendRight LegendMode = iota
	LegendTop
	LegendBottom
	LegendInside
	LegendHidden
)

// ParseLegendMode maps a CLI string to a LegendMode. Unknown values
// default to Right.
func ParseLegendMode(s string) LegendMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return LegendTop
	case "bottom":
		return LegendBottom
	case "inside":
		return LegendInside
	case "hidden", "none":
		return LegendHidden
	default:
		return LegendRight
	}
}

// PlotKind selects how series are rendered.
type PlotKind int

const (
	KindLine PlotKind = iota
	KindScatter
	KindLinePoints
	KindArea
	KindStackedArea
	KindGroupedBar
	KindLoess
)

// ParsePlotKind maps a CLI string to a PlotKind. Unknown values default
// to Line.
func ParsePlotKind(s string) PlotKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scatter":
		return KindScatter
	case "line-points", "linepoints", "both":
		return KindLinePoints
	case "area":
		return KindArea
	case "stacked-area", "stackedarea", "stacked":
		return KindStackedArea
	case "grouped-bar", "groupedbar", "bar":
		return KindGroupedBar
	case "loess":
		return KindLoess
	default:
		return KindLine
	}
}

// Options configures one render.
type Options struct {
	Width     int
	Height    int
	Locale    string
	Legend    LegendMode
	Title     string
	Kind      PlotKind
	LoessSpan float64
	Style     StyleMode
}

const (
	chartMargin   = 16
	captionPx     = 24
	captionGap    = 8
	bottomAreaPx  = 56
	rightPanelPct = 85 // plot share of the width with a right legend
	minBandPx     = 40
)

var (
	fontOnce  sync.Once
	chartFont *truetype.Font
	fontErr   error
)

// loadFont resolves the embedded default font once per process.
func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		chartFont, fontErr = chart.GetDefaultFont()
	})
	return chartFont, fontErr
}

// RegisterFonts performs the one-time font setup. Render does this
// implicitly; callers can invoke it up front to surface font errors
// before any rendering work starts.
func RegisterFonts() error {
	_, err := loadFont()
	return err
}

// RenderFile renders to path, picking SVG output for a ".svg" extension and
// PNG otherwise. The file is written atomically via a temp file.
func RenderFile(points []models.Observation, path string, opts Options) error {
	vector := strings.EqualFold(filepath.Ext(path), ".svg")
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chart-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Render(points, tmp, vector, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Render renders points to w as SVG when vector is set, PNG otherwise.
func Render(points []models.Observation, w io.Writer, vector bool, opts Options) error {
	series, err := BuildSeries(points)
	if err != nil {
		return err
	}
	if opts.Width <= 0 {
		opts.Width = 1000
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.LoessSpan <= 0 || opts.LoessSpan > 1 {
		opts.LoessSpan = 0.3
	}
	logx.Debugf("rendering %d series, %dx%d, kind=%d", len(series), opts.Width, opts.Height, opts.Kind)

	// Data ranges. Degenerate spans are widened so the plot always has a
	// nonzero extent to map into.
	minYear, maxYear := yearRange(series)
	if minYear == maxYear {
		minYear--
		maxYear++
	}
	minVal, maxVal := valueRange(series)
	if math.Abs(maxVal-minVal) < 1e-12 {
		minVal--
		maxVal++
	}
	if opts.Kind == KindStackedArea {
		// Stacking changes the value domain: bands start at zero and the
		// top band reaches the per-year sum of positive values.
		minVal, maxVal = stackedValueRange(series, minYear, maxYear)
	}

	nf := formatForLocale(opts.Locale)
	unit := DeriveAxisUnit(points)
	yscale, scaleWord := 1.0, ""
	if unit == "" || !IsPercentageLike(unit) {
		yscale, scaleWord = ChooseAxisScale(math.Max(math.Abs(minVal), math.Abs(maxVal)))
	}
	yMinS := minVal / yscale
	yMaxS := maxVal / yscale

	gutter := computeLeftGutterWidth(yMinS, yMaxS, nf)
	axisXStart := chartMargin + gutter

	entries := legendEntries(series, opts)
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}

	// Split the canvas between plot and legend before any drawing.
	var plan legendPlan
	plotArea := chart.Box{Left: 0, Top: 0, Right: opts.Width, Bottom: opts.Height}
	var legendArea chart.Box
	switch opts.Legend {
	case LegendRight:
		split := opts.Width * rightPanelPct / 100
		plotArea.Right = split
		legendArea = chart.Box{Left: split, Top: 0, Right: opts.Width, Bottom: opts.Height}
	case LegendTop:
		plan = planLegendBand(labels, axisXStart, opts.Width, false)
		h := plan.height
		if h < minBandPx {
			h = minBandPx
		}
		plotArea.Top = h
		legendArea = chart.Box{Left: 0, Top: 0, Right: opts.Width, Bottom: h}
	case LegendBottom:
		plan = planLegendBand(labels, axisXStart, opts.Width, false)
		h := plan.height
		if h < minBandPx {
			h = minBandPx
		}
		top := opts.Height - h
		if top < minBandPx {
			top = minBandPx
		}
		plotArea.Bottom = top
		legendArea = chart.Box{Left: 0, Top: top, Right: opts.Width, Bottom: opts.Height}
	}

	var r chart.Renderer
	if vector {
		r, err = chart.SVG(opts.Width, opts.Height)
	} else {
		r, err = chart.PNG(opts.Width, opts.Height)
	}
	if err != nil {
		return &DrawError{Op: "backend", Err: err}
	}
	font, err := loadFont()
	if err != nil {
		return &DrawError{Op: "font", Err: err}
	}
	r.SetDPI(72) // font points map 1:1 to pixels
	r.SetFont(font)

	// White canvas.
	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(opts.Width, 0)
	r.LineTo(opts.Width, opts.Height)
	r.LineTo(0, opts.Height)
	r.Close()
	r.Fill()

	// Plot box inside the plot area: margins, caption row, axis gutters.
	title := deriveTitle(points, opts.Title)
	plot := chart.Box{
		Left:   plotArea.Left + chartMargin + gutter,
		Top:    plotArea.Top + chartMargin + captionPx + captionGap,
		Right:  plotArea.Right - chartMargin,
		Bottom: plotArea.Bottom - chartMargin - bottomAreaPx,
	}

	drawCaption(r, title, plotArea)
	drawAxes(r, plot, float64(minYear), float64(maxYear), yMinS, yMaxS, minYear, maxYear, nf, axisTitle(unit, scaleWord), plotArea)

	proj := projection{
		plot: plot,
		xMin: float64(minYear), xMax: float64(maxYear),
		yMin: yMinS, yMax: yMaxS,
	}
	drawSeries(r, series, entries, proj, yscale, minYear, maxYear, opts)

	switch opts.Legend {
	case LegendRight:
		drawLegendRight(r, entries, "", legendArea.Left, legendArea.Top, legendArea.Width())
	case LegendTop, LegendBottom:
		drawLegendBand(r, entries, "", plan, legendArea.Top, axisXStart)
	case LegendInside:
		drawLegendInside(r, entries, plot)
	}

	if err := r.Save(w); err != nil {
		return &DrawError{Op: "save", Err: err}
	}
	return nil
}

func yearRange(series []Series) (int, int) {
	minY, maxY := math.MaxInt32, math.MinInt32
	for _, s := range series {
		for _, p := range s.Points {
			if p.Year < minY {
				minY = p.Year
			}
			if p.Year > maxY {
				maxY = p.Year
			}
		}
	}
	return minY, maxY
}

func valueRange(series []Series) (float64, float64) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			if p.Value < minV {
				minV = p.Value
			}
			if p.Value > maxV {
				maxV = p.Value
			}
		}
	}
	return minV, maxV
}

// stackedValueRange returns [0 or data min, max cumulative sum] for the
// stacked-area domain. Negative values are floored at zero when stacking.
func stackedValueRange(series []Series, minYear, maxYear int) (float64, float64) {
	sums := stackValues(series, minYear, maxYear)
	maxV := 0.0
	for _, band := range sums {
		for _, v := range band {
			if v > maxV {
				maxV = v
			}
		}
	}
	if maxV == 0 {
		maxV = 1
	}
	return 0, maxV
}

// stackValues returns, per series in order, the cumulative upper bound at
// every year of the grid. Missing years contribute zero and negatives are
// clamped to zero so bands never cross.
func stackValues(series []Series, minYear, maxYear int) [][]float64 {
	n := maxYear - minYear + 1
	cum := make([]float64, n)
	out := make([][]float64, len(series))
	for si, s := range series {
		vals := make([]float64, n)
		for _, p := range s.Points {
			if p.Year >= minYear && p.Year <= maxYear {
				vals[p.Year-minYear] = math.Max(0, p.Value)
			}
		}
		upper := make([]float64, n)
		for i, v := range vals {
			cum[i] += v
			upper[i] = cum[i]
		}
		out[si] = upper
	}
	return out
}

// legendEntries derives the legend list in series order, applying the style
// mode and the loess label suffix. The same list drives band estimation and
// rendering.
func legendEntries(series []Series, opts Options) []LegendEntry {
	entries := make([]LegendEntry, len(series))
	for i, s := range series {
		st := StyleFor(opts.Style, i, s.Key.CountryISO3, s.Key.IndicatorID)
		label := s.Label
		if opts.Kind == KindLoess {
			label += " (LOESS)"
		}
		entries[i] = LegendEntry{
			Label:  label,
			Color:  st.Color,
			Marker: st.Marker,
			Dash:   st.Dash,
			Glyph:  opts.Style != StyleDefault,
		}
	}
	return entries
}

// projection maps data coordinates to pixels inside the plot box.
type projection struct {
	plot       chart.Box
	xMin, xMax float64
	yMin, yMax float64
}

func (p projection) x(v float64) int {
	t := (v - p.xMin) / (p.xMax - p.xMin)
	return p.plot.Left + int(math.Round(t*float64(p.plot.Width())))
}

func (p projection) y(v float64) int {
	t := (v - p.yMin) / (p.yMax - p.yMin)
	return p.plot.Bottom - int(math.Round(t*float64(p.plot.Height())))
}

var (
	gridColor = drawing.Color{R: 230, G: 230, B: 230, A: 255}
	axisColor = drawing.Color{R: 51, G: 51, B: 51, A: 255}
)

func drawCaption(r chart.Renderer, title string, area chart.Box) {
	if title == "" {
		return
	}
	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(captionPx)
	tw := estimateTextWidth(title, captionPx)
	x := area.Left + (area.Width()-tw)/2
	if x < area.Left+chartMargin {
		x = area.Left + chartMargin
	}
	r.Text(title, x, area.Top+chartMargin+captionPx)
}

// drawAxes paints the grid, tick labels, the axis frame, and both axis
// titles. Y tick labels are right-aligned against the plot's left edge.
func drawAxes(r chart.Renderer, plot chart.Box, xMin, xMax, yMinS, yMaxS float64, minYear, maxYear int, nf numberFormat, yTitle string, area chart.Box) {
	proj := projection{plot: plot, xMin: xMin, xMax: xMax, yMin: yMinS, yMax: yMaxS}

	// Horizontal grid lines and Y tick labels.
	r.SetFontColor(axisColor)
	r.SetFontSize(axisFontPx)
	for _, t := range makeYTicks(yMinS, yMaxS, nf) {
		y := proj.y(t.value)
		r.SetStrokeColor(gridColor)
		r.SetStrokeWidth(1)
		r.MoveTo(plot.Left, y)
		r.LineTo(plot.Right, y)
		r.Stroke()

		lw := estimateTextWidth(t.label, axisFontPx)
		r.Text(t.label, plot.Left-6-lw, textBaseline(y, axisFontPx))
	}

	// Vertical grid lines and X tick labels.
	for _, t := range makeYearTicks(minYear, maxYear) {
		x := proj.x(t.value)
		r.SetStrokeColor(gridColor)
		r.SetStrokeWidth(1)
		r.MoveTo(x, plot.Top)
		r.LineTo(x, plot.Bottom)
		r.Stroke()

		lw := estimateTextWidth(t.label, axisFontPx)
		r.Text(t.label, x-lw/2, plot.Bottom+6+axisFontPx)
	}

	// Axis frame.
	r.SetStrokeColor(axisColor)
	r.SetStrokeWidth(1)
	r.MoveTo(plot.Left, plot.Top)
	r.LineTo(plot.Left, plot.Bottom)
	r.LineTo(plot.Right, plot.Bottom)
	r.Stroke()

	// Axis titles.
	r.SetFontColor(axisColor)
	r.SetFontSize(axisTitlePx)
	xt := "Year"
	xw := estimateTextWidth(xt, axisTitlePx)
	r.Text(xt, plot.Left+(plot.Width()-xw)/2, plot.Bottom+6+axisFontPx+8+axisTitlePx)

	yw := estimateTextWidth(yTitle, axisTitlePx)
	r.SetTextRotation(-math.Pi / 2)
	r.Text(yTitle, area.Left+chartMargin/2+axisTitlePx/2, plot.Top+(plot.Height()+yw)/2)
	r.ClearTextRotation()
}

// drawSeries dispatches to the kind-specific drawers. All values are scaled
// by yscale before projection; LOESS smooths the raw values first and
// scales the smoothed result.
func drawSeries(r chart.Renderer, series []Series, entries []LegendEntry, proj projection, yscale float64, minYear, maxYear int, opts Options) {
	switch opts.Kind {
	case KindStackedArea:
		drawStackedArea(r, series, entries, proj, yscale, minYear, maxYear)
	case KindGroupedBar:
		drawGroupedBars(r, series, entries, proj, yscale)
	default:
		for i, s := range series {
			e := entries[i]
			switch opts.Kind {
			case KindScatter:
				drawPoints(r, s, e, proj, yscale)
			case KindLinePoints:
				drawLine(r, s, e, proj, yscale, 2)
				drawPoints(r, s, e, proj, yscale)
			case KindArea:
				drawArea(r, s, e, proj, yscale)
			case KindLoess:
				drawLoess(r, s, e, proj, yscale, opts.LoessSpan)
			default:
				drawLine(r, s, e, proj, yscale, 2)
			}
		}
	}
}

func drawLine(r chart.Renderer, s Series, e LegendEntry, proj projection, yscale float64, strokeW float64) {
	if len(s.Points) == 0 {
		return
	}
	r.SetStrokeColor(e.Color)
	r.SetStrokeWidth(strokeW)
	if e.Glyph {
		r.SetStrokeDashArray(e.Dash.strokeDashArray())
	}
	r.MoveTo(proj.x(float64(s.Points[0].Year)), proj.y(s.Points[0].Value/yscale))
	for _, p := range s.Points[1:] {
		r.LineTo(proj.x(float64(p.Year)), proj.y(p.Value/yscale))
	}
	r.Stroke()
	r.SetStrokeDashArray(nil)
}

func drawPoints(r chart.Renderer, s Series, e LegendEntry, proj projection, yscale float64) {
	const pointR = 3
	for _, p := range s.Points {
		x := proj.x(float64(p.Year))
		y := proj.y(p.Value / yscale)
		if e.Glyph {
			drawMarkerGlyph(r, x, y, pointR, e.Color, e.Marker)
		} else {
			setFill(r, e.Color)
			r.Circle(pointR, x, y)
			r.Fill()
		}
	}
}

func drawArea(r chart.Renderer, s Series, e LegendEntry, proj projection, yscale float64) {
	if len(s.Points) == 0 {
		return
	}
	baseline := math.Min(0, proj.yMin*yscale) / yscale
	baseY := proj.y(baseline)
	if baseY > proj.plot.Bottom {
		baseY = proj.plot.Bottom
	}

	fill := e.Color
	fill.A = uint8(float64(fill.A) * 0.20)
	r.SetFillColor(fill)
	r.SetStrokeWidth(0)
	r.SetStrokeColor(fill)
	first := s.Points[0]
	last := s.Points[len(s.Points)-1]
	r.MoveTo(proj.x(float64(first.Year)), baseY)
	for _, p := range s.Points {
		r.LineTo(proj.x(float64(p.Year)), proj.y(p.Value/yscale))
	}
	r.LineTo(proj.x(float64(last.Year)), baseY)
	r.Close()
	r.Fill()

	drawLine(r, s, e, proj, yscale, 1)
}

func drawLoess(r chart.Renderer, s Series, e LegendEntry, proj projection, yscale float64, span float64) {
	if len(s.Points) == 0 {
		return
	}
	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
	}
	yhat := LoessSmooth(xs, ys, span)

	r.SetStrokeColor(e.Color)
	r.SetStrokeWidth(3)
	if e.Glyph {
		r.SetStrokeDashArray(e.Dash.strokeDashArray())
	}
	r.MoveTo(proj.x(xs[0]), proj.y(yhat[0]/yscale))
	for i := 1; i < len(xs); i++ {
		r.LineTo(proj.x(xs[i]), proj.y(yhat[i]/yscale))
	}
	r.Stroke()
	r.SetStrokeDashArray(nil)
}

func drawStackedArea(r chart.Renderer, series []Series, entries []LegendEntry, proj projection, yscale float64, minYear, maxYear int) {
	uppers := stackValues(series, minYear, maxYear)
	n := maxYear - minYear + 1
	lower := make([]float64, n)

	for si := range series {
		upper := uppers[si]
		e := entries[si]

		fill := e.Color
		fill.A = uint8(float64(fill.A) * 0.30)
		r.SetFillColor(fill)
		r.SetStrokeWidth(0)
		r.SetStrokeColor(fill)
		// Band polygon: lower edge forward, upper edge reversed.
		r.MoveTo(proj.x(float64(minYear)), proj.y(lower[0]/yscale))
		for i := 1; i < n; i++ {
			r.LineTo(proj.x(float64(minYear+i)), proj.y(lower[i]/yscale))
		}
		for i := n - 1; i >= 0; i-- {
			r.LineTo(proj.x(float64(minYear+i)), proj.y(upper[i]/yscale))
		}
		r.Close()
		r.Fill()

		r.SetStrokeColor(e.Color)
		r.SetStrokeWidth(1)
		r.MoveTo(proj.x(float64(minYear)), proj.y(upper[0]/yscale))
		for i := 1; i < n; i++ {
			r.LineTo(proj.x(float64(minYear+i)), proj.y(upper[i]/yscale))
		}
		r.Stroke()

		copy(lower, upper)
	}
}

func drawGroupedBars(r chart.Renderer, series []Series, entries []LegendEntry, proj projection, yscale float64) {
	n := len(series)
	if n == 0 {
		return
	}
	const groupWidth = 0.8
	barW := groupWidth / float64(n)

	for si, s := range series {
		e := entries[si]
		setFill(r, e.Color)
		for _, p := range s.Points {
			x0 := float64(p.Year) - groupWidth/2 + float64(si)*barW
			x1 := x0 + barW

			px0 := clampInt(proj.x(x0), proj.plot.Left, proj.plot.Right)
			px1 := clampInt(proj.x(x1), proj.plot.Left, proj.plot.Right)
			if px1 <= px0 {
				continue
			}
			pyTop, pyBottom := barSpanPx(proj, p.Value, yscale)
			r.MoveTo(px0, pyTop)
			r.LineTo(px1, pyTop)
			r.LineTo(px1, pyBottom)
			r.LineTo(px0, pyBottom)
			r.Close()
			r.Fill()
		}
	}
}

// barSpanPx converts a bar value into its vertical pixel span [0 or v up to
// max(0,v)], clamped to the plot box. When the value axis does not include
// zero the bar's baseline end snaps to the nearest plot edge instead of
// painting into the label area.
func barSpanPx(proj projection, v, yscale float64) (top, bottom int) {
	y0 := math.Min(0, v) / yscale
	y1 := math.Max(0, v) / yscale
	bottom = clampInt(proj.y(y0), proj.plot.Top, proj.plot.Bottom)
	top = clampInt(proj.y(y1), proj.plot.Top, proj.plot.Bottom)
	return top, bottom
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
