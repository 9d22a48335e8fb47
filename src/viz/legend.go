package viz

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Legend layout and drawing.
//
// Top/Bottom bands are planned once by planLegendBand and the resulting plan
// is consumed both by the height estimator (before the canvas is split) and
// by the band drawer. Keeping a single plan is what guarantees the reserved
// band height always matches what actually gets drawn.

const (
	legendFontPx      = 14
	legendTitlePx     = 16
	legendLineH       = legendFontPx + 2
	legendRowGap      = 4
	legendPadSmall    = 6
	legendPadBand     = 8
	legendMarkerR     = 4
	legendMarkerGap   = 12 // marker center to text start
	legendTrailGap    = 12 // space after each block
	legendLineSampleW = 16 // dash sample width in glyph mode
)

// LegendEntry is one legend item. Marker and Dash are only drawn when Glyph
// is set (country-style modes); otherwise a plain filled circle is used.
type LegendEntry struct {
	Label  string
	Color  drawing.Color
	Marker MarkerShape
	Dash   LineDash
	Glyph  bool
}

// legendCell is one planned band cell: an entry index plus its wrapped lines.
type legendCell struct {
	item  int
	lines []string
}

type legendRow struct {
	cells  []legendCell
	height int
}

// legendPlan is the complete geometry of a Top/Bottom band.
type legendPlan struct {
	rows     []legendRow
	colX     []int // text x per column, cumulative slot widths
	titleTop int   // y offset where the first row starts
	height   int   // total band height including padding
}

// blockWidthForCap computes the packed width of one item when its text is
// capped at capPx: marker gap, marker, widest wrapped line, trailing gap.
func blockWidthForCap(label string, capPx int) int {
	if capPx < 40 {
		capPx = 40
	}
	maxLine := 0
	for _, ln := range wrapToWidth(label, legendFontPx, capPx) {
		if w := estimateTextWidth(ln, legendFontPx); w > maxLine {
			maxLine = w
		}
	}
	return legendMarkerGap + legendMarkerR + maxLine + legendTrailGap
}

// planLegendBand lays out a Top/Bottom legend band.
//
// Pass 1 greedily packs items into rows with a per-item text cap to decide
// the column count K. Column widths then come from the longest single-line
// label per column when those fit the band, otherwise uniform slots force
// wrapping. Pass 2 wraps every cell against its column cap and accumulates
// row heights.
func planLegendBand(labels []string, startX, totalW int, hasTitle bool) legendPlan {
	overhead := legendMarkerGap + legendMarkerR + legendTrailGap
	usableRowW := totalW - legendPadSmall

	perItemCap := int(float64(usableRowW-startX) * 0.35)
	if perItemCap < 140 {
		perItemCap = 140
	}

	// Pass 1: greedy row packing.
	var rows [][]int
	var cur []int
	x := startX
	for i, label := range labels {
		remaining := usableRowW - x
		if remaining < 40 {
			remaining = 40
		}
		textCap := remaining - overhead
		if textCap > perItemCap {
			textCap = perItemCap
		}
		blockW := blockWidthForCap(label, textCap)

		if x+blockW > usableRowW && len(cur) > 0 {
			rows = append(rows, cur)
			cur = nil
			x = startX
			fresh := (usableRowW - startX) - overhead
			if fresh > perItemCap {
				fresh = perItemCap
			}
			blockW = blockWidthForCap(label, fresh)
		}
		x += blockW
		cur = append(cur, i)
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}

	kCols := 1
	for _, r := range rows {
		if len(r) > kCols {
			kCols = len(r)
		}
	}

	// Preferred per-column widths from the longest single-line label.
	colBlockW := make([]int, kCols)
	for ci := range colBlockW {
		colBlockW[ci] = 60
	}
	for _, r := range rows {
		for ci, item := range r {
			w := legendMarkerGap + legendMarkerR + estimateTextWidth(labels[item], legendFontPx) + legendTrailGap
			if w > colBlockW[ci] {
				colBlockW[ci] = w
			}
		}
	}
	totalNeeded := startX
	for _, w := range colBlockW {
		totalNeeded += w
	}
	slotW := colBlockW
	if totalNeeded > usableRowW {
		uniform := (usableRowW - startX) / kCols
		if uniform < 60 {
			uniform = 60
		}
		slotW = make([]int, kCols)
		for ci := range slotW {
			slotW[ci] = uniform
		}
	}

	colX := make([]int, kCols)
	textCap := make([]int, kCols)
	acc := startX
	for ci, sw := range slotW {
		colX[ci] = acc
		acc += sw
		tc := sw - overhead
		if tc < 40 {
			tc = 40
		}
		textCap[ci] = tc
	}

	plan := legendPlan{colX: colX}
	if hasTitle {
		plan.titleTop = legendPadBand + legendTitlePx + 8
	} else {
		plan.titleTop = legendPadBand + 8
	}

	// Pass 2: wrap against per-column caps and accumulate heights.
	height := plan.titleTop
	for ri, r := range rows {
		row := legendRow{height: legendLineH}
		for ci, item := range r {
			lines := wrapToWidth(labels[item], legendFontPx, textCap[ci])
			if len(lines) == 0 {
				lines = []string{""}
			}
			if h := len(lines) * legendLineH; h > row.height {
				row.height = h
			}
			row.cells = append(row.cells, legendCell{item: item, lines: lines})
		}
		plan.rows = append(plan.rows, row)
		height += row.height
		if ri+1 < len(rows) {
			height += legendRowGap
		}
	}
	height += legendPadBand
	plan.height = height
	return plan
}

// EstimateLegendBandHeight returns the Top/Bottom band height in pixels for
// the given labels, first-column start x, and canvas width.
func EstimateLegendBandHeight(labels []string, startX, totalW int, hasTitle bool) int {
	return planLegendBand(labels, startX, totalW, hasTitle).height
}

// textBaseline converts a vertical-center anchor into the renderer's
// baseline coordinate for the given font size.
func textBaseline(centerY, fontPx int) int {
	return centerY + fontPx*35/100
}

func setFill(r chart.Renderer, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeColor(c)
	r.SetStrokeWidth(0)
}

// drawLegendBand renders a Top/Bottom legend band whose top edge sits at
// bandTop. The plan must come from planLegendBand with the same arguments
// that sized the band.
func drawLegendBand(r chart.Renderer, entries []LegendEntry, title string, plan legendPlan, bandTop, startX int) {
	hasTitle := strings.TrimSpace(title) != ""
	if hasTitle {
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(legendTitlePx)
		r.Text(title, startX, bandTop+legendPadBand+legendTitlePx)
	}

	yTop := bandTop + plan.titleTop
	for _, row := range plan.rows {
		yCenter := yTop + row.height/2
		for ci, cell := range row.cells {
			e := entries[cell.item]
			textX := plan.colX[ci]
			dotX := textX - legendMarkerGap
			if dotX < 0 {
				dotX = 0
			}
			setFill(r, e.Color)
			r.Circle(legendMarkerR, dotX, yCenter)
			r.Fill()

			r.SetFontColor(drawing.ColorBlack)
			r.SetFontSize(legendFontPx)
			blockH := len(cell.lines) * legendLineH
			top := yCenter - blockH/2
			for i, ln := range cell.lines {
				lineCenter := top + i*legendLineH + legendLineH/2
				r.Text(ln, textX, textBaseline(lineCenter, legendFontPx))
			}
		}
		yTop += row.height + legendRowGap
	}
}

// drawLegendRight renders the right-hand panel as a single column starting
// at panelLeft with panelW pixels of width. Entries with Glyph set get a
// dash sample plus marker instead of the plain circle.
func drawLegendRight(r chart.Renderer, entries []LegendEntry, title string, panelLeft, panelTop, panelW int) {
	padX := legendPadSmall
	hasTitle := strings.TrimSpace(title) != ""

	y := panelTop
	if hasTitle {
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(legendTitlePx)
		r.Text(title, panelLeft+padX, y+legendPadSmall+legendTitlePx)
		y += legendPadSmall + legendTitlePx + 8
	} else {
		y += legendPadSmall + 6
	}

	glyphMode := false
	for _, e := range entries {
		if e.Glyph {
			glyphMode = true
			break
		}
	}

	var textX int
	if glyphMode {
		glyphW := legendLineSampleW + legendMarkerR*2
		textX = panelLeft + padX + glyphW + legendMarkerGap
	} else {
		textX = panelLeft + padX + 24
	}
	maxTextW := panelLeft + panelW - textX - padX
	if maxTextW < 40 {
		maxTextW = 40
	}

	for _, e := range entries {
		lines := wrapToWidth(e.Label, legendFontPx, maxTextW)
		if len(lines) == 0 {
			lines = []string{""}
		}
		blockH := len(lines) * legendLineH
		centerY := y + blockH/2

		if glyphMode {
			x0 := panelLeft + padX
			x1 := x0 + legendLineSampleW
			drawDashSample(r, x0, x1, centerY, e.Color, e.Dash)
			drawMarkerGlyph(r, x0+legendLineSampleW/2, centerY, legendMarkerR, e.Color, e.Marker)
		} else {
			setFill(r, e.Color)
			r.Circle(legendMarkerR, panelLeft+padX+12, centerY)
			r.Fill()
		}

		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(legendFontPx)
		for i, ln := range lines {
			lineCenter := y + i*legendLineH + legendLineH/2
			r.Text(ln, textX, textBaseline(lineCenter, legendFontPx))
		}
		y += blockH + legendRowGap
	}
}

// drawLegendInside overlays a boxed legend in the plot's upper-left corner:
// translucent white background, thin black border, one entry per line.
func drawLegendInside(r chart.Renderer, entries []LegendEntry, plot chart.Box) {
	const boxPad = 8
	maxTextW := plot.Width()*45/100 - legendMarkerGap - legendMarkerR - boxPad*2
	if maxTextW < 40 {
		maxTextW = 40
	}

	widest := 0
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = truncateToWidth(e.Label, legendFontPx, maxTextW)
		if w := estimateTextWidth(labels[i], legendFontPx); w > widest {
			widest = w
		}
	}
	boxW := boxPad + legendMarkerGap + legendMarkerR + widest + boxPad
	boxH := boxPad*2 + len(entries)*legendLineH
	x0 := plot.Left + 10
	y0 := plot.Top + 10

	r.SetFillColor(drawing.Color{R: 255, G: 255, B: 255, A: 217})
	r.SetStrokeColor(drawing.ColorBlack)
	r.SetStrokeWidth(1)
	r.MoveTo(x0, y0)
	r.LineTo(x0+boxW, y0)
	r.LineTo(x0+boxW, y0+boxH)
	r.LineTo(x0, y0+boxH)
	r.Close()
	r.FillStroke()

	for i, e := range entries {
		centerY := y0 + boxPad + i*legendLineH + legendLineH/2
		setFill(r, e.Color)
		r.Circle(legendMarkerR, x0+boxPad+legendMarkerR, centerY)
		r.Fill()
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(legendFontPx)
		r.Text(labels[i], x0+boxPad+legendMarkerGap+legendMarkerR, textBaseline(centerY, legendFontPx))
	}
}

// drawDashSample strokes a short horizontal line with the entry's dash
// pattern, the same pattern the series itself is drawn with.
func drawDashSample(r chart.Renderer, x0, x1, y int, c drawing.Color, dash LineDash) {
	r.SetStrokeColor(c)
	r.SetStrokeWidth(2)
	r.SetStrokeDashArray(dash.strokeDashArray())
	r.MoveTo(x0, y)
	r.LineTo(x1, y)
	r.Stroke()
	r.SetStrokeDashArray(nil)
}

// drawMarkerGlyph draws one filled (or stroked, for Cross/X) marker shape
// centered at (x, y).
func drawMarkerGlyph(r chart.Renderer, x, y, size int, c drawing.Color, shape MarkerShape) {
	switch shape {
	case MarkerSquare:
		setFill(r, c)
		r.MoveTo(x-size, y-size)
		r.LineTo(x+size, y-size)
		r.LineTo(x+size, y+size)
		r.LineTo(x-size, y+size)
		r.Close()
		r.Fill()
	case MarkerTriangle:
		setFill(r, c)
		r.MoveTo(x, y-size)
		r.LineTo(x-size, y+size)
		r.LineTo(x+size, y+size)
		r.Close()
		r.Fill()
	case MarkerDiamond:
		setFill(r, c)
		r.MoveTo(x, y-size)
		r.LineTo(x-size, y)
		r.LineTo(x, y+size)
		r.LineTo(x+size, y)
		r.Close()
		r.Fill()
	case MarkerCross:
		r.SetStrokeColor(c)
		r.SetStrokeWidth(2)
		r.MoveTo(x-size, y)
		r.LineTo(x+size, y)
		r.Stroke()
		r.MoveTo(x, y-size)
		r.LineTo(x, y+size)
		r.Stroke()
	case MarkerX:
		r.SetStrokeColor(c)
		r.SetStrokeWidth(2)
		r.MoveTo(x-size, y-size)
		r.LineTo(x+size, y+size)
		r.Stroke()
		r.MoveTo(x-size, y+size)
		r.LineTo(x+size, y-size)
		r.Stroke()
	default:
		setFill(r, c)
		r.Circle(float64(size), x, y)
		r.Fill()
	}
}
