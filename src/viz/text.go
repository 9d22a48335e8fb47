package viz

import (
	"math"
	"strings"
)

// Text measurement, truncation, and wrapping.
//
// The chart backends can measure text against a real font, but legend
// geometry must be computable before any backend exists and must come out
// identical during estimation and drawing. All layout therefore runs on the
// deterministic approximation below and never on backend font metrics.

// textWidthFactor approximates the average glyph advance of the 14px UI
// font as a fraction of the font size.
const textWidthFactor = 0.60

const ellipsis = '…'

// estimateTextWidth returns the approximate pixel width of text at the
// given font size.
func estimateTextWidth(text string, fontPx int) int {
	n := 0
	for range text {
		n++
	}
	return int(math.Ceil(float64(n) * float64(fontPx) * textWidthFactor))
}

// truncateToWidth shortens text to fit maxPx, appending a single ellipsis
// when anything was cut. If even the ellipsis does not fit, the last kept
// character is sacrificed for it.
func truncateToWidth(text string, fontPx, maxPx int) string {
	var out []rune
	for _, ch := range text {
		next := string(append(out, ch))
		if estimateTextWidth(next, fontPx) > maxPx {
			if len(out) > 0 {
				if estimateTextWidth(string(out)+string(ellipsis), fontPx) <= maxPx {
					return string(out) + string(ellipsis)
				}
				if len(out) > 1 {
					out = out[:len(out)-1]
					return string(out) + string(ellipsis)
				}
			}
			return string(out)
		}
		out = append(out, ch)
	}
	return string(out)
}

// wrapToWidth breaks text into lines no wider than maxPx, preferring word
// boundaries. A single word wider than maxPx is hard-broken per character.
// Widths of 12px or less cannot hold a useful line, so the text collapses
// to one truncated, ellipsis-suffixed line.
func wrapToWidth(text string, fontPx, maxPx int) []string {
	if maxPx <= 12 {
		return []string{truncateToWidth(text, fontPx, maxPx)}
	}
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		switch {
		case estimateTextWidth(candidate, fontPx) <= maxPx:
			cur = candidate
		case cur == "":
			// Single long word: hard-break by characters.
			buf := ""
			for _, ch := range word {
				cand := buf + string(ch)
				if estimateTextWidth(cand, fontPx) > maxPx {
					if buf == "" {
						lines = append(lines, truncateToWidth(word, fontPx, maxPx))
						break
					}
					lines = append(lines, buf)
					buf = string(ch)
				} else {
					buf = cand
				}
			}
			if buf != "" {
				lines = append(lines, buf)
			}
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
