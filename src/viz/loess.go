package viz

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LOESS smoothing for the loess plot kind. Each x position gets a local
// degree-1 fit over its k nearest neighbors with tricube weights.
//
// The neighborhood is floored at 3 points and the fit falls back to a
// weighted mean when fewer than 3 neighbors carry positive weight. A local
// line through 2 points reproduces them exactly, so without the floor small
// spans would return the raw data unchanged and smooth nothing.

// LoessSmooth returns smoothed y values at every x in xs, using the span
// fraction of the data as the neighborhood size. xs must be sorted
// ascending. Spans outside (0,1] are clamped.
func LoessSmooth(xs, ys []float64, span float64) []float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	if n < 3 {
		out := make([]float64, n)
		copy(out, ys)
		return out
	}
	if span <= 0 || span > 1 {
		span = clampSpan(span)
	}
	k := int(math.Ceil(span * float64(n)))
	if k < 3 {
		k = 3
	}
	if k > n {
		k = n
	}

	idx := make([]int, n)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := xs[i]
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return math.Abs(xs[idx[a]]-x0) < math.Abs(xs[idx[b]]-x0)
		})
		sel := idx[:k]
		dmax := math.Abs(xs[sel[k-1]] - x0)

		lx := make([]float64, k)
		ly := make([]float64, k)
		lw := make([]float64, k)
		positive := 0
		for j, si := range sel {
			lx[j] = xs[si]
			ly[j] = ys[si]
			lw[j] = tricube(math.Abs(xs[si]-x0), dmax)
			if lw[j] > 0 {
				positive++
			}
		}

		if positive < 3 {
			out[i] = weightedMean(ly, lw)
			continue
		}
		alpha, beta := stat.LinearRegression(lx, ly, lw, false)
		v := alpha + beta*x0
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = weightedMean(ly, lw)
		}
		out[i] = v
	}
	return out
}

func clampSpan(span float64) float64 {
	if span <= 0 {
		return 0.3
	}
	return 1
}

// tricube is the standard LOESS kernel w = (1 - (d/dmax)^3)^3. A zero dmax
// means all neighbors coincide with the target x and weigh equally.
func tricube(d, dmax float64) float64 {
	if dmax <= 0 {
		return 1
	}
	u := d / dmax
	if u >= 1 {
		return 0
	}
	t := 1 - u*u*u
	return t * t * t
}

func weightedMean(ys, ws []float64) float64 {
	var sum, wsum float64
	for i, y := range ys {
		sum += y * ws[i]
		wsum += ws[i]
	}
	if wsum == 0 {
		for _, y := range ys {
			sum += y
		}
		return sum / float64(len(ys))
	}
	return sum / wsum
}
