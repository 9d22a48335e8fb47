// Package stats computes grouped summary statistics over observations.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

// GroupKey identifies one (indicator, country) statistics group.
type GroupKey struct {
	IndicatorID string `json:"indicator_id"`
	CountryISO3 string `json:"country_iso3"`
}

// Summary holds the statistics of one group. Count covers only finite
// values; nil or non-finite values show up in Missing instead. The extreme
// and central fields are nil when the group holds no finite value.
type Summary struct {
	Key     GroupKey `json:"key"`
	Count   int      `json:"count"`
	Missing int      `json:"missing"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Mean    *float64 `json:"mean"`
	Median  *float64 `json:"median"`
}

// GroupedSummary aggregates rows by (indicator_id, country_iso3) and
// returns one Summary per group with at least one finite value, sorted by
// key for deterministic output.
func GroupedSummary(points []models.Observation) []Summary {
	groups := map[GroupKey][]float64{}
	missing := map[GroupKey]int{}
	for _, p := range points {
		key := GroupKey{IndicatorID: p.IndicatorID, CountryISO3: p.CountryISO3}
		if p.Value != nil && !math.IsNaN(*p.Value) && !math.IsInf(*p.Value, 0) {
			groups[key] = append(groups[key], *p.Value)
		} else {
			missing[key]++
		}
	}

	keys := make([]GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].IndicatorID != keys[j].IndicatorID {
			return keys[i].IndicatorID < keys[j].IndicatorID
		}
		return keys[i].CountryISO3 < keys[j].CountryISO3
	})

	out := make([]Summary, 0, len(keys))
	for _, key := range keys {
		vals := groups[key]
		sort.Float64s(vals)
		n := len(vals)

		mean := stat.Mean(vals, nil)
		var median float64
		if n%2 == 1 {
			median = vals[n/2]
		} else {
			median = (vals[n/2-1] + vals[n/2]) / 2
		}

		out = append(out, Summary{
			Key:     key,
			Count:   n,
			Missing: missing[key],
			Min:     ptr(vals[0]),
			Max:     ptr(vals[n-1]),
			Mean:    ptr(mean),
			Median:  ptr(median),
		})
	}
	return out
}

func ptr(v float64) *float64 { return &v }
