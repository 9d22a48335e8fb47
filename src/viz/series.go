package viz

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

// SeriesPoint is one plottable (year, value) pair.
type SeriesPoint struct {
	Year  int
	Value float64
}

// Series is one plottable group of observations sharing a country and an
// indicator, sorted by year.
type Series struct {
	Key            models.SeriesKey
	CountryLabel   string
	IndicatorLabel string
	Label          string
	Points         []SeriesPoint
}

// BuildSeries groups observations into sorted, labeled series.
//
// Rows with a zero year or a missing value are skipped. Duplicate years
// within one series keep the last occurrence in input order. The series
// list is sorted by country label, then indicator label, which fixes both
// drawing order and default palette assignment.
//
// Errors, checked in this order against the full input:
// ErrEmptyInput when there are no rows at all, ErrNoValidYears when every
// year is zero, ErrNoNumericValues when no row has a value.
func BuildSeries(points []models.Observation) ([]Series, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	anyYear := false
	anyValue := false
	for _, p := range points {
		if p.Year != 0 {
			anyYear = true
		}
		if p.Value != nil {
			anyValue = true
		}
	}
	if !anyYear {
		return nil, ErrNoValidYears
	}
	if !anyValue {
		return nil, ErrNoNumericValues
	}

	countryName := map[string]string{}
	indicatorName := map[string]string{}
	groups := map[models.SeriesKey][]SeriesPoint{}
	var order []models.SeriesKey
	for _, p := range points {
		if _, ok := countryName[p.CountryISO3]; !ok {
			countryName[p.CountryISO3] = p.CountryName
		}
		if _, ok := indicatorName[p.IndicatorID]; !ok {
			indicatorName[p.IndicatorID] = p.IndicatorName
		}
		if p.Year == 0 || p.Value == nil {
			continue
		}
		key := models.SeriesKey{CountryISO3: p.CountryISO3, IndicatorID: p.IndicatorID}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], SeriesPoint{Year: p.Year, Value: *p.Value})
	}

	oneCountry := len(countryName) == 1
	oneIndicator := len(indicatorName) == 1

	list := make([]Series, 0, len(order))
	for _, key := range order {
		pts := dedupByYear(groups[key])
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Year < pts[j].Year })

		cl := countryName[key.CountryISO3]
		if cl == "" {
			cl = key.CountryISO3
		}
		il := indicatorName[key.IndicatorID]
		if il == "" {
			il = key.IndicatorID
		}
		list = append(list, Series{
			Key:            key,
			CountryLabel:   cl,
			IndicatorLabel: il,
			Label:          seriesLabel(cl, il, oneCountry, oneIndicator),
			Points:         pts,
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CountryLabel != list[j].CountryLabel {
			return list[i].CountryLabel < list[j].CountryLabel
		}
		return list[i].IndicatorLabel < list[j].IndicatorLabel
	})
	return list, nil
}

// dedupByYear keeps the last point per year in input order.
func dedupByYear(pts []SeriesPoint) []SeriesPoint {
	seen := map[int]int{}
	out := pts[:0]
	for _, p := range pts {
		if i, ok := seen[p.Year]; ok {
			out[i] = p
			continue
		}
		seen[p.Year] = len(out)
		out = append(out, p)
	}
	return out
}

// seriesLabel shortens legend labels: one indicator across countries shows
// only the country, one country across indicators shows only the indicator,
// otherwise both joined.
func seriesLabel(country, indicator string, oneCountry, oneIndicator bool) string {
	switch {
	case oneIndicator && !oneCountry:
		return country
	case oneCountry && !oneIndicator:
		return indicator
	default:
		return country + " — " + indicator
	}
}

// titlePlaceholder is the historical default title. It triggers automatic
// title derivation just like an empty string.
const titlePlaceholder = "World Bank Indicator(s)"

// deriveTitle produces the chart caption: the caller's title verbatim, or,
// when empty or the placeholder, a summary of the distinct indicator names.
func deriveTitle(points []models.Observation, title string) string {
	t := strings.TrimSpace(title)
	if t != "" && t != titlePlaceholder {
		return t
	}
	seen := map[string]struct{}{}
	var names []string
	for _, p := range points {
		if _, ok := seen[p.IndicatorName]; ok {
			continue
		}
		seen[p.IndicatorName] = struct{}{}
		names = append(names, p.IndicatorName)
	}
	sort.Strings(names)
	switch {
	case len(names) == 0:
		return "World Bank Series"
	case len(names) == 1:
		return names[0]
	case len(names) <= 3:
		return strings.Join(names, ", ")
	default:
		return names[0] + " + " + strconv.Itoa(len(names)-1) + " more"
	}
}
