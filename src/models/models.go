// Package models defines the tidy data model shared by the API client,
// storage, stats, and visualization layers. One Observation equals one
// (country, indicator, year) row as returned by the World Bank v2 API.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DateSpec selects a single year or an inclusive year range for API queries.
type DateSpec struct {
	Start int
	End   int
}

// Year builds a single-year spec.
func Year(y int) DateSpec { return DateSpec{Start: y, End: y} }

// Range builds an inclusive range spec.
func Range(start, end int) DateSpec { return DateSpec{Start: start, End: end} }

// Query renders the spec as the API's date query parameter
// ("2020" or "2000:2020").
func (d DateSpec) Query() string {
	if d.Start == d.End {
		return strconv.Itoa(d.Start)
	}
	return fmt.Sprintf("%d:%d", d.Start, d.End)
}

// ParseDateSpec accepts "YYYY" or "YYYY:YYYY".
func ParseDateSpec(s string) (DateSpec, error) {
	if a, b, ok := strings.Cut(s, ":"); ok {
		start, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return DateSpec{}, fmt.Errorf("invalid date range start %q", a)
		}
		end, err := strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return DateSpec{}, fmt.Errorf("invalid date range end %q", b)
		}
		return Range(start, end), nil
	}
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DateSpec{}, fmt.Errorf("invalid date %q, expected YYYY or YYYY:YYYY", s)
	}
	return Year(y), nil
}

// FlexUint tolerates API responses that encode numbers as JSON strings.
// The v2 API serializes per_page as a string on some routes and as a
// number on others.
type FlexUint uint32

func (f *FlexUint) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("parse flexible uint %q: %w", s, err)
	}
	*f = FlexUint(n)
	return nil
}

// Meta is the pagination header returned at position 0 of every API page.
type Meta struct {
	Page    uint32   `json:"page"`
	Pages   uint32   `json:"pages"`
	PerPage FlexUint `json:"per_page"`
	Total   uint32   `json:"total"`
}

// CodeName is the API's {id, value} pair used for countries and indicators.
type CodeName struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Entry is one raw record from the API's position-1 array.
type Entry struct {
	Indicator   CodeName `json:"indicator"`
	Country     CodeName `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
	Unit        *string  `json:"unit"`
	ObsStatus   *string  `json:"obs_status"`
	Decimal     *int     `json:"decimal"`
}

// IndicatorMeta is one record from the /indicator metadata endpoint.
type IndicatorMeta struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Unit       *string `json:"unit"`
	SourceNote string  `json:"sourceNote"`
}

// Observation is the tidy row used throughout this module. Year 0 marks a
// date that did not parse as an integer; Value nil marks a missing value.
type Observation struct {
	IndicatorID   string   `json:"indicator_id"`
	IndicatorName string   `json:"indicator_name"`
	CountryID     string   `json:"country_id"` // typically ISO2
	CountryName   string   `json:"country_name"`
	CountryISO3   string   `json:"country_iso3"`
	Year          int      `json:"year"`
	Value         *float64 `json:"value"`
	Unit          string   `json:"unit,omitempty"`
	ObsStatus     string   `json:"obs_status,omitempty"`
	Decimal       *int     `json:"decimal,omitempty"`
}

// Observation converts a raw API entry to a tidy row.
func (e Entry) Observation() Observation {
	year, err := strconv.Atoi(e.Date)
	if err != nil {
		year = 0
	}
	o := Observation{
		IndicatorID:   e.Indicator.ID,
		IndicatorName: e.Indicator.Value,
		CountryID:     e.Country.ID,
		CountryName:   e.Country.Value,
		CountryISO3:   e.CountryISO3,
		Year:          year,
		Value:         e.Value,
		Decimal:       e.Decimal,
	}
	if e.Unit != nil {
		o.Unit = *e.Unit
	}
	if e.ObsStatus != nil {
		o.ObsStatus = *e.ObsStatus
	}
	return o
}

// SeriesKey identifies one plotted series within a render call.
type SeriesKey struct {
	CountryISO3 string `json:"country_iso3"`
	IndicatorID string `json:"indicator_id"`
}

// FiniteOrNil is a guard used by storage: JSON cannot represent NaN/±Inf,
// so non-finite values are normalized to null before encoding.
func FiniteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

var _ json.Unmarshaler = (*FlexUint)(nil)
