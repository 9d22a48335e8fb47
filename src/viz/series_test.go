package viz

import (
	"errors"
	"testing"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

func namedObs(iso3, country, indID, indName string, year int, value *float64) models.Observation {
	return models.Observation{
		IndicatorID:   indID,
		IndicatorName: indName,
		CountryISO3:   iso3,
		CountryName:   country,
		Year:          year,
		Value:         value,
	}
}

func fp(v float64) *float64 { return &v }

func TestBuildSeries_GroupsAndSorts(t *testing.T) {
	points := []models.Observation{
		namedObs("USA", "United States", "SP.POP.TOTL", "Population, total", 2021, fp(332)),
		namedObs("DEU", "Germany", "SP.POP.TOTL", "Population, total", 2021, fp(83)),
		namedObs("DEU", "Germany", "SP.POP.TOTL", "Population, total", 2020, fp(82)),
		namedObs("USA", "United States", "SP.POP.TOTL", "Population, total", 2020, fp(331)),
	}
	series, err := BuildSeries(points)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("series count = %d, want 2", len(series))
	}
	// Sorted by country label: Germany before United States.
	if series[0].Label != "Germany" || series[1].Label != "United States" {
		t.Errorf("labels = %q, %q; one indicator means country-only labels", series[0].Label, series[1].Label)
	}
	// Points sorted by year inside each series.
	if series[0].Points[0].Year != 2020 || series[0].Points[1].Year != 2021 {
		t.Errorf("points not year-sorted: %+v", series[0].Points)
	}
}

func TestBuildSeries_LabelRules(t *testing.T) {
	// One country, many indicators: indicator-only labels.
	points := []models.Observation{
		namedObs("DEU", "Germany", "A", "Alpha", 2020, fp(1)),
		namedObs("DEU", "Germany", "B", "Beta", 2020, fp(2)),
	}
	series, err := BuildSeries(points)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	if series[0].Label != "Alpha" || series[1].Label != "Beta" {
		t.Errorf("one-country labels = %q, %q", series[0].Label, series[1].Label)
	}

	// Both vary: combined label.
	points = append(points, namedObs("USA", "United States", "A", "Alpha", 2020, fp(3)))
	series, err = BuildSeries(points)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	for _, s := range series {
		if s.Label != s.CountryLabel+" — "+s.IndicatorLabel {
			t.Errorf("combined label = %q", s.Label)
		}
	}
}

func TestBuildSeries_SkipsInvalidRows(t *testing.T) {
	points := []models.Observation{
		namedObs("DEU", "Germany", "A", "Alpha", 0, fp(1)),    // unparseable year
		namedObs("DEU", "Germany", "A", "Alpha", 2020, nil),   // missing value
		namedObs("DEU", "Germany", "A", "Alpha", 2021, fp(5)), // valid
	}
	series, err := BuildSeries(points)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	if len(series) != 1 || len(series[0].Points) != 1 {
		t.Fatalf("expected exactly one valid point, got %+v", series)
	}
	if series[0].Points[0].Year != 2021 {
		t.Errorf("kept wrong point: %+v", series[0].Points[0])
	}
}

func TestBuildSeries_DuplicateYearLastWins(t *testing.T) {
	points := []models.Observation{
		namedObs("DEU", "Germany", "A", "Alpha", 2020, fp(1)),
		namedObs("DEU", "Germany", "A", "Alpha", 2020, fp(9)),
	}
	series, err := BuildSeries(points)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	if len(series[0].Points) != 1 || series[0].Points[0].Value != 9 {
		t.Errorf("duplicate year handling: %+v", series[0].Points)
	}
}

func TestBuildSeries_ErrorOrder(t *testing.T) {
	if _, err := BuildSeries(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty input: got %v", err)
	}
	noYears := []models.Observation{namedObs("DEU", "Germany", "A", "Alpha", 0, fp(1))}
	if _, err := BuildSeries(noYears); !errors.Is(err, ErrNoValidYears) {
		t.Errorf("no years: got %v", err)
	}
	noValues := []models.Observation{namedObs("DEU", "Germany", "A", "Alpha", 2020, nil)}
	if _, err := BuildSeries(noValues); !errors.Is(err, ErrNoNumericValues) {
		t.Errorf("no values: got %v", err)
	}
}

func TestDeriveTitle(t *testing.T) {
	one := []models.Observation{namedObs("DEU", "Germany", "A", "Population, total", 2020, fp(1))}
	if got := deriveTitle(one, ""); got != "Population, total" {
		t.Errorf("single indicator: %q", got)
	}
	if got := deriveTitle(one, titlePlaceholder); got != "Population, total" {
		t.Errorf("placeholder should derive: %q", got)
	}
	if got := deriveTitle(one, "Custom"); got != "Custom" {
		t.Errorf("custom title overridden: %q", got)
	}

	var many []models.Observation
	for _, n := range []string{"A name", "B name", "C name", "D name", "E name"} {
		many = append(many, namedObs("DEU", "Germany", n, n, 2020, fp(1)))
	}
	if got := deriveTitle(many, ""); got != "A name + 4 more" {
		t.Errorf("many indicators: %q", got)
	}
}
