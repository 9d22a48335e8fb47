package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

func entryJSON(iso3, date string, value float64) string {
	return fmt.Sprintf(`{
		"indicator": {"id": "SP.POP.TOTL", "value": "Population, total"},
		"country": {"id": "DE", "value": "Germany"},
		"countryiso3code": %q,
		"date": %q,
		"value": %g,
		"unit": "",
		"obs_status": "",
		"decimal": 0
	}`, iso3, date, value)
}

func TestFetch_FollowsPagination(t *testing.T) {
	var pagesSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/indicator/") {
			// Unit enrichment metadata; irrelevant to this test.
			fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":"0","total":0},[]]`)
			return
		}
		page := r.URL.Query().Get("page")
		pagesSeen = append(pagesSeen, page)
		var body string
		switch page {
		case "1":
			body = fmt.Sprintf(`[{"page":1,"pages":2,"per_page":"1","total":2},[%s]]`, entryJSON("DEU", "2020", 83))
		case "2":
			body = fmt.Sprintf(`[{"page":2,"pages":2,"per_page":"1","total":2},[%s]]`, entryJSON("DEU", "2021", 84))
		default:
			t.Errorf("unexpected page %q", page)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rows, err := c.Fetch(context.Background(), []string{"DEU"}, []string{"SP.POP.TOTL"}, nil, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(pagesSeen) != 2 || pagesSeen[0] != "1" || pagesSeen[1] != "2" {
		t.Errorf("pages requested: %v", pagesSeen)
	}
	if rows[0].Year != 2020 || rows[1].Year != 2021 {
		t.Errorf("row years: %d, %d", rows[0].Year, rows[1].Year)
	}
}

func TestFetch_SurfacesAPIMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), []string{"XXX"}, []string{"BOGUS"}, nil, 0)
	if err == nil {
		t.Fatal("expected API error")
	}
	if !strings.Contains(err.Error(), "world bank api error") {
		t.Errorf("error does not surface API message: %v", err)
	}
}

func TestFetch_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), []string{"DEU"}, []string{"SP.POP.TOTL"}, nil, 0)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected HTTP 502 error, got %v", err)
	}
}

func TestFetch_RequiresInputs(t *testing.T) {
	c := NewClient("http://example.invalid")
	if _, err := c.Fetch(context.Background(), nil, []string{"X"}, nil, 0); err == nil {
		t.Error("missing countries should fail")
	}
	if _, err := c.Fetch(context.Background(), []string{"DEU"}, nil, nil, 0); err == nil {
		t.Error("missing indicators should fail")
	}
}

func TestFetch_MultiIndicatorFallbackMergesInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /country/{codes}/indicator/{code}
		var body string
		switch {
		case strings.Contains(r.URL.Path, "IND.ONE"):
			body = fmt.Sprintf(`[{"page":1,"pages":1,"per_page":"1","total":1},[%s]]`, entryJSON("DEU", "2020", 1))
		case strings.Contains(r.URL.Path, "IND.TWO"):
			body = fmt.Sprintf(`[{"page":1,"pages":1,"per_page":"1","total":1},[%s]]`, entryJSON("DEU", "2020", 2))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rows, err := c.Fetch(context.Background(), []string{"DEU"}, []string{"IND.ONE", "IND.TWO"}, nil, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Merged in indicator order regardless of completion order.
	if *rows[0].Value != 1 || *rows[1].Value != 2 {
		t.Errorf("merge order broken: %v, %v", *rows[0].Value, *rows[1].Value)
	}
}

func TestFetch_SourceSkipsFallback(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("source"); got != "2" {
			t.Errorf("source param = %q, want 2", got)
		}
		fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":"0","total":0},[]]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), []string{"DEU"}, []string{"IND.ONE", "IND.TWO"}, nil, 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one combined call, got %d", calls)
	}
}

func TestFetch_DateParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2000:2020" {
			t.Errorf("date param = %q, want 2000:2020", got)
		}
		fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":"0","total":0},[]]`)
	}))
	defer srv.Close()

	d := models.Range(2000, 2020)
	c := NewClient(srv.URL)
	if _, err := c.Fetch(context.Background(), []string{"DEU"}, []string{"X"}, &d, 0); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
}

func TestFetch_EnrichesMissingUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/indicator/") {
			fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":"1","total":1},
				[{"id":"SP.POP.TOTL","name":"Population, total","unit":"people","sourceNote":""}]]`)
			return
		}
		fmt.Fprintf(w, `[{"page":1,"pages":1,"per_page":"1","total":1},[%s]]`, entryJSON("DEU", "2020", 83))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rows, err := c.Fetch(context.Background(), []string{"DEU"}, []string{"SP.POP.TOTL"}, nil, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rows[0].Unit != "people" {
		t.Errorf("unit not enriched: %q", rows[0].Unit)
	}
}

func TestSortObservations(t *testing.T) {
	v := 1.0
	rows := []models.Observation{
		{CountryISO3: "USA", IndicatorID: "B", Year: 2020, Value: &v},
		{CountryISO3: "DEU", IndicatorID: "B", Year: 2021, Value: &v},
		{CountryISO3: "DEU", IndicatorID: "A", Year: 2020, Value: &v},
		{CountryISO3: "DEU", IndicatorID: "B", Year: 2019, Value: &v},
	}
	SortObservations(rows)
	want := []struct {
		iso3 string
		ind  string
		year int
	}{
		{"DEU", "A", 2020}, {"DEU", "B", 2019}, {"DEU", "B", 2021}, {"USA", "B", 2020},
	}
	for i, w := range want {
		if rows[i].CountryISO3 != w.iso3 || rows[i].IndicatorID != w.ind || rows[i].Year != w.year {
			t.Errorf("row %d = %s/%s/%d, want %s/%s/%d",
				i, rows[i].CountryISO3, rows[i].IndicatorID, rows[i].Year, w.iso3, w.ind, w.year)
		}
	}
}

func TestEncJoin(t *testing.T) {
	got := encJoin([]string{" DEU", "USA ", "SP.POP.TOTL"})
	if got != "DEU;USA;SP.POP.TOTL" {
		t.Errorf("encJoin = %q", got)
	}
}
