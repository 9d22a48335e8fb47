// Package api is the client for the World Bank Indicators API (v2).
//
// It covers the country/{codes}/indicator/{codes} endpoint and returns tidy
// observation rows. Pagination is followed automatically; responses arrive
// as a two-element array [Meta, [Entry, ...]], or as an object carrying a
// "message" list on API-level errors.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/logx"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

const (
	// DefaultBaseURL is the public v2 API root.
	DefaultBaseURL = "https://api.worldbank.org/v2"

	perPage  = 1000
	maxPages = 1000 // cap against pathological jobs

	userAgent = "wbfetch/1.0"
)

// Client talks to one World Bank API endpoint.
type Client struct {
	BaseURL string
	hc      *http.Client
}

// NewClient builds a client against baseURL, falling back to the public
// API when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// encJoin percent-encodes each code and joins them with the API's ";"
// list separator. "-", "_" and "." stay unescaped, as usual for
// indicator ids.
func encJoin(parts []string) string {
	enc := make([]string, 0, len(parts))
	for _, p := range parts {
		enc = append(enc, url.PathEscape(strings.TrimSpace(p)))
	}
	return strings.Join(enc, ";")
}

// Fetch retrieves observations for the given country and indicator codes.
//
// countries accepts ISO2, ISO3, and aggregate codes; indicators accepts
// indicator ids like "SP.POP.TOTL". date narrows to a year or inclusive
// range. source is the numeric source id the API requires for efficient
// multi-indicator calls; when it is zero and several indicators are
// requested, each indicator is fetched in its own request concurrently and
// the results are merged in indicator order.
//
// Rows missing a unit are enriched from indicator metadata afterwards; a
// failed metadata call is logged and ignored so the primary fetch never
// fails on it.
func (c *Client) Fetch(ctx context.Context, countries, indicators []string, date *models.DateSpec, source int) ([]models.Observation, error) {
	if len(countries) == 0 {
		return nil, fmt.Errorf("at least one country/region code required")
	}
	if len(indicators) == 0 {
		return nil, fmt.Errorf("at least one indicator code required")
	}

	if len(indicators) > 1 && source == 0 {
		return c.fetchPerIndicator(ctx, countries, indicators, date)
	}

	base := fmt.Sprintf("%s/country/%s/indicator/%s?format=json&per_page=%d",
		c.BaseURL, encJoin(countries), encJoin(indicators), perPage)
	if date != nil {
		base += "&date=" + date.Query()
	}
	if source != 0 {
		base += fmt.Sprintf("&source=%d", source)
	}

	var out []models.Observation
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("page limit exceeded (%d)", maxPages)
		}
		pageURL := fmt.Sprintf("%s&page=%d", base, page)
		meta, entries, err := c.getPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out = append(out, e.Observation())
		}
		if page >= int(meta.Pages) {
			break
		}
	}

	c.enrichUnits(ctx, indicators, out)
	return out, nil
}

// fetchPerIndicator runs one request per indicator concurrently and merges
// the results in the caller's indicator order, so output stays
// deterministic regardless of completion order.
func (c *Client) fetchPerIndicator(ctx context.Context, countries, indicators []string, date *models.DateSpec) ([]models.Observation, error) {
	results := make([][]models.Observation, len(indicators))
	g, gctx := errgroup.WithContext(ctx)
	for i, ind := range indicators {
		i, ind := i, ind
		g.Go(func() error {
			rows, err := c.Fetch(gctx, countries, []string{ind}, date, 0)
			if err != nil {
				return fmt.Errorf("indicator %s: %w", ind, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []models.Observation
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

// getPage fetches one data page and decodes the [Meta, [Entry...]] shape.
func (c *Client) getPage(ctx context.Context, pageURL string) (models.Meta, []models.Entry, error) {
	var meta models.Meta
	arr, err := c.getJSONArray(ctx, pageURL)
	if err != nil {
		return meta, nil, err
	}
	if err := json.Unmarshal(arr[0], &meta); err != nil {
		return meta, nil, fmt.Errorf("parse meta: %w", err)
	}
	var entries []models.Entry
	if len(arr) > 1 {
		if err := json.Unmarshal(arr[1], &entries); err != nil {
			return meta, nil, fmt.Errorf("parse entries: %w", err)
		}
	}
	return meta, entries, nil
}

// getJSONArray performs one GET and validates the top-level array shape,
// surfacing API "message" payloads as errors. There is deliberately no
// retry here; transient failures propagate to the caller.
func (c *Client) getJSONArray(ctx context.Context, u string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: request failed with HTTP %s", u, resp.Status)
	}

	var arr []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&arr); err != nil {
		return nil, fmt.Errorf("GET %s: unexpected response shape: %w", u, err)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("GET %s: unexpected response: empty array", u)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(arr[0], &probe); err == nil {
		if msg, ok := probe["message"]; ok {
			return nil, fmt.Errorf("world bank api error: %s", string(msg))
		}
	}
	return arr, nil
}

// FetchIndicatorUnits loads indicator metadata and returns a map from
// indicator id to its unit string. Indicators without a unit are absent
// from the map.
func (c *Client) FetchIndicatorUnits(ctx context.Context, indicators []string) (map[string]string, error) {
	if len(indicators) == 0 {
		return map[string]string{}, nil
	}
	u := fmt.Sprintf("%s/indicator/%s?format=json&per_page=%d", c.BaseURL, encJoin(indicators), perPage)
	arr, err := c.getJSONArray(ctx, u)
	if err != nil {
		return nil, err
	}
	var metas []models.IndicatorMeta
	if len(arr) > 1 {
		if err := json.Unmarshal(arr[1], &metas); err != nil {
			return nil, fmt.Errorf("parse indicator metadata: %w", err)
		}
	}
	units := map[string]string{}
	for _, m := range metas {
		if m.Unit != nil && strings.TrimSpace(*m.Unit) != "" {
			units[m.ID] = *m.Unit
		}
	}
	return units, nil
}

// enrichUnits fills empty Unit fields from indicator metadata, in place.
func (c *Client) enrichUnits(ctx context.Context, indicators []string, rows []models.Observation) {
	missing := false
	for _, r := range rows {
		if strings.TrimSpace(r.Unit) == "" {
			missing = true
			break
		}
	}
	if !missing {
		return
	}
	units, err := c.FetchIndicatorUnits(ctx, indicators)
	if err != nil {
		logx.Warnf("indicator unit metadata unavailable: %v", err)
		return
	}
	for i := range rows {
		if strings.TrimSpace(rows[i].Unit) == "" {
			if u, ok := units[rows[i].IndicatorID]; ok {
				rows[i].Unit = u
			}
		}
	}
}

// SortObservations orders rows by country, indicator, then year. Storage
// writers use it so repeated runs produce identical files.
func SortObservations(rows []models.Observation) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CountryISO3 != b.CountryISO3 {
			return a.CountryISO3 < b.CountryISO3
		}
		if a.IndicatorID != b.IndicatorID {
			return a.IndicatorID < b.IndicatorID
		}
		return a.Year < b.Year
	})
}
