// internal/adapters/census/client.go
package census

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mass_housing/internal/adapters/observability"
	"mass_housing/internal/domain"
)

// ACS 5-year estimate variables.
const (
	varMedianIncome    = "B19013_001E"
	varPopulation      = "B01003_001E"
	varMedianHomeValue = "B25077_001E"
)

// ACS encodes missing estimates as large negative sentinels (-666666666 and
// friends); anything at or below this degrades to nil.
const missingSentinel = -666666

// Client talks to the Census Bureau ACS API. Responses are JSON arrays of
// arrays with a header row; cells arrive as strings or nulls.
type Client struct {
	base  string
	year  string
	state string
	key   string
	hc    *http.Client
	rl    *rate.Limiter
}

func New(base, key, year, stateFIPS string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("census API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:  base,
		year:  year,
		state: stateFIPS,
		key:   key,
		hc:    &http.Client{Timeout: 20 * time.Second},
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// TownDemographics fetches one row per county subdivision in the configured
// state. The towns argument is ignored — the agency decides coverage.
// Names are cleaned to bare town form and deduplicated first-wins.
func (c *Client) TownDemographics(ctx context.Context, _ []string) ([]domain.TownRecord, error) {
	rows, err := c.query(ctx, []string{"NAME", varMedianIncome, varPopulation}, "county subdivision:*")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([]domain.TownRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		name := CleanTownName(cellString(row[0]))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, domain.TownRecord{
			Town:         name,
			MedianIncome: cellFloat(row[1]),
			Population:   cellInt(row[2]),
		})
	}
	return out, nil
}

// CountyDemographics fetches the county-level rows, including median home
// value; kept as a secondary reference artifact.
func (c *Client) CountyDemographics(ctx context.Context) ([]domain.CountyRecord, error) {
	rows, err := c.query(ctx, []string{"NAME", varMedianIncome, varPopulation, varMedianHomeValue}, "county:*")
	if err != nil {
		return nil, err
	}

	out := make([]domain.CountyRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		name := cleanCountyName(cellString(row[0]))
		if name == "" {
			continue
		}
		out = append(out, domain.CountyRecord{
			County:          name,
			MedianIncome:    cellFloat(row[1]),
			Population:      cellInt(row[2]),
			MedianHomeValue: cellFloat(row[3]),
		})
	}
	return out, nil
}

func (c *Client) query(ctx context.Context, vars []string, forClause string) ([][]any, error) {
	q := url.Values{}
	q.Set("get", strings.Join(vars, ","))
	q.Set("for", forClause)
	q.Set("in", "state:"+c.state)
	q.Set("key", c.key)
	u := fmt.Sprintf("%s/%s/acs/acs5?%s", c.base, c.year, q.Encode())

	var out [][]any
	if err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("census: empty response")
	}
	return out[1:], nil // drop header row
}

// ---- name cleanup ----

// townSuffixes that ACS appends to subdivision names, e.g.
// "Somerville city, Middlesex County, Massachusetts".
var townSuffixes = []string{" town", " Town", " city", " City", " CDP"}

// CleanTownName reduces an ACS subdivision name to the bare town name: text
// before the first comma, legal-form suffix stripped, trimmed.
func CleanTownName(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	for _, suf := range townSuffixes {
		s = strings.TrimSuffix(s, suf)
	}
	return strings.TrimSpace(s)
}

func cleanCountyName(s string) string {
	s = strings.ReplaceAll(s, ", Massachusetts", "")
	s = strings.ReplaceAll(s, " County", "")
	return strings.TrimSpace(s)
}

// ---- cell coercion (cells arrive as string, number, or null) ----

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func cellFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f <= missingSentinel {
		return nil
	}
	return &f
}

func cellInt(v any) *int {
	f := cellFloat(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// ---- transport ----

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "mass-housing/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}

		observability.ObserveExternal("census", "acs5", resp.StatusCode)

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			// the API answers 204 for geographies with no rows
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("census: remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("census: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles each attempt (200ms, 400ms, 800ms...) with up to +50%
// jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
