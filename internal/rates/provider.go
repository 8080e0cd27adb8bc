// Package rates looks up currency exchange rates from public HTTP providers.
package rates

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Rates is a set of exchange rates quoted against Base.
type Rates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Provider fetches exchange rates for a base currency.
type Provider interface {
	// Name returns the provider's display name.
	Name() string

	// Fetch returns rates for base restricted to symbols. An empty result
	// without an error means the provider had nothing for the request.
	Fetch(ctx context.Context, base string, symbols []string) (*Rates, error)
}

// filterSymbols keeps the requested symbols that are present in all.
func filterSymbols(all map[string]float64, symbols []string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if r, ok := all[s]; ok {
			out[s] = r
		}
	}
	return out
}

func getJSON(ctx context.Context, client *http.Client, url string, dst interface{ decode(*http.Response) error }) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("rates http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rates request: unexpected status %d", resp.StatusCode)
	}
	return dst.decode(resp)
}

// NormalizeSymbols upper-cases, trims and de-duplicates a list of codes.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
