package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// OpenERAPIProvider queries open.er-api.com style endpoints (`/{base}`).
type OpenERAPIProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenERAPIProvider creates a provider for the given endpoint URL.
func NewOpenERAPIProvider(httpClient *http.Client, baseURL string) *OpenERAPIProvider {
	return &OpenERAPIProvider{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the provider's display name.
func (p *OpenERAPIProvider) Name() string { return "open.er-api.com" }

type openERAPIResponse struct {
	Result            string             `json:"result"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	Rates             map[string]float64 `json:"rates"`
}

func (r *openERAPIResponse) decode(resp *http.Response) error {
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return fmt.Errorf("decoding open.er-api response: %w", err)
	}
	return nil
}

// Fetch downloads the full table for base and keeps the requested symbols.
func (p *OpenERAPIProvider) Fetch(ctx context.Context, base string, symbols []string) (*Rates, error) {
	var body openERAPIResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"/"+url.PathEscape(base), &body); err != nil {
		return nil, err
	}
	if body.Result == "error" {
		return nil, fmt.Errorf("open.er-api returned an error for %s", base)
	}
	return &Rates{
		Base:  base,
		Date:  body.TimeLastUpdateUTC,
		Rates: filterSymbols(body.Rates, symbols),
	}, nil
}
