package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ExchangeRateHostProvider queries exchangerate.host style endpoints
// (`?base=RUB&symbols=USD,EUR`).
type ExchangeRateHostProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewExchangeRateHostProvider creates a provider for the given endpoint URL.
func NewExchangeRateHostProvider(httpClient *http.Client, baseURL string) *ExchangeRateHostProvider {
	return &ExchangeRateHostProvider{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the provider's display name.
func (p *ExchangeRateHostProvider) Name() string { return "exchangerate.host" }

type exchangeRateHostResponse struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func (r *exchangeRateHostResponse) decode(resp *http.Response) error {
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return fmt.Errorf("decoding exchangerate.host response: %w", err)
	}
	return nil
}

// Fetch asks for the symbols directly and, when that comes back empty, asks
// for the full table and filters it locally.
func (p *ExchangeRateHostProvider) Fetch(ctx context.Context, base string, symbols []string) (*Rates, error) {
	q := url.Values{}
	q.Set("base", base)
	if len(symbols) > 0 {
		q.Set("symbols", strings.Join(symbols, ","))
	}

	var body exchangeRateHostResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	rates := filterSymbols(body.Rates, symbols)

	if len(rates) == 0 && len(symbols) > 0 {
		q.Del("symbols")
		var full exchangeRateHostResponse
		if err := getJSON(ctx, p.httpClient, p.baseURL+"?"+q.Encode(), &full); err != nil {
			return nil, err
		}
		rates = filterSymbols(full.Rates, symbols)
		if full.Date != "" {
			body.Date = full.Date
		}
	}

	return &Rates{Base: base, Date: body.Date, Rates: rates}, nil
}
