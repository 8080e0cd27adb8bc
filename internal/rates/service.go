package rates

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "finbot/internal/errors"
	"finbot/internal/logger"
)

// DefaultSymbols are quoted when the caller does not ask for specific codes.
var DefaultSymbols = []string{"USD", "EUR", "RUB"}

// Service tries its providers in order and returns the first non-empty answer.
// Successful answers are cached for ttl.
type Service struct {
	providers []Provider
	ttl       time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedRates
}

type cachedRates struct {
	rates     *Rates
	expiresAt time.Time
}

// NewService creates a Service over a fixed provider chain.
func NewService(ttl time.Duration, providers ...Provider) *Service {
	return &Service{
		providers: providers,
		ttl:       ttl,
		now:       time.Now,
		cache:     make(map[string]cachedRates),
	}
}

// NewDefaultService wires the primary exchangerate.host provider with the
// open.er-api fallback, both sharing one client with the given timeout.
func NewDefaultService(primaryURL, fallbackURL string, timeout, ttl time.Duration) *Service {
	client := &http.Client{Timeout: timeout}
	return NewService(ttl,
		NewExchangeRateHostProvider(client, primaryURL),
		NewOpenERAPIProvider(client, fallbackURL),
	)
}

// FetchRates returns rates for base against symbols, or ErrExternalService
// when no provider could answer.
func (s *Service) FetchRates(ctx context.Context, base string, symbols []string) (*Rates, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	symbols = NormalizeSymbols(symbols)
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}

	key := cacheKey(base, symbols)
	if cached, ok := s.cached(key); ok {
		return cached, nil
	}

	for _, p := range s.providers {
		r, err := p.Fetch(ctx, base, symbols)
		if err != nil {
			logger.Get().Warnw("rate provider failed", "provider", p.Name(), "base", base, "error", err)
			continue
		}
		if r == nil || len(r.Rates) == 0 {
			logger.Get().Infow("rate provider returned no rates", "provider", p.Name(), "base", base)
			continue
		}
		s.store(key, r)
		return r, nil
	}

	return nil, apperrors.WithMessage(apperrors.ErrExternalService, "exchange rates are unavailable")
}

func (s *Service) cached(key string) (*Rates, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.rates, true
}

func (s *Service) store(key string, r *Rates) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[key] = cachedRates{rates: r, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func cacheKey(base string, symbols []string) string {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	return base + ":" + strings.Join(sorted, ",")
}
