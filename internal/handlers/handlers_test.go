package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finbot/internal/errors"
	"finbot/internal/logger"
	"finbot/internal/rates"
	"finbot/internal/testutil"
	"finbot/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// --- mock rate fetcher ---

type mockRates struct {
	fetchFn func(ctx context.Context, base string, symbols []string) (*rates.Rates, error)
	calls   int
}

func (m *mockRates) FetchRates(ctx context.Context, base string, symbols []string) (*rates.Rates, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, base, symbols)
	}
	return &rates.Rates{Base: base, Date: "2026-10-15", Rates: map[string]float64{"USD": 0.0108}}, nil
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}

func TestGetRates(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock := &mockRates{}
		var gotBase string
		var gotSymbols []string
		mock.fetchFn = func(_ context.Context, base string, symbols []string) (*rates.Rates, error) {
			gotBase, gotSymbols = base, symbols
			return &rates.Rates{Base: base, Date: "2026-10-15", Rates: map[string]float64{"USD": 0.0108, "EUR": 0.0099}}, nil
		}
		r := NewRouter(RouterConfig{Rates: mock})

		rec := doRequest(r, http.MethodGet, "/api/rates?base=RUB&symbols=usd,EUR,usd", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotBase != "RUB" || len(gotSymbols) != 2 || gotSymbols[0] != "USD" || gotSymbols[1] != "EUR" {
			t.Errorf("unexpected fetch arguments %q %v", gotBase, gotSymbols)
		}
		body := parseJSON(t, rec)
		if body["base"] != "RUB" || body["date"] != "2026-10-15" {
			t.Errorf("unexpected body %v", body)
		}
		if quoted, ok := body["rates"].(map[string]interface{}); !ok || len(quoted) != 2 {
			t.Errorf("expected two quotes, got %v", body["rates"])
		}
	})

	t.Run("default_symbols", func(t *testing.T) {
		var gotSymbols []string
		mock := &mockRates{fetchFn: func(_ context.Context, base string, symbols []string) (*rates.Rates, error) {
			gotSymbols = symbols
			return &rates.Rates{Base: base, Rates: map[string]float64{"USD": 1}}, nil
		}}
		rec := doRequest(NewRouter(RouterConfig{Rates: mock}), http.MethodGet, "/api/rates?base=USD", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotSymbols != nil {
			t.Errorf("expected no symbols to be forwarded, got %v", gotSymbols)
		}
	})

	t.Run("base_defaults_to_rub", func(t *testing.T) {
		var gotBase string
		mock := &mockRates{fetchFn: func(_ context.Context, base string, _ []string) (*rates.Rates, error) {
			gotBase = base
			return &rates.Rates{Base: base, Rates: map[string]float64{"USD": 0.0108}}, nil
		}}
		rec := doRequest(NewRouter(RouterConfig{Rates: mock}), http.MethodGet, "/api/rates", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotBase != "RUB" {
			t.Errorf("expected base RUB, got %q", gotBase)
		}
	})

	t.Run("lowercase_base", func(t *testing.T) {
		var gotBase string
		mock := &mockRates{fetchFn: func(_ context.Context, base string, _ []string) (*rates.Rates, error) {
			gotBase = base
			return &rates.Rates{Base: base, Rates: map[string]float64{"EUR": 0.92}}, nil
		}}
		rec := doRequest(NewRouter(RouterConfig{Rates: mock}), http.MethodGet, "/api/rates?base=usd", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotBase != "USD" {
			t.Errorf("expected base USD, got %q", gotBase)
		}
	})

	t.Run("unknown_base", func(t *testing.T) {
		mock := &mockRates{}
		rec := doRequest(NewRouter(RouterConfig{Rates: mock}), http.MethodGet, "/api/rates?base=XXX", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		if mock.calls != 0 {
			t.Error("providers must not be queried for invalid input")
		}
	})

	t.Run("unknown_symbol", func(t *testing.T) {
		rec := doRequest(NewRouter(RouterConfig{Rates: &mockRates{}}), http.MethodGet, "/api/rates?base=RUB&symbols=USD,ZZZ", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("providers_unavailable", func(t *testing.T) {
		mock := &mockRates{fetchFn: func(context.Context, string, []string) (*rates.Rates, error) {
			return nil, apperrors.ErrExternalService
		}}
		rec := doRequest(NewRouter(RouterConfig{Rates: mock}), http.MethodGet, "/api/rates?base=RUB", nil)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXTERNAL_SERVICE_UNAVAILABLE")
	})

	t.Run("api_key_required", func(t *testing.T) {
		r := NewRouter(RouterConfig{Rates: &mockRates{}, APIKey: "local-secret"})

		rec := doRequest(r, http.MethodGet, "/api/rates?base=RUB", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")

		rec = doRequest(r, http.MethodGet, "/api/rates?base=RUB", map[string]string{"X-API-Key": "local-secret"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with the key, got %d", rec.Code)
		}
	})
}

func TestGetHealth(t *testing.T) {
	t.Run("database_up", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		r := NewRouter(RouterConfig{DB: db, Rates: &mockRates{}, APIKey: "local-secret"})
		rec := doRequest(r, http.MethodGet, "/api/health", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := parseJSON(t, rec); body["status"] != "ok" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("database_down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.TeardownTestDB(t, db)

		rec := doRequest(NewRouter(RouterConfig{DB: db, Rates: &mockRates{}}), http.MethodGet, "/api/health", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if body := parseJSON(t, rec); body["database"] != "unreachable" {
			t.Errorf("unexpected body %v", body)
		}
	})
}
