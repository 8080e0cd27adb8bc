package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
	"finbot/internal/rates"
	"finbot/internal/validator"
)

// RateFetcher looks up exchange rates.
type RateFetcher interface {
	FetchRates(ctx context.Context, base string, symbols []string) (*rates.Rates, error)
}

// RatesHandler serves exchange rates over HTTP.
type RatesHandler struct {
	rates RateFetcher
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(fetcher RateFetcher) *RatesHandler {
	return &RatesHandler{rates: fetcher}
}

// RatesQuery is the query string of GET /api/rates. Base defaults to RUB.
type RatesQuery struct {
	Base    string `form:"base" binding:"omitempty,iso4217"`
	Symbols string `form:"symbols"`
}

// GetRates returns exchange rates for a base currency
// @Summary     Get exchange rates
// @Description Quote a base currency against a comma separated list of symbols (default USD,EUR,RUB)
// @Tags        rates
// @Produce     json
// @Param       base    query string false "Base currency (ISO 4217, default RUB)"
// @Param       symbols query string false "Comma separated target currencies"
// @Success     200 {object} rates.Rates
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or missing API key"
// @Failure     502 {object} ErrorResponse "No provider could answer"
// @Router      /rates [get]
// @Security    APIKey
func (h *RatesHandler) GetRates(c *gin.Context) {
	var q RatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	base := strings.ToUpper(strings.TrimSpace(q.Base))
	if base == "" {
		base = models.DefaultCurrency
	}

	var symbols []string
	if q.Symbols != "" {
		symbols = rates.NormalizeSymbols(strings.Split(q.Symbols, ","))
		for _, s := range symbols {
			if !validator.IsCurrency(s) {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown currency code: "+s))
				return
			}
		}
	}

	result, err := h.rates.FetchRates(c.Request.Context(), base, symbols)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
