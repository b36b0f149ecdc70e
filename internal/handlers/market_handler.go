package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/markets"
	"github.com/ternarybob/quaestor/internal/models"
)

var validate = validator.New()

// MarketHandler handles market data API requests
type MarketHandler struct {
	market interfaces.MarketService
	logger arbor.ILogger
}

// NewMarketHandler creates a new market data handler
func NewMarketHandler(market interfaces.MarketService, logger arbor.ILogger) *MarketHandler {
	return &MarketHandler{
		market: market,
		logger: logger,
	}
}

// CompanyHandler returns the company profile for a symbol
// GET /api/company/{symbol}
func (h *MarketHandler) CompanyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol, ok := symbolFromPath(w, r)
	if !ok {
		return
	}

	profile, err := h.market.GetCompanyProfile(r.Context(), symbol)
	if err != nil {
		h.writeMarketError(w, err, symbol, "Failed to get company profile")
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// QuoteHandler returns a live quote for a symbol
// GET /api/market/{symbol}
func (h *MarketHandler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol, ok := symbolFromPath(w, r)
	if !ok {
		return
	}

	quote, err := h.market.GetQuote(r.Context(), symbol)
	if err != nil {
		h.writeMarketError(w, err, symbol, "Failed to get quote")
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// HistoricalHandler returns OHLCV history for a symbol and date range
// POST /api/historical {symbol, start_date, end_date, interval}
func (h *MarketHandler) HistoricalHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	req, ok := decodeHistoricalRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.market.GetHistorical(r.Context(), req)
	if err != nil {
		h.writeMarketError(w, err, req.Symbol, "Failed to get price history")
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// AnalyticsHandler returns return/volatility/moving-average analytics for a
// symbol and date range
// POST /api/analytics {symbol, start_date, end_date, interval}
func (h *MarketHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	req, ok := decodeHistoricalRequest(w, r)
	if !ok {
		return
	}

	result, err := h.market.GetAnalytics(r.Context(), req)
	if err != nil {
		h.writeMarketError(w, err, req.Symbol, "Failed to compute analytics")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// symbolFromPath extracts the {symbol} segment from /api/company/{symbol} or
// /api/market/{symbol}. Writes a 400 and returns false when missing.
func symbolFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 3 || strings.TrimSpace(pathParts[2]) == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return "", false
	}
	return strings.TrimSpace(pathParts[2]), true
}

func decodeHistoricalRequest(w http.ResponseWriter, r *http.Request) (models.HistoricalRequest, bool) {
	var req models.HistoricalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return req, false
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return req, false
	}
	return req, true
}

// writeMarketError maps service errors onto HTTP statuses: missing data 404,
// bad date ranges 400, missing provider token 503, provider rate limits 429,
// other provider failures pass their status through as 502 unless the
// provider itself said 404 or 429.
func (h *MarketHandler) writeMarketError(w http.ResponseWriter, err error, symbol, logMsg string) {
	var rateLimitErr *markets.RateLimitError
	var apiErr *markets.APIError

	switch {
	case errors.Is(err, interfaces.ErrNoMarketData):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, interfaces.ErrInvalidDateRange):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interfaces.ErrMarketNotConfigured):
		WriteError(w, http.StatusServiceUnavailable, "Market data provider not configured")
	case errors.As(err, &rateLimitErr):
		h.logger.Warn().Str("symbol", symbol).Msg("Market data provider rate limit reached")
		WriteError(w, http.StatusTooManyRequests, "Market data provider rate limit reached")
	case errors.As(err, &apiErr):
		h.logger.Warn().Err(err).Str("symbol", symbol).Msg(logMsg)
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			WriteError(w, http.StatusNotFound, "No data for symbol "+symbol)
		case http.StatusTooManyRequests:
			WriteError(w, http.StatusTooManyRequests, "Market data provider rate limit reached")
		default:
			WriteError(w, http.StatusBadGateway, "Market data provider request failed")
		}
	default:
		h.logger.Error().Err(err).Str("symbol", symbol).Msg(logMsg)
		WriteError(w, http.StatusInternalServerError, logMsg)
	}
}
