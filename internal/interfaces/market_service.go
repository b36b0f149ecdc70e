package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/quaestor/internal/models"
)

// ErrNoMarketData indicates the provider has no data for the requested
// symbol or date range. Handlers translate it to a 404 response.
var ErrNoMarketData = errors.New("market data not found")

// ErrMarketNotConfigured indicates no provider API token is set. Handlers
// translate it to a 503 response.
var ErrMarketNotConfigured = errors.New("market data client not configured")

// ErrInvalidDateRange indicates a malformed or inverted start/end date pair.
// Handlers translate it to a 400 response.
var ErrInvalidDateRange = errors.New("invalid date range")

// MarketService serves company, quote, historical, and analytics lookups
// backed by the market data provider. Profiles and quotes are cached in KV
// storage with separate TTLs; history and analytics always hit the provider.
type MarketService interface {
	// GetCompanyProfile returns the company profile for a symbol.
	GetCompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error)

	// GetQuote returns a live quote for a symbol, enriched with the 52-week
	// range and exchange trading state when available.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetHistorical returns OHLCV bars for the requested range and interval.
	GetHistorical(ctx context.Context, req models.HistoricalRequest) (*models.HistoricalResponse, error)

	// GetAnalytics computes return, volatility, and moving-average insights
	// over the requested range.
	GetAnalytics(ctx context.Context, req models.HistoricalRequest) (*models.AnalyticsResult, error)

	// PurgeExpiredCache removes cached profiles and quotes past their TTL
	// and returns the number of entries removed.
	PurgeExpiredCache(ctx context.Context) (int, error)

	// IsConfigured reports whether a provider client is available.
	IsConfigured() bool
}
