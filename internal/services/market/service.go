// Package market serves company profiles, live quotes, price history, and
// analytics from the market data provider, caching profiles and quotes in
// KV storage so repeated lookups stay cheap.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/markets"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/analytics"
)

const (
	// CacheKeyPrefix namespaces all market cache entries in KV storage.
	CacheKeyPrefix = "market:"

	profileKeyPrefix = CacheKeyPrefix + "profile:"
	quoteKeyPrefix   = CacheKeyPrefix + "quote:"

	// DefaultProfileTTL is how long a cached company profile stays fresh.
	DefaultProfileTTL = 24 * time.Hour

	// DefaultQuoteTTL is how long a cached quote stays fresh.
	DefaultQuoteTTL = 60 * time.Second

	dateLayout = "2006-01-02"
)

// Service provides market data lookups with KV-backed caching.
type Service struct {
	client     *markets.Client
	kvSvc      interfaces.KeyValueStorage
	logger     arbor.ILogger
	profileTTL time.Duration
	quoteTTL   time.Duration
}

// NewService creates a market data service. TTLs come from the market
// configuration and fall back to defaults when unset or unparseable.
func NewService(client *markets.Client, kvStorage interfaces.KeyValueStorage, cfg *common.MarketConfig, logger arbor.ILogger) *Service {
	return &Service{
		client:     client,
		kvSvc:      kvStorage,
		logger:     logger,
		profileTTL: parseTTL(cfg.ProfileCacheTTL, DefaultProfileTTL),
		quoteTTL:   parseTTL(cfg.QuoteCacheTTL, DefaultQuoteTTL),
	}
}

// IsConfigured reports whether a provider client is available.
func (s *Service) IsConfigured() bool {
	return s.client != nil
}

// GetCompanyProfile retrieves the company profile for a symbol, using the
// cache when fresh.
func (s *Service) GetCompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var cached models.CompanyProfile
	if s.getFromCache(ctx, profileKeyPrefix+symbol, s.profileTTL, &cached) {
		s.logger.Debug().
			Str("symbol", symbol).
			Msg("Using cached company profile")
		return &cached, nil
	}

	profile, err := s.fetchProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.storeInCache(ctx, profileKeyPrefix+symbol, profile,
		fmt.Sprintf("Company profile for %s", symbol)); err != nil {
		s.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Msg("Failed to cache company profile")
	}

	return profile, nil
}

// GetQuote retrieves a live quote for a symbol, using the cache when fresh.
// The 52-week range comes from fundamentals and the trading state from the
// exchange details; both are best-effort.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var cached models.Quote
	if s.getFromCache(ctx, quoteKeyPrefix+symbol, s.quoteTTL, &cached) {
		s.logger.Debug().
			Str("symbol", symbol).
			Msg("Using cached quote")
		return &cached, nil
	}

	quote, err := s.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.storeInCache(ctx, quoteKeyPrefix+symbol, quote,
		fmt.Sprintf("Live quote for %s", symbol)); err != nil {
		s.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Msg("Failed to cache quote")
	}

	return quote, nil
}

// GetHistorical returns OHLCV bars for the requested range and interval.
// History is never cached.
func (s *Service) GetHistorical(ctx context.Context, req models.HistoricalRequest) (*models.HistoricalResponse, error) {
	symbol := normalizeSymbol(req.Symbol)
	from, to, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	bars, err := s.fetchBars(ctx, symbol, from, to, req.Interval)
	if err != nil {
		return nil, err
	}

	history := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		history = append(history, models.PricePoint{
			Date:   bar.DateStr,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Int("bars", len(history)).
		Msg("Fetched price history")

	return &models.HistoricalResponse{
		Symbol:     symbol,
		DataPoints: len(history),
		History:    history,
	}, nil
}

// GetAnalytics computes return, volatility, and moving-average insights over
// the closing prices in the requested range.
func (s *Service) GetAnalytics(ctx context.Context, req models.HistoricalRequest) (*models.AnalyticsResult, error) {
	symbol := normalizeSymbol(req.Symbol)
	from, to, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	bars, err := s.fetchBars(ctx, symbol, from, to, req.Interval)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, 0, len(bars))
	for _, bar := range bars {
		if bar.Close > 0 {
			closes = append(closes, bar.Close)
		}
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: no closing prices for %s", interfaces.ErrNoMarketData, symbol)
	}

	return analytics.Compute(symbol, req.StartDate, req.EndDate, closes), nil
}

// PurgeExpiredCache removes cached profiles and quotes past their TTL. The
// maintenance scheduler runs it periodically.
func (s *Service) PurgeExpiredCache(ctx context.Context) (int, error) {
	pairs, err := s.kvSvc.ListByPrefix(ctx, CacheKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing market cache entries: %w", err)
	}

	removed := 0
	for _, pair := range pairs {
		ttl := s.quoteTTL
		if strings.HasPrefix(pair.Key, profileKeyPrefix) {
			ttl = s.profileTTL
		}
		if time.Since(pair.UpdatedAt) < ttl {
			continue
		}
		if err := s.kvSvc.Delete(ctx, pair.Key); err != nil {
			s.logger.Warn().
				Err(err).
				Str("key", pair.Key).
				Msg("Failed to remove expired market cache entry")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("scanned", len(pairs)).
			Msg("Purged expired market cache entries")
	}

	return removed, nil
}

// fetchProfile fetches fundamentals and maps the general block to a profile.
func (s *Service) fetchProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	if s.client == nil {
		return nil, interfaces.ErrMarketNotConfigured
	}

	fundamentals, err := s.client.GetFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching fundamentals for %s: %w", symbol, err)
	}
	if fundamentals == nil || fundamentals.General == nil || fundamentals.General.Name == "" {
		return nil, fmt.Errorf("%w: no company data for %s", interfaces.ErrNoMarketData, symbol)
	}

	general := fundamentals.General
	shortName := general.Code
	if shortName == "" {
		shortName = general.Name
	}

	return &models.CompanyProfile{
		Symbol:    symbol,
		LongName:  general.Name,
		ShortName: shortName,
		Summary:   general.Description,
		Industry:  general.Industry,
		Sector:    general.Sector,
		Website:   general.WebURL,
		Country:   general.CountryName,
		Currency:  general.CurrencyCode,
		Officers:  mapOfficers(general.Officers),
	}, nil
}

// fetchQuote fetches the real-time quote and enriches it from fundamentals
// and exchange details.
func (s *Service) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.client == nil {
		return nil, interfaces.ErrMarketNotConfigured
	}

	rt, err := s.client.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching quote for %s: %w", symbol, err)
	}
	if rt == nil || rt.Close <= 0 || rt.PreviousClose <= 0 {
		return nil, fmt.Errorf("%w: no price data for %s", interfaces.ErrNoMarketData, symbol)
	}

	priceChange := rt.Close - rt.PreviousClose
	percentChange := (priceChange / rt.PreviousClose) * 100

	quote := &models.Quote{
		Symbol:        symbol,
		MarketState:   "CLOSED",
		CurrentPrice:  rt.Close,
		PreviousClose: rt.PreviousClose,
		PriceChange:   priceChange,
		PercentChange: percentChange,
		Volume:        rt.Volume,
		DayLow:        rt.Low,
		DayHigh:       rt.High,
	}

	exchangeCode := exchangeSuffix(symbol)
	if fundamentals, err := s.client.GetFundamentals(ctx, symbol); err != nil {
		s.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Msg("Fundamentals unavailable for quote enrichment")
	} else if fundamentals != nil {
		if general := fundamentals.General; general != nil {
			quote.Currency = general.CurrencyCode
			quote.Exchange = general.Exchange
			if general.Exchange != "" {
				exchangeCode = general.Exchange
			}
		}
		if tech := fundamentals.Technicals; tech != nil {
			quote.FiftyTwoWeekLow = tech.FiftyTwoWeekLow
			quote.FiftyTwoWeekHigh = tech.FiftyTwoWeekHigh
		}
	}

	if exchangeCode != "" {
		if details, err := s.client.GetExchangeDetails(ctx, exchangeCode); err != nil {
			s.logger.Warn().
				Err(err).
				Str("symbol", symbol).
				Str("exchange", exchangeCode).
				Msg("Exchange details unavailable, reporting market as closed")
		} else if details != nil && details.IsOpen {
			quote.MarketState = "OPEN"
		}
	}

	return quote, nil
}

// fetchBars fetches EOD bars in ascending date order for the given range.
func (s *Service) fetchBars(ctx context.Context, symbol string, from, to time.Time, interval string) (markets.EODResponse, error) {
	if s.client == nil {
		return nil, interfaces.ErrMarketNotConfigured
	}

	bars, err := s.client.GetEOD(ctx, symbol,
		markets.WithDateRange(from, to),
		markets.WithPeriod(markets.IntervalToPeriod(interval)),
		markets.WithOrder("a"))
	if err != nil {
		return nil, fmt.Errorf("fetching price history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no price history for %s", interfaces.ErrNoMarketData, symbol)
	}

	return bars, nil
}

// getFromCache loads a cached entry into out and reports whether it was
// present and within its TTL. The pair's UpdatedAt drives the freshness check.
func (s *Service) getFromCache(ctx context.Context, key string, ttl time.Duration, out interface{}) bool {
	pair, err := s.kvSvc.GetPair(ctx, key)
	if err != nil {
		return false
	}
	if time.Since(pair.UpdatedAt) >= ttl {
		return false
	}
	if err := json.Unmarshal([]byte(pair.Value), out); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("Discarding unreadable market cache entry")
		return false
	}
	return true
}

// storeInCache marshals value and upserts it under key.
func (s *Service) storeInCache(ctx context.Context, key string, value interface{}, description string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return s.kvSvc.Set(ctx, key, string(data), description)
}

// mapOfficers flattens the provider's officer map into a stable, ordered
// slice. The provider keys officers by numeric position.
func mapOfficers(officers map[string]markets.OfficerInfo) []models.Officer {
	mapped := make([]models.Officer, 0, len(officers))
	for _, key := range sortedOfficerKeys(officers) {
		officer := officers[key]
		if officer.Name == "" {
			continue
		}
		mapped = append(mapped, models.Officer{
			Name:  officer.Name,
			Title: officer.Title,
		})
	}
	return mapped
}

// normalizeSymbol upper-cases and trims a ticker symbol, translating
// exchange-qualified forms like "ASX:GNP" into the provider format. Cache
// keys use the normalized symbol, so qualified and provider-format lookups
// share one entry.
func normalizeSymbol(symbol string) string {
	return markets.NormalizeSymbol(symbol)
}

// exchangeSuffix returns the exchange portion of a provider ticker such as
// "ABN.AS", or "" when the symbol has no suffix.
func exchangeSuffix(symbol string) string {
	if idx := strings.LastIndex(symbol, "."); idx >= 0 && idx < len(symbol)-1 {
		return symbol[idx+1:]
	}
	return ""
}

// parseTTL parses a duration string, falling back when empty or invalid.
func parseTTL(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	ttl, err := time.ParseDuration(value)
	if err != nil || ttl <= 0 {
		return fallback
	}
	return ttl
}

// parseDateRange parses and orders the YYYY-MM-DD range bounds.
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start_date %q", interfaces.ErrInvalidDateRange, startDate)
	}
	to, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end_date %q", interfaces.ErrInvalidDateRange, endDate)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %s is before start_date %s", interfaces.ErrInvalidDateRange, endDate, startDate)
	}
	return from, to, nil
}

// sortedOfficerKeys orders the provider's numeric officer keys so the
// resulting slice is deterministic.
func sortedOfficerKeys(officers map[string]markets.OfficerInfo) []string {
	keys := make([]string, 0, len(officers))
	for key := range officers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
