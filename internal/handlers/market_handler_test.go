package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/markets"
	"github.com/ternarybob/quaestor/internal/models"
)

// mockMarketService implements interfaces.MarketService for testing
type mockMarketService struct {
	getCompanyProfileFunc func(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	getQuoteFunc          func(ctx context.Context, symbol string) (*models.Quote, error)
	getHistoricalFunc     func(ctx context.Context, req models.HistoricalRequest) (*models.HistoricalResponse, error)
	getAnalyticsFunc      func(ctx context.Context, req models.HistoricalRequest) (*models.AnalyticsResult, error)
	configured            bool
}

func (m *mockMarketService) GetCompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	if m.getCompanyProfileFunc != nil {
		return m.getCompanyProfileFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if m.getQuoteFunc != nil {
		return m.getQuoteFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketService) GetHistorical(ctx context.Context, req models.HistoricalRequest) (*models.HistoricalResponse, error) {
	if m.getHistoricalFunc != nil {
		return m.getHistoricalFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockMarketService) GetAnalytics(ctx context.Context, req models.HistoricalRequest) (*models.AnalyticsResult, error) {
	if m.getAnalyticsFunc != nil {
		return m.getAnalyticsFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockMarketService) PurgeExpiredCache(ctx context.Context) (int, error) {
	return 0, nil
}

func (m *mockMarketService) IsConfigured() bool {
	return m.configured
}

func TestCompanyHandler_Success(t *testing.T) {
	mockService := &mockMarketService{
		getCompanyProfileFunc: func(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
			return &models.CompanyProfile{
				Symbol:   symbol,
				LongName: "Apple Inc.",
				Sector:   "Technology",
				Currency: "USD",
			}, nil
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/company/AAPL", nil)
	rec := httptest.NewRecorder()

	handler.CompanyHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var profile models.CompanyProfile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if profile.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %s", profile.Symbol)
	}
	if profile.LongName != "Apple Inc." {
		t.Errorf("Expected long name 'Apple Inc.', got %s", profile.LongName)
	}
}

func TestCompanyHandler_MissingSymbol(t *testing.T) {
	handler := NewMarketHandler(&mockMarketService{}, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/company/", nil)
	rec := httptest.NewRecorder()

	handler.CompanyHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["error"] != "Symbol is required" {
		t.Errorf("Expected 'Symbol is required' error, got %v", response["error"])
	}
}

func TestCompanyHandler_NotFound(t *testing.T) {
	mockService := &mockMarketService{
		getCompanyProfileFunc: func(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
			return nil, fmt.Errorf("%w: no fundamentals for %s", interfaces.ErrNoMarketData, symbol)
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/company/ZZZZ", nil)
	rec := httptest.NewRecorder()

	handler.CompanyHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestCompanyHandler_NotConfigured(t *testing.T) {
	mockService := &mockMarketService{
		getCompanyProfileFunc: func(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
			return nil, interfaces.ErrMarketNotConfigured
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/company/AAPL", nil)
	rec := httptest.NewRecorder()

	handler.CompanyHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["error"] != "Market data provider not configured" {
		t.Errorf("Unexpected error message: %v", response["error"])
	}
}

func TestCompanyHandler_MethodNotAllowed(t *testing.T) {
	handler := NewMarketHandler(&mockMarketService{}, arbor.NewLogger())
	req := httptest.NewRequest("POST", "/api/company/AAPL", nil)
	rec := httptest.NewRecorder()

	handler.CompanyHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}

func TestQuoteHandler_Success(t *testing.T) {
	mockService := &mockMarketService{
		getQuoteFunc: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return &models.Quote{
				Symbol:        symbol,
				MarketState:   "OPEN",
				CurrentPrice:  189.95,
				PreviousClose: 185.50,
				PriceChange:   4.45,
				Currency:      "USD",
			}, nil
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/market/AAPL", nil)
	rec := httptest.NewRecorder()

	handler.QuoteHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var quote models.Quote
	if err := json.NewDecoder(rec.Body).Decode(&quote); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if quote.MarketState != "OPEN" {
		t.Errorf("Expected market state OPEN, got %s", quote.MarketState)
	}
	if quote.CurrentPrice != 189.95 {
		t.Errorf("Expected current price 189.95, got %f", quote.CurrentPrice)
	}
}

func TestQuoteHandler_RateLimited(t *testing.T) {
	mockService := &mockMarketService{
		getQuoteFunc: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return nil, fmt.Errorf("fetching quote: %w", &markets.RateLimitError{RetryAfter: 30 * time.Second})
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/market/AAPL", nil)
	rec := httptest.NewRecorder()

	handler.QuoteHandler(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
}

func TestQuoteHandler_ProviderError(t *testing.T) {
	mockService := &mockMarketService{
		getQuoteFunc: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return nil, fmt.Errorf("fetching quote: %w", &markets.APIError{
				StatusCode: http.StatusInternalServerError,
				Message:    "upstream unavailable",
				Endpoint:   "/real-time/AAPL",
			})
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/market/AAPL", nil)
	rec := httptest.NewRecorder()

	handler.QuoteHandler(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}
}

func TestQuoteHandler_ProviderNotFound(t *testing.T) {
	mockService := &mockMarketService{
		getQuoteFunc: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return nil, fmt.Errorf("fetching quote: %w", &markets.APIError{
				StatusCode: http.StatusNotFound,
				Message:    "symbol not found",
				Endpoint:   "/real-time/ZZZZ",
			})
		},
	}

	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/market/ZZZZ", nil)
	rec := httptest.NewRecorder()

	handler.QuoteHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["error"] != "No data for symbol ZZZZ" {
		t.Errorf("Unexpected error message: %v", response["error"])
	}
}

func TestHistoricalHandler_Success(t *testing.T) {
	mockService := &mockMarketService{
		getHistoricalFunc: func(ctx context.Context, req models.HistoricalRequest) (*models.HistoricalResponse, error) {
			return &models.HistoricalResponse{
				Symbol:     req.Symbol,
				DataPoints: 2,
				History: []models.PricePoint{
					{Date: "2024-01-02", Open: 185.0, Close: 186.5, Volume: 1000},
					{Date: "2024-01-03", Open: 186.5, Close: 188.2, Volume: 1200},
				},
			}, nil
		},
	}

	body := `{"symbol":"AAPL","start_date":"2024-01-01","end_date":"2024-01-31","interval":"1d"}`
	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("POST", "/api/historical", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HistoricalHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if int(response["data_points"].(float64)) != 2 {
		t.Errorf("Expected 2 data points, got %v", response["data_points"])
	}
	history := response["history"].([]interface{})
	if len(history) != 2 {
		t.Errorf("Expected 2 history entries, got %d", len(history))
	}
}

func TestHistoricalHandler_InvalidJSON(t *testing.T) {
	handler := NewMarketHandler(&mockMarketService{}, arbor.NewLogger())
	req := httptest.NewRequest("POST", "/api/historical", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.HistoricalHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["error"] != "Invalid JSON payload" {
		t.Errorf("Unexpected error message: %v", response["error"])
	}
}

func TestHistoricalHandler_MissingDates(t *testing.T) {
	handler := NewMarketHandler(&mockMarketService{}, arbor.NewLogger())
	req := httptest.NewRequest("POST", "/api/historical", strings.NewReader(`{"symbol":"AAPL"}`))
	rec := httptest.NewRecorder()

	handler.HistoricalHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	msg, _ := response["error"].(string)
	if !strings.HasPrefix(msg, "Invalid request") {
		t.Errorf("Expected validation error message, got %v", response["error"])
	}
}

func TestHistoricalHandler_BadInterval(t *testing.T) {
	handler := NewMarketHandler(&mockMarketService{}, arbor.NewLogger())
	body := `{"symbol":"AAPL","start_date":"2024-01-01","end_date":"2024-01-31","interval":"5m"}`
	req := httptest.NewRequest("POST", "/api/historical", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HistoricalHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHistoricalHandler_InvalidDateRange(t *testing.T) {
	mockService := &mockMarketService{
		getHistoricalFunc: func(ctx context.Context, req models.HistoricalRequest) (*models.HistoricalResponse, error) {
			return nil, fmt.Errorf("%w: end_date %s is before start_date %s", interfaces.ErrInvalidDateRange, req.EndDate, req.StartDate)
		},
	}

	body := `{"symbol":"AAPL","start_date":"2024-03-01","end_date":"2024-01-01"}`
	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("POST", "/api/historical", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HistoricalHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	msg, _ := response["error"].(string)
	if !strings.Contains(msg, "before start_date") {
		t.Errorf("Expected date range error message, got %v", response["error"])
	}
}

func TestAnalyticsHandler_Success(t *testing.T) {
	sma20 := 186.2
	mockService := &mockMarketService{
		getAnalyticsFunc: func(ctx context.Context, req models.HistoricalRequest) (*models.AnalyticsResult, error) {
			return &models.AnalyticsResult{
				Symbol: req.Symbol,
				Period: models.AnalyticsPeriod{StartDate: req.StartDate, EndDate: req.EndDate, TradingDays: 21},
				Summary: models.AnalyticsSummary{
					CumulativeReturnPercent: 4.2,
					TrendDescription:        "upward",
				},
				MovingAverages:     models.MovingAverages{LastClosePrice: 188.2, SMA20: &sma20, MASignal: "bullish"},
				ActionableInsights: []string{"Price is above the 20-day moving average."},
			}, nil
		},
	}

	body := `{"symbol":"AAPL","start_date":"2024-01-01","end_date":"2024-01-31"}`
	handler := NewMarketHandler(mockService, arbor.NewLogger())
	req := httptest.NewRequest("POST", "/api/analytics", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.AnalyticsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var result models.AnalyticsResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Period.TradingDays != 21 {
		t.Errorf("Expected 21 trading days, got %d", result.Period.TradingDays)
	}
	if len(result.ActionableInsights) != 1 {
		t.Errorf("Expected 1 insight, got %d", len(result.ActionableInsights))
	}
}

func TestAnalyticsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewMarketHandler(&mockMarketService{}, arbor.NewLogger())
	req := httptest.NewRequest("GET", "/api/analytics", nil)
	rec := httptest.NewRecorder()

	handler.AnalyticsHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
