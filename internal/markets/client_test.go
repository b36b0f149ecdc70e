package markets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEOD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/ABN.AS", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "2023-01-02", r.URL.Query().Get("from"))
		assert.Equal(t, "2023-01-06", r.URL.Query().Get("to"))
		assert.Equal(t, "d", r.URL.Query().Get("period"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2023-01-02","open":13.1,"high":13.4,"low":13.0,"close":13.3,"adjusted_close":13.3,"volume":1200000},
			{"date":"2023-01-03","open":13.3,"high":13.6,"low":13.2,"close":13.5,"adjusted_close":13.5,"volume":980000}
		]`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithRateLimit(100))

	from := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC)
	result, err := client.GetEOD(context.Background(), "ABN.AS", WithDateRange(from, to))

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, 13.3, result[0].Close)
	assert.Equal(t, "2023-01-03", result[1].Date.Format("2006-01-02"))
}

func TestGetEODAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Symbol not found"))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithRateLimit(100))

	_, err := client.GetEOD(context.Background(), "NOPE.XX")
	assert.Error(t, err)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/eod/NOPE.XX", apiErr.Endpoint)
}

func TestGetRealTimeQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/AAPL.US", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"AAPL.US","timestamp":1693342800,"open":208.35,"high":210.2,"low":207.4,"close":209.3,"volume":29433900,"previousClose":208.9,"change":0.4,"change_p":0.1915}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithRateLimit(100))

	quote, err := client.GetRealTimeQuote(context.Background(), "AAPL.US")
	assert.NoError(t, err)
	assert.Equal(t, 209.3, quote.Close)
	assert.Equal(t, 208.9, quote.PreviousClose)
	assert.Equal(t, 0.1915, quote.ChangePercent)
}

func TestGetFundamentals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/ABN.AS", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"General": {
				"Code": "ABN",
				"Name": "ABN AMRO Bank N.V.",
				"Exchange": "AS",
				"CurrencyCode": "EUR",
				"Sector": "Financial Services",
				"Industry": "Banks - Diversified",
				"Officers": {"0": {"Name": "Robert Swaak", "Title": "CEO"}}
			},
			"Technicals": {"52WeekHigh": 16.5, "52WeekLow": 11.8}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithRateLimit(100))

	fundamentals, err := client.GetFundamentals(context.Background(), "ABN.AS")
	assert.NoError(t, err)
	assert.NotNil(t, fundamentals.General)
	assert.Equal(t, "ABN AMRO Bank N.V.", fundamentals.General.Name)
	assert.Equal(t, "CEO", fundamentals.General.Officers["0"].Title)
	assert.NotNil(t, fundamentals.Technicals)
	assert.Equal(t, 16.5, fundamentals.Technicals.FiftyTwoWeekHigh)
}

func TestIntervalToPeriod(t *testing.T) {
	tests := []struct {
		interval string
		want     string
	}{
		{"1d", "d"},
		{"1wk", "w"},
		{"1mo", "m"},
		{"", "d"},
		{"bogus", "d"},
	}

	for _, tt := range tests {
		if got := IntervalToPeriod(tt.interval); got != tt.want {
			t.Errorf("IntervalToPeriod(%q) = %q, want %q", tt.interval, got, tt.want)
		}
	}
}
