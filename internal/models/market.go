package models

// Officer is one key executive from the company fundamentals
type Officer struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// CompanyProfile is the API shape for GET /api/company/{symbol}
type CompanyProfile struct {
	Symbol    string    `json:"symbol"`
	LongName  string    `json:"long_name"`
	ShortName string    `json:"short_name"`
	Summary   string    `json:"summary"`
	Industry  string    `json:"industry"`
	Sector    string    `json:"sector"`
	Website   string    `json:"website"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	Officers  []Officer `json:"key_officers"`
}

// Quote is the API shape for GET /api/market/{symbol}
type Quote struct {
	Symbol           string  `json:"symbol"`
	MarketState      string  `json:"market_state"` // "OPEN" or "CLOSED"
	CurrentPrice     float64 `json:"current_price"`
	PreviousClose    float64 `json:"previous_close"`
	PriceChange      float64 `json:"price_change"`
	PercentChange    float64 `json:"percent_change"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchange"`
	Volume           int64   `json:"volume"`
	DayLow           float64 `json:"day_low"`
	DayHigh          float64 `json:"day_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
}

// PricePoint is one OHLCV bar in a historical price series
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoricalRequest is the POST /api/historical and POST /api/analytics payload
type HistoricalRequest struct {
	Symbol    string `json:"symbol" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Interval  string `json:"interval" validate:"omitempty,oneof=1d 1wk 1mo"`
}

// HistoricalResponse is the API shape for POST /api/historical
type HistoricalResponse struct {
	Symbol     string       `json:"symbol"`
	DataPoints int          `json:"data_points"`
	History    []PricePoint `json:"history"`
}

// AnalyticsPeriod describes the analyzed date range
type AnalyticsPeriod struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TradingDays int    `json:"trading_days"`
}

// AnalyticsSummary carries the return and volatility figures, in percent
type AnalyticsSummary struct {
	CumulativeReturnPercent float64 `json:"cumulative_return_percent"`
	AvgDailyReturnPercent   float64 `json:"avg_daily_return_percent"`
	VolatilityPercent       float64 `json:"volatility_percent"`
	TrendDescription        string  `json:"trend_description"`
}

// MovingAverages carries SMA-20/50 over closes. The SMA fields are null until
// the series has enough points.
type MovingAverages struct {
	LastClosePrice float64  `json:"last_close_price"`
	SMA20          *float64 `json:"sma_20"`
	SMA50          *float64 `json:"sma_50"`
	MASignal       string   `json:"ma_signal"`
}

// AnalyticsResult is the API shape for POST /api/analytics
type AnalyticsResult struct {
	Symbol             string           `json:"symbol"`
	Period             AnalyticsPeriod  `json:"period"`
	Summary            AnalyticsSummary `json:"summary"`
	MovingAverages     MovingAverages   `json:"moving_averages"`
	ActionableInsights []string         `json:"actionable_insights"`
}
