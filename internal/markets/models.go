package markets

import "time"

// EODData represents a single period's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// RealTimeQuote represents the response from the /real-time/{symbol} endpoint.
type RealTimeQuote struct {
	Code          string  `json:"code"`
	Timestamp     int64   `json:"timestamp"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_p"`
}

// FundamentalsResponse represents the fundamentals data for a symbol. Only
// the blocks the service consumes are modeled; the provider returns more.
type FundamentalsResponse struct {
	General    *GeneralInfo `json:"General"`
	Technicals *Technicals  `json:"Technicals"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code              string                 `json:"Code"`
	Type              string                 `json:"Type"`
	Name              string                 `json:"Name"`
	Exchange          string                 `json:"Exchange"`
	CurrencyCode      string                 `json:"CurrencyCode"`
	CurrencyName      string                 `json:"CurrencyName"`
	CountryName       string                 `json:"CountryName"`
	Sector            string                 `json:"Sector"`
	Industry          string                 `json:"Industry"`
	Description       string                 `json:"Description"`
	Address           string                 `json:"Address"`
	Phone             string                 `json:"Phone"`
	WebURL            string                 `json:"WebURL"`
	FullTimeEmployees int                    `json:"FullTimeEmployees"`
	UpdatedAt         string                 `json:"UpdatedAt"`
	Officers          map[string]OfficerInfo `json:"Officers"`
}

// OfficerInfo represents a company officer/executive
type OfficerInfo struct {
	Name     string `json:"Name"`
	Title    string `json:"Title"`
	YearBorn string `json:"YearBorn"`
}

// Technicals contains technical analysis data.
type Technicals struct {
	Beta             float64 `json:"Beta"`
	FiftyTwoWeekHigh float64 `json:"52WeekHigh"`
	FiftyTwoWeekLow  float64 `json:"52WeekLow"`
	FiftyDayMA       float64 `json:"50DayMA"`
	TwoHundredDayMA  float64 `json:"200DayMA"`
}

// ExchangeDetailsResponse represents the response from the
// /exchange-details/{code} endpoint.
type ExchangeDetailsResponse struct {
	Code         string            `json:"Code"`
	Name         string            `json:"Name"`
	OperatingMIC string            `json:"OperatingMIC"`
	Country      string            `json:"Country"`
	Currency     string            `json:"Currency"`
	Timezone     string            `json:"Timezone"`
	TradingHours string            `json:"TradingHours"`     // e.g., "10:00 - 16:00"
	Holidays     map[string]string `json:"ExchangeHolidays"` // date -> name
	IsOpen       bool              `json:"isOpen"`
}
