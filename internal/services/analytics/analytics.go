// Package analytics computes return, volatility, and moving-average figures
// over daily close series. All functions are pure; the HTTP layer feeds them
// provider data and serializes the result.
package analytics

import (
	"fmt"
	"math"

	"github.com/ternarybob/quaestor/internal/models"
)

// SMA window sizes used for the moving-average signal
const (
	ShortWindow = 20
	LongWindow  = 50
)

// DailyReturns calculates simple daily returns from closes
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
		}
	}
	return returns
}

// CumulativeReturn calculates the total return over the series (last/first - 1)
func CumulativeReturn(closes []float64) float64 {
	if len(closes) < 2 || closes[0] <= 0 {
		return 0
	}
	return closes[len(closes)-1]/closes[0] - 1
}

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStddev calculates the sample standard deviation (n-1 denominator)
func SampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)

	return math.Sqrt(variance)
}

// SMA returns the simple moving average of the last window closes, or nil
// when the series is shorter than the window.
func SMA(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window {
		return nil
	}
	avg := Mean(closes[len(closes)-window:])
	return &avg
}

// TrendDescription maps the cumulative return to a trend label
func TrendDescription(cumulative float64) string {
	switch {
	case cumulative > 0.2:
		return "Strong upward trend"
	case cumulative > 0:
		return "Mild upward trend"
	case cumulative < -0.2:
		return "Strong downward trend"
	default:
		return "Mild downward trend or sideways movement"
	}
}

// MASignal describes the relationship between the short and long SMA
func MASignal(sma20, sma50 *float64) string {
	if sma20 == nil || sma50 == nil {
		return "Not enough data for a moving-average signal"
	}
	switch {
	case *sma20 > *sma50:
		return "Short-term (20-day) average is above the long-term (50-day) average (bullish bias)"
	case *sma20 < *sma50:
		return "Short-term (20-day) average is below the long-term (50-day) average (bearish bias)"
	default:
		return "Short-term and long-term averages are equal (neutral)"
	}
}

// Insights builds the actionable insight sentences from the computed figures
func Insights(cumulative, volatility float64, maSignal string) []string {
	insights := []string{}

	if cumulative > 0.1 {
		insights = append(insights, fmt.Sprintf("The stock gained %.2f%% over the period, indicating positive momentum.", cumulative*100))
	} else if cumulative < -0.1 {
		insights = append(insights, fmt.Sprintf("The stock declined %.2f%% over the period, indicating negative pressure.", -cumulative*100))
	}

	if volatility > 0.03 {
		insights = append(insights, "Daily volatility is relatively high; expect larger price swings.")
	} else {
		insights = append(insights, "Daily volatility is relatively low; price action has been stable.")
	}

	if maSignal != "" {
		insights = append(insights, maSignal)
	}

	return insights
}

// Round rounds a value to the given number of decimal places
func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// roundPtr rounds through a nil-able SMA value
func roundPtr(value *float64, places int) *float64 {
	if value == nil {
		return nil
	}
	rounded := Round(*value, places)
	return &rounded
}

// Compute assembles the full analytics result for a close series.
// closes must be in chronological order.
func Compute(symbol, startDate, endDate string, closes []float64) *models.AnalyticsResult {
	returns := DailyReturns(closes)
	cumulative := CumulativeReturn(closes)
	avgDaily := Mean(returns)
	volatility := SampleStddev(returns)

	sma20 := SMA(closes, ShortWindow)
	sma50 := SMA(closes, LongWindow)
	maSignal := MASignal(sma20, sma50)

	lastClose := 0.0
	if len(closes) > 0 {
		lastClose = closes[len(closes)-1]
	}

	return &models.AnalyticsResult{
		Symbol: symbol,
		Period: models.AnalyticsPeriod{
			StartDate:   startDate,
			EndDate:     endDate,
			TradingDays: len(closes),
		},
		Summary: models.AnalyticsSummary{
			CumulativeReturnPercent: Round(cumulative*100, 2),
			AvgDailyReturnPercent:   Round(avgDaily*100, 4),
			VolatilityPercent:       Round(volatility*100, 4),
			TrendDescription:        TrendDescription(cumulative),
		},
		MovingAverages: models.MovingAverages{
			LastClosePrice: Round(lastClose, 2),
			SMA20:          roundPtr(sma20, 4),
			SMA50:          roundPtr(sma50, 4),
			MASignal:       maSignal,
		},
		ActionableInsights: Insights(cumulative, volatility, maSignal),
	}
}
