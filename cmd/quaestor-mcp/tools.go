package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createCompanyInfoTool returns the company_info tool definition
func createCompanyInfoTool() mcp.Tool {
	return mcp.NewTool("company_info",
		mcp.WithDescription("Get the company profile for a stock symbol: name, sector, industry, summary, and key officers"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol (e.g. AAPL, BHP.AX)"),
		),
	)
}

// createMarketQuoteTool returns the market_quote tool definition
func createMarketQuoteTool() mcp.Tool {
	return mcp.NewTool("market_quote",
		mcp.WithDescription("Get a live market quote for a stock symbol: price, change, day range, and 52-week range"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol (e.g. AAPL, BHP.AX)"),
		),
	)
}

// createHistoricalPricesTool returns the historical_prices tool definition
func createHistoricalPricesTool() mcp.Tool {
	return mcp.NewTool("historical_prices",
		mcp.WithDescription("Get historical OHLCV price bars for a stock symbol over a date range"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol (e.g. AAPL, BHP.AX)"),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Range start date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Range end date (YYYY-MM-DD)"),
		),
		mcp.WithString("interval",
			mcp.Description("Bar interval: 1d, 1wk, 1mo (default: 1d)"),
		),
	)
}

// createPriceAnalyticsTool returns the price_analytics tool definition
func createPriceAnalyticsTool() mcp.Tool {
	return mcp.NewTool("price_analytics",
		mcp.WithDescription("Compute return, volatility, and moving-average analytics for a stock symbol over a date range"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol (e.g. AAPL, BHP.AX)"),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Range start date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Range end date (YYYY-MM-DD)"),
		),
		mcp.WithString("interval",
			mcp.Description("Bar interval: 1d, 1wk, 1mo (default: 1d)"),
		),
	)
}

// createListReportsTool returns the list_reports tool definition
func createListReportsTool() mcp.Tool {
	return mcp.NewTool("list_reports",
		mcp.WithDescription("List generated investor reports, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum reports to return (default: 20, max: 100)"),
		),
	)
}

// createGetReportTool returns the get_report tool definition
func createGetReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Retrieve the full formatted text of a generated investor report by its ID"),
		mcp.WithString("report_id",
			mcp.Required(),
			mcp.Description("Report ID (format: report_{uuid})"),
		),
	)
}
