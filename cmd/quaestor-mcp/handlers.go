package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/reports"
)

// handleCompanyInfo implements the company_info tool
func handleCompanyInfo(marketService interfaces.MarketService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse symbol parameter (required)
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: symbol parameter is required"),
				},
			}, nil
		}

		profile, err := marketService.GetCompanyProfile(ctx, symbol)
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("GetCompanyProfile failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Company lookup error: %v", err)),
				},
			}, nil
		}

		// Format as markdown
		markdown := formatCompanyProfile(profile)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleMarketQuote implements the market_quote tool
func handleMarketQuote(marketService interfaces.MarketService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse symbol parameter (required)
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: symbol parameter is required"),
				},
			}, nil
		}

		quote, err := marketService.GetQuote(ctx, symbol)
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("GetQuote failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Quote error: %v", err)),
				},
			}, nil
		}

		// Format as markdown
		markdown := formatQuote(quote)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// parseRangeRequest pulls the shared symbol/start_date/end_date/interval
// parameters used by the historical and analytics tools. The second return
// is a ready error result when a required parameter is missing.
func parseRangeRequest(request mcp.CallToolRequest) (models.HistoricalRequest, *mcp.CallToolResult) {
	var req models.HistoricalRequest

	symbol, err := request.RequireString("symbol")
	if err != nil || symbol == "" {
		return req, &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Error: symbol parameter is required"),
			},
		}
	}
	startDate, err := request.RequireString("start_date")
	if err != nil || startDate == "" {
		return req, &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Error: start_date parameter is required (YYYY-MM-DD)"),
			},
		}
	}
	endDate, err := request.RequireString("end_date")
	if err != nil || endDate == "" {
		return req, &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Error: end_date parameter is required (YYYY-MM-DD)"),
			},
		}
	}

	req.Symbol = symbol
	req.StartDate = startDate
	req.EndDate = endDate
	req.Interval = request.GetString("interval", "")
	return req, nil
}

// handleHistoricalPrices implements the historical_prices tool
func handleHistoricalPrices(marketService interfaces.MarketService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, errResult := parseRangeRequest(request)
		if errResult != nil {
			return errResult, nil
		}

		history, err := marketService.GetHistorical(ctx, req)
		if err != nil {
			logger.Error().Err(err).Str("symbol", req.Symbol).Msg("GetHistorical failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Historical prices error: %v", err)),
				},
			}, nil
		}

		// Format as markdown
		markdown := formatHistorical(history, req.StartDate, req.EndDate)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handlePriceAnalytics implements the price_analytics tool
func handlePriceAnalytics(marketService interfaces.MarketService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, errResult := parseRangeRequest(request)
		if errResult != nil {
			return errResult, nil
		}

		analytics, err := marketService.GetAnalytics(ctx, req)
		if err != nil {
			logger.Error().Err(err).Str("symbol", req.Symbol).Msg("GetAnalytics failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Price analytics error: %v", err)),
				},
			}, nil
		}

		// Format as markdown
		markdown := formatAnalytics(analytics)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleListReports implements the list_reports tool
func handleListReports(reportService *reports.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse limit (default: 20, max: 100)
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}

		records, err := reportService.List(ctx, &interfaces.ListOptions{Limit: limit})
		if err != nil {
			logger.Error().Err(err).Msg("List reports failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("List error: %v", err)),
				},
			}, nil
		}

		// Format results as markdown
		markdown := formatReportList(records, limit)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleGetReport implements the get_report tool
func handleGetReport(reportService *reports.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse report_id parameter (required)
		reportID, err := request.RequireString("report_id")
		if err != nil || reportID == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: report_id parameter is required"),
				},
			}, nil
		}

		record, err := reportService.Get(ctx, reportID)
		if err != nil {
			logger.Error().Err(err).Str("report_id", reportID).Msg("Get report failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Report not found: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatReportRecord(record)),
			},
		}, nil
	}
}
