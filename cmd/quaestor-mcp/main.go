package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/markets"
	"github.com/ternarybob/quaestor/internal/services/market"
	"github.com/ternarybob/quaestor/internal/services/reports"
	"github.com/ternarybob/quaestor/internal/storage"
)

func main() {
	// Load configuration. QUAESTOR_CONFIG points at an explicit file; without
	// it a quaestor.toml next to the binary is picked up when present, and
	// defaults plus environment variables carry a full config otherwise.
	var configFiles []string
	if configPath := os.Getenv("QUAESTOR_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("quaestor.toml"); err == nil {
		configFiles = append(configFiles, "quaestor.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	// Initialize storage
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	// Initialize market service. Without an API key the tools answer with a
	// not-configured error instead of failing startup.
	kvStorage := storageManager.KVStorage()
	var marketClient *markets.Client
	apiKey, err := common.ResolveAPIKey(context.Background(), kvStorage, "market_api_key", config.Market.APIKey)
	if err != nil {
		logger.Warn().Msg("No market data API key found - market tools disabled")
	} else {
		opts := []markets.ClientOption{markets.WithLogger(logger)}
		if config.Market.BaseURL != "" {
			opts = append(opts, markets.WithBaseURL(config.Market.BaseURL))
		}
		if timeout, err := time.ParseDuration(config.Market.RequestTimeout); err == nil && timeout > 0 {
			opts = append(opts, markets.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		if interval, err := time.ParseDuration(config.Market.RateLimit); err == nil {
			opts = append(opts, markets.WithRateInterval(interval))
		}
		marketClient = markets.NewClient(apiKey, opts...)
	}
	marketService := market.NewService(marketClient, kvStorage, &config.Market, logger)

	// Initialize report service. The nil generator keeps it read-only; the
	// MCP tools only list and fetch reports generated by the main server.
	reportService := reports.NewService(nil, storageManager.ReportStorage(), logger)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"quaestor",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register market data tools
	mcpServer.AddTool(createCompanyInfoTool(), handleCompanyInfo(marketService, logger))
	mcpServer.AddTool(createMarketQuoteTool(), handleMarketQuote(marketService, logger))
	mcpServer.AddTool(createHistoricalPricesTool(), handleHistoricalPrices(marketService, logger))
	mcpServer.AddTool(createPriceAnalyticsTool(), handlePriceAnalytics(marketService, logger))

	// Register report tools
	mcpServer.AddTool(createListReportsTool(), handleListReports(reportService, logger))
	mcpServer.AddTool(createGetReportTool(), handleGetReport(reportService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
