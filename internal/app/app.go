package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/handlers"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/logs"
	"github.com/ternarybob/quaestor/internal/markets"
	"github.com/ternarybob/quaestor/internal/services/analyzer"
	"github.com/ternarybob/quaestor/internal/services/llm"
	"github.com/ternarybob/quaestor/internal/services/mailbox"
	"github.com/ternarybob/quaestor/internal/services/market"
	"github.com/ternarybob/quaestor/internal/services/pdf"
	"github.com/ternarybob/quaestor/internal/services/reports"
	"github.com/ternarybob/quaestor/internal/services/scanner"
	"github.com/ternarybob/quaestor/internal/services/scheduler"
	"github.com/ternarybob/quaestor/internal/services/workers"
	"github.com/ternarybob/quaestor/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Scan log pipeline
	LogService  interfaces.LogService
	LogConsumer *logs.Consumer

	// Market data
	MarketService interfaces.MarketService

	// Report generation
	LLMFactory      *llm.ProviderFactory
	AnalyzerService *analyzer.Service
	ReportService   *reports.Service
	PDFService      *pdf.Service

	// Scan pipeline
	WorkerPool     *workers.Pool
	ScannerService *scanner.Service

	// Ingestion and maintenance
	MailboxService *mailbox.Service
	Scheduler      *scheduler.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	MarketHandler *handlers.MarketHandler
	ScanHandler   *handlers.ScanHandler
	ReportHandler *handlers.ReportHandler
	WSHandler     *handlers.WSHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// The log consumer must be running before any service logs with a
	// correlation ID, or early scan log entries would be dropped.
	logConsumer := logs.NewConsumer(
		app.StorageManager.ScanLogStorage(),
		app.Logger,
		app.Config.Logging.MinEventLevel,
	)
	if err := logConsumer.Start(); err != nil {
		return nil, fmt.Errorf("failed to start log consumer: %w", err)
	}
	app.LogConsumer = logConsumer
	app.Logger.SetChannel("context", logConsumer.GetChannel())

	app.LogService = logs.NewService(
		app.StorageManager.ScanLogStorage(),
		app.StorageManager.ScanStorage(),
		app.Logger,
	)

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	// Workers start after everything they depend on is wired
	app.WorkerPool.Start()

	// Requeue scans interrupted by the previous shutdown
	if err := app.ScannerService.ResumePending(context.Background()); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to requeue interrupted scans")
	}

	if err := app.MailboxService.Start(); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to start mailbox polling")
	}

	if err := app.startScheduler(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Bool("market_configured", app.MarketService.IsConfigured()).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Badger.Path).
		Msg("Storage layer initialized")

	// API keys can live in a .env file next to the binary instead of the
	// config file
	if err := a.StorageManager.LoadEnvFile(context.Background(), ".env"); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	ctx := context.Background()
	kvStorage := a.StorageManager.KVStorage()

	// Market data client. Without an API key the service stays up but
	// reports itself unconfigured, and the market endpoints return 503.
	var marketClient *markets.Client
	apiKey, err := common.ResolveAPIKey(ctx, kvStorage, "market_api_key", a.Config.Market.APIKey)
	if err != nil {
		a.Logger.Warn().Msg("No market data API key found - market endpoints disabled")
		a.Logger.Info().Msg("To enable market data, set QUAESTOR_MARKET_API_KEY or market.api_key in config")
	} else {
		opts := []markets.ClientOption{markets.WithLogger(a.Logger)}
		if a.Config.Market.BaseURL != "" {
			opts = append(opts, markets.WithBaseURL(a.Config.Market.BaseURL))
		}
		if timeout, err := time.ParseDuration(a.Config.Market.RequestTimeout); err == nil && timeout > 0 {
			opts = append(opts, markets.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		if interval, err := time.ParseDuration(a.Config.Market.RateLimit); err == nil {
			opts = append(opts, markets.WithRateInterval(interval))
		}
		marketClient = markets.NewClient(apiKey, opts...)
		a.Logger.Debug().Str("base_url", a.Config.Market.BaseURL).Msg("Market data client initialized")
	}
	a.MarketService = market.NewService(marketClient, kvStorage, &a.Config.Market, a.Logger)

	// LLM provider factory. Clients are built lazily on first use, so this
	// succeeds even without credentials; the analyzer falls back to
	// rule-based analysis when no provider is usable.
	a.LLMFactory = llm.NewProviderFactory(&a.Config.Gemini, &a.Config.Claude, &a.Config.LLM, kvStorage, a.Logger)
	summarizer := llm.NewSummarizer(a.LLMFactory, &a.Config.LLM, a.Logger)
	if summarizer.IsConfigured() {
		a.Logger.Debug().Msg("LLM summarizer initialized")
	} else {
		a.Logger.Info().Msg("No LLM credentials found - reports will use rule-based analysis")
	}

	a.AnalyzerService = analyzer.NewService(summarizer, a.Config.LLM.MaxTokens, a.Logger)

	generator := reports.NewGenerator(a.AnalyzerService, a.Logger)
	a.ReportService = reports.NewService(generator, a.StorageManager.ReportStorage(), a.Logger)

	a.PDFService = pdf.NewService(a.Logger)

	ocrTimeout, err := time.ParseDuration(a.Config.Scanner.OCRTimeout)
	if err != nil || ocrTimeout <= 0 {
		ocrTimeout = 60 * time.Second
	}
	ocrEngine := scanner.NewOCREngine(
		a.Config.Scanner.OCRCommand,
		a.Config.Scanner.OCRLanguages,
		ocrTimeout,
		a.Logger,
	)

	a.WorkerPool = workers.NewPool(a.Config.Scanner.Workers, a.Config.Scanner.QueueSize, a.Logger)

	a.ScannerService = scanner.NewService(
		a.Config.Scanner,
		a.StorageManager.ScanStorage(),
		a.StorageManager.ScanLogStorage(),
		a.ReportService,
		ocrEngine,
		pdf.NewExtractor(a.Logger),
		a.WorkerPool,
		a.Logger,
	)
	a.Logger.Debug().
		Int("workers", a.Config.Scanner.Workers).
		Str("ocr_command", a.Config.Scanner.OCRCommand).
		Msg("Scanner service initialized")

	a.MailboxService = mailbox.NewService(a.Config.Mailbox, a.ScannerService, a.Logger)

	a.Scheduler = scheduler.NewService(a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.StorageManager, a.MarketService, a.LLMFactory, a.ScannerService, a.Logger)
	a.MarketHandler = handlers.NewMarketHandler(a.MarketService, a.Logger)
	a.ScanHandler = handlers.NewScanHandler(a.ScannerService, a.ReportService, a.Logger)
	a.ReportHandler = handlers.NewReportHandler(a.ReportService, a.PDFService, a.Logger)
	a.WSHandler = handlers.NewWSHandler(a.LogService, a.Logger)
}

// startScheduler registers the maintenance jobs and starts the cron runner
func (a *App) startScheduler() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Debug().Msg("Scheduler disabled")
		return nil
	}

	if a.Config.Reports.RetentionDays > 0 {
		retentionDays := a.Config.Reports.RetentionDays
		err := a.Scheduler.RegisterJob(
			"report_retention",
			a.Config.Scheduler.RetentionSchedule,
			fmt.Sprintf("Delete reports and scans older than %d days", retentionDays),
			func(ctx context.Context) error {
				reportsDeleted, err := a.ReportService.DeleteOlderThan(ctx, retentionDays)
				if err != nil {
					return fmt.Errorf("report retention: %w", err)
				}
				scansDeleted, err := a.ScannerService.DeleteOlderThan(ctx, retentionDays)
				if err != nil {
					return fmt.Errorf("scan retention: %w", err)
				}
				a.Logger.Info().
					Int("reports_deleted", reportsDeleted).
					Int("scans_deleted", scansDeleted).
					Msg("Retention sweep complete")
				return nil
			},
		)
		if err != nil {
			return fmt.Errorf("failed to register retention job: %w", err)
		}
	} else {
		a.Logger.Debug().Msg("Report retention disabled (retention_days is 0)")
	}

	err := a.Scheduler.RegisterJob(
		"market_cache_sweep",
		a.Config.Scheduler.CacheSweepSchedule,
		"Drop expired market data cache entries",
		func(ctx context.Context) error {
			purged, err := a.MarketService.PurgeExpiredCache(ctx)
			if err != nil {
				return fmt.Errorf("cache sweep: %w", err)
			}
			if purged > 0 {
				a.Logger.Info().Int("purged", purged).Msg("Market cache sweep complete")
			}
			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to register cache sweep job: %w", err)
	}

	return a.Scheduler.Start()
}

// Close closes all application resources in reverse dependency order
func (a *App) Close() error {
	if a.MailboxService != nil {
		a.MailboxService.Stop()
	}

	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	// Shutdown drains in-flight scans; queued jobs stay pending in storage
	// and are requeued on the next startup
	if a.WorkerPool != nil {
		a.WorkerPool.Shutdown()
		a.Logger.Info().Msg("Worker pool stopped")
	}

	if a.LogConsumer != nil {
		if err := a.LogConsumer.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop log consumer")
		} else {
			a.Logger.Info().Msg("Log consumer stopped")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
