package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/quaestor/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Badger      BadgerConfig    `toml:"badger"`
	Market      MarketConfig    `toml:"market"`
	Scanner     ScannerConfig   `toml:"scanner"`
	Mailbox     MailboxConfig   `toml:"mailbox"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Reports     ReportsConfig   `toml:"reports"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level         string   `toml:"level"`           // "debug", "info", "warn", "error"
	Format        string   `toml:"format"`          // "json" or "text"
	Output        []string `toml:"output"`          // "stdout", "file"
	TimeFormat    string   `toml:"time_format"`     // Time format for console logs (default: "15:04:05")
	MinEventLevel string   `toml:"min_event_level"` // Minimum log level streamed to scan websockets
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// MarketConfig contains market data provider configuration
type MarketConfig struct {
	BaseURL         string `toml:"base_url"`          // Provider API base URL
	APIKey          string `toml:"api_key"`           // Provider API token (env and KV store take priority)
	RequestTimeout  string `toml:"request_timeout"`   // HTTP timeout as duration string (default: "30s")
	RateLimit       string `toml:"rate_limit"`        // Minimum time between requests (default: "1s")
	ProfileCacheTTL string `toml:"profile_cache_ttl"` // Company profile cache lifetime (default: "24h")
	QuoteCacheTTL   string `toml:"quote_cache_ttl"`   // Quote cache lifetime (default: "60s")
}

// ScannerConfig contains document scan pipeline configuration
type ScannerConfig struct {
	Workers             int      `toml:"workers"`               // Concurrent scan workers (default: 2)
	QueueSize           int      `toml:"queue_size"`            // Pending scan buffer before submit blocks (default: 16)
	OCRCommand          string   `toml:"ocr_command"`           // OCR binary name or path (default: "tesseract")
	OCRLanguages        string   `toml:"ocr_languages"`         // OCR language pack selector (default: "eng")
	OCRTimeout          string   `toml:"ocr_timeout"`           // Per-image OCR timeout (default: "60s")
	MaxUploadMB         int      `toml:"max_upload_mb"`         // Multipart upload limit in MiB (default: 16)
	AllowedExtensions   []string `toml:"allowed_extensions"`    // Accepted document file extensions
	DefaultReportType   string   `toml:"default_report_type"`   // Report type when the request omits one
	DefaultAnalysisType string   `toml:"default_analysis_type"` // Analyst persona when the request omits one
}

// MailboxConfig contains IMAP ingestion configuration
type MailboxConfig struct {
	Enabled      bool   `toml:"enabled"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"` // Default: 993
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Folder       string `toml:"folder"`        // Default: "INBOX"
	UseTLS       bool   `toml:"use_tls"`       // Default: true
	PollInterval string `toml:"poll_interval"` // Default: "5m", minimum "1m"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for narrative generation (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for narrative generation (default: "claude-3-5-haiku-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains provider-independent narrative generation settings
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
	MaxTokens       int         `toml:"max_tokens"`       // Token budget for the analysis narrative (default: 4000)
	MaxRetries      int         `toml:"max_retries"`      // Retry attempts on rate-limit errors (default: 3)
}

// ReportsConfig contains report lifecycle settings
type ReportsConfig struct {
	RetentionDays int `toml:"retention_days"` // Reports and scans older than this are swept (default: 90, 0 disables)
}

// SchedulerConfig contains maintenance job schedules (5-field cron)
type SchedulerConfig struct {
	Enabled            bool   `toml:"enabled"`
	RetentionSchedule  string `toml:"retention_schedule"`   // Default: "0 3 * * *" (daily 03:00)
	CacheSweepSchedule string `toml:"cache_sweep_schedule"` // Default: "0 * * * *" (hourly)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in quaestor.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "text",
			Output:        []string{"stdout", "file"},
			TimeFormat:    "15:04:05",
			MinEventLevel: "info",
		},
		Badger: BadgerConfig{
			Path: "./data",
		},
		Market: MarketConfig{
			BaseURL:         "https://eodhd.com/api",
			APIKey:          "", // User must provide API key (env, KV store, or config)
			RequestTimeout:  "30s",
			RateLimit:       "1s",
			ProfileCacheTTL: "24h",
			QuoteCacheTTL:   "60s",
		},
		Scanner: ScannerConfig{
			Workers:             2,
			QueueSize:           16,
			OCRCommand:          "tesseract",
			OCRLanguages:        "eng",
			OCRTimeout:          "60s",
			MaxUploadMB:         16,
			AllowedExtensions:   []string{"png", "jpg", "jpeg", "tiff", "bmp", "pdf", "html", "txt"},
			DefaultReportType:   "quarterly_report",
			DefaultAnalysisType: "detailed_analysis",
		},
		Mailbox: MailboxConfig{
			Enabled:      false, // Disabled by default - user must explicitly opt-in
			Port:         993,
			Folder:       "INBOX",
			UseTLS:       true,
			PollInterval: "5m",
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "5m",
			RateLimit:   "4s", // Default to 4s (15 RPM) for free tier
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
			MaxTokens:       4000,
			MaxRetries:      3,
		},
		Reports: ReportsConfig{
			RetentionDays: 90,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			RetentionSchedule:  "0 3 * * *",
			CacheSweepSchedule: "0 * * * *",
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env -> CLI flags
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files override
// earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("QUAESTOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("QUAESTOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("QUAESTOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("QUAESTOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("QUAESTOR_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("QUAESTOR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
	if minEventLevel := os.Getenv("QUAESTOR_LOG_MIN_EVENT_LEVEL"); minEventLevel != "" {
		config.Logging.MinEventLevel = minEventLevel
	}

	// Storage configuration
	if badgerPath := os.Getenv("QUAESTOR_BADGER_PATH"); badgerPath != "" {
		config.Badger.Path = badgerPath
	}

	// Market provider configuration
	if baseURL := os.Getenv("QUAESTOR_MARKET_BASE_URL"); baseURL != "" {
		config.Market.BaseURL = baseURL
	}
	if apiKey := os.Getenv("QUAESTOR_MARKET_API_KEY"); apiKey != "" {
		config.Market.APIKey = apiKey
	} else if apiKey := os.Getenv("EODHD_API_TOKEN"); apiKey != "" {
		config.Market.APIKey = apiKey
	}
	if rateLimit := os.Getenv("QUAESTOR_MARKET_RATE_LIMIT"); rateLimit != "" {
		config.Market.RateLimit = rateLimit
	}

	// Scanner configuration
	if workers := os.Getenv("QUAESTOR_SCANNER_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Scanner.Workers = w
		}
	}
	if ocrCommand := os.Getenv("QUAESTOR_SCANNER_OCR_COMMAND"); ocrCommand != "" {
		config.Scanner.OCRCommand = ocrCommand
	}
	if ocrLanguages := os.Getenv("QUAESTOR_SCANNER_OCR_LANGUAGES"); ocrLanguages != "" {
		config.Scanner.OCRLanguages = ocrLanguages
	}
	if maxUpload := os.Getenv("QUAESTOR_SCANNER_MAX_UPLOAD_MB"); maxUpload != "" {
		if m, err := strconv.Atoi(maxUpload); err == nil {
			config.Scanner.MaxUploadMB = m
		}
	}

	// Mailbox configuration
	if enabled := os.Getenv("QUAESTOR_MAILBOX_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Mailbox.Enabled = e
		}
	}
	if host := os.Getenv("QUAESTOR_MAILBOX_HOST"); host != "" {
		config.Mailbox.Host = host
	}
	if port := os.Getenv("QUAESTOR_MAILBOX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Mailbox.Port = p
		}
	}
	if username := os.Getenv("QUAESTOR_MAILBOX_USERNAME"); username != "" {
		config.Mailbox.Username = username
	}
	if password := os.Getenv("QUAESTOR_MAILBOX_PASSWORD"); password != "" {
		config.Mailbox.Password = password
	}
	if folder := os.Getenv("QUAESTOR_MAILBOX_FOLDER"); folder != "" {
		config.Mailbox.Folder = folder
	}
	if pollInterval := os.Getenv("QUAESTOR_MAILBOX_POLL_INTERVAL"); pollInterval != "" {
		config.Mailbox.PollInterval = pollInterval
	}

	// Gemini configuration
	if apiKey := os.Getenv("QUAESTOR_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("QUAESTOR_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("QUAESTOR_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("QUAESTOR_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("QUAESTOR_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // QUAESTOR_ prefix takes priority
	}
	if model := os.Getenv("QUAESTOR_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("QUAESTOR_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("QUAESTOR_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}

	// LLM provider configuration
	if provider := os.Getenv("QUAESTOR_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if maxTokens := os.Getenv("QUAESTOR_LLM_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.LLM.MaxTokens = mt
		}
	}

	// Reports configuration
	if retentionDays := os.Getenv("QUAESTOR_REPORTS_RETENTION_DAYS"); retentionDays != "" {
		if rd, err := strconv.Atoi(retentionDays); err == nil {
			config.Reports.RetentionDays = rd
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("QUAESTOR_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Command-line flags have highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks numeric ranges, duration strings, and cron expressions at
// load time so misconfiguration fails fast instead of at first use.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("scanner workers must be at least 1, got %d", c.Scanner.Workers)
	}
	if c.Scanner.MaxUploadMB < 1 {
		return fmt.Errorf("scanner max_upload_mb must be at least 1, got %d", c.Scanner.MaxUploadMB)
	}
	if c.Reports.RetentionDays < 0 {
		return fmt.Errorf("reports retention_days cannot be negative, got %d", c.Reports.RetentionDays)
	}

	durations := map[string]string{
		"market request_timeout":   c.Market.RequestTimeout,
		"market rate_limit":        c.Market.RateLimit,
		"market profile_cache_ttl": c.Market.ProfileCacheTTL,
		"market quote_cache_ttl":   c.Market.QuoteCacheTTL,
		"scanner ocr_timeout":      c.Scanner.OCRTimeout,
		"gemini timeout":           c.Gemini.Timeout,
		"gemini rate_limit":        c.Gemini.RateLimit,
		"claude timeout":           c.Claude.Timeout,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.Mailbox.Enabled {
		if c.Mailbox.Host == "" {
			return fmt.Errorf("mailbox enabled but host not set")
		}
		interval, err := time.ParseDuration(c.Mailbox.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid mailbox poll_interval %q: %w", c.Mailbox.PollInterval, err)
		}
		if interval < time.Minute {
			return fmt.Errorf("mailbox poll_interval must be at least 1m, got %s", interval)
		}
	}

	if c.Scheduler.Enabled {
		if err := ValidateJobSchedule(c.Scheduler.RetentionSchedule); err != nil {
			return fmt.Errorf("invalid scheduler retention_schedule: %w", err)
		}
		if err := ValidateJobSchedule(c.Scheduler.CacheSweepSchedule); err != nil {
			return fmt.Errorf("invalid scheduler cache_sweep_schedule: %w", err)
		}
	}

	return nil
}

// ResolveAPIKey resolves an API key by name with environment variable priority.
// Resolution order: environment variables -> KV store -> config fallback -> error.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	// Environment variables have highest priority. The QUAESTOR_-prefixed
	// name wins over the provider's conventional variable.
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"QUAESTOR_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"QUAESTOR_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"market_api_key":    {"QUAESTOR_MARKET_API_KEY", "EODHD_API_TOKEN"},
	}

	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// KV store (medium priority)
	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Config value (lowest priority)
	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// ValidateJobSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
