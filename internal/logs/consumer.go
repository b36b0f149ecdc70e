package logs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	arborlevels "github.com/ternarybob/arbor/levels"
	arbormodels "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Consumer drains log batches from arbor's context channel and persists
// scan-correlated entries so the websocket stream can replay them.
type Consumer struct {
	storage  interfaces.ScanLogStorage
	logger   arbor.ILogger
	channel  chan []arbormodels.LogEvent
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	minLevel arbor.LogLevel // Minimum log level to persist for replay
}

// NewConsumer creates a new log consumer
func NewConsumer(storage interfaces.ScanLogStorage, logger arbor.ILogger, minLevel string) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		storage:  storage,
		logger:   logger,
		channel:  make(chan []arbormodels.LogEvent, 10),
		ctx:      ctx,
		cancel:   cancel,
		minLevel: parseLogLevel(minLevel),
	}
}

// parseLogLevel converts string log level to arbor.LogLevel
func parseLogLevel(levelStr string) arbor.LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return arbor.DebugLevel
	case "info":
		return arbor.InfoLevel
	case "warn", "warning":
		return arbor.WarnLevel
	case "error":
		return arbor.ErrorLevel
	default:
		return arbor.InfoLevel // Default to Info
	}
}

// convertTo3Letter converts full level names to 3-letter codes
func convertTo3Letter(level string) string {
	switch strings.ToUpper(level) {
	case "INFO":
		return "INF"
	case "WARN", "WARNING":
		return "WRN"
	case "ERROR":
		return "ERR"
	case "DEBUG":
		return "DBG"
	default:
		// If already 3 letters, return as-is (uppercase)
		if len(level) == 3 {
			return strings.ToUpper(level)
		}
		return "INF"
	}
}

// GetChannel returns the channel for arbor to send log batches to
func (c *Consumer) GetChannel() chan []arbormodels.LogEvent {
	return c.channel
}

// Start launches the consumer goroutine
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consumer()
	return nil
}

// Stop gracefully shuts down the consumer
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info().Msg("Log consumer stopped")
	return nil
}

// consumer processes log batches from arbor until stopped
func (c *Consumer) consumer() {
	defer c.wg.Done()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			// Use logger without correlation ID to avoid recursive channel processing
			c.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Log consumer panic recovered")
		}
	}()

	for {
		select {
		case batch, ok := <-c.channel:
			if !ok {
				// Channel closed, exit gracefully
				return
			}
			c.persistBatch(batch)

		case <-c.ctx.Done():
			// Context cancelled, exit gracefully
			return
		}
	}
}

// persistBatch filters one arbor batch down to scan-correlated entries and
// writes them in a single append. Entries without a correlation ID belong to
// the service log, not to a scan, and are skipped.
func (c *Consumer) persistBatch(batch []arbormodels.LogEvent) {
	entries := make([]*models.ScanLogEntry, 0, len(batch))
	for _, event := range batch {
		// HTTP middleware attaches correlation IDs for request tracing, and
		// the websocket handler logs its own session churn. Neither is scan
		// activity.
		if isNoise(event.Message) {
			continue
		}
		if event.CorrelationID == "" {
			continue
		}
		if !c.shouldPersist(event.Level) {
			continue
		}
		entries = append(entries, transformEvent(event))
	}

	if len(entries) == 0 {
		return
	}

	if err := c.storage.AppendLogs(c.ctx, entries); err != nil {
		// Use logger without correlation ID to avoid recursive channel processing
		c.logger.Warn().
			Err(err).
			Int("log_count", len(entries)).
			Msg("Failed to write batch logs to storage")
	}
}

// isNoise reports whether a message is request tracing or websocket session
// chatter rather than scan activity
func isNoise(message string) bool {
	return message == "HTTP request" ||
		message == "HTTP request - client error" ||
		message == "HTTP request - server error" ||
		strings.Contains(message, "WebSocket client")
}

// shouldPersist checks a log event level against the configured threshold
func (c *Consumer) shouldPersist(level log.Level) bool {
	return arborlevels.FromLogLevel(level) >= c.minLevel
}

// transformEvent converts an arbor LogEvent to the persisted entry form.
// Extra structured fields are folded into the message as key=value pairs so
// the replay view keeps them.
func transformEvent(event arbormodels.LogEvent) *models.ScanLogEntry {
	message := event.Message
	if len(event.Fields) > 0 {
		// Sort keys so the rendered message is stable
		keys := make([]string, 0, len(event.Fields))
		for key := range event.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			message += fmt.Sprintf(" %s=%v", key, event.Fields[key])
		}
	}

	return &models.ScanLogEntry{
		Timestamp:     event.Timestamp.Format("15:04:05"),
		FullTimestamp: event.Timestamp.Format(time.RFC3339),
		Level:         convertTo3Letter(event.Level.String()),
		Message:       message,
		ScanID:        event.CorrelationID,
	}
}
