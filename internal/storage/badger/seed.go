package badger

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// seedDefaults creates the default KV entries when absent. Existing values
// are never overwritten, so operator-set secrets survive restarts.
func (m *Manager) seedDefaults(ctx context.Context) {
	created := 0
	for _, def := range common.GetDefaultKVValues() {
		_, err := m.kv.Get(ctx, def.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, interfaces.ErrKeyNotFound) {
			m.logger.Warn().Err(err).Str("key", def.Key).Msg("Failed to check default KV entry")
			continue
		}
		if err := m.kv.Set(ctx, def.Key, def.Value, def.Description); err != nil {
			m.logger.Warn().Err(err).Str("key", def.Key).Msg("Failed to seed default KV entry")
			continue
		}
		created++
	}

	if created > 0 {
		m.logger.Debug().Int("created", created).Msg("Seeded default KV entries")
	}
}

// LoadEnvFile loads variables from a .env file into the KV store.
// Format supported:
//   - KEY=value
//   - KEY="value" or KEY='value' (quotes stripped)
//   - # comments and empty lines are ignored
//
// A missing file is not an error; parse problems are logged and skipped.
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		m.logger.Debug().Str("file", filePath).Msg(".env file does not exist, skipping")
		return nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open .env file")
		return nil
	}
	defer file.Close()

	loaded := 0
	skipped := 0

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			m.logger.Warn().
				Str("file", filePath).
				Int("line", lineNum).
				Msg("Invalid line format, expected KEY=value")
			skipped++
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			skipped++
			continue
		}

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		if value == "" {
			skipped++
			continue
		}

		if _, err := m.kv.Upsert(ctx, key, value, "Loaded from .env file"); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to store variable from .env")
			skipped++
			continue
		}
		loaded++
	}

	if err := scanner.Err(); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Error reading .env file")
	}

	m.logger.Debug().
		Str("file", filePath).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Finished loading variables from .env file")

	return nil
}
