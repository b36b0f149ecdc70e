package logs

import (
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// ServiceLogEntry is one parsed line from the arbor memory writer
type ServiceLogEntry struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// memorySkipPatterns filters handler and transport chatter out of the
// service log view
var memorySkipPatterns = []string{
	"WebSocket client connected",
	"WebSocket client disconnected",
	"HTTP request",
	"HTTP response",
}

// RecentServiceLogs reads recent entries from arbor's registered memory
// writer and returns them parsed, oldest first. Returns an empty slice when
// no memory writer is registered.
func RecentServiceLogs(limit int) ([]ServiceLogEntry, error) {
	memWriter := arbor.GetRegisteredMemoryWriter(arbor.WRITER_MEMORY)
	if memWriter == nil {
		return []ServiceLogEntry{}, nil
	}

	entries, err := memWriter.GetEntriesWithLimit(limit)
	if err != nil {
		return nil, err
	}

	// Map keys are timestamps - sorting gives chronological order
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	logs := make([]ServiceLogEntry, 0, len(entries))
	for _, key := range keys {
		entry, ok := parseMemoryLine(entries[key])
		if !ok {
			continue
		}
		entry.Index = len(logs)
		logs = append(logs, entry)
	}

	return logs, nil
}

// parseMemoryLine parses one "LEVEL | DATE TIME | MESSAGE" memory writer
// line. Handler chatter and unparseable lines are rejected.
func parseMemoryLine(line string) (ServiceLogEntry, bool) {
	for _, pattern := range memorySkipPatterns {
		if strings.Contains(line, pattern) {
			return ServiceLogEntry{}, false
		}
	}

	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return ServiceLogEntry{}, false
	}

	levelStr := strings.TrimSpace(parts[0])
	dateTime := strings.TrimSpace(parts[1])
	message := strings.TrimSpace(parts[2])

	// The date portion looks like "Oct  2 16:27:13"; keep the clock part
	timeParts := strings.Fields(dateTime)
	var timestamp string
	if len(timeParts) >= 3 {
		timestamp = timeParts[len(timeParts)-1]
	} else {
		timestamp = time.Now().Format("15:04:05")
	}

	level := "INF"
	switch levelStr {
	case "ERR", "ERROR", "FATAL", "PANIC":
		level = "ERR"
	case "WRN", "WARN":
		level = "WRN"
	case "INF", "INFO":
		level = "INF"
	case "DBG", "DEBUG":
		level = "DBG"
	}

	return ServiceLogEntry{
		Timestamp: timestamp,
		Level:     level,
		Message:   message,
	}, true
}
