package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/logs"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const (
	// writeWait bounds a single frame write
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the client.
	// Pings go out at pingPeriod so a healthy client always answers in time.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// logPollInterval is how often new scan log entries are fetched
	logPollInterval = 500 * time.Millisecond
)

// WSMessage is the envelope for all websocket frames
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ScanLogFrame is one log event sent to a streaming client
type ScanLogFrame struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// ScanCompleteFrame closes out a stream when the scan reaches a terminal state
type ScanCompleteFrame struct {
	ScanID string `json:"scan_id"`
	Status string `json:"status"`
}

// WSHandler streams scan log entries to websocket clients
type WSHandler struct {
	logService interfaces.LogService
	logger     arbor.ILogger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(logService interfaces.LogService, logger arbor.ILogger) *WSHandler {
	return &WSHandler{
		logService: logService,
		logger:     logger,
	}
}

// HandleScanStream streams a scan's log entries over a websocket connection:
// full replay first, then new entries as they land, then a completion frame
// once the scan reaches a terminal status.
// GET /ws/scans?scan_id=...
func (h *WSHandler) HandleScanStream(w http.ResponseWriter, r *http.Request) {
	scanID := r.URL.Query().Get("scan_id")
	if scanID == "" {
		http.Error(w, "scan_id is required", http.StatusBadRequest)
		return
	}

	// Reject unknown scans before upgrading
	if _, err := h.logService.ScanStatus(r.Context(), scanID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			http.Error(w, "Scan not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("scan_id", scanID).Msg("Failed to check scan status")
		http.Error(w, "Failed to check scan status", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.logger.Debug().Str("scan_id", scanID).Msg("WebSocket client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read loop: consumes pongs and close frames, cancels the stream when
	// the client goes away.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					h.logger.Warn().Err(err).Str("scan_id", scanID).Msg("WebSocket error")
				}
				return
			}
		}
	}()

	h.streamScanLogs(ctx, conn, scanID)

	h.logger.Debug().Str("scan_id", scanID).Msg("WebSocket client disconnected")
}

// streamScanLogs replays the scan's log history, then polls storage for new
// entries until the scan reaches a terminal status.
func (h *WSHandler) streamScanLogs(ctx context.Context, conn *websocket.Conn, scanID string) {
	sent := 0

	// flush sends every entry past the watermark. A storage read failure
	// keeps the stream open; only a write failure ends it.
	flush := func() bool {
		entries, err := h.logService.ReplayLogs(ctx, scanID)
		if err != nil {
			h.logger.Warn().Err(err).Str("scan_id", scanID).Msg("Failed to load scan logs")
			return true
		}
		if sent > len(entries) {
			sent = len(entries)
		}
		for _, entry := range entries[sent:] {
			frame := WSMessage{Type: "log", Payload: ScanLogFrame{
				Timestamp: entry.Timestamp,
				Level:     entry.Level,
				Message:   entry.Message,
			}}
			if !h.writeFrame(conn, scanID, frame) {
				return false
			}
			sent++
		}
		return true
	}

	if !flush() {
		return
	}

	pollTicker := time.NewTicker(logPollInterval)
	defer pollTicker.Stop()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-pollTicker.C:
			status, err := h.logService.ScanStatus(ctx, scanID)
			if err != nil {
				h.logger.Warn().Err(err).Str("scan_id", scanID).Msg("Failed to check scan status")
				if errors.Is(err, interfaces.ErrNotFound) {
					return
				}
				continue
			}

			if !flush() {
				return
			}

			if status.IsTerminal() {
				// The log consumer persists batches asynchronously; wait one
				// interval so the final entries land before the completion
				// frame.
				select {
				case <-ctx.Done():
					return
				case <-time.After(logPollInterval):
				}
				if !flush() {
					return
				}

				h.writeFrame(conn, scanID, WSMessage{Type: "complete", Payload: ScanCompleteFrame{
					ScanID: scanID,
					Status: string(status),
				}})
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scan complete"),
					time.Now().Add(writeWait))
				return
			}
		}
	}
}

func (h *WSHandler) writeFrame(conn *websocket.Conn, scanID string, msg WSMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn().Err(err).Str("scan_id", scanID).Msg("Failed to send frame to client")
		return false
	}
	return true
}

// GetRecentLogsHandler returns recent service logs from the memory writer
// GET /api/logs/recent
func (h *WSHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	serviceLogs, err := logs.RecentServiceLogs(100)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get log entries")
		http.Error(w, "Failed to retrieve logs", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  serviceLogs,
		"count": len(serviceLogs),
	})
}
