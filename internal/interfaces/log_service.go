package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// LogService exposes persisted scan logs for API reads and websocket replay
type LogService interface {
	// GetLogs returns the most recent entries for a scan, newest first.
	// limit <= 0 means no limit.
	GetLogs(ctx context.Context, scanID string, limit int) ([]*models.ScanLogEntry, error)

	// ReplayLogs returns the full log history for a scan in append order,
	// oldest first.
	ReplayLogs(ctx context.Context, scanID string) ([]*models.ScanLogEntry, error)

	// ScanStatus reports the current status of a scan job so stream pollers
	// can detect the terminal transition.
	ScanStatus(ctx context.Context, scanID string) (models.ScanStatus, error)

	CountLogs(ctx context.Context, scanID string) (int, error)
	DeleteLogs(ctx context.Context, scanID string) error
}
