package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/quaestor/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ListOptions controls pagination for list queries
type ListOptions struct {
	Limit  int
	Offset int
}

// ReportStorage - interface for generated report persistence
type ReportStorage interface {
	SaveReport(ctx context.Context, record *models.ReportRecord) error
	GetReport(ctx context.Context, id string) (*models.ReportRecord, error)
	GetReportByScanID(ctx context.Context, scanID string) (*models.ReportRecord, error)
	ListReports(ctx context.Context, opts *ListOptions) ([]*models.ReportRecord, error)
	DeleteReport(ctx context.Context, id string) error
	CountReports(ctx context.Context) (int, error)

	// DeleteReportsBefore removes reports created before the cutoff and
	// returns the number removed. Used by the retention job.
	DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ScanStorage - interface for scan job persistence
type ScanStorage interface {
	SaveScan(ctx context.Context, job *models.ScanJob) error
	GetScan(ctx context.Context, id string) (*models.ScanJob, error)
	ListScans(ctx context.Context, opts *ListOptions) ([]*models.ScanJob, error)
	ListScansByStatus(ctx context.Context, status models.ScanStatus, opts *ListOptions) ([]*models.ScanJob, error)
	DeleteScan(ctx context.Context, id string) error
	CountScans(ctx context.Context) (int, error)
	CountScansByStatus(ctx context.Context, status models.ScanStatus) (int, error)
	DeleteScansBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ScanLogStorage - interface for per-scan log persistence (websocket replay)
type ScanLogStorage interface {
	AppendLog(ctx context.Context, entry *models.ScanLogEntry) error
	AppendLogs(ctx context.Context, entries []*models.ScanLogEntry) error

	// GetLogs returns the most recent entries for a scan, newest first.
	// limit <= 0 means no limit.
	GetLogs(ctx context.Context, scanID string, limit int) ([]*models.ScanLogEntry, error)
	DeleteLogs(ctx context.Context, scanID string) error
	CountLogs(ctx context.Context, scanID string) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	ReportStorage() ReportStorage
	ScanStorage() ScanStorage
	ScanLogStorage() ScanLogStorage
	KVStorage() KeyValueStorage

	// LoadEnvFile loads KEY=value pairs from a .env file into the KV store
	// so secrets can live outside the config file. Missing files are not an
	// error.
	LoadEnvFile(ctx context.Context, filePath string) error

	Close() error
}
