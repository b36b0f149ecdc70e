package logs

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Service implements LogService over scan log storage
type Service struct {
	storage     interfaces.ScanLogStorage
	scanStorage interfaces.ScanStorage
	logger      arbor.ILogger
}

// NewService creates a new LogService for scan log reads
func NewService(storage interfaces.ScanLogStorage, scanStorage interfaces.ScanStorage, logger arbor.ILogger) interfaces.LogService {
	return &Service{
		storage:     storage,
		scanStorage: scanStorage,
		logger:      logger,
	}
}

// GetLogs retrieves log entries for a scan, newest first (delegates to storage)
func (s *Service) GetLogs(ctx context.Context, scanID string, limit int) ([]*models.ScanLogEntry, error) {
	return s.storage.GetLogs(ctx, scanID, limit)
}

// ReplayLogs returns the full log history for a scan, oldest first, so the
// websocket stream can replay it before tailing new entries
func (s *Service) ReplayLogs(ctx context.Context, scanID string) ([]*models.ScanLogEntry, error) {
	entries, err := s.storage.GetLogs(ctx, scanID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan logs: %w", err)
	}

	// Storage returns newest first; reverse in-place for replay order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

// ScanStatus reports the current status of a scan job. Returns the storage
// not-found error unchanged so callers can map it to a 404.
func (s *Service) ScanStatus(ctx context.Context, scanID string) (models.ScanStatus, error) {
	job, err := s.scanStorage.GetScan(ctx, scanID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// CountLogs returns the number of log entries for a scan (delegates to storage)
func (s *Service) CountLogs(ctx context.Context, scanID string) (int, error) {
	return s.storage.CountLogs(ctx, scanID)
}

// DeleteLogs deletes all log entries for a scan (delegates to storage)
func (s *Service) DeleteLogs(ctx context.Context, scanID string) error {
	return s.storage.DeleteLogs(ctx, scanID)
}
