package badger

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// logSequence disambiguates log keys written within the same nanosecond
var logSequence uint64

// ScanLogStorage implements the ScanLogStorage interface for Badger
type ScanLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanLogStorage creates a new ScanLogStorage instance
func NewScanLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanLogStorage {
	return &ScanLogStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ScanLogStorage) AppendLog(ctx context.Context, entry *models.ScanLogEntry) error {
	if entry == nil || entry.ScanID == "" {
		return fmt.Errorf("scan ID is required")
	}

	seq := atomic.AddUint64(&logSequence, 1)
	key := fmt.Sprintf("%s_%d_%d", entry.ScanID, time.Now().UnixNano(), seq)

	if err := s.db.Store().Insert(key, entry); err != nil {
		return fmt.Errorf("failed to append scan log: %w", err)
	}
	return nil
}

func (s *ScanLogStorage) AppendLogs(ctx context.Context, entries []*models.ScanLogEntry) error {
	for _, entry := range entries {
		if err := s.AppendLog(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// GetLogs returns the most recent entries for a scan, newest first.
// limit <= 0 means no limit.
func (s *ScanLogStorage) GetLogs(ctx context.Context, scanID string, limit int) ([]*models.ScanLogEntry, error) {
	query := badgerhold.Where("ScanID").Eq(scanID).SortBy("FullTimestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.ScanLogEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to get scan logs: %w", err)
	}

	result := make([]*models.ScanLogEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}

func (s *ScanLogStorage) DeleteLogs(ctx context.Context, scanID string) error {
	if err := s.db.Store().DeleteMatching(&models.ScanLogEntry{}, badgerhold.Where("ScanID").Eq(scanID)); err != nil {
		return fmt.Errorf("failed to delete scan logs: %w", err)
	}
	return nil
}

func (s *ScanLogStorage) CountLogs(ctx context.Context, scanID string) (int, error) {
	count, err := s.db.Store().Count(&models.ScanLogEntry{}, badgerhold.Where("ScanID").Eq(scanID))
	if err != nil {
		return 0, fmt.Errorf("failed to count scan logs: %w", err)
	}
	return int(count), nil
}
