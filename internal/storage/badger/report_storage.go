package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ReportStorage implements the ReportStorage interface for Badger
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ReportStorage) SaveReport(ctx context.Context, record *models.ReportRecord) error {
	if record.ID == "" {
		return fmt.Errorf("report ID is required")
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (s *ReportStorage) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	var record models.ReportRecord
	if err := s.db.Store().Get(id, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &record, nil
}

// GetReportByScanID returns the report generated by a scan job. Reports
// created via the synchronous API have no scan ID and are never matched.
func (s *ReportStorage) GetReportByScanID(ctx context.Context, scanID string) (*models.ReportRecord, error) {
	if scanID == "" {
		return nil, interfaces.ErrNotFound
	}

	var records []models.ReportRecord
	err := s.db.Store().Find(&records, badgerhold.Where("ScanID").Eq(scanID))
	if err != nil {
		return nil, fmt.Errorf("failed to find report by scan: %w", err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &records[0], nil
}

// ListReports returns reports newest first
func (s *ReportStorage) ListReports(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ReportRecord, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if opts != nil {
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}

	var records []models.ReportRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	result := make([]*models.ReportRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *ReportStorage) DeleteReport(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.ReportRecord{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func (s *ReportStorage) CountReports(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.ReportRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return int(count), nil
}

// DeleteReportsBefore removes reports created before the cutoff and returns
// the number removed. The retention job calls it on schedule.
func (s *ReportStorage) DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var records []models.ReportRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find expired reports: %w", err)
	}

	removed := 0
	for _, record := range records {
		if err := s.db.Store().Delete(record.ID, &models.ReportRecord{}); err != nil {
			s.logger.Warn().Err(err).Str("report_id", record.ID).Msg("Failed to delete expired report")
			continue
		}
		removed++
	}

	return removed, nil
}
