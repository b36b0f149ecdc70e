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

// ScanStorage implements the ScanStorage interface for Badger
type ScanStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanStorage creates a new ScanStorage instance
func NewScanStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanStorage {
	return &ScanStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ScanStorage) SaveScan(ctx context.Context, job *models.ScanJob) error {
	if job.ID == "" {
		return fmt.Errorf("scan ID is required")
	}

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}

func (s *ScanStorage) GetScan(ctx context.Context, id string) (*models.ScanJob, error) {
	var job models.ScanJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return &job, nil
}

// ListScans returns scan jobs newest first
func (s *ScanStorage) ListScans(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ScanJob, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if opts != nil {
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}

	var jobs []models.ScanJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}

	return toScanPointers(jobs), nil
}

// ListScansByStatus returns scan jobs with the given status, oldest first so
// the startup requeue replays them in submission order.
func (s *ScanStorage) ListScansByStatus(ctx context.Context, status models.ScanStatus, opts *interfaces.ListOptions) ([]*models.ScanJob, error) {
	query := badgerhold.Where("Status").Eq(status).SortBy("CreatedAt")
	if opts != nil {
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}

	var jobs []models.ScanJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list scans by status: %w", err)
	}

	return toScanPointers(jobs), nil
}

func (s *ScanStorage) DeleteScan(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.ScanJob{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return nil
}

func (s *ScanStorage) CountScans(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.ScanJob{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	return int(count), nil
}

func (s *ScanStorage) CountScansByStatus(ctx context.Context, status models.ScanStatus) (int, error) {
	count, err := s.db.Store().Count(&models.ScanJob{}, badgerhold.Where("Status").Eq(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count scans by status: %w", err)
	}
	return int(count), nil
}

// DeleteScansBefore removes scan jobs created before the cutoff and returns
// the number removed
func (s *ScanStorage) DeleteScansBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var jobs []models.ScanJob
	if err := s.db.Store().Find(&jobs, badgerhold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find expired scans: %w", err)
	}

	removed := 0
	for _, job := range jobs {
		if err := s.db.Store().Delete(job.ID, &models.ScanJob{}); err != nil {
			s.logger.Warn().Err(err).Str("scan_id", job.ID).Msg("Failed to delete expired scan")
			continue
		}
		removed++
	}

	return removed, nil
}

func toScanPointers(jobs []models.ScanJob) []*models.ScanJob {
	result := make([]*models.ScanJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result
}
