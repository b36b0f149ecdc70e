package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Service pairs the generator with report persistence
type Service struct {
	generator *Generator
	storage   interfaces.ReportStorage
	logger    arbor.ILogger
}

func NewService(generator *Generator, storage interfaces.ReportStorage, logger arbor.ILogger) *Service {
	return &Service{
		generator: generator,
		storage:   storage,
		logger:    logger,
	}
}

// Generate builds, formats, and persists a report. scanID links the record
// to the scan that produced the inputs; direct API generations pass "".
func (s *Service) Generate(ctx context.Context, req *models.GenerateReportRequest, scanID string) (*models.ReportRecord, error) {
	report := s.generator.Generate(ctx, req.Metrics, req.Charts, req.Texts, req.ReportType, req.CompanyName, req.AnalysisType)

	now := time.Now().UTC()
	record := &models.ReportRecord{
		ID:            common.NewReportID(),
		ScanID:        scanID,
		CompanyName:   report.Metadata.CompanyName,
		ReportType:    report.Metadata.ReportType,
		Report:        report,
		FormattedText: FormatAsText(report),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.storage.SaveReport(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info().
		Str("report_id", record.ID).
		Str("scan_id", scanID).
		Str("company", record.CompanyName).
		Msg("Report saved")

	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.ReportRecord, error) {
	return s.storage.GetReport(ctx, id)
}

func (s *Service) GetByScanID(ctx context.Context, scanID string) (*models.ReportRecord, error) {
	return s.storage.GetReportByScanID(ctx, scanID)
}

func (s *Service) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ReportRecord, error) {
	return s.storage.ListReports(ctx, opts)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.CountReports(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteReport(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("report_id", id).Msg("Report deleted")
	return nil
}

// DeleteOlderThan removes reports past the retention window and returns the
// number removed. Wired to the scheduler's retention job.
func (s *Service) DeleteOlderThan(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	removed, err := s.storage.DeleteReportsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reports: %w", err)
	}

	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Expired reports removed")
	}
	return removed, nil
}
