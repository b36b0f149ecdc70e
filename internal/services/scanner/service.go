// Package scanner runs the document scan pipeline: per-document text
// extraction (OCR, PDF, HTML), metric and chart extraction over the text,
// then report generation. Document failures accrue on the job and never stop
// the batch; a scan only fails when no document yields any text or the
// report itself cannot be built.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/reports"
	"github.com/ternarybob/quaestor/internal/services/workers"
)

// Service owns scan job intake and processing
type Service struct {
	cfg     common.ScannerConfig
	storage interfaces.ScanStorage
	logs    interfaces.ScanLogStorage
	reports *reports.Service
	ocr     *OCREngine
	pdf     interfaces.PDFExtractor
	pool    *workers.Pool
	logger  arbor.ILogger
}

func NewService(
	cfg common.ScannerConfig,
	storage interfaces.ScanStorage,
	logs interfaces.ScanLogStorage,
	reportService *reports.Service,
	ocr *OCREngine,
	pdf interfaces.PDFExtractor,
	pool *workers.Pool,
	logger arbor.ILogger,
) *Service {
	return &Service{
		cfg:     cfg,
		storage: storage,
		logs:    logs,
		reports: reportService,
		ocr:     ocr,
		pdf:     pdf,
		pool:    pool,
		logger:  logger,
	}
}

// Submit stores a new pending scan job and queues it for processing. The
// returned snapshot carries the generated ID for status polling; processing
// happens on the worker pool.
func (s *Service) Submit(ctx context.Context, req *models.ScanRequest, source string) (*models.ScanJob, error) {
	reportType := req.ReportType
	if reportType == "" {
		reportType = s.cfg.DefaultReportType
	}
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = s.cfg.DefaultAnalysisType
	}

	job := &models.ScanJob{
		ID:           common.NewScanID(),
		CompanyName:  req.CompanyName,
		ReportType:   reportType,
		AnalysisType: analysisType,
		Source:       source,
		Status:       models.ScanStatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	for _, input := range req.Documents {
		job.Documents = append(job.Documents, models.ScanDocument{
			Name:      input.Name,
			MediaType: input.MediaType,
			Size:      int64(len(input.Content)),
			Content:   input.Content,
		})
	}
	job.DocumentCount = len(job.Documents)

	if err := s.storage.SaveScan(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save scan job: %w", err)
	}

	if err := s.enqueue(job.ID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("scan_id", job.ID).
		Str("company", job.CompanyName).
		Int("documents", job.DocumentCount).
		Str("source", source).
		Msg("Scan job queued")

	return job, nil
}

// ResumePending requeues scans that never reached a terminal status. Called
// once at startup before the server accepts traffic, so any "running" scan
// found here is a leftover from an interrupted process.
func (s *Service) ResumePending(ctx context.Context) error {
	for _, status := range []models.ScanStatus{models.ScanStatusPending, models.ScanStatusRunning} {
		jobs, err := s.storage.ListScansByStatus(ctx, status, nil)
		if err != nil {
			return fmt.Errorf("failed to list %s scans: %w", status, err)
		}

		for _, job := range jobs {
			if err := s.enqueue(job.ID); err != nil {
				return err
			}
		}

		if len(jobs) > 0 {
			s.logger.Info().
				Int("count", len(jobs)).
				Str("status", string(status)).
				Msg("Requeued interrupted scans")
		}
	}
	return nil
}

func (s *Service) enqueue(scanID string) error {
	err := s.pool.Submit(func(ctx context.Context) error {
		return s.Process(ctx, scanID)
	})
	if err != nil {
		return fmt.Errorf("failed to queue scan %s: %w", scanID, err)
	}
	return nil
}

// Process runs the scan pipeline for a stored job. Exported so workers and
// tests drive it directly; API callers go through Submit.
func (s *Service) Process(ctx context.Context, scanID string) error {
	job, err := s.storage.GetScan(ctx, scanID)
	if err != nil {
		return fmt.Errorf("failed to load scan job %s: %w", scanID, err)
	}

	// Correlated entries feed the per-scan websocket stream
	logger := s.logger.WithCorrelationId(scanID)

	job.Status = models.ScanStatusRunning
	job.StartedAt = time.Now().UTC()
	if err := s.storage.SaveScan(ctx, job); err != nil {
		return fmt.Errorf("failed to mark scan %s running: %w", scanID, err)
	}

	logger.Info().
		Str("company", job.CompanyName).
		Int("documents", len(job.Documents)).
		Msg("Scan started")

	var (
		rawTexts []string
		metrics  []models.FinancialMetric
		charts   []models.ChartSummary
	)

	for _, doc := range job.Documents {
		text, err := s.extractText(ctx, doc)
		if err != nil {
			job.Errors = append(job.Errors, fmt.Sprintf("%s: %v", doc.Name, err))
			logger.Warn().
				Err(err).
				Str("document", doc.Name).
				Msg("Document extraction failed")
			continue
		}
		if strings.TrimSpace(text) == "" {
			job.Errors = append(job.Errors, fmt.Sprintf("%s: no text content", doc.Name))
			logger.Warn().
				Str("document", doc.Name).
				Msg("Document produced no text")
			continue
		}

		rawTexts = append(rawTexts, text)
		job.TextsExtracted++

		docMetrics := ParseMetrics(text)
		metrics = append(metrics, docMetrics...)

		chart := AnalyzeChart(text)
		charts = append(charts, chart)

		logger.Info().
			Str("document", doc.Name).
			Int("metrics", len(docMetrics)).
			Str("chart_type", chart.ChartType).
			Msg("Document processed")
	}

	job.Metrics = len(metrics)
	job.Charts = len(charts)

	if len(rawTexts) == 0 {
		return s.failScan(ctx, job, logger, "no text could be extracted from any document")
	}

	record, err := s.reports.Generate(ctx, &models.GenerateReportRequest{
		CompanyName:  job.CompanyName,
		ReportType:   job.ReportType,
		AnalysisType: job.AnalysisType,
		Metrics:      metrics,
		Charts:       charts,
		Texts:        rawTexts,
	}, job.ID)
	if err != nil {
		return s.failScan(ctx, job, logger, fmt.Sprintf("report generation failed: %v", err))
	}

	job.ReportID = record.ID
	job.Status = models.ScanStatusCompleted
	job.CompletedAt = time.Now().UTC()
	if err := s.storage.SaveScan(ctx, job); err != nil {
		return fmt.Errorf("failed to persist completed scan %s: %w", scanID, err)
	}

	logger.Info().
		Str("report_id", record.ID).
		Int("texts", job.TextsExtracted).
		Int("metrics", job.Metrics).
		Int("charts", job.Charts).
		Int("errors", len(job.Errors)).
		Msg("Scan completed")

	return nil
}

// failScan marks the job failed with the reason appended to its error list
func (s *Service) failScan(ctx context.Context, job *models.ScanJob, logger arbor.ILogger, reason string) error {
	job.Status = models.ScanStatusFailed
	job.CompletedAt = time.Now().UTC()
	job.Errors = append(job.Errors, reason)

	if err := s.storage.SaveScan(ctx, job); err != nil {
		return fmt.Errorf("failed to persist failed scan %s: %w", job.ID, err)
	}

	logger.Error().
		Str("reason", reason).
		Msg("Scan failed")

	return fmt.Errorf("scan %s failed: %s", job.ID, reason)
}

func (s *Service) Get(ctx context.Context, id string) (*models.ScanJob, error) {
	return s.storage.GetScan(ctx, id)
}

func (s *Service) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ScanJob, error) {
	return s.storage.ListScans(ctx, opts)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.CountScans(ctx)
}

func (s *Service) CountByStatus(ctx context.Context, status models.ScanStatus) (int, error) {
	return s.storage.CountScansByStatus(ctx, status)
}

// Delete removes a scan job together with its captured log entries
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteScan(ctx, id); err != nil {
		return err
	}
	if err := s.logs.DeleteLogs(ctx, id); err != nil {
		s.logger.Warn().
			Err(err).
			Str("scan_id", id).
			Msg("Failed to delete scan logs")
	}
	s.logger.Info().Str("scan_id", id).Msg("Scan deleted")
	return nil
}

// DeleteOlderThan removes scans past the retention window and returns the
// number removed. Wired to the scheduler's retention job alongside report
// retention.
func (s *Service) DeleteOlderThan(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	// Collect expired IDs first so the captured log entries go with them
	jobs, err := s.storage.ListScans(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list scans for purge: %w", err)
	}
	for _, job := range jobs {
		if !job.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.logs.DeleteLogs(ctx, job.ID); err != nil {
			s.logger.Warn().
				Err(err).
				Str("scan_id", job.ID).
				Msg("Failed to delete scan logs")
		}
	}

	removed, err := s.storage.DeleteScansBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge scans: %w", err)
	}

	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Expired scans removed")
	}
	return removed, nil
}
