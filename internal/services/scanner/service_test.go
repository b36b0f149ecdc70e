package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/analyzer"
	"github.com/ternarybob/quaestor/internal/services/reports"
	"github.com/ternarybob/quaestor/internal/services/workers"
)

type memScanStorage struct {
	mu   sync.Mutex
	jobs map[string]*models.ScanJob
}

func newMemScanStorage() *memScanStorage {
	return &memScanStorage{jobs: make(map[string]*models.ScanJob)}
}

func (m *memScanStorage) SaveScan(_ context.Context, job *models.ScanJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memScanStorage) GetScan(_ context.Context, id string) (*models.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memScanStorage) ListScans(_ context.Context, _ *interfaces.ListOptions) ([]*models.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ScanJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		copied := *job
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memScanStorage) ListScansByStatus(_ context.Context, status models.ScanStatus, _ *interfaces.ListOptions) ([]*models.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ScanJob, 0)
	for _, job := range m.jobs {
		if job.Status == status {
			copied := *job
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memScanStorage) DeleteScan(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memScanStorage) CountScans(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs), nil
}

func (m *memScanStorage) CountScansByStatus(_ context.Context, status models.ScanStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, job := range m.jobs {
		if job.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memScanStorage) DeleteScansBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, job := range m.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed, nil
}

type memScanLogStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (m *memScanLogStorage) AppendLog(_ context.Context, _ *models.ScanLogEntry) error { return nil }

func (m *memScanLogStorage) AppendLogs(_ context.Context, _ []*models.ScanLogEntry) error {
	return nil
}

func (m *memScanLogStorage) GetLogs(_ context.Context, _ string, _ int) ([]*models.ScanLogEntry, error) {
	return nil, nil
}

func (m *memScanLogStorage) DeleteLogs(_ context.Context, scanID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, scanID)
	return nil
}

func (m *memScanLogStorage) CountLogs(_ context.Context, _ string) (int, error) { return 0, nil }

func (m *memScanLogStorage) deletedScans() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

type scanReportStore struct {
	mu      sync.Mutex
	records map[string]*models.ReportRecord
}

func newScanReportStore() *scanReportStore {
	return &scanReportStore{records: make(map[string]*models.ReportRecord)}
}

func (m *scanReportStore) SaveReport(_ context.Context, record *models.ReportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *scanReportStore) GetReport(_ context.Context, id string) (*models.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return record, nil
}

func (m *scanReportStore) GetReportByScanID(_ context.Context, scanID string) (*models.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.ScanID == scanID {
			return record, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *scanReportStore) ListReports(_ context.Context, _ *interfaces.ListOptions) ([]*models.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ReportRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, record)
	}
	return out, nil
}

func (m *scanReportStore) DeleteReport(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *scanReportStore) CountReports(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *scanReportStore) DeleteReportsBefore(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

type failingPDF struct{}

func (failingPDF) ExtractText(context.Context, []byte) (string, error) {
	return "", fmt.Errorf("document is encrypted")
}

type testHarness struct {
	svc     *Service
	scans   *memScanStorage
	logs    *memScanLogStorage
	reports *scanReportStore
	pool    *workers.Pool
}

func newTestHarness(t *testing.T, pdf interfaces.PDFExtractor) *testHarness {
	t.Helper()

	logger := arbor.NewLogger()
	scans := newMemScanStorage()
	logs := &memScanLogStorage{}
	reportStore := newScanReportStore()
	reportSvc := reports.NewService(reports.NewGenerator(analyzer.NewService(nil, 0, logger), logger), reportStore, logger)
	pool := workers.NewPool(1, 4, logger)
	ocr := NewOCREngine("quaestor-no-such-ocr-binary", "", 0, logger)

	svc := NewService(common.NewDefaultConfig().Scanner, scans, logs, reportSvc, ocr, pdf, pool, logger)
	return &testHarness{svc: svc, scans: scans, logs: logs, reports: reportStore, pool: pool}
}

func TestSubmitAppliesDefaults(t *testing.T) {
	h := newTestHarness(t, nil)
	// Pool never started: Submit only queues work.

	job, err := h.svc.Submit(context.Background(), &models.ScanRequest{
		CompanyName: "ABN AMRO Bank",
		Documents: []models.ScanDocumentInput{
			{Name: "summary.txt", MediaType: "text/plain", Content: []byte("Revenue: 5 million")},
		},
	}, "upload")
	require.NoError(t, err)

	assert.Equal(t, models.ScanStatusPending, job.Status)
	assert.Equal(t, "quarterly_report", job.ReportType)
	assert.Equal(t, "detailed_analysis", job.AnalysisType)
	assert.Equal(t, "upload", job.Source)
	assert.Equal(t, 1, job.DocumentCount)
	assert.Equal(t, int64(18), job.Documents[0].Size)
	assert.False(t, job.CreatedAt.IsZero())

	stored, err := h.scans.GetScan(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusPending, stored.Status)
}

func TestSubmitKeepsExplicitTypes(t *testing.T) {
	h := newTestHarness(t, nil)

	job, err := h.svc.Submit(context.Background(), &models.ScanRequest{
		CompanyName:  "ING Groep",
		ReportType:   "investment_analysis",
		AnalysisType: "risk_assessment",
		Documents: []models.ScanDocumentInput{
			{Name: "summary.txt", MediaType: "text/plain", Content: []byte("Revenue: 5 million")},
		},
	}, "api")
	require.NoError(t, err)

	assert.Equal(t, "investment_analysis", job.ReportType)
	assert.Equal(t, "risk_assessment", job.AnalysisType)
}

func TestProcessCompletesScan(t *testing.T) {
	h := newTestHarness(t, nil)

	job, err := h.svc.Submit(context.Background(), &models.ScanRequest{
		CompanyName: "ABN AMRO Bank",
		ReportType:  "annual_report",
		Documents: []models.ScanDocumentInput{
			{Name: "figures.txt", MediaType: "text/plain", Content: []byte("Net Profit: 690 million\nROE: 11.6%")},
		},
	}, "api")
	require.NoError(t, err)

	require.NoError(t, h.svc.Process(context.Background(), job.ID))

	stored, err := h.scans.GetScan(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCompleted, stored.Status)
	assert.Equal(t, 1, stored.TextsExtracted)
	assert.Equal(t, 2, stored.Metrics)
	assert.Equal(t, 1, stored.Charts)
	assert.Empty(t, stored.Errors)
	assert.False(t, stored.StartedAt.IsZero())
	assert.False(t, stored.CompletedAt.IsZero())
	require.NotEmpty(t, stored.ReportID)

	record, err := h.reports.GetReport(context.Background(), stored.ReportID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, record.ScanID)
	assert.Equal(t, "ABN AMRO Bank", record.CompanyName)
	assert.Contains(t, record.FormattedText, "ABN AMRO Bank")
}

func TestProcessRecordsDocumentErrors(t *testing.T) {
	h := newTestHarness(t, failingPDF{})

	job, err := h.svc.Submit(context.Background(), &models.ScanRequest{
		CompanyName: "Rabobank",
		Documents: []models.ScanDocumentInput{
			{Name: "locked.pdf", MediaType: "application/pdf", Content: []byte("%PDF-1.7")},
			{Name: "figures.txt", MediaType: "text/plain", Content: []byte("Revenue: 12,400 million")},
		},
	}, "api")
	require.NoError(t, err)

	require.NoError(t, h.svc.Process(context.Background(), job.ID))

	stored, err := h.scans.GetScan(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCompleted, stored.Status)
	assert.Equal(t, 1, stored.TextsExtracted)
	require.Len(t, stored.Errors, 1)
	assert.Contains(t, stored.Errors[0], "locked.pdf")
	assert.Contains(t, stored.Errors[0], "encrypted")
	assert.NotEmpty(t, stored.ReportID)
}

func TestProcessFailsWhenNothingExtracted(t *testing.T) {
	h := newTestHarness(t, nil)

	job, err := h.svc.Submit(context.Background(), &models.ScanRequest{
		CompanyName: "Rabobank",
		Documents: []models.ScanDocumentInput{
			{Name: "blank.txt", MediaType: "text/plain", Content: []byte("   \n\t")},
		},
	}, "api")
	require.NoError(t, err)

	err = h.svc.Process(context.Background(), job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text could be extracted")

	stored, getErr := h.scans.GetScan(context.Background(), job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.ScanStatusFailed, stored.Status)
	assert.Empty(t, stored.ReportID)
	assert.False(t, stored.CompletedAt.IsZero())
	require.Len(t, stored.Errors, 2)
	assert.Equal(t, "blank.txt: no text content", stored.Errors[0])
	assert.Equal(t, "no text could be extracted from any document", stored.Errors[1])
}

func TestProcessUnknownScan(t *testing.T) {
	h := newTestHarness(t, nil)

	err := h.svc.Process(context.Background(), "scan_missing")
	require.Error(t, err)
}

func TestDeleteRemovesLogs(t *testing.T) {
	h := newTestHarness(t, nil)

	job, err := h.svc.Submit(context.Background(), &models.ScanRequest{
		CompanyName: "ING Groep",
		Documents: []models.ScanDocumentInput{
			{Name: "summary.txt", MediaType: "text/plain", Content: []byte("Revenue: 5 million")},
		},
	}, "upload")
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(context.Background(), job.ID))

	_, err = h.scans.GetScan(context.Background(), job.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.Equal(t, []string{job.ID}, h.logs.deletedScans())
}

func TestDeleteOlderThan(t *testing.T) {
	h := newTestHarness(t, nil)

	old := &models.ScanJob{
		ID:        "scan_old",
		Status:    models.ScanStatusCompleted,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -45),
	}
	recent := &models.ScanJob{
		ID:        "scan_recent",
		Status:    models.ScanStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, h.scans.SaveScan(context.Background(), old))
	require.NoError(t, h.scans.SaveScan(context.Background(), recent))

	removed, err := h.svc.DeleteOlderThan(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = h.scans.GetScan(context.Background(), "scan_old")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = h.scans.GetScan(context.Background(), "scan_recent")
	assert.NoError(t, err)
}

func TestResumePending(t *testing.T) {
	h := newTestHarness(t, nil)

	seed := func(id string, status models.ScanStatus) {
		job := &models.ScanJob{
			ID:          id,
			CompanyName: "ING Groep",
			ReportType:  "quarterly_report",
			Status:      status,
			Documents: []models.ScanDocument{
				{Name: "figures.txt", MediaType: "text/plain", Size: 18, Content: []byte("Revenue: 5 million")},
			},
			DocumentCount: 1,
			CreatedAt:     time.Now().UTC(),
		}
		require.NoError(t, h.scans.SaveScan(context.Background(), job))
	}
	seed("scan_resume_pending", models.ScanStatusPending)
	seed("scan_resume_running", models.ScanStatusRunning)

	// Requeue before starting workers so both list queries see the seeded
	// statuses; the buffered queue holds the jobs until Start.
	require.NoError(t, h.svc.ResumePending(context.Background()))

	h.pool.Start()
	defer h.pool.Shutdown()

	deadline := time.After(2 * time.Second)
	for {
		first, err := h.scans.GetScan(context.Background(), "scan_resume_pending")
		require.NoError(t, err)
		second, err := h.scans.GetScan(context.Background(), "scan_resume_running")
		require.NoError(t, err)
		if first.Status == models.ScanStatusCompleted && second.Status == models.ScanStatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("scans did not finish: %s / %s", first.Status, second.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	record, err := h.reports.GetReportByScanID(context.Background(), "scan_resume_pending")
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
}
