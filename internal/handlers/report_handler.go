package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/reports"
)

// ReportHandler handles report API requests
type ReportHandler struct {
	reports *reports.Service
	pdf     interfaces.PDFService
	logger  arbor.ILogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *reports.Service, pdfService interfaces.PDFService, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		reports: reportService,
		pdf:     pdfService,
		logger:  logger,
	}
}

// CreateReportHandler generates a report synchronously from caller-supplied
// metrics, charts and document texts, bypassing the scan pipeline
// POST /api/reports
func (h *ReportHandler) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	record, err := h.reports.Generate(r.Context(), &req, "")
	if err != nil {
		h.logger.Error().Err(err).Str("company", req.CompanyName).Msg("Failed to generate report")
		WriteError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// ListReportsHandler returns a paginated list of reports, newest first
// GET /api/reports?limit=20&offset=0
func (h *ReportHandler) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := GetListOptions(r)

	records, err := h.reports.List(ctx, opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list reports")
		WriteError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	totalCount, err := h.reports.Count(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count reports")
		totalCount = len(records)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports":     records,
		"total_count": totalCount,
		"limit":       opts.Limit,
		"offset":      opts.Offset,
	})
}

// GetReportHandler returns a single report by ID
// GET /api/reports/{id}
func (h *ReportHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDFromPath(w, r)
	if !ok {
		return
	}

	record, err := h.loadReport(w, r, reportID)
	if err != nil {
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// DownloadReportHandler streams a report as an attachment in the requested
// format
// GET /api/reports/{id}/download?format=text|markdown|pdf
func (h *ReportHandler) DownloadReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDFromPath(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}

	record, err := h.loadReport(w, r, reportID)
	if err != nil {
		return
	}

	switch format {
	case "text":
		writeAttachment(w, "text/plain; charset=utf-8",
			downloadFilename(record.ID, "txt"), []byte(record.FormattedText))

	case "markdown":
		markdown := reports.FormatAsMarkdown(record.Report)
		writeAttachment(w, "text/markdown; charset=utf-8",
			downloadFilename(record.ID, "md"), []byte(markdown))

	case "pdf":
		markdown := reports.FormatAsMarkdown(record.Report)
		title := record.CompanyName + " " + record.ReportType
		content, err := h.pdf.ConvertMarkdownToPDF(markdown, title)
		if err != nil {
			h.logger.Error().Err(err).Str("report_id", record.ID).Msg("Failed to render report PDF")
			WriteError(w, http.StatusInternalServerError, "Failed to render PDF")
			return
		}
		writeAttachment(w, "application/pdf", downloadFilename(record.ID, "pdf"), content)

	default:
		WriteError(w, http.StatusBadRequest, "Invalid format: use text, markdown, or pdf")
	}
}

// DeleteReportHandler removes a report
// DELETE /api/reports/{id}
func (h *ReportHandler) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.reports.Delete(r.Context(), reportID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.Error().Err(err).Str("report_id", reportID).Msg("Failed to delete report")
		WriteError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}

	WriteSuccess(w, "Report deleted")
}

// loadReport fetches a record and writes the error response itself when the
// lookup fails; callers bail out on a non-nil error.
func (h *ReportHandler) loadReport(w http.ResponseWriter, r *http.Request, reportID string) (*models.ReportRecord, error) {
	record, err := h.reports.Get(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Report not found")
			return nil, err
		}
		h.logger.Error().Err(err).Str("report_id", reportID).Msg("Failed to get report")
		WriteError(w, http.StatusInternalServerError, "Failed to get report")
		return nil, err
	}
	return record, nil
}

// reportIDFromPath extracts the {id} segment from /api/reports/{id}[/download].
// Writes a 400 and returns false when missing.
func reportIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 3 || pathParts[2] == "" {
		WriteError(w, http.StatusBadRequest, "Report ID is required")
		return "", false
	}
	return pathParts[2], true
}

func downloadFilename(reportID, ext string) string {
	return fmt.Sprintf("financial_report_%s.%s", reportID, ext)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
