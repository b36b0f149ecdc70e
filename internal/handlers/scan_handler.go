package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/reports"
	"github.com/ternarybob/quaestor/internal/services/scanner"
)

// maxUploadBytes caps a whole POST /api/scans request body
const maxUploadBytes = 16 << 20 // 16 MiB

// ScanHandler handles scan job API requests
type ScanHandler struct {
	scanner *scanner.Service
	reports *reports.Service
	logger  arbor.ILogger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scannerService *scanner.Service, reportService *reports.Service, logger arbor.ILogger) *ScanHandler {
	return &ScanHandler{
		scanner: scannerService,
		reports: reportService,
		logger:  logger,
	}
}

// CreateScanHandler accepts a new scan job and queues it for processing.
// POST /api/scans takes either a multipart form (files + company_name +
// report_type + analysis_type) or a JSON body with base64 document content.
func (h *ScanHandler) CreateScanHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var req *models.ScanRequest
	var err error

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		req, err = parseMultipartScanRequest(r)
	} else {
		req, err = parseJSONScanRequest(r)
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the 16 MiB limit")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	job, err := h.scanner.Submit(r.Context(), req, "upload")
	if err != nil {
		h.logger.Error().Err(err).Str("company", req.CompanyName).Msg("Failed to queue scan")
		WriteError(w, http.StatusInternalServerError, "Failed to queue scan")
		return
	}

	WriteStarted(w, map[string]interface{}{
		"scan_id":   job.ID,
		"documents": job.DocumentCount,
	})
}

// ListScansHandler returns a paginated list of scan jobs, newest first
// GET /api/scans?limit=20&offset=0
func (h *ScanHandler) ListScansHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := GetListOptions(r)

	scans, err := h.scanner.List(ctx, opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list scans")
		WriteError(w, http.StatusInternalServerError, "Failed to list scans")
		return
	}

	totalCount, err := h.scanner.Count(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count scans")
		totalCount = len(scans)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"scans":       scans,
		"total_count": totalCount,
		"limit":       opts.Limit,
		"offset":      opts.Offset,
	})
}

// GetScanHandler returns a single scan job with its counters and errors
// GET /api/scans/{id}
func (h *ScanHandler) GetScanHandler(w http.ResponseWriter, r *http.Request) {
	scanID, ok := scanIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.scanner.Get(r.Context(), scanID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Scan not found")
			return
		}
		h.logger.Error().Err(err).Str("scan_id", scanID).Msg("Failed to get scan")
		WriteError(w, http.StatusInternalServerError, "Failed to get scan")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// GetScanReportHandler returns the report generated by a completed scan
// GET /api/scans/{id}/report
func (h *ScanHandler) GetScanReportHandler(w http.ResponseWriter, r *http.Request) {
	scanID, ok := scanIDFromPath(w, r)
	if !ok {
		return
	}

	record, err := h.reports.GetByScanID(r.Context(), scanID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No report for this scan")
			return
		}
		h.logger.Error().Err(err).Str("scan_id", scanID).Msg("Failed to get scan report")
		WriteError(w, http.StatusInternalServerError, "Failed to get scan report")
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// scanIDFromPath extracts the {id} segment from /api/scans/{id}[/report].
// Writes a 400 and returns false when missing.
func scanIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 3 || pathParts[2] == "" {
		WriteError(w, http.StatusBadRequest, "Scan ID is required")
		return "", false
	}
	return pathParts[2], true
}

func parseJSONScanRequest(r *http.Request) (*models.ScanRequest, error) {
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid JSON payload")
	}

	for i, doc := range req.Documents {
		mediaType, err := mediaTypeForUpload(doc.Name)
		if err != nil {
			return nil, err
		}
		if doc.MediaType == "" {
			req.Documents[i].MediaType = mediaType
		}
	}

	return &req, nil
}

// parseMultipartScanRequest reads uploaded files into document inputs. Parts
// stay in memory; the request body is already capped by MaxBytesReader.
func parseMultipartScanRequest(r *http.Request) (*models.ScanRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse upload form: %w", err)
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req := &models.ScanRequest{
		CompanyName:  strings.TrimSpace(r.FormValue("company_name")),
		ReportType:   strings.TrimSpace(r.FormValue("report_type")),
		AnalysisType: strings.TrimSpace(r.FormValue("analysis_type")),
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, fmt.Errorf("no files provided")
	}

	for _, fileHeader := range files {
		name := strings.TrimSpace(fileHeader.Filename)
		if name == "" {
			return nil, fmt.Errorf("file name required")
		}

		mediaType, err := mediaTypeForUpload(name)
		if err != nil {
			return nil, err
		}

		src, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", name, err)
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s: %w", name, err)
		}

		req.Documents = append(req.Documents, models.ScanDocumentInput{
			Name:      filepath.Base(name),
			MediaType: mediaType,
			Content:   content,
		})
	}

	return req, nil
}

func mediaTypeForUpload(name string) (string, error) {
	return models.MediaTypeForFile(name)
}
