package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/llm"
	"github.com/ternarybob/quaestor/internal/services/scanner"
)

// APIHandler serves the health, version and fallback endpoints. Health reads
// each component directly rather than keeping cached state.
type APIHandler struct {
	storage interfaces.StorageManager
	market  interfaces.MarketService
	llm     *llm.ProviderFactory
	scanner *scanner.Service
	logger  arbor.ILogger
}

func NewAPIHandler(storage interfaces.StorageManager, market interfaces.MarketService, llmFactory *llm.ProviderFactory, scannerService *scanner.Service, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		storage: storage,
		market:  market,
		llm:     llmFactory,
		scanner: scannerService,
		logger:  logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler handles GET /api/health. Storage and scanner failures degrade
// the overall status; unconfigured providers are reported but stay healthy
// because the scan pipeline still works without them.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	components := map[string]string{
		"storage": "ok",
		"market":  "ok",
		"llm":     "ok",
		"scanner": "ok",
	}

	if h.storage == nil {
		components["storage"] = "unavailable"
	} else if _, err := h.storage.KVStorage().Get(ctx, "market_api_key"); err != nil && !errors.Is(err, interfaces.ErrKeyNotFound) {
		h.logger.Warn().Err(err).Msg("Health check storage probe failed")
		components["storage"] = "error"
	}

	if h.market == nil || !h.market.IsConfigured() {
		components["market"] = "not_configured"
	}

	if h.llm == nil || !h.llm.HasCredentials(ctx) {
		components["llm"] = "not_configured"
	}

	if h.scanner == nil {
		components["scanner"] = "unavailable"
	} else if _, err := h.scanner.CountByStatus(ctx, models.ScanStatusRunning); err != nil {
		h.logger.Warn().Err(err).Msg("Health check scanner probe failed")
		components["scanner"] = "error"
	}

	status := "ok"
	for _, name := range []string{"storage", "scanner"} {
		if components[name] != "ok" {
			status = "degraded"
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
