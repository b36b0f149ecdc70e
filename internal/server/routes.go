package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - live scan log streaming
	mux.HandleFunc("/ws/scans", s.app.WSHandler.HandleScanStream)

	// API routes - Market data (GET /{symbol} lookups, POST range queries)
	mux.HandleFunc("/api/company/", s.app.MarketHandler.CompanyHandler)
	mux.HandleFunc("/api/market/", s.app.MarketHandler.QuoteHandler)
	mux.HandleFunc("/api/historical", s.app.MarketHandler.HistoricalHandler)
	mux.HandleFunc("/api/analytics", s.app.MarketHandler.AnalyticsHandler)

	// API routes - Document scans
	mux.HandleFunc("/api/scans", s.handleScansRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/scans/", s.handleScanRoutes) // GET /{id}, GET /{id}/report

	// API routes - Reports
	mux.HandleFunc("/api/reports", s.handleReportsRoute)  // GET (list), POST (generate)
	mux.HandleFunc("/api/reports/", s.handleReportRoutes) // GET/DELETE /{id}, GET /{id}/download

	// API routes - Logs
	mux.HandleFunc("/api/logs/recent", s.app.WSHandler.GetRecentLogsHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleScansRoute routes /api/scans requests (list and create)
func (s *Server) handleScansRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.ScanHandler.ListScansHandler, s.app.ScanHandler.CreateScanHandler)
}

// handleScanRoutes routes /api/scans/{id} requests
func (s *Server) handleScanRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// GET /api/scans/{id}/report
	if handled := RouteByPathSuffix(w, r, "/api/scans/", []PathSuffixRouter{
		{Suffix: "/report", Handler: s.app.ScanHandler.GetScanReportHandler},
	}); handled {
		return
	}

	// GET /api/scans/{id}
	s.app.ScanHandler.GetScanHandler(w, r)
}

// handleReportsRoute routes /api/reports requests (list and generate)
func (s *Server) handleReportsRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.ReportHandler.ListReportsHandler, s.app.ReportHandler.CreateReportHandler)
}

// handleReportRoutes routes /api/reports/{id} requests
func (s *Server) handleReportRoutes(w http.ResponseWriter, r *http.Request) {
	// GET /api/reports/{id}/download
	if r.Method == "GET" {
		if handled := RouteByPathSuffix(w, r, "/api/reports/", []PathSuffixRouter{
			{Suffix: "/download", Handler: s.app.ReportHandler.DownloadReportHandler},
		}); handled {
			return
		}
	}

	// GET /api/reports/{id}, DELETE /api/reports/{id}
	RouteResourceItem(w, r, s.app.ReportHandler.GetReportHandler, s.app.ReportHandler.DeleteReportHandler)
}
