package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestGetListOptions(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedLimit  int
		expectedOffset int
	}{
		{"Defaults", "/api/scans", 20, 0},
		{"Explicit values", "/api/scans?limit=50&offset=10", 50, 10},
		{"Limit above max falls back", "/api/scans?limit=500", 20, 0},
		{"Zero limit falls back", "/api/scans?limit=0", 20, 0},
		{"Negative limit falls back", "/api/scans?limit=-5", 20, 0},
		{"Negative offset falls back", "/api/scans?offset=-3", 20, 0},
		{"Non-numeric values fall back", "/api/scans?limit=abc&offset=xyz", 20, 0},
		{"Max limit accepted", "/api/scans?limit=100", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			opts := GetListOptions(req)

			if opts.Limit != tt.expectedLimit {
				t.Errorf("Expected limit %d, got %d", tt.expectedLimit, opts.Limit)
			}
			if opts.Offset != tt.expectedOffset {
				t.Errorf("Expected offset %d, got %d", tt.expectedOffset, opts.Offset)
			}
		})
	}
}
