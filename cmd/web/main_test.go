package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coffee-dashboard/internal/observability"
	"coffee-dashboard/internal/schema"
	"coffee-dashboard/internal/server"
	"coffee-dashboard/internal/services"
)

func newTestAnalytics() *services.Analytics {
	a := services.NewAnalytics()
	tbl := schema.Normalize(
		[]string{"Date", "Weekday", "Weekday_sort", "Hour_of_Day", "Month_name", "Coffee_Name", "Money"},
		[][]string{
			{"2024-03-04", "Monday", "1", "9", "March", "Latte", "3.50"},
			{"2024-03-05", "Tuesday", "2", "10", "March", "Espresso", "2.75"},
			{"2024-04-06", "Saturday", "6", "16", "April", "Latte", "3.50"},
		},
	)
	a.SetTable(tbl)
	return a
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server.NewServer(newTestAnalytics(), logger, observability.NewMetrics())
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/revenue-by-weekday", http.StatusOK, "application/json"},
		{"/api/volume-by-weekday", http.StatusOK, "application/json"},
		{"/api/volume-by-month", http.StatusOK, "application/json"},
		{"/api/volume-by-hour", http.StatusOK, "application/json"},
		{"/api/top-product", http.StatusOK, "application/json"},
		{"/api/top-product-trend", http.StatusOK, "application/json"},
		{"/api/product-share", http.StatusOK, "application/json"},
		{"/api/warnings", http.StatusOK, "application/json"},
		{"/metrics", http.StatusOK, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer()

	for _, path := range []string{
		"/sse/revenue-by-weekday",
		"/sse/volume-by-weekday",
		"/sse/volume-by-month",
		"/sse/volume-by-hour",
		"/sse/top-product",
		"/sse/top-product-trend",
		"/sse/product-share",
		"/sse/refresh-all",
	} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, want text/event-stream", ct)
			}
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/nope", nil)
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestServer_AggregateEnvelope(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/revenue-by-weekday", nil)
	srv.ServeHTTP(w, r)

	var resp struct {
		Data struct {
			Available bool `json:"available"`
			Report    struct {
				Rows []map[string]any `json:"rows"`
				Peak map[string]any   `json:"peak"`
			} `json:"report"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || !resp.Data.Available {
		t.Fatal("expected a successful, available aggregation")
	}
	if len(resp.Data.Report.Rows) != 3 {
		t.Errorf("rows = %d, want 3 weekdays", len(resp.Data.Report.Rows))
	}
	if resp.Data.Report.Peak["weekday"] != "Monday" {
		t.Errorf("peak weekday = %v, want Monday", resp.Data.Report.Peak["weekday"])
	}
}
