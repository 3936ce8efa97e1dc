package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coffee-dashboard/internal/schema"
	"coffee-dashboard/internal/services"
)

func analyticsWithoutMoney(t *testing.T) *services.Analytics {
	t.Helper()
	a := services.NewAnalytics()
	a.SetTable(schema.Normalize(
		[]string{"Coffee_Name"},
		[][]string{{"Latte"}},
	))
	return a
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := newTestAnalytics(t)
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func sseBody(t *testing.T, handler http.HandlerFunc, path string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	handler(w, r)

	return w, w.Body.String()
}

func TestSSE_RevenueByWeekday(t *testing.T) {
	h := NewSSEHandlers(newTestAnalytics(t), testLogger())

	w, body := sseBody(t, h.HandleRevenueByWeekday, "/sse/revenue-by-weekday")

	ct := w.Header().Get("Content-Type")
	if !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, want text/event-stream", ct)
	}
	if !strings.Contains(body, "revenueByWeekday") {
		t.Error("body should carry the revenueByWeekday signal")
	}
	if !strings.Contains(body, "Monday") {
		t.Error("body should carry the aggregated weekday data")
	}
}

func TestSSE_TopProduct(t *testing.T) {
	h := NewSSEHandlers(newTestAnalytics(t), testLogger())

	_, body := sseBody(t, h.HandleTopProduct, "/sse/top-product")

	if !strings.Contains(body, "topProduct") {
		t.Error("body should carry the topProduct signal")
	}
	if !strings.Contains(body, "Latte") {
		t.Error("body should name the top product")
	}
}

func TestSSE_RefreshAll(t *testing.T) {
	h := NewSSEHandlers(newTestAnalytics(t), testLogger())

	_, body := sseBody(t, h.HandleRefreshAll, "/sse/refresh-all")

	for _, signal := range []string{
		"revenueByWeekday",
		"volumeByWeekday",
		"volumeByMonth",
		"volumeByHour",
		"topProduct",
		"topProductTrend",
		"productShare",
	} {
		if !strings.Contains(body, signal) {
			t.Errorf("body should carry the %s signal", signal)
		}
	}
}

func TestSSE_UnavailableAggregationIsNull(t *testing.T) {
	a := analyticsWithoutMoney(t)
	h := NewSSEHandlers(a, testLogger())

	_, body := sseBody(t, h.HandleRevenueByWeekday, "/sse/revenue-by-weekday")

	if !strings.Contains(body, "revenueByWeekday") {
		t.Error("signal name should still be patched")
	}
	if !strings.Contains(body, "null") {
		t.Error("unavailable report should patch a null signal")
	}
}
