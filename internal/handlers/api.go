package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"coffee-dashboard/internal/errors"
	"coffee-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// aggregateEnvelope wraps every aggregation response. Unavailable
// aggregations (source lacked their columns) answer with available=false
// and a reason; per the degradation policy that is informational, not an
// HTTP failure.
type aggregateEnvelope struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Report    any    `json:"report,omitempty"`
}

func (h *APIHandlers) writeReport(w http.ResponseWriter, name string, report any, available bool) {
	envelope := aggregateEnvelope{Available: available}
	if available {
		envelope.Report = report
	} else {
		envelope.Reason = name + " unavailable: required columns missing from source"
		h.logger.Warn("aggregation unavailable", "aggregation", name)
	}

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}
	errors.WriteSuccessWithHeaders(w, envelope, headers)
}

func (h *APIHandlers) HandleRevenueByWeekday(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.RevenueByWeekday()
	h.writeReport(w, "revenue-by-weekday", report, report != nil)
}

func (h *APIHandlers) HandleVolumeByWeekday(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.VolumeByWeekday()
	h.writeReport(w, "volume-by-weekday", report, report != nil)
}

func (h *APIHandlers) HandleVolumeByMonth(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.VolumeByMonth()
	h.writeReport(w, "volume-by-month", report, report != nil)
}

func (h *APIHandlers) HandleVolumeByHour(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.VolumeByHour()
	h.writeReport(w, "volume-by-hour", report, report != nil)
}

func (h *APIHandlers) HandleTopProduct(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.TopProduct()
	h.writeReport(w, "top-product", report, report != nil)
}

func (h *APIHandlers) HandleTopProductTrend(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.TopProductTrend()
	h.writeReport(w, "top-product-trend", report, report != nil)
}

func (h *APIHandlers) HandleProductShare(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.ProductShare()
	h.writeReport(w, "product-share", report, report != nil)
}

func (h *APIHandlers) HandleWarnings(w http.ResponseWriter, r *http.Request) {
	warnings := h.analytics.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	errors.WriteSuccess(w, warnings)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
