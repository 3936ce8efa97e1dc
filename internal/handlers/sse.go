package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coffee-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

// SSEHandlers push aggregate reports to the presentation layer as Datastar
// signal patches. Only plain data crosses this boundary; rendering stays
// with the consumer.
type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) patchSignals(w http.ResponseWriter, r *http.Request, signals map[string]any) {
	sse := datastar.NewSSE(w, r)

	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	sse.PatchSignals(payload)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRevenueByWeekday(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"revenueByWeekday": h.analytics.RevenueByWeekday(),
	})
}

func (h *SSEHandlers) HandleVolumeByWeekday(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"volumeByWeekday": h.analytics.VolumeByWeekday(),
	})
}

func (h *SSEHandlers) HandleVolumeByMonth(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"volumeByMonth": h.analytics.VolumeByMonth(),
	})
}

func (h *SSEHandlers) HandleVolumeByHour(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"volumeByHour": h.analytics.VolumeByHour(),
	})
}

func (h *SSEHandlers) HandleTopProduct(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"topProduct": h.analytics.TopProduct(),
	})
}

func (h *SSEHandlers) HandleTopProductTrend(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"topProductTrend": h.analytics.TopProductTrend(),
	})
}

func (h *SSEHandlers) HandleProductShare(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"productShare": h.analytics.ProductShare(),
	})
}

// HandleRefreshAll pushes every report in a single patch.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	h.patchSignals(w, r, map[string]any{
		"revenueByWeekday": h.analytics.RevenueByWeekday(),
		"volumeByWeekday":  h.analytics.VolumeByWeekday(),
		"volumeByMonth":    h.analytics.VolumeByMonth(),
		"volumeByHour":     h.analytics.VolumeByHour(),
		"topProduct":       h.analytics.TopProduct(),
		"topProductTrend":  h.analytics.TopProductTrend(),
		"productShare":     h.analytics.ProductShare(),
		"warnings":         h.analytics.Warnings(),
	})
}
