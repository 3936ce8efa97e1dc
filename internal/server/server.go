package server

import (
	"log/slog"
	"net/http"

	"coffee-dashboard/internal/handlers"
	"coffee-dashboard/internal/observability"
	"coffee-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(metrics)
	return s
}

func (s *Server) setupRoutes(metrics *observability.Metrics) {
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if metrics != nil {
		s.mux.Handle("GET /metrics", metrics.Handler())
	}

	// REST API endpoints, one per aggregation
	s.mux.HandleFunc("GET /api/revenue-by-weekday", s.apiHandlers.HandleRevenueByWeekday)
	s.mux.HandleFunc("GET /api/volume-by-weekday", s.apiHandlers.HandleVolumeByWeekday)
	s.mux.HandleFunc("GET /api/volume-by-month", s.apiHandlers.HandleVolumeByMonth)
	s.mux.HandleFunc("GET /api/volume-by-hour", s.apiHandlers.HandleVolumeByHour)
	s.mux.HandleFunc("GET /api/top-product", s.apiHandlers.HandleTopProduct)
	s.mux.HandleFunc("GET /api/top-product-trend", s.apiHandlers.HandleTopProductTrend)
	s.mux.HandleFunc("GET /api/product-share", s.apiHandlers.HandleProductShare)
	s.mux.HandleFunc("GET /api/warnings", s.apiHandlers.HandleWarnings)

	// Datastar SSE endpoints for the presentation layer
	s.mux.HandleFunc("GET /sse/revenue-by-weekday", s.sseHandlers.HandleRevenueByWeekday)
	s.mux.HandleFunc("GET /sse/volume-by-weekday", s.sseHandlers.HandleVolumeByWeekday)
	s.mux.HandleFunc("GET /sse/volume-by-month", s.sseHandlers.HandleVolumeByMonth)
	s.mux.HandleFunc("GET /sse/volume-by-hour", s.sseHandlers.HandleVolumeByHour)
	s.mux.HandleFunc("GET /sse/top-product", s.sseHandlers.HandleTopProduct)
	s.mux.HandleFunc("GET /sse/top-product-trend", s.sseHandlers.HandleTopProductTrend)
	s.mux.HandleFunc("GET /sse/product-share", s.sseHandlers.HandleProductShare)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
