package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler serves the metrics and health endpoints.
type Handler struct {
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewHandler creates a Handler exposing the collectors of gatherer.
func NewHandler(gatherer prometheus.Gatherer, logger *zap.Logger) *Handler {
	return &Handler{
		gatherer: gatherer,
		logger:   logger,
	}
}

// MetricsHandler returns the prometheus scrape handler.
func (h *Handler) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})
}

// HealthHandler reports that the service is up.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok","service":"wallet-payout-engine"}`)); err != nil {
		h.logger.Warn("failed to write health response", zap.Error(err))
	}
}
