package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler exposes aggregated analytics over HTTP.
type Handler struct {
	agg    *Aggregator
	logger *slog.Logger
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{
		agg:    agg,
		logger: slog.Default().With("component", "analytics-handler"),
	}
}

// Stats handles GET /analytics/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.agg.Stats()); err != nil {
		h.logger.Error("encoding stats response", "error", err)
	}
}
