package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/savebox/internal/service"
)

type StatsHandler struct {
	svc    *service.StatsService
	logger *slog.Logger
}

func NewStatsHandler(svc *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// HandleGet returns per-resource counts for the caller.
//
// HTTP: GET /api/statistics
func (h *StatsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Get(r.Context(), ownerKey(r))
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch statistics")
		return
	}

	writeSuccess(w, envelope{"data": stats})
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth pings the store.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Success: false, Error: "database unavailable"})
		return
	}

	writeSuccess(w, envelope{"data": envelope{"status": "ok"}})
}
