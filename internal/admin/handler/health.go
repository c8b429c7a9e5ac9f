package handler

import (
	"net/http"
	"time"

	"stayvault/internal/state"
	httputil "stayvault/pkg/http"
	"stayvault/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthHandler struct {
	store   *state.Store
	log     *logger.Logger
	started time.Time
}

func NewHealthHandler(store *state.Store, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		log:     log,
		started: time.Now(),
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SchemaVersion uint64 `json:"schema_version"`
	Users         int    `json:"users"`
	Bookings      int    `json:"bookings"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	err := h.store.View(func(c *state.Container) error {
		resp.SchemaVersion, _ = c.SchemaVersionInfo()
		resp.Users, resp.Bookings, _ = c.Counts()
		return nil
	})
	if err != nil {
		h.log.Error("health check failed", "error", err)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{
			Error: "state unavailable",
		}); writeErr != nil {
			h.log.Error("failed to write health response", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write health response", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Health)
}
