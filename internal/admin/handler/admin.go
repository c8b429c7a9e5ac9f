package handler

import (
	"encoding/json"
	"net/http"

	"stayvault/internal/admin/service"
	httputil "stayvault/pkg/http"
	"stayvault/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AdminHandler struct {
	service service.AdminService
	log     *logger.Logger
}

func NewAdminHandler(service service.AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

func (h *AdminHandler) writeErr(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *AdminHandler) writeOK(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "error", err)
	}
}

func (h *AdminHandler) SchemaStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status, err := h.service.SchemaStatus(r.Context(), httputil.CallerID(r))
	if err != nil {
		h.writeErr(w, "SchemaStatus", err)
		return
	}
	h.writeOK(w, "SchemaStatus", status)
}

type migrateRequest struct {
	Target uint64 `json:"target"`
}

func (h *AdminHandler) RunMigrations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req migrateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			}); writeErr != nil {
				h.log.Error("failed to write JSON response", "handler", "RunMigrations", "error", writeErr)
			}
			return
		}
	}

	applied, err := h.service.RunMigrations(r.Context(), httputil.CallerID(r), req.Target)
	if err != nil {
		h.writeErr(w, "RunMigrations", err)
		return
	}
	h.writeOK(w, "RunMigrations", map[string]int{"applied": applied})
}

func (h *AdminHandler) Rollback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req migrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Rollback", "error", writeErr)
		}
		return
	}

	rolled, err := h.service.RollbackTo(r.Context(), httputil.CallerID(r), req.Target)
	if err != nil {
		h.writeErr(w, "Rollback", err)
		return
	}
	h.writeOK(w, "Rollback", map[string]int{"rolled_back": rolled})
}

func (h *AdminHandler) Operators(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	operators, err := h.service.Operators(r.Context(), httputil.CallerID(r))
	if err != nil {
		h.writeErr(w, "Operators", err)
		return
	}
	h.writeOK(w, "Operators", operators)
}

func (h *AdminHandler) AddOperator(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.AddOperator(r.Context(), httputil.CallerID(r), ps.ByName("identity")); err != nil {
		h.writeErr(w, "AddOperator", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AdminHandler) RemoveOperator(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.RemoveOperator(r.Context(), httputil.CallerID(r), ps.ByName("identity")); err != nil {
		h.writeErr(w, "RemoveOperator", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AdminHandler) RebuildIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	inserted, err := h.service.RebuildIndex(r.Context(), httputil.CallerID(r))
	if err != nil {
		h.writeErr(w, "RebuildIndex", err)
		return
	}
	h.writeOK(w, "RebuildIndex", map[string]int{"inserted": inserted})
}

func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	indexed, err := h.service.ReindexPayments(r.Context(), httputil.CallerID(r))
	if err != nil {
		h.writeErr(w, "Reindex", err)
		return
	}
	h.writeOK(w, "Reindex", map[string]int{"indexed": indexed})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context(), httputil.CallerID(r))
	if err != nil {
		h.writeErr(w, "Stats", err)
		return
	}
	h.writeOK(w, "Stats", stats)
}

func (h *AdminHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.SaveSnapshot(r.Context(), httputil.CallerID(r)); err != nil {
		h.writeErr(w, "SaveSnapshot", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/schema", h.SchemaStatus)
	router.POST("/api/v1/admin/migrations/run", h.RunMigrations)
	router.POST("/api/v1/admin/migrations/rollback", h.Rollback)
	router.GET("/api/v1/admin/operators", h.Operators)
	router.PUT("/api/v1/admin/operators/:identity", h.AddOperator)
	router.DELETE("/api/v1/admin/operators/:identity", h.RemoveOperator)
	router.POST("/api/v1/admin/index/rebuild", h.RebuildIndex)
	router.POST("/api/v1/admin/index/reindex", h.Reindex)
	router.GET("/api/v1/admin/stats", h.Stats)
	router.POST("/api/v1/admin/snapshot", h.SaveSnapshot)
}
