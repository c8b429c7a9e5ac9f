package handler

import (
	"encoding/json"
	"net/http"

	"stayvault/internal/bookings/service"
	httputil "stayvault/pkg/http"
	"stayvault/pkg/logger"
	"stayvault/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func bookingIDFromParams(ps httprouter.Params) model.BookingID {
	return model.NewBookingID(ps.ByName("ref"), ps.ByName("email"))
}

func (h *BookingHandler) writeErr(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), httputil.CallerID(r), &booking); err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Get(r.Context(), httputil.CallerID(r), bookingIDFromParams(ps))
	if err != nil {
		h.writeErr(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *BookingHandler) ListForUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.ListForUser(r.Context(), httputil.CallerID(r), ps.ByName("email"))
	if err != nil {
		h.writeErr(w, "ListForUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForUser", "error", err)
	}
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeErr(w, "ListAll", err)
		return
	}

	summaries, total, err := h.service.ListAll(r.Context(), httputil.CallerID(r), limit, offset)
	if err != nil {
		h.writeErr(w, "ListAll", err)
		return
	}

	if err := httputil.WritePaginated(w, summaries, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListAll", "error", err)
	}
}

func (h *BookingHandler) FindByPaymentRef(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.FindByPaymentRef(r.Context(), httputil.CallerID(r), ps.ByName("ref"))
	if err != nil {
		h.writeErr(w, "FindByPaymentRef", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "FindByPaymentRef", "error", err)
	}
}

func (h *BookingHandler) UpdatePayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var details model.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdatePayment", "error", writeErr)
		}
		return
	}

	id := bookingIDFromParams(ps)
	details.BookingID = id
	booking, err := h.service.UpdatePayment(r.Context(), httputil.CallerID(r), id, details)
	if err != nil {
		h.writeErr(w, "UpdatePayment", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdatePayment", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var response model.BookRoomResponse
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateStatus", "error", writeErr)
		}
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), httputil.CallerID(r), bookingIDFromParams(ps), response)
	if err != nil {
		h.writeErr(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *BookingHandler) Annotate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Annotate", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Annotate(r.Context(), httputil.CallerID(r), bookingIDFromParams(ps), body.Message)
	if err != nil {
		h.writeErr(w, "Annotate", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Annotate", "error", err)
	}
}

func (h *BookingHandler) RecordNotification(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Sent bool `json:"sent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "RecordNotification", "error", writeErr)
		}
		return
	}

	if err := h.service.RecordNotification(r.Context(), httputil.CallerID(r), bookingIDFromParams(ps), body.Sent); err != nil {
		h.writeErr(w, "RecordNotification", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) NotificationSent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sent, err := h.service.NotificationSent(r.Context(), httputil.CallerID(r), bookingIDFromParams(ps))
	if err != nil {
		h.writeErr(w, "NotificationSent", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"sent": sent}); err != nil {
		h.log.Error("failed to write success response", "handler", "NotificationSent", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.ListAll)
	router.GET("/api/v1/users/:email/bookings", h.ListForUser)
	router.GET("/api/v1/bookings/:email/:ref", h.Get)
	router.PUT("/api/v1/bookings/:email/:ref/payment", h.UpdatePayment)
	router.PUT("/api/v1/bookings/:email/:ref/status", h.UpdateStatus)
	router.PATCH("/api/v1/bookings/:email/:ref/message", h.Annotate)
	router.POST("/api/v1/bookings/:email/:ref/notification", h.RecordNotification)
	router.GET("/api/v1/bookings/:email/:ref/notification", h.NotificationSent)
	router.GET("/api/v1/payments/:ref/booking", h.FindByPaymentRef)
}
