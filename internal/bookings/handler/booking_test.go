package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "stayvault/pkg/errors"
	httputil "stayvault/pkg/http"
	"stayvault/pkg/logger"
	"stayvault/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	createFunc        func(ctx context.Context, caller string, booking *model.Booking) error
	getFunc           func(ctx context.Context, caller string, id model.BookingID) (*model.Booking, error)
	updatePaymentFunc func(ctx context.Context, caller string, id model.BookingID, details model.PaymentDetails) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, caller string, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, caller, booking)
	}
	return nil
}

func (m *mockBookingService) Get(ctx context.Context, caller string, id model.BookingID) (*model.Booking, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, caller, id)
	}
	return nil, apperrors.NotFound("booking")
}

func (m *mockBookingService) ListForUser(ctx context.Context, caller, email string) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) ListAll(ctx context.Context, caller string, limit int, offset int64) ([]model.BookingSummary, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) FindByPaymentRef(ctx context.Context, caller, ref string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) UpdatePayment(ctx context.Context, caller string, id model.BookingID, details model.PaymentDetails) (*model.Booking, error) {
	if m.updatePaymentFunc != nil {
		return m.updatePaymentFunc(ctx, caller, id, details)
	}
	return nil, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, caller string, id model.BookingID, response model.BookRoomResponse) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Annotate(ctx context.Context, caller string, id model.BookingID, message string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) RecordNotification(ctx context.Context, caller string, id model.BookingID, sent bool) error {
	return nil
}

func (m *mockBookingService) NotificationSent(ctx context.Context, caller string, id model.BookingID) (bool, error) {
	return false, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestCreate_InvalidBody(t *testing.T) {
	h := NewBookingHandler(&mockBookingService{}, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreate_PassesCallerIdentity(t *testing.T) {
	var receivedCaller string
	mock := &mockBookingService{
		createFunc: func(ctx context.Context, caller string, booking *model.Booking) error {
			receivedCaller = caller
			return nil
		},
	}
	h := NewBookingHandler(mock, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	body, _ := json.Marshal(model.Booking{ID: model.NewBookingID("APP-1", "ada@example.com")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBuffer(body))
	req.Header.Set(httputil.CallerIDHeader, "ada@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if receivedCaller != "ada@example.com" {
		t.Errorf("caller = %q, want %q", receivedCaller, "ada@example.com")
	}
}

func TestGet_RouteParams(t *testing.T) {
	var receivedID model.BookingID
	mock := &mockBookingService{
		getFunc: func(ctx context.Context, caller string, id model.BookingID) (*model.Booking, error) {
			receivedID = id
			return &model.Booking{ID: id}, nil
		},
	}
	h := NewBookingHandler(mock, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/ada@example.com/APP-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := model.NewBookingID("APP-1", "ada@example.com")
	if receivedID != want {
		t.Errorf("id = %v, want %v", receivedID, want)
	}
}

func TestGet_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", apperrors.NotFound("booking"), http.StatusNotFound},
		{"forbidden", apperrors.Forbidden("nope"), http.StatusForbidden},
		{"conflict", apperrors.Conflict("dup"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockBookingService{
				getFunc: func(ctx context.Context, caller string, id model.BookingID) (*model.Booking, error) {
					return nil, tt.serviceErr
				},
			}
			h := NewBookingHandler(mock, testLogger())
			router := httprouter.New()
			h.RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/ada@example.com/APP-1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUpdatePayment_BookingIDFromPath(t *testing.T) {
	var receivedDetails model.PaymentDetails
	mock := &mockBookingService{
		updatePaymentFunc: func(ctx context.Context, caller string, id model.BookingID, details model.PaymentDetails) (*model.Booking, error) {
			receivedDetails = details
			return &model.Booking{ID: id}, nil
		},
	}
	h := NewBookingHandler(mock, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	// Body carries a mismatched booking id; the path wins.
	body, _ := json.Marshal(model.PaymentDetails{
		BookingID: model.NewBookingID("OTHER", "evil@example.com"),
		Gateway:   model.GatewayResponse{PaymentRef: "PAY-1", Status: "completed"},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/ada@example.com/APP-1/payment", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := model.NewBookingID("APP-1", "ada@example.com")
	if receivedDetails.BookingID != want {
		t.Errorf("details.BookingID = %v, want %v", receivedDetails.BookingID, want)
	}
}
