package service

import (
	"context"
	"io"
	"testing"

	"stayvault/internal/bookings/validator"
	"stayvault/internal/state"
	"stayvault/pkg/config"
	apperrors "stayvault/pkg/errors"
	"stayvault/pkg/logger"
	"stayvault/pkg/model"
)

const (
	testOperator = "ops@example.com"
	testOwner    = "ada@example.com"
)

func newTestService(t *testing.T) (BookingService, *state.Store) {
	t.Helper()
	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{
		BootstrapOperators: []string{testOperator},
		Log:                log,
	}
	store := state.NewStore(nil)
	svc := NewBookingService(store, validator.NewBookingValidator(log), nil, cfg)
	return svc, store
}

func testBooking(t *testing.T, email, ref string) *model.Booking {
	t.Helper()
	b, err := model.NewBooking(
		model.NewBookingID(ref, email),
		model.GuestDetails{Adults: []model.AdultDetail{
			{FirstName: "Ada", Email: email, Phone: "+41791234567"},
		}},
		model.HotelRoomDetails{Hotel: model.HotelDetails{Name: "Grand Hotel"}},
	)
	if err != nil {
		t.Fatalf("NewBooking() error = %v", err)
	}
	return b
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("error = %v, want AppError with code %s", err, code)
	}
	if appErr.Code != code {
		t.Errorf("error code = %s, want %s", appErr.Code, code)
	}
}

func TestBookingService_CreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b := testBooking(t, testOwner, "APP-1")

	if err := svc.Create(ctx, testOwner, b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Get(ctx, testOwner, b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("Get() id = %v, want %v", got.ID, b.ID)
	}

	// Operators can read any booking; strangers cannot.
	if _, err := svc.Get(ctx, testOperator, b.ID); err != nil {
		t.Errorf("Get() as operator error = %v", err)
	}
	if _, err := svc.Get(ctx, "stranger@example.com", b.ID); err == nil {
		t.Error("Get() as stranger expected error, got nil")
	} else {
		wantCode(t, err, apperrors.CodeForbidden)
	}
	if _, err := svc.Get(ctx, "", b.ID); err == nil {
		t.Error("Get() anonymous expected error, got nil")
	}
}

func TestBookingService_Create_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := testBooking(t, testOwner, "APP-1")
	b.Guests.Adults[0].Phone = ""
	err := svc.Create(ctx, testOwner, b)
	if err == nil {
		t.Fatal("Create() without primary phone expected error, got nil")
	}
	wantCode(t, err, apperrors.CodeValidation)
}

func TestBookingService_Create_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, testOwner, testBooking(t, testOwner, "APP-1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := svc.Create(ctx, testOwner, testBooking(t, testOwner, "APP-1"))
	if err == nil {
		t.Fatal("Create() duplicate expected error, got nil")
	}
	wantCode(t, err, apperrors.CodeConflict)
}

func TestBookingService_UpdatePayment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b := testBooking(t, testOwner, "APP-1")
	if err := svc.Create(ctx, testOwner, b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	details := model.PaymentDetails{
		BookingID: b.ID,
		Gateway:   model.GatewayResponse{PaymentRef: "PAY-1", Status: "completed"},
	}

	// Owners are not gateways; payment updates are operator-only.
	if _, err := svc.UpdatePayment(ctx, testOwner, b.ID, details); err == nil {
		t.Error("UpdatePayment() as owner expected error, got nil")
	}

	updated, err := svc.UpdatePayment(ctx, testOperator, b.ID, details)
	if err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}
	if !updated.Payment.Status.IsPaid() {
		t.Errorf("payment status = %+v, want paid", updated.Payment.Status)
	}

	found, err := svc.FindByPaymentRef(ctx, testOperator, "PAY-1")
	if err != nil {
		t.Fatalf("FindByPaymentRef() error = %v", err)
	}
	if found.ID != b.ID {
		t.Errorf("FindByPaymentRef() id = %v, want %v", found.ID, b.ID)
	}

	// Empty reference rejected at validation.
	empty := details
	empty.Gateway.PaymentRef = ""
	if _, err := svc.UpdatePayment(ctx, testOperator, b.ID, empty); err == nil {
		t.Error("UpdatePayment() empty ref expected error, got nil")
	}
}

func TestBookingService_UpdatePayment_DuplicateRef(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := testBooking(t, testOwner, "APP-1")
	second := testBooking(t, "bob@example.com", "APP-2")
	if err := svc.Create(ctx, testOperator, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Create(ctx, testOperator, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mk := func(id model.BookingID) model.PaymentDetails {
		return model.PaymentDetails{
			BookingID: id,
			Gateway:   model.GatewayResponse{PaymentRef: "PAY-1", Status: "completed"},
		}
	}
	if _, err := svc.UpdatePayment(ctx, testOperator, first.ID, mk(first.ID)); err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}
	_, err := svc.UpdatePayment(ctx, testOperator, second.ID, mk(second.ID))
	if err == nil {
		t.Fatal("UpdatePayment() reused ref expected error, got nil")
	}
	wantCode(t, err, apperrors.CodeConflict)
}

func TestBookingService_UpdateStatus_TransitionRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b := testBooking(t, testOwner, "APP-1")
	if err := svc.Create(ctx, testOwner, b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cancelled := model.BookRoomResponse{
		CommitBooking: model.BookingDetails{ResolvedStatus: model.StatusCancelled},
	}
	if _, err := svc.UpdateStatus(ctx, testOperator, b.ID, cancelled); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	confirmed := model.BookRoomResponse{
		CommitBooking: model.BookingDetails{ResolvedStatus: model.StatusConfirmed},
	}
	_, err := svc.UpdateStatus(ctx, testOperator, b.ID, confirmed)
	if err == nil {
		t.Fatal("UpdateStatus() from cancelled expected error, got nil")
	}
	wantCode(t, err, apperrors.CodeConflict)
}

func TestBookingService_Annotate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b := testBooking(t, testOwner, "APP-1")
	if err := svc.Create(ctx, testOwner, b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// No status recorded yet.
	if _, err := svc.Annotate(ctx, testOwner, b.ID, "please hurry"); err == nil {
		t.Error("Annotate() without status expected error, got nil")
	}

	held := model.BookRoomResponse{
		Message:       "room held",
		CommitBooking: model.BookingDetails{ResolvedStatus: model.StatusOnHold},
	}
	if _, err := svc.UpdateStatus(ctx, testOperator, b.ID, held); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	annotated, err := svc.Annotate(ctx, testOwner, b.ID, "please hurry")
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if got := annotated.BookRoomStatus.Message; got != "[client] please hurry" {
		t.Errorf("annotated message = %q, want %q", got, "[client] please hurry")
	}
}

func TestBookingService_ListAll_Pagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, ref := range []string{"APP-1", "APP-2", "APP-3"} {
		if err := svc.Create(ctx, testOwner, testBooking(t, testOwner, ref)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if _, _, err := svc.ListAll(ctx, testOwner, 0, 0); err == nil {
		t.Error("ListAll() as non-operator expected error, got nil")
	}

	page, total, err := svc.ListAll(ctx, testOperator, 2, 1)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	if page[0].BookingID.AppReference != "APP-2" {
		t.Errorf("page[0] = %s, want APP-2", page[0].BookingID.AppReference)
	}
}

func TestBookingService_Notifications(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b := testBooking(t, testOwner, "APP-1")
	if err := svc.Create(ctx, testOwner, b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.RecordNotification(ctx, testOperator, b.ID, true); err != nil {
		t.Fatalf("RecordNotification() error = %v", err)
	}
	err := svc.RecordNotification(ctx, testOperator, b.ID, true)
	if err == nil {
		t.Fatal("RecordNotification() second write expected error, got nil")
	}
	wantCode(t, err, apperrors.CodeConflict)

	sent, err := svc.NotificationSent(ctx, testOwner, b.ID)
	if err != nil {
		t.Fatalf("NotificationSent() error = %v", err)
	}
	if !sent {
		t.Error("NotificationSent() = false, want true")
	}
}

func TestBookingService_PersistedOperatorAllowList(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	b := testBooking(t, testOwner, "APP-1")
	if err := svc.Create(ctx, testOwner, b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, _, err := svc.ListAll(ctx, "persisted@example.com", 0, 0); err == nil {
		t.Fatal("ListAll() before grant expected error, got nil")
	}
	err := store.Borrow(func(c *state.Container) error {
		return c.AddOperator("persisted@example.com")
	})
	if err != nil {
		t.Fatalf("AddOperator() error = %v", err)
	}
	if _, _, err := svc.ListAll(ctx, "persisted@example.com", 0, 0); err != nil {
		t.Errorf("ListAll() after grant error = %v", err)
	}
}
