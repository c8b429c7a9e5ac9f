package service

import (
	"context"
	"errors"

	bookingserrors "stayvault/internal/bookings/errors"
	"stayvault/internal/bookings/validator"
	"stayvault/internal/events"
	"stayvault/internal/state"
	"stayvault/pkg/config"
	apperrors "stayvault/pkg/errors"
	"stayvault/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, caller string, booking *model.Booking) error
	Get(ctx context.Context, caller string, id model.BookingID) (*model.Booking, error)
	ListForUser(ctx context.Context, caller, email string) ([]*model.Booking, error)
	ListAll(ctx context.Context, caller string, limit int, offset int64) ([]model.BookingSummary, int64, error)
	FindByPaymentRef(ctx context.Context, caller, ref string) (*model.Booking, error)
	UpdatePayment(ctx context.Context, caller string, id model.BookingID, details model.PaymentDetails) (*model.Booking, error)
	UpdateStatus(ctx context.Context, caller string, id model.BookingID, response model.BookRoomResponse) (*model.Booking, error)
	Annotate(ctx context.Context, caller string, id model.BookingID, message string) (*model.Booking, error)
	RecordNotification(ctx context.Context, caller string, id model.BookingID, sent bool) error
	NotificationSent(ctx context.Context, caller string, id model.BookingID) (bool, error)
}

type bookingService struct {
	store     *state.Store
	validator *validator.BookingValidator
	publisher *events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	store *state.Store,
	validator *validator.BookingValidator,
	publisher *events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		store:     store,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// isOperator consults the persisted allow-list plus the bootstrap
// operators from configuration. The bootstrap list covers the cold
// start where the persisted allow-list is still empty.
func (s *bookingService) isOperator(c *state.Container, caller string) bool {
	if caller == "" {
		return false
	}
	if c.IsOperator(caller) {
		return true
	}
	for _, op := range s.cfg.BootstrapOperators {
		if op == caller {
			return true
		}
	}
	return false
}

// authorizeOwner admits the booking owner or an operator.
func (s *bookingService) authorizeOwner(c *state.Container, caller, ownerEmail string) error {
	if caller == "" {
		return apperrors.Forbidden(bookingserrors.ErrAnonymousCaller.Error())
	}
	if caller == ownerEmail || s.isOperator(c, caller) {
		return nil
	}
	return apperrors.Forbidden(bookingserrors.ErrForbidden.Error())
}

// authorizeOperator admits operators only.
func (s *bookingService) authorizeOperator(c *state.Container, caller string) error {
	if caller == "" {
		return apperrors.Forbidden(bookingserrors.ErrAnonymousCaller.Error())
	}
	if !s.isOperator(c, caller) {
		return apperrors.Forbidden(bookingserrors.ErrForbidden.Error())
	}
	return nil
}

func mapStateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, state.ErrBookingNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, "Booking not found", 404)
	case errors.Is(err, state.ErrUserNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, "User not found", 404)
	case errors.Is(err, state.ErrDuplicateBooking):
		return apperrors.Wrap(err, apperrors.CodeConflict, "Booking already exists", 409)
	case errors.Is(err, state.ErrEmptyPaymentRef):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "Payment reference cannot be empty", 400)
	case errors.Is(err, state.ErrDuplicatePaymentRef):
		return apperrors.Wrap(err, apperrors.CodeConflict, "Payment reference already used by another booking", 409)
	case errors.Is(err, state.ErrNotificationRecorded):
		return apperrors.Wrap(err, apperrors.CodeConflict, "Notification flag already recorded", 409)
	default:
		return err
	}
}

func (s *bookingService) Create(ctx context.Context, caller string, booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorizeOwner(c, caller, booking.ID.Email); err != nil {
			return err
		}
		return mapStateError(c.AddBooking(booking))
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "booking", booking.ID.Key(), "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created",
		"booking", booking.ID.Key(),
		"hotel", booking.RoomSelection.Hotel.Name,
		"guests", booking.Guests.TotalGuests(),
	)
	s.publisher.BookingCreated(ctx, booking)
	return nil
}

func (s *bookingService) Get(ctx context.Context, caller string, id model.BookingID) (*model.Booking, error) {
	var out *model.Booking
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorizeOwner(c, caller, id.Email); err != nil {
			return err
		}
		b, err := c.Booking(id)
		if err != nil {
			return mapStateError(err)
		}
		clone := *b
		out = &clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bookingService) ListForUser(ctx context.Context, caller, email string) ([]*model.Booking, error) {
	var out []*model.Booking
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorizeOwner(c, caller, email); err != nil {
			return err
		}
		list, err := c.UserBookings(email)
		if err != nil {
			return mapStateError(err)
		}
		out = make([]*model.Booking, 0, len(list))
		for _, b := range list {
			clone := *b
			out = append(out, &clone)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bookingService) ListAll(ctx context.Context, caller string, limit int, offset int64) ([]model.BookingSummary, int64, error) {
	var (
		page  []model.BookingSummary
		total int64
	)
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorizeOperator(c, caller); err != nil {
			return err
		}
		all := c.AllBookingSummaries()
		total = int64(len(all))
		start := offset
		if start > total {
			start = total
		}
		end := total
		if limit > 0 && start+int64(limit) < end {
			end = start + int64(limit)
		}
		page = all[start:end]
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

func (s *bookingService) FindByPaymentRef(ctx context.Context, caller, ref string) (*model.Booking, error) {
	if ref == "" {
		return nil, apperrors.InvalidInput("payment reference is required")
	}
	var out *model.Booking
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorizeOperator(c, caller); err != nil {
			return err
		}
		id, ok := c.BookingIDByPaymentRef(ref)
		if !ok {
			return apperrors.NotFoundWithID("booking with payment reference", ref)
		}
		b, err := c.Booking(id)
		if err != nil {
			return mapStateError(err)
		}
		clone := *b
		out = &clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bookingService) UpdatePayment(ctx context.Context, caller string, id model.BookingID, details model.PaymentDetails) (*model.Booking, error) {
	if err := s.validator.ValidatePayment(&details); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	var out *model.Booking
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorizeOperator(c, caller); err != nil {
			return err
		}
		b, err := c.UpdatePaymentDetails(id, details)
		if err != nil {
			return mapStateError(err)
		}
		clone := *b
		out = &clone
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update payment details", "booking", id.Key(), "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment details updated",
		"booking", id.Key(),
		"payment_ref", out.Payment.Gateway.PaymentRef,
		"paid", out.Payment.Status.IsPaid(),
	)
	s.publisher.PaymentUpdated(ctx, out)
	return out, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, caller string, id model.BookingID, response model.BookRoomResponse) (*model.Booking, error) {
	var out *model.Booking
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorizeOperator(c, caller); err != nil {
			return err
		}
		b, err := c.UpdateBookRoomStatus(id, response)
		if err != nil {
			if errors.Is(err, state.ErrBookingNotFound) {
				return mapStateError(err)
			}
			return apperrors.Conflict(err.Error())
		}
		clone := *b
		out = &clone
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking status", "booking", id.Key(), "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking status updated",
		"booking", id.Key(),
		"status", string(out.ResolvedStatus()),
	)
	s.publisher.StatusChanged(ctx, out)
	return out, nil
}

func (s *bookingService) Annotate(ctx context.Context, caller string, id model.BookingID, message string) (*model.Booking, error) {
	if message == "" {
		return nil, apperrors.InvalidInput("message is required")
	}

	var out *model.Booking
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorizeOwner(c, caller, id.Email); err != nil {
			return err
		}
		b, err := c.AnnotateBookingMessage(id, message)
		if err != nil {
			if errors.Is(err, state.ErrBookingNotFound) {
				return mapStateError(err)
			}
			return apperrors.Conflict(err.Error())
		}
		clone := *b
		out = &clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bookingService) RecordNotification(ctx context.Context, caller string, id model.BookingID, sent bool) error {
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorizeOperator(c, caller); err != nil {
			return err
		}
		return mapStateError(c.RecordNotification(id, sent))
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Notification flag recorded", "booking", id.Key(), "sent", sent)
	return nil
}

func (s *bookingService) NotificationSent(ctx context.Context, caller string, id model.BookingID) (bool, error) {
	var sent bool
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorizeOwner(c, caller, id.Email); err != nil {
			return err
		}
		var stateErr error
		sent, stateErr = c.NotificationSent(id)
		return mapStateError(stateErr)
	})
	if err != nil {
		return false, err
	}
	return sent, nil
}
