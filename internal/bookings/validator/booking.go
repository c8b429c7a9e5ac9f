package validator

import (
	"errors"
	"fmt"
	"strings"

	"stayvault/pkg/logger"
	"stayvault/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("guest_list", validateGuestList); err != nil {
		log.Fatal("Failed to register 'guest_list' validator",
			"error", err,
		)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateGuestList(fl validator.FieldLevel) bool {
	guests, ok := fl.Field().Interface().(model.GuestDetails)
	if !ok {
		return false
	}
	if len(guests.Adults) == 0 {
		return false
	}
	first := guests.Adults[0]
	if first.Email == "" || first.Phone == "" {
		return false
	}
	for _, child := range guests.Children {
		if child.Age < 0 || child.Age >= 18 {
			return false
		}
	}
	return true
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	dates := booking.RoomSelection.Dates
	if !dates.Start.IsZero() && !dates.End.IsZero() && dates.Nights() == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Dates",
				Message: "check-out must be after check-in",
			},
		}
	}

	if booking.RoomSelection.RequestedAmount < 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "RequestedAmount",
				Message: "requested amount cannot be negative",
			},
		}
	}

	return nil
}

// ValidatePayment checks a gateway response before it is recorded.
func (v *BookingValidator) ValidatePayment(details *model.PaymentDetails) error {
	if details.Gateway.PaymentRef == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "PaymentRef",
				Message: "payment reference is required",
			},
		}
	}
	if details.Gateway.Amount < 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Amount",
				Message: "amount cannot be negative",
			},
		}
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "guest_list":
			message = "guest list needs at least one adult with contact email and phone, children under 18"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
