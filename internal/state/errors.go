package state

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrDuplicateBooking = errors.New("booking already exists for user")

	ErrEmptyPaymentRef     = errors.New("payment reference cannot be empty")
	ErrDuplicatePaymentRef = errors.New("payment reference already used by another booking")

	ErrNotificationRecorded = errors.New("notification flag already recorded for booking")

	ErrOperatorExists   = errors.New("operator already exists")
	ErrOperatorNotFound = errors.New("operator not found")
)
