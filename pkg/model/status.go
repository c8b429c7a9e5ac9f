package model

// ResolvedBookingStatus is the internally-tracked room-confirmation lifecycle
// stage, distinct from the raw status string returned by the provider.
type ResolvedBookingStatus string

const (
	StatusUnknown   ResolvedBookingStatus = "Unknown"
	StatusOnHold    ResolvedBookingStatus = "BookingOnHold"
	StatusConfirmed ResolvedBookingStatus = "BookingConfirmed"
	StatusCancelled ResolvedBookingStatus = "BookingCancelled"
	StatusFailed    ResolvedBookingStatus = "BookingFailed"
)

// normalized maps the zero value (e.g. decoded from an older snapshot that
// predates the field) onto StatusUnknown.
func (s ResolvedBookingStatus) normalized() ResolvedBookingStatus {
	if s == "" {
		return StatusUnknown
	}
	return s
}

func (s ResolvedBookingStatus) IsTerminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine accepts moving to next.
// Terminal states accept no further transition, except the idempotent
// Confirmed -> Confirmed re-confirmation.
func (s ResolvedBookingStatus) CanTransitionTo(next ResolvedBookingStatus) bool {
	switch s.normalized() {
	case StatusUnknown:
		return true
	case StatusOnHold:
		switch next {
		case StatusConfirmed, StatusCancelled, StatusFailed:
			return true
		}
		return false
	case StatusConfirmed:
		return next == StatusConfirmed
	default: // StatusCancelled, StatusFailed
		return false
	}
}

func (s ResolvedBookingStatus) String() string {
	return string(s.normalized())
}

// BookRoomResponse is the provider's room-confirmation response as stored on
// a booking.
type BookRoomResponse struct {
	Status        string         `json:"status" bson:"status"`
	Message       string         `json:"message,omitempty" bson:"message,omitempty"`
	CommitBooking BookingDetails `json:"commit_booking" bson:"commit_booking"`
}

type BookingDetails struct {
	BookingID      BookingID             `json:"booking_id" bson:"booking_id"`
	ProviderID     string                `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	BookingRefNo   string                `json:"booking_ref_no,omitempty" bson:"booking_ref_no,omitempty"`
	ConfirmationNo string                `json:"confirmation_no,omitempty" bson:"confirmation_no,omitempty"`
	ResolvedStatus ResolvedBookingStatus `json:"resolved_status" bson:"resolved_status"`
	BookingStatus  string                `json:"booking_status" bson:"booking_status"`
}
