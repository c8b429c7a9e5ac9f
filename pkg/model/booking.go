package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BookingID is the composite key of a booking: the application reference
// assigned at checkout plus the owning user's email. Unique per user.
type BookingID struct {
	AppReference string `json:"app_reference" bson:"app_reference" validate:"required"`
	Email        string `json:"email" bson:"email" validate:"required,email"`
}

func NewBookingID(appReference, email string) BookingID {
	return BookingID{AppReference: appReference, Email: email}
}

// Key returns the canonical string form "email::app_reference". Lexicographic
// order of keys matches ordering by (email, app_reference).
func (id BookingID) Key() string {
	return id.Email + "::" + id.AppReference
}

func (id BookingID) IsZero() bool {
	return id.AppReference == "" && id.Email == ""
}

func (id BookingID) String() string {
	return id.Key()
}

// ParseBookingKey is the inverse of BookingID.Key.
func ParseBookingKey(key string) (BookingID, error) {
	email, ref, ok := strings.Cut(key, "::")
	if !ok || email == "" || ref == "" {
		return BookingID{}, fmt.Errorf("malformed booking key %q", key)
	}
	return BookingID{AppReference: ref, Email: email}, nil
}

type Booking struct {
	ID             BookingID         `json:"booking_id" bson:"booking_id" validate:"required"`
	Guests         GuestDetails      `json:"guests" bson:"guests" validate:"guest_list"`
	BookRoomStatus *BookRoomResponse `json:"book_room_status,omitempty" bson:"book_room_status,omitempty"`
	RoomSelection  HotelRoomDetails  `json:"room_selection" bson:"room_selection"`
	Payment        PaymentDetails    `json:"payment" bson:"payment"`
}

// NewBooking builds a booking and enforces construction-time invariants.
func NewBooking(id BookingID, guests GuestDetails, selection HotelRoomDetails) (*Booking, error) {
	b := &Booking{
		ID:            id,
		Guests:        guests,
		RoomSelection: selection,
		Payment:       NewPaymentDetails(id),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Booking) Validate() error {
	if b.ID.IsZero() {
		return errors.New("booking id is required")
	}
	return b.Guests.Validate()
}

// ResolvedStatus returns the tracked room-confirmation lifecycle stage,
// StatusUnknown when no provider response has been recorded yet.
func (b *Booking) ResolvedStatus() ResolvedBookingStatus {
	if b.BookRoomStatus == nil {
		return StatusUnknown
	}
	return b.BookRoomStatus.CommitBooking.ResolvedStatus.normalized()
}

// UpdateBookRoomStatus replaces the stored room-confirmation response when the
// transition is allowed by the status state machine. On rejection nothing is
// mutated and the error names the offending pair.
func (b *Booking) UpdateBookRoomStatus(response BookRoomResponse) error {
	current := b.ResolvedStatus()
	next := response.CommitBooking.ResolvedStatus.normalized()
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("invalid status transition from %s to %s", current, next)
	}
	response.CommitBooking.ResolvedStatus = next
	b.BookRoomStatus = &response
	return nil
}

// ApplyPaymentDetails stores the new payment details and recomputes the
// payment status from the embedded gateway response.
func (b *Booking) ApplyPaymentDetails(details PaymentDetails) {
	b.Payment = details
	b.Payment.Status = DerivePaymentStatus(details.Gateway.Status, details.Gateway.PaymentRef)
}

// AnnotateStatusMessage appends a client-tagged note to the stored
// room-confirmation response. Requires one to exist.
func (b *Booking) AnnotateStatusMessage(message string) error {
	if b.BookRoomStatus == nil {
		return errors.New("no book room status recorded for booking")
	}
	b.BookRoomStatus.Message = "[client] " + message
	return nil
}

// BookingStatusDisplay returns the raw provider status string, "BookFailed"
// when no response has been recorded.
func (b *Booking) BookingStatusDisplay() string {
	if b.BookRoomStatus == nil {
		return "BookFailed"
	}
	return b.BookRoomStatus.CommitBooking.BookingStatus
}

type HotelRoomDetails struct {
	Hotel           HotelDetails  `json:"hotel" bson:"hotel"`
	Dates           DateRange     `json:"dates" bson:"dates"`
	Destination     *Destination  `json:"destination,omitempty" bson:"destination,omitempty"`
	Rooms           []RoomDetails `json:"rooms" bson:"rooms"`
	RequestedAmount float64       `json:"requested_amount" bson:"requested_amount"`
}

type HotelDetails struct {
	Name     string `json:"name" bson:"name"`
	Code     string `json:"code" bson:"code"`
	Image    string `json:"image,omitempty" bson:"image,omitempty"`
	Location string `json:"location,omitempty" bson:"location,omitempty"`
	BlockID  string `json:"block_id,omitempty" bson:"block_id,omitempty"`
	Token    string `json:"token,omitempty" bson:"token,omitempty"`
}

type RoomDetails struct {
	TypeName string  `json:"type_name" bson:"type_name"`
	UniqueID string  `json:"unique_id" bson:"unique_id"`
	Price    float64 `json:"price" bson:"price"`
}

type Destination struct {
	City        string `json:"city" bson:"city"`
	CityID      string `json:"city_id" bson:"city_id"`
	CountryName string `json:"country_name" bson:"country_name"`
	CountryCode string `json:"country_code" bson:"country_code"`
}

type CivilDate struct {
	Year  int `json:"year" bson:"year"`
	Month int `json:"month" bson:"month"`
	Day   int `json:"day" bson:"day"`
}

func (d CivilDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d CivilDate) time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

type DateRange struct {
	Start CivilDate `json:"start" bson:"start"`
	End   CivilDate `json:"end" bson:"end"`
}

func (r DateRange) Nights() int {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	nights := int(r.End.time().Sub(r.Start.time()).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

func (r DateRange) String() string {
	return r.Start.String() + " - " + r.End.String()
}

// BookingSummary is the flattened listing row for a booking.
type BookingSummary struct {
	BookingID     BookingID `json:"booking_id"`
	PaymentRef    string    `json:"payment_ref"`
	UserEmail     string    `json:"user_email"`
	HotelName     string    `json:"hotel_name"`
	Destination   string    `json:"destination"`
	BookingDates  string    `json:"booking_dates"`
	Nights        int       `json:"nights"`
	PaymentStatus string    `json:"payment_status"`
	BookingStatus string    `json:"booking_status"`
}

func NewBookingSummary(email string, b *Booking) BookingSummary {
	destination := ""
	if b.RoomSelection.Destination != nil {
		destination = b.RoomSelection.Destination.City
	}
	return BookingSummary{
		BookingID:     b.ID,
		PaymentRef:    b.Payment.Gateway.PaymentRef,
		UserEmail:     email,
		HotelName:     b.RoomSelection.Hotel.Name,
		Destination:   destination,
		BookingDates:  b.RoomSelection.Dates.String(),
		Nights:        b.RoomSelection.Dates.Nights(),
		PaymentStatus: b.Payment.Status.Display(),
		BookingStatus: b.BookingStatusDisplay(),
	}
}
