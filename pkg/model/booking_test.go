package model

import (
	"strings"
	"testing"
)

func testGuests() GuestDetails {
	return GuestDetails{
		Adults: []AdultDetail{
			{FirstName: "Dana", LastName: "Levi", Email: "dana@example.com", Phone: "+972501234567"},
		},
	}
}

func testSelection() HotelRoomDetails {
	return HotelRoomDetails{
		Hotel: HotelDetails{Name: "Seaside Palace", Code: "SP001"},
		Dates: DateRange{
			Start: CivilDate{Year: 2026, Month: 3, Day: 1},
			End:   CivilDate{Year: 2026, Month: 3, Day: 5},
		},
		Destination:     &Destination{City: "Haifa", CountryName: "Israel", CountryCode: "IL", CityID: "HFA"},
		Rooms:           []RoomDetails{{TypeName: "Deluxe", UniqueID: "D001", Price: 180}},
		RequestedAmount: 720,
	}
}

func TestNewBooking(t *testing.T) {
	id := NewBookingID("APP001", "dana@example.com")

	booking, err := NewBooking(id, testGuests(), testSelection())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ResolvedStatus() != StatusUnknown {
		t.Errorf("fresh booking status = %s, want %s", booking.ResolvedStatus(), StatusUnknown)
	}
	if booking.Payment.Status.IsPaid() {
		t.Error("fresh booking must start unpaid")
	}
}

func TestNewBooking_RequiresAdult(t *testing.T) {
	id := NewBookingID("APP001", "dana@example.com")

	_, err := NewBooking(id, GuestDetails{}, testSelection())
	if err == nil {
		t.Fatal("expected error for empty guest list")
	}
	if !strings.Contains(err.Error(), "adult") {
		t.Errorf("error %q should mention the missing adult", err)
	}
}

func TestGuestDetails_Validate(t *testing.T) {
	tests := []struct {
		name    string
		guests  GuestDetails
		wantErr bool
	}{
		{"valid single adult", testGuests(), false},
		{"no adults", GuestDetails{}, true},
		{
			"primary adult missing contact",
			GuestDetails{Adults: []AdultDetail{{FirstName: "Dana"}}},
			true,
		},
		{
			"child too old",
			GuestDetails{
				Adults:   testGuests().Adults,
				Children: []ChildDetail{{FirstName: "Noa", Age: 18}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guests.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBooking_UpdateBookRoomStatus(t *testing.T) {
	id := NewBookingID("APP001", "dana@example.com")
	booking, err := NewBooking(id, testGuests(), testSelection())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hold := BookRoomResponse{
		Status:        "Success",
		CommitBooking: BookingDetails{BookingID: id, ResolvedStatus: StatusOnHold, BookingStatus: "OnHold"},
	}
	if err := booking.UpdateBookRoomStatus(hold); err != nil {
		t.Fatalf("Unknown -> OnHold rejected: %v", err)
	}

	cancelled := BookRoomResponse{
		Status:        "Success",
		CommitBooking: BookingDetails{BookingID: id, ResolvedStatus: StatusCancelled, BookingStatus: "Cancelled"},
	}
	if err := booking.UpdateBookRoomStatus(cancelled); err != nil {
		t.Fatalf("OnHold -> Cancelled rejected: %v", err)
	}

	confirmed := BookRoomResponse{
		Status:        "Success",
		CommitBooking: BookingDetails{BookingID: id, ResolvedStatus: StatusConfirmed, BookingStatus: "Confirmed"},
	}
	err = booking.UpdateBookRoomStatus(confirmed)
	if err == nil {
		t.Fatal("Cancelled -> Confirmed must be rejected")
	}
	if !strings.Contains(err.Error(), string(StatusCancelled)) || !strings.Contains(err.Error(), string(StatusConfirmed)) {
		t.Errorf("error %q should name the rejected (from, to) pair", err)
	}
	if booking.ResolvedStatus() != StatusCancelled {
		t.Errorf("status after rejected transition = %s, want %s", booking.ResolvedStatus(), StatusCancelled)
	}
}

func TestBooking_AnnotateStatusMessage(t *testing.T) {
	id := NewBookingID("APP001", "dana@example.com")
	booking, _ := NewBooking(id, testGuests(), testSelection())

	if err := booking.AnnotateStatusMessage("please hurry"); err == nil {
		t.Fatal("expected error when no book room status recorded")
	}

	_ = booking.UpdateBookRoomStatus(BookRoomResponse{
		CommitBooking: BookingDetails{BookingID: id, ResolvedStatus: StatusOnHold},
	})
	if err := booking.AnnotateStatusMessage("please hurry"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.BookRoomStatus.Message != "[client] please hurry" {
		t.Errorf("message = %q", booking.BookRoomStatus.Message)
	}
}

func TestBookingID_Key(t *testing.T) {
	id := NewBookingID("APP001", "dana@example.com")
	key := id.Key()

	parsed, err := ParseBookingKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != id {
		t.Errorf("round-trip = %v, want %v", parsed, id)
	}

	if _, err := ParseBookingKey("no-separator"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestDateRange_Nights(t *testing.T) {
	r := DateRange{
		Start: CivilDate{Year: 2026, Month: 3, Day: 1},
		End:   CivilDate{Year: 2026, Month: 3, Day: 5},
	}
	if got := r.Nights(); got != 4 {
		t.Errorf("Nights() = %d, want 4", got)
	}

	var zero DateRange
	if got := zero.Nights(); got != 0 {
		t.Errorf("zero range Nights() = %d, want 0", got)
	}

	inverted := DateRange{Start: r.End, End: r.Start}
	if got := inverted.Nights(); got != 0 {
		t.Errorf("inverted range Nights() = %d, want 0", got)
	}
}
