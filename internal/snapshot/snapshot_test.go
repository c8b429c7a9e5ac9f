package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"stayvault/internal/state"
	"stayvault/pkg/errors"
	"stayvault/pkg/model"
)

func sampleContainer(t *testing.T) *state.Container {
	t.Helper()
	c := state.NewContainer()
	guests := model.GuestDetails{
		Adults: []model.AdultDetail{
			{FirstName: "Ada", Email: "ada@example.com", Phone: "+41791234567"},
		},
	}
	b, err := model.NewBooking(
		model.NewBookingID("APP-1", "ada@example.com"),
		guests,
		model.HotelRoomDetails{Hotel: model.HotelDetails{Name: "Grand Hotel"}},
	)
	if err != nil {
		t.Fatalf("NewBooking() error = %v", err)
	}
	if err := c.AddBooking(b); err != nil {
		t.Fatalf("AddBooking() error = %v", err)
	}
	if _, err := c.UpdatePaymentDetails(b.ID, model.PaymentDetails{
		BookingID: b.ID,
		Gateway:   model.GatewayResponse{PaymentRef: "PAY-1", Status: "completed"},
	}); err != nil {
		t.Fatalf("UpdatePaymentDetails() error = %v", err)
	}
	if err := c.AddOperator("ops@example.com"); err != nil {
		t.Fatalf("AddOperator() error = %v", err)
	}
	return c
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snapshot")
	original := sampleContainer(t)

	if err := Save(path, original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	restored, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	id := model.NewBookingID("APP-1", "ada@example.com")
	b, err := restored.Booking(id)
	if err != nil {
		t.Fatalf("Booking() after restore error = %v", err)
	}
	if !b.Payment.Status.IsPaid() {
		t.Errorf("restored payment status = %+v, want paid", b.Payment.Status)
	}
	if got, ok := restored.BookingIDByPaymentRef("PAY-1"); !ok || got != id {
		t.Errorf("restored BookingIDByPaymentRef() = %v, %v", got, ok)
	}
	if !restored.IsOperator("ops@example.com") {
		t.Error("operator allow-list lost in round trip")
	}
	if v, _ := restored.SchemaVersionInfo(); v != model.BaseSchemaVersion {
		t.Errorf("restored schema version = %d, want %d", v, model.BaseSchemaVersion)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.snapshot"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	users, bookings, _ := c.Counts()
	if users != 0 || bookings != 0 {
		t.Errorf("fresh container not empty: users=%d bookings=%d", users, bookings)
	}
	if v, _ := c.SchemaVersionInfo(); v != model.BaseSchemaVersion {
		t.Errorf("fresh schema version = %d, want %d", v, model.BaseSchemaVersion)
	}
}

func TestLoad_CorruptFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snapshot")
	if err := os.WriteFile(path, []byte("not bson at all"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for corrupt file")
	}
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.CodeFatalState {
		t.Errorf("Load() error = %v, want code %s", err, errors.CodeFatalState)
	}
}

func TestLoad_NormalizesLegacySnapshot(t *testing.T) {
	// A snapshot written before schema tracking: no schema section.
	legacy := struct {
		Users map[string]*state.UserRecord `bson:"users"`
	}{Users: map[string]*state.UserRecord{"ada@example.com": {}}}

	data, err := bson.Marshal(legacy)
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "state.snapshot")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v, _ := c.SchemaVersionInfo(); v != model.BaseSchemaVersion {
		t.Errorf("legacy schema version = %d, want %d", v, model.BaseSchemaVersion)
	}
	if c.Users["ada@example.com"].Bookings == nil {
		t.Error("nil bookings map not repaired for legacy user")
	}
}

func TestSave_OverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snapshot")
	if err := Save(path, sampleContainer(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := Save(path, state.NewContainer()); err != nil {
		t.Fatalf("Save() second write error = %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	users, _, _ := c.Counts()
	if users != 0 {
		t.Errorf("second snapshot not visible: users = %d", users)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
