package events

import (
	"context"
	"testing"

	"stayvault/pkg/model"
)

func TestPublisher_NilSafe(t *testing.T) {
	b := &model.Booking{ID: model.NewBookingID("APP-1", "ada@example.com")}
	ctx := context.Background()

	// A publisher without a producer must drop everything silently.
	p := NewPublisher(nil, nil)
	p.BookingCreated(ctx, b)
	p.PaymentUpdated(ctx, b)
	p.StatusChanged(ctx, b)
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// So must a nil publisher value.
	var nilPub *Publisher
	nilPub.BookingCreated(ctx, b)
	nilPub.PaymentUpdated(ctx, b)
	nilPub.StatusChanged(ctx, b)
	if err := nilPub.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}
