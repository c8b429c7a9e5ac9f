// Package events publishes booking lifecycle events to Kafka. The
// publisher is optional: with no producer configured every publish is
// a no-op, so the store works without a broker.
package events

import (
	"context"

	"stayvault/pkg/kafka"
	"stayvault/pkg/logger"
	"stayvault/pkg/model"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingPaymentUpdate = "booking.payment_updated"
	TypeBookingStatusChange  = "booking.status_changed"

	schemaVersion = "1.0"
	source        = "stayvault"
)

// BookingCreated is the payload of a booking.created event.
type BookingCreated struct {
	BookingID   model.BookingID `json:"booking_id"`
	HotelName   string          `json:"hotel_name"`
	Nights      int             `json:"nights"`
	TotalGuests int             `json:"total_guests"`
}

// PaymentUpdated is the payload of a booking.payment_updated event.
type PaymentUpdated struct {
	BookingID  model.BookingID `json:"booking_id"`
	PaymentRef string          `json:"payment_ref"`
	Paid       bool            `json:"paid"`
	RawStatus  string          `json:"raw_status"`
}

// StatusChanged is the payload of a booking.status_changed event.
type StatusChanged struct {
	BookingID model.BookingID             `json:"booking_id"`
	Status    model.ResolvedBookingStatus `json:"status"`
	Message   string                      `json:"message,omitempty"`
}

// Publisher emits booking events. A nil Publisher, or one built with a
// nil producer, drops everything.
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewPublisher(producer *kafka.Producer, log *logger.Logger) *Publisher {
	return &Publisher{producer: producer, log: log}
}

func (p *Publisher) enabled() bool {
	return p != nil && p.producer != nil
}

func (p *Publisher) publish(ctx context.Context, eventType string, key model.BookingID, payload any) {
	if !p.enabled() {
		return
	}
	msg := kafka.NewMessage().
		WithKey(key.Key()).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()
	if err := p.producer.Publish(ctx, msg); err != nil && p.log != nil {
		// Events are best effort; the store mutation already happened.
		p.log.Warn("failed to publish booking event",
			"event_type", eventType, "booking", key.Key(), "error", err)
	}
}

func (p *Publisher) BookingCreated(ctx context.Context, b *model.Booking) {
	if !p.enabled() {
		return
	}
	p.publish(ctx, TypeBookingCreated, b.ID, BookingCreated{
		BookingID:   b.ID,
		HotelName:   b.RoomSelection.Hotel.Name,
		Nights:      b.RoomSelection.Dates.Nights(),
		TotalGuests: b.Guests.TotalGuests(),
	})
}

func (p *Publisher) PaymentUpdated(ctx context.Context, b *model.Booking) {
	if !p.enabled() {
		return
	}
	p.publish(ctx, TypeBookingPaymentUpdate, b.ID, PaymentUpdated{
		BookingID:  b.ID,
		PaymentRef: b.Payment.Gateway.PaymentRef,
		Paid:       b.Payment.Status.IsPaid(),
		RawStatus:  b.Payment.Gateway.Status,
	})
}

func (p *Publisher) StatusChanged(ctx context.Context, b *model.Booking) {
	if !p.enabled() {
		return
	}
	message := ""
	if b.BookRoomStatus != nil {
		message = b.BookRoomStatus.Message
	}
	p.publish(ctx, TypeBookingStatusChange, b.ID, StatusChanged{
		BookingID: b.ID,
		Status:    b.ResolvedStatus(),
		Message:   message,
	})
}

// Close flushes and closes the underlying producer.
func (p *Publisher) Close() error {
	if !p.enabled() {
		return nil
	}
	return p.producer.Close()
}
