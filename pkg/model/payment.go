package model

import (
	"fmt"
	"strings"
)

type PaymentDetails struct {
	BookingID BookingID       `json:"booking_id" bson:"booking_id"`
	Status    PaymentStatus   `json:"status" bson:"status"`
	Gateway   GatewayResponse `json:"gateway" bson:"gateway"`
}

func NewPaymentDetails(id BookingID) PaymentDetails {
	return PaymentDetails{
		BookingID: id,
		Status:    Unpaid(""),
	}
}

// GatewayResponse is the last-known raw response from the payment gateway.
type GatewayResponse struct {
	Provider string `json:"provider,omitempty" bson:"provider,omitempty"`
	// PaymentID is the legacy numeric transaction id. Superseded by PaymentRef.
	PaymentID uint64 `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	// PaymentRef is the gateway transaction reference, globally unique across
	// all bookings when present.
	PaymentRef string  `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	Status     string  `json:"status,omitempty" bson:"status,omitempty"`
	Amount     float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Currency   string  `json:"currency,omitempty" bson:"currency,omitempty"`
}

type PaymentState string

const (
	PaymentStatePaid   PaymentState = "paid"
	PaymentStateUnpaid PaymentState = "unpaid"
)

// PaymentStatus is the derived backend view of a payment: Paid carries the
// transaction reference, Unpaid an optional failure reason.
type PaymentStatus struct {
	State     PaymentState `json:"state" bson:"state"`
	Reference string       `json:"reference,omitempty" bson:"reference,omitempty"`
	Reason    string       `json:"reason,omitempty" bson:"reason,omitempty"`
}

func Paid(reference string) PaymentStatus {
	return PaymentStatus{State: PaymentStatePaid, Reference: reference}
}

func Unpaid(reason string) PaymentStatus {
	return PaymentStatus{State: PaymentStateUnpaid, Reason: reason}
}

func (s PaymentStatus) IsPaid() bool {
	return s.State == PaymentStatePaid
}

func (s PaymentStatus) Display() string {
	switch {
	case s.IsPaid():
		return fmt.Sprintf("Payment confirmed (Ref: %s)", s.Reference)
	case s.Reason != "":
		return fmt.Sprintf("Payment failed: %s", s.Reason)
	default:
		return "Awaiting payment"
	}
}

// DerivePaymentStatus maps the gateway's raw status string onto the backend
// payment status. Unrecognized states are treated as unpaid with the raw
// status embedded in the reason.
func DerivePaymentStatus(rawStatus, paymentRef string) PaymentStatus {
	switch rawStatus {
	case "completed", "finished":
		return Paid(paymentRef + " - COMPLETED")
	case "failed", "cancelled", "expired", "refunded":
		return Unpaid(paymentRef + " - " + strings.ToUpper(rawStatus))
	default:
		return Unpaid(paymentRef + " - " + strings.ToUpper(rawStatus))
	}
}
