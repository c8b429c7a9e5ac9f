package migration

import (
	"fmt"
	"strconv"

	"stayvault/internal/state"
)

// PaymentRefVersion introduced string payment references alongside the
// legacy numeric transaction ids.
const PaymentRefVersion uint64 = 1001

// PaymentRefBackfill copies each booking's legacy numeric payment id
// into the string reference field and builds the payment reference
// index over the result. Bookings that already carry a reference are
// left alone.
type PaymentRefBackfill struct{}

func (PaymentRefBackfill) Version() uint64 { return PaymentRefVersion }

func (PaymentRefBackfill) Description() string {
	return "backfill string payment references from legacy numeric ids and build the payment reference index"
}

func (PaymentRefBackfill) Up(c *state.Container) error {
	for _, u := range c.Users {
		for _, b := range u.Bookings {
			gw := &b.Payment.Gateway
			if gw.PaymentRef == "" && gw.PaymentID != 0 {
				gw.PaymentRef = strconv.FormatUint(gw.PaymentID, 10)
			}
		}
	}
	// Payment updates recorded before this migration may have already
	// materialized the index, so rebuild from scratch rather than only
	// when absent.
	if _, err := c.ReindexPayments(); err != nil {
		return err
	}
	return nil
}

func (PaymentRefBackfill) Down(c *state.Container) error {
	for _, u := range c.Users {
		for _, b := range u.Bookings {
			gw := &b.Payment.Gateway
			// Only undo references we synthesized; hand-entered ones stay.
			if gw.PaymentID != 0 && gw.PaymentRef == strconv.FormatUint(gw.PaymentID, 10) {
				gw.PaymentRef = ""
			}
		}
	}
	c.PaymentRefIndex = nil
	return nil
}

func (PaymentRefBackfill) Validate(c *state.Container) error {
	for email, u := range c.Users {
		for ref, b := range u.Bookings {
			gw := b.Payment.Gateway
			if gw.PaymentID != 0 {
				want := strconv.FormatUint(gw.PaymentID, 10)
				if gw.PaymentRef == "" {
					return fmt.Errorf("booking %s/%s still has numeric payment id %d without a reference", email, ref, gw.PaymentID)
				}
				if gw.PaymentRef != want {
					return fmt.Errorf("booking %s/%s has payment reference %s that disagrees with numeric payment id %d", email, ref, gw.PaymentRef, gw.PaymentID)
				}
			}
			if gw.PaymentRef != "" {
				if owner, ok := c.BookingIDByPaymentRef(gw.PaymentRef); !ok || owner != b.ID {
					return fmt.Errorf("payment reference %s for booking %s/%s missing from index", gw.PaymentRef, email, ref)
				}
			}
		}
	}
	return nil
}
