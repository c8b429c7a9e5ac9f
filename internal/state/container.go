package state

import (
	"fmt"
	"sort"

	"stayvault/pkg/model"
)

// UserRecord groups everything stored for a single guest account.
// Bookings are keyed by app reference; the owning email lives on the
// container map key and inside each BookingID.
type UserRecord struct {
	Contact  model.AdultDetail         `bson:"contact" json:"contact"`
	Bookings map[string]*model.Booking `bson:"bookings" json:"bookings"`
}

// SortedReferences returns the user's booking app references in
// lexicographic order, for deterministic listings.
func (u *UserRecord) SortedReferences() []string {
	refs := make([]string, 0, len(u.Bookings))
	for ref := range u.Bookings {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// NotificationLedger tracks which bookings have had their confirmation
// notification sent. Flags are set-once: recording a flag for a booking
// that already has one is an error.
type NotificationLedger struct {
	Sent map[string]bool `bson:"sent" json:"sent"`
}

// Container is the root aggregate of all persisted data. It is not
// safe for concurrent use; access goes through Store.
type Container struct {
	Users           map[string]*UserRecord     `bson:"users" json:"users"`
	Notifications   *NotificationLedger        `bson:"notifications,omitempty" json:"notifications,omitempty"`
	Operators       []string                   `bson:"operators,omitempty" json:"operators,omitempty"`
	PaymentRefIndex map[string]model.BookingID `bson:"payment_ref_index,omitempty" json:"payment_ref_index,omitempty"`
	Schema          model.SchemaMetadata       `bson:"schema" json:"schema"`
}

// NewContainer returns an empty container at the base schema version.
// Optional sections (notifications, operators, payment index) stay nil
// until first use so that snapshots of fresh containers match snapshots
// restored from older data.
func NewContainer() *Container {
	return &Container{
		Users:  make(map[string]*UserRecord),
		Schema: model.NewSchemaMetadata(),
	}
}

func (c *Container) user(email string) (*UserRecord, error) {
	u, ok := c.Users[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return u, nil
}

func (c *Container) ensureUser(email string) *UserRecord {
	if c.Users == nil {
		c.Users = make(map[string]*UserRecord)
	}
	u, ok := c.Users[email]
	if !ok {
		u = &UserRecord{Bookings: make(map[string]*model.Booking)}
		c.Users[email] = u
	}
	if u.Bookings == nil {
		u.Bookings = make(map[string]*model.Booking)
	}
	return u
}

func (c *Container) booking(id model.BookingID) (*model.Booking, error) {
	u, ok := c.Users[id.Email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id.Key())
	}
	b, ok := u.Bookings[id.AppReference]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id.Key())
	}
	return b, nil
}

// AddBooking stores a new booking under its owning email. The booking
// must validate and must not collide with an existing app reference for
// the same user.
func (c *Container) AddBooking(booking *model.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}
	if err := booking.Validate(); err != nil {
		return err
	}
	u := c.ensureUser(booking.ID.Email)
	if _, exists := u.Bookings[booking.ID.AppReference]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBooking, booking.ID.AppReference)
	}
	if ref := booking.Payment.Gateway.PaymentRef; ref != "" && c.PaymentRefIndex != nil {
		if owner, taken := c.PaymentRefIndex[ref]; taken && owner != booking.ID {
			return fmt.Errorf("%w: %s", ErrDuplicatePaymentRef, ref)
		}
		c.PaymentRefIndex[ref] = booking.ID
	}
	u.Bookings[booking.ID.AppReference] = booking
	return nil
}

// Booking returns the booking for the given identity, or
// ErrBookingNotFound.
func (c *Container) Booking(id model.BookingID) (*model.Booking, error) {
	return c.booking(id)
}

// UserBookings returns all bookings for one email, ordered by app
// reference.
func (c *Container) UserBookings(email string) ([]*model.Booking, error) {
	u, err := c.user(email)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Booking, 0, len(u.Bookings))
	for _, ref := range u.SortedReferences() {
		out = append(out, u.Bookings[ref])
	}
	return out, nil
}

// UserContact returns the stored primary contact for an email.
func (c *Container) UserContact(email string) (model.AdultDetail, error) {
	u, err := c.user(email)
	if err != nil {
		return model.AdultDetail{}, err
	}
	return u.Contact, nil
}

// SetUserContact upserts the primary contact for an email.
func (c *Container) SetUserContact(email string, contact model.AdultDetail) {
	c.ensureUser(email).Contact = contact
}

// AllBookingSummaries flattens every stored booking into summaries,
// ordered by email then app reference.
func (c *Container) AllBookingSummaries() []model.BookingSummary {
	emails := c.sortedEmails()
	var out []model.BookingSummary
	for _, email := range emails {
		u := c.Users[email]
		for _, ref := range u.SortedReferences() {
			out = append(out, model.NewBookingSummary(email, u.Bookings[ref]))
		}
	}
	return out
}

func (c *Container) sortedEmails() []string {
	emails := make([]string, 0, len(c.Users))
	for email := range c.Users {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}

// BookingIDByPaymentRef resolves a payment reference through the
// secondary index. It reports false when the index has never been built
// or the reference is unknown.
func (c *Container) BookingIDByPaymentRef(ref string) (model.BookingID, bool) {
	if c.PaymentRefIndex == nil {
		return model.BookingID{}, false
	}
	id, ok := c.PaymentRefIndex[ref]
	return id, ok
}

// UpdatePaymentDetails records a gateway response against a booking and
// keeps the payment reference index consistent. Empty references are
// rejected, and a reference already owned by a different booking is
// rejected before any state changes.
func (c *Container) UpdatePaymentDetails(id model.BookingID, details model.PaymentDetails) (*model.Booking, error) {
	b, err := c.booking(id)
	if err != nil {
		return nil, err
	}
	newRef := details.Gateway.PaymentRef
	if newRef == "" {
		return nil, ErrEmptyPaymentRef
	}
	if c.PaymentRefIndex != nil {
		if owner, taken := c.PaymentRefIndex[newRef]; taken && owner != id {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePaymentRef, newRef)
		}
	} else {
		c.PaymentRefIndex = make(map[string]model.BookingID)
	}
	if oldRef := b.Payment.Gateway.PaymentRef; oldRef != "" && oldRef != newRef {
		delete(c.PaymentRefIndex, oldRef)
	}
	c.PaymentRefIndex[newRef] = id
	b.ApplyPaymentDetails(details)
	return b, nil
}

// UpdateBookRoomStatus applies a provider response to a booking,
// enforcing the status transition rules.
func (c *Container) UpdateBookRoomStatus(id model.BookingID, response model.BookRoomResponse) (*model.Booking, error) {
	b, err := c.booking(id)
	if err != nil {
		return nil, err
	}
	if err := b.UpdateBookRoomStatus(response); err != nil {
		return nil, err
	}
	return b, nil
}

// AnnotateBookingMessage appends a client-supplied note to the
// booking's status message.
func (c *Container) AnnotateBookingMessage(id model.BookingID, message string) (*model.Booking, error) {
	b, err := c.booking(id)
	if err != nil {
		return nil, err
	}
	if err := b.AnnotateStatusMessage(message); err != nil {
		return nil, err
	}
	return b, nil
}

// RebuildPaymentRefIndex populates the payment reference index from
// stored bookings. It is a no-op when the index already holds entries,
// so repeated startup calls cannot clobber live data. Returns the
// number of entries inserted.
func (c *Container) RebuildPaymentRefIndex() int {
	if len(c.PaymentRefIndex) > 0 {
		return 0
	}
	if c.PaymentRefIndex == nil {
		c.PaymentRefIndex = make(map[string]model.BookingID)
	}
	inserted := 0
	for _, email := range c.sortedEmails() {
		u := c.Users[email]
		for _, ref := range u.SortedReferences() {
			b := u.Bookings[ref]
			if payRef := b.Payment.Gateway.PaymentRef; payRef != "" {
				c.PaymentRefIndex[payRef] = b.ID
				inserted++
			}
		}
	}
	return inserted
}

// ReindexPayments discards the current payment reference index and
// rebuilds it from bookings. Unlike RebuildPaymentRefIndex it always
// runs, and it fails if two bookings claim the same reference, leaving
// the old index untouched in that case.
func (c *Container) ReindexPayments() (int, error) {
	fresh := make(map[string]model.BookingID)
	for _, email := range c.sortedEmails() {
		u := c.Users[email]
		for _, ref := range u.SortedReferences() {
			b := u.Bookings[ref]
			payRef := b.Payment.Gateway.PaymentRef
			if payRef == "" {
				continue
			}
			if owner, taken := fresh[payRef]; taken && owner != b.ID {
				return 0, fmt.Errorf("%w: %s", ErrDuplicatePaymentRef, payRef)
			}
			fresh[payRef] = b.ID
		}
	}
	c.PaymentRefIndex = fresh
	return len(fresh), nil
}

// RecordNotification stores the notification flag for a booking.
// The flag is set-once: a second record for the same booking fails.
func (c *Container) RecordNotification(id model.BookingID, sent bool) error {
	if _, err := c.booking(id); err != nil {
		return err
	}
	if c.Notifications == nil {
		c.Notifications = &NotificationLedger{Sent: make(map[string]bool)}
	}
	if c.Notifications.Sent == nil {
		c.Notifications.Sent = make(map[string]bool)
	}
	key := id.Key()
	if _, exists := c.Notifications.Sent[key]; exists {
		return fmt.Errorf("%w: %s", ErrNotificationRecorded, key)
	}
	c.Notifications.Sent[key] = sent
	return nil
}

// NotificationSent reports the flag for a booking, materializing a
// false entry on first read so later reads are stable.
func (c *Container) NotificationSent(id model.BookingID) (bool, error) {
	if _, err := c.booking(id); err != nil {
		return false, err
	}
	if c.Notifications == nil {
		c.Notifications = &NotificationLedger{Sent: make(map[string]bool)}
	}
	if c.Notifications.Sent == nil {
		c.Notifications.Sent = make(map[string]bool)
	}
	key := id.Key()
	sent, ok := c.Notifications.Sent[key]
	if !ok {
		c.Notifications.Sent[key] = false
		return false, nil
	}
	return sent, nil
}

// OperatorList returns a copy of the operator allow-list in stored
// order.
func (c *Container) OperatorList() []string {
	out := make([]string, len(c.Operators))
	copy(out, c.Operators)
	return out
}

// IsOperator reports whether the identity appears on the allow-list.
func (c *Container) IsOperator(identity string) bool {
	for _, op := range c.Operators {
		if op == identity {
			return true
		}
	}
	return false
}

// AddOperator appends an identity to the allow-list. Empty identities
// and duplicates are rejected.
func (c *Container) AddOperator(identity string) error {
	if identity == "" {
		return fmt.Errorf("operator identity cannot be empty")
	}
	if c.IsOperator(identity) {
		return fmt.Errorf("%w: %s", ErrOperatorExists, identity)
	}
	c.Operators = append(c.Operators, identity)
	return nil
}

// RemoveOperator deletes an identity from the allow-list.
func (c *Container) RemoveOperator(identity string) error {
	for i, op := range c.Operators {
		if op == identity {
			c.Operators = append(c.Operators[:i], c.Operators[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrOperatorNotFound, identity)
}

// SchemaVersionInfo returns the current schema version and the
// description of the migration that produced it.
func (c *Container) SchemaVersionInfo() (uint64, string) {
	return c.Schema.CurrentVersion, c.Schema.DescriptionOfCurrent()
}

// Counts returns coarse sizing stats used by health and admin
// endpoints.
func (c *Container) Counts() (users, bookings, indexed int) {
	users = len(c.Users)
	for _, u := range c.Users {
		bookings += len(u.Bookings)
	}
	indexed = len(c.PaymentRefIndex)
	return
}
