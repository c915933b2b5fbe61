package models

import "time"

const (
	BookingStatusUpcoming  = "upcoming"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Booking is one ledger entry: a client's appointment with a consultant at a
// (date, time) cell.
type Booking struct {
	ID                string     `bson:"id" json:"id"`
	UserID            string     `bson:"user_id" json:"user_id"`
	ConsultantID      string     `bson:"consultant_id" json:"consultant_id"`
	Date              time.Time  `bson:"date" json:"date"` // 00:00 UTC of the booked day
	Time              string     `bson:"time" json:"time"`
	TimeKey           string     `bson:"time_key" json:"-"` // normalized Time, part of the cell key
	RemindBefore      int        `bson:"remind_before" json:"remind_before"`
	Status            string     `bson:"status" json:"status"`
	PaymentStatus     string     `bson:"payment_status" json:"payment_status"`
	TransactionID     string     `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	CheckoutSessionID string     `bson:"checkout_session_id,omitempty" json:"-"` // open payment session while pending
	Amount            int64      `bson:"amount" json:"amount"`                   // minor currency units
	Currency          string     `bson:"currency" json:"currency"`
	HoldExpiresAt     *time.Time `bson:"hold_expires_at,omitempty" json:"hold_expires_at,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

// Occupies reports whether the booking blocks its cell at instant now.
// Paid upcoming bookings always do; pending ones only until the hold lapses.
func (b *Booking) Occupies(now time.Time) bool {
	if b.Status != BookingStatusUpcoming {
		return false
	}
	switch b.PaymentStatus {
	case PaymentStatusPaid:
		return true
	case PaymentStatusPending:
		return b.HoldExpiresAt != nil && b.HoldExpiresAt.After(now)
	}
	return false
}

// HoldExpired reports whether a pending booking's reservation has lapsed.
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.Status == BookingStatusUpcoming &&
		b.PaymentStatus == PaymentStatusPending &&
		b.HoldExpiresAt != nil && !b.HoldExpiresAt.After(now)
}

// CreateBookingRequest is the client input for reserving a slot.
type CreateBookingRequest struct {
	ConsultantID string `json:"consultant_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	RemindBefore int    `json:"remind_before"`
}

// RescheduleRequest moves an existing booking to a new cell.
type RescheduleRequest struct {
	BookingID    string `json:"booking_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	RemindBefore int    `json:"remind_before"`
}

// CancelBookingRequest identifies the booking to cancel.
type CancelBookingRequest struct {
	BookingID string `json:"booking_id"`
}

// AvailabilityRequest registers one (day, time) pair for the calling consultant.
type AvailabilityRequest struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// CheckoutResult is returned after a reservation has been handed to the payment provider.
type CheckoutResult struct {
	BookingID   string `json:"booking_id"`
	CheckoutURL string `json:"checkout_url"`
}
