package models

import "time"

const (
	PaymentEventSucceeded    = "payment_succeeded"
	PaymentEventFailed       = "payment_failed"
	PaymentEventAccountReady = "account_ready"
	PaymentEventIgnored      = "ignored"
)

// Payment records one applied checkout session. SessionID is unique, so a
// replayed event can never be applied twice.
type Payment struct {
	ID           string    `bson:"id" json:"id"`
	SessionID    string    `bson:"payment_id" json:"payment_id"`
	BookingID    string    `bson:"booking_id" json:"booking_id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	ConsultantID string    `bson:"consultant_id" json:"consultant_id"`
	Amount       int64     `bson:"amount" json:"amount"` // minor currency units
	Currency     string    `bson:"currency" json:"currency"`
	Status       string    `bson:"status" json:"status"`
	PaidAt       time.Time `bson:"paid_at" json:"paid_at"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// PaymentEvent is a verified provider event translated into domain terms.
type PaymentEvent struct {
	EventID   string
	Kind      string
	RawType   string
	SessionID string
	BookingID string
	PayerID   string
	Amount    int64
	Currency  string
	AccountID string
	CreatedAt time.Time
}

// CheckoutSessionInput describes the charge for one reservation.
type CheckoutSessionInput struct {
	PayerID     string
	BookingID   string
	Amount      int64
	Currency    string
	Description string
	ExpiresAt   time.Time
}
