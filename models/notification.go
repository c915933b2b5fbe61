package models

import "time"

const (
	NotifyBookingPaid        = "booking_paid"
	NotifyBookingFailed      = "booking_failed"
	NotifyBookingRescheduled = "booking_rescheduled"
	NotifyBookingCancelled   = "booking_cancelled"
	NotifyBookingReminder    = "booking_reminder"
	NotifyPaymentUnmatched   = "booking_payment_unmatched"
)

// NotificationPayload is what the booking workflow hands to the notifier.
type NotificationPayload struct {
	Recipients []string          `json:"recipients"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
}

// Notification is an in-app message kept for a limited time.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"user_id" json:"user_id"`
	Kind      string            `bson:"kind" json:"kind"`
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}

// BookingEvent is the record published to the booking event stream.
type BookingEvent struct {
	Kind       string            `json:"kind"`
	Recipients []string          `json:"recipients"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
