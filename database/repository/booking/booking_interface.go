package bookingRepo

import (
	"context"
	"errors"
	"time"

	"consultme/models"
)

var (
	// ErrNotFound is returned when no booking matches the lookup.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotTaken is returned when the unique upcoming-cell index rejects a write.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrPaymentAlreadyApplied is returned when a payment session was recorded before.
	ErrPaymentAlreadyApplied = errors.New("payment already applied")
	// ErrPayerMismatch is returned when a payment names a booking made by someone else.
	ErrPayerMismatch = errors.New("payer does not own booking")
)

// BookingRepository is the booking ledger. At most one upcoming booking may
// exist per (consultant, day, time key); writes that would break this return
// ErrSlotTaken.
type BookingRepository interface {
	// Insert stores a new booking.
	Insert(ctx context.Context, booking *models.Booking) error
	// GetByID returns the booking or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// FindUpcomingAt returns the upcoming booking holding a cell, or ErrNotFound.
	FindUpcomingAt(ctx context.Context, consultantID string, day time.Time, timeKey string) (*models.Booking, error)
	// ListOccupying returns the bookings that block cells on day at instant now.
	ListOccupying(ctx context.Context, consultantID string, day time.Time, now time.Time) ([]models.Booking, error)
	// ListByUser returns bookings made by a client, newest date first.
	ListByUser(ctx context.Context, userID, status string) ([]models.Booking, error)
	// ListByConsultant returns bookings made with a consultant, newest date first.
	ListByConsultant(ctx context.Context, consultantID, status string) ([]models.Booking, error)
	// Reschedule moves an upcoming booking to a new cell.
	Reschedule(ctx context.Context, id string, day time.Time, timeLabel, timeKey string, remindBefore int) (*models.Booking, error)
	// AttachCheckoutSession records the payment session opened for a pending booking.
	AttachCheckoutSession(ctx context.Context, id, sessionID string) error
	// MarkFailed cancels a pending booking whose payment could not proceed.
	MarkFailed(ctx context.Context, id string) (*models.Booking, error)
	// Cancel cancels an upcoming booking.
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	// ReleaseExpiredHold cancels one pending booking if its hold has lapsed by now.
	ReleaseExpiredHold(ctx context.Context, id string, now time.Time) (bool, error)
	// ReleaseExpiredHolds cancels every pending booking whose hold has lapsed by now.
	ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, error)
	// ApplyPayment records the payment, marks the booking paid and credits the
	// consultant in a single transaction.
	ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Booking, error)
}
