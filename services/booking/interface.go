package booking

import (
	"context"
	"time"

	bookingRepo "consultme/database/repository/booking"
	userRepo "consultme/database/repository/user"
	"consultme/models"

	"go.uber.org/zap"
)

// BookingService is the slot availability and booking workflow.
type BookingService interface {
	GetAvailableSlots(ctx context.Context, consultantID, date string) ([]string, error)
	GetAvailability(ctx context.Context, consultantID string) ([]models.WeekdayAvailability, error)
	AddAvailability(ctx context.Context, consultantID string, req models.AvailabilityRequest) ([]models.WeekdayAvailability, error)
	CreateBooking(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.CheckoutResult, error)
	Reschedule(ctx context.Context, userID string, req models.RescheduleRequest) (*models.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, userID, role, listType string) ([]models.Booking, error)
	HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) error
	OnboardingLink(ctx context.Context, consultantID string) (string, error)
	ReleaseExpiredHolds(ctx context.Context) (int64, error)
	DeliverReminder(ctx context.Context, payload models.ReminderPayload) error
}

// PaymentCollaborator is the external payment provider.
type PaymentCollaborator interface {
	// CreateCheckoutSession returns the provider session id and redirect URL.
	CreateCheckoutSession(ctx context.Context, in models.CheckoutSessionInput) (string, string, error)
	// ExpireCheckoutSession closes an open session so it can no longer be paid.
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
	// CreateConnectedAccount provisions a payout account and returns its id.
	CreateConnectedAccount(ctx context.Context, consultant *models.User) (string, error)
	// CreateOnboardingLink returns a hosted onboarding URL for accountID.
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)
}

// Notifier delivers fire-and-forget notifications. Implementations must not
// block the caller on delivery.
type Notifier interface {
	Notify(ctx context.Context, kind string, payload models.NotificationPayload)
}

// ReminderScheduler queues an appointment reminder for delivery at fireAt.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

const (
	DefaultHoldTTL  = 35 * time.Minute
	DefaultCurrency = "usd"
	checkoutLabel   = "Consult Me Payment"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings  bookingRepo.BookingRepository
	Users     userRepo.UserRepository
	Payments  PaymentCollaborator
	Notifier  Notifier
	Reminders ReminderScheduler
	Logger    *zap.Logger

	// HoldTTL is how long a pending booking keeps its cell.
	HoldTTL  time.Duration
	Currency string
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) holdTTL() time.Duration {
	if s.HoldTTL > 0 {
		return s.HoldTTL
	}
	return DefaultHoldTTL
}

func (s *DefaultBookingService) currency() string {
	if s.Currency != "" {
		return s.Currency
	}
	return DefaultCurrency
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

func (s *DefaultBookingService) notify(ctx context.Context, kind string, payload models.NotificationPayload) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, kind, payload)
}
