package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "consultme/database/repository/booking"
	userRepo "consultme/database/repository/user"
	"consultme/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandlePaymentEvent reconciles the ledger with a verified provider event.
// A returned error means the event should be redelivered.
func (s *DefaultBookingService) HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) error {
	log := s.logger().With(zap.String("eventID", evt.EventID), zap.String("eventType", evt.RawType))

	switch evt.Kind {
	case models.PaymentEventSucceeded:
		return s.applySucceeded(ctx, log, evt)
	case models.PaymentEventFailed:
		return s.applyFailed(ctx, log, evt)
	case models.PaymentEventAccountReady:
		if err := s.Users.MarkOnboarded(ctx, evt.AccountID); err != nil {
			if errors.Is(err, userRepo.ErrNotFound) {
				log.Warn("No consultant for payout account", zap.String("accountID", evt.AccountID))
				return nil
			}
			return internal(err)
		}
		log.Info("Payout account ready", zap.String("accountID", evt.AccountID))
		return nil
	default:
		log.Info("Unhandled payment event")
		return nil
	}
}

func (s *DefaultBookingService) applySucceeded(ctx context.Context, log *zap.Logger, evt models.PaymentEvent) error {
	if evt.BookingID == "" || evt.SessionID == "" {
		log.Warn("Payment event without booking reference", zap.String("sessionID", evt.SessionID))
		return nil
	}
	paidAt := evt.CreatedAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	payment := &models.Payment{
		ID:        uuid.New().String(),
		SessionID: evt.SessionID,
		BookingID: evt.BookingID,
		UserID:    evt.PayerID,
		Amount:    evt.Amount,
		Currency:  evt.Currency,
		Status:    "succeeded",
		PaidAt:    paidAt,
		CreatedAt: s.now(),
	}

	booking, err := s.Bookings.ApplyPayment(ctx, payment)
	switch {
	case errors.Is(err, bookingRepo.ErrPaymentAlreadyApplied):
		log.Info("Payment already applied", zap.String("sessionID", evt.SessionID))
		return nil
	case errors.Is(err, bookingRepo.ErrNotFound), errors.Is(err, bookingRepo.ErrPayerMismatch):
		log.Warn("Payment does not match a booking",
			zap.String("sessionID", evt.SessionID), zap.String("bookingID", evt.BookingID), zap.Error(err))
		return nil
	case err != nil:
		log.Error("Failed to apply payment", zap.String("sessionID", evt.SessionID), zap.Error(err))
		return internal(err)
	}

	log.Info("Payment applied",
		zap.String("bookingID", booking.ID),
		zap.String("consultantID", booking.ConsultantID),
		zap.Int64("amount", evt.Amount))

	if booking.Status != models.BookingStatusUpcoming {
		log.Warn("Payment received for a released booking", zap.String("bookingID", booking.ID))
		s.notify(ctx, models.NotifyPaymentUnmatched, models.NotificationPayload{
			Recipients: []string{booking.UserID},
			Title:      "Payment received for a released booking",
			Body:       "Your payment arrived after the slot on " + DateKey(booking.Date) + " at " + booking.Time + " was released. Support will arrange a refund.",
			Data:       bookingData(booking),
		})
		return nil
	}

	s.ensurePayoutAccount(ctx, log, booking.ConsultantID)
	s.scheduleReminder(ctx, booking)
	s.notify(ctx, models.NotifyBookingPaid, models.NotificationPayload{
		Recipients: []string{booking.UserID, booking.ConsultantID},
		Title:      "Booking confirmed",
		Body:       "Your appointment on " + DateKey(booking.Date) + " at " + booking.Time + " is confirmed.",
		Data:       bookingData(booking),
	})
	return nil
}

func (s *DefaultBookingService) applyFailed(ctx context.Context, log *zap.Logger, evt models.PaymentEvent) error {
	if evt.BookingID == "" {
		log.Warn("Payment failure without booking reference", zap.String("sessionID", evt.SessionID))
		return nil
	}
	booking, err := s.Bookings.MarkFailed(ctx, evt.BookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		log.Info("Payment failure for a booking that is no longer pending", zap.String("bookingID", evt.BookingID))
		return nil
	}
	if err != nil {
		return internal(err)
	}

	log.Info("Booking payment failed", zap.String("bookingID", booking.ID))
	s.notify(ctx, models.NotifyBookingFailed, models.NotificationPayload{
		Recipients: []string{booking.UserID},
		Title:      "Payment not completed",
		Body:       "Your reservation for " + DateKey(booking.Date) + " at " + booking.Time + " was released.",
		Data:       bookingData(booking),
	})
	return nil
}

// ensurePayoutAccount provisions a payout account on the consultant's first
// payment. Failures are logged; the next payment retries.
func (s *DefaultBookingService) ensurePayoutAccount(ctx context.Context, log *zap.Logger, consultantID string) {
	consultant, err := s.Users.GetByID(ctx, consultantID)
	if err != nil {
		log.Error("Failed to load consultant for payout account", zap.String("consultantID", consultantID), zap.Error(err))
		return
	}
	if consultant.StripeAccountID != "" || consultant.Email == "" {
		return
	}
	if _, err := s.provisionPayoutAccount(ctx, consultant); err != nil {
		log.Error("Failed to provision payout account", zap.String("consultantID", consultantID), zap.Error(err))
	}
}

func (s *DefaultBookingService) provisionPayoutAccount(ctx context.Context, consultant *models.User) (string, error) {
	accountID, err := s.Payments.CreateConnectedAccount(ctx, consultant)
	if err != nil {
		return "", err
	}
	if err := s.Users.SetStripeAccount(ctx, consultant.ID, accountID); err != nil {
		return "", err
	}
	s.logger().Info("Payout account created",
		zap.String("consultantID", consultant.ID), zap.String("accountID", accountID))
	return accountID, nil
}

// OnboardingLink returns the hosted onboarding URL for the consultant's
// payout account, creating the account when needed.
func (s *DefaultBookingService) OnboardingLink(ctx context.Context, consultantID string) (string, error) {
	consultant, err := s.loadConsultant(ctx, consultantID)
	if err != nil {
		return "", err
	}
	accountID := consultant.StripeAccountID
	if accountID == "" {
		if consultant.Email == "" {
			return "", ErrPayoutAccountMissing
		}
		if accountID, err = s.provisionPayoutAccount(ctx, consultant); err != nil {
			s.logger().Error("Failed to provision payout account", zap.String("consultantID", consultantID), zap.Error(err))
			return "", ErrPaymentAccount.wrap(err)
		}
	}
	url, err := s.Payments.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		s.logger().Error("Failed to create onboarding link", zap.String("accountID", accountID), zap.Error(err))
		return "", ErrPaymentAccount.wrap(err)
	}
	return url, nil
}

func bookingData(b *models.Booking) map[string]string {
	return map[string]string{
		"booking_id":    b.ID,
		"consultant_id": b.ConsultantID,
		"date":          DateKey(b.Date),
		"time":          b.Time,
	}
}

// scheduleReminder queues the reminder for a paid booking; failures are logged.
func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b *models.Booking) {
	if s.Reminders == nil || b.PaymentStatus != models.PaymentStatusPaid {
		return
	}
	start, err := appointmentStart(b.Date, b.TimeKey)
	if err != nil {
		s.logger().Warn("Cannot compute appointment start", zap.String("bookingID", b.ID), zap.Error(err))
		return
	}
	fireAt := start.Add(-time.Duration(b.RemindBefore) * time.Minute)
	payload := models.ReminderPayload{
		BookingID:    b.ID,
		UserID:       b.UserID,
		ConsultantID: b.ConsultantID,
		Date:         DateKey(b.Date),
		Time:         b.TimeKey,
		RemindBefore: b.RemindBefore,
	}
	if err := s.Reminders.ScheduleReminder(ctx, payload, fireAt); err != nil {
		s.logger().Error("Failed to schedule reminder", zap.String("bookingID", b.ID), zap.Error(err))
	}
}
