package booking

import (
	"context"
	"errors"
	"strconv"

	bookingRepo "consultme/database/repository/booking"
	"consultme/models"

	"go.uber.org/zap"
)

// Reschedule moves the caller's upcoming booking to a new cell. The new time
// must be offered on the new weekday and the cell must be free.
func (s *DefaultBookingService) Reschedule(ctx context.Context, userID string, req models.RescheduleRequest) (*models.Booking, error) {
	remind := ""
	if req.RemindBefore != 0 {
		remind = strconv.Itoa(req.RemindBefore)
	}
	if err := requireFields("booking_id", req.BookingID, "date", req.Date, "time", req.Time, "remind_before", remind); err != nil {
		return nil, err
	}
	day, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	timeKey, err := NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}
	if err := validReminder(req.RemindBefore); err != nil {
		return nil, err
	}

	current, err := s.ownedUpcoming(ctx, userID, req.BookingID)
	if err != nil {
		return nil, err
	}
	consultant, err := s.loadConsultant(ctx, current.ConsultantID)
	if err != nil {
		return nil, err
	}
	if err := requireOffered(consultant, WeekdayOf(day), timeKey); err != nil {
		return nil, err
	}

	var updated *models.Booking
	err = s.claimCell(ctx, current.ConsultantID, day, timeKey, func() error {
		b, err := s.Bookings.Reschedule(ctx, current.ID, day, timeKey, timeKey, req.RemindBefore)
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return ErrBookingNotUpcoming
		}
		updated = b
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("Booking rescheduled",
		zap.String("bookingID", updated.ID),
		zap.String("from", DateKey(current.Date)+" "+current.Time),
		zap.String("to", DateKey(updated.Date)+" "+updated.Time))

	s.scheduleReminder(ctx, updated)
	s.notify(ctx, models.NotifyBookingRescheduled, models.NotificationPayload{
		Recipients: []string{updated.ConsultantID},
		Title:      "Booking rescheduled",
		Body:       "An appointment moved to " + DateKey(updated.Date) + " at " + updated.Time + ".",
		Data:       bookingData(updated),
	})
	return updated, nil
}

// Cancel cancels the caller's upcoming booking and frees its cell.
func (s *DefaultBookingService) Cancel(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	if err := requireFields("booking_id", bookingID); err != nil {
		return nil, err
	}
	current, err := s.ownedUpcoming(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	var cancelled *models.Booking
	if current.PaymentStatus == models.PaymentStatusPending {
		// An unpaid booking is cancelled as a failed payment so a payment that
		// still lands is handled like one arriving after hold expiry.
		cancelled, err = s.Bookings.MarkFailed(ctx, bookingID)
		if err == nil {
			s.expireCheckout(ctx, cancelled)
		}
	}
	if cancelled == nil && (err == nil || errors.Is(err, bookingRepo.ErrNotFound)) {
		cancelled, err = s.Bookings.Cancel(ctx, bookingID)
	}
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrBookingNotUpcoming
	}
	if err != nil {
		return nil, s.ledgerError(err)
	}

	s.logger().Info("Booking cancelled",
		zap.String("bookingID", bookingID), zap.String("paymentStatus", cancelled.PaymentStatus))
	s.notify(ctx, models.NotifyBookingCancelled, models.NotificationPayload{
		Recipients: []string{cancelled.ConsultantID},
		Title:      "Booking cancelled",
		Body:       "The appointment on " + DateKey(cancelled.Date) + " at " + cancelled.Time + " was cancelled.",
		Data:       bookingData(cancelled),
	})
	return cancelled, nil
}

// expireCheckout closes the booking's open payment session. Failures are
// logged; a payment that still completes restores or flags the booking.
func (s *DefaultBookingService) expireCheckout(ctx context.Context, b *models.Booking) {
	if b.CheckoutSessionID == "" {
		return
	}
	if err := s.Payments.ExpireCheckoutSession(ctx, b.CheckoutSessionID); err != nil {
		s.logger().Warn("Failed to expire checkout session",
			zap.String("bookingID", b.ID), zap.String("sessionID", b.CheckoutSessionID), zap.Error(err))
	}
}

// ownedUpcoming loads a booking and checks the caller owns it and it is upcoming.
func (s *DefaultBookingService) ownedUpcoming(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, s.ledgerError(err)
	}
	if booking.UserID != userID {
		s.logger().Warn("Booking change by non-owner",
			zap.String("bookingID", bookingID), zap.String("userID", userID))
		return nil, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusUpcoming {
		return nil, ErrBookingNotUpcoming
	}
	return booking, nil
}
