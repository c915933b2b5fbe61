package booking

import (
	"context"
	"errors"
	"strconv"

	bookingRepo "consultme/database/repository/booking"
	"consultme/models"

	"go.uber.org/zap"
)

// ReleaseExpiredHolds cancels every pending booking whose hold has lapsed.
func (s *DefaultBookingService) ReleaseExpiredHolds(ctx context.Context) (int64, error) {
	released, err := s.Bookings.ReleaseExpiredHolds(ctx, s.now())
	if err != nil {
		return 0, s.ledgerError(err)
	}
	if released > 0 {
		s.logger().Info("Released expired holds", zap.Int64("count", released))
	}
	return released, nil
}

// DeliverReminder notifies both parties of an upcoming appointment. A
// reminder whose booking was cancelled or moved since it was queued is dropped.
func (s *DefaultBookingService) DeliverReminder(ctx context.Context, payload models.ReminderPayload) error {
	booking, err := s.Bookings.GetByID(ctx, payload.BookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		s.logger().Info("Dropping reminder for unknown booking", zap.String("bookingID", payload.BookingID))
		return nil
	}
	if err != nil {
		return s.ledgerError(err)
	}

	if booking.Status != models.BookingStatusUpcoming ||
		booking.PaymentStatus != models.PaymentStatusPaid ||
		DateKey(booking.Date) != payload.Date ||
		booking.TimeKey != payload.Time ||
		booking.RemindBefore != payload.RemindBefore {
		s.logger().Debug("Dropping stale reminder",
			zap.String("bookingID", booking.ID),
			zap.String("scheduledFor", payload.Date+" "+payload.Time))
		return nil
	}

	s.notify(ctx, models.NotifyBookingReminder, models.NotificationPayload{
		Recipients: []string{booking.UserID, booking.ConsultantID},
		Title:      "Upcoming appointment",
		Body:       "Your appointment at " + booking.Time + " starts in " + minutes(booking.RemindBefore) + ".",
		Data:       bookingData(booking),
	})
	return nil
}

func minutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return strconv.Itoa(n) + " minutes"
}
