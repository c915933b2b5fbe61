package booking

import (
	"context"
	"errors"
	"strconv"
	"time"

	bookingRepo "consultme/database/repository/booking"
	"consultme/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking reserves the cell for the client and hands the charge to the
// payment provider. The returned checkout URL is where the client pays.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.CheckoutResult, error) {
	remind := ""
	if req.RemindBefore != 0 {
		remind = strconv.Itoa(req.RemindBefore)
	}
	if err := requireFields("user", userID, "consultant_id", req.ConsultantID, "date", req.Date, "time", req.Time, "remind_before", remind); err != nil {
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

	consultant, err := s.loadConsultant(ctx, req.ConsultantID)
	if err != nil {
		return nil, err
	}
	amount := consultant.PriceMinorUnits()
	if amount <= 0 {
		return nil, ErrPriceNotConfigured
	}
	if err := requireOffered(consultant, WeekdayOf(day), timeKey); err != nil {
		return nil, err
	}

	now := s.now()
	holdUntil := now.Add(s.holdTTL())
	booking := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        userID,
		ConsultantID:  consultant.ID,
		Date:          day,
		Time:          timeKey,
		TimeKey:       timeKey,
		RemindBefore:  req.RemindBefore,
		Status:        models.BookingStatusUpcoming,
		PaymentStatus: models.PaymentStatusPending,
		Amount:        amount,
		Currency:      s.currency(),
		HoldExpiresAt: &holdUntil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.claimCell(ctx, booking.ConsultantID, day, timeKey, func() error {
		return s.Bookings.Insert(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, ErrSlotAlreadyBooked) {
			s.logger().Info("Slot already booked",
				zap.String("consultantID", booking.ConsultantID), zap.String("date", DateKey(day)), zap.String("time", timeKey))
		}
		return nil, err
	}

	sessionID, url, err := s.Payments.CreateCheckoutSession(ctx, models.CheckoutSessionInput{
		PayerID:     userID,
		BookingID:   booking.ID,
		Amount:      amount,
		Currency:    booking.Currency,
		Description: checkoutLabel,
		ExpiresAt:   holdUntil,
	})
	if err != nil {
		s.logger().Error("Checkout session failed, releasing reservation",
			zap.String("bookingID", booking.ID), zap.Error(err))
		s.failReservation(ctx, booking.ID)
		return nil, ErrPaymentSession.wrap(err)
	}
	if err := s.Bookings.AttachCheckoutSession(ctx, booking.ID, sessionID); err != nil {
		// Not fatal: the session still carries the booking id in its metadata.
		s.logger().Warn("Failed to record checkout session",
			zap.String("bookingID", booking.ID), zap.String("sessionID", sessionID), zap.Error(err))
	}

	s.logger().Info("Booking reserved",
		zap.String("bookingID", booking.ID),
		zap.String("consultantID", booking.ConsultantID),
		zap.String("date", DateKey(day)),
		zap.String("time", timeKey),
		zap.Time("holdExpiresAt", holdUntil))
	return &models.CheckoutResult{BookingID: booking.ID, CheckoutURL: url}, nil
}

// failReservation frees the cell of a booking whose payment never started.
// It runs even when the request context is already done.
func (s *DefaultBookingService) failReservation(ctx context.Context, bookingID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := s.Bookings.MarkFailed(ctx, bookingID); err != nil && !errors.Is(err, bookingRepo.ErrNotFound) {
		s.logger().Error("Failed to release reservation; hold expiry will free it",
			zap.String("bookingID", bookingID), zap.Error(err))
	}
}

// claimCell runs write, which must store an upcoming booking in the cell.
// When the cell is held by a pending booking whose hold has lapsed, that
// booking is released and write is attempted once more.
func (s *DefaultBookingService) claimCell(ctx context.Context, consultantID string, day time.Time, timeKey string, write func() error) error {
	err := write()
	if err == nil {
		return nil
	}
	if !errors.Is(err, bookingRepo.ErrSlotTaken) {
		return s.ledgerError(err)
	}

	released, err := s.releaseLapsedHolder(ctx, consultantID, day, timeKey)
	if err != nil {
		return err
	}
	if !released {
		return ErrSlotAlreadyBooked
	}
	if err := write(); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return ErrSlotAlreadyBooked
		}
		return s.ledgerError(err)
	}
	return nil
}

// releaseLapsedHolder reports whether the cell may be free now.
func (s *DefaultBookingService) releaseLapsedHolder(ctx context.Context, consultantID string, day time.Time, timeKey string) (bool, error) {
	holder, err := s.Bookings.FindUpcomingAt(ctx, consultantID, day, timeKey)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, s.ledgerError(err)
	}
	now := s.now()
	if !holder.HoldExpired(now) {
		return false, nil
	}
	if _, err := s.Bookings.ReleaseExpiredHold(ctx, holder.ID, now); err != nil {
		return false, s.ledgerError(err)
	}
	s.logger().Info("Released lapsed hold", zap.String("bookingID", holder.ID))
	return true, nil
}

func (s *DefaultBookingService) ledgerError(err error) error {
	var be *BookingError
	if errors.As(err, &be) {
		return err
	}
	s.logger().Error("Booking ledger failure", zap.Error(err))
	return internal(err)
}
