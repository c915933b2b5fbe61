package booking

import (
	"context"
	"errors"

	userRepo "consultme/database/repository/user"
	"consultme/models"

	"go.uber.org/zap"
)

// AddAvailability registers one (day, time) pair for the consultant.
// Registration is append-only; an existing pair is rejected.
func (s *DefaultBookingService) AddAvailability(ctx context.Context, consultantID string, req models.AvailabilityRequest) ([]models.WeekdayAvailability, error) {
	if err := requireFields("consultant_id", consultantID, "day", req.Day, "time", req.Time); err != nil {
		return nil, err
	}
	day, err := NormalizeDay(req.Day)
	if err != nil {
		return nil, err
	}
	timeKey, err := NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadConsultant(ctx, consultantID); err != nil {
		return nil, err
	}

	schedule, err := s.Users.AddAvailability(ctx, consultantID, day, timeKey)
	switch {
	case errors.Is(err, userRepo.ErrDuplicateSlot):
		return nil, ErrDuplicateSlot.withMessage("%s %s is already in your availability", day, timeKey)
	case errors.Is(err, userRepo.ErrNotFound):
		return nil, ErrConsultantNotFound
	case err != nil:
		s.logger().Error("Failed to add availability", zap.String("consultantID", consultantID), zap.Error(err))
		return nil, internal(err)
	}

	s.logger().Info("Availability added",
		zap.String("consultantID", consultantID), zap.String("day", day), zap.String("time", timeKey))
	return schedule, nil
}
