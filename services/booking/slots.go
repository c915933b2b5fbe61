package booking

import (
	"context"

	"consultme/models"

	"go.uber.org/zap"
)

// ResolveSlots returns the labels in available that no booked label matches,
// in the order given. Labels are compared by TimeKey.
func ResolveSlots(available []string, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, label := range booked {
		taken[TimeKey(label)] = struct{}{}
	}
	free := make([]string, 0, len(available))
	for _, label := range available {
		if _, ok := taken[TimeKey(label)]; ok {
			continue
		}
		free = append(free, label)
	}
	return free
}

// GetAvailableSlots lists the consultant's free time labels on date.
func (s *DefaultBookingService) GetAvailableSlots(ctx context.Context, consultantID, date string) ([]string, error) {
	if err := requireFields("consultant_id", consultantID, "date", date); err != nil {
		return nil, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	consultant, err := s.loadConsultant(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	weekday := WeekdayOf(day)
	times, err := offeredTimes(consultant, weekday)
	if err != nil {
		return nil, err
	}

	now := s.now()
	occupying, err := s.Bookings.ListOccupying(ctx, consultantID, day, now)
	if err != nil {
		s.logger().Error("Failed to list occupying bookings",
			zap.String("consultantID", consultantID), zap.String("date", DateKey(day)), zap.Error(err))
		return nil, internal(err)
	}
	booked := make([]string, 0, len(occupying))
	for i := range occupying {
		if occupying[i].Occupies(now) {
			booked = append(booked, occupying[i].Time)
		}
	}
	return ResolveSlots(times, booked), nil
}

// GetAvailability returns the consultant's weekly schedule.
func (s *DefaultBookingService) GetAvailability(ctx context.Context, consultantID string) ([]models.WeekdayAvailability, error) {
	if err := requireFields("consultant_id", consultantID); err != nil {
		return nil, err
	}
	consultant, err := s.loadConsultant(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	if consultant.Availability == nil {
		return []models.WeekdayAvailability{}, nil
	}
	return consultant.Availability, nil
}
