package booking

import (
	"context"
	"errors"

	userRepo "consultme/database/repository/user"
	"consultme/models"
)

// loadConsultant returns the consultant or ErrConsultantNotFound. Users
// without the consultant role are treated as unknown.
func (s *DefaultBookingService) loadConsultant(ctx context.Context, consultantID string) (*models.User, error) {
	consultant, err := s.Users.GetByID(ctx, consultantID)
	if errors.Is(err, userRepo.ErrNotFound) {
		return nil, ErrConsultantNotFound
	}
	if err != nil {
		return nil, internal(err)
	}
	if consultant.Role != models.RoleConsultant {
		return nil, ErrConsultantNotFound
	}
	return consultant, nil
}

// offeredTimes returns the consultant's labels for day's weekday.
func offeredTimes(consultant *models.User, weekday string) ([]string, error) {
	times := consultant.TimesFor(weekday)
	if len(times) == 0 {
		return nil, ErrNoAvailabilityConfigured.withMessage("This consultant hasn't set availability for %s", weekday)
	}
	return times, nil
}

// requireOffered checks that timeKey is among the labels offered on weekday.
func requireOffered(consultant *models.User, weekday, timeKey string) error {
	times, err := offeredTimes(consultant, weekday)
	if err != nil {
		return err
	}
	for _, t := range times {
		if TimeKey(t) == timeKey {
			return nil
		}
	}
	return ErrSlotNotOffered.withMessage("This consultant does not offer %s on %s", timeKey, weekday)
}
