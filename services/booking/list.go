package booking

import (
	"context"

	"consultme/models"
)

var listTypes = map[string]string{
	"":                            "",
	"all":                         "",
	models.BookingStatusUpcoming:  models.BookingStatusUpcoming,
	models.BookingStatusCompleted: models.BookingStatusCompleted,
	models.BookingStatusCancelled: models.BookingStatusCancelled,
}

// ListBookings returns the caller's bookings: consultants see bookings made
// with them, clients the bookings they made.
func (s *DefaultBookingService) ListBookings(ctx context.Context, userID, role, listType string) ([]models.Booking, error) {
	status, ok := listTypes[listType]
	if !ok {
		return nil, ErrInvalidListType
	}

	var (
		bookings []models.Booking
		err      error
	)
	if role == models.RoleConsultant {
		bookings, err = s.Bookings.ListByConsultant(ctx, userID, status)
	} else {
		bookings, err = s.Bookings.ListByUser(ctx, userID, status)
	}
	if err != nil {
		return nil, s.ledgerError(err)
	}
	return bookings, nil
}
