package userRepo

import (
	"context"
	"errors"

	"consultme/models"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateSlot is returned when the (day, time) pair is already offered.
	ErrDuplicateSlot = errors.New("availability slot already exists")
)

// UserRepository defines the user data access the booking core needs.
// Profile CRUD lives in the identity service.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListByIDs retrieves the users with the given IDs; unknown IDs are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// AddAvailability appends timeLabel to the consultant's day, creating the
	// day entry when absent, and returns the resulting schedule.
	AddAvailability(ctx context.Context, consultantID, day, timeLabel string) ([]models.WeekdayAvailability, error)
	// SetStripeAccount stores the provider account created for a consultant.
	SetStripeAccount(ctx context.Context, id, accountID string) error
	// MarkOnboarded flags the owner of accountID as done with provider onboarding.
	MarkOnboarded(ctx context.Context, accountID string) error
}
