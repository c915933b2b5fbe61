package tasks

import (
	"github.com/hibiken/asynq"
)

const (
	TypeReleaseExpiredHolds = "booking:release_expired"
	// HoldSweepSpec is how often lapsed pending bookings are released.
	HoldSweepSpec = "@every 1m"
)

func NewReleaseExpiredHoldsTask() *asynq.Task {
	return asynq.NewTask(TypeReleaseExpiredHolds, nil)
}
