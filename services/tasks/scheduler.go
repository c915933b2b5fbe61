package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultme/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqReminderScheduler queues appointment reminders on asynq.
type AsynqReminderScheduler struct {
	Client Enqueuer
	Logger *zap.Logger
	Now    func() time.Time
}

// ScheduleReminder enqueues the reminder for fireAt. Reminders whose time has
// passed are skipped and an already queued identical reminder is kept.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if !fireAt.After(now) {
		s.Logger.Debug("Skipping reminder in the past",
			zap.String("bookingID", payload.BookingID), zap.Time("fireAt", fireAt))
		return nil
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	s.Logger.Info("Reminder scheduled",
		zap.String("bookingID", payload.BookingID), zap.Time("fireAt", fireAt))
	return nil
}
