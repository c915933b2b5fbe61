package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"consultme/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderTaskID identifies the reminder for one booking at one cell and lead
// time, so rescheduling queues a new task instead of colliding with the old one.
func ReminderTaskID(p models.ReminderPayload) string {
	return fmt.Sprintf("reminder:%s:%s:%s:%d", p.BookingID, p.Date, p.Time, p.RemindBefore)
}

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload)),
		asynq.MaxRetry(3),
		asynq.Retention(24 * time.Hour),
	}

	return task, opts, nil
}

// ParseReminderTask decodes a reminder task payload.
func ParseReminderTask(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	return p, nil
}
