package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultme/models"
	"consultme/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) DeliverReminder(ctx context.Context, p models.ReminderPayload) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockJobs) ReleaseExpiredHolds(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestReminderHandlerDelivers(t *testing.T) {
	payload := models.ReminderPayload{BookingID: "booking-1", Date: "2025-06-02", Time: "09:00", RemindBefore: 15}
	task, _, err := tasks.NewReminderTask(payload, time.Now().Add(time.Hour))
	require.NoError(t, err)

	jobs := &mockJobs{}
	jobs.On("DeliverReminder", mock.Anything, payload).Return(nil)

	require.NoError(t, handleReminderTask(jobs, zap.NewNop())(context.Background(), task))
	jobs.AssertExpectations(t)
}

func TestReminderHandlerSkipsRetryOnBadPayload(t *testing.T) {
	jobs := &mockJobs{}
	err := handleReminderTask(jobs, zap.NewNop())(context.Background(), asynq.NewTask(tasks.TypeSendReminder, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	jobs.AssertNotCalled(t, "DeliverReminder", mock.Anything, mock.Anything)
}

func TestReleaseHoldsHandler(t *testing.T) {
	jobs := &mockJobs{}
	jobs.On("ReleaseExpiredHolds", mock.Anything).Return(int64(2), nil).Once()
	jobs.On("ReleaseExpiredHolds", mock.Anything).Return(int64(0), errors.New("mongo down")).Once()

	handler := handleReleaseHoldsTask(jobs, zap.NewNop())
	assert.NoError(t, handler(context.Background(), tasks.NewReleaseExpiredHoldsTask()))
	assert.Error(t, handler(context.Background(), tasks.NewReleaseExpiredHoldsTask()))
	jobs.AssertExpectations(t)
}
