package cron

import (
	"context"
	"fmt"
	"time"

	"consultme/config"
	"consultme/models"
	"consultme/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderDeliverer delivers a queued appointment reminder.
type ReminderDeliverer interface {
	DeliverReminder(ctx context.Context, payload models.ReminderPayload) error
}

// HoldReleaser releases lapsed pending bookings.
type HoldReleaser interface {
	ReleaseExpiredHolds(ctx context.Context) (int64, error)
}

// BookingJobs is what the worker runs against.
type BookingJobs interface {
	ReminderDeliverer
	HoldReleaser
}

// RedisOpt returns the asynq connection for the queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Worker runs the reminder and hold-sweep handlers and the periodic sweep schedule.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func NewWorker(jobs BookingJobs, logger *zap.Logger) *Worker {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(jobs, logger))
	mux.HandleFunc(tasks.TypeReleaseExpiredHolds, handleReleaseHoldsTask(jobs, logger))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})

	return &Worker{server: srv, scheduler: scheduler, mux: mux, logger: logger}
}

// Start launches the worker with retries and registers the hold sweep.
func (w *Worker) Start() error {
	const maxAttempts = 5

	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = w.server.Start(w.mux); err == nil {
			break
		}
		w.logger.Warn("Worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
	if err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	if _, err := w.scheduler.Register(tasks.HoldSweepSpec, tasks.NewReleaseExpiredHoldsTask(), asynq.Unique(time.Minute)); err != nil {
		return fmt.Errorf("register hold sweep: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	w.logger.Info("Worker started", zap.String("holdSweep", tasks.HoldSweepSpec))
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func handleReminderTask(jobs ReminderDeliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReminderTask(task)
		if err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger.Debug("Delivering reminder", zap.String("bookingID", p.BookingID))
		return jobs.DeliverReminder(ctx, p)
	}
}

func handleReleaseHoldsTask(jobs HoldReleaser, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		if _, err := jobs.ReleaseExpiredHolds(ctx); err != nil {
			logger.Error("Hold sweep failed", zap.Error(err))
			return err
		}
		return nil
	}
}
