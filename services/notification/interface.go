package notification

import (
	"context"
	"sync"
	"time"

	notificationRepo "consultme/database/repository/notification"
	userRepo "consultme/database/repository/user"
	"consultme/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService fans booking notifications out to in-app storage,
// push and the event stream, and serves the in-app inbox.
type NotificationService interface {
	Notify(ctx context.Context, kind string, payload models.NotificationPayload)
	List(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// PushSender delivers one push message to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// EventPublisher publishes a booking event to the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}

// DefaultNotificationService is the production implementation. Push and
// Events are optional.
type DefaultNotificationService struct {
	Repo    notificationRepo.NotificationRepository
	Users   userRepo.UserRepository
	Push    PushSender
	Events  EventPublisher
	Logger  *zap.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

// Notify returns immediately; delivery runs in the background and outlives
// the caller's context. Failures are logged only.
func (s *DefaultNotificationService) Notify(ctx context.Context, kind string, payload models.NotificationPayload) {
	if len(payload.Recipients) == 0 {
		return
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.deliver(deliveryCtx, kind, payload)
	}()
}

// Wait blocks until in-flight deliveries finish.
func (s *DefaultNotificationService) Wait() {
	s.wg.Wait()
}

func (s *DefaultNotificationService) deliver(ctx context.Context, kind string, payload models.NotificationPayload) {
	now := time.Now().UTC()
	records := make([]models.Notification, 0, len(payload.Recipients))
	for _, userID := range payload.Recipients {
		records = append(records, models.Notification{
			ID:        uuid.New().String(),
			UserID:    userID,
			Kind:      kind,
			Title:     payload.Title,
			Body:      payload.Body,
			Data:      payload.Data,
			CreatedAt: now,
		})
	}
	if err := s.Repo.InsertMany(ctx, records); err != nil {
		s.Logger.Error("Failed to store notifications", zap.String("kind", kind), zap.Error(err))
	}

	if s.Push != nil {
		s.push(ctx, kind, payload)
	}

	if s.Events != nil {
		event := models.BookingEvent{Kind: kind, Recipients: payload.Recipients, Data: payload.Data, OccurredAt: now}
		if err := s.Events.Publish(ctx, event); err != nil {
			s.Logger.Error("Failed to publish booking event", zap.String("kind", kind), zap.Error(err))
		}
	}
}

func (s *DefaultNotificationService) push(ctx context.Context, kind string, payload models.NotificationPayload) {
	users, err := s.Users.ListByIDs(ctx, payload.Recipients)
	if err != nil {
		s.Logger.Error("Failed to load push recipients", zap.Error(err))
		return
	}
	data := map[string]string{"type": kind}
	for k, v := range payload.Data {
		data[k] = v
	}
	for _, u := range users {
		if u.FCMToken == "" {
			continue
		}
		if err := s.Push.Send(ctx, u.FCMToken, payload.Title, payload.Body, data); err != nil {
			s.Logger.Warn("Push delivery failed", zap.String("userID", u.ID), zap.Error(err))
		}
	}
}

func (s *DefaultNotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.Repo.ListAndMarkRead(ctx, userID)
}

func (s *DefaultNotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.Repo.CountUnread(ctx, userID)
}
