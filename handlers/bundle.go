package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"consultme/services/booking"
	"consultme/services/notification"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	ListBookingsHandler      gin.HandlerFunc
	GetAvailableSlotsHandler gin.HandlerFunc
	CreateBookingHandler     gin.HandlerFunc
	RescheduleHandler        gin.HandlerFunc
	CancelBookingHandler     gin.HandlerFunc

	// Availability endpoints
	GetAvailabilityHandler gin.HandlerFunc
	AddAvailabilityHandler gin.HandlerFunc

	// Payment endpoints
	OnboardingLinkHandler gin.HandlerFunc
	StripeWebhookHandler  gin.HandlerFunc

	// Notification endpoints
	ListNotificationsHandler gin.HandlerFunc
	CountUnreadHandler       gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handler structs into a bundle for route registration.
func NewHandlerBundle(bookings booking.BookingService, notifications notification.NotificationService, webhooks EventProcessor, logger *zap.Logger) *HandlerBundle {
	bh := NewBookingHandler(bookings, logger)
	nh := NewNotificationHandler(notifications, logger)
	wh := NewWebhookHandler(webhooks, logger)

	return &HandlerBundle{
		ListBookingsHandler:      bh.ListBookingsHandler,
		GetAvailableSlotsHandler: bh.GetAvailableSlotsHandler,
		CreateBookingHandler:     bh.CreateBookingHandler,
		RescheduleHandler:        bh.RescheduleHandler,
		CancelBookingHandler:     bh.CancelBookingHandler,
		GetAvailabilityHandler:   bh.GetAvailabilityHandler,
		AddAvailabilityHandler:   bh.AddAvailabilityHandler,
		OnboardingLinkHandler:    bh.OnboardingLinkHandler,
		StripeWebhookHandler:     wh.StripeWebhookHandler,
		ListNotificationsHandler: nh.ListNotificationsHandler,
		CountUnreadHandler:       nh.CountUnreadHandler,
		HealthHandler:            HealthHandler,
	}
}
