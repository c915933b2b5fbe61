package routes

import (
	"time"

	"consultme/handlers"
	"consultme/middleware"
	"consultme/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers slot, availability and booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.ListBookingsHandler)
		api.GET("/available-slots", hb.GetAvailableSlotsHandler)
		api.POST("", hb.CreateBookingHandler)
		api.POST("/reschedule", hb.RescheduleHandler)
		api.POST("/cancel", hb.CancelBookingHandler)
		api.GET("/availability/:consultant_id", hb.GetAvailabilityHandler)

		// Consultant-only endpoints
		api.POST("/create-available-slots", middleware.RequireRole(models.RoleConsultant), hb.AddAvailabilityHandler)
	}
}

// RegisterPaymentRoutes registers payout onboarding and the provider webhook.
// The webhook is authenticated by its signature, not a bearer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhook/stripe", hb.StripeWebhookHandler)

	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleConsultant))
		api.GET("/account-link", hb.OnboardingLinkHandler)
	}
}

// RegisterNotificationRoutes registers the in-app inbox.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.ListNotificationsHandler)
		api.GET("/count", hb.CountUnreadHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
}
