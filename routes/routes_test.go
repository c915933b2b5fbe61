package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"consultme/config"
	"consultme/handlers"
	"consultme/models"
	"consultme/utils/jwttest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "test-secret"
}

func ok(c *gin.Context) { c.Status(http.StatusNoContent) }

func testBundle() *handlers.HandlerBundle {
	return &handlers.HandlerBundle{
		ListBookingsHandler:      ok,
		GetAvailableSlotsHandler: ok,
		CreateBookingHandler:     ok,
		RescheduleHandler:        ok,
		CancelBookingHandler:     ok,
		GetAvailabilityHandler:   ok,
		AddAvailabilityHandler:   ok,
		OnboardingLinkHandler:    ok,
		StripeWebhookHandler:     ok,
		ListNotificationsHandler: ok,
		CountUnreadHandler:       ok,
		HealthHandler:            ok,
	}
}

func request(t *testing.T, r *gin.Engine, method, path, role string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		token, err := jwttest.Sign("subject-1", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRegisterRoutes(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, testBundle())

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusNoContent},
		{"webhook is public", http.MethodPost, "/api/webhook/stripe", "", http.StatusNoContent},
		{"bookings need a token", http.MethodGet, "/api/bookings", "", http.StatusUnauthorized},
		{"client lists bookings", http.MethodGet, "/api/bookings", models.RoleUser, http.StatusNoContent},
		{"client creates booking", http.MethodPost, "/api/bookings", models.RoleUser, http.StatusNoContent},
		{"client cannot add availability", http.MethodPost, "/api/bookings/create-available-slots", models.RoleUser, http.StatusForbidden},
		{"consultant adds availability", http.MethodPost, "/api/bookings/create-available-slots", models.RoleConsultant, http.StatusNoContent},
		{"client cannot onboard", http.MethodGet, "/api/payments/account-link", models.RoleUser, http.StatusForbidden},
		{"consultant onboards", http.MethodGet, "/api/payments/account-link", models.RoleConsultant, http.StatusNoContent},
		{"notification count", http.MethodGet, "/api/notifications/count", models.RoleUser, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, request(t, r, tc.method, tc.path, tc.role))
		})
	}
}
