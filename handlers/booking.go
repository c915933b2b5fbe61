package handlers

import (
	"consultme/models"
	"consultme/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the slot, availability and booking endpoints.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// GetAvailableSlotsHandler lists the free times for ?consultant_id=&date=.
func (h *BookingHandler) GetAvailableSlotsHandler(c *gin.Context) {
	if _, _, ok := caller(c); !ok {
		return
	}
	slots, err := h.Service.GetAvailableSlots(c.Request.Context(), c.Query("consultant_id"), c.Query("date"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, "Available slots fetched successfully", slots)
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c, h.Logger).Debug("Invalid booking request", zap.Error(err))
		badPayload(c)
		return
	}

	result, err := h.Service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, "Booking created, complete payment to confirm", result.CheckoutURL)
}

func (h *BookingHandler) RescheduleHandler(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	updated, err := h.Service.Reschedule(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, "Booking rescheduled successfully", updated)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	cancelled, err := h.Service.Cancel(c.Request.Context(), userID, req.BookingID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, "Booking cancelled", cancelled)
}

// ListBookingsHandler returns the caller's bookings filtered by ?type=.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}
	bookings, err := h.Service.ListBookings(c.Request.Context(), userID, role, c.Query("type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	respondOK(c, "Bookings fetched successfully", bookings)
}

func (h *BookingHandler) GetAvailabilityHandler(c *gin.Context) {
	if _, _, ok := caller(c); !ok {
		return
	}
	availability, err := h.Service.GetAvailability(c.Request.Context(), c.Param("consultant_id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if availability == nil {
		availability = []models.WeekdayAvailability{}
	}
	respondOK(c, "Availability fetched successfully", availability)
}

// AddAvailabilityHandler registers one (day, time) pair for the calling consultant.
func (h *BookingHandler) AddAvailabilityHandler(c *gin.Context) {
	consultantID, _, ok := caller(c)
	if !ok {
		return
	}
	var req models.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	availability, err := h.Service.AddAvailability(c.Request.Context(), consultantID, req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, "Availability updated successfully", availability)
}

// OnboardingLinkHandler returns a hosted payout onboarding URL for the calling consultant.
func (h *BookingHandler) OnboardingLinkHandler(c *gin.Context) {
	consultantID, _, ok := caller(c)
	if !ok {
		return
	}
	url, err := h.Service.OnboardingLink(c.Request.Context(), consultantID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, "Onboarding link created", url)
}
