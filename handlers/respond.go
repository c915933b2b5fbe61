package handlers

import (
	"errors"
	"net/http"

	"consultme/middleware"
	"consultme/services/booking"
	"consultme/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var kindStatus = map[booking.ErrorKind]int{
	booking.KindValidation:    http.StatusBadRequest,
	booking.KindNotFound:      http.StatusNotFound,
	booking.KindConflict:      http.StatusConflict,
	booking.KindAuthorization: http.StatusForbidden,
	booking.KindUpstream:      http.StatusBadGateway,
	booking.KindInternal:      http.StatusInternalServerError,
}

// statusFor maps a booking error kind to its HTTP status.
func statusFor(kind booking.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as {message, code}. Internal failures are logged
// with their cause and answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := booking.KindOf(err)
	status := statusFor(kind)

	var be *booking.BookingError
	if kind == booking.KindInternal || !errors.As(err, &be) {
		getLogger(c, logger).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, status, booking.ErrInternal.Message, booking.ErrInternal.Code)
		return
	}
	if kind == booking.KindUpstream {
		getLogger(c, logger).Error("Upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
	}
	utils.JSONError(c, status, be.Message, be.Code)
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{"message": message, "data": data})
}

func badPayload(c *gin.Context) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload")
}

// caller returns the authenticated identity set by JWTAuthMiddleware.
func caller(c *gin.Context) (userID, role string, ok bool) {
	userID = c.GetString(middleware.ContextUserID)
	role = c.GetString(middleware.ContextRole)
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated", "unauthenticated")
		return "", "", false
	}
	return userID, role, true
}
