package handlers

import (
	"net/http"

	"consultme/models"
	"consultme/services/notification"
	"consultme/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Service notification.NotificationService
	Logger  *zap.Logger
}

func NewNotificationHandler(svc notification.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Service: svc, Logger: logger}
}

// ListNotificationsHandler returns the caller's inbox and marks it read.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		getLogger(c, h.Logger).Error("Failed to list notifications", zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Something went wrong", "internal_error")
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	respondOK(c, "Notifications fetched successfully", items)
}

func (h *NotificationHandler) CountUnreadHandler(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	count, err := h.Service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		getLogger(c, h.Logger).Error("Failed to count notifications", zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Something went wrong", "internal_error")
		return
	}
	respondOK(c, "Unread notifications counted", count)
}
