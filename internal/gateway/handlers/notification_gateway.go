package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bizadmin-system/internal/gateway/middleware"
	notificationsvc "bizadmin-system/internal/services/notification/handler"
)

type NotificationHTTPHandler struct {
	notifications *notificationsvc.NotificationHandler
}

func NewNotificationHTTPHandler(notifications *notificationsvc.NotificationHandler) *NotificationHTTPHandler {
	return &NotificationHTTPHandler{notifications: notifications}
}

type ListNotificationsQuery struct {
	UnreadOnly bool `form:"unread_only,default=false"`
}

func (h *NotificationHTTPHandler) ListNotifications(c *gin.Context) {
	var query ListNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query: "+err.Error()))
		return
	}

	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	resp, err := h.notifications.GetUserNotifications(c.Request.Context(), claims.UserId, query.UnreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Notifications))
}

func (h *NotificationHTTPHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid notification id"))
		return
	}

	resp, err := h.notifications.MarkAsRead(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		c.JSON(http.StatusNotFound, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, nil))
}

// CheckOverdue triggers the overdue-invoice sweep. Exposed as an endpoint
// rather than a timer so operators decide when it runs.
func (h *NotificationHTTPHandler) CheckOverdue(c *gin.Context) {
	resp, err := h.notifications.CheckOverdueInvoices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, gin.H{
		"processed": resp.Processed,
	}))
}
