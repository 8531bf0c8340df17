package notification

import (
	"net/http"
	"strconv"

	"stockroom/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	ListNotifications(c *gin.Context)
	MarkAllRead(c *gin.Context)
	UnreadMentionsCount(c *gin.Context)
	MarkMentionsRead(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

func (h *handler) ListNotifications(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	notifications, err := h.service.ListForUser(c.Request.Context(), caller, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, NotificationListResponse{Notifications: notifications})
}

func (h *handler) MarkAllRead(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), caller)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, MarkReadResponse{Updated: updated})
}

func (h *handler) UnreadMentionsCount(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	count, err := h.service.UnreadMentionsCount(c.Request.Context(), caller)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread mentions"})
		return
	}

	c.JSON(http.StatusOK, UnreadMentionsResponse{Count: count})
}

func (h *handler) MarkMentionsRead(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req MarkMentionsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.service.MarkMentionsRead(c.Request.Context(), caller, req.MessageIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark mentions read"})
		return
	}

	c.JSON(http.StatusOK, MarkReadResponse{Updated: updated})
}
