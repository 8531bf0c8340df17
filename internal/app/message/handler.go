package message

import (
	"errors"
	"net/http"
	"strconv"

	"stockroom/internal/app/entity"
	"stockroom/internal/errs"
	"stockroom/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	PostMessage(c *gin.Context)
	GetEntityMessages(c *gin.Context)
	GetMessageReplies(c *gin.Context)
	EditMessage(c *gin.Context)
	DeleteMessage(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *handler) PostMessage(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	entityType, err := entity.Parse(c.Param("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity type"})
		return
	}
	entityID := c.Param("entity_id")

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.service.Post(c.Request.Context(), caller, entityType, entityID, req.Content, req.ParentID, req.MentionedUserIDs)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateMessageResponse{ID: id})
}

func (h *handler) GetEntityMessages(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	entityType, err := entity.Parse(c.Param("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity type"})
		return
	}
	entityID := c.Param("entity_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	messages, err := h.service.ListByEntity(c.Request.Context(), caller, entityType, entityID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageListResponse{Messages: messages})
}

func (h *handler) GetMessageReplies(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	messageID := c.Param("id")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	replies, err := h.service.ListReplies(c.Request.Context(), caller, messageID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageListResponse{Messages: replies})
}

func (h *handler) EditMessage(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.Edit(c.Request.Context(), caller, c.Param("id"), req.Content); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) DeleteMessage(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
