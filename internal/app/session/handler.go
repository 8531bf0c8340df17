package session

import (
	"errors"
	"net/http"

	"stockroom/internal/errs"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	CreateSession(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// CreateSession is a development convenience: real deployments issue
// sessions from the identity provider, not from this service.
func (h *handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, profile, err := h.service.CreateSession(c.Request.Context(), req.Email, c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		SessionKey: sess.SessionKey,
		UserID:     profile.ID,
		TenantID:   profile.TenantID,
		FullName:   profile.FullName,
		StartedAt:  sess.StartedAt,
	})
}
