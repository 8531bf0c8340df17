package follower

import (
	"errors"
	"net/http"

	"stockroom/internal/app/entity"
	"stockroom/internal/app/session"
	"stockroom/internal/errs"
	"stockroom/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	Follow(c *gin.Context)
	Unfollow(c *gin.Context)
	IsFollowing(c *gin.Context)
	UpdatePreferences(c *gin.Context)
	ListFollowers(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

func entityScope(c *gin.Context) (*session.Context, entity.Type, string, bool) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return nil, "", "", false
	}

	entityType, err := entity.Parse(c.Param("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity type"})
		return nil, "", "", false
	}

	entityID := c.Param("entity_id")
	if entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity id is required"})
		return nil, "", "", false
	}

	return caller, entityType, entityID, true
}

func (h *handler) Follow(c *gin.Context) {
	caller, entityType, entityID, ok := entityScope(c)
	if !ok {
		return
	}

	var req FollowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if err := h.service.Follow(c.Request.Context(), caller, entityType, entityID, &req.Preferences); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to follow entity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) Unfollow(c *gin.Context) {
	caller, entityType, entityID, ok := entityScope(c)
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), caller, entityType, entityID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unfollow entity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) IsFollowing(c *gin.Context) {
	caller, entityType, entityID, ok := entityScope(c)
	if !ok {
		return
	}

	following, err := h.service.IsFollowing(c.Request.Context(), caller, entityType, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check follow status"})
		return
	}

	c.JSON(http.StatusOK, FollowingResponse{Following: following})
}

func (h *handler) UpdatePreferences(c *gin.Context) {
	caller, entityType, entityID, ok := entityScope(c)
	if !ok {
		return
	}

	var prefs Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.UpdatePreferences(c.Request.Context(), caller, entityType, entityID, &prefs); err != nil {
		switch {
		case errors.Is(err, errs.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no preferences given"})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not following entity"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update preferences"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) ListFollowers(c *gin.Context) {
	caller, entityType, entityID, ok := entityScope(c)
	if !ok {
		return
	}

	followers, err := h.service.ListByEntity(c.Request.Context(), caller, entityType, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list followers"})
		return
	}

	c.JSON(http.StatusOK, FollowerListResponse{Followers: followers})
}
