package member

import (
	"net/http"
	"strconv"

	"stockroom/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	SearchMentionable(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

func (h *handler) SearchMentionable(c *gin.Context) {
	caller, ok := middleware.CallerContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	query := c.Query("query")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	members, err := h.service.SearchMentionable(c.Request.Context(), caller, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search members"})
		return
	}

	c.JSON(http.StatusOK, MemberListResponse{Members: members})
}
