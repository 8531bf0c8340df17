package session

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", handler.CreateSession)
	}
}
