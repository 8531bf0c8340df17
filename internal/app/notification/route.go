package notification

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", handler.ListNotifications)
		notifications.POST("/read-all", handler.MarkAllRead)
		notifications.GET("/mentions/unread-count", handler.UnreadMentionsCount)
		notifications.POST("/mentions/read", handler.MarkMentionsRead)
	}
}
