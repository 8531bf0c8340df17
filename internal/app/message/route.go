package message

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	rg.POST("/chatter/:entity_type/:entity_id/messages", handler.PostMessage)
	rg.GET("/chatter/:entity_type/:entity_id/messages", handler.GetEntityMessages)

	messages := rg.Group("/chatter/messages")
	{
		messages.GET("/:id/replies", handler.GetMessageReplies)
		messages.PATCH("/:id", handler.EditMessage)
		messages.DELETE("/:id", handler.DeleteMessage)
	}
}
