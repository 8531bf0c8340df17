package follower

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	chatter := rg.Group("/chatter/:entity_type/:entity_id")
	{
		chatter.PUT("/follow", handler.Follow)
		chatter.DELETE("/follow", handler.Unfollow)
		chatter.GET("/follow", handler.IsFollowing)
		chatter.PATCH("/follow", handler.UpdatePreferences)
		chatter.GET("/followers", handler.ListFollowers)
	}
}
