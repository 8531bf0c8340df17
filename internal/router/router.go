package router

import (
	"stockroom/internal/app/follower"
	"stockroom/internal/app/health"
	"stockroom/internal/app/member"
	"stockroom/internal/app/message"
	"stockroom/internal/app/notification"
	"stockroom/internal/app/session"
	"stockroom/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	Engine *gin.Engine
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	engine := gin.New()
	engine.Use(middleware.CORSMiddleware())
	engine.Use(middleware.LoggerMiddleware(logger))
	engine.Use(gin.Recovery())
	return &Router{Engine: engine, logger: logger}
}

func (r *Router) RegisterHealthRoutes(handler health.Handler) {
	health.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterSessionRoutes(handler session.Handler) {
	session.RegisterRoutes(r.Engine.Group("/api"), handler)
}

// RegisterChatterRoutes wires every authenticated chatter endpoint behind
// the session-resolving middleware.
func (r *Router) RegisterChatterRoutes(
	sessionSvc session.Service,
	messageHandler message.Handler,
	followerHandler follower.Handler,
	memberHandler member.Handler,
	notificationHandler notification.Handler,
) {
	api := r.Engine.Group("/api")
	api.Use(middleware.AuthRequired(sessionSvc, r.logger))

	message.RegisterRoutes(api, messageHandler)
	follower.RegisterRoutes(api, followerHandler)
	member.RegisterRoutes(api, memberHandler)
	notification.RegisterRoutes(api, notificationHandler)
}

func (r *Router) Serve(addr string) error {
	return r.Engine.Run(addr)
}
