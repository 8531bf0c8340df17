package app

import (
	"stockroom/internal/app/follower"
	"stockroom/internal/app/health"
	"stockroom/internal/app/member"
	"stockroom/internal/app/message"
	"stockroom/internal/app/notification"
	"stockroom/internal/app/session"
	"stockroom/internal/config"
	"stockroom/internal/db"
	"stockroom/internal/db/seeder"
	"stockroom/internal/providers/redis"
	"stockroom/internal/router"
	"stockroom/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	Router *router.Router
	DB     *gorm.DB
}

func Bootstrap(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	dbConn, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn, logger); err != nil {
		return nil, err
	}

	if cfg.SeedDemoData {
		seed := seeder.NewSeeder(dbConn, logger)
		if err := seed.Seed(); err != nil {
			logger.Warn("Failed to run seeders", zap.Error(err))
		}
	}

	redisProvider := redis.NewRedisProvider(cfg.RedisURL, logger, cfg.RedisTTL)
	eventBus := utils.NewEventBus()

	sessionRepo := session.NewRepository(dbConn)
	memberRepo := member.NewRepository(dbConn)
	followerRepo := follower.NewRepository(dbConn)
	messageRepo := message.NewRepository(dbConn)
	notificationRepo := notification.NewRepository(dbConn)

	sessionService := session.NewService(sessionRepo)
	memberService := member.NewService(memberRepo, redisProvider, logger, cfg.MentionLimit)
	followerService := follower.NewService(followerRepo, logger)
	messageService := message.NewService(messageRepo, memberService, followerService, redisProvider, eventBus, logger, cfg.MessagePageLimit)
	notificationService := notification.NewService(notificationRepo, followerService, redisProvider, eventBus, logger)

	// Fan-out runs off the request path; a dispatch failure can never
	// fail the post that triggered it.
	go notificationService.Run()

	healthHandler := health.NewHandler(&utils.HealthChecker{
		DB:    dbConn,
		Redis: redisProvider.Client,
	})
	sessionHandler := session.NewHandler(sessionService)
	memberHandler := member.NewHandler(memberService)
	followerHandler := follower.NewHandler(followerService)
	messageHandler := message.NewHandler(messageService)
	notificationHandler := notification.NewHandler(notificationService)

	r := router.NewRouter(logger)

	r.RegisterHealthRoutes(healthHandler)
	r.RegisterSessionRoutes(sessionHandler)
	r.RegisterChatterRoutes(sessionService, messageHandler, followerHandler, memberHandler, notificationHandler)

	return &Application{
		Router: r,
		DB:     dbConn,
	}, nil
}
