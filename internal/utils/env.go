package utils

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv reads .env before the config layer resolves its variables. A
// missing file is fine: containerized deployments inject the environment
// directly.
func LoadEnv(logger *zap.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, relying on process environment")
	} else {
		logger.Info(".env file loaded")
	}
}
