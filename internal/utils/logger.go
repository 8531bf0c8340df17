package utils

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger picks the zap preset by ENV so local runs stay human-readable
// while deployments emit JSON.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
