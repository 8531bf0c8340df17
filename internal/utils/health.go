package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Probes    []Probe   `json:"probes"`
}

type Probe struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker probes the backing stores of the chatter API: Postgres
// for the rows, Redis for the caches. Any failing probe degrades the
// overall status.
type HealthChecker struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	var probes []Probe
	overallStatus := "healthy"

	if h.DB != nil {
		probe := Probe{Name: "PostgreSQL"}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		sqlDB, _ := h.DB.DB()
		if err := sqlDB.PingContext(ctx); err != nil {
			probe.Status = "down"
			probe.Message = err.Error()
			overallStatus = "degraded"
		} else {
			probe.Status = "up"
		}
		probes = append(probes, probe)
		cancel()
	}

	if h.Redis != nil {
		probe := Probe{Name: "Redis"}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			probe.Status = "down"
			probe.Message = err.Error()
			overallStatus = "degraded"
		} else {
			probe.Status = "up"
		}
		probes = append(probes, probe)
		cancel()
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Probes:    probes,
	}
}
