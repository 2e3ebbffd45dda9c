package cache

import (
	"context"
	"time"

	"app/models"
)

// ForecastCache stores per-product forecast results between analysis runs.
type ForecastCache interface {
	Get(ctx context.Context, key string) (*models.ForecastResult, bool, error)
	Set(ctx context.Context, key string, value *models.ForecastResult, ttl time.Duration) error
}

// NoopForecastCache is used when no Redis is configured; every lookup
// misses.
type NoopForecastCache struct{}

func (NoopForecastCache) Get(_ context.Context, _ string) (*models.ForecastResult, bool, error) {
	return nil, false, nil
}

func (NoopForecastCache) Set(_ context.Context, _ string, _ *models.ForecastResult, _ time.Duration) error {
	return nil
}
