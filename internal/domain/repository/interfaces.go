package repository

import (
	"context"
	"time"

	"TTVPull/internal/domain/models"
)

// CampaignStore persists finished analysis campaigns and their series.
type CampaignStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, res *models.CampaignResult, policy models.OverwritePolicy) error
	Get(ctx context.Context, id string) (*models.CampaignResult, error)
	LatestForPlanet(ctx context.Context, planet string) (*models.CampaignResult, error)
	List(ctx context.Context, planet string, from, to time.Time, limit int) ([]*models.CampaignResult, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher pushes finished series to downstream consumers.
type Publisher interface {
	PublishSeries(ctx context.Context, res *models.CampaignResult) error
	Close() error
}

// Metrics is the instrumentation surface of the pipeline.
type Metrics interface {
	RecordFit(outcome string, seconds float64)
	RecordCampaign(seconds float64)
	RecordSkipped(planet string, n int)
	RecordRefinedPeriod(planet string, days float64)
	RecordError(kind string)
}
