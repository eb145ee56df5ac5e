package service

import (
	"context"

	"TTVPull/internal/domain/models"
	"TTVPull/pkg/uncert"
)

// Catalog resolves planet names against the exoplanet archive.
type Catalog interface {
	Resolve(ctx context.Context, name string) (int64, error)
	Properties(ctx context.Context, name string) (*models.PlanetProperties, error)
}

// Archive retrieves segmented light curves for a catalog target.
type Archive interface {
	Transits(ctx context.Context, catalogID int64) ([]models.TransitObservation, error)
}

// TransitFitter estimates one transit center from a windowed observation.
// Implementations wrap the external optimizer/sampler service; a degenerate
// posterior is reported as a *ttv.SingleTransitFitError.
type TransitFitter interface {
	FitCenter(ctx context.Context, obs models.TransitObservation, predicted uncert.Value, period uncert.Value) (models.TransitCenterEstimate, error)
}

// ProgressSink receives pipeline progress events. Implementations must not
// block the pipeline; slow consumers drop events.
type ProgressSink interface {
	Notify(ev models.ProgressEvent)
}
