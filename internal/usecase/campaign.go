package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TTVPull/internal/domain/models"
	drepo "TTVPull/internal/domain/repository"
	dservice "TTVPull/internal/domain/service"
	"TTVPull/internal/ttv"
	"TTVPull/pkg/logger"
)

// CampaignInput is everything a single analysis run needs.
type CampaignInput struct {
	Planet    string
	Options   ttv.Options
	Overwrite models.OverwritePolicy
}

// NewCampaignInput resolves a campaign request into pipeline input. The HTTP
// and Kafka entry points both go through here so omitted fields resolve the
// same way on either path.
func NewCampaignInput(req *models.RunCampaignRequest) CampaignInput {
	return CampaignInput{
		Planet: req.Planet,
		Options: ttv.Options{
			RemoveBaseline:     req.BaselineRemoved(),
			InsertZeroEpoch:    req.InsertZeroEpoch,
			AnchorEpochToFirst: req.AnchorEpochToFirst,
		},
		Overwrite: req.OverwritePolicy(),
	}
}

// CampaignRunner drives the full pipeline for one planet: catalog lookup,
// light-curve retrieval, parallel single-transit fits, epoch assignment,
// ephemeris refit and the residual series, then persistence and publishing.
type CampaignRunner struct {
	catalog  dservice.Catalog
	archive  dservice.Archive
	fits     *FitRunner
	store    drepo.CampaignStore
	pub      drepo.Publisher
	progress dservice.ProgressSink
	metrics  drepo.Metrics
	log      *logger.Logger
}

// NewCampaignRunner wires the pipeline. store, pub, progress and metrics may
// be nil; the corresponding side effects are skipped.
func NewCampaignRunner(
	catalog dservice.Catalog,
	archive dservice.Archive,
	fits *FitRunner,
	store drepo.CampaignStore,
	pub drepo.Publisher,
	progress dservice.ProgressSink,
	metrics drepo.Metrics,
	log *logger.Logger,
) *CampaignRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &CampaignRunner{
		catalog:  catalog,
		archive:  archive,
		fits:     fits,
		store:    store,
		pub:      pub,
		progress: progress,
		metrics:  metrics,
		log:      log,
	}
}

// Run executes one campaign end to end.
func (r *CampaignRunner) Run(ctx context.Context, in CampaignInput) (*models.CampaignResult, error) {
	id := uuid.NewString()
	started := time.Now().UTC()
	log := r.log

	res, err := r.run(ctx, id, in)
	if err != nil {
		r.notify(id, in.Planet, models.StageFailed, 0, 0, err.Error())
		if r.metrics != nil {
			r.metrics.RecordError("campaign")
		}
		log.Error("campaign failed",
			logger.String("campaign", id),
			logger.String("planet", in.Planet),
			logger.Error(err))
		return nil, err
	}

	res.ID = id
	res.StartedAt = started
	res.FinishedAt = time.Now().UTC()

	if r.store != nil {
		if err := r.store.Store(ctx, res, in.Overwrite); err != nil {
			return nil, fmt.Errorf("store campaign %s: %w", id, err)
		}
	}
	if r.pub != nil {
		if err := r.pub.PublishSeries(ctx, res); err != nil {
			// downstream consumers can re-read from storage
			log.Warn("series publish failed", logger.String("campaign", id), logger.Error(err))
		}
	}
	if r.metrics != nil {
		r.metrics.RecordCampaign(time.Since(started).Seconds())
		r.metrics.RecordRefinedPeriod(in.Planet, res.Refit.Period.N)
	}

	r.notify(id, in.Planet, models.StageDone, res.Series.Len(), res.Series.Len(), "")
	log.Info("campaign finished",
		logger.String("campaign", id),
		logger.String("planet", in.Planet),
		logger.Int("points", res.Series.Len()),
		logger.Int("skipped", res.Failures.Skipped),
		logger.Duration("took", time.Since(started)))
	return res, nil
}

func (r *CampaignRunner) run(ctx context.Context, id string, in CampaignInput) (*models.CampaignResult, error) {
	r.notify(id, in.Planet, models.StageCatalog, 0, 0, "")
	props, err := r.catalog.Properties(ctx, in.Planet)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	catalogEph := props.Ephemeris()

	r.notify(id, in.Planet, models.StageLightCurve, 0, 0, "")
	obs, err := r.archive.Transits(ctx, props.CatalogID)
	if err != nil {
		return nil, fmt.Errorf("light curve retrieval: %w", err)
	}

	r.notify(id, in.Planet, models.StageFitting, 0, len(obs), "")
	estimates, report, err := r.fits.Run(ctx, in.Planet, catalogEph, obs, func(done int) {
		r.notify(id, in.Planet, models.StageFitting, done, len(obs), "")
	})
	if err != nil {
		return nil, err
	}

	r.notify(id, in.Planet, models.StageTTV, 0, 0, "")
	epoched, err := ttv.AssignEpochs(estimates, catalogEph)
	if err != nil {
		return nil, fmt.Errorf("epoch assignment: %w", err)
	}
	refit, err := ttv.RefitEphemeris(epoched)
	if err != nil {
		return nil, fmt.Errorf("ephemeris refit: %w", err)
	}
	series, err := ttv.ComputeResiduals(epoched, catalogEph, in.Options)
	if err != nil {
		return nil, fmt.Errorf("residual computation: %w", err)
	}

	return &models.CampaignResult{
		Planet:       in.Planet,
		Catalog:      catalogEph,
		Refit:        refit,
		Observations: epoched,
		Series:       series,
		Failures:     report,
	}, nil
}

func (r *CampaignRunner) notify(id, planet string, stage models.ProgressStage, done, total int, msg string) {
	if r.progress == nil {
		return
	}
	r.progress.Notify(models.ProgressEvent{
		CampaignID: id,
		Planet:     planet,
		Stage:      stage,
		Done:       done,
		Total:      total,
		Message:    msg,
		At:         time.Now().UTC(),
	})
}
