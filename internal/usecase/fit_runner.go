package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"TTVPull/internal/domain/models"
	drepo "TTVPull/internal/domain/repository"
	dservice "TTVPull/internal/domain/service"
	"TTVPull/internal/ttv"
	"TTVPull/pkg/dispatch"
	"TTVPull/pkg/logger"
)

// FitRunner fans single-transit fits over a bounded worker pool. Results land
// in index-addressed slots, so the collected estimates come out in
// chronological order no matter how the scheduler interleaves workers, and a
// failed fit is recorded against its observation instead of aborting the
// batch.
type FitRunner struct {
	fitter  dservice.TransitFitter
	workers int
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewFitRunner creates a FitRunner with the given concurrency.
func NewFitRunner(fitter dservice.TransitFitter, workers int, metrics drepo.Metrics, log *logger.Logger) *FitRunner {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FitRunner{fitter: fitter, workers: workers, metrics: metrics, log: log}
}

// Run fits every observation and returns the successful estimates in
// observation order plus the report of skipped ones. onDone, if non-nil, is
// called after each finished fit with the running completion count. Run
// returns an error only when ctx is cancelled; fit failures are data, not
// errors. On cancellation the estimates completed so far are still returned
// alongside ctx.Err(); finished fits stay valid, and observations that never
// ran are simply absent rather than reported as failures.
func (r *FitRunner) Run(
	ctx context.Context,
	planet string,
	eph models.Ephemeris,
	obs []models.TransitObservation,
	onDone func(done int),
) ([]models.TransitCenterEstimate, models.FailureReport, error) {
	var done int64
	task := func(ctx context.Context, i int) (models.TransitCenterEstimate, error) {
		start := time.Now()
		est, err := r.fitOne(ctx, eph, obs[i])
		if r.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "failed"
			}
			r.metrics.RecordFit(outcome, time.Since(start).Seconds())
		}
		if onDone != nil {
			onDone(int(atomic.AddInt64(&done, 1)))
		}
		return est, err
	}

	results, errs := dispatch.ForEach(ctx, len(obs), r.workers, task)

	estimates := make([]models.TransitCenterEstimate, 0, len(obs))
	var report models.FailureReport
	for i, err := range errs {
		if err == nil {
			estimates = append(estimates, results[i])
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Never dispatched, or aborted mid-flight. Not a fit verdict.
			continue
		}
		report.Skipped++
		report.Failures = append(report.Failures, models.FitFailure{
			ObservationIndex: obs[i].Index,
			Reason:           failureReason(err),
		})
		r.log.Warn("single-transit fit skipped",
			logger.String("planet", planet),
			logger.Int("observation", obs[i].Index),
			logger.Error(err))
	}
	if r.metrics != nil && report.Skipped > 0 {
		r.metrics.RecordSkipped(planet, report.Skipped)
	}
	if err := ctx.Err(); err != nil {
		return estimates, report, err
	}
	return estimates, report, nil
}

// fitOne predicts the transit center for one window from the reference
// ephemeris, then delegates to the fitting service.
func (r *FitRunner) fitOne(ctx context.Context, eph models.Ephemeris, o models.TransitObservation) (models.TransitCenterEstimate, error) {
	ep, err := ttv.Epoch(meanTime(o.Times), eph.ZeroEpoch.N, eph.Period.N)
	if err != nil {
		return models.TransitCenterEstimate{}, &ttv.SingleTransitFitError{
			ObservationIndex: o.Index,
			Reason:           "cannot place window on ephemeris",
			Err:              err,
		}
	}
	return r.fitter.FitCenter(ctx, o, eph.Predict(ep), eph.Period)
}

func meanTime(ts []float64) float64 {
	if len(ts) == 0 {
		return 0
	}
	var sum float64
	for _, t := range ts {
		sum += t
	}
	return sum / float64(len(ts))
}

func failureReason(err error) string {
	var fitErr *ttv.SingleTransitFitError
	if errors.As(err, &fitErr) {
		return fitErr.Reason
	}
	return err.Error()
}
