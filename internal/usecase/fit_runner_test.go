package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"TTVPull/internal/domain/models"
	"TTVPull/internal/ttv"
	"TTVPull/pkg/uncert"
)

// stubFitter returns the exact predicted center, failing selected indices.
type stubFitter struct {
	mu    sync.Mutex
	fail  map[int]bool
	calls int
}

func (f *stubFitter) FitCenter(_ context.Context, obs models.TransitObservation, predicted uncert.Value, _ uncert.Value) (models.TransitCenterEstimate, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[obs.Index] {
		return models.TransitCenterEstimate{}, &ttv.SingleTransitFitError{
			ObservationIndex: obs.Index,
			Reason:           "posterior has no tc samples",
		}
	}
	return models.TransitCenterEstimate{
		ObservationIndex: obs.Index,
		Tc:               uncert.New(predicted.N, 0.0005),
	}, nil
}

func syntheticObservations(eph models.Ephemeris, epochs ...int) []models.TransitObservation {
	obs := make([]models.TransitObservation, len(epochs))
	for i, ep := range epochs {
		tc := eph.Predict(ep).N
		obs[i] = models.TransitObservation{
			Index: i,
			Times: []float64{tc - 0.1, tc, tc + 0.1},
			Flux:  []float64{1.0, 0.99, 1.0},
		}
	}
	return obs
}

func testEphemeris() models.Ephemeris {
	return models.Ephemeris{
		ZeroEpoch: uncert.New(2458000.5, 0.001),
		Period:    uncert.New(3.5, 0.0001),
	}
}

func TestFitRunnerOrderedResults(t *testing.T) {
	eph := testEphemeris()
	obs := syntheticObservations(eph, 0, 5, 6, 8, 9)
	r := NewFitRunner(&stubFitter{}, 3, nil, nil)

	estimates, report, err := r.Run(context.Background(), "TOI-test b", eph, obs, nil)
	require.NoError(t, err)
	require.Zero(t, report.Skipped)
	require.Len(t, estimates, 5)
	for i, est := range estimates {
		require.Equal(t, i, est.ObservationIndex, "estimates must keep observation order")
	}
}

func TestFitRunnerPartialFailure(t *testing.T) {
	eph := testEphemeris()
	obs := syntheticObservations(eph, 0, 5, 6, 8, 9)
	fitter := &stubFitter{fail: map[int]bool{2: true}}
	r := NewFitRunner(fitter, 2, nil, nil)

	var mu sync.Mutex
	var progress []int
	estimates, report, err := r.Run(context.Background(), "TOI-test b", eph, obs, func(done int) {
		mu.Lock()
		progress = append(progress, done)
		mu.Unlock()
	})
	require.NoError(t, err, "one failed fit must not abort the batch")

	require.Len(t, estimates, 4)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, []int{2}, report.Indices())
	require.NotEmpty(t, report.Failures[0].Reason)
	require.Equal(t, 5, fitter.calls)
	require.Len(t, progress, 5)
	require.Equal(t, 5, progress[len(progress)-1])

	// surviving estimates flow into epoch assignment untouched
	epoched, err := ttv.AssignEpochs(estimates, eph)
	require.NoError(t, err)
	require.Equal(t, []int{0, 5, 8, 9}, []int{epoched[0].Epoch, epoched[1].Epoch, epoched[2].Epoch, epoched[3].Epoch})
}

func TestFitRunnerCancelledContext(t *testing.T) {
	eph := testEphemeris()
	obs := syntheticObservations(eph, 0, 1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewFitRunner(&stubFitter{}, 2, nil, nil)
	_, report, err := r.Run(ctx, "TOI-test b", eph, obs, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, report.Skipped, "windows lost to cancellation are not fit failures")
}

// cancellingFitter succeeds until it has fit the observation at cancelAt,
// then cancels the shared context on its way out.
type cancellingFitter struct {
	cancel   context.CancelFunc
	cancelAt int
}

func (f *cancellingFitter) FitCenter(ctx context.Context, obs models.TransitObservation, predicted uncert.Value, _ uncert.Value) (models.TransitCenterEstimate, error) {
	if err := ctx.Err(); err != nil {
		return models.TransitCenterEstimate{}, err
	}
	if obs.Index == f.cancelAt {
		f.cancel()
	}
	return models.TransitCenterEstimate{
		ObservationIndex: obs.Index,
		Tc:               uncert.New(predicted.N, 0.0005),
	}, nil
}

func TestFitRunnerCancelledMidBatchKeepsCompleted(t *testing.T) {
	eph := testEphemeris()
	obs := syntheticObservations(eph, 0, 1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewFitRunner(&cancellingFitter{cancel: cancel, cancelAt: 1}, 1, nil, nil)
	estimates, report, err := r.Run(ctx, "TOI-test b", eph, obs, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, estimates, 2, "fits finished before cancellation stay valid")
	require.Equal(t, 0, estimates[0].ObservationIndex)
	require.Equal(t, 1, estimates[1].ObservationIndex)
	require.Zero(t, report.Skipped)
}

func TestFitRunnerAllFailed(t *testing.T) {
	eph := testEphemeris()
	obs := syntheticObservations(eph, 0, 1)
	fitter := &stubFitter{fail: map[int]bool{0: true, 1: true}}
	r := NewFitRunner(fitter, 2, nil, nil)

	estimates, report, err := r.Run(context.Background(), "TOI-test b", eph, obs, nil)
	require.NoError(t, err)
	require.Empty(t, estimates)
	require.Equal(t, 2, report.Skipped)

	// downstream refuses to refit an empty sequence
	_, err = ttv.RefitEphemeris(nil)
	require.ErrorIs(t, err, ttv.ErrInsufficientData)
}
