package ttv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"TTVPull/internal/domain/models"
	"TTVPull/pkg/uncert"
)

func linearObservations(eph models.Ephemeris, epochs []int, stderr float64) []models.EpochedObservation {
	obs := make([]models.EpochedObservation, 0, len(epochs))
	for _, n := range epochs {
		obs = append(obs, models.EpochedObservation{
			Epoch: n,
			Tc:    uncert.New(eph.ZeroEpoch.N+float64(n)*eph.Period.N, stderr),
		})
	}
	return obs
}

func TestConflictingOptionsRejected(t *testing.T) {
	eph := refEphemeris()
	obs := linearObservations(eph, []int{0, 1, 2}, 0.002)

	s, err := ComputeResiduals(obs, eph, Options{
		InsertZeroEpoch:    true,
		AnchorEpochToFirst: true,
	})
	require.ErrorIs(t, err, ErrConflictingOptions)
	require.Nil(t, s)
}

func TestResidualsExactlyLinearScenario(t *testing.T) {
	// catalog period 3.5 ± 0.0001 d, zero epoch 2458000.5 ± 0.001;
	// transits 0, 5, 6, 8, 9 observed (two gaps), stderr 0.002 d each.
	eph := refEphemeris()
	obs := linearObservations(eph, []int{0, 5, 6, 8, 9}, 0.002)

	s, err := ComputeResiduals(obs, eph, Options{RemoveBaseline: true})
	require.NoError(t, err)
	require.Equal(t, []int{0, 5, 6, 8, 9}, s.Epochs)
	for i, r := range s.Residuals {
		require.InDelta(t, 0, r, 1e-6, "epoch %d", s.Epochs[i])
	}
}

func TestResidualErrorsGrowLinearly(t *testing.T) {
	eph := refEphemeris()
	obs := linearObservations(eph, []int{0, 5, 6, 8, 9}, 0.002)

	s, err := ComputeResiduals(obs, eph, Options{RemoveBaseline: true})
	require.NoError(t, err)

	for i, n := range s.Epochs {
		want := (0.002 + eph.Period.S*float64(n)) * SecondsPerDay
		require.InDelta(t, want, s.Errors[i], 1e-9)
	}
}

func TestBaselineRemovalIdempotent(t *testing.T) {
	eph := refEphemeris()
	obs := linearObservations(eph, []int{0, 1, 2, 3, 4}, 0.002)
	// perturbation with zero sum and zero slope, so the raw series is
	// already zero-mean
	obs[0].Tc.N += 10.0 / SecondsPerDay
	obs[2].Tc.N -= 20.0 / SecondsPerDay
	obs[4].Tc.N += 10.0 / SecondsPerDay

	raw, err := ComputeResiduals(obs, eph, Options{})
	require.NoError(t, err)
	removed, err := ComputeResiduals(obs, eph, Options{RemoveBaseline: true})
	require.NoError(t, err)

	var mean float64
	for _, r := range raw.Residuals {
		mean += r
	}
	mean /= float64(len(raw.Residuals))
	require.InDelta(t, 0, mean, 1e-9)

	for i := range raw.Residuals {
		require.InDelta(t, raw.Residuals[i], removed.Residuals[i], 1e-9)
	}
}

func TestInsertZeroEpoch(t *testing.T) {
	eph := refEphemeris()
	obs := linearObservations(eph, []int{3, 4, 5}, 0.002)

	s, err := ComputeResiduals(obs, eph, Options{RemoveBaseline: true, InsertZeroEpoch: true})
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())
	require.Equal(t, 0, s.Epochs[0])
	require.Zero(t, s.Residuals[0])
	require.InDelta(t, eph.ZeroEpoch.S*SecondsPerDay, s.Errors[0], 1e-9)
	require.Equal(t, []int{0, 3, 4, 5}, s.Epochs)
}

func TestAnchorEpochToFirst(t *testing.T) {
	eph := refEphemeris()
	obs := linearObservations(eph, []int{7, 9, 12}, 0.002)

	s, err := ComputeResiduals(obs, eph, Options{RemoveBaseline: true, AnchorEpochToFirst: true})
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 5}, s.Epochs)
}

func TestResidualsDetectInjectedTTV(t *testing.T) {
	eph := refEphemeris()
	obs := linearObservations(eph, []int{0, 1, 2, 3, 4, 5, 6, 7}, 0.002)

	// inject a sinusoidal timing signal with 90 s amplitude
	for i := range obs {
		obs[i].Tc.N += 90.0 / SecondsPerDay * math.Sin(2*math.Pi*float64(i)/4)
	}

	s, err := ComputeResiduals(obs, eph, Options{RemoveBaseline: true})
	require.NoError(t, err)

	var peak float64
	for _, r := range s.Residuals {
		if math.Abs(r) > peak {
			peak = math.Abs(r)
		}
	}
	require.Greater(t, peak, 60.0)
	require.Less(t, peak, 120.0)
}
