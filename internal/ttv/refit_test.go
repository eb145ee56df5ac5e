package ttv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"TTVPull/internal/domain/models"
	"TTVPull/pkg/uncert"
)

func TestLinearFitExactOnSyntheticData(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{100, 102, 104, 106}

	a, b, err := LinearFit(xs, ys)
	require.NoError(t, err)
	require.InDelta(t, 2.0, a, 1e-9)
	require.InDelta(t, 100.0, b, 1e-9)
}

func TestLinearFitInsufficientData(t *testing.T) {
	_, _, err := LinearFit([]float64{1}, []float64{2})
	require.ErrorIs(t, err, ErrInsufficientData)

	// two points, same x
	_, _, err = LinearFit([]float64{3, 3}, []float64{1, 2})
	require.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = LinearFit([]float64{1, 2, 3}, []float64{1, 2})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRefitEphemerisRecoversLinearModel(t *testing.T) {
	obs := make([]models.EpochedObservation, 0, 4)
	for n := 0; n < 4; n++ {
		obs = append(obs, models.EpochedObservation{
			Epoch: n,
			Tc:    uncert.New(100+2*float64(n), 0.002),
		})
	}

	eph, err := RefitEphemeris(obs)
	require.NoError(t, err)
	require.InDelta(t, 2.0, eph.Period.N, 1e-9)
	require.InDelta(t, 100.0, eph.ZeroEpoch.N, 1e-9)
}

func TestRefitEphemerisWithEpochGaps(t *testing.T) {
	// transits 0, 5, 6, 8, 9 of a 3.5 d planet
	obs := []models.EpochedObservation{}
	for _, n := range []int{0, 5, 6, 8, 9} {
		obs = append(obs, models.EpochedObservation{
			Epoch: n,
			Tc:    uncert.New(2458000.5+float64(n)*3.5, 0.002),
		})
	}

	eph, err := RefitEphemeris(obs)
	require.NoError(t, err)
	require.InDelta(t, 3.5, eph.Period.N, 1e-9)
	require.InDelta(t, 2458000.5, eph.ZeroEpoch.N, 1e-6)
}

func TestRefitEphemerisTooFewObservations(t *testing.T) {
	_, err := RefitEphemeris([]models.EpochedObservation{
		{Epoch: 0, Tc: uncert.Exact(2458000.5)},
	})
	require.ErrorIs(t, err, ErrInsufficientData)
}
