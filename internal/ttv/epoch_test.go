package ttv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"TTVPull/internal/domain/models"
	"TTVPull/pkg/uncert"
)

func refEphemeris() models.Ephemeris {
	return models.Ephemeris{
		ZeroEpoch: uncert.New(2458000.5, 0.001),
		Period:    uncert.New(3.5, 0.0001),
	}
}

func TestEpochDeterministic(t *testing.T) {
	tc := 2458000.5 + 7*3.5 + 0.0004

	first, err := Epoch(tc, 2458000.5, 3.5)
	require.NoError(t, err)
	second, err := Epoch(tc, 2458000.5, 3.5)
	require.NoError(t, err)

	require.Equal(t, 7, first)
	require.Equal(t, first, second)
}

func TestEpochRoundsHalfAwayFromZero(t *testing.T) {
	n, err := Epoch(100.0+0.5, 100.0, 1.0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = Epoch(100.0-0.5, 100.0, 1.0)
	require.NoError(t, err)
	require.Equal(t, -1, n)
}

func TestEpochInvalidPeriod(t *testing.T) {
	_, err := Epoch(2458000.5, 2458000.5, 0)
	require.ErrorIs(t, err, ErrInvalidEphemeris)

	_, err = Epoch(2458000.5, 2458000.5, -3.5)
	require.ErrorIs(t, err, ErrInvalidEphemeris)
}

func TestAssignEpochsMonotonic(t *testing.T) {
	eph := refEphemeris()

	// gap-free chronological sequence
	ests := make([]models.TransitCenterEstimate, 6)
	for i := range ests {
		ests[i] = models.TransitCenterEstimate{
			ObservationIndex: i,
			Tc:               uncert.New(eph.ZeroEpoch.N+float64(i)*eph.Period.N, 0.002),
		}
	}

	obs, err := AssignEpochs(ests, eph)
	require.NoError(t, err)
	require.Len(t, obs, 6)
	for i := 1; i < len(obs); i++ {
		require.Equal(t, 1, obs[i].Epoch-obs[i-1].Epoch)
	}
}

func TestAssignEpochsGapsAreLegal(t *testing.T) {
	eph := refEphemeris()

	ests := []models.TransitCenterEstimate{}
	for i, n := range []int{0, 5, 6, 8, 9} {
		ests = append(ests, models.TransitCenterEstimate{
			ObservationIndex: i,
			Tc:               uncert.New(eph.ZeroEpoch.N+float64(n)*eph.Period.N, 0.002),
		})
	}

	obs, err := AssignEpochs(ests, eph)
	require.NoError(t, err)

	got := make([]int, len(obs))
	for i, o := range obs {
		got[i] = o.Epoch
	}
	require.Equal(t, []int{0, 5, 6, 8, 9}, got)
}

func TestAssignEpochsDuplicateEpoch(t *testing.T) {
	eph := refEphemeris()

	// two windows aliasing onto transit 3
	ests := []models.TransitCenterEstimate{
		{ObservationIndex: 0, Tc: uncert.New(eph.ZeroEpoch.N+3*eph.Period.N, 0.002)},
		{ObservationIndex: 1, Tc: uncert.New(eph.ZeroEpoch.N+3*eph.Period.N+0.01, 0.002)},
	}

	_, err := AssignEpochs(ests, eph)
	var dup *DuplicateEpochError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, 3, dup.Epoch)
	require.Equal(t, []int{0, 1}, dup.Indices)
}

func TestAssignEpochsInvalidEphemerisFailsFast(t *testing.T) {
	eph := models.Ephemeris{ZeroEpoch: uncert.Exact(2458000.5), Period: uncert.Exact(0)}

	obs, err := AssignEpochs([]models.TransitCenterEstimate{
		{ObservationIndex: 0, Tc: uncert.Exact(2458000.5)},
	}, eph)
	require.ErrorIs(t, err, ErrInvalidEphemeris)
	require.Nil(t, obs)
}
