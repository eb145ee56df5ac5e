// Package ttv is the epoch-assignment and TTV-detrending engine: it turns
// per-transit center-time estimates into transit numbers, a refit linear
// ephemeris, and baseline-removed timing residuals with propagated
// uncertainties. All functions are pure and deterministic; concurrency and
// I/O live in the surrounding usecase and service layers.
package ttv

import (
	"math"

	"TTVPull/internal/domain/models"
)

// Epoch maps a transit-center time to the nearest integer transit number
// under the linear ephemeris T(n) = zeroEpoch + n*period. Ties round half
// away from zero (math.Round). Period must be positive.
func Epoch(t, zeroEpoch, period float64) (int, error) {
	if period <= 0 {
		return 0, ErrInvalidEphemeris
	}
	return int(math.Round((t - zeroEpoch) / period)), nil
}

// AssignEpochs applies Epoch to every transit-center estimate and returns
// the epoched sequence in input (chronological) order. The ephemeris is
// validated once before any epoch is computed, so an invalid period never
// produces a partial table. Distinct observations landing on the same epoch
// are a data-quality error, returned as *DuplicateEpochError.
func AssignEpochs(estimates []models.TransitCenterEstimate, eph models.Ephemeris) ([]models.EpochedObservation, error) {
	if eph.Period.N <= 0 {
		return nil, ErrInvalidEphemeris
	}

	obs := make([]models.EpochedObservation, 0, len(estimates))
	seen := make(map[int]int, len(estimates)) // epoch -> observation index
	for _, est := range estimates {
		n, err := Epoch(est.Tc.N, eph.ZeroEpoch.N, eph.Period.N)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[n]; dup {
			return nil, &DuplicateEpochError{Epoch: n, Indices: []int{prev, est.ObservationIndex}}
		}
		seen[n] = est.ObservationIndex
		obs = append(obs, models.EpochedObservation{Epoch: n, Tc: est.Tc})
	}
	return obs, nil
}
