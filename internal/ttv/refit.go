package ttv

import (
	"TTVPull/internal/domain/models"
	"TTVPull/pkg/uncert"
)

// LinearFit fits y = a*x + b by ordinary least squares in closed form.
// Points are unweighted; per-point uncertainties do not enter the baseline
// fit. Requires at least 2 points with distinct x values.
func LinearFit(xs, ys []float64) (a, b float64, err error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, 0, ErrInsufficientData
	}

	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}

	denom := n*sxx - sx*sx
	if denom == 0 {
		// all x identical
		return 0, 0, ErrInsufficientData
	}

	a = (n*sxy - sx*sy) / denom
	b = (sy - a*sx) / n
	return a, b, nil
}

// RefitEphemeris fits tc(epoch) = a*epoch + b over the epoched observations.
// The slope is the refined period and the intercept the refined zero epoch.
// The OLS point estimates carry no uncertainty of their own; whether the
// refit supersedes the catalog ephemeris is the caller's policy.
func RefitEphemeris(obs []models.EpochedObservation) (models.Ephemeris, error) {
	xs := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = float64(o.Epoch)
		ys[i] = o.Tc.N
	}

	a, b, err := LinearFit(xs, ys)
	if err != nil {
		return models.Ephemeris{}, err
	}
	return models.Ephemeris{
		ZeroEpoch: uncert.Exact(b),
		Period:    uncert.Exact(a),
	}, nil
}

// detrend fits the secondary linear drift on epoch- and time-shifted pairs
// (epoch-epoch[0], tc-tc[0]). This is the trend removed from the residuals;
// it does not replace the primary ephemeris estimate.
func detrend(obs []models.EpochedObservation) (a, b float64, err error) {
	xs := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = float64(o.Epoch - obs[0].Epoch)
		ys[i] = o.Tc.N - obs[0].Tc.N
	}
	return LinearFit(xs, ys)
}
