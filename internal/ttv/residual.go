package ttv

import (
	"TTVPull/internal/domain/models"
	"TTVPull/pkg/uncert"
)

// SecondsPerDay converts day-denominated timing quantities to seconds.
const SecondsPerDay = 86400.0

// Options are the policy switches of the residual computation.
// InsertZeroEpoch and AnchorEpochToFirst are mutually exclusive.
type Options struct {
	// RemoveBaseline selects the zero-mean series as the reported TTV
	// instead of the raw detrended residuals.
	RemoveBaseline bool

	// InsertZeroEpoch prepends a synthetic anchor point at epoch 0 with
	// residual 0 and the zero epoch's uncertainty as error bar.
	InsertZeroEpoch bool

	// AnchorEpochToFirst re-indexes epochs so the first observed epoch
	// becomes 0.
	AnchorEpochToFirst bool
}

// ComputeResiduals turns the epoched observations into the O−C residual
// series, in seconds. A secondary linear drift is fit on shifted pairs and
// removed; the per-point error bar grows linearly in epoch with the
// reference period's uncertainty:
//
//	err_i = (tc_i.S + period.S*(epoch_i-epoch_0)) * 86400
//
// The zeroEpoch argument is only consulted when InsertZeroEpoch is set.
func ComputeResiduals(obs []models.EpochedObservation, eph models.Ephemeris, opts Options) (*models.TTVSeries, error) {
	if opts.InsertZeroEpoch && opts.AnchorEpochToFirst {
		return nil, ErrConflictingOptions
	}
	if len(obs) < 2 {
		return nil, ErrInsufficientData
	}

	a, b, err := detrend(obs)
	if err != nil {
		return nil, err
	}

	ep0 := obs[0].Epoch
	tc0 := obs[0].Tc.N

	raw := make([]float64, len(obs))
	errs := make([]float64, len(obs))
	var mean float64
	for i, o := range obs {
		dn := float64(o.Epoch - ep0)
		raw[i] = (o.Tc.N - tc0 - a*dn + b) * SecondsPerDay
		errs[i] = (o.Tc.S + eph.Period.S*dn) * SecondsPerDay
		mean += raw[i]
	}
	mean /= float64(len(raw))

	residuals := raw
	if opts.RemoveBaseline {
		residuals = make([]float64, len(raw))
		for i := range raw {
			residuals[i] = raw[i] - mean
		}
	}

	epochs := make([]int, len(obs))
	for i, o := range obs {
		epochs[i] = o.Epoch
	}
	if opts.AnchorEpochToFirst {
		for i := range epochs {
			epochs[i] -= ep0
		}
	}

	s := &models.TTVSeries{Epochs: epochs, Residuals: residuals, Errors: errs}
	if opts.InsertZeroEpoch {
		s = insertZeroEpoch(s, eph.ZeroEpoch)
	}
	return s, nil
}

// insertZeroEpoch prepends the reference transit itself as a zero-residual
// anchor; its error bar is the zero epoch's own uncertainty.
func insertZeroEpoch(s *models.TTVSeries, zeroEpoch uncert.Value) *models.TTVSeries {
	out := &models.TTVSeries{
		Epochs:    make([]int, 0, s.Len()+1),
		Residuals: make([]float64, 0, s.Len()+1),
		Errors:    make([]float64, 0, s.Len()+1),
	}
	out.Epochs = append(out.Epochs, 0)
	out.Residuals = append(out.Residuals, 0)
	out.Errors = append(out.Errors, zeroEpoch.S*SecondsPerDay)

	out.Epochs = append(out.Epochs, s.Epochs...)
	out.Residuals = append(out.Residuals, s.Residuals...)
	out.Errors = append(out.Errors, s.Errors...)
	return out
}
