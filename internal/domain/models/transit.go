package models

import "TTVPull/pkg/uncert"

// TransitObservation is one windowed transit cut from the light curve by the
// archive's segmentation. Index is chronological; windows are opaque here.
type TransitObservation struct {
	Index int       `json:"index"`
	Times []float64 `json:"times"` // BJD
	Flux  []float64 `json:"flux"`  // normalized
}

// TransitCenterEstimate is the posterior summary of one single-transit fit.
type TransitCenterEstimate struct {
	ObservationIndex int          `json:"observation_index"`
	Tc               uncert.Value `json:"tc"` // BJD
}

// EpochedObservation pairs a transit-center estimate with its integer
// transit number relative to the reference ephemeris.
type EpochedObservation struct {
	Epoch int          `json:"epoch"`
	Tc    uncert.Value `json:"tc"`
}

// FitFailure records one skipped observation and why its fit was rejected.
type FitFailure struct {
	ObservationIndex int    `json:"observation_index"`
	Reason           string `json:"reason"`
}

// FailureReport summarizes observations excluded from the epoched sequence.
// Skipped fits are reported here, never silently dropped, so a subset can be
// retried with different sampler parameters without redoing the batch.
type FailureReport struct {
	Skipped  int          `json:"skipped"`
	Failures []FitFailure `json:"failures,omitempty"`
}

// Indices returns the skipped observation indices in recording order.
func (r *FailureReport) Indices() []int {
	idx := make([]int, len(r.Failures))
	for i, f := range r.Failures {
		idx[i] = f.ObservationIndex
	}
	return idx
}
