package models

// TTVSeries is the timing-residual series: parallel arrays ordered by epoch,
// one triple per epoched observation. Residuals and errors are in seconds.
// Derived data; recomputed rather than mutated when the ephemeris or the
// baseline policy changes.
type TTVSeries struct {
	Epochs    []int     `json:"epochs"`
	Residuals []float64 `json:"residuals"`
	Errors    []float64 `json:"errors"`
}

// Len returns the number of points in the series.
func (s *TTVSeries) Len() int { return len(s.Epochs) }
