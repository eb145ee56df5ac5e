package ttv

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEphemeris is returned when epoch assignment is asked to
	// divide by a non-positive period. Raised before any epoch is computed.
	ErrInvalidEphemeris = errors.New("ttv: ephemeris period must be positive")

	// ErrInsufficientData is returned when fewer than 2 observations with
	// distinct epochs are available for the linear refit.
	ErrInsufficientData = errors.New("ttv: need at least 2 observations with distinct epochs")

	// ErrConflictingOptions is returned when mutually exclusive residual
	// options are set together.
	ErrConflictingOptions = errors.New("ttv: insert_zero_epoch and anchor_epoch_to_first are mutually exclusive")
)

// DuplicateEpochError reports two distinct observations resolving to the
// same integer epoch. That points at a wrong reference ephemeris or an
// aliasing window segmentation upstream, so it is surfaced instead of
// merging or overwriting either observation.
type DuplicateEpochError struct {
	Epoch   int
	Indices []int // observation indices that collided
}

func (e *DuplicateEpochError) Error() string {
	return fmt.Sprintf("ttv: observations %v resolve to the same epoch %d", e.Indices, e.Epoch)
}

// SingleTransitFitError records one observation whose external fit failed or
// returned a degenerate posterior. It never aborts the batch; the affected
// observation is excluded and reported.
type SingleTransitFitError struct {
	ObservationIndex int
	Reason           string
	Err              error
}

func (e *SingleTransitFitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ttv: fit of observation %d failed: %s: %v", e.ObservationIndex, e.Reason, e.Err)
	}
	return fmt.Sprintf("ttv: fit of observation %d failed: %s", e.ObservationIndex, e.Reason)
}

// Unwrap returns the underlying error.
func (e *SingleTransitFitError) Unwrap() error { return e.Err }
