package models

import "time"

// OverwritePolicy decides what happens when a campaign result already exists
// for the same planet. Replaces the interactive overwrite prompt of older
// tooling with caller-supplied configuration.
type OverwritePolicy string

const (
	OverwriteFail OverwritePolicy = "fail"
	OverwriteYes  OverwritePolicy = "overwrite"
	OverwriteSkip OverwritePolicy = "skip"
)

// ResidualOptions are the policy switches of the residual computation,
// carried on campaign requests.
type ResidualOptions struct {
	RemoveBaseline     bool `json:"remove_baseline" query:"remove_baseline" default:"true"`
	InsertZeroEpoch    bool `json:"insert_zero_epoch" query:"insert_zero_epoch"`
	AnchorEpochToFirst bool `json:"anchor_epoch_to_first" query:"anchor_epoch_to_first"`
}

// CampaignResult is the full outcome of one analysis run: the refit
// ephemeris, the timing-residual series, the per-transit centers that
// produced it, and the report of skipped observations.
type CampaignResult struct {
	ID           string               `json:"id"`
	Planet       string               `json:"planet"`
	Catalog      Ephemeris            `json:"catalog_ephemeris"`
	Refit        Ephemeris            `json:"refit_ephemeris"`
	Observations []EpochedObservation `json:"observations"`
	Series       *TTVSeries           `json:"series"`
	Failures     FailureReport        `json:"failures"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
}

// ProgressStage identifies the pipeline stage of a progress event.
type ProgressStage string

const (
	StageCatalog    ProgressStage = "catalog"
	StageLightCurve ProgressStage = "lightcurve"
	StageFitting    ProgressStage = "fitting"
	StageTTV        ProgressStage = "ttv"
	StageDone       ProgressStage = "done"
	StageFailed     ProgressStage = "failed"
)

// ProgressEvent is emitted as the pipeline advances; during the fitting
// stage one event is emitted per completed (or failed) single-transit fit.
type ProgressEvent struct {
	CampaignID string        `json:"campaign_id"`
	Planet     string        `json:"planet"`
	Stage      ProgressStage `json:"stage"`
	Done       int           `json:"done"`
	Total      int           `json:"total"`
	Message    string        `json:"message,omitempty"`
	At         time.Time     `json:"at"`
}
