package models

// Requests for TTV HTTP endpoints. Defined in domain for consistency and reuse.

type RunCampaignRequest struct {
	Planet string `json:"planet" validate:"required"`
	// RemoveBaseline defaults to true when omitted. A pointer keeps an
	// explicit false distinguishable from absence, so the raw series stays
	// requestable.
	RemoveBaseline     *bool  `json:"remove_baseline"`
	InsertZeroEpoch    bool   `json:"insert_zero_epoch"`
	AnchorEpochToFirst bool   `json:"anchor_epoch_to_first"`
	Overwrite          string `json:"overwrite" default:"fail" validate:"omitempty,oneof=fail overwrite skip"`
}

// BaselineRemoved resolves the optional baseline flag; omitted means true.
func (r *RunCampaignRequest) BaselineRemoved() bool {
	return r.RemoveBaseline == nil || *r.RemoveBaseline
}

// OverwritePolicy resolves the overwrite field; omitted means fail.
func (r *RunCampaignRequest) OverwritePolicy() OverwritePolicy {
	if r.Overwrite == "" {
		return OverwriteFail
	}
	return OverwritePolicy(r.Overwrite)
}

type PlanetRequest struct {
	Name string `param:"name" json:"name" validate:"required"`
}

type SeriesRequest struct {
	CampaignID string `param:"id" json:"campaign_id" validate:"required"`
}

type TransitsRequest struct {
	CampaignID string `param:"id" json:"campaign_id" validate:"required"`
	Limit      int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}
