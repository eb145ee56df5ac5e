package models

import (
	"encoding/json"
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/require"
)

func TestRunCampaignRequestExplicitFalseSurvivesDefaults(t *testing.T) {
	var req RunCampaignRequest
	require.NoError(t, json.Unmarshal([]byte(`{"planet":"WASP-12 b","remove_baseline":false}`), &req))
	require.NoError(t, defaults.Set(&req))

	require.False(t, req.BaselineRemoved(), "explicit false must not be reset to the default")
	require.Equal(t, OverwriteFail, req.OverwritePolicy())
}

func TestRunCampaignRequestOmittedFieldsResolve(t *testing.T) {
	var req RunCampaignRequest
	require.NoError(t, json.Unmarshal([]byte(`{"planet":"WASP-12 b"}`), &req))
	require.NoError(t, defaults.Set(&req))

	require.True(t, req.BaselineRemoved())
	require.Equal(t, "fail", req.Overwrite)
}

func TestRunCampaignRequestResolvesWithoutDefaults(t *testing.T) {
	// the Kafka path decodes JSON without running defaults.Set; resolution
	// must come out the same as over HTTP
	var req RunCampaignRequest
	require.NoError(t, json.Unmarshal([]byte(`{"planet":"WASP-12 b"}`), &req))

	require.True(t, req.BaselineRemoved())
	require.Equal(t, OverwriteFail, req.OverwritePolicy())

	var explicit RunCampaignRequest
	require.NoError(t, json.Unmarshal([]byte(`{"planet":"WASP-12 b","remove_baseline":false,"overwrite":"skip"}`), &explicit))
	require.False(t, explicit.BaselineRemoved())
	require.Equal(t, OverwriteSkip, explicit.OverwritePolicy())
}
