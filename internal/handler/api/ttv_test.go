package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"TTVPull/internal/domain/models"
	"TTVPull/internal/usecase"
	xlogger "TTVPull/pkg/logger"
	"TTVPull/pkg/uncert"
)

var testEph = models.Ephemeris{
	ZeroEpoch: uncert.New(2458000.5, 0.001),
	Period:    uncert.New(3.5, 0.0001),
}

type fixedCatalog struct{}

func (fixedCatalog) Resolve(context.Context, string) (int64, error) { return 42, nil }

func (fixedCatalog) Properties(_ context.Context, name string) (*models.PlanetProperties, error) {
	return &models.PlanetProperties{
		Name:             name,
		CatalogID:        42,
		OrbitalPeriod:    testEph.Period.N,
		OrbitalPeriodErr: testEph.Period.S,
		TransitTime:      testEph.ZeroEpoch.N,
		TransitTimeErr:   testEph.ZeroEpoch.S,
	}, nil
}

type fixedArchive struct{}

func (fixedArchive) Transits(context.Context, int64) ([]models.TransitObservation, error) {
	obs := make([]models.TransitObservation, 5)
	for n := 0; n < 5; n++ {
		tc := testEph.Predict(n).N
		obs[n] = models.TransitObservation{
			Index: n,
			Times: []float64{tc - 0.1, tc, tc + 0.1},
			Flux:  []float64{1.0, 0.99, 1.0},
		}
	}
	return obs, nil
}

// offsetFitter returns the predicted center shifted by +10 s for observation
// index 1 only, so the raw residual series has a nonzero mean.
type offsetFitter struct{}

func (offsetFitter) FitCenter(_ context.Context, obs models.TransitObservation, predicted uncert.Value, _ uncert.Value) (models.TransitCenterEstimate, error) {
	tc := predicted.N
	if obs.Index == 1 {
		tc += 10.0 / 86400
	}
	return models.TransitCenterEstimate{ObservationIndex: obs.Index, Tc: uncert.New(tc, 0.0005)}, nil
}

func newTestAPI(t *testing.T) *echo.Echo {
	t.Helper()
	runner := usecase.NewCampaignRunner(
		fixedCatalog{}, fixedArchive{},
		usecase.NewFitRunner(offsetFitter{}, 2, nil, nil),
		nil, nil, nil, nil, nil,
	)
	e := echo.New()
	NewTTVHandler(xlogger.Nop(), runner, fixedCatalog{}, nil).RegisterRoutes(e)
	return e
}

type campaignEnvelope struct {
	Status int                   `json:"status"`
	Data   models.CampaignResult `json:"data"`
}

func postCampaign(t *testing.T, e *echo.Echo, body string) models.CampaignResult {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env campaignEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, http.StatusCreated, env.Status)
	return env.Data
}

func seriesMean(s *models.TTVSeries) float64 {
	var sum float64
	for _, v := range s.Residuals {
		sum += v
	}
	return sum / float64(s.Len())
}

func TestRunCampaignRawSeriesRequestable(t *testing.T) {
	e := newTestAPI(t)

	res := postCampaign(t, e, `{"planet":"TOI-test b","remove_baseline":false,"overwrite":"overwrite"}`)
	require.Equal(t, 5, res.Series.Len())
	// the +10 s perturbation at epoch 1 leaves the raw series with an 8 s
	// mean; baseline removal would have zeroed it
	require.InDelta(t, 8.0, seriesMean(res.Series), 1e-3)
	require.InDelta(t, 4.0, res.Series.Residuals[0], 1e-3)
}

func TestRunCampaignBaselineRemovedByDefault(t *testing.T) {
	e := newTestAPI(t)

	res := postCampaign(t, e, `{"planet":"TOI-test b","overwrite":"overwrite"}`)
	require.Equal(t, 5, res.Series.Len())
	require.InDelta(t, 0.0, seriesMean(res.Series), 1e-3)
	require.InDelta(t, -4.0, res.Series.Residuals[0], 1e-3)
}
