// Package transitfit adapts the external transit-fitting service. One call
// fits one windowed observation: the service runs a global differential
// evolution pass followed by MCMC sampling and returns the posterior sample
// table; this side builds the priors and reduces the table to a
// transit-center estimate.
package transitfit

import (
	"context"
	"fmt"
	"math"

	"TTVPull/internal/domain/models"
	"TTVPull/internal/ttv"
	phttp "TTVPull/pkg/http"
	"TTVPull/pkg/logger"
	"TTVPull/pkg/uncert"
)

// Params are the sampler settings forwarded with every fit request.
type Params struct {
	PriorWidth  float64 // fallback width of the tc prior, days
	Iterations  int     // global optimizer iterations
	Population  int     // global optimizer population
	MCMCLength  int
	MCMCThin    int
	MCMCRepeats int
}

// Option configures Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client posts observations to the fitting service.
type Client struct {
	baseURL string
	http    *phttp.Client
	params  Params
	log     *logger.Logger
}

// New creates a fitter client for baseURL.
func New(baseURL string, httpc *phttp.Client, params Params, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    httpc,
		params:  params,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// prior is one parameter prior: kind "NP" carries (mean, std) in A/B, kind
// "UP" carries (low, high).
type prior struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
}

type fitRequest struct {
	Times  []float64 `json:"times"`
	Flux   []float64 `json:"flux"`
	Priors []prior   `json:"priors"`

	Iterations  int `json:"niter"`
	Population  int `json:"npop"`
	MCMCLength  int `json:"mcmc_length"`
	MCMCThin    int `json:"mcmc_thin"`
	MCMCRepeats int `json:"mcmc_repeats"`
}

type fitResponse struct {
	// Posterior sample columns keyed by parameter name; "tc" is required.
	Samples map[string][]float64 `json:"samples"`
}

// FitCenter fits one observation and summarizes the tc posterior as
// (mean, std). A missing, empty or non-finite posterior is a per-observation
// *ttv.SingleTransitFitError; transport failures are wrapped the same way so
// the batch runner treats both as a skipped observation.
func (c *Client) FitCenter(ctx context.Context, obs models.TransitObservation, predicted uncert.Value, period uncert.Value) (models.TransitCenterEstimate, error) {
	tcWidth := predicted.S
	if tcWidth <= 0 {
		tcWidth = c.params.PriorWidth
	}
	req := fitRequest{
		Times: obs.Times,
		Flux:  obs.Flux,
		Priors: []prior{
			{Name: "tc", Kind: "NP", A: predicted.N, B: tcWidth},
			{Name: "p", Kind: "NP", A: period.N, B: period.S},
			{Name: "rho", Kind: "UP", A: 0, B: 1},
			{Name: "k2", Kind: "UP", A: 0, B: 0.04},
		},
		Iterations:  c.params.Iterations,
		Population:  c.params.Population,
		MCMCLength:  c.params.MCMCLength,
		MCMCThin:    c.params.MCMCThin,
		MCMCRepeats: c.params.MCMCRepeats,
	}

	var resp fitResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/fit", req, &resp); err != nil {
		return models.TransitCenterEstimate{}, &ttv.SingleTransitFitError{
			ObservationIndex: obs.Index,
			Reason:           "fit service request failed",
			Err:              err,
		}
	}

	tc, ok := resp.Samples["tc"]
	if !ok || len(tc) == 0 {
		return models.TransitCenterEstimate{}, &ttv.SingleTransitFitError{
			ObservationIndex: obs.Index,
			Reason:           "posterior has no tc samples",
		}
	}
	mean, std, err := summarize(tc)
	if err != nil {
		return models.TransitCenterEstimate{}, &ttv.SingleTransitFitError{
			ObservationIndex: obs.Index,
			Reason:           err.Error(),
		}
	}

	c.log.Debug("single-transit fit done",
		logger.Int("observation", obs.Index),
		logger.Float64("tc", mean),
		logger.Float64("tc_err", std))
	return models.TransitCenterEstimate{
		ObservationIndex: obs.Index,
		Tc:               uncert.New(mean, std),
	}, nil
}

// summarize reduces a posterior sample column to (mean, sample std).
func summarize(samples []float64) (float64, float64, error) {
	n := float64(len(samples))
	var sum float64
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("posterior contains non-finite samples")
		}
		sum += v
	}
	mean := sum / n
	if len(samples) == 1 {
		return mean, 0, nil
	}
	var ss float64
	for _, v := range samples {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1)), nil
}
