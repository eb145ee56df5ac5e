// Package lightcurve retrieves segmented photometry from the data-validation
// archive: per-transit time and flux windows for one catalog target, ordered
// chronologically.
package lightcurve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TTVPull/internal/domain/models"
	"TTVPull/internal/services/ratelimit"
	"TTVPull/pkg/cache"
	phttp "TTVPull/pkg/http"
	"TTVPull/pkg/logger"
)

// Option configures Client.
type Option func(*Client)

// WithCache enables caching of light-curve windows.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

// WithLimiter throttles outgoing archive requests.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(cl *Client) { cl.log = log }
}

// Client fetches segmented light curves over HTTP.
type Client struct {
	baseURL string
	http    *phttp.Client
	cache   cache.Service
	ttl     time.Duration
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// New creates an archive client for baseURL.
func New(baseURL string, httpc *phttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpc,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transitWindow struct {
	Times []float64 `json:"times"`
	Flux  []float64 `json:"flux"`
}

type transitsResponse struct {
	TargetID int64           `json:"target_id"`
	Sectors  []int           `json:"sectors"`
	Transits []transitWindow `json:"transits"`
}

// Transits returns the archive's per-transit windows for a target, in
// chronological order. Window boundaries are the archive's concern; callers
// see them as opaque observations.
func (c *Client) Transits(ctx context.Context, catalogID int64) ([]models.TransitObservation, error) {
	key := cache.Key("lightcurve", catalogID)
	if c.cache != nil {
		var cached []models.TransitObservation
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.baseURL, 5, 2); err != nil {
			return nil, err
		}
	}

	var resp transitsResponse
	u := fmt.Sprintf("%s/%d/transits/", c.baseURL, catalogID)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("transits for %d: %w", catalogID, err)
	}
	if len(resp.Transits) == 0 {
		return nil, phttp.NotFoundErrorf("no transit windows for target %d", catalogID)
	}

	obs := make([]models.TransitObservation, len(resp.Transits))
	for i, w := range resp.Transits {
		if len(w.Times) != len(w.Flux) {
			return nil, phttp.UpstreamErrorf("transit %d: %d times vs %d flux samples", i, len(w.Times), len(w.Flux))
		}
		obs[i] = models.TransitObservation{Index: i, Times: w.Times, Flux: w.Flux}
	}
	c.log.Info("light curve retrieved",
		logger.Int("target_id", int(catalogID)),
		logger.Int("transits", len(obs)),
		logger.Int("sectors", len(resp.Sectors)))

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, obs, c.ttl)
	}
	return obs, nil
}
