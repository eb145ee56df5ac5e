// Package catalog implements the exoplanet-archive lookup: planet name to
// catalog ID, and the property record that seeds the reference ephemeris.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"TTVPull/internal/domain/models"
	"TTVPull/internal/services/ratelimit"
	"TTVPull/pkg/cache"
	phttp "TTVPull/pkg/http"
	"TTVPull/pkg/logger"
)

// The archive stores transit times as MJD; everything downstream works in
// BJD, so records are shifted on ingest.
const mjdToBJDOffset = 2400000.5

// Option configures Client.
type Option func(*Client)

// WithCache enables caching of catalog responses.
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

// Client resolves planets against an exo.MAST-style archive API.
type Client struct {
	baseURL string
	http    *phttp.Client
	cache   cache.Service
	ttl     time.Duration
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// New creates a catalog client for baseURL.
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

type identifiersResponse struct {
	CanonicalName string `json:"canonicalName"`
	TessID        int64  `json:"tessID"`
}

// propertyRecord mirrors one entry of the archive's properties array. Upper
// and lower errors come separately; the pipeline keeps max(upper, lower) as
// a symmetric stderr.
type propertyRecord struct {
	OrbitalPeriod      float64 `json:"orbital_period"`
	OrbitalPeriodLower float64 `json:"orbital_period_lower"`
	OrbitalPeriodUpper float64 `json:"orbital_period_upper"`
	TransitTime        float64 `json:"transit_time"` // MJD
	TransitTimeLower   float64 `json:"transit_time_lower"`
	TransitTimeUpper   float64 `json:"transit_time_upper"`
	StellarMass        float64 `json:"Ms"`
	PlanetMass         float64 `json:"Mp"`
	MassReference      string  `json:"Mp_ref"`
}

// Resolve returns the catalog (TIC) ID for a planet name.
func (c *Client) Resolve(ctx context.Context, name string) (int64, error) {
	key := cache.Key("catalog:id", name)
	if c.cache != nil {
		var id int64
		if err := c.cache.Get(ctx, key, &id); err == nil {
			return id, nil
		}
	}
	if err := c.wait(ctx); err != nil {
		return 0, err
	}

	var resp identifiersResponse
	q := url.Values{"name": {name}}
	if err := c.http.GetJSON(ctx, c.baseURL+"/identifiers/", q, &resp); err != nil {
		return 0, fmt.Errorf("resolve %q: %w", name, err)
	}
	if resp.TessID == 0 {
		return 0, phttp.NotFoundErrorf("planet %q not found in catalog", name)
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, key, resp.TessID, c.ttl)
	}
	return resp.TessID, nil
}

// Properties fetches the catalog record for a planet and converts it to the
// internal representation: BJD transit time, symmetric errors.
func (c *Client) Properties(ctx context.Context, name string) (*models.PlanetProperties, error) {
	key := cache.Key("catalog:prop", name)
	if c.cache != nil {
		var cached models.PlanetProperties
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	id, err := c.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var records []propertyRecord
	u := c.baseURL + "/" + url.PathEscape(name) + "/properties/"
	if err := c.http.GetJSON(ctx, u, nil, &records); err != nil {
		return nil, fmt.Errorf("properties %q: %w", name, err)
	}
	if len(records) == 0 {
		return nil, phttp.NotFoundErrorf("no property record for planet %q", name)
	}
	rec := records[0]

	p := &models.PlanetProperties{
		Name:             name,
		CatalogID:        id,
		OrbitalPeriod:    rec.OrbitalPeriod,
		OrbitalPeriodErr: maxf(rec.OrbitalPeriodLower, rec.OrbitalPeriodUpper),
		TransitTime:      rec.TransitTime + mjdToBJDOffset,
		TransitTimeErr:   maxf(rec.TransitTimeLower, rec.TransitTimeUpper),
		StellarMass:      rec.StellarMass,
		PlanetMass:       rec.PlanetMass,
		MassReference:    rec.MassReference,
	}
	c.log.Debug("catalog record fetched",
		logger.String("planet", name),
		logger.Float64("period", p.OrbitalPeriod),
		logger.Float64("t0", p.TransitTime))

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, p, c.ttl)
	}
	return p, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, c.baseURL, 5, 2)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
