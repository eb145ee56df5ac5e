package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TTVPull/pkg/cache"
	phttp "TTVPull/pkg/http"
)

func newTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/identifiers/", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		require.Equal(t, "WASP-12 b", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"canonicalName":"WASP-12 b","tessID":86396382}`))
	})
	mux.HandleFunc("/WASP-12%20b/properties/", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"orbital_period": 1.09142,
			"orbital_period_lower": 0.00001,
			"orbital_period_upper": 0.00003,
			"transit_time": 56176.6683,
			"transit_time_lower": 0.0004,
			"transit_time_upper": 0.0002,
			"Ms": 1.434,
			"Mp": 1.47,
			"Mp_ref": "Collins et al. 2017"
		}]`))
	})
	return httptest.NewServer(mux)
}

func TestPropertiesConvertsRecord(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, phttp.NewClient())
	p, err := c.Properties(context.Background(), "WASP-12 b")
	require.NoError(t, err)

	require.Equal(t, int64(86396382), p.CatalogID)
	// MJD record shifted to BJD
	require.InDelta(t, 56176.6683+2400000.5, p.TransitTime, 1e-9)
	// symmetric proxy keeps the larger of the asymmetric errors
	require.InDelta(t, 0.00003, p.OrbitalPeriodErr, 1e-12)
	require.InDelta(t, 0.0004, p.TransitTimeErr, 1e-12)
	require.Equal(t, "Collins et al. 2017", p.MassReference)
}

func TestPropertiesCached(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	defer srv.Close()

	mem := cache.NewMemoryCache()
	c := New(srv.URL, phttp.NewClient(), WithCache(mem, time.Minute))

	_, err := c.Properties(context.Background(), "WASP-12 b")
	require.NoError(t, err)
	first := hits

	_, err = c.Properties(context.Background(), "WASP-12 b")
	require.NoError(t, err)
	require.Equal(t, first, hits, "second lookup must be served from cache")
}

func TestResolveUnknownPlanet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"canonicalName":"","tessID":0}`))
	}))
	defer srv.Close()

	c := New(srv.URL, phttp.NewClient())
	_, err := c.Resolve(context.Background(), "Nibiru b")
	require.Error(t, err)
}
