package geocode

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/httpx"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Config{
		Name:            "geocoder-test",
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	})
}

func TestHTTPGeocoderResolvesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode", r.URL.Path)
		assert.Equal(t, "12 Main St", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lat": 40.1, "lng": -74.2, "formattedAddress": "12 Main Street, Springfield"}`))
	}))
	defer srv.Close()

	g, err := NewHTTPGeocoder(srv.URL+"/", testClient())
	require.NoError(t, err)

	res, err := g.Geocode(context.Background(), "  12   Main St ")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 40.1, Lon: -74.2}, res.Location)
	assert.Equal(t, "12 Main Street, Springfield", res.FormattedAddress)
}

func TestHTTPGeocoderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "nowhere" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"formattedAddress": "somewhere"}`))
	}))
	defer srv.Close()

	g, err := NewHTTPGeocoder(srv.URL, testClient())
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)

	_, err = g.Geocode(context.Background(), "no coordinates")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
}

func TestNewHTTPGeocoderValidates(t *testing.T) {
	_, err := NewHTTPGeocoder(" ", testClient())
	require.Error(t, err)

	_, err = NewHTTPGeocoder("http://localhost", nil)
	require.Error(t, err)
}

func TestStaticGeocoderNormalizesLookups(t *testing.T) {
	g := NewStaticGeocoder(map[string]domain.Coordinates{
		"12 Main St": {Lat: 1, Lon: 2},
	})

	res, err := g.Geocode(context.Background(), "12  MAIN st")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, res.Location)

	_, err = g.Geocode(context.Background(), "13 Main St")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
	assert.Equal(t, int64(2), g.Calls())
}

func TestStaticGeocoderFoldsAccents(t *testing.T) {
	g := NewStaticGeocoder(map[string]domain.Coordinates{
		"8 Rue du Café": {Lat: 48.85, Lon: 2.35},
	})

	res, err := g.Geocode(context.Background(), "8 rue du cafe")
	require.NoError(t, err)
	assert.Equal(t, "8 Rue du Café", res.FormattedAddress)
}

func TestStaticGeocoderToleratesTypos(t *testing.T) {
	g := NewStaticGeocoder(map[string]domain.Coordinates{
		"12 Main St":    {Lat: 1, Lon: 2},
		"40 Harbor Way": {Lat: 3, Lon: 4},
	})

	res, err := g.Geocode(context.Background(), "12 Mian St")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, res.Location)

	// House numbers must agree even when the rest is close.
	_, err = g.Geocode(context.Background(), "14 Main St")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)

	_, err = g.Geocode(context.Background(), "12 Elm Ave")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "12 main st", Normalize("  12\tMAIN   St "))
	assert.Equal(t, "8 rue du cafe", Normalize("8 Rue du Café"))
	assert.Equal(t, "", Normalize("   "))
}

type mapCache struct {
	mu      sync.Mutex
	m       map[string]ports.GeocodeResult
	failGet bool
}

func (c *mapCache) GetMany(_ context.Context, addrs []string) (map[string]ports.GeocodeResult, error) {
	if c.failGet {
		return nil, errors.New("cache down")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]ports.GeocodeResult{}
	for _, a := range addrs {
		if r, ok := c.m[a]; ok {
			out[a] = r
		}
	}
	return out, nil
}

func (c *mapCache) PutMany(_ context.Context, entries map[string]ports.GeocodeResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range entries {
		c.m[k] = v
	}
	return nil
}

func TestCachingGeocoderServesRepeatsFromCache(t *testing.T) {
	next := NewStaticGeocoder(map[string]domain.Coordinates{"12 Main St": {Lat: 1, Lon: 2}})
	c := &mapCache{m: map[string]ports.GeocodeResult{}}
	g := NewCachingGeocoder(next, c, zerolog.Nop())

	for i := 0; i < 3; i++ {
		res, err := g.Geocode(context.Background(), "12 Main St")
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.Location.Lat)
	}

	assert.Equal(t, int64(1), next.Calls())
	assert.Contains(t, c.m, "12 main st")
}

func TestCachingGeocoderFallsThroughOnCacheError(t *testing.T) {
	next := NewStaticGeocoder(map[string]domain.Coordinates{"12 Main St": {Lat: 1, Lon: 2}})
	c := &mapCache{m: map[string]ports.GeocodeResult{}, failGet: true}
	g := NewCachingGeocoder(next, c, zerolog.Nop())

	_, err := g.Geocode(context.Background(), "12 Main St")
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "unknown")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
}
