package traffic

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/httpx"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	a = domain.Coordinates{Lat: 33.45, Lon: -112.07}
	b = domain.Coordinates{Lat: 33.50, Lon: -112.10}
	c = domain.Coordinates{Lat: 33.55, Lon: -112.00}
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Config{
		Name:            "traffic-test",
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	})
}

func TestHTTPProviderQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/traffic", r.URL.Path)

		var body legRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, a.Lat, body.Origin.Lat)
		assert.Equal(t, b.Lon, body.Destination.Lng)

		_, _ = w.Write([]byte(`{"distanceMeters": 5200, "durationSeconds": 600, "durationInTrafficSeconds": 900}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, testClient())
	require.NoError(t, err)

	res, err := p.Query(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 5200.0, res.DistanceMeters)
	assert.Equal(t, 600.0, res.DurationSeconds)
	assert.Equal(t, 900.0, res.DurationInTrafficSeconds)
}

func TestHTTPProviderQueryManyKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/traffic/matrix", r.URL.Path)

		var body rowRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Destinations, 2)

		_, _ = w.Write([]byte(`{"results": [
			{"distanceMeters": 100, "durationSeconds": 10},
			{"distanceMeters": 200, "durationSeconds": 20, "durationInTrafficSeconds": 35}
		]}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, testClient())
	require.NoError(t, err)

	res, err := p.QueryMany(context.Background(), a, []domain.Coordinates{b, c})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 100.0, res[0].DistanceMeters)
	assert.Equal(t, 10.0, res[0].DurationInTrafficSeconds)
	assert.Equal(t, 35.0, res[1].DurationInTrafficSeconds)
}

func TestHTTPProviderRejectsIncompleteResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/traffic/matrix" {
			_, _ = w.Write([]byte(`{"results": [{"distanceMeters": 1, "durationSeconds": 1}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"durationSeconds": 60}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, testClient())
	require.NoError(t, err)

	_, err = p.Query(context.Background(), a, b)
	require.Error(t, err)

	_, err = p.QueryMany(context.Background(), a, []domain.Coordinates{b, c})
	require.Error(t, err)
}

func TestMockTrafficProvider(t *testing.T) {
	p := NewMockTrafficProvider([]MockLeg{
		{From: a, To: b, Meters: 1000, Seconds: 100, TrafficSeconds: 150},
	})

	res, err := p.Query(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 150.0, res.DurationInTrafficSeconds)

	_, err = p.Query(context.Background(), b, a)
	require.Error(t, err)

	_, err = p.QueryMany(context.Background(), a, []domain.Coordinates{b, c})
	require.Error(t, err)

	assert.Equal(t, int64(2), p.Queries())
	assert.Equal(t, int64(1), p.Batches())

	p.Err = errors.New("provider down")
	_, err = p.Query(context.Background(), a, b)
	require.ErrorContains(t, err, "provider down")
}
