package cache

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/db"
	"delivery-route-optimizer/internal/ports"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Postgres-backed tests run only when TEST_DATABASE_URL points at a
// disposable database.
func openTestDB(t *testing.T) *SQLGeocodeCache {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(ctx, conn))

	return NewSQLGeocodeCache(conn)
}

func TestSQLGeocodeCacheRoundTrip(t *testing.T) {
	c := openTestDB(t)
	ctx := context.Background()

	prefix := "test-" + uuid.NewString() + " "
	a, b := prefix+"12 main st", prefix+"40 harbor way"
	t.Cleanup(func() {
		_, _ = c.DB.Exec(`DELETE FROM geocode_cache WHERE address = ANY($1::text[])`, []string{a, b})
	})

	// Distinct lat, lon and formatted values catch a mis-ordered Scan.
	require.NoError(t, c.PutMany(ctx, map[string]ports.GeocodeResult{
		a: {Location: domain.Coordinates{Lat: 33.45, Lon: -112.07}, FormattedAddress: "12 Main St"},
		b: {Location: domain.Coordinates{Lat: -12.5, Lon: 130.8}, FormattedAddress: "40 Harbor Way"},
	}))

	got, err := c.GetMany(ctx, []string{a, b, a, prefix + "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ports.GeocodeResult{Location: domain.Coordinates{Lat: 33.45, Lon: -112.07}, FormattedAddress: "12 Main St"}, got[a])
	assert.Equal(t, ports.GeocodeResult{Location: domain.Coordinates{Lat: -12.5, Lon: 130.8}, FormattedAddress: "40 Harbor Way"}, got[b])

	// Upsert replaces every column.
	require.NoError(t, c.PutMany(ctx, map[string]ports.GeocodeResult{
		a: {Location: domain.Coordinates{Lat: 1, Lon: 2}, FormattedAddress: "12 Main Street"},
	}))
	got, err = c.GetMany(ctx, []string{a})
	require.NoError(t, err)
	assert.Equal(t, ports.GeocodeResult{Location: domain.Coordinates{Lat: 1, Lon: 2}, FormattedAddress: "12 Main Street"}, got[a])
}

func TestSQLGeocodeCacheRejectsEmptyKey(t *testing.T) {
	c := openTestDB(t)

	err := c.PutMany(context.Background(), map[string]ports.GeocodeResult{" ": {}})
	assert.Error(t, err)
}

func TestSQLGeocodeCacheWithoutDB(t *testing.T) {
	c := NewSQLGeocodeCache(nil)

	_, err := c.GetMany(context.Background(), []string{"a"})
	assert.Error(t, err)
	assert.Error(t, c.PutMany(context.Background(), map[string]ports.GeocodeResult{"a": {}}))
}

func TestUniqueKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueKeys([]string{"a", " ", "b", "a", ""}))
}
