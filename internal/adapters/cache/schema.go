package cache

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/adapters/geocode"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Create the Postgres tables backing the geocode cache.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		formatted_address TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_geocode_cache_updated_at
	ON geocode_cache(updated_at);
	`

	statements := []string{
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// One known address in a seed file.
type AddressSeed struct {
	Address          string  `json:"address"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address"`
}

// Parse and validate a JSON seed file into cache entries keyed by
// normalized address.
func LoadSeeds(jsonPath string) (map[string]ports.GeocodeResult, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seeds: read %q: %w", jsonPath, err)
	}

	var data []AddressSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seeds: parse json: %w", err)
	}

	entries := make(map[string]ports.GeocodeResult, len(data))
	for i, item := range data {
		key := geocode.Normalize(item.Address)
		if key == "" {
			return nil, fmt.Errorf("load seeds: item at index %d: address cannot be empty", i+1)
		}

		loc := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if !loc.Valid() {
			return nil, fmt.Errorf("load seeds: item at index %d: coordinate out of range: %s", i+1, loc)
		}

		formatted := strings.TrimSpace(item.FormattedAddress)
		if formatted == "" {
			formatted = strings.TrimSpace(item.Address)
		}
		entries[key] = ports.GeocodeResult{Location: loc, FormattedAddress: formatted}
	}

	return entries, nil
}

// Populate a geocode cache from a JSON seed file. Returns the number of entries written.
func SeedFromJSON(ctx context.Context, c ports.GeocodeCache, jsonPath string) (int, error) {
	entries, err := LoadSeeds(jsonPath)
	if err != nil {
		return 0, err
	}
	if err := c.PutMany(ctx, entries); err != nil {
		return 0, fmt.Errorf("seed geocode cache: %w", err)
	}
	return len(entries), nil
}
