package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("SOME_KEY", "   ")
	assert.Equal(t, "fallback", Get("SOME_KEY", "fallback"))

	t.Setenv("SOME_KEY", "value")
	assert.Equal(t, "value", Get("SOME_KEY", "fallback"))
}

func TestLoadTuningDefaults(t *testing.T) {
	tn, err := LoadTuning("")
	require.NoError(t, err)

	assert.Equal(t, 25, tn.MaxStops)
	assert.Equal(t, 1.5, tn.FuelPricePerLiter)
	assert.Equal(t, 5, tn.Geocode.BatchSize)
	assert.Equal(t, 100*time.Millisecond, tn.Geocode.CallDelay)
	assert.Equal(t, time.Second, tn.Geocode.BatchDelay)
}

func TestLoadTuningFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	body := "max_stops: 10\nfuel_price_per_liter: 2.1\ngeocode:\n  batch_size: 3\n  batch_delay: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("MAX_STOPS", "12")

	tn, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 12, tn.MaxStops)
	assert.Equal(t, 2.1, tn.FuelPricePerLiter)
	assert.Equal(t, 3, tn.Geocode.BatchSize)
	assert.Equal(t, 250*time.Millisecond, tn.Geocode.BatchDelay)
	assert.Equal(t, 100*time.Millisecond, tn.Geocode.CallDelay)
}

func TestLoadTuningRejectsBadValues(t *testing.T) {
	t.Setenv("MAX_STOPS", "zero")
	_, err := LoadTuning("")
	require.Error(t, err)

	t.Setenv("MAX_STOPS", "0")
	_, err = LoadTuning("")
	require.Error(t, err)
}
