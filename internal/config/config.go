package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Return the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Engine tuning. Loaded from the YAML file named by OPTIMIZER_CONFIG, then
// overridden by environment variables.
type Tuning struct {
	MaxStops          int           `yaml:"max_stops"`
	FuelPricePerLiter float64       `yaml:"fuel_price_per_liter"`
	MatrixConcurrency int           `yaml:"matrix_concurrency"`
	ProviderTimeout   time.Duration `yaml:"provider_timeout"`
	ProviderInterval  time.Duration `yaml:"provider_interval"`
	Geocode           struct {
		BatchSize  int           `yaml:"batch_size"`
		CallDelay  time.Duration `yaml:"call_delay"`
		BatchDelay time.Duration `yaml:"batch_delay"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"geocode"`
}

func DefaultTuning() Tuning {
	var t Tuning
	t.MaxStops = 25
	t.FuelPricePerLiter = 1.5
	t.MatrixConcurrency = 5
	t.ProviderTimeout = 5 * time.Second
	t.ProviderInterval = 50 * time.Millisecond
	t.Geocode.BatchSize = 5
	t.Geocode.CallDelay = 100 * time.Millisecond
	t.Geocode.BatchDelay = time.Second
	t.Geocode.Timeout = 5 * time.Second
	return t
}

type Config struct {
	Port        string
	LogLevel    string
	LogPretty   bool
	DatabaseURL string
	RedisURL    string

	GeocodeCacheSize int
	GeocodeCacheTTL  time.Duration
	// JSON file of known addresses served without calling the geocoder.
	GeocodeSeedPath string

	GeocoderURL    string
	GeocoderAPIKey string
	TrafficURL     string
	TrafficAPIKey  string

	// Requests per minute per client IP on the optimize endpoint.
	RateLimitPerMinute int

	Tuning Tuning
}

// Read the service configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:            Get("PORT", "8080"),
		LogLevel:        Get("LOG_LEVEL", "info"),
		LogPretty:       Get("LOG_PRETTY", "") == "1",
		DatabaseURL:     Get("DATABASE_URL", ""),
		RedisURL:        Get("REDIS_URL", ""),
		GeocodeSeedPath: Get("GEOCODE_SEED_PATH", ""),
		GeocoderURL:     Get("GEOCODER_URL", ""),
		GeocoderAPIKey:  Get("GEOCODER_API_KEY", ""),
		TrafficURL:      Get("TRAFFIC_URL", ""),
		TrafficAPIKey:   Get("TRAFFIC_API_KEY", ""),
	}

	var err error
	if cfg.GeocodeCacheSize, err = getInt("GEOCODE_CACHE_SIZE", 1024); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.GeocodeCacheTTL, err = getDuration("GEOCODE_CACHE_TTL", 30*24*time.Hour); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg.Tuning, err = LoadTuning(Get("OPTIMIZER_CONFIG", ""))
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// Read tuning from a YAML file. An empty path yields the defaults.
// Fields missing from the file keep their defaults; env overrides apply last.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Tuning{}, fmt.Errorf("read tuning %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &t); err != nil {
			return Tuning{}, fmt.Errorf("parse tuning %q: %w", path, err)
		}
	}

	var err error
	if t.MaxStops, err = getInt("MAX_STOPS", t.MaxStops); err != nil {
		return Tuning{}, err
	}
	if t.FuelPricePerLiter, err = getFloat("FUEL_PRICE", t.FuelPricePerLiter); err != nil {
		return Tuning{}, err
	}
	if t.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", t.ProviderTimeout); err != nil {
		return Tuning{}, err
	}

	if t.MaxStops <= 0 {
		return Tuning{}, fmt.Errorf("max_stops must be positive, got %d", t.MaxStops)
	}
	return t, nil
}
