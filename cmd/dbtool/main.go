package main

import (
	"context"
	"delivery-route-optimizer/internal/adapters/cache"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/platform/db"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// dbtool creates the geocode cache schema and seeds it with known addresses.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("GEOCODE_SEED_PATH", "data/seeds/addresses.json"), "JSON file of known addresses; empty skips seeding")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer conn.Close()

	log.Info().Msg("initializing schema")
	if err := cache.InitSchema(ctx, conn); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}

	if *seedPath == "" {
		log.Info().Msg("no seed file given, done")
		return
	}

	n, err := cache.SeedFromJSON(ctx, cache.NewSQLGeocodeCache(conn), *seedPath)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Int("addresses", n).Str("path", *seedPath).Msg("seeding complete")
}
