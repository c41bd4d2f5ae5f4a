// Command optimize plans one route from a JSON run file and prints it.
//
//	optimize -in run.json [-seeds addresses.json] [-out route.json]
//
// The run file has the same shape as the body of POST /v1/routes:optimize.
package main

import (
	"context"
	"delivery-route-optimizer/internal/api/dto"
	"delivery-route-optimizer/internal/app"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/services"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var version = "dev"

func main() {
	in := flag.String("in", "", "run file (JSON); - reads stdin")
	out := flag.String("out", "", "write the route here instead of stdout")
	seeds := flag.String("seeds", "", "JSON file of known addresses")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	_ = godotenv.Load()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := obs.NewLogger("route-optimizer-cli", version, level, true)

	if *in == "" {
		logger.Fatal().Msg("-in is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx)

	if err := run(ctx, *in, *out, *seeds, logger); err != nil {
		logger.Fatal().Err(err).Msg("optimize failed")
	}
}

func run(ctx context.Context, inPath, outPath, seedPath string, logger zerolog.Logger) error {
	req, err := readRun(inPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if seedPath != "" {
		cfg.GeocodeSeedPath = seedPath
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	deliveries, vehicle, err := req.ToDomain()
	if err != nil {
		return fmt.Errorf("run file: %w", err)
	}

	in := services.OptimizeRequest{Deliveries: deliveries, Vehicle: vehicle, StartTime: time.Now()}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	if req.ReferenceTime != nil {
		in.ReferenceTime = *req.ReferenceTime
	}

	res, err := a.Optimizer.Optimize(ctx, in)
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewOptimizeResponse(res.Route, res.Unresolved, res.Duplicates))
}

func readRun(path string) (dto.OptimizeRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return dto.OptimizeRequest{}, fmt.Errorf("open run file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req dto.OptimizeRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return dto.OptimizeRequest{}, fmt.Errorf("parse run file: %w", err)
	}
	if len(req.Deliveries) == 0 {
		return dto.OptimizeRequest{}, errors.New("run file has no deliveries")
	}
	return req, nil
}
