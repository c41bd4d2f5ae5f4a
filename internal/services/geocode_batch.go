package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var errNoGeocoder = errors.New("no geocoder configured")

type GeocodeOptions struct {
	// Requests resolved concurrently per batch. Zero means 5.
	BatchSize int
	// Minimum spacing between individual geocoder calls. Zero disables it.
	CallDelay time.Duration
	// Pause between batches. Zero disables it.
	BatchDelay time.Duration
	// Per-call timeout. Zero means no extra deadline.
	Timeout time.Duration
}

func DefaultGeocodeOptions() GeocodeOptions {
	return GeocodeOptions{
		BatchSize:  5,
		CallDelay:  100 * time.Millisecond,
		BatchDelay: time.Second,
		Timeout:    5 * time.Second,
	}
}

// Resolve every request lacking a Location.
//
// Requests that already carry a coordinate pass through untouched. The rest
// are geocoded in batches; a failed or timed-out call drops the request and
// records its address in failed. Input order is preserved in resolved.
// The only error is ctx cancellation.
func GeocodeAll(
	ctx context.Context,
	requests []domain.DeliveryRequest,
	geocoder ports.Geocoder,
	opts GeocodeOptions,
) (resolved []domain.DeliveryRequest, failed []string, err error) {
	defer obs.Time(ctx, "geocode.all")(&err)

	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}

	var limiter *rate.Limiter
	if opts.CallDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.CallDelay), 1)
	}

	pending := make([]int, 0, len(requests))
	for i, r := range requests {
		if r.Location == nil {
			pending = append(pending, i)
		}
	}

	results := make([]*domain.DeliveryRequest, len(requests))
	errs := make([]error, len(requests))
	for i := range requests {
		if requests[i].Location != nil {
			r := requests[i]
			results[i] = &r
		}
	}

	for start := 0; start < len(pending); start += opts.BatchSize {
		if start > 0 && opts.BatchDelay > 0 {
			if err := sleepCtx(ctx, opts.BatchDelay); err != nil {
				return nil, nil, err
			}
		}

		end := min(start+opts.BatchSize, len(pending))

		var wg sync.WaitGroup
		for _, idx := range pending[start:end] {
			idx := idx
			wg.Add(1)
			go func() {
				defer wg.Done()
				r, err := geocodeOne(ctx, requests[idx], geocoder, limiter, opts.Timeout)
				if err != nil {
					errs[idx] = err
					return
				}
				results[idx] = &r
			}()
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	logger := zerolog.Ctx(ctx)
	resolved = make([]domain.DeliveryRequest, 0, len(requests))
	for i, r := range results {
		if r != nil {
			resolved = append(resolved, *r)
			continue
		}
		obs.GeocodeFailures.Inc()
		label := requests[i].Label()
		logger.Warn().
			Str("address", label).
			Err(errs[i]).
			Msg("geocoding failed, excluding delivery")
		failed = append(failed, label)
	}

	return resolved, failed, nil
}

func geocodeOne(
	ctx context.Context,
	req domain.DeliveryRequest,
	geocoder ports.Geocoder,
	limiter *rate.Limiter,
	timeout time.Duration,
) (domain.DeliveryRequest, error) {
	if geocoder == nil {
		return domain.DeliveryRequest{}, errNoGeocoder
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return domain.DeliveryRequest{}, err
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return domain.DeliveryRequest{}, fmt.Errorf("geocode %q: %w", req.Address, err)
	}
	if !res.Location.Valid() {
		return domain.DeliveryRequest{}, fmt.Errorf("geocode %q: invalid coordinate %s", req.Address, res.Location)
	}

	return req.Resolved(res.Location, res.FormattedAddress), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
