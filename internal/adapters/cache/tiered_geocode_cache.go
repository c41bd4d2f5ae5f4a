package cache

import (
	"context"
	"delivery-route-optimizer/internal/ports"
	"errors"
)

// TieredGeocodeCache reads through an ordered list of caches, nearest first,
// and back-fills nearer tiers on a hit further down. Writes go to every tier.
type TieredGeocodeCache struct {
	tiers []ports.GeocodeCache
}

func NewTieredGeocodeCache(tiers ...ports.GeocodeCache) *TieredGeocodeCache {
	ts := make([]ports.GeocodeCache, 0, len(tiers))
	for _, t := range tiers {
		if t != nil {
			ts = append(ts, t)
		}
	}
	return &TieredGeocodeCache{tiers: ts}
}

func (t *TieredGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]ports.GeocodeResult, error) {
	out := make(map[string]ports.GeocodeResult, len(addresses))
	missing := uniqueKeys(addresses)

	var errs []error
	for i, tier := range t.tiers {
		if len(missing) == 0 {
			break
		}

		found, err := tier.GetMany(ctx, missing)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(found) == 0 {
			continue
		}

		for a, r := range found {
			out[a] = r
		}
		for _, nearer := range t.tiers[:i] {
			if err := nearer.PutMany(ctx, found); err != nil {
				errs = append(errs, err)
			}
		}

		still := missing[:0]
		for _, a := range missing {
			if _, ok := found[a]; !ok {
				still = append(still, a)
			}
		}
		missing = still
	}

	// Errors surface only when no tier answered.
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (t *TieredGeocodeCache) PutMany(ctx context.Context, results map[string]ports.GeocodeResult) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.PutMany(ctx, results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
