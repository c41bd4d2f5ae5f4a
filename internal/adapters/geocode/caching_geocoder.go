package geocode

import (
	"context"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"

	"github.com/rs/zerolog"
)

// CachingGeocoder serves addresses from a GeocodeCache and only asks the
// wrapped Geocoder on a miss. Cache errors are logged and never fail a lookup.
type CachingGeocoder struct {
	next   ports.Geocoder
	cache  ports.GeocodeCache
	logger zerolog.Logger
}

func NewCachingGeocoder(next ports.Geocoder, cache ports.GeocodeCache, logger zerolog.Logger) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: cache, logger: logger}
}

func (g *CachingGeocoder) Name() string { return "cached(" + g.next.Name() + ")" }

func (g *CachingGeocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	key := Normalize(address)

	cached, err := g.cache.GetMany(ctx, []string{key})
	if err != nil {
		g.logger.Warn().Err(err).Str("address", key).Msg("geocode cache read failed")
	} else if r, ok := cached[key]; ok {
		obs.GeocodeCacheLookups.WithLabelValues("hit").Inc()
		return r, nil
	}
	obs.GeocodeCacheLookups.WithLabelValues("miss").Inc()

	r, err := g.next.Geocode(ctx, address)
	if err != nil {
		return ports.GeocodeResult{}, err
	}

	if err := g.cache.PutMany(ctx, map[string]ports.GeocodeResult{key: r}); err != nil {
		g.logger.Warn().Err(err).Str("address", key).Msg("geocode cache write failed")
	}
	return r, nil
}
