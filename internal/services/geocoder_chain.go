package services

import (
	"context"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Geocoder that tries each member in order and returns the first success.
type GeocoderChain struct {
	geocoders []ports.Geocoder
	logger    zerolog.Logger
}

func NewGeocoderChain(logger zerolog.Logger, geocoders ...ports.Geocoder) *GeocoderChain {
	gs := make([]ports.Geocoder, 0, len(geocoders))
	for _, g := range geocoders {
		if g != nil {
			gs = append(gs, g)
		}
	}
	return &GeocoderChain{geocoders: gs, logger: logger}
}

func (c *GeocoderChain) Name() string {
	names := make([]string, len(c.geocoders))
	for i, g := range c.geocoders {
		names[i] = g.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *GeocoderChain) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	if len(c.geocoders) == 0 {
		return ports.GeocodeResult{}, errNoGeocoder
	}

	var errs []error
	for _, g := range c.geocoders {
		res, err := g.Geocode(ctx, address)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return ports.GeocodeResult{}, ctx.Err()
		}
		c.logger.Debug().Str("geocoder", g.Name()).Err(err).Msg("geocoder failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
	}
	return ports.GeocodeResult{}, errors.Join(errs...)
}
