package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"errors"
)

// Returned by geocoders when an address has no match.
var ErrAddressNotFound = errors.New("address not found")

type GeocodeResult struct {
	Location         domain.Coordinates
	FormattedAddress string
}

// Contract for resolving a free-form address to a coordinate.
type Geocoder interface {
	Name() string
	// Resolve a single address. Implementations must honour ctx cancellation.
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
}
