package ports

import "context"

// Cache of resolved addresses keyed by normalized address.
type GeocodeCache interface {
	// Return the cached entries for the given keys. Missing keys are absent from the map.
	GetMany(ctx context.Context, addresses []string) (map[string]GeocodeResult, error)
	PutMany(ctx context.Context, entries map[string]GeocodeResult) error
}
