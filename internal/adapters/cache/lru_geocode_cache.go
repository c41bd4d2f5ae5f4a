package cache

import (
	"context"
	"delivery-route-optimizer/internal/ports"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUGeocodeCache keeps the most recently used addresses in process memory.
type LRUGeocodeCache struct {
	entries *lru.Cache[string, ports.GeocodeResult]
}

func NewLRUGeocodeCache(size int) (*LRUGeocodeCache, error) {
	c, err := lru.New[string, ports.GeocodeResult](size)
	if err != nil {
		return nil, fmt.Errorf("new lru geocode cache: %w", err)
	}
	return &LRUGeocodeCache{entries: c}, nil
}

func (l *LRUGeocodeCache) GetMany(_ context.Context, addresses []string) (map[string]ports.GeocodeResult, error) {
	out := make(map[string]ports.GeocodeResult, len(addresses))
	for _, a := range addresses {
		if r, ok := l.entries.Get(a); ok {
			out[a] = r
		}
	}
	return out, nil
}

func (l *LRUGeocodeCache) PutMany(_ context.Context, results map[string]ports.GeocodeResult) error {
	for a, r := range results {
		l.entries.Add(a, r)
	}
	return nil
}

func (l *LRUGeocodeCache) Len() int { return l.entries.Len() }
