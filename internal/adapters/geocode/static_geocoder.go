package geocode

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Lowest similarity accepted for a near-miss lookup.
const minFuzzyScore = 0.95

// In-memory Geocoder over a fixed address table. Lookups ignore case, accents
// and repeated whitespace. A lookup that matches no entry exactly falls back to
// the most similar entry with the same house numbers, provided it scores at
// least minFuzzyScore. Anything else fails with ports.ErrAddressNotFound.
type StaticGeocoder struct {
	entries map[string]ports.GeocodeResult
	calls   atomic.Int64
}

func NewStaticGeocoder(entries map[string]domain.Coordinates) *StaticGeocoder {
	m := make(map[string]ports.GeocodeResult, len(entries))
	for addr, c := range entries {
		m[Normalize(addr)] = ports.GeocodeResult{Location: c, FormattedAddress: addr}
	}
	return &StaticGeocoder{entries: m}
}

// Build from full results, such as entries read from a seed file.
func NewStaticGeocoderFromResults(entries map[string]ports.GeocodeResult) *StaticGeocoder {
	m := make(map[string]ports.GeocodeResult, len(entries))
	for addr, r := range entries {
		m[Normalize(addr)] = r
	}
	return &StaticGeocoder{entries: m}
}

func (g *StaticGeocoder) Name() string { return "static" }

func (g *StaticGeocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	g.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return ports.GeocodeResult{}, err
	}

	key := Normalize(address)
	if r, ok := g.entries[key]; ok {
		return r, nil
	}
	if r, ok := g.closest(key); ok {
		return r, nil
	}
	return ports.GeocodeResult{}, fmt.Errorf("static geocode %q: %w", address, ports.ErrAddressNotFound)
}

// Number of Geocode calls served, hits and misses alike.
func (g *StaticGeocoder) Calls() int64 { return g.calls.Load() }

func (g *StaticGeocoder) closest(query string) (ports.GeocodeResult, bool) {
	if query == "" {
		return ports.GeocodeResult{}, false
	}
	wantDigits := digits(query)

	var (
		best      ports.GeocodeResult
		bestScore float64
		bestKey   string
	)
	for key, r := range g.entries {
		if digits(key) != wantDigits {
			continue
		}
		s := similarity(query, key)
		// Ties resolve to the lexically smaller key so lookups are deterministic.
		if s > bestScore || (s == bestScore && key < bestKey) {
			best, bestScore, bestKey = r, s, key
		}
	}
	return best, bestScore >= minFuzzyScore
}

// Best of Jaro-Winkler and length-normalized Levenshtein similarity.
func similarity(a, b string) float64 {
	jw := smetrics.JaroWinkler(a, b, 0.7, 4)

	maxLen := math.Max(float64(len(a)), float64(len(b)))
	lev := 1 - float64(levenshtein.ComputeDistance(a, b))/maxLen

	return math.Max(jw, lev)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
