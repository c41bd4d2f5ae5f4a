package geocode

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/httpx"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type geocodeResponse struct {
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	FormattedAddress string   `json:"formattedAddress"`
}

// HTTPGeocoder resolves addresses with GET {base}/geocode?address=...
// and expects {"lat","lng","formattedAddress"} back. A 404 or a body without
// coordinates is reported as ports.ErrAddressNotFound.
type HTTPGeocoder struct {
	client  *httpx.Client
	baseURL string
}

func NewHTTPGeocoder(baseURL string, client *httpx.Client) (*HTTPGeocoder, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("geocoder base url is empty")
	}
	if client == nil {
		return nil, errors.New("geocoder http client is nil")
	}
	return &HTTPGeocoder{client: client, baseURL: baseURL}, nil
}

func (g *HTTPGeocoder) Name() string { return "http-geocoder" }

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (_ ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "geocode.http")(&err)

	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return ports.GeocodeResult{}, errors.New("geocode: address must be non-empty")
	}

	endpoint := g.baseURL + "/geocode"
	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("address", norm)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return ports.GeocodeResult{}, fmt.Errorf("geocode %q: %w", norm, ports.ErrAddressNotFound)
		}
		return ports.GeocodeResult{}, fmt.Errorf("geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if decoded.Lat == nil || decoded.Lng == nil {
		return ports.GeocodeResult{}, fmt.Errorf("geocode %q: %w", norm, ports.ErrAddressNotFound)
	}

	loc := domain.Coordinates{Lat: *decoded.Lat, Lon: *decoded.Lng}
	if !loc.Valid() {
		return ports.GeocodeResult{}, fmt.Errorf("geocode %q: coordinate out of range: %s", norm, loc)
	}

	formatted := decoded.FormattedAddress
	if formatted == "" {
		formatted = norm
	}
	return ports.GeocodeResult{Location: loc, FormattedAddress: formatted}, nil
}
