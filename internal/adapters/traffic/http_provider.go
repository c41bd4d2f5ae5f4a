package traffic

import (
	"bytes"
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

type point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func toPoint(c domain.Coordinates) point { return point{Lat: c.Lat, Lng: c.Lon} }

type legRequest struct {
	Origin      point `json:"origin"`
	Destination point `json:"destination"`
}

type rowRequest struct {
	Origin       point   `json:"origin"`
	Destinations []point `json:"destinations"`
}

type legResponse struct {
	DistanceMeters           *float64 `json:"distanceMeters"`
	DurationSeconds          *float64 `json:"durationSeconds"`
	DurationInTrafficSeconds *float64 `json:"durationInTrafficSeconds"`
}

type rowResponse struct {
	Results []legResponse `json:"results"`
}

// HTTPProvider implements TrafficMatrixProvider against a JSON traffic service:
//
//	POST {base}/traffic         {"origin":{lat,lng},"destination":{lat,lng}}
//	POST {base}/traffic/matrix  {"origin":{lat,lng},"destinations":[...]}
//
// It is safe for concurrent use.
type HTTPProvider struct {
	client  *httpx.Client
	baseURL string
}

func NewHTTPProvider(baseURL string, client *httpx.Client) (*HTTPProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("traffic provider base url is empty")
	}
	if client == nil {
		return nil, errors.New("traffic provider http client is nil")
	}
	return &HTTPProvider{client: client, baseURL: baseURL}, nil
}

func (p *HTTPProvider) Name() string { return "http-traffic" }

func (p *HTTPProvider) Query(ctx context.Context, origin, destination domain.Coordinates) (_ ports.TrafficResult, err error) {
	defer obs.Time(ctx, "traffic.Query")(&err)

	var lr legResponse
	if err := p.post(ctx, "/traffic", legRequest{Origin: toPoint(origin), Destination: toPoint(destination)}, &lr); err != nil {
		return ports.TrafficResult{}, err
	}
	return lr.toResult()
}

func (p *HTTPProvider) QueryMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ []ports.TrafficResult, err error) {
	defer obs.Time(ctx, "traffic.QueryMany")(&err)

	if len(destinations) == 0 {
		return []ports.TrafficResult{}, nil
	}

	body := rowRequest{Origin: toPoint(origin), Destinations: make([]point, len(destinations))}
	for i, d := range destinations {
		body.Destinations[i] = toPoint(d)
	}

	var rr rowResponse
	if err := p.post(ctx, "/traffic/matrix", body, &rr); err != nil {
		return nil, err
	}
	if len(rr.Results) != len(destinations) {
		return nil, fmt.Errorf("traffic matrix: got %d results for %d destinations", len(rr.Results), len(destinations))
	}

	out := make([]ports.TrafficResult, len(rr.Results))
	for i, lr := range rr.Results {
		r, err := lr.toResult()
		if err != nil {
			return nil, fmt.Errorf("traffic matrix: destination %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal traffic request: %w", err)
	}

	endpoint := p.baseURL + path
	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return p.client.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return fmt.Errorf("traffic request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode traffic response: %w", err)
	}
	return nil
}

func (lr legResponse) toResult() (ports.TrafficResult, error) {
	if lr.DistanceMeters == nil || lr.DurationSeconds == nil {
		return ports.TrafficResult{}, errors.New("traffic response missing distance or duration")
	}

	r := ports.TrafficResult{
		DistanceMeters:  *lr.DistanceMeters,
		DurationSeconds: *lr.DurationSeconds,
	}
	// Without a traffic figure the free-flow duration stands in.
	if lr.DurationInTrafficSeconds != nil {
		r.DurationInTrafficSeconds = *lr.DurationInTrafficSeconds
	} else {
		r.DurationInTrafficSeconds = r.DurationSeconds
	}
	return r, nil
}
