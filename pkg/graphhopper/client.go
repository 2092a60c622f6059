package graphhopper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bishroute/internal/domain"
)

// Client is the key-gated secondary routing provider
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Name() string {
	return "graphhopper"
}

type ghResponse struct {
	Paths []ghPath `json:"paths"`
}

type ghPath struct {
	Distance float64  `json:"distance"`
	TimeMs   float64  `json:"time"`
	Points   ghPoints `json:"points"`
}

type ghPoints struct {
	Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
}

// Routes fetches alternative driving routes. Fails immediately when no API
// key is configured so the cascade can move on without a network round trip.
func (c *Client) Routes(ctx context.Context, start, end domain.Point, alternatives int) ([]domain.RawRoute, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", domain.ErrProviderUnavailable)
	}

	params := url.Values{}
	params.Add("point", fmt.Sprintf("%f,%f", start.Lat, start.Lng))
	params.Add("point", fmt.Sprintf("%f,%f", end.Lat, end.Lng))
	params.Set("vehicle", "car")
	params.Set("key", c.apiKey)
	params.Set("points_encoded", "false")
	params.Set("algorithm", "alternative_route")
	params.Set("alternative_route.max_paths", fmt.Sprintf("%d", alternatives))

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var ghResp ghResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrMalformedResponse, err)
	}

	if len(ghResp.Paths) == 0 {
		return nil, fmt.Errorf("%w: no paths in response", domain.ErrMalformedResponse)
	}

	result := make([]domain.RawRoute, 0, len(ghResp.Paths))
	for _, p := range ghResp.Paths {
		if len(p.Points.Coordinates) < 2 {
			continue
		}
		points := make([]domain.Point, len(p.Points.Coordinates))
		for i, c := range p.Points.Coordinates {
			if len(c) < 2 {
				return nil, fmt.Errorf("%w: truncated coordinate pair", domain.ErrMalformedResponse)
			}
			points[i] = domain.Point{Lat: c[1], Lng: c[0]}
		}
		result = append(result, domain.RawRoute{
			Geometry:        points,
			DistanceMeters:  p.Distance,
			DurationSeconds: p.TimeMs / 1000,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no usable route geometry", domain.ErrMalformedResponse)
	}
	return result, nil
}
