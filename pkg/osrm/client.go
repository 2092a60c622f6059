package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bishroute/internal/domain"
)

// Client talks to one OSRM mirror. The orchestrator holds one client per
// configured mirror and walks them in order.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
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
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		return "osrm:" + u.Host
	}
	return "osrm"
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry osrmGeometry `json:"geometry"`
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
}

type osrmGeometry struct {
	Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
	Type        string      `json:"type"`
}

// Routes fetches up to alternatives driving routes between start and end
func (c *Client) Routes(ctx context.Context, start, end domain.Point, alternatives int) ([]domain.RawRoute, error) {
	coords := fmt.Sprintf("%f,%f;%f,%f", start.Lng, start.Lat, end.Lng, end.Lat)

	params := url.Values{}
	params.Set("overview", "full")
	params.Set("geometries", "geojson")
	params.Set("alternatives", fmt.Sprintf("%d", alternatives))

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, coords, params.Encode())

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

	var osrmResp osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrMalformedResponse, err)
	}

	if osrmResp.Code != "Ok" || len(osrmResp.Routes) == 0 {
		return nil, fmt.Errorf("%w: code %q with %d routes", domain.ErrMalformedResponse, osrmResp.Code, len(osrmResp.Routes))
	}

	return c.toDomain(osrmResp.Routes)
}

func (c *Client) toDomain(routes []osrmRoute) ([]domain.RawRoute, error) {
	result := make([]domain.RawRoute, 0, len(routes))
	for _, r := range routes {
		if len(r.Geometry.Coordinates) < 2 {
			continue
		}
		points := make([]domain.Point, len(r.Geometry.Coordinates))
		for i, c := range r.Geometry.Coordinates {
			if len(c) < 2 {
				return nil, fmt.Errorf("%w: truncated coordinate pair", domain.ErrMalformedResponse)
			}
			points[i] = domain.Point{Lat: c[1], Lng: c[0]}
		}
		result = append(result, domain.RawRoute{
			Geometry:        points,
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no usable route geometry", domain.ErrMalformedResponse)
	}
	return result, nil
}
