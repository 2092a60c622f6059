package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bishroute/internal/domain"
)

// Client fetches street geometry from an Overpass API endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassNode    `json:"geometry"`
}

type overpassNode struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchStreets queries drivable ways inside the bounding box
func (c *Client) FetchStreets(ctx context.Context, bbox domain.BoundingBox) ([]domain.StreetSegment, error) {
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  way["highway"~"^(motorway|trunk|primary|secondary|tertiary)$"](%f,%f,%f,%f);
);
out geom;`, bbox.MinLat, bbox.MinLng, bbox.MaxLat, bbox.MaxLng)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var overpassResp overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toDomain(overpassResp.Elements), nil
}

func (c *Client) toDomain(elements []overpassElement) []domain.StreetSegment {
	result := make([]domain.StreetSegment, 0, len(elements))

	for _, el := range elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}

		points := make([]domain.Point, len(el.Geometry))
		for i, n := range el.Geometry {
			points[i] = domain.Point{Lat: n.Lat, Lng: n.Lon}
		}

		id := el.ID
		if id == 0 {
			id = segmentID(streetName(el.Tags))
		}

		result = append(result, domain.StreetSegment{
			ID:     id,
			Name:   streetName(el.Tags),
			Points: points,
			Class:  domain.RoadClass(el.Tags["highway"]),
		})
	}

	return result
}

func streetName(tags map[string]string) string {
	for _, key := range []string{"name", "name:ru", "name:ky"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "Unnamed Street"
}

func segmentID(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}
