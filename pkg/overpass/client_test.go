package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bishroute/internal/domain"
)

var bishkek = domain.BoundingBox{MinLat: 42.80, MinLng: 74.50, MaxLat: 42.92, MaxLng: 74.70}

func TestFetchStreets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := string(body)
		if !strings.Contains(query, "out%3Ajson") && !strings.Contains(query, "out:json") {
			t.Errorf("query missing json output directive: %s", query)
		}
		if !strings.Contains(query, "42.800000") {
			t.Errorf("query missing bbox coordinates: %s", query)
		}
		w.Write([]byte(`{
			"elements": [
				{
					"type": "way",
					"id": 100,
					"tags": {"highway": "primary", "name": "проспект Чуй"},
					"geometry": [
						{"lat": 42.875, "lon": 74.58},
						{"lat": 42.875, "lon": 74.60}
					]
				},
				{
					"type": "way",
					"id": 101,
					"tags": {"highway": "tertiary", "name:ru": "Московская"},
					"geometry": [
						{"lat": 42.869, "lon": 74.56},
						{"lat": 42.869, "lon": 74.58}
					]
				},
				{
					"type": "way",
					"id": 102,
					"tags": {"highway": "secondary"},
					"geometry": [
						{"lat": 42.84, "lon": 74.56}
					]
				},
				{
					"type": "node",
					"id": 103
				}
			]
		}`))
	}))
	defer srv.Close()

	streets, err := New(srv.URL).FetchStreets(context.Background(), bishkek)
	if err != nil {
		t.Fatalf("FetchStreets: %v", err)
	}

	// Way 102 has a single point, 103 is not a way; both are dropped
	if len(streets) != 2 {
		t.Fatalf("got %d streets, want 2", len(streets))
	}

	if streets[0].Name != "проспект Чуй" || streets[0].Class != domain.RoadPrimary {
		t.Errorf("first street = %q %q", streets[0].Name, streets[0].Class)
	}
	if streets[0].ID != 100 {
		t.Errorf("OSM way id not preserved: %d", streets[0].ID)
	}
	if streets[0].Points[0] != (domain.Point{Lat: 42.875, Lng: 74.58}) {
		t.Errorf("first point = %v", streets[0].Points[0])
	}

	// name:ru fallback
	if streets[1].Name != "Московская" {
		t.Errorf("second street name = %q", streets[1].Name)
	}
}

func TestFetchStreetsNameFallback(t *testing.T) {
	if got := streetName(map[string]string{}); got != "Unnamed Street" {
		t.Errorf("empty tags name = %q", got)
	}
	if got := streetName(map[string]string{"name:ky": "Чүй"}); got != "Чүй" {
		t.Errorf("kyrgyz name = %q", got)
	}
}

func TestFetchStreetsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).FetchStreets(context.Background(), bishkek); err == nil {
		t.Error("expected error on 429")
	}
}
