package route

import (
	"testing"

	"bishroute/internal/domain"
)

func TestMatchTrafficPicksNearbySegments(t *testing.T) {
	annotated := []domain.StreetSegment{
		{ID: 1, Congestion: 60, AvgSpeedKmh: 24, Level: domain.LevelModerate,
			Points: []domain.Point{{Lat: 42.875, Lng: 74.58}, {Lat: 42.875, Lng: 74.60}}},
		{ID: 2, Congestion: 15, AvgSpeedKmh: 45, Level: domain.LevelFree,
			Points: []domain.Point{{Lat: 42.90, Lng: 74.68}, {Lat: 42.91, Lng: 74.69}}},
	}

	// Route running right along segment 1
	geometry := []domain.Point{
		{Lat: 42.8752, Lng: 74.585},
		{Lat: 42.8751, Lng: 74.590},
		{Lat: 42.8750, Lng: 74.595},
	}

	matched := matchTraffic(geometry, annotated, 500, 500)
	if len(matched) == 0 {
		t.Fatal("expected matches")
	}
	for _, seg := range matched {
		if seg.ID != 1 {
			t.Errorf("matched distant segment %d", seg.ID)
		}
	}
}

func TestMatchTrafficDefaultsWhenNothingNearby(t *testing.T) {
	annotated := []domain.StreetSegment{
		{ID: 1, Congestion: 60, Points: []domain.Point{{Lat: 42.90, Lng: 74.68}, {Lat: 42.91, Lng: 74.69}}},
	}
	geometry := []domain.Point{{Lat: 42.81, Lng: 74.51}, {Lat: 42.82, Lng: 74.52}}

	matched := matchTraffic(geometry, annotated, 500, 500)
	if len(matched) != 1 {
		t.Fatalf("expected the single default assumption, got %d", len(matched))
	}
	if matched[0].Congestion != 20 || matched[0].AvgSpeedKmh != 45 || matched[0].Level != domain.LevelFree {
		t.Errorf("unexpected default traffic: %+v", matched[0])
	}
}

func TestMatchTrafficEmptyInputs(t *testing.T) {
	if m := matchTraffic(nil, nil, 500, 500); len(m) != 1 {
		t.Errorf("empty inputs should yield the default assumption, got %d", len(m))
	}
}

func TestSamplePointsIncludesEndpoints(t *testing.T) {
	// ~4.9 km west to east along Чуй
	geometry := []domain.Point{
		{Lat: 42.875, Lng: 74.56},
		{Lat: 42.875, Lng: 74.58},
		{Lat: 42.875, Lng: 74.60},
		{Lat: 42.875, Lng: 74.62},
	}

	points := samplePoints(geometry, 500)

	if points[0] != geometry[0] {
		t.Error("first sample must be the route start")
	}
	if points[len(points)-1] != geometry[len(geometry)-1] {
		t.Error("last sample must be the route end")
	}
	if len(points) < 4 {
		t.Errorf("a multi-km route should produce several samples, got %d", len(points))
	}
}
