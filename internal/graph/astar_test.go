package graph

import (
	"errors"
	"math"
	"testing"

	"bishroute/internal/domain"
)

var (
	ptA = domain.Point{Lat: 42.85, Lng: 74.60}
	ptB = domain.Point{Lat: 42.85, Lng: 74.62}
	ptC = domain.Point{Lat: 42.85, Lng: 74.64}
	ptD = domain.Point{Lat: 42.86, Lng: 74.62}
)

// crossroadSegments builds a network where the direct street is jammed and
// a longer detour through D moves at free-flow speed.
func crossroadSegments() []domain.StreetSegment {
	return []domain.StreetSegment{
		{ID: 1, Name: "direct", Class: domain.RoadPrimary, AvgSpeedKmh: 10,
			Points: []domain.Point{ptA, ptB, ptC}},
		{ID: 2, Name: "detour", Class: domain.RoadPrimary, AvgSpeedKmh: 60,
			Points: []domain.Point{ptA, ptD, ptC}},
	}
}

func TestFindPathPrefersFasterRoute(t *testing.T) {
	g := Build(crossroadSegments(), 10, 300)

	path, err := g.FindPath(ptA, ptC)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}

	// The detour passes through D; the direct street through B
	throughD := false
	for _, p := range path.Points {
		if p == ptD {
			throughD = true
		}
		if p == ptB {
			t.Error("path took the congested direct street")
		}
	}
	if !throughD {
		t.Error("path did not take the faster detour")
	}

	wantHours := (domain.Haversine(ptA, ptD) + domain.Haversine(ptD, ptC)) / 60
	if math.Abs(path.Hours-wantHours) > 1e-9 {
		t.Errorf("hours = %v, want %v", path.Hours, wantHours)
	}
	if path.DistanceKm <= 0 {
		t.Errorf("distance = %v, want > 0", path.DistanceKm)
	}
}

func TestFindPathIncludesRawEndpoints(t *testing.T) {
	g := Build(crossroadSegments(), 10, 300)

	// Slightly off the network, within snap range
	start := domain.Point{Lat: 42.8502, Lng: 74.6001}
	end := domain.Point{Lat: 42.8501, Lng: 74.6399}

	path, err := g.FindPath(start, end)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(path.Points) < 3 {
		t.Fatalf("path too short: %d points", len(path.Points))
	}
	if path.Points[0] != start {
		t.Errorf("first point = %v, want raw start %v", path.Points[0], start)
	}
	if path.Points[len(path.Points)-1] != end {
		t.Errorf("last point = %v, want raw end %v", path.Points[len(path.Points)-1], end)
	}
}

func TestFindPathUnreachablePoint(t *testing.T) {
	g := Build(crossroadSegments(), 10, 300)

	farAway := domain.Point{Lat: 42.50, Lng: 74.00}
	_, err := g.FindPath(farAway, ptC)
	if !errors.Is(err, domain.ErrUnreachablePoint) {
		t.Errorf("expected ErrUnreachablePoint, got %v", err)
	}

	_, err = g.FindPath(ptA, farAway)
	if !errors.Is(err, domain.ErrUnreachablePoint) {
		t.Errorf("expected ErrUnreachablePoint for end point, got %v", err)
	}
}

func TestFindPathDisconnectedNetwork(t *testing.T) {
	islandA := domain.Point{Lat: 42.85, Lng: 74.60}
	islandA2 := domain.Point{Lat: 42.85, Lng: 74.61}
	islandB := domain.Point{Lat: 42.90, Lng: 74.68}
	islandB2 := domain.Point{Lat: 42.90, Lng: 74.69}

	segs := []domain.StreetSegment{
		{ID: 1, Class: domain.RoadPrimary, AvgSpeedKmh: 50, Points: []domain.Point{islandA, islandA2}},
		{ID: 2, Class: domain.RoadPrimary, AvgSpeedKmh: 50, Points: []domain.Point{islandB, islandB2}},
	}
	g := Build(segs, 10, 300)

	_, err := g.FindPath(islandA, islandB)
	if !errors.Is(err, domain.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestBuildMergesSharedVertices(t *testing.T) {
	g := Build(crossroadSegments(), 10, 300)

	// A, B, C, D with shared A and C merged across the two segments
	if got := g.NodeCount(); got != 4 {
		t.Errorf("node count = %d, want 4", got)
	}
	if got := g.MaxSpeedKmh(); got != 60 {
		t.Errorf("max speed = %v, want 60", got)
	}
}

func TestBuildFallsBackToClassSpeed(t *testing.T) {
	segs := []domain.StreetSegment{
		{ID: 1, Class: domain.RoadResidential, Points: []domain.Point{ptA, ptB}},
	}
	g := Build(segs, 10, 300)

	path, err := g.FindPath(ptA, ptB)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}

	wantHours := domain.Haversine(ptA, ptB) / domain.RoadResidential.BaseSpeedKmh()
	if math.Abs(path.Hours-wantHours) > 1e-9 {
		t.Errorf("hours = %v, want %v (class free-flow speed)", path.Hours, wantHours)
	}
}

// dijkstraHours computes the cheapest travel time between two points with a
// plain Dijkstra scan, no heuristic, as an independent reference for A*.
func dijkstraHours(t *testing.T, g *Graph, start, end domain.Point) float64 {
	t.Helper()

	src, err := g.snap(start, "start")
	if err != nil {
		t.Fatalf("snap start: %v", err)
	}
	dst, err := g.snap(end, "end")
	if err != nil {
		t.Fatalf("snap end: %v", err)
	}

	dist := map[int]float64{src: 0}
	visited := make(map[int]bool)

	for {
		u, best := -1, math.Inf(1)
		for n, d := range dist {
			if !visited[n] && d < best {
				u, best = n, d
			}
		}
		if u == -1 {
			t.Fatal("reference dijkstra found no path")
		}
		if u == dst {
			return best
		}
		visited[u] = true

		for _, e := range g.adj[u] {
			if d, ok := dist[e.to]; !ok || best+e.hours < d {
				dist[e.to] = best + e.hours
			}
		}
	}
}

// gridSegments builds a 4x4 street grid with mixed speeds so the cheapest
// path is not obvious by inspection.
func gridSegments() []domain.StreetSegment {
	speeds := []float64{15, 60, 25, 45, 30, 50, 20, 55}
	var segs []domain.StreetSegment
	id := int64(1)

	at := func(row, col int) domain.Point {
		return domain.Point{Lat: 42.84 + 0.01*float64(row), Lng: 74.56 + 0.01*float64(col)}
	}

	for row := 0; row < 4; row++ {
		pts := make([]domain.Point, 4)
		for col := 0; col < 4; col++ {
			pts[col] = at(row, col)
		}
		segs = append(segs, domain.StreetSegment{
			ID: id, Class: domain.RoadSecondary, AvgSpeedKmh: speeds[row], Points: pts,
		})
		id++
	}
	for col := 0; col < 4; col++ {
		pts := make([]domain.Point, 4)
		for row := 0; row < 4; row++ {
			pts[row] = at(row, col)
		}
		segs = append(segs, domain.StreetSegment{
			ID: id, Class: domain.RoadSecondary, AvgSpeedKmh: speeds[4+col], Points: pts,
		})
		id++
	}
	return segs
}

func TestFindPathMatchesDijkstraCost(t *testing.T) {
	fixtures := map[string][]domain.StreetSegment{
		"crossroad": crossroadSegments(),
		"grid":      gridSegments(),
	}

	for name, segs := range fixtures {
		t.Run(name, func(t *testing.T) {
			g := Build(segs, 10, 300)

			pairs := [][2]domain.Point{
				{segs[0].Points[0], segs[len(segs)-1].Points[len(segs[len(segs)-1].Points)-1]},
				{segs[0].Points[1], segs[1].Points[0]},
			}

			for _, pair := range pairs {
				path, err := g.FindPath(pair[0], pair[1])
				if err != nil {
					t.Fatalf("FindPath(%v, %v): %v", pair[0], pair[1], err)
				}

				want := dijkstraHours(t, g, pair[0], pair[1])
				if math.Abs(path.Hours-want) > 1e-9 {
					t.Errorf("FindPath(%v, %v) = %v hours, dijkstra says %v",
						pair[0], pair[1], path.Hours, want)
				}
			}
		})
	}
}

func TestFindPathDeterministic(t *testing.T) {
	segs := crossroadSegments()

	first, err := Build(segs, 10, 300).FindPath(ptA, ptC)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}

	for i := 0; i < 10; i++ {
		path, err := Build(segs, 10, 300).FindPath(ptA, ptC)
		if err != nil {
			t.Fatalf("FindPath: %v", err)
		}
		if len(path.Points) != len(first.Points) {
			t.Fatalf("run %d: point count %d differs from %d", i, len(path.Points), len(first.Points))
		}
		for j := range path.Points {
			if path.Points[j] != first.Points[j] {
				t.Fatalf("run %d: geometry differs at %d", i, j)
			}
		}
	}
}
