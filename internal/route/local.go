package route

import (
	"context"

	"bishroute/internal/domain"
	"bishroute/internal/graph"
)

// localPathfinder is the terminal cascade tier: A* over the street graph
// built from the current traffic-annotated dataset. Constructed per request
// because edge weights follow the traffic of the moment.
type localPathfinder struct {
	segments     []domain.StreetSegment
	mergeRadiusM float64
	snapRadiusM  float64
}

func (l *localPathfinder) Name() string {
	return "local"
}

func (l *localPathfinder) Routes(_ context.Context, start, end domain.Point, _ int) ([]domain.RawRoute, error) {
	g := graph.Build(l.segments, l.mergeRadiusM, l.snapRadiusM)

	path, err := g.FindPath(start, end)
	if err != nil {
		return nil, err
	}

	return []domain.RawRoute{{
		Geometry:        path.Points,
		DistanceMeters:  path.DistanceKm * 1000,
		DurationSeconds: path.Hours * 3600,
	}}, nil
}
