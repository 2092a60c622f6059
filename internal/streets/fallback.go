package streets

import (
	"sort"
	"time"

	"bishroute/internal/domain"
)

// axisStreet is a straight north-south or east-west artery. The built-in
// network is axis-aligned, which lets crossings be computed exactly so the
// graph builder sees shared vertices where streets intersect.
type axisStreet struct {
	id    int64
	name  string
	class domain.RoadClass
	horiz bool    // true: constant latitude, runs east-west
	fixed float64 // the constant coordinate
	from  float64 // span along the other axis
	to    float64
}

var fallbackStreets = []axisStreet{
	{1, "Жибек Жолу", domain.RoadPrimary, true, 42.8940, 74.5500, 74.6800},
	{2, "Чуй проспект", domain.RoadPrimary, true, 42.8750, 74.5500, 74.6900},
	{3, "Манас проспект", domain.RoadPrimary, false, 74.5870, 42.8100, 42.8900},
	{4, "Советская", domain.RoadSecondary, false, 74.6000, 42.8200, 42.8900},
	{5, "Ахунбаева", domain.RoadSecondary, true, 42.8430, 74.5600, 74.6800},
	{6, "7 Апреля", domain.RoadSecondary, false, 74.6480, 42.8200, 42.8900},
	{7, "Московская", domain.RoadTertiary, true, 42.8690, 74.5600, 74.6600},
	{8, "Киевская", domain.RoadTertiary, true, 42.8730, 74.5600, 74.6400},
	{9, "Боконбаева", domain.RoadTertiary, true, 42.8640, 74.5600, 74.6600},
	{10, "Льва Толстого", domain.RoadTertiary, true, 42.8580, 74.5500, 74.6700},
}

// FallbackDataset is the built-in minimal street network, used when the map
// data source is unreachable and no cached copy exists. Major Bishkek
// arteries only, enough for the local pathfinder to produce a usable route.
func FallbackDataset(fetchedAt time.Time) *domain.StreetDataset {
	ds := &domain.StreetDataset{FetchedAt: fetchedAt}
	for _, st := range fallbackStreets {
		ds.Segments = append(ds.Segments, domain.StreetSegment{
			ID:     st.id,
			Name:   st.name,
			Class:  st.class,
			Points: st.vertices(fallbackStreets),
		})
	}
	return ds
}

// vertices returns the street polyline with a vertex at every crossing of a
// perpendicular street, endpoints included
func (st axisStreet) vertices(all []axisStreet) []domain.Point {
	coords := []float64{st.from, st.to}
	for _, other := range all {
		if other.horiz == st.horiz {
			continue
		}
		crossesOther := other.fixed >= st.from && other.fixed <= st.to
		otherCrossesUs := st.fixed >= other.from && st.fixed <= other.to
		if crossesOther && otherCrossesUs {
			coords = append(coords, other.fixed)
		}
	}
	sort.Float64s(coords)

	points := make([]domain.Point, 0, len(coords))
	for _, c := range coords {
		if st.horiz {
			points = append(points, domain.Point{Lat: st.fixed, Lng: c})
		} else {
			points = append(points, domain.Point{Lat: c, Lng: st.fixed})
		}
	}
	return points
}
