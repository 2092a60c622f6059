package route

import (
	"bishroute/internal/domain"
)

// matchTraffic pairs a route geometry with the traffic conditions along it.
// The geometry is sampled at roughly sampleIntervalM spacing and each sample
// picks the nearest annotated segment midpoint within matchRadiusM. When
// nothing matches (a route crossing only unmapped side streets) a single
// light-traffic assumption is returned so the predictor still has input.
func matchTraffic(geometry []domain.Point, annotated []domain.StreetSegment, sampleIntervalM, matchRadiusM float64) []domain.StreetSegment {
	if len(geometry) == 0 || len(annotated) == 0 {
		return defaultTraffic()
	}

	var matched []domain.StreetSegment
	for _, pt := range samplePoints(geometry, sampleIntervalM) {
		if seg, ok := nearestSegment(pt, annotated, matchRadiusM); ok {
			matched = append(matched, seg)
		}
	}

	if len(matched) == 0 {
		return defaultTraffic()
	}
	return matched
}

// samplePoints walks the geometry and emits a point roughly every
// intervalM meters, always including both endpoints
func samplePoints(geometry []domain.Point, intervalM float64) []domain.Point {
	points := []domain.Point{geometry[0]}

	travelled := 0.0
	lastSample := 0.0
	for i := 0; i < len(geometry)-1; i++ {
		travelled += domain.Haversine(geometry[i], geometry[i+1]) * 1000
		if travelled-lastSample >= intervalM {
			points = append(points, geometry[i+1])
			lastSample = travelled
		}
	}

	points = append(points, geometry[len(geometry)-1])
	return points
}

func nearestSegment(pt domain.Point, annotated []domain.StreetSegment, matchRadiusM float64) (domain.StreetSegment, bool) {
	var best domain.StreetSegment
	bestM := matchRadiusM
	found := false

	for _, seg := range annotated {
		m := domain.Haversine(pt, seg.Midpoint()) * 1000
		if m <= bestM {
			bestM = m
			best = seg
			found = true
		}
	}
	return best, found
}

func defaultTraffic() []domain.StreetSegment {
	return []domain.StreetSegment{{
		Congestion:  20,
		AvgSpeedKmh: 45,
		Level:       domain.LevelFree,
	}}
}
