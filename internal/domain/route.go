package domain

// RawRoute is a route as returned by a provider, before traffic enhancement
type RawRoute struct {
	Geometry        []Point
	DistanceMeters  float64
	DurationSeconds float64
}

// Quality is the coarse bucket summarizing prediction confidence
type Quality string

const (
	QualityGood Quality = "good"
	QualityFair Quality = "fair"
	QualityPoor Quality = "poor"
)

// QualityForConfidence maps a confidence percentage to a quality tier
func QualityForConfidence(confidence float64) Quality {
	switch {
	case confidence >= 70:
		return QualityGood
	case confidence >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

// rank orders tiers for route recommendation, lower is better
func (q Quality) rank() int {
	switch q {
	case QualityGood:
		return 0
	case QualityFair:
		return 1
	default:
		return 2
	}
}

// Better reports whether q outranks other for recommendation purposes
func (q Quality) Better(other Quality) bool {
	return q.rank() < other.rank()
}

// TrafficPrediction is the travel-time estimate for one route.
// Ephemeral, computed per route per request.
type TrafficPrediction struct {
	Minutes       float64
	MinMinutes    float64
	MaxMinutes    float64
	Confidence    float64
	AvgSpeedKmh   float64
	AvgCongestion float64
	TimeFactor    float64
}

// RouteCandidate is a provider route enhanced with a traffic prediction
type RouteCandidate struct {
	Geometry        []Point
	DistanceMeters  float64
	DurationSeconds float64

	PredictedMinutes float64
	MinMinutes       float64
	MaxMinutes       float64
	Confidence       float64
	AvgSpeedKmh      float64
	DelayMinutes     float64
	Quality          Quality
	Recommended      bool
}
