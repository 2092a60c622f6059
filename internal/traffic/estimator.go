package traffic

import (
	"math/rand"
	"strings"
	"time"

	"bishroute/internal/domain"
)

// Avenues that carry disproportionate traffic at any hour
var majorStreets = []string{
	"Чуй", "Манас", "Жибек Жолу", "Ахунбаева", "Советская",
	"Московская", "Киевская", "7 Апреля", "Боконбаева",
}

// TimeOfDayFactor returns the congestion multiplier for the hour of day.
// Morning peak 07:00-09:00, evening peak 17:00-19:00, night 23:00-06:00.
func TimeOfDayFactor(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 7 && hour < 9:
		return 1.3
	case hour >= 17 && hour < 19:
		return 1.4
	case hour >= 23 || hour < 6:
		return 0.8
	default:
		return 1.0
	}
}

// Estimator derives per-street congestion and speed from time-of-day
// patterns. Deterministic given the seed and the minute bucket of now.
type Estimator struct {
	seed int64
}

func NewEstimator(seed int64) *Estimator {
	return &Estimator{seed: seed}
}

// Annotate returns copies of the segments with congestion, speed and level
// filled in. The input slice is not modified.
func (e *Estimator) Annotate(segments []domain.StreetSegment, now time.Time) []domain.StreetSegment {
	bucket := now.Truncate(time.Minute).Unix()
	factor := TimeOfDayFactor(now)

	result := make([]domain.StreetSegment, len(segments))
	for i, seg := range segments {
		// Per-segment source keyed by ID so annotation order never matters
		rng := rand.New(rand.NewSource(e.seed ^ bucket ^ seg.ID*0x9e3779b9))

		congestion := baseCongestion(seg.Class) + rng.Float64()*30 - 15
		if isMajorStreet(seg.Name) {
			congestion += 10 + rng.Float64()*10
		}
		congestion = clamp(congestion*factor, 0, 100)

		speed := seg.Class.BaseSpeedKmh() * (1 - congestion/100*0.7)
		if speed < 10 {
			speed = 10
		}

		annotated := seg
		annotated.Congestion = congestion
		annotated.AvgSpeedKmh = speed
		annotated.Level = domain.LevelForCongestion(congestion)
		result[i] = annotated
	}
	return result
}

func baseCongestion(class domain.RoadClass) float64 {
	switch class {
	case domain.RoadMotorway:
		return 40
	case domain.RoadTrunk:
		return 38
	case domain.RoadPrimary:
		return 35
	case domain.RoadSecondary:
		return 30
	case domain.RoadTertiary:
		return 25
	case domain.RoadResidential:
		return 20
	default:
		return 25
	}
}

func isMajorStreet(name string) bool {
	for _, major := range majorStreets {
		if strings.Contains(name, major) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LevelShare is one bucket of the traffic level distribution
type LevelShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Statistics summarizes annotated segments for the statistics endpoint
type Statistics struct {
	TotalStreets      int                                `json:"total_streets"`
	AverageCongestion float64                            `json:"average_congestion"`
	LevelDistribution map[domain.TrafficLevel]LevelShare `json:"level_distribution"`
}

func Summarize(segments []domain.StreetSegment) Statistics {
	stats := Statistics{
		LevelDistribution: make(map[domain.TrafficLevel]LevelShare),
	}
	if len(segments) == 0 {
		return stats
	}

	total := 0.0
	counts := make(map[domain.TrafficLevel]int)
	for _, seg := range segments {
		total += seg.Congestion
		counts[seg.Level]++
	}

	stats.TotalStreets = len(segments)
	stats.AverageCongestion = total / float64(len(segments))
	for _, level := range []domain.TrafficLevel{
		domain.LevelFree, domain.LevelLight, domain.LevelModerate,
		domain.LevelHeavy, domain.LevelJam,
	} {
		stats.LevelDistribution[level] = LevelShare{
			Count:      counts[level],
			Percentage: float64(counts[level]) / float64(len(segments)) * 100,
		}
	}
	return stats
}
