package domain

import "time"

// RoadClass distinguishes street categories from the map data source
type RoadClass string

const (
	RoadMotorway    RoadClass = "motorway"
	RoadTrunk       RoadClass = "trunk"
	RoadPrimary     RoadClass = "primary"
	RoadSecondary   RoadClass = "secondary"
	RoadTertiary    RoadClass = "tertiary"
	RoadResidential RoadClass = "residential"
)

// BaseSpeedKmh returns the free-flow speed for the road class
func (c RoadClass) BaseSpeedKmh() float64 {
	switch c {
	case RoadMotorway:
		return 80
	case RoadTrunk:
		return 70
	case RoadPrimary:
		return 60
	case RoadSecondary:
		return 50
	case RoadTertiary:
		return 40
	case RoadResidential:
		return 30
	default:
		return 40
	}
}

// DisplayWidth returns the map line width for the road class
func (c RoadClass) DisplayWidth() int {
	switch c {
	case RoadMotorway:
		return 8
	case RoadTrunk:
		return 7
	case RoadPrimary:
		return 6
	case RoadSecondary:
		return 5
	case RoadTertiary:
		return 4
	case RoadResidential:
		return 3
	default:
		return 4
	}
}

// TrafficLevel is the display bucket for a congestion percentage
type TrafficLevel string

const (
	LevelFree     TrafficLevel = "free"
	LevelLight    TrafficLevel = "light"
	LevelModerate TrafficLevel = "moderate"
	LevelHeavy    TrafficLevel = "heavy"
	LevelJam      TrafficLevel = "jam"
)

// LevelForCongestion maps a congestion percentage to its display bucket.
// Boundaries are inclusive-low, exclusive-high except jam which caps at 100.
func LevelForCongestion(congestion float64) TrafficLevel {
	switch {
	case congestion < 30:
		return LevelFree
	case congestion < 50:
		return LevelLight
	case congestion < 70:
		return LevelModerate
	case congestion < 90:
		return LevelHeavy
	default:
		return LevelJam
	}
}

func (l TrafficLevel) Color() string {
	switch l {
	case LevelFree:
		return "#22c55e"
	case LevelLight:
		return "#eab308"
	case LevelModerate:
		return "#f97316"
	case LevelHeavy:
		return "#ef4444"
	case LevelJam:
		return "#991b1b"
	default:
		return "#22c55e"
	}
}

func (l TrafficLevel) Label() string {
	switch l {
	case LevelFree:
		return "Свободно"
	case LevelLight:
		return "Легкий"
	case LevelModerate:
		return "Умеренный"
	case LevelHeavy:
		return "Плотный"
	case LevelJam:
		return "Пробка"
	default:
		return "Свободно"
	}
}

// StreetSegment is one street polyline with optional traffic annotation.
// Segments are treated as immutable; the traffic estimator returns annotated
// copies rather than mutating the cached dataset.
type StreetSegment struct {
	ID     int64
	Name   string
	Points []Point
	Class  RoadClass

	// Traffic annotation, set by the estimator
	Congestion  float64
	AvgSpeedKmh float64
	Level       TrafficLevel
}

// Midpoint returns the middle vertex of the segment polyline, used for
// matching route coordinates to nearby traffic
func (s *StreetSegment) Midpoint() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[len(s.Points)/2]
}

// StreetDataset is an immutable snapshot of street geometry.
// The cache replaces it wholesale on refresh, never in place.
type StreetDataset struct {
	Segments  []StreetSegment `json:"segments"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// StreetTraffic is the wire representation of an annotated segment
type StreetTraffic struct {
	Name       string       `json:"name"`
	Coords     [][2]float64 `json:"coords"`
	Congestion float64      `json:"congestion_percentage"`
	AvgSpeed   float64      `json:"average_speed"`
	Level      TrafficLevel `json:"traffic_level"`
	Color      string       `json:"color"`
	Width      int          `json:"width"`
	Label      string       `json:"label"`
}

// TrafficView converts an annotated segment to its wire representation
func TrafficView(s StreetSegment) StreetTraffic {
	coords := make([][2]float64, len(s.Points))
	for i, p := range s.Points {
		coords[i] = [2]float64{p.Lat, p.Lng}
	}
	return StreetTraffic{
		Name:       s.Name,
		Coords:     coords,
		Congestion: s.Congestion,
		AvgSpeed:   s.AvgSpeedKmh,
		Level:      s.Level,
		Color:      s.Level.Color(),
		Width:      s.Class.DisplayWidth(),
		Label:      s.Level.Label(),
	}
}
