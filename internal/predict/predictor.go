package predict

import (
	"log/slog"
	"math"
	"time"

	"bishroute/internal/domain"
	"bishroute/internal/traffic"
)

// Model is a trained travel-time regressor. Predict returns minutes for the
// feature vector (distance km, mean congestion %, mean speed km/h,
// time-of-day factor).
type Model interface {
	Predict(distanceKm, meanCongestion, meanSpeedKmh, timeFactor float64) (float64, error)
}

// Predictor turns distance and matched traffic into a travel-time estimate
// with bounds and confidence. A model is optional; the heuristic path is
// always available.
type Predictor struct {
	model  Model
	logger *slog.Logger
}

func New(model Model, logger *slog.Logger) *Predictor {
	return &Predictor{
		model:  model,
		logger: logger.With("component", "predictor"),
	}
}

// Predict estimates travel time for a route of the given distance whose
// geometry matched the supplied traffic segments
func (p *Predictor) Predict(distanceKm float64, matched []domain.StreetSegment, at time.Time) domain.TrafficPrediction {
	meanCongestion, meanSpeed := meanTraffic(matched)
	factor := traffic.TimeOfDayFactor(at)

	minutes := 0.0
	if p.model != nil {
		m, err := p.model.Predict(distanceKm, meanCongestion, meanSpeed, factor)
		if err != nil {
			p.logger.Warn("model prediction failed, using heuristic", "error", err)
		} else {
			// Model output gets the same one-minute floor as the
			// heuristic so the min/predicted/max ordering holds
			minutes = math.Max(1, m)
		}
	}
	if minutes <= 0 || math.IsNaN(minutes) {
		minutes = heuristicMinutes(distanceKm, meanCongestion, meanSpeed, factor)
	}

	confidence := confidenceFor(matched)

	// Wider upside: traffic surprises delay more often than they save
	spread := 1 - confidence/100
	minMinutes := minutes * (1 - spread*0.3)
	maxMinutes := minutes * (1 + spread*0.5)

	return domain.TrafficPrediction{
		Minutes:       minutes,
		MinMinutes:    math.Max(1, minMinutes),
		MaxMinutes:    maxMinutes,
		Confidence:    confidence,
		AvgSpeedKmh:   meanSpeed,
		AvgCongestion: meanCongestion,
		TimeFactor:    factor,
	}
}

func meanTraffic(matched []domain.StreetSegment) (congestion, speed float64) {
	if len(matched) == 0 {
		return 0, 50
	}
	for _, seg := range matched {
		congestion += seg.Congestion
		speed += seg.AvgSpeedKmh
	}
	n := float64(len(matched))
	return congestion / n, speed / n
}

// heuristicMinutes is the always-available estimate: congestion-discounted
// speed divided by the time-of-day factor
func heuristicMinutes(distanceKm, meanCongestion, meanSpeedKmh, factor float64) float64 {
	effective := meanSpeedKmh * (1 - meanCongestion/100*0.7) / factor
	if effective < 10 {
		effective = 10
	}
	minutes := distanceKm / effective * 60
	return math.Max(1, minutes)
}

// confidenceFor derives confidence from the spread of matched congestion
// values: uniform traffic predicts well, mixed traffic does not
func confidenceFor(matched []domain.StreetSegment) float64 {
	if len(matched) < 2 {
		return 70
	}

	mean := 0.0
	for _, seg := range matched {
		mean += seg.Congestion
	}
	mean /= float64(len(matched))

	variance := 0.0
	for _, seg := range matched {
		d := seg.Congestion - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(matched)))

	confidence := 100 * (1 - stddev/100)
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
