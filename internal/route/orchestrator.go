package route

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"bishroute/internal/domain"
	"bishroute/internal/predict"
	"bishroute/internal/streets"
	"bishroute/internal/traffic"
)

// Options holds the orchestrator tuning knobs, all sourced from config
type Options struct {
	Region           domain.BoundingBox
	PrimaryAttempts  int
	ProviderTimeout  time.Duration
	NodeMergeRadiusM float64
	SnapRadiusM      float64
	MatchRadiusM     float64
	SampleIntervalM  float64
	MaxAlternatives  int
	EnhanceWorkers   int
}

// Result is the outcome of one route calculation
type Result struct {
	Routes   []domain.RouteCandidate
	Warnings []string
}

// Orchestrator runs the provider failover cascade and enhances whatever
// routes come back with traffic-aware predictions
type Orchestrator struct {
	streets   *streets.Cache
	estimator *traffic.Estimator
	predictor *predict.Predictor
	primaries []Provider
	secondary Provider // nil when not configured
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func NewOrchestrator(cache *streets.Cache, estimator *traffic.Estimator, predictor *predict.Predictor,
	primaries []Provider, secondary Provider, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.PrimaryAttempts <= 0 {
		opts.PrimaryAttempts = 2
	}
	if opts.EnhanceWorkers <= 0 {
		opts.EnhanceWorkers = 1
	}
	if opts.MaxAlternatives <= 0 {
		opts.MaxAlternatives = 5
	}
	return &Orchestrator{
		streets:   cache,
		estimator: estimator,
		predictor: predictor,
		primaries: primaries,
		secondary: secondary,
		opts:      opts,
		logger:    logger.With("component", "orchestrator"),
		now:       time.Now,
	}
}

// Calculate computes traffic-enhanced routes between start and end. Fails
// only on coordinates outside the supported region or when every provider
// tier including the local graph is exhausted.
func (o *Orchestrator) Calculate(ctx context.Context, start, end domain.Point, alternatives int) (*Result, error) {
	if !o.opts.Region.Contains(start) || !o.opts.Region.Contains(end) {
		return nil, fmt.Errorf("%w: start (%.4f, %.4f) end (%.4f, %.4f)",
			domain.ErrInvalidCoordinates, start.Lat, start.Lng, end.Lat, end.Lng)
	}

	if alternatives < 1 {
		alternatives = 1
	}
	if alternatives > o.opts.MaxAlternatives {
		alternatives = o.opts.MaxAlternatives
	}

	dataset := o.streets.Get(ctx)
	annotated := o.estimator.Annotate(dataset.Segments, o.now())

	raw, providerName, warnings, err := o.cascade(ctx, start, end, alternatives, annotated)
	if err != nil {
		return nil, err
	}

	candidates := o.enhance(raw, annotated)
	o.rank(candidates)

	o.logger.Info("route calculated",
		"provider", providerName,
		"routes", len(candidates),
		"warnings", len(warnings),
	)

	return &Result{Routes: candidates, Warnings: warnings}, nil
}

// cascade walks the provider tiers in order, advancing only on definitive
// failure of the current tier: primary mirrors with retries, then the
// key-gated secondary, then the local street graph. Any tier that produces
// a usable response ends the cascade.
func (o *Orchestrator) cascade(ctx context.Context, start, end domain.Point, alternatives int,
	annotated []domain.StreetSegment) ([]domain.RawRoute, string, []string, error) {
	var warnings []string

	for _, p := range o.primaries {
		for attempt := 1; attempt <= o.opts.PrimaryAttempts; attempt++ {
			routes, err := o.attempt(ctx, p, start, end, alternatives)
			if err == nil {
				return routes, p.Name(), warnings, nil
			}
			o.logger.Warn("primary provider attempt failed",
				"provider", p.Name(), "attempt", attempt, "error", err)
			if ctx.Err() != nil {
				return nil, "", warnings, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
		}
	}
	if len(o.primaries) > 0 {
		warnings = append(warnings, "primary provider unavailable")
	}

	if o.secondary != nil {
		routes, err := o.attempt(ctx, o.secondary, start, end, alternatives)
		if err == nil {
			return routes, o.secondary.Name(), warnings, nil
		}
		o.logger.Warn("secondary provider failed", "provider", o.secondary.Name(), "error", err)
		if ctx.Err() != nil {
			return nil, "", warnings, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		warnings = append(warnings, "secondary provider unavailable")
	}

	local := &localPathfinder{
		segments:     annotated,
		mergeRadiusM: o.opts.NodeMergeRadiusM,
		snapRadiusM:  o.opts.SnapRadiusM,
	}
	routes, err := local.Routes(ctx, start, end, alternatives)
	if err != nil {
		// Terminal: the graph itself cannot connect the points
		return nil, "", warnings, err
	}

	warnings = append(warnings, "all route providers unavailable, used local street graph")
	return routes, local.Name(), warnings, nil
}

func (o *Orchestrator) attempt(ctx context.Context, p Provider, start, end domain.Point, alternatives int) ([]domain.RawRoute, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.opts.ProviderTimeout)
	defer cancel()

	routes, err := p.Routes(attemptCtx, start, end, alternatives)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, domain.ErrMalformedResponse
	}
	return routes, nil
}

// enhance matches each raw route against the annotated dataset and attaches
// a travel-time prediction. Routes are independent, so they run in a
// bounded worker pool.
func (o *Orchestrator) enhance(raw []domain.RawRoute, annotated []domain.StreetSegment) []domain.RouteCandidate {
	at := o.now()
	candidates := make([]domain.RouteCandidate, len(raw))

	var g errgroup.Group
	g.SetLimit(o.opts.EnhanceWorkers)
	for i, rr := range raw {
		i, rr := i, rr
		g.Go(func() error {
			candidates[i] = o.enhanceOne(rr, annotated, at)
			return nil
		})
	}
	// Enhancement closures never fail; Wait only fences the pool
	_ = g.Wait()

	return candidates
}

func (o *Orchestrator) enhanceOne(rr domain.RawRoute, annotated []domain.StreetSegment, at time.Time) domain.RouteCandidate {
	matched := matchTraffic(rr.Geometry, annotated, o.opts.SampleIntervalM, o.opts.MatchRadiusM)
	prediction := o.predictor.Predict(rr.DistanceMeters/1000, matched, at)

	delay := prediction.Minutes - rr.DurationSeconds/60
	if delay < 0 {
		delay = 0
	}

	return domain.RouteCandidate{
		Geometry:         rr.Geometry,
		DistanceMeters:   rr.DistanceMeters,
		DurationSeconds:  rr.DurationSeconds,
		PredictedMinutes: prediction.Minutes,
		MinMinutes:       prediction.MinMinutes,
		MaxMinutes:       prediction.MaxMinutes,
		Confidence:       prediction.Confidence,
		AvgSpeedKmh:      prediction.AvgSpeedKmh,
		DelayMinutes:     delay,
		Quality:          domain.QualityForConfidence(prediction.Confidence),
	}
}

// rank sorts candidates by traffic-aware duration and flags exactly one as
// recommended: best quality tier, ties broken by lowest predicted minutes
func (o *Orchestrator) rank(candidates []domain.RouteCandidate) {
	if len(candidates) == 0 {
		return
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PredictedMinutes < candidates[j].PredictedMinutes
	})

	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Quality.Better(candidates[best].Quality) {
			best = i
		}
	}
	candidates[best].Recommended = true
}
