package route

import (
	"context"

	"bishroute/internal/domain"
)

// Provider is the uniform route-computation capability: given two points,
// return one or more raw routes or a typed failure. Implemented by each
// external service and by the local graph fallback.
type Provider interface {
	Name() string
	Routes(ctx context.Context, start, end domain.Point, alternatives int) ([]domain.RawRoute, error)
}
