package domain

import "errors"

var (
	// ErrInvalidCoordinates means a requested point lies outside the supported region.
	// Rejected immediately, never retried.
	ErrInvalidCoordinates = errors.New("coordinates outside supported region")

	// ErrProviderUnavailable covers timeouts, connection errors and non-200
	// responses from an external routing provider. Absorbed by the failover
	// cascade and recorded as a warning.
	ErrProviderUnavailable = errors.New("route provider unavailable")

	// ErrMalformedResponse means a provider answered but the payload was
	// unusable. Treated the same as ErrProviderUnavailable by the cascade.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrUnreachablePoint means a coordinate could not be snapped to any
	// street graph node within the snap radius. Terminal.
	ErrUnreachablePoint = errors.New("point unreachable from street network")

	// ErrNoRouteFound means the street graph has no path between the snapped
	// endpoints. Terminal.
	ErrNoRouteFound = errors.New("no route found between points")
)
