package core

import "errors"

// Error taxonomy for the verification surface. Collaborator failures are
// recovered locally (component absent) and only surface when they leave the
// aggregator with zero signals.
var (
	// ErrInsufficientSignal means no component scores could be gathered.
	// Callers must retry later or accept a null result; not retried here.
	ErrInsufficientSignal = errors.New("insufficient signal: no component scores available")

	// ErrUpstreamUnavailable means a specific collaborator could not be
	// reached. Wrapped with the collaborator name at the call site.
	ErrUpstreamUnavailable = errors.New("upstream collaborator unavailable")

	// ErrInvalidAgentID means the identifier is malformed or unresolvable.
	ErrInvalidAgentID = errors.New("invalid agent identifier")
)
