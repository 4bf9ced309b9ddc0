package state

import (
	"errors"

	"github.com/fluid-props/helmholtz/observability"
)

// Sentinel errors for state operations.
var (
	// ErrInvalidArgument indicates a misused conversion or constraint helper:
	// violated argument exclusivity, out-of-bound inputs, or toggling a
	// constraint a block never built.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFlagShape indicates a Release call whose flags do not match the
	// structure produced by the corresponding Hold.
	ErrFlagShape = errors.New("state flags do not match block collection")
)

// Observability event types emitted by this package.
const (
	EventBuild         observability.EventType = "state.build"
	EventKernelMissing observability.EventType = "state.kernel.missing"
)
