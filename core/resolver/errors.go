package resolver

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrCycleDetected is matched by every *CycleError.
	ErrCycleDetected = zerr.New("dependency cycle detected")
	// ErrProviderFailed is returned when a provider lookup fails.
	ErrProviderFailed = zerr.New("dependency provider failed")
)

// CycleError reports a dependency that names one of its own ancestors.
// Chain runs from the root to the repeated name.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Chain, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
