package workflow

import (
	"errors"
	"fmt"
)

// ErrNoApplicationName is returned by roadmap generation when called without a
// target application.
var ErrNoApplicationName = errors.New("workflow: application name is required")

// RoadmapParseError reports that the model's roadmap response could not be
// coerced into the three-phase shape. The orchestrator catches it per
// application; it never aborts the batch.
type RoadmapParseError struct {
	ApplicationName string
	Err             error
}

func (e *RoadmapParseError) Error() string {
	return fmt.Sprintf("workflow: parse roadmap for %q: %v", e.ApplicationName, e.Err)
}

func (e *RoadmapParseError) Unwrap() error { return e.Err }

// FailurePolicy controls how a stage treats per-item failures.
type FailurePolicy int

const (
	// IsolateAndContinue records an empty result for the failed item and moves
	// on to the next one.
	IsolateAndContinue FailurePolicy = iota
	// FailFast records the failure on the state and halts the stage.
	FailFast
)
