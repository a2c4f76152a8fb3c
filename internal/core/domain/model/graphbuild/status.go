package graphbuild

import (
	"fmt"

	"routing/internal/pkg/errs"
)

// Status represents the lifecycle state of a build record.
// It implements a forward-only state machine:
//
//	Pending ──> Building ──> (Testing ──>) Ready ──> Deployed ──> Deprecated
//	    │           │            │
//	    └───────────┴────────────┴──> Failed
//
// Failed is reachable from any in-flight state. Deprecated is reachable only
// from Deployed and marks supersession by a newer deployed build. Testing is
// a reserved external validation gate: a valid transition target, but not
// produced by the pipeline's own flows.
//
// Status is a value object; transitions go through CanTransitionTo so that
// every consumer shares one table.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of a freshly registered build.
	Pending

	// Building indicates the build operation has begun executing.
	Building

	// Testing is a reserved intermediate state for an external validation
	// gate between compilation and readiness.
	Testing

	// Ready marks successful completion of compilation.
	Ready

	// Deployed marks promotion of a compiled graph into active service.
	Deployed

	// Failed is terminal; reachable from any in-flight state.
	Failed

	// Deprecated retires a Deployed record superseded by a newer build.
	Deprecated
)

// getStatusStrings returns the string representation of every Status,
// including Unknown.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Pending:    "Pending",
		Building:   "Building",
		Testing:    "Testing",
		Ready:      "Ready",
		Deployed:   "Deployed",
		Failed:     "Failed",
		Deprecated: "Deprecated",
	}
}

// validTransitions is the complete transition table. A status missing a
// target here cannot move to it, full stop.
func validTransitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Building, Failed},
		Building:   {Testing, Ready, Failed},
		Testing:    {Ready, Failed},
		Ready:      {Deployed},
		Deployed:   {Deprecated},
		Failed:     {},
		Deprecated: {},
	}
}

// Validate checks that the Status is one of the closed set.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if s < Pending || s > Deprecated {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status, or "Unknown" for
// invalid values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsInFlight reports whether the status is one of the non-terminal states
// Pending, Building, or Testing. The registry guarantees at most one
// in-flight record per instance name.
func (s Status) IsInFlight() bool {
	return s == Pending || s == Building || s == Testing
}

// IsTerminal reports whether the build attempt has reached an outcome.
// Ready and Deployed are terminal for the attempt even though they still
// accept promotion transitions.
func (s Status) IsTerminal() bool {
	return s == Ready || s == Deployed || s == Failed || s == Deprecated
}

// CanTransitionTo reports whether the transition s -> target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo validates and performs the transition, returning the new
// status or an error describing the rejected move.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(target) {
		return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("transition %s -> %s is not allowed", s, target))
	}
	return target, nil
}
