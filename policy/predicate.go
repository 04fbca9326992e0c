package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/toolgate/toolgate/model"
)

// ErrMisconfigured is returned when a predicate registration would weaken
// live decisions. Rejection happens at registration time so that a
// misconfigured policy can never silently downgrade an evaluation.
var ErrMisconfigured = errors.New("policy: misconfigured predicate")

// PredicateFunc reports whether a predicate applies to the supplied input.
// Conditions must be side-effect free; they run on every evaluation.
type PredicateFunc func(ctx context.Context, input *Input) bool

// Predicate is a contextual rule that escalates a decision when its
// condition holds – for example a time-of-day window or a resource-state
// check. Predicates may only add caution: the registered outcome must be
// REQUIRE_APPROVAL or DENY, and at evaluation time a predicate is consulted
// only when its outcome is stricter than the decision so far.
type Predicate struct {
	// Name identifies the predicate on decisions it determines.
	Name string
	// Outcome the predicate escalates to when its condition holds.
	Outcome model.Outcome
	// When reports whether the predicate applies.
	When PredicateFunc
}

// Register adds a predicate to the engine. It fails when the predicate would
// be able to downgrade a decision (outcome ALLOW or unknown), or when name
// or condition is missing.
func (e *Engine) Register(p Predicate) error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrMisconfigured)
	}
	if p.When == nil {
		return fmt.Errorf("%w: predicate %q has no condition", ErrMisconfigured, p.Name)
	}
	switch p.Outcome {
	case model.OutcomeRequireApproval, model.OutcomeDeny:
	case model.OutcomeAllow:
		return fmt.Errorf("%w: predicate %q would downgrade to ALLOW", ErrMisconfigured, p.Name)
	default:
		return fmt.Errorf("%w: predicate %q has unknown outcome %q", ErrMisconfigured, p.Name, p.Outcome)
	}
	e.predicates = append(e.predicates, p)
	return nil
}

// MustRegister registers a predicate and panics on misconfiguration. Useful
// for static policy sets assembled at startup.
func (e *Engine) MustRegister(p Predicate) {
	if err := e.Register(p); err != nil {
		panic(err)
	}
}
