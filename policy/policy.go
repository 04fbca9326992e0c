package policy

import (
	"context"

	"github.com/toolgate/toolgate/model"
)

// Base rule identifiers recorded on decisions so that audit entries can name
// the exact row of the rule table that fired.
const (
	RuleLow           = "base:low"
	RuleMediumHit     = "base:medium-hit"
	RuleMediumMiss    = "base:medium-miss"
	RuleHighStanding  = "base:high-standing"
	RuleHighReconfirm = "base:high-reconfirm"
	RuleHighMiss      = "base:high-miss"
)

// Config is the serialisable part of the engine configuration.
type Config struct {
	// StandingHighGrants lets a prior HIGH-tier approval marked as standing
	// satisfy subsequent calls without re-confirmation. Off by default:
	// destructive actions re-prompt even with a prior grant, so a single
	// early confirmation cannot silently authorize a whole session.
	StandingHighGrants bool `json:"standingHighGrants,omitempty" yaml:"standingHighGrants,omitempty"`
}

// Input carries everything Evaluate may consult. Hit is the active ledger
// record for the request scope, or nil on a miss; the caller is responsible
// for never passing an expired or revoked record.
type Input struct {
	Request *model.Request
	Tool    *model.ToolDescriptor
	Tier    model.RiskTier
	Hit     *model.AuthorizationRecord
}

// Engine evaluates the base rule table and any registered predicates.
// Evaluation is pure – the engine never touches the ledger or any other
// collaborator, and Evaluate never returns an error.
type Engine struct {
	config     Config
	predicates []Predicate
}

// Option customises a new engine.
type Option func(*Engine)

// WithStandingHighGrants toggles whether standing HIGH-tier records bypass
// re-confirmation.
func WithStandingHighGrants(enabled bool) Option {
	return func(e *Engine) { e.config.StandingHighGrants = enabled }
}

// WithConfig replaces the whole serialisable configuration.
func WithConfig(config Config) Option {
	return func(e *Engine) { e.config = config }
}

// New creates a policy engine.
func New(options ...Option) *Engine {
	e := &Engine{}
	for _, option := range options {
		option(e)
	}
	return e
}

// Evaluate produces a decision for the supplied input. An unrecognised risk
// tier is treated as HIGH. Registered predicates run after the base table
// and may only escalate the outcome; when several fire the most restrictive
// one wins.
func (e *Engine) Evaluate(ctx context.Context, input *Input) model.Decision {
	tier := input.Tier
	if !tier.IsValid() {
		tier = model.RiskHigh
	}
	decision := e.base(tier, input.Hit)
	decision.Tier = tier
	if input.Request != nil {
		decision.Scope = input.Request.Scope(input.Request.ResourceID)
	}
	return e.applyPredicates(ctx, input, decision)
}

func (e *Engine) base(tier model.RiskTier, hit *model.AuthorizationRecord) model.Decision {
	switch tier {
	case model.RiskLow:
		return model.Decision{Outcome: model.OutcomeAllow, Reason: model.ReasonLowRisk, RuleID: RuleLow}
	case model.RiskMedium:
		if hit != nil {
			return model.Decision{Outcome: model.OutcomeAllow, Reason: model.ReasonLedgerHit, RuleID: RuleMediumHit}
		}
		return model.Decision{Outcome: model.OutcomeRequireApproval, Reason: model.ReasonLedgerMiss, RuleID: RuleMediumMiss}
	default:
		if hit == nil {
			return model.Decision{Outcome: model.OutcomeRequireApproval, Reason: model.ReasonLedgerMiss, RuleID: RuleHighMiss}
		}
		if e.config.StandingHighGrants && hit.Standing {
			return model.Decision{Outcome: model.OutcomeAllow, Reason: model.ReasonStandingGrant, RuleID: RuleHighStanding}
		}
		return model.Decision{Outcome: model.OutcomeRequireApproval, Reason: model.ReasonReconfirm, RuleID: RuleHighReconfirm}
	}
}

func (e *Engine) applyPredicates(ctx context.Context, input *Input, decision model.Decision) model.Decision {
	for i := range e.predicates {
		p := &e.predicates[i]
		if p.Outcome.Restrictiveness() <= decision.Outcome.Restrictiveness() {
			continue
		}
		if !p.When(ctx, input) {
			continue
		}
		decision.Outcome = p.Outcome
		decision.Reason = model.ReasonPredicate
		decision.RuleID = p.Name
	}
	return decision
}
