package model

// Outcome is the verdict of a single authorization evaluation.
type Outcome string

const (
	// OutcomeAllow lets the call proceed immediately.
	OutcomeAllow Outcome = "ALLOW"
	// OutcomeRequireApproval defers the call pending an explicit user verdict.
	OutcomeRequireApproval Outcome = "REQUIRE_APPROVAL"
	// OutcomeDeny rejects the call.
	OutcomeDeny Outcome = "DENY"
)

// Restrictiveness orders outcomes from most permissive to most restrictive.
// Predicates may only move a decision towards a higher value.
func (o Outcome) Restrictiveness() int {
	switch o {
	case OutcomeAllow:
		return 0
	case OutcomeRequireApproval:
		return 1
	case OutcomeDeny:
		return 2
	}
	return 2
}

// Reason identifies why a decision was reached. Reasons are preserved for
// audit; callers do not need to distinguish them to behave safely.
type Reason string

const (
	ReasonLowRisk         Reason = "RISK_LOW"
	ReasonLedgerHit       Reason = "LEDGER_HIT"
	ReasonLedgerMiss      Reason = "LEDGER_MISS"
	ReasonReconfirm       Reason = "HIGH_RISK_RECONFIRM"
	ReasonStandingGrant   Reason = "STANDING_GRANT"
	ReasonPredicate       Reason = "PREDICATE"
	ReasonUserApproved    Reason = "USER_APPROVED"
	ReasonUserDeclined    Reason = "USER_DECLINED"
	ReasonUserTimeout     Reason = "USER_CHANNEL_TIMEOUT"
	ReasonUserChannelDown Reason = "USER_CHANNEL_UNAVAILABLE"
	ReasonToolNotFound    Reason = "TOOL_NOT_FOUND"
	ReasonUnresolvable    Reason = "RESOURCE_ID_UNRESOLVABLE"
	ReasonRecordFailed    Reason = "LEDGER_RECORD_FAILED"
)

// Decision is the product of one authorization cycle. Decisions are produced
// fresh per request and never persisted.
type Decision struct {
	Outcome Outcome  `json:"outcome"`
	Reason  Reason   `json:"reason"`
	Tier    RiskTier `json:"tier,omitempty"`
	// RuleID names the policy rule (or predicate) that determined the
	// outcome, e.g. "base:medium-miss" or a registered predicate name.
	RuleID string `json:"ruleId,omitempty"`
	// Retryable marks infrastructure denials the caller may retry, such as
	// an approval that could not be recorded.
	Retryable bool `json:"retryable,omitempty"`
	// Scope is the resolved scope the decision applies to; zero when the
	// resource id could not be resolved.
	Scope ScopeKey `json:"scope,omitempty"`
}

// Allowed reports whether the call may proceed.
func (d *Decision) Allowed() bool {
	return d != nil && d.Outcome == OutcomeAllow
}
