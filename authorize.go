package toolgate

import (
	"context"
	"errors"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/internal/idgen"
	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/risk"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/interaction"
	"github.com/toolgate/toolgate/tracing"
)

// ErrNilRequest is returned when Authorize is called without a request or
// with one missing its session or tool name.
var ErrNilRequest = errors.New("toolgate: nil or incomplete request")

// state names the coordinator phases; the terminal state is recorded on the
// authorize span.
type state string

const (
	stateReceived      state = "RECEIVED"
	stateClassified    state = "CLASSIFIED"
	stateLedgerChecked state = "LEDGER_CHECKED"
	stateDecided       state = "DECIDED"
	stateAwaitingUser  state = "AWAITING_USER"
	stateRecording     state = "RECORDING"
	stateExecuting     state = "EXECUTING"
	stateRejected      state = "REJECTED"
)

// Authorize decides whether one tool call may proceed. The returned error
// is non-nil only when the caller's context ends while the request is in
// flight; every infrastructure failure instead degrades to a Deny decision
// carrying a machine-readable reason, so absence of a working collaborator
// can never widen access.
//
// The flow is re-evaluated from scratch on every call: descriptor fetch,
// resource resolution, classification, ledger lookup, policy evaluation and,
// when required, a bounded wait for the user's verdict. No lock is held
// while awaiting the user, so other scopes and sessions keep deciding
// concurrently.
func (s *Service) Authorize(ctx context.Context, request *model.Request) (*model.Decision, error) {
	if request == nil || request.SessionID == "" || request.ToolName == "" {
		return nil, ErrNilRequest
	}

	started := clock.Now()
	requestID := idgen.New()
	current := stateReceived

	ctx, span := tracing.StartSpan(ctx, "toolgate.authorize")
	span.WithAttributes(map[string]string{
		"request.id":      requestID,
		"request.session": request.SessionID,
		"request.tool":    request.ToolName,
	})

	decision, grantedBy, err := s.authorize(ctx, request, requestID, &current)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, err
	}

	span.WithAttributes(map[string]string{
		"decision.state":   string(current),
		"decision.outcome": string(decision.Outcome),
		"decision.reason":  string(decision.Reason),
	})
	tracing.EndSpan(span, nil)

	s.audit.Decision(audit.Entry{
		RequestID: requestID,
		Scope:     decision.Scope,
		Tier:      decision.Tier,
		Outcome:   decision.Outcome,
		Reason:    decision.Reason,
		RuleID:    decision.RuleID,
		GrantedBy: grantedBy,
		Arguments: request.Arguments,
		Duration:  clock.Now().Sub(started),
	})
	return decision, nil
}

func (s *Service) authorize(ctx context.Context, request *model.Request, requestID string, current *state) (*model.Decision, string, error) {
	tool, err := s.registry.Descriptor(ctx, request.ToolName)
	if err != nil || tool == nil {
		*current = stateRejected
		return &model.Decision{
			Outcome: model.OutcomeDeny,
			Reason:  model.ReasonToolNotFound,
		}, "", nil
	}

	resourceID := request.ResourceID
	if resourceID == "" {
		resourceID, err = s.resolver.ResourceID(ctx, request.ToolName, request.Arguments)
		if err != nil || resourceID == "" {
			*current = stateRejected
			return &model.Decision{
				Outcome: model.OutcomeDeny,
				Reason:  model.ReasonUnresolvable,
			}, "", nil
		}
	}
	scope := request.Scope(resourceID)
	if request.ResourceID != resourceID {
		// Predicates inspect the request; they must see the resolved target,
		// not the empty id the caller sent.
		clone := *request
		clone.ResourceID = resourceID
		request = &clone
	}

	tier := risk.Classify(tool)
	*current = stateClassified

	// A ledger failure reads as a miss: the decision can only get stricter.
	hit, lookupErr := s.ledger.Lookup(ctx, scope)
	if lookupErr != nil {
		hit = nil
	}
	*current = stateLedgerChecked

	decision := s.policy.Evaluate(ctx, &policy.Input{
		Request: request,
		Tool:    tool,
		Tier:    tier,
		Hit:     hit,
	})
	decision.Scope = scope
	*current = stateDecided

	if decision.Outcome != model.OutcomeRequireApproval {
		if decision.Outcome == model.OutcomeAllow {
			*current = stateExecuting
		} else {
			*current = stateRejected
		}
		return &decision, grantedByOf(hit, decision), nil
	}

	*current = stateAwaitingUser
	verdict, err := s.awaitUser(ctx, requestID, scope, tier, tool, request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		*current = stateRejected
		return &model.Decision{
			Outcome:   model.OutcomeDeny,
			Reason:    model.ReasonUserChannelDown,
			Tier:      tier,
			RuleID:    decision.RuleID,
			Retryable: true,
			Scope:     scope,
		}, "", nil
	}

	switch verdict.Verdict {
	case interaction.VerdictApproved:
	case interaction.VerdictTimedOut:
		*current = stateRejected
		return &model.Decision{
			Outcome:   model.OutcomeDeny,
			Reason:    model.ReasonUserTimeout,
			Tier:      tier,
			RuleID:    decision.RuleID,
			Retryable: true,
			Scope:     scope,
		}, "", nil
	default:
		*current = stateRejected
		return &model.Decision{
			Outcome: model.OutcomeDeny,
			Reason:  model.ReasonUserDeclined,
			Tier:    tier,
			RuleID:  decision.RuleID,
			Scope:   scope,
		}, verdict.DecidedBy, nil
	}

	*current = stateRecording
	record := &model.AuthorizationRecord{
		ID:        idgen.New(),
		Scope:     scope,
		GrantedAt: clock.Now(),
		GrantedBy: verdict.DecidedBy,
		Standing:  verdict.Standing,
	}
	if s.recordTTL > 0 {
		expiresAt := record.GrantedAt.Add(s.recordTTL)
		record.ExpiresAt = &expiresAt
	}
	// An approval the ledger cannot persist must not execute: a later crash
	// would leave the grant invisible to revocation and audit.
	if err := s.ledger.Record(ctx, record); err != nil {
		*current = stateRejected
		return &model.Decision{
			Outcome:   model.OutcomeDeny,
			Reason:    model.ReasonRecordFailed,
			Tier:      tier,
			RuleID:    decision.RuleID,
			Retryable: true,
			Scope:     scope,
		}, verdict.DecidedBy, nil
	}

	*current = stateExecuting
	return &model.Decision{
		Outcome: model.OutcomeAllow,
		Reason:  model.ReasonUserApproved,
		Tier:    tier,
		RuleID:  decision.RuleID,
		Scope:   scope,
	}, verdict.DecidedBy, nil
}

func (s *Service) awaitUser(ctx context.Context, requestID string, scope model.ScopeKey, tier model.RiskTier, tool *model.ToolDescriptor, request *model.Request) (*interaction.Decision, error) {
	now := clock.Now()
	expiresAt := now.Add(s.approvalTimeout)
	prompt := &interaction.Prompt{
		ID:        requestID,
		Scope:     scope,
		Tier:      tier,
		Tool:      tool,
		Arguments: audit.RedactArguments(request.Arguments),
		CreatedAt: now,
		ExpiresAt: &expiresAt,
	}
	ctx, span := tracing.StartSpan(ctx, "toolgate.awaitUser")
	verdict, err := s.interaction.RequestApproval(ctx, prompt, s.approvalTimeout)
	tracing.EndSpan(span, err)
	return verdict, err
}

func grantedByOf(hit *model.AuthorizationRecord, decision model.Decision) string {
	if hit == nil {
		return ""
	}
	switch decision.Reason {
	case model.ReasonLedgerHit, model.ReasonStandingGrant:
		return hit.GrantedBy
	}
	return ""
}
