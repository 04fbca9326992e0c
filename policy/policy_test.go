package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgate/toolgate/model"
)

func newRecord(standing bool) *model.AuthorizationRecord {
	return &model.AuthorizationRecord{
		ID:        "rec-1",
		Scope:     model.ScopeKey{SessionID: "s1", ResourceID: "r1", ToolName: "t1"},
		GrantedAt: time.Now(),
		Standing:  standing,
	}
}

func newInput(tier model.RiskTier, hit *model.AuthorizationRecord) *Input {
	return &Input{
		Request: &model.Request{SessionID: "s1", ToolName: "t1", ResourceID: "r1"},
		Tool:    &model.ToolDescriptor{Name: "t1"},
		Tier:    tier,
		Hit:     hit,
	}
}

func TestEvaluateBaseTable(t *testing.T) {
	type testCase struct {
		name            string
		tier            model.RiskTier
		hit             *model.AuthorizationRecord
		standingGrants  bool
		expectedOutcome model.Outcome
		expectedRule    string
	}

	tests := []testCase{
		{
			name:            "low without record allows",
			tier:            model.RiskLow,
			expectedOutcome: model.OutcomeAllow,
			expectedRule:    RuleLow,
		},
		{
			name:            "low with record allows",
			tier:            model.RiskLow,
			hit:             newRecord(false),
			expectedOutcome: model.OutcomeAllow,
			expectedRule:    RuleLow,
		},
		{
			name:            "medium hit allows",
			tier:            model.RiskMedium,
			hit:             newRecord(false),
			expectedOutcome: model.OutcomeAllow,
			expectedRule:    RuleMediumHit,
		},
		{
			name:            "medium miss requires approval",
			tier:            model.RiskMedium,
			expectedOutcome: model.OutcomeRequireApproval,
			expectedRule:    RuleMediumMiss,
		},
		{
			name:            "high hit re-confirms",
			tier:            model.RiskHigh,
			hit:             newRecord(false),
			expectedOutcome: model.OutcomeRequireApproval,
			expectedRule:    RuleHighReconfirm,
		},
		{
			name:            "high miss requires approval",
			tier:            model.RiskHigh,
			expectedOutcome: model.OutcomeRequireApproval,
			expectedRule:    RuleHighMiss,
		},
		{
			name:            "standing high grant honored when configured",
			tier:            model.RiskHigh,
			hit:             newRecord(true),
			standingGrants:  true,
			expectedOutcome: model.OutcomeAllow,
			expectedRule:    RuleHighStanding,
		},
		{
			name:            "standing record ignored by default",
			tier:            model.RiskHigh,
			hit:             newRecord(true),
			expectedOutcome: model.OutcomeRequireApproval,
			expectedRule:    RuleHighReconfirm,
		},
		{
			name:            "non-standing record never bypasses re-confirmation",
			tier:            model.RiskHigh,
			hit:             newRecord(false),
			standingGrants:  true,
			expectedOutcome: model.OutcomeRequireApproval,
			expectedRule:    RuleHighReconfirm,
		},
		{
			name:            "unknown tier treated as high",
			tier:            model.RiskTier("EXTREME"),
			expectedOutcome: model.OutcomeRequireApproval,
			expectedRule:    RuleHighMiss,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := New(WithStandingHighGrants(tc.standingGrants))
			decision := engine.Evaluate(context.Background(), newInput(tc.tier, tc.hit))
			assert.Equal(t, tc.expectedOutcome, decision.Outcome)
			assert.Equal(t, tc.expectedRule, decision.RuleID)
		})
	}
}

func TestRegisterRejectsDowngrades(t *testing.T) {
	engine := New()

	err := engine.Register(Predicate{
		Name:    "after-hours-allow",
		Outcome: model.OutcomeAllow,
		When:    func(context.Context, *Input) bool { return true },
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMisconfigured)

	err = engine.Register(Predicate{
		Name:    "bogus-outcome",
		Outcome: model.Outcome("MAYBE"),
		When:    func(context.Context, *Input) bool { return true },
	})
	assert.ErrorIs(t, err, ErrMisconfigured)

	err = engine.Register(Predicate{Name: "", Outcome: model.OutcomeDeny,
		When: func(context.Context, *Input) bool { return true }})
	assert.ErrorIs(t, err, ErrMisconfigured)

	err = engine.Register(Predicate{Name: "no-condition", Outcome: model.OutcomeDeny})
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestPredicatesOnlyEscalate(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Register(Predicate{
		Name:    "external-resource",
		Outcome: model.OutcomeRequireApproval,
		When: func(_ context.Context, input *Input) bool {
			return input.Request.ResourceID == "r1"
		},
	}))

	// LOW base decision is ALLOW; the matching predicate escalates it.
	decision := engine.Evaluate(context.Background(), newInput(model.RiskLow, nil))
	assert.Equal(t, model.OutcomeRequireApproval, decision.Outcome)
	assert.Equal(t, model.ReasonPredicate, decision.Reason)
	assert.Equal(t, "external-resource", decision.RuleID)

	// A non-matching predicate leaves the base decision alone.
	input := newInput(model.RiskLow, nil)
	input.Request.ResourceID = "other"
	decision = engine.Evaluate(context.Background(), input)
	assert.Equal(t, model.OutcomeAllow, decision.Outcome)
}

func TestPredicateConflictResolution(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Register(Predicate{
		Name:    "needs-review",
		Outcome: model.OutcomeRequireApproval,
		When:    func(context.Context, *Input) bool { return true },
	}))
	require.NoError(t, engine.Register(Predicate{
		Name:    "hard-block",
		Outcome: model.OutcomeDeny,
		When:    func(context.Context, *Input) bool { return true },
	}))

	// Most restrictive of all firing predicates wins.
	decision := engine.Evaluate(context.Background(), newInput(model.RiskLow, nil))
	assert.Equal(t, model.OutcomeDeny, decision.Outcome)
	assert.Equal(t, "hard-block", decision.RuleID)
}

func TestTypedPredicate(t *testing.T) {
	type transferArgs struct {
		Amount int    `json:"amount"`
		Target string `json:"target"`
	}

	engine := New()
	predicate := Typed("large-transfer", model.OutcomeRequireApproval,
		func(_ context.Context, _ *Input, args *transferArgs) bool {
			return args.Amount > 1000
		})
	require.NoError(t, engine.Register(predicate))

	input := newInput(model.RiskLow, nil)
	input.Request.Arguments = map[string]interface{}{"amount": 5000, "target": "acct-9"}
	decision := engine.Evaluate(context.Background(), input)
	assert.Equal(t, model.OutcomeRequireApproval, decision.Outcome)
	assert.Equal(t, "large-transfer", decision.RuleID)

	input.Request.Arguments = map[string]interface{}{"amount": 5, "target": "acct-9"}
	decision = engine.Evaluate(context.Background(), input)
	assert.Equal(t, model.OutcomeAllow, decision.Outcome)
}

func TestEvaluateIsPure(t *testing.T) {
	engine := New()
	input := newInput(model.RiskMedium, nil)
	first := engine.Evaluate(context.Background(), input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Evaluate(context.Background(), input))
	}
}
