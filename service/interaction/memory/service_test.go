package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/service/interaction"
	"github.com/toolgate/toolgate/service/interaction/memory"
)

func newPrompt(id string) *interaction.Prompt {
	return &interaction.Prompt{
		ID:    id,
		Scope: model.ScopeKey{SessionID: "s1", ResourceID: "r1", ToolName: "t1"},
		Tier:  model.RiskHigh,
		Tool:  &model.ToolDescriptor{Name: "t1", Description: "drops a table"},
	}
}

func TestRequestApprovalDecided(t *testing.T) {
	type testCase struct {
		name            string
		approve         bool
		options         []interaction.DecideOption
		expectedVerdict interaction.Verdict
		expectStanding  bool
	}

	tests := []testCase{
		{
			name:            "approved",
			approve:         true,
			expectedVerdict: interaction.VerdictApproved,
		},
		{
			name:            "declined",
			approve:         false,
			expectedVerdict: interaction.VerdictDeclined,
		},
		{
			name:            "standing approval",
			approve:         true,
			options:         []interaction.DecideOption{interaction.WithStanding(), interaction.WithDecidedBy("user-1")},
			expectedVerdict: interaction.VerdictApproved,
			expectStanding:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := memory.New()

			go func() {
				// Wait until the prompt shows up, then decide it.
				for {
					prompts, _ := svc.ListPending(ctx)
					if len(prompts) == 1 {
						_, err := svc.Decide(ctx, prompts[0].ID, tc.approve, "because", tc.options...)
						assert.NoError(t, err)
						return
					}
					time.Sleep(time.Millisecond)
				}
			}()

			decision, err := svc.RequestApproval(ctx, newPrompt("p1"), time.Second)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedVerdict, decision.Verdict)
			assert.Equal(t, tc.expectStanding, decision.Standing)

			// The prompt is no longer pending.
			prompts, err := svc.ListPending(ctx)
			require.NoError(t, err)
			assert.Empty(t, prompts)
		})
	}
}

func TestRequestApprovalTimesOut(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()

	decision, err := svc.RequestApproval(ctx, newPrompt("p1"), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, interaction.VerdictTimedOut, decision.Verdict)

	prompts, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, prompts, "timed out prompt must be cleaned up")

	// Deciding an expired prompt fails.
	_, err = svc.Decide(ctx, "p1", true, "")
	assert.Error(t, err)
}

func TestRequestApprovalCancelled(t *testing.T) {
	svc := memory.New()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := svc.RequestApproval(ctx, newPrompt("p1"), time.Minute)
	assert.ErrorIs(t, err, context.Canceled)

	prompts, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()

	stop := interaction.AutoApprove(ctx, svc, 5*time.Millisecond)
	defer stop()

	decision, err := svc.RequestApproval(ctx, newPrompt("p1"), time.Second)
	require.NoError(t, err)
	require.Equal(t, interaction.VerdictApproved, decision.Verdict)

	consumeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	message, err := svc.Queue().Consume(consumeCtx)
	require.NoError(t, err)
	assert.Equal(t, interaction.TopicPromptCreated, message.T().Topic)
	require.NoError(t, message.Ack())

	message, err = svc.Queue().Consume(consumeCtx)
	require.NoError(t, err)
	assert.Equal(t, interaction.TopicPromptDecided, message.T().Topic)
	require.NoError(t, message.Ack())
}

func TestAutoDecline(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()

	stop := interaction.AutoDecline(ctx, svc, "maintenance window", 5*time.Millisecond)
	defer stop()

	decision, err := svc.RequestApproval(ctx, newPrompt("p1"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, interaction.VerdictDeclined, decision.Verdict)
	assert.Equal(t, "maintenance window", decision.Reason)
}

func TestRequestApprovalUnconsumedEvents(t *testing.T) {
	svc := memory.New()
	ctx := context.Background()

	// Nobody consumes Queue(); the prompt wait must still be bounded by the
	// timeout once the event buffer fills.
	started := time.Now()
	for i := 0; i < 150; i++ {
		decision, err := svc.RequestApproval(ctx, newPrompt(fmt.Sprintf("p-%d", i)), time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, interaction.VerdictTimedOut, decision.Verdict)
	}
	assert.Less(t, time.Since(started), 10*time.Second)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
