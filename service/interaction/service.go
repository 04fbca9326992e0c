package interaction

import (
	"context"
	"time"

	"github.com/toolgate/toolgate/service/messaging"
)

// Service is the user interaction channel consumed by the coordinator.
type Service interface {
	// RequestApproval presents the prompt and blocks until the user decides,
	// the timeout elapses (VerdictTimedOut), or ctx is cancelled. A non-nil
	// error means the channel itself failed; callers must treat both the
	// error and a timed-out verdict as a decline.
	RequestApproval(ctx context.Context, prompt *Prompt, timeout time.Duration) (*Decision, error)

	// ListPending returns a snapshot of the prompts awaiting a verdict.
	ListPending(ctx context.Context) ([]*Prompt, error)

	// Decide records the user's verdict for a pending prompt.
	Decide(ctx context.Context, id string, approved bool, reason string, options ...DecideOption) (*Decision, error)

	// Queue exposes the prompt/decision event stream. Delivery is
	// best-effort; hosts that don't consume it lose events, never prompts.
	Queue() messaging.Queue[Event]
}

// DecideOption annotates a verdict.
type DecideOption func(*Decision)

// WithDecidedBy records who answered the prompt.
func WithDecidedBy(userID string) DecideOption {
	return func(d *Decision) { d.DecidedBy = userID }
}

// WithStanding marks the approval as standing (see Decision.Standing).
func WithStanding() DecideOption {
	return func(d *Decision) { d.Standing = true }
}
