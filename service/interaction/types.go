// Package interaction defines the User Interaction channel: the collaborator
// that presents approval prompts and returns a verdict. The engine only ever
// consumes this interface; hosts plug in a UI, a chat surface, or one of the
// Auto* helpers for headless runs.
package interaction

import (
	"errors"
	"time"

	"github.com/toolgate/toolgate/model"
)

// ErrUnavailable signals that the channel cannot deliver prompts at all
// (as opposed to delivering one that then times out). The coordinator
// treats it as a decline.
var ErrUnavailable = errors.New("interaction: channel unavailable")

// Verdict is the user's answer to an approval prompt.
type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictDeclined Verdict = "DECLINED"
	VerdictTimedOut Verdict = "TIMED_OUT"
)

// Event envelope published on the channel's queue so observers (UIs,
// headless deciders) can watch prompt traffic.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Prompt | *Decision
	Headers map[string]string `json:"headers,omitempty"`
}

// Standard event topics.
const (
	TopicPromptCreated = "prompt.created"
	TopicPromptDecided = "prompt.decided"
	TopicPromptExpired = "prompt.expired"
)

// Prompt is one pending approval request: the scope, the risk tier and the
// tool description shown to the user.
type Prompt struct {
	ID        string                 `json:"id"`
	Scope     model.ScopeKey         `json:"scope"`
	Tier      model.RiskTier         `json:"tier"`
	Tool      *model.ToolDescriptor  `json:"tool,omitempty"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt *time.Time             `json:"expiresAt,omitempty"`
}

// Decision is a user's verdict on a prompt.
type Decision struct {
	ID        string  `json:"id"` // same as prompt.ID
	Verdict   Verdict `json:"verdict"`
	Reason    string  `json:"reason,omitempty"`
	DecidedBy string  `json:"decidedBy,omitempty"`
	// Standing marks an approval the user granted as standing, letting a
	// suitably configured policy skip re-confirmation for HIGH-tier calls.
	Standing  bool      `json:"standing,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// Approved reports whether the verdict permits the call.
func (d *Decision) Approved() bool {
	return d != nil && d.Verdict == VerdictApproved
}
