// Package memory implements an in-process interaction channel. Prompts are
// held in a pending map, published on the event queue for observers, and
// resolved through Decide – typically driven by a UI consuming the queue or
// by the interaction.AutoDecider helpers.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/internal/idgen"
	"github.com/toolgate/toolgate/service/interaction"
	"github.com/toolgate/toolgate/service/messaging"
	qmem "github.com/toolgate/toolgate/service/messaging/memory"
)

type pendingPrompt struct {
	prompt  *interaction.Prompt
	decided chan *interaction.Decision
}

type service struct {
	mu      sync.Mutex
	pending map[string]*pendingPrompt
	events  messaging.Queue[interaction.Event]
}

// Option customises the channel.
type Option func(*service)

// WithQueue replaces the default in-memory event queue. Event delivery is
// best-effort: queues exposing a non-blocking TryPublish get events dropped
// on a full buffer, any other queue must accept publishes without blocking
// so the prompt flow never stalls on a missing consumer.
func WithQueue(queue messaging.Queue[interaction.Event]) Option {
	return func(s *service) { s.events = queue }
}

// New creates an in-memory interaction channel.
func New(options ...Option) interaction.Service {
	ret := &service{
		pending: make(map[string]*pendingPrompt),
		events:  qmem.NewQueue[interaction.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// RequestApproval registers the prompt and blocks until a verdict arrives,
// the timeout elapses or ctx is cancelled. No lock is held while waiting.
func (s *service) RequestApproval(ctx context.Context, prompt *interaction.Prompt, timeout time.Duration) (*interaction.Decision, error) {
	if prompt == nil {
		return nil, errors.New("invalid prompt")
	}
	if prompt.ID == "" {
		prompt.ID = idgen.New()
	}
	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = clock.Now()
	}
	if timeout > 0 && prompt.ExpiresAt == nil {
		expiresAt := prompt.CreatedAt.Add(timeout)
		prompt.ExpiresAt = &expiresAt
	}

	entry := &pendingPrompt{prompt: prompt, decided: make(chan *interaction.Decision, 1)}
	s.mu.Lock()
	if _, exists := s.pending[prompt.ID]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("prompt %s already pending", prompt.ID)
	}
	s.pending[prompt.ID] = entry
	s.mu.Unlock()

	s.publish(ctx, &interaction.Event{Topic: interaction.TopicPromptCreated, Data: prompt})

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case decision := <-entry.decided:
		return decision, nil
	case <-timer:
		s.remove(prompt.ID)
		s.publish(ctx, &interaction.Event{Topic: interaction.TopicPromptExpired, Data: prompt})
		return &interaction.Decision{ID: prompt.ID, Verdict: interaction.VerdictTimedOut, DecidedAt: clock.Now()}, nil
	case <-ctx.Done():
		s.remove(prompt.ID)
		return nil, ctx.Err()
	}
}

// ListPending returns a snapshot of prompts awaiting a verdict.
func (s *service) ListPending(_ context.Context) ([]*interaction.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompts := make([]*interaction.Prompt, 0, len(s.pending))
	for _, entry := range s.pending {
		prompts = append(prompts, entry.prompt)
	}
	return prompts, nil
}

// Decide resolves a pending prompt with the user's verdict.
func (s *service) Decide(ctx context.Context, id string, approved bool, reason string, options ...interaction.DecideOption) (*interaction.Decision, error) {
	if id == "" {
		return nil, errors.New("empty prompt id")
	}
	s.mu.Lock()
	entry, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("prompt %s not found", id)
	}

	verdict := interaction.VerdictDeclined
	if approved {
		verdict = interaction.VerdictApproved
	}
	decision := &interaction.Decision{
		ID:        id,
		Verdict:   verdict,
		Reason:    reason,
		DecidedAt: clock.Now(),
	}
	for _, option := range options {
		option(decision)
	}

	entry.decided <- decision
	s.publish(ctx, &interaction.Event{Topic: interaction.TopicPromptDecided, Data: decision})
	return decision, nil
}

// Queue exposes the event stream.
func (s *service) Queue() messaging.Queue[interaction.Event] { return s.events }

// publish fans an event out to observers. Events are advisory: when no
// consumer keeps up with the buffer the event is dropped, so a host that
// drives approvals solely through ListPending/Decide never blocks a waiting
// prompt on the untaken stream.
func (s *service) publish(ctx context.Context, event *interaction.Event) {
	if queue, ok := s.events.(interface {
		TryPublish(event *interaction.Event) bool
	}); ok {
		_ = queue.TryPublish(event)
		return
	}
	_ = s.events.Publish(ctx, event)
}

func (s *service) remove(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

var _ interaction.Service = (*service)(nil)
