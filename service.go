package toolgate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/interaction"
	imemory "github.com/toolgate/toolgate/service/interaction/memory"
	"github.com/toolgate/toolgate/service/ledger"
	lfs "github.com/toolgate/toolgate/service/ledger/fs"
	lmemory "github.com/toolgate/toolgate/service/ledger/memory"
	"github.com/toolgate/toolgate/service/registry"
	rmemory "github.com/toolgate/toolgate/service/registry/memory"
	"github.com/toolgate/toolgate/service/resolver"
	"github.com/toolgate/toolgate/tracing"
)

// Service is the authorization decision engine façade. One instance owns
// its ledger, registry, interaction channel, resolver and policy engine;
// nothing is shared through package-level state, so hosts may run several
// independently configured instances side by side.
type Service struct {
	config      *Config
	ledger      ledger.Service
	registry    registry.Service
	interaction interaction.Service
	resolver    resolver.Service
	policy      *policy.Engine
	audit       *audit.Logger

	policyOptions   []policy.Option
	approvalTimeout time.Duration
	recordTTL       time.Duration
	recordTTLSet    bool
	tracingService  string
	tracingVersion  string
}

// New creates a service, defaulting every collaborator that no option
// supplied: in-memory ledger (or the file backed one when the config names
// a base URL), empty in-memory registry, in-memory interaction channel,
// empty resolver rule set and a policy engine built from the config.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.approvalTimeout == 0 {
		s.approvalTimeout = s.config.ApprovalTimeout.Std()
	}
	if !s.recordTTLSet {
		s.recordTTL = s.config.RecordTTL.Std()
	}
	if s.ledger == nil {
		if baseURL := s.config.Ledger.BaseURL; baseURL != "" {
			store, err := lfs.New(baseURL)
			if err != nil {
				return fmt.Errorf("failed to open ledger at %v: %w", baseURL, err)
			}
			s.ledger = store
		} else {
			s.ledger = lmemory.New()
		}
	}
	if s.registry == nil {
		s.registry = rmemory.New()
	}
	if s.interaction == nil {
		s.interaction = imemory.New()
	}
	if s.resolver == nil {
		rules, err := resolver.NewWithRules(s.config.Resolver)
		if err != nil {
			return fmt.Errorf("invalid resolver rules: %w", err)
		}
		s.resolver = rules
	}
	if s.policy == nil {
		options := append([]policy.Option{policy.WithConfig(s.config.Policy)}, s.policyOptions...)
		s.policy = policy.New(options...)
	}
	if s.audit == nil {
		level := audit.ParseLevel(s.config.Audit.Level)
		if level == zerolog.Disabled {
			s.audit = audit.Nop()
		} else {
			s.audit = audit.NewLogger(zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger())
		}
	}
	if s.tracingService != "" {
		if err := tracing.Init(s.tracingService, s.tracingVersion, ""); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	return nil
}

// Ledger exposes the authorization ledger, e.g. for host-driven revocation
// UIs.
func (s *Service) Ledger() ledger.Service { return s.ledger }

// Registry exposes the tool registry.
func (s *Service) Registry() registry.Service { return s.registry }

// Interaction exposes the user interaction channel so hosts can surface and
// answer pending prompts.
func (s *Service) Interaction() interaction.Service { return s.interaction }

// Resolver exposes the resource id resolver.
func (s *Service) Resolver() resolver.Service { return s.resolver }

// Policy exposes the policy engine, e.g. to register predicates.
func (s *Service) Policy() *policy.Engine { return s.policy }

// RevokeScope withdraws the active authorization for the scope, if any.
// Subsequent calls in that scope re-enter the approval flow.
func (s *Service) RevokeScope(ctx context.Context, scope model.ScopeKey) error {
	if err := s.ledger.Revoke(ctx, scope); err != nil {
		return err
	}
	s.audit.Revocation(scope, "revoked")
	return nil
}

// CloseSession revokes every active authorization of the session and
// returns how many records it withdrew. Hosts call it when a session ends
// so grants never outlive the conversation they were given in.
func (s *Service) CloseSession(ctx context.Context, sessionID string) (int, error) {
	active, err := s.ledger.ListActive(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	revoked := 0
	for _, record := range active {
		if err := s.ledger.Revoke(ctx, record.Scope); err != nil {
			return revoked, err
		}
		s.audit.Revocation(record.Scope, "session closed")
		revoked++
	}
	return revoked, nil
}
