package toolgate

import (
	"time"

	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/interaction"
	"github.com/toolgate/toolgate/service/ledger"
	"github.com/toolgate/toolgate/service/registry"
	"github.com/toolgate/toolgate/service/resolver"
)

// Option customises a Service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLedger sets the authorization ledger.
func WithLedger(svc ledger.Service) Option {
	return func(s *Service) { s.ledger = svc }
}

// WithRegistry sets the tool registry.
func WithRegistry(svc registry.Service) Option {
	return func(s *Service) { s.registry = svc }
}

// WithInteraction sets the user interaction channel.
func WithInteraction(svc interaction.Service) Option {
	return func(s *Service) { s.interaction = svc }
}

// WithResolver sets the resource id resolver.
func WithResolver(svc resolver.Service) Option {
	return func(s *Service) { s.resolver = svc }
}

// WithPolicyEngine replaces the policy engine entirely. Engines supplied
// here win over WithPolicyOptions and the Policy section of the config.
func WithPolicyEngine(engine *policy.Engine) Option {
	return func(s *Service) { s.policy = engine }
}

// WithPolicyOptions appends options for the engine the service builds from
// its config; ignored when WithPolicyEngine is used.
func WithPolicyOptions(options ...policy.Option) Option {
	return func(s *Service) { s.policyOptions = append(s.policyOptions, options...) }
}

// WithStandingHighGrants toggles whether standing HIGH-tier approvals skip
// re-confirmation.
func WithStandingHighGrants(enabled bool) Option {
	return func(s *Service) {
		s.policyOptions = append(s.policyOptions, policy.WithStandingHighGrants(enabled))
	}
}

// WithAuditLogger sets the audit logger.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(s *Service) { s.audit = logger }
}

// WithApprovalTimeout overrides the configured approval wait bound.
func WithApprovalTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.approvalTimeout = timeout }
}

// WithRecordTTL overrides the configured lifetime of recorded approvals;
// zero means records only end by revocation or supersession.
func WithRecordTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.recordTTL = ttl
		s.recordTTLSet = true
	}
}

// WithTracing enables OpenTelemetry spans around each authorization stage,
// exporting to stdout unless the host installed its own provider first.
func WithTracing(serviceName, serviceVersion string) Option {
	return func(s *Service) {
		s.tracingService = serviceName
		s.tracingVersion = serviceVersion
	}
}
