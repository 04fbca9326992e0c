// Package audit emits one structured log entry per finalized authorization
// decision. Reason codes are preserved here so a reviewer can always tell a
// policy denial from an infrastructure denial, even though callers never
// need the distinction to behave safely.
package audit

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/toolgate/toolgate/model"
)

var sensitiveKeyPattern = regexp.MustCompile(`(?i)(token|secret|password|credential|authorization|api[_-]?key)`)

// Entry captures one finalized authorization outcome.
type Entry struct {
	RequestID string
	Scope     model.ScopeKey
	Tier      model.RiskTier
	Outcome   model.Outcome
	Reason    model.Reason
	RuleID    string
	GrantedBy string
	Arguments map[string]interface{}
	Duration  time.Duration
}

// Logger writes structured audit entries.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates an audit logger on top of the supplied zerolog logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

// Nop returns a logger that discards every entry.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Decision writes a single entry for one authorization cycle.
func (l *Logger) Decision(entry Entry) {
	if l == nil {
		return
	}
	duration := entry.Duration
	if duration < 0 {
		duration = 0
	}

	event := l.logger.Info().
		Str("event", "toolgate.decision").
		Str("request_id", entry.RequestID).
		Str("session_id", entry.Scope.SessionID).
		Str("tool", entry.Scope.ToolName).
		Str("resource_id", entry.Scope.ResourceID).
		Str("tier", string(entry.Tier)).
		Str("outcome", string(entry.Outcome)).
		Str("reason", string(entry.Reason)).
		Int64("duration_ms", duration.Milliseconds())

	if entry.RuleID != "" {
		event = event.Str("rule_id", entry.RuleID)
	}
	if entry.GrantedBy != "" {
		event = event.Str("granted_by", entry.GrantedBy)
	}
	if len(entry.Arguments) > 0 {
		event = event.Interface("arguments", RedactArguments(entry.Arguments))
	}
	event.Msg("authorization decided")
}

// Revocation writes an entry for an explicit revoke or session teardown.
func (l *Logger) Revocation(scope model.ScopeKey, cause string) {
	if l == nil {
		return
	}
	l.logger.Info().
		Str("event", "toolgate.revocation").
		Str("session_id", scope.SessionID).
		Str("tool", scope.ToolName).
		Str("resource_id", scope.ResourceID).
		Str("cause", cause).
		Msg("authorization revoked")
}

// RedactArguments replaces values under secret-looking keys so audit output
// never leaks credentials passed as tool arguments.
func RedactArguments(arguments map[string]interface{}) map[string]interface{} {
	redacted := make(map[string]interface{}, len(arguments))
	for key, value := range arguments {
		if sensitiveKeyPattern.MatchString(key) {
			redacted[key] = "[REDACTED]"
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			redacted[key] = RedactArguments(nested)
			continue
		}
		redacted[key] = value
	}
	return redacted
}

// ParseLevel is a small convenience for hosts configuring audit verbosity
// from text configuration.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
