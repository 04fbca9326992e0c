// Package ledger defines the store of prior user-granted authorizations.
// The ledger is pure data plus invariants – it holds no decision logic. At
// most one active record exists per scope at any time; a new approval for
// the same scope supersedes the prior record, which is kept in revoked form
// for auditability.
package ledger

import (
	"context"
	"errors"

	"github.com/toolgate/toolgate/model"
)

// Common, reusable ledger errors. Sentinel variables let callers detect
// conditions via errors.Is instead of brittle string comparisons.
var (
	// ErrUnavailable signals a storage-layer failure. Callers must treat it
	// as equivalent to "no record found" – absence of proof of authorization
	// is never upgraded to authorization.
	ErrUnavailable = errors.New("ledger: unavailable")

	// ErrInvalidScope indicates a scope key with one or more empty fields.
	ErrInvalidScope = errors.New("ledger: invalid scope")

	// ErrNilRecord is returned when the caller attempts to record a nil or
	// scope-less approval.
	ErrNilRecord = errors.New("ledger: nil record")
)

// Service stores and queries authorization records keyed by exact scope
// triples. Implementations must serialize Record/Revoke per scope so that
// concurrent approvals for the same scope resolve to a single active record,
// while operations on distinct scopes proceed without mutual blocking.
// Per-scope reads and writes are linearizable: a lookup that begins after a
// Record call completes observes that record.
type Service interface {
	// Lookup returns the active record for the scope, or nil when absent,
	// expired or revoked. It never returns an inactive record.
	Lookup(ctx context.Context, scope model.ScopeKey) (*model.AuthorizationRecord, error)

	// Record inserts an approval, superseding any existing active record for
	// the same scope; the superseded record is marked revoked, not deleted.
	Record(ctx context.Context, record *model.AuthorizationRecord) error

	// Revoke marks the active record for the scope (if any) revoked.
	// Idempotent when no active record exists.
	Revoke(ctx context.Context, scope model.ScopeKey) error

	// ListActive returns a snapshot of the active records for a session,
	// supporting session-teardown cleanup and UI display.
	ListActive(ctx context.Context, sessionID string) ([]*model.AuthorizationRecord, error)
}
