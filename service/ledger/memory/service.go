// Package memory provides the default in-memory ledger. Each scope owns its
// own entry with a dedicated mutex, so mutations for distinct scopes never
// block one another while same-scope operations stay linearizable.
package memory

import (
	"context"
	"sync"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/service/ledger"
)

// entry holds the full record history for one scope; the last element is
// the most recent record. Superseded and revoked records are retained.
type entry struct {
	mu      sync.Mutex
	history []*model.AuthorizationRecord
}

// Service is an in-memory ledger.Service implementation.
type Service struct {
	mu      sync.RWMutex
	entries map[model.ScopeKey]*entry
}

// New creates an empty in-memory ledger.
func New() *Service {
	return &Service{entries: make(map[model.ScopeKey]*entry)}
}

// Lookup returns a copy of the active record for the scope, or nil.
func (s *Service) Lookup(_ context.Context, scope model.ScopeKey) (*model.AuthorizationRecord, error) {
	if !scope.IsValid() {
		return nil, ledger.ErrInvalidScope
	}
	s.mu.RLock()
	e := s.entries[scope]
	s.mu.RUnlock()
	if e == nil {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now := clock.Now()
	for i := len(e.history) - 1; i >= 0; i-- {
		if e.history[i].Active(now) {
			return copyRecord(e.history[i]), nil
		}
	}
	return nil, nil
}

// Record inserts an approval, revoking any record still active for the
// same scope.
func (s *Service) Record(_ context.Context, record *model.AuthorizationRecord) error {
	if record == nil || !record.Scope.IsValid() {
		return ledger.ErrNilRecord
	}
	e := s.entry(record.Scope)

	e.mu.Lock()
	defer e.mu.Unlock()
	now := clock.Now()
	for _, prior := range e.history {
		if prior.Active(now) {
			revokedAt := now
			prior.RevokedAt = &revokedAt
		}
	}
	e.history = append(e.history, copyRecord(record))
	return nil
}

// Revoke marks the active record for the scope revoked; no-op otherwise.
func (s *Service) Revoke(_ context.Context, scope model.ScopeKey) error {
	if !scope.IsValid() {
		return ledger.ErrInvalidScope
	}
	s.mu.RLock()
	e := s.entries[scope]
	s.mu.RUnlock()
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now := clock.Now()
	for _, record := range e.history {
		if record.Active(now) {
			revokedAt := now
			record.RevokedAt = &revokedAt
		}
	}
	return nil
}

// ListActive returns copies of the active records for the session.
func (s *Service) ListActive(_ context.Context, sessionID string) ([]*model.AuthorizationRecord, error) {
	s.mu.RLock()
	candidates := make([]*entry, 0, len(s.entries))
	for scope, e := range s.entries {
		if scope.SessionID == sessionID {
			candidates = append(candidates, e)
		}
	}
	s.mu.RUnlock()

	now := clock.Now()
	var result []*model.AuthorizationRecord
	for _, e := range candidates {
		e.mu.Lock()
		for i := len(e.history) - 1; i >= 0; i-- {
			if e.history[i].Active(now) {
				result = append(result, copyRecord(e.history[i]))
				break
			}
		}
		e.mu.Unlock()
	}
	return result, nil
}

// entry returns the scope entry, creating it when absent.
func (s *Service) entry(scope model.ScopeKey) *entry {
	s.mu.RLock()
	e := s.entries[scope]
	s.mu.RUnlock()
	if e != nil {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e = s.entries[scope]; e == nil {
		e = &entry{}
		s.entries[scope] = e
	}
	return e
}

// copyRecord clones a record so callers never share storage-owned state.
func copyRecord(record *model.AuthorizationRecord) *model.AuthorizationRecord {
	clone := *record
	if record.ExpiresAt != nil {
		expiresAt := *record.ExpiresAt
		clone.ExpiresAt = &expiresAt
	}
	if record.RevokedAt != nil {
		revokedAt := *record.RevokedAt
		clone.RevokedAt = &revokedAt
	}
	return &clone
}

var _ ledger.Service = (*Service)(nil)
