// Package fs provides a file-backed ledger on top of the viant/afs
// abstraction, so record history can live on a local disk, in memory
// (mem://) for tests, or on any storage scheme afs supports. Each scope owns
// one JSON history file; the newest entry is last.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/service/ledger"
)

// lockStripes bounds the lock table; scopes hash onto a fixed stripe set so
// long-lived processes never accumulate per-scope mutexes.
const lockStripes = 256

// Service implements ledger.Service over an afs storage location.
type Service struct {
	basePath string
	fs       afs.Service

	locks [lockStripes]sync.Mutex
}

// New creates a file-backed ledger rooted at basePath (any afs URL).
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fileSystem := afs.New()
	ctx := context.Background()
	if exists, _ := fileSystem.Exists(ctx, basePath); !exists {
		if err := fileSystem.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create ledger base directory: %w", err)
		}
	}
	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fileSystem,
	}, nil
}

// Lookup returns the active record for the scope, or nil.
func (s *Service) Lookup(ctx context.Context, scope model.ScopeKey) (*model.AuthorizationRecord, error) {
	if !scope.IsValid() {
		return nil, ledger.ErrInvalidScope
	}
	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Active(now) {
			return history[i], nil
		}
	}
	return nil, nil
}

// Record appends an approval to the scope history, revoking any record
// still active.
func (s *Service) Record(ctx context.Context, record *model.AuthorizationRecord) error {
	if record == nil || !record.Scope.IsValid() {
		return ledger.ErrNilRecord
	}
	lock := s.scopeLock(record.Scope)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.load(ctx, record.Scope)
	if err != nil {
		return err
	}
	now := clock.Now()
	for _, prior := range history {
		if prior.Active(now) {
			revokedAt := now
			prior.RevokedAt = &revokedAt
		}
	}
	clone := *record
	history = append(history, &clone)
	return s.store(ctx, record.Scope, history)
}

// Revoke marks the active record for the scope revoked; idempotent.
func (s *Service) Revoke(ctx context.Context, scope model.ScopeKey) error {
	if !scope.IsValid() {
		return ledger.ErrInvalidScope
	}
	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.load(ctx, scope)
	if err != nil {
		return err
	}
	now := clock.Now()
	revoked := false
	for _, record := range history {
		if record.Active(now) {
			revokedAt := now
			record.RevokedAt = &revokedAt
			revoked = true
		}
	}
	if !revoked {
		return nil
	}
	return s.store(ctx, scope, history)
}

// ListActive walks the session directory and returns the active records.
func (s *Service) ListActive(ctx context.Context, sessionID string) ([]*model.AuthorizationRecord, error) {
	sessionPath := path.Join(s.basePath, segment(sessionID))
	if exists, err := s.fs.Exists(ctx, sessionPath); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ledger.ErrUnavailable, sessionPath, err)
	} else if !exists {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, sessionPath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ledger.ErrUnavailable, sessionPath, err)
	}

	now := clock.Now()
	var result []*model.AuthorizationRecord
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ledger.ErrUnavailable, object.URL(), err)
		}
		var history []*model.AuthorizationRecord
		if err := json.Unmarshal(data, &history); err != nil {
			return nil, fmt.Errorf("corrupt ledger file %s: %w", object.URL(), err)
		}
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Scope.SessionID == sessionID && history[i].Active(now) {
				result = append(result, history[i])
				break
			}
		}
	}
	return result, nil
}

func (s *Service) load(ctx context.Context, scope model.ScopeKey) ([]*model.AuthorizationRecord, error) {
	scopePath := s.scopePath(scope)
	exists, err := s.fs.Exists(ctx, scopePath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ledger.ErrUnavailable, scopePath, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, scopePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ledger.ErrUnavailable, scopePath, err)
	}
	var history []*model.AuthorizationRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("corrupt ledger file %s: %w", scopePath, err)
	}
	return history, nil
}

func (s *Service) store(ctx context.Context, scope model.ScopeKey, history []*model.AuthorizationRecord) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal scope history: %w", err)
	}
	scopePath := s.scopePath(scope)
	if err := s.fs.Upload(ctx, scopePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: write %s: %v", ledger.ErrUnavailable, scopePath, err)
	}
	return nil
}

// scopePath keeps one file per scope under the session directory; the file
// name hashes the full triple so arbitrary resource ids stay path-safe.
func (s *Service) scopePath(scope model.ScopeKey) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope.String()))
	return path.Join(s.basePath, segment(scope.SessionID), fmt.Sprintf("%x.json", h.Sum64()))
}

func (s *Service) scopeLock(scope model.ScopeKey) *sync.Mutex {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope.String()))
	return &s.locks[h.Sum64()%lockStripes]
}

// segment sanitizes an identifier for use as a path element.
func segment(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

var _ ledger.Service = (*Service)(nil)
