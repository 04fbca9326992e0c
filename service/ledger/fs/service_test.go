package fs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgate/toolgate/model"
)

var scope = model.ScopeKey{SessionID: "s1", ResourceID: "repos/acme/widget", ToolName: "repo.delete"}

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New("mem://localhost/toolgate/ledger/" + t.Name())
	require.NoError(t, err)
	return svc
}

func newRecord(id string, s model.ScopeKey) *model.AuthorizationRecord {
	return &model.AuthorizationRecord{ID: id, Scope: s, GrantedAt: time.Now(), GrantedBy: "user-1"}
}

func TestRecordAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))
	record, err = svc.Lookup(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "rec-1", record.ID)
}

func TestSupersedeKeepsHistory(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))
	require.NoError(t, svc.Record(ctx, newRecord("rec-2", scope)))

	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "rec-2", record.ID)

	history, err := svc.load(ctx, scope)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.NotNil(t, history[0].RevokedAt, "superseded record stays revoked, not deleted")
	assert.Nil(t, history[1].RevokedAt)

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestRevokePersists(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.Revoke(ctx, scope)) // idempotent on empty store

	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))
	require.NoError(t, svc.Revoke(ctx, scope))

	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestListActiveAcrossScopes(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	other := model.ScopeKey{SessionID: "s1", ResourceID: "repos/acme/gadget", ToolName: "repo.delete"}
	foreign := model.ScopeKey{SessionID: "s2", ResourceID: "repos/acme/widget", ToolName: "repo.delete"}
	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))
	require.NoError(t, svc.Record(ctx, newRecord("rec-2", other)))
	require.NoError(t, svc.Record(ctx, newRecord("rec-3", foreign)))

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, record := range active {
		assert.Equal(t, "s1", record.Scope.SessionID)
	}
}

func TestPathSafeResourceIDs(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	awkward := model.ScopeKey{SessionID: "s1", ResourceID: "arn:aws:s3:::bucket/key with spaces", ToolName: "s3.delete"}
	require.NoError(t, svc.Record(ctx, newRecord("rec-1", awkward)))

	record, err := svc.Lookup(ctx, awkward)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, awkward, record.Scope)
}

func TestManyScopesConcurrently(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	// More scopes than lock stripes, so colliding scopes share a mutex and
	// must still serialize correctly.
	const scopes = 2 * lockStripes
	var wg sync.WaitGroup
	for i := 0; i < scopes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := model.ScopeKey{
				SessionID:  "s1",
				ResourceID: fmt.Sprintf("repos/acme/widget-%d", i),
				ToolName:   "repo.delete",
			}
			assert.NoError(t, svc.Record(ctx, newRecord(fmt.Sprintf("id-%d", i), s)))
			record, err := svc.Lookup(ctx, s)
			assert.NoError(t, err)
			assert.NotNil(t, record)
		}(i)
	}
	wg.Wait()

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, active, scopes)
}
