package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/service/ledger"
)

var scope = model.ScopeKey{SessionID: "s1", ResourceID: "r1", ToolName: "t1"}

func newRecord(id string, s model.ScopeKey) *model.AuthorizationRecord {
	return &model.AuthorizationRecord{ID: id, Scope: s, GrantedAt: time.Now(), GrantedBy: "user-1"}
}

func TestLookupMiss(t *testing.T) {
	svc := New()
	record, err := svc.Lookup(context.Background(), scope)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestLookupInvalidScope(t *testing.T) {
	svc := New()
	_, err := svc.Lookup(context.Background(), model.ScopeKey{SessionID: "s1"})
	assert.ErrorIs(t, err, ledger.ErrInvalidScope)
}

func TestRecordAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))

	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "rec-1", record.ID)
}

func TestScopeExactness(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))

	for _, other := range []model.ScopeKey{
		{SessionID: "s1", ResourceID: "r2", ToolName: "t1"},
		{SessionID: "s2", ResourceID: "r1", ToolName: "t1"},
		{SessionID: "s1", ResourceID: "r1", ToolName: "t2"},
	} {
		record, err := svc.Lookup(ctx, other)
		require.NoError(t, err)
		assert.Nil(t, record, "scope %v must not match %v", other, scope)
	}
}

func TestRecordSupersedes(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))
	require.NoError(t, svc.Record(ctx, newRecord("rec-2", scope)))

	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "rec-2", record.ID)

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "rec-2", active[0].ID)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	svc := New()

	// Revoking an absent scope is a no-op.
	require.NoError(t, svc.Revoke(ctx, scope))

	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))
	require.NoError(t, svc.Revoke(ctx, scope))
	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Idempotent on an already revoked scope.
	require.NoError(t, svc.Revoke(ctx, scope))
}

func TestExpiredRecordNotReturned(t *testing.T) {
	ctx := context.Background()
	svc := New()

	base := time.Now()
	clock.NowFunc = func() time.Time { return base }
	defer func() { clock.NowFunc = time.Now }()

	record := newRecord("rec-1", scope)
	expiresAt := base.Add(time.Minute)
	record.ExpiresAt = &expiresAt
	require.NoError(t, svc.Record(ctx, record))

	got, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, got)

	clock.NowFunc = func() time.Time { return base.Add(2 * time.Minute) }
	got, err = svc.Lookup(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, got)

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestListActiveIsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Record(ctx, newRecord("rec-1", scope)))

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, active, 1)

	// Mutating the snapshot must not affect stored state.
	revokedAt := time.Now()
	active[0].RevokedAt = &revokedAt

	record, err := svc.Lookup(ctx, scope)
	require.NoError(t, err)
	assert.NotNil(t, record)
}

func TestConcurrentSameScopeApprovals(t *testing.T) {
	ctx := context.Background()
	svc := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.Record(ctx, newRecord("rec", scope))
		}(i)
	}
	wg.Wait()

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, active, 1, "concurrent approvals must resolve to a single active record")
}

func TestConcurrentDistinctScopes(t *testing.T) {
	ctx := context.Background()
	svc := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := model.ScopeKey{SessionID: "s1", ResourceID: string(rune('a' + i)), ToolName: "t1"}
			_ = svc.Record(ctx, newRecord("rec", s))
			record, err := svc.Lookup(ctx, s)
			assert.NoError(t, err)
			assert.NotNil(t, record)
		}(i)
	}
	wg.Wait()

	active, err := svc.ListActive(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, active, 16)
}
