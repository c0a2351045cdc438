package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresquare/care-directory-backend/internal/adapters/cache"
	"github.com/caresquare/care-directory-backend/internal/application/services"
	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

type mutableClock struct {
	now time.Time
}

func (c *mutableClock) Now() time.Time { return c.now }

func snapshotWithCandidates(n int) entities.SearchSnapshot {
	candidates := make([]entities.RankedCandidate, n)
	for i := range candidates {
		candidates[i] = entities.RankedCandidate{Provider: entities.Provider{ID: "p"}}
	}
	return entities.SearchSnapshot{
		Candidates: candidates,
		Coords:     &entities.Location{Latitude: 6.5, Longitude: 3.4},
	}
}

func newSessionService(t *testing.T) (*services.SessionService, *mutableClock) {
	t.Helper()
	clock := &mutableClock{now: time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryAdapter(clock)
	return services.NewSessionService(store, clock, 24*time.Hour), clock
}

func TestSessionService_SaveAndLoad(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(2)))

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Candidates, 2)
	assert.Equal(t, 6.5, loaded.Coords.Latitude)
}

func TestSessionService_LoadExpiredSnapshot(t *testing.T) {
	svc, clock := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(1)))

	clock.now = clock.now.Add(24*time.Hour + time.Minute)

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionService_LoadJustUnderExpiry(t *testing.T) {
	svc, clock := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(1)))

	clock.now = clock.now.Add(24*time.Hour - time.Minute)

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}

func TestSessionService_LoadRejectsEmptySnapshot(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(0)))

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionService_SaveStampsFreshTimestamp(t *testing.T) {
	svc, clock := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))

	snapshot := snapshotWithCandidates(1)
	snapshot.Timestamp = clock.now.Add(-48 * time.Hour) // stale value supplied by caller
	require.NoError(t, svc.Save(ctx, "s1", snapshot))

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Timestamp.Equal(clock.now))
}

func TestSessionService_LastWriteWins(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))

	first := snapshotWithCandidates(1)
	first.Query = "first"
	require.NoError(t, svc.Save(ctx, "s1", first))

	second := snapshotWithCandidates(3)
	second.Query = "second"
	require.NoError(t, svc.Save(ctx, "s1", second))

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "second", loaded.Query)
	assert.Len(t, loaded.Candidates, 3)
}

func TestSessionService_BeginClearsLeftoverSnapshot(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(1)))

	// Simulate a new session appearing without its marker (expired marker,
	// surviving snapshot). Begin must delete the stale snapshot.
	clock := &mutableClock{now: time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryAdapter(clock)
	fresh := services.NewSessionService(store, clock, 24*time.Hour)

	require.NoError(t, fresh.Save(ctx, "s2", snapshotWithCandidates(1)))
	require.NoError(t, fresh.Begin(ctx, "s2"))

	loaded, err := fresh.Load(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionService_SecondBeginKeepsSnapshot(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(1)))

	// Marker exists, so a repeat Begin must not wipe the snapshot.
	require.NoError(t, svc.Begin(ctx, "s1"))

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}

func TestSessionService_Clear(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "s1"))
	require.NoError(t, svc.Save(ctx, "s1", snapshotWithCandidates(1)))
	require.NoError(t, svc.Clear(ctx, "s1"))

	loaded, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionService_RequiresSessionID(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	assert.Error(t, svc.Begin(ctx, ""))
	assert.Error(t, svc.Save(ctx, "", snapshotWithCandidates(1)))
	assert.Error(t, svc.Clear(ctx, ""))
	_, err := svc.Load(ctx, "")
	assert.Error(t, err)
}
