package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caresquare/care-directory-backend/internal/adapters/cache"
	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/observability"
	apperrors "github.com/caresquare/care-directory-backend/pkg/errors"
)

const (
	sessionSnapshotKeyFmt = "session:v1:snapshot:%s"
	sessionMarkerKeyFmt   = "session:v1:marker:%s"
)

// SessionService persists each patient session's last search snapshot in a
// key-value store. Snapshots are whole-value: every save overwrites, nothing
// is merged, and loads either return a usable snapshot or clean up and
// return nothing.
type SessionService struct {
	store providers.CacheProvider
	clock providers.Clock
	ttl   time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(store providers.CacheProvider, clock providers.Clock, ttl time.Duration) *SessionService {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{store: store, clock: clock, ttl: ttl}
}

// Begin marks the session as live. The first call for a session (no marker
// present) deletes any snapshot left over from an earlier session, so stale
// state can never be restored into a fresh session. Must run before Load.
func (s *SessionService) Begin(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.NewValidationError("session id is required")
	}

	markerKey := fmt.Sprintf(sessionMarkerKeyFmt, sessionID)
	exists, err := s.store.Exists(ctx, markerKey)
	if err != nil {
		return apperrors.NewInternalError("failed to check session marker", err)
	}

	if !exists {
		if err := s.store.Delete(ctx, s.snapshotKey(sessionID)); err != nil {
			return apperrors.NewInternalError("failed to reset session snapshot", err)
		}
	}

	if err := s.store.Set(ctx, markerKey, []byte("1"), int(s.ttl.Seconds())); err != nil {
		return apperrors.NewInternalError("failed to set session marker", err)
	}

	return nil
}

// Load returns the persisted snapshot for the session, or nil when none is
// usable. A snapshot is usable only when it is younger than the session TTL
// and holds at least one candidate; anything else is deleted on sight.
// Review summaries are never part of a snapshot; callers re-fetch them.
func (s *SessionService) Load(ctx context.Context, sessionID string) (*entities.SearchSnapshot, error) {
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}

	key := s.snapshotKey(sessionID)
	payload, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load session snapshot", err)
	}

	var snapshot entities.SearchSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		s.discard(ctx, key)
		return nil, nil
	}

	age := s.clock.Now().Sub(snapshot.Timestamp)
	if age >= s.ttl || len(snapshot.Candidates) == 0 {
		s.discard(ctx, key)
		return nil, nil
	}

	return &snapshot, nil
}

// Save overwrites the session's snapshot with a fresh timestamp. Last write
// wins; concurrent saves are not merged.
func (s *SessionService) Save(ctx context.Context, sessionID string, snapshot entities.SearchSnapshot) error {
	if sessionID == "" {
		return apperrors.NewValidationError("session id is required")
	}

	snapshot.Timestamp = s.clock.Now()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session snapshot", err)
	}

	if err := s.store.Set(ctx, s.snapshotKey(sessionID), payload, int(s.ttl.Seconds())); err != nil {
		return apperrors.NewInternalError("failed to save session snapshot", err)
	}

	return nil
}

// Clear deletes the session's snapshot. Every new search clears the previous
// snapshot before querying.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.NewValidationError("session id is required")
	}
	if err := s.store.Delete(ctx, s.snapshotKey(sessionID)); err != nil {
		return apperrors.NewInternalError("failed to clear session snapshot", err)
	}
	return nil
}

func (s *SessionService) snapshotKey(sessionID string) string {
	return fmt.Sprintf(sessionSnapshotKeyFmt, sessionID)
}

func (s *SessionService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("key", key).
			Msg("failed to discard stale session snapshot")
	}
}
