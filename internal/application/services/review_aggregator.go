package services

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/observability"
)

// ReviewFetchStatus is the per-provider state of a summary fetch
type ReviewFetchStatus int

const (
	// ReviewNotRequested means no fetch has been started for the id
	ReviewNotRequested ReviewFetchStatus = iota
	// ReviewLoading means a fetch is in flight
	ReviewLoading
	// ReviewResolved means a summary was loaded
	ReviewResolved
	// ReviewFailed means the fetch failed and the zero summary was stored
	ReviewFailed
)

// ReviewFetchState pairs a fetch status with its summary. The summary is
// always populated once the fetch settles; failures store the zero-value
// summary rather than leaving the entry absent.
type ReviewFetchState struct {
	Status  ReviewFetchStatus
	Summary entities.ReviewSummary
}

const defaultMemoSize = 512

// ReviewAggregator fans out review-summary fetches for a set of provider ids
// and tracks per-id fetch state. Each search advances a generation counter;
// results arriving for a superseded generation are dropped, so a stale search
// can never overwrite the state of the current one. Within a generation the
// last write per provider id wins.
type ReviewAggregator struct {
	repo    repositories.ReviewRepository
	memo    *lru.Cache[string, entities.ReviewSummary]
	metrics *observability.Metrics

	mu         sync.Mutex
	generation uint64
	states     map[string]ReviewFetchState
}

// NewReviewAggregator creates a new review aggregator. Metrics may be nil.
func NewReviewAggregator(repo repositories.ReviewRepository, metrics *observability.Metrics) *ReviewAggregator {
	memo, _ := lru.New[string, entities.ReviewSummary](defaultMemoSize)
	return &ReviewAggregator{
		repo:    repo,
		memo:    memo,
		metrics: metrics,
		states:  make(map[string]ReviewFetchState),
	}
}

// BeginSearch advances the generation counter and clears per-id state.
// Results still in flight for earlier generations will be discarded.
func (a *ReviewAggregator) BeginSearch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.states = make(map[string]ReviewFetchState)
	return a.generation
}

// State returns the current fetch state for a provider id
func (a *ReviewAggregator) State(providerID string) ReviewFetchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if state, ok := a.states[providerID]; ok {
		return state
	}
	return ReviewFetchState{Status: ReviewNotRequested}
}

// Invalidate drops a provider's memoized summary, forcing the next fetch to
// hit the repository. Called after a new review is stored.
func (a *ReviewAggregator) Invalidate(providerID string) {
	a.memo.Remove(providerID)
}

// FetchAll loads review summaries for the given provider ids, one goroutine
// per id, unordered and unbatched. It returns the summaries belonging to the
// given generation; every requested id is present in the result, with the
// zero-value summary standing in for failures.
func (a *ReviewAggregator) FetchAll(ctx context.Context, generation uint64, providerIDs []string) map[string]entities.ReviewSummary {
	a.mu.Lock()
	if generation == a.generation {
		for _, id := range providerIDs {
			a.states[id] = ReviewFetchState{Status: ReviewLoading}
		}
	}
	a.mu.Unlock()

	results := make(map[string]entities.ReviewSummary, len(providerIDs))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range providerIDs {
		wg.Add(1)
		go func(providerID string) {
			defer wg.Done()

			summary, status := a.fetchOne(ctx, providerID)

			a.mu.Lock()
			if generation == a.generation {
				a.states[providerID] = ReviewFetchState{Status: status, Summary: summary}
			}
			a.mu.Unlock()

			resultsMu.Lock()
			results[providerID] = summary
			resultsMu.Unlock()
		}(id)
	}

	wg.Wait()
	return results
}

func (a *ReviewAggregator) fetchOne(ctx context.Context, providerID string) (entities.ReviewSummary, ReviewFetchStatus) {
	if cached, ok := a.memo.Get(providerID); ok {
		return cached, ReviewResolved
	}

	summary, err := a.repo.Summary(ctx, providerID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("provider_id", providerID).
			Msg("review summary fetch failed")
		observability.RecordReviewFetchError(ctx, a.metrics, providerID)
		return entities.ZeroReviewSummary(), ReviewFailed
	}

	a.memo.Add(providerID, *summary)
	return *summary, ReviewResolved
}
