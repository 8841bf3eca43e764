package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Retrieval defaults.
const (
	// DefaultBatchSize is the feedback cadence between retrains.
	DefaultBatchSize = 10

	// DefaultK is the result count when the caller passes k <= 0.
	DefaultK = 5

	// overfetchCap bounds the candidate pool handed to the ranking model.
	overfetchCap = 20
)

// RetrievalService composes the similarity index with the ranking model:
// over-fetch candidates, score, re-sort, truncate. It also records the
// feedback that trains the model.
type RetrievalService struct {
	store    driven.VersionStore
	index    driven.SimilarityIndex
	embedder driven.EmbeddingService
	ledger   driven.FeedbackLedger
	ranker   *Ranker

	// mu guards batchSize, which config hot reload may change at runtime.
	mu        sync.Mutex
	batchSize int

	// now is replaceable for tests.
	now func() time.Time
}

// NewRetrievalService creates a retrieval service. batchSize <= 0 uses
// DefaultBatchSize.
func NewRetrievalService(
	store driven.VersionStore,
	index driven.SimilarityIndex,
	embedder driven.EmbeddingService,
	ledger driven.FeedbackLedger,
	ranker *Ranker,
	batchSize int,
) *RetrievalService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &RetrievalService{
		store:     store,
		index:     index,
		embedder:  embedder,
		ledger:    ledger,
		ranker:    ranker,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Query returns up to k versions ordered by predicted relevance.
//
// Candidates are over-fetched from the similarity index, scored with the
// current ranking model, and stably re-sorted so that score ties keep raw
// similarity order. With an untrained model the output order therefore
// equals the index order exactly.
func (s *RetrievalService) Query(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")

	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.RetrievalResult{}, nil
	}
	if k <= 0 {
		k = DefaultK
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	overfetch := k * 2
	if overfetch > overfetchCap {
		overfetch = overfetchCap
	}
	if overfetch < k {
		overfetch = k
	}

	hits, err := s.index.Search(ctx, queryVec, overfetch)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	logger.Debug("Query %q: %d candidates (overfetch %d)", text, len(hits), overfetch)

	model := s.ranker.Snapshot()
	now := s.now().UTC()

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		v, err := s.store.GetVersion(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Version deleted after indexing; skip.
				continue
			}
			return nil, fmt.Errorf("hydrate %s: %w", hit.ID, err)
		}

		f := domain.Features{
			Similarity:    hit.Similarity,
			Distance:      hit.Distance,
			ContentLength: float64(len(v.Content)),
			Recency:       float64(recencyBucket(v.CreatedAt, now)),
		}
		results = append(results, domain.RetrievalResult{
			Version:    *v,
			Score:      model.Score(f),
			Similarity: hit.Similarity,
			Distance:   hit.Distance,
		})
	}

	// Stable: candidates arrive in similarity order, so equal scores keep
	// that order and an untrained model reproduces it exactly.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	logger.Info("Query %q: %d results (model v%d)", text, len(results), model.Version)
	return results, nil
}

// Rate records a star rating for a previously returned result.
//
// Stars map linearly onto rewards: 1 -> -1 up to 5 -> 1. The result must
// still exist in the version store; dangling references are rejected with
// domain.ErrInvalidReference and nothing is appended. Every batchSize-th
// ledger entry triggers a synchronous retrain over the full history.
func (s *RetrievalService) Rate(ctx context.Context, query, resultID string, stars int) error {
	reward, err := domain.RewardFromStars(stars)
	if err != nil {
		return fmt.Errorf("rate: stars %d: %w", stars, err)
	}

	version, err := s.store.GetVersion(ctx, resultID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("rate: result %s: %w", resultID, domain.ErrInvalidReference)
		}
		return fmt.Errorf("rate: resolve %s: %w", resultID, err)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("rate: query embedding: %w", err)
	}

	now := s.now().UTC()
	event := &domain.FeedbackEvent{
		ID:       uuid.NewString(),
		Query:    query,
		ResultID: resultID,
		Reward:   reward,
		Features: domain.Features{
			Similarity:    cosineSimilarity(queryVec, version.Embedding),
			Distance:      euclideanDistance(queryVec, version.Embedding),
			ContentLength: float64(len(version.Content)),
			Recency:       float64(recencyBucket(version.CreatedAt, now)),
		},
		CreatedAt: now,
	}

	if err := s.ledger.Append(ctx, event); err != nil {
		return fmt.Errorf("rate: append: %w", err)
	}

	count, err := s.ledger.Count(ctx)
	if err != nil {
		return fmt.Errorf("rate: ledger count: %w", err)
	}
	logger.Debug("Feedback recorded: reward=%.2f ledger=%d", reward, count)

	if count%s.retrainBatch() == 0 {
		s.retrain(ctx, count)
	}
	return nil
}

// SetBatchSize updates the retrain cadence for subsequent ratings.
// n <= 0 restores DefaultBatchSize.
func (s *RetrievalService) SetBatchSize(n int) {
	if n <= 0 {
		n = DefaultBatchSize
	}
	s.mu.Lock()
	s.batchSize = n
	s.mu.Unlock()
}

func (s *RetrievalService) retrainBatch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchSize
}

// retrain fits the model from the full ledger history. Failures are
// reported, never fatal: a degenerate or failed retrain leaves the
// previous snapshot serving.
func (s *RetrievalService) retrain(ctx context.Context, count int) {
	logger.Info("Ledger reached %d entries, retraining ranking model", count)

	samples, err := s.ledger.Window(ctx, 0)
	if err != nil {
		logger.Warn("Retrain skipped: loading ledger: %v", err)
		return
	}
	if err := s.ranker.Retrain(ctx, samples); err != nil {
		if errors.Is(err, domain.ErrRetrainDegenerate) {
			logger.Info("Retrain no-op: %v", err)
		} else {
			logger.Warn("Retrain failed, keeping previous model: %v", err)
		}
	}
}

// Statistics reports store, ledger, and model state.
func (s *RetrievalService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	versionCount, err := s.store.CountVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("statistics: versions: %w", err)
	}
	ledgerCount, err := s.ledger.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("statistics: ledger: %w", err)
	}

	var avgReward float64
	if ledgerCount > 0 {
		events, err := s.ledger.Window(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("statistics: rewards: %w", err)
		}
		var sum float64
		for i := range events {
			sum += events[i].Reward
		}
		avgReward = sum / float64(len(events))
	}

	model := s.ranker.Snapshot()
	return &domain.Statistics{
		VersionCount:  versionCount,
		LedgerCount:   ledgerCount,
		ModelVersion:  model.Version,
		LastTrainedAt: model.TrainedAt,
		AverageReward: avgReward,
	}, nil
}

// recencyBucket maps version age onto a coarse ordinal: 0 under an hour,
// 1 under a day, 2 under a week, 3 under 30 days, 4 beyond.
func recencyBucket(createdAt, now time.Time) int {
	age := now.Sub(createdAt)
	switch {
	case age < time.Hour:
		return 0
	case age < 24*time.Hour:
		return 1
	case age < 7*24*time.Hour:
		return 2
	case age < 30*24*time.Hour:
		return 3
	default:
		return 4
	}
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Zero vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// euclideanDistance computes the L2 distance between a and b.
func euclideanDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
