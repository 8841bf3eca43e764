package services

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// --- Mock implementations shared across the service tests ---

// mockEmbedder implements driven.EmbeddingService with deterministic
// vectors. Texts present in the vectors map get their fixed vector;
// anything else gets a stable pseudo-random vector derived from the text.
type mockEmbedder struct {
	vectors   map[string][]float32
	dims      int
	embedErr  error
	failTimes int
	calls     int
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{vectors: make(map[string][]float32), dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.failTimes > 0 {
		m.failTimes--
		return nil, errors.New("transient provider failure")
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}
	return derivedVector(text, m.dims), nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// derivedVector maps text onto a deterministic vector so that distinct
// texts embed differently without any per-test setup.
func derivedVector(text string, dims int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	out := make([]float32, dims)
	for i := range out {
		seed = seed*6364136223846793005 + 1442695040888963407
		out[i] = float32(seed%2000)/1000 - 1
	}
	return out
}

// mockIndex implements driven.SimilarityIndex, recording mutations and
// serving canned hits.
type mockIndex struct {
	upserts   map[string][]float32
	deletes   []string
	hits      []driven.VectorHit
	lastK     int
	upsertErr error
	deleteErr error
	searchErr error
}

func newMockIndex() *mockIndex {
	return &mockIndex{upserts: make(map[string][]float32)}
}

func (m *mockIndex) Upsert(_ context.Context, id string, embedding []float32) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts[id] = embedding
	return nil
}

func (m *mockIndex) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, id)
	delete(m.upserts, id)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockIndex) Close() error { return nil }

// mockModelStore implements driven.RankingModelStore with injectable
// save failures.
type mockModelStore struct {
	snapshots []*domain.RankingSnapshot
	saveErr   error
}

func (m *mockModelStore) SaveSnapshot(_ context.Context, snapshot *domain.RankingSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *mockModelStore) LatestSnapshot(_ context.Context) (*domain.RankingSnapshot, error) {
	if len(m.snapshots) == 0 {
		return nil, domain.ErrNotFound
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

// mockFetcher implements driven.Fetcher.
type mockFetcher struct {
	page     *driven.FetchedPage
	fetchErr error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*driven.FetchedPage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	page := *m.page
	page.URL = url
	return &page, nil
}

// mockAgents implements driven.Agents with fixed transforms per stage.
// Edit echoes non-empty feedback into its output so regeneration passes
// are observable.
type mockAgents struct {
	spinOut   string
	reviewOut string
	editOut   string
	spinErr   error
	reviewErr error
	editErr   error
	feedbacks []string
}

func (m *mockAgents) Spin(_ context.Context, _ string) (string, error) {
	return m.spinOut, m.spinErr
}

func (m *mockAgents) Review(_ context.Context, _, _ string) (string, error) {
	return m.reviewOut, m.reviewErr
}

func (m *mockAgents) Edit(_ context.Context, _, feedback string) (string, error) {
	if m.editErr != nil {
		return "", m.editErr
	}
	m.feedbacks = append(m.feedbacks, feedback)
	if feedback == "" {
		return m.editOut, nil
	}
	return m.editOut + " (" + feedback + ")", nil
}
