package cli

import (
	"context"
	"time"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
)

// mockLibrary implements driving.LibraryService for command tests.
type mockLibrary struct {
	versions map[string]*domain.DocumentVersion
	byURL    map[string][]domain.DocumentVersion

	activated []string
	deleted   []string
}

func newMockLibrary() *mockLibrary {
	return &mockLibrary{
		versions: make(map[string]*domain.DocumentVersion),
		byURL:    make(map[string][]domain.DocumentVersion),
	}
}

func (m *mockLibrary) add(v domain.DocumentVersion) {
	m.versions[v.ID] = &v
	m.byURL[v.URL] = append(m.byURL[v.URL], v)
}

func (m *mockLibrary) Save(_ context.Context, url, content string, t domain.VersionType,
	_ map[string]any) (string, error) {
	id := domain.VersionID(url, t, content)
	m.add(domain.DocumentVersion{ID: id, URL: url, Content: content, Type: t, CreatedAt: time.Now()})
	return id, nil
}

func (m *mockLibrary) Get(_ context.Context, id string) (*domain.DocumentVersion, error) {
	v, ok := m.versions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockLibrary) List(_ context.Context, url string) ([]domain.DocumentVersion, error) {
	return m.byURL[url], nil
}

func (m *mockLibrary) Activate(_ context.Context, id string) error {
	if _, ok := m.versions[id]; !ok {
		return domain.ErrNotFound
	}
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockLibrary) Delete(_ context.Context, id string) error {
	if _, ok := m.versions[id]; !ok {
		return domain.ErrNotFound
	}
	m.deleted = append(m.deleted, id)
	delete(m.versions, id)
	return nil
}

// mockRetrieval implements driving.RetrievalService for command tests.
type mockRetrieval struct {
	results []domain.RetrievalResult
	stats   domain.Statistics

	ratings []ratingCall
	rateErr error
}

type ratingCall struct {
	query string
	id    string
	stars int
}

func (m *mockRetrieval) Query(_ context.Context, _ string, k int) ([]domain.RetrievalResult, error) {
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockRetrieval) Rate(_ context.Context, query, resultID string, stars int) error {
	if m.rateErr != nil {
		return m.rateErr
	}
	if _, err := domain.RewardFromStars(stars); err != nil {
		return err
	}
	m.ratings = append(m.ratings, ratingCall{query: query, id: resultID, stars: stars})
	return nil
}

func (m *mockRetrieval) Statistics(_ context.Context) (*domain.Statistics, error) {
	stats := m.stats
	return &stats, nil
}

// mockPipeline implements driving.PipelineService for command tests.
type mockPipeline struct {
	report *driving.ProcessReport
	err    error

	lastURL      string
	lastReviewer driving.Reviewer
}

func (m *mockPipeline) Process(_ context.Context, url string, reviewer driving.Reviewer) (*driving.ProcessReport, error) {
	m.lastURL = url
	m.lastReviewer = reviewer
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

// setupTestServices wires mock services into the package-level vars and
// returns a cleanup that restores the previous wiring.
func setupTestServices() (*mockLibrary, *mockRetrieval, *mockPipeline, func()) {
	prevLibrary := libraryService
	prevRetrieval := retrievalService
	prevPipeline := pipelineService

	library := newMockLibrary()
	retrieval := &mockRetrieval{}
	pipeline := &mockPipeline{}

	libraryService = library
	retrievalService = retrieval
	pipelineService = pipeline

	cleanup := func() {
		libraryService = prevLibrary
		retrievalService = prevRetrieval
		pipelineService = prevPipeline
	}
	return library, retrieval, pipeline, cleanup
}
