package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/storage/memory"
	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

func newTestLibrary() (*LibraryService, *memory.VersionStore, *mockIndex, *mockEmbedder) {
	store := memory.NewVersionStore()
	index := newMockIndex()
	embedder := newMockEmbedder(3)
	return NewLibraryService(store, index, embedder), store, index, embedder
}

func TestLibraryService_Save(t *testing.T) {
	svc, store, index, _ := newTestLibrary()
	ctx := context.Background()

	id, err := svc.Save(ctx, "https://example.com/a", "some content", domain.VersionOriginal, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.VersionID("https://example.com/a", domain.VersionOriginal, "some content"), id)

	v, err := store.GetVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", v.URL)
	assert.Equal(t, domain.VersionOriginal, v.Type)
	assert.True(t, v.Active)
	assert.NotEmpty(t, v.Embedding)
	assert.Contains(t, index.upserts, id)
}

func TestLibraryService_Save_EnrichesMetadata(t *testing.T) {
	svc, store, _, _ := newTestLibrary()
	ctx := context.Background()

	id, err := svc.Save(ctx, "https://example.com/a", "three word text", domain.VersionOriginal,
		map[string]any{"title": "Example"})
	require.NoError(t, err)

	v, err := store.GetVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Example", v.Metadata["title"])
	assert.Equal(t, 15, v.Metadata["char_count"])
	assert.Equal(t, 3, v.Metadata["word_count"])
}

func TestLibraryService_Save_IdenticalTripleIsIdempotent(t *testing.T) {
	svc, store, _, embedder := newTestLibrary()
	ctx := context.Background()

	id1, err := svc.Save(ctx, "https://example.com/a", "same content", domain.VersionOriginal, nil)
	require.NoError(t, err)
	id2, err := svc.Save(ctx, "https://example.com/a", "same content", domain.VersionOriginal, nil)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	// The second save short-circuits before reaching the provider.
	assert.Equal(t, 1, embedder.calls)

	count, err := store.CountVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLibraryService_Save_DistinctTriplesGetDistinctIDs(t *testing.T) {
	svc, _, _, _ := newTestLibrary()
	ctx := context.Background()

	idA, err := svc.Save(ctx, "https://example.com/a", "content", domain.VersionOriginal, nil)
	require.NoError(t, err)
	idB, err := svc.Save(ctx, "https://example.com/a", "content", domain.VersionAISpun, nil)
	require.NoError(t, err)
	idC, err := svc.Save(ctx, "https://example.com/b", "content", domain.VersionOriginal, nil)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
	assert.NotEqual(t, idA, idC)
	assert.NotEqual(t, idB, idC)
}

func TestLibraryService_Save_ValidatesInput(t *testing.T) {
	svc, _, _, _ := newTestLibrary()
	ctx := context.Background()

	_, err := svc.Save(ctx, "", "content", domain.VersionOriginal, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(ctx, "https://example.com/a", "", domain.VersionOriginal, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(ctx, "https://example.com/a", "content", domain.VersionType("Not Valid"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidVersionType)
}

func TestLibraryService_Save_AcceptsExtensionTypes(t *testing.T) {
	svc, _, _, _ := newTestLibrary()

	id, err := svc.Save(context.Background(), "https://example.com/a", "content",
		domain.VersionType("ai_regen_v2"), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestLibraryService_Save_EmbedFailureIsAtomic(t *testing.T) {
	svc, store, index, embedder := newTestLibrary()
	embedder.embedErr = errors.New("provider down")
	ctx := context.Background()

	_, err := svc.Save(ctx, "https://example.com/a", "content", domain.VersionOriginal, nil)
	require.Error(t, err)

	count, err := store.CountVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, index.upserts)
}

func TestLibraryService_Save_IndexFailureRollsBack(t *testing.T) {
	svc, store, index, _ := newTestLibrary()
	index.upsertErr = errors.New("index broken")
	ctx := context.Background()

	id := domain.VersionID("https://example.com/a", domain.VersionOriginal, "content")
	_, err := svc.Save(ctx, "https://example.com/a", "content", domain.VersionOriginal, nil)
	require.Error(t, err)

	_, err = store.GetVersion(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_Save_ConcurrentIdenticalTriples(t *testing.T) {
	svc, store, _, _ := newTestLibrary()
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.Save(ctx, "https://example.com/a", "racy content", domain.VersionOriginal, nil)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
	count, err := store.CountVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLibraryService_List(t *testing.T) {
	svc, _, _, _ := newTestLibrary()
	ctx := context.Background()

	idA, err := svc.Save(ctx, "https://example.com/a", "first", domain.VersionOriginal, nil)
	require.NoError(t, err)
	idB, err := svc.Save(ctx, "https://example.com/a", "second", domain.VersionAISpun, nil)
	require.NoError(t, err)
	_, err = svc.Save(ctx, "https://example.com/other", "elsewhere", domain.VersionOriginal, nil)
	require.NoError(t, err)

	chain, err := svc.List(ctx, "https://example.com/a")
	require.NoError(t, err)
	require.Len(t, chain, 2)

	got := []string{chain[0].ID, chain[1].ID}
	assert.ElementsMatch(t, []string{idA, idB}, got)
}

func TestLibraryService_Activate_DeactivatesSiblingsAndSyncsIndex(t *testing.T) {
	svc, store, index, _ := newTestLibrary()
	ctx := context.Background()

	idOld, err := svc.Save(ctx, "https://example.com/a", "old draft", domain.VersionOriginal, nil)
	require.NoError(t, err)
	idNew, err := svc.Save(ctx, "https://example.com/a", "new draft", domain.VersionAIEdited, nil)
	require.NoError(t, err)
	idOther, err := svc.Save(ctx, "https://example.com/b", "unrelated", domain.VersionOriginal, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Activate(ctx, idNew))

	vNew, err := store.GetVersion(ctx, idNew)
	require.NoError(t, err)
	assert.True(t, vNew.Active)

	vOld, err := store.GetVersion(ctx, idOld)
	require.NoError(t, err)
	assert.False(t, vOld.Active, "sibling should be deactivated")

	vOther, err := store.GetVersion(ctx, idOther)
	require.NoError(t, err)
	assert.True(t, vOther.Active, "other URLs must not be touched")

	assert.Contains(t, index.upserts, idNew)
	assert.Contains(t, index.deletes, idOld)
	assert.NotContains(t, index.deletes, idOther)
}

func TestLibraryService_Activate_NotFound(t *testing.T) {
	svc, _, _, _ := newTestLibrary()

	err := svc.Activate(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_Delete(t *testing.T) {
	svc, store, index, _ := newTestLibrary()
	ctx := context.Background()

	id, err := svc.Save(ctx, "https://example.com/a", "content", domain.VersionOriginal, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = store.GetVersion(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, index.deletes, id)
}

func TestLibraryService_Delete_NotFound(t *testing.T) {
	svc, _, _, _ := newTestLibrary()

	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_RebuildIndex_LoadsOnlyActiveVersions(t *testing.T) {
	store := memory.NewVersionStore()
	index := newMockIndex()
	svc := NewLibraryService(store, index, newMockEmbedder(3))
	ctx := context.Background()

	seed := []struct {
		id     string
		active bool
	}{
		{"v-active-1", true},
		{"v-active-2", true},
		{"v-inactive", false},
	}
	for _, s := range seed {
		require.NoError(t, store.SaveVersion(ctx, &domain.DocumentVersion{
			ID:        s.id,
			URL:       "https://example.com/" + s.id,
			Content:   "content " + s.id,
			Type:      domain.VersionOriginal,
			Embedding: []float32{1, 0, 0},
			Active:    s.active,
			CreatedAt: time.Now().UTC(),
		}))
	}

	n, err := svc.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, index.upserts, "v-active-1")
	assert.Contains(t, index.upserts, "v-active-2")
	assert.NotContains(t, index.upserts, "v-inactive")
}
