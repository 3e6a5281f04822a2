package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/domain/models"
)

func seedVersions(backend *fakeBackend, docID string, versions ...models.DocumentVersion) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.versions[docID] = versions
}

func TestLoadVersionsReplacesList(t *testing.T) {
	eng, backend, _ := newTestEngine(t, testDoc("d1", "Draft", "x"))
	ctx := context.Background()

	seedVersions(backend, "d1",
		models.DocumentVersion{ID: "v2", DocumentID: "d1", VersionNumber: 2},
		models.DocumentVersion{ID: "v1", DocumentID: "d1", VersionNumber: 1},
	)

	require.NoError(t, eng.LoadVersions(ctx, "d1"))

	phase, errMsg := eng.VersionState("d1")
	assert.Equal(t, VersionLoaded, phase)
	assert.Empty(t, errMsg)

	list := eng.Versions("d1")
	require.Len(t, list, 2)
	assert.Equal(t, "v2", list[0].ID)

	// A refetch replaces rather than appends.
	seedVersions(backend, "d1",
		models.DocumentVersion{ID: "v3", DocumentID: "d1", VersionNumber: 3},
	)
	require.NoError(t, eng.LoadVersions(ctx, "d1"))
	list = eng.Versions("d1")
	require.Len(t, list, 1)
	assert.Equal(t, "v3", list[0].ID)
}

func TestLoadVersionsWhileLoadingIsNoop(t *testing.T) {
	eng, backend, _ := newTestEngine(t, testDoc("d1", "Draft", "x"))
	ctx := context.Background()

	release := make(chan struct{})
	backend.mu.Lock()
	backend.blockList = release
	backend.mu.Unlock()

	first := make(chan error, 1)
	go func() { first <- eng.LoadVersions(ctx, "d1") }()

	require.Eventually(t, func() bool {
		phase, _ := eng.VersionState("d1")
		return phase == VersionLoading
	}, waitFor, tick)

	// Second call returns immediately without a second fetch.
	require.NoError(t, eng.LoadVersions(ctx, "d1"))

	backend.mu.Lock()
	backend.blockList = nil
	calls := backend.listVersionsCalls
	backend.mu.Unlock()
	assert.Equal(t, 1, calls)

	close(release)
	require.NoError(t, <-first)

	phase, _ := eng.VersionState("d1")
	assert.Equal(t, VersionLoaded, phase)
}

func TestLoadVersionsFailureSetsErrorPhase(t *testing.T) {
	eng, backend, _ := newTestEngine(t, testDoc("d1", "Draft", "x"))

	backend.mu.Lock()
	backend.listErr = errors.New("history unavailable")
	backend.mu.Unlock()

	err := eng.LoadVersions(context.Background(), "d1")
	require.Error(t, err)

	phase, errMsg := eng.VersionState("d1")
	assert.Equal(t, VersionError, phase)
	assert.Contains(t, errMsg, "history unavailable")
}

func TestRestoreVersionDiscardsPendingEdits(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "current text"))
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	seedVersions(backend, "d1", models.DocumentVersion{
		ID: "v1", DocumentID: "d1", VersionNumber: 1,
		Title: "Draft", Content: "older text", WordCount: 2,
	})
	require.NoError(t, eng.LoadVersions(ctx, "d1"))

	// Unsaved edits exist when the user restores.
	eng.SetContent("current text plus more")
	require.True(t, eng.HasUnsavedChanges())

	require.NoError(t, eng.RestoreVersion(ctx, "d1", "v1"))

	doc, ok := eng.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "older text", doc.Content)

	assert.False(t, eng.HasUnsavedChanges(),
		"restore rebases the buffer, discarding pending edits")

	// The timer armed by the discarded edit must not fire a stale save.
	clock.Advance(DefaultDebounce)
	assert.Empty(t, backend.updates())

	// The cached list is stale: a new snapshot was recorded server-side.
	phase, _ := eng.VersionState("d1")
	assert.Equal(t, VersionIdle, phase)
}

func TestRestoreVersionFailureKeepsState(t *testing.T) {
	eng, _, _ := newTestEngine(t, testDoc("d1", "Draft", "current"))
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))
	eng.SetContent("current plus edits")

	err := eng.RestoreVersion(ctx, "d1", "ghost-version")
	require.Error(t, err)

	doc, ok := eng.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "current", doc.Content)
	assert.True(t, eng.HasUnsavedChanges(), "a failed restore leaves the buffer alone")

	_, errMsg := eng.VersionState("d1")
	assert.NotEmpty(t, errMsg)
}
