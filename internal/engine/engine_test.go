package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/domain"
	"quill/internal/domain/models"
)

// Polling intervals for assertions on background goroutines.
const (
	waitFor = 2 * time.Second
	tick    = time.Millisecond
)

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

// fakeClock drives the debounce scheduler deterministically. Advance runs
// due timer callbacks synchronously on the calling goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// fakeBackend is an in-memory Backend with fault and latency injection
type fakeBackend struct {
	mu            sync.Mutex
	docs          map[string]*models.Document
	versions      map[string][]models.DocumentVersion
	searchResults *models.SearchResults

	updateCalls   []updateCall
	updateErr     error
	blockUpdate   chan struct{} // non-nil: Update blocks until closed
	updateStarted chan struct{} // receives one value per Update dispatch

	listVersionsCalls int
	blockList         chan struct{}
	listErr           error

	searchCalls int
	searchErr   error

	inFlight    int
	maxInFlight int
}

type updateCall struct {
	id      string
	title   string
	content string
}

func newFakeBackend(docs ...models.Document) *fakeBackend {
	b := &fakeBackend{
		docs:          make(map[string]*models.Document),
		versions:      make(map[string][]models.DocumentVersion),
		updateStarted: make(chan struct{}, 16),
	}
	for i := range docs {
		doc := docs[i]
		b.docs[doc.ID] = &doc
	}
	return b
}

func (b *fakeBackend) FetchAll(ctx context.Context) ([]models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Document, 0, len(b.docs))
	for _, doc := range b.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (b *fakeBackend) Fetch(ctx context.Context, id string) (*models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (b *fakeBackend) Create(ctx context.Context, req *CreateRequest) (*models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc := &models.Document{
		ID:        fmt.Sprintf("doc-%d", len(b.docs)+1),
		Title:     req.Title,
		Content:   req.Content,
		FolderID:  req.FolderID,
		SeriesID:  req.SeriesID,
		Tags:      req.Tags,
		WordCount: len(strings.Fields(req.Content)),
	}
	b.docs[doc.ID] = doc
	copied := *doc
	return &copied, nil
}

func (b *fakeBackend) Update(ctx context.Context, id string, req *UpdateRequest) (*models.Document, error) {
	b.mu.Lock()
	call := updateCall{id: id}
	if req.Title != nil {
		call.title = *req.Title
	}
	if req.Content != nil {
		call.content = *req.Content
	}
	b.updateCalls = append(b.updateCalls, call)
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	block := b.blockUpdate
	b.mu.Unlock()

	b.updateStarted <- struct{}{}
	if block != nil {
		<-block
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFlight--

	if b.updateErr != nil {
		return nil, b.updateErr
	}

	doc, ok := b.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Content != nil {
		doc.Content = *req.Content
		doc.WordCount = len(strings.Fields(doc.Content))
	}
	doc.UpdatedAt = doc.UpdatedAt.Add(time.Second)
	copied := *doc
	return &copied, nil
}

func (b *fakeBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(b.docs, id)
	return nil
}

func (b *fakeBackend) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	b.mu.Lock()
	b.listVersionsCalls++
	block := b.blockList
	b.mu.Unlock()

	if block != nil {
		<-block
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]models.DocumentVersion{}, b.versions[documentID]...), nil
}

func (b *fakeBackend) RestoreVersion(ctx context.Context, documentID, versionID string) (*models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.docs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, v := range b.versions[documentID] {
		if v.ID == versionID {
			doc.Title = v.Title
			doc.Content = v.Content
			doc.WordCount = v.WordCount
			copied := *doc
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (b *fakeBackend) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchCalls++
	if b.searchErr != nil {
		return nil, b.searchErr
	}
	return b.searchResults, nil
}

func (b *fakeBackend) updates() []updateCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]updateCall{}, b.updateCalls...)
}

// ----------------------------------------------------------------------------
// Test harness
// ----------------------------------------------------------------------------

func testDoc(id, title, content string) models.Document {
	return models.Document{
		ID:        id,
		OwnerID:   "user-1",
		Title:     title,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEngine(t *testing.T, docs ...models.Document) (*Engine, *fakeBackend, *fakeClock) {
	t.Helper()
	backend := newFakeBackend(docs...)
	clock := newFakeClock()
	eng := New(backend, Options{Clock: clock})
	require.NoError(t, eng.Load(context.Background()))
	t.Cleanup(eng.Close)
	return eng, backend, clock
}

// ----------------------------------------------------------------------------
// Debounce scheduler
// ----------------------------------------------------------------------------

func TestDebounceCoalescesBurstIntoSingleSave(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	eng.SetContent("xa")
	eng.SetContent("xab")
	eng.SetContent("xabc")
	assert.True(t, eng.HasUnsavedChanges())

	clock.Advance(DefaultDebounce)

	calls := backend.updates()
	require.Len(t, calls, 1, "a burst of edits must coalesce into one save")
	assert.Equal(t, "xabc", calls[0].content, "the save carries the latest pending values")
	assert.Equal(t, "d1", calls[0].id)
	assert.False(t, eng.HasUnsavedChanges())
}

func TestEachEditRestartsTheWindow(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	eng.SetContent("xy")
	clock.Advance(DefaultDebounce / 2)
	eng.SetContent("xyz")
	clock.Advance(DefaultDebounce / 2)
	assert.Empty(t, backend.updates(), "window restarted by second edit has not elapsed")

	clock.Advance(DefaultDebounce / 2)
	calls := backend.updates()
	require.Len(t, calls, 1)
	assert.Equal(t, "xyz", calls[0].content)
}

func TestRevertToBaselineSuppressesSave(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	eng.SetContent("xy")
	eng.SetContent("x") // back to baseline before the timer fires
	assert.False(t, eng.HasUnsavedChanges())

	clock.Advance(DefaultDebounce)
	assert.Empty(t, backend.updates(), "reverted edits must not dispatch a save")
}

func TestEditsWithNoOpenDocumentAreIgnored(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))

	eng.SetContent("orphan edit")
	eng.SetTitle("orphan title")
	assert.False(t, eng.HasUnsavedChanges())

	clock.Advance(DefaultDebounce)
	assert.Empty(t, backend.updates())
}

func TestCloseCancelsArmedTimer(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	eng.SetContent("xy")
	eng.Close()

	clock.Advance(DefaultDebounce)
	assert.Empty(t, backend.updates(), "teardown must cancel the armed timer")
}

// ----------------------------------------------------------------------------
// Save executor
// ----------------------------------------------------------------------------

func TestSaveFailureRetainsBufferAndRetries(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	backend.mu.Lock()
	backend.updateErr = errors.New("connection reset")
	backend.mu.Unlock()

	eng.SetContent("xy")
	clock.Advance(DefaultDebounce)

	status := eng.Status()
	assert.True(t, status.HasUnsavedChanges, "failed save must not advance the baseline")
	assert.Contains(t, status.Err, "connection reset")
	assert.Nil(t, status.LastSaved)

	// The next keystroke re-arms the timer normally and the retry carries
	// the latest pending values.
	backend.mu.Lock()
	backend.updateErr = nil
	backend.mu.Unlock()

	eng.SetContent("xyz")
	clock.Advance(DefaultDebounce)

	calls := backend.updates()
	require.Len(t, calls, 2)
	assert.Equal(t, "xyz", calls[1].content)

	status = eng.Status()
	assert.False(t, status.HasUnsavedChanges)
	assert.Empty(t, status.Err)
	require.NotNil(t, status.LastSaved)
}

func TestEmptyTitleRejectedBeforeDispatch(t *testing.T) {
	eng, backend, _ := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	eng.SetTitle("")
	err := eng.SaveNow(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, backend.updates(), "validation failures must not reach the network")
	assert.NotEmpty(t, eng.Status().Err)
}

func TestNoConcurrentSavesForSameDocument(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	release := make(chan struct{})
	backend.mu.Lock()
	backend.blockUpdate = release
	backend.mu.Unlock()

	// First save: debounce fires and blocks inside the backend.
	eng.SetContent("xy")
	go clock.Advance(DefaultDebounce)
	<-backend.updateStarted

	// Second save scheduled during the flight must wait, not race.
	eng.SetContent("xyz")
	saved := make(chan error, 1)
	go func() { saved <- eng.SaveNow(ctx) }()

	assert.Eventually(t, func() bool {
		return eng.Status().IsSaving
	}, waitFor, tick)
	require.Len(t, backend.updates(), 1, "second save must not dispatch while one is in flight")

	backend.mu.Lock()
	backend.blockUpdate = nil
	backend.mu.Unlock()
	close(release)

	require.NoError(t, <-saved)
	calls := backend.updates()
	require.Len(t, calls, 2)
	assert.Equal(t, "xyz", calls[1].content)

	backend.mu.Lock()
	maxInFlight := backend.maxInFlight
	backend.mu.Unlock()
	assert.Equal(t, 1, maxInFlight, "saves for one document must be strictly serialized")
}

func TestBaselineAdvancesToSentValuesNotCurrentPending(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	release := make(chan struct{})
	backend.mu.Lock()
	backend.blockUpdate = release
	backend.mu.Unlock()

	eng.SetContent("xy")
	go clock.Advance(DefaultDebounce)
	<-backend.updateStarted

	// Newer edit lands while "xy" is in flight.
	eng.SetContent("xyz")

	backend.mu.Lock()
	backend.blockUpdate = nil
	backend.mu.Unlock()
	close(release)

	require.Eventually(t, func() bool {
		return !eng.Status().IsSaving
	}, waitFor, tick)

	// Baseline is the sent "xy"; the buffer still holds the newer "xyz".
	assert.True(t, eng.Status().HasUnsavedChanges,
		"baseline must advance to the sent values, not the newer pending ones")

	clock.Advance(DefaultDebounce)
	calls := backend.updates()
	require.Len(t, calls, 2)
	assert.Equal(t, "xyz", calls[1].content)
	assert.False(t, eng.Status().HasUnsavedChanges)
}

func TestManualSaveBypassesDebounce(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	eng.SetContent("xy")
	require.NoError(t, eng.SaveNow(context.Background()))

	require.Len(t, backend.updates(), 1)
	assert.False(t, eng.HasUnsavedChanges())

	// The armed timer was canceled; nothing fires afterwards.
	clock.Advance(DefaultDebounce)
	assert.Len(t, backend.updates(), 1)
}

func TestSaveNowWithCleanBufferIsNoop(t *testing.T) {
	eng, backend, _ := newTestEngine(t, testDoc("d1", "Draft", "x"))
	require.NoError(t, eng.SetCurrentDocument(context.Background(), "d1"))

	require.NoError(t, eng.SaveNow(context.Background()))
	assert.Empty(t, backend.updates())
}

// ----------------------------------------------------------------------------
// Document context switcher
// ----------------------------------------------------------------------------

func TestSwitchFlushesPreviousDocumentFirst(t *testing.T) {
	eng, backend, _ := newTestEngine(t,
		testDoc("d1", "One", "x"),
		testDoc("d2", "Two", "second"),
	)
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	eng.SetContent("xy")
	require.NoError(t, eng.SetCurrentDocument(ctx, "d2"))

	calls := backend.updates()
	require.Len(t, calls, 1, "switching away must flush the dirty buffer")
	assert.Equal(t, "d1", calls[0].id)
	assert.Equal(t, "xy", calls[0].content)

	current := eng.CurrentDocument()
	require.NotNil(t, current)
	assert.Equal(t, "d2", current.ID)
	assert.False(t, eng.HasUnsavedChanges(), "the new buffer starts clean")

	// The flushed edit was reconciled into the collection.
	d1, ok := eng.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "xy", d1.Content)
}

func TestSwitchWithCleanBufferDoesNotSave(t *testing.T) {
	eng, backend, _ := newTestEngine(t,
		testDoc("d1", "One", "x"),
		testDoc("d2", "Two", "second"),
	)
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))
	require.NoError(t, eng.SetCurrentDocument(ctx, "d2"))
	assert.Empty(t, backend.updates())
}

func TestSwitchProceedsWhenFlushFails(t *testing.T) {
	eng, backend, _ := newTestEngine(t,
		testDoc("d1", "One", "x"),
		testDoc("d2", "Two", "second"),
	)
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	backend.mu.Lock()
	backend.updateErr = errors.New("backend down")
	backend.mu.Unlock()

	eng.SetContent("xy")
	require.NoError(t, eng.SetCurrentDocument(ctx, "d2"),
		"a failed flush must not trap the user on the old document")

	current := eng.CurrentDocument()
	require.NotNil(t, current)
	assert.Equal(t, "d2", current.ID)
	assert.False(t, eng.HasUnsavedChanges(), "d2 opens with a clean buffer")

	// The edit the flush failed to persist must survive: switching back
	// reopens d1 with the dirty buffer intact instead of rebasing onto the
	// canonical values.
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))
	assert.True(t, eng.HasUnsavedChanges(), "d1's unflushed edit was dropped")
}

func TestFailedFlushEditsAreSavedOnRetry(t *testing.T) {
	eng, backend, _ := newTestEngine(t,
		testDoc("d1", "One", "x"),
		testDoc("d2", "Two", "second"),
	)
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	backend.mu.Lock()
	backend.updateErr = errors.New("backend down")
	backend.mu.Unlock()

	eng.SetContent("xy")
	require.NoError(t, eng.SetCurrentDocument(ctx, "d2"))
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	backend.mu.Lock()
	backend.updateErr = nil
	backend.mu.Unlock()

	require.NoError(t, eng.SaveNow(ctx))

	doc, ok := eng.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "xy", doc.Content)
	assert.False(t, eng.HasUnsavedChanges())
}

func TestSwitchCancelsPendingTimer(t *testing.T) {
	eng, backend, clock := newTestEngine(t,
		testDoc("d1", "One", "x"),
		testDoc("d2", "Two", "second"),
	)
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	eng.SetContent("xy") // arms timer, then the switch flushes synchronously
	require.NoError(t, eng.SetCurrentDocument(ctx, "d2"))
	require.Len(t, backend.updates(), 1)

	// The old timer must not fire a second, stale save.
	clock.Advance(DefaultDebounce)
	assert.Len(t, backend.updates(), 1)
}

func TestSwitchToUnknownDocumentFails(t *testing.T) {
	eng, _, _ := newTestEngine(t, testDoc("d1", "One", "x"))
	err := eng.SetCurrentDocument(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Nil(t, eng.CurrentDocument())
}

func TestSwitchWaitsForInFlightSaveThenProceeds(t *testing.T) {
	eng, backend, clock := newTestEngine(t,
		testDoc("d1", "One", "x"),
		testDoc("d2", "Two", "second"),
	)
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))

	release := make(chan struct{})
	backend.mu.Lock()
	backend.blockUpdate = release
	backend.mu.Unlock()

	eng.SetContent("xy")
	go clock.Advance(DefaultDebounce)
	<-backend.updateStarted

	switched := make(chan error, 1)
	go func() { switched <- eng.SetCurrentDocument(ctx, "d2") }()

	backend.mu.Lock()
	backend.blockUpdate = nil
	backend.mu.Unlock()
	close(release)

	require.NoError(t, <-switched)
	assert.Equal(t, "d2", eng.CurrentDocument().ID)

	// Exactly one write: the switch's flush noticed the in-flight save had
	// already persisted the same values.
	assert.Len(t, backend.updates(), 1)

	d1, ok := eng.Document("d1")
	require.True(t, ok)
	assert.Equal(t, "xy", d1.Content,
		"reconciliation applies even though d1 is no longer current")
}

// ----------------------------------------------------------------------------
// Collection operations
// ----------------------------------------------------------------------------

func TestCreateDocumentAddsCanonicalRecord(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	doc, err := eng.CreateDocument(context.Background(), &CreateRequest{
		Title:   "Fresh",
		Content: "hello world",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.WordCount)

	got, ok := eng.Document(doc.ID)
	require.True(t, ok)
	assert.Equal(t, "Fresh", got.Title)
}

func TestCreateDocumentRequiresTitle(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.CreateDocument(context.Background(), &CreateRequest{Content: "body"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDeleteCurrentDocumentDiscardsBuffer(t *testing.T) {
	eng, backend, clock := newTestEngine(t, testDoc("d1", "One", "x"))
	ctx := context.Background()
	require.NoError(t, eng.SetCurrentDocument(ctx, "d1"))
	eng.SetContent("xy")

	require.NoError(t, eng.DeleteDocument(ctx, "d1"))
	assert.Nil(t, eng.CurrentDocument())
	assert.False(t, eng.HasUnsavedChanges())

	clock.Advance(DefaultDebounce)
	assert.Empty(t, backend.updates(), "no save fires for a deleted document")

	_, ok := eng.Document("d1")
	assert.False(t, ok)
}
