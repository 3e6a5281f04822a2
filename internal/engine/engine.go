// Package engine keeps a locally-edited document consistent with its
// persisted counterpart: edits accumulate in a per-document pending buffer,
// a debounced scheduler coalesces them into saves, and a save executor
// reconciles the backend's canonical response into the engine-owned
// document collection.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
)

// DefaultDebounce is the inactivity window after which accumulated edits
// are flushed to the backend.
const DefaultDebounce = 2000 * time.Millisecond

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Debounce time.Duration // debounce window (0 → 2s)
	Clock    Clock         // nil → system clock
	Logger   *slog.Logger  // nil → slog.Default()
}

// Engine owns the document collection and all per-document save state.
// Mutation of shared state only happens through its methods.
type Engine struct {
	mu      sync.Mutex
	backend Backend

	clock    Clock
	logger   *slog.Logger
	debounce time.Duration

	docs      *collection
	currentID string // "" = no document open
	buffers   map[string]*pendingBuffer
	saves     map[string]*saveState
	versions  map[string]*versionState

	timer    Timer
	timerDoc string
	timerGen uint64 // invalidates callbacks from replaced timers

	// switchMu serializes document context switches so a flush-save is
	// strictly ordered before the pointer swap it belongs to.
	switchMu sync.Mutex

	searchResults *models.SearchResults
	searchErr     string

	closed bool
}

// New creates an engine persisting through the given backend
func New(backend Backend, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Engine{
		backend:  backend,
		clock:    opts.Clock,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		docs:     newCollection(),
		buffers:  make(map[string]*pendingBuffer),
		saves:    make(map[string]*saveState),
		versions: make(map[string]*versionState),
	}
}

// Load fetches the full document collection from the backend and replaces
// the local copy.
func (e *Engine) Load(ctx context.Context) error {
	docs, err := e.backend.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	e.mu.Lock()
	e.docs.ReplaceAll(docs)
	e.mu.Unlock()

	e.logger.Info("documents loaded", "count", len(docs))
	return nil
}

// CreateDocument creates a document on the backend and adds the canonical
// record to the collection.
func (e *Engine) CreateDocument(ctx context.Context, req *CreateRequest) (*models.Document, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	doc, err := e.backend.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	e.mu.Lock()
	e.docs.Put(*doc)
	e.mu.Unlock()

	e.logger.Info("document created", "document_id", doc.ID, "title", doc.Title)
	return doc, nil
}

// DeleteDocument removes a document from the backend and the collection.
// Deleting the currently open document discards its pending buffer and
// clears the current-document pointer.
func (e *Engine) DeleteDocument(ctx context.Context, id string) error {
	if err := e.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	e.mu.Lock()
	e.docs.Remove(id)
	delete(e.buffers, id)
	delete(e.versions, id)
	if e.currentID == id {
		e.currentID = ""
		e.cancelTimerLocked()
	}
	e.mu.Unlock()

	e.logger.Info("document deleted", "document_id", id)
	return nil
}

// Documents returns copies of every document in the collection
func (e *Engine) Documents() []models.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs.All()
}

// Document returns a copy of a single document from the collection
func (e *Engine) Document(id string) (models.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs.Get(id)
}

// CurrentDocument returns a copy of the currently open document, or nil
// when none is open.
func (e *Engine) CurrentDocument() *models.Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentID == "" {
		return nil
	}
	doc, ok := e.docs.Get(e.currentID)
	if !ok {
		return nil
	}
	return &doc
}

// SeriesOverview aggregates the collection's members of a series, ordered
// by chapter number, with their total word count.
func (e *Engine) SeriesOverview(series models.Series) models.SeriesOverview {
	e.mu.Lock()
	docs := e.docs.All()
	e.mu.Unlock()

	return BuildSeriesOverview(series, docs)
}

// Close cancels any armed debounce timer and stops accepting edits. An
// in-flight save is allowed to complete; its reconciliation still applies.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.cancelTimerLocked()
	e.logger.Debug("engine closed")
}

// validateTitle rejects an empty or oversized title before any network
// call is made
func validateTitle(title string) error {
	return validation.Validate(title,
		validation.Required.Error("document title cannot be empty"),
		validation.Length(1, config.MaxTitleLength),
	)
}
