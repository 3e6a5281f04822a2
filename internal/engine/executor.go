package engine

import (
	"context"
	"fmt"
	"time"

	"quill/internal/domain"
)

// saveState tracks the save operation for one document. At most one save
// per document is in flight at a time; later requests wait on done rather
// than racing a second concurrent write.
type saveState struct {
	inFlight  bool
	done      chan struct{} // closed when the current flight resolves
	lastSaved time.Time     // zero = never saved this session
	lastErr   string
}

// SaveStatus is the snapshot the rendering layer consumes
type SaveStatus struct {
	HasUnsavedChanges bool       `json:"has_unsaved_changes"`
	IsSaving          bool       `json:"is_saving"`
	LastSaved         *time.Time `json:"last_saved,omitempty"`
	Err               string     `json:"error,omitempty"`
}

func (e *Engine) saveFor(docID string) *saveState {
	st, ok := e.saves[docID]
	if !ok {
		st = &saveState{}
		e.saves[docID] = st
	}
	return st
}

// SaveNow flushes the current document's pending edits immediately,
// bypassing the debounce wait but going through the same in-flight guard
// and reconciliation path.
func (e *Engine) SaveNow(ctx context.Context) error {
	e.mu.Lock()
	if e.closed || e.currentID == "" {
		e.mu.Unlock()
		return nil
	}
	buf := e.buffers[e.currentID]
	if buf == nil || !buf.dirty() {
		e.mu.Unlock()
		return nil
	}
	id := e.currentID
	title, content := buf.pendingTitle, buf.pendingContent
	e.cancelTimerLocked()
	e.mu.Unlock()

	return e.saveDocument(ctx, id, title, content)
}

// saveDocument persists the given values for docID. The document identifier
// and values were captured when the save was scheduled, never re-read from
// whatever happens to be current, so a mid-debounce document switch cannot
// attribute edits to the wrong document.
//
// On success the canonical response is reconciled into the collection
// regardless of whether the document is still current, and the buffer's
// baseline advances to the values that were sent (the buffer may already
// hold newer pending edits, which the scheduler has re-armed for).
// On failure the baseline stays put so the next fire retries with the
// latest pending values.
func (e *Engine) saveDocument(ctx context.Context, docID, title, content string) error {
	if err := validateTitle(title); err != nil {
		e.mu.Lock()
		e.saveFor(docID).lastErr = err.Error()
		e.mu.Unlock()
		return &domain.ValidationError{Message: err.Error()}
	}

	e.mu.Lock()
	st := e.saveFor(docID)

	// Serialize: wait for any in-flight save of the same document.
	for st.inFlight {
		done := st.done
		e.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		e.mu.Lock()
	}

	// The save we waited on may have already persisted exactly these values.
	if buf := e.buffers[docID]; buf != nil &&
		buf.baselineTitle == title && buf.baselineContent == content {
		e.mu.Unlock()
		return nil
	}

	st.inFlight = true
	st.lastErr = ""
	st.done = make(chan struct{})
	e.mu.Unlock()

	doc, err := e.backend.Update(ctx, docID, &UpdateRequest{
		Title:   &title,
		Content: &content,
	})

	e.mu.Lock()
	st.inFlight = false
	close(st.done)

	if err != nil {
		st.lastErr = err.Error()
		e.mu.Unlock()
		return fmt.Errorf("save document %s: %w", docID, err)
	}

	e.docs.Put(*doc)
	if buf := e.buffers[docID]; buf != nil {
		buf.baselineTitle = title
		buf.baselineContent = content
	}
	st.lastSaved = e.clock.Now()
	e.mu.Unlock()

	e.logger.Debug("document saved",
		"document_id", docID,
		"word_count", doc.WordCount,
	)
	return nil
}

// Status reports the save state for the currently open document
func (e *Engine) Status() SaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	var status SaveStatus
	if e.currentID == "" {
		return status
	}

	if buf := e.buffers[e.currentID]; buf != nil {
		status.HasUnsavedChanges = buf.dirty()
	}
	if st, ok := e.saves[e.currentID]; ok {
		status.IsSaving = st.inFlight
		status.Err = st.lastErr
		if !st.lastSaved.IsZero() {
			t := st.lastSaved
			status.LastSaved = &t
		}
	}
	return status
}
