package engine

import (
	"context"
	"fmt"

	"quill/internal/domain"
)

// SetCurrentDocument changes which document edits apply to. Pass "" to
// close the current document without opening another.
//
// If the presently-open document has unsaved changes they are flushed to
// the backend strictly before the pointer swap; a flush failure is surfaced
// through the previous document's save status but never blocks the switch.
// The new document's buffer always starts clean, baselined on the
// collection's canonical values.
func (e *Engine) SetCurrentDocument(ctx context.Context, id string) error {
	e.switchMu.Lock()
	defer e.switchMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("engine is closed")
	}
	if id == e.currentID {
		e.mu.Unlock()
		return nil
	}
	if id != "" {
		if _, ok := e.docs.Get(id); !ok {
			e.mu.Unlock()
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
	}

	// The armed timer belongs to the old context; never let it fire into
	// the new one.
	e.cancelTimerLocked()

	prev := e.currentID
	var flushTitle, flushContent string
	needFlush := false
	if prev != "" {
		if buf := e.buffers[prev]; buf != nil && buf.dirty() {
			needFlush = true
			flushTitle, flushContent = buf.pendingTitle, buf.pendingContent
		}
	}
	e.mu.Unlock()

	if needFlush {
		if err := e.saveDocument(ctx, prev, flushTitle, flushContent); err != nil {
			// Do not trap the user: the switch proceeds, the error stays
			// visible on the previous document's save state.
			e.logger.Warn("flush before switch failed",
				"document_id", prev,
				"error", err,
			)
		}
	}

	e.mu.Lock()
	if prev != "" {
		// A buffer still dirty here means the flush failed; keep it so the
		// edits survive and a switch back can retry the save.
		if buf := e.buffers[prev]; buf != nil && !buf.dirty() {
			delete(e.buffers, prev)
		}
	}
	e.currentID = id
	if id != "" {
		doc, ok := e.docs.Get(id)
		if !ok {
			// Deleted while we were flushing; leave nothing open.
			e.currentID = ""
			e.mu.Unlock()
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		if buf := e.buffers[id]; buf == nil || !buf.dirty() {
			e.buffers[id] = newPendingBuffer(doc.Title, doc.Content)
		}
	}
	e.mu.Unlock()

	e.logger.Debug("current document changed", "from", prev, "to", id)
	return nil
}
