package engine

import "context"

// armTimerLocked cancels any armed debounce timer and starts a fresh one
// for the given document. Caller holds e.mu. The generation counter keeps a
// callback that already escaped Stop from dispatching a stale save.
func (e *Engine) armTimerLocked(docID string) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timerGen++
	gen := e.timerGen
	e.timerDoc = docID
	e.timer = e.clock.AfterFunc(e.debounce, func() {
		e.onDebounceFire(docID, gen)
	})
}

// cancelTimerLocked disarms the debounce timer. Caller holds e.mu.
func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerDoc = ""
	e.timerGen++
}

// onDebounceFire runs when the inactivity window for docID elapses. It
// dispatches at most one save carrying the buffer's latest pending values;
// a buffer that reverted to baseline in the interim suppresses the save.
func (e *Engine) onDebounceFire(docID string, gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.timerGen {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.timerDoc = ""

	buf := e.buffers[docID]
	if buf == nil || !buf.dirty() {
		e.mu.Unlock()
		e.logger.Debug("debounce fire suppressed: no unsaved changes", "document_id", docID)
		return
	}
	title, content := buf.pendingTitle, buf.pendingContent
	e.mu.Unlock()

	if err := e.saveDocument(context.Background(), docID, title, content); err != nil {
		e.logger.Warn("debounced save failed", "document_id", docID, "error", err)
	}
}
