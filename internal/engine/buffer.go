package engine

// pendingBuffer holds the latest uncommitted title/content for one open
// document relative to the last values known to match the server. Dirtiness
// is always computed against the baseline, never against the previous
// pending value, so editing back to the original text and away again is
// tracked correctly.
type pendingBuffer struct {
	pendingTitle    string
	pendingContent  string
	baselineTitle   string
	baselineContent string
}

func newPendingBuffer(title, content string) *pendingBuffer {
	return &pendingBuffer{
		pendingTitle:    title,
		pendingContent:  content,
		baselineTitle:   title,
		baselineContent: content,
	}
}

// dirty reports whether the pending values diverge from the baseline
func (b *pendingBuffer) dirty() bool {
	return b.pendingTitle != b.baselineTitle || b.pendingContent != b.baselineContent
}

// rebase resets both pending and baseline to the given values, marking the
// buffer clean. Used after a restore and when a document first opens.
func (b *pendingBuffer) rebase(title, content string) {
	b.pendingTitle = title
	b.pendingContent = content
	b.baselineTitle = title
	b.baselineContent = content
}

// SetTitle records a title edit for the current document and re-arms the
// debounce scheduler. A call with no open document is a no-op.
func (e *Engine) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.currentID == "" {
		e.logger.Debug("title edit ignored: no document open")
		return
	}

	e.buffers[e.currentID].pendingTitle = title
	e.armTimerLocked(e.currentID)
}

// SetContent records a content edit for the current document and re-arms
// the debounce scheduler. A call with no open document is a no-op.
func (e *Engine) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.currentID == "" {
		e.logger.Debug("content edit ignored: no document open")
		return
	}

	e.buffers[e.currentID].pendingContent = content
	e.armTimerLocked(e.currentID)
}

// HasUnsavedChanges reports whether the current document's pending edits
// diverge from its baseline
func (e *Engine) HasUnsavedChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentID == "" {
		return false
	}
	buf := e.buffers[e.currentID]
	return buf != nil && buf.dirty()
}
