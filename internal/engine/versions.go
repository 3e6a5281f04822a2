package engine

import (
	"context"
	"fmt"

	"quill/internal/domain/models"
)

// VersionPhase tracks the version-list lifecycle for one document
type VersionPhase string

const (
	VersionIdle    VersionPhase = "idle"
	VersionLoading VersionPhase = "loading"
	VersionLoaded  VersionPhase = "loaded"
	VersionError   VersionPhase = "error"
)

type versionState struct {
	phase VersionPhase
	list  []models.DocumentVersion
	err   string
}

func (e *Engine) versionFor(docID string) *versionState {
	vs, ok := e.versions[docID]
	if !ok {
		vs = &versionState{phase: VersionIdle}
		e.versions[docID] = vs
	}
	return vs
}

// LoadVersions fetches and replaces the version list for a document. A call
// while a load is already in progress is a no-op.
func (e *Engine) LoadVersions(ctx context.Context, docID string) error {
	e.mu.Lock()
	vs := e.versionFor(docID)
	if vs.phase == VersionLoading {
		e.mu.Unlock()
		return nil
	}
	vs.phase = VersionLoading
	vs.err = ""
	e.mu.Unlock()

	list, err := e.backend.ListVersions(ctx, docID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		vs.phase = VersionError
		vs.err = err.Error()
		return fmt.Errorf("load versions for %s: %w", docID, err)
	}
	vs.phase = VersionLoaded
	vs.list = list
	return nil
}

// RestoreVersion restores a snapshot against the canonical store and, on
// success, rebases the document's pending buffer onto the restored values.
// Unsaved pending edits are discarded: restoring is an explicit user action
// that supersedes in-progress drafts.
func (e *Engine) RestoreVersion(ctx context.Context, docID, versionID string) error {
	doc, err := e.backend.RestoreVersion(ctx, docID, versionID)
	if err != nil {
		e.mu.Lock()
		vs := e.versionFor(docID)
		vs.err = err.Error()
		e.mu.Unlock()
		return fmt.Errorf("restore version %s of %s: %w", versionID, docID, err)
	}

	e.mu.Lock()
	e.docs.Put(*doc)
	if buf := e.buffers[docID]; buf != nil {
		buf.rebase(doc.Title, doc.Content)
		if e.timerDoc == docID {
			e.cancelTimerLocked()
		}
	}
	// The restore recorded a new snapshot server-side; the cached list is
	// stale until the next load.
	e.versionFor(docID).phase = VersionIdle
	e.mu.Unlock()

	e.logger.Info("version restored",
		"document_id", docID,
		"version_id", versionID,
	)
	return nil
}

// Versions returns a copy of the loaded version list for a document
func (e *Engine) Versions(docID string) []models.DocumentVersion {
	e.mu.Lock()
	defer e.mu.Unlock()

	vs, ok := e.versions[docID]
	if !ok || vs.list == nil {
		return nil
	}
	out := make([]models.DocumentVersion, len(vs.list))
	copy(out, vs.list)
	return out
}

// VersionState reports the version-list lifecycle phase and last error for
// a document
func (e *Engine) VersionState(docID string) (VersionPhase, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vs, ok := e.versions[docID]
	if !ok {
		return VersionIdle, ""
	}
	return vs.phase, vs.err
}
