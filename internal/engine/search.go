package engine

import (
	"context"
	"fmt"
	"strings"

	"quill/internal/domain"
	"quill/internal/domain/models"
)

// SearchRemote issues one full-text query against the backend and replaces
// the current result set.
func (e *Engine) SearchRemote(ctx context.Context, opts models.SearchOptions) (*models.SearchResults, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	results, err := e.backend.Search(ctx, &opts)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.searchErr = err.Error()
		return nil, fmt.Errorf("search %q: %w", opts.Query, err)
	}
	e.searchErr = ""
	e.searchResults = results
	return results, nil
}

// ClearSearch resets the remote result set
func (e *Engine) ClearSearch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchResults = nil
	e.searchErr = ""
}

// SearchResults returns the current remote result set and the last search
// error, if any.
func (e *Engine) SearchResults() (*models.SearchResults, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchResults, e.searchErr
}

// LocalSearchOptions configures SearchLocal. The zero value searches titles
// only, case-insensitively.
type LocalSearchOptions struct {
	CaseSensitive  bool
	IncludeContent bool
	IncludeTags    bool
}

// SearchLocal is a pure substring filter over an in-memory document
// collection, used for immediate feedback or small collections. Title is
// always searched; content and tags only when enabled. Result order is
// stable, preserving input order - ranking belongs to the remote backend.
func SearchLocal(docs []models.Document, query string, opts LocalSearchOptions) []models.Document {
	if query == "" {
		return nil
	}

	match := func(s string) bool {
		if opts.CaseSensitive {
			return strings.Contains(s, query)
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(query))
	}

	var out []models.Document
	for _, doc := range docs {
		if match(doc.Title) {
			out = append(out, doc)
			continue
		}
		if opts.IncludeContent && match(doc.Content) {
			out = append(out, doc)
			continue
		}
		if opts.IncludeTags {
			for _, tag := range doc.Tags {
				if match(tag) {
					out = append(out, doc)
					break
				}
			}
		}
	}
	return out
}
