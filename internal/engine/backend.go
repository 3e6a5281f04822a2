package engine

import (
	"context"

	"quill/internal/domain/models"
)

// Backend is the persistence boundary the engine saves through. All calls
// are request/response operations over a network; implementations must be
// safe for concurrent use.
type Backend interface {
	// FetchAll retrieves the full document collection
	FetchAll(ctx context.Context) ([]models.Document, error)

	// Fetch retrieves a single document
	Fetch(ctx context.Context, id string) (*models.Document, error)

	// Create creates a new document and returns the canonical record
	Create(ctx context.Context, req *CreateRequest) (*models.Document, error)

	// Update applies a partial update (title and/or content) and returns
	// the full canonical document
	Update(ctx context.Context, id string, req *UpdateRequest) (*models.Document, error)

	// Delete removes a document
	Delete(ctx context.Context, id string) error

	// ListVersions retrieves version snapshots for a document, newest first
	ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error)

	// RestoreVersion restores a snapshot and returns the canonical document
	RestoreVersion(ctx context.Context, documentID, versionID string) (*models.Document, error)

	// Search runs a remote full-text query
	Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error)
}

// CreateRequest carries the fields for creating a document
type CreateRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	FolderID      *string  `json:"folder_id,omitempty"`
	SeriesID      *string  `json:"series_id,omitempty"`
	ChapterNumber *int     `json:"chapter_number,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// UpdateRequest carries a partial document update. Nil fields are left
// untouched server-side.
type UpdateRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
