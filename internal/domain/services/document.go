package services

import (
	"context"

	"quill/internal/domain/models"
)

// CreateDocumentRequest carries the fields for creating a document
type CreateDocumentRequest struct {
	OwnerID       string
	Title         string
	Content       string
	FolderID      *string
	SeriesID      *string
	ChapterNumber *int
	Tags          []string
}

// UpdateDocumentRequest carries partial updates. Nil pointer fields are left
// unchanged; for FolderID and SeriesID a pointer to "" clears the assignment
// (root folder / no series).
type UpdateDocumentRequest struct {
	OwnerID       string
	Title         *string
	Content       *string
	FolderID      *string
	SeriesID      *string
	ChapterNumber *int
	ClearChapter  bool // true = set chapter number to NULL
	Tags          *[]string
}

// DocumentService coordinates document persistence, version snapshots and
// full-text search.
type DocumentService interface {
	// CreateDocument creates a document, computing its word count
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves one document, scoped to its owner
	GetDocument(ctx context.Context, id, ownerID string) (*models.Document, error)

	// ListDocuments retrieves the owner's full document collection
	ListDocuments(ctx context.Context, ownerID string) ([]models.Document, error)

	// UpdateDocument applies a partial update. A content or title change
	// records a version snapshot of the current state before overwriting it,
	// then prunes snapshots beyond the retention cap.
	UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*models.Document, error)

	// DeleteDocument deletes a document and its version history
	DeleteDocument(ctx context.Context, id, ownerID string) error

	// SearchDocuments performs full-text search over the owner's documents
	SearchDocuments(ctx context.Context, ownerID string, opts *models.SearchOptions) (*models.SearchResults, error)

	// ListVersions retrieves a document's version snapshots, newest first
	ListVersions(ctx context.Context, documentID, ownerID string, limit int) ([]models.DocumentVersion, error)

	// GetVersion retrieves one version snapshot
	GetVersion(ctx context.Context, versionID, documentID, ownerID string) (*models.DocumentVersion, error)

	// RestoreVersion rewrites the document from a snapshot. The pre-restore
	// state is itself recorded as a snapshot first, so a restore is always
	// reversible.
	RestoreVersion(ctx context.Context, versionID, documentID, ownerID string) (*models.Document, error)
}
