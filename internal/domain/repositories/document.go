package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID, scoped to an owner
	GetByID(ctx context.Context, id, ownerID string) (*models.Document, error)

	// ListByOwner retrieves all documents for an owner, full content included
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)

	// Update updates an existing document
	Update(ctx context.Context, doc *models.Document) error

	// Delete deletes a document
	Delete(ctx context.Context, id, ownerID string) error

	// Search performs full-text search across document title/content/tags
	Search(ctx context.Context, ownerID string, options *models.SearchOptions) (*models.SearchResults, error)
}

// VersionRepository defines data access operations for document version snapshots
type VersionRepository interface {
	// Create records a new version snapshot. The caller is responsible for
	// running NextVersionNumber and Create inside one transaction so version
	// numbers stay strictly increasing per document.
	Create(ctx context.Context, version *models.DocumentVersion) error

	// NextVersionNumber returns max(version_number)+1 for a document
	NextVersionNumber(ctx context.Context, documentID string) (int, error)

	// ListByDocument retrieves version snapshots for a document, newest first
	ListByDocument(ctx context.Context, documentID string, limit int) ([]models.DocumentVersion, error)

	// GetByID retrieves a single version snapshot
	GetByID(ctx context.Context, id, documentID string) (*models.DocumentVersion, error)

	// PruneOld deletes the oldest snapshots beyond keepLast for a document
	PruneOld(ctx context.Context, documentID string, keepLast int) error
}
