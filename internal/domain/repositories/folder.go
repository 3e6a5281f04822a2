package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// FolderRepository defines data access operations for folders. All reads and
// mutations are scoped to the owning user.
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID, scoped to its owner
	GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error)

	// ListByOwner retrieves the owner's flat folder collection
	ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)

	// Update updates an existing folder, scoped to its owner
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder, scoped to its owner
	Delete(ctx context.Context, id, ownerID string) error
}

// SeriesRepository defines data access operations for series. All reads and
// mutations are scoped to the owning user.
type SeriesRepository interface {
	// Create creates a new series
	Create(ctx context.Context, series *models.Series) error

	// GetByID retrieves a series by ID, scoped to its owner
	GetByID(ctx context.Context, id, ownerID string) (*models.Series, error)

	// ListByOwner retrieves the owner's series
	ListByOwner(ctx context.Context, ownerID string) ([]models.Series, error)

	// Delete deletes a series, scoped to its owner
	Delete(ctx context.Context, id, ownerID string) error
}
