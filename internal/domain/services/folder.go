package services

import (
	"context"

	"quill/internal/domain/models"
)

// CreateFolderRequest carries the fields for creating a folder
type CreateFolderRequest struct {
	OwnerID  string
	Name     string
	ParentID *string
	Color    *string
}

// UpdateFolderRequest carries partial folder updates. A ParentID pointing at
// "" moves the folder to the root.
type UpdateFolderRequest struct {
	OwnerID  string
	Name     *string
	ParentID *string
	Color    *string
}

// FolderService manages the folder hierarchy. Every operation is scoped to
// the owning user; another user's folders are indistinguishable from absent.
type FolderService interface {
	// CreateFolder creates a folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves one folder
	GetFolder(ctx context.Context, id, ownerID string) (*models.Folder, error)

	// ListFolders retrieves the owner's flat folder collection
	ListFolders(ctx context.Context, ownerID string) ([]models.Folder, error)

	// BuildTree assembles the owner's flat collection into a nested tree
	BuildTree(ctx context.Context, ownerID string) ([]*models.FolderNode, error)

	// UpdateFolder applies a partial update, rejecting moves that would
	// create a parent cycle.
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder; children are re-rooted and member
	// documents unfiled.
	DeleteFolder(ctx context.Context, id, ownerID string) error
}

// SeriesService manages series and their chapter rollups, scoped to the
// owning user.
type SeriesService interface {
	// CreateSeries creates a series
	CreateSeries(ctx context.Context, ownerID, name string, description *string) (*models.Series, error)

	// GetSeries retrieves one series
	GetSeries(ctx context.Context, id, ownerID string) (*models.Series, error)

	// ListSeries retrieves the owner's series
	ListSeries(ctx context.Context, ownerID string) ([]models.Series, error)

	// GetOverview aggregates a series' member documents in chapter order
	// with their total word count.
	GetOverview(ctx context.Context, id, ownerID string) (*models.SeriesOverview, error)

	// DeleteSeries deletes a series, detaching member documents
	DeleteSeries(ctx context.Context, id, ownerID string) error
}
