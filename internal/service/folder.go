package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
	"quill/internal/engine"
)

// folderService implements the FolderService interface
type folderService struct {
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(folderRepo repositories.FolderRepository, logger *slog.Logger) services.FolderService {
	return &folderService{folderRepo: folderRepo, logger: logger}
}

// CreateFolder creates a folder
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateFolderName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID, req.OwnerID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.New().String(),
		OwnerID:   req.OwnerID,
		ParentID:  req.ParentID,
		Name:      name,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// GetFolder retrieves one folder
func (s *folderService) GetFolder(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id, ownerID)
}

// ListFolders retrieves the owner's flat folder collection
func (s *folderService) ListFolders(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return s.folderRepo.ListByOwner(ctx, ownerID)
}

// BuildTree assembles the owner's flat collection into a nested tree
func (s *folderService) BuildTree(ctx context.Context, ownerID string) ([]*models.FolderNode, error) {
	folders, err := s.folderRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	roots, err := engine.BuildFolderTree(folders)
	if err != nil {
		return nil, fmt.Errorf("build folder tree: %w", err)
	}
	return roots, nil
}

// UpdateFolder applies a partial update. A parent change is checked against
// the ancestor chain so a folder can never be moved inside itself.
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateFolderName(name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		folder.Name = name
	}
	if req.Color != nil {
		folder.Color = req.Color
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			folder.ParentID = nil
		} else {
			if err := s.checkMove(ctx, id, *req.ParentID, req.OwnerID); err != nil {
				return nil, err
			}
			folder.ParentID = req.ParentID
		}
	}

	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// DeleteFolder deletes a folder
func (s *folderService) DeleteFolder(ctx context.Context, id, ownerID string) error {
	if err := s.folderRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", id)
	return nil
}

// checkMove walks the target's ancestor chain and rejects the move when the
// folder being moved appears in it.
func (s *folderService) checkMove(ctx context.Context, folderID, newParentID, ownerID string) error {
	if folderID == newParentID {
		return fmt.Errorf("%w: folder cannot be its own parent", domain.ErrValidation)
	}

	currentID := newParentID
	visited := map[string]struct{}{}
	for {
		if _, seen := visited[currentID]; seen {
			// Existing cycle in stored data; the move is unsafe either way.
			return fmt.Errorf("%w: folder hierarchy contains a cycle", domain.ErrValidation)
		}
		visited[currentID] = struct{}{}

		parent, err := s.folderRepo.GetByID(ctx, currentID, ownerID)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == folderID {
			return fmt.Errorf("%w: folder cannot be moved inside its own subtree", domain.ErrValidation)
		}
		currentID = *parent.ParentID
	}
}

// validateFolderName validates a folder name
func validateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name cannot be empty"),
		validation.Length(1, config.MaxFolderNameLength),
	)
}
