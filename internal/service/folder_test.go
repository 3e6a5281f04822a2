package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/services"
)

type memFolderRepo struct {
	folders map[string]*models.Folder
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{folders: map[string]*models.Folder{}}
}

func (r *memFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func (r *memFolderRepo) GetByID(_ context.Context, id, ownerID string) (*models.Folder, error) {
	folder, ok := r.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Message: "folder not found: " + id}
	}
	copied := *folder
	return &copied, nil
}

func (r *memFolderRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if f.OwnerID == ownerID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memFolderRepo) Update(_ context.Context, folder *models.Folder) error {
	existing, ok := r.folders[folder.ID]
	if !ok || existing.OwnerID != folder.OwnerID {
		return &domain.NotFoundError{Message: "folder not found: " + folder.ID}
	}
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func (r *memFolderRepo) Delete(_ context.Context, id, ownerID string) error {
	existing, ok := r.folders[id]
	if !ok || existing.OwnerID != ownerID {
		return &domain.NotFoundError{Message: "folder not found: " + id}
	}
	delete(r.folders, id)
	return nil
}

func (r *memFolderRepo) add(id, ownerID string, parentID *string) {
	r.folders[id] = &models.Folder{ID: id, OwnerID: ownerID, Name: id, ParentID: parentID}
}

func newTestFolderService(repo *memFolderRepo) *folderService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFolderService(repo, logger).(*folderService)
}

func TestUpdateFolderRejectsSelfParent(t *testing.T) {
	repo := newMemFolderRepo()
	repo.add("a", "user-1", nil)
	svc := newTestFolderService(repo)

	parent := "a"
	_, err := svc.UpdateFolder(context.Background(), "a", &services.UpdateFolderRequest{OwnerID: "user-1", ParentID: &parent})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateFolder() error = %v, want ErrValidation", err)
	}
}

func TestUpdateFolderRejectsMoveIntoOwnSubtree(t *testing.T) {
	repo := newMemFolderRepo()
	a, b := "a", "b"
	repo.add("a", "user-1", nil)
	repo.add("b", "user-1", &a) // b inside a
	repo.add("c", "user-1", &b) // c inside b
	svc := newTestFolderService(repo)

	// Moving a under c would make a its own ancestor.
	newParent := "c"
	_, err := svc.UpdateFolder(context.Background(), "a", &services.UpdateFolderRequest{OwnerID: "user-1", ParentID: &newParent})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateFolder() error = %v, want ErrValidation", err)
	}
}

func TestUpdateFolderAllowsMoveToSibling(t *testing.T) {
	repo := newMemFolderRepo()
	a := "a"
	repo.add("a", "user-1", nil)
	repo.add("b", "user-1", &a)
	repo.add("c", "user-1", &a)
	svc := newTestFolderService(repo)

	newParent := "c"
	folder, err := svc.UpdateFolder(context.Background(), "b", &services.UpdateFolderRequest{OwnerID: "user-1", ParentID: &newParent})
	if err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if folder.ParentID == nil || *folder.ParentID != "c" {
		t.Errorf("ParentID = %v, want c", folder.ParentID)
	}
}

func TestUpdateFolderEmptyParentMovesToRoot(t *testing.T) {
	repo := newMemFolderRepo()
	a := "a"
	repo.add("a", "user-1", nil)
	repo.add("b", "user-1", &a)
	svc := newTestFolderService(repo)

	root := ""
	folder, err := svc.UpdateFolder(context.Background(), "b", &services.UpdateFolderRequest{OwnerID: "user-1", ParentID: &root})
	if err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if folder.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", folder.ParentID)
	}
}

func TestCreateFolderRequiresExistingParent(t *testing.T) {
	repo := newMemFolderRepo()
	svc := newTestFolderService(repo)

	missing := "missing"
	_, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{OwnerID: "user-1", Name: "New", ParentID: &missing})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CreateFolder() error = %v, want ErrNotFound", err)
	}
}

func TestCreateFolderRejectsBlankName(t *testing.T) {
	repo := newMemFolderRepo()
	svc := newTestFolderService(repo)

	_, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{OwnerID: "user-1", Name: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("CreateFolder() error = %v, want ErrValidation", err)
	}
}

func TestFolderOperationsAreOwnerScoped(t *testing.T) {
	repo := newMemFolderRepo()
	repo.add("theirs", "user-1", nil)
	svc := newTestFolderService(repo)

	if _, err := svc.GetFolder(context.Background(), "theirs", "user-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetFolder() by another user error = %v, want ErrNotFound", err)
	}

	name := "hijacked"
	_, err := svc.UpdateFolder(context.Background(), "theirs", &services.UpdateFolderRequest{OwnerID: "user-2", Name: &name})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateFolder() by another user error = %v, want ErrNotFound", err)
	}

	if err := svc.DeleteFolder(context.Background(), "theirs", "user-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteFolder() by another user error = %v, want ErrNotFound", err)
	}
	if _, ok := repo.folders["theirs"]; !ok {
		t.Error("another user's delete removed the folder")
	}

	folders, err := svc.ListFolders(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("ListFolders() leaked %d folders across owners", len(folders))
	}
}

func TestBuildTreeOnlySeesOwnFolders(t *testing.T) {
	repo := newMemFolderRepo()
	repo.add("mine", "user-1", nil)
	repo.add("theirs", "user-2", nil)
	svc := newTestFolderService(repo)

	tree, err := svc.BuildTree(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if len(tree) != 1 || tree[0].ID != "mine" {
		t.Errorf("BuildTree() = %v, want only the caller's folder", tree)
	}
}
