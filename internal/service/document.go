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
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo         repositories.DocumentRepository
	versionRepo     repositories.VersionRepository
	txManager       repositories.TransactionManager
	contentAnalyzer services.ContentAnalyzer
	publisher       EventPublisher
	maxVersions     int
	logger          *slog.Logger
}

// NewDocumentService creates a new document service. publisher may be nil
// when no event hub is wired up.
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	contentAnalyzer services.ContentAnalyzer,
	publisher EventPublisher,
	maxVersions int,
	logger *slog.Logger,
) services.DocumentService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if maxVersions <= 0 {
		maxVersions = config.DefaultMaxVersionsPerDocument
	}
	return &documentService{
		docRepo:         docRepo,
		versionRepo:     versionRepo,
		txManager:       txManager,
		contentAnalyzer: contentAnalyzer,
		publisher:       publisher,
		maxVersions:     maxVersions,
		logger:          logger,
	}
}

// CreateDocument creates a new document with a computed word count
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Empty string means root / no series
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.SeriesID != nil && *req.SeriesID == "" {
		req.SeriesID = nil
	}

	now := time.Now()
	doc := &models.Document{
		ID:            uuid.New().String(),
		OwnerID:       req.OwnerID,
		FolderID:      req.FolderID,
		SeriesID:      req.SeriesID,
		ChapterNumber: req.ChapterNumber,
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Tags:          normalizeTags(req.Tags),
		WordCount:     s.contentAnalyzer.CountWords(req.Content),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"owner_id", doc.OwnerID,
		"word_count", doc.WordCount,
	)

	s.publisher.PublishDocument(EventDocumentCreated, doc)
	return doc, nil
}

// GetDocument retrieves a document scoped to its owner
func (s *documentService) GetDocument(ctx context.Context, id, ownerID string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id, ownerID)
}

// ListDocuments retrieves the owner's full document collection
func (s *documentService) ListDocuments(ctx context.Context, ownerID string) ([]models.Document, error) {
	return s.docRepo.ListByOwner(ctx, ownerID)
}

// UpdateDocument applies a partial update. When title or content change, the
// pre-update state is recorded as a version snapshot in the same transaction
// as the update, and snapshots beyond the retention cap are pruned.
func (s *documentService) UpdateDocument(ctx context.Context, id string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id, req.OwnerID)
	if err != nil {
		return nil, err
	}
	previous := *doc

	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		doc.Content = *req.Content
		doc.WordCount = s.contentAnalyzer.CountWords(doc.Content)
	}
	if req.FolderID != nil {
		if *req.FolderID == "" {
			doc.FolderID = nil
		} else {
			doc.FolderID = req.FolderID
		}
	}
	if req.SeriesID != nil {
		if *req.SeriesID == "" {
			doc.SeriesID = nil
		} else {
			doc.SeriesID = req.SeriesID
		}
	}
	if req.ClearChapter {
		doc.ChapterNumber = nil
	} else if req.ChapterNumber != nil {
		doc.ChapterNumber = req.ChapterNumber
	}
	if req.Tags != nil {
		doc.Tags = normalizeTags(*req.Tags)
	}

	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc.UpdatedAt = time.Now()

	snapshot := previous.Title != doc.Title || previous.Content != doc.Content
	if snapshot {
		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := s.recordSnapshot(txCtx, &previous, summarizeChange(&previous, doc)); err != nil {
				return err
			}
			if err := s.docRepo.Update(txCtx, doc); err != nil {
				return err
			}
			return s.versionRepo.PruneOld(txCtx, doc.ID, s.maxVersions)
		})
	} else {
		err = s.docRepo.Update(ctx, doc)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"title", doc.Title,
		"snapshot", snapshot,
		"word_count", doc.WordCount,
	)

	s.publisher.PublishDocument(EventDocumentUpdated, doc)
	return doc, nil
}

// DeleteDocument deletes a document; version snapshots cascade
func (s *documentService) DeleteDocument(ctx context.Context, id, ownerID string) error {
	if err := s.docRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", id, "owner_id", ownerID)
	s.publisher.PublishDocumentDeleted(id)
	return nil
}

// SearchDocuments performs full-text search over the owner's documents
func (s *documentService) SearchDocuments(ctx context.Context, ownerID string, opts *models.SearchOptions) (*models.SearchResults, error) {
	return s.docRepo.Search(ctx, ownerID, opts)
}

// ListVersions retrieves a document's version snapshots, newest first
func (s *documentService) ListVersions(ctx context.Context, documentID, ownerID string, limit int) ([]models.DocumentVersion, error) {
	// Ownership check before exposing history
	if _, err := s.docRepo.GetByID(ctx, documentID, ownerID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByDocument(ctx, documentID, limit)
}

// GetVersion retrieves one version snapshot
func (s *documentService) GetVersion(ctx context.Context, versionID, documentID, ownerID string) (*models.DocumentVersion, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID, ownerID); err != nil {
		return nil, err
	}
	return s.versionRepo.GetByID(ctx, versionID, documentID)
}

// RestoreVersion rewrites a document from a snapshot. The pre-restore state
// is recorded first, in the same transaction, so the restore itself can be
// undone.
func (s *documentService) RestoreVersion(ctx context.Context, versionID, documentID, ownerID string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	version, err := s.versionRepo.GetByID(ctx, versionID, documentID)
	if err != nil {
		return nil, err
	}

	previous := *doc
	doc.Title = version.Title
	doc.Content = version.Content
	doc.WordCount = version.WordCount
	doc.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		summary := fmt.Sprintf("Restored from version %d", version.VersionNumber)
		if err := s.recordSnapshot(txCtx, &previous, summary); err != nil {
			return err
		}
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}
		return s.versionRepo.PruneOld(txCtx, doc.ID, s.maxVersions)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version restored",
		"document_id", documentID,
		"version_id", versionID,
		"version_number", version.VersionNumber,
	)

	s.publisher.PublishDocument(EventDocumentRestored, doc)
	return doc, nil
}

// recordSnapshot stores the given document state as the next version.
// Must run inside a transaction so NextVersionNumber and Create see the same
// history.
func (s *documentService) recordSnapshot(ctx context.Context, state *models.Document, summary string) error {
	number, err := s.versionRepo.NextVersionNumber(ctx, state.ID)
	if err != nil {
		return err
	}

	return s.versionRepo.Create(ctx, &models.DocumentVersion{
		ID:            uuid.New().String(),
		DocumentID:    state.ID,
		VersionNumber: number,
		Title:         state.Title,
		Content:       state.Content,
		WordCount:     state.WordCount,
		ChangeSummary: summary,
		CreatedAt:     time.Now(),
	})
}

// summarizeChange produces a short human-readable summary of an edit
func summarizeChange(before, after *models.Document) string {
	var parts []string

	if before.Title != after.Title {
		parts = append(parts, fmt.Sprintf("Renamed from %q", before.Title))
	}
	if delta := after.WordCount - before.WordCount; delta > 0 {
		parts = append(parts, fmt.Sprintf("+%d words", delta))
	} else if delta < 0 {
		parts = append(parts, fmt.Sprintf("%d words", delta))
	} else if before.Content != after.Content {
		parts = append(parts, "Content revised")
	}

	if len(parts) == 0 {
		return "Edited"
	}
	return strings.Join(parts, ", ")
}

// normalizeTags trims, lowercases and deduplicates tags, preserving order
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title,
			validation.Required.Error("document title cannot be empty"),
			validation.Length(1, config.MaxTitleLength),
		),
		validation.Field(&req.Tags,
			validation.Length(0, config.MaxTagsPerDocument),
			validation.Each(validation.Length(1, config.MaxTagLength)),
		),
		validation.Field(&req.ChapterNumber, validation.Min(1)),
	)
}

// validateDocument validates a document's updatable fields
func validateDocument(doc *models.Document) error {
	return validation.ValidateStruct(doc,
		validation.Field(&doc.Title,
			validation.Required.Error("document title cannot be empty"),
			validation.Length(1, config.MaxTitleLength),
		),
		validation.Field(&doc.Tags,
			validation.Length(0, config.MaxTagsPerDocument),
			validation.Each(validation.Length(1, config.MaxTagLength)),
		),
		validation.Field(&doc.ChapterNumber, validation.Min(1)),
	)
}
