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

// seriesService implements the SeriesService interface
type seriesService struct {
	seriesRepo repositories.SeriesRepository
	docRepo    repositories.DocumentRepository
	logger     *slog.Logger
}

// NewSeriesService creates a new series service
func NewSeriesService(
	seriesRepo repositories.SeriesRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.SeriesService {
	return &seriesService{
		seriesRepo: seriesRepo,
		docRepo:    docRepo,
		logger:     logger,
	}
}

// CreateSeries creates a series
func (s *seriesService) CreateSeries(ctx context.Context, ownerID, name string, description *string) (*models.Series, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("series name cannot be empty"),
		validation.Length(1, config.MaxSeriesNameLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	series := &models.Series{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.seriesRepo.Create(ctx, series); err != nil {
		return nil, err
	}

	s.logger.Info("series created", "id", series.ID, "name", series.Name)
	return series, nil
}

// GetSeries retrieves one series
func (s *seriesService) GetSeries(ctx context.Context, id, ownerID string) (*models.Series, error) {
	return s.seriesRepo.GetByID(ctx, id, ownerID)
}

// ListSeries retrieves the owner's series
func (s *seriesService) ListSeries(ctx context.Context, ownerID string) ([]models.Series, error) {
	return s.seriesRepo.ListByOwner(ctx, ownerID)
}

// GetOverview aggregates a series' member documents in chapter order with
// their total word count.
func (s *seriesService) GetOverview(ctx context.Context, id, ownerID string) (*models.SeriesOverview, error) {
	series, err := s.seriesRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	overview := engine.BuildSeriesOverview(*series, docs)
	return &overview, nil
}

// DeleteSeries deletes a series, detaching member documents
func (s *seriesService) DeleteSeries(ctx context.Context, id, ownerID string) error {
	if err := s.seriesRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("series deleted", "id", id)
	return nil
}
