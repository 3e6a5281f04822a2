package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresSeriesRepository implements the SeriesRepository interface
type PostgresSeriesRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSeriesRepository creates a new series repository
func NewSeriesRepository(config *RepositoryConfig) repositories.SeriesRepository {
	return &PostgresSeriesRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new series
func (r *PostgresSeriesRepository) Create(ctx context.Context, series *models.Series) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, r.tables.Series)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		series.ID,
		series.OwnerID,
		series.Name,
		series.Description,
		series.CreatedAt,
		series.UpdatedAt,
	).Scan(&series.CreatedAt, &series.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("series '%s' already exists", series.Name),
				ResourceType: "series",
				ResourceID:   series.ID,
			}
		}
		return fmt.Errorf("create series: %w", err)
	}

	return nil
}

// GetByID retrieves a series by ID, scoped to its owner
func (r *PostgresSeriesRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Series, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Series)

	var series models.Series
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&series.ID,
		&series.OwnerID,
		&series.Name,
		&series.Description,
		&series.CreatedAt,
		&series.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("series %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}

	return &series, nil
}

// ListByOwner retrieves the owner's series
func (r *PostgresSeriesRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Series, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY name ASC
	`, r.tables.Series)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var all []models.Series
	for rows.Next() {
		var series models.Series
		err := rows.Scan(
			&series.ID,
			&series.OwnerID,
			&series.Name,
			&series.Description,
			&series.CreatedAt,
			&series.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		all = append(all, series)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}

	if all == nil {
		all = []models.Series{}
	}

	return all, nil
}

// Delete removes a series, scoped to its owner. Member documents keep
// existing with series_id nulled out via ON DELETE SET NULL.
func (r *PostgresSeriesRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Series)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete series: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("series %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
