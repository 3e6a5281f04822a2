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

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create records a version snapshot. Run inside the same transaction as
// NextVersionNumber so numbers stay strictly increasing per document.
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.DocumentVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version_number, title, content,
		                word_count, change_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		version.ID,
		version.DocumentID,
		version.VersionNumber,
		version.Title,
		version.Content,
		version.WordCount,
		version.ChangeSummary,
		version.CreatedAt,
	).Scan(&version.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("version %d of document %s: %w",
				version.VersionNumber, version.DocumentID, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", version.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// NextVersionNumber returns max(version_number)+1 for a document
func (r *PostgresVersionRepository) NextVersionNumber(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version_number), 0) + 1
		FROM %s
		WHERE document_id = $1
	`, r.tables.Versions)

	var next int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}

	return next, nil
}

// ListByDocument retrieves version snapshots for a document, newest first.
// limit <= 0 means no limit.
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, title, content, word_count,
		       change_summary, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, r.tables.Versions)

	args := []interface{}{documentID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.DocumentVersion
	for rows.Next() {
		var v models.DocumentVersion
		err := rows.Scan(
			&v.ID,
			&v.DocumentID,
			&v.VersionNumber,
			&v.Title,
			&v.Content,
			&v.WordCount,
			&v.ChangeSummary,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	if versions == nil {
		versions = []models.DocumentVersion{}
	}

	return versions, nil
}

// GetByID retrieves a single version snapshot, scoped to its document
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id, documentID string) (*models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, title, content, word_count,
		       change_summary, created_at
		FROM %s
		WHERE id = $1 AND document_id = $2
	`, r.tables.Versions)

	var v models.DocumentVersion
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, documentID).Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.Title,
		&v.Content,
		&v.WordCount,
		&v.ChangeSummary,
		&v.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return &v, nil
}

// PruneOld deletes the oldest snapshots beyond keepLast for a document
func (r *PostgresVersionRepository) PruneOld(ctx context.Context, documentID string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1
		  AND version_number <= (
			SELECT COALESCE(MAX(version_number), 0) - $2
			FROM %s
			WHERE document_id = $1
		  )
	`, r.tables.Versions, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, documentID, keepLast)
	if err != nil {
		return fmt.Errorf("prune versions: %w", err)
	}

	if pruned := result.RowsAffected(); pruned > 0 {
		r.logger.Debug("pruned old versions",
			"document_id", documentID,
			"pruned", pruned,
			"keep_last", keepLast,
		)
	}

	return nil
}
