package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, owner_id, folder_id, series_id, chapter_number,
	title, content, tags, word_count, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FolderID,
		&doc.SeriesID,
		&doc.ChapterNumber,
		&doc.Title,
		&doc.Content,
		&doc.Tags,
		&doc.WordCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, folder_id, series_id, chapter_number,
		                title, content, tags, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.FolderID,
		doc.SeriesID,
		doc.ChapterNumber,
		doc.Title,
		doc.Content,
		doc.Tags,
		doc.WordCount,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already exists", doc.ID),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document references a missing folder or series: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID, scoped to an owner
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	err := scanDocument(executor.QueryRow(ctx, query, id, ownerID), &doc)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// ListByOwner retrieves all documents for an owner, most recently updated
// first. Content is included: the collection is the client's working set.
func (r *PostgresDocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if documents == nil {
		documents = []models.Document{}
	}

	return documents, nil
}

// Update updates an existing document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, series_id = $2, chapter_number = $3, title = $4,
		    content = $5, tags = $6, word_count = $7, updated_at = $8
		WHERE id = $9 AND owner_id = $10
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.FolderID,
		doc.SeriesID,
		doc.ChapterNumber,
		doc.Title,
		doc.Content,
		doc.Tags,
		doc.WordCount,
		doc.UpdatedAt,
		doc.ID,
		doc.OwnerID,
	)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document references a missing folder or series: %w", domain.ErrValidation)
		}
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a document. Version snapshots go with it via ON DELETE
// CASCADE.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Search performs PostgreSQL full-text search across the requested fields.
//
// Components:
//   - to_tsvector(language, field): converts a field to searchable tokens
//   - websearch_to_tsquery(language, query): web-style query syntax
//     (OR, NOT, quoted phrases)
//   - @@: full-text match operator
//   - ts_rank(): relevance score, title matches weighted 2x
//   - ts_headline(): excerpt around the match, returned in place of the
//     full content
func (r *PostgresDocumentRepository) Search(ctx context.Context, ownerID string, opts *models.SearchOptions) (*models.SearchResults, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	whereClause, rankExpression := buildSearchExpressions(opts.Fields)

	baseQuery := fmt.Sprintf(`
		SELECT id, owner_id, folder_id, series_id, chapter_number, title,
		       ts_headline($1, content, websearch_to_tsquery($1, $2),
		                   'MaxWords=50, MinWords=20, MaxFragments=1') AS content,
		       tags, word_count, created_at, updated_at,
		       (%s) AS rank_score
		FROM %s
		WHERE owner_id = $3
		  AND (%s)
	`, rankExpression, r.tables.Documents, whereClause)

	args := []interface{}{opts.Language, opts.Query, ownerID}
	paramIndex := 4

	if opts.FolderID != nil {
		baseQuery += fmt.Sprintf(` AND folder_id = $%d`, paramIndex)
		args = append(args, *opts.FolderID)
		paramIndex++
	}
	if opts.SeriesID != nil {
		baseQuery += fmt.Sprintf(` AND series_id = $%d`, paramIndex)
		args = append(args, *opts.SeriesID)
		paramIndex++
	}

	baseQuery += ` ORDER BY rank_score DESC`
	baseQuery += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, opts.Limit, opts.Offset)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("full-text search query failed: %w", err)
	}
	defer rows.Close()

	var searchResults []models.SearchResult
	for rows.Next() {
		var doc models.Document
		var score float64

		err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.FolderID,
			&doc.SeriesID,
			&doc.ChapterNumber,
			&doc.Title,
			&doc.Content,
			&doc.Tags,
			&doc.WordCount,
			&doc.CreatedAt,
			&doc.UpdatedAt,
			&score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}

		searchResults = append(searchResults, models.SearchResult{
			Document: doc,
			Score:    score,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	if searchResults == nil {
		searchResults = []models.SearchResult{}
	}

	totalCount, err := r.countTotalMatches(ctx, ownerID, opts)
	if err != nil {
		return nil, fmt.Errorf("count total matches: %w", err)
	}

	return models.NewSearchResults(searchResults, totalCount, opts), nil
}

// countTotalMatches counts matching documents without limit/offset, for
// pagination metadata.
func (r *PostgresDocumentRepository) countTotalMatches(ctx context.Context, ownerID string, opts *models.SearchOptions) (int, error) {
	whereClause, _ := buildSearchExpressions(opts.Fields)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE owner_id = $3
		  AND (%s)
	`, r.tables.Documents, whereClause)

	args := []interface{}{opts.Language, opts.Query, ownerID}
	paramIndex := 4

	if opts.FolderID != nil {
		countQuery += fmt.Sprintf(` AND folder_id = $%d`, paramIndex)
		args = append(args, *opts.FolderID)
		paramIndex++
	}
	if opts.SeriesID != nil {
		countQuery += fmt.Sprintf(` AND series_id = $%d`, paramIndex)
		args = append(args, *opts.SeriesID)
	}

	var total int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	return total, nil
}

// buildSearchExpressions builds the match conditions (ORed: a document
// matches if ANY requested field matches) and the summed rank expression
// for the given fields. Title matches score 2x; tags are flattened to text
// before tokenizing.
func buildSearchExpressions(fields []models.SearchField) (whereClause, rankExpression string) {
	var searchConditions []string
	var rankExpressions []string

	for _, field := range fields {
		switch field {
		case models.SearchFieldTitle:
			searchConditions = append(searchConditions,
				"to_tsvector($1, title) @@ websearch_to_tsquery($1, $2)")
			rankExpressions = append(rankExpressions,
				"ts_rank(to_tsvector($1, title), websearch_to_tsquery($1, $2)) * 2.0")

		case models.SearchFieldContent:
			searchConditions = append(searchConditions,
				"to_tsvector($1, content) @@ websearch_to_tsquery($1, $2)")
			rankExpressions = append(rankExpressions,
				"ts_rank(to_tsvector($1, content), websearch_to_tsquery($1, $2))")

		case models.SearchFieldTags:
			searchConditions = append(searchConditions,
				"to_tsvector($1, array_to_string(tags, ' ')) @@ websearch_to_tsquery($1, $2)")
			rankExpressions = append(rankExpressions,
				"ts_rank(to_tsvector($1, array_to_string(tags, ' ')), websearch_to_tsquery($1, $2))")
		}
	}

	return strings.Join(searchConditions, " OR "), strings.Join(rankExpressions, " + ")
}
