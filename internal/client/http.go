// Package client provides an HTTP implementation of the engine's persistence
// boundary, talking to the document API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/engine"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPBackend implements engine.Backend against the REST API
type HTTPBackend struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures an HTTPBackend
type Option func(*HTTPBackend)

// WithHTTPClient swaps the underlying http.Client (tests, custom transports)
func WithHTTPClient(c *http.Client) Option {
	return func(b *HTTPBackend) { b.client = c }
}

// WithToken sets the bearer token sent on every request
func WithToken(token string) Option {
	return func(b *HTTPBackend) { b.token = token }
}

// NewHTTPBackend creates a backend rooted at baseURL (no trailing slash)
func NewHTTPBackend(baseURL string, logger *slog.Logger, opts ...Option) *HTTPBackend {
	b := &HTTPBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FetchAll retrieves the full document collection
func (b *HTTPBackend) FetchAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := b.do(ctx, http.MethodGet, "/api/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Fetch retrieves a single document
func (b *HTTPBackend) Fetch(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := b.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create creates a new document and returns the canonical record
func (b *HTTPBackend) Create(ctx context.Context, req *engine.CreateRequest) (*models.Document, error) {
	var doc models.Document
	if err := b.do(ctx, http.MethodPost, "/api/documents", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update applies a partial update and returns the full canonical document
func (b *HTTPBackend) Update(ctx context.Context, id string, req *engine.UpdateRequest) (*models.Document, error) {
	var doc models.Document
	if err := b.do(ctx, http.MethodPatch, "/api/documents/"+url.PathEscape(id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document
func (b *HTTPBackend) Delete(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(id), nil, nil)
}

// ListVersions retrieves version snapshots for a document, newest first
func (b *HTTPBackend) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	var versions []models.DocumentVersion
	path := "/api/documents/" + url.PathEscape(documentID) + "/versions"
	if err := b.do(ctx, http.MethodGet, path, nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// RestoreVersion restores a snapshot and returns the canonical document
func (b *HTTPBackend) RestoreVersion(ctx context.Context, documentID, versionID string) (*models.Document, error) {
	var doc models.Document
	path := "/api/documents/" + url.PathEscape(documentID) +
		"/versions/" + url.PathEscape(versionID) + "/restore"
	if err := b.do(ctx, http.MethodPost, path, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Search runs a remote full-text query
func (b *HTTPBackend) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	params := url.Values{}
	params.Set("q", opts.Query)
	if len(opts.Fields) > 0 {
		var fields string
		for i, f := range opts.Fields {
			if i > 0 {
				fields += ","
			}
			fields += string(f)
		}
		params.Set("fields", fields)
	}
	if opts.FolderID != nil {
		params.Set("folder_id", *opts.FolderID)
	}
	if opts.SeriesID != nil {
		params.Set("series_id", *opts.SeriesID)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}

	var results models.SearchResults
	if err := b.do(ctx, http.MethodGet, "/api/documents/search?"+params.Encode(), nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// do issues one request. A non-nil body is sent as JSON; a non-nil out has
// the response decoded into it.
func (b *HTTPBackend) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return b.responseError(method, path, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// problemDetail is the error body shape the API returns (RFC 7807)
type problemDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// responseError maps an error status to the matching domain sentinel so
// callers can branch with errors.Is.
func (b *HTTPBackend) responseError(method, path string, resp *http.Response) error {
	var problem problemDetail
	detail := resp.Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&problem); err == nil && problem.Detail != "" {
		detail = problem.Detail
	}

	b.logger.Debug("request failed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"detail", detail)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, domain.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", detail, domain.ErrValidation)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", detail, domain.ErrConflict)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", detail, domain.ErrUnauthorized)
	default:
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, detail)
	}
}
