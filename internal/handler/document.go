package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quill/internal/domain/models"
	"quill/internal/domain/services"
	"quill/internal/httputil"
	"quill/internal/searchconfig"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	languages  *searchconfig.Registry
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService services.DocumentService, languages *searchconfig.Registry, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		languages:  languages,
		logger:     logger,
	}
}

type createDocumentBody struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	FolderID      *string  `json:"folder_id"`
	SeriesID      *string  `json:"series_id"`
	ChapterNumber *int     `json:"chapter_number"`
	Tags          []string `json:"tags"`
}

type updateDocumentBody struct {
	Title         httputil.OptionalString `json:"title"`
	Content       httputil.OptionalString `json:"content"`
	FolderID      httputil.OptionalString `json:"folder_id"`
	SeriesID      httputil.OptionalString `json:"series_id"`
	ChapterNumber httputil.OptionalInt    `json:"chapter_number"`
	Tags          *[]string               `json:"tags"`
}

// CreateDocument creates a new document
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body createDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), &services.CreateDocumentRequest{
		OwnerID:       userID,
		Title:         body.Title,
		Content:       body.Content,
		FolderID:      body.FolderID,
		SeriesID:      body.SeriesID,
		ChapterNumber: body.ChapterNumber,
		Tags:          body.Tags,
	})
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments retrieves the caller's document collection
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	docs, err := h.docService.ListDocuments(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument applies a partial update (RFC 7396 merge-patch semantics:
// absent fields stay, null clears nullable fields)
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &services.UpdateDocumentRequest{
		OwnerID: userID,
		Tags:    body.Tags,
	}
	if body.Title.Present {
		if body.Title.Value == nil {
			httputil.RespondError(w, http.StatusBadRequest, "title cannot be null")
			return
		}
		req.Title = body.Title.Value
	}
	if body.Content.Present {
		if body.Content.Value == nil {
			httputil.RespondError(w, http.StatusBadRequest, "content cannot be null")
			return
		}
		req.Content = body.Content.Value
	}
	// Null folder/series clears the assignment; the service uses "" for that.
	if body.FolderID.Present {
		req.FolderID = stringOrEmpty(body.FolderID.Value)
	}
	if body.SeriesID.Present {
		req.SeriesID = stringOrEmpty(body.SeriesID.Value)
	}
	if body.ChapterNumber.Present {
		if body.ChapterNumber.Value == nil {
			req.ClearChapter = true
		} else {
			req.ChapterNumber = body.ChapterNumber.Value
		}
	}

	doc, err := h.docService.UpdateDocument(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), r.PathValue("id"), userID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchDocuments performs full-text search
// GET /api/documents/search?q=...&fields=title,content,tags&limit=20&offset=0&language=english
func (h *DocumentHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	opts := &models.SearchOptions{
		Query: query.Get("q"),
	}

	if fields := query.Get("fields"); fields != "" {
		opts.Fields = parseSearchFields(fields)
	}
	if folderID := query.Get("folder_id"); folderID != "" {
		opts.FolderID = &folderID
	}
	if seriesID := query.Get("series_id"); seriesID != "" {
		opts.SeriesID = &seriesID
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		opts.Limit = n
	}
	if offset := query.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		opts.Offset = n
	}

	// Resolve the language through the registry so only known regconfigs
	// reach the query.
	regconfig, err := h.languages.Resolve(query.Get("language"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.Language = regconfig

	results, err := h.docService.SearchDocuments(r.Context(), userID, opts)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}

// HealthCheck reports liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}

func parseSearchFields(raw string) []models.SearchField {
	var fields []models.SearchField
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		fields = append(fields, models.SearchField(f))
	}
	return fields
}

func stringOrEmpty(s *string) *string {
	if s == nil {
		empty := ""
		return &empty
	}
	return s
}
