package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// VersionHandler handles version history HTTP requests
type VersionHandler struct {
	docService services.DocumentService
	logger     *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(docService services.DocumentService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		docService: docService,
		logger:     logger,
	}
}

// ListVersions retrieves a document's version history, newest first
// GET /api/documents/{id}/versions?limit=50
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	versions, err := h.docService.ListVersions(r.Context(), r.PathValue("id"), userID, limit)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// GetVersion retrieves one version snapshot
// GET /api/documents/{id}/versions/{versionID}
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	version, err := h.docService.GetVersion(r.Context(), r.PathValue("versionID"), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// RestoreVersion rewrites the document from a snapshot
// POST /api/documents/{id}/versions/{versionID}/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.RestoreVersion(r.Context(), r.PathValue("versionID"), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
