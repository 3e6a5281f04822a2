package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

type createFolderBody struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Color    *string `json:"color"`
}

type updateFolderBody struct {
	Name     httputil.OptionalString `json:"name"`
	ParentID httputil.OptionalString `json:"parent_id"`
	Color    httputil.OptionalString `json:"color"`
}

// CreateFolder creates a folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body createFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &services.CreateFolderRequest{
		OwnerID:  userID,
		Name:     body.Name,
		ParentID: body.ParentID,
		Color:    body.Color,
	})
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListFolders retrieves the caller's flat folder collection
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	folders, err := h.folderService.ListFolders(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetTree retrieves the caller's nested folder tree
// GET /api/folders/tree
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tree, err := h.folderService.BuildTree(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetFolder retrieves one folder
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames or moves a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body updateFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &services.UpdateFolderRequest{OwnerID: userID}
	if body.Name.Present {
		if body.Name.Value == nil {
			httputil.RespondError(w, http.StatusBadRequest, "name cannot be null")
			return
		}
		req.Name = body.Name.Value
	}
	if body.ParentID.Present {
		// Null parent moves the folder to the root.
		req.ParentID = stringOrEmpty(body.ParentID.Value)
	}
	if body.Color.Present {
		req.Color = stringOrEmpty(body.Color.Value)
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder, re-rooting its children
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), r.PathValue("id"), userID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
