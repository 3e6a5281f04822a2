package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// SeriesHandler handles series HTTP requests
type SeriesHandler struct {
	seriesService services.SeriesService
	logger        *slog.Logger
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(seriesService services.SeriesService, logger *slog.Logger) *SeriesHandler {
	return &SeriesHandler{
		seriesService: seriesService,
		logger:        logger,
	}
}

type createSeriesBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// CreateSeries creates a series
// POST /api/series
func (h *SeriesHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body createSeriesBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := h.seriesService.CreateSeries(r.Context(), userID, body.Name, body.Description)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, series)
}

// ListSeries retrieves the caller's series
// GET /api/series
func (h *SeriesHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	series, err := h.seriesService.ListSeries(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, series)
}

// GetSeries retrieves one series
// GET /api/series/{id}
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	series, err := h.seriesService.GetSeries(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, series)
}

// GetOverview aggregates a series' documents in chapter order
// GET /api/series/{id}/overview
func (h *SeriesHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	overview, err := h.seriesService.GetOverview(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, overview)
}

// DeleteSeries deletes a series, detaching its documents
// DELETE /api/series/{id}
func (h *SeriesHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.seriesService.DeleteSeries(r.Context(), r.PathValue("id"), userID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
