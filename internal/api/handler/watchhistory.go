package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/usecase"
)

type UpdateProgressRequest struct {
	ProgressSeconds int `json:"progress_seconds"`
}

type WatchHistoryResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	VideoID         string `json:"video_id"`
	ProgressSeconds int    `json:"progress_seconds"`
	UpdatedAt       string `json:"updated_at"`
}

// WatchHistoryHandler handles watch-progress HTTP requests.
type WatchHistoryHandler struct {
	svc usecase.WatchProgressService
}

// NewWatchHistoryHandler creates a new WatchHistoryHandler.
func NewWatchHistoryHandler(svc usecase.WatchProgressService) *WatchHistoryHandler {
	return &WatchHistoryHandler{svc: svc}
}

// identityFromRequest derives the calling identity from request headers.
// There is no auth layer in front of this API yet; X-User-Id/X-Is-Admin
// stand in for whatever auth middleware eventually sets them.
func identityFromRequest(r *http.Request) (usecase.IdentityContext, error) {
	userID, err := uuid.Parse(r.Header.Get("X-User-Id"))
	if err != nil {
		return usecase.IdentityContext{}, err
	}
	isAdmin, _ := strconv.ParseBool(r.Header.Get("X-Is-Admin"))
	return usecase.IdentityContext{UserID: userID, IsAdmin: isAdmin}, nil
}

// UpdateProgress handles PUT /v1/videos/{id}/progress
func (h *WatchHistoryHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		Error(w, http.StatusUnauthorized, "invalid_identity", "X-User-Id header must be a valid UUID")
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	row, err := h.svc.UpdateProgress(r.Context(), identity, videoID, req.ProgressSeconds)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toWatchHistoryResponse(row))
}

// ListForUser handles GET /v1/watch-history
func (h *WatchHistoryHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		Error(w, http.StatusUnauthorized, "invalid_identity", "X-User-Id header must be a valid UUID")
		return
	}

	var videoIDFilter *uuid.UUID
	if raw := r.URL.Query().Get("video_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_video_id", "video_id query param must be a valid UUID")
			return
		}
		videoIDFilter = &parsed
	}

	rows, err := h.svc.ListForUser(r.Context(), identity, videoIDFilter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]WatchHistoryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toWatchHistoryResponse(row))
	}
	JSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /v1/watch-history/{id}
func (h *WatchHistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		Error(w, http.StatusUnauthorized, "invalid_identity", "X-User-Id header must be a valid UUID")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_id", "ID must be a valid UUID")
		return
	}

	if err := h.svc.Delete(r.Context(), identity, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchHistoryHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrForbidden):
		Error(w, http.StatusForbidden, "forbidden", "Caller lacks required privilege")
	case errors.Is(err, model.ErrNegativeProgress):
		Error(w, http.StatusBadRequest, "invalid_progress", "Progress cannot be negative")
	case errors.Is(err, model.ErrProgressExceedsDuration):
		Error(w, http.StatusBadRequest, "invalid_progress", "Progress exceeds video duration")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toWatchHistoryResponse(h *model.WatchHistory) WatchHistoryResponse {
	return WatchHistoryResponse{
		ID:              h.ID.String(),
		UserID:          h.UserID.String(),
		VideoID:         h.VideoID.String(),
		ProgressSeconds: h.ProgressSeconds,
		UpdatedAt:       h.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
