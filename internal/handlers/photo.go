package handlers

import (
	"errors"
	"io"
	"net/http"

	"pawfeed-backend/internal/blob"
	"pawfeed-backend/internal/middleware"
	"pawfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Uploads are raw image bodies; anything larger is rejected up front.
const maxUploadBytes = 10 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// UploadPhoto handles POST /api/v1/pets/{pet_id}/photos. The request body is
// the raw image; privacy comes from the "privacy" query parameter.
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	petID := chi.URLParam(r, "pet_id")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		respondError(w, "failed to read image body", http.StatusBadRequest)
		return
	}

	photo, err := h.photoService.Upload(ctx, userID, petID, data,
		r.Header.Get("Content-Type"), r.URL.Query().Get("privacy"))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("pet_id", petID).Msg("Failed to upload photo")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("photo_id", photo.ID).Str("user_id", userID).Msg("Photo uploaded")
	respondJSON(w, photo, http.StatusCreated)
}

// GetImage handles GET /api/v1/images/{pet_id}/{file}
func (h *PhotoHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "pet_id") + "/" + chi.URLParam(r, "file")

	data, err := h.photoService.Image(r.Context(), key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			respondError(w, "image not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("key", key).Msg("Failed to fetch image")
		respondError(w, "failed to fetch image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// DeletePhoto handles DELETE /api/v1/photos/{photo_id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "photo_id")

	if err := h.photoService.Delete(ctx, userID, photoID); err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to delete photo")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VotePhoto handles POST /api/v1/photos/{photo_id}/vote
func (h *PhotoHandler) VotePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photo_id")

	photo, err := h.photoService.AddFriendVote(r.Context(), photoID)
	if err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to vote on photo")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, photo, http.StatusOK)
}

// SubmitToContest handles POST /api/v1/photos/{photo_id}/submit
func (h *PhotoHandler) SubmitToContest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "photo_id")

	sub, err := h.photoService.SubmitToContest(ctx, userID, photoID)
	if err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to submit photo to contest")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("submission_id", sub.ID).Str("user_id", userID).Msg("Photo submitted to contest")
	respondJSON(w, sub, http.StatusCreated)
}

// VoteSubmission handles POST /api/v1/submissions/{submission_id}/vote
func (h *PhotoHandler) VoteSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")

	sub, err := h.photoService.AddContestVote(r.Context(), submissionID)
	if err != nil {
		log.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to vote on submission")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, sub, http.StatusOK)
}
