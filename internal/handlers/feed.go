package handlers

import (
	"errors"
	"net/http"
	"time"

	"pawfeed-backend/internal/contest"
	"pawfeed-backend/internal/feed"
	"pawfeed-backend/internal/middleware"
	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/rs/zerolog/log"
)

// FeedHandler handles feed and contest HTTP requests
type FeedHandler struct {
	assembler *feed.Assembler
	rotation  *contest.Controller
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(assembler *feed.Assembler, rotation *contest.Controller) *FeedHandler {
	return &FeedHandler{
		assembler: assembler,
		rotation:  rotation,
	}
}

// FriendsFeed handles GET /api/v1/feed/friends
func (h *FeedHandler) FriendsFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	items, err := h.assembler.FriendsFeed(ctx, userID, feed.VotedSet(votedIDs(r)))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build friends feed")
		respondError(w, "failed to load feed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{"items": items}, http.StatusOK)
}

// GlobalFeed handles GET /api/v1/feed/global
func (h *FeedHandler) GlobalFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	items, err := h.assembler.GlobalFeed(ctx, userID, feed.VotedSet(votedIDs(r)))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build global feed")
		respondError(w, "failed to load feed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{"items": items}, http.StatusOK)
}

// ContestFeed handles GET /api/v1/feed/contest. The active contest is
// refreshed first so an expired one rotates on pull; rotation failures are
// logged and ignored (best-effort refresh).
func (h *FeedHandler) ContestFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	active, err := h.activeContest(w, r)
	if err != nil {
		return
	}

	items, err := h.assembler.ContestFeed(ctx, userID, active.ID, feed.VotedSet(votedIDs(r)))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("contest_id", active.ID).Msg("Failed to build contest feed")
		respondError(w, "failed to load feed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{"contest": active, "items": items}, http.StatusOK)
}

// ActiveContest handles GET /api/v1/contests/active
func (h *FeedHandler) ActiveContest(w http.ResponseWriter, r *http.Request) {
	active, err := h.activeContest(w, r)
	if err != nil {
		return
	}
	respondJSON(w, active, http.StatusOK)
}

func (h *FeedHandler) activeContest(w http.ResponseWriter, r *http.Request) (*models.Contest, error) {
	ctx := r.Context()

	if err := h.rotation.RotateExpired(ctx, time.Now()); err != nil {
		log.Warn().Err(err).Msg("Best-effort contest rotation failed")
	}

	active, err := h.rotation.Active(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "no active contest", http.StatusNotFound)
			return nil, err
		}
		log.Error().Err(err).Msg("Failed to load active contest")
		respondError(w, "failed to load contest", http.StatusInternalServerError)
		return nil, err
	}
	return active, nil
}
