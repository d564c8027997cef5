package handlers

import (
	"encoding/json"
	"net/http"

	"pawfeed-backend/internal/middleware"
	"pawfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConnectionHandler handles friend-request HTTP requests
type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// SendRequest handles POST /api/v1/connections
func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req struct {
		RecipientID string `json:"recipient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionService.SendRequest(ctx, userID, req.RecipientID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send friend request")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("connection_id", conn.ID).Str("user_id", userID).Msg("Friend request sent")
	respondJSON(w, conn, http.StatusCreated)
}

// Respond handles POST /api/v1/connections/{connection_id}/respond
func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionService.Respond(ctx, userID, connectionID, req.Approve)
	if err != nil {
		log.Error().Err(err).Str("connection_id", connectionID).Msg("Failed to respond to friend request")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, conn, http.StatusOK)
}

// ListPending handles GET /api/v1/connections/pending
func (h *ConnectionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	pending, err := h.connectionService.ListPending(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list pending requests")
		respondError(w, "failed to list requests", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{"connections": pending}, http.StatusOK)
}
