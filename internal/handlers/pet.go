package handlers

import (
	"encoding/json"
	"net/http"

	"pawfeed-backend/internal/middleware"
	"pawfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PetHandler handles pet-related HTTP requests
type PetHandler struct {
	petService *services.PetService
}

// NewPetHandler creates a new pet handler
func NewPetHandler(petService *services.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

// CreatePet handles POST /api/v1/pets
func (h *PetHandler) CreatePet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pet, err := h.petService.CreatePet(ctx, userID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create pet")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("pet_id", pet.ID).Str("user_id", userID).Msg("Pet created")
	respondJSON(w, pet, http.StatusCreated)
}

// ListPets handles GET /api/v1/pets
func (h *PetHandler) ListPets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	pets, err := h.petService.ListByOwner(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list pets")
		respondError(w, "failed to list pets", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{"pets": pets}, http.StatusOK)
}

// UpdatePet handles PATCH /api/v1/pets/{pet_id}
func (h *PetHandler) UpdatePet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	petID := chi.URLParam(r, "pet_id")

	var req services.CreatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pet, err := h.petService.UpdatePet(ctx, userID, petID, req)
	if err != nil {
		log.Error().Err(err).Str("pet_id", petID).Msg("Failed to update pet")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, pet, http.StatusOK)
}

// DeletePet handles DELETE /api/v1/pets/{pet_id}
func (h *PetHandler) DeletePet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	petID := chi.URLParam(r, "pet_id")

	if err := h.petService.DeletePet(ctx, userID, petID); err != nil {
		log.Error().Err(err).Str("pet_id", petID).Msg("Failed to delete pet")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
