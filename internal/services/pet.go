package services

import (
	"context"
	"fmt"
	"slices"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/google/uuid"
)

// PetService handles pet profile logic.
type PetService struct {
	records store.RecordStore
}

// NewPetService creates a new pet service.
func NewPetService(records store.RecordStore) *PetService {
	return &PetService{records: records}
}

// CreatePetRequest represents a request to create a pet profile.
type CreatePetRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
}

// CreatePet creates a pet owned by the given user and links it on the
// owner's record.
func (s *PetService) CreatePet(ctx context.Context, ownerID string, req CreatePetRequest) (*models.Pet, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("pet name is required")
	}
	if req.Age < 0 {
		return nil, fmt.Errorf("pet age cannot be negative")
	}

	pet := models.Pet{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Species: req.Species,
		Age:     req.Age,
		Gender:  req.Gender,
		Owner:   models.NewRef(store.CollectionUsers, ownerID),
	}

	rec, err := store.Encode(pet)
	if err != nil {
		return nil, err
	}
	if _, err := s.records.Insert(ctx, store.CollectionPets, rec); err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	if err := s.linkPet(ctx, ownerID, pet.ID, true); err != nil {
		return nil, err
	}
	return &pet, nil
}

// GetPet retrieves a pet by id.
func (s *PetService) GetPet(ctx context.Context, id string) (*models.Pet, error) {
	rec, err := s.records.GetByID(ctx, store.CollectionPets, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	var pet models.Pet
	if err := store.Decode(rec, &pet); err != nil {
		return nil, fmt.Errorf("failed to decode pet: %w", err)
	}
	return &pet, nil
}

// ListByOwner returns all pets owned by a user.
func (s *PetService) ListByOwner(ctx context.Context, ownerID string) ([]models.Pet, error) {
	recs, err := s.records.QueryByField(ctx, store.CollectionPets, "owner", models.NewRef(store.CollectionUsers, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}

	pets := make([]models.Pet, 0, len(recs))
	for _, rec := range recs {
		var pet models.Pet
		if err := store.Decode(rec, &pet); err != nil {
			return nil, fmt.Errorf("failed to decode pet: %w", err)
		}
		pets = append(pets, pet)
	}
	return pets, nil
}

// UpdatePet applies profile changes to a pet the user owns.
func (s *PetService) UpdatePet(ctx context.Context, userID, petID string, req CreatePetRequest) (*models.Pet, error) {
	if petID == "" {
		return nil, store.ErrMissingID
	}

	pet, err := s.GetPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.Owner.ID != userID {
		return nil, fmt.Errorf("user does not own this pet")
	}

	if req.Name != "" {
		pet.Name = req.Name
	}
	if req.Species != "" {
		pet.Species = req.Species
	}
	if req.Age > 0 {
		pet.Age = req.Age
	}
	if req.Gender != "" {
		pet.Gender = req.Gender
	}

	rec, err := store.Encode(pet)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, store.CollectionPets, petID, rec); err != nil {
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}
	return pet, nil
}

// DeletePet removes a pet the user owns and unlinks it from the owner's
// record.
func (s *PetService) DeletePet(ctx context.Context, userID, petID string) error {
	if petID == "" {
		return store.ErrMissingID
	}

	pet, err := s.GetPet(ctx, petID)
	if err != nil {
		return err
	}
	if pet.Owner.ID != userID {
		return fmt.Errorf("user does not own this pet")
	}

	if err := s.records.Delete(ctx, store.CollectionPets, petID); err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	return s.linkPet(ctx, userID, petID, false)
}

// linkPet adds or removes the pet reference on the owner's user record.
func (s *PetService) linkPet(ctx context.Context, ownerID, petID string, add bool) error {
	rec, err := s.records.GetByID(ctx, store.CollectionUsers, ownerID)
	if err != nil {
		return fmt.Errorf("failed to get owner: %w", err)
	}
	var user models.User
	if err := store.Decode(rec, &user); err != nil {
		return fmt.Errorf("failed to decode owner: %w", err)
	}

	ref := models.NewRef(store.CollectionPets, petID)
	if add {
		user.Pets = append(user.Pets, ref)
	} else {
		user.Pets = slices.DeleteFunc(user.Pets, func(r models.Ref) bool { return r == ref })
	}

	updated, err := store.Encode(user)
	if err != nil {
		return err
	}
	if err := s.records.Update(ctx, store.CollectionUsers, ownerID, updated); err != nil {
		return fmt.Errorf("failed to update owner: %w", err)
	}
	return nil
}
