package services

import (
	"context"
	"testing"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePetLinksOwner(t *testing.T) {
	records := store.NewMemoryStore()
	users := NewUserService(records, "test-secret")
	pets := NewPetService(records)
	ctx := context.Background()

	owner, _, err := users.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	pet, err := pets.CreatePet(ctx, owner.ID, CreatePetRequest{Name: "Rex", Species: "dog", Age: 3})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, pet.Owner.ID)

	fetched, err := users.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Ref{models.NewRef(store.CollectionPets, pet.ID)}, fetched.Pets)
}

func TestCreatePetValidation(t *testing.T) {
	pets := NewPetService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := pets.CreatePet(ctx, "bob", CreatePetRequest{Name: ""})
	assert.Error(t, err)
	_, err = pets.CreatePet(ctx, "bob", CreatePetRequest{Name: "Rex", Age: -1})
	assert.Error(t, err)
}

func TestUpdatePetOwnerOnly(t *testing.T) {
	records := store.NewMemoryStore()
	users := NewUserService(records, "test-secret")
	pets := NewPetService(records)
	ctx := context.Background()

	owner, _, err := users.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)
	pet, err := pets.CreatePet(ctx, owner.ID, CreatePetRequest{Name: "Rex", Age: 3})
	require.NoError(t, err)

	_, err = pets.UpdatePet(ctx, "someone-else", pet.ID, CreatePetRequest{Name: "Stolen"})
	assert.Error(t, err)

	updated, err := pets.UpdatePet(ctx, owner.ID, pet.ID, CreatePetRequest{Name: "Max"})
	require.NoError(t, err)
	assert.Equal(t, "Max", updated.Name)
	assert.Equal(t, 3, updated.Age)
}

func TestDeletePetUnlinksOwner(t *testing.T) {
	records := store.NewMemoryStore()
	users := NewUserService(records, "test-secret")
	pets := NewPetService(records)
	ctx := context.Background()

	owner, _, err := users.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)
	pet, err := pets.CreatePet(ctx, owner.ID, CreatePetRequest{Name: "Rex"})
	require.NoError(t, err)

	require.NoError(t, pets.DeletePet(ctx, owner.ID, pet.ID))

	_, err = pets.GetPet(ctx, pet.ID)
	assert.Error(t, err)
	fetched, err := users.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Pets)
}
