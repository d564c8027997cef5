package services

import (
	"context"
	"testing"

	"pawfeed-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserIssuesValidToken(t *testing.T) {
	s := NewUserService(store.NewMemoryStore(), "test-secret")

	user, token, err := s.CreateUser(context.Background(), "alice@example.com", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := s.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestCreateUserValidation(t *testing.T) {
	s := NewUserService(store.NewMemoryStore(), "test-secret")
	ctx := context.Background()

	_, _, err := s.CreateUser(ctx, "", "Alice")
	assert.Error(t, err)
	_, _, err = s.CreateUser(ctx, "not-an-email", "Alice")
	assert.Error(t, err)
	_, _, err = s.CreateUser(ctx, "alice@example.com", "")
	assert.Error(t, err)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := NewUserService(store.NewMemoryStore(), "test-secret")
	ctx := context.Background()

	_, _, err := s.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	_, _, err = s.CreateUser(ctx, "alice@example.com", "Imposter")
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewUserService(records, "test-secret")
	ctx := context.Background()

	user, _, err := s.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	nickname := "Ally"
	tags := []string{"dogs", "hiking"}
	onboarded := true
	updated, err := s.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		Nickname:  &nickname,
		Tags:      &tags,
		Onboarded: &onboarded,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ally", updated.Nickname)
	assert.Equal(t, tags, updated.Tags)
	assert.True(t, updated.Onboarded)

	fetched, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ally", fetched.Nickname)
	// Untouched fields survive the update.
	assert.Equal(t, "alice@example.com", fetched.Email)
}

func TestUpdateProfileMissingID(t *testing.T) {
	s := NewUserService(store.NewMemoryStore(), "test-secret")

	_, err := s.UpdateProfile(context.Background(), "", UpdateProfileRequest{})
	assert.ErrorIs(t, err, store.ErrMissingID)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	s := NewUserService(store.NewMemoryStore(), "test-secret")

	_, err := s.ValidateJWT("not.a.token")
	assert.Error(t, err)

	other := NewUserService(store.NewMemoryStore(), "other-secret")
	token, err := other.GenerateJWT("alice")
	require.NoError(t, err)
	_, err = s.ValidateJWT(token)
	assert.Error(t, err)
}
