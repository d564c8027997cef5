package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"pawfeed-backend/internal/blob"
	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBlobStore is a blob.Store double backed by a map.
type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: make(map[string][]byte)}
}

func (s *memoryBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

func (s *memoryBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func seedTestPet(t *testing.T, records store.RecordStore, id, ownerID string) {
	t.Helper()
	rec, err := store.Encode(models.Pet{
		ID: id, Name: id, Species: "dog",
		Owner: models.NewRef(store.CollectionUsers, ownerID),
	})
	require.NoError(t, err)
	_, err = records.Insert(context.Background(), store.CollectionPets, rec)
	require.NoError(t, err)
}

func seedActiveContest(t *testing.T, records store.RecordStore, id string) {
	t.Helper()
	rec, err := store.Encode(models.Contest{
		ID: id, Prompt: "Best Nap Spot",
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(time.Hour),
		Active:   true,
	})
	require.NoError(t, err)
	_, err = records.Insert(context.Background(), store.CollectionContests, rec)
	require.NoError(t, err)
}

func TestUploadStoresBlobAndRecord(t *testing.T) {
	records := store.NewMemoryStore()
	blobs := newMemoryBlobStore()
	s := NewPhotoService(records, blobs)
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")

	photo, err := s.Upload(ctx, "bob", "rex", []byte("jpeg-bytes"), "image/jpeg", models.PrivacyPublic)
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPublic, photo.Privacy)
	assert.Equal(t, "bob", photo.Uploader.ID)

	data, err := blobs.Get(ctx, photo.ImageLink)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	_, err = records.GetByID(ctx, store.CollectionPhotos, photo.ID)
	assert.NoError(t, err)
}

func TestUploadRejectsForeignPet(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())

	seedTestPet(t, records, "rex", "bob")

	_, err := s.Upload(context.Background(), "alice", "rex", []byte("x"), "", "")
	assert.Error(t, err)
}

func TestUploadRejectsUnknownPrivacy(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())

	seedTestPet(t, records, "rex", "bob")

	_, err := s.Upload(context.Background(), "bob", "rex", []byte("x"), "", "everyone")
	assert.Error(t, err)
}

func TestDeleteRemovesBlobAndSubmissions(t *testing.T) {
	records := store.NewMemoryStore()
	blobs := newMemoryBlobStore()
	s := NewPhotoService(records, blobs)
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")
	seedActiveContest(t, records, "contest-1")

	photo, err := s.Upload(ctx, "bob", "rex", []byte("x"), "", models.PrivacyPublic)
	require.NoError(t, err)
	sub, err := s.SubmitToContest(ctx, "bob", photo.ID)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "bob", photo.ID))

	_, err = records.GetByID(ctx, store.CollectionPhotos, photo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = records.GetByID(ctx, store.CollectionContestPhotos, sub.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = blobs.Get(ctx, photo.ImageLink)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestDeleteOnlyUploader(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")
	photo, err := s.Upload(ctx, "bob", "rex", []byte("x"), "", models.PrivacyPublic)
	require.NoError(t, err)

	assert.Error(t, s.Delete(ctx, "alice", photo.ID))
}

func TestAddFriendVote(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")
	photo, err := s.Upload(ctx, "bob", "rex", []byte("x"), "", models.PrivacyPublic)
	require.NoError(t, err)

	voted, err := s.AddFriendVote(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.FriendVotes)
}

func TestSubmitToContestOncePerContest(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")
	seedActiveContest(t, records, "contest-1")

	photo, err := s.Upload(ctx, "bob", "rex", []byte("x"), "", models.PrivacyPublic)
	require.NoError(t, err)

	sub, err := s.SubmitToContest(ctx, "bob", photo.ID)
	require.NoError(t, err)
	assert.Equal(t, "contest-1", sub.Contest.ID)

	_, err = s.SubmitToContest(ctx, "bob", photo.ID)
	assert.Error(t, err)
}

func TestSubmitToContestRequiresActiveContest(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")
	photo, err := s.Upload(ctx, "bob", "rex", []byte("x"), "", models.PrivacyPublic)
	require.NoError(t, err)

	_, err = s.SubmitToContest(ctx, "bob", photo.ID)
	assert.Error(t, err)
}

func TestAddContestVote(t *testing.T) {
	records := store.NewMemoryStore()
	s := NewPhotoService(records, newMemoryBlobStore())
	ctx := context.Background()

	seedTestPet(t, records, "rex", "bob")
	seedActiveContest(t, records, "contest-1")

	photo, err := s.Upload(ctx, "bob", "rex", []byte("x"), "", models.PrivacyPublic)
	require.NoError(t, err)
	sub, err := s.SubmitToContest(ctx, "bob", photo.ID)
	require.NoError(t, err)

	voted, err := s.AddContestVote(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Votes)
}
