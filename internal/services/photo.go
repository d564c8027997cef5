package services

import (
	"context"
	"fmt"
	"time"

	"pawfeed-backend/internal/blob"
	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PhotoService handles photo upload, deletion, voting and contest
// submission.
type PhotoService struct {
	records store.RecordStore
	blobs   blob.Store
}

// NewPhotoService creates a new photo service.
func NewPhotoService(records store.RecordStore, blobs blob.Store) *PhotoService {
	return &PhotoService{
		records: records,
		blobs:   blobs,
	}
}

// Upload stores the image bytes in the blob store and creates the photo
// record. The pet must belong to the uploading user.
func (s *PhotoService) Upload(ctx context.Context, userID, petID string, data []byte, contentType, privacy string) (*models.Photo, error) {
	switch privacy {
	case models.PrivacyPublic, models.PrivacyFriendsOnly, models.PrivacyPrivate:
	case "":
		privacy = models.PrivacyFriendsOnly
	default:
		return nil, fmt.Errorf("invalid privacy level %q", privacy)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is required")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	petRec, err := s.records.GetByID(ctx, store.CollectionPets, petID)
	if err != nil {
		return nil, fmt.Errorf("pet not found: %w", err)
	}
	var pet models.Pet
	if err := store.Decode(petRec, &pet); err != nil {
		return nil, fmt.Errorf("failed to decode pet: %w", err)
	}
	if pet.Owner.ID != userID {
		return nil, fmt.Errorf("user does not own this pet")
	}

	photoID := uuid.New().String()
	key := fmt.Sprintf("%s/%s.jpg", petID, photoID)

	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	photo := models.Photo{
		ID:         photoID,
		Pet:        models.NewRef(store.CollectionPets, petID),
		ImageLink:  key,
		Privacy:    privacy,
		Uploader:   models.NewRef(store.CollectionUsers, userID),
		UploadedAt: time.Now(),
	}

	rec, err := store.Encode(photo)
	if err != nil {
		return nil, err
	}
	if _, err := s.records.Insert(ctx, store.CollectionPhotos, rec); err != nil {
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}
	return &photo, nil
}

// Image downloads the raw image bytes stored under a blob key.
func (s *PhotoService) Image(ctx context.Context, key string) ([]byte, error) {
	return s.blobs.Get(ctx, key)
}

// Delete removes a photo the user uploaded, along with its blob and any
// contest submissions referencing it.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) error {
	if photoID == "" {
		return store.ErrMissingID
	}

	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.Uploader.ID != userID {
		return fmt.Errorf("user did not upload this photo")
	}

	if err := s.blobs.Delete(ctx, photo.ImageLink); err != nil {
		// The record delete still proceeds; an orphaned blob is harmless.
		log.Warn().Err(err).Str("key", photo.ImageLink).Msg("Failed to delete image blob")
	}

	subs, err := s.records.QueryByField(ctx, store.CollectionContestPhotos, "photo", models.NewRef(store.CollectionPhotos, photoID))
	if err != nil {
		return fmt.Errorf("failed to list contest submissions: %w", err)
	}
	for _, sub := range subs {
		if err := s.records.Delete(ctx, store.CollectionContestPhotos, sub.ID()); err != nil {
			return fmt.Errorf("failed to delete contest submission: %w", err)
		}
	}

	if err := s.records.Delete(ctx, store.CollectionPhotos, photoID); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// AddFriendVote increments a photo's friend-vote count.
func (s *PhotoService) AddFriendVote(ctx context.Context, photoID string) (*models.Photo, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	photo.FriendVotes++
	rec, err := store.Encode(photo)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, store.CollectionPhotos, photoID, rec); err != nil {
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	return photo, nil
}

// SubmitToContest enters one of the user's photos into the currently active
// contest. A photo can appear at most once per contest.
func (s *PhotoService) SubmitToContest(ctx context.Context, userID, photoID string) (*models.ContestPhoto, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo.Uploader.ID != userID {
		return nil, fmt.Errorf("user did not upload this photo")
	}

	active, err := s.records.QueryByField(ctx, store.CollectionContests, "active", true)
	if err != nil {
		return nil, fmt.Errorf("failed to query active contest: %w", err)
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no contest is currently active")
	}
	contestID := active[0].ID()

	existing, err := s.records.QueryByField(ctx, store.CollectionContestPhotos, "photo", models.NewRef(store.CollectionPhotos, photoID))
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submissions: %w", err)
	}
	for _, rec := range existing {
		var sub models.ContestPhoto
		if err := store.Decode(rec, &sub); err != nil {
			continue
		}
		if sub.Contest.ID == contestID {
			return nil, fmt.Errorf("photo is already submitted to this contest")
		}
	}

	sub := models.ContestPhoto{
		ID:          uuid.New().String(),
		Contest:     models.NewRef(store.CollectionContests, contestID),
		Photo:       models.NewRef(store.CollectionPhotos, photoID),
		SubmittedAt: time.Now(),
	}

	rec, err := store.Encode(sub)
	if err != nil {
		return nil, err
	}
	if _, err := s.records.Insert(ctx, store.CollectionContestPhotos, rec); err != nil {
		return nil, fmt.Errorf("failed to create contest submission: %w", err)
	}
	return &sub, nil
}

// AddContestVote increments a contest submission's vote count.
func (s *PhotoService) AddContestVote(ctx context.Context, submissionID string) (*models.ContestPhoto, error) {
	rec, err := s.records.GetByID(ctx, store.CollectionContestPhotos, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest submission: %w", err)
	}
	var sub models.ContestPhoto
	if err := store.Decode(rec, &sub); err != nil {
		return nil, fmt.Errorf("failed to decode contest submission: %w", err)
	}

	sub.Votes++
	updated, err := store.Encode(sub)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, store.CollectionContestPhotos, submissionID, updated); err != nil {
		return nil, fmt.Errorf("failed to update contest submission: %w", err)
	}
	return &sub, nil
}

func (s *PhotoService) getPhoto(ctx context.Context, photoID string) (*models.Photo, error) {
	rec, err := s.records.GetByID(ctx, store.CollectionPhotos, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	var photo models.Photo
	if err := store.Decode(rec, &photo); err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	return &photo, nil
}
