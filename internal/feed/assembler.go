package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultGlobalFeedLimit = 100
	// Width of the concurrent fan-out for per-item joins. Bounded so a
	// large feed does not hammer the record store.
	defaultJoinFanOut = 4
)

// SkipReason explains why a candidate item was dropped from a feed. Per-item
// join failures never fail the whole request; the item is omitted and the
// reason logged.
type SkipReason struct {
	Stage string // join stage that failed: "photo", "pet", "owner", "contest"
	ID    string // id of the candidate photo or submission
	Err   error
}

func (s *SkipReason) Error() string {
	return fmt.Sprintf("skipped %s: %s join failed: %v", s.ID, s.Stage, s.Err)
}

func (s *SkipReason) Unwrap() error { return s.Err }

// joinResult is the explicit outcome of a per-item join: a complete feed
// item, or the reason the candidate was dropped.
type joinResult struct {
	item models.FeedItem
	skip *SkipReason
}

// Assembler builds denormalized, privacy-filtered feeds by joining photo
// records with their pet, owner and contest records.
type Assembler struct {
	records  store.RecordStore
	resolver *Resolver
	jitter   Jitter
	limit    int
	fanOut   int
}

// NewAssembler creates a feed assembler. A nil jitter falls back to the
// default random source.
func NewAssembler(records store.RecordStore, resolver *Resolver, jitter Jitter) *Assembler {
	if jitter == nil {
		jitter = RandomJitter()
	}
	return &Assembler{
		records:  records,
		resolver: resolver,
		jitter:   jitter,
		limit:    defaultGlobalFeedLimit,
		fanOut:   defaultJoinFanOut,
	}
}

// VotedSet converts a list of already-voted item ids into the set form the
// feed entry points take.
func VotedSet(ids []string) map[string]struct{} {
	voted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		voted[id] = struct{}{}
	}
	return voted
}

// FriendsFeed returns public and friends-only photos belonging to the
// caller's approved friends, newest first. A user with no friends gets an
// empty feed, not an error.
func (a *Assembler) FriendsFeed(ctx context.Context, userID string, voted map[string]struct{}) ([]models.FeedItem, error) {
	friends, err := a.resolver.FriendsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return []models.FeedItem{}, nil
	}

	var candidates []models.Photo
	for friendID := range friends {
		pets, err := a.records.QueryByField(ctx, store.CollectionPets, "owner", models.NewRef(store.CollectionUsers, friendID))
		if err != nil {
			return nil, fmt.Errorf("failed to list pets of %s: %w", friendID, err)
		}
		for _, petRec := range pets {
			var pet models.Pet
			if err := store.Decode(petRec, &pet); err != nil {
				log.Warn().Err(err).Str("pet_id", petRec.ID()).Msg("Skipping unparsable pet")
				continue
			}
			photos, err := a.records.QueryByField(ctx, store.CollectionPhotos, "pet", models.NewRef(store.CollectionPets, pet.ID))
			if err != nil {
				return nil, fmt.Errorf("failed to list photos of pet %s: %w", pet.ID, err)
			}
			for _, photoRec := range photos {
				var photo models.Photo
				if err := store.Decode(photoRec, &photo); err != nil {
					log.Warn().Err(err).Str("photo_id", photoRec.ID()).Msg("Skipping unparsable photo")
					continue
				}
				if photo.Privacy != models.PrivacyPublic && photo.Privacy != models.PrivacyFriendsOnly {
					continue
				}
				candidates = append(candidates, photo)
			}
		}
	}

	items, err := a.buildItems(ctx, candidates, voted)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items, nil
}

// GlobalFeed returns the newest public photos from all users, capped at the
// global page size. The cap counts public photos, so private uploads can
// never crowd public ones out of the page.
func (a *Assembler) GlobalFeed(ctx context.Context, userID string, voted map[string]struct{}) ([]models.FeedItem, error) {
	recs, err := a.records.QueryByField(ctx, store.CollectionPhotos, "privacy", models.PrivacyPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to list public photos: %w", err)
	}

	var candidates []models.Photo
	for _, rec := range recs {
		var photo models.Photo
		if err := store.Decode(rec, &photo); err != nil {
			log.Warn().Err(err).Str("photo_id", rec.ID()).Msg("Skipping unparsable photo")
			continue
		}
		candidates = append(candidates, photo)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UploadedAt.After(candidates[j].UploadedAt)
	})
	if len(candidates) > a.limit {
		candidates = candidates[:a.limit]
	}

	return a.buildItems(ctx, candidates, voted)
}

// ContestFeed returns the submissions of a contest: the caller's own entries
// first in fetch order, then everyone else's ranked by composite score. A
// submission whose photo, pet, owner or contest cannot be resolved is
// dropped whole; only the submission listing itself can fail the call.
func (a *Assembler) ContestFeed(ctx context.Context, userID, contestID string, voted map[string]struct{}) ([]models.FeedItem, error) {
	recs, err := a.records.QueryByField(ctx, store.CollectionContestPhotos, "contest", models.NewRef(store.CollectionContests, contestID))
	if err != nil {
		return nil, fmt.Errorf("failed to list contest submissions: %w", err)
	}

	results := make([]joinResult, len(recs))
	entries := make([]models.ContestPhoto, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanOut)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			var sub models.ContestPhoto
			if err := store.Decode(rec, &sub); err != nil {
				results[i] = joinResult{skip: &SkipReason{Stage: "submission", ID: rec.ID(), Err: err}}
				return nil
			}
			item, skip := a.joinSubmission(gctx, sub, voted)
			if skip != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i] = joinResult{skip: skip}
				return nil
			}
			entries[i] = sub
			results[i] = joinResult{item: item}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]Entry, 0, len(recs))
	for i, res := range results {
		if res.skip != nil {
			log.Debug().Err(res.skip).Msg("Dropped contest submission from feed")
			continue
		}
		ranked = append(ranked, Entry{Submission: entries[i], Item: res.item})
	}

	items := Rank(ranked, userID, time.Now(), a.jitter)
	if items == nil {
		items = []models.FeedItem{}
	}
	return items, nil
}

// joinSubmission resolves the full ContestPhoto -> Photo -> Pet -> User ->
// Contest chain for one submission.
func (a *Assembler) joinSubmission(ctx context.Context, sub models.ContestPhoto, voted map[string]struct{}) (models.FeedItem, *SkipReason) {
	photoRec, err := a.records.GetByID(ctx, store.CollectionPhotos, sub.Photo.ID)
	if err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "photo", ID: sub.ID, Err: err}
	}
	var photo models.Photo
	if err := store.Decode(photoRec, &photo); err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "photo", ID: sub.ID, Err: err}
	}

	item, skip := a.joinPhoto(ctx, photo, voted)
	if skip != nil {
		skip.ID = sub.ID
		return models.FeedItem{}, skip
	}

	contestRec, err := a.records.GetByID(ctx, store.CollectionContests, sub.Contest.ID)
	if err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "contest", ID: sub.ID, Err: err}
	}
	var contest models.Contest
	if err := store.Decode(contestRec, &contest); err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "contest", ID: sub.ID, Err: err}
	}

	// Contest entries are identified and voted on by submission, not photo.
	item.ID = sub.ID
	item.Votes = sub.Votes
	item.Timestamp = sub.SubmittedAt
	item.ContestPrompt = contest.Prompt
	_, item.HasVoted = voted[sub.ID]
	return item, nil
}

// buildItems resolves pet and owner for each candidate photo with a bounded
// concurrent fan-out, keeping candidate order. Skipped candidates are logged
// and omitted; a cancelled context discards everything.
func (a *Assembler) buildItems(ctx context.Context, candidates []models.Photo, voted map[string]struct{}) ([]models.FeedItem, error) {
	results := make([]joinResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanOut)
	for i, photo := range candidates {
		i, photo := i, photo
		g.Go(func() error {
			item, skip := a.joinPhoto(gctx, photo, voted)
			if skip != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i] = joinResult{skip: skip}
				return nil
			}
			results[i] = joinResult{item: item}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(candidates))
	for _, res := range results {
		if res.skip != nil {
			log.Debug().Err(res.skip).Msg("Dropped photo from feed")
			continue
		}
		items = append(items, res.item)
	}
	return items, nil
}

// joinPhoto resolves a photo's pet and owner into a feed item.
func (a *Assembler) joinPhoto(ctx context.Context, photo models.Photo, voted map[string]struct{}) (models.FeedItem, *SkipReason) {
	petRec, err := a.records.GetByID(ctx, store.CollectionPets, photo.Pet.ID)
	if err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "pet", ID: photo.ID, Err: err}
	}
	var pet models.Pet
	if err := store.Decode(petRec, &pet); err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "pet", ID: photo.ID, Err: err}
	}

	ownerRec, err := a.records.GetByID(ctx, store.CollectionUsers, pet.Owner.ID)
	if err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "owner", ID: photo.ID, Err: err}
	}
	var owner models.User
	if err := store.Decode(ownerRec, &owner); err != nil {
		return models.FeedItem{}, &SkipReason{Stage: "owner", ID: photo.ID, Err: err}
	}

	_, hasVoted := voted[photo.ID]
	return models.FeedItem{
		ID:            photo.ID,
		PetName:       pet.Name,
		OwnerNickname: owner.Nickname,
		OwnerID:       owner.ID,
		ImageLink:     photo.ImageLink,
		Votes:         photo.FriendVotes,
		Timestamp:     photo.UploadedAt,
		HasVoted:      hasVoted,
	}, nil
}
