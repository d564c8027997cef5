package feed

import (
	"math/rand"
	"sort"
	"time"

	"pawfeed-backend/internal/models"
)

const (
	voteWeight       = 3.0
	recencyBoostMax  = 10.0
	recencyDecayRate = 0.1 // boost lost per hour since submission
	jitterMax        = 5.0
)

// Jitter is a source of per-request randomness for contest scoring. Tests
// substitute a fixed source to make the non-random score components
// observable.
type Jitter interface {
	// Next returns a value uniformly distributed over [0, max).
	Next(max float64) float64
}

// RandomJitter returns the default jitter source. It is intentionally not
// seeded deterministically: repeated feed requests must be able to reorder
// near-tied entries.
func RandomJitter() Jitter {
	return randomJitter{}
}

type randomJitter struct{}

func (randomJitter) Next(max float64) float64 {
	return rand.Float64() * max
}

// Entry pairs a contest submission with its already-joined feed item.
type Entry struct {
	Submission models.ContestPhoto
	Item       models.FeedItem
}

// Score computes the composite ranking value for a contest submission:
// vote weight, a recency boost that decays to zero, and a uniform random
// jitter resampled on every call.
func Score(votes int, submittedAt, now time.Time, jitter Jitter) float64 {
	hours := now.Sub(submittedAt).Hours()
	recency := recencyBoostMax - hours*recencyDecayRate
	if recency < 0 {
		recency = 0
	}
	return float64(votes)*voteWeight + recency + jitter.Next(jitterMax)
}

// Rank orders contest entries for display. Entries owned by the caller come
// first in fetch order with the zero score sentinel; every other entry is
// scored and sorted by descending score. Scores are recomputed per call and
// are not stable across requests.
func Rank(entries []Entry, callerID string, now time.Time, jitter Jitter) []models.FeedItem {
	var mine, scored []models.FeedItem
	for _, e := range entries {
		if e.Item.OwnerID == callerID {
			mine = append(mine, e.Item)
			continue
		}
		item := e.Item
		item.Score = Score(e.Submission.Votes, e.Submission.SubmittedAt, now, jitter)
		scored = append(scored, item)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return append(mine, scored...)
}
