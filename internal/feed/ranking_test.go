package feed

import (
	"testing"
	"time"

	"pawfeed-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// fixedJitter removes the random term so the vote and recency components
// are observable.
type fixedJitter struct{ v float64 }

func (j fixedJitter) Next(max float64) float64 { return j.v }

func TestScoreMonotonicInVotes(t *testing.T) {
	now := time.Now()
	submitted := now.Add(-2 * time.Hour)

	prev := Score(0, submitted, now, fixedJitter{})
	for votes := 1; votes <= 10; votes++ {
		score := Score(votes, submitted, now, fixedJitter{})
		assert.Greater(t, score, prev)
		assert.InDelta(t, 3.0, score-prev, 1e-9, "each vote is worth exactly 3 points")
		prev = score
	}
}

func TestScoreRecencyDecay(t *testing.T) {
	now := time.Now()

	fresh := Score(0, now, now, fixedJitter{})
	assert.InDelta(t, 10.0, fresh, 1e-9)

	tenHours := Score(0, now.Add(-10*time.Hour), now, fixedJitter{})
	assert.InDelta(t, 9.0, tenHours, 1e-9)
}

func TestScoreRecencyFloorsAtZero(t *testing.T) {
	now := time.Now()

	for _, hours := range []float64{100, 150, 10000} {
		submitted := now.Add(-time.Duration(hours * float64(time.Hour)))
		assert.Zero(t, Score(0, submitted, now, fixedJitter{}), "no recency boost after %v hours", hours)
	}
}

func TestScoreJitterRange(t *testing.T) {
	now := time.Now()
	jitter := RandomJitter()

	base := Score(0, now.Add(-200*time.Hour), now, fixedJitter{})
	for i := 0; i < 100; i++ {
		score := Score(0, now.Add(-200*time.Hour), now, jitter)
		assert.GreaterOrEqual(t, score, base)
		assert.Less(t, score, base+5.0)
	}
}

func TestRankOwnEntriesFirst(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		entry("a", "other-1", 50, now.Add(-time.Hour)),
		entry("b", "caller", 0, now.Add(-90*time.Hour)),
		entry("c", "other-2", 20, now.Add(-time.Hour)),
		entry("d", "caller", 1, now.Add(-time.Hour)),
	}

	items := Rank(entries, "caller", now, fixedJitter{})

	assert.Len(t, items, 4)
	// Caller's entries come first in fetch order, regardless of score.
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "d", items[1].ID)
	assert.Zero(t, items[0].Score)
	assert.Zero(t, items[1].Score)
	// Everyone else sorted by descending score.
	assert.Equal(t, "a", items[2].ID)
	assert.Equal(t, "c", items[3].ID)
	assert.Greater(t, items[2].Score, items[3].Score)
}

func TestRankLowScoringOwnEntryBeatsHighScoringOther(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		entry("a", "other", 10, now.Add(-time.Hour)),
		entry("b", "caller", 2, now.Add(-time.Hour)),
	}

	items := Rank(entries, "caller", now, fixedJitter{})

	assert.Equal(t, []string{"b", "a"}, []string{items[0].ID, items[1].ID})
}

func TestRankEmpty(t *testing.T) {
	items := Rank(nil, "caller", time.Now(), fixedJitter{})
	assert.Empty(t, items)
}

func entry(id, ownerID string, votes int, submittedAt time.Time) Entry {
	return Entry{
		Submission: models.ContestPhoto{ID: id, Votes: votes, SubmittedAt: submittedAt},
		Item:       models.FeedItem{ID: id, OwnerID: ownerID, Votes: votes, Timestamp: submittedAt},
	}
}
