package contest

import (
	"context"
	"testing"
	"time"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * time.Hour

func TestInitializeCreatesContestWhenNoneActive(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, nil)
	now := time.Now()

	require.NoError(t, c.Initialize(context.Background(), now))

	active, err := c.Active(context.Background())
	require.NoError(t, err)
	assert.True(t, active.Active)
	assert.NotEmpty(t, active.Prompt)
	assert.Equal(t, now.Add(week).Unix(), active.EndsAt.Unix())
}

func TestInitializeIsIdempotent(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, nil)
	now := time.Now()

	require.NoError(t, c.Initialize(context.Background(), now))
	first, err := c.Active(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Initialize(context.Background(), now))
	second, err := c.Active(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestRotateExpiredNoOpBeforeEnd(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, nil)
	now := time.Now()

	require.NoError(t, c.Initialize(context.Background(), now))
	active, err := c.Active(context.Background())
	require.NoError(t, err)

	// Two calls with no time elapsed: same active contest both times.
	require.NoError(t, c.RotateExpired(context.Background(), now))
	require.NoError(t, c.RotateExpired(context.Background(), now))

	after, err := c.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, active.ID, after.ID)
}

func TestRotateExpiredStartsSuccessor(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, []string{"Best Nap Spot"})
	now := time.Now()

	require.NoError(t, c.Initialize(context.Background(), now))
	old, err := c.Active(context.Background())
	require.NoError(t, err)

	later := now.Add(week + time.Minute)
	require.NoError(t, c.RotateExpired(context.Background(), later))

	active, err := c.Active(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, active.ID)
	assert.Equal(t, later.Add(week).Unix(), active.EndsAt.Unix())

	// The old contest is deactivated; exactly one contest stays active.
	recs, err := records.QueryByField(context.Background(), store.CollectionContests, "active", true)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	oldRec, err := records.GetByID(context.Background(), store.CollectionContests, old.ID)
	require.NoError(t, err)
	var oldContest models.Contest
	require.NoError(t, store.Decode(oldRec, &oldContest))
	assert.False(t, oldContest.Active)
}

func TestRotateExpiredCreatesContestOnEmptyStore(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, nil)

	require.NoError(t, c.RotateExpired(context.Background(), time.Now()))

	_, err := c.Active(context.Background())
	require.NoError(t, err)
}

func TestActiveNoneReturnsNotFound(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, nil)

	_, err := c.Active(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestThemeComesFromCatalog(t *testing.T) {
	records := store.NewMemoryStore()
	c := NewController(records, week, []string{"Only Theme"})

	require.NoError(t, c.Initialize(context.Background(), time.Now()))

	active, err := c.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Only Theme", active.Prompt)
}
