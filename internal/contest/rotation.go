package contest

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// defaultThemes is the built-in prompt catalog. Selection is a flat uniform
// pick; immediate repeats are possible.
var defaultThemes = []string{
	"Best Nap Spot",
	"Caught Mid-Zoomies",
	"Fanciest Outfit",
	"Messiest Eater",
	"Most Dramatic Yawn",
	"Tongue Out Tuesday",
	"Puppy Dog Eyes",
	"King of the Couch",
	"Bath Time Blues",
	"Adventure Buddy",
}

// Controller rotates expired contests and keeps exactly one contest active.
type Controller struct {
	records store.RecordStore
	window  time.Duration
	themes  []string
}

// NewController creates a rotation controller. A zero window defaults to one
// week; an empty theme list falls back to the built-in catalog.
func NewController(records store.RecordStore, window time.Duration, themes []string) *Controller {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	if len(themes) == 0 {
		themes = defaultThemes
	}
	return &Controller{records: records, window: window, themes: themes}
}

// Active returns the currently active contest, or store.ErrNotFound when
// none is active.
func (c *Controller) Active(ctx context.Context) (*models.Contest, error) {
	recs, err := c.records.QueryByField(ctx, store.CollectionContests, "active", true)
	if err != nil {
		return nil, fmt.Errorf("failed to query active contest: %w", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}

	var contest models.Contest
	if err := store.Decode(recs[0], &contest); err != nil {
		return nil, fmt.Errorf("failed to decode contest: %w", err)
	}
	return &contest, nil
}

// Initialize ensures a contest is running at startup: creates one when none
// is active, otherwise runs the usual expiry check. Idempotent.
func (c *Controller) Initialize(ctx context.Context, now time.Time) error {
	_, err := c.Active(ctx)
	if err == store.ErrNotFound {
		return c.startContest(ctx, now)
	}
	if err != nil {
		return err
	}
	return c.RotateExpired(ctx, now)
}

// RotateExpired deactivates the active contest once its window has passed
// and starts its successor. Calling it again with no time elapsed is a
// no-op. Callers treat failures as best-effort and retry on the next tick.
func (c *Controller) RotateExpired(ctx context.Context, now time.Time) error {
	active, err := c.Active(ctx)
	if err == store.ErrNotFound {
		return c.startContest(ctx, now)
	}
	if err != nil {
		return err
	}
	if !now.After(active.EndsAt) {
		return nil
	}

	active.Active = false
	rec, err := store.Encode(active)
	if err != nil {
		return err
	}
	if err := c.records.Update(ctx, store.CollectionContests, active.ID, rec); err != nil {
		return fmt.Errorf("failed to deactivate contest %s: %w", active.ID, err)
	}

	log.Info().Str("contest_id", active.ID).Str("prompt", active.Prompt).Msg("Contest expired")
	return c.startContest(ctx, now)
}

func (c *Controller) startContest(ctx context.Context, now time.Time) error {
	contest := models.Contest{
		ID:       uuid.New().String(),
		Prompt:   c.themes[rand.Intn(len(c.themes))],
		StartsAt: now,
		EndsAt:   now.Add(c.window),
		Active:   true,
	}

	rec, err := store.Encode(contest)
	if err != nil {
		return err
	}
	if _, err := c.records.Insert(ctx, store.CollectionContests, rec); err != nil {
		return fmt.Errorf("failed to create contest: %w", err)
	}

	log.Info().Str("contest_id", contest.ID).Str("prompt", contest.Prompt).Msg("Contest started")
	return nil
}
