package jobs

import (
	"context"
	"time"

	"pawfeed-backend/internal/contest"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the periodic contest-rotation check.
type Scheduler struct {
	cron     *cron.Cron
	rotation *contest.Controller
}

// NewScheduler creates a scheduler around the rotation controller.
func NewScheduler(rotation *contest.Controller) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		rotation: rotation,
	}
}

// Start registers the hourly rotation check and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.rotate); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting briefly for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Timed out waiting for rotation job to finish")
	}
}

func (s *Scheduler) rotate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.rotation.RotateExpired(ctx, time.Now()); err != nil {
		log.Error().Err(err).Msg("Contest rotation failed")
	}
}
