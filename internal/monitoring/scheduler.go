package monitoring

import (
	"context"
	"time"

	"github.com/kaddachi/tasktrack-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the background maintenance jobs: garbage collection of
// expired refresh-token revocation records and the periodic runtime stats
// report.
type Scheduler struct {
	tokens services.TokenServiceProvider
	stats  *StatsReporter
	cron   *cron.Cron
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(tokens services.TokenServiceProvider, stats *StatsReporter) *Scheduler {
	return &Scheduler{
		tokens: tokens,
		stats:  stats,
		cron:   cron.New(),
	}
}

// Start registers the jobs and starts the cron loop. Invalid schedule
// expressions are reported as errors.
func (s *Scheduler) Start(cleanupSchedule, statsSchedule string) error {
	if _, err := s.cron.AddFunc(cleanupSchedule, s.cleanupExpiredTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(statsSchedule, s.stats.Report); err != nil {
		return err
	}

	log.Info().Str("cleanup", cleanupSchedule).Str("stats", statsSchedule).Msg("Starting background scheduler")
	s.cron.Start()

	// Run the cleanup once immediately on start
	go s.cleanupExpiredTokens()
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// cleanupExpiredTokens drops revocation records whose tokens have passed
// their natural expiry. Keeping them any longer only grows the table;
// dropping them is safe because an expired token is rejected regardless.
func (s *Scheduler) cleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.tokens.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: Failed to delete expired refresh tokens")
		return
	}
	if n > 0 {
		log.Info().Int64("removed", n).Msg("Scheduler: Purged expired refresh tokens")
	}
}
