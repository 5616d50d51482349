package service

import (
	"context"
	"time"

	"virtual-wallet/internal/core/ports"

	"github.com/rs/zerolog"
)

// SessionSweeper periodically flips stale PENDING sessions to EXPIRED.
// It is hygiene only: confirmation checks expiry itself, so correctness
// never depends on the sweeper having run.
type SessionSweeper struct {
	sessionRepo ports.PaymentSessionRepository
	interval    time.Duration
	log         zerolog.Logger
}

// NewSessionSweeper creates a sweeper running every interval.
func NewSessionSweeper(sessionRepo ports.PaymentSessionRepository, interval time.Duration, log zerolog.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessionRepo: sessionRepo,
		interval:    interval,
		log:         log,
	}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("session sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	swept, err := s.sessionRepo.MarkExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if swept > 0 {
		s.log.Info().Int64("count", swept).Msg("expired sessions swept")
	}
}
