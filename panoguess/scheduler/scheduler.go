package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/panoguess/bot/panoguess/database/repositories"
	"github.com/panoguess/bot/panoguess/services"
)

const (
	// dailyResetInterval is how often the move-quota reset is attempted.
	// The reset itself only touches players whose last move predates the
	// current date, so running it hourly is safe and catches the date
	// rollover within an hour.
	dailyResetInterval = time.Hour

	feedbackSweepInterval = time.Hour
)

// Scheduler runs the two periodic jobs: the daily move-quota reset and the
// feedback answer sweep. Both are idempotent and safe to skip or retry.
type Scheduler struct {
	userRepo        repositories.UserRepository
	feedback        *services.FeedbackService
	dailyMovesLimit int
}

func New(userRepo repositories.UserRepository, feedback *services.FeedbackService, dailyMovesLimit int) *Scheduler {
	return &Scheduler{
		userRepo:        userRepo,
		feedback:        feedback,
		dailyMovesLimit: dailyMovesLimit,
	}
}

// Start launches both jobs. They stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runDailyMovesReset(ctx)
	go s.runFeedbackSweep(ctx)

	slog.Info("Background jobs started",
		slog.String("type", "task"),
		slog.Duration("daily_reset_interval", dailyResetInterval),
		slog.Duration("feedback_sweep_interval", feedbackSweepInterval))
}

func (s *Scheduler) runDailyMovesReset(ctx context.Context) {
	ticker := time.NewTicker(dailyResetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updated, err := s.userRepo.ResetDailyMoves(ctx, s.dailyMovesLimit)
			if err != nil {
				slog.Error("Daily moves reset failed",
					slog.String("type", "task"),
					slog.Any("error", err))
				continue
			}
			if updated > 0 {
				slog.Info("Daily moves reset",
					slog.String("type", "task"),
					slog.Int64("players_updated", updated))
			}
		}
	}
}

func (s *Scheduler) runFeedbackSweep(ctx context.Context) {
	ticker := time.NewTicker(feedbackSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.feedback.DeliverAnswers(ctx); err != nil {
				slog.Error("Feedback sweep failed",
					slog.String("type", "task"),
					slog.Any("error", err))
			}
		}
	}
}
