package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
	"github.com/panoguess/bot/panoguess/game"
)

// GuessResult is what a submitted guess reports back to the player.
type GuessResult struct {
	DistanceError float64
	Duration      int
	Score         float64
	MovesUsed     int
	User          *models.User
}

// GuessService orchestrates the guess lifecycle: scoring, the twin
// aggregate updates and the atomic persistence of all three records.
type GuessService struct {
	guessRepo repositories.GuessRepository
	userRepo  repositories.UserRepository
}

func NewGuessService(guessRepo repositories.GuessRepository, userRepo repositories.UserRepository) *GuessService {
	return &GuessService{
		guessRepo: guessRepo,
		userRepo:  userRepo,
	}
}

// SubmitGuess validates, scores and persists one guess, then returns the
// result together with the player's refreshed statistics.
func (s *GuessService) SubmitGuess(ctx context.Context, user *models.User, locationID int64, guessedLat, guessedLng float64, duration, movesUsed int) (*GuessResult, error) {
	if movesUsed < 0 || movesUsed > game.MaxPanoramaMoves {
		return nil, fmt.Errorf("%w: moves_used %d outside [0, %d]",
			repositories.ErrInvalidGuess, movesUsed, game.MaxPanoramaMoves)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", repositories.ErrInvalidGuess)
	}

	guess, err := s.guessRepo.CreateWithStats(ctx, user.ID, locationID, guessedLat, guessedLng, duration, movesUsed)
	if err != nil {
		slog.Warn("Guess submission rejected",
			slog.String("type", "game"),
			slog.String("player_name", user.Username),
			slog.Int64("location_id", locationID),
			slog.Any("error", err))
		return nil, err
	}

	updated, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload player stats: %w", err)
	}

	return &GuessResult{
		DistanceError: guess.DistanceError,
		Duration:      guess.Duration,
		Score:         guess.Score,
		MovesUsed:     guess.MovesUsed,
		User:          updated,
	}, nil
}

// DeleteGuess removes a guess and reverses its effect on both aggregates.
// Administrative operation.
func (s *GuessService) DeleteGuess(ctx context.Context, guessID int64) error {
	return s.guessRepo.DeleteWithStats(ctx, guessID)
}
