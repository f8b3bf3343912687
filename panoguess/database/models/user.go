package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrInvalidStats is returned when a guess tuple would corrupt an aggregate.
// Apply/Reverse validate before touching any field, so a failed call leaves
// the aggregate untouched.
var ErrInvalidStats = errors.New("invalid guess statistics")

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         int64  `bun:"id,pk,autoincrement"`
	TelegramID string `bun:"telegram_id,notnull,unique"`
	Username   string `bun:"username,notnull"`

	// Running statistics. Mutated only through ApplyGuess/ReverseGuess
	// inside the guess transaction.
	Games           int     `bun:"games,notnull,default:0"`
	TotalTime       int     `bun:"total_time,notnull,default:0"`
	TotalErrors     float64 `bun:"total_errors,notnull,default:0"`
	TotalMoves      int     `bun:"total_moves,notnull,default:0"`
	TotalScore      float64 `bun:"total_score,notnull,default:0"`
	AvgTime         float64 `bun:"avg_time,notnull,default:0"`
	AvgError        float64 `bun:"avg_error,notnull,default:0"`
	AvgMovesPerGame float64 `bun:"avg_moves_per_game,notnull,default:0"`
	AvgScore        float64 `bun:"avg_score,notnull,default:0"`

	// Daily panorama move quota.
	DailyMovesRemaining int       `bun:"daily_moves_remaining,notnull,default:0"`
	LastMoveDate        time.Time `bun:"last_move_date"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ApplyGuess folds one scored guess into the player's running statistics and
// charges the moves against the daily quota. The quota is charged
// unconditionally; pre-checking the remaining allowance is the submission
// layer's job, so an unchecked call can drive it negative.
func (u *User) ApplyGuess(duration int, distanceError, score float64, moves int) error {
	if err := validateGuessStats(duration, distanceError, score, moves); err != nil {
		return err
	}

	u.Games++
	u.TotalTime += duration
	u.TotalErrors += distanceError
	u.TotalMoves += moves
	u.TotalScore += score

	u.AvgTime = float64(u.TotalTime) / float64(u.Games)
	u.AvgError = u.TotalErrors / float64(u.Games)
	u.AvgMovesPerGame = float64(u.TotalMoves) / float64(u.Games)
	u.AvgScore = u.TotalScore / float64(u.Games)

	u.DailyMovesRemaining -= moves
	u.LastMoveDate = time.Now().UTC().Truncate(24 * time.Hour)

	return nil
}

// ReverseGuess is the exact algebraic inverse of ApplyGuess for the same
// tuple. When the removed guess was the player's last one every total and
// average resets to zero rather than dividing by a zero count. The move
// quota is re-credited even if the calendar day has changed since the guess
// was created; the over-credit across a day boundary is accepted behavior.
func (u *User) ReverseGuess(duration int, distanceError, score float64, moves int) error {
	if err := validateGuessStats(duration, distanceError, score, moves); err != nil {
		return err
	}

	if u.Games <= 1 {
		u.Games = 0
		u.TotalTime = 0
		u.TotalErrors = 0
		u.TotalMoves = 0
		u.TotalScore = 0
		u.AvgTime = 0
		u.AvgError = 0
		u.AvgMovesPerGame = 0
		u.AvgScore = 0
	} else {
		u.Games--
		u.TotalTime -= duration
		u.TotalErrors -= distanceError
		u.TotalMoves -= moves
		u.TotalScore -= score

		u.AvgTime = float64(u.TotalTime) / float64(u.Games)
		u.AvgError = u.TotalErrors / float64(u.Games)
		u.AvgMovesPerGame = float64(u.TotalMoves) / float64(u.Games)
		u.AvgScore = u.TotalScore / float64(u.Games)
	}

	u.DailyMovesRemaining += moves

	return nil
}

func validateGuessStats(duration int, distanceError, score float64, moves int) error {
	// distanceError == 0 is a legitimate exact hit.
	if duration <= 0 || distanceError < 0 || score < 0 || moves < 0 {
		return ErrInvalidStats
	}
	return nil
}
