package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ComplexityEasy   = "easy"
	ComplexityNormal = "normal"
	ComplexityHard   = "hard"
)

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID            int64  `bun:"id,pk,autoincrement"`
	StreetViewURL string `bun:"street_view_url"`

	// Resolved exactly once, at creation. Nil when geocoding failed; such
	// locations are never served for play.
	Lat     *float64 `bun:"lat"`
	Lng     *float64 `bun:"lng"`
	Country string   `bun:"country"`

	Complexity string `bun:"complexity,notnull,default:'normal'"`

	// Running statistics. Mutated only through ApplyGuess/ReverseGuess
	// inside the guess transaction.
	TotalGuesses int     `bun:"total_guesses,notnull,default:0"`
	TotalErrors  float64 `bun:"total_errors,notnull,default:0"`
	TotalTime    int     `bun:"total_time,notnull,default:0"`
	TotalMoves   int     `bun:"total_moves,notnull,default:0"`
	TotalScore   float64 `bun:"total_score,notnull,default:0"`
	AvgError     float64 `bun:"avg_error,notnull,default:0"`
	AvgTime      float64 `bun:"avg_time,notnull,default:0"`
	AvgMoves     float64 `bun:"avg_moves,notnull,default:0"`
	AvgScore     float64 `bun:"avg_score,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Resolved reports whether the location has usable coordinates. Scoring
// needs a true point, so unresolved locations are not playable.
func (l *Location) Resolved() bool {
	return l.Lat != nil && l.Lng != nil
}

// ApplyGuess folds one scored guess into the location's running statistics.
func (l *Location) ApplyGuess(duration int, distanceError, score float64, moves int) error {
	if err := validateGuessStats(duration, distanceError, score, moves); err != nil {
		return err
	}

	l.TotalGuesses++
	l.TotalTime += duration
	l.TotalErrors += distanceError
	l.TotalMoves += moves
	l.TotalScore += score

	l.AvgError = l.TotalErrors / float64(l.TotalGuesses)
	l.AvgTime = float64(l.TotalTime) / float64(l.TotalGuesses)
	l.AvgMoves = float64(l.TotalMoves) / float64(l.TotalGuesses)
	l.AvgScore = l.TotalScore / float64(l.TotalGuesses)

	return nil
}

// ReverseGuess is the exact algebraic inverse of ApplyGuess for the same
// tuple, resetting to zero when the last guess is removed.
func (l *Location) ReverseGuess(duration int, distanceError, score float64, moves int) error {
	if err := validateGuessStats(duration, distanceError, score, moves); err != nil {
		return err
	}

	if l.TotalGuesses <= 1 {
		l.TotalGuesses = 0
		l.TotalTime = 0
		l.TotalErrors = 0
		l.TotalMoves = 0
		l.TotalScore = 0
		l.AvgError = 0
		l.AvgTime = 0
		l.AvgMoves = 0
		l.AvgScore = 0
		return nil
	}

	l.TotalGuesses--
	l.TotalTime -= duration
	l.TotalErrors -= distanceError
	l.TotalMoves -= moves
	l.TotalScore -= score

	l.AvgError = l.TotalErrors / float64(l.TotalGuesses)
	l.AvgTime = float64(l.TotalTime) / float64(l.TotalGuesses)
	l.AvgMoves = float64(l.TotalMoves) / float64(l.TotalGuesses)
	l.AvgScore = l.TotalScore / float64(l.TotalGuesses)

	return nil
}
