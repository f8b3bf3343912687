package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/game"
	"github.com/uptrace/bun"
)

var (
	// ErrInvalidGuess is returned for caller input outside the allowed
	// ranges (moves, duration). Nothing is persisted.
	ErrInvalidGuess = errors.New("invalid guess")

	// ErrLocationUnresolved is returned when a guess targets a location
	// whose coordinates never resolved; scoring needs a true point.
	ErrLocationUnresolved = errors.New("location has unresolved coordinates")
)

type GuessRepository interface {
	// CreateWithStats scores the guess and persists the guess row together
	// with both updated aggregates in one transaction.
	CreateWithStats(ctx context.Context, userID, locationID int64, guessedLat, guessedLng float64, duration, movesUsed int) (*models.Guess, error)

	// DeleteWithStats reverses both aggregates from the stored tuple and
	// removes the guess row in one transaction.
	DeleteWithStats(ctx context.Context, guessID int64) error

	GetByID(ctx context.Context, id int64) (*models.Guess, error)
	GetUserGuesses(ctx context.Context, userID int64) ([]*models.Guess, error)
	HasGuessed(ctx context.Context, userID, locationID int64) (bool, error)
}

type guessRepository struct {
	db *bun.DB
}

func NewGuessRepository(db *bun.DB) GuessRepository {
	return &guessRepository{db: db}
}

func (r *guessRepository) CreateWithStats(ctx context.Context, userID, locationID int64, guessedLat, guessedLng float64, duration, movesUsed int) (*models.Guess, error) {
	if movesUsed < 0 || movesUsed > game.MaxPanoramaMoves {
		return nil, fmt.Errorf("%w: moves_used %d outside [0, %d]", ErrInvalidGuess, movesUsed, game.MaxPanoramaMoves)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidGuess)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Lock order is user then location everywhere, so concurrent guesses
	// on the same rows serialize instead of deadlocking.
	user, err := lockUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	location, err := lockLocation(ctx, tx, locationID)
	if err != nil {
		return nil, err
	}

	if !location.Resolved() {
		return nil, ErrLocationUnresolved
	}

	distanceError := game.Distance(
		game.Point{Lat: guessedLat, Lng: guessedLng},
		game.Point{Lat: *location.Lat, Lng: *location.Lng},
	)
	score := game.Score(distanceError, duration, movesUsed)

	if err := user.ApplyGuess(duration, distanceError, score, movesUsed); err != nil {
		return nil, err
	}
	if err := location.ApplyGuess(duration, distanceError, score, movesUsed); err != nil {
		return nil, err
	}

	guess := &models.Guess{
		UserID:        userID,
		LocationID:    locationID,
		GuessedLat:    guessedLat,
		GuessedLng:    guessedLng,
		MovesUsed:     movesUsed,
		Duration:      duration,
		DistanceError: distanceError,
		Score:         score,
		GuessedAt:     time.Now(),
	}

	if _, err := tx.NewInsert().Model(guess).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert guess: %w", err)
	}
	if err := updateUserTx(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := updateLocationTx(ctx, tx, location); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Guess recorded",
		slog.String("type", "game"),
		slog.Int64("user_id", userID),
		slog.Int64("location_id", locationID),
		slog.Float64("distance_error_km", distanceError),
		slog.Float64("score", score),
		slog.Int("moves_used", movesUsed))

	return guess, nil
}

func (r *guessRepository) DeleteWithStats(ctx context.Context, guessID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	guess := new(models.Guess)
	err = selectGuessForUpdate(tx, guess, guessID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	user, err := lockUser(ctx, tx, guess.UserID)
	if err != nil {
		return err
	}
	location, err := lockLocation(ctx, tx, guess.LocationID)
	if err != nil {
		return err
	}

	if err := user.ReverseGuess(guess.Duration, guess.DistanceError, guess.Score, guess.MovesUsed); err != nil {
		return err
	}
	if err := location.ReverseGuess(guess.Duration, guess.DistanceError, guess.Score, guess.MovesUsed); err != nil {
		return err
	}

	if err := updateUserTx(ctx, tx, user); err != nil {
		return err
	}
	if err := updateLocationTx(ctx, tx, location); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model(guess).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete guess: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("Guess deleted, aggregates reversed",
		slog.String("type", "game"),
		slog.Int64("guess_id", guessID),
		slog.Int64("user_id", guess.UserID),
		slog.Int64("location_id", guess.LocationID))

	return nil
}

func (r *guessRepository) GetByID(ctx context.Context, id int64) (*models.Guess, error) {
	guess := new(models.Guess)
	err := r.db.NewSelect().
		Model(guess).
		Where("g.id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return guess, nil
}

func (r *guessRepository) GetUserGuesses(ctx context.Context, userID int64) ([]*models.Guess, error) {
	var guesses []*models.Guess
	err := r.db.NewSelect().
		Model(&guesses).
		Where("user_id = ?", userID).
		Order("guessed_at DESC").
		Scan(ctx)
	return guesses, err
}

func (r *guessRepository) HasGuessed(ctx context.Context, userID, locationID int64) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*models.Guess)(nil)).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// selectGuessForUpdate locks the guess row itself, so concurrent deletes of
// the same guess serialize: the loser re-reads after the winner's commit,
// finds the row gone and stops before reversing the aggregates again.
func selectGuessForUpdate(idb bun.IDB, guess *models.Guess, id int64) *bun.SelectQuery {
	return idb.NewSelect().
		Model(guess).
		Where("g.id = ?", id).
		For("UPDATE")
}

func lockUser(ctx context.Context, tx bun.Tx, id int64) (*models.User, error) {
	user := new(models.User)
	err := tx.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}
	return user, nil
}

func lockLocation(ctx context.Context, tx bun.Tx, id int64) (*models.Location, error) {
	location := new(models.Location)
	err := tx.NewSelect().
		Model(location).
		Where("l.id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock location row: %w", err)
	}
	return location, nil
}

func updateUserTx(ctx context.Context, tx bun.Tx, user *models.User) error {
	user.UpdatedAt = time.Now()
	if _, err := tx.NewUpdate().Model(user).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	return nil
}

func updateLocationTx(ctx context.Context, tx bun.Tx, location *models.Location) error {
	location.UpdatedAt = time.Now()
	if _, err := tx.NewUpdate().Model(location).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update location stats: %w", err)
	}
	return nil
}
