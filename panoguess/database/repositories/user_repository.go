package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	GetOrCreate(ctx context.Context, telegramID, username string, dailyMovesLimit int) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetQualifying(ctx context.Context, minGames int) ([]*models.User, error)
	ResetDailyMoves(ctx context.Context, limit int) (int64, error)
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	slog.Debug("UserRepository.GetByTelegramID called",
		slog.String("type", "db"),
		slog.String("operation", "GetByTelegramID"),
		slog.String("telegram_id", telegramID))

	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("telegram_id = ?", telegramID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("Database error when getting user",
			slog.String("type", "db"),
			slog.String("operation", "GetByTelegramID"),
			slog.String("telegram_id", telegramID),
			slog.String("error", err.Error()))
		return nil, err
	}

	return user, nil
}

// GetOrCreate returns the player for an authenticated chat identity,
// creating it on first sight with a full daily move allowance.
func (r *userRepository) GetOrCreate(ctx context.Context, telegramID, username string, dailyMovesLimit int) (*models.User, error) {
	user, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		TelegramID:          telegramID,
		Username:            username,
		DailyMovesRemaining: dailyMovesLimit,
		LastMoveDate:        time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("New player registered",
		slog.String("type", "game"),
		slog.String("telegram_id", telegramID),
		slog.String("player_name", username))

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	return err
}

// GetQualifying returns leaderboard-eligible players ordered by total score.
func (r *userRepository) GetQualifying(ctx context.Context, minGames int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		Where("games >= ?", minGames).
		Order("total_score DESC").
		Scan(ctx)

	if err != nil {
		slog.Error("Database error when getting qualifying users",
			slog.String("type", "db"),
			slog.String("operation", "GetQualifying"),
			slog.String("error", err.Error()))
		return nil, err
	}

	return users, nil
}

// ResetDailyMoves restores the daily allowance for every player whose last
// move predates the current date. Safe to run repeatedly.
func (r *userRepository) ResetDailyMoves(ctx context.Context, limit int) (int64, error) {
	result, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("daily_moves_remaining = ?", limit).
		Set("last_move_date = CURRENT_DATE").
		Set("updated_at = ?", time.Now()).
		Where("last_move_date < CURRENT_DATE").
		Exec(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to reset daily moves: %w", err)
	}
	return result.RowsAffected()
}
