package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/uptrace/bun"
)

type RatingRepository interface {
	// Get returns the single leaderboard snapshot row, ErrNotFound when it
	// has not been created yet.
	Get(ctx context.Context) (*models.Rating, error)
	Create(ctx context.Context, rating *models.Rating) error
	Update(ctx context.Context, rating *models.Rating) error
}

type ratingRepository struct {
	db *bun.DB
}

func NewRatingRepository(db *bun.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Get(ctx context.Context) (*models.Rating, error) {
	rating := new(models.Rating)
	err := r.db.NewSelect().
		Model(rating).
		Order("id ASC").
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rating, nil
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.UpdatedAt.IsZero() {
		rating.UpdatedAt = time.Now()
	}
	_, err := r.db.NewInsert().Model(rating).Exec(ctx)
	return err
}

func (r *ratingRepository) Update(ctx context.Context, rating *models.Rating) error {
	_, err := r.db.NewUpdate().
		Model(rating).
		WherePK().
		Exec(ctx)
	return err
}
