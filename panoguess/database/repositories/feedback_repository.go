package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/uptrace/bun"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	Update(ctx context.Context, feedback *models.Feedback) error

	// GetUnsentAnswered returns answered feedback whose answer has not been
	// delivered yet, oldest first.
	GetUnsentAnswered(ctx context.Context) ([]*models.Feedback, error)
	MarkSent(ctx context.Context, id int64) error
}

type feedbackRepository struct {
	db *bun.DB
}

func NewFeedbackRepository(db *bun.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.CreatedAt = time.Now()
	feedback.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(feedback).Exec(ctx)
	return err
}

func (r *feedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	feedback := new(models.Feedback)
	err := r.db.NewSelect().
		Model(feedback).
		Relation("User").
		Where("f.id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	feedback.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(feedback).
		WherePK().
		Exec(ctx)
	return err
}

func (r *feedbackRepository) GetUnsentAnswered(ctx context.Context) ([]*models.Feedback, error) {
	var feedback []*models.Feedback
	err := r.db.NewSelect().
		Model(&feedback).
		Relation("User").
		Where("f.answered = true").
		Where("f.sent_at IS NULL").
		Order("f.created_at ASC").
		Scan(ctx)
	return feedback, err
}

func (r *feedbackRepository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Feedback)(nil)).
		Set("sent_at = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
