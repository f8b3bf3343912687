package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyFeedback is returned when a player submits blank feedback.
var ErrEmptyFeedback = errors.New("feedback text is empty")

// deliveryWorkers bounds concurrent message sends during a sweep.
const deliveryWorkers = 4

type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	messenger    Messenger
}

func NewFeedbackService(feedbackRepo repositories.FeedbackRepository, messenger Messenger) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		messenger:    messenger,
	}
}

// Submit stores free-text feedback from a player. Answering happens out of
// band; the answer is delivered by the next sweep.
func (s *FeedbackService) Submit(ctx context.Context, user *models.User, text string) (*models.Feedback, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFeedback
	}

	feedback := &models.Feedback{
		UserID:       user.ID,
		FeedbackText: text,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	slog.Info("Feedback submitted",
		slog.String("type", "game"),
		slog.String("player_name", user.Username),
		slog.Int64("feedback_id", feedback.ID))

	return feedback, nil
}

// Answer records an administrative response. Delivery is left to the sweep.
func (s *FeedbackService) Answer(ctx context.Context, feedbackID int64, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyFeedback
	}

	feedback, err := s.feedbackRepo.GetByID(ctx, feedbackID)
	if err != nil {
		return err
	}

	feedback.SetAnswer(answer)
	return s.feedbackRepo.Update(ctx, feedback)
}

// DeliverAnswers sends every answered-but-undelivered answer to its player.
// A failed send is logged and left unsent so the next sweep retries it;
// the sweep itself never fails because of delivery errors.
func (s *FeedbackService) DeliverAnswers(ctx context.Context) error {
	pending, err := s.feedbackRepo.GetUnsentAnswered(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending answers: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.Info("Delivering feedback answers",
		slog.String("type", "task"),
		slog.Int("pending", len(pending)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deliveryWorkers)

	for _, feedback := range pending {
		feedback := feedback
		g.Go(func() error {
			if feedback.User == nil {
				slog.Warn("Feedback has no player attached, skipping",
					slog.String("type", "task"),
					slog.Int64("feedback_id", feedback.ID))
				return nil
			}

			text := fmt.Sprintf("Answer for your feedback:\n\n%s\n\nThank you for your opinion!", feedback.Answer)
			if err := s.messenger.Send(feedback.User.TelegramID, text); err != nil {
				slog.Error("Failed to deliver feedback answer",
					slog.String("type", "task"),
					slog.Int64("feedback_id", feedback.ID),
					slog.Any("error", err))
				return nil
			}

			if err := s.feedbackRepo.MarkSent(gctx, feedback.ID); err != nil {
				slog.Error("Failed to mark feedback answer as sent",
					slog.String("type", "task"),
					slog.Int64("feedback_id", feedback.ID),
					slog.Any("error", err))
			}
			return nil
		})
	}

	return g.Wait()
}
