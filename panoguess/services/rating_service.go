package services

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
	"golang.org/x/sync/singleflight"
)

const (
	// RatingDebounce is the minimum interval between leaderboard
	// recomputations, regardless of read volume.
	RatingDebounce = 15 * time.Second

	// ratingMinGames filters out players without enough games to rank.
	ratingMinGames = 5
)

// RatingService maintains the cached leaderboard snapshot: recomputed
// lazily on read, at most once per debounce window, and only persisted when
// the ranked list actually changed.
type RatingService struct {
	ratingRepo repositories.RatingRepository
	userRepo   repositories.UserRepository
	group      singleflight.Group
	now        func() time.Time
}

func NewRatingService(ratingRepo repositories.RatingRepository, userRepo repositories.UserRepository) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// Leaderboard returns the current snapshot, refreshing it if the debounce
// window has passed. Concurrent readers collapse into a single
// recomputation; a stale last-writer-wins inside one expired window is
// harmless because the content is derived, not accumulated.
func (s *RatingService) Leaderboard(ctx context.Context) (*models.Rating, error) {
	v, err, _ := s.group.Do("rating", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Rating), nil
}

func (s *RatingService) refresh(ctx context.Context) (*models.Rating, error) {
	now := s.now()

	rating, err := s.ratingRepo.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		// First read ever: compute and always persist, even when empty.
		data, err := s.computeRanking(ctx)
		if err != nil {
			return nil, err
		}
		rating = &models.Rating{Data: data, UpdatedAt: now}
		if err := s.ratingRepo.Create(ctx, rating); err != nil {
			return nil, err
		}
		slog.Info("Leaderboard snapshot created",
			slog.String("type", "game"),
			slog.Int("entries", len(data)))
		return rating, nil
	}
	if err != nil {
		return nil, err
	}

	// A NULL jsonb column scans to nil; an empty board must compare equal
	// to a freshly computed empty ranking.
	if rating.Data == nil {
		rating.Data = []models.RatingEntry{}
	}

	if now.Sub(rating.UpdatedAt) <= RatingDebounce {
		return rating, nil
	}

	data, err := s.computeRanking(ctx)
	if err != nil {
		return nil, err
	}

	if !reflect.DeepEqual(rating.Data, data) {
		rating.Data = data
		rating.UpdatedAt = now
		if err := s.ratingRepo.Update(ctx, rating); err != nil {
			return nil, err
		}
		slog.Info("Leaderboard snapshot updated",
			slog.String("type", "game"),
			slog.Int("entries", len(data)))
	}

	return rating, nil
}

func (s *RatingService) computeRanking(ctx context.Context) ([]models.RatingEntry, error) {
	users, err := s.userRepo.GetQualifying(ctx, ratingMinGames)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RatingEntry, 0, len(users))
	for _, user := range users {
		scoreForGame := 0.0
		if user.Games > 0 {
			scoreForGame = user.TotalScore / float64(user.Games)
		}
		entries = append(entries, models.RatingEntry{
			Username:     user.Username,
			Games:        user.Games,
			Score:        user.TotalScore,
			ScoreForGame: scoreForGame,
		})
	}
	return entries, nil
}
