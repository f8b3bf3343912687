package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
)

func ratingFixtureUsers() []*models.User {
	return []*models.User{
		{Username: "alice", Games: 10, TotalScore: 2500},
		{Username: "bob", Games: 7, TotalScore: 1400},
	}
}

func TestRatingServiceCreatesSnapshotLazily(t *testing.T) {
	ratingRepo := &fakeRatingRepo{}
	userRepo := &fakeUserRepo{qualifying: ratingFixtureUsers()}
	s := NewRatingService(ratingRepo, userRepo)

	rating, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if ratingRepo.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", ratingRepo.createCalls)
	}

	want := []models.RatingEntry{
		{Username: "alice", Games: 10, Score: 2500, ScoreForGame: 250},
		{Username: "bob", Games: 7, Score: 1400, ScoreForGame: 200},
	}
	if !reflect.DeepEqual(rating.Data, want) {
		t.Errorf("Data = %+v, want %+v", rating.Data, want)
	}
}

func TestRatingServiceFirstComputationPersistsEvenWhenEmpty(t *testing.T) {
	ratingRepo := &fakeRatingRepo{}
	userRepo := &fakeUserRepo{}
	s := NewRatingService(ratingRepo, userRepo)

	rating, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if ratingRepo.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", ratingRepo.createCalls)
	}
	if len(rating.Data) != 0 {
		t.Errorf("Data = %+v, want empty", rating.Data)
	}
}

func TestRatingServiceDebounce(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ratingRepo := &fakeRatingRepo{
		stored: &models.Rating{
			ID:        1,
			Data:      []models.RatingEntry{{Username: "alice", Games: 10, Score: 2500, ScoreForGame: 250}},
			UpdatedAt: base,
		},
	}
	// Underlying data changed, but the window has not passed.
	userRepo := &fakeUserRepo{qualifying: append(ratingFixtureUsers(), &models.User{Username: "carol", Games: 6, TotalScore: 900})}

	s := NewRatingService(ratingRepo, userRepo)
	s.now = func() time.Time { return base.Add(10 * time.Second) }

	rating, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if ratingRepo.updateCalls != 0 {
		t.Errorf("updateCalls = %d, want 0 (debounced)", ratingRepo.updateCalls)
	}
	if len(rating.Data) != 1 || rating.Data[0].Username != "alice" {
		t.Errorf("Data = %+v, want the cached snapshot untouched", rating.Data)
	}
	if !rating.UpdatedAt.Equal(base) {
		t.Errorf("UpdatedAt = %v, want %v", rating.UpdatedAt, base)
	}
}

func TestRatingServiceRefreshesAfterWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ratingRepo := &fakeRatingRepo{
		stored: &models.Rating{
			ID:        1,
			Data:      []models.RatingEntry{{Username: "alice", Games: 10, Score: 2500, ScoreForGame: 250}},
			UpdatedAt: base,
		},
	}
	userRepo := &fakeUserRepo{qualifying: ratingFixtureUsers()}

	s := NewRatingService(ratingRepo, userRepo)
	later := base.Add(RatingDebounce + time.Second)
	s.now = func() time.Time { return later }

	rating, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if ratingRepo.updateCalls != 1 {
		t.Errorf("updateCalls = %d, want 1", ratingRepo.updateCalls)
	}
	if len(rating.Data) != 2 {
		t.Errorf("Data has %d entries, want 2", len(rating.Data))
	}
	if !rating.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", rating.UpdatedAt, later)
	}
}

func TestRatingServiceEmptySnapshotDoesNotChurn(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ratingRepo := &fakeRatingRepo{
		stored: &models.Rating{ID: 1, Data: nil, UpdatedAt: base},
	}
	userRepo := &fakeUserRepo{}

	s := NewRatingService(ratingRepo, userRepo)
	s.now = func() time.Time { return base.Add(RatingDebounce + time.Minute) }

	rating, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if ratingRepo.updateCalls != 0 {
		t.Errorf("updateCalls = %d, want 0 (nil and empty are the same board)", ratingRepo.updateCalls)
	}
	if !rating.UpdatedAt.Equal(base) {
		t.Errorf("UpdatedAt = %v, want %v", rating.UpdatedAt, base)
	}
}

func TestRatingServiceSkipsWriteWhenContentUnchanged(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	data := []models.RatingEntry{
		{Username: "alice", Games: 10, Score: 2500, ScoreForGame: 250},
		{Username: "bob", Games: 7, Score: 1400, ScoreForGame: 200},
	}
	ratingRepo := &fakeRatingRepo{
		stored: &models.Rating{ID: 1, Data: data, UpdatedAt: base},
	}
	userRepo := &fakeUserRepo{qualifying: ratingFixtureUsers()}

	s := NewRatingService(ratingRepo, userRepo)
	s.now = func() time.Time { return base.Add(RatingDebounce + time.Minute) }

	rating, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if ratingRepo.updateCalls != 0 {
		t.Errorf("updateCalls = %d, want 0 (content unchanged)", ratingRepo.updateCalls)
	}
	if !rating.UpdatedAt.Equal(base) {
		t.Errorf("UpdatedAt = %v, want %v (no churn on identical data)", rating.UpdatedAt, base)
	}
}
