package services

import (
	"context"
	"errors"
	"testing"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
)

func TestGuessServiceSubmitGuess(t *testing.T) {
	player := &models.User{ID: 1, TelegramID: "42", Username: "alice"}

	tests := []struct {
		name      string
		duration  int
		moves     int
		repoErr   error
		wantErr   error
		wantCalls int
	}{
		{
			name:      "success",
			duration:  45,
			moves:     2,
			wantCalls: 1,
		},
		{
			name:     "moves above ceiling rejected before repo",
			duration: 45,
			moves:    6,
			wantErr:  repositories.ErrInvalidGuess,
		},
		{
			name:     "negative moves rejected",
			duration: 45,
			moves:    -1,
			wantErr:  repositories.ErrInvalidGuess,
		},
		{
			name:     "zero duration rejected",
			duration: 0,
			moves:    1,
			wantErr:  repositories.ErrInvalidGuess,
		},
		{
			name:      "unresolved location surfaces",
			duration:  45,
			moves:     2,
			repoErr:   repositories.ErrLocationUnresolved,
			wantErr:   repositories.ErrLocationUnresolved,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := &models.User{ID: 1, TelegramID: "42", Username: "alice", Games: 1, TotalScore: 180}
			guessRepo := &fakeGuessRepo{
				guess: &models.Guess{
					ID: 7, UserID: 1, LocationID: 3,
					DistanceError: 250.5, Score: 180, Duration: tt.duration, MovesUsed: tt.moves,
				},
				err: tt.repoErr,
			}
			userRepo := &fakeUserRepo{users: map[int64]*models.User{1: updated}}
			s := NewGuessService(guessRepo, userRepo)

			result, err := s.SubmitGuess(context.Background(), player, 3, 48.85, 2.35, tt.duration, tt.moves)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SubmitGuess() error = %v, want %v", err, tt.wantErr)
				}
				if guessRepo.createCalls != tt.wantCalls {
					t.Errorf("createCalls = %d, want %d", guessRepo.createCalls, tt.wantCalls)
				}
				return
			}

			if err != nil {
				t.Fatalf("SubmitGuess() error = %v", err)
			}
			if result.DistanceError != 250.5 || result.Score != 180 {
				t.Errorf("result = %+v", result)
			}
			if result.User != updated {
				t.Error("result.User is not the reloaded player")
			}
		})
	}
}

func TestGuessServiceDeleteGuess(t *testing.T) {
	guessRepo := &fakeGuessRepo{}
	s := NewGuessService(guessRepo, &fakeUserRepo{})

	if err := s.DeleteGuess(context.Background(), 7); err != nil {
		t.Fatalf("DeleteGuess() error = %v", err)
	}
	if guessRepo.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1", guessRepo.deleteCalls)
	}
}
