package services

import (
	"context"
	"fmt"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
)

// UserService exposes the player profile to the routing layer. The chat
// identity arrives already authenticated; the core trusts it and registers
// the player on first sight.
type UserService struct {
	userRepo        repositories.UserRepository
	dailyMovesLimit int
}

func NewUserService(userRepo repositories.UserRepository, dailyMovesLimit int) *UserService {
	return &UserService{
		userRepo:        userRepo,
		dailyMovesLimit: dailyMovesLimit,
	}
}

// GetProfile returns the player's profile and running statistics, creating
// the player with a full daily move allowance on first authentication.
func (s *UserService) GetProfile(ctx context.Context, telegramID, username string) (*models.User, error) {
	user, err := s.userRepo.GetOrCreate(ctx, telegramID, username, s.dailyMovesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}
