package services

import (
	"context"
	"fmt"

	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/interfaces"
)

type userService struct {
	userRepo interfaces.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo interfaces.UserRepository) interfaces.UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetOrCreateUser returns the user, creating the record on first contact.
// A changed username is written back.
func (s *userService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*entities.User, error) {
	if discordID <= 0 {
		return nil, errs.BadRequest("invalid discord id %d", discordID)
	}

	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, errs.Storage("get user", err)
	}
	if user != nil && (username == "" || user.Username == username) {
		return user, nil
	}

	if username == "" {
		username = fmt.Sprintf("user-%d", discordID)
	}
	user, err = s.userRepo.Upsert(ctx, discordID, username)
	if err != nil {
		return nil, errs.Storage("save user", err)
	}
	return user, nil
}
