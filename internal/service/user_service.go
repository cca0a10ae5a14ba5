package service

import (
	"context"

	"pinboard/internal/models"
	"pinboard/internal/repository"
	"pinboard/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements registration and authentication on top of the user
// repository and the bcrypt hash primitive.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// invalidCredentials is returned for both an unknown username and a wrong
// password so the response shape cannot be used to enumerate usernames.
func invalidCredentials() error {
	return models.NewUnauthorizedError("Invalid username or password")
}

// Register validates credentials, hashes the password, and creates the user.
// Length rules run on the plaintext before any hashing work is done.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies the password for the given username and returns the
// user on success.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	return user, nil
}
