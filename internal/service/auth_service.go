package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/models"
)

// Register creates a new account and returns a signed token
func (s *service) Register(ctx context.Context, user *models.User, password string) (string, error) {
	if user.Email == "" {
		return "", errors.Wrap(ErrValidation, "email is required")
	}
	if len(password) < 6 {
		return "", errors.Wrap(ErrValidation, "password must be at least 6 characters")
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Role == models.RoleAdmin {
		// Admin accounts are provisioned from the CLI, never self-registered
		return "", errors.Wrap(ErrValidation, "cannot register an admin account")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	user.Password = hash

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return "", translateRepoError(err)
	}

	s.log.WithField("email", user.Email).Info("User registered")

	return s.tokens.IssueToken(user)
}

// Login verifies credentials and returns a signed token
func (s *service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if email == "" || password == "" {
		return "", nil, errors.Wrap(ErrValidation, "email and password are required")
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists
		return "", nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetUser loads an account by id
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return user, nil
}

// ForgotPassword generates a reset token for the account. The plain
// token is returned to the caller for delivery; only its hash is stored.
func (s *service) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", translateRepoError(err)
	}

	plain, hash, err := auth.NewResetToken()
	if err != nil {
		return "", err
	}

	expires := time.Now().Add(auth.ResetTokenTTL)
	user.ResetPasswordToken = hash
	user.ResetPasswordExpires = &expires

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return "", translateRepoError(err)
	}

	s.log.WithField("email", user.Email).Info("Password reset token issued")

	return plain, nil
}

// ResetPassword consumes a reset token and sets a new password,
// returning a fresh signed token
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if len(newPassword) < 6 {
		return "", errors.Wrap(ErrValidation, "password must be at least 6 characters")
	}

	user, err := s.repo.FindUserByResetToken(ctx, auth.HashResetToken(token))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if user.ResetPasswordExpires == nil || time.Now().After(*user.ResetPasswordExpires) {
		return "", ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", err
	}

	user.Password = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return "", translateRepoError(err)
	}

	return s.tokens.IssueToken(user)
}
