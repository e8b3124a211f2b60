package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAdmin           = errors.New("administrator access required")
	ErrUserNotFound       = errorNotFound("user")
)

// AuthService handles administrator authentication
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenIssuer
	email    *EmailService
}

// NewAuthService creates a new auth service. email may be nil.
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, email *EmailService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		email:    email,
	}
}

// AddAdmin creates an administrator account
func (s *AuthService) AddAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, strings.TrimSpace(name), true)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.email != nil {
		if err := s.email.SendAdminWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			// Log but don't fail - the account exists either way
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, nil
}

// Login checks an administrator's password and issues a bearer token
func (s *AuthService) Login(email, password string) (*models.AuthToken, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsAdmin {
		return nil, nil, ErrNotAdmin
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}

// Authenticate verifies a bearer token and returns the administrator it names
func (s *AuthService) Authenticate(token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(claims.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, security.ErrInvalidToken
	}
	if !user.IsAdmin {
		return nil, ErrNotAdmin
	}
	return user, nil
}

// ChangePassword sets a new password for a user
func (s *AuthService) ChangePassword(userID int64, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(userID, passwordHash)
}

// ListAdmins returns every account
func (s *AuthService) ListAdmins() ([]models.User, error) {
	return s.userRepo.GetAllUsers()
}

// HasAdmins reports whether at least one account exists
func (s *AuthService) HasAdmins() (bool, error) {
	count, err := s.userRepo.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
