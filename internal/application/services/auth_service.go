package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/providers"
	"github.com/oseikb/bookline/internal/domain/repositories"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

const minPasswordLength = 6

// AuthService handles registration, login and bearer-token resolution.
// Tokens are opaque 64-hex strings stored on the user row; a login rotates
// the token, invalidating the previous one.
type AuthService struct {
	users      repositories.UserRepository
	clock      providers.Clock
	bcryptCost int
}

// NewAuthService creates a new auth service.
func NewAuthService(users repositories.UserRepository, clock providers.Clock, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		clock:      clock,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user with the default role. Emails are normalized to
// lower case; a duplicate email is a conflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid email")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 6 characters")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("email already registered")
	} else if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []string{entities.RoleUser},
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and rotates the user's API token. Bad email and
// bad password produce the same answer.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, "", apperrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	token, err := newToken()
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to generate token", err)
	}
	if err := s.users.UpdateToken(ctx, user.ID, token); err != nil {
		return nil, "", err
	}

	user.APIToken = token
	return user, token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("missing token")
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid token")
		}
		return nil, err
	}
	return user, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
