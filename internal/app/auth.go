/**
 * @description
 * Registration and login. Passwords are hashed with bcrypt; a successful
 * login issues a signed JWT whose subject is the user ID. Token parsing
 * lives in the API middleware.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// AuthStore defines the database operations the auth service needs.
type AuthStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthService handles registration and login.
type AuthService struct {
	store     AuthStore
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store AuthStore, jwtSecret string, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  72 * time.Hour,
		logger:    logger,
	}
}

// Register creates a user on the free tier.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" || len(password) < 8 {
		return nil, fmt.Errorf("email, username and a password of at least 8 characters are required: %w", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:                 uuid.NewString(),
		Email:              email,
		Username:           username,
		PasswordHash:       string(hash),
		SubscriptionStatus: domain.StatusFree,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("wrong password: %w", domain.ErrValidation)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}
