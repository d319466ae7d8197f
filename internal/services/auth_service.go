package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/models"
	"github.com/charlesng35/peerfeed/internal/repository"
	"github.com/charlesng35/peerfeed/pkg/crypto"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
	"github.com/charlesng35/peerfeed/pkg/logger"
	"github.com/charlesng35/peerfeed/pkg/metrics"
)

// RegisterInput carries the fields accepted by Register.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Role      string
	ManagerID *uint
}

// AuthResult is returned after a successful login or registration.
type AuthResult struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

// AuthService registers users, checks credentials and issues access tokens.
type AuthService struct {
	store repository.Store
	jwt   *auth.JWTService
	log   *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(store repository.Store, jwt *auth.JWTService) (*AuthService, error) {
	if store == nil {
		return nil, errors.New("auth service: store is required")
	}
	if jwt == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	return &AuthService{store: store, jwt: jwt, log: logger.WithModule("auth")}, nil
}

// Register creates a user account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (result *AuthResult, err error) {
	ctx = ensureContext(ctx)
	defer func() { recordAuthAttempt("register", err) }()

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidation("Missing required fields")
	}

	role := strings.ToLower(strings.TrimSpace(defaultIfEmpty(input.Role, models.RoleEmployee)))
	if !models.ValidRole(role) {
		return nil, apperrors.NewValidation("Invalid role")
	}

	users := s.store.Users()
	if exists, err := users.UsernameExists(ctx, username); err != nil {
		return nil, fmt.Errorf("auth service: check username: %w", err)
	} else if exists {
		return nil, apperrors.NewConflict("Username already exists")
	}
	if exists, err := users.EmailExists(ctx, email); err != nil {
		return nil, fmt.Errorf("auth service: check email: %w", err)
	} else if exists {
		return nil, apperrors.NewConflict("Email already exists")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}

	if input.ManagerID != nil && *input.ManagerID != 0 {
		manager, err := users.FindByID(ctx, *input.ManagerID)
		switch {
		case err == nil && manager.IsManager():
			user.ManagerID = &manager.ID
		case err != nil && !isNotFound(err):
			return nil, fmt.Errorf("auth service: load manager: %w", err)
		}
	}

	if err := users.Create(ctx, user); err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Username or email already exists")
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return s.issue(user)
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (result *AuthResult, err error) {
	ctx = ensureContext(ctx)
	defer func() { recordAuthAttempt("login", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidation("Username and password are required")
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Profile returns the user embedded in a validated token.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth service: load profile: %w", err)
	}
	dto := mapUser(*user)
	return &dto, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("auth service: issue token: %w", err)
	}
	return &AuthResult{AccessToken: token, User: mapUser(*user)}, nil
}

func recordAuthAttempt(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthAttempts.WithLabelValues(operation, result).Inc()
}
