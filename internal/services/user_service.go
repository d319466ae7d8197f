package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/peerfeed/internal/repository"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = apperrors.NewNotFound("User not found")

// UpdateUserInput enumerates mutable user attributes. Nil fields are left untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
}

// UserService exposes user listings and profile updates.
type UserService struct {
	store repository.Store
}

// NewUserService constructs a UserService instance.
func NewUserService(store repository.Store) (*UserService, error) {
	if store == nil {
		return nil, errors.New("user service: store is required")
	}
	return &UserService{store: store}, nil
}

// List returns every user together with the feedback they received, ascending by id.
func (s *UserService) List(ctx context.Context) ([]UserWithFeedbackDTO, error) {
	ctx = ensureContext(ctx)

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}

	ids := make([]uint, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	received, err := s.store.Feedback().ListByReceivers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("user service: list received feedback: %w", err)
	}

	byReceiver := make(map[uint][]ReceivedFeedbackDTO, len(users))
	for _, row := range received {
		byReceiver[row.ReceiverID] = append(byReceiver[row.ReceiverID], ReceivedFeedbackDTO{
			ID:             row.ID,
			Strengths:      row.Strengths,
			AreasToImprove: row.AreasToImprove,
			Sentiment:      row.Sentiment,
			CreatedAt:      row.CreatedAt,
		})
	}

	out := make([]UserWithFeedbackDTO, 0, len(users))
	for _, user := range users {
		feedback := byReceiver[user.ID]
		if feedback == nil {
			feedback = []ReceivedFeedbackDTO{}
		}
		out = append(out, UserWithFeedbackDTO{UserDTO: mapUser(user), FeedbackReceived: feedback})
	}
	return out, nil
}

// Team returns the public projection of every user.
func (s *UserService) Team(ctx context.Context) ([]UserDTO, error) {
	ctx = ensureContext(ctx)

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("user service: list team: %w", err)
	}
	return mapUsers(users), nil
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	dto := mapUser(*user)
	return &dto, nil
}

// Update applies a partial username/email change. Uniqueness is left to the database.
func (s *UserService) Update(ctx context.Context, id uint, input UpdateUserInput) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	if _, err := s.store.Users().FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	updates := make(map[string]any)
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.NewValidation("Username cannot be empty")
		}
		updates["username"] = username
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, apperrors.NewValidation("Email cannot be empty")
		}
		updates["email"] = email
	}

	if err := s.store.Users().Update(ctx, id, updates); err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Username or email already exists")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return s.Get(ctx, id)
}
