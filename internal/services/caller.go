package services

import (
	"context"

	"github.com/charlesng35/peerfeed/internal/repository"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
)

// Caller identifies who is performing a mutating operation. A zero UserID means the
// request was not authenticated.
type Caller struct {
	UserID uint
}

// Anonymous reports whether no authenticated user is attached.
func (c Caller) Anonymous() bool {
	return c.UserID == 0
}

// IdentityPolicy decides which user acts when a payload does not name one.
type IdentityPolicy struct {
	// PlaceholderUserID stands in for anonymous callers. Zero disables the fallback.
	PlaceholderUserID uint
	// RequireIdentity rejects anonymous mutations instead of using the placeholder.
	RequireIdentity bool
}

// DefaultIdentityPolicy falls back to the first user.
func DefaultIdentityPolicy() IdentityPolicy {
	return IdentityPolicy{PlaceholderUserID: 1}
}

// resolve picks explicit, then the caller, then the placeholder, and verifies the
// chosen user exists. role names the field in error messages.
func (p IdentityPolicy) resolve(ctx context.Context, users repository.UserRepository, explicit *uint, caller Caller, role string) (uint, error) {
	var id uint
	switch {
	case explicit != nil && *explicit != 0:
		id = *explicit
	case !caller.Anonymous():
		id = caller.UserID
	case p.RequireIdentity || p.PlaceholderUserID == 0:
		return 0, apperrors.NewValidation("Authentication required to identify the " + role)
	default:
		id = p.PlaceholderUserID
	}

	if _, err := users.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return 0, apperrors.NewValidation("Unknown " + role)
		}
		return 0, err
	}
	return id, nil
}
