package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/peerfeed/internal/models"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
)

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()

	registered, err := svc.auth.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.AccessToken)
	require.Equal(t, "alice", registered.User.Username)
	require.Equal(t, models.RoleEmployee, registered.User.Role)

	stored, err := svc.store.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotEqual(t, "password123", stored.PasswordHash)

	loggedIn, err := svc.auth.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, loggedIn.User.ID)

	claims, err := svc.auth.jwt.ValidateAccessToken(loggedIn.AccessToken)
	require.NoError(t, err)
	uid, err := claims.ParsedUserID()
	require.NoError(t, err)

	profile, err := svc.auth.Profile(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", profile.Email)
}

func TestAuthServiceRegisterConflicts(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()

	_, err := svc.auth.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.auth.Register(ctx, RegisterInput{Username: "bob", Email: "other@example.com", Password: "pw"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "Username already exists", apperrors.FromError(err).Message)

	_, err = svc.auth.Register(ctx, RegisterInput{Username: "bobby", Email: "bob@example.com", Password: "pw"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "Email already exists", apperrors.FromError(err).Message)

	count, err := svc.store.Users().Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "a@example.com", Password: "pw"},
		{Username: "a", Password: "pw"},
		{Username: "a", Email: "a@example.com"},
		{Username: "a", Email: "a@example.com", Password: "pw", Role: "admin"},
	}
	for _, input := range cases {
		_, err := svc.auth.Register(ctx, input)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestAuthServiceRegisterManagerAssignment(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()

	manager := createUser(t, svc.store, "boss", models.RoleManager)
	peer := createUser(t, svc.store, "peer", models.RoleEmployee)

	withManager, err := svc.auth.Register(ctx, RegisterInput{
		Username: "report", Email: "report@example.com", Password: "pw", ManagerID: &manager.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, withManager.User.ManagerID)
	require.Equal(t, manager.ID, *withManager.User.ManagerID)

	notManager, err := svc.auth.Register(ctx, RegisterInput{
		Username: "report2", Email: "report2@example.com", Password: "pw", ManagerID: &peer.ID,
	})
	require.NoError(t, err)
	require.Nil(t, notManager.User.ManagerID)

	unknown, err := svc.auth.Register(ctx, RegisterInput{
		Username: "report3", Email: "report3@example.com", Password: "pw", ManagerID: uintPtr(999),
	})
	require.NoError(t, err)
	require.Nil(t, unknown.User.ManagerID)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()

	_, err := svc.auth.Register(ctx, RegisterInput{Username: "carol", Email: "carol@example.com", Password: "right"})
	require.NoError(t, err)

	_, err = svc.auth.Login(ctx, "carol", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.auth.Login(ctx, "nobody", "right")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.auth.Login(ctx, "", "right")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthServiceProfileMissingUser(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())

	_, err := svc.auth.Profile(context.Background(), 42)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
