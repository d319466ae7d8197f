package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/database/testutil"
	"github.com/charlesng35/peerfeed/internal/models"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/repository"
)

type testServices struct {
	store         *repository.GormStore
	auth          *AuthService
	users         *UserService
	feedback      *FeedbackService
	notifications *NotificationService
}

func newTestServices(t *testing.T, policy IdentityPolicy) testServices {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := repository.NewGormStore(db)
	require.NoError(t, err)

	hub := realtime.NewHub()
	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "peerfeed-test"})
	require.NoError(t, err)

	notifications, err := NewNotificationService(store, hub)
	require.NoError(t, err)
	authSvc, err := NewAuthService(store, jwt)
	require.NoError(t, err)
	users, err := NewUserService(store)
	require.NoError(t, err)
	feedback, err := NewFeedbackService(store, notifications, hub, policy)
	require.NoError(t, err)

	return testServices{
		store:         store,
		auth:          authSvc,
		users:         users,
		feedback:      feedback,
		notifications: notifications,
	}
}

func createUser(t *testing.T, store repository.Store, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-hash",
		Role:         role,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }
