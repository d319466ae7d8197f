package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/peerfeed/internal/models"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
)

func TestUserServiceListIncludesReceivedFeedback(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	alice := createUser(t, svc.store, "alice", models.RoleManager)
	bob := createUser(t, svc.store, "bob", "")

	_, err := svc.feedback.Create(ctx, Caller{UserID: alice.ID}, CreateFeedbackInput{
		ReceiverID: bob.ID, Strengths: "s", AreasToImprove: "a", Sentiment: "positive",
	})
	require.NoError(t, err)

	users, err := svc.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, models.RoleManager, users[0].Role)
	require.NotNil(t, users[0].FeedbackReceived)
	require.Empty(t, users[0].FeedbackReceived)
	require.Len(t, users[1].FeedbackReceived, 1)
	require.Equal(t, "positive", users[1].FeedbackReceived[0].Sentiment)

	team, err := svc.users.Team(ctx)
	require.NoError(t, err)
	require.Len(t, team, 2)
}

func TestUserServiceGet(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	user := createUser(t, svc.store, "alice", "")

	dto, err := svc.users.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", dto.Email)

	_, err = svc.users.Get(context.Background(), 404)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserServicePartialUpdate(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	user := createUser(t, svc.store, "alice", "")

	updated, err := svc.users.Update(ctx, user.ID, UpdateUserInput{Email: strPtr("new@example.com")})
	require.NoError(t, err)
	require.Equal(t, "alice", updated.Username)
	require.Equal(t, "new@example.com", updated.Email)

	updated, err = svc.users.Update(ctx, user.ID, UpdateUserInput{Username: strPtr("alicia")})
	require.NoError(t, err)
	require.Equal(t, "alicia", updated.Username)
	require.Equal(t, "new@example.com", updated.Email)

	unchanged, err := svc.users.Update(ctx, user.ID, UpdateUserInput{})
	require.NoError(t, err)
	require.Equal(t, "alicia", unchanged.Username)
}

func TestUserServiceUpdateErrors(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	alice := createUser(t, svc.store, "alice", "")
	createUser(t, svc.store, "bob", "")

	_, err := svc.users.Update(ctx, 404, UpdateUserInput{Username: strPtr("x")})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.users.Update(ctx, alice.ID, UpdateUserInput{Username: strPtr("bob")})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.users.Update(ctx, alice.ID, UpdateUserInput{Email: strPtr("  ")})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}
