package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/charlesng35/peerfeed/internal/database/testutil"
	"github.com/charlesng35/peerfeed/internal/models"
)

func newStore(t *testing.T) *GormStore {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewGormStore(db)
	require.NoError(t, err)
	return store
}

func seedUser(t *testing.T, store Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestNewGormStoreRequiresDB(t *testing.T) {
	_, err := NewGormStore(nil)
	require.Error(t, err)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	require.Equal(t, models.RoleEmployee, alice.Role)

	found, err := store.Users().FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, bob.ID, found.ID)

	_, err = store.Users().FindByID(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := store.Users().UsernameExists(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = store.Users().EmailExists(ctx, "carol@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	count, err := store.Users().Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, store.Users().Update(ctx, alice.ID, map[string]any{"email": "a@example.com"}))
	updated, err := store.Users().FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", updated.Email)
	require.Equal(t, "alice", updated.Username)

	byIDs, err := store.Users().ListByIDs(ctx, []uint{bob.ID, alice.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	require.Equal(t, alice.ID, byIDs[0].ID)
}

func TestFeedbackRepositoryRecentAndCounts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	giver := seedUser(t, store, "giver")
	receiver := seedUser(t, store, "receiver")

	sentiments := []string{"positive", "positive", "negative", "", "positive", "neutral", "negative"}
	for _, sentiment := range sentiments {
		require.NoError(t, store.Feedback().Create(ctx, &models.Feedback{
			GiverID:        giver.ID,
			ReceiverID:     receiver.ID,
			Strengths:      "s",
			AreasToImprove: "a",
			Sentiment:      sentiment,
			Tags:           datatypes.JSONSlice[string]{"go"},
		}))
	}

	recent, err := store.Feedback().ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	require.Less(t, recent[0].ID, recent[4].ID)
	require.EqualValues(t, 3, recent[0].ID)

	counts, err := store.Feedback().CountBySentiment(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, counts["positive"])
	require.EqualValues(t, 2, counts["neutral"])
	require.EqualValues(t, 2, counts["negative"])

	all, err := store.Feedback().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(sentiments))
	require.Equal(t, []string{"go"}, []string(all[0].Tags))

	received, err := store.Feedback().ListByReceivers(ctx, []uint{giver.ID})
	require.NoError(t, err)
	require.Empty(t, received)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store, "alice")

	sentinel := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.Notifications().Create(ctx, &models.Notification{
			UserID: user.ID, Title: "t", Message: "m",
		}))
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	rows, err := store.Notifications().List(ctx, NotificationFilter{})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	first := &models.Notification{UserID: alice.ID, Title: "one", Message: "m"}
	second := &models.Notification{UserID: bob.ID, Title: "two", Message: "m", Type: models.NotificationRequest}
	require.NoError(t, store.Notifications().Create(ctx, first))
	require.NoError(t, store.Notifications().Create(ctx, second))
	require.Equal(t, models.NotificationGeneral, first.Type)

	rows, err := store.Notifications().List(ctx, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, second.ID, rows[0].ID)

	rows, err = store.Notifications().List(ctx, NotificationFilter{UserID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	now := time.Now().UTC()
	require.NoError(t, store.Notifications().MarkRead(ctx, first.ID, now))
	require.ErrorIs(t, store.Notifications().MarkRead(ctx, 999, now), ErrNotFound)

	rows, err = store.Notifications().List(ctx, NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, second.ID, rows[0].ID)

	deleted, err := store.Notifications().DeleteReadBefore(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}

func TestCommentsAndRequests(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	feedback := &models.Feedback{GiverID: alice.ID, ReceiverID: bob.ID, Strengths: "s", AreasToImprove: "a"}
	require.NoError(t, store.Feedback().Create(ctx, feedback))
	require.Equal(t, models.SentimentNeutral, feedback.Sentiment)

	for _, content := range []string{"first", "second"} {
		require.NoError(t, store.Comments().Create(ctx, &models.Comment{FeedbackID: feedback.ID, UserID: bob.ID, Content: content}))
	}
	comments, err := store.Comments().ListByFeedback(ctx, feedback.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "first", comments[0].Content)

	require.NoError(t, store.Requests().Create(ctx, &models.FeedbackRequest{RequesterID: alice.ID, ReceiverID: bob.ID}))
	requests, err := store.Requests().List(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, models.PriorityMedium, requests[0].Priority)
	require.Nil(t, requests[0].DueDate)

	require.NoError(t, store.Ping(ctx))
}
