package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/peerfeed/internal/models"
	"github.com/charlesng35/peerfeed/internal/repository"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
)

func TestFeedbackCreateNotifiesReceiver(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	giver := createUser(t, svc.store, "giver", "")
	receiver := createUser(t, svc.store, "receiver", "")

	feedback, err := svc.feedback.Create(ctx, Caller{UserID: giver.ID}, CreateFeedbackInput{
		ReceiverID:     receiver.ID,
		Strengths:      "Clear communication",
		AreasToImprove: "Delegation",
		Sentiment:      "positive",
		Tags:           []string{" teamwork ", "", "go"},
	})
	require.NoError(t, err)
	require.Equal(t, giver.ID, feedback.GiverID)
	require.Equal(t, []string{"teamwork", "go"}, []string(feedback.Tags))

	notifications, err := svc.notifications.List(ctx, ListNotificationsInput{UserID: &receiver.ID})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationFeedback, notifications[0].Type)
	require.Equal(t, "New Feedback Received", notifications[0].Title)
	require.Equal(t, "You have received new positive feedback", notifications[0].Message)
	require.False(t, notifications[0].Read)
}

func TestFeedbackCreateValidation(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	giver := createUser(t, svc.store, "giver", "")
	receiver := createUser(t, svc.store, "receiver", "")
	caller := Caller{UserID: giver.ID}

	cases := map[string]CreateFeedbackInput{
		"missing receiver":  {Strengths: "s", AreasToImprove: "a"},
		"missing strengths": {ReceiverID: receiver.ID, AreasToImprove: "a"},
		"missing areas":     {ReceiverID: receiver.ID, Strengths: "s"},
		"bad sentiment":     {ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a", Sentiment: "ecstatic"},
		"unknown receiver":  {ReceiverID: 999, Strengths: "s", AreasToImprove: "a"},
		"unknown giver":     {GiverID: uintPtr(999), ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.feedback.Create(ctx, caller, input)
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	total, err := svc.store.Feedback().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, total)

	notifications, err := svc.notifications.List(ctx, ListNotificationsInput{})
	require.NoError(t, err)
	require.Empty(t, notifications)
}

func TestFeedbackCreateDefaultsSentimentAndUsesPlaceholder(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	first := createUser(t, svc.store, "first", "")
	receiver := createUser(t, svc.store, "receiver", "")

	feedback, err := svc.feedback.Create(ctx, Caller{}, CreateFeedbackInput{
		ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, feedback.GiverID)
	require.Equal(t, models.SentimentNeutral, feedback.Sentiment)
	require.Empty(t, feedback.Tags)
}

func TestFeedbackCreateExplicitGiverWins(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	caller := createUser(t, svc.store, "caller", "")
	explicit := createUser(t, svc.store, "explicit", "")
	receiver := createUser(t, svc.store, "receiver", "")

	feedback, err := svc.feedback.Create(ctx, Caller{UserID: caller.ID}, CreateFeedbackInput{
		GiverID: &explicit.ID, ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a",
	})
	require.NoError(t, err)
	require.Equal(t, explicit.ID, feedback.GiverID)
}

func TestRequireIdentityRejectsAnonymousMutations(t *testing.T) {
	svc := newTestServices(t, IdentityPolicy{PlaceholderUserID: 1, RequireIdentity: true})
	ctx := context.Background()
	createUser(t, svc.store, "first", "")
	receiver := createUser(t, svc.store, "receiver", "")

	_, err := svc.feedback.Create(ctx, Caller{}, CreateFeedbackInput{
		ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a",
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.feedback.RequestFeedback(ctx, Caller{}, RequestFeedbackInput{ReceiverID: receiver.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	feedback, err := svc.feedback.Create(ctx, Caller{UserID: receiver.ID}, CreateFeedbackInput{
		ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a",
	})
	require.NoError(t, err)

	_, err = svc.feedback.AddComment(ctx, Caller{}, AddCommentInput{FeedbackID: feedback.ID, Content: "hi"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestFeedbackCreateRollsBackWhenNotificationFails(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	giver := createUser(t, svc.store, "giver", "")
	receiver := createUser(t, svc.store, "receiver", "")

	failing := &failingNotificationStore{Store: svc.store}
	notifications, err := NewNotificationService(failing, nil)
	require.NoError(t, err)
	feedbackSvc, err := NewFeedbackService(failing, notifications, nil, DefaultIdentityPolicy())
	require.NoError(t, err)

	_, err = feedbackSvc.Create(ctx, Caller{UserID: giver.ID}, CreateFeedbackInput{
		ReceiverID: receiver.ID, Strengths: "s", AreasToImprove: "a",
	})
	require.ErrorIs(t, err, errNotificationInsert)

	total, err := svc.store.Feedback().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestFeedbackListIncludesNamesAndComments(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	alice := createUser(t, svc.store, "alice", "")
	bob := createUser(t, svc.store, "bob", "")

	first, err := svc.feedback.Create(ctx, Caller{UserID: alice.ID}, CreateFeedbackInput{
		ReceiverID: bob.ID, Strengths: "s1", AreasToImprove: "a1",
	})
	require.NoError(t, err)
	_, err = svc.feedback.Create(ctx, Caller{UserID: bob.ID}, CreateFeedbackInput{
		ReceiverID: alice.ID, Strengths: "s2", AreasToImprove: "a2",
	})
	require.NoError(t, err)

	_, err = svc.feedback.AddComment(ctx, Caller{UserID: bob.ID}, AddCommentInput{FeedbackID: first.ID, Content: "thanks"})
	require.NoError(t, err)
	_, err = svc.feedback.AddComment(ctx, Caller{}, AddCommentInput{FeedbackID: first.ID, AuthorID: &alice.ID, Content: "welcome"})
	require.NoError(t, err)

	list, err := svc.feedback.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, "alice", list[0].GiverName)
	require.Equal(t, "bob", list[0].ReceiverName)
	require.Len(t, list[0].Comments, 2)
	require.Equal(t, "bob", list[0].Comments[0].AuthorName)
	require.Equal(t, "welcome", list[0].Comments[1].Content)
	require.NotNil(t, list[1].Comments)
	require.Empty(t, list[1].Comments)
}

func TestDashboardCountsRecentAndTruncation(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	giver := createUser(t, svc.store, "giver", "")
	receiver := createUser(t, svc.store, "receiver", "")

	long := strings.Repeat("x", 150)
	sentiments := []string{"positive", "positive", "neutral", "negative", "positive", "neutral", "positive"}
	var ids []uint
	for i, sentiment := range sentiments {
		strengths := "short"
		if i == len(sentiments)-1 {
			strengths = long
		}
		feedback, err := svc.feedback.Create(ctx, Caller{UserID: giver.ID}, CreateFeedbackInput{
			ReceiverID: receiver.ID, Strengths: strengths, AreasToImprove: "a", Sentiment: sentiment,
		})
		require.NoError(t, err)
		ids = append(ids, feedback.ID)
	}

	_, err := svc.feedback.RequestFeedback(ctx, Caller{UserID: receiver.ID}, RequestFeedbackInput{ReceiverID: giver.ID})
	require.NoError(t, err)

	dashboard, err := svc.feedback.Dashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 7, dashboard.TotalFeedback)
	require.Equal(t, SentimentCounts{Positive: 4, Neutral: 2, Negative: 1}, dashboard.SentimentCounts)
	require.EqualValues(t, 2, dashboard.TeamSize)

	require.Len(t, dashboard.RecentFeedback, 5)
	for i, item := range dashboard.RecentFeedback {
		require.Equal(t, ids[2+i], item.ID)
		require.Equal(t, "giver", item.GiverName)
	}
	last := dashboard.RecentFeedback[4]
	require.Equal(t, strings.Repeat("x", 100)+"...", last.Strengths)

	require.Len(t, dashboard.FeedbackRequests, 1)
	require.Equal(t, "receiver", dashboard.FeedbackRequests[0].RequesterName)
	require.Equal(t, "giver", dashboard.FeedbackRequests[0].ReceiverName)
}

func TestDashboardEmpty(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())

	dashboard, err := svc.feedback.Dashboard(context.Background())
	require.NoError(t, err)
	require.Zero(t, dashboard.TotalFeedback)
	require.Equal(t, SentimentCounts{}, dashboard.SentimentCounts)
	require.NotNil(t, dashboard.RecentFeedback)
	require.NotNil(t, dashboard.FeedbackRequests)
}

func TestRequestFeedback(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	requester := createUser(t, svc.store, "requester", "")
	receiver := createUser(t, svc.store, "receiver", "")

	request, err := svc.feedback.RequestFeedback(ctx, Caller{UserID: requester.ID}, RequestFeedbackInput{
		ReceiverID: receiver.ID,
		Message:    "How did the launch go?",
		Tags:       []string{"launch"},
		Priority:   "high",
		DueDate:    "2024-05-01T10:30:00",
	})
	require.NoError(t, err)
	require.Equal(t, models.PriorityHigh, request.Priority)
	require.NotNil(t, request.DueDate)
	require.Equal(t, 2024, request.DueDate.Year())

	notifications, err := svc.notifications.List(ctx, ListNotificationsInput{UserID: &receiver.ID})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationRequest, notifications[0].Type)
	require.Equal(t, "Feedback Request", notifications[0].Title)
	require.Equal(t, "requester has requested feedback from you", notifications[0].Message)

	requests, err := svc.feedback.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "requester", requests[0].RequesterName)
	require.Equal(t, []string{"launch"}, requests[0].Tags)
}

func TestRequestFeedbackValidation(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	requester := createUser(t, svc.store, "requester", "")
	receiver := createUser(t, svc.store, "receiver", "")
	caller := Caller{UserID: requester.ID}

	cases := map[string]RequestFeedbackInput{
		"missing receiver": {},
		"unknown receiver": {ReceiverID: 404},
		"bad priority":     {ReceiverID: receiver.ID, Priority: "urgent"},
		"bad due date":     {ReceiverID: receiver.ID, DueDate: "next tuesday"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.feedback.RequestFeedback(ctx, caller, input)
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	request, err := svc.feedback.RequestFeedback(ctx, caller, RequestFeedbackInput{ReceiverID: receiver.ID})
	require.NoError(t, err)
	require.Equal(t, models.PriorityMedium, request.Priority)
	require.Nil(t, request.DueDate)
}

func TestAddCommentErrors(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	user := createUser(t, svc.store, "user", "")

	_, err := svc.feedback.AddComment(ctx, Caller{UserID: user.ID}, AddCommentInput{FeedbackID: 99, Content: "hello"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.feedback.AddComment(ctx, Caller{UserID: user.ID}, AddCommentInput{FeedbackID: 99, Content: "  "})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExportRendersReport(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	alice := createUser(t, svc.store, "alice", "")
	bob := createUser(t, svc.store, "bob", "")

	feedback, err := svc.feedback.Create(ctx, Caller{UserID: alice.ID}, CreateFeedbackInput{
		ReceiverID: bob.ID, Strengths: "Great demos", AreasToImprove: "Docs", Sentiment: "positive",
		Tags: []string{"demo", "docs"},
	})
	require.NoError(t, err)
	_, err = svc.feedback.AddComment(ctx, Caller{UserID: bob.ID}, AddCommentInput{FeedbackID: feedback.ID, Content: "Thanks!"})
	require.NoError(t, err)

	export, err := svc.feedback.Export(ctx, feedback.ID)
	require.NoError(t, err)
	require.Equal(t, "feedback-1.txt", export.Filename)
	require.Contains(t, export.Content, "From: alice\n")
	require.Contains(t, export.Content, "To: bob\n")
	require.Contains(t, export.Content, "Date: "+feedback.CreatedAt.Format("2006-01-02"))
	require.Contains(t, export.Content, "Sentiment: positive\n")
	require.Contains(t, export.Content, "Tags: demo, docs\n")
	require.Contains(t, export.Content, "Content:\nGreat demos\n")
	require.Contains(t, export.Content, "Areas to Improve:\nDocs\n")
	require.Contains(t, export.Content, "\n- bob: Thanks!")

	plain, err := svc.feedback.Create(ctx, Caller{UserID: alice.ID}, CreateFeedbackInput{
		ReceiverID: bob.ID, Strengths: "s", AreasToImprove: "a",
	})
	require.NoError(t, err)
	export, err = svc.feedback.Export(ctx, plain.ID)
	require.NoError(t, err)
	require.Contains(t, export.Content, "Tags: None\n")

	_, err = svc.feedback.Export(ctx, 404)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFilterByTags(t *testing.T) {
	svc := newTestServices(t, DefaultIdentityPolicy())
	ctx := context.Background()
	alice := createUser(t, svc.store, "alice", "")
	bob := createUser(t, svc.store, "bob", "")

	tagSets := [][]string{{"go", "api"}, {"design"}, {"api"}, nil}
	for _, tags := range tagSets {
		_, err := svc.feedback.Create(ctx, Caller{UserID: alice.ID}, CreateFeedbackInput{
			ReceiverID: bob.ID, Strengths: "s", AreasToImprove: "a", Tags: tags,
		})
		require.NoError(t, err)
	}

	matched, err := svc.feedback.FilterByTags(ctx, " api , ,design")
	require.NoError(t, err)
	require.Len(t, matched, 3)
	require.EqualValues(t, 1, matched[0].ID)
	require.EqualValues(t, 2, matched[1].ID)
	require.EqualValues(t, 3, matched[2].ID)
	require.Equal(t, "alice", matched[0].GiverName)

	matched, err = svc.feedback.FilterByTags(ctx, "rust")
	require.NoError(t, err)
	require.Empty(t, matched)

	_, err = svc.feedback.FilterByTags(ctx, " , ")
	require.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.feedback.FilterByTags(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

var errNotificationInsert = errors.New("notification insert failed")

type failingNotificationStore struct {
	repository.Store
}

func (s *failingNotificationStore) Notifications() repository.NotificationRepository {
	return failingNotifications{NotificationRepository: s.Store.Notifications()}
}

func (s *failingNotificationStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&failingNotificationStore{Store: tx})
	})
}

type failingNotifications struct {
	repository.NotificationRepository
}

func (failingNotifications) Create(context.Context, *models.Notification) error {
	return errNotificationInsert
}
