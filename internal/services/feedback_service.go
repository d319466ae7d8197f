package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/charlesng35/peerfeed/internal/models"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/repository"
	apperrors "github.com/charlesng35/peerfeed/pkg/errors"
	"github.com/charlesng35/peerfeed/pkg/logger"
	"github.com/charlesng35/peerfeed/pkg/metrics"
)

// ErrFeedbackNotFound indicates the requested feedback does not exist.
var ErrFeedbackNotFound = apperrors.NewNotFound("Feedback not found")

// CreateFeedbackInput carries a feedback submission.
type CreateFeedbackInput struct {
	GiverID        *uint
	ReceiverID     uint
	Strengths      string
	AreasToImprove string
	Sentiment      string
	Tags           []string
}

// RequestFeedbackInput carries a feedback solicitation.
type RequestFeedbackInput struct {
	RequesterID *uint
	ReceiverID  uint
	Message     string
	Tags        []string
	Priority    string
	DueDate     string
}

// AddCommentInput carries a comment on a feedback entry.
type AddCommentInput struct {
	FeedbackID uint
	AuthorID   *uint
	Content    string
}

// FeedbackService implements feedback submission, requests, comments and reporting.
type FeedbackService struct {
	store         repository.Store
	notifications *NotificationService
	hub           *realtime.Hub
	identity      IdentityPolicy
	log           *zap.Logger
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(store repository.Store, notifications *NotificationService, hub *realtime.Hub, identity IdentityPolicy) (*FeedbackService, error) {
	if store == nil {
		return nil, errors.New("feedback service: store is required")
	}
	if notifications == nil {
		return nil, errors.New("feedback service: notification service is required")
	}
	return &FeedbackService{
		store:         store,
		notifications: notifications,
		hub:           hub,
		identity:      identity,
		log:           logger.WithModule("feedback"),
	}, nil
}

// Create stores a feedback entry and notifies the receiver in the same transaction.
func (s *FeedbackService) Create(ctx context.Context, caller Caller, input CreateFeedbackInput) (*models.Feedback, error) {
	ctx = ensureContext(ctx)

	if input.ReceiverID == 0 || strings.TrimSpace(input.Strengths) == "" || strings.TrimSpace(input.AreasToImprove) == "" {
		return nil, apperrors.NewValidation("Missing required fields")
	}

	sentiment := strings.ToLower(strings.TrimSpace(defaultIfEmpty(input.Sentiment, models.SentimentNeutral)))
	if !models.ValidSentiment(sentiment) {
		return nil, apperrors.NewValidation("Invalid sentiment")
	}

	giverID, err := s.identity.resolve(ctx, s.store.Users(), input.GiverID, caller, "giver")
	if err != nil {
		return nil, s.wrap("resolve giver", err)
	}
	if err := s.requireUser(ctx, input.ReceiverID, "receiver"); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		GiverID:        giverID,
		ReceiverID:     input.ReceiverID,
		Strengths:      input.Strengths,
		AreasToImprove: input.AreasToImprove,
		Sentiment:      sentiment,
		Tags:           datatypes.JSONSlice[string](normaliseTags(input.Tags)),
	}

	var notification *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Feedback().Create(ctx, feedback); err != nil {
			return fmt.Errorf("feedback service: create feedback: %w", err)
		}
		var err error
		notification, err = s.notifications.record(ctx, tx, feedback.ReceiverID,
			"New Feedback Received",
			fmt.Sprintf("You have received new %s feedback", sentiment),
			models.NotificationFeedback,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.FeedbackSubmitted.WithLabelValues(sentiment).Inc()
	s.notifications.Publish(notification)
	s.announce(realtime.EventFeedbackCreated, map[string]any{
		"id":          feedback.ID,
		"receiver_id": feedback.ReceiverID,
		"sentiment":   feedback.Sentiment,
	})
	s.log.Info("feedback submitted", zap.Uint("id", feedback.ID), zap.Uint("giver_id", giverID), zap.Uint("receiver_id", feedback.ReceiverID))

	return feedback, nil
}

// List returns all feedback ascending by id, each with its comments.
func (s *FeedbackService) List(ctx context.Context) ([]FeedbackDetailDTO, error) {
	ctx = ensureContext(ctx)

	rows, err := s.store.Feedback().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback service: list feedback: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	comments, err := s.store.Comments().ListByFeedback(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("feedback service: list comments: %w", err)
	}

	names, err := s.usernames(ctx, feedbackParticipants(rows, comments)...)
	if err != nil {
		return nil, err
	}

	byFeedback := make(map[uint][]CommentDTO, len(rows))
	for _, comment := range comments {
		byFeedback[comment.FeedbackID] = append(byFeedback[comment.FeedbackID], mapComment(comment, names))
	}

	out := make([]FeedbackDetailDTO, 0, len(rows))
	for _, row := range rows {
		thread := byFeedback[row.ID]
		if thread == nil {
			thread = []CommentDTO{}
		}
		out = append(out, FeedbackDetailDTO{FeedbackDTO: mapFeedback(row, names), Comments: thread})
	}
	return out, nil
}

// Dashboard aggregates counts, the five most recently inserted entries and all requests.
func (s *FeedbackService) Dashboard(ctx context.Context) (*DashboardDTO, error) {
	ctx = ensureContext(ctx)

	total, err := s.store.Feedback().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback service: count feedback: %w", err)
	}
	counts, err := s.store.Feedback().CountBySentiment(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback service: count sentiments: %w", err)
	}
	teamSize, err := s.store.Users().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback service: count users: %w", err)
	}
	recent, err := s.store.Feedback().ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("feedback service: recent feedback: %w", err)
	}
	requests, err := s.ListRequests(ctx)
	if err != nil {
		return nil, err
	}

	names, err := s.usernames(ctx, feedbackParticipants(recent, nil)...)
	if err != nil {
		return nil, err
	}

	previews := make([]FeedbackDTO, 0, len(recent))
	for _, row := range recent {
		dto := mapFeedback(row, names)
		dto.Strengths = truncate(dto.Strengths, previewLength)
		dto.AreasToImprove = truncate(dto.AreasToImprove, previewLength)
		previews = append(previews, dto)
	}

	return &DashboardDTO{
		TotalFeedback: total,
		SentimentCounts: SentimentCounts{
			Positive: counts[models.SentimentPositive],
			Neutral:  counts[models.SentimentNeutral],
			Negative: counts[models.SentimentNegative],
		},
		TeamSize:         teamSize,
		RecentFeedback:   previews,
		FeedbackRequests: requests,
	}, nil
}

// RequestFeedback records a solicitation and notifies the receiver in one transaction.
func (s *FeedbackService) RequestFeedback(ctx context.Context, caller Caller, input RequestFeedbackInput) (*models.FeedbackRequest, error) {
	ctx = ensureContext(ctx)

	if input.ReceiverID == 0 {
		return nil, apperrors.NewValidation("Missing required fields")
	}

	priority := strings.ToLower(strings.TrimSpace(defaultIfEmpty(input.Priority, models.PriorityMedium)))
	if !models.ValidPriority(priority) {
		return nil, apperrors.NewValidation("Invalid priority")
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	requesterID, err := s.identity.resolve(ctx, s.store.Users(), input.RequesterID, caller, "requester")
	if err != nil {
		return nil, s.wrap("resolve requester", err)
	}
	if err := s.requireUser(ctx, input.ReceiverID, "receiver"); err != nil {
		return nil, err
	}

	names, err := s.usernames(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	request := &models.FeedbackRequest{
		RequesterID: requesterID,
		ReceiverID:  input.ReceiverID,
		Message:     input.Message,
		Tags:        datatypes.JSONSlice[string](normaliseTags(input.Tags)),
		Priority:    priority,
		DueDate:     dueDate,
	}

	var notification *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Requests().Create(ctx, request); err != nil {
			return fmt.Errorf("feedback service: create request: %w", err)
		}
		var err error
		notification, err = s.notifications.record(ctx, tx, request.ReceiverID,
			"Feedback Request",
			fmt.Sprintf("%s has requested feedback from you", defaultIfEmpty(names[requesterID], "Someone")),
			models.NotificationRequest,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.FeedbackRequests.WithLabelValues(priority).Inc()
	s.notifications.Publish(notification)
	s.announce(realtime.EventRequestCreated, map[string]any{
		"id":          request.ID,
		"receiver_id": request.ReceiverID,
		"priority":    request.Priority,
	})

	return request, nil
}

// ListRequests returns every feedback request ascending by id.
func (s *FeedbackService) ListRequests(ctx context.Context) ([]FeedbackRequestDTO, error) {
	ctx = ensureContext(ctx)

	rows, err := s.store.Requests().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback service: list requests: %w", err)
	}

	ids := make([]uint, 0, len(rows)*2)
	for _, row := range rows {
		ids = append(ids, row.RequesterID, row.ReceiverID)
	}
	names, err := s.usernames(ctx, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]FeedbackRequestDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRequest(row, names))
	}
	return out, nil
}

// AddComment appends a comment to an existing feedback entry.
func (s *FeedbackService) AddComment(ctx context.Context, caller Caller, input AddCommentInput) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidation("Comment content is required")
	}

	if _, err := s.store.Feedback().FindByID(ctx, input.FeedbackID); err != nil {
		if isNotFound(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("feedback service: load feedback: %w", err)
	}

	authorID, err := s.identity.resolve(ctx, s.store.Users(), input.AuthorID, caller, "author")
	if err != nil {
		return nil, s.wrap("resolve author", err)
	}

	comment := &models.Comment{
		FeedbackID: input.FeedbackID,
		UserID:     authorID,
		Content:    input.Content,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("feedback service: create comment: %w", err)
	}
	return comment, nil
}

// Export renders a plain-text report of one feedback entry and its comments.
func (s *FeedbackService) Export(ctx context.Context, id uint) (*ExportDTO, error) {
	ctx = ensureContext(ctx)

	feedback, err := s.store.Feedback().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("feedback service: load feedback: %w", err)
	}

	comments, err := s.store.Comments().ListByFeedback(ctx, feedback.ID)
	if err != nil {
		return nil, fmt.Errorf("feedback service: list comments: %w", err)
	}

	names, err := s.usernames(ctx, feedbackParticipants([]models.Feedback{*feedback}, comments)...)
	if err != nil {
		return nil, err
	}

	return &ExportDTO{
		Content:  renderReport(*feedback, comments, names),
		Filename: fmt.Sprintf("feedback-%d.txt", feedback.ID),
	}, nil
}

// FilterByTags returns feedback sharing at least one tag with the comma separated query.
func (s *FeedbackService) FilterByTags(ctx context.Context, query string) ([]FeedbackDTO, error) {
	ctx = ensureContext(ctx)

	tags := splitTags(query)
	if len(tags) == 0 {
		return nil, apperrors.NewValidation("Tags parameter is required")
	}
	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[tag] = struct{}{}
	}

	rows, err := s.store.Feedback().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback service: list feedback: %w", err)
	}

	matched := make([]models.Feedback, 0, len(rows))
	for _, row := range rows {
		if intersects(row.Tags, wanted) {
			matched = append(matched, row)
		}
	}

	names, err := s.usernames(ctx, feedbackParticipants(matched, nil)...)
	if err != nil {
		return nil, err
	}

	out := make([]FeedbackDTO, 0, len(matched))
	for _, row := range matched {
		out = append(out, mapFeedback(row, names))
	}
	return out, nil
}

func (s *FeedbackService) requireUser(ctx context.Context, id uint, role string) error {
	if _, err := s.store.Users().FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return apperrors.NewValidation("Unknown " + role)
		}
		return fmt.Errorf("feedback service: load %s: %w", role, err)
	}
	return nil
}

func (s *FeedbackService) usernames(ctx context.Context, ids ...uint) (map[uint]string, error) {
	users, err := s.store.Users().ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("feedback service: load usernames: %w", err)
	}
	names := make(map[uint]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Username
	}
	return names, nil
}

func (s *FeedbackService) announce(event string, data map[string]any) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStream(realtime.StreamFeedback, realtime.Message{Event: event, Data: data})
}

func (s *FeedbackService) wrap(op string, err error) error {
	if _, ok := passAppError(err); ok {
		return err
	}
	return fmt.Errorf("feedback service: %s: %w", op, err)
}

func feedbackParticipants(rows []models.Feedback, comments []models.Comment) []uint {
	ids := make([]uint, 0, len(rows)*2+len(comments))
	for _, row := range rows {
		ids = append(ids, row.GiverID, row.ReceiverID)
	}
	for _, comment := range comments {
		ids = append(ids, comment.UserID)
	}
	return ids
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func renderReport(feedback models.Feedback, comments []models.Comment, names map[uint]string) string {
	tags := "None"
	if len(feedback.Tags) > 0 {
		tags = strings.Join(feedback.Tags, ", ")
	}

	var b strings.Builder
	b.WriteString("Feedback Report\n\n")
	fmt.Fprintf(&b, "From: %s\n", names[feedback.GiverID])
	fmt.Fprintf(&b, "To: %s\n", names[feedback.ReceiverID])
	fmt.Fprintf(&b, "Date: %s\n", feedback.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Sentiment: %s\n", feedback.Sentiment)
	fmt.Fprintf(&b, "Tags: %s\n\n", tags)
	fmt.Fprintf(&b, "Content:\n%s\n\n", feedback.Strengths)
	fmt.Fprintf(&b, "Areas to Improve:\n%s\n\n", feedback.AreasToImprove)
	b.WriteString("Comments:")
	for _, comment := range comments {
		fmt.Fprintf(&b, "\n- %s: %s", names[comment.UserID], comment.Content)
	}
	b.WriteString("\n")
	return b.String()
}
