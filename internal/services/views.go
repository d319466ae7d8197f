package services

import (
	"time"

	"github.com/charlesng35/peerfeed/internal/models"
)

// UserDTO is the public projection of a user. The password hash is never exposed.
type UserDTO struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ManagerID *uint     `json:"manager_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReceivedFeedbackDTO is a feedback row listed under its receiver.
type ReceivedFeedbackDTO struct {
	ID             uint      `json:"id"`
	Strengths      string    `json:"strengths"`
	AreasToImprove string    `json:"areas_to_improve"`
	Sentiment      string    `json:"sentiment"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserWithFeedbackDTO extends UserDTO with the feedback the user received.
type UserWithFeedbackDTO struct {
	UserDTO
	FeedbackReceived []ReceivedFeedbackDTO `json:"feedback_received"`
}

// FeedbackDTO is a feedback row annotated with participant usernames.
type FeedbackDTO struct {
	ID             uint      `json:"id"`
	GiverID        uint      `json:"giver_id"`
	ReceiverID     uint      `json:"receiver_id"`
	GiverName      string    `json:"giver_name"`
	ReceiverName   string    `json:"receiver_name"`
	Strengths      string    `json:"strengths"`
	AreasToImprove string    `json:"areas_to_improve"`
	Sentiment      string    `json:"sentiment"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
}

// CommentDTO is a comment with its author's username.
type CommentDTO struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackDetailDTO is a feedback row together with its comments.
type FeedbackDetailDTO struct {
	FeedbackDTO
	Comments []CommentDTO `json:"comments"`
}

// FeedbackRequestDTO is a feedback request annotated with participant usernames.
type FeedbackRequestDTO struct {
	ID            uint       `json:"id"`
	RequesterID   uint       `json:"requester_id"`
	ReceiverID    uint       `json:"receiver_id"`
	RequesterName string     `json:"requester_name"`
	ReceiverName  string     `json:"receiver_name"`
	Message       string     `json:"message"`
	Tags          []string   `json:"tags"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"due_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SentimentCounts partitions feedback by sentiment.
type SentimentCounts struct {
	Positive int64 `json:"positive"`
	Neutral  int64 `json:"neutral"`
	Negative int64 `json:"negative"`
}

// DashboardDTO aggregates the team overview.
type DashboardDTO struct {
	TotalFeedback    int64                `json:"total_feedback"`
	SentimentCounts  SentimentCounts      `json:"sentiment_counts"`
	TeamSize         int64                `json:"team_size"`
	RecentFeedback   []FeedbackDTO        `json:"recent_feedback"`
	FeedbackRequests []FeedbackRequestDTO `json:"feedback_requests"`
}

// ExportDTO is a rendered plain-text feedback report.
type ExportDTO struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationEventPayload represents data sent to realtime consumers.
type NotificationEventPayload struct {
	Notification *NotificationDTO `json:"notification,omitempty"`
}

func mapUser(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		ManagerID: user.ManagerID,
		CreatedAt: user.CreatedAt,
	}
}

func mapUsers(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, user := range users {
		out = append(out, mapUser(user))
	}
	return out
}

func mapFeedback(row models.Feedback, names map[uint]string) FeedbackDTO {
	return FeedbackDTO{
		ID:             row.ID,
		GiverID:        row.GiverID,
		ReceiverID:     row.ReceiverID,
		GiverName:      names[row.GiverID],
		ReceiverName:   names[row.ReceiverID],
		Strengths:      row.Strengths,
		AreasToImprove: row.AreasToImprove,
		Sentiment:      row.Sentiment,
		Tags:           tagsOf(row.Tags),
		CreatedAt:      row.CreatedAt,
	}
}

func mapComment(row models.Comment, names map[uint]string) CommentDTO {
	return CommentDTO{
		ID:         row.ID,
		UserID:     row.UserID,
		AuthorName: names[row.UserID],
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
	}
}

func mapRequest(row models.FeedbackRequest, names map[uint]string) FeedbackRequestDTO {
	return FeedbackRequestDTO{
		ID:            row.ID,
		RequesterID:   row.RequesterID,
		ReceiverID:    row.ReceiverID,
		RequesterName: names[row.RequesterID],
		ReceiverName:  names[row.ReceiverID],
		Message:       row.Message,
		Tags:          tagsOf(row.Tags),
		Priority:      row.Priority,
		DueDate:       row.DueDate,
		CreatedAt:     row.CreatedAt,
	}
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Message:   row.Message,
		Type:      row.Type,
		Read:      row.IsRead,
		ReadAt:    row.ReadAt,
		CreatedAt: row.CreatedAt,
	}
}

func mapNotificationRows(rows []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items
}

// tagsOf never returns nil so tags always serialise as an array.
func tagsOf(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
