package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/peerfeed/internal/services"
	"github.com/charlesng35/peerfeed/pkg/response"
)

// FeedbackHandler serves the /feedback endpoints.
type FeedbackHandler struct {
	feedback *services.FeedbackService
	users    *services.UserService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(feedback *services.FeedbackService, users *services.UserService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, users: users}
}

type createFeedbackRequest struct {
	GiverID        *uint    `json:"giver_id"`
	ReceiverID     uint     `json:"receiver_id"`
	Strengths      string   `json:"strengths"`
	AreasToImprove string   `json:"areas_to_improve"`
	Sentiment      string   `json:"sentiment"`
	Tags           []string `json:"tags" validate:"max=20,dive,max=50"`
}

type requestFeedbackRequest struct {
	RequesterID *uint    `json:"requester_id"`
	ReceiverID  uint     `json:"receiver_id"`
	Message     string   `json:"message"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"due_date"`
}

type addCommentRequest struct {
	AuthorID *uint  `json:"author_id"`
	UserID   *uint  `json:"user_id"`
	Content  string `json:"content"`
}

// List GET /feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.feedback.List(requestContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Create POST /feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	var body createFeedbackRequest
	if !bindAndValidate(c, &body) {
		return
	}

	created, err := h.feedback.Create(requestContext(c), callerFrom(c), services.CreateFeedbackInput{
		GiverID:        body.GiverID,
		ReceiverID:     body.ReceiverID,
		Strengths:      body.Strengths,
		AreasToImprove: body.AreasToImprove,
		Sentiment:      body.Sentiment,
		Tags:           body.Tags,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Acknowledge(c, http.StatusCreated, created.ID, "Feedback created successfully")
}

// Dashboard GET /feedback/dashboard
func (h *FeedbackHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.feedback.Dashboard(requestContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}

// RequestFeedback POST /feedback/request
func (h *FeedbackHandler) RequestFeedback(c *gin.Context) {
	var body requestFeedbackRequest
	if !bindAndValidate(c, &body) {
		return
	}

	created, err := h.feedback.RequestFeedback(requestContext(c), callerFrom(c), services.RequestFeedbackInput{
		RequesterID: body.RequesterID,
		ReceiverID:  body.ReceiverID,
		Message:     body.Message,
		Tags:        body.Tags,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Acknowledge(c, http.StatusCreated, created.ID, "Feedback request created successfully")
}

// ListRequests GET /feedback/requests
func (h *FeedbackHandler) ListRequests(c *gin.Context) {
	items, err := h.feedback.ListRequests(requestContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// AddComment POST /feedback/:id/comments
func (h *FeedbackHandler) AddComment(c *gin.Context) {
	feedbackID, ok := parseIDParam(c, "id", "Feedback")
	if !ok {
		return
	}

	var body addCommentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	author := body.AuthorID
	if author == nil {
		author = body.UserID
	}

	created, err := h.feedback.AddComment(requestContext(c), callerFrom(c), services.AddCommentInput{
		FeedbackID: feedbackID,
		AuthorID:   author,
		Content:    body.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Acknowledge(c, http.StatusCreated, created.ID, "Comment added successfully")
}

// Export GET /feedback/:id/export
//
// The report is returned as {content, filename}; ?format=text serves it as a plain text
// download instead.
func (h *FeedbackHandler) Export(c *gin.Context) {
	feedbackID, ok := parseIDParam(c, "id", "Feedback")
	if !ok {
		return
	}

	report, err := h.feedback.Export(requestContext(c), feedbackID)
	if err != nil {
		fail(c, err)
		return
	}

	if strings.EqualFold(strings.TrimSpace(c.Query("format")), "text") {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report.Content))
		return
	}
	response.Success(c, http.StatusOK, report)
}

// ByTags GET /feedback/by-tags?tags=a,b
func (h *FeedbackHandler) ByTags(c *gin.Context) {
	items, err := h.feedback.FilterByTags(requestContext(c), c.Query("tags"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Team GET /feedback/team
func (h *FeedbackHandler) Team(c *gin.Context) {
	members, err := h.users.Team(requestContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}
