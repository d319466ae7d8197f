package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/peerfeed/internal/services"
	"github.com/charlesng35/peerfeed/pkg/response"
)

type UserHandler struct {
	service *services.UserService
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=80"`
	Email    *string `json:"email" validate:"omitempty,email,max=120"`
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(requestContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// GET /users/team
func (h *UserHandler) Team(c *gin.Context) {
	users, err := h.service.Team(requestContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "User")
	if !ok {
		return
	}

	user, err := h.service.Get(requestContext(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "User")
	if !ok {
		return
	}

	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.Update(requestContext(c), id, services.UpdateUserInput{
		Username: body.Username,
		Email:    body.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
