package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/peerfeed/internal/middleware"
	"github.com/charlesng35/peerfeed/internal/services"
	"github.com/charlesng35/peerfeed/pkg/errors"
	"github.com/charlesng35/peerfeed/pkg/response"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username" validate:"max=80"`
	Password string `json:"password" validate:"max=128"`
}

type registerRequest struct {
	Username  string `json:"username" validate:"max=80"`
	Email     string `json:"email" validate:"omitempty,email,max=120"`
	Password  string `json:"password" validate:"max=128"`
	Role      string `json:"role"`
	ManagerID *uint  `json:"manager_id"`
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.auth.Login(requestContext(c), body.Username, body.Password)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.auth.Register(requestContext(c), services.RegisterInput{
		Username:  body.Username,
		Email:     body.Email,
		Password:  body.Password,
		Role:      body.Role,
		ManagerID: body.ManagerID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Profile GET /auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.auth.Profile(requestContext(c), userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
