package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/peerfeed/pkg/errors"
)

// ErrorBody is the payload written for every failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Created is the acknowledgement returned by endpoints that insert a row.
type Created struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

// Success writes the resource payload as the JSON body.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Acknowledge writes the id of an affected row together with a human readable message.
func Acknowledge(c *gin.Context, statusCode int, id uint, message string) {
	c.JSON(statusCode, Created{ID: id, Message: message})
}

// Error writes a JSON error response derived from an AppError. Errors that are not
// AppErrors surface as a generic 500 with no internal detail.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if appErr.Internal != nil {
		_ = c.Error(appErr.Internal)
	}

	c.JSON(status, ErrorBody{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}
