package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/peerfeed/internal/middleware"
	"github.com/charlesng35/peerfeed/internal/services"
	appErrors "github.com/charlesng35/peerfeed/pkg/errors"
	"github.com/charlesng35/peerfeed/pkg/logger"
	"github.com/charlesng35/peerfeed/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// callerFrom returns the identity attached by the auth middleware, anonymous when the
// request carried no token.
func callerFrom(c *gin.Context) services.Caller {
	return services.Caller{UserID: middleware.UserID(c)}
}

// fail writes err as a JSON error. Failures that are not expected application errors are
// logged with the request id before the generic 500 goes out.
func fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil || appErr.StatusCode >= 500 {
		logger.WithModule("handlers").Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.CtxRequestIDKey)),
			zap.Error(err),
		)
	}
	response.Error(c, err)
}
