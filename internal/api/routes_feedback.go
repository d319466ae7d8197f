package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/handlers"
	"github.com/charlesng35/peerfeed/internal/middleware"
)

// Mutations accept an optional bearer token; the caller then becomes the giver,
// requester or comment author when the payload does not name one.
func registerFeedbackRoutes(router gin.IRouter, handler *handlers.FeedbackHandler, jwt *iauth.JWTService) {
	identify := middleware.OptionalAuth(jwt)

	feedback := router.Group("/feedback")
	{
		feedback.GET("", handler.List)
		feedback.POST("", identify, handler.Create)
		feedback.GET("/dashboard", handler.Dashboard)
		feedback.POST("/request", identify, handler.RequestFeedback)
		feedback.GET("/requests", handler.ListRequests)
		feedback.GET("/by-tags", handler.ByTags)
		feedback.GET("/team", handler.Team)
		feedback.POST("/:id/comments", identify, handler.AddComment)
		feedback.GET("/:id/export", handler.Export)
	}
}
