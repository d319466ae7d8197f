package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/handlers"
	"github.com/charlesng35/peerfeed/internal/middleware"
)

func registerNotificationRoutes(router gin.IRouter, handler *handlers.NotificationHandler, jwt *iauth.JWTService) {
	group := router.Group("/notifications")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.PUT("/:id/read", handler.MarkRead)
		group.GET("/stream", middleware.Auth(jwt, middleware.WithQueryToken("token")), handler.Stream)
	}
}
