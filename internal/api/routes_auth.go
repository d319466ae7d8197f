package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/handlers"
	"github.com/charlesng35/peerfeed/internal/middleware"
)

func registerAuthRoutes(router gin.IRouter, handler *handlers.AuthHandler, jwt *iauth.JWTService) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/register", handler.Register)
		auth.GET("/profile", middleware.Auth(jwt), handler.Profile)
	}
}
