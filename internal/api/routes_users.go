package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/peerfeed/internal/handlers"
)

func registerUserRoutes(router gin.IRouter, handler *handlers.UserHandler) {
	users := router.Group("/users")
	{
		users.GET("", handler.List)
		users.GET("/team", handler.Team)
		users.GET("/:id", handler.Get)
		users.PUT("/:id", handler.Update)
	}
}
