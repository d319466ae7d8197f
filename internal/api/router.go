package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/peerfeed/internal/app"
	iauth "github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/handlers"
	"github.com/charlesng35/peerfeed/internal/middleware"
	"github.com/charlesng35/peerfeed/internal/monitoring"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/repository"
	"github.com/charlesng35/peerfeed/internal/services"
)

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Store     repository.Store
	JWT       *iauth.JWTService
	Config    *app.Config
	Hub       *realtime.Hub             // nil disables the notification stream
	RateStore middleware.RateStore      // nil falls back to an in-memory store
	Health    *monitoring.HealthManager // nil reports healthy without probes
}

type routeHandlers struct {
	auth          *handlers.AuthHandler
	feedback      *handlers.FeedbackHandler
	users         *handlers.UserHandler
	notifications *handlers.NotificationHandler
	health        gin.HandlerFunc
}

// NewRouter builds the Gin engine, wires middleware and registers every route both at the
// root and under /api.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	cfg := deps.Config

	routes, err := buildHandlers(deps)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))

	window := cfg.Server.RateLimit.Window
	if window <= 0 {
		window = time.Minute
	}
	r.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, window))

	for _, router := range []gin.IRouter{r, r.Group("/api")} {
		router.GET("/health", routes.health)
		registerAuthRoutes(router, routes.auth, deps.JWT)
		registerFeedbackRoutes(router, routes.feedback, deps.JWT)
		registerUserRoutes(router, routes.users)
		registerNotificationRoutes(router, routes.notifications, deps.JWT)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func buildHandlers(deps Dependencies) (*routeHandlers, error) {
	notificationSvc, err := services.NewNotificationService(deps.Store, deps.Hub)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(deps.Store)
	if err != nil {
		return nil, err
	}
	authSvc, err := services.NewAuthService(deps.Store, deps.JWT)
	if err != nil {
		return nil, err
	}
	feedbackSvc, err := services.NewFeedbackService(deps.Store, notificationSvc, deps.Hub, deps.Config.Features.IdentityPolicy())
	if err != nil {
		return nil, err
	}

	return &routeHandlers{
		auth:          handlers.NewAuthHandler(authSvc),
		feedback:      handlers.NewFeedbackHandler(feedbackSvc, userSvc),
		users:         handlers.NewUserHandler(userSvc),
		notifications: handlers.NewNotificationHandler(notificationSvc, deps.Hub),
		health:        handlers.Health(deps.Health),
	}, nil
}
