package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/peerfeed/internal/api"
	"github.com/charlesng35/peerfeed/internal/app"
	iauth "github.com/charlesng35/peerfeed/internal/auth"
	sharedtestutil "github.com/charlesng35/peerfeed/internal/database/testutil"
	"github.com/charlesng35/peerfeed/internal/models"
	"github.com/charlesng35/peerfeed/internal/monitoring"
	"github.com/charlesng35/peerfeed/internal/monitoring/checks"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/repository"
	"github.com/charlesng35/peerfeed/pkg/crypto"
)

// DefaultPassword is the plain text password of users created through CreateUser.
const DefaultPassword = "Passw0rd!"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Store  repository.Store
	Router *gin.Engine
	JWT    *iauth.JWTService
	Hub    *realtime.Hub
	Config *app.Config
}

// Option adjusts the configuration before the router is built.
type Option func(*app.Config)

// WithRequireIdentity rejects anonymous mutations.
func WithRequireIdentity() Option {
	return func(cfg *app.Config) {
		cfg.Features.RequireIdentity = true
	}
}

// WithRateLimit enables rate limiting with the supplied budget per minute.
func WithRateLimit(requests int) Option {
	return func(cfg *app.Config) {
		cfg.Server.RateLimit.Requests = requests
		cfg.Server.RateLimit.Window = time.Minute
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())
	store, err := repository.NewGormStore(db)
	require.NoError(t, err)

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Features: app.FeatureConfig{
			PlaceholderUserID: 1,
			Realtime:          app.RealtimeConfig{Enabled: true},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	health := monitoring.NewHealthManager(time.Second)
	health.Register(checks.Database(store, time.Second))

	hub := realtime.NewHub("*")

	router, err := api.NewRouter(api.Dependencies{
		Store:  store,
		JWT:    jwtSvc,
		Config: cfg,
		Hub:    hub,
		Health: health,
	})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Store:  store,
		Router: router,
		JWT:    jwtSvc,
		Hub:    hub,
		Config: cfg,
	}
}

// CreateUser inserts a user with DefaultPassword. An empty username gets a random one.
func (e *Env) CreateUser(username, role string) *models.User {
	e.T.Helper()

	if username == "" {
		username = "user-" + uuid.NewString()[:8]
	}
	if role == "" {
		role = models.RoleEmployee
	}
	hashed, err := crypto.HashPassword(DefaultPassword)
	require.NoError(e.T, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashed,
		Role:         role,
	}
	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// Token issues an access token for the supplied user id.
func (e *Env) Token(userID uint) string {
	e.T.Helper()

	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{UserID: userID})
	require.NoError(e.T, err)
	return token
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// ErrorPayload mirrors the JSON body written for failed requests.
type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Created mirrors the acknowledgement written after an insert.
type Created struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

// Decode unmarshals the recorder body into dest.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var dest T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dest), w.Body.String())
	return dest
}
