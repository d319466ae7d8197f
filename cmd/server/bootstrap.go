package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/peerfeed/internal/api"
	"github.com/charlesng35/peerfeed/internal/app"
	"github.com/charlesng35/peerfeed/internal/app/maintenance"
	iauth "github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/cache"
	"github.com/charlesng35/peerfeed/internal/database"
	"github.com/charlesng35/peerfeed/internal/middleware"
	"github.com/charlesng35/peerfeed/internal/monitoring"
	"github.com/charlesng35/peerfeed/internal/monitoring/checks"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/repository"
	"github.com/charlesng35/peerfeed/internal/services"
	"github.com/charlesng35/peerfeed/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Store     *repository.GormStore
	Cache     *cache.DatabaseStore
	Redis     *cache.RedisStore
	Hub       *realtime.Hub
	Health    *monitoring.HealthManager
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises databases, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			_ = stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Store, err = repository.NewGormStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise store: %w", err)
	}

	stack.Cache = cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	if cfg.Features.Realtime.Enabled {
		stack.Hub = realtime.NewHub(cfg.Server.CORS.AllowedOrigins...)
	}

	notificationSvc, err := services.NewNotificationService(stack.Store, stack.Hub)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	jobs := monitoring.DefaultJobs()
	stack.Cleaner = maintenance.NewCleaner(notificationSvc, stack.Cache,
		maintenance.WithSchedule(cfg.Maintenance.Schedule),
		maintenance.WithNotificationRetention(cfg.Maintenance.NotificationRetention),
		maintenance.WithJobRegistry(jobs),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Health = monitoring.NewHealthManager(cfg.Monitoring.Health.Timeout)
	stack.Health.Register(checks.Database(stack.Store, cfg.Monitoring.Health.Timeout))
	if stack.Redis != nil {
		stack.Health.Register(checks.Redis(stack.Redis, cfg.Monitoring.Health.Timeout))
	}
	if stack.Cleaner.Enabled() {
		stack.Health.Register(checks.Maintenance(jobs, 0))
	}

	switch {
	case stack.Redis != nil:
		stack.RateStore = middleware.NewRedisRateStore(stack.Redis)
	default:
		stack.RateStore = middleware.NewDatabaseRateStore(stack.Cache)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Store:     stack.Store,
		JWT:       jwtSvc,
		Config:    cfg,
		Hub:       stack.Hub,
		RateStore: stack.RateStore,
		Health:    stack.Health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		errs = multierr.Append(errs, s.Redis.Close())
	}

	if s.DB != nil {
		errs = multierr.Append(errs, closeDatabase(s.DB))
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = closeDatabase(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
