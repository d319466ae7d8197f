package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/peerfeed/internal/monitoring"
	"github.com/charlesng35/peerfeed/pkg/logger"
)

const (
	defaultSchedule = "@daily"

	jobNotificationCleanup = "notification_cleanup"
	jobCacheCleanup        = "cache_cleanup"
)

// NotificationPruner deletes read notifications older than the retention window.
type NotificationPruner interface {
	PruneRead(ctx context.Context, retention time.Duration) (int64, error)
}

// CachePurger removes expired cache rows.
type CachePurger interface {
	Purge(ctx context.Context) (int64, error)
}

// Cleaner coordinates background maintenance: pruning read notifications past their
// retention and purging expired rate-limit counters from the database cache.
type Cleaner struct {
	notifications NotificationPruner
	cache         CachePurger
	retention     time.Duration
	schedule      string
	cron          *cron.Cron
	jobs          *monitoring.JobRegistry
	log           *zap.Logger
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification shared by every job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithNotificationRetention enables notification pruning. Zero keeps notifications forever.
func WithNotificationRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.retention = retention
		}
	}
}

// WithJobRegistry records job outcomes somewhere other than monitoring.DefaultJobs.
func WithJobRegistry(jobs *monitoring.JobRegistry) Option {
	return func(cleaner *Cleaner) {
		if jobs != nil {
			cleaner.jobs = jobs
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips the corresponding job.
func NewCleaner(notifications NotificationPruner, cache CachePurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		notifications: notifications,
		cache:         cache,
		schedule:      defaultSchedule,
		jobs:          monitoring.DefaultJobs(),
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Enabled reports whether at least one job would run.
func (c *Cleaner) Enabled() bool {
	return c.pruneEnabled() || c.cache != nil
}

func (c *Cleaner) pruneEnabled() bool {
	return c.notifications != nil && c.retention > 0
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.Enabled() {
		return nil
	}

	if c.pruneEnabled() {
		if _, err := c.cron.AddFunc(c.schedule, func() {
			_ = c.pruneNotifications(context.Background())
		}); err != nil {
			return err
		}
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.schedule, func() {
			_ = c.purgeCache(context.Background())
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	c.log.Info("maintenance scheduled",
		zap.String("schedule", c.schedule),
		zap.Duration("notification_retention", c.retention),
	)
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially and returns every
// failure combined.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.pruneEnabled() {
		errs = multierr.Append(errs, c.pruneNotifications(ctx))
	}
	if c.cache != nil {
		errs = multierr.Append(errs, c.purgeCache(ctx))
	}
	return errs
}

func (c *Cleaner) pruneNotifications(ctx context.Context) error {
	return c.run(jobNotificationCleanup, func() (int64, error) {
		return c.notifications.PruneRead(ctx, c.retention)
	})
}

func (c *Cleaner) purgeCache(ctx context.Context) error {
	return c.run(jobCacheCleanup, func() (int64, error) {
		return c.cache.Purge(ctx)
	})
}

func (c *Cleaner) run(job string, fn func() (int64, error)) error {
	start := time.Now()
	removed, err := fn()
	duration := time.Since(start)

	if err != nil {
		c.jobs.RecordRun(job, "failure", err.Error(), duration)
		c.log.Warn("maintenance job failed", zap.String("job", job), zap.Error(err))
		return err
	}

	c.jobs.RecordRun(job, "success", "", duration)
	c.log.Debug("maintenance job finished",
		zap.String("job", job),
		zap.Int64("removed", removed),
		zap.Duration("duration", duration),
	)
	return nil
}
