package checks

import (
	"context"
	"time"

	"github.com/charlesng35/peerfeed/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Pinger is implemented by repository.Store and cache.RedisStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database returns a probe that pings the primary store.
func Database(store Pinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if store == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDown,
				Details:  "database not configured",
				Duration: time.Since(start),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultDatabaseTimeout))
		defer cancel()

		if err := store.Ping(probeCtx); err != nil {
			// A timed out ping still means the database is unreachable.
			result := monitoring.ResultFromError("database", err, time.Since(start))
			result.Status = monitoring.StatusDown
			return result
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Duration: time.Since(start),
		}
	})
}

func chooseTimeout(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
