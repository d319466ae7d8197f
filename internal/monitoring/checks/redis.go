package checks

import (
	"context"
	"time"

	"github.com/charlesng35/peerfeed/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// Redis probes the shared rate-limit cache. A nil client means Redis is not configured
// and the database fallback is in use, which is reported as up. Redis outages only
// degrade the service because the rate limiter fails open.
func Redis(client Pinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if client == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "redis disabled",
				Duration: time.Since(start),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultRedisTimeout))
		defer cancel()

		if err := client.Ping(probeCtx); err != nil {
			result := monitoring.ResultFromError("redis", err, time.Since(start))
			result.Status = monitoring.StatusDegraded
			return result
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Duration: time.Since(start),
		}
	})
}
