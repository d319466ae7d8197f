package checks

import (
	"context"
	"strings"
	"time"

	"github.com/charlesng35/peerfeed/internal/monitoring"
)

const defaultMaintenanceMaxAge = 48 * time.Hour

// Maintenance verifies that background jobs keep succeeding. A job that has not run for
// longer than maxAge is reported as degraded, as is a job whose last run failed.
func Maintenance(jobs *monitoring.JobRegistry, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}
	if jobs == nil {
		jobs = monitoring.DefaultJobs()
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		summaries := jobs.Snapshot()

		if len(summaries) == 0 {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "no maintenance runs recorded",
				Duration: time.Since(start),
			}
		}

		status := monitoring.StatusUp
		var problems []string
		for _, job := range summaries {
			if job.ConsecutiveFailures > 0 {
				status = monitoring.StatusDegraded
				problems = append(problems, job.Job+": "+defaultIfBlank(job.LastError, "last run failed"))
			}
			if !job.LastRunAt.IsZero() && start.Sub(job.LastRunAt) > maxAge {
				status = monitoring.StatusDegraded
				problems = append(problems, job.Job+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.ProbeResult{
			Status:   status,
			Details:  strings.Join(problems, "; "),
			Duration: time.Since(start),
		}
	})
}

func defaultIfBlank(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
