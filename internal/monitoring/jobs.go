package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlesng35/peerfeed/pkg/metrics"
)

// JobSummary describes the latest state of a background job.
type JobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	TotalRuns           uint64        `json:"total_runs"`
}

// JobRegistry keeps per-job run statistics. It is safe for concurrent use.
type JobRegistry struct {
	mu    sync.Mutex
	jobs  map[string]*JobSummary
	clock func() time.Time
}

// NewJobRegistry returns an empty registry.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs:  make(map[string]*JobSummary),
		clock: time.Now,
	}
}

var defaultJobs = NewJobRegistry()

// DefaultJobs returns the process-wide registry used by the maintenance scheduler.
func DefaultJobs() *JobRegistry {
	return defaultJobs
}

// RecordRun stores the completion of a job run. result is "success" or "failure".
func (r *JobRegistry) RecordRun(job, result, message string, duration time.Duration) {
	job = strings.TrimSpace(strings.ToLower(job))
	if job == "" {
		job = "unknown"
	}
	if result != "success" {
		result = "failure"
	}
	if duration < 0 {
		duration = 0
	}

	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.jobs[job]
	if !ok {
		entry = &JobSummary{Job: job}
		r.jobs[job] = entry
	}

	now := r.clock()
	entry.LastStatus = result
	entry.LastRunAt = now
	entry.LastDuration = duration
	entry.LastError = strings.TrimSpace(message)
	entry.TotalRuns++
	if result == "success" {
		entry.LastSuccessAt = now
		entry.ConsecutiveFailures = 0
	} else {
		entry.ConsecutiveFailures++
	}
}

// Snapshot returns the recorded jobs sorted by name.
func (r *JobRegistry) Snapshot() []JobSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]JobSummary, 0, len(r.jobs))
	for _, entry := range r.jobs {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}
