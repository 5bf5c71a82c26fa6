package cronmirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/missionctl/missionctl/internal/store"
)

// Fetcher produces the raw output of a scheduler listing. Implementations
// wrap the actual CLI invocation so the mirror can be tested without one.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// ExecFetcher runs a shell command (e.g. "openclaw cron list --json") and
// returns its combined stdout.
type ExecFetcher struct {
	Command string
	Timeout time.Duration
}

func (f *ExecFetcher) Fetch(ctx context.Context) (string, error) {
	parts := strings.Fields(f.Command)
	if len(parts) == 0 {
		return "", fmt.Errorf("cron mirror: empty command")
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return "", fmt.Errorf("cron mirror: %q failed: %w (%s)", f.Command, err, msg)
	}
	return stdout.String(), nil
}

// Job is a normalized scheduler job ready to be mirrored into the calendar.
type Job struct {
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	Enabled     bool   `json:"enabled"`
	NextRunAtMs *int64 `json:"nextRunAtMs,omitempty"`
}

// Mirror syncs the external scheduler's job list into the event store.
type Mirror struct {
	store    *store.Store
	fetcher  Fetcher
	timezone string
	log      *slog.Logger
}

func New(st *store.Store, fetcher Fetcher, timezone string) *Mirror {
	return &Mirror{
		store:    st,
		fetcher:  fetcher,
		timezone: timezone,
		log:      slog.Default().With("component", "cronmirror"),
	}
}

// Jobs fetches and normalizes the current scheduler job list.
func (m *Mirror) Jobs(ctx context.Context) ([]Job, error) {
	raw, err := m.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	return normalizeJobs(doc, m.timezone), nil
}

// SyncResult summarizes one mirror pass.
type SyncResult struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Sync mirrors the scheduler job list into the calendar and records an
// activity entry either way. Mirroring is keyed on (title, cron source):
// manual events are never touched.
func (m *Mirror) Sync(ctx context.Context) (*SyncResult, error) {
	jobs, err := m.Jobs(ctx)
	if err != nil {
		_, _ = m.store.AddActivity("cron-sync", "cron sync failed", err.Error(), store.LevelError)
		return nil, err
	}

	res := &SyncResult{Total: len(jobs)}
	for _, job := range jobs {
		created, err := m.store.UpsertCronEvent(job.Name, store.CronEventSync{
			Schedule:    job.Schedule,
			Enabled:     job.Enabled,
			NextRunAtMs: job.NextRunAtMs,
		})
		if err != nil {
			return nil, err
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	_, _ = m.store.AddActivity("cron-sync",
		fmt.Sprintf("cron sync mirrored %d jobs (%d new)", res.Total, res.Created),
		"", store.LevelInfo)
	m.log.Info("cron sync complete", "total", res.Total, "created", res.Created, "updated", res.Updated)
	return res, nil
}

// normalizeJobs accepts either a bare array of jobs or an object with a
// "jobs" key, and flattens each entry into a Job.
func normalizeJobs(doc any, timezone string) []Job {
	var entries []any
	switch v := doc.(type) {
	case []any:
		entries = v
	case map[string]any:
		if inner, ok := v["jobs"].([]any); ok {
			entries = inner
		}
	}

	jobs := make([]Job, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		jobs = append(jobs, normalizeJob(obj, timezone))
	}
	return jobs
}

func normalizeJob(obj map[string]any, timezone string) Job {
	job := Job{Name: "(no-name)", Schedule: "-"}

	if name, ok := obj["name"].(string); ok && name != "" {
		job.Name = name
	}
	if enabled, ok := obj["enabled"].(bool); ok {
		job.Enabled = enabled
	}
	if next, ok := obj["nextRunAtMs"].(float64); ok {
		v := int64(next)
		job.NextRunAtMs = &v
	}

	expr, tz := scheduleParts(obj["schedule"])
	job.Schedule = renderSchedule(obj["schedule"], expr, tz)

	// Derive the next fire time from the cron expression when the
	// scheduler did not hand one over.
	if job.NextRunAtMs == nil && expr != "" {
		if next := nextRunFromExpr(expr, tz, timezone); next != nil {
			job.NextRunAtMs = next
		}
	}
	return job
}

// scheduleParts extracts a cron expression and timezone from the schedule
// field, which is either a plain string or an object like
// {"expr": "0 9 * * *", "tz": "Asia/Tokyo"}.
func scheduleParts(v any) (expr, tz string) {
	switch s := v.(type) {
	case string:
		return s, ""
	case map[string]any:
		if e, ok := s["expr"].(string); ok {
			expr = e
		}
		if t, ok := s["tz"].(string); ok {
			tz = t
		}
	}
	return expr, tz
}

func renderSchedule(raw any, expr, tz string) string {
	if expr != "" {
		if tz != "" {
			return expr + " (" + tz + ")"
		}
		return expr
	}
	if raw == nil {
		return "-"
	}
	if s, ok := raw.(string); ok {
		if s == "" {
			return "-"
		}
		return s
	}
	// Unknown shape: keep the raw JSON so nothing is silently lost.
	b, err := json.Marshal(raw)
	if err != nil {
		return "-"
	}
	return string(b)
}

func nextRunFromExpr(expr, jobTZ, defaultTZ string) *int64 {
	parsed, err := ParseCron(expr)
	if err != nil {
		return nil
	}
	loc := time.Local
	for _, name := range []string{jobTZ, defaultTZ} {
		if name == "" {
			continue
		}
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
			break
		}
	}
	next := parsed.Next(time.Now().In(loc))
	if next.IsZero() {
		return nil
	}
	ms := next.UnixMilli()
	return &ms
}
