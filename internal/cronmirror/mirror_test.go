package cronmirror

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/store"
)

type stubFetcher struct {
	output string
	err    error
}

func (f *stubFetcher) Fetch(ctx context.Context) (string, error) {
	return f.output, f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "missionctl.db"), bus.NewChangeBus())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestExtractJSONSkipsLogNoise(t *testing.T) {
	doc, err := ExtractJSON("warming up...\nloaded 2 plugins\n[{\"name\":\"daily draft\"}]")
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	arr, ok := doc.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("expected single-element array, got %#v", doc)
	}
}

func TestExtractJSONObjectPayload(t *testing.T) {
	doc, err := ExtractJSON("log line\n{\"jobs\":[]}")
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		t.Fatalf("expected object, got %#v", doc)
	}
}

func TestExtractJSONNoPayloadIsParseError(t *testing.T) {
	_, err := ExtractJSON("plain text with no payload at all")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestExtractJSONMalformedIsParseError(t *testing.T) {
	_, err := ExtractJSON("[{\"name\": truncated")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestNormalizeJobDefaults(t *testing.T) {
	job := normalizeJob(map[string]any{}, "")
	if job.Name != "(no-name)" {
		t.Fatalf("name = %q", job.Name)
	}
	if job.Schedule != "-" {
		t.Fatalf("schedule = %q", job.Schedule)
	}
	if job.Enabled {
		t.Fatal("enabled should default to false")
	}
}

func TestNormalizeJobScheduleObject(t *testing.T) {
	job := normalizeJob(map[string]any{
		"name":     "daily draft",
		"enabled":  true,
		"schedule": map[string]any{"expr": "0 9 * * *", "tz": "Asia/Tokyo"},
	}, "")
	if job.Schedule != "0 9 * * * (Asia/Tokyo)" {
		t.Fatalf("schedule = %q", job.Schedule)
	}
	if job.NextRunAtMs == nil {
		t.Fatal("expected next run derived from cron expression")
	}
	if *job.NextRunAtMs <= time.Now().UnixMilli() {
		t.Fatalf("next run %d not in the future", *job.NextRunAtMs)
	}
}

func TestNormalizeJobKeepsSchedulerNextRun(t *testing.T) {
	job := normalizeJob(map[string]any{
		"name":        "sweep",
		"schedule":    "*/30 * * * *",
		"nextRunAtMs": float64(1_900_000_000_000),
	}, "")
	if job.NextRunAtMs == nil || *job.NextRunAtMs != 1_900_000_000_000 {
		t.Fatalf("nextRunAtMs = %v", job.NextRunAtMs)
	}
}

func TestSyncUpsertsAndIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	fetcher := &stubFetcher{output: `scanning jobs
[{"name":"daily draft","schedule":"0 9 * * *","enabled":true},
 {"name":"news sweep","schedule":{"expr":"0 * * * *"},"enabled":false}]`}
	m := New(st, fetcher, "UTC")

	res, err := m.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Created != 2 || res.Updated != 0 {
		t.Fatalf("first sync: %+v", res)
	}

	res, err = m.Sync(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.Created != 0 || res.Updated != 2 {
		t.Fatalf("second sync: %+v", res)
	}

	events, err := st.ListEvents()
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestSyncFailureRecordsErrorActivity(t *testing.T) {
	st := newTestStore(t)
	m := New(st, &stubFetcher{output: "nothing useful here"}, "UTC")

	if _, err := m.Sync(context.Background()); err == nil {
		t.Fatal("expected sync to fail on unparseable output")
	}

	acts, err := st.ListActivities(10)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(acts) != 1 || acts[0].Level != store.LevelError {
		t.Fatalf("expected one error activity, got %+v", acts)
	}
}

func TestCronNext(t *testing.T) {
	expr, err := ParseCron("30 9 * * 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Wednesday 2026-01-07 10:00 UTC; next Monday 09:30 is 2026-01-12.
	from := time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)
	next := expr.Next(from)
	want := time.Date(2026, 1, 12, 9, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestOwnerInference(t *testing.T) {
	members := []store.TeamMember{
		{ID: "m1", Name: "Rin", OwnsKeywords: "tiktok, sweep"},
		{ID: "m2", Name: "Kei", OwnsKeywords: "draft"},
	}

	if got := OwnerName("TikTok daily posting pack", nil, members); got != "Rin" {
		t.Fatalf("owner = %q", got)
	}
	// First match in roster order wins even when a later member also matches.
	if got := OwnerName("sweep the draft queue", nil, members); got != "Rin" {
		t.Fatalf("owner = %q", got)
	}
	if got := OwnerName("2XKO daily draft", nil, members); got != "Kei" {
		t.Fatalf("owner = %q", got)
	}
	if got := OwnerName("unclaimed job", nil, members); got != UnassignedOwner {
		t.Fatalf("owner = %q", got)
	}
	// Explicit assignment beats inference.
	assignments := map[string]string{"2XKO daily draft": "m1"}
	if got := OwnerName("2XKO daily draft", assignments, members); got != "Rin" {
		t.Fatalf("owner = %q", got)
	}
}
