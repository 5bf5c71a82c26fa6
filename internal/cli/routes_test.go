package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/config"
	"github.com/missionctl/missionctl/internal/cronmirror"
	"github.com/missionctl/missionctl/internal/notes"
	"github.com/missionctl/missionctl/internal/pipeline"
	"github.com/missionctl/missionctl/internal/publish"
	"github.com/missionctl/missionctl/internal/search"
	"github.com/missionctl/missionctl/internal/store"
)

type stubFetcher struct {
	output string
}

func (f *stubFetcher) Fetch(ctx context.Context) (string, error) {
	return f.output, nil
}

func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()

	changes := bus.NewChangeBus()
	st, err := store.Open(filepath.Join(t.TempDir(), "missionctl.db"), changes)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, "memory"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws, "MEMORY.md"), []byte("standing orders\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	noteSvc := notes.NewService(filepath.Join(ws, "MEMORY.md"), filepath.Join(ws, "memory"))
	cfg := config.DefaultConfig()
	cfg.Paths.Workspace = ws
	cfg.Gateway.SyncToken = "s3cret"

	srv := &server{
		cfg:     cfg,
		store:   st,
		changes: changes,
		engine:  pipeline.New(st),
		mirror: cronmirror.New(st, &stubFetcher{
			output: `booting\n[{"name":"daily draft","schedule":"0 9 * * *","enabled":true}]`,
		}, "UTC"),
		notes:  noteSvc,
		search: &search.Service{Store: st, Notes: noteSvc},
		blog:   publish.NewClient("http://127.0.0.1:0/unused"),
		log:    newLogger(),
	}

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestCronSyncRequiresToken(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/cron/sync", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false {
		t.Fatalf("body = %v", body)
	}

	resp = postJSON(t, ts.URL+"/api/v1/cron/sync", "", map[string]string{"x-sync-token": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// No side effects from rejected calls.
	events, err := srv.store.ListEvents()
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("rejected sync wrote %d events", len(events))
	}

	resp = postJSON(t, ts.URL+"/api/v1/cron/sync", "", map[string]string{"x-sync-token": "s3cret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("good token: status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	events, err = srv.store.ListEvents()
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Title != "daily draft" {
		t.Fatalf("events after sync = %+v", events)
	}
}

func TestContentChecklistFlowOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/contents", `{"title":"X","platform":"tiktok"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	content := body["content"].(map[string]any)
	id := content["id"].(string)
	if content["stage"] != "idea" {
		t.Fatalf("stage = %v", content["stage"])
	}

	checklistURL := ts.URL + "/api/v1/contents/" + id + "/checklist"
	resp = postJSON(t, checklistURL, `{"factChecked":true}`, nil)
	resp.Body.Close()
	resp = postJSON(t, checklistURL, `{"ctaChecked":true}`, nil)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/contents")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	body = decodeBody(t, resp)
	items := body["contents"].([]any)
	if stage := items[0].(map[string]any)["stage"]; stage != "ready" {
		t.Fatalf("stage after checklist = %v", stage)
	}

	resp = postJSON(t, ts.URL+"/api/v1/contents/"+id+"/publish", `{"publishedUrl":"http://x"}`, nil)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/v1/contents")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	body = decodeBody(t, resp)
	item := body["contents"].([]any)[0].(map[string]any)
	if item["stage"] != "posted" || item["postedChecked"] != true {
		t.Fatalf("item after publish = %v", item)
	}
}

func TestDraftImportFailureFeedsTimeoutWatchdog(t *testing.T) {
	srv, ts := newTestServer(t)

	// A drafts path that is a regular file makes the scan fail. The path
	// carries the scheduler's timeout marker, the way stuck importer runs
	// surface it in their failure messages.
	dir := filepath.Join(t.TempDir(), "approval-timeout id: stuck-run-7")
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	srv.cfg.Drafts.Dir = dir

	resp := postJSON(t, ts.URL+"/api/v1/pipeline/drafts/import", "", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	approvals, err := srv.store.ListApprovals()
	if err != nil {
		t.Fatalf("list approvals: %v", err)
	}
	if len(approvals) != 1 || approvals[0].Status != store.ApprovalPending {
		t.Fatalf("approvals = %+v", approvals)
	}
	if !strings.Contains(approvals[0].Title, "stuck-run-7") {
		t.Fatalf("approval title = %q", approvals[0].Title)
	}
}

func TestNoteEndpointsEnforcePathRules(t *testing.T) {
	_, ts := newTestServer(t)

	get := func(path string) int {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := get("/api/v1/notes/read?file=MEMORY.md"); code != http.StatusOK {
		t.Fatalf("root file: %d", code)
	}
	if code := get("/api/v1/notes/read?file=../secret"); code != http.StatusBadRequest {
		t.Fatalf("traversal: %d", code)
	}
	if code := get("/api/v1/notes/read?file=other/file.md"); code != http.StatusForbidden {
		t.Fatalf("outside dir: %d", code)
	}
	if code := get("/api/v1/notes/read?file=memory/missing.md"); code != http.StatusNotFound {
		t.Fatalf("missing: %d", code)
	}
}

func TestInvalidEnumIsBadRequest(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/tasks", `{"title":"T","assignee":"robot"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false || body["error"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestSearchEndpointSpansStoreAndNotes(t *testing.T) {
	srv, ts := newTestServer(t)
	if _, err := srv.store.CreateTask("standing desk order", store.AssigneeHuman); err != nil {
		t.Fatalf("task: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/v1/search?q=standing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body := decodeBody(t, resp)
	results := body["results"].(map[string]any)
	if tasks := results["tasks"].([]any); len(tasks) != 1 {
		t.Fatalf("tasks = %v", tasks)
	}
	if hits := results["notes"].([]any); len(hits) != 1 {
		t.Fatalf("notes = %v", hits)
	}
}
