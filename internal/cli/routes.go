package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/config"
	"github.com/missionctl/missionctl/internal/cronmirror"
	"github.com/missionctl/missionctl/internal/drafts"
	"github.com/missionctl/missionctl/internal/notes"
	"github.com/missionctl/missionctl/internal/pipeline"
	"github.com/missionctl/missionctl/internal/publish"
	"github.com/missionctl/missionctl/internal/search"
	"github.com/missionctl/missionctl/internal/store"
	"github.com/missionctl/missionctl/internal/watchdog"
	webassets "github.com/missionctl/missionctl/web"
)

type server struct {
	cfg     *config.Config
	store   *store.Store
	changes *bus.ChangeBus
	engine  *pipeline.Engine
	mirror  *cronmirror.Mirror
	notes   *notes.Service
	search  *search.Service
	blog    *publish.Client
	log     *slog.Logger
}

func (s *server) writeOK(w http.ResponseWriter, payload map[string]any) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if payload == nil {
		payload = map[string]any{}
	}
	payload["ok"] = true
	json.NewEncoder(w).Encode(payload)
}

// fail maps an error to its HTTP status and the uniform {ok:false, error}
// body every endpoint shares.
func (s *server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var perr *cronmirror.ParseError
	var uerr *publish.UpstreamError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, notes.ErrNotFound), errors.Is(err, publish.ErrNoPosts):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalid), errors.Is(err, notes.ErrBadPath):
		status = http.StatusBadRequest
	case errors.Is(err, notes.ErrForbidden):
		status = http.StatusForbidden
	case errors.As(err, &perr), errors.As(err, &uerr):
		status = http.StatusBadGateway
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": err.Error()})
}

func (s *server) failAuth(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid sync token"})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: bad request body", store.ErrInvalid)
	}
	return nil
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Tasks
	mux.HandleFunc("GET /api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		tasks, err := s.store.ListTasks()
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"tasks": tasks})
	})
	mux.HandleFunc("POST /api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title    string `json:"title"`
			Assignee string `json:"assignee"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		task, err := s.store.CreateTask(req.Title, req.Assignee)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"task": task})
	})
	mux.HandleFunc("POST /api/v1/tasks/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.UpdateTaskStatus(r.PathValue("id"), req.Status); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})

	// Contents
	mux.HandleFunc("GET /api/v1/contents", func(w http.ResponseWriter, r *http.Request) {
		items, err := s.store.ListContents()
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"contents": items})
	})
	mux.HandleFunc("POST /api/v1/contents", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title    string `json:"title"`
			Platform string `json:"platform"`
			Memo     string `json:"memo"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		item, err := s.store.CreateContent(req.Title, req.Platform, req.Memo)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"content": item})
	})
	mux.HandleFunc("POST /api/v1/contents/{id}/stage", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stage string `json:"stage"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.engine.SetStage(r.PathValue("id"), req.Stage); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})
	mux.HandleFunc("POST /api/v1/contents/{id}/checklist", func(w http.ResponseWriter, r *http.Request) {
		var patch pipeline.ChecklistPatch
		if err := decode(r, &patch); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.engine.ApplyChecklist(r.PathValue("id"), patch); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})
	mux.HandleFunc("POST /api/v1/contents/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
		var meta pipeline.PublishMeta
		if err := decode(r, &meta); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.engine.SetPublishMeta(r.PathValue("id"), meta); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})

	// Events
	mux.HandleFunc("GET /api/v1/events", func(w http.ResponseWriter, r *http.Request) {
		events, err := s.store.ListEvents()
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"events": events})
	})
	mux.HandleFunc("POST /api/v1/events", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title    string `json:"title"`
			Schedule string `json:"schedule"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		event, err := s.store.CreateEvent(req.Title, req.Schedule, store.SourceManual)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"event": event})
	})

	// Team
	mux.HandleFunc("GET /api/v1/team", func(w http.ResponseWriter, r *http.Request) {
		members, err := s.store.ListMembers()
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"members": members})
	})
	mux.HandleFunc("POST /api/v1/team", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Role  string `json:"role"`
			Focus string `json:"focus"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		member, err := s.store.CreateMember(req.Name, req.Role, req.Focus)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"member": member})
	})
	mux.HandleFunc("POST /api/v1/team/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string  `json:"status"`
			Focus  *string `json:"focus"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.UpdateMemberStatus(r.PathValue("id"), req.Status, req.Focus); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})
	mux.HandleFunc("POST /api/v1/team/{id}/keywords", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OwnsKeywords string `json:"ownsKeywords"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.SetMemberKeywords(r.PathValue("id"), req.OwnsKeywords); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})
	mux.HandleFunc("DELETE /api/v1/team/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteMember(r.PathValue("id")); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})

	// Approvals
	mux.HandleFunc("GET /api/v1/approvals", func(w http.ResponseWriter, r *http.Request) {
		approvals, err := s.store.ListApprovals()
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"approvals": approvals})
	})
	mux.HandleFunc("POST /api/v1/approvals", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title  string `json:"title"`
			Source string `json:"source"`
			Note   string `json:"note"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		approval, err := s.store.CreateApproval(req.Title, req.Source, req.Note)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"approval": approval})
	})
	mux.HandleFunc("POST /api/v1/approvals/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string  `json:"status"`
			Note   *string `json:"note"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.UpdateApprovalStatus(r.PathValue("id"), req.Status, req.Note); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})

	// Activities
	mux.HandleFunc("GET /api/v1/activities", func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		activities, err := s.store.ListActivities(limit)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"activities": activities})
	})

	// Cron
	mux.HandleFunc("GET /api/v1/cron", func(w http.ResponseWriter, r *http.Request) {
		jobs, err := s.mirror.Jobs(r.Context())
		if err != nil {
			s.reportFetchFailure("cron-fetch", err)
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"jobs": s.withOwners(jobs)})
	})
	mux.HandleFunc("POST /api/v1/cron/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-sync-token") != s.cfg.Gateway.SyncToken || s.cfg.Gateway.SyncToken == "" {
			s.failAuth(w)
			return
		}
		res, err := s.mirror.Sync(r.Context())
		if err != nil {
			s.reportFetchFailure("cron-sync", err)
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"result": res})
	})
	mux.HandleFunc("GET /api/v1/cron/assignments", func(w http.ResponseWriter, r *http.Request) {
		assignments, err := s.store.ListCronAssignments()
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"assignments": assignments})
	})
	mux.HandleFunc("POST /api/v1/cron/assignments", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobName  string  `json:"jobName"`
			MemberID *string `json:"memberId"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if err := s.store.SetCronAssignment(req.JobName, req.MemberID); err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, nil)
	})

	// Drafts
	mux.HandleFunc("GET /api/v1/pipeline/drafts", func(w http.ResponseWriter, r *http.Request) {
		items, err := drafts.Scan(s.cfg.Drafts.Dir)
		if err != nil {
			s.reportFetchFailure("draft-import", err)
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"items": items})
	})
	mux.HandleFunc("POST /api/v1/pipeline/drafts/import", func(w http.ResponseWriter, r *http.Request) {
		res, err := drafts.Import(s.store, s.cfg.Drafts.Dir)
		if err != nil {
			s.reportFetchFailure("draft-import", err)
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"result": res})
	})

	// Notes
	mux.HandleFunc("GET /api/v1/notes/list", func(w http.ResponseWriter, r *http.Request) {
		files, err := s.notes.List()
		if err != nil {
			s.fail(w, err)
			return
		}
		if files == nil {
			files = []string{}
		}
		s.writeOK(w, map[string]any{"files": files})
	})
	mux.HandleFunc("GET /api/v1/notes/read", func(w http.ResponseWriter, r *http.Request) {
		file := r.URL.Query().Get("file")
		content, err := s.notes.Read(file)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"file": file, "content": content})
	})
	mux.HandleFunc("GET /api/v1/notes/search", func(w http.ResponseWriter, r *http.Request) {
		hits, err := s.notes.Search(r.URL.Query().Get("q"))
		if err != nil {
			s.fail(w, err)
			return
		}
		if hits == nil {
			hits = []notes.Hit{}
		}
		s.writeOK(w, map[string]any{"hits": hits})
	})

	// Publish
	mux.HandleFunc("GET /api/v1/publish/latest", func(w http.ResponseWriter, r *http.Request) {
		post, err := s.blog.Latest(r.Context())
		if err != nil {
			s.reportFetchFailure("blog-fetch", err)
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"url": post.URL, "date": post.Date, "title": post.Title})
	})

	// Federated search
	mux.HandleFunc("GET /api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.search.Search(r.URL.Query().Get("q"))
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeOK(w, map[string]any{"results": res})
	})

	// Live updates (SSE change feed)
	mux.HandleFunc("GET /api/v1/updates", s.handleUpdates)

	// Embedded dashboard
	mux.Handle("/", http.FileServerFS(webassets.Files))

	return mux
}

// handleUpdates streams store changes as Server-Sent Events.
func (s *server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, errors.New("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch, cancel := s.changes.Subscribe()
	defer cancel()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case change, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// withOwners decorates fetched jobs with their resolved owner name.
func (s *server) withOwners(jobs []cronmirror.Job) []map[string]any {
	members, err := s.store.ListMembers()
	if err != nil {
		members = nil
	}
	assignments := map[string]string{}
	if rows, err := s.store.ListCronAssignments(); err == nil {
		for _, a := range rows {
			assignments[a.JobName] = a.MemberID
		}
	}

	out := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, map[string]any{
			"name":        job.Name,
			"schedule":    job.Schedule,
			"enabled":     job.Enabled,
			"nextRunAtMs": job.NextRunAtMs,
			"owner":       cronmirror.OwnerName(job.Name, assignments, members),
		})
	}
	return out
}

// reportFetchFailure feeds external-fetch failures through the timeout
// watchdog so stuck approvals surface in the queue.
func (s *server) reportFetchFailure(source string, err error) {
	if err == nil {
		return
	}
	token, werr := watchdog.ScanFailure(s.store, source, err.Error())
	if werr != nil {
		s.log.Warn("watchdog scan failed", "error", werr)
		return
	}
	if token != "" {
		s.log.Warn("approval timeout detected", "source", source, "id", token)
	}
}
