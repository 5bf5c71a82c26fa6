package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/missionctl/missionctl/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "missionctl.db")
	st, err := store.Open(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st), st
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func mustContent(t *testing.T, st *store.Store, id string) *store.ContentItem {
	t.Helper()
	c, err := st.GetContent(id)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	return c
}

func TestPostedCheckForcesPostedStage(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip A", store.PlatformTikTok, "")

	// postedChecked wins regardless of the other flags.
	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{PostedChecked: boolPtr(true)}); err != nil {
		t.Fatalf("checklist: %v", err)
	}
	got := mustContent(t, st, c.ID)
	if got.Stage != store.StagePosted {
		t.Fatalf("expected posted, got %s", got.Stage)
	}
	if got.FactChecked || got.CtaChecked {
		t.Fatalf("unrelated flags must stay false: %+v", got)
	}
}

func TestFactAndCtaPromoteToReady(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip B", store.Platform2XKO, "")

	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{FactChecked: boolPtr(true)}); err != nil {
		t.Fatalf("checklist: %v", err)
	}
	if got := mustContent(t, st, c.ID); got.Stage != store.StageIdea {
		t.Fatalf("one flag must not promote; got %s", got.Stage)
	}

	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{CtaChecked: boolPtr(true)}); err != nil {
		t.Fatalf("checklist: %v", err)
	}
	if got := mustContent(t, st, c.ID); got.Stage != store.StageReady {
		t.Fatalf("expected ready, got %s", got.Stage)
	}

	// Idempotent: replaying the same update keeps the same stage.
	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{CtaChecked: boolPtr(true)}); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := mustContent(t, st, c.ID); got.Stage != store.StageReady {
		t.Fatalf("replay changed stage to %s", got.Stage)
	}
}

func TestUncheckingNeverRegressesStage(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip C", store.PlatformOther, "")

	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{
		FactChecked: boolPtr(true), CtaChecked: boolPtr(true),
	}); err != nil {
		t.Fatalf("checklist: %v", err)
	}
	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{FactChecked: boolPtr(false)}); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	got := mustContent(t, st, c.ID)
	if got.Stage != store.StageReady {
		t.Fatalf("uncheck must not regress stage; got %s", got.Stage)
	}
	if got.FactChecked {
		t.Fatal("flag itself must be cleared")
	}
}

func TestPostedStageIsTerminalForReadyRule(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip D", store.PlatformTikTok, "")

	if err := eng.SetStage(c.ID, store.StagePosted); err != nil {
		t.Fatalf("set stage: %v", err)
	}
	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{
		FactChecked: boolPtr(true), CtaChecked: boolPtr(true),
	}); err != nil {
		t.Fatalf("checklist: %v", err)
	}
	if got := mustContent(t, st, c.ID); got.Stage != store.StagePosted {
		t.Fatalf("ready rule must not demote a posted item; got %s", got.Stage)
	}
}

func TestChecklistOnMissingRecordIsSilentlySkipped(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.ApplyChecklist("missing", ChecklistPatch{PostedChecked: boolPtr(true)}); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
}

func TestSetStageOnMissingRecordIsRejected(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.SetStage("missing", store.StageReady); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStageOverrideFlagsInconsistency(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip E", store.Platform2XKO, "")

	if err := eng.SetStage(c.ID, store.StagePosted); err != nil {
		t.Fatalf("set stage: %v", err)
	}
	got := mustContent(t, st, c.ID)
	if got.Stage != store.StagePosted {
		t.Fatalf("expected posted, got %s", got.Stage)
	}
	if got.FactChecked || got.PostedChecked {
		t.Fatal("override must not rewrite checklist flags")
	}

	// The inconsistency is surfaced in the activity log, not hidden.
	acts, err := st.ListActivities(10)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	found := false
	for _, a := range acts {
		if a.Type == "pipeline" && a.Level == store.LevelWarn {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warn activity for the checklist-inconsistent override")
	}
}

func TestPublishMetaForcesPosted(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip F", store.PlatformTikTok, "")

	if err := eng.SetPublishMeta(c.ID, PublishMeta{
		PublishedURL:      strPtr("https://example.com/post/1"),
		DiscordMessageURL: strPtr("https://discord.com/channels/1/2/3"),
	}); err != nil {
		t.Fatalf("publish meta: %v", err)
	}
	got := mustContent(t, st, c.ID)
	if got.Stage != store.StagePosted || !got.PostedChecked {
		t.Fatalf("published url must force posted: %+v", got)
	}
	if got.PublishedURL == "" || got.DiscordMessageURL == "" {
		t.Fatalf("metadata not stored: %+v", got)
	}
}

func TestBlankPublishURLDoesNotForcePosted(t *testing.T) {
	eng, st := newTestEngine(t)
	c, _ := st.CreateContent("clip G", store.PlatformTikTok, "")

	if err := eng.SetPublishMeta(c.ID, PublishMeta{PublishedURL: strPtr("   ")}); err != nil {
		t.Fatalf("publish meta: %v", err)
	}
	got := mustContent(t, st, c.ID)
	if got.Stage != store.StageIdea || got.PostedChecked {
		t.Fatalf("blank url must not force posted: %+v", got)
	}
}

// End-to-end path from the dashboard: create → fact check → cta check →
// publish.
func TestChecklistScenario(t *testing.T) {
	eng, st := newTestEngine(t)

	c, err := st.CreateContent("X", store.PlatformTikTok, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Stage != store.StageIdea {
		t.Fatalf("expected idea, got %s", c.Stage)
	}

	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{FactChecked: boolPtr(true)}); err != nil {
		t.Fatal(err)
	}
	if got := mustContent(t, st, c.ID); got.Stage != store.StageIdea {
		t.Fatalf("stage must stay idea, got %s", got.Stage)
	}

	if err := eng.ApplyChecklist(c.ID, ChecklistPatch{CtaChecked: boolPtr(true)}); err != nil {
		t.Fatal(err)
	}
	if got := mustContent(t, st, c.ID); got.Stage != store.StageReady {
		t.Fatalf("expected ready, got %s", got.Stage)
	}

	if err := eng.SetPublishMeta(c.ID, PublishMeta{PublishedURL: strPtr("http://x")}); err != nil {
		t.Fatal(err)
	}
	got := mustContent(t, st, c.ID)
	if got.Stage != store.StagePosted || !got.PostedChecked {
		t.Fatalf("expected posted with postedChecked, got %+v", got)
	}
}
