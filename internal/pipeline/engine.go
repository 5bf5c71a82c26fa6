// Package pipeline keeps a content item's stage consistent with its
// completion checklist and explicit user intent.
package pipeline

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/missionctl/missionctl/internal/store"
)

// Engine applies checklist and stage mutations to content items.
type Engine struct {
	store *store.Store
}

// New creates a stage engine over the record store.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// ChecklistPatch carries the checklist flags of a single update. Nil fields
// leave the stored value unchanged.
type ChecklistPatch struct {
	FactChecked   *bool `json:"factChecked,omitempty"`
	CtaChecked    *bool `json:"ctaChecked,omitempty"`
	PostedChecked *bool `json:"postedChecked,omitempty"`
}

// PublishMeta carries publish evidence for a content item.
type PublishMeta struct {
	PublishedURL      *string `json:"publishedUrl,omitempty"`
	DiscordMessageURL *string `json:"discordMessageUrl,omitempty"`
	DiscordMessageID  *string `json:"discordMessageId,omitempty"`
}

// ApplyChecklist merges the patch over the stored checklist flags and
// re-derives the stage:
//
//  1. merged postedChecked       → stage = posted
//  2. merged fact && cta (and the item is not already posted) → stage = ready
//  3. otherwise the stage is left untouched; unchecking flags never
//     regresses an item to an earlier stage.
//
// A missing record is silently skipped: checklist updates are best-effort.
func (e *Engine) ApplyChecklist(id string, p ChecklistPatch) error {
	cur, err := e.store.GetContent(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	fact := cur.FactChecked
	if p.FactChecked != nil {
		fact = *p.FactChecked
	}
	cta := cur.CtaChecked
	if p.CtaChecked != nil {
		cta = *p.CtaChecked
	}
	posted := cur.PostedChecked
	if p.PostedChecked != nil {
		posted = *p.PostedChecked
	}

	patch := store.ContentPatch{
		FactChecked:   &fact,
		CtaChecked:    &cta,
		PostedChecked: &posted,
	}
	switch {
	case posted:
		stage := store.StagePosted
		patch.Stage = &stage
	case fact && cta && cur.Stage != store.StagePosted:
		stage := store.StageReady
		patch.Stage = &stage
	}

	err = e.store.PatchContent(id, patch)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between read and patch; same best-effort contract.
		return nil
	}
	return err
}

// SetStage overwrites the stage unconditionally, independent of checklist
// state. The override can land an item in a checklist-inconsistent state
// (stage=posted with factChecked=false); that window is kept on purpose as a
// manual escape hatch, and flagged in the activity log instead of hidden.
func (e *Engine) SetStage(id, stage string) error {
	cur, err := e.store.GetContent(id)
	if err != nil {
		return err
	}
	if err := e.store.PatchContent(id, store.ContentPatch{Stage: &stage}); err != nil {
		return err
	}

	if stage == store.StagePosted && !(cur.FactChecked && cur.CtaChecked && cur.PostedChecked) {
		slog.Warn("stage override bypassed checklist",
			"content", id, "stage", stage,
			"factChecked", cur.FactChecked, "ctaChecked", cur.CtaChecked, "postedChecked", cur.PostedChecked)
		_, _ = e.store.AddActivity("pipeline", "stage forced to posted with incomplete checklist", cur.Title, store.LevelWarn)
	}
	return nil
}

// SetPublishMeta patches publish metadata. A non-blank publishedUrl is
// treated as authoritative evidence of publication: it force-sets
// postedChecked and moves the item to posted.
func (e *Engine) SetPublishMeta(id string, m PublishMeta) error {
	patch := store.ContentPatch{
		PublishedURL:      m.PublishedURL,
		DiscordMessageURL: m.DiscordMessageURL,
		DiscordMessageID:  m.DiscordMessageID,
	}
	if m.PublishedURL != nil && strings.TrimSpace(*m.PublishedURL) != "" {
		posted := true
		stage := store.StagePosted
		patch.PostedChecked = &posted
		patch.Stage = &stage
	}
	return e.store.PatchContent(id, patch)
}
