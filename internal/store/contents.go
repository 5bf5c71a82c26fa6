package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/missionctl/missionctl/internal/bus"
)

const contentColumns = `id, title, platform, stage, memo, source_path,
	fact_checked, cta_checked, posted_checked,
	published_url, discord_message_url, discord_message_id, created_at`

// ContentPatch is a partial update of a content item. Nil fields are left
// unchanged; this is how "not provided" is kept distinct from "cleared".
type ContentPatch struct {
	Title             *string
	Platform          *string
	Stage             *string
	Memo              *string
	FactChecked       *bool
	CtaChecked        *bool
	PostedChecked     *bool
	PublishedURL      *string
	DiscordMessageURL *string
	DiscordMessageID  *string
}

// DraftUpsert is the shape the draft importer feeds into the store.
type DraftUpsert struct {
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	Stage      string `json:"stage"`
	Memo       string `json:"memo,omitempty"`
	SourcePath string `json:"sourcePath"`
}

// CreateContent inserts a new content item at the idea stage.
func (s *Store) CreateContent(title, platform, memo string) (*ContentItem, error) {
	if err := oneOf(platform, PlatformTikTok, Platform2XKO, PlatformOther); err != nil {
		return nil, err
	}
	c := &ContentItem{
		ID:        newID(),
		Title:     title,
		Platform:  platform,
		Stage:     StageIdea,
		Memo:      memo,
		CreatedAt: nowMs(),
	}
	_, err := s.db.Exec(
		`INSERT INTO contents (id, title, platform, stage, memo, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Platform, c.Stage, c.Memo, c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.emit(CollectionContents, c.ID, bus.OpInsert)
	return c, nil
}

// ListContents returns all content items, newest first.
func (s *Store) ListContents() ([]ContentItem, error) {
	rows, err := s.db.Query(`SELECT ` + contentColumns + ` FROM contents ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// GetContent returns a content item by id.
func (s *Store) GetContent(id string) (*ContentItem, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM contents WHERE id = ?`, id)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// GetContentBySourcePath returns the content item imported from the given
// file, or ErrNotFound.
func (s *Store) GetContentBySourcePath(path string) (*ContentItem, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM contents WHERE source_path = ?`, path)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// PatchContent applies a partial update. Unset (nil) fields keep their
// stored values.
func (s *Store) PatchContent(id string, p ContentPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Platform != nil {
		if err := oneOf(*p.Platform, PlatformTikTok, Platform2XKO, PlatformOther); err != nil {
			return err
		}
		add("platform", *p.Platform)
	}
	if p.Stage != nil {
		if err := oneOf(*p.Stage, StageIdea, StageDraft, StageThumbnail, StageReady, StagePosted); err != nil {
			return err
		}
		add("stage", *p.Stage)
	}
	if p.Memo != nil {
		add("memo", *p.Memo)
	}
	if p.FactChecked != nil {
		add("fact_checked", *p.FactChecked)
	}
	if p.CtaChecked != nil {
		add("cta_checked", *p.CtaChecked)
	}
	if p.PostedChecked != nil {
		add("posted_checked", *p.PostedChecked)
	}
	if p.PublishedURL != nil {
		add("published_url", *p.PublishedURL)
	}
	if p.DiscordMessageURL != nil {
		add("discord_message_url", *p.DiscordMessageURL)
	}
	if p.DiscordMessageID != nil {
		add("discord_message_id", *p.DiscordMessageID)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE contents SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(CollectionContents, id, bus.OpPatch)
	return nil
}

// UpsertContentFromDraft inserts or refreshes a content item keyed by its
// source file path. Existing items get title/platform/stage/memo overwritten;
// checklist flags are untouched. Returns true when a new item was created.
func (s *Store) UpsertContentFromDraft(item DraftUpsert) (bool, error) {
	if err := oneOf(item.Platform, PlatformTikTok, Platform2XKO, PlatformOther); err != nil {
		return false, err
	}
	if err := oneOf(item.Stage, StageIdea, StageDraft, StageThumbnail, StageReady, StagePosted); err != nil {
		return false, err
	}
	if item.SourcePath == "" {
		return false, ErrInvalid
	}

	existing, err := s.GetContentBySourcePath(item.SourcePath)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if existing != nil {
		err := s.PatchContent(existing.ID, ContentPatch{
			Title:    &item.Title,
			Platform: &item.Platform,
			Stage:    &item.Stage,
			Memo:     &item.Memo,
		})
		return false, err
	}

	c := &ContentItem{
		ID:         newID(),
		Title:      item.Title,
		Platform:   item.Platform,
		Stage:      item.Stage,
		Memo:       item.Memo,
		SourcePath: item.SourcePath,
		CreatedAt:  nowMs(),
	}
	_, err = s.db.Exec(
		`INSERT INTO contents (id, title, platform, stage, memo, source_path, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Platform, c.Stage, c.Memo, c.SourcePath, c.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	s.emit(CollectionContents, c.ID, bus.OpInsert)
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(r rowScanner) (*ContentItem, error) {
	var c ContentItem
	err := r.Scan(
		&c.ID, &c.Title, &c.Platform, &c.Stage, &c.Memo, &c.SourcePath,
		&c.FactChecked, &c.CtaChecked, &c.PostedChecked,
		&c.PublishedURL, &c.DiscordMessageURL, &c.DiscordMessageID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
