// Package drafts scans the agent's content-drafts directory and imports
// each draft file into the content pipeline.
package drafts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/missionctl/missionctl/internal/store"
)

// MaxFiles caps a single scan so a runaway drafts directory cannot flood
// the pipeline.
const MaxFiles = 50

const maxMemoLen = 120

// Draft is one scanned draft file, normalized for import.
type Draft struct {
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	Memo       string `json:"memo,omitempty"`
	SourcePath string `json:"sourcePath"`
}

// Scan reads the drafts directory and returns the newest MaxFiles .txt
// drafts. Files sort reverse-lexicographically, which puts date-prefixed
// filenames newest first. A missing directory is not an error: it just
// yields no drafts.
func Scan(dir string) ([]Draft, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: read %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > MaxFiles {
		names = names[:MaxFiles]
	}

	drafts := make([]Draft, 0, len(names))
	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable draft", "file", name, "error", err)
			continue
		}
		drafts = append(drafts, fromFile(name, string(body)))
	}
	return drafts, nil
}

// ImportResult summarizes one import pass.
type ImportResult struct {
	Scanned  int `json:"scanned"`
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// Import scans dir and upserts each draft into the store, keyed on its
// source path. Existing items get title/platform/stage/memo overwritten;
// checklist flags are left alone.
func Import(st *store.Store, dir string) (*ImportResult, error) {
	drafts, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Scanned: len(drafts)}
	for _, d := range drafts {
		created, err := st.UpsertContentFromDraft(store.DraftUpsert{
			Title:      d.Title,
			Platform:   d.Platform,
			Stage:      store.StageDraft,
			Memo:       d.Memo,
			SourcePath: d.SourcePath,
		})
		if err != nil {
			return nil, err
		}
		if created {
			res.Imported++
		} else {
			res.Updated++
		}
	}

	if res.Scanned > 0 {
		_, _ = st.AddActivity("draft-import",
			fmt.Sprintf("imported %d drafts (%d new)", res.Scanned, res.Imported),
			"", store.LevelInfo)
	}
	return res, nil
}

// fromFile derives pipeline metadata from a draft's filename and body.
// Titles keep the full filename so operators can match an item back to its
// file at a glance.
func fromFile(name, body string) Draft {
	platform := platformFor(name)

	var title string
	switch platform {
	case store.PlatformTikTok:
		title = "TikTok下書き: " + name
	case store.Platform2XKO:
		title = "2XKO記事下書き: " + name
	default:
		title = "下書き: " + name
	}

	memo := firstLine(body)
	if memo != "" {
		memo = "冒頭: " + memo
	}

	return Draft{
		Title:      title,
		Platform:   platform,
		Memo:       memo,
		SourcePath: name,
	}
}

// platformFor classifies a draft by filename substring.
func platformFor(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "tiktok"):
		return store.PlatformTikTok
	case strings.Contains(lower, "2xko"):
		return store.Platform2XKO
	default:
		return store.PlatformOther
	}
}

// firstLine returns the first non-blank line of body, truncated to
// maxMemoLen characters. Memos are mostly Japanese, so the cap counts
// runes rather than bytes.
func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if runes := []rune(line); len(runes) > maxMemoLen {
			return string(runes[:maxMemoLen])
		}
		return line
	}
	return ""
}
