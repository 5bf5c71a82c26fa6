// Package notes serves the workspace's read-only reference notes: a root
// note file plus a directory of dated markdown notes.
package notes

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// MaxSearchHits caps a note search so a broad query cannot return the
// whole corpus line by line.
const MaxSearchHits = 200

var (
	// ErrBadPath rejects traversal attempts ("..").
	ErrBadPath = errors.New("notes: invalid file path")
	// ErrForbidden rejects references outside the root file and notes dir.
	ErrForbidden = errors.New("notes: file not allowed")
	// ErrNotFound reports an allowed but absent note file.
	ErrNotFound = errors.New("notes: file not found")
)

// Service reads note files. Client-visible names stay short regardless of
// where the files live on disk: the root file by its base name (e.g.
// "MEMORY.md"), dated notes as "<dir>/<name>" (e.g. "memory/2024-01-01.md").
type Service struct {
	rootPath string
	dirPath  string
	rootName string
	dirName  string
}

// NewService builds a Service from the resolved root-file and notes-dir
// paths, which may sit outside the workspace.
func NewService(rootPath, dirPath string) *Service {
	return &Service{
		rootPath: rootPath,
		dirPath:  dirPath,
		rootName: filepath.Base(rootPath),
		dirName:  filepath.Base(dirPath),
	}
}

// List returns the visible note files: the root file if present, then all
// .md files in the notes directory, reverse-sorted so dated filenames come
// newest first.
func (s *Service) List() ([]string, error) {
	var files []string
	if _, err := os.Stat(s.rootPath); err == nil {
		files = append(files, s.rootName)
	}

	entries, err := os.ReadDir(s.dirPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("notes: read dir: %w", err)
	}

	var dated []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		dated = append(dated, path.Join(s.dirName, entry.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dated)))
	return append(files, dated...), nil
}

// Read returns the content of one note file after validating the path.
func (s *Service) Read(file string) (string, error) {
	if err := s.validate(file); err != nil {
		return "", err
	}
	body, err := os.ReadFile(s.resolve(file))
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	if err != nil {
		return "", fmt.Errorf("notes: read %s: %w", file, err)
	}
	return string(body), nil
}

// validate admits exactly the root note file and files directly under the
// notes directory. Anything containing ".." is a traversal attempt.
func (s *Service) validate(file string) error {
	if file == "" || strings.Contains(file, "..") {
		return ErrBadPath
	}
	if file == s.rootName {
		return nil
	}
	if strings.HasPrefix(file, s.dirName+"/") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrForbidden, file)
}

// resolve maps a validated client name back to its on-disk path.
func (s *Service) resolve(file string) string {
	if file == s.rootName {
		return s.rootPath
	}
	return filepath.Join(s.dirPath, strings.TrimPrefix(file, s.dirName+"/"))
}

// Hit is one matching line from a note search.
type Hit struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Search scans every note file for lines containing the query substring,
// case-insensitive, capped at MaxSearchHits. Line numbers are 1-based.
func (s *Service) Search(query string) ([]Hit, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	files, err := s.List()
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, file := range files {
		body, err := os.ReadFile(s.resolve(file))
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(body), "\n") {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			hits = append(hits, Hit{File: file, Line: i + 1, Text: strings.TrimSpace(line)})
			if len(hits) >= MaxSearchHits {
				return hits, nil
			}
		}
	}
	return hits, nil
}
