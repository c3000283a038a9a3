package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/esaa/internal/model"
)

// LoadRoadmap reads the stored roadmap snapshot. Returns (nil, nil)
// when no roadmap has been written yet. A snapshot that exists but
// cannot be decoded also returns (nil, nil): views are derived caches,
// and verify treats an unreadable snapshot the same as a missing one.
func LoadRoadmap(root string) (*model.Roadmap, error) {
	path := filepath.Join(root, filepath.FromSlash(RoadmapPath))
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roadmap: %w", err)
	}
	var roadmap model.Roadmap
	if err := json.Unmarshal(raw, &roadmap); err != nil {
		return nil, nil
	}
	return &roadmap, nil
}

// SaveRoadmap rewrites the roadmap view whole.
func SaveRoadmap(root string, roadmap *model.Roadmap) error {
	return writeJSON(filepath.Join(root, filepath.FromSlash(RoadmapPath)), roadmap)
}

// SaveIssues rewrites the issues view whole.
func SaveIssues(root string, view *model.IssuesView) error {
	return writeJSON(filepath.Join(root, filepath.FromSlash(IssuesPath)), view)
}

// SaveLessons rewrites the lessons view whole.
func SaveLessons(root string, view *model.LessonsView) error {
	return writeJSON(filepath.Join(root, filepath.FromSlash(LessonsPath)), view)
}

// writeJSON writes v as 2-space indented JSON with a trailing newline,
// HTML escaping off to match the wire format.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure view dir: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
