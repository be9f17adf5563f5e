package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Progress journals which search segments a long harvest has completed, so
// an interrupted run can resume without refetching finished segments.
type Progress struct {
	path string
	run  string
	done map[string]struct{}
}

type progressFile struct {
	RunID             string   `json:"run_id"`
	UpdatedAt         string   `json:"updated_at"`
	CompletedSegments []string `json:"completed_segments"`
}

// OpenProgress loads the journal at path, or starts a fresh one with a new
// run id when the file is missing or unreadable.
func OpenProgress(path string) *Progress {
	p := &Progress{path: path, done: make(map[string]struct{})}
	b, err := os.ReadFile(path)
	if err != nil {
		p.run = uuid.NewString()
		return p
	}
	var f progressFile
	if err := json.Unmarshal(b, &f); err != nil {
		p.run = uuid.NewString()
		return p
	}
	p.run = f.RunID
	if p.run == "" {
		p.run = uuid.NewString()
	}
	for _, label := range f.CompletedSegments {
		p.done[label] = struct{}{}
	}
	return p
}

func (p *Progress) RunID() string { return p.run }

func (p *Progress) IsDone(label string) bool {
	_, ok := p.done[label]
	return ok
}

// MarkDone records the segment and flushes the journal to disk.
func (p *Progress) MarkDone(label string) error {
	p.done[label] = struct{}{}
	return p.flush()
}

// Clear removes the journal; called after a run finishes cleanly.
func (p *Progress) Clear() error {
	p.done = make(map[string]struct{})
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *Progress) flush() error {
	labels := make([]string, 0, len(p.done))
	for label := range p.done {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	f := progressFile{
		RunID:             p.run,
		UpdatedAt:         time.Now().UTC().Format(time.RFC3339),
		CompletedSegments: labels,
	}
	b, err := json.MarshalIndent(f, "", " ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
