// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tejzpr/learnmap/internal/git"
)

// FileStore keeps one JSON file per record under the organizer layout.
// Hand-authored YAML record files are read back as well. When the root is a
// git repository every Put is committed.
type FileStore struct {
	mu        sync.Mutex
	organizer *Organizer
	repo      *git.Repository
	log       zerolog.Logger
	now       func() time.Time
}

// FileOption configures a FileStore
type FileOption func(*fileOptions)

type fileOptions struct {
	initGit bool
	log     zerolog.Logger
	now     func() time.Time
}

// WithGit initializes a git repository at the root when none exists
func WithGit() FileOption {
	return func(o *fileOptions) { o.initGit = true }
}

// WithFileLogger sets the logger
func WithFileLogger(log zerolog.Logger) FileOption {
	return func(o *fileOptions) { o.log = log }
}

// WithFileClock overrides the clock used to place records without a timestamp
func WithFileClock(now func() time.Time) FileOption {
	return func(o *fileOptions) { o.now = now }
}

// NewFileStore opens or creates a record archive at root
func NewFileStore(root string, opts ...FileOption) (*FileStore, error) {
	o := fileOptions{log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	organizer := NewOrganizer(root)
	if err := os.MkdirAll(organizer.BaseDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fsStore := &FileStore{
		organizer: organizer,
		log:       o.log,
		now:       o.now,
	}

	switch {
	case o.initGit:
		repo, err := git.Setup(root)
		if err != nil {
			return nil, fmt.Errorf("failed to set up git repository: %w", err)
		}
		fsStore.repo = repo
	case git.IsRepository(root):
		repo, err := git.OpenRepository(root)
		if err != nil {
			return nil, err
		}
		fsStore.repo = repo
	}

	return fsStore, nil
}

// Versioned reports whether writes are committed to git
func (s *FileStore) Versioned() bool {
	return s.repo != nil
}

// Put writes record to its file, replacing any earlier file for the same id
func (s *FileStore) Put(ctx context.Context, id string, record map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findPaths(id)
	if err != nil {
		return err
	}

	path := s.organizer.RecordPathFor(id, record, s.now())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := writeFileAtomic(path, payload); err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}

	var stale []string
	for _, p := range existing {
		if p == path {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale record file: %w", err)
		}
		stale = append(stale, p)
	}

	if s.repo == nil {
		return nil
	}

	msgFormat := git.CommitMessageFormats{}
	message := msgFormat.CaptureExperience(id)
	if len(existing) > 0 {
		message = msgFormat.UpdateExperience(id)
	}

	commitOpts := git.DefaultCommitOptions()
	commitOpts.Message = message
	err = s.repo.AddAndCommit(append([]string{path}, stale...), commitOpts)
	if errors.Is(err, git.ErrNothingToCommit) {
		s.log.Debug().Str("id", id).Msg("record unchanged, nothing to commit")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to commit record %s: %w", id, err)
	}
	return nil
}

// GetAll reads every record file. Files are returned ordered by path. Files
// that fail to parse are skipped and reported in a *ReadError.
func (s *FileStore) GetAll(ctx context.Context) ([]map[string]any, error) {
	paths, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(paths))
	var failures []FileError
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := readRecordFile(path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable record file")
			failures = append(failures, FileError{Path: path, Err: err})
			continue
		}
		records = append(records, record)
	}
	if len(failures) > 0 {
		return records, &ReadError{Failures: failures}
	}
	return records, nil
}

// ListIDs returns every record id in ascending order
func (s *FileStore) ListIDs(ctx context.Context) ([]string, error) {
	paths, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(paths))
	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		id, _ := IDFromPath(path)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// History returns the commits touching a record, newest first
func (s *FileStore) History(ctx context.Context, id string, limit int) ([]git.CommitInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, fmt.Errorf("storage at %s is not a git repository", s.organizer.root)
	}

	s.mu.Lock()
	paths, err := s.findPaths(id)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.repo.FileHistory(paths[0], limit)
}

func (s *FileStore) scan(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.organizer.BaseDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != s.organizer.BaseDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := IDFromPath(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan storage: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// findPaths returns every file currently holding id
func (s *FileStore) findPaths(id string) ([]string, error) {
	var matches []string
	for _, ext := range []string{".json", ".yaml", ".yml", ".md"} {
		pattern := filepath.Join(s.organizer.BaseDir(), "*", "*", id+ext)
		found, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to look up record %s: %w", id, err)
		}
		matches = append(matches, found...)
	}
	sort.Strings(matches)
	return matches, nil
}

// readRecordFile parses one record file. A missing id is taken from the file
// name and a missing timestamp from the modification time, so hand-written
// files decode the same way on every load.
func readRecordFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		if record != nil {
			record = normalizeYAML(record).(map[string]any)
		}
	case ".md":
		record, err = parseJournal(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse journal: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	}

	if record == nil {
		record = map[string]any{}
	}
	if _, ok := record["id"]; !ok {
		if id, ok := IDFromPath(path); ok {
			record["id"] = id
		}
	}
	if ts, ok := record["timestamp"]; !ok || ts == nil || ts == "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat record file: %w", err)
		}
		record["timestamp"] = info.ModTime().UTC().Format(time.RFC3339)
	}
	return record, nil
}

// normalizeYAML converts YAML-specific values into their JSON equivalents
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
