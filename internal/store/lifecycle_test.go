// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/tejzpr/learnmap/internal/database"
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/rebuild"
	"github.com/tejzpr/learnmap/internal/storage"
)

// TestLifecycle captures into a git-backed archive, restarts from disk, then
// rebuilds the database index and restarts from that
func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()
	root := filepath.Join(tempDir, "store")

	archive, err := storage.NewFileStore(root, storage.WithGit())
	require.NoError(t, err)

	s := New(archive)
	for _, rec := range []struct {
		id, learner, location string
		domains               []string
	}{
		{"r1", "alice", "Lab A", []string{"software", "design"}},
		{"r2", "bob", "Lab A", []string{"software", "ethics"}},
		{"r3", "alice", "Cafe", []string{"music"}},
	} {
		_, err := s.Capture(ctx, newRecord(t, rec.id, rec.learner, rec.location, rec.domains...))
		require.NoError(t, err)
	}
	want := s.Report()

	// Restart from the archive
	reopened, err := storage.NewFileStore(root)
	require.NoError(t, err)
	assert.True(t, reopened.Versioned())

	fromDisk := New(reopened)
	n, err := fromDisk.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, want, fromDisk.Report())

	history, err := reopened.History(ctx, "r1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// Rebuild the database index from the archive
	db, err := database.Open(&database.Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(tempDir, "learnmap.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	defer db.Close()

	result, err := rebuild.Import(ctx, reopened, db, rebuild.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	fromDB := New(db)
	n, err = fromDB.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, want, fromDB.Report())
	assert.Equal(t, []string{"r1", "r3"}, ids(fromDB.FindByLearner("alice")))
}

func TestLoad_SkipsUnreadableFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	archive, err := storage.NewFileStore(root)
	require.NoError(t, err)

	_, err = New(archive).Capture(ctx, newRecord(t, "good", "alice", "Lab A", "software"))
	require.NoError(t, err)

	dir := filepath.Join(root, "experiences", "2024", "01")
	require.NoError(t, os.MkdirAll(dir, 0755))
	broken := filepath.Join(dir, "broken.md")
	require.NoError(t, os.WriteFile(broken, []byte("---\nlearner:\n  id: bob\n"), 0644))

	s := New(archive)
	n, err := s.Load(ctx)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())

	var decodeErr *experience.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Len(t, decodeErr.Failures, 1)
	assert.Equal(t, broken, decodeErr.Failures[0].Source)
	assert.Contains(t, decodeErr.Messages()[0], "frontmatter not properly closed")
}

func TestLoad_UndatedFileKeepsTimestamp(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	archive, err := storage.NewFileStore(root)
	require.NoError(t, err)

	dir := filepath.Join(root, "experiences", "2024", "03")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "hand.yaml")
	record := `learner:
  id: erin
context:
  location:
    name: Garden
experienceData:
  type: observation
  description: watched bees
`
	require.NoError(t, os.WriteFile(path, []byte(record), 0644))
	modified := time.Date(2024, 3, 5, 19, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, modified, modified))

	first := New(archive)
	_, err = first.Load(ctx)
	require.NoError(t, err)
	second := New(archive)
	_, err = second.Load(ctx)
	require.NoError(t, err)

	a, ok := first.Get("hand")
	require.True(t, ok)
	b, ok := second.Get("hand")
	require.True(t, ok)
	assert.Equal(t, "2024-03-05T19:30:00Z", a.Timestamp)
	assert.Equal(t, a.Timestamp, b.Timestamp)
}
