// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRepository(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "test-repo")

	repo, err := InitRepository(repoPath)
	require.NoError(t, err)
	assert.Equal(t, repoPath, repo.Path)
	assert.True(t, IsRepository(repoPath))

	hasCommits, err := repo.HasCommits()
	require.NoError(t, err)
	assert.False(t, hasCommits)
}

func TestOpenRepository_NotExist(t *testing.T) {
	_, err := OpenRepository(filepath.Join(t.TempDir(), "nonexistent"))
	assert.Error(t, err)
	assert.False(t, IsRepository(filepath.Join(t.TempDir(), "nonexistent")))
}

func TestSetup_InitializesOnce(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "archive")

	repo, err := Setup(repoPath)
	require.NoError(t, err)

	hasCommits, err := repo.HasCommits()
	require.NoError(t, err)
	assert.True(t, hasCommits)

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)

	again, err := Setup(repoPath)
	require.NoError(t, err)
	history, err := again.FileHistory(filepath.Join(repoPath, "README.md"), 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAddAndCommit(t *testing.T) {
	repoPath := t.TempDir()
	repo, err := Setup(repoPath)
	require.NoError(t, err)

	file := filepath.Join(repoPath, "experiences", "exp_1.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, os.WriteFile(file, []byte(`{"id":"exp_1"}`), 0644))

	msg := CommitMessageFormats{}
	require.NoError(t, repo.CommitFile(file, msg.CaptureExperience("exp_1")))

	err = repo.CommitFile(file, msg.UpdateExperience("exp_1"))
	assert.ErrorIs(t, err, ErrNothingToCommit)

	require.NoError(t, os.WriteFile(file, []byte(`{"id":"exp_1","v":2}`), 0644))
	require.NoError(t, repo.CommitFile(file, msg.UpdateExperience("exp_1")))

	history, err := repo.FileHistory(file, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "update: Modify experience 'exp_1'", history[0].Message)
	assert.Equal(t, "feat: Capture experience 'exp_1'", history[1].Message)
	assert.Equal(t, "Learnmap", history[0].Author)

	limited, err := repo.FileHistory(file, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
