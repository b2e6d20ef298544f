// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository wraps go-git operations on a record archive
type Repository struct {
	Path string
	repo *git.Repository
}

// InitRepository initializes a new git repository
func InitRepository(path string) (*Repository, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize git repository: %w", err)
	}

	return &Repository{
		Path: path,
		repo: repo,
	}, nil
}

// OpenRepository opens an existing git repository
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{
		Path: path,
		repo: repo,
	}, nil
}

// IsRepository reports whether path is the root of a git working tree
func IsRepository(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// Setup opens the repository at path, initializing it with a README
// commit when none exists yet
func Setup(path string) (*Repository, error) {
	if IsRepository(path) {
		return OpenRepository(path)
	}

	repo, err := InitRepository(path)
	if err != nil {
		return nil, err
	}

	readme := filepath.Join(path, "README.md")
	content := "# Learnmap\n\nThis repository holds captured learning experiences, one JSON file per record.\n"
	if err := os.WriteFile(readme, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to create README: %w", err)
	}

	msgFormat := CommitMessageFormats{}
	if err := repo.CommitFile(readme, msgFormat.InitialCommit()); err != nil {
		return nil, fmt.Errorf("failed to create initial commit: %w", err)
	}

	return repo, nil
}

// IsClean returns true if the repository has no uncommitted changes
func (r *Repository) IsClean() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// HasCommits reports whether HEAD points at a commit
func (r *Repository) HasCommits() (bool, error) {
	_, err := r.repo.Head()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to get HEAD: %w", err)
}
