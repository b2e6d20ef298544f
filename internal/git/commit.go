// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrNothingToCommit is returned when staged files match HEAD
var ErrNothingToCommit = errors.New("no changes to commit")

// CommitOptions holds options for creating commits
type CommitOptions struct {
	Author     string
	Email      string
	Message    string
	AllowEmpty bool
}

// DefaultCommitOptions returns default commit options
func DefaultCommitOptions() *CommitOptions {
	return &CommitOptions{
		Author: "Learnmap",
		Email:  "capture@learnmap.local",
	}
}

// CommitInfo summarizes one commit touching a file
type CommitInfo struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	When    time.Time `json:"when"`
}

// CommitFile commits a single file to the repository
func (r *Repository) CommitFile(filePath, message string) error {
	opts := DefaultCommitOptions()
	opts.Message = message
	return r.AddAndCommit([]string{filePath}, opts)
}

// AddAndCommit adds files and commits them
func (r *Repository) AddAndCommit(files []string, opts *CommitOptions) error {
	if opts == nil {
		opts = DefaultCommitOptions()
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(r.Path, file)
		if err != nil {
			relPath = file
		}

		if _, err := worktree.Add(filepath.ToSlash(relPath)); err != nil {
			return fmt.Errorf("failed to add file %s: %w", relPath, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if status.IsClean() && !opts.AllowEmpty {
		return ErrNothingToCommit
	}

	_, err = worktree.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return ErrNothingToCommit
	}
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// FileHistory returns up to limit commits touching filePath, newest first.
// limit <= 0 returns the full history.
func (r *Repository) FileHistory(filePath string, limit int) ([]CommitInfo, error) {
	relPath, err := filepath.Rel(r.Path, filePath)
	if err != nil {
		relPath = filePath
	}
	relPath = filepath.ToSlash(relPath)

	iter, err := r.repo.Log(&git.LogOptions{FileName: &relPath})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	var history []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(history) >= limit {
			return storer.ErrStop
		}
		history = append(history, CommitInfo{
			Hash:    c.Hash.String(),
			Message: c.Message,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return history, nil
}

// CommitMessageFormats provides standard commit message formats
type CommitMessageFormats struct{}

// CaptureExperience returns a commit message for a newly captured record
func (CommitMessageFormats) CaptureExperience(id string) string {
	return fmt.Sprintf("feat: Capture experience '%s'", id)
}

// UpdateExperience returns a commit message for an overwritten record
func (CommitMessageFormats) UpdateExperience(id string) string {
	return fmt.Sprintf("update: Modify experience '%s'", id)
}

// InitialCommit returns a commit message for repository initialization
func (CommitMessageFormats) InitialCommit() string {
	return "chore: Initialize Learnmap repository"
}
