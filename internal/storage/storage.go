// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package storage persists raw learning records. Records are kept as
// untyped maps so that every load path runs through the Decoder.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record id is unknown to the backend
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned for ids that cannot be used as a storage key
	ErrInvalidID = errors.New("invalid record id")
)

// Storage is the persistence collaborator of the indexing store
type Storage interface {
	Put(ctx context.Context, id string, record map[string]any) error
	GetAll(ctx context.Context) ([]map[string]any, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// Clearer is implemented by backends that can drop every record at once
type Clearer interface {
	Clear(ctx context.Context) error
}

// Pinger is implemented by backends that hold a connection worth checking
type Pinger interface {
	Ping(ctx context.Context) error
}

// FileError is a record file that could not be parsed
type FileError struct {
	Path string
	Err  error
}

// ReadError is returned by GetAll alongside the records it could read when
// some record files failed to parse
type ReadError struct {
	Failures []FileError
}

func (e *ReadError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	return strings.Join(msgs, "\n")
}

// ValidateID rejects empty ids and ids that would escape a storage directory
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
