// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rebuild copies learning records between storage backends, for
// example re-indexing a git-backed record directory into the database.
package rebuild

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/storage"
)

// ErrTargetNotEmpty is returned when the target holds records and Force is off
var ErrTargetNotEmpty = errors.New("target storage is not empty")

// Options configures rebuild behavior
type Options struct {
	Force   bool // Clear existing target data before import
	Decoder *experience.Decoder
	Logger  zerolog.Logger
}

// Result contains statistics from the import
type Result struct {
	Processed int      `json:"processed"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// Import decodes every record in from and writes the upgraded form to to.
// Records that fail to decode or persist are reported in Result.Errors and
// do not stop the import.
func Import(ctx context.Context, from, to storage.Storage, opts Options) (*Result, error) {
	if opts.Decoder == nil {
		opts.Decoder = experience.NewDecoder(experience.WithLogger(opts.Logger))
	}
	log := opts.Logger

	if err := handleExistingData(ctx, to, opts); err != nil {
		return nil, err
	}

	raw, err := from.GetAll(ctx)
	var readErr *storage.ReadError
	if err != nil && !errors.As(err, &readErr) {
		return nil, fmt.Errorf("failed to read source records: %w", err)
	}
	log.Info().Int("records", len(raw)).Msg("importing records")

	result := &Result{}
	if readErr != nil {
		for _, f := range readErr.Failures {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Path, f.Err))
		}
	}
	seen := make(map[string]bool, len(raw))

	for i, item := range raw {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++

		rec, err := opts.Decoder.DecodeOne(item)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", i, err))
			continue
		}

		if seen[rec.ID] {
			log.Debug().Str("id", rec.ID).Msg("skipping duplicate record")
			result.Skipped++
			continue
		}
		seen[rec.ID] = true

		m, err := rec.ToMap()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
			continue
		}
		if err := to.Put(ctx, rec.ID, m); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
			continue
		}
		result.Imported++
	}

	log.Info().
		Int("processed", result.Processed).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("import complete")

	return result, nil
}

// handleExistingData checks for existing data and clears it if force is enabled
func handleExistingData(ctx context.Context, to storage.Storage, opts Options) error {
	ids, err := to.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list existing records: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if !opts.Force {
		return fmt.Errorf("%w: %d existing records. Use --force to clear and rebuild", ErrTargetNotEmpty, len(ids))
	}

	clearer, ok := to.(storage.Clearer)
	if !ok {
		return fmt.Errorf("target storage %T cannot be cleared", to)
	}
	opts.Logger.Info().Int("records", len(ids)).Msg("force rebuild: clearing existing records")
	if err := clearer.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear target storage: %w", err)
	}
	return nil
}
