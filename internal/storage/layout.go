// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tejzpr/learnmap/internal/experience"
)

// ExperiencesDir is the subdirectory of the root holding record files
const ExperiencesDir = "experiences"

// Organizer maps records to file paths: <root>/experiences/<yyyy>/<mm>/<id>.json
type Organizer struct {
	root string
}

// NewOrganizer creates an organizer rooted at root
func NewOrganizer(root string) *Organizer {
	return &Organizer{root: root}
}

// BaseDir returns the directory holding every record file
func (o *Organizer) BaseDir() string {
	return filepath.Join(o.root, ExperiencesDir)
}

// RecordPath returns the path for a record captured at capturedAt
func (o *Organizer) RecordPath(id string, capturedAt time.Time) string {
	year := capturedAt.Format("2006")
	month := capturedAt.Format("01")
	return filepath.Join(o.BaseDir(), year, month, fmt.Sprintf("%s.json", id))
}

// RecordPathFor derives the path from the record's timestamp field, falling
// back to now when the field is missing or unparseable
func (o *Organizer) RecordPathFor(id string, record map[string]any, now time.Time) string {
	capturedAt := now
	if ts, ok := record["timestamp"].(string); ok {
		if t, err := experience.ParseTimestamp(ts, time.UTC); err == nil {
			capturedAt = t.UTC()
		}
	}
	return o.RecordPath(id, capturedAt)
}

// recordExtensions are the file formats read back from the archive
var recordExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".md":   true,
}

// IDFromPath extracts the record id from a record file path. ok is false for
// files that are not records.
func IDFromPath(path string) (id string, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if !recordExtensions[ext] {
		return "", false
	}
	base := filepath.Base(path)
	id = strings.TrimSuffix(base, filepath.Ext(base))
	if id == "" || strings.HasPrefix(id, ".") || strings.EqualFold(id, "readme") {
		return "", false
	}
	return id, true
}
