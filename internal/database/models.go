// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"time"
)

// ExperienceRecord is one persisted learning record. Payload holds the raw
// JSON document; the other columns are extracted for querying.
type ExperienceRecord struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	LearnerID string    `gorm:"index;size:255" json:"learner_id"`
	Location  string    `gorm:"index;size:255" json:"location"`
	Timestamp string    `gorm:"size:64" json:"timestamp"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ExperienceRecord
func (ExperienceRecord) TableName() string {
	return "learnmap_experiences"
}
