// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tejzpr/learnmap/internal/storage"
)

// Store persists raw records in a relational database
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open connection, running migrations first
func NewStore(db *gorm.DB) (*Store, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open connects using cfg and returns a migrated store
func Open(cfg *Config) (*Store, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

// Ping checks the connection, for health reporting
func (s *Store) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return Close(s.db)
}

// Put inserts or replaces the record with the given id
func (s *Store) Put(ctx context.Context, id string, record map[string]any) error {
	if err := storage.ValidateID(id); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}

	row := ExperienceRecord{
		ID:        id,
		LearnerID: nestedString(record, "learner", "id"),
		Location:  nestedString(record, "context", "location", "name"),
		Timestamp: nestedString(record, "timestamp"),
		Payload:   string(payload),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"learner_id", "location", "timestamp", "payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", id, err)
	}
	return nil
}

// GetAll returns every record ordered by id
func (s *Store) GetAll(ctx context.Context) ([]map[string]any, error) {
	var rows []ExperienceRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		var record map[string]any
		if err := json.Unmarshal([]byte(row.Payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", row.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ListIDs returns every record id in ascending order
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&ExperienceRecord{}).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list record ids: %w", err)
	}
	return ids, nil
}

// IDsByLearner returns the ids of records owned by learnerID
func (s *Store) IDsByLearner(ctx context.Context, learnerID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&ExperienceRecord{}).
		Where("learner_id = ?", learnerID).
		Order("timestamp, id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records for learner: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored records
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&ExperienceRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Clear deletes every stored record
func (s *Store) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ExperienceRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

func nestedString(m map[string]any, keys ...string) string {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[k]
	}
	s, _ := cur.(string)
	return s
}
