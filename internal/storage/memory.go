// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory backend
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Put stores a copy of record under id, replacing any previous value
func (m *MemoryStore) Put(ctx context.Context, id string, record map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = payload
	return nil
}

// GetAll returns copies of every record ordered by id
func (m *MemoryStore) GetAll(ctx context.Context) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]map[string]any, 0, len(m.records))
	for _, id := range m.sortedIDs() {
		var record map[string]any
		if err := json.Unmarshal(m.records[id], &record); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
		}
		out = append(out, record)
	}
	return out, nil
}

// ListIDs returns every stored id in ascending order
func (m *MemoryStore) ListIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedIDs(), nil
}

func (m *MemoryStore) sortedIDs() []string {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear removes every record
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string][]byte)
	return nil
}
