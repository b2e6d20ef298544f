// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package store holds validated learning records and the location, domain
// and learner indices derived from them.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tejzpr/learnmap/internal/analysis"
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/storage"
)

// Store owns the record set and three indices. An id appears at most once
// under any key, and a key exists only while some record references it.
type Store struct {
	mu      sync.RWMutex
	backend storage.Storage
	decoder *experience.Decoder
	log     zerolog.Logger

	records    map[string]*experience.LearningExperience
	byLocation map[string][]string
	byDomain   map[string][]string
	byLearner  map[string][]string
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithDecoder sets the decoder used by CaptureRaw and Load
func WithDecoder(d *experience.Decoder) Option {
	return func(s *Store) { s.decoder = d }
}

// New creates an empty store persisting to backend
func New(backend storage.Storage, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		log:        zerolog.Nop(),
		records:    make(map[string]*experience.LearningExperience),
		byLocation: make(map[string][]string),
		byDomain:   make(map[string][]string),
		byLearner:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = experience.NewDecoder(experience.WithLogger(s.log))
	}
	return s
}

// Ping checks the backend when it supports connection checks
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.backend.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Capture validates rec, persists it, then indexes it. A persistence failure
// is returned and leaves the in-memory state untouched.
func (s *Store) Capture(ctx context.Context, rec *experience.LearningExperience) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("%w: nil record", experience.ErrInvalidRecord)
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}

	raw, err := rec.ToMap()
	if err != nil {
		return "", err
	}

	if err := s.backend.Put(ctx, rec.ID, raw); err != nil {
		s.log.Error().Err(err).Str("id", rec.ID).Msg("failed to persist record")
		return "", fmt.Errorf("failed to persist record %s: %w", rec.ID, err)
	}

	s.mu.Lock()
	s.index(rec.Clone())
	s.mu.Unlock()

	s.log.Debug().Str("id", rec.ID).Str("learner", rec.Learner.ID).Msg("captured record")
	return rec.ID, nil
}

// CaptureRaw decodes a loosely shaped record and captures it
func (s *Store) CaptureRaw(ctx context.Context, raw map[string]any) (string, error) {
	rec, err := s.decoder.DecodeOne(raw)
	if err != nil {
		return "", err
	}
	return s.Capture(ctx, rec)
}

// Load reads every record from the backend through the decoder and indexes
// the ones that decode. Failing records and unreadable files are reported as
// an *experience.DecodeError alongside the number indexed.
func (s *Store) Load(ctx context.Context) (int, error) {
	raw, err := s.backend.GetAll(ctx)
	var readErr *storage.ReadError
	if err != nil && !errors.As(err, &readErr) {
		return 0, fmt.Errorf("failed to load records: %w", err)
	}

	records, decodeErr := s.decoder.DecodeMaps(raw)

	var batchErr *experience.DecodeError
	if decodeErr != nil && !errors.As(decodeErr, &batchErr) {
		return 0, decodeErr
	}
	if readErr != nil {
		if batchErr == nil {
			batchErr = &experience.DecodeError{}
		}
		for _, f := range readErr.Failures {
			batchErr.Failures = append(batchErr.Failures, experience.RecordError{
				Source:  f.Path,
				Message: f.Err.Error(),
			})
		}
	}
	if batchErr != nil {
		for _, msg := range batchErr.Messages() {
			s.log.Warn().Str("error", msg).Msg("skipping stored record")
		}
	}

	s.mu.Lock()
	for _, rec := range records {
		s.index(rec)
	}
	s.mu.Unlock()

	s.log.Info().Int("loaded", len(records)).Int("total", len(raw)).Msg("loaded stored records")
	if batchErr != nil {
		return len(records), batchErr
	}
	return len(records), nil
}

// index inserts rec, first removing the previous record with the same id
// from every index key. Callers hold the write lock.
func (s *Store) index(rec *experience.LearningExperience) {
	if old, ok := s.records[rec.ID]; ok {
		s.unindex(old)
	}
	s.records[rec.ID] = rec

	addID(s.byLocation, rec.Context.Location.Name, rec.ID)
	for _, d := range rec.Domains() {
		addID(s.byDomain, d, rec.ID)
	}
	addID(s.byLearner, rec.Learner.ID, rec.ID)
}

func (s *Store) unindex(rec *experience.LearningExperience) {
	removeID(s.byLocation, rec.Context.Location.Name, rec.ID)
	for _, d := range rec.Domains() {
		removeID(s.byDomain, d, rec.ID)
	}
	removeID(s.byLearner, rec.Learner.ID, rec.ID)
	delete(s.records, rec.ID)
}

func addID(idx map[string][]string, key, id string) {
	for _, existing := range idx[key] {
		if existing == id {
			return
		}
	}
	idx[key] = append(idx[key], id)
}

func removeID(idx map[string][]string, key, id string) {
	ids := idx[key]
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(idx, key)
		return
	}
	idx[key] = ids
}

// Get returns a copy of the record with id
func (s *Store) Get(id string) (*experience.LearningExperience, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a point-in-time copy of every record ordered by id
func (s *Store) All() []*experience.LearningExperience {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return s.lookup(ids)
}

// FindByLocation returns the records captured at a location, in capture order
func (s *Store) FindByLocation(name string) []*experience.LearningExperience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byLocation[name])
}

// FindByDomain returns the records tagged with domain, in capture order
func (s *Store) FindByDomain(domain string) []*experience.LearningExperience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byDomain[domain])
}

// FindByLearner returns the records owned by a learner, in capture order
func (s *Store) FindByLearner(id string) []*experience.LearningExperience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byLearner[id])
}

func (s *Store) lookup(ids []string) []*experience.LearningExperience {
	out := make([]*experience.LearningExperience, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Locations returns every indexed location name, sorted
func (s *Store) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keys(s.byLocation)
}

// Domains returns every indexed domain, sorted
func (s *Store) Domains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keys(s.byDomain)
}

// Learners returns every indexed learner id, sorted
func (s *Store) Learners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keys(s.byLearner)
}

func keys(idx map[string][]string) []string {
	out := make([]string, 0, len(idx))
	for k := range idx {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Hotspots ranks locations by the number of distinct domains observed there
func (s *Store) Hotspots(limit int) []analysis.Hotspot {
	return analysis.Hotspots(s.All(), limit)
}

// TopDomains ranks domains by the number of records carrying them
func (s *Store) TopDomains(limit int) []analysis.DomainCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]analysis.DomainCount, 0, len(s.byDomain))
	for domain, ids := range s.byDomain {
		ranked = append(ranked, analysis.DomainCount{Domain: domain, Count: len(ids)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Domain < ranked[j].Domain
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Report is an aggregate snapshot of the store
type Report struct {
	TotalRecords      int                    `json:"totalRecords"`
	Locations         int                    `json:"locations"`
	Domains           int                    `json:"domains"`
	Learners          int                    `json:"learners"`
	Interdisciplinary int                    `json:"interdisciplinary"`
	Hotspots          []analysis.Hotspot     `json:"hotspots"`
	TopDomains        []analysis.DomainCount `json:"topDomains"`
}

// Report aggregates counts and rankings from one snapshot
func (s *Store) Report() Report {
	s.mu.RLock()
	snapshot := make([]*experience.LearningExperience, 0, len(s.records))
	for _, rec := range s.records {
		snapshot = append(snapshot, rec)
	}
	report := Report{
		TotalRecords: len(s.records),
		Locations:    len(s.byLocation),
		Domains:      len(s.byDomain),
		Learners:     len(s.byLearner),
	}
	s.mu.RUnlock()

	report.Interdisciplinary = analysis.CountInterdisciplinary(snapshot)
	report.Hotspots = analysis.Hotspots(snapshot, 0)
	report.TopDomains = analysis.TopDomains(snapshot, 0)
	return report
}
