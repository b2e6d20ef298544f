// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package recommend ranks learners, locations and domains for a learner by
// Jaccard similarity of domain sets.
package recommend

import (
	"sort"

	"github.com/tejzpr/learnmap/internal/experience"
)

// DefaultLimit is used when k <= 0
const DefaultLimit = 5

// LearnerMatch is a learner with overlapping interests
type LearnerMatch struct {
	LearnerID     string   `json:"learnerId"`
	Similarity    float64  `json:"similarity"`
	SharedDomains []string `json:"sharedDomains"`
}

// LocationMatch is an unvisited location whose activity resembles the learner's
type LocationMatch struct {
	Location      string   `json:"location"`
	Similarity    float64  `json:"similarity"`
	SharedDomains []string `json:"sharedDomains"`
}

// DomainSuggestion is a domain the learner has not explored yet
type DomainSuggestion struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Engine answers recommendation queries over one snapshot of records
type Engine struct {
	records         []*experience.LearningExperience
	learnerDomains  map[string]Set
	locationDomains map[string]Set
	visited         map[string]Set
}

// New indexes records for recommendation queries
func New(records []*experience.LearningExperience) *Engine {
	e := &Engine{
		records:         records,
		learnerDomains:  make(map[string]Set),
		locationDomains: make(map[string]Set),
		visited:         make(map[string]Set),
	}

	for _, rec := range records {
		learner := rec.Learner.ID
		location := rec.Context.Location.Name

		if e.learnerDomains[learner] == nil {
			e.learnerDomains[learner] = make(Set)
		}
		if e.locationDomains[location] == nil {
			e.locationDomains[location] = make(Set)
		}
		if e.visited[learner] == nil {
			e.visited[learner] = make(Set)
		}
		e.visited[learner][location] = true

		for _, d := range rec.Domains() {
			e.learnerDomains[learner][d] = true
			e.locationDomains[location][d] = true
		}
	}
	return e
}

// LearnerDomains returns the union of domains across a learner's records
func (e *Engine) LearnerDomains(id string) []string {
	return e.learnerDomains[id].Sorted()
}

// SimilarLearners ranks other learners by similarity to id, dropping
// learners with nothing in common. Ties go to the smaller id.
func (e *Engine) SimilarLearners(id string, k int) []LearnerMatch {
	target := e.learnerDomains[id]
	matches := []LearnerMatch{}

	for other, domains := range e.learnerDomains {
		if other == id {
			continue
		}
		sim := Similarity(target, domains)
		if sim == 0 {
			continue
		}
		matches = append(matches, LearnerMatch{
			LearnerID:     other,
			Similarity:    sim,
			SharedDomains: target.Intersect(domains).Sorted(),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].LearnerID < matches[j].LearnerID
	})
	return limit(matches, k)
}

// Locations ranks locations id has not visited by similarity of their
// domain set to the learner's
func (e *Engine) Locations(id string, k int) []LocationMatch {
	target := e.learnerDomains[id]
	visited := e.visited[id]
	matches := []LocationMatch{}

	for location, domains := range e.locationDomains {
		if visited[location] {
			continue
		}
		sim := Similarity(target, domains)
		if sim == 0 {
			continue
		}
		matches = append(matches, LocationMatch{
			Location:      location,
			Similarity:    sim,
			SharedDomains: target.Intersect(domains).Sorted(),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Location < matches[j].Location
	})
	return limit(matches, k)
}

// Domains counts, across records sharing at least one domain with the
// learner, the domains the learner has not explored
func (e *Engine) Domains(id string, k int) []DomainSuggestion {
	target := e.learnerDomains[id]
	counts := make(map[string]int)

	for _, rec := range e.records {
		domains := rec.Domains()
		overlaps := false
		for _, d := range domains {
			if target[d] {
				overlaps = true
				break
			}
		}
		if !overlaps {
			continue
		}
		for _, d := range domains {
			if !target[d] {
				counts[d]++
			}
		}
	}

	suggestions := make([]DomainSuggestion, 0, len(counts))
	for d, c := range counts {
		suggestions = append(suggestions, DomainSuggestion{Domain: d, Count: c})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Count != suggestions[j].Count {
			return suggestions[i].Count > suggestions[j].Count
		}
		return suggestions[i].Domain < suggestions[j].Domain
	})
	return limit(suggestions, k)
}

func limit[T any](items []T, k int) []T {
	if k <= 0 {
		k = DefaultLimit
	}
	if len(items) > k {
		return items[:k]
	}
	return items
}
