// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package analysis derives patterns from a snapshot of learning records.
// Every function is pure: inputs are never modified.
package analysis

import (
	"sort"

	"github.com/tejzpr/learnmap/internal/experience"
)

// Hotspot is a location ranked by how many distinct domains were observed there
type Hotspot struct {
	Location  string   `json:"location"`
	Diversity int      `json:"diversity"`
	Count     int      `json:"count"`
	Domains   []string `json:"domains"`
}

// DomainCount is the number of records tagged with Domain
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Interdisciplinary returns the records tagged with more than one distinct domain
func Interdisciplinary(records []*experience.LearningExperience) []*experience.LearningExperience {
	var out []*experience.LearningExperience
	for _, rec := range records {
		if rec.IsInterdisciplinary() {
			out = append(out, rec)
		}
	}
	return out
}

// CountInterdisciplinary counts the interdisciplinary records
func CountInterdisciplinary(records []*experience.LearningExperience) int {
	n := 0
	for _, rec := range records {
		if rec.IsInterdisciplinary() {
			n++
		}
	}
	return n
}

// DomainSet returns the distinct domains across records, sorted
func DomainSet(records []*experience.LearningExperience) []string {
	set := make(map[string]bool)
	for _, rec := range records {
		for _, d := range rec.Domains() {
			set[d] = true
		}
	}
	return sortedKeys(set)
}

// Diversity is the number of distinct domains across records
func Diversity(records []*experience.LearningExperience) int {
	return len(DomainSet(records))
}

// Hotspots ranks locations by diversity descending, then name ascending.
// limit <= 0 returns every location.
func Hotspots(records []*experience.LearningExperience, limit int) []Hotspot {
	byLocation := make(map[string][]*experience.LearningExperience)
	for _, rec := range records {
		name := rec.Context.Location.Name
		byLocation[name] = append(byLocation[name], rec)
	}

	hotspots := make([]Hotspot, 0, len(byLocation))
	for name, recs := range byLocation {
		domains := DomainSet(recs)
		hotspots = append(hotspots, Hotspot{
			Location:  name,
			Diversity: len(domains),
			Count:     len(recs),
			Domains:   domains,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Diversity != hotspots[j].Diversity {
			return hotspots[i].Diversity > hotspots[j].Diversity
		}
		return hotspots[i].Location < hotspots[j].Location
	})

	return truncate(hotspots, limit)
}

// TopDomains ranks domains by the number of records carrying them, then by name.
// limit <= 0 returns every domain.
func TopDomains(records []*experience.LearningExperience, limit int) []DomainCount {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, d := range rec.Domains() {
			counts[d]++
		}
	}

	ranked := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		ranked = append(ranked, DomainCount{Domain: d, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Domain < ranked[j].Domain
	})

	return truncate(ranked, limit)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
