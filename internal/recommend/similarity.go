// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recommend

import "sort"

// Set is a string set
type Set map[string]bool

// NewSet builds a set from values, ignoring duplicates
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = true
	}
	return s
}

// Sorted returns the members in ascending order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members present in both sets
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for v := range s {
		if other[v] {
			out[v] = true
		}
	}
	return out
}

// Similarity is the Jaccard index |a∩b| / |a∪b|, 0 when both are empty
func Similarity(a, b Set) float64 {
	intersection := 0
	for v := range a {
		if b[v] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Jaccard computes Similarity over plain string lists
func Jaccard(a, b []string) float64 {
	return Similarity(NewSet(a...), NewSet(b...))
}
