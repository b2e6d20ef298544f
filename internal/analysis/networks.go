// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package analysis

import (
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/graph"
)

// DomainNetwork links domains that co-occur in a record. Node weight is the
// number of records carrying the domain; edge weight is the number of records
// in which both endpoints appear.
func DomainNetwork(records []*experience.LearningExperience) *graph.Network {
	b := graph.NewBuilder()
	for _, rec := range records {
		domains := rec.Domains()
		for _, d := range domains {
			b.AddNode(d, 1)
		}
		for i := 0; i < len(domains); i++ {
			for j := i + 1; j < len(domains); j++ {
				b.AddAssociation(domains[i], domains[j])
			}
		}
	}
	return b.Build()
}

// CollaborationNetwork links each learner to the connections they listed.
// Node weight is the number of records owned by that id, zero for people
// who only appear as connections.
func CollaborationNetwork(records []*experience.LearningExperience) *graph.Network {
	b := graph.NewBuilder()
	for _, rec := range records {
		learner := rec.Learner.ID
		b.AddNode(learner, 1)

		seen := make(map[string]bool, len(rec.Context.Connections))
		for _, conn := range rec.Context.Connections {
			if conn == "" || seen[conn] {
				continue
			}
			seen[conn] = true
			b.AddAssociation(learner, conn)
		}
	}
	return b.Build()
}
