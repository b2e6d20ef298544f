// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

import "sort"

// MaxHops caps traversal depth
const MaxHops = 5

// Neighbor is an adjacent node reached through an edge of Weight
type Neighbor struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

// Visit is a node reached during traversal at Depth hops from the start
type Visit struct {
	ID    string `json:"id"`
	Depth int    `json:"depth"`
}

// Neighbors returns the nodes adjacent to id, strongest edge first
func (n *Network) Neighbors(id string) []Neighbor {
	var neighbors []Neighbor
	for _, e := range n.Edges {
		switch id {
		case e.Source:
			neighbors = append(neighbors, Neighbor{ID: e.Target, Weight: e.Weight})
		case e.Target:
			neighbors = append(neighbors, Neighbor{ID: e.Source, Weight: e.Weight})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].ID < neighbors[j].ID
	})
	return neighbors
}

// Reachable performs a breadth-first traversal from start and returns every
// node within maxHops, including start at depth 0. Returns nil if start is
// not in the network.
func (n *Network) Reachable(start string, maxHops int) []Visit {
	if _, ok := n.Node(start); !ok {
		return nil
	}
	if maxHops > MaxHops {
		maxHops = MaxHops // Safety limit
	}

	adjacency := make(map[string][]string)
	for _, e := range n.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		adjacency[e.Target] = append(adjacency[e.Target], e.Source)
	}
	for id := range adjacency {
		sort.Strings(adjacency[id])
	}

	visited := map[string]bool{start: true}
	visits := []Visit{{ID: start, Depth: 0}}
	queue := []Visit{{ID: start, Depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.Depth >= maxHops {
			continue
		}

		for _, next := range adjacency[current.ID] {
			if visited[next] {
				continue
			}
			visited[next] = true
			v := Visit{ID: next, Depth: current.Depth + 1}
			visits = append(visits, v)
			queue = append(queue, v)
		}
	}

	return visits
}
