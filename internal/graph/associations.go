// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

import "sort"

// Node is a weighted vertex
type Node struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

// Edge is a weighted undirected edge. Source is always the
// lexicographically smaller endpoint.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Network is an undirected weighted graph snapshot
type Network struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type edgeKey struct {
	source, target string
}

// Builder accumulates node and edge weights
type Builder struct {
	nodes map[string]int
	edges map[edgeKey]int
}

// NewBuilder creates an empty network builder
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]int),
		edges: make(map[edgeKey]int),
	}
}

// AddNode ensures a node exists and increases its weight by delta
func (b *Builder) AddNode(id string, delta int) {
	b.nodes[id] += delta
}

// AddAssociation increments the weight of the undirected edge between a and b.
// Self loops are ignored. Both endpoints are registered as nodes.
func (b *Builder) AddAssociation(a, c string) {
	if a == c {
		return
	}
	if _, ok := b.nodes[a]; !ok {
		b.nodes[a] = 0
	}
	if _, ok := b.nodes[c]; !ok {
		b.nodes[c] = 0
	}
	b.edges[orderedKey(a, c)]++
}

// HasEdge reports whether a and c are connected
func (b *Builder) HasEdge(a, c string) bool {
	_, ok := b.edges[orderedKey(a, c)]
	return ok
}

// Build returns the network with nodes and edges sorted by weight
// descending, then by id, so output is deterministic.
func (b *Builder) Build() *Network {
	network := &Network{
		Nodes: make([]Node, 0, len(b.nodes)),
		Edges: make([]Edge, 0, len(b.edges)),
	}

	for id, w := range b.nodes {
		network.Nodes = append(network.Nodes, Node{ID: id, Weight: w})
	}
	for k, w := range b.edges {
		network.Edges = append(network.Edges, Edge{Source: k.source, Target: k.target, Weight: w})
	}

	sort.Slice(network.Nodes, func(i, j int) bool {
		if network.Nodes[i].Weight != network.Nodes[j].Weight {
			return network.Nodes[i].Weight > network.Nodes[j].Weight
		}
		return network.Nodes[i].ID < network.Nodes[j].ID
	})
	sort.Slice(network.Edges, func(i, j int) bool {
		ei, ej := network.Edges[i], network.Edges[j]
		if ei.Weight != ej.Weight {
			return ei.Weight > ej.Weight
		}
		if ei.Source != ej.Source {
			return ei.Source < ej.Source
		}
		return ei.Target < ej.Target
	})

	return network
}

func orderedKey(a, b string) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{source: a, target: b}
}

// Node returns the node with the given id
func (n *Network) Node(id string) (Node, bool) {
	for _, node := range n.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return Node{}, false
}

// Edge returns the edge between a and b, in either order
func (n *Network) Edge(a, b string) (Edge, bool) {
	k := orderedKey(a, b)
	for _, e := range n.Edges {
		if e.Source == k.source && e.Target == k.target {
			return e, true
		}
	}
	return Edge{}, false
}
