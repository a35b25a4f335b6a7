// Package engine implements the order-adjudication core for graph-map
// conflict games: an immutable map graph, board state snapshots, a closed
// set of unit orders (hold/move/support), a legal-order generator, and a
// deterministic simultaneous-order adjudicator.
package engine

import (
	"fmt"
	"sort"
)

// Power is an opaque identifier naming a player faction.
type Power string

// Neutral marks unowned supply centers.
const Neutral Power = ""

// UnitID names a unit, unique within its power.
type UnitID string

// Node names a location on the map.
type Node string

// Edge is an undirected connection between two nodes.
type Edge struct {
	A Node
	B Node
}

// MapError describes why a map definition is invalid.
type MapError struct {
	Map     string
	Message string
}

func (e *MapError) Error() string {
	return fmt.Sprintf("invalid map %q: %s", e.Map, e.Message)
}

// MapDef is a validated, immutable graph map. Build one with NewMap;
// after that it is safe to share read-only across concurrent games.
type MapDef struct {
	Name          string
	Nodes         []Node
	Edges         []Edge
	SupplyCenters []Node
	HomeCenters   map[Power][]Node

	adjacency map[Node][]Node
	centerSet map[Node]bool
}

// NewMap validates the definition and builds the adjacency index.
func NewMap(name string, nodes []Node, edges []Edge, supplyCenters []Node, homeCenters map[Power][]Node) (*MapDef, error) {
	m := &MapDef{
		Name:          name,
		Nodes:         nodes,
		Edges:         edges,
		SupplyCenters: supplyCenters,
		HomeCenters:   homeCenters,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	m.adjacency = make(map[Node][]Node, len(nodes))
	for _, e := range edges {
		m.adjacency[e.A] = append(m.adjacency[e.A], e.B)
		m.adjacency[e.B] = append(m.adjacency[e.B], e.A)
	}
	// Stable neighbor order so enumeration and tests are deterministic.
	for n := range m.adjacency {
		sort.Slice(m.adjacency[n], func(i, j int) bool { return m.adjacency[n][i] < m.adjacency[n][j] })
	}

	m.centerSet = make(map[Node]bool, len(supplyCenters))
	for _, c := range supplyCenters {
		m.centerSet[c] = true
	}
	return m, nil
}

// Validate checks the map invariants: unique nodes, edges between known
// nodes, unique undirected edges with no self-loops, and supply/home
// centers drawn from the node set. It is pure and safe to call repeatedly.
func (m *MapDef) Validate() error {
	nodeSet := make(map[Node]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		if nodeSet[n] {
			return &MapError{m.Name, fmt.Sprintf("duplicate node %q", n)}
		}
		nodeSet[n] = true
	}

	edgeSet := make(map[Edge]bool, len(m.Edges))
	for _, e := range m.Edges {
		if !nodeSet[e.A] || !nodeSet[e.B] {
			return &MapError{m.Name, fmt.Sprintf("edge %s-%s references unknown node", e.A, e.B)}
		}
		if e.A == e.B {
			return &MapError{m.Name, fmt.Sprintf("self-loop edge at %q", e.A)}
		}
		canonical := e
		if canonical.B < canonical.A {
			canonical.A, canonical.B = canonical.B, canonical.A
		}
		if edgeSet[canonical] {
			return &MapError{m.Name, fmt.Sprintf("duplicate edge %s-%s", e.A, e.B)}
		}
		edgeSet[canonical] = true
	}

	for _, c := range m.SupplyCenters {
		if !nodeSet[c] {
			return &MapError{m.Name, fmt.Sprintf("supply center %q is not a node", c)}
		}
	}
	for power, homes := range m.HomeCenters {
		for _, h := range homes {
			if !nodeSet[h] {
				return &MapError{m.Name, fmt.Sprintf("home center %q of %s is not a node", h, power)}
			}
		}
	}
	return nil
}

// Neighbors returns every node connected to n by an edge, in lexical
// order. Unknown and isolated nodes yield an empty slice. The returned
// slice is shared; callers must not modify it.
func (m *MapDef) Neighbors(n Node) []Node {
	return m.adjacency[n]
}

// Adjacent reports whether a and b are directly connected.
func (m *MapDef) Adjacent(a, b Node) bool {
	for _, n := range m.adjacency[a] {
		if n == b {
			return true
		}
	}
	return false
}

// HasNode reports whether n is part of the map.
func (m *MapDef) HasNode(n Node) bool {
	if m.adjacency == nil {
		return false
	}
	if _, ok := m.adjacency[n]; ok {
		return true
	}
	// Isolated nodes have no adjacency entry.
	for _, node := range m.Nodes {
		if node == n {
			return true
		}
	}
	return false
}

// IsSupplyCenter reports whether n counts toward victory.
func (m *MapDef) IsSupplyCenter(n Node) bool {
	return m.centerSet[n]
}

// Powers returns the powers with home centers, in lexical order.
func (m *MapDef) Powers() []Power {
	powers := make([]Power, 0, len(m.HomeCenters))
	for p := range m.HomeCenters {
		powers = append(powers, p)
	}
	sort.Slice(powers, func(i, j int) bool { return powers[i] < powers[j] })
	return powers
}
