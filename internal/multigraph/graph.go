package multigraph

import (
	"strings"
)

// Bipartite tags partition nodes into resources (URL-identified GitHub
// objects) and actors (everything else, typically logins).
const (
	BipartiteResource = 0
	BipartiteActor    = 1
)

// Edge is one directed parallel edge. The same source/target pair may appear
// any number of times with distinct attributes; each occurrence stays
// individually queryable.
type Edge struct {
	Source string
	Target string
	// Attrs carries every record field except source and target.
	Attrs map[string]string
}

// Graph is an in-memory directed multigraph over string-identified nodes.
// Node identity is the raw login or URL string. Discovery order is preserved
// so rankings over the graph are deterministic.
type Graph struct {
	index     map[string]int
	order     []string
	bipartite []int
	edges     []Edge
	out       [][]int
	in        [][]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// classify tags a node from its identifier shape: URL-prefixed identifiers
// are resources, everything else is an actor. Decided once, at insertion.
func classify(id string) int {
	if strings.HasPrefix(id, "https://") || strings.HasPrefix(id, "http://") {
		return BipartiteResource
	}
	return BipartiteActor
}

func (g *Graph) ensureNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.order)
	g.index[id] = i
	g.order = append(g.order, id)
	g.bipartite = append(g.bipartite, classify(id))
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return i
}

// AddRecord adds one relationship to the graph. Records missing source or
// target are dropped entirely: no nodes, no edge. Reports whether the record
// was added.
func (g *Graph) AddRecord(rec map[string]string) bool {
	source := rec["source"]
	target := rec["target"]
	if source == "" || target == "" {
		return false
	}

	attrs := make(map[string]string, len(rec))
	for k, v := range rec {
		if k == "source" || k == "target" {
			continue
		}
		attrs[k] = v
	}

	si := g.ensureNode(source)
	ti := g.ensureNode(target)
	ei := len(g.edges)
	g.edges = append(g.edges, Edge{Source: source, Target: target, Attrs: attrs})
	g.out[si] = append(g.out[si], ei)
	g.in[ti] = append(g.in[ti], ei)
	return true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges, parallel edges counted separately.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns node identifiers in discovery order. The caller must not
// modify the returned slice.
func (g *Graph) Nodes() []string { return g.order }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// Bipartite returns the node's partition tag, or -1 for unknown nodes.
func (g *Graph) Bipartite(id string) int {
	i, ok := g.index[id]
	if !ok {
		return -1
	}
	return g.bipartite[i]
}

// Degree returns in-degree plus out-degree, parallel edges counted.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.out[i]) + len(g.in[i])
}

// OutDegree returns the number of outgoing edges.
func (g *Graph) OutDegree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.out[i])
}

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.in[i])
}

// OutNeighbors returns distinct successor node identifiers.
func (g *Graph) OutNeighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.distinctEndpoints(g.out[i], func(e Edge) string { return e.Target })
}

// InNeighbors returns distinct predecessor node identifiers.
func (g *Graph) InNeighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.distinctEndpoints(g.in[i], func(e Edge) string { return e.Source })
}

// Neighbors returns distinct neighbors ignoring direction.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var result []string
	add := func(n string) {
		if n == id {
			return
		}
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	for _, ei := range g.out[i] {
		add(g.edges[ei].Target)
	}
	for _, ei := range g.in[i] {
		add(g.edges[ei].Source)
	}
	return result
}

func (g *Graph) distinctEndpoints(edgeIdx []int, pick func(Edge) string) []string {
	seen := make(map[string]struct{}, len(edgeIdx))
	var result []string
	for _, ei := range edgeIdx {
		n := pick(g.edges[ei])
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}
