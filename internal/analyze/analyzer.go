package analyze

import (
	"sort"
	"strings"

	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
)

// nonResourceExtensions are filename suffixes that rule a "/"-free identifier
// out of the actor partition. String-shape guessing, known to be imprecise.
var nonResourceExtensions = []string{".md", ".txt", ".json", ".yml", ".yaml", ".py", ".js", ".go"}

// DegreeStats summarizes the degree distribution.
type DegreeStats struct {
	Average float64 `json:"average" yaml:"average"`
	Min     int     `json:"min" yaml:"min"`
	Max     int     `json:"max" yaml:"max"`
}

// CentralityEntry is one node in a centrality ranking.
type CentralityEntry struct {
	Node       string  `json:"node" yaml:"node"`
	Centrality float64 `json:"centrality" yaml:"centrality"`
}

// ConnectivityStats covers component structure under both the directed and
// undirected reading of the graph.
type ConnectivityStats struct {
	WeakComponents       int     `json:"weak_components" yaml:"weak_components"`
	LargestWeak          int     `json:"largest_weak" yaml:"largest_weak"`
	StrongComponents     int     `json:"strong_components" yaml:"strong_components"`
	LargestStrong        int     `json:"largest_strong" yaml:"largest_strong"`
	UndirectedComponents int     `json:"undirected_components" yaml:"undirected_components"`
	LargestUndirected    int     `json:"largest_undirected" yaml:"largest_undirected"`
	GiantComponentRatio  float64 `json:"giant_component_ratio" yaml:"giant_component_ratio"`
}

// DisconnectedStats describes nodes outside the largest weak component.
type DisconnectedStats struct {
	Total        int      `json:"total" yaml:"total"`
	Actors       int      `json:"actors" yaml:"actors"`
	Resources    int      `json:"resources" yaml:"resources"`
	SampleActors []string `json:"sample_actors,omitempty" yaml:"sample_actors,omitempty"`
}

// IsolationStats counts nodes with degenerate connectivity.
type IsolationStats struct {
	Isolated     int `json:"isolated" yaml:"isolated"`
	OnlyIncoming int `json:"only_incoming" yaml:"only_incoming"`
	OnlyOutgoing int `json:"only_outgoing" yaml:"only_outgoing"`
}

// Report is the structured analysis result. Every metric degrades to a zero
// value or nil rather than failing the whole report; partial results always
// beat no results for exploratory analysis.
type Report struct {
	Nodes int `json:"nodes" yaml:"nodes"`
	Edges int `json:"edges" yaml:"edges"`

	ActorNodes      int     `json:"actor_nodes" yaml:"actor_nodes"`
	ActorPercent    float64 `json:"actor_percent" yaml:"actor_percent"`
	ResourceNodes   int     `json:"resource_nodes" yaml:"resource_nodes"`
	ResourcePercent float64 `json:"resource_percent" yaml:"resource_percent"`

	Degree       DegreeStats       `json:"degree" yaml:"degree"`
	TopActors    []CentralityEntry `json:"top_actors" yaml:"top_actors"`
	TopResources []CentralityEntry `json:"top_resources" yaml:"top_resources"`

	Connectivity ConnectivityStats `json:"connectivity" yaml:"connectivity"`
	Disconnected DisconnectedStats `json:"disconnected" yaml:"disconnected"`
	Isolation    IsolationStats    `json:"isolation" yaml:"isolation"`

	// AverageClustering is nil when the coefficient could not be computed.
	AverageClustering *float64 `json:"average_clustering,omitempty" yaml:"average_clustering,omitempty"`

	TypeCounts map[string]int `json:"type_counts" yaml:"type_counts"`
}

// Analyze computes the full statistics report over a built graph. The graph
// is never mutated.
func Analyze(g *multigraph.Graph) *Report {
	r := &Report{
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		TypeCounts: typeCounts(g),
	}
	if r.Nodes == 0 {
		return r
	}

	countPartitions(g, r)
	degreeStats(g, r)
	centralityRankings(g, r)
	connectivity(g, r)
	isolation(g, r)
	if avg, ok := averageClustering(g); ok {
		r.AverageClustering = &avg
	}
	return r
}

// isActorHeuristic guesses whether an identifier names a person rather than a
// resource: no path separator, no file-like suffix. Used only for the
// aggregate percentages; the bipartite tag stays the trusted signal elsewhere.
func isActorHeuristic(id string) bool {
	if strings.Contains(id, "/") {
		return false
	}
	for _, ext := range nonResourceExtensions {
		if strings.HasSuffix(id, ext) {
			return false
		}
	}
	return true
}

func countPartitions(g *multigraph.Graph, r *Report) {
	for _, id := range g.Nodes() {
		if isActorHeuristic(id) {
			r.ActorNodes++
		} else {
			r.ResourceNodes++
		}
	}
	total := float64(r.Nodes)
	r.ActorPercent = 100 * float64(r.ActorNodes) / total
	r.ResourcePercent = 100 * float64(r.ResourceNodes) / total
}

func degreeStats(g *multigraph.Graph, r *Report) {
	nodes := g.Nodes()
	min, max, sum := g.Degree(nodes[0]), 0, 0
	for _, id := range nodes {
		d := g.Degree(id)
		sum += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	r.Degree = DegreeStats{
		Average: float64(sum) / float64(len(nodes)),
		Min:     min,
		Max:     max,
	}
}

// centralityRankings fills the top-5 actor and resource lists by normalized
// degree centrality (degree / (n-1)). Ties keep discovery order, so repeated
// runs over the same graph produce identical output.
func centralityRankings(g *multigraph.Graph, r *Report) {
	n := g.NodeCount()
	if n < 2 {
		return
	}
	norm := float64(n - 1)

	var actors, resources []CentralityEntry
	for _, id := range g.Nodes() {
		entry := CentralityEntry{Node: id, Centrality: float64(g.Degree(id)) / norm}
		if g.Bipartite(id) == multigraph.BipartiteActor {
			actors = append(actors, entry)
		} else {
			resources = append(resources, entry)
		}
	}

	r.TopActors = topFive(actors)
	r.TopResources = topFive(resources)
}

func topFive(entries []CentralityEntry) []CentralityEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Centrality > entries[j].Centrality
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}
	return entries
}

func connectivity(g *multigraph.Graph, r *Report) {
	weak := weakComponents(g)
	strong := strongComponents(g)

	r.Connectivity.WeakComponents = len(weak)
	r.Connectivity.LargestWeak = largestSize(weak)
	r.Connectivity.StrongComponents = len(strong)
	r.Connectivity.LargestStrong = largestSize(strong)
	// The undirected reading of a directed multigraph has exactly the weak
	// component structure.
	r.Connectivity.UndirectedComponents = len(weak)
	r.Connectivity.LargestUndirected = largestSize(weak)
	r.Connectivity.GiantComponentRatio = float64(largestSize(weak)) / float64(g.NodeCount())

	disconnected(g, weak, r)
}

// disconnected reports every node outside the largest weak component, split
// by partition, with a small sample of actor identifiers for eyeballing.
func disconnected(g *multigraph.Graph, weak [][]string, r *Report) {
	largest := largestComponent(weak)
	inGiant := make(map[string]struct{}, len(largest))
	for _, id := range largest {
		inGiant[id] = struct{}{}
	}

	for _, id := range g.Nodes() {
		if _, ok := inGiant[id]; ok {
			continue
		}
		r.Disconnected.Total++
		if g.Bipartite(id) == multigraph.BipartiteActor {
			r.Disconnected.Actors++
			if len(r.Disconnected.SampleActors) < 5 {
				r.Disconnected.SampleActors = append(r.Disconnected.SampleActors, id)
			}
		} else {
			r.Disconnected.Resources++
		}
	}
}

func isolation(g *multigraph.Graph, r *Report) {
	for _, id := range g.Nodes() {
		in, out := g.InDegree(id), g.OutDegree(id)
		switch {
		case in == 0 && out == 0:
			r.Isolation.Isolated++
		case out == 0:
			r.Isolation.OnlyIncoming++
		case in == 0:
			r.Isolation.OnlyOutgoing++
		}
	}
}

// averageClustering computes the mean local clustering coefficient over the
// undirected simple projection of the graph. Best effort: reports ok=false
// instead of failing on degenerate graphs.
func averageClustering(g *multigraph.Graph) (avg float64, ok bool) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0, false
	}

	neighborSets := make(map[string]map[string]struct{}, len(nodes))
	for _, id := range nodes {
		set := make(map[string]struct{})
		for _, n := range g.Neighbors(id) {
			set[n] = struct{}{}
		}
		neighborSets[id] = set
	}

	var total float64
	for _, id := range nodes {
		neighbors := g.Neighbors(id)
		k := len(neighbors)
		if k < 2 {
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if _, connected := neighborSets[neighbors[i]][neighbors[j]]; connected {
					links++
				}
			}
		}
		total += 2 * float64(links) / float64(k*(k-1))
	}
	return total / float64(len(nodes)), true
}

func typeCounts(g *multigraph.Graph) map[string]int {
	counts := make(map[string]int)
	for _, e := range g.Edges() {
		if t, ok := e.Attrs["type"]; ok && t != "" {
			counts[t]++
		}
	}
	return counts
}

func largestSize(components [][]string) int {
	size := 0
	for _, c := range components {
		if len(c) > size {
			size = len(c)
		}
	}
	return size
}

func largestComponent(components [][]string) []string {
	var largest []string
	for _, c := range components {
		if len(c) > len(largest) {
			largest = c
		}
	}
	return largest
}
