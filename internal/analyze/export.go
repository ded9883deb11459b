package analyze

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
)

// ExportedEdge is the flat edge-list representation handed to serializers and
// downstream tooling. Properties holds every edge attribute except type.
type ExportedEdge struct {
	Source     string            `json:"source" yaml:"source"`
	Target     string            `json:"target" yaml:"target"`
	Type       string            `json:"type" yaml:"type"`
	Properties map[string]string `json:"properties" yaml:"properties"`
}

// ExportEdges flattens the graph's edges in insertion order.
func ExportEdges(g *multigraph.Graph) []ExportedEdge {
	edges := g.Edges()
	out := make([]ExportedEdge, 0, len(edges))
	for _, e := range edges {
		props := make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			if k == "type" {
				continue
			}
			props[k] = v
		}
		out = append(out, ExportedEdge{
			Source:     e.Source,
			Target:     e.Target,
			Type:       e.Attrs["type"],
			Properties: props,
		})
	}
	return out
}

// WriteEdges serializes an edge list in the requested format. Supported
// formats are json, yaml, and csv.
func WriteEdges(w io.Writer, edges []ExportedEdge, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(edges); err != nil {
			return errors.PersistenceError(err, "encode edge list as json")
		}
		return nil
	case "yaml":
		if err := yaml.NewEncoder(w).Encode(edges); err != nil {
			return errors.PersistenceError(err, "encode edge list as yaml")
		}
		return nil
	case "csv":
		return writeEdgesCSV(w, edges)
	default:
		return errors.ValidationErrorf("unsupported export format %q", format)
	}
}

func writeEdgesCSV(w io.Writer, edges []ExportedEdge) error {
	cw := csv.NewWriter(w)
	header := []string{"source", "target", "type", "title", "created_at", "url"}
	if err := cw.Write(header); err != nil {
		return errors.PersistenceError(err, "write csv header")
	}
	for _, e := range edges {
		row := []string{e.Source, e.Target, e.Type, e.Properties["title"], e.Properties["created_at"], e.Properties["url"]}
		if err := cw.Write(row); err != nil {
			return errors.PersistenceError(err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.PersistenceError(err, "flush csv")
	}
	return nil
}

// WriteReport serializes a report as json or yaml, or renders the
// human-readable text summary for anything else.
func WriteReport(w io.Writer, r *Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return errors.PersistenceError(err, "encode report as json")
		}
		return nil
	case "yaml":
		if err := yaml.NewEncoder(w).Encode(r); err != nil {
			return errors.PersistenceError(err, "encode report as yaml")
		}
		return nil
	default:
		return renderText(w, r)
	}
}

func renderText(w io.Writer, r *Report) error {
	p := func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	p("Graph: %d nodes, %d edges", r.Nodes, r.Edges)
	if r.Nodes == 0 {
		return nil
	}
	p("  actors:    %d (%.1f%%)", r.ActorNodes, r.ActorPercent)
	p("  resources: %d (%.1f%%)", r.ResourceNodes, r.ResourcePercent)
	p("")
	p("Degree: avg %.2f, min %d, max %d", r.Degree.Average, r.Degree.Min, r.Degree.Max)

	if len(r.TopActors) > 0 {
		p("")
		p("Top actors by degree centrality:")
		for _, e := range r.TopActors {
			p("  %-30s %.4f", e.Node, e.Centrality)
		}
	}
	if len(r.TopResources) > 0 {
		p("")
		p("Top resources by degree centrality:")
		for _, e := range r.TopResources {
			p("  %-60s %.4f", e.Node, e.Centrality)
		}
	}

	p("")
	p("Connectivity:")
	p("  weak components:   %d (largest %d)", r.Connectivity.WeakComponents, r.Connectivity.LargestWeak)
	p("  strong components: %d (largest %d)", r.Connectivity.StrongComponents, r.Connectivity.LargestStrong)
	p("  giant component ratio: %.3f", r.Connectivity.GiantComponentRatio)

	if r.Disconnected.Total > 0 {
		p("")
		p("Disconnected from giant component: %d (%d actors, %d resources)",
			r.Disconnected.Total, r.Disconnected.Actors, r.Disconnected.Resources)
		for _, id := range r.Disconnected.SampleActors {
			p("  %s", id)
		}
	}

	p("")
	p("Isolation: %d isolated, %d only incoming, %d only outgoing",
		r.Isolation.Isolated, r.Isolation.OnlyIncoming, r.Isolation.OnlyOutgoing)

	if r.AverageClustering != nil {
		p("Average clustering: %.4f", *r.AverageClustering)
	} else {
		p("Average clustering: unavailable")
	}

	if len(r.TypeCounts) > 0 {
		p("")
		p("Edge types:")
		types := make([]string, 0, len(r.TypeCounts))
		for t := range r.TypeCounts {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			p("  %-30s %d", t, r.TypeCounts[t])
		}
	}
	return nil
}
