package analyze

import (
	"github.com/icebreakerlabs/ghgraph/internal/multigraph"
)

// weakComponents returns connected components ignoring edge direction, each a
// list of node identifiers in discovery order.
func weakComponents(g *multigraph.Graph) [][]string {
	nodes := g.Nodes()
	visited := make(map[string]struct{}, len(nodes))
	var components [][]string

	for _, start := range nodes {
		if _, done := visited[start]; done {
			continue
		}
		var component []string
		queue := []string{start}
		visited[start] = struct{}{}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			component = append(component, id)
			for _, n := range g.Neighbors(id) {
				if _, done := visited[n]; done {
					continue
				}
				visited[n] = struct{}{}
				queue = append(queue, n)
			}
		}
		components = append(components, component)
	}
	return components
}

// strongComponents returns strongly connected components via Tarjan's
// algorithm, iterative so deep chains cannot blow the stack.
func strongComponents(g *multigraph.Graph) [][]string {
	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	var components [][]string
	next := 0

	type frame struct {
		id        string
		neighbors []string
		pos       int
	}

	for _, root := range nodes {
		if _, seen := index[root]; seen {
			continue
		}

		callStack := []frame{{id: root, neighbors: g.OutNeighbors(root)}}
		index[root] = next
		lowlink[root] = next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]

			if top.pos < len(top.neighbors) {
				n := top.neighbors[top.pos]
				top.pos++
				if _, seen := index[n]; !seen {
					index[n] = next
					lowlink[n] = next
					next++
					stack = append(stack, n)
					onStack[n] = true
					callStack = append(callStack, frame{id: n, neighbors: g.OutNeighbors(n)})
				} else if onStack[n] && index[n] < lowlink[top.id] {
					lowlink[top.id] = index[n]
				}
				continue
			}

			if lowlink[top.id] == index[top.id] {
				var component []string
				for {
					id := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[id] = false
					component = append(component, id)
					if id == top.id {
						break
					}
				}
				components = append(components, component)
			}

			finished := top.id
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if lowlink[finished] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[finished]
				}
			}
		}
	}
	return components
}
