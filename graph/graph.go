// Package graph provides the dependency graph between named controls and
// the per-frame evaluation cache. The graph orders controls so that a
// control always evaluates after everything it reads; the cache guarantees
// each control computes at most once per frame.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Graph is an immutable dependency structure over named controls with a
// cached topological order. Build one with New; rebuild on configuration
// reload.
type Graph struct {
	incoming map[string][]string
	outgoing map[string][]string
	order    []string
	edges    int
}

// New builds a graph from each node's direct dependencies (the names it
// reads). Referenced names without their own entry become implicit nodes.
// Self references are dropped; a dependency cycle is an error.
func New(deps map[string][]string) (*Graph, error) {
	incoming := make(map[string][]string, len(deps))
	outgoing := make(map[string][]string, len(deps))
	indegree := make(map[string]int, len(deps))

	addNode := func(name string) {
		if _, ok := indegree[name]; ok {
			return
		}
		indegree[name] = 0
		incoming[name] = nil
		outgoing[name] = nil
	}

	for name := range deps {
		addNode(name)
	}
	for name, reads := range deps {
		for _, ref := range reads {
			if ref == "" || ref == name {
				continue
			}
			addNode(ref)
			if containsString(incoming[name], ref) {
				continue
			}
			incoming[name] = append(incoming[name], ref)
			outgoing[ref] = append(outgoing[ref], name)
			indegree[name]++
		}
	}

	edges := 0
	for name := range incoming {
		sort.Strings(incoming[name])
		sort.Strings(outgoing[name])
		edges += len(incoming[name])
	}

	// Kahn's algorithm with a sorted frontier so the order is
	// deterministic across rebuilds.
	queue := make([]string, 0, len(indegree))
	for name, d := range indegree {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(indegree))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		order = append(order, name)
		for _, to := range outgoing[name] {
			indegree[to]--
			if indegree[to] == 0 {
				i := sort.SearchStrings(queue, to)
				queue = append(queue, "")
				copy(queue[i+1:], queue[i:])
				queue[i] = to
			}
		}
	}

	if len(order) != len(indegree) {
		return nil, errors.New("invalid dependency graph: contains cycle")
	}

	return &Graph{
		incoming: incoming,
		outgoing: outgoing,
		order:    order,
		edges:    edges,
	}, nil
}

// Order returns the cached topological order, dependencies first.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Contains reports whether name is a node.
func (g *Graph) Contains(name string) bool {
	_, ok := g.incoming[name]
	return ok
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.order) }

// References returns the names target reads directly, sorted.
func (g *Graph) References(target string) []string {
	reads := g.incoming[target]
	if len(reads) == 0 {
		return nil
	}
	out := make([]string, len(reads))
	copy(out, reads)
	return out
}

// DependenciesOf returns every transitive dependency of target in
// topological order, excluding target itself. Evaluating the result
// front to back resolves all upstream values before target.
func (g *Graph) DependenciesOf(target string) []string {
	if _, ok := g.incoming[target]; !ok {
		return nil
	}

	ancestors := make(map[string]struct{})
	stack := append([]string(nil), g.incoming[target]...)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := ancestors[name]; seen {
			continue
		}
		ancestors[name] = struct{}{}
		stack = append(stack, g.incoming[name]...)
	}
	if len(ancestors) == 0 {
		return nil
	}

	out := make([]string, 0, len(ancestors))
	for _, name := range g.order {
		if name == target {
			break
		}
		if _, ok := ancestors[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Dump renders the graph in a stable human-readable form: node and edge
// counts, the evaluation order, then one line per node with dependencies.
func (g *Graph) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nodes: %d\n", len(g.order))
	fmt.Fprintf(&b, "edges: %d\n", g.edges)
	if len(g.order) == 0 {
		b.WriteString("order: (none)\n")
		return b.String()
	}
	fmt.Fprintf(&b, "order: %s\n", strings.Join(g.order, " -> "))
	for _, name := range g.order {
		if reads := g.incoming[name]; len(reads) > 0 {
			fmt.Fprintf(&b, "%s reads: %s\n", name, strings.Join(reads, ", "))
		}
	}
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
