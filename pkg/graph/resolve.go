package graph

import "github.com/example/stackplan/pkg/errors"

// frame is one entry on the explicit DFS stack: a node plus a cursor into its
// dependency list. Using an explicit stack keeps traversal depth off the call
// stack, so pathological inputs cannot overflow it.
type frame struct {
	name string
	next int
}

// Resolve runs cycle detection across the whole graph and returns the nodes
// in the order they were fully processed (a valid dependency order, though
// TopoSort produces the canonical output).
//
// The traversal is post-order depth-first from each starting node in
// insertion order. Two sets are maintained for the entire call: resolved
// (fully processed nodes) and seen. The seen set is shared across all
// starting nodes and is never reset between them; a dependency that is
// already seen but not yet resolved signals a cycle, reported as the adjacent
// pair the traversal first encounters. Starting nodes already resolved are
// skipped, making the call idempotent per node.
//
// A graph with zero nodes resolves to an empty sequence without error.
func (g *Graph) Resolve() ([]*Node, error) {
	resolved := make([]*Node, 0, len(g.order))
	resolvedSet := make(map[string]bool, len(g.order))
	seen := make(map[string]bool, len(g.order))

	for _, start := range g.order {
		if resolvedSet[start] {
			continue
		}
		seen[start] = true
		stack := []frame{{name: start}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			deps := g.deps[f.name]

			if f.next < len(deps) {
				dep := deps[f.next]
				f.next++

				if resolvedSet[dep] {
					continue
				}
				if seen[dep] {
					return nil, errors.New(errors.ErrCodeCircularDependency,
						"Circular reference detected: %s -> %s", f.name, dep)
				}
				seen[dep] = true
				stack = append(stack, frame{name: dep})
				continue
			}

			resolved = append(resolved, g.nodes[f.name])
			resolvedSet[f.name] = true
			stack = stack[:len(stack)-1]
		}
	}

	return resolved, nil
}

// TopoSort returns the deployment order: a post-order depth-first topological
// sort over all nodes. For every edge A depends-on B, B precedes A in the
// result. Ties among independent subgraphs are broken by node insertion
// order, and dependencies are visited in edge-insertion order, so repeated
// calls on an unmodified graph return identical sequences.
//
// The visited set is freshly allocated per call and independent of Resolve's
// bookkeeping. TopoSort is not a validation pass - run Resolve first - but it
// guards against cyclic input with an on-path marker and fails with a
// CIRCULAR_DEPENDENCY error rather than looping.
func (g *Graph) TopoSort() ([]*Node, error) {
	output := make([]*Node, 0, len(g.order))
	visited := make(map[string]bool, len(g.order))
	onPath := make(map[string]bool, len(g.order))

	for _, start := range g.order {
		if visited[start] {
			continue
		}
		visited[start] = true
		onPath[start] = true
		stack := []frame{{name: start}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			deps := g.deps[f.name]

			if f.next < len(deps) {
				dep := deps[f.next]
				f.next++

				if visited[dep] {
					if onPath[dep] {
						return nil, errors.New(errors.ErrCodeCircularDependency,
							"Circular reference detected: %s -> %s", f.name, dep)
					}
					continue
				}
				visited[dep] = true
				onPath[dep] = true
				stack = append(stack, frame{name: dep})
				continue
			}

			output = append(output, g.nodes[f.name])
			onPath[f.name] = false
			stack = stack[:len(stack)-1]
		}
	}

	return output, nil
}

// Names extracts the Name from each node in a slice, preserving order.
// This is the shape callers serialize: the deployment order as strings.
func Names(nodes []*Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}
