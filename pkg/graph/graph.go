package graph

import (
	"github.com/example/stackplan/pkg/errors"
	"github.com/example/stackplan/pkg/observability"
)

// Node represents one stack (a deployable directory) in the dependency graph.
//
// Nodes are owned exclusively by their Graph and reference each other by name
// only; the adjacency lists live on the Graph. The zero value is not usable -
// nodes are created through [Graph.GetOrCreate].
type Node struct {
	// Name is the unique identifier: the stack's relative path from the scan
	// root, prefixed with "./" (e.g., "./network/vpc"). Case-sensitive,
	// exact-match; this string is the sole identity key across ingestion,
	// graph, and output.
	Name string

	// Exists reports whether a real directory backs this identifier.
	// A node referenced as a dependency before its own directory is processed
	// starts as a placeholder (Exists == false) and is promoted in place by
	// GetOrCreate once its existence is confirmed.
	Exists bool
}

// Graph is the single source of truth mapping stack name to node, and the
// gatekeeper for construction-time validity: every dependency edge is checked
// against the target's Exists flag at the moment it is added.
//
// Lifecycle: created empty, populated incrementally via GetOrCreate and
// AddDependency, then queried with Resolve and TopoSort any number of times.
// Queries do not mutate the structure. Graph is not safe for concurrent use
// without external synchronization.
type Graph struct {
	nodes      map[string]*Node
	order      []string            // insertion order of node names
	deps       map[string][]string // name -> dependency names, edge-insertion order
	dependents map[string][]string // name -> names depending on it
	edgeCount  int
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// GetOrCreate returns the node for name, creating it if necessary.
//
// If the node already exists and exists is true, the node's Exists flag is
// promoted in place: a placeholder created when the name was first seen as a
// dependency becomes confirmed once its own directory is processed. The flag
// is never demoted.
//
// Node creation is mirrored to the registered [observability.GraphHooks].
func (g *Graph) GetOrCreate(name string, exists bool) *Node {
	if n, ok := g.nodes[name]; ok {
		if exists && !n.Exists {
			n.Exists = true
		}
		return n
	}
	n := &Node{Name: name, Exists: exists}
	g.nodes[name] = n
	g.order = append(g.order, name)
	observability.Graph().OnNodeCreated(name, exists)
	return n
}

// AddDependency records that stack depends on dep, creating either node as a
// placeholder if it has not been seen yet.
//
// The dependency target must be confirmed to exist (Exists == true) at the
// time the edge is added; otherwise AddDependency fails with an
// UNKNOWN_DEPENDENCY error naming both stacks and leaves no edge behind.
// Edges are append-only and keep insertion order.
func (g *Graph) AddDependency(stack, dep string) error {
	g.GetOrCreate(stack, false)
	d := g.GetOrCreate(dep, false)

	if !d.Exists {
		return errors.New(errors.ErrCodeUnknownDependency,
			"Unknown dependency detected: non-existent %s referenced by %s", dep, stack)
	}

	g.deps[stack] = append(g.deps[stack], dep)
	g.dependents[dep] = append(g.dependents[dep], stack)
	g.edgeCount++
	observability.Graph().OnEdgeAdded(stack, dep)
	return nil
}

// Node returns the node with the given name and true, or nil and false if not found.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		nodes = append(nodes, g.nodes[name])
	}
	return nodes
}

// Deps returns the names this stack depends on, in edge-insertion order.
// Returns nil if the stack has no dependencies or doesn't exist. The returned
// slice should not be modified - use it as a read-only view.
func (g *Graph) Deps(name string) []string { return g.deps[name] }

// Dependents returns the names of stacks that depend on this one.
// Returns nil if the stack has no dependents or doesn't exist.
func (g *Graph) Dependents(name string) []string { return g.dependents[name] }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of dependency edges in the graph.
func (g *Graph) EdgeCount() int { return g.edgeCount }
