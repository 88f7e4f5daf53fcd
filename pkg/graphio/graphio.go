// Package graphio defines the JSON wire format for stack dependency graphs.
//
// The format is the canonical serialization used by the serve API and the
// graph export command. It is human-readable and deterministic: nodes appear
// in graph insertion order, edges in edge-insertion order.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/example/stackplan/pkg/graph"
)

// Graph is the serialized form of a dependency graph.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one stack in the serialized graph.
type Node struct {
	ID     string `json:"id" bson:"id"`
	Exists bool   `json:"exists" bson:"exists"`
}

// Edge is a directed dependency: From depends on To.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// FromGraph converts a built graph to its wire form.
func FromGraph(g *graph.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{ID: n.Name, Exists: n.Exists})
		for _, dep := range g.Deps(n.Name) {
			out.Edges = append(out.Edges, Edge{From: n.Name, To: dep})
		}
	}
	return out
}

// ToGraph rebuilds a graph from its wire form.
// Edge targets are validated the same way construction from manifests is:
// an edge to a node that does not exist fails with UnknownDependency.
func ToGraph(gw Graph) (*graph.Graph, error) {
	g := graph.New()
	for _, n := range gw.Nodes {
		g.GetOrCreate(n.ID, n.Exists)
	}
	for _, e := range gw.Edges {
		if err := g.AddDependency(e.From, e.To); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// Marshal converts a graph to indented JSON bytes.
func Marshal(g *graph.Graph) ([]byte, error) {
	return json.MarshalIndent(FromGraph(g), "", "  ")
}

// Write writes a graph as JSON to w.
func Write(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a graph to a JSON file with 0644 permissions.
func WriteFile(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}
