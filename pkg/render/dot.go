// Package render exports stack dependency graphs as Graphviz diagrams.
//
// Rendering is a side-channel: the [Recorder] implements
// [observability.GraphHooks] and accumulates node/edge events while the graph
// is built, so the core functions identically whether or not a recorder is
// registered. ToDOT offers the same export for an already-built graph.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/example/stackplan/pkg/graph"
)

// Recorder collects graph construction events for later DOT export.
// Register it with observability.SetGraphHooks before building the graph.
// It is safe for use from a single goroutine, matching graph construction.
type Recorder struct {
	mu    sync.Mutex
	nodes []dotNode
	edges []dotEdge
}

type dotNode struct {
	name   string
	exists bool
}

type dotEdge struct {
	from, to string
}

// NewRecorder creates an empty event recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnNodeCreated records a node event.
func (r *Recorder) OnNodeCreated(name string, exists bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, dotNode{name: name, exists: exists})
}

// OnEdgeAdded records an edge event.
func (r *Recorder) OnEdgeAdded(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges = append(r.edges, dotEdge{from: from, to: to})
}

// DOT renders the recorded events as Graphviz DOT text.
// Placeholder nodes (never confirmed to exist) are drawn dashed.
func (r *Recorder) DOT() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeDOT(r.nodes, r.edges)
}

// ToDOT converts a built graph to Graphviz DOT text, nodes in insertion
// order and edges in edge-insertion order.
func ToDOT(g *graph.Graph) string {
	var nodes []dotNode
	var edges []dotEdge
	for _, n := range g.Nodes() {
		nodes = append(nodes, dotNode{name: n.Name, exists: n.Exists})
		for _, dep := range g.Deps(n.Name) {
			edges = append(edges, dotEdge{from: n.Name, to: dep})
		}
	}
	return writeDOT(nodes, edges)
}

func writeDOT(nodes []dotNode, edges []dotEdge) string {
	var buf bytes.Buffer
	buf.WriteString("digraph stacks {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		attrs := fmt.Sprintf("label=%q", n.name)
		if !n.exists {
			attrs += ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.name, attrs)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT text to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
