package graph

import (
	"strings"
	"testing"

	"github.com/example/stackplan/pkg/errors"
)

// ingest mirrors the pipeline's ingestion step: the stack itself is confirmed,
// each dependency is confirmed before the edge is added.
func ingest(t *testing.T, g *Graph, stack string, deps ...string) {
	t.Helper()
	g.GetOrCreate(stack, true)
	for _, dep := range deps {
		g.GetOrCreate(dep, true)
		if err := g.AddDependency(stack, dep); err != nil {
			t.Fatalf("AddDependency(%s, %s): %v", stack, dep, err)
		}
	}
}

func names(nodes []*Node) []string { return Names(nodes) }

func TestTopoSortOrder(t *testing.T) {
	g := New()
	ingest(t, g, "./stack1", "./stack3")
	ingest(t, g, "./stack2", "./stack1")
	ingest(t, g, "./stack3", "./stack4")
	ingest(t, g, "./stack4")

	if _, err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}

	want := []string{"./stack4", "./stack3", "./stack1", "./stack2"}
	got := names(order)
	if len(got) != len(want) {
		t.Fatalf("TopoSort returned %d nodes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopoSort order = %v, want %v", got, want)
		}
	}
}

func TestResolveEmptyGraph(t *testing.T) {
	g := New()

	resolved, err := g.Resolve()
	if err != nil {
		t.Fatalf("Resolve on empty graph: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("Resolve on empty graph returned %d nodes, want 0", len(resolved))
	}

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort on empty graph: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("TopoSort on empty graph returned %d nodes, want 0", len(order))
	}
}

func TestResolveCircularDependency(t *testing.T) {
	g := New()
	ingest(t, g, "./stack1", "./stack2")
	ingest(t, g, "./stack2", "./stack3")
	ingest(t, g, "./stack3", "./stack1")

	_, err := g.Resolve()
	if err == nil {
		t.Fatal("Resolve on cyclic graph should fail")
	}
	if !strings.Contains(err.Error(), "Circular reference detected") {
		t.Errorf("error = %q, want it to mention %q", err, "Circular reference detected")
	}
	if !errors.Is(err, errors.ErrCodeCircularDependency) {
		t.Errorf("error code = %v, want CIRCULAR_DEPENDENCY", errors.GetCode(err))
	}
}

func TestResolveSelfCycle(t *testing.T) {
	g := New()
	ingest(t, g, "./stack1", "./stack1")

	_, err := g.Resolve()
	if err == nil {
		t.Fatal("Resolve on self-referencing stack should fail")
	}
	if !strings.Contains(err.Error(), "./stack1 -> ./stack1") {
		t.Errorf("error = %q, want it to name both endpoints", err)
	}
}

func TestUnknownDependency(t *testing.T) {
	g := New()
	g.GetOrCreate("./stack1", true)

	// ./stack2 is referenced but its directory was never confirmed.
	err := g.AddDependency("./stack1", "./stack2")
	if err == nil {
		t.Fatal("AddDependency to a non-existent stack should fail")
	}
	if !strings.Contains(err.Error(), "Unknown dependency detected") {
		t.Errorf("error = %q, want it to mention %q", err, "Unknown dependency detected")
	}
	if !strings.Contains(err.Error(), "./stack2") || !strings.Contains(err.Error(), "./stack1") {
		t.Errorf("error = %q, want it to name both the stack and the missing dependency", err)
	}
	if !errors.Is(err, errors.ErrCodeUnknownDependency) {
		t.Errorf("error code = %v, want UNKNOWN_DEPENDENCY", errors.GetCode(err))
	}

	// No dangling edge may remain observable.
	if got := g.Deps("./stack1"); len(got) != 0 {
		t.Errorf("Deps after failed AddDependency = %v, want none", got)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount after failed AddDependency = %d, want 0", g.EdgeCount())
	}
}

func TestPlaceholderPromotion(t *testing.T) {
	g := New()

	// Referenced as a dependency first: created as placeholder.
	n := g.GetOrCreate("./base", false)
	if n.Exists {
		t.Fatal("placeholder node should start with Exists == false")
	}

	// Its own directory is processed later: promoted in place.
	promoted := g.GetOrCreate("./base", true)
	if promoted != n {
		t.Fatal("GetOrCreate should return the same node instance")
	}
	if !n.Exists {
		t.Error("node should be promoted to Exists == true")
	}

	// Promotion never demotes.
	g.GetOrCreate("./base", false)
	if !n.Exists {
		t.Error("GetOrCreate must not demote a confirmed node")
	}

	if err := g.AddDependency("./app", "./base"); err != nil {
		t.Errorf("AddDependency after promotion: %v", err)
	}
}

func TestStandaloneStacks(t *testing.T) {
	g := New()
	ingest(t, g, "./stack1")
	ingest(t, g, "./stack2")
	ingest(t, g, "./stack3", "./stack1")

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("TopoSort returned %d nodes, want 3", len(order))
	}

	counts := make(map[string]int)
	for _, n := range order {
		counts[n.Name]++
	}
	for _, name := range []string{"./stack1", "./stack2", "./stack3"} {
		if counts[name] != 1 {
			t.Errorf("%s appears %d times in output, want exactly once", name, counts[name])
		}
	}
}

func TestTopoSortEdgeInvariant(t *testing.T) {
	g := New()
	ingest(t, g, "./app", "./db", "./cache")
	ingest(t, g, "./db", "./network")
	ingest(t, g, "./cache", "./network")
	ingest(t, g, "./network")
	ingest(t, g, "./monitoring", "./app")

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	if len(order) != g.NodeCount() {
		t.Fatalf("output has %d nodes, want %d", len(order), g.NodeCount())
	}

	index := make(map[string]int, len(order))
	for i, n := range order {
		index[n.Name] = i
	}

	for _, n := range g.Nodes() {
		for _, dep := range g.Deps(n.Name) {
			if index[dep] >= index[n.Name] {
				t.Errorf("dependency %s (index %d) does not precede %s (index %d)",
					dep, index[dep], n.Name, index[n.Name])
			}
		}
	}
}

func TestTopoSortIdempotent(t *testing.T) {
	g := New()
	ingest(t, g, "./stack1", "./stack3")
	ingest(t, g, "./stack2", "./stack1")
	ingest(t, g, "./stack3")

	first, err := g.TopoSort()
	if err != nil {
		t.Fatalf("first TopoSort: %v", err)
	}
	second, err := g.TopoSort()
	if err != nil {
		t.Fatalf("second TopoSort: %v", err)
	}

	a, b := names(first), names(second)
	if len(a) != len(b) {
		t.Fatalf("repeated TopoSort returned different lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("repeated TopoSort differs at %d: %v vs %v", i, a, b)
		}
	}
}

func TestTopoSortInsertionOrderTies(t *testing.T) {
	// Independent stacks keep discovery order, not alphabetical order.
	g := New()
	ingest(t, g, "./zeta")
	ingest(t, g, "./alpha")

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	got := names(order)
	if got[0] != "./zeta" || got[1] != "./alpha" {
		t.Errorf("tie order = %v, want insertion order [./zeta ./alpha]", got)
	}
}

func TestTopoSortCycleGuard(t *testing.T) {
	g := New()
	ingest(t, g, "./stack1", "./stack2")
	ingest(t, g, "./stack2", "./stack1")

	// Calling the sorter directly on cyclic input must fail, not loop.
	_, err := g.TopoSort()
	if err == nil {
		t.Fatal("TopoSort on cyclic graph should fail")
	}
	if !errors.Is(err, errors.ErrCodeCircularDependency) {
		t.Errorf("error code = %v, want CIRCULAR_DEPENDENCY", errors.GetCode(err))
	}
}

func TestResolveVisitsEveryNodeOnce(t *testing.T) {
	g := New()
	// Diamond: app -> db, app -> cache, db -> network, cache -> network.
	ingest(t, g, "./app", "./db", "./cache")
	ingest(t, g, "./db", "./network")
	ingest(t, g, "./cache", "./network")
	ingest(t, g, "./network")

	resolved, err := g.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != g.NodeCount() {
		t.Fatalf("Resolve returned %d nodes, want %d", len(resolved), g.NodeCount())
	}

	seen := make(map[string]bool)
	for _, n := range resolved {
		if seen[n.Name] {
			t.Errorf("%s resolved more than once", n.Name)
		}
		seen[n.Name] = true
	}

	// Resolve is repeatable once the graph is valid.
	again, err := g.Resolve()
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if len(again) != len(resolved) {
		t.Errorf("second Resolve returned %d nodes, want %d", len(again), len(resolved))
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New()
	g.GetOrCreate("./c", true)
	g.GetOrCreate("./a", true)
	g.GetOrCreate("./b", true)
	g.GetOrCreate("./a", true) // repeat must not reorder

	got := names(g.Nodes())
	want := []string{"./c", "./a", "./b"}
	if len(got) != len(want) {
		t.Fatalf("Nodes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Nodes() = %v, want %v", got, want)
		}
	}
}

func TestDependents(t *testing.T) {
	g := New()
	ingest(t, g, "./app", "./db")
	ingest(t, g, "./worker", "./db")
	ingest(t, g, "./db")

	deps := g.Dependents("./db")
	if len(deps) != 2 || deps[0] != "./app" || deps[1] != "./worker" {
		t.Errorf("Dependents(./db) = %v, want [./app ./worker]", deps)
	}
	if got := g.Dependents("./app"); len(got) != 0 {
		t.Errorf("Dependents(./app) = %v, want none", got)
	}
}
