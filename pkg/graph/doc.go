// Package graph models the stack dependency graph and its two passes:
// cycle-detecting resolution and topological sorting.
//
// The graph is an arena keyed by stack name. Nodes hold identity and an
// existence flag; adjacency lives on the graph as ordered name lists, so a
// cycle is just a set of mutual name references. Construction validates each
// dependency's existence immediately (an edge to a non-existent directory is
// a construction-time error), resolution asserts acyclicity, and the sorter
// produces the deployment order: every stack appears after all stacks it
// depends on.
//
// Build a graph from (stack, dependencies) pairs, then query it:
//
//	g := graph.New()
//	g.GetOrCreate("./vpc", true)
//	g.GetOrCreate("./db", true)
//	if err := g.AddDependency("./db", "./vpc"); err != nil { ... }
//
//	if _, err := g.Resolve(); err != nil { ... }   // cycle check
//	order, err := g.TopoSort()                     // deployment order
//
// The package imports nothing beyond the module's error and hook packages;
// discovery, manifest parsing, and rendering are collaborators around it.
package graph
