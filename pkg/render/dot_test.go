package render

import (
	"strings"
	"testing"

	"github.com/example/stackplan/pkg/graph"
	"github.com/example/stackplan/pkg/observability"
)

func TestRecorderCollectsEvents(t *testing.T) {
	defer observability.Reset()

	rec := NewRecorder()
	observability.SetGraphHooks(rec)

	g := graph.New()
	g.GetOrCreate("./network", true)
	g.GetOrCreate("./app", true)
	if err := g.AddDependency("./app", "./network"); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	dot := rec.DOT()
	for _, want := range []string{
		"digraph stacks {",
		`"./network"`,
		`"./app"`,
		`"./app" -> "./network";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT(t *testing.T) {
	g := graph.New()
	g.GetOrCreate("./db", true)
	g.GetOrCreate("./app", true)
	if err := g.AddDependency("./app", "./db"); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	dot := ToDOT(g)
	if !strings.Contains(dot, `"./app" -> "./db";`) {
		t.Errorf("DOT output missing edge:\n%s", dot)
	}

	// Node order follows insertion order.
	dbIdx := strings.Index(dot, `"./db" [`)
	appIdx := strings.Index(dot, `"./app" [`)
	if dbIdx < 0 || appIdx < 0 || dbIdx > appIdx {
		t.Errorf("node declarations out of insertion order:\n%s", dot)
	}
}

func TestToDOTMarksPlaceholders(t *testing.T) {
	g := graph.New()
	g.GetOrCreate("./ghost", false)

	dot := ToDOT(g)
	if !strings.Contains(dot, "dashed") {
		t.Errorf("placeholder node should render dashed:\n%s", dot)
	}
}
