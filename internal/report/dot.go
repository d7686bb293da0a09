package report

import (
	"fmt"
	"os"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// WriteDOT exports the full timetable graph as a GraphViz digraph.
func WriteDOT(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "digraph timetable {"); err != nil {
		return err
	}
	for id := 0; id < g.NodeCount(); id++ {
		n := g.Node(model.NodeID(id))
		name := "?"
		if s, ok := g.Station(n.Station); ok {
			name = s.Name
		}
		if _, err := fmt.Fprintf(f, "  n%d [label=\"%s@%d:%s\"];\n", id, name, int(n.Time), n.Kind.String()); err != nil {
			return err
		}
	}
	for id := 0; id < g.EdgeCount(); id++ {
		e := g.Edge(model.EdgeID(id))
		if _, err := fmt.Fprintf(f, "  n%d -> n%d [label=\"%s/%d\"];\n", int(e.From), int(e.To), e.Kind.String(), int(e.Duration)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(f, "}")
	return err
}
