package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/passbi/railplan/internal/optimize"
)

func openWriter(path string) (*csv.Writer, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	return csv.NewWriter(f), f, nil
}

// WriteIterations writes the per-iteration CSV: {time, temperature,
// cost, edge_cost, travel_cost, delay_cost}.
func WriteIterations(path string, records []optimize.IterationRecord) error {
	w, f, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	if err := w.Write([]string{"time", "temperature", "cost", "edge_cost", "travel_cost", "delay_cost"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Iteration),
			strconv.FormatFloat(r.Temperature, 'f', 6, 64),
			strconv.FormatFloat(r.Cost, 'f', 6, 64),
			strconv.FormatFloat(r.EdgeCost, 'f', 6, 64),
			strconv.FormatFloat(r.TravelCost, 'f', 6, 64),
			strconv.FormatFloat(r.DelayCost, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteEdges writes the per-strained-edge CSV: {edge_index,
// duration, capacity, utilization}.
func WriteEdges(path string, g *graph.Graph, state *optimize.State) error {
	w, f, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	if err := w.Write([]string{"edge_index", "duration", "capacity", "utilization"}); err != nil {
		return err
	}
	for _, eid := range state.StrainedEdgeIDs() {
		e := g.Edge(eid)
		row := []string{
			strconv.Itoa(int(eid)),
			strconv.Itoa(int(e.Duration)),
			strconv.Itoa(e.Capacity),
			strconv.Itoa(state.Utilisation(eid)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteGroups writes the per-group CSV: {group_id, planned_time,
// real_time, travel_cost, delay, delay_in_%, waiting_time,
// in_trip_time, walks, path}.
func WriteGroups(path string, groups []model.GroupSpec, state *optimize.State, g *graph.Graph) error {
	w, f, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	header := []string{
		"group_id", "planned_time", "real_time", "travel_cost", "delay",
		"delay_in_%", "waiting_time", "in_trip_time", "walks", "path",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, spec := range groups {
		p := state.Path(spec.ID)
		row := []string{
			strconv.Itoa(int(spec.ID)),
			strconv.Itoa(int(spec.Arrival)),
			strconv.Itoa(int(p.ArrivalTime)),
			strconv.FormatFloat(p.TravelCost, 'f', 6, 64),
			strconv.Itoa(int(p.Delay)),
			strconv.FormatFloat(delayPercent(spec, p), 'f', 2, 64),
			strconv.Itoa(int(p.WaitingTime)),
			strconv.Itoa(int(p.InTripTime)),
			strconv.Itoa(p.WalkCount),
			EncodePath(g, p),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	for _, spec := range state.Unroutable {
		row := []string{strconv.Itoa(int(spec.ID)), strconv.Itoa(int(spec.Arrival)), "", "", "", "", "", "", "", "unroutable"}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func delayPercent(spec model.GroupSpec, p model.Path) float64 {
	planned := spec.Arrival - spec.Departure
	if planned <= 0 {
		return 0
	}
	return float64(p.Delay) / float64(planned) * 100
}

// WriteRuntime writes the runtime CSV: {runtime_seconds, iterations}.
func WriteRuntime(path string, seconds float64, iterations int) error {
	w, f, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	if err := w.Write([]string{"runtime_seconds", "iterations"}); err != nil {
		return err
	}
	row := []string{strconv.FormatFloat(seconds, 'f', 3, 64), strconv.Itoa(iterations)}
	if err := w.Write(row); err != nil {
		return err
	}
	return w.Error()
}

// EncodePath renders a path as an "->"-separated alternating
// node/edge string: nodes as station_name$time$kind, edges as
// trip_id$time$kind (an edge's "time" is its duration, the only
// scalar a connector edge like ToMainArrival otherwise lacks).
func EncodePath(g *graph.Graph, p model.Path) string {
	var b strings.Builder
	for i, nid := range p.Nodes {
		if i > 0 {
			b.WriteString("->")
			b.WriteString(encodeEdgeToken(g, p.Edges[i-1]))
			b.WriteString("->")
		}
		b.WriteString(encodeNodeToken(g, nid))
	}
	return b.String()
}

func encodeNodeToken(g *graph.Graph, nid model.NodeID) string {
	n := g.Node(nid)
	name := "?"
	if s, ok := g.Station(n.Station); ok {
		name = s.Name
	}
	return fmt.Sprintf("%s$%d$%s", name, int(n.Time), n.Kind.String())
}

func encodeEdgeToken(g *graph.Graph, eid model.EdgeID) string {
	e := g.Edge(eid)
	return fmt.Sprintf("%d$%d$%s", int(e.Trip), int(e.Duration), e.Kind.String())
}
