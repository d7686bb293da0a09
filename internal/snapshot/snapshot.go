// Package snapshot persists a built graph and its per-group candidate
// sets to disk as a paired gob blob, so a run can be resumed straight
// into annealing without repeating path discovery.
package snapshot

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// ErrMismatch is returned by ReadCandidates when the graph and candidate-set
// files were not written together (node/edge counts disagree with the
// candidate sets' references into them).
var ErrMismatch = errors.New("snapshot: graph and candidate files do not match")

// graphWire is the gob-encodable form of graph.Build's inputs.
// graph.Graph itself exposes no exported fields to encode directly,
// so Build's inputs are round-tripped instead: re-running
// Build against the same stations/trips/footpaths is cheap and
// deterministic, and keeps the frozen Graph's invariants enforced by
// its own constructor rather than duplicated here.
type graphWire struct {
	Stations  []model.Station
	Trips     []model.TripSegment
	Footpaths []model.Footpath
}

// candidateWire is the gob-encodable form of one group's spec plus its
// discovered CandidateSet. The spec travels alongside the paths so a
// resumed run can still report origin/destination/desired-arrival
// without re-reading the original groups.csv.
type candidateWire struct {
	Spec  model.GroupSpec
	Paths []model.Path
}

// WriteGraph gob-encodes the inputs used to build g to modelPath. It
// does not encode the frozen Graph's internal node/edge arrays
// directly; ReadGraph rebuilds them by re-running graph.Build.
func WriteGraph(modelPath string, stations []model.Station, trips []model.TripSegment, footpaths []model.Footpath) error {
	f, err := os.Create(modelPath)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", modelPath, err)
	}
	defer f.Close()

	wire := graphWire{Stations: stations, Trips: trips, Footpaths: footpaths}
	if err := gob.NewEncoder(f).Encode(wire); err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", modelPath, err)
	}
	return nil
}

// ReadGraph decodes modelPath and rebuilds the frozen Graph from it.
func ReadGraph(modelPath string) (*graph.Graph, error) {
	f, err := os.Open(modelPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", modelPath, err)
	}
	defer f.Close()

	var wire graphWire
	if err := gob.NewDecoder(f).Decode(&wire); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", modelPath, err)
	}

	g, err := graph.Build(wire.Stations, wire.Trips, wire.Footpaths)
	if err != nil {
		return nil, fmt.Errorf("snapshot: rebuild graph from %s: %w", modelPath, err)
	}
	return g, nil
}

// WriteCandidates gob-encodes every group's spec and discovered
// candidate paths to groupsPath.
func WriteCandidates(groupsPath string, groups []model.GroupSpec, candidates map[model.GroupID]model.CandidateSet) error {
	f, err := os.Create(groupsPath)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", groupsPath, err)
	}
	defer f.Close()

	wire := make([]candidateWire, 0, len(groups))
	for _, spec := range groups {
		wire = append(wire, candidateWire{Spec: spec, Paths: candidates[spec.ID].Paths})
	}
	if err := gob.NewEncoder(f).Encode(wire); err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", groupsPath, err)
	}
	return nil
}

// ReadCandidates decodes groupsPath and checks every path's node/edge
// ids still resolve within g, so a candidate file accidentally paired
// with the wrong graph file is caught at load time rather than
// surfacing as a panic deep in the optimizer. Returns both the
// original group specs and their candidate sets.
func ReadCandidates(groupsPath string, g *graph.Graph) ([]model.GroupSpec, map[model.GroupID]model.CandidateSet, error) {
	f, err := os.Open(groupsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: open %s: %w", groupsPath, err)
	}
	defer f.Close()

	var wire []candidateWire
	if err := gob.NewDecoder(f).Decode(&wire); err != nil {
		return nil, nil, fmt.Errorf("snapshot: decode %s: %w", groupsPath, err)
	}

	groups := make([]model.GroupSpec, 0, len(wire))
	out := make(map[model.GroupID]model.CandidateSet, len(wire))
	for _, cw := range wire {
		for _, p := range cw.Paths {
			for _, nid := range p.Nodes {
				if int(nid) < 0 || int(nid) >= g.NodeCount() {
					return nil, nil, fmt.Errorf("%w: group %d references node %d outside graph of %d nodes", ErrMismatch, cw.Spec.ID, nid, g.NodeCount())
				}
			}
			for _, eid := range p.Edges {
				if int(eid) < 0 || int(eid) >= g.EdgeCount() {
					return nil, nil, fmt.Errorf("%w: group %d references edge %d outside graph of %d edges", ErrMismatch, cw.Spec.ID, eid, g.EdgeCount())
				}
			}
		}
		groups = append(groups, cw.Spec)
		out[cw.Spec.ID] = model.CandidateSet{Group: cw.Spec.ID, Paths: cw.Paths}
	}
	return groups, out, nil
}
