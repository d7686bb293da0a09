package graph

import (
	"fmt"
	"sort"

	"github.com/passbi/railplan/internal/model"
)

// Builder constructs the time-expanded timetable graph from static
// input data. It is used once per run, then discarded — the
// algorithm's working state (transfer-node index, per-trip node
// lists) has no reason to outlive construction.
type Builder struct {
	stations map[model.StationID]model.Station

	nodes []model.Node
	edges []model.Edge

	transfersByTime  map[model.StationID]map[model.Minute]model.NodeID
	tripNodes        map[model.TripID][]model.NodeID
	mainArrival      map[model.StationID]model.NodeID
	mainDeparture    map[model.StationID]model.NodeID
	departuresByStop map[model.StationID][]model.NodeID
}

// NewBuilder creates a Builder over the given stations.
func NewBuilder(stations []model.Station) *Builder {
	b := &Builder{
		stations:         make(map[model.StationID]model.Station, len(stations)),
		transfersByTime:  make(map[model.StationID]map[model.Minute]model.NodeID),
		tripNodes:        make(map[model.TripID][]model.NodeID),
		mainArrival:      make(map[model.StationID]model.NodeID),
		mainDeparture:    make(map[model.StationID]model.NodeID),
		departuresByStop: make(map[model.StationID][]model.NodeID),
	}
	for _, s := range stations {
		b.stations[s.ID] = s
	}
	return b
}

// Build runs the full time-expanded-graph construction and returns
// the frozen graph. Fails only if trips or footpaths reference an
// unknown station.
func Build(stations []model.Station, trips []model.TripSegment, footpaths []model.Footpath) (*Graph, error) {
	b := NewBuilder(stations)

	for _, t := range trips {
		if _, ok := b.stations[t.FromStop]; !ok {
			return nil, fmt.Errorf("trip %d: unknown from_station %d", t.TripID, t.FromStop)
		}
		if _, ok := b.stations[t.ToStop]; !ok {
			return nil, fmt.Errorf("trip %d: unknown to_station %d", t.TripID, t.ToStop)
		}
	}
	for _, f := range footpaths {
		if _, ok := b.stations[f.From]; !ok {
			return nil, fmt.Errorf("footpath: unknown from_station %d", f.From)
		}
		if _, ok := b.stations[f.To]; !ok {
			return nil, fmt.Errorf("footpath: unknown to_station %d", f.To)
		}
	}

	// Step 1: per-station Main sink/source, plus a direct zero-cost
	// connector from MainDeparture(s) to MainArrival(s): a group that
	// starts and ends at the same station with no travel required is
	// "already there", and no other edge in the graph expresses that
	// without a train or footpath passing through s.
	for _, s := range stations {
		b.mainArrival[s.ID] = b.addNode(model.NodeMainArrival, s.ID, 0, 0)
		b.mainDeparture[s.ID] = b.addNode(model.NodeMainDeparture, s.ID, 0, 0)
		b.addEdge(model.EdgeToMainArrival, b.mainDeparture[s.ID], b.mainArrival[s.ID], 0, -1, 0)
	}

	// Step 2+3: per trip, Ride/WaitInTrain edges, then Alight edges
	// into lazily-materialised Transfer nodes.
	for _, segs := range groupByTrip(trips) {
		b.buildTrip(segs)
	}

	// Step 6: footpaths, reaching from each station's transfers as
	// they stood after all trips were processed.
	tripTransfers := make(map[model.StationID][]model.Minute, len(b.transfersByTime))
	for s, times := range b.transfersByTime {
		for t := range times {
			tripTransfers[s] = append(tripTransfers[s], t)
		}
	}
	for _, fp := range footpaths {
		b.buildFootpath(fp, tripTransfers[fp.From])
	}

	// Step 4+5+7: now that every Transfer node at every station is
	// known, chain them in time order and attach Board/MainDeparture
	// edges. Doing this once at the end (rather than incrementally,
	// as an ordered narrative of these steps might suggest) is what
	// lets footpath-created Transfer nodes participate in the
	// "no gaps" chaining invariant; interleaving would otherwise leave
	// a footpath-added Transfer node unchained if it fell between two
	// already-chained nodes.
	for _, s := range stations {
		b.chainStation(s.ID)
	}

	return b.finish(), nil
}

func groupByTrip(trips []model.TripSegment) [][]model.TripSegment {
	byID := make(map[model.TripID][]model.TripSegment)
	var order []model.TripID
	for _, t := range trips {
		if _, ok := byID[t.TripID]; !ok {
			order = append(order, t.TripID)
		}
		byID[t.TripID] = append(byID[t.TripID], t)
	}
	groups := make([][]model.TripSegment, 0, len(order))
	for _, id := range order {
		segs := byID[id]
		sort.Slice(segs, func(i, j int) bool { return segs[i].Departure < segs[j].Departure })
		groups = append(groups, segs)
	}
	return groups
}

func (b *Builder) buildTrip(segs []model.TripSegment) {
	var prevArrival model.NodeID
	havePrev := false

	for _, seg := range segs {
		dep := b.addNode(model.NodeDeparture, seg.FromStop, seg.Departure, seg.TripID)
		arr := b.addNode(model.NodeArrival, seg.ToStop, seg.Arrival, seg.TripID)
		b.addEdge(model.EdgeRide, dep, arr, seg.Arrival-seg.Departure, seg.Capacity, seg.TripID)

		b.tripNodes[seg.TripID] = append(b.tripNodes[seg.TripID], dep, arr)
		b.departuresByStop[seg.FromStop] = append(b.departuresByStop[seg.FromStop], dep)

		if havePrev {
			b.addEdge(model.EdgeWaitInTrain, prevArrival, dep, seg.Departure-b.nodes[prevArrival].Time, seg.Capacity, seg.TripID)
		}
		prevArrival = arr
		havePrev = true

		station := b.stations[seg.ToStop]
		transferTime := seg.Arrival + station.TransferTime
		transfer := b.getOrCreateTransfer(seg.ToStop, transferTime)
		b.addEdge(model.EdgeAlight, arr, transfer, station.TransferTime, -1, seg.TripID)
		b.addEdge(model.EdgeToMainArrival, arr, b.mainArrival[seg.ToStop], 0, -1, seg.TripID)
	}
}

// buildFootpath adds a Walk edge from each of fp.From's sourceTimes
// transfers. sourceTimes is the key snapshot taken before any footpath
// was processed: a footpath reaches only transfers that existed from
// trip arrivals, not ones created by other footpaths in this same pass.
func (b *Builder) buildFootpath(fp model.Footpath, sourceTimes []model.Minute) {
	times := b.transfersByTime[fp.From]
	for _, t := range sourceTimes {
		from := times[t]
		to := b.getOrCreateTransfer(fp.To, t+fp.Duration)
		b.addEdge(model.EdgeWalk, from, to, fp.Duration, -1, 0)
	}
}

func (b *Builder) chainStation(id model.StationID) {
	times := b.transfersByTime[id]
	ordered := make([]model.Minute, 0, len(times))
	for t := range times {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	nodeList := make([]model.NodeID, len(ordered))
	for i, t := range ordered {
		nodeList[i] = times[t]
	}

	for i := 0; i+1 < len(nodeList); i++ {
		dur := ordered[i+1] - ordered[i]
		b.addEdge(model.EdgeWaitAtStation, nodeList[i], nodeList[i+1], dur, -1, 0)
	}

	mainDep := b.mainDeparture[id]
	for _, n := range nodeList {
		b.addEdge(model.EdgeFromMainDeparture, mainDep, n, 0, -1, 0)
	}
	for _, dep := range b.departuresByStop[id] {
		b.addEdge(model.EdgeFromMainDeparture, mainDep, dep, 0, -1, 0)
	}

	// Step 5: Board edges from every Transfer(s,t) to every
	// Departure(·,s,t') with t <= t'.
	for i, t := range ordered {
		for _, dep := range b.departuresByStop[id] {
			depTime := b.nodes[dep].Time
			if depTime >= t {
				b.addEdge(model.EdgeBoard, nodeList[i], dep, depTime-t, -1, b.nodes[dep].Trip)
			}
		}
	}
}

func (b *Builder) getOrCreateTransfer(station model.StationID, t model.Minute) model.NodeID {
	byTime, ok := b.transfersByTime[station]
	if !ok {
		byTime = make(map[model.Minute]model.NodeID)
		b.transfersByTime[station] = byTime
	}
	if id, ok := byTime[t]; ok {
		return id
	}
	id := b.addNode(model.NodeTransfer, station, t, 0)
	byTime[t] = id
	return id
}

func (b *Builder) addNode(kind model.NodeKind, station model.StationID, t model.Minute, trip model.TripID) model.NodeID {
	id := model.NodeID(len(b.nodes))
	b.nodes = append(b.nodes, model.Node{ID: id, Kind: kind, Station: station, Time: t, Trip: trip})
	return id
}

func (b *Builder) addEdge(kind model.EdgeKind, from, to model.NodeID, duration model.Minute, capacity int, trip model.TripID) model.EdgeID {
	id := model.EdgeID(len(b.edges))
	b.edges = append(b.edges, model.Edge{ID: id, Kind: kind, From: from, To: to, Duration: duration, Capacity: capacity, Trip: trip})
	return id
}

func (b *Builder) finish() *Graph {
	out := make([][]model.EdgeID, len(b.nodes))
	for _, e := range b.edges {
		out[e.From] = append(out[e.From], e.ID)
	}

	stationTransfers := make(map[model.StationID][]model.NodeID, len(b.transfersByTime))
	for s, times := range b.transfersByTime {
		ordered := make([]model.Minute, 0, len(times))
		for t := range times {
			ordered = append(ordered, t)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
		list := make([]model.NodeID, len(ordered))
		for i, t := range ordered {
			list[i] = times[t]
		}
		stationTransfers[s] = list
	}

	return &Graph{
		nodes:            b.nodes,
		edges:            b.edges,
		out:              out,
		stations:         b.stations,
		stationTransfers: stationTransfers,
		tripNodes:        b.tripNodes,
		mainArrival:      b.mainArrival,
		mainDeparture:    b.mainDeparture,
	}
}
