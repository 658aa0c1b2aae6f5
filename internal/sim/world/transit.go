package world

type TransitMode uint8

const (
	TransitBus TransitMode = iota
	TransitTram
	TransitTrain
	TransitMetro
)

func (m TransitMode) String() string {
	switch m {
	case TransitBus:
		return "bus"
	case TransitTram:
		return "tram"
	case TransitTrain:
		return "train"
	case TransitMetro:
		return "metro"
	default:
		return "unknown"
	}
}

// transitModeSpec is the closed capability table for transit modes.
type transitModeSpec struct {
	StopCost    float64
	VehicleCost float64
	Capacity    int
	Speed       float64 // cells per tick along the line path
}

var transitModeSpecs = map[TransitMode]transitModeSpec{
	TransitBus:   {StopCost: 500, VehicleCost: 3000, Capacity: 30, Speed: 0.10},
	TransitTram:  {StopCost: 1200, VehicleCost: 8000, Capacity: 60, Speed: 0.12},
	TransitTrain: {StopCost: 5000, VehicleCost: 25000, Capacity: 200, Speed: 0.25},
	TransitMetro: {StopCost: 8000, VehicleCost: 30000, Capacity: 180, Speed: 0.30},
}

type StopID uint32
type LineID uint32
type VehicleID uint32

type TransitStop struct {
	ID   StopID
	Cell CellPos
	Mode TransitMode
}

// TransitLine is an ordered loop of stops. Path is the concatenated road path
// between consecutive stops (wrapping), rebuilt when routing changes.
type TransitLine struct {
	ID    LineID
	Mode  TransitMode
	Stops []StopID
	Path  []CellPos
}

// TransitVehicle moves along its line's path. Progress is the fractional
// position between PathIdx and the next path cell.
type TransitVehicle struct {
	ID       VehicleID
	Line     LineID
	PathIdx  int
	Progress float64
	Riders   int
}

// TransitNetwork owns stops, lines and vehicles plus their id counters.
type TransitNetwork struct {
	Stops    []TransitStop
	Lines    []TransitLine
	Vehicles []TransitVehicle

	NextStop    StopID
	NextLine    LineID
	NextVehicle VehicleID

	// FareRevenue accumulates between economy settlements.
	FareRevenue float64

	dirtyPaths bool
}

func (t *TransitNetwork) stop(id StopID) *TransitStop {
	for i := range t.Stops {
		if t.Stops[i].ID == id {
			return &t.Stops[i]
		}
	}
	return nil
}

func (t *TransitNetwork) line(id LineID) *TransitLine {
	for i := range t.Lines {
		if t.Lines[i].ID == id {
			return &t.Lines[i]
		}
	}
	return nil
}

func (w *World) placeTransitStop(p CellPos, mode TransitMode) (ResultCode, string) {
	spec, ok := transitModeSpecs[mode]
	if !ok {
		return CodeInvalid, "unknown transit mode"
	}
	if !p.InBounds() {
		return CodeOutOfBounds, ""
	}
	if w.grid.At(p).Terrain == TerrainWater {
		return CodeBlockedByWater, ""
	}
	if !w.roads.IsRoad(p) && !w.hasRoadAdjacent(p) {
		return CodeNoRoadAdjacent, "stop needs road access"
	}
	for i := range w.transit.Stops {
		if w.transit.Stops[i].Cell == p {
			return CodeAlreadyExists, "stop already at cell"
		}
	}
	if w.budget.Treasury < spec.StopCost {
		return CodeInsufficientFunds, ""
	}

	w.budget.Treasury -= spec.StopCost
	id := w.transit.NextStop
	w.transit.NextStop++
	w.transit.Stops = append(w.transit.Stops, TransitStop{ID: id, Cell: p, Mode: mode})
	return CodeOK, ""
}

// createTransitLine builds a looped line over existing stops of the same mode
// and buys its first vehicle.
func (w *World) createTransitLine(mode TransitMode, stopIDs []uint32) (ResultCode, string) {
	spec, ok := transitModeSpecs[mode]
	if !ok {
		return CodeInvalid, "unknown transit mode"
	}
	if len(stopIDs) < 2 {
		return CodeInvalid, "line needs at least two stops"
	}
	for _, raw := range stopIDs {
		s := w.transit.stop(StopID(raw))
		if s == nil {
			return CodeInvalid, "unknown stop id"
		}
		if s.Mode != mode {
			return CodeInvalid, "stop mode does not match line"
		}
	}
	if w.budget.Treasury < spec.VehicleCost {
		return CodeInsufficientFunds, ""
	}

	w.budget.Treasury -= spec.VehicleCost
	id := w.transit.NextLine
	w.transit.NextLine++
	stops := make([]StopID, len(stopIDs))
	for i, raw := range stopIDs {
		stops[i] = StopID(raw)
	}
	w.transit.Lines = append(w.transit.Lines, TransitLine{ID: id, Mode: mode, Stops: stops})
	vid := w.transit.NextVehicle
	w.transit.NextVehicle++
	w.transit.Vehicles = append(w.transit.Vehicles, TransitVehicle{ID: vid, Line: id})
	w.transit.dirtyPaths = true
	return CodeOK, ""
}

// systemTransit rebuilds stale line paths, moves vehicles, and collects fares
// at stop arrivals. Vehicle motion runs every tick; ridership exchange happens
// only when a vehicle crosses a stop cell.
func (w *World) systemTransit() {
	if w.transit.dirtyPaths {
		w.rebuildLinePaths()
	}
	for i := range w.transit.Vehicles {
		w.moveTransitVehicle(&w.transit.Vehicles[i])
	}
}

// rebuildLinePaths recomputes each line's looped road path against the current
// routing graph. Lines whose stops are disconnected keep an empty path and
// their vehicles hold position.
func (w *World) rebuildLinePaths() {
	w.transit.dirtyPaths = false
	g := w.routingGraph()
	opts := pathOptions{forbidden: w.forbiddenEdges(g)}
	for i := range w.transit.Lines {
		line := &w.transit.Lines[i]
		line.Path = line.Path[:0]
		ok := true
		for s := 0; s < len(line.Stops); s++ {
			from := w.transit.stop(line.Stops[s])
			to := w.transit.stop(line.Stops[(s+1)%len(line.Stops)])
			a := w.nearestRoadCell(from.Cell)
			b := w.nearestRoadCell(to.Cell)
			if a.X < 0 || b.X < 0 {
				ok = false
				break
			}
			leg := g.FindPath(a, b, opts)
			if leg == nil {
				ok = false
				break
			}
			if len(line.Path) > 0 {
				leg = leg[1:]
			}
			line.Path = append(line.Path, leg...)
		}
		if !ok {
			line.Path = nil
		}
	}
}

func (w *World) moveTransitVehicle(v *TransitVehicle) {
	line := w.transit.line(v.Line)
	if line == nil || len(line.Path) < 2 {
		return
	}
	if v.PathIdx >= len(line.Path) {
		v.PathIdx = 0
		v.Progress = 0
	}
	spec := transitModeSpecs[line.Mode]
	v.Progress += spec.Speed
	for v.Progress >= 1 {
		v.Progress -= 1
		v.PathIdx = (v.PathIdx + 1) % len(line.Path)
		w.vehicleAtCell(v, line, line.Path[v.PathIdx])
	}
}

// vehicleAtCell handles a vehicle entering a path cell: if the cell hosts one
// of the line's stops, riders turn over and fares accrue.
func (w *World) vehicleAtCell(v *TransitVehicle, line *TransitLine, p CellPos) {
	atStop := false
	for _, sid := range line.Stops {
		s := w.transit.stop(sid)
		if s != nil && (s.Cell == p || Manhattan(s.Cell, p) <= 1) {
			atStop = true
			break
		}
	}
	if !atStop {
		return
	}
	spec := transitModeSpecs[line.Mode]
	// Demand comes from transit-mode commuters near the stop; the virtual
	// population supplies baseline ridership.
	boarding := w.transitDemandNear(p)
	if boarding > spec.Capacity-v.Riders {
		boarding = spec.Capacity - v.Riders
	}
	alighting := v.Riders / 2
	v.Riders += boarding - alighting
	w.transit.FareRevenue += float64(boarding) * w.params.TransitFare
}

// transitDemandNear estimates boardings at a stop cell.
func (w *World) transitDemandNear(p CellPos) int {
	n := 0
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive || c.Transport != TransportTransit || !c.State.commuting() {
			continue
		}
		if Manhattan(cellOf(c.Pos), p) <= 4 {
			n++
		}
	}
	// One baseline rider per 2000 virtual residents.
	n += w.vpop.TotalPopulation() / 2000
	return n
}
