package world

// RoadNetwork is the cell-level road representation. Cells are reference
// counted by segment occupancy so overlapping segments can be removed
// independently; the cell reverts to grass only when its count hits zero.
type RoadNetwork struct {
	refCount [GridSize * GridSize]uint16
	count    int

	// changeCounter advances on every mutation; the routing graph and the
	// utility pass key their rebuilds off it.
	changeCounter uint64
}

func (r *RoadNetwork) ChangeCounter() uint64 { return r.changeCounter }

func (r *RoadNetwork) CellCount() int { return r.count }

func (r *RoadNetwork) IsRoad(p CellPos) bool {
	return p.InBounds() && r.refCount[p.Index()] > 0
}

// addCell marks a cell as road in both representations. Re-adding an existing
// road cell only bumps the refcount; a wider/faster kind wins on overlap.
func (w *World) addRoadCell(p CellPos, kind RoadKind) {
	i := p.Index()
	c := w.grid.AtIndex(i)
	if w.roads.refCount[i] == 0 {
		c.Terrain = TerrainRoad
		c.Road = kind
		c.Zone = ZoneNone
		w.roads.count++
	} else if roadSpecs[kind].MaxSpeed > roadSpecs[c.Road].MaxSpeed {
		c.Road = kind
	}
	w.roads.refCount[i]++
	w.roads.changeCounter++
}

// removeCell drops one occupancy reference. The cell stays road while other
// segments still cover it.
func (w *World) removeRoadCell(p CellPos) {
	i := p.Index()
	if w.roads.refCount[i] == 0 {
		return
	}
	w.roads.refCount[i]--
	if w.roads.refCount[i] == 0 {
		c := w.grid.AtIndex(i)
		c.Terrain = TerrainGrass
		c.Road = RoadNone
		w.roads.count--
	}
	w.roads.changeCounter++
}

// roadTouched fires after any batch of road mutations: in-flight path requests
// are cancelled and all cached citizen paths cleared, so no path can straddle
// two versions of the network.
func (w *World) roadTouched() {
	w.invalidatePaths()
	w.dirtyUtilities = true
	w.dirtyCoverage = true
}
