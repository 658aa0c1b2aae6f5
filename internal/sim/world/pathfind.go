package world

// pathRequest is one citizen's pending route query.
type pathRequest struct {
	citizen CitizenID
	start   CellPos
	goal    CellPos
}

type pathResult struct {
	citizen CitizenID
	path    []CellPos // nil when unreachable
}

// requestPath enqueues a route query and marks the citizen as computing.
// Duplicate requests from a still-marked citizen are ignored.
func (w *World) requestPath(id CitizenID, start, goal CellPos) {
	c := w.citizen(id)
	if c == nil || c.ComputingPath {
		return
	}
	c.ComputingPath = true
	w.pathQueue = append(w.pathQueue, pathRequest{citizen: id, start: start, goal: goal})
}

// systemPathRequests processes at most PathRequestsPerTick queued requests
// against a single CSR snapshot taken at the start of the pass. The remainder
// stays queued, bounding per-tick path cost.
func (w *World) systemPathRequests() {
	if len(w.pathQueue) == 0 {
		return
	}
	g := w.routingGraph()
	forbidden := w.forbiddenEdges(g)
	opt := pathOptions{
		traffic:      w.grids.TrafficDensity,
		trafficScale: 64,
		forbidden:    forbidden,
	}

	budget := w.params.PathRequestsPerTick
	n := len(w.pathQueue)
	if n > budget {
		n = budget
	}
	for _, req := range w.pathQueue[:n] {
		if w.citizen(req.citizen) == nil {
			continue
		}
		start := w.nearestRoadCell(req.start)
		goal := w.nearestRoadCell(req.goal)
		var path []CellPos
		if start.InBounds() && goal.InBounds() {
			path = g.FindPath(start, goal, opt)
		}
		w.pathResults = append(w.pathResults, pathResult{citizen: req.citizen, path: path})
	}
	w.pathQueue = w.pathQueue[n:]
}

// systemPathInstall writes finished paths into citizen path caches and clears
// the computing marker. A nil path sends the citizen back to the state
// machine's retry branch.
func (w *World) systemPathInstall() {
	for _, res := range w.pathResults {
		c := w.citizen(res.citizen)
		if c == nil {
			continue
		}
		c.ComputingPath = false
		if res.path == nil {
			// No route: the citizen waits in place; the state machine
			// retries on its next decision tick.
			c.Path = nil
			continue
		}
		c.Path = &PathCache{Waypoints: res.path}
	}
	w.pathResults = w.pathResults[:0]
}

// invalidatePaths cancels all in-flight requests and clears every cached
// path. Called whenever the road network mutates.
func (w *World) invalidatePaths() {
	for i := range w.pathQueue {
		if c := w.citizen(w.pathQueue[i].citizen); c != nil {
			c.ComputingPath = false
		}
	}
	w.pathQueue = w.pathQueue[:0]
	w.pathResults = w.pathResults[:0]
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		c.Path = nil
		c.ComputingPath = false
		if c.State.commuting() {
			c.State = AtHome
		}
	}
}

// nearestRoadCell returns p when already road, otherwise the closest adjacent
// road cell within a small spiral, or an out-of-bounds sentinel.
func (w *World) nearestRoadCell(p CellPos) CellPos {
	if w.roads.IsRoad(p) {
		return p
	}
	for radius := 1; radius <= 3; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if absInt(dx) != radius && absInt(dy) != radius {
					continue
				}
				np := CellPos{X: p.X + dx, Y: p.Y + dy}
				if w.roads.IsRoad(np) {
					return np
				}
			}
		}
	}
	return CellPos{X: -1, Y: -1}
}
