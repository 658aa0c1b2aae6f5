package world

// workStart/workEnd bound the working day; school runs inside it.
const (
	workStartHour  = 8.0
	workEndHour    = 17.0
	schoolEndHour  = 15.0
	activitySlices = 2 // slow ticks spent shopping or at leisure
)

// systemCitizenState runs each citizen's decision logic on the slow tick.
// Priority: critical needs > scheduled activities > discretionary > go home.
func (w *World) systemCitizenState() {
	if !w.slow.ShouldRun() {
		return
	}
	hour := w.clock.Hour
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive || c.Lod == LodAbstract {
			continue
		}
		w.decideCitizen(CitizenID(i), c, hour)
	}
}

func (w *World) decideCitizen(id CitizenID, c *Citizen, hour float64) {
	if c.State.commuting() {
		if c.Path == nil && !c.ComputingPath {
			// Lost the route (road mutation or no path found): retry.
			if target, ok := w.commuteTarget(c); ok {
				w.requestPath(id, cellOf(c.Pos), target)
			} else {
				c.State = AtHome
			}
		}
		return
	}

	// Time-boxed activities run down before any new decision.
	if c.State == Shopping || c.State == AtLeisure {
		c.ActivityTicksLeft--
		if c.ActivityTicksLeft > 0 {
			return
		}
		w.beginCommute(id, c, CommutingHome, c.HomeCell)
		return
	}

	crit := w.params.NeedCritical
	switch {
	case c.Needs.Hunger < crit && c.State != AtHome:
		w.beginCommute(id, c, CommutingHome, c.HomeCell)
	case c.Needs.Energy < crit && c.State != AtHome:
		w.beginCommute(id, c, CommutingHome, c.HomeCell)

	case c.Details.Age < 18 && hour >= workStartHour && hour < schoolEndHour:
		if c.State == AtSchool {
			return
		}
		if school, ok := w.nearestServiceCell(cellOf(c.Pos), ServiceSchool, w.params.DestinationRadius); ok {
			w.beginCommute(id, c, CommutingToSchool, school)
		}
	case c.Details.Age < 18 && c.State == AtSchool:
		w.beginCommute(id, c, CommutingHome, c.HomeCell)

	case c.Work != 0 && hour >= workStartHour && hour < workEndHour:
		if c.State == Working {
			return
		}
		w.beginCommute(id, c, CommutingToWork, c.WorkCell)
	case c.State == Working:
		w.beginCommute(id, c, CommutingHome, c.HomeCell)

	case c.Needs.Fun < 40 && c.State == AtHome:
		if dest, ok := w.nearestLeisureCell(cellOf(c.Pos), w.params.DestinationRadius); ok {
			w.beginCommute(id, c, CommutingToLeisure, dest)
		}
	case c.Needs.Comfort < 40 && c.Personality.Materialism > 0.5 && c.State == AtHome:
		if dest, ok := w.nearestCommercialCell(cellOf(c.Pos), w.params.DestinationRadius); ok {
			w.beginCommute(id, c, CommutingToShop, dest)
		}

	case c.State != AtHome:
		w.beginCommute(id, c, CommutingHome, c.HomeCell)
	}
}

func (w *World) beginCommute(id CitizenID, c *Citizen, state CitizenState, target CellPos) {
	c.State = state
	c.Path = nil
	w.requestPath(id, cellOf(c.Pos), target)
}

// commuteTarget recovers the destination cell for an in-progress commute.
func (w *World) commuteTarget(c *Citizen) (CellPos, bool) {
	switch c.State {
	case CommutingToWork:
		return c.WorkCell, c.Work != 0
	case CommutingHome:
		return c.HomeCell, true
	case CommutingToShop:
		return w.nearestCommercialCell(cellOf(c.Pos), w.params.DestinationRadius)
	case CommutingToLeisure:
		return w.nearestLeisureCell(cellOf(c.Pos), w.params.DestinationRadius)
	case CommutingToSchool:
		return w.nearestServiceCell(cellOf(c.Pos), ServiceSchool, w.params.DestinationRadius)
	}
	return CellPos{}, false
}

// arrive transitions a citizen whose path just completed.
func (w *World) arrive(c *Citizen) {
	switch c.State {
	case CommutingToWork:
		c.State = Working
	case CommutingToShop:
		c.State = Shopping
		c.ActivityTicksLeft = activitySlices
	case CommutingToLeisure:
		c.State = AtLeisure
		c.ActivityTicksLeft = activitySlices
	case CommutingToSchool:
		c.State = AtSchool
	case CommutingHome:
		c.State = AtHome
	}
}

// nearestCommercialCell finds the closest completed commercial building
// within the Manhattan radius cap. Ties resolve to the lowest building id.
func (w *World) nearestCommercialCell(from CellPos, radius int) (CellPos, bool) {
	return w.nearestBuildingCell(from, radius, func(b *Building) bool {
		return b.Zone.IsCommercial() && b.ConstructionLeft == 0
	})
}

// nearestLeisureCell prefers parks, falling back to commercial venues.
func (w *World) nearestLeisureCell(from CellPos, radius int) (CellPos, bool) {
	if p, ok := w.nearestServiceCell(from, ServicePark, radius); ok {
		return p, true
	}
	return w.nearestCommercialCell(from, radius)
}

func (w *World) nearestBuildingCell(from CellPos, radius int, pred func(*Building) bool) (CellPos, bool) {
	best := -1
	var bestCell CellPos
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || !pred(b) {
			continue
		}
		d := Manhattan(from, b.Cell)
		if d > radius {
			continue
		}
		if best < 0 || d < best {
			best = d
			bestCell = b.Cell
		}
	}
	return bestCell, best >= 0
}

func (w *World) nearestServiceCell(from CellPos, kind ServiceKind, radius int) (CellPos, bool) {
	best := -1
	var bestCell CellPos
	for i := range w.services {
		s := &w.services[i]
		if s.Kind != kind {
			continue
		}
		d := Manhattan(from, s.Cell)
		if d > radius {
			continue
		}
		if best < 0 || d < best {
			best = d
			bestCell = s.Cell
		}
	}
	return bestCell, best >= 0
}
