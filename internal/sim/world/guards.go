package world

import "math"

// InvariantViolations counts auto-repairs performed by the PostSim guards.
// Counters only ever grow; tests and the observation read them to detect
// corruption that would otherwise be silently papered over.
type InvariantViolations struct {
	BudgetTreasury    int
	CitizenHappiness  int
	CitizenHealth     int
	CitizenNeeds      int
	BuildingOccupancy int
	SegmentCells      int
}

func (v *InvariantViolations) total() int {
	return v.BudgetTreasury + v.CitizenHappiness + v.CitizenHealth +
		v.CitizenNeeds + v.BuildingOccupancy + v.SegmentCells
}

// systemInvariantGuards repairs out-of-range core state in place, counting
// every repair. Runs on the slow tick; the simulation keeps going either way.
func (w *World) systemInvariantGuards() {
	if !w.slow.ShouldRun() {
		return
	}
	v := &w.violations

	if math.IsNaN(w.budget.Treasury) || math.IsInf(w.budget.Treasury, 0) || w.budget.Treasury < -1e9 {
		w.budget.Treasury = 0
		v.BudgetTreasury++
	}

	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		if bad, fixed := repairRange(c.Details.Happiness, 0, 100); bad {
			c.Details.Happiness = fixed
			v.CitizenHappiness++
		}
		if bad, fixed := repairRange(c.Details.Health, 0, 100); bad {
			c.Details.Health = fixed
			v.CitizenHealth++
		}
		needs := []*float64{&c.Needs.Hunger, &c.Needs.Energy, &c.Needs.Fun, &c.Needs.Social, &c.Needs.Comfort}
		for _, n := range needs {
			if bad, fixed := repairRange(*n, 0, 100); bad {
				*n = fixed
				v.CitizenNeeds++
			}
		}
	}

	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive {
			continue
		}
		if b.Occupants > b.Capacity {
			b.Occupants = b.Capacity
			v.BuildingOccupancy++
		}
		if b.Occupants < 0 {
			b.Occupants = 0
			v.BuildingOccupancy++
		}
	}

	// Every rasterized segment cell must still be road terrain.
	for _, id := range w.segs.OrderedIDs() {
		seg := w.segs.Get(id)
		for _, p := range seg.Cells {
			if w.grid.At(p).Terrain != TerrainRoad {
				w.addRoadCell(p, seg.Kind)
				v.SegmentCells++
			}
		}
	}
}

// repairRange reports whether v was NaN/Inf or outside [lo,hi], and the value
// to store instead.
func repairRange(v, lo, hi float64) (bool, float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true, lo
	}
	if v < lo {
		return true, lo
	}
	if v > hi {
		return true, hi
	}
	return false, v
}
