package world

import (
	"math"
	"testing"
)

// fireSlowTick marks the current tick as a slow tick so gated systems run when
// called directly.
func fireSlowTick(w *World) { w.slow.fire = true }

func TestGuardsRepairNonFiniteTreasury(t *testing.T) {
	w := newPlayingWorld(t, 9)
	fireSlowTick(w)

	w.budget.Treasury = math.NaN()
	w.systemInvariantGuards()
	if w.Budget().Treasury != 0 {
		t.Errorf("treasury = %v after NaN repair", w.Budget().Treasury)
	}
	if w.Violations().BudgetTreasury != 1 {
		t.Errorf("BudgetTreasury counter = %d", w.Violations().BudgetTreasury)
	}

	w.budget.Treasury = math.Inf(1)
	w.systemInvariantGuards()
	if w.Budget().Treasury != 0 || w.Violations().BudgetTreasury != 2 {
		t.Errorf("treasury = %v, counter = %d after Inf repair",
			w.Budget().Treasury, w.Violations().BudgetTreasury)
	}
}

func TestGuardsClampCitizenRanges(t *testing.T) {
	w := newPlayingWorld(t, 9)
	flatten(w)
	home := w.spawnBuilding(CellPos{X: 30, Y: 30}, ZoneResidentialLow)
	w.building(home).ConstructionLeft = 0
	id := w.spawnCitizen(home)
	c := w.citizen(id)
	c.Details.Happiness = 150
	c.Details.Health = -20
	c.Needs.Hunger = math.NaN()

	fireSlowTick(w)
	w.systemInvariantGuards()

	if c.Details.Happiness != 100 {
		t.Errorf("happiness = %v", c.Details.Happiness)
	}
	if c.Details.Health != 0 {
		t.Errorf("health = %v", c.Details.Health)
	}
	if c.Needs.Hunger != 0 {
		t.Errorf("hunger = %v", c.Needs.Hunger)
	}
	v := w.Violations()
	if v.CitizenHappiness != 1 || v.CitizenHealth != 1 || v.CitizenNeeds != 1 {
		t.Errorf("violations = %+v", v)
	}
}

func TestGuardsClampBuildingOccupancy(t *testing.T) {
	w := newPlayingWorld(t, 9)
	flatten(w)
	id := w.spawnBuilding(CellPos{X: 30, Y: 30}, ZoneResidentialLow)
	b := w.building(id)
	b.Occupants = b.Capacity + 10

	fireSlowTick(w)
	w.systemInvariantGuards()
	if b.Occupants != b.Capacity {
		t.Errorf("occupants = %d, capacity %d", b.Occupants, b.Capacity)
	}
	if w.Violations().BuildingOccupancy != 1 {
		t.Errorf("BuildingOccupancy counter = %d", w.Violations().BuildingOccupancy)
	}
}

func TestGuardsRestoreSegmentRoadCells(t *testing.T) {
	w := newPlayingWorld(t, 9)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 10, Y: 10}, CellPos{X: 20, Y: 10})

	p := CellPos{X: 15, Y: 10}
	w.grid.At(p).Terrain = TerrainGrass

	fireSlowTick(w)
	w.systemInvariantGuards()
	if w.grid.At(p).Terrain != TerrainRoad {
		t.Error("segment cell not restored to road")
	}
	if w.Violations().SegmentCells == 0 {
		t.Error("SegmentCells counter did not move")
	}
}

func TestGuardsSkipOffSlowTicks(t *testing.T) {
	w := newPlayingWorld(t, 9)
	w.budget.Treasury = math.NaN()
	w.slow.fire = false
	w.systemInvariantGuards()
	if !math.IsNaN(w.budget.Treasury) {
		t.Error("guards ran outside the slow tick")
	}
}

func TestRepairRange(t *testing.T) {
	cases := []struct {
		v         float64
		wantBad   bool
		wantFixed float64
	}{
		{v: 50, wantBad: false, wantFixed: 50},
		{v: -1, wantBad: true, wantFixed: 0},
		{v: 101, wantBad: true, wantFixed: 100},
		{v: math.NaN(), wantBad: true, wantFixed: 0},
		{v: math.Inf(-1), wantBad: true, wantFixed: 0},
	}
	for _, tc := range cases {
		bad, fixed := repairRange(tc.v, 0, 100)
		if bad != tc.wantBad || fixed != tc.wantFixed {
			t.Errorf("repairRange(%v) = (%v, %v), want (%v, %v)",
				tc.v, bad, fixed, tc.wantBad, tc.wantFixed)
		}
	}
}
