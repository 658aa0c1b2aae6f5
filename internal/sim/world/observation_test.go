package world

import (
	"strings"
	"testing"
)

func TestObservationRebuiltEachTick(t *testing.T) {
	w := newPlayingWorld(t, 37)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 40, Y: 40}, CellPos{X: 60, Y: 40})
	_, _ = spawnHousehold(t, w, CellPos{X: 45, Y: 41})

	w.Step()
	obs := w.Observation()
	if obs.Tick != w.Tick() {
		t.Errorf("observation tick %d, world tick %d", obs.Tick, w.Tick())
	}
	if obs.Treasury != w.Budget().Treasury {
		t.Errorf("observation treasury %v, budget %v", obs.Treasury, w.Budget().Treasury)
	}
	if obs.Population.Total != 1 {
		t.Errorf("population = %+v", obs.Population)
	}
	if obs.BuildingCount != 1 {
		t.Errorf("building count = %d", obs.BuildingCount)
	}

	// The snapshot is a copy; mutating it cannot reach the simulation.
	obs.Warnings = append(obs.Warnings, WarnHighCrime)
	if len(w.Observation().Warnings) == len(obs.Warnings) {
		t.Error("mutating the returned snapshot leaked into the world")
	}
}

func TestWarningsReflectCityTrouble(t *testing.T) {
	w := newPlayingWorld(t, 37)
	flatten(w)

	w.budget.Treasury = -500
	w.energy.Shortfall = 10
	for i := range w.grids.Pollution {
		w.grids.Pollution[i] = 100
	}
	w.systemObservation()

	has := func(k WarningKind) bool {
		for _, wk := range w.Observation().Warnings {
			if wk == k {
				return true
			}
		}
		return false
	}
	if !has(WarnNegativeBudget) {
		t.Error("no negative-budget warning")
	}
	if !has(WarnPowerShortage) {
		t.Error("no power-shortage warning despite a shortfall")
	}
	if !has(WarnHighPollution) {
		t.Error("no pollution warning at grid mean 100")
	}
	if has(WarnHighCrime) {
		t.Error("crime warning with an all-zero crime grid")
	}
}

func TestAsciiMapGlyphs(t *testing.T) {
	w := newPlayingWorld(t, 37)
	flatten(w)

	// One block each of water, road and housing; everything else is empty.
	for y := 0; y < asciiMapStride; y++ {
		for x := 0; x < asciiMapStride; x++ {
			w.grid.At(CellPos{X: x, Y: y}).Terrain = TerrainWater
		}
	}
	for x := 8; x < 8+asciiMapStride; x++ {
		w.grid.At(CellPos{X: x, Y: 8}).Terrain = TerrainRoad
		w.grid.At(CellPos{X: x, Y: 9}).Terrain = TerrainRoad
	}
	w.grid.At(CellPos{X: 16, Y: 8}).Zone = ZoneResidentialLow
	home := w.spawnBuilding(CellPos{X: 16, Y: 8}, ZoneResidentialLow)
	w.building(home).ConstructionLeft = 0

	m := w.asciiMap()
	lines := strings.Split(strings.TrimRight(m, "\n"), "\n")
	if len(lines) != GridSize/asciiMapStride {
		t.Fatalf("map has %d rows", len(lines))
	}
	if len(lines[0]) != GridSize/asciiMapStride {
		t.Fatalf("map rows are %d wide", len(lines[0]))
	}
	if got := lines[0][0]; got != '~' {
		t.Errorf("water block glyph = %c", got)
	}
	if got := lines[2][2]; got != '#' {
		t.Errorf("road block glyph = %c", got)
	}
	if got := lines[2][4]; got != 'R' {
		t.Errorf("residential block glyph = %c", got)
	}
	if got := lines[30][30]; got != '.' {
		t.Errorf("empty block glyph = %c", got)
	}
}
