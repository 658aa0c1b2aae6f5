package world

import "testing"

func TestPollutionAccumulatesAroundIndustry(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	src := CellPos{X: 50, Y: 50}
	id := w.spawnBuilding(src, ZoneIndustrial)
	w.building(id).ConstructionLeft = 0

	fireSlowTick(w)
	for i := 0; i < 12; i++ {
		w.systemScalarGrids()
	}

	center := w.grids.Pollution[src.Index()]
	if center == 0 {
		t.Fatal("no pollution at an industrial source")
	}
	near := w.grids.Pollution[(CellPos{X: 54, Y: 50}).Index()]
	if near == 0 || near > center {
		t.Errorf("pollution near source = %d, center = %d", near, center)
	}
	if far := w.grids.Pollution[(CellPos{X: 5, Y: 5}).Index()]; far != 0 {
		t.Errorf("pollution reached the far corner: %d", far)
	}
}

func TestPollutionDecaysWhenSourceRemoved(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	src := CellPos{X: 50, Y: 50}
	id := w.spawnBuilding(src, ZoneIndustrial)
	w.building(id).ConstructionLeft = 0

	fireSlowTick(w)
	for i := 0; i < 12; i++ {
		w.systemScalarGrids()
	}
	peak := w.grids.Pollution[src.Index()]
	w.demolishBuilding(id)
	for i := 0; i < 12; i++ {
		w.systemScalarGrids()
	}
	if after := w.grids.Pollution[src.Index()]; after >= peak {
		t.Errorf("pollution did not decay: %d -> %d", peak, after)
	}
}

func TestGarbageRespondsToSanitationFunding(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	p := CellPos{X: 40, Y: 40}
	id := w.spawnBuilding(p, ZoneResidentialMedium)
	b := w.building(id)
	b.ConstructionLeft = 0
	b.Occupants = 8

	// Defunded sanitation lets waste pile up.
	w.extended.Sanitation = 0
	fireSlowTick(w)
	for i := 0; i < 5; i++ {
		w.systemScalarGrids()
	}
	piled := w.grids.Garbage[p.Index()]
	if piled == 0 {
		t.Fatal("no garbage accrued with sanitation defunded")
	}

	// Double funding clears the backlog faster than it accrues.
	w.extended.Sanitation = 2
	for i := 0; i < 10; i++ {
		w.systemScalarGrids()
	}
	if after := w.grids.Garbage[p.Index()]; after >= piled {
		t.Errorf("garbage did not shrink: %d -> %d", piled, after)
	}
}

func TestTrafficDensityDecays(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	i := (CellPos{X: 20, Y: 20}).Index()
	w.grids.TrafficDensity[i] = 100

	fireSlowTick(w)
	w.systemScalarGrids()
	if got := w.grids.TrafficDensity[i]; got != 70 {
		t.Errorf("traffic after one decay = %d, want 70", got)
	}
}

func TestRoadConditionWearsUnderTraffic(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 10, Y: 10}, CellPos{X: 30, Y: 10})
	i := (CellPos{X: 20, Y: 10}).Index()

	// An idle road stays pristine: repair outpaces ambient wear.
	fireSlowTick(w)
	w.systemScalarGrids()
	if got := w.grids.RoadCondition[i]; got != 255 {
		t.Errorf("idle road condition = %d", got)
	}

	w.grids.TrafficDensity[i] = 255
	w.systemScalarGrids()
	if got := w.grids.RoadCondition[i]; got >= 255 {
		t.Errorf("loaded road did not wear: %d", got)
	}
}

func TestSnowAccumulatesAndMelts(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	i := (CellPos{X: 100, Y: 100}).Index()

	w.weather.Temperature = -5
	w.weather.Precipitation = 0.5
	fireSlowTick(w)
	w.systemScalarGrids()
	if got := w.grids.SnowDepth[i]; got == 0 {
		t.Fatal("no snow under freezing precipitation")
	}
	if got := w.grids.Stormwater[i]; got != 0 {
		t.Errorf("stormwater accrued while freezing: %d", got)
	}

	w.weather.Temperature = 12
	w.weather.Precipitation = 0
	w.systemScalarGrids()
	if got := w.grids.SnowDepth[i]; got != 0 {
		t.Errorf("snow survived a warm tick: %d", got)
	}
	if got := w.grids.Stormwater[i]; got == 0 {
		t.Error("melt did not run off into stormwater")
	}
}

func TestLandValueLiftsNearParkCoverage(t *testing.T) {
	w := newPlayingWorld(t, 13)
	flatten(w)
	inside := (CellPos{X: 60, Y: 60}).Index()
	outside := (CellPos{X: 5, Y: 200}).Index()
	w.coverage[inside] |= coverPark

	fireSlowTick(w)
	for i := 0; i < 10; i++ {
		w.systemScalarGrids()
	}
	if w.grids.LandValue[inside] <= w.grids.LandValue[outside] {
		t.Errorf("park coverage land value %d not above baseline %d",
			w.grids.LandValue[inside], w.grids.LandValue[outside])
	}
}
