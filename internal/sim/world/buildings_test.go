package world

import "testing"

func firstZonedBuilding(w *World, zone ZoneKind) BuildingID {
	for i := range w.buildings {
		b := &w.buildings[i]
		if b.Alive && b.Zone == zone {
			return BuildingID(i + 1)
		}
	}
	return 0
}

func TestZoneDemandTracksHousingScarcity(t *testing.T) {
	w := newPlayingWorld(t, 21)
	flatten(w)
	w.vpop.absorb(400)

	fireSlowTick(w)
	w.systemZoneDemand()
	scarce := w.zoneDemand.Residential
	if scarce <= 0 {
		t.Fatalf("residential demand = %v with no housing at all", scarce)
	}
	if w.zoneDemand.Commercial != 1 {
		t.Errorf("commercial demand = %v with 400 people and no shops, want 1", w.zoneDemand.Commercial)
	}

	// Flood the market with finished housing; demand must collapse.
	id := w.spawnBuilding(CellPos{X: 50, Y: 50}, ZoneResidentialLow)
	b := w.building(id)
	b.ConstructionLeft = 0
	b.Capacity = 5000
	w.systemZoneDemand()
	if w.zoneDemand.Residential != 0 {
		t.Errorf("residential demand = %v with a huge housing surplus, want 0", w.zoneDemand.Residential)
	}
}

func TestGrowthPipelinePopulatesZonedLand(t *testing.T) {
	w := newPlayingWorld(t, 21)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 40, Y: 40}, CellPos{X: 60, Y: 40})
	mustApply(t, w, GameAction{Kind: ActionPlaceUtility, UtilityType: UtilityPowerPlant,
		Pos: CellPos{X: 50, Y: 39}})
	mustApply(t, w, GameAction{Kind: ActionZone, ZoneType: ZoneResidentialLow,
		Pos: CellPos{X: 41, Y: 41}, ToPos: CellPos{X: 59, Y: 41}})

	fireSlowTick(w)
	w.setZoneDemand(ZoneDemand{Residential: 1})
	for i := 0; i < 200 && firstZonedBuilding(w, ZoneResidentialLow) == 0; i++ {
		w.systemBuildingGrowth()
	}
	home := firstZonedBuilding(w, ZoneResidentialLow)
	if home == 0 {
		t.Fatal("no building started on zoned roadside land")
	}
	if got := w.building(home).ConstructionTotal; got != w.params.ConstructionTicks {
		t.Errorf("construction total = %d, want %d", got, w.params.ConstructionTicks)
	}
	if !w.hasRoadAdjacent(w.building(home).Cell) {
		t.Errorf("building at %v has no adjacent road", w.building(home).Cell)
	}

	for i := 0; i < w.params.ConstructionTicks && w.building(home).ConstructionLeft > 0; i++ {
		w.systemBuildingGrowth()
	}
	if left := w.building(home).ConstructionLeft; left != 0 {
		t.Fatalf("construction left = %d after %d ticks", left, w.params.ConstructionTicks)
	}

	w.setZoneDemand(ZoneDemand{Residential: 0.5})
	for i := 0; i < 20 && w.alivePopulation() == 0; i++ {
		w.systemImmigration()
	}
	if w.alivePopulation() == 0 {
		t.Fatal("no immigration into finished housing")
	}
	if w.building(home).Occupants == 0 {
		t.Error("finished building has no occupants after immigration")
	}
}

func TestGrowthSkipsUnroadedAndUnzonedCells(t *testing.T) {
	w := newPlayingWorld(t, 21)
	flatten(w)
	// Zoned land far from any road never develops.
	mustApply(t, w, GameAction{Kind: ActionZone, ZoneType: ZoneResidentialLow,
		Pos: CellPos{X: 100, Y: 100}, ToPos: CellPos{X: 110, Y: 100}})

	fireSlowTick(w)
	w.setZoneDemand(ZoneDemand{Residential: 1})
	for i := 0; i < 50; i++ {
		w.systemBuildingGrowth()
	}
	if n := w.aliveBuildingCount(); n != 0 {
		t.Errorf("%d buildings grew without road access", n)
	}
}

func TestLevelUpBoundedByStructuralAndPolicyCaps(t *testing.T) {
	w := newPlayingWorld(t, 7)
	flatten(w)
	spec := zoneSpecs[ZoneResidentialLow]

	id := w.spawnBuilding(CellPos{X: 30, Y: 21}, ZoneResidentialLow)
	w.building(id).ConstructionLeft = 0
	for i := 0; i < 400; i++ {
		b := w.building(id)
		b.Occupants = b.Capacity // keep it full so only the caps can stop growth
		w.levelUpBuildings()
	}
	b := w.building(id)
	if b.Level != spec.FARLevelCap {
		t.Errorf("level = %d, want FAR cap %d (zone max %d)", b.Level, spec.FARLevelCap, spec.MaxLevel)
	}
	if b.Capacity != spec.CapacityPerLvl*b.Level {
		t.Errorf("capacity = %d at level %d, want %d", b.Capacity, b.Level, spec.CapacityPerLvl*b.Level)
	}

	// A policy cap below the structural caps freezes growth entirely.
	w.policyLevelCap = 1
	other := w.spawnBuilding(CellPos{X: 35, Y: 21}, ZoneResidentialLow)
	w.building(other).ConstructionLeft = 0
	for i := 0; i < 400; i++ {
		ob := w.building(other)
		ob.Occupants = ob.Capacity
		w.levelUpBuildings()
	}
	if got := w.building(other).Level; got != 1 {
		t.Errorf("policy-capped level = %d, want 1", got)
	}
}
