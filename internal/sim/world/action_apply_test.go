package world

import "testing"

func TestZoneRejectsWaterAtomically(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	w.grid.At(CellPos{X: 25, Y: 25}).Terrain = TerrainWater

	code, _ := w.applyAction(GameAction{Kind: ActionZone, ZoneType: ZoneCommercialLow,
		Pos: CellPos{X: 20, Y: 20}, ToPos: CellPos{X: 30, Y: 30}})
	if code != CodeBlockedByWater {
		t.Fatalf("code = %s, want blocked_by_water", code)
	}
	// Nothing in the rectangle was painted.
	for y := 20; y <= 30; y++ {
		for x := 20; x <= 30; x++ {
			if z := w.grid.At(CellPos{X: x, Y: y}).Zone; z != ZoneNone {
				t.Fatalf("cell (%d,%d) zoned %v after rejected command", x, y, z)
			}
		}
	}
}

func TestZoneRejectsRoadCells(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	mustApply(t, w, GameAction{Kind: ActionPlaceGridRoad, RoadType: RoadLocal,
		Pos: CellPos{X: 10, Y: 10}, ToPos: CellPos{X: 20, Y: 10}})

	code, _ := w.applyAction(GameAction{Kind: ActionZone, ZoneType: ZoneResidentialLow,
		Pos: CellPos{X: 8, Y: 8}, ToPos: CellPos{X: 12, Y: 12}})
	if code != CodeAlreadyExists {
		t.Errorf("code = %s, want already_exists", code)
	}
}

func TestStraightRoadChargesPerCell(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	before := w.Budget().Treasury
	mustApply(t, w, GameAction{Kind: ActionPlaceGridRoad, RoadType: RoadLocal,
		Pos: CellPos{X: 10, Y: 10}, ToPos: CellPos{X: 30, Y: 10}})

	if w.segs.Count() != 1 {
		t.Fatalf("segments = %d, want 1", w.segs.Count())
	}
	cells := w.roads.CellCount()
	if cells < 20 || cells > 22 {
		t.Errorf("road cells = %d, want ~21", cells)
	}
	spent := before - w.Budget().Treasury
	want := roadSpecs[RoadLocal].CostPerCell * float64(len(w.segs.Get(w.segs.OrderedIDs()[0]).Cells))
	if spent != want {
		t.Errorf("spent %v, want %v", spent, want)
	}
}

func TestGridRoadRollbackRestoresFunds(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	// Block the vertical leg with a water column.
	for y := 12; y <= 40; y++ {
		w.grid.At(CellPos{X: 40, Y: y}).Terrain = TerrainWater
	}
	before := w.Budget().Treasury

	code := w.placeGridRoad(RoadLocal, CellPos{X: 10, Y: 10}, CellPos{X: 40, Y: 40})
	if code != CodeBlockedByWater {
		t.Fatalf("code = %s, want blocked_by_water", code)
	}
	if w.segs.Count() != 0 || w.roads.CellCount() != 0 {
		t.Errorf("rollback left %d segments, %d road cells", w.segs.Count(), w.roads.CellCount())
	}
	if w.Budget().Treasury != before {
		t.Errorf("treasury = %v, want %v after rollback", w.Budget().Treasury, before)
	}
	if eps := w.segs.RemovedEndpoints(); len(eps) != 0 {
		t.Errorf("rollback journaled %d removed endpoints, want 0", len(eps))
	}
}

func TestDeleteSegmentReleasesCells(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	mustApply(t, w, GameAction{Kind: ActionPlaceGridRoad, RoadType: RoadLocal,
		Pos: CellPos{X: 10, Y: 10}, ToPos: CellPos{X: 30, Y: 10}})
	id := w.segs.OrderedIDs()[0]

	if code := w.deleteSegment(id); code != CodeOK {
		t.Fatalf("delete: %s", code)
	}
	if w.segs.Count() != 0 || w.roads.CellCount() != 0 {
		t.Errorf("after delete: %d segments, %d road cells", w.segs.Count(), w.roads.CellCount())
	}
	if w.grid.At(CellPos{X: 20, Y: 10}).Terrain != TerrainGrass {
		t.Error("deleted road cell did not revert to grass")
	}
}

func TestPlaceUtilityValidation(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	w.grid.At(CellPos{X: 5, Y: 5}).Terrain = TerrainWater

	if code, _ := w.placeUtility(CellPos{X: 5, Y: 5}, UtilityWaterTower); code != CodeBlockedByWater {
		t.Errorf("water cell: code = %s", code)
	}
	if code, _ := w.placeUtility(CellPos{X: -1, Y: 0}, UtilityWaterTower); code != CodeOutOfBounds {
		t.Errorf("out of bounds: code = %s", code)
	}

	before := w.Budget().Treasury
	if code, _ := w.placeUtility(CellPos{X: 50, Y: 50}, UtilityPowerPlant); code != CodeOK {
		t.Fatalf("place: code = %s", code)
	}
	if got, want := before-w.Budget().Treasury, utilitySpecs[UtilityPowerPlant].Cost; got != want {
		t.Errorf("charged %v, want %v", got, want)
	}
	if len(w.utilities) != 1 {
		t.Fatalf("utilities = %d", len(w.utilities))
	}
	// The structure occupies its cell, so a second placement collides.
	if code, _ := w.placeUtility(CellPos{X: 50, Y: 50}, UtilityWaterTower); code != CodeAlreadyExists {
		t.Errorf("occupied cell: code = %s", code)
	}

	w.budget.Treasury = 10
	if code, _ := w.placeUtility(CellPos{X: 60, Y: 60}, UtilityPowerPlant); code != CodeInsufficientFunds {
		t.Errorf("broke treasury: code = %s", code)
	}
}

func TestUtilityCoverageReachesZonedCells(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	mustApply(t, w, GameAction{Kind: ActionPlaceGridRoad, RoadType: RoadLocal,
		Pos: CellPos{X: 40, Y: 50}, ToPos: CellPos{X: 70, Y: 50}})
	if code, _ := w.placeUtility(CellPos{X: 45, Y: 51}, UtilityPowerPlant); code != CodeOK {
		t.Fatal("place utility failed")
	}

	w.systemUtilities()
	if !w.grid.At(CellPos{X: 60, Y: 50}).HasPower {
		t.Error("road cell within range has no power")
	}
	// Power reaches one cell of grass off the road.
	if !w.grid.At(CellPos{X: 60, Y: 49}).HasPower {
		t.Error("grass cell adjacent to powered road has no power")
	}
	if w.grid.At(CellPos{X: 60, Y: 40}).HasPower {
		t.Error("power leaked deep into grass")
	}
}

func TestBulldozeBuildingKeepsZone(t *testing.T) {
	w := newPlayingWorld(t, 3)
	flatten(w)
	p := CellPos{X: 80, Y: 80}
	w.grid.At(p).Zone = ZoneResidentialLow
	id := w.spawnBuilding(p, ZoneResidentialLow)
	if id == 0 {
		t.Fatal("spawn failed")
	}

	code, _ := w.bulldoze(p)
	if code != CodeOK {
		t.Fatalf("bulldoze: %s", code)
	}
	c := w.grid.At(p)
	if c.Building != 0 {
		t.Error("building reference survived bulldoze")
	}
	if c.Zone != ZoneResidentialLow {
		t.Error("zoning lost on demolition")
	}
	if code, _ := w.bulldoze(p); code != CodeInvalid {
		t.Errorf("empty cell bulldoze: %s", code)
	}
}

func TestSetTaxRateBoundsAndClass(t *testing.T) {
	w := newPlayingWorld(t, 3)
	if code, _ := w.applyAction(GameAction{Kind: ActionSetTaxRate, ZoneType: ZoneIndustrial, Rate: 0.7}); code != CodeInvalid {
		t.Errorf("rate 0.7: code = %s", code)
	}
	mustApply(t, w, GameAction{Kind: ActionSetTaxRate, ZoneType: ZoneIndustrial, Rate: 0.2})
	if w.Budget().TaxIndustrial != 0.2 {
		t.Errorf("industrial tax = %v", w.Budget().TaxIndustrial)
	}
	if w.Budget().TaxResidential == 0.2 {
		t.Error("residential tax changed by industrial rate command")
	}
}
