package world

import "testing"

func TestPlaceTransitStopValidation(t *testing.T) {
	w := newPlayingWorld(t, 19)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 20, Y: 20}, CellPos{X: 60, Y: 20})

	if code, _ := w.placeTransitStop(CellPos{X: 100, Y: 100}, TransitBus); code != CodeNoRoadAdjacent {
		t.Errorf("no road: code = %s", code)
	}

	before := w.Budget().Treasury
	if code, _ := w.placeTransitStop(CellPos{X: 25, Y: 21}, TransitBus); code != CodeOK {
		t.Fatalf("place stop: %s", code)
	}
	if got, want := before-w.Budget().Treasury, transitModeSpecs[TransitBus].StopCost; got != want {
		t.Errorf("charged %v, want %v", got, want)
	}
	if code, _ := w.placeTransitStop(CellPos{X: 25, Y: 21}, TransitBus); code != CodeAlreadyExists {
		t.Errorf("duplicate stop: code = %s", code)
	}
}

func TestCreateTransitLineValidation(t *testing.T) {
	w := newPlayingWorld(t, 19)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 20, Y: 20}, CellPos{X: 60, Y: 20})
	mustApply(t, w, GameAction{Kind: ActionPlaceTransitStop, TransitMode: TransitBus, Pos: CellPos{X: 22, Y: 21}})
	mustApply(t, w, GameAction{Kind: ActionPlaceTransitStop, TransitMode: TransitBus, Pos: CellPos{X: 55, Y: 21}})
	stopA := uint32(w.transit.Stops[0].ID)
	stopB := uint32(w.transit.Stops[1].ID)

	if code, _ := w.createTransitLine(TransitBus, []uint32{stopA}); code != CodeInvalid {
		t.Errorf("single stop: code = %s", code)
	}
	if code, _ := w.createTransitLine(TransitBus, []uint32{stopA, 999}); code != CodeInvalid {
		t.Errorf("unknown stop: code = %s", code)
	}
	if code, _ := w.createTransitLine(TransitMetro, []uint32{stopA, stopB}); code != CodeInvalid {
		t.Errorf("mode mismatch: code = %s", code)
	}

	if code, _ := w.createTransitLine(TransitBus, []uint32{stopA, stopB}); code != CodeOK {
		t.Fatal("line rejected")
	}
	if len(w.transit.Lines) != 1 || len(w.transit.Vehicles) != 1 {
		t.Errorf("lines = %d, vehicles = %d", len(w.transit.Lines), len(w.transit.Vehicles))
	}
	if !w.transit.dirtyPaths {
		t.Error("new line did not mark paths dirty")
	}
}

func TestLinePathLoopsThroughStops(t *testing.T) {
	w := newPlayingWorld(t, 19)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 20, Y: 20}, CellPos{X: 60, Y: 20})
	mustApply(t, w, GameAction{Kind: ActionPlaceTransitStop, TransitMode: TransitBus, Pos: CellPos{X: 22, Y: 21}})
	mustApply(t, w, GameAction{Kind: ActionPlaceTransitStop, TransitMode: TransitBus, Pos: CellPos{X: 55, Y: 21}})
	if code, _ := w.createTransitLine(TransitBus, []uint32{0, 1}); code != CodeOK {
		t.Fatal("line rejected")
	}

	w.systemTransit()
	line := &w.transit.Lines[0]
	if len(line.Path) == 0 {
		t.Fatal("line path empty after rebuild")
	}
	if w.transit.dirtyPaths {
		t.Error("dirty flag survived rebuild")
	}

	// Run long enough for the vehicle to lap the loop and pick up the
	// virtual-population baseline ridership.
	w.vpop.absorb(10000)
	for i := 0; i < 2000; i++ {
		w.systemTransit()
	}
	if w.transit.FareRevenue == 0 {
		t.Error("no fares collected after vehicle laps")
	}
}

func TestDisconnectedLineHoldsVehicles(t *testing.T) {
	w := newPlayingWorld(t, 19)
	flatten(w)
	placeRoad(t, w, RoadLocal, CellPos{X: 20, Y: 20}, CellPos{X: 30, Y: 20})
	placeRoad(t, w, RoadLocal, CellPos{X: 20, Y: 100}, CellPos{X: 30, Y: 100})
	mustApply(t, w, GameAction{Kind: ActionPlaceTransitStop, TransitMode: TransitBus, Pos: CellPos{X: 22, Y: 20}})
	mustApply(t, w, GameAction{Kind: ActionPlaceTransitStop, TransitMode: TransitBus, Pos: CellPos{X: 22, Y: 100}})
	if code, _ := w.createTransitLine(TransitBus, []uint32{0, 1}); code != CodeOK {
		t.Fatal("line rejected")
	}

	w.systemTransit()
	if got := w.transit.Lines[0].Path; got != nil {
		t.Errorf("disconnected line has a path: %d cells", len(got))
	}
	v := w.transit.Vehicles[0]
	w.systemTransit()
	if w.transit.Vehicles[0] != v {
		t.Error("vehicle moved on a pathless line")
	}
}
