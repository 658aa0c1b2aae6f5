package world

import "testing"

// addGenerator appends a power source without the placement bookkeeping so
// dispatch tests control the fleet exactly.
func addGenerator(w *World, kind UtilityKind, p CellPos) {
	w.utilities = append(w.utilities, UtilitySource{Cell: p, Kind: kind, Range: 40})
}

func TestDispatchFollowsMeritOrder(t *testing.T) {
	w := newPlayingWorld(t, 23)
	flatten(w)
	w.weather.CloudCover = 0
	addGenerator(w, UtilityPowerPlant, CellPos{X: 10, Y: 10})
	addGenerator(w, UtilitySolarFarm, CellPos{X: 20, Y: 10})

	// A small load is covered by solar alone; the thermal plant stays off.
	id := w.spawnBuilding(CellPos{X: 30, Y: 30}, ZoneResidentialLow)
	w.building(id).ConstructionLeft = 0

	fireSlowTick(w)
	w.systemEnergy()
	e := w.energy
	if e.Demand <= 0 {
		t.Fatal("no demand from a completed building")
	}
	solarOnly := utilitySpecs[UtilitySolarFarm].Output * e.LineEfficiency
	if e.Supply > solarOnly+1e-9 {
		t.Errorf("supply %v exceeds solar-only output %v; merit order ignored", e.Supply, solarOnly)
	}
	if e.Shortfall != 0 {
		t.Errorf("shortfall = %v", e.Shortfall)
	}
}

func TestSurplusChargesBatteryAndDeficitDrainsIt(t *testing.T) {
	w := newPlayingWorld(t, 23)
	flatten(w)
	w.weather.CloudCover = 0
	addGenerator(w, UtilitySolarFarm, CellPos{X: 20, Y: 10})
	id := w.spawnBuilding(CellPos{X: 30, Y: 30}, ZoneResidentialLow)
	w.building(id).ConstructionLeft = 0

	fireSlowTick(w)
	w.systemEnergy()
	if w.energy.BatteryCharge <= 0 {
		t.Fatal("surplus did not charge the battery")
	}
	charged := w.energy.BatteryCharge

	// Kill generation: the battery carries part of the load.
	w.utilities = nil
	w.systemEnergy()
	if w.energy.Supply != 0 {
		t.Errorf("supply = %v with no generators", w.energy.Supply)
	}
	if w.energy.BatteryCharge >= charged {
		t.Errorf("battery did not drain: %v -> %v", charged, w.energy.BatteryCharge)
	}
}

func TestShortfallReportedWhenBatteryEmpty(t *testing.T) {
	w := newPlayingWorld(t, 23)
	flatten(w)
	for i := 0; i < 20; i++ {
		id := w.spawnBuilding(CellPos{X: 30 + i, Y: 30}, ZoneResidentialHigh)
		w.building(id).ConstructionLeft = 0
	}
	fireSlowTick(w)
	w.systemEnergy()
	if w.energy.Shortfall <= 0 {
		t.Errorf("shortfall = %v with zero generation", w.energy.Shortfall)
	}
	if w.energy.BatteryCharge != 0 {
		t.Errorf("battery = %v", w.energy.BatteryCharge)
	}
}

func TestWeatherScalesGeneratorOutput(t *testing.T) {
	w := newPlayingWorld(t, 23)

	w.weather = Weather{CloudCover: 0}
	clearSolar := w.generatorOutput(UtilitySolarFarm)
	w.weather = Weather{CloudCover: 1}
	overcast := w.generatorOutput(UtilitySolarFarm)
	if overcast >= clearSolar {
		t.Errorf("solar under full cloud %v not below clear-sky %v", overcast, clearSolar)
	}

	w.weather = Weather{Condition: WeatherStorm}
	stormWind := w.generatorOutput(UtilityWindFarm)
	w.weather = Weather{}
	calmWind := w.generatorOutput(UtilityWindFarm)
	if stormWind <= calmWind {
		t.Errorf("storm wind %v not above calm %v", stormWind, calmWind)
	}

	// Thermal output ignores weather.
	w.weather = Weather{Condition: WeatherStorm, CloudCover: 1}
	if got := w.generatorOutput(UtilityPowerPlant); got != utilitySpecs[UtilityPowerPlant].Output {
		t.Errorf("thermal output = %v", got)
	}
}
