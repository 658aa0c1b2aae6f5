package world

import "testing"

func TestAbsorbAndReleaseConserveHeads(t *testing.T) {
	var v VirtualPopulation
	v.absorb(10)
	if v.TotalPopulation() != 10 {
		t.Fatalf("total = %d", v.TotalPopulation())
	}
	if got := v.release(4); got != 4 {
		t.Errorf("released %d", got)
	}
	if v.TotalPopulation() != 6 {
		t.Errorf("total after release = %d", v.TotalPopulation())
	}
	// Releasing more than exists returns only what was there.
	if got := v.release(100); got != 6 {
		t.Errorf("over-release returned %d", got)
	}
	if v.TotalPopulation() != 0 {
		t.Errorf("total = %d", v.TotalPopulation())
	}
}

func TestFrameRateAdjustsRealCitizenCap(t *testing.T) {
	w := newPlayingWorld(t, 31)
	base := w.maxRealCitizens

	w.SetFrameRate(60)
	fireSlowTick(w)
	w.systemVirtualPopulation()
	raised := w.maxRealCitizens
	if raised <= base {
		t.Fatalf("cap did not rise on high FPS: %d -> %d", base, raised)
	}

	// The signal is consumed: another slow tick without a new report holds.
	w.systemVirtualPopulation()
	if w.maxRealCitizens != raised {
		t.Errorf("cap moved without a frame-rate report: %d", w.maxRealCitizens)
	}

	// A low report shrinks the cap but never below the floor.
	for i := 0; i < 50; i++ {
		w.SetFrameRate(10)
		w.systemVirtualPopulation()
	}
	if w.maxRealCitizens != w.params.MaxRealCitizensFloor {
		t.Errorf("cap = %d, want floor %d", w.maxRealCitizens, w.params.MaxRealCitizensFloor)
	}
}

func TestCapCeilingHolds(t *testing.T) {
	w := newPlayingWorld(t, 31)
	fireSlowTick(w)
	for i := 0; i < 100; i++ {
		w.SetFrameRate(120)
		w.systemVirtualPopulation()
	}
	if w.maxRealCitizens != w.params.MaxRealCitizensCeil {
		t.Errorf("cap = %d, want ceiling %d", w.maxRealCitizens, w.params.MaxRealCitizensCeil)
	}
}

func TestDistrictAggregatesTrackCity(t *testing.T) {
	w := newPlayingWorld(t, 31)
	w.vpop.absorb(1000)
	fireSlowTick(w)
	w.systemVirtualPopulation()

	d := w.vpop.Districts[0]
	if d.Employed == 0 {
		t.Error("district employment stayed zero under the default employment rate")
	}
	if d.TaxRevenue == 0 {
		t.Error("district tax revenue stayed zero")
	}
	if d.ServiceNeed <= 0 {
		t.Errorf("service need = %v", d.ServiceNeed)
	}
}

func TestSpawnBeyondCapReturnsSentinel(t *testing.T) {
	w := newPlayingWorld(t, 31)
	flatten(w)
	home := w.spawnBuilding(CellPos{X: 40, Y: 40}, ZoneResidentialLow)
	w.building(home).ConstructionLeft = 0
	w.maxRealCitizens = 1

	if id := w.spawnCitizen(home); id == NoneCitizen {
		t.Fatal("first spawn rejected")
	}
	if id := w.spawnCitizen(home); id != NoneCitizen {
		t.Errorf("spawn beyond cap returned %d", id)
	}
}
