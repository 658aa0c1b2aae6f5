package world

// ticksPerYear at the default cadence: one in-game year of aging per ~12
// in-game days keeps demographics moving on playable time scales.
const agingDaysPerYear = 12

// systemCitizenLifecycle handles aging, death, marriage and births on the
// slow tick. All stochastic draws come from the world RNG in citizen-table
// order, keeping the stream deterministic.
func (w *World) systemCitizenLifecycle() {
	if !w.slow.ShouldRun() {
		return
	}

	agingDue := w.clock.Day > 0 && w.clock.Day%agingDaysPerYear == 0 && !w.agedToday
	if w.clock.Day%agingDaysPerYear != 0 {
		w.agedToday = false
	}

	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		id := CitizenID(i)

		if agingDue {
			c.Details.Age++
		}

		// Mortality scales with age and failing health.
		deathChance := 0.0
		if c.Details.Age > 70 {
			deathChance += float64(c.Details.Age-70) * 0.0004
		}
		if c.Details.Health < 15 {
			deathChance += 0.002
		}
		if w.rng.Chance(deathChance) {
			w.despawnCitizen(id)
			continue
		}

		// Marriage: adults with no partner pair up with the next unmarried
		// adult in table order, occasionally.
		if c.Partner == NoneCitizen && c.Details.Age >= 20 && c.Details.Age < 60 {
			if w.rng.Chance(0.001 * (0.5 + c.Personality.Sociability)) {
				if mate := w.findUnmarriedAfter(id); mate != NoneCitizen {
					w.marry(id, mate)
				}
			}
		}

		// Births to married adults with home capacity.
		if c.Partner != NoneCitizen && c.Details.Gender == GenderFemale &&
			c.Details.Age >= 20 && c.Details.Age <= 42 {
			if w.rng.Chance(0.0008) {
				w.birth(id)
			}
		}
	}
	if agingDue {
		w.agedToday = true
	}

	w.assignJobs()
}

func (w *World) findUnmarriedAfter(id CitizenID) CitizenID {
	for i := int(id) + 1; i < len(w.citizens); i++ {
		c := &w.citizens[i]
		if c.Alive && c.Partner == NoneCitizen && c.Details.Age >= 20 && c.Details.Age < 60 {
			return CitizenID(i)
		}
	}
	return NoneCitizen
}

// assignJobs fills open workplace slots with unemployed adults in table
// order.
func (w *World) assignJobs() {
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive || c.Work != 0 || c.Details.Age < 18 || c.Details.Age > 65 {
			continue
		}
		bid, ok := w.findWorkplace(c.HomeCell)
		if !ok {
			continue
		}
		b := w.building(bid)
		c.Work = bid
		c.WorkCell = b.Cell
		b.Workers++
		c.Details.Salary = 400 + 180*float64(c.Details.Education) + 120*float64(b.Level)
	}
}

// findWorkplace locates the nearest completed non-residential building with a
// free worker slot.
func (w *World) findWorkplace(near CellPos) (BuildingID, bool) {
	best := -1
	var bestID BuildingID
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		if b.Zone.IsResidential() && b.Zone != ZoneMixedUse {
			continue
		}
		if b.Workers >= b.workerSlots() {
			continue
		}
		d := Manhattan(near, b.Cell)
		if best < 0 || d < best {
			best = d
			bestID = BuildingID(i + 1)
		}
	}
	return bestID, best >= 0
}

// systemImmigration materializes new residents while demand, housing and the
// real-agent cap allow; overflow and shortfall flow through the virtual
// population.
func (w *World) systemImmigration() {
	if !w.slow.ShouldRun() {
		return
	}

	attract := w.cityAttractiveness()
	if w.zoneDemand.Residential <= 0 || attract < w.params.GrowthAttractiveness {
		return
	}

	arrivals := 1 + int(w.zoneDemand.Residential*4)
	for n := 0; n < arrivals; n++ {
		home, ok := w.findVacantHome()
		if !ok {
			return
		}
		if w.aliveCitizens >= w.maxRealCitizens {
			w.vpop.absorb(arrivals - n)
			return
		}
		w.spawnCitizen(home)
	}
}

func (w *World) findVacantHome() (BuildingID, bool) {
	for i := range w.buildings {
		b := &w.buildings[i]
		if b.Alive && b.ConstructionLeft == 0 && b.Zone.IsResidential() && b.Occupants < b.Capacity {
			return BuildingID(i + 1), true
		}
	}
	return 0, false
}

// systemCitizenLOD re-tiers citizens each slow tick from the renderer's
// camera hint; with no hint everyone simulates Full.
func (w *World) systemCitizenLOD() {
	if !w.slow.ShouldRun() {
		return
	}
	cam, ok := w.cameraHint, w.cameraHintSet
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		if !ok {
			c.Lod = LodFull
			continue
		}
		d := Manhattan(cellOf(c.Pos), cam)
		switch {
		case d <= 48:
			c.Lod = LodFull
		case d <= 128:
			c.Lod = LodSimplified
		default:
			c.Lod = LodAbstract
		}
	}
}

// SetCameraHint lets the external renderer inform LOD tiering. The simulation
// never reads it for anything but detail selection.
func (w *World) SetCameraHint(p CellPos) {
	w.cameraHint = p
	w.cameraHintSet = true
}
