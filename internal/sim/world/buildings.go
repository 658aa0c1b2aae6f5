package world

// Building occupies exactly one grid cell. The id is the table index + 1 so
// that 0 stays the grid's "no building" value.
type Building struct {
	Alive bool

	Cell      CellPos
	Zone      ZoneKind
	Level     int
	Capacity  int
	Occupants int
	Workers   int

	// CommercialSplit is the commercial share of a mixed-use building.
	CommercialSplit float64

	ConstructionLeft  int
	ConstructionTotal int
}

// workerSlots is the employment capacity of a non-residential (or mixed-use)
// building.
func (b *Building) workerSlots() int {
	if b.Zone.IsResidential() && b.Zone != ZoneMixedUse {
		return 0
	}
	slots := b.Capacity
	if b.Zone == ZoneMixedUse {
		slots = int(float64(b.Capacity) * b.CommercialSplit)
	}
	return slots
}

func (w *World) building(id BuildingID) *Building {
	if id == 0 || int(id) > len(w.buildings) {
		return nil
	}
	b := &w.buildings[id-1]
	if !b.Alive {
		return nil
	}
	return b
}

func (w *World) aliveBuildingCount() int {
	n := 0
	for i := range w.buildings {
		if w.buildings[i].Alive {
			n++
		}
	}
	return n
}

// spawnBuilding starts construction on a zoned cell.
func (w *World) spawnBuilding(p CellPos, zone ZoneKind) BuildingID {
	var id BuildingID
	if n := len(w.freeBuildings); n > 0 {
		id = w.freeBuildings[n-1]
		w.freeBuildings = w.freeBuildings[:n-1]
	} else {
		w.buildings = append(w.buildings, Building{})
		id = BuildingID(len(w.buildings))
	}
	spec := zoneSpecs[zone]
	b := &w.buildings[id-1]
	*b = Building{
		Alive:             true,
		Cell:              p,
		Zone:              zone,
		Level:             1,
		Capacity:          spec.CapacityPerLvl,
		ConstructionLeft:  w.params.ConstructionTicks,
		ConstructionTotal: w.params.ConstructionTicks,
	}
	if zone == ZoneMixedUse {
		b.CommercialSplit = 0.4
	}
	w.grid.At(p).Building = id
	return id
}

// demolishBuilding clears a building, evicting residents and workers. The
// cell keeps its zone.
func (w *World) demolishBuilding(id BuildingID) {
	b := w.building(id)
	if b == nil {
		return
	}
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		if c.Home == id {
			w.despawnCitizen(CitizenID(i))
			continue
		}
		if c.Work == id {
			c.Work = 0
			c.WorkCell = CellPos{}
		}
	}
	w.grid.At(b.Cell).Building = 0
	b.Alive = false
	w.freeBuildings = append(w.freeBuildings, id)
	w.dirtyCoverage = true
}

// systemZoneDemand recomputes zone demand each slow tick from population
// pressure, employment and attractiveness.
func (w *World) systemZoneDemand() {
	if !w.slow.ShouldRun() {
		return
	}
	pop := float64(w.alivePopulation()) + float64(w.vpop.TotalPopulation())
	housing := 0.0
	jobs := 0.0
	shops := 0.0
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		if b.Zone.IsResidential() {
			housing += float64(b.Capacity)
		}
		if b.Zone.IsCommercial() {
			shops += float64(b.Capacity)
		}
		if !b.Zone.IsResidential() || b.Zone == ZoneMixedUse {
			jobs += float64(b.workerSlots())
		}
	}

	p := &w.params
	attract := w.cityAttractiveness() / 100

	// Residential demand rises when housing is scarce relative to the city's
	// pull; commercial and office follow population; industrial follows the
	// gap between workers and jobs.
	w.zoneDemand.Residential = clamp(p.ResidentialDemandSensitivity*(attract-housing/(pop+50)), 0, 1)
	w.zoneDemand.Commercial = clamp(p.CommercialDemandSensitivity*(pop/(shops*8+50)), 0, 1)
	w.zoneDemand.Industrial = clamp(p.IndustrialDemandSensitivity*((pop*0.6-jobs)/(pop+50)), 0, 1)
	w.zoneDemand.Office = clamp(p.OfficeDemandSensitivity*((pop*0.3-jobs*0.4)/(pop+50)), 0, 1)
}

// systemBuildingGrowth advances construction, spawns buildings on eligible
// zoned cells, and levels up crowded buildings. Slow-tick gated.
func (w *World) systemBuildingGrowth() {
	// Construction countdown runs every tick so build times are in ticks.
	for i := range w.buildings {
		b := &w.buildings[i]
		if b.Alive && b.ConstructionLeft > 0 {
			b.ConstructionLeft--
		}
	}

	if !w.slow.ShouldRun() {
		return
	}

	w.spawnOnZonedCells()
	w.levelUpBuildings()
}

// demandFor maps a zone kind to its demand bucket.
func (w *World) demandFor(z ZoneKind) float64 {
	switch {
	case z.IsResidential() && z != ZoneMixedUse:
		return w.zoneDemand.Residential
	case z == ZoneMixedUse:
		return (w.zoneDemand.Residential + w.zoneDemand.Commercial) / 2
	case z.IsCommercial():
		return w.zoneDemand.Commercial
	case z == ZoneIndustrial:
		return w.zoneDemand.Industrial
	case z == ZoneOffice:
		return w.zoneDemand.Office
	}
	return 0
}

// spawnOnZonedCells walks the grid in row-major order and starts construction
// where zoning, demand, road access and power line up.
func (w *World) spawnOnZonedCells() {
	attract := w.cityAttractiveness()
	if attract < w.params.GrowthAttractiveness {
		return
	}
	spawned := 0
	const maxSpawnsPerSlowTick = 8

	for i := 0; i < GridSize*GridSize && spawned < maxSpawnsPerSlowTick; i++ {
		c := w.grid.AtIndex(i)
		if c.Zone == ZoneNone || c.Building != 0 || c.Terrain != TerrainGrass {
			continue
		}
		demand := w.demandFor(c.Zone)
		if demand <= 0 {
			continue
		}
		p := cellFromIndex(i)
		if !w.hasRoadAdjacent(p) {
			continue
		}
		if !w.rng.Chance(demand * 0.8) {
			continue
		}
		w.spawnBuilding(p, c.Zone)
		spawned++
	}
}

func (w *World) hasRoadAdjacent(p CellPos) bool {
	var buf [4]CellPos
	for _, np := range neighbors4(p, buf[:0]) {
		if w.roads.IsRoad(np) {
			return true
		}
	}
	return false
}

// levelUpBuildings raises full buildings one level, bounded by the zone max,
// the FAR-derived cap and the policy cap.
func (w *World) levelUpBuildings() {
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		spec := zoneSpecs[b.Zone]
		cap := spec.MaxLevel
		if spec.FARLevelCap < cap {
			cap = spec.FARLevelCap
		}
		if w.policyLevelCap < cap {
			cap = w.policyLevelCap
		}
		if b.Level >= cap {
			continue
		}
		full := b.Occupants >= b.Capacity
		if b.Zone.IsResidential() && !full {
			continue
		}
		if !b.Zone.IsResidential() && b.Workers < b.workerSlots() {
			continue
		}
		if !w.rng.Chance(0.15) {
			continue
		}
		b.Level++
		b.Capacity = spec.CapacityPerLvl * b.Level
	}
}

// cityAttractiveness is the 0..100 pull score blended from happiness, land
// value, services and pollution. An empty city uses a neutral baseline so the
// first settlers can arrive.
func (w *World) cityAttractiveness() float64 {
	if w.attractivenessOverride >= 0 {
		return w.attractivenessOverride
	}
	pop := w.alivePopulation()
	if pop == 0 {
		return 55
	}
	happiness := w.averageHappiness()
	lv := 0.0
	pol := 0.0
	for i := 0; i < GridSize*GridSize; i++ {
		lv += float64(w.grids.LandValue[i])
		pol += float64(w.grids.Pollution[i])
	}
	n := float64(GridSize * GridSize)
	score := happiness*0.5 + (lv/n)*0.4 - (pol/n)*0.3 + 25
	return clamp(score, 0, 100)
}

func (w *World) averageHappiness() float64 {
	sum := 0.0
	n := 0
	for i := range w.citizens {
		if w.citizens[i].Alive {
			sum += w.citizens[i].Details.Happiness
			n++
		}
	}
	if n == 0 {
		return 50
	}
	return sum / float64(n)
}
