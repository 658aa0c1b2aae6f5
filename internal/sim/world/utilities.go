package world

type UtilityKind uint8

const (
	UtilityPowerPlant UtilityKind = iota
	UtilitySolarFarm
	UtilityWindFarm
	UtilityWaterTower
	UtilityWaterTreatment
)

func (k UtilityKind) String() string {
	switch k {
	case UtilityPowerPlant:
		return "power_plant"
	case UtilitySolarFarm:
		return "solar_farm"
	case UtilityWindFarm:
		return "wind_farm"
	case UtilityWaterTower:
		return "water_tower"
	case UtilityWaterTreatment:
		return "water_treatment"
	default:
		return "unknown"
	}
}

func (k UtilityKind) isPower() bool {
	switch k {
	case UtilityPowerPlant, UtilitySolarFarm, UtilityWindFarm:
		return true
	}
	return false
}

// utilitySpec is the closed capability table for utility kinds.
type utilitySpec struct {
	Cost         float64
	MonthlyCost  float64
	Output       float64 // MW for power kinds, kL/day for water
	DispatchRank int     // merit order for power dispatch, lower first
}

var utilitySpecs = map[UtilityKind]utilitySpec{
	UtilityPowerPlant:     {Cost: 25000, MonthlyCost: 900, Output: 120, DispatchRank: 2},
	UtilitySolarFarm:      {Cost: 18000, MonthlyCost: 300, Output: 45, DispatchRank: 0},
	UtilityWindFarm:       {Cost: 15000, MonthlyCost: 350, Output: 35, DispatchRank: 1},
	UtilityWaterTower:     {Cost: 8000, MonthlyCost: 250, Output: 400, DispatchRank: 0},
	UtilityWaterTreatment: {Cost: 20000, MonthlyCost: 700, Output: 1500, DispatchRank: 1},
}

// UtilitySource feeds power or water into the grid from one cell.
type UtilitySource struct {
	Cell  CellPos
	Kind  UtilityKind
	Range int
}

func (w *World) placeUtility(p CellPos, kind UtilityKind) (ResultCode, string) {
	spec, ok := utilitySpecs[kind]
	if !ok {
		return CodeInvalid, "unknown utility kind"
	}
	if !p.InBounds() {
		return CodeOutOfBounds, ""
	}
	c := w.grid.At(p)
	if c.Terrain == TerrainWater {
		return CodeBlockedByWater, ""
	}
	if c.Building != 0 || c.Terrain == TerrainRoad {
		return CodeAlreadyExists, ""
	}
	if w.budget.Treasury < spec.Cost {
		return CodeInsufficientFunds, ""
	}

	w.budget.Treasury -= spec.Cost
	rng := w.params.WaterTowerRange
	if kind.isPower() {
		rng = w.params.PowerPlantRange
	}
	w.utilities = append(w.utilities, UtilitySource{Cell: p, Kind: kind, Range: rng})
	// Utility structures occupy their cell like a building footprint.
	id := w.spawnBuilding(p, ZoneNone)
	b := w.building(id)
	b.ConstructionLeft = 0
	w.dirtyUtilities = true
	return CodeOK, ""
}

// systemUtilities re-propagates power and water when the road network,
// weather multiplier or source set changed. BFS flows from each source along
// road cells and their grass 4-neighbors up to the weather-adjusted range.
func (w *World) systemUtilities() {
	if !w.dirtyUtilities {
		return
	}
	w.dirtyUtilities = false

	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		c.HasPower = false
		c.HasWater = false
	}

	if w.utilityVisited == nil {
		w.utilityVisited = make([]bool, GridSize*GridSize)
	}

	mult := w.weather.utilityRangeDivisor()
	for i := range w.utilities {
		src := &w.utilities[i]
		effective := int(float64(src.Range) / mult)
		if effective < 1 {
			effective = 1
		}
		w.propagateUtility(src, effective)
	}
}

func (w *World) propagateUtility(src *UtilitySource, maxDist int) {
	visited := w.utilityVisited
	for i := range visited {
		visited[i] = false
	}

	type qItem struct {
		p CellPos
		d int
	}
	queue := make([]qItem, 0, 256)
	queue = append(queue, qItem{p: src.Cell})
	visited[src.Cell.Index()] = true

	mark := func(p CellPos) {
		c := w.grid.At(p)
		if src.Kind.isPower() {
			c.HasPower = true
		} else {
			c.HasWater = true
		}
	}
	mark(src.Cell)

	var buf [4]CellPos
	for head := 0; head < len(queue); head++ {
		it := queue[head]
		if it.d >= maxDist {
			continue
		}
		for _, np := range neighbors4(it.p, buf[:0]) {
			i := np.Index()
			if visited[i] {
				continue
			}
			t := w.grid.AtIndex(i).Terrain
			// Flow runs along roads and reaches one cell into the
			// surrounding grass.
			if t == TerrainWater {
				continue
			}
			if t == TerrainGrass && w.grid.At(it.p).Terrain == TerrainGrass && it.p != src.Cell {
				continue
			}
			visited[i] = true
			mark(np)
			queue = append(queue, qItem{p: np, d: it.d + 1})
		}
	}
}
