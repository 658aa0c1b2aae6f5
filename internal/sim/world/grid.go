package world

// GridSize is the fixed edge length of the city grid.
const GridSize = 256

// CellPos is an integer grid coordinate.
type CellPos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec2 is a continuous world-space position. One cell spans one unit.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p CellPos) InBounds() bool {
	return p.X >= 0 && p.X < GridSize && p.Y >= 0 && p.Y < GridSize
}

func (p CellPos) Index() int { return p.Y*GridSize + p.X }

func cellFromIndex(i int) CellPos { return CellPos{X: i % GridSize, Y: i / GridSize} }

func (p CellPos) Center() Vec2 {
	return Vec2{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5}
}

func cellOf(v Vec2) CellPos {
	return CellPos{X: int(v.X), Y: int(v.Y)}
}

// Manhattan distance between two cells.
func Manhattan(a, b CellPos) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type TerrainKind uint8

const (
	TerrainGrass TerrainKind = iota
	TerrainWater
	TerrainRoad
)

type RoadKind uint8

const (
	RoadNone RoadKind = iota
	RoadPath
	RoadOneWay
	RoadLocal
	RoadAvenue
	RoadBoulevard
	RoadHighway
)

func (k RoadKind) String() string {
	switch k {
	case RoadPath:
		return "path"
	case RoadOneWay:
		return "one_way"
	case RoadLocal:
		return "local"
	case RoadAvenue:
		return "avenue"
	case RoadBoulevard:
		return "boulevard"
	case RoadHighway:
		return "highway"
	default:
		return "none"
	}
}

// roadSpec maps a road kind to its capabilities. The set is closed; new kinds
// extend the table and every switch over RoadKind.
type roadSpec struct {
	CostPerCell float64
	Width       int
	MaxSpeed    float64 // cells per tick at speed 1
	Capacity    float64 // congestion normalization
	Maintenance float64 // monthly cost per cell
}

var roadSpecs = map[RoadKind]roadSpec{
	RoadPath:      {CostPerCell: 5, Width: 1, MaxSpeed: 0.04, Capacity: 10, Maintenance: 0.05},
	RoadOneWay:    {CostPerCell: 12, Width: 1, MaxSpeed: 0.10, Capacity: 30, Maintenance: 0.12},
	RoadLocal:     {CostPerCell: 10, Width: 1, MaxSpeed: 0.08, Capacity: 25, Maintenance: 0.10},
	RoadAvenue:    {CostPerCell: 25, Width: 2, MaxSpeed: 0.12, Capacity: 60, Maintenance: 0.25},
	RoadBoulevard: {CostPerCell: 40, Width: 3, MaxSpeed: 0.14, Capacity: 90, Maintenance: 0.40},
	RoadHighway:   {CostPerCell: 60, Width: 2, MaxSpeed: 0.22, Capacity: 140, Maintenance: 0.60},
}

type ZoneKind uint8

const (
	ZoneNone ZoneKind = iota
	ZoneResidentialLow
	ZoneResidentialMedium
	ZoneResidentialHigh
	ZoneCommercialLow
	ZoneCommercialHigh
	ZoneIndustrial
	ZoneOffice
	ZoneMixedUse
)

func (z ZoneKind) String() string {
	switch z {
	case ZoneResidentialLow:
		return "residential_low"
	case ZoneResidentialMedium:
		return "residential_medium"
	case ZoneResidentialHigh:
		return "residential_high"
	case ZoneCommercialLow:
		return "commercial_low"
	case ZoneCommercialHigh:
		return "commercial_high"
	case ZoneIndustrial:
		return "industrial"
	case ZoneOffice:
		return "office"
	case ZoneMixedUse:
		return "mixed_use"
	default:
		return "none"
	}
}

func (z ZoneKind) IsResidential() bool {
	switch z {
	case ZoneResidentialLow, ZoneResidentialMedium, ZoneResidentialHigh, ZoneMixedUse:
		return true
	}
	return false
}

func (z ZoneKind) IsCommercial() bool {
	switch z {
	case ZoneCommercialLow, ZoneCommercialHigh, ZoneMixedUse:
		return true
	}
	return false
}

// zoneSpec maps a zone kind to growth capabilities.
type zoneSpec struct {
	MaxLevel        int
	CapacityPerLvl  int
	FARLevelCap     int // floor-area-ratio derived cap
	PollutionOutput float64
	NoiseOutput     float64
}

var zoneSpecs = map[ZoneKind]zoneSpec{
	ZoneResidentialLow:    {MaxLevel: 3, CapacityPerLvl: 4, FARLevelCap: 2, PollutionOutput: 0, NoiseOutput: 2},
	ZoneResidentialMedium: {MaxLevel: 4, CapacityPerLvl: 10, FARLevelCap: 4, PollutionOutput: 0, NoiseOutput: 4},
	ZoneResidentialHigh:   {MaxLevel: 5, CapacityPerLvl: 24, FARLevelCap: 5, PollutionOutput: 0, NoiseOutput: 6},
	ZoneCommercialLow:     {MaxLevel: 3, CapacityPerLvl: 6, FARLevelCap: 3, PollutionOutput: 2, NoiseOutput: 8},
	ZoneCommercialHigh:    {MaxLevel: 5, CapacityPerLvl: 16, FARLevelCap: 5, PollutionOutput: 4, NoiseOutput: 12},
	ZoneIndustrial:        {MaxLevel: 4, CapacityPerLvl: 12, FARLevelCap: 4, PollutionOutput: 18, NoiseOutput: 16},
	ZoneOffice:            {MaxLevel: 5, CapacityPerLvl: 14, FARLevelCap: 5, PollutionOutput: 1, NoiseOutput: 6},
	ZoneMixedUse:          {MaxLevel: 4, CapacityPerLvl: 12, FARLevelCap: 4, PollutionOutput: 2, NoiseOutput: 8},
}

// BuildingID is an index+1 into the building table; 0 means none.
type BuildingID uint32

// Cell is one grid square. At most one building occupies a cell; a road cell
// cannot carry a zone or building.
type Cell struct {
	Terrain   TerrainKind
	Road      RoadKind
	Zone      ZoneKind
	Elevation float32
	HasPower  bool
	HasWater  bool
	Building  BuildingID
}

// Grid is the fixed 256x256 cell array.
type Grid struct {
	cells [GridSize * GridSize]Cell
}

func (g *Grid) At(p CellPos) *Cell {
	return &g.cells[p.Index()]
}

func (g *Grid) AtIndex(i int) *Cell { return &g.cells[i] }

// neighbors4 appends in-bounds 4-neighbors of p to dst in fixed E,W,S,N order.
func neighbors4(p CellPos, dst []CellPos) []CellPos {
	for _, d := range [4]CellPos{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		np := CellPos{X: p.X + d.X, Y: p.Y + d.Y}
		if np.InBounds() {
			dst = append(dst, np)
		}
	}
	return dst
}
