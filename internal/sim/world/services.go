package world

type ServiceKind uint8

const (
	ServiceFireStation ServiceKind = iota
	ServicePoliceStation
	ServiceHospital
	ServiceSchool
	ServicePark
)

func (k ServiceKind) String() string {
	switch k {
	case ServiceFireStation:
		return "fire_station"
	case ServicePoliceStation:
		return "police_station"
	case ServiceHospital:
		return "hospital"
	case ServiceSchool:
		return "school"
	case ServicePark:
		return "park"
	default:
		return "unknown"
	}
}

// Coverage bitflags, one per service class.
const (
	coverFire uint8 = 1 << iota
	coverPolice
	coverHealth
	coverEducation
	coverPark
)

func (k ServiceKind) coverBit() uint8 {
	switch k {
	case ServiceFireStation:
		return coverFire
	case ServicePoliceStation:
		return coverPolice
	case ServiceHospital:
		return coverHealth
	case ServiceSchool:
		return coverEducation
	default:
		return coverPark
	}
}

// serviceSpec is the closed capability table for service kinds.
type serviceSpec struct {
	Cost        float64
	MonthlyCost float64
	Radius      int
}

var serviceSpecs = map[ServiceKind]serviceSpec{
	ServiceFireStation:   {Cost: 12000, MonthlyCost: 500, Radius: 28},
	ServicePoliceStation: {Cost: 12000, MonthlyCost: 500, Radius: 28},
	ServiceHospital:      {Cost: 22000, MonthlyCost: 900, Radius: 36},
	ServiceSchool:        {Cost: 15000, MonthlyCost: 600, Radius: 32},
	ServicePark:          {Cost: 3000, MonthlyCost: 80, Radius: 14},
}

// ServiceBuilding is a coverage source at one cell.
type ServiceBuilding struct {
	Cell CellPos
	Kind ServiceKind
}

func (w *World) placeService(p CellPos, kind ServiceKind) (ResultCode, string) {
	spec, ok := serviceSpecs[kind]
	if !ok {
		return CodeInvalid, "unknown service kind"
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
	if !w.hasRoadAdjacent(p) && kind != ServicePark {
		return CodeNoRoadAdjacent, "service needs road access"
	}
	if w.budget.Treasury < spec.Cost {
		return CodeInsufficientFunds, ""
	}

	w.budget.Treasury -= spec.Cost
	w.services = append(w.services, ServiceBuilding{Cell: p, Kind: kind})
	id := w.spawnBuilding(p, ZoneNone)
	w.building(id).ConstructionLeft = 0
	w.dirtyCoverage = true
	return CodeOK, ""
}

// systemServiceCoverage rebuilds the coverage bitflag grid when dirty.
// Department budget multipliers stretch or shrink each service's radius.
func (w *World) systemServiceCoverage() {
	if !w.dirtyCoverage {
		return
	}
	w.dirtyCoverage = false

	for i := range w.coverage {
		w.coverage[i] = 0
	}
	for _, s := range w.services {
		radius := float64(serviceSpecs[s.Kind].Radius) * w.departmentEffect(s.Kind)
		w.paintCoverage(s.Cell, int(radius), s.Kind.coverBit())
	}
}

// departmentEffect maps a service to its department's effectiveness
// multiplier from the extended budget.
func (w *World) departmentEffect(k ServiceKind) float64 {
	e := &w.extended
	switch k {
	case ServiceFireStation:
		return e.Fire
	case ServicePoliceStation:
		return e.Police
	case ServiceHospital:
		return e.Health
	case ServiceSchool:
		return e.Education
	default:
		return e.Parks
	}
}

func (w *World) paintCoverage(center CellPos, radius int, bit uint8) {
	x0 := maxInt(center.X-radius, 0)
	x1 := minInt(center.X+radius, GridSize-1)
	y0 := maxInt(center.Y-radius, 0)
	y1 := minInt(center.Y+radius, GridSize-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := CellPos{X: x, Y: y}
			if Manhattan(center, p) <= radius {
				w.coverage[p.Index()] |= bit
			}
		}
	}
}

// CoverageShare returns the fraction of built-up cells carrying a service
// bit, for the observation snapshot.
func (w *World) coverageShare(bit uint8) float64 {
	total, covered := 0, 0
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		if c.Building == 0 && c.Zone == ZoneNone {
			continue
		}
		total++
		if w.coverage[i]&bit != 0 {
			covered++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total)
}
