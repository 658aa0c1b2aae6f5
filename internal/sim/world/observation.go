package world

import "strings"

type WarningKind uint8

const (
	WarnNegativeBudget WarningKind = iota
	WarnPowerShortage
	WarnWaterShortage
	WarnHighUnemployment
	WarnHighHomelessness
	WarnTrafficCongestion
	WarnHighPollution
	WarnHighCrime
)

func (k WarningKind) String() string {
	switch k {
	case WarnNegativeBudget:
		return "negative_budget"
	case WarnPowerShortage:
		return "power_shortage"
	case WarnWaterShortage:
		return "water_shortage"
	case WarnHighUnemployment:
		return "high_unemployment"
	case WarnHighHomelessness:
		return "high_homelessness"
	case WarnTrafficCongestion:
		return "traffic_congestion"
	case WarnHighPollution:
		return "high_pollution"
	case WarnHighCrime:
		return "high_crime"
	default:
		return "unknown"
	}
}

// PopulationStats breaks the city's population down for the snapshot.
type PopulationStats struct {
	Total      int
	Employed   int
	Unemployed int
	Homeless   int
}

// ServiceCoverage is the covered share of built-up cells per service class.
type ServiceCoverage struct {
	Fire      float64
	Police    float64
	Health    float64
	Education float64
}

// CurrentObservation is the read-only snapshot rebuilt each PostSim for
// external consumers. Everything here is a copy; mutating it does nothing to
// the simulation.
type CurrentObservation struct {
	Tick   uint64
	Day    int
	Hour   float64
	Speed  int
	Paused bool

	Treasury        float64
	MonthlyIncome   float64
	MonthlyExpenses float64
	NetIncome       float64
	Solvency        BankruptcyLevel

	Population PopulationStats
	ZoneDemand ZoneDemand

	PowerCoverage float64
	WaterCoverage float64
	Services      ServiceCoverage

	Happiness      float64
	Attractiveness float64
	BuildingCount  int

	Weather  Weather
	Warnings []WarningKind
	Notices  []string
	Recent   []ActionResult
	AsciiMap string
}

// systemObservation rebuilds the snapshot at the end of every tick.
func (w *World) systemObservation() {
	pop := w.populationStats()
	obs := CurrentObservation{
		Tick:   w.tick,
		Day:    w.clock.Day,
		Hour:   w.clock.Hour,
		Speed:  w.clock.Speed,
		Paused: w.clock.Paused,

		Treasury:        w.budget.Treasury,
		MonthlyIncome:   w.budget.MonthlyIncome,
		MonthlyExpenses: w.budget.MonthlyExpenses,
		NetIncome:       w.budget.MonthlyIncome - w.budget.MonthlyExpenses,
		Solvency:        w.bankruptcy,

		Population: pop,
		ZoneDemand: w.zoneDemand,

		PowerCoverage: w.utilityShare(func(c *Cell) bool { return c.HasPower }),
		WaterCoverage: w.utilityShare(func(c *Cell) bool { return c.HasWater }),
		Services: ServiceCoverage{
			Fire:      w.coverageShare(coverFire),
			Police:    w.coverageShare(coverPolice),
			Health:    w.coverageShare(coverHealth),
			Education: w.coverageShare(coverEducation),
		},

		Happiness:      w.averageHappiness(),
		Attractiveness: w.cityAttractiveness(),
		BuildingCount:  w.aliveBuildingCount(),

		Weather:  w.weather,
		Notices:  append([]string(nil), w.notices...),
		Recent:   w.resultLog.Recent(10),
		AsciiMap: w.asciiMap(),
	}
	obs.Warnings = w.collectWarnings(&obs, pop)
	w.observation = obs
}

// Observation returns the snapshot built at the end of the last tick.
func (w *World) Observation() CurrentObservation {
	return w.observation
}

func (w *World) populationStats() PopulationStats {
	var p PopulationStats
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		p.Total++
		if c.Details.Age >= 18 && c.Details.Age <= 65 {
			if c.Work != 0 {
				p.Employed++
			} else {
				p.Unemployed++
			}
		}
		if c.Home == 0 {
			p.Homeless++
		}
	}
	p.Total += w.vpop.TotalPopulation()
	for i := range w.vpop.Districts {
		p.Employed += w.vpop.Districts[i].Employed
	}
	return p
}

// utilityShare is the share of zoned-or-built cells satisfying pred.
func (w *World) utilityShare(pred func(*Cell) bool) float64 {
	total, ok := 0, 0
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		if c.Building == 0 && c.Zone == ZoneNone {
			continue
		}
		total++
		if pred(c) {
			ok++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ok) / float64(total)
}

func (w *World) collectWarnings(obs *CurrentObservation, pop PopulationStats) []WarningKind {
	var warns []WarningKind
	if obs.Treasury < 0 {
		warns = append(warns, WarnNegativeBudget)
	}
	if obs.PowerCoverage < 0.8 || w.energy.Shortfall > 0 {
		warns = append(warns, WarnPowerShortage)
	}
	if obs.WaterCoverage < 0.8 {
		warns = append(warns, WarnWaterShortage)
	}
	workforce := pop.Employed + pop.Unemployed
	if workforce > 0 && float64(pop.Unemployed)/float64(workforce) > 0.15 {
		warns = append(warns, WarnHighUnemployment)
	}
	if pop.Total > 0 && float64(pop.Homeless)/float64(pop.Total) > 0.05 {
		warns = append(warns, WarnHighHomelessness)
	}
	if gridMean(w.grids.TrafficDensity) > 90 {
		warns = append(warns, WarnTrafficCongestion)
	}
	if gridMean(w.grids.Pollution) > 80 {
		warns = append(warns, WarnHighPollution)
	}
	if gridMean(w.grids.Crime) > 70 {
		warns = append(warns, WarnHighCrime)
	}
	return warns
}

func gridMean(g []uint8) float64 {
	sum := 0
	for _, v := range g {
		sum += int(v)
	}
	return float64(sum) / float64(len(g))
}

const asciiMapStride = 4 // 256 cells sampled to a 64x64 character map

// asciiMap renders a coarse overview. One character per asciiMapStride cells:
// water, roads and the dominant zone of the sampled block.
func (w *World) asciiMap() string {
	var sb strings.Builder
	sb.Grow((GridSize/asciiMapStride + 1) * GridSize / asciiMapStride)
	for y := 0; y < GridSize; y += asciiMapStride {
		for x := 0; x < GridSize; x += asciiMapStride {
			sb.WriteByte(w.blockGlyph(x, y))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (w *World) blockGlyph(x0, y0 int) byte {
	water, road, built := 0, 0, 0
	var zone ZoneKind
	for y := y0; y < y0+asciiMapStride; y++ {
		for x := x0; x < x0+asciiMapStride; x++ {
			c := w.grid.At(CellPos{X: x, Y: y})
			switch c.Terrain {
			case TerrainWater:
				water++
			case TerrainRoad:
				road++
			}
			if c.Building != 0 {
				built++
				zone = c.Zone
			}
		}
	}
	n := asciiMapStride * asciiMapStride
	switch {
	case water > n/2:
		return '~'
	case road > n/4:
		return '#'
	case built > 0:
		return zoneGlyph(zone)
	default:
		return '.'
	}
}

func zoneGlyph(z ZoneKind) byte {
	switch {
	case z == ZoneNone:
		return 'B' // civic or utility structure
	case z == ZoneMixedUse:
		return 'M'
	case z.IsResidential():
		return 'R'
	case z.IsCommercial():
		return 'C'
	case z == ZoneIndustrial:
		return 'I'
	case z == ZoneOffice:
		return 'O'
	default:
		return '?'
	}
}
