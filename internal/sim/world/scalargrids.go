package world

// scalarGrids are the per-cell u8 layers updated on the slow tick. Each layer
// has one owning update pass; diffusion reads from a snapshot so writes never
// cascade within a tick.
type scalarGrids struct {
	Pollution      []uint8
	Noise          []uint8
	LandValue      []uint8
	Crime          []uint8
	TrafficDensity []uint8
	RoadCondition  []uint8
	Garbage        []uint8
	Stormwater     []uint8
	Groundwater    []uint8
	SnowDepth      []uint8

	target   []float64 // scratch: per-cell target before smoothing
	snapshot []uint8   // scratch: pre-diffusion copy
}

func newScalarGrids() scalarGrids {
	n := GridSize * GridSize
	g := scalarGrids{
		Pollution:      make([]uint8, n),
		Noise:          make([]uint8, n),
		LandValue:      make([]uint8, n),
		Crime:          make([]uint8, n),
		TrafficDensity: make([]uint8, n),
		RoadCondition:  make([]uint8, n),
		Garbage:        make([]uint8, n),
		Stormwater:     make([]uint8, n),
		Groundwater:    make([]uint8, n),
		SnowDepth:      make([]uint8, n),
		target:         make([]float64, n),
		snapshot:       make([]uint8, n),
	}
	for i := range g.RoadCondition {
		g.RoadCondition[i] = 255
	}
	return g
}

// systemScalarGrids runs every slow tick: targets from sources, exponential
// smoothing toward the target, then kernel diffusion.
func (w *World) systemScalarGrids() {
	if !w.slow.ShouldRun() {
		return
	}
	alpha := w.params.GridSmoothingAlpha

	w.updateGarbage()
	w.updatePollution(alpha)
	w.updateNoise(alpha)
	w.updateLandValue(alpha)
	w.updateCrime(alpha)
	w.decayTraffic()
	w.updateRoadCondition()
	w.updateWaterGrids()
}

// smoothToward applies next = alpha*target + (1-alpha)*prev in place.
func smoothToward(grid []uint8, target []float64, alpha float64) {
	for i := range grid {
		next := alpha*target[i] + (1-alpha)*float64(grid[i])
		grid[i] = uint8(clamp(next, 0, 255))
	}
}

// diffuse applies a neighbor kernel (weight per 4-neighbor, remainder self)
// from a snapshot.
func (g *scalarGrids) diffuse(grid []uint8, neighborWeight float64) {
	copy(g.snapshot, grid)
	selfWeight := 1 - 4*neighborWeight
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			i := y*GridSize + x
			v := float64(g.snapshot[i]) * selfWeight
			if x > 0 {
				v += float64(g.snapshot[i-1]) * neighborWeight
			}
			if x < GridSize-1 {
				v += float64(g.snapshot[i+1]) * neighborWeight
			}
			if y > 0 {
				v += float64(g.snapshot[i-GridSize]) * neighborWeight
			}
			if y < GridSize-1 {
				v += float64(g.snapshot[i+GridSize]) * neighborWeight
			}
			grid[i] = uint8(clamp(v, 0, 255))
		}
	}
}

// addRadialSource raises the target around a point with linear falloff.
func (g *scalarGrids) addRadialSource(center CellPos, radius int, strength float64) {
	x0 := maxInt(center.X-radius, 0)
	x1 := minInt(center.X+radius, GridSize-1)
	y0 := maxInt(center.Y-radius, 0)
	y1 := minInt(center.Y+radius, GridSize-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := Manhattan(center, CellPos{X: x, Y: y})
			if d > radius {
				continue
			}
			g.target[y*GridSize+x] += strength * (1 - float64(d)/float64(radius+1))
		}
	}
}

func (g *scalarGrids) clearTarget() {
	for i := range g.target {
		g.target[i] = 0
	}
}

// updateGarbage accrues waste at occupied buildings and lets the sanitation
// department haul it away.
func (w *World) updateGarbage() {
	g := &w.grids
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		idx := b.Cell.Index()
		v := float64(g.Garbage[idx]) + 2*float64(b.Level) + 0.5*float64(b.Occupants)
		g.Garbage[idx] = uint8(clamp(v, 0, 255))
	}
	pickup := 8 * w.extended.Sanitation
	for i := range g.Garbage {
		if g.Garbage[i] == 0 {
			continue
		}
		v := float64(g.Garbage[i]) - pickup
		g.Garbage[i] = uint8(clamp(v, 0, 255))
	}
}

func (w *World) updatePollution(alpha float64) {
	g := &w.grids
	g.clearTarget()
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		out := zoneSpecs[b.Zone].PollutionOutput * float64(b.Level)
		if out > 0 {
			g.addRadialSource(b.Cell, 8, out)
		}
	}
	for i := range w.utilities {
		if w.utilities[i].Kind == UtilityPowerPlant {
			g.addRadialSource(w.utilities[i].Cell, 12, 30)
		}
	}
	// Garbage piles leak into pollution.
	for i := range g.target {
		g.target[i] += float64(g.Garbage[i]) * 0.1
	}
	smoothToward(g.Pollution, g.target, alpha)
	g.diffuse(g.Pollution, 0.02)
}

func (w *World) updateNoise(alpha float64) {
	g := &w.grids
	g.clearTarget()
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		if c.Terrain == TerrainRoad {
			spec := roadSpecs[c.Road]
			g.target[i] += spec.MaxSpeed*400 + float64(g.TrafficDensity[i])*0.5
		}
	}
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		out := zoneSpecs[b.Zone].NoiseOutput * float64(b.Level)
		if out > 0 {
			g.addRadialSource(b.Cell, 4, out)
		}
	}
	smoothToward(g.Noise, g.target, alpha)
	g.diffuse(g.Noise, 0.02)
}

func (w *World) updateLandValue(alpha float64) {
	g := &w.grids
	g.clearTarget()
	for i := 0; i < GridSize*GridSize; i++ {
		base := 40.0
		base -= float64(g.Pollution[i]) * 0.5
		base -= float64(g.Noise[i]) * 0.25
		base -= float64(g.Crime[i]) * 0.4
		base -= float64(g.Garbage[i]) * 0.3
		if w.coverage[i]&coverPark != 0 {
			base += 20
		}
		if w.coverage[i]&coverEducation != 0 {
			base += 8
		}
		if w.coverage[i]&coverHealth != 0 {
			base += 8
		}
		g.target[i] = clamp(base, 0, 255)
	}
	// Water proximity bonus along shorelines.
	var buf [4]CellPos
	for i := 0; i < GridSize*GridSize; i++ {
		if w.grid.AtIndex(i).Terrain != TerrainWater {
			continue
		}
		for _, np := range neighbors4(cellFromIndex(i), buf[:0]) {
			g.target[np.Index()] += 15
		}
	}
	// Transit stops pull value up around them.
	for _, s := range w.transit.Stops {
		g.addRadialSource(s.Cell, 6, 12)
	}
	smoothToward(g.LandValue, g.target, alpha)
	g.diffuse(g.LandValue, 0.02)
}

func (w *World) updateCrime(alpha float64) {
	g := &w.grids
	g.clearTarget()
	unhappiness := 100 - w.averageHappiness()
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		if c.Building == 0 && c.Zone == ZoneNone {
			continue
		}
		v := unhappiness*0.4 + float64(g.Noise[i])*0.15
		if w.coverage[i]&coverPolice != 0 {
			v *= 0.35 / w.extended.Police
		}
		g.target[i] = clamp(v, 0, 255)
	}
	smoothToward(g.Crime, g.target, alpha)
	g.diffuse(g.Crime, 0.02)
}

// decayTraffic bleeds off accumulated per-tick traffic so the density grid
// tracks recent load.
func (w *World) decayTraffic() {
	g := &w.grids
	for i := range g.TrafficDensity {
		v := float64(g.TrafficDensity[i]) * 0.7
		g.TrafficDensity[i] = uint8(v)
	}
}

// updateRoadCondition wears roads down with traffic and weather; the road
// department budget drives repair.
func (w *World) updateRoadCondition() {
	g := &w.grids
	wear := 0.2
	if w.weather.Condition == WeatherSnow || w.weather.Condition == WeatherStorm {
		wear = 0.6
	}
	repair := 1.5 * w.extended.Roads
	for i := 0; i < GridSize*GridSize; i++ {
		if w.grid.AtIndex(i).Terrain != TerrainRoad {
			continue
		}
		v := float64(g.RoadCondition[i])
		v -= wear + float64(g.TrafficDensity[i])*0.02
		v += repair
		g.RoadCondition[i] = uint8(clamp(v, 0, 255))
	}
}

// updateWaterGrids evolves stormwater, groundwater and snow from current
// weather.
func (w *World) updateWaterGrids() {
	g := &w.grids
	precip := w.weather.Precipitation
	freezing := w.weather.Temperature < 0

	for i := 0; i < GridSize*GridSize; i++ {
		storm := float64(g.Stormwater[i])
		ground := float64(g.Groundwater[i])
		snow := float64(g.SnowDepth[i])

		if freezing && precip > 0 {
			snow += precip * 8
		} else {
			storm += precip * 10
		}
		if !freezing && snow > 0 {
			melt := clamp(w.weather.Temperature*0.5, 0, snow)
			snow -= melt
			storm += melt
		}
		// Stormwater drains, partly into groundwater.
		drained := storm * 0.15
		storm -= drained
		ground += drained * 0.4
		ground *= 0.995

		g.Stormwater[i] = uint8(clamp(storm, 0, 255))
		g.Groundwater[i] = uint8(clamp(ground, 0, 255))
		g.SnowDepth[i] = uint8(clamp(snow, 0, 255))
	}
}
