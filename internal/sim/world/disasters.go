package world

type DisasterKind uint8

const (
	DisasterFlood DisasterKind = iota
	DisasterDrought
	DisasterHeatwave
	DisasterColdSnap
	DisasterStorm
	disasterKindCount
)

func (k DisasterKind) String() string {
	switch k {
	case DisasterFlood:
		return "flood"
	case DisasterDrought:
		return "drought"
	case DisasterHeatwave:
		return "heatwave"
	case DisasterColdSnap:
		return "cold_snap"
	case DisasterStorm:
		return "storm"
	default:
		return "unknown"
	}
}

type DisasterPhase uint8

const (
	PhaseIdle DisasterPhase = iota
	PhaseBuilding
	PhaseActive
	PhaseSubsiding
)

func (p DisasterPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBuilding:
		return "building"
	case PhaseActive:
		return "active"
	default:
		return "subsiding"
	}
}

// Disaster is one hazard's state machine. HeldTicks counts consecutive slow
// ticks the trigger condition held (or, while subsiding, ticks remaining).
type Disaster struct {
	Kind      DisasterKind
	Phase     DisasterPhase
	Intensity float64
	HeldTicks int
}

// Trigger thresholds, in slow ticks of sustained condition.
const (
	floodBuildTicks    = 6
	droughtBuildTicks  = 20
	heatBuildTicks     = 4
	coldBuildTicks     = 4
	stormBuildTicks    = 2
	disasterSubsideLen = 8
)

func newDisasters() []Disaster {
	d := make([]Disaster, disasterKindCount)
	for i := range d {
		d[i].Kind = DisasterKind(i)
	}
	return d
}

// systemDisasters drives each hazard machine from current weather. A condition
// must hold for the kind's build duration before the hazard goes active;
// releasing the condition walks it back through Subsiding.
func (w *World) systemDisasters() {
	if !w.slow.ShouldRun() {
		return
	}
	wx := &w.weather
	for i := range w.disasters {
		d := &w.disasters[i]
		triggered, buildTicks := false, 0
		switch d.Kind {
		case DisasterFlood:
			triggered = wx.Precipitation > 0.6
			buildTicks = floodBuildTicks
		case DisasterDrought:
			triggered = wx.Precipitation < 0.02 && wx.Temperature > 25
			buildTicks = droughtBuildTicks
		case DisasterHeatwave:
			triggered = wx.Condition == WeatherHeatwave
			buildTicks = heatBuildTicks
		case DisasterColdSnap:
			triggered = wx.Condition == WeatherColdSnap
			buildTicks = coldBuildTicks
		case DisasterStorm:
			triggered = wx.Condition == WeatherStorm
			buildTicks = stormBuildTicks
		}
		w.stepDisaster(d, triggered, buildTicks)
		if d.Phase == PhaseActive {
			w.applyDisasterEffects(d)
		}
	}
}

func (w *World) stepDisaster(d *Disaster, triggered bool, buildTicks int) {
	prev := d.Phase
	switch d.Phase {
	case PhaseIdle:
		if triggered {
			d.Phase = PhaseBuilding
			d.HeldTicks = 1
		}
	case PhaseBuilding:
		if !triggered {
			d.Phase = PhaseIdle
			d.HeldTicks = 0
			break
		}
		d.HeldTicks++
		if d.HeldTicks >= buildTicks {
			d.Phase = PhaseActive
			d.Intensity = 0.5
		}
	case PhaseActive:
		if triggered {
			d.Intensity = clamp(d.Intensity+0.05, 0, 1)
			break
		}
		d.Phase = PhaseSubsiding
		d.HeldTicks = disasterSubsideLen
	case PhaseSubsiding:
		if triggered {
			d.Phase = PhaseActive
			break
		}
		d.HeldTicks--
		d.Intensity *= 0.7
		if d.HeldTicks <= 0 {
			d.Phase = PhaseIdle
			d.Intensity = 0
		}
	}
	if d.Phase == PhaseActive && prev != PhaseActive {
		w.pushNotice(d.Kind.String() + " in progress")
	}
	if d.Phase == PhaseIdle && prev == PhaseSubsiding {
		w.pushNotice(d.Kind.String() + " has ended")
	}
}

// applyDisasterEffects imposes each active hazard's ongoing damage.
func (w *World) applyDisasterEffects(d *Disaster) {
	switch d.Kind {
	case DisasterFlood:
		// Low ground near water saturates with stormwater.
		var buf [4]CellPos
		for i := 0; i < GridSize*GridSize; i++ {
			if w.grid.AtIndex(i).Terrain != TerrainWater {
				continue
			}
			for _, np := range neighbors4(cellFromIndex(i), buf[:0]) {
				j := np.Index()
				v := float64(w.grids.Stormwater[j]) + 40*d.Intensity
				w.grids.Stormwater[j] = uint8(clamp(v, 0, 255))
			}
		}
	case DisasterDrought:
		for i := range w.grids.Groundwater {
			v := float64(w.grids.Groundwater[i]) * (1 - 0.1*d.Intensity)
			w.grids.Groundwater[i] = uint8(v)
		}
	case DisasterHeatwave, DisasterColdSnap:
		// Thermal stress wears on everyone's health.
		for i := range w.citizens {
			c := &w.citizens[i]
			if c.Alive {
				c.Details.Health = clamp(c.Details.Health-0.5*d.Intensity, 0, 100)
			}
		}
	case DisasterStorm:
		// Storm damage accelerates road decay.
		for i := 0; i < GridSize*GridSize; i++ {
			if w.grid.AtIndex(i).Terrain != TerrainRoad {
				continue
			}
			v := float64(w.grids.RoadCondition[i]) - 2*d.Intensity
			w.grids.RoadCondition[i] = uint8(clamp(v, 0, 255))
		}
	}
}
