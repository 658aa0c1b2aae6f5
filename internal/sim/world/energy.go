package world

import "sort"

// EnergyGrid is the citywide electrical balance. Supply and demand are the
// latest dispatch figures in MW; the battery smooths the gap between them.
type EnergyGrid struct {
	Demand          float64
	Supply          float64
	BatteryCharge   float64
	BatteryCapacity float64
	LineEfficiency  float64

	// Shortfall is the unmet demand after dispatch and storage, for the
	// observation snapshot.
	Shortfall float64
}

func newEnergyGrid() EnergyGrid {
	return EnergyGrid{
		BatteryCapacity: 200,
		LineEfficiency:  0.94,
	}
}

// systemEnergy aggregates demand, dispatches generators in merit order, and
// charges or drains the battery with the residual. Slow-tick gated.
func (w *World) systemEnergy() {
	if !w.slow.ShouldRun() {
		return
	}
	e := &w.energy
	e.Demand = w.powerDemand()

	// Merit order: cheapest rank first, stable by placement order within a
	// rank so dispatch is deterministic.
	type unit struct {
		rank   int
		idx    int
		output float64
	}
	units := make([]unit, 0, len(w.utilities))
	for i := range w.utilities {
		u := &w.utilities[i]
		if !u.Kind.isPower() {
			continue
		}
		units = append(units, unit{
			rank:   utilitySpecs[u.Kind].DispatchRank,
			idx:    i,
			output: w.generatorOutput(u.Kind),
		})
	}
	sort.SliceStable(units, func(a, b int) bool { return units[a].rank < units[b].rank })

	need := e.Demand / e.LineEfficiency
	supply := 0.0
	for _, u := range units {
		if supply >= need {
			break
		}
		supply += u.output
	}
	e.Supply = supply * e.LineEfficiency

	surplus := e.Supply - e.Demand
	e.Shortfall = 0
	if surplus >= 0 {
		e.BatteryCharge = clamp(e.BatteryCharge+surplus*0.5, 0, e.BatteryCapacity)
	} else {
		drain := -surplus
		if drain > e.BatteryCharge {
			e.Shortfall = drain - e.BatteryCharge
			e.BatteryCharge = 0
		} else {
			e.BatteryCharge -= drain
		}
	}
}

// powerDemand sums building load in MW.
func (w *World) powerDemand() float64 {
	demand := 0.0
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		load := 0.3 * float64(b.Level)
		load += 0.02 * float64(b.Occupants+b.Workers)
		demand += load
	}
	return demand
}

// generatorOutput is a unit's available output under current weather. Solar
// falls with cloud cover, wind rises in storms.
func (w *World) generatorOutput(k UtilityKind) float64 {
	out := utilitySpecs[k].Output
	switch k {
	case UtilitySolarFarm:
		out *= 1 - 0.8*w.weather.CloudCover
		if w.weather.Condition == WeatherSnow {
			out *= 0.3
		}
	case UtilityWindFarm:
		if w.weather.Condition == WeatherStorm {
			out *= 1.4
		}
	}
	return out
}
