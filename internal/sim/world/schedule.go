package world

import "fmt"

// Phase is one of the three ordered sets within a tick. Every PreSim system
// completes before any Simulation system starts, and Simulation before PostSim.
type Phase uint8

const (
	PreSim Phase = iota
	Simulation
	PostSim
)

func (p Phase) String() string {
	switch p {
	case PreSim:
		return "PreSim"
	case Simulation:
		return "Simulation"
	case PostSim:
		return "PostSim"
	}
	return "?"
}

// systemDef declares one scheduled system: its phase and the same-phase peers
// it must run after. Cross-phase ordering is implied by the phase sequence.
type systemDef struct {
	name  string
	phase Phase
	after []string
	fn    func(*World)
}

// schedule is the validated, topologically ordered system list per phase.
// Build fails on duplicate names, unknown dependencies, cross-phase edges and
// cycles; a schedule that cannot be ordered is a fatal startup error.
type schedule struct {
	phases [3][]systemDef
}

func buildSchedule(defs []systemDef) (*schedule, error) {
	byName := map[string]systemDef{}
	for _, d := range defs {
		if d.fn == nil {
			return nil, fmt.Errorf("schedule: system %q has no function", d.name)
		}
		if _, dup := byName[d.name]; dup {
			return nil, fmt.Errorf("schedule: duplicate system %q", d.name)
		}
		byName[d.name] = d
	}
	for _, d := range defs {
		for _, dep := range d.after {
			peer, ok := byName[dep]
			if !ok {
				return nil, fmt.Errorf("schedule: system %q depends on unknown %q", d.name, dep)
			}
			if peer.phase != d.phase {
				return nil, fmt.Errorf("schedule: %q (%s) cannot order after %q (%s): after edges must stay within a phase",
					d.name, d.phase, dep, peer.phase)
			}
		}
	}

	s := &schedule{}
	for ph := PreSim; ph <= PostSim; ph++ {
		var members []systemDef
		for _, d := range defs {
			if d.phase == ph {
				members = append(members, d)
			}
		}
		ordered, err := topoSort(members)
		if err != nil {
			return nil, fmt.Errorf("schedule: phase %s: %w", ph, err)
		}
		s.phases[ph] = ordered
	}
	return s, nil
}

// topoSort is Kahn's algorithm with declaration order breaking ties, so the
// result is stable across runs.
func topoSort(defs []systemDef) ([]systemDef, error) {
	indeg := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))
	pos := make(map[string]int, len(defs))
	byName := make(map[string]systemDef, len(defs))
	for i, d := range defs {
		byName[d.name] = d
		pos[d.name] = i
		indeg[d.name] += 0
	}
	for _, d := range defs {
		for _, dep := range d.after {
			indeg[d.name]++
			dependents[dep] = append(dependents[dep], d.name)
		}
	}

	var ready []string
	for _, d := range defs {
		if indeg[d.name] == 0 {
			ready = append(ready, d.name)
		}
	}

	out := make([]systemDef, 0, len(defs))
	for len(ready) > 0 {
		// Pick the earliest-declared ready system.
		best := 0
		for i := 1; i < len(ready); i++ {
			if pos[ready[i]] < pos[ready[best]] {
				best = i
			}
		}
		name := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		out = append(out, byName[name])
		for _, dep := range dependents[name] {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(out) != len(defs) {
		var stuck []string
		for name, n := range indeg {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, fmt.Errorf("cycle among systems %v", stuck)
	}
	return out, nil
}

func (s *schedule) run(w *World) {
	for ph := PreSim; ph <= PostSim; ph++ {
		for _, d := range s.phases[ph] {
			d.fn(w)
		}
	}
}

// simulationSystems is the full system DAG. Each shared resource has exactly
// one primary writer; modifiers declare after edges on it.
func simulationSystems() []systemDef {
	return []systemDef{
		// PreSim: input resolution and bounded path work.
		{name: "action_executor", phase: PreSim, fn: (*World).systemActionExecutor},
		{name: "path_requests", phase: PreSim, after: []string{"action_executor"}, fn: (*World).systemPathRequests},

		// Simulation.
		{name: "clock", phase: Simulation, fn: (*World).systemClock},
		{name: "path_install", phase: Simulation, fn: (*World).systemPathInstall},
		{name: "citizen_state", phase: Simulation, after: []string{"clock", "path_install"}, fn: (*World).systemCitizenState},
		{name: "citizen_movement", phase: Simulation, after: []string{"citizen_state"}, fn: (*World).systemCitizenMovement},
		{name: "citizen_needs", phase: Simulation, after: []string{"citizen_state"}, fn: (*World).systemCitizenNeeds},
		{name: "citizen_lifecycle", phase: Simulation, after: []string{"citizen_needs"}, fn: (*World).systemCitizenLifecycle},
		{name: "citizen_lod", phase: Simulation, after: []string{"citizen_movement"}, fn: (*World).systemCitizenLOD},
		{name: "zone_demand", phase: Simulation, after: []string{"clock"}, fn: (*World).systemZoneDemand},
		{name: "building_growth", phase: Simulation, after: []string{"zone_demand"}, fn: (*World).systemBuildingGrowth},
		{name: "immigration", phase: Simulation, after: []string{"building_growth", "citizen_lifecycle"}, fn: (*World).systemImmigration},
		{name: "utilities", phase: Simulation, after: []string{"building_growth"}, fn: (*World).systemUtilities},
		{name: "weather", phase: Simulation, after: []string{"clock"}, fn: (*World).systemWeather},
		{name: "disasters", phase: Simulation, after: []string{"weather"}, fn: (*World).systemDisasters},
		{name: "scalar_grids", phase: Simulation, after: []string{"weather"}, fn: (*World).systemScalarGrids},
		{name: "services", phase: Simulation, after: []string{"building_growth"}, fn: (*World).systemServiceCoverage},
		{name: "energy", phase: Simulation, after: []string{"utilities"}, fn: (*World).systemEnergy},
		{name: "transit", phase: Simulation, after: []string{"citizen_movement"}, fn: (*World).systemTransit},
		{name: "economy", phase: Simulation, after: []string{"building_growth", "services", "transit"}, fn: (*World).systemEconomy},
		{name: "virtual_population", phase: Simulation, after: []string{"immigration"}, fn: (*World).systemVirtualPopulation},

		// PostSim: aggregation, guards, observation.
		{name: "post_load_rebuild", phase: PostSim, fn: (*World).systemPostLoadRebuild},
		{name: "invariant_guards", phase: PostSim, after: []string{"post_load_rebuild"}, fn: (*World).systemInvariantGuards},
		{name: "observation", phase: PostSim, after: []string{"invariant_guards"}, fn: (*World).systemObservation},
	}
}
