package world

// District aggregates residents that are not materialized as agents.
type District struct {
	Name        string
	Population  int
	Employed    int
	Happiness   float64
	AgeUnder18  int
	Age18to65   int
	AgeOver65   int
	Commuters   int
	TaxRevenue  float64
	ServiceNeed float64
}

// VirtualPopulation carries the citizens beyond the real-agent cap as
// per-district aggregates.
type VirtualPopulation struct {
	Districts []District
}

var districtNames = []string{
	"Northside", "Riverbend", "Old Town", "Harbor District",
	"Midlands", "Eastgate", "Southfields", "Westhaven",
}

// absorb folds n residents into the aggregate, distributing round-robin over
// districts so no single aggregate dominates.
func (v *VirtualPopulation) absorb(n int) {
	if n <= 0 {
		return
	}
	if len(v.Districts) == 0 {
		v.Districts = append(v.Districts, District{Name: districtNames[0], Happiness: 50})
	}
	for i := 0; i < n; i++ {
		d := &v.Districts[i%len(v.Districts)]
		d.Population++
		d.Age18to65++
	}
}

// release removes up to n residents from the aggregate, returning how many
// were actually available.
func (v *VirtualPopulation) release(n int) int {
	released := 0
	for i := range v.Districts {
		d := &v.Districts[i]
		take := n - released
		if take > d.Population {
			take = d.Population
		}
		d.Population -= take
		if d.Age18to65 > take {
			d.Age18to65 -= take
		} else {
			d.Age18to65 = 0
		}
		released += take
		if released >= n {
			break
		}
	}
	return released
}

func (v *VirtualPopulation) TotalPopulation() int {
	n := 0
	for i := range v.Districts {
		n += v.Districts[i].Population
	}
	return n
}

// systemVirtualPopulation refreshes district aggregates from city state and
// adjusts the real-agent cap from the host's smoothed frame rate. The cap
// moves once per second of wall time, reported via SetFrameRate.
func (w *World) systemVirtualPopulation() {
	if !w.slow.ShouldRun() {
		return
	}

	// Derive aggregate stats from the real population's averages so district
	// dashboards stay plausible as the city evolves.
	happiness := w.averageHappiness()
	employmentRate := w.realEmploymentRate()
	for i := range w.vpop.Districts {
		d := &w.vpop.Districts[i]
		d.Happiness += (happiness - d.Happiness) * 0.1
		d.Employed = int(float64(d.Age18to65) * employmentRate)
		d.Commuters = d.Employed / 2
		d.TaxRevenue = float64(d.Employed) * 500 * w.budget.TaxResidential
		d.ServiceNeed = float64(d.Population) * (1 - happiness/200)
	}

	if w.frameRateSet {
		switch {
		case w.frameRate > 55:
			w.maxRealCitizens = int(float64(w.maxRealCitizens) * 1.1)
		case w.frameRate < 25:
			w.maxRealCitizens = int(float64(w.maxRealCitizens) * 0.8)
		}
		if w.maxRealCitizens < w.params.MaxRealCitizensFloor {
			w.maxRealCitizens = w.params.MaxRealCitizensFloor
		}
		if w.maxRealCitizens > w.params.MaxRealCitizensCeil {
			w.maxRealCitizens = w.params.MaxRealCitizensCeil
		}
		w.frameRateSet = false
	}
}

func (w *World) realEmploymentRate() float64 {
	adults, employed := 0, 0
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive || c.Details.Age < 18 || c.Details.Age > 65 {
			continue
		}
		adults++
		if c.Work != 0 {
			employed++
		}
	}
	if adults == 0 {
		return 0.6
	}
	return float64(employed) / float64(adults)
}

// SetFrameRate feeds the renderer's smoothed FPS into cap adjustment. Call at
// most once per second; the next slow tick consumes it.
func (w *World) SetFrameRate(fps float64) {
	w.frameRate = fps
	w.frameRateSet = true
}
