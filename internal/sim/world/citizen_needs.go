package world

// systemCitizenNeeds applies need decay and regeneration, then derives
// happiness and health, on the slow tick.
func (w *World) systemCitizenNeeds() {
	if !w.slow.ShouldRun() {
		return
	}
	p := &w.params
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}

		c.Needs.Hunger -= p.NeedDecayHunger
		c.Needs.Energy -= p.NeedDecayEnergy
		c.Needs.Social -= p.NeedDecaySocial
		c.Needs.Fun -= p.NeedDecayFun
		c.Needs.Comfort -= p.NeedDecayComfort

		switch c.State {
		case AtHome:
			c.Needs.Hunger += p.NeedRegenRate
			c.Needs.Energy += p.NeedRegenRate
			c.Needs.Comfort += p.NeedRegenRate * 0.5
		case Shopping:
			c.Needs.Comfort += p.NeedRegenRate
			c.Needs.Hunger += p.NeedRegenRate * 0.5
		case AtLeisure:
			c.Needs.Fun += p.NeedRegenRate
			c.Needs.Social += p.NeedRegenRate * 0.7
		case Working, AtSchool:
			c.Needs.Social += p.NeedRegenRate * 0.3
		}

		clampNeeds(&c.Needs)
		c.Details.Happiness = w.citizenHappiness(c)
		c.Details.Health = w.citizenHealth(c)
	}
}

func clampNeeds(n *Needs) {
	n.Hunger = clamp(n.Hunger, 0, 100)
	n.Energy = clamp(n.Energy, 0, 100)
	n.Social = clamp(n.Social, 0, 100)
	n.Fun = clamp(n.Fun, 0, 100)
	n.Comfort = clamp(n.Comfort, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// citizenHappiness is a factor sum over needs, environment at home, services,
// taxes and season, clamped to [0, 100].
func (w *World) citizenHappiness(c *Citizen) float64 {
	needAvg := (c.Needs.Hunger + c.Needs.Energy + c.Needs.Social + c.Needs.Fun + c.Needs.Comfort) / 5

	h := needAvg * 0.5

	home := c.HomeCell.Index()
	h -= float64(w.grids.Pollution[home]) * 0.08
	h -= float64(w.grids.Noise[home]) * 0.05
	h -= float64(w.grids.Crime[home]) * 0.06
	h += float64(w.grids.LandValue[home]) * 0.04

	cover := w.coverage[home]
	if cover&coverHealth != 0 {
		h += 4
	}
	if cover&coverPolice != 0 {
		h += 3
	}
	if cover&coverEducation != 0 {
		h += 3
	}
	if cover&coverPark != 0 {
		h += 4
	}

	h -= w.budget.TaxResidential * 120

	switch w.weather.Season {
	case SeasonSummer:
		h += 2
	case SeasonWinter:
		h -= 2
	}

	// Resilient citizens shrug off more of the downside.
	if h < 50 {
		h += (50 - h) * 0.3 * c.Personality.Resilience
	}
	return clamp(h, 0, 100)
}

// citizenHealth derives from need satisfaction, pollution exposure at home
// and age.
func (w *World) citizenHealth(c *Citizen) float64 {
	h := 100.0
	h -= float64(w.grids.Pollution[c.HomeCell.Index()]) * 0.25
	if c.Needs.Hunger < 30 {
		h -= 30 - c.Needs.Hunger
	}
	if c.Needs.Energy < 30 {
		h -= (30 - c.Needs.Energy) * 0.5
	}
	if c.Details.Age > 60 {
		h -= float64(c.Details.Age-60) * 0.8
	}
	if w.coverage[c.HomeCell.Index()]&coverHealth != 0 {
		h += 8
	}
	return clamp(h, 0, 100)
}
