package world

import (
	"megacity.sim/internal/persistence/savefile"
)

// ExportRecord flattens the world into a versioned save payload. Entity
// vectors are compacted: only alive rows are written, and cross-references
// are remapped to compact indices with dangling links becoming the sentinel.
// Derived caches (CSR, coverage, traffic is persisted but rebuilt paths are
// not) stay out; the post-load rebuild restores them.
func (w *World) ExportRecord() *savefile.SaveRecord {
	r := &savefile.SaveRecord{
		Version: savefile.CurrentVersion,

		Seed:       w.rng.Seed(),
		RngWordPos: w.rng.WordPos(),

		Tick:            w.tick,
		Day:             w.clock.Day,
		Hour:            w.clock.Hour,
		Speed:           w.clock.Speed,
		Paused:          w.clock.Paused,
		SlowTickPeriod:  w.slow.Period,
		PlayTimeSeconds: w.playSeconds,
		CityName:        w.cityName,

		Budget: savefile.BudgetRec{
			Treasury:        w.budget.Treasury,
			TaxResidential:  w.budget.TaxResidential,
			TaxCommercial:   w.budget.TaxCommercial,
			TaxIndustrial:   w.budget.TaxIndustrial,
			TaxOffice:       w.budget.TaxOffice,
			MonthlyIncome:   w.budget.MonthlyIncome,
			MonthlyExpenses: w.budget.MonthlyExpenses,
		},
		Extended: savefile.ExtendedBudgetRec{
			Police:     w.extended.Police,
			Fire:       w.extended.Fire,
			Health:     w.extended.Health,
			Education:  w.extended.Education,
			Roads:      w.extended.Roads,
			Parks:      w.extended.Parks,
			Sanitation: w.extended.Sanitation,
		},
		Bankruptcy: int(w.bankruptcy),
		ZoneDemand: savefile.ZoneDemandRec{
			Residential: w.zoneDemand.Residential,
			Commercial:  w.zoneDemand.Commercial,
			Industrial:  w.zoneDemand.Industrial,
			Office:      w.zoneDemand.Office,
		},

		Pollution:      append([]uint8(nil), w.grids.Pollution...),
		Noise:          append([]uint8(nil), w.grids.Noise...),
		LandValue:      append([]uint8(nil), w.grids.LandValue...),
		Crime:          append([]uint8(nil), w.grids.Crime...),
		TrafficDensity: append([]uint8(nil), w.grids.TrafficDensity...),
		RoadCondition:  append([]uint8(nil), w.grids.RoadCondition...),
		Garbage:        append([]uint8(nil), w.grids.Garbage...),
		Stormwater:     append([]uint8(nil), w.grids.Stormwater...),
		Groundwater:    append([]uint8(nil), w.grids.Groundwater...),
		SnowDepth:      append([]uint8(nil), w.grids.SnowDepth...),

		Energy: savefile.EnergyRec{
			BatteryCharge:   w.energy.BatteryCharge,
			BatteryCapacity: w.energy.BatteryCapacity,
			LineEfficiency:  w.energy.LineEfficiency,
		},
		Weather: savefile.WeatherRec{
			ClimateZone:   uint8(w.weather.Climate),
			Season:        uint8(w.weather.Season),
			Temperature:   w.weather.Temperature,
			Precipitation: w.weather.Precipitation,
			CloudCover:    w.weather.CloudCover,
			Condition:     uint8(w.weather.Condition),
		},
		Counters: savefile.CountersRec{
			NextSegment: w.segs.nextSegment,
			NextStop:    uint32(w.transit.NextStop),
			NextLine:    uint32(w.transit.NextLine),
			NextVehicle: uint32(w.transit.NextVehicle),
		},
		MaxCitizens: w.maxRealCitizens,
	}

	for _, l := range w.loans {
		r.Loans = append(r.Loans, savefile.LoanRec{
			Principal:      l.Principal,
			Remaining:      l.Remaining,
			AnnualRate:     l.InterestRate,
			TermMonths:     l.TermMonths,
			MonthsLeft:     l.MonthsLeft,
			MonthlyPayment: l.MonthlyPayment,
		})
	}

	w.exportGridLayers(r)
	w.exportSegments(r)
	w.exportEntities(r)

	for i := range w.disasters {
		d := &w.disasters[i]
		r.Disasters = append(r.Disasters, savefile.DisasterRec{
			Kind:      uint8(d.Kind),
			Phase:     uint8(d.Phase),
			Intensity: d.Intensity,
			HeldTicks: d.HeldTicks,
		})
	}
	for i := range w.vpop.Districts {
		d := &w.vpop.Districts[i]
		r.VirtualPop.Districts = append(r.VirtualPop.Districts, savefile.DistrictRec{
			Name:        d.Name,
			Population:  d.Population,
			Employed:    d.Employed,
			Happiness:   d.Happiness,
			AgeUnder18:  d.AgeUnder18,
			Age18to65:   d.Age18to65,
			AgeOver65:   d.AgeOver65,
			Commuters:   d.Commuters,
			TaxRevenue:  d.TaxRevenue,
			ServiceNeed: d.ServiceNeed,
		})
	}

	v := &w.violations
	for _, entry := range []struct {
		name  string
		count int
	}{
		{"budget_treasury", v.BudgetTreasury},
		{"citizen_happiness", v.CitizenHappiness},
		{"citizen_health", v.CitizenHealth},
		{"citizen_needs", v.CitizenNeeds},
		{"building_occupancy", v.BuildingOccupancy},
		{"segment_cells", v.SegmentCells},
	} {
		if entry.count > 0 {
			r.Violations = append(r.Violations, savefile.ViolationsRec{Name: entry.name, Count: entry.count})
		}
	}
	return r
}

func (w *World) exportGridLayers(r *savefile.SaveRecord) {
	n := GridSize * GridSize
	r.Terrain = make([]uint8, n)
	r.RoadKind = make([]uint8, n)
	r.Zone = make([]uint8, n)
	r.Elevation = make([]float32, n)
	for i := 0; i < n; i++ {
		c := w.grid.AtIndex(i)
		r.Terrain[i] = uint8(c.Terrain)
		r.RoadKind[i] = uint8(c.Road)
		r.Zone[i] = uint8(c.Zone)
		r.Elevation[i] = c.Elevation
	}
}

// exportSegments writes control points only; rasterized cells are recomputed
// on load so the rasterizer stays the single source of truth.
func (w *World) exportSegments(r *savefile.SaveRecord) {
	for _, id := range w.segs.OrderedIDs() {
		seg := w.segs.Get(id)
		r.Segments = append(r.Segments, savefile.SegmentRec{
			ID:     uint32(id),
			Kind:   uint8(seg.Kind),
			P0:     [2]float64{seg.P0.X, seg.P0.Y},
			P1:     [2]float64{seg.P1.X, seg.P1.Y},
			P2:     [2]float64{seg.P2.X, seg.P2.Y},
			P3:     [2]float64{seg.P3.X, seg.P3.Y},
			Length: seg.Length,
		})
		if dir, ok := w.oneWay[id]; ok && dir != DirNone {
			r.OneWay = append(r.OneWay, savefile.OneWayRec{SegmentID: uint32(id), Dir: int8(dir)})
		}
	}
}

func (w *World) exportEntities(r *savefile.SaveRecord) {
	// Compact buildings and remember old id -> compact index.
	buildingIdx := make(map[BuildingID]uint32, len(w.buildings))
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive {
			continue
		}
		buildingIdx[BuildingID(i+1)] = uint32(len(r.Buildings))
		r.Buildings = append(r.Buildings, savefile.BuildingRec{
			Cell:             [2]int{b.Cell.X, b.Cell.Y},
			Zone:             uint8(b.Zone),
			Level:            b.Level,
			Capacity:         b.Capacity,
			Occupants:        b.Occupants,
			CommercialSplit:  b.CommercialSplit,
			ConstructionLeft: b.ConstructionLeft,
			ConstructionTot:  b.ConstructionTotal,
		})
	}
	buildingRef := func(id BuildingID) uint32 {
		if idx, ok := buildingIdx[id]; ok {
			return idx
		}
		return savefile.NoneIndex
	}

	citizenIdx := make(map[CitizenID]uint32, w.aliveCitizens)
	for i := range w.citizens {
		if w.citizens[i].Alive {
			citizenIdx[CitizenID(i)] = uint32(len(citizenIdx))
		}
	}
	citizenRef := func(id CitizenID) uint32 {
		if idx, ok := citizenIdx[id]; ok {
			return idx
		}
		return savefile.NoneIndex
	}

	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		rec := savefile.CitizenRec{
			Pos:      [2]float64{c.Pos.X, c.Pos.Y},
			Vel:      [2]float64{c.Vel.X, c.Vel.Y},
			HomeCell: [2]int{c.HomeCell.X, c.HomeCell.Y},
			HomeIdx:  buildingRef(c.Home),
			WorkCell: [2]int{c.WorkCell.X, c.WorkCell.Y},
			WorkIdx:  buildingRef(c.Work),
			State:    uint8(c.State),

			Hunger:  c.Needs.Hunger,
			Energy:  c.Needs.Energy,
			Social:  c.Needs.Social,
			Fun:     c.Needs.Fun,
			Comfort: c.Needs.Comfort,

			Ambition:    c.Personality.Ambition,
			Sociability: c.Personality.Sociability,
			Materialism: c.Personality.Materialism,
			Resilience:  c.Personality.Resilience,

			Age:       c.Details.Age,
			Gender:    uint8(c.Details.Gender),
			Education: c.Details.Education,
			Happiness: c.Details.Happiness,
			Health:    c.Details.Health,
			Salary:    c.Details.Salary,
			Savings:   c.Details.Savings,

			Partner:   citizenRef(c.Partner),
			LodTier:   uint8(c.Lod),
			Transport: uint8(c.Transport),

			ActivityTicksLeft: c.ActivityTicksLeft,
		}
		for _, pid := range c.Parents {
			if ref := citizenRef(pid); ref != savefile.NoneIndex {
				rec.Parents = append(rec.Parents, ref)
			}
		}
		for _, cid := range c.Children {
			if ref := citizenRef(cid); ref != savefile.NoneIndex {
				rec.Children = append(rec.Children, ref)
			}
		}
		r.Citizens = append(r.Citizens, rec)
	}

	for _, u := range w.utilities {
		r.Utilities = append(r.Utilities, savefile.UtilityRec{
			Cell:  [2]int{u.Cell.X, u.Cell.Y},
			Kind:  uint8(u.Kind),
			Range: u.Range,
		})
	}
	for _, s := range w.services {
		r.Services = append(r.Services, savefile.ServiceRec{
			Cell: [2]int{s.Cell.X, s.Cell.Y},
			Kind: uint8(s.Kind),
		})
	}

	for _, s := range w.transit.Stops {
		r.TransitSys.Stops = append(r.TransitSys.Stops, savefile.TransitStopRec{
			ID:   uint32(s.ID),
			Cell: [2]int{s.Cell.X, s.Cell.Y},
			Mode: uint8(s.Mode),
		})
	}
	for i := range w.transit.Lines {
		l := &w.transit.Lines[i]
		lr := savefile.TransitLineRec{ID: uint32(l.ID), Mode: uint8(l.Mode)}
		for _, sid := range l.Stops {
			lr.Stops = append(lr.Stops, uint32(sid))
		}
		r.TransitSys.Lines = append(r.TransitSys.Lines, lr)
	}
	for i := range w.transit.Vehicles {
		v := &w.transit.Vehicles[i]
		r.TransitSys.Vehicles = append(r.TransitSys.Vehicles, savefile.TransitVehicleRec{
			ID:       uint32(v.ID),
			Line:     uint32(v.Line),
			PathIdx:  v.PathIdx,
			Progress: v.Progress,
			Riders:   v.Riders,
		})
	}
}

// Metadata builds the save-browser header fields from current state.
func (w *World) Metadata() savefile.Metadata {
	return savefile.Metadata{
		CityName:        w.cityName,
		Population:      w.alivePopulation() + w.vpop.TotalPopulation(),
		Treasury:        w.budget.Treasury,
		Day:             w.clock.Day,
		Hour:            w.clock.Hour,
		PlayTimeSeconds: w.playSeconds,
	}
}
