package world

import (
	"fmt"

	"megacity.sim/internal/persistence/savefile"
	"megacity.sim/internal/sim/rng"
)

// ImportRecord replaces the world's state with a migrated save payload. The
// caller is responsible for having run the migration chain first (ReadFile
// does). On any validation error the world is left untouched.
func (w *World) ImportRecord(r *savefile.SaveRecord) error {
	if r.Version != savefile.CurrentVersion {
		return fmt.Errorf("import: payload version %d, want %d (run migration first)", r.Version, savefile.CurrentVersion)
	}
	n := GridSize * GridSize
	if len(r.Terrain) != n || len(r.RoadKind) != n || len(r.Zone) != n {
		return fmt.Errorf("import: grid layers have %d/%d/%d cells, want %d",
			len(r.Terrain), len(r.RoadKind), len(r.Zone), n)
	}
	for _, c := range r.Citizens {
		if c.HomeIdx != savefile.NoneIndex && int(c.HomeIdx) >= len(r.Buildings) {
			return fmt.Errorf("import: citizen home index %d out of range", c.HomeIdx)
		}
		if c.WorkIdx != savefile.NoneIndex && int(c.WorkIdx) >= len(r.Buildings) {
			return fmt.Errorf("import: citizen work index %d out of range", c.WorkIdx)
		}
	}

	w.resetForNewGame(r.Seed, r.CityName)
	w.rng = rng.Resume(r.Seed, r.RngWordPos)

	w.tick = r.Tick
	w.clock = GameClock{Day: r.Day, Hour: r.Hour, Speed: r.Speed, Paused: r.Paused}
	w.slow = SlowTickTimer{Period: r.SlowTickPeriod}
	w.playSeconds = r.PlayTimeSeconds
	w.lastEconomyDay = r.Day

	w.importGridLayers(r)
	w.importScalarGrids(r)
	w.importEconomy(r)
	w.importSegments(r)
	w.importEntities(r)
	w.importEnvironment(r)

	w.maxRealCitizens = r.MaxCitizens
	if w.maxRealCitizens < w.params.MaxRealCitizensFloor {
		w.maxRealCitizens = w.params.MaxRealCitizensFloor
	}

	// Derived state is rebuilt by the PostSim pass of the next tick.
	w.csr = nil
	w.ch = nil
	w.postLoadRebuild = true
	w.state = StatePlaying
	return nil
}

func (w *World) importGridLayers(r *savefile.SaveRecord) {
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		*c = Cell{
			Terrain: TerrainKind(r.Terrain[i]),
			Zone:    ZoneKind(r.Zone[i]),
		}
		if len(r.Elevation) == GridSize*GridSize {
			c.Elevation = r.Elevation[i]
		}
		// Road kind and refcounts land when segments re-rasterize.
		if c.Terrain == TerrainRoad {
			c.Terrain = TerrainGrass
		}
	}
}

func copyLayer(dst []uint8, src []uint8) {
	if len(src) == len(dst) {
		copy(dst, src)
	}
}

func (w *World) importScalarGrids(r *savefile.SaveRecord) {
	g := &w.grids
	copyLayer(g.Pollution, r.Pollution)
	copyLayer(g.Noise, r.Noise)
	copyLayer(g.LandValue, r.LandValue)
	copyLayer(g.Crime, r.Crime)
	copyLayer(g.TrafficDensity, r.TrafficDensity)
	copyLayer(g.RoadCondition, r.RoadCondition)
	copyLayer(g.Garbage, r.Garbage)
	copyLayer(g.Stormwater, r.Stormwater)
	copyLayer(g.Groundwater, r.Groundwater)
	copyLayer(g.SnowDepth, r.SnowDepth)
}

func (w *World) importEconomy(r *savefile.SaveRecord) {
	w.budget = CityBudget{
		Treasury:        r.Budget.Treasury,
		TaxResidential:  r.Budget.TaxResidential,
		TaxCommercial:   r.Budget.TaxCommercial,
		TaxIndustrial:   r.Budget.TaxIndustrial,
		TaxOffice:       r.Budget.TaxOffice,
		MonthlyIncome:   r.Budget.MonthlyIncome,
		MonthlyExpenses: r.Budget.MonthlyExpenses,
	}
	w.loans = nil
	for _, l := range r.Loans {
		w.loans = append(w.loans, Loan{
			Principal:      l.Principal,
			Remaining:      l.Remaining,
			MonthlyPayment: l.MonthlyPayment,
			TermMonths:     l.TermMonths,
			MonthsLeft:     l.MonthsLeft,
			InterestRate:   l.AnnualRate,
		})
	}
	w.extended = ExtendedBudget{
		Police:     r.Extended.Police,
		Fire:       r.Extended.Fire,
		Health:     r.Extended.Health,
		Education:  r.Extended.Education,
		Roads:      r.Extended.Roads,
		Parks:      r.Extended.Parks,
		Sanitation: r.Extended.Sanitation,
	}
	w.bankruptcy = BankruptcyLevel(r.Bankruptcy)
	w.zoneDemand = ZoneDemand{
		Residential: r.ZoneDemand.Residential,
		Commercial:  r.ZoneDemand.Commercial,
		Industrial:  r.ZoneDemand.Industrial,
		Office:      r.ZoneDemand.Office,
	}
}

// importSegments rebuilds the segment store from control points, re-running
// the rasterizer so cell lists and road refcounts match current logic.
func (w *World) importSegments(r *savefile.SaveRecord) {
	for _, sr := range r.Segments {
		p0 := Vec2{X: sr.P0[0], Y: sr.P0[1]}
		p1 := Vec2{X: sr.P1[0], Y: sr.P1[1]}
		p2 := Vec2{X: sr.P2[0], Y: sr.P2[1]}
		p3 := Vec2{X: sr.P3[0], Y: sr.P3[1]}
		kind := RoadKind(sr.Kind)

		seg := &RoadSegment{
			ID:     SegmentID(sr.ID),
			Kind:   kind,
			P0:     p0, P1: p1, P2: p2, P3: p3,
			Length: bezierLength(p0, p1, p2, p3),
			Cells:  rasterizeBezier(p0, p1, p2, p3),
		}
		na := w.segs.nodeFor(p0)
		nb := w.segs.nodeFor(p3)
		seg.NodeA, seg.NodeB = na.ID, nb.ID
		na.Segments = append(na.Segments, seg.ID)
		if nb != na {
			nb.Segments = append(nb.Segments, seg.ID)
		}
		w.segs.segments[seg.ID] = seg
		for _, cp := range seg.Cells {
			w.addRoadCell(cp, kind)
		}
	}
	w.segs.nextSegment = r.Counters.NextSegment

	for _, ow := range r.OneWay {
		id := SegmentID(ow.SegmentID)
		if w.segs.Get(id) != nil && ow.Dir != 0 {
			w.oneWay[id] = SegmentDirection(ow.Dir)
		}
	}
}

func (w *World) importEntities(r *savefile.SaveRecord) {
	w.buildings = make([]Building, len(r.Buildings))
	for i, br := range r.Buildings {
		cell := CellPos{X: br.Cell[0], Y: br.Cell[1]}
		w.buildings[i] = Building{
			Alive:             true,
			Cell:              cell,
			Zone:              ZoneKind(br.Zone),
			Level:             br.Level,
			Capacity:          br.Capacity,
			Occupants:         br.Occupants,
			CommercialSplit:   br.CommercialSplit,
			ConstructionLeft:  br.ConstructionLeft,
			ConstructionTotal: br.ConstructionTot,
		}
		w.grid.At(cell).Building = BuildingID(i + 1)
	}

	buildingID := func(idx uint32) BuildingID {
		if idx == savefile.NoneIndex {
			return 0
		}
		return BuildingID(idx + 1)
	}
	citizenID := func(idx uint32) CitizenID {
		if idx == savefile.NoneIndex {
			return NoneCitizen
		}
		return CitizenID(idx)
	}

	w.citizens = make([]Citizen, len(r.Citizens))
	w.aliveCitizens = len(r.Citizens)
	for i, cr := range r.Citizens {
		c := &w.citizens[i]
		*c = Citizen{
			Alive:    true,
			Pos:      Vec2{X: cr.Pos[0], Y: cr.Pos[1]},
			Vel:      Vec2{X: cr.Vel[0], Y: cr.Vel[1]},
			HomeCell: CellPos{X: cr.HomeCell[0], Y: cr.HomeCell[1]},
			Home:     buildingID(cr.HomeIdx),
			WorkCell: CellPos{X: cr.WorkCell[0], Y: cr.WorkCell[1]},
			Work:     buildingID(cr.WorkIdx),
			State:    CitizenState(cr.State),
			Needs: Needs{
				Hunger:  cr.Hunger,
				Energy:  cr.Energy,
				Social:  cr.Social,
				Fun:     cr.Fun,
				Comfort: cr.Comfort,
			},
			Personality: Personality{
				Ambition:    cr.Ambition,
				Sociability: cr.Sociability,
				Materialism: cr.Materialism,
				Resilience:  cr.Resilience,
			},
			Details: Details{
				Age:       cr.Age,
				Gender:    Gender(cr.Gender),
				Education: cr.Education,
				Happiness: cr.Happiness,
				Health:    cr.Health,
				Salary:    cr.Salary,
				Savings:   cr.Savings,
			},
			Partner:           citizenID(cr.Partner),
			Lod:               LodTier(cr.LodTier),
			Transport:         TransportMode(cr.Transport),
			ActivityTicksLeft: cr.ActivityTicksLeft,
		}
		// Saved paths are not persisted; commuters re-request after load.
		if c.State.commuting() {
			c.State = AtHome
		}
		for _, p := range cr.Parents {
			c.Parents = append(c.Parents, CitizenID(p))
		}
		for _, ch := range cr.Children {
			c.Children = append(c.Children, CitizenID(ch))
		}
	}

	// Workers is derived from citizen work references.
	for i := range w.citizens {
		if b := w.building(w.citizens[i].Work); b != nil {
			b.Workers++
		}
	}

	for _, ur := range r.Utilities {
		w.utilities = append(w.utilities, UtilitySource{
			Cell:  CellPos{X: ur.Cell[0], Y: ur.Cell[1]},
			Kind:  UtilityKind(ur.Kind),
			Range: ur.Range,
		})
	}
	for _, sr := range r.Services {
		w.services = append(w.services, ServiceBuilding{
			Cell: CellPos{X: sr.Cell[0], Y: sr.Cell[1]},
			Kind: ServiceKind(sr.Kind),
		})
	}

	for _, s := range r.TransitSys.Stops {
		w.transit.Stops = append(w.transit.Stops, TransitStop{
			ID:   StopID(s.ID),
			Cell: CellPos{X: s.Cell[0], Y: s.Cell[1]},
			Mode: TransitMode(s.Mode),
		})
	}
	for _, l := range r.TransitSys.Lines {
		line := TransitLine{ID: LineID(l.ID), Mode: TransitMode(l.Mode)}
		for _, sid := range l.Stops {
			line.Stops = append(line.Stops, StopID(sid))
		}
		w.transit.Lines = append(w.transit.Lines, line)
	}
	for _, v := range r.TransitSys.Vehicles {
		w.transit.Vehicles = append(w.transit.Vehicles, TransitVehicle{
			ID:       VehicleID(v.ID),
			Line:     LineID(v.Line),
			PathIdx:  v.PathIdx,
			Progress: v.Progress,
			Riders:   v.Riders,
		})
	}
	w.transit.NextStop = StopID(r.Counters.NextStop)
	w.transit.NextLine = LineID(r.Counters.NextLine)
	w.transit.NextVehicle = VehicleID(r.Counters.NextVehicle)
	w.transit.dirtyPaths = true
}

func (w *World) importEnvironment(r *savefile.SaveRecord) {
	w.energy.BatteryCharge = r.Energy.BatteryCharge
	w.energy.BatteryCapacity = r.Energy.BatteryCapacity
	w.energy.LineEfficiency = r.Energy.LineEfficiency

	w.weather = Weather{
		Climate:       ClimateZone(r.Weather.ClimateZone),
		Season:        Season(r.Weather.Season),
		Temperature:   r.Weather.Temperature,
		Precipitation: r.Weather.Precipitation,
		CloudCover:    r.Weather.CloudCover,
		Condition:     WeatherCondition(r.Weather.Condition),
	}

	w.disasters = newDisasters()
	for _, dr := range r.Disasters {
		if int(dr.Kind) >= len(w.disasters) {
			continue
		}
		d := &w.disasters[dr.Kind]
		d.Phase = DisasterPhase(dr.Phase)
		d.Intensity = dr.Intensity
		d.HeldTicks = dr.HeldTicks
	}

	w.vpop = VirtualPopulation{}
	for _, dr := range r.VirtualPop.Districts {
		w.vpop.Districts = append(w.vpop.Districts, District{
			Name:        dr.Name,
			Population:  dr.Population,
			Employed:    dr.Employed,
			Happiness:   dr.Happiness,
			AgeUnder18:  dr.AgeUnder18,
			Age18to65:   dr.Age18to65,
			AgeOver65:   dr.AgeOver65,
			Commuters:   dr.Commuters,
			TaxRevenue:  dr.TaxRevenue,
			ServiceNeed: dr.ServiceNeed,
		})
	}

	for _, vr := range r.Violations {
		switch vr.Name {
		case "budget_treasury":
			w.violations.BudgetTreasury = vr.Count
		case "citizen_happiness":
			w.violations.CitizenHappiness = vr.Count
		case "citizen_health":
			w.violations.CitizenHealth = vr.Count
		case "citizen_needs":
			w.violations.CitizenNeeds = vr.Count
		case "building_occupancy":
			w.violations.BuildingOccupancy = vr.Count
		case "segment_cells":
			w.violations.SegmentCells = vr.Count
		}
	}
}

// systemPostLoadRebuild restores derived state once after an import: the CSR
// graph rebuilds lazily, coverage and utilities are marked dirty, and stale
// per-path traffic is zeroed so congestion re-derives from live movement.
func (w *World) systemPostLoadRebuild() {
	if !w.postLoadRebuild {
		return
	}
	w.postLoadRebuild = false

	w.csr = nil
	w.ch = nil
	w.dirtyUtilities = true
	w.dirtyCoverage = true
	for i := range w.grids.TrafficDensity {
		w.grids.TrafficDensity[i] = 0
	}
}
