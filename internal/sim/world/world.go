// Package world owns the entire simulation state. Nothing in here is safe for
// concurrent use: all access goes through the goroutine driving Step, and
// external producers communicate exclusively through Submit.
package world

import (
	"context"
	"time"

	"megacity.sim/internal/sim/rng"
	"megacity.sim/internal/sim/tuning"
)

// ZoneDemand is the normalized 0..1 build pressure per zone class.
type ZoneDemand struct {
	Residential float64
	Commercial  float64
	Industrial  float64
	Office      float64
}

// Config wires a World to its collaborators. Recorder and Auditor may be nil.
type Config struct {
	Params   tuning.GameParams
	Recorder ActionRecorder
	Auditor  ActionAuditor
	Climate  ClimateZone
}

// World is the complete simulation state plus the derived caches hanging off
// it. Derived state (CSR graph, contraction hierarchy, coverage bitmap) is
// never saved; the post-load rebuild reconstructs it.
type World struct {
	params tuning.GameParams
	rng    *rng.Rng

	state AppState
	tick  uint64
	clock GameClock
	slow  SlowTickTimer

	cityName    string
	playSeconds float64

	grid  Grid
	roads RoadNetwork
	segs  *SegmentStore

	csr    *csrGraph
	ch     *chGraph
	oneWay map[SegmentID]SegmentDirection

	pathQueue   []pathRequest
	pathResults []pathResult

	citizens      []Citizen
	freeCitizens  []CitizenID
	aliveCitizens int

	buildings     []Building
	freeBuildings []BuildingID

	utilities      []UtilitySource
	utilityVisited []bool
	services       []ServiceBuilding
	coverage       []uint8

	budget         CityBudget
	loans          []Loan
	extended       ExtendedBudget
	bankruptcy     BankruptcyLevel
	lastEconomyDay int
	notices        []string

	zoneDemand ZoneDemand
	grids      scalarGrids

	weather          Weather
	lastWeatherEvent WeatherChangeEvent
	disasters        []Disaster

	transit TransitNetwork
	energy  EnergyGrid
	vpop    VirtualPopulation

	maxRealCitizens int
	frameRate       float64
	frameRateSet    bool

	policyLevelCap         int
	attractivenessOverride float64

	cameraHint    CellPos
	cameraHintSet bool

	resultLog   *actionResultLog
	recorder    ActionRecorder
	auditor     ActionAuditor
	actionQueue []queuedAction
	actionSeq   uint64

	schedule *schedule

	dirtyUtilities  bool
	dirtyCoverage   bool
	agedToday       bool
	postLoadRebuild bool

	violations  InvariantViolations
	observation CurrentObservation
}

// New builds a world in the main-menu state. A NewGame action starts play.
// A schedule that cannot be ordered is a fatal startup error, surfaced here.
func New(cfg Config) (*World, error) {
	sched, err := buildSchedule(simulationSystems())
	if err != nil {
		return nil, err
	}
	w := &World{
		params:                 cfg.Params,
		rng:                    rng.New(0),
		state:                  StateMainMenu,
		segs:                   newSegmentStore(),
		oneWay:                 map[SegmentID]SegmentDirection{},
		coverage:               make([]uint8, GridSize*GridSize),
		extended:               defaultExtendedBudget(),
		grids:                  newScalarGrids(),
		disasters:              newDisasters(),
		energy:                 newEnergyGrid(),
		maxRealCitizens:        cfg.Params.MaxRealCitizensFloor,
		policyLevelCap:         1 << 30,
		attractivenessOverride: -1,
		resultLog:              newActionResultLog(),
		recorder:               cfg.Recorder,
		auditor:                cfg.Auditor,
		schedule:               sched,
	}
	w.weather.Climate = cfg.Climate
	w.weather.Temperature = 15
	w.weather.CloudCover = 0.2
	w.slow.Period = cfg.Params.SlowTickPeriod
	return w, nil
}

// resetForNewGame reinitializes everything derived from a seed, leaving the
// schedule and collaborator wiring alone.
func (w *World) resetForNewGame(seed int64, name string) {
	climate := w.weather.Climate

	w.rng = rng.New(seed)
	w.tick = 0
	w.clock = GameClock{Hour: 8, Speed: 1}
	w.slow = SlowTickTimer{Period: w.params.SlowTickPeriod}
	w.cityName = name
	w.playSeconds = 0

	w.grid = Grid{}
	w.roads = RoadNetwork{}
	w.segs = newSegmentStore()
	w.csr = nil
	w.ch = nil
	w.oneWay = map[SegmentID]SegmentDirection{}
	w.pathQueue = nil
	w.pathResults = nil

	w.citizens = nil
	w.freeCitizens = nil
	w.aliveCitizens = 0
	w.buildings = nil
	w.freeBuildings = nil
	w.utilities = nil
	w.services = nil
	for i := range w.coverage {
		w.coverage[i] = 0
	}

	w.budget = CityBudget{
		Treasury:       w.params.StartingTreasury,
		TaxResidential: w.params.TaxResidential,
		TaxCommercial:  w.params.TaxCommercial,
		TaxIndustrial:  w.params.TaxIndustrial,
		TaxOffice:      w.params.TaxOffice,
	}
	w.loans = nil
	w.extended = defaultExtendedBudget()
	w.bankruptcy = SolvencyNormal
	w.lastEconomyDay = 0
	w.notices = nil

	w.zoneDemand = ZoneDemand{}
	w.grids = newScalarGrids()

	w.weather = Weather{Climate: climate, Temperature: 15, CloudCover: 0.2}
	w.lastWeatherEvent = WeatherChangeEvent{}
	w.disasters = newDisasters()

	w.transit = TransitNetwork{}
	w.energy = newEnergyGrid()
	w.vpop = VirtualPopulation{}
	w.maxRealCitizens = w.params.MaxRealCitizensFloor

	w.violations = InvariantViolations{}
	w.agedToday = false
	w.dirtyUtilities = true
	w.dirtyCoverage = true

	w.generateTerrain(seed)
	w.state = StatePlaying
}

// Step advances one fixed tick. Outside of active play only the action
// executor runs, so NewGame and pause toggles still take effect.
func (w *World) Step() {
	if w.state != StatePlaying || w.clock.Paused {
		w.systemActionExecutor()
		return
	}
	w.tick++
	w.slow.advance()
	w.schedule.run(w)
	w.playSeconds += 1 / float64(w.params.TickRateHz)
}

// StepOnce advances one tick and returns the tick number with the state
// digest, the unit of replay verification.
func (w *World) StepOnce() (uint64, string) {
	w.Step()
	return w.tick, w.StateDigest()
}

// Run drives the fixed-timestep loop until the context is canceled. Game
// speed multiplies simulation ticks per wall interval.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.params.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			steps := w.clock.Speed
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps; i++ {
				w.Step()
			}
		}
	}
}

func (w *World) SetState(s AppState) { w.state = s }

func (w *World) State() AppState           { return w.state }
func (w *World) Tick() uint64              { return w.tick }
func (w *World) Clock() GameClock          { return w.clock }
func (w *World) CityName() string          { return w.cityName }
func (w *World) Budget() CityBudget        { return w.budget }
func (w *World) Params() tuning.GameParams { return w.params }

// Notices drains pending player-facing messages.
func (w *World) Notices() []string {
	out := w.notices
	w.notices = nil
	return out
}

// LastWeatherEvent returns the most recent season or condition edge.
func (w *World) LastWeatherEvent() WeatherChangeEvent { return w.lastWeatherEvent }

// Violations returns the invariant-guard repair counters.
func (w *World) Violations() InvariantViolations { return w.violations }

// SetAttractivenessOverride pins the attractiveness score, bypassing the
// computed blend. Negative restores computation. Used by scenario setups.
func (w *World) SetAttractivenessOverride(v float64) { w.attractivenessOverride = v }

// setZoneDemand overrides demand directly for scenario setups; the next slow
// tick recomputes it.
func (w *World) setZoneDemand(d ZoneDemand) { w.zoneDemand = d }
