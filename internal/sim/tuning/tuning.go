// Package tuning holds every gameplay tunable in one flat record, loaded from
// YAML at startup. There is no hot reload; a changed file takes effect on the
// next NewGame.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type GameParams struct {
	TickRateHz     int `yaml:"tick_rate_hz"`
	SlowTickPeriod int `yaml:"slow_tick_period"`
	TicksPerHour   int `yaml:"ticks_per_hour"`

	StartingTreasury float64 `yaml:"starting_treasury"`

	// Zone demand sensitivities.
	ResidentialDemandSensitivity float64 `yaml:"residential_demand_sensitivity"`
	CommercialDemandSensitivity  float64 `yaml:"commercial_demand_sensitivity"`
	IndustrialDemandSensitivity  float64 `yaml:"industrial_demand_sensitivity"`
	OfficeDemandSensitivity      float64 `yaml:"office_demand_sensitivity"`

	// Default tax rates per zone class.
	TaxResidential float64 `yaml:"tax_residential"`
	TaxCommercial  float64 `yaml:"tax_commercial"`
	TaxIndustrial  float64 `yaml:"tax_industrial"`
	TaxOffice      float64 `yaml:"tax_office"`

	// Citizen needs: per-slow-tick decay and regeneration rates.
	NeedDecayHunger  float64 `yaml:"need_decay_hunger"`
	NeedDecayEnergy  float64 `yaml:"need_decay_energy"`
	NeedDecaySocial  float64 `yaml:"need_decay_social"`
	NeedDecayFun     float64 `yaml:"need_decay_fun"`
	NeedDecayComfort float64 `yaml:"need_decay_comfort"`
	NeedRegenRate    float64 `yaml:"need_regen_rate"`
	NeedCritical     float64 `yaml:"need_critical_threshold"`

	// Pathfinding.
	PathRequestsPerTick int `yaml:"path_requests_per_tick"`
	DestinationRadius   int `yaml:"destination_search_radius"`

	// Building growth.
	ConstructionTicks    int     `yaml:"construction_ticks"`
	GrowthAttractiveness float64 `yaml:"growth_attractiveness_floor"`

	// Real-citizen cap bounds (virtual population absorbs the rest).
	MaxRealCitizensFloor int `yaml:"max_real_citizens_floor"`
	MaxRealCitizensCeil  int `yaml:"max_real_citizens_ceil"`

	// Utilities.
	PowerPlantRange int `yaml:"power_plant_range"`
	WaterTowerRange int `yaml:"water_tower_range"`

	// Scalar grid smoothing.
	GridSmoothingAlpha float64 `yaml:"grid_smoothing_alpha"`

	// Transit.
	TransitFare float64 `yaml:"transit_fare"`

	// Operational cadence.
	AutosaveEveryTicks int `yaml:"autosave_every_ticks"`
}

func Load(path string) (GameParams, error) {
	var p GameParams
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := validateParams(raw); err != nil {
		return p, fmt.Errorf("params.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("params.yaml: %w", err)
	}
	p.ApplyDefaults()
	return p, nil
}

// Default returns the built-in parameter set used when no file is given.
func Default() GameParams {
	var p GameParams
	p.ApplyDefaults()
	return p
}

func (p *GameParams) ApplyDefaults() {
	if p.TickRateHz <= 0 {
		p.TickRateHz = 60
	}
	if p.SlowTickPeriod <= 0 {
		p.SlowTickPeriod = 100
	}
	if p.TicksPerHour <= 0 {
		p.TicksPerHour = 250
	}
	if p.StartingTreasury == 0 {
		p.StartingTreasury = 50000
	}
	if p.ResidentialDemandSensitivity == 0 {
		p.ResidentialDemandSensitivity = 1.0
	}
	if p.CommercialDemandSensitivity == 0 {
		p.CommercialDemandSensitivity = 0.8
	}
	if p.IndustrialDemandSensitivity == 0 {
		p.IndustrialDemandSensitivity = 0.7
	}
	if p.OfficeDemandSensitivity == 0 {
		p.OfficeDemandSensitivity = 0.6
	}
	if p.TaxResidential == 0 {
		p.TaxResidential = 0.09
	}
	if p.TaxCommercial == 0 {
		p.TaxCommercial = 0.10
	}
	if p.TaxIndustrial == 0 {
		p.TaxIndustrial = 0.11
	}
	if p.TaxOffice == 0 {
		p.TaxOffice = 0.10
	}
	if p.NeedDecayHunger == 0 {
		p.NeedDecayHunger = 1.8
	}
	if p.NeedDecayEnergy == 0 {
		p.NeedDecayEnergy = 1.2
	}
	if p.NeedDecaySocial == 0 {
		p.NeedDecaySocial = 0.7
	}
	if p.NeedDecayFun == 0 {
		p.NeedDecayFun = 0.9
	}
	if p.NeedDecayComfort == 0 {
		p.NeedDecayComfort = 0.5
	}
	if p.NeedRegenRate == 0 {
		p.NeedRegenRate = 6.0
	}
	if p.NeedCritical == 0 {
		p.NeedCritical = 20
	}
	if p.PathRequestsPerTick <= 0 {
		p.PathRequestsPerTick = 32
	}
	if p.DestinationRadius <= 0 {
		p.DestinationRadius = 64
	}
	if p.ConstructionTicks <= 0 {
		p.ConstructionTicks = 120
	}
	if p.GrowthAttractiveness == 0 {
		p.GrowthAttractiveness = 30
	}
	if p.MaxRealCitizensFloor <= 0 {
		p.MaxRealCitizensFloor = 10000
	}
	if p.MaxRealCitizensCeil <= 0 {
		p.MaxRealCitizensCeil = 200000
	}
	if p.PowerPlantRange <= 0 {
		p.PowerPlantRange = 40
	}
	if p.WaterTowerRange <= 0 {
		p.WaterTowerRange = 32
	}
	if p.GridSmoothingAlpha == 0 {
		p.GridSmoothingAlpha = 0.1
	}
	if p.TransitFare == 0 {
		p.TransitFare = 2.0
	}
	if p.AutosaveEveryTicks <= 0 {
		p.AutosaveEveryTicks = 18000
	}
}
